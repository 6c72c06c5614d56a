// Copyright 2021-2025 The spgit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package spgitcli contains the glue every subcommand shares: opening the
// repository with a configured catalog client, mapping engine errors to
// process exit codes, and rendering deltas and commits for the terminal.
package spgitcli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/pap-art/spgit/internal/pkg/app"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitremote"
	"github.com/pap-art/spgit/internal/spgit/spgitremote/spgitremotehttp"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"go.uber.org/multierr"
)

const (
	// Version is the CLI version.
	Version = "0.4.0"

	// ExitCodeUserError is the exit code for bad arguments and unknown refs.
	ExitCodeUserError = 1
	// ExitCodeRepositoryError is the exit code for corruption and I/O
	// failures.
	ExitCodeRepositoryError = 2
	// ExitCodeRemoteError is the exit code for catalog failures.
	ExitCodeRemoteError = 3

	// CatalogURLEnvKey overrides the catalog API base URL.
	CatalogURLEnvKey = "SPGIT_CATALOG_URL"

	defaultCatalogURL = "https://catalog.spgit.dev"
)

// OpenRepository opens the repository containing the working directory,
// wiring in the HTTP catalog client configured from the environment and the
// user config.
func OpenRepository(ctx context.Context, container applog.Container) (*spgitrepo.Repository, error) {
	workingDirPath, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	remote, err := NewRemoteList(container)
	if err != nil {
		return nil, err
	}
	return spgitrepo.Open(
		ctx,
		container.Logger(),
		workingDirPath,
		spgitrepo.WithRemoteList(remote),
	)
}

// NewRemoteList builds the HTTP catalog client from the environment and the
// user config.
func NewRemoteList(container applog.Container) (spgitremote.RemoteList, error) {
	catalogURL := container.Env(CatalogURLEnvKey)
	if catalogURL == "" {
		catalogURL = defaultCatalogURL
	}
	userConfigPath, err := spgitconfig.DefaultUserConfigPath()
	if err != nil {
		return nil, err
	}
	userConfig, err := spgitconfig.LoadUserConfig(userConfigPath)
	if err != nil {
		return nil, err
	}
	host := catalogURL
	if parsed, err := url.Parse(catalogURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	token, err := spgitremotehttp.ResolveToken(userConfig, host)
	if err != nil {
		return nil, err
	}
	return spgitremotehttp.NewClient(
		container.Logger(),
		catalogURL,
		spgitremotehttp.WithToken(token),
	), nil
}

// RunWithRepository opens the repository, runs f, closes the repository,
// and maps the combined error onto an exit code.
func RunWithRepository(
	ctx context.Context,
	container applog.Container,
	f func(context.Context, *spgitrepo.Repository) error,
) error {
	repository, err := OpenRepository(ctx, container)
	if err != nil {
		return WrapError(err)
	}
	err = f(ctx, repository)
	return WrapError(multierr.Append(err, repository.Close()))
}

// WrapError maps an engine error onto its process exit code.
func WrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case spgitrepo.IsUserError(err) || spgitrepo.IsNotARepository(err):
		return app.NewError(ExitCodeUserError, err.Error())
	case spgitremote.IsRemoteError(err):
		return app.NewError(ExitCodeRemoteError, err.Error())
	default:
		return app.NewError(ExitCodeRepositoryError, err.Error())
	}
}

// PrintChanges renders a delta one line per change.
func PrintChanges(writer io.Writer, changes *spgitdiff.Changes) {
	for _, change := range changes.Added {
		fmt.Fprintf(writer, "+ %4d  %s  (%s)\n", change.Position, change.Item.Name, change.Item.ID)
	}
	for _, change := range changes.Removed {
		fmt.Fprintf(writer, "- %4d  %s  (%s)\n", change.Position, change.Item.Name, change.Item.ID)
	}
	for _, move := range changes.Moved {
		fmt.Fprintf(writer, "~ %4d -> %-4d  %s  (%s)\n", move.OldPosition, move.NewPosition, move.Item.Name, move.Item.ID)
	}
}

// PrintCommit renders one commit in full log format.
func PrintCommit(writer io.Writer, digest string, commit *spgitobject.Commit) {
	fmt.Fprintf(writer, "commit %s\n", digest)
	if len(commit.Parents) == 2 {
		fmt.Fprintf(writer, "Merge: %s %s\n", commit.Parents[0].Short(), commit.Parents[1].Short())
	}
	fmt.Fprintf(writer, "Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
	fmt.Fprintf(writer, "Date:   %s\n", FormatTime(commit.Author))
	fmt.Fprintf(writer, "\n    %s\n\n", commit.Subject())
}

// FormatTime renders a signature's instant the way log output expects.
func FormatTime(signature spgitobject.Signature) string {
	return signature.Time().Format(time.ANSIC + " -0700")
}
