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

// Package diff implements the diff command.
package diff

import (
	"context"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name + " [<revision> [<revision>]]",
		Short: "Show the delta between revisions, or between HEAD and the index.",
		Args:  cobra.MaximumNArgs(2),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container applog.Container) error {
	args := container.Args()[1:]
	var fromRevision, toRevision string
	if len(args) > 0 {
		fromRevision = args[0]
	}
	if len(args) > 1 {
		toRevision = args[1]
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		changes, err := repository.Diff(ctx, fromRevision, toRevision)
		if err != nil {
			return err
		}
		spgitcli.PrintChanges(container.Stdout(), changes)
		return nil
	})
}
