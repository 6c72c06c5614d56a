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

// Package remote implements the remote command and its sub-commands.
package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/pap-art/spgit/internal/spgit/spgitremote/spgitremotehttp"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const createFlagName = "create"

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Manage catalog remotes.",
		SubCommands: []*appcmd.Command{
			newAddCommand(builder),
			newRemoveCommand(builder),
			newListCommand(builder),
			newLoginCommand(builder),
		},
	}
}

func newAddCommand(builder appflag.Builder) *appcmd.Command {
	flags := &addFlags{}
	return &appcmd.Command{
		Use:   "add <name> <list-url>",
		Short: "Add a named remote for a catalog list.",
		Args:  cobra.RangeArgs(1, 2),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return runAdd(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type addFlags struct {
	Create string
}

func (f *addFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Create, createFlagName, "", "Create a new catalog list with this name instead of resolving a URL.")
}

func runAdd(ctx context.Context, container applog.Container, flags *addFlags) error {
	args := container.Args()[1:]
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		name := args[0]
		if flags.Create != "" {
			if len(args) != 1 {
				return spgitrepo.NewUserError("remote add --create takes only the remote name")
			}
			return repository.RemoteCreate(ctx, name, flags.Create)
		}
		if len(args) != 2 {
			return spgitrepo.NewUserError("remote add requires a name and a list URL")
		}
		return repository.RemoteAdd(ctx, name, args[1])
	})
}

func newRemoveCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "remove <name>",
		Short: "Remove a named remote.",
		Args:  cobra.ExactArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
					return repository.RemoteRemove(ctx, container.Args()[1])
				})
			},
		),
	}
}

func newListCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "list",
		Short: "List configured remotes.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
					for _, remote := range repository.RemoteList(ctx) {
						marker := " "
						if remote.Default {
							marker = "*"
						}
						fmt.Fprintf(container.Stdout(), "%s %s\t%s\t%s\n", marker, remote.Name, remote.ListID, remote.URL)
					}
					return nil
				})
			},
		),
	}
}

func newLoginCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "login",
		Short: "Authorize spgit with the catalog and store the credential.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return runLogin(ctx, container)
			},
		),
	}
}

func runLogin(ctx context.Context, container applog.Container) error {
	catalogURL := container.Env(spgitcli.CatalogURLEnvKey)
	if catalogURL == "" {
		catalogURL = "https://catalog.spgit.dev"
	}
	token, err := spgitremotehttp.Authorize(
		ctx,
		container.Logger(),
		container.Stdin(),
		container.Stderr(),
		catalogURL+"/authorize",
	)
	if err != nil {
		return spgitcli.WrapError(err)
	}
	host := catalogURL
	if parsed, err := url.Parse(catalogURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	userConfigPath, err := spgitconfig.DefaultUserConfigPath()
	if err != nil {
		return spgitcli.WrapError(err)
	}
	userConfig, err := spgitconfig.LoadUserConfig(userConfigPath)
	if err != nil {
		return spgitcli.WrapError(err)
	}
	if userConfig.Credentials == nil {
		userConfig.Credentials = make(map[string]spgitconfig.Credential)
	}
	userConfig.Credentials[host] = spgitconfig.Credential{Token: token}
	if err := spgitconfig.SaveUserConfig(userConfigPath, userConfig); err != nil {
		return spgitcli.WrapError(err)
	}
	fmt.Fprintf(container.Stdout(), "Credential stored for %s\n", host)
	return nil
}
