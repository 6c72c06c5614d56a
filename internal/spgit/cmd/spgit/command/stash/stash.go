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

// Package stash implements the stash command and its sub-commands.
package stash

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const messageFlagName = "message"

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Save and restore in-progress index snapshots.",
		SubCommands: []*appcmd.Command{
			newSaveCommand(builder),
			newListCommand(builder),
			newApplyCommand(builder),
			newPopCommand(builder),
			newDropCommand(builder),
		},
	}
}

func newSaveCommand(builder appflag.Builder) *appcmd.Command {
	flags := &saveFlags{}
	return &appcmd.Command{
		Use:   "save",
		Short: "Push the staged index onto the stash stack and restore HEAD's tree.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
					digest, err := repository.StashSave(ctx, flags.Message)
					if err != nil {
						return err
					}
					fmt.Fprintf(container.Stdout(), "Saved stash %s\n", digest.Short())
					return nil
				})
			},
		),
		BindFlags: flags.Bind,
	}
}

type saveFlags struct {
	Message string
}

func (f *saveFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.Message, messageFlagName, "m", "", "The stash message.")
}

func newListCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "list",
		Short: "List stash entries, top first.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
					entries, err := repository.StashList(ctx)
					if err != nil {
						return err
					}
					for _, entry := range entries {
						fmt.Fprintf(container.Stdout(), "stash@{%d}: %s\n", entry.Position, entry.Message)
					}
					return nil
				})
			},
		),
	}
}

func newApplyCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "apply [<position>]",
		Short: "Merge a stash entry into the index, keeping it on the stack.",
		Args:  cobra.MaximumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return runPositional(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository, position int) error {
					return repository.StashApply(ctx, position)
				})
			},
		),
	}
}

func newPopCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "pop [<position>]",
		Short: "Merge a stash entry into the index and drop it from the stack.",
		Args:  cobra.MaximumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return runPositional(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository, position int) error {
					return repository.StashPop(ctx, position)
				})
			},
		),
	}
}

func newDropCommand(builder appflag.Builder) *appcmd.Command {
	return &appcmd.Command{
		Use:   "drop [<position>]",
		Short: "Remove a stash entry from the stack.",
		Args:  cobra.MaximumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return runPositional(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository, position int) error {
					return repository.StashDrop(ctx, position)
				})
			},
		),
	}
}

func runPositional(
	ctx context.Context,
	container applog.Container,
	f func(context.Context, *spgitrepo.Repository, int) error,
) error {
	args := container.Args()[1:]
	position := 0
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return spgitcli.WrapError(spgitrepo.NewUserError("invalid stash position %q", args[0]))
		}
		position = parsed
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		return f(ctx, repository, position)
	})
}
