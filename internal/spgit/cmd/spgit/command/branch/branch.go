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

// Package branch implements the branch command.
package branch

import (
	"context"
	"fmt"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	deleteFlagName = "delete"
	forceFlagName  = "force"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " [<name> [<start-revision>]]",
		Short: "List, create, or delete branches.",
		Args:  cobra.MaximumNArgs(2),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	Delete bool
	Force  bool
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.BoolVarP(&f.Delete, deleteFlagName, "d", false, "Delete the named branch.")
	flagSet.BoolVarP(&f.Force, forceFlagName, "f", false, "Delete even if the branch is not merged.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	args := container.Args()[1:]
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		switch {
		case flags.Delete:
			if len(args) != 1 {
				return spgitrepo.NewUserError("branch --delete requires exactly one branch name")
			}
			if err := repository.BranchDelete(ctx, args[0], flags.Force); err != nil {
				return err
			}
			fmt.Fprintf(container.Stdout(), "Deleted branch %s\n", args[0])
			return nil
		case len(args) > 0:
			revision := ""
			if len(args) > 1 {
				revision = args[1]
			}
			return repository.BranchCreate(ctx, args[0], revision)
		default:
			branches, err := repository.BranchList(ctx)
			if err != nil {
				return err
			}
			for _, branch := range branches {
				marker := "  "
				if branch.Current {
					marker = "* "
				}
				fmt.Fprintf(container.Stdout(), "%s%s %s\n", marker, branch.Name, branch.Digest.Short())
			}
			return nil
		}
	})
}
