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

// Package tag implements the tag command.
package tag

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
	messageFlagName = "message"
	deleteFlagName  = "delete"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " [<name> [<revision>]]",
		Short: "List, create, or delete tags.",
		Long:  `With no arguments, lists tags. With a name, creates a tag; adding -m makes it an annotated tag.`,
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
	Message string
	Delete  bool
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.Message, messageFlagName, "m", "", "Create an annotated tag with this message.")
	flagSet.BoolVarP(&f.Delete, deleteFlagName, "d", false, "Delete the named tag.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	args := container.Args()[1:]
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		switch {
		case flags.Delete:
			if len(args) != 1 {
				return spgitrepo.NewUserError("tag --delete requires exactly one tag name")
			}
			return repository.TagDelete(ctx, args[0])
		case len(args) > 0:
			revision := ""
			if len(args) > 1 {
				revision = args[1]
			}
			return repository.TagCreate(ctx, args[0], revision, flags.Message)
		default:
			tags, err := repository.TagList(ctx)
			if err != nil {
				return err
			}
			for _, tag := range tags {
				fmt.Fprintln(container.Stdout(), tag.Name)
			}
			return nil
		}
	})
}
