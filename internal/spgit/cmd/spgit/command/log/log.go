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

// Package log implements the log command.
package log

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
	limitFlagName   = "max-count"
	onelineFlagName = "oneline"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " [<revision>]",
		Short: "Show the commit history.",
		Args:  cobra.MaximumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	Limit   int
	Oneline bool
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.IntVarP(&f.Limit, limitFlagName, "n", 0, "Limit the number of commits shown. 0 means no limit.")
	flagSet.BoolVar(&f.Oneline, onelineFlagName, false, "Condense each commit to a single line.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	args := container.Args()[1:]
	revision := ""
	if len(args) > 0 {
		revision = args[0]
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		entries, err := repository.Log(ctx, revision, flags.Limit)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if flags.Oneline {
				fmt.Fprintf(container.Stdout(), "%s %s\n", entry.Digest.Short(), entry.Commit.Subject())
				continue
			}
			spgitcli.PrintCommit(container.Stdout(), entry.Digest.String(), entry.Commit)
		}
		return nil
	})
}
