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

// Package merge implements the merge command.
package merge

import (
	"context"
	"fmt"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	strategyFlagName = "strategy"
	noFFFlagName     = "no-ff"
	messageFlagName  = "message"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " <revision>",
		Short: "Merge a branch or commit into the current branch.",
		Args:  cobra.ExactArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	Strategy string
	NoFF     bool
	Message  string
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Strategy, strategyFlagName, "union", "The merge strategy [union,append,intersection].")
	flagSet.BoolVar(&f.NoFF, noFFFlagName, false, "Create a merge commit even when fast-forward is possible.")
	flagSet.StringVarP(&f.Message, messageFlagName, "m", "", "The merge commit message.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	revision := container.Args()[1]
	strategy, err := spgitmerge.ParseStrategy(flags.Strategy)
	if err != nil {
		return spgitcli.WrapError(spgitrepo.NewUserError("%v", err))
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		result, err := repository.Merge(ctx, revision, strategy, flags.NoFF, flags.Message)
		if err != nil {
			return err
		}
		fmt.Fprintf(container.Stdout(), "%s: HEAD at %s\n", result.Outcome.String(), result.Head.Short())
		return nil
	})
}
