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

// Package reset implements the reset command.
package reset

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
	softFlagName  = "soft"
	mixedFlagName = "mixed"
	hardFlagName  = "hard"
)

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " [--soft | --mixed | --hard] <revision>",
		Short: "Move HEAD and the current branch to a revision.",
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
	Soft  bool
	Mixed bool
	Hard  bool
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&f.Soft, softFlagName, false, "Move the ref only; keep the index.")
	flagSet.BoolVar(&f.Mixed, mixedFlagName, false, "Move the ref and reset the index. The default.")
	flagSet.BoolVar(&f.Hard, hardFlagName, false, "Move the ref and reset the index; the next push overwrites the remote.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	revision := container.Args()[1]
	mode := spgitrepo.ResetMixed
	set := 0
	if flags.Soft {
		mode = spgitrepo.ResetSoft
		set++
	}
	if flags.Mixed {
		mode = spgitrepo.ResetMixed
		set++
	}
	if flags.Hard {
		mode = spgitrepo.ResetHard
		set++
	}
	if set > 1 {
		return spgitcli.WrapError(spgitrepo.NewUserError("only one of --soft, --mixed, --hard may be given"))
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		if err := repository.Reset(ctx, revision, mode); err != nil {
			return err
		}
		head, _, err := repository.Head(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(container.Stdout(), "HEAD is now at %s\n", head.Short())
		return nil
	})
}
