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

// Package repoinit implements the init command.
package repoinit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const nameFlagName = "name"

// NewCommand returns a new Command.
func NewCommand(name string, builder appflag.Builder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Initialize a new repository in the current directory.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	Name string
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Name, nameFlagName, "", "The human-readable name of the list under version control.")
}

func run(ctx context.Context, container applog.Container, flags *flags) error {
	workingDirPath, err := os.Getwd()
	if err != nil {
		return spgitcli.WrapError(err)
	}
	remote, err := spgitcli.NewRemoteList(container)
	if err != nil {
		return spgitcli.WrapError(err)
	}
	repository, err := spgitrepo.Init(
		ctx,
		container.Logger(),
		workingDirPath,
		flags.Name,
		spgitrepo.WithRemoteList(remote),
	)
	if err != nil {
		return spgitcli.WrapError(err)
	}
	if err := repository.Close(); err != nil {
		return spgitcli.WrapError(err)
	}
	fmt.Fprintf(container.Stdout(), "Initialized empty spgit repository in %s\n", filepath.Join(workingDirPath, spgitrepo.MetaDirName))
	return nil
}
