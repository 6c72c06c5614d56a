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

// Package add implements the add command.
package add

import (
	"context"
	"fmt"

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
		Use:   name + " <item-uri>... | " + name + " .",
		Short: "Stage items from the remote list snapshot.",
		Long: `"add ." reconciles the index with the current remote snapshot.
Explicit item URIs stage (or unstage, if gone from the snapshot) only the named items.`,
		Args: cobra.MinimumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container applog.Container) error {
	args := container.Args()[1:]
	all := false
	var itemIDs []string
	for _, arg := range args {
		if arg == "." {
			all = true
			continue
		}
		itemIDs = append(itemIDs, arg)
	}
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		if err := repository.Add(ctx, itemIDs, all); err != nil {
			return err
		}
		fmt.Fprintf(container.Stdout(), "%d items staged\n", len(repository.Index().Items))
		return nil
	})
}
