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

// Package status implements the status command.
package status

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
		Use:   name,
		Short: "Show the current branch and staged changes.",
		Args:  cobra.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container applog.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container applog.Container) error {
	return spgitcli.RunWithRepository(ctx, container, func(ctx context.Context, repository *spgitrepo.Repository) error {
		status, err := repository.Status(ctx)
		if err != nil {
			return err
		}
		stdout := container.Stdout()
		if status.Detached {
			fmt.Fprintf(stdout, "HEAD detached at %s\n", status.Head.Short())
		} else {
			fmt.Fprintf(stdout, "On branch %s\n", status.Branch)
		}
		if status.Tracking != "" {
			switch {
			case status.Ahead > 0 && status.Behind > 0:
				fmt.Fprintf(stdout, "Your branch and %s have diverged by %d and %d commits\n", status.Tracking, status.Ahead, status.Behind)
			case status.Ahead > 0:
				fmt.Fprintf(stdout, "Your branch is ahead of %s by %d commits\n", status.Tracking, status.Ahead)
			case status.Behind > 0:
				fmt.Fprintf(stdout, "Your branch is behind %s by %d commits\n", status.Tracking, status.Behind)
			}
		}
		if status.Staged.IsEmpty() {
			fmt.Fprintln(stdout, "nothing staged, index matches HEAD")
			return nil
		}
		fmt.Fprintln(stdout, "Staged changes:")
		spgitcli.PrintChanges(stdout, status.Staged)
		return nil
	})
}
