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

// Package spgit builds the spgit command tree.
package spgit

import (
	"context"

	"github.com/pap-art/spgit/internal/pkg/app/appcmd"
	"github.com/pap-art/spgit/internal/pkg/app/appflag"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/add"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/blame"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/branch"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/checkout"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/cherrypick"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/commit"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/diff"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/fetch"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/fsck"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/log"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/merge"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/pull"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/push"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/rebase"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/reflog"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/remote"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/repoinit"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/reset"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/revert"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/show"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/stash"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/status"
	"github.com/pap-art/spgit/internal/spgit/cmd/spgit/command/tag"
	"github.com/pap-art/spgit/internal/spgit/spgitcli"
)

// Main is the entrypoint for the spgit CLI.
func Main(use string) {
	appcmd.Main(context.Background(), NewRootCommand(use))
}

// NewRootCommand returns the root command.
func NewRootCommand(use string) *appcmd.Command {
	builder := appflag.NewBuilder()
	return &appcmd.Command{
		Use:     use,
		Short:   "Version control for ordered item lists.",
		Version: spgitcli.Version,
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			repoinit.NewCommand("init", builder),
			add.NewCommand("add", builder),
			commit.NewCommand("commit", builder),
			status.NewCommand("status", builder),
			diff.NewCommand("diff", builder),
			log.NewCommand("log", builder),
			branch.NewCommand("branch", builder),
			checkout.NewCommand("checkout", builder),
			merge.NewCommand("merge", builder),
			pull.NewCommand("pull", builder),
			push.NewCommand("push", builder),
			fetch.NewCommand("fetch", builder),
			remote.NewCommand("remote", builder),
			reset.NewCommand("reset", builder),
			revert.NewCommand("revert", builder),
			stash.NewCommand("stash", builder),
			tag.NewCommand("tag", builder),
			show.NewCommand("show", builder),
			cherrypick.NewCommand("cherry-pick", builder),
			rebase.NewCommand("rebase", builder),
			reflog.NewCommand("reflog", builder),
			blame.NewCommand("blame", builder),
			fsck.NewCommand("fsck", builder),
		},
	}
}
