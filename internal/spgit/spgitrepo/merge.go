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

package spgitrepo

import (
	"context"
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgitgraph"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
)

const (
	// MergeOutcomeUpToDate means the incoming commit was already an
	// ancestor of HEAD; nothing happened.
	MergeOutcomeUpToDate MergeOutcome = iota + 1
	// MergeOutcomeFastForward means HEAD advanced to the incoming commit
	// without a merge commit.
	MergeOutcomeFastForward
	// MergeOutcomeMerge means a two-parent merge commit was created.
	MergeOutcomeMerge
)

// MergeOutcome is the kind of merge that happened.
type MergeOutcome int

// String returns the outcome for human output.
func (o MergeOutcome) String() string {
	switch o {
	case MergeOutcomeUpToDate:
		return "already up to date"
	case MergeOutcomeFastForward:
		return "fast-forward"
	case MergeOutcomeMerge:
		return "merge"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// MergeResult describes a completed merge.
type MergeResult struct {
	Outcome MergeOutcome
	// Head is the resulting HEAD commit.
	Head spgithash.Digest
}

// Merge merges the revision into the current branch.
//
// If HEAD is an ancestor of the incoming commit the ref fast-forwards
// (unless noFF forces a merge commit). If the incoming commit is an
// ancestor of HEAD nothing happens. Otherwise the two item lists are
// combined under the strategy on top of the merge base and a two-parent
// merge commit is created. Strategies are total: no conflict state exists.
func (r *Repository) Merge(
	ctx context.Context,
	revision string,
	strategy spgitmerge.Strategy,
	noFF bool,
	message string,
) (*MergeResult, error) {
	if r.index.Modified {
		return nil, NewUserError("your staged changes would be overwritten: commit or stash them first")
	}
	current, born, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	if !born {
		return nil, NewUserError("HEAD is unborn: create the first commit before merging")
	}
	incoming, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return nil, err
	}
	if current == incoming {
		return &MergeResult{Outcome: MergeOutcomeUpToDate, Head: current}, nil
	}
	upToDate, err := spgitgraph.IsAncestor(ctx, r.objects, incoming, current)
	if err != nil {
		return nil, err
	}
	if upToDate {
		return &MergeResult{Outcome: MergeOutcomeUpToDate, Head: current}, nil
	}
	base, haveBase, err := spgitgraph.MergeBase(ctx, r.objects, current, incoming)
	if err != nil {
		return nil, err
	}
	if haveBase && base == current && !noFF {
		// HEAD is an ancestor of incoming: advance the ref, no new commit
		if err := r.advanceHead(ctx, incoming, "merge "+revision, "fast-forward"); err != nil {
			return nil, err
		}
		if err := r.resetIndexToCommit(ctx, incoming); err != nil {
			return nil, err
		}
		return &MergeResult{Outcome: MergeOutcomeFastForward, Head: incoming}, nil
	}
	currentItems, err := r.commitItems(ctx, current)
	if err != nil {
		return nil, err
	}
	incomingItems, err := r.commitItems(ctx, incoming)
	if err != nil {
		return nil, err
	}
	mergedItems := spgitmerge.Combine(currentItems, incomingItems, strategy)
	mergedTree, err := r.objects.PutItemsAsTree(ctx, mergedItems)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = fmt.Sprintf("Merge branch '%s'", displayRevision(revision))
	}
	mergeCommit, err := r.createCommit(ctx, mergedTree, []spgithash.Digest{current, incoming}, message)
	if err != nil {
		return nil, err
	}
	if err := r.advanceHead(ctx, mergeCommit, "merge "+revision, "merge by "+strategy.String()); err != nil {
		return nil, err
	}
	if err := r.resetIndexToCommit(ctx, mergeCommit); err != nil {
		return nil, err
	}
	return &MergeResult{Outcome: MergeOutcomeMerge, Head: mergeCommit}, nil
}

// commitItems returns the items of the commit's tree.
func (r *Repository) commitItems(ctx context.Context, commitDigest spgithash.Digest) ([]spgitobject.Item, error) {
	commit, err := r.objects.GetCommit(ctx, commitDigest)
	if err != nil {
		return nil, err
	}
	return r.objects.GetItemsForTree(ctx, commit.Tree)
}
