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

	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgitgraph"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"go.uber.org/zap"
)

// Add stages changes from the remote snapshot of the working list.
//
// With all set, the index is reconciled to the full current snapshot.
// Otherwise only the named item identifiers are applied: identifiers
// present in the snapshot are staged, identifiers absent from it are
// removed from the index.
func (r *Repository) Add(ctx context.Context, itemIDs []string, all bool) error {
	if !all && len(itemIDs) == 0 {
		return NewUserError("nothing specified, nothing added")
	}
	snapshot, err := r.workingSnapshot(ctx)
	if err != nil {
		return err
	}
	if all {
		r.index.StageFrom(snapshot)
	} else {
		r.index.StageSelected(itemIDs, snapshot)
	}
	if err := r.index.Save(); err != nil {
		return err
	}
	r.logger.Debug("staged", zap.Int("items", len(r.index.Items)), zap.Bool("all", all))
	return nil
}

// workingSnapshot fetches the current state of the bound working list from
// the external catalog.
func (r *Repository) workingSnapshot(ctx context.Context) ([]spgitobject.Item, error) {
	if r.remote == nil {
		return nil, NewUserError("no catalog connection available")
	}
	if r.repoConfig.ListID == "" {
		return nil, NewUserError("no working list bound: run 'spgit remote add' or set list_id in %s", configFileName)
	}
	return r.remote.FetchItems(ctx, r.repoConfig.ListID)
}

// Status describes the repository state.
type Status struct {
	// Branch is the checked-out branch, empty when detached.
	Branch string
	// Detached is true when HEAD points directly at a commit.
	Detached bool
	// Head is the current commit digest; zero on an unborn branch.
	Head spgithash.Digest
	// Staged is the delta from HEAD's tree to the index.
	Staged *spgitdiff.Changes
	// IndexModified is the index's modified flag.
	IndexModified bool
	// Ahead and Behind count commits versus the tracked remote ref, when
	// the current branch tracks one.
	Ahead  int
	Behind int
	// Tracking is the tracked remote ref name, if any.
	Tracking string
}

// Status reports the current branch, staged changes, and tracking info.
func (r *Repository) Status(ctx context.Context) (*Status, error) {
	status := &Status{IndexModified: r.index.Modified}
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	status.Branch = branch
	status.Detached = !onBranch
	head, born, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	status.Head = head
	if born {
		commit, err := r.objects.GetCommit(ctx, head)
		if err != nil {
			return nil, err
		}
		status.Staged, err = r.index.DiffAgainst(ctx, r.objects, commit.Tree)
		if err != nil {
			return nil, err
		}
	} else {
		status.Staged = spgitdiff.Compute(nil, r.index.Items)
	}
	if onBranch {
		if tracking, ok := r.repoConfig.Branches[branch]; ok && tracking.Remote != "" {
			mergeBranch := tracking.Merge
			if mergeBranch == "" {
				mergeBranch = branch
			}
			trackingRef := spgitref.RemoteRef(tracking.Remote, mergeBranch)
			if trackingDigest, err := r.refs.Resolve(ctx, trackingRef); err == nil && born {
				status.Tracking = trackingRef
				status.Ahead, status.Behind, err = r.aheadBehind(ctx, head, trackingDigest)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return status, nil
}

// Diff returns the delta between two revisions' trees, or between HEAD's
// tree and the index when both revisions are empty, or between the
// revision's tree and the index when only one is given.
func (r *Repository) Diff(ctx context.Context, fromRevision string, toRevision string) (*spgitdiff.Changes, error) {
	if toRevision == "" {
		baseRevision := fromRevision
		var baseTree spgithash.Digest
		if baseRevision == "" {
			head, born, err := r.Head(ctx)
			if err != nil {
				return nil, err
			}
			if !born {
				return spgitdiff.Compute(nil, r.index.Items), nil
			}
			commit, err := r.objects.GetCommit(ctx, head)
			if err != nil {
				return nil, err
			}
			baseTree = commit.Tree
		} else {
			digest, err := r.ResolveRevision(ctx, baseRevision)
			if err != nil {
				return nil, err
			}
			commit, err := r.objects.GetCommit(ctx, digest)
			if err != nil {
				return nil, err
			}
			baseTree = commit.Tree
		}
		return r.index.DiffAgainst(ctx, r.objects, baseTree)
	}
	fromItems, err := r.revisionItems(ctx, fromRevision)
	if err != nil {
		return nil, err
	}
	toItems, err := r.revisionItems(ctx, toRevision)
	if err != nil {
		return nil, err
	}
	return spgitdiff.Compute(fromItems, toItems), nil
}

func (r *Repository) revisionItems(ctx context.Context, revision string) ([]spgitobject.Item, error) {
	digest, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return nil, err
	}
	commit, err := r.objects.GetCommit(ctx, digest)
	if err != nil {
		return nil, err
	}
	return r.objects.GetItemsForTree(ctx, commit.Tree)
}

func (r *Repository) aheadBehind(ctx context.Context, local spgithash.Digest, remote spgithash.Digest) (int, int, error) {
	localSet, err := spgitgraph.AncestorSet(ctx, r.objects, local)
	if err != nil {
		return 0, 0, err
	}
	remoteSet, err := spgitgraph.AncestorSet(ctx, r.objects, remote)
	if err != nil {
		return 0, 0, err
	}
	ahead := 0
	for digest := range localSet {
		if _, ok := remoteSet[digest]; !ok {
			ahead++
		}
	}
	behind := 0
	for digest := range remoteSet {
		if _, ok := localSet[digest]; !ok {
			behind++
		}
	}
	return ahead, behind, nil
}
