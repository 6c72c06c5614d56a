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

	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgitgraph"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"go.uber.org/zap"
)

const (
	// ResetSoft moves the ref only; the index is untouched.
	ResetSoft ResetMode = iota + 1
	// ResetMixed moves the ref and resets the index to the target's tree.
	// The default.
	ResetMixed
	// ResetHard is ResetMixed locally; the next push overwrites the
	// remote list.
	ResetHard
)

// ResetMode selects how much state reset touches.
type ResetMode int

// Reset moves HEAD (and the current branch) to the revision.
func (r *Repository) Reset(ctx context.Context, revision string, mode ResetMode) error {
	target, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return err
	}
	if err := r.advanceHead(ctx, target, "reset", "moving to "+displayRevision(revision)); err != nil {
		return err
	}
	if mode == ResetSoft {
		return nil
	}
	return r.resetIndexToCommit(ctx, target)
}

// Revert creates a new commit on HEAD that undoes the changes the given
// commit introduced over its first parent.
func (r *Repository) Revert(ctx context.Context, revision string) (spgithash.Digest, error) {
	target, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return spgithash.Digest{}, err
	}
	targetCommit, err := r.objects.GetCommit(ctx, target)
	if err != nil {
		return spgithash.Digest{}, err
	}
	targetItems, err := r.objects.GetItemsForTree(ctx, targetCommit.Tree)
	if err != nil {
		return spgithash.Digest{}, err
	}
	var parentItems []spgitobject.Item
	if len(targetCommit.Parents) > 0 {
		parentItems, err = r.commitItems(ctx, targetCommit.Parents[0])
		if err != nil {
			return spgithash.Digest{}, err
		}
	}
	delta := spgitdiff.Compute(parentItems, targetItems)
	message := fmt.Sprintf("Revert %q", targetCommit.Subject())
	newHead, _, err := r.applyDeltaAsCommit(ctx, delta.Invert(), message, "revert")
	if err != nil {
		return spgithash.Digest{}, err
	}
	return newHead, nil
}

// CherryPick applies the delta of the given commit versus its first parent
// on top of HEAD as a new commit.
//
// An empty resulting delta (HEAD already contains the change) is a no-op
// and returns HEAD unchanged with created=false.
func (r *Repository) CherryPick(ctx context.Context, revision string) (spgithash.Digest, bool, error) {
	target, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	return r.cherryPickDigest(ctx, target)
}

func (r *Repository) cherryPickDigest(ctx context.Context, target spgithash.Digest) (spgithash.Digest, bool, error) {
	targetCommit, err := r.objects.GetCommit(ctx, target)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	targetItems, err := r.objects.GetItemsForTree(ctx, targetCommit.Tree)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	var parentItems []spgitobject.Item
	if len(targetCommit.Parents) > 0 {
		parentItems, err = r.commitItems(ctx, targetCommit.Parents[0])
		if err != nil {
			return spgithash.Digest{}, false, err
		}
	}
	delta := spgitdiff.Compute(parentItems, targetItems)
	message := fmt.Sprintf("%s\n\n(cherry picked from commit %s)", targetCommit.Message, target.String())
	return r.applyDeltaAsCommit(ctx, delta, message, "cherry-pick")
}

// applyDeltaAsCommit applies the delta to HEAD's items and commits the
// result, advancing HEAD. Returns created=false when the delta does not
// change HEAD's tree.
func (r *Repository) applyDeltaAsCommit(
	ctx context.Context,
	delta *spgitdiff.Changes,
	message string,
	action string,
) (spgithash.Digest, bool, error) {
	head, born, err := r.Head(ctx)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	if !born {
		return spgithash.Digest{}, false, NewUserError("HEAD is unborn: create the first commit")
	}
	headItems, err := r.commitItems(ctx, head)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	resultItems := spgitdiff.Apply(headItems, delta)
	resultTree, err := r.objects.PutItemsAsTree(ctx, resultItems)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	headCommit, err := r.objects.GetCommit(ctx, head)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	if resultTree == headCommit.Tree {
		return head, false, nil
	}
	newHead, err := r.createCommit(ctx, resultTree, []spgithash.Digest{head}, message)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	if err := r.advanceHead(ctx, newHead, action, firstLine(message)); err != nil {
		return spgithash.Digest{}, false, err
	}
	if err := r.resetIndexToCommit(ctx, newHead); err != nil {
		return spgithash.Digest{}, false, err
	}
	return newHead, true, nil
}

// RebaseResult describes a completed rebase.
type RebaseResult struct {
	// Head is the resulting HEAD commit.
	Head spgithash.Digest
	// Replayed is the number of commits replayed onto the upstream.
	Replayed int
}

// Rebase replays the commits reachable from HEAD but not from upstream, in
// oldest-first order, on top of upstream.
//
// On any error the repository is rolled back to the pre-rebase HEAD, found
// by consulting the branch reflog for the entry the rebase start wrote.
func (r *Repository) Rebase(ctx context.Context, upstream string) (*RebaseResult, error) {
	if r.index.Modified {
		return nil, NewUserError("your staged changes would be overwritten: commit or stash them first")
	}
	upstreamDigest, err := r.ResolveRevision(ctx, upstream)
	if err != nil {
		return nil, err
	}
	head, born, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	if !born {
		return nil, NewUserError("HEAD is unborn: create the first commit")
	}
	toReplay, err := r.commitsToReplay(ctx, head, upstreamDigest)
	if err != nil {
		return nil, err
	}
	if len(toReplay) == 0 {
		// nothing exclusive to HEAD: a plain fast-forward to upstream
		if head != upstreamDigest {
			isAncestor, err := spgitgraph.IsAncestor(ctx, r.objects, upstreamDigest, head)
			if err != nil {
				return nil, err
			}
			if !isAncestor {
				if err := r.advanceHead(ctx, upstreamDigest, "rebase", "fast-forward to "+upstream); err != nil {
					return nil, err
				}
				if err := r.resetIndexToCommit(ctx, upstreamDigest); err != nil {
					return nil, err
				}
				return &RebaseResult{Head: upstreamDigest}, nil
			}
		}
		return &RebaseResult{Head: head}, nil
	}
	rebaseStartAction := "rebase"
	if err := r.advanceHead(ctx, upstreamDigest, rebaseStartAction, "checkout "+upstream); err != nil {
		return nil, err
	}
	if err := r.resetIndexToCommit(ctx, upstreamDigest); err != nil {
		return nil, err
	}
	replayed := 0
	for _, commitDigest := range toReplay {
		if _, _, err := r.cherryPickDigest(ctx, commitDigest); err != nil {
			rollbackErr := r.rollbackRebase(ctx, rebaseStartAction, head)
			if rollbackErr != nil {
				return nil, fmt.Errorf("rebase failed (%v) and rollback failed: %w", err, rollbackErr)
			}
			return nil, fmt.Errorf("rebase aborted, HEAD restored: %w", err)
		}
		replayed++
	}
	newHead, _, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug(
		"rebase complete",
		zap.String("upstream", upstream),
		zap.Int("replayed", replayed),
	)
	return &RebaseResult{Head: newHead, Replayed: replayed}, nil
}

// commitsToReplay returns commits reachable from head but not from
// upstream, oldest first.
func (r *Repository) commitsToReplay(ctx context.Context, head spgithash.Digest, upstream spgithash.Digest) ([]spgithash.Digest, error) {
	upstreamSet, err := spgitgraph.AncestorSet(ctx, r.objects, upstream)
	if err != nil {
		return nil, err
	}
	fromHead, err := spgitgraph.Ancestors(ctx, r.objects, head)
	if err != nil {
		return nil, err
	}
	var exclusive []spgithash.Digest
	for _, digest := range fromHead {
		if _, ok := upstreamSet[digest]; !ok {
			exclusive = append(exclusive, digest)
		}
	}
	// breadth-first from head yields newest first; replay oldest first
	for i, j := 0, len(exclusive)-1; i < j; i, j = i+1, j-1 {
		exclusive[i], exclusive[j] = exclusive[j], exclusive[i]
	}
	return exclusive, nil
}

// rollbackRebase restores the pre-rebase HEAD. The reflog is the source of
// truth: the newest entry whose action matches the rebase start tells us
// the digest HEAD had before the rebase moved it; the in-memory digest is
// the fallback.
func (r *Repository) rollbackRebase(ctx context.Context, rebaseAction string, fallback spgithash.Digest) error {
	restoreTo := fallback
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	logRef := spgitref.HEAD
	if onBranch {
		logRef = spgitref.BranchRef(branch)
	}
	records, err := r.refs.ReadLog(ctx, logRef)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.Action == rebaseAction && record.Message != "" {
			restoreTo = record.Old
			break
		}
	}
	if err := r.advanceHead(ctx, restoreTo, "rebase", "abort: returning to "+restoreTo.String()); err != nil {
		return err
	}
	return r.resetIndexToCommit(ctx, restoreTo)
}
