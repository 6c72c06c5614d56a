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

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"go.uber.org/zap"
)

// StashEntry is one entry of the stash stack. Position 0 is the top.
type StashEntry struct {
	Position int
	Digest   spgithash.Digest
	Message  string
}

// StashSave commits the staged index as a stash entry, pushes it onto
// refs/stash, and restores the index to HEAD's tree.
//
// The stash stack lives in the reflog of refs/stash; the ref itself holds
// the top entry.
func (r *Repository) StashSave(ctx context.Context, message string) (spgithash.Digest, error) {
	if !r.index.Modified {
		return spgithash.Digest{}, NewUserError("no local changes to save")
	}
	head, born, err := r.Head(ctx)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if !born {
		return spgithash.Digest{}, NewUserError("cannot stash on an unborn branch")
	}
	branch, _, err := r.CurrentBranch(ctx)
	if err != nil {
		return spgithash.Digest{}, err
	}
	treeDigest, err := r.index.ToTree(ctx, r.objects)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if message == "" {
		headCommit, err := r.objects.GetCommit(ctx, head)
		if err != nil {
			return spgithash.Digest{}, err
		}
		message = fmt.Sprintf("WIP on %s: %s %s", displayBranch(branch), head.Short(), headCommit.Subject())
	} else {
		message = fmt.Sprintf("On %s: %s", displayBranch(branch), message)
	}
	stashDigest, err := r.createCommit(ctx, treeDigest, []spgithash.Digest{head}, message)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if err := r.refs.Update(ctx, spgitref.StashRef, nil, stashDigest, r.newLogRecord("stash", message)); err != nil {
		return spgithash.Digest{}, err
	}
	if err := r.resetIndexToCommit(ctx, head); err != nil {
		return spgithash.Digest{}, err
	}
	return stashDigest, nil
}

// StashList returns the stash stack, top first.
func (r *Repository) StashList(ctx context.Context) ([]StashEntry, error) {
	records, err := r.refs.ReadLog(ctx, spgitref.StashRef)
	if err != nil {
		return nil, err
	}
	entries := make([]StashEntry, 0, len(records))
	for position, record := range records {
		entries = append(entries, StashEntry{
			Position: position,
			Digest:   record.New,
			Message:  record.Message,
		})
	}
	return entries, nil
}

// StashApply sets the index to the union of HEAD's tree and the stash
// entry at the position, without removing it from the stack. Whatever the
// index held before is replaced.
func (r *Repository) StashApply(ctx context.Context, position int) error {
	entry, _, err := r.stashEntryAt(ctx, position)
	if err != nil {
		return err
	}
	stashItems, err := r.commitItems(ctx, entry.Digest)
	if err != nil {
		return err
	}
	headItems, err := r.headItems(ctx)
	if err != nil {
		return err
	}
	merged := spgitmerge.Combine(headItems, stashItems, spgitmerge.StrategyUnion)
	r.index.StageFrom(merged)
	return r.index.Save()
}

// StashPop applies the entry at the position and drops it from the stack.
func (r *Repository) StashPop(ctx context.Context, position int) error {
	if err := r.StashApply(ctx, position); err != nil {
		return err
	}
	return r.StashDrop(ctx, position)
}

// StashDrop removes the entry at the position from the stack.
func (r *Repository) StashDrop(ctx context.Context, position int) error {
	entry, records, err := r.stashEntryAt(ctx, position)
	if err != nil {
		return err
	}
	remaining := append(append([]spgitref.LogRecord{}, records[:position]...), records[position+1:]...)
	if err := r.refs.RewriteLog(ctx, spgitref.StashRef, remaining); err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := r.refs.Delete(ctx, spgitref.StashRef); err != nil && !spgitref.IsNotExist(err) {
			return err
		}
		return nil
	}
	r.logger.Debug("stash dropped", zap.String("digest", entry.Digest.String()))
	return r.refs.WriteRef(ctx, spgitref.StashRef, remaining[0].New)
}

func (r *Repository) stashEntryAt(ctx context.Context, position int) (StashEntry, []spgitref.LogRecord, error) {
	records, err := r.refs.ReadLog(ctx, spgitref.StashRef)
	if err != nil {
		return StashEntry{}, nil, err
	}
	if len(records) == 0 {
		return StashEntry{}, nil, NewUserError("the stash is empty")
	}
	if position < 0 || position >= len(records) {
		return StashEntry{}, nil, NewUserError("stash entry %d does not exist (stack has %d entries)", position, len(records))
	}
	return StashEntry{
		Position: position,
		Digest:   records[position].New,
		Message:  records[position].Message,
	}, records, nil
}
