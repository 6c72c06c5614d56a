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
	"strings"

	"github.com/pap-art/spgit/internal/spgit/spgitgraph"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
)

// BranchInfo describes one branch.
type BranchInfo struct {
	Name    string
	Digest  spgithash.Digest
	Current bool
}

// BranchCreate creates a branch at the given revision (default HEAD).
func (r *Repository) BranchCreate(ctx context.Context, name string, revision string) error {
	if name == "" || strings.Contains(name, "/") {
		return NewUserError("invalid branch name %q", name)
	}
	refName := spgitref.BranchRef(name)
	if _, err := r.refs.Read(ctx, refName); err == nil {
		return NewUserError("branch %s already exists", name)
	} else if !spgitref.IsNotExist(err) {
		return err
	}
	digest, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return err
	}
	zero := spgithash.Digest{}
	return r.refs.Update(ctx, refName, &zero, digest, r.newLogRecord("branch", "created from "+displayRevision(revision)))
}

// BranchList lists branches sorted by name.
func (r *Repository) BranchList(ctx context.Context) ([]BranchInfo, error) {
	refs, err := r.refs.List(ctx, spgitref.BranchPrefix)
	if err != nil {
		return nil, err
	}
	current, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]BranchInfo, 0, len(refs))
	for _, ref := range refs {
		name, _ := spgitref.BranchName(ref.Name)
		infos = append(infos, BranchInfo{
			Name:    name,
			Digest:  ref.Digest,
			Current: onBranch && name == current,
		})
	}
	return infos, nil
}

// BranchDelete deletes a branch.
//
// The checked-out branch cannot be deleted. A branch not merged into HEAD
// is only deleted with force.
func (r *Repository) BranchDelete(ctx context.Context, name string, force bool) error {
	refName := spgitref.BranchRef(name)
	current, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if onBranch && current == name {
		return NewUserError("cannot delete the checked-out branch %s", name)
	}
	digest, err := r.refs.Resolve(ctx, refName)
	if err != nil {
		if spgitref.IsNotExist(err) {
			return NewUserError("branch %s does not exist", name)
		}
		return err
	}
	if !force {
		head, born, err := r.Head(ctx)
		if err != nil {
			return err
		}
		merged := false
		if born {
			merged, err = spgitgraph.IsAncestor(ctx, r.objects, digest, head)
			if err != nil {
				return err
			}
		}
		if !merged {
			return NewUserError("branch %s is not fully merged (use force to delete anyway)", name)
		}
	}
	return r.refs.Delete(ctx, refName)
}

// Checkout moves HEAD to a branch, or detaches it at an arbitrary commit.
//
// A modified index blocks checkout: commit or stash first.
func (r *Repository) Checkout(ctx context.Context, revision string) error {
	if r.index.Modified {
		return NewUserError("your staged changes would be overwritten: commit or stash them first")
	}
	oldHead, _, err := r.Head(ctx)
	if err != nil {
		return err
	}
	current, _, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	branchRefName := spgitref.BranchRef(revision)
	if _, err := r.refs.Read(ctx, branchRefName); err == nil {
		newHead, err := r.refs.Resolve(ctx, branchRefName)
		if err != nil {
			return err
		}
		record := r.newLogRecord("checkout", "moving from "+displayBranch(current)+" to "+revision)
		record.Old = oldHead
		record.New = newHead
		if err := r.refs.SetSymbolic(ctx, spgitref.HEAD, branchRefName, record); err != nil {
			return err
		}
		return r.resetIndexToCommit(ctx, newHead)
	} else if !spgitref.IsNotExist(err) {
		return err
	}
	digest, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return err
	}
	record := r.newLogRecord("checkout", "moving from "+displayBranch(current)+" to "+digest.String())
	record.Old = oldHead
	record.New = digest
	if err := r.refs.SetDetached(ctx, spgitref.HEAD, digest, record); err != nil {
		return err
	}
	return r.resetIndexToCommit(ctx, digest)
}

// TagInfo describes one tag.
type TagInfo struct {
	Name string
	// Digest is the ref target: the tag object for annotated tags, the
	// commit for lightweight tags.
	Digest spgithash.Digest
	// Annotated reports whether the ref points at a Tag object.
	Annotated bool
	// Message is the annotation message, empty for lightweight tags.
	Message string
}

// TagCreate creates a tag at the revision (default HEAD). With a message,
// an annotated Tag object is stored and the ref points at it; otherwise
// the tag is lightweight.
func (r *Repository) TagCreate(ctx context.Context, name string, revision string, message string) error {
	if name == "" {
		return NewUserError("invalid tag name %q", name)
	}
	refName := spgitref.TagRef(name)
	if _, err := r.refs.Read(ctx, refName); err == nil {
		return NewUserError("tag %s already exists", name)
	} else if !spgitref.IsNotExist(err) {
		return err
	}
	target, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return err
	}
	refTarget := target
	if message != "" {
		refTarget, err = r.objects.PutTag(ctx, &spgitobject.Tag{
			Object:     target,
			ObjectKind: spgitobject.KindCommit,
			Name:       name,
			Tagger:     r.signature(),
			Message:    message,
		})
		if err != nil {
			return err
		}
	}
	zero := spgithash.Digest{}
	return r.refs.Update(ctx, refName, &zero, refTarget, r.newLogRecord("tag", name))
}

// TagList lists tags sorted by name.
func (r *Repository) TagList(ctx context.Context) ([]TagInfo, error) {
	refs, err := r.refs.List(ctx, spgitref.TagPrefix)
	if err != nil {
		return nil, err
	}
	infos := make([]TagInfo, 0, len(refs))
	for _, ref := range refs {
		info := TagInfo{
			Name:   strings.TrimPrefix(ref.Name, spgitref.TagPrefix),
			Digest: ref.Digest,
		}
		kind, payload, err := r.objects.Get(ctx, ref.Digest)
		if err != nil {
			return nil, err
		}
		if kind == spgitobject.KindTag {
			tag, err := spgitobject.UnmarshalTag(payload)
			if err != nil {
				return nil, err
			}
			info.Annotated = true
			info.Message = tag.Message
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// TagDelete deletes a tag.
func (r *Repository) TagDelete(ctx context.Context, name string) error {
	err := r.refs.Delete(ctx, spgitref.TagRef(name))
	if spgitref.IsNotExist(err) {
		return NewUserError("tag %s does not exist", name)
	}
	return err
}

// resetIndexToCommit loads the commit's tree into the index and saves it.
func (r *Repository) resetIndexToCommit(ctx context.Context, commitDigest spgithash.Digest) error {
	commit, err := r.objects.GetCommit(ctx, commitDigest)
	if err != nil {
		return err
	}
	if err := r.index.SetToTree(ctx, r.objects, commit.Tree); err != nil {
		return err
	}
	return r.index.Save()
}

func displayBranch(branch string) string {
	if branch == "" {
		return "detached HEAD"
	}
	return branch
}

func displayRevision(revision string) string {
	if revision == "" {
		return spgitref.HEAD
	}
	return revision
}
