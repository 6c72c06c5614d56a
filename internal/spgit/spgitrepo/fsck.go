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
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
)

// Fsck verifies repository integrity and returns a report line per
// problem found. An empty report means a healthy repository.
//
// Checked: every stored object re-hashes to its digest and parses; every
// digest referenced by a stored object resolves (referential closure);
// every branch ref targets a commit; HEAD names a branch under refs/heads
// or, when detached, an existing object.
func (r *Repository) Fsck(ctx context.Context) ([]string, error) {
	var problems []string
	err := r.objects.Walk(ctx, func(digest spgithash.Digest) error {
		kind, payload, err := r.objects.Get(ctx, digest)
		if err != nil {
			problems = append(problems, fmt.Sprintf("object %s: %v", digest.String(), err))
			return nil
		}
		switch kind {
		case spgitobject.KindTree:
			tree, err := spgitobject.UnmarshalTree(payload)
			if err != nil {
				problems = append(problems, fmt.Sprintf("tree %s: %v", digest.String(), err))
				return nil
			}
			for _, entry := range tree.Entries {
				problems = r.checkExists(ctx, problems, entry.BlobDigest, fmt.Sprintf("tree %s entry %s", digest.Short(), entry.ItemID))
			}
		case spgitobject.KindCommit:
			commit, err := spgitobject.UnmarshalCommit(payload)
			if err != nil {
				problems = append(problems, fmt.Sprintf("commit %s: %v", digest.String(), err))
				return nil
			}
			problems = r.checkExists(ctx, problems, commit.Tree, fmt.Sprintf("commit %s tree", digest.Short()))
			for _, parent := range commit.Parents {
				problems = r.checkExists(ctx, problems, parent, fmt.Sprintf("commit %s parent", digest.Short()))
			}
		case spgitobject.KindTag:
			tag, err := spgitobject.UnmarshalTag(payload)
			if err != nil {
				problems = append(problems, fmt.Sprintf("tag %s: %v", digest.String(), err))
				return nil
			}
			problems = r.checkExists(ctx, problems, tag.Object, fmt.Sprintf("tag %s object", digest.Short()))
		case spgitobject.KindBlob:
			if _, err := spgitobject.UnmarshalBlob(payload); err != nil {
				problems = append(problems, fmt.Sprintf("blob %s: %v", digest.String(), err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	refs, err := r.refs.List(ctx, "refs/")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if ref.IsSymbolic() {
			continue
		}
		kind, _, err := r.objects.Get(ctx, ref.Digest)
		if err != nil {
			problems = append(problems, fmt.Sprintf("ref %s: %v", ref.Name, err))
			continue
		}
		if branch, ok := spgitref.BranchName(ref.Name); ok && kind != spgitobject.KindCommit {
			problems = append(problems, fmt.Sprintf("branch %s targets a %s, not a commit", branch, kind.String()))
		}
	}
	headRef, err := r.refs.Read(ctx, spgitref.HEAD)
	if err != nil {
		problems = append(problems, fmt.Sprintf("HEAD: %v", err))
	} else if headRef.IsSymbolic() {
		if _, ok := spgitref.BranchName(headRef.SymbolicTarget); !ok {
			problems = append(problems, fmt.Sprintf("HEAD points outside refs/heads: %s", headRef.SymbolicTarget))
		}
	} else {
		problems = r.checkExists(ctx, problems, headRef.Digest, "HEAD")
	}
	return problems, nil
}

func (r *Repository) checkExists(ctx context.Context, problems []string, digest spgithash.Digest, what string) []string {
	exists, err := r.objects.Exists(ctx, digest)
	if err != nil {
		return append(problems, fmt.Sprintf("%s: %v", what, err))
	}
	if !exists {
		return append(problems, fmt.Sprintf("%s: missing object %s", what, digest.String()))
	}
	return problems
}
