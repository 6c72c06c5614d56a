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

// Package spgitgraph walks the commit DAG: lazy breadth-first ancestor
// enumeration, ancestry tests, and merge-base search.
package spgitgraph

import (
	"context"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitstore"
)

// Node is a commit yielded by a Walker.
type Node struct {
	Digest spgithash.Digest
	Commit *spgitobject.Commit
}

// Walker lazily enumerates a commit and all commits reachable via parent
// links, breadth-first. Each commit is yielded once.
type Walker struct {
	ctx   context.Context
	store *spgitstore.Store
	queue []spgithash.Digest
	seen  map[spgithash.Digest]struct{}
}

// NewWalker returns a Walker starting at from.
func NewWalker(ctx context.Context, store *spgitstore.Store, from spgithash.Digest) *Walker {
	return &Walker{
		ctx:   ctx,
		store: store,
		queue: []spgithash.Digest{from},
		seen:  map[spgithash.Digest]struct{}{from: {}},
	}
}

// Next returns the next commit, or nil when the walk is exhausted.
func (w *Walker) Next() (*Node, error) {
	if len(w.queue) == 0 {
		return nil, nil
	}
	digest := w.queue[0]
	w.queue = w.queue[1:]
	commit, err := w.store.GetCommit(w.ctx, digest)
	if err != nil {
		return nil, err
	}
	for _, parent := range commit.Parents {
		if _, ok := w.seen[parent]; ok {
			continue
		}
		w.seen[parent] = struct{}{}
		w.queue = append(w.queue, parent)
	}
	return &Node{Digest: digest, Commit: commit}, nil
}

// Ancestors returns the digests of from and every commit reachable from it,
// in breadth-first order.
func Ancestors(ctx context.Context, store *spgitstore.Store, from spgithash.Digest) ([]spgithash.Digest, error) {
	walker := NewWalker(ctx, store, from)
	var digests []spgithash.Digest
	for {
		node, err := walker.Next()
		if err != nil {
			return nil, err
		}
		if node == nil {
			return digests, nil
		}
		digests = append(digests, node.Digest)
	}
}

// AncestorSet returns the ancestor digests of from as a set.
func AncestorSet(ctx context.Context, store *spgitstore.Store, from spgithash.Digest) (map[spgithash.Digest]struct{}, error) {
	digests, err := Ancestors(ctx, store, from)
	if err != nil {
		return nil, err
	}
	set := make(map[spgithash.Digest]struct{}, len(digests))
	for _, digest := range digests {
		set[digest] = struct{}{}
	}
	return set, nil
}

// IsAncestor returns true if a is b or an ancestor of b.
func IsAncestor(ctx context.Context, store *spgitstore.Store, a spgithash.Digest, b spgithash.Digest) (bool, error) {
	walker := NewWalker(ctx, store, b)
	for {
		node, err := walker.Next()
		if err != nil {
			return false, err
		}
		if node == nil {
			return false, nil
		}
		if node.Digest == a {
			return true, nil
		}
	}
}

// MergeBase returns the lowest common ancestor of a and b.
//
// Among all common ancestors the one with the greatest commit timestamp
// wins, with the digest string as a stable tie-break. Returns ok=false if
// the histories are disjoint.
func MergeBase(
	ctx context.Context,
	store *spgitstore.Store,
	a spgithash.Digest,
	b spgithash.Digest,
) (spgithash.Digest, bool, error) {
	ancestorsOfB, err := AncestorSet(ctx, store, b)
	if err != nil {
		return spgithash.Digest{}, false, err
	}
	walker := NewWalker(ctx, store, a)
	var (
		found      bool
		best       spgithash.Digest
		bestUnix   int64
		bestDigest string
	)
	for {
		node, err := walker.Next()
		if err != nil {
			return spgithash.Digest{}, false, err
		}
		if node == nil {
			break
		}
		if _, ok := ancestorsOfB[node.Digest]; !ok {
			continue
		}
		unix := node.Commit.Committer.Unix
		hexDigest := node.Digest.String()
		if !found || unix > bestUnix || (unix == bestUnix && hexDigest > bestDigest) {
			found = true
			best = node.Digest
			bestUnix = unix
			bestDigest = hexDigest
		}
	}
	return best, found, nil
}
