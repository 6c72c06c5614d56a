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

package spgitstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
)

var errWrongKind = errors.New("wrong object kind")

// IsWrongKind returns true if the error reports an object of an unexpected
// kind, for example a tree digest where a commit was required.
func IsWrongKind(err error) bool {
	return errors.Is(err, errWrongKind)
}

// PutBlob stores the item as a Blob and returns its digest.
func (s *Store) PutBlob(ctx context.Context, item spgitobject.Item) (spgithash.Digest, error) {
	payload, err := spgitobject.MarshalBlob(item)
	if err != nil {
		return spgithash.Digest{}, err
	}
	return s.Put(ctx, spgitobject.KindBlob, payload)
}

// GetBlob reads the Blob for the digest.
func (s *Store) GetBlob(ctx context.Context, digest spgithash.Digest) (spgitobject.Item, error) {
	payload, err := s.getKind(ctx, digest, spgitobject.KindBlob)
	if err != nil {
		return spgitobject.Item{}, err
	}
	return spgitobject.UnmarshalBlob(payload)
}

// PutTree stores the tree and returns its digest.
func (s *Store) PutTree(ctx context.Context, tree *spgitobject.Tree) (spgithash.Digest, error) {
	payload, err := spgitobject.MarshalTree(tree)
	if err != nil {
		return spgithash.Digest{}, err
	}
	return s.Put(ctx, spgitobject.KindTree, payload)
}

// GetTree reads the Tree for the digest.
func (s *Store) GetTree(ctx context.Context, digest spgithash.Digest) (*spgitobject.Tree, error) {
	payload, err := s.getKind(ctx, digest, spgitobject.KindTree)
	if err != nil {
		return nil, err
	}
	return spgitobject.UnmarshalTree(payload)
}

// PutCommit stores the commit and returns its digest.
func (s *Store) PutCommit(ctx context.Context, commit *spgitobject.Commit) (spgithash.Digest, error) {
	payload, err := spgitobject.MarshalCommit(commit)
	if err != nil {
		return spgithash.Digest{}, err
	}
	return s.Put(ctx, spgitobject.KindCommit, payload)
}

// GetCommit reads the Commit for the digest.
func (s *Store) GetCommit(ctx context.Context, digest spgithash.Digest) (*spgitobject.Commit, error) {
	payload, err := s.getKind(ctx, digest, spgitobject.KindCommit)
	if err != nil {
		return nil, err
	}
	return spgitobject.UnmarshalCommit(payload)
}

// PutTag stores the tag and returns its digest.
func (s *Store) PutTag(ctx context.Context, tag *spgitobject.Tag) (spgithash.Digest, error) {
	payload, err := spgitobject.MarshalTag(tag)
	if err != nil {
		return spgithash.Digest{}, err
	}
	return s.Put(ctx, spgitobject.KindTag, payload)
}

// GetTag reads the Tag for the digest.
func (s *Store) GetTag(ctx context.Context, digest spgithash.Digest) (*spgitobject.Tag, error) {
	payload, err := s.getKind(ctx, digest, spgitobject.KindTag)
	if err != nil {
		return nil, err
	}
	return spgitobject.UnmarshalTag(payload)
}

// PutItemsAsTree writes a blob for every item and a tree over them with
// positions assigned 0..n-1 in the given order, returning the tree digest.
func (s *Store) PutItemsAsTree(ctx context.Context, items []spgitobject.Item) (spgithash.Digest, error) {
	tree := &spgitobject.Tree{Entries: make([]spgitobject.TreeEntry, 0, len(items))}
	for position, item := range items {
		item.Position = position
		blobDigest, err := s.PutBlob(ctx, item)
		if err != nil {
			return spgithash.Digest{}, err
		}
		tree.Entries = append(tree.Entries, spgitobject.TreeEntry{
			Position:    position,
			ItemID:      item.ID,
			BlobDigest:  blobDigest,
			DisplayName: item.Name,
		})
	}
	return s.PutTree(ctx, tree)
}

// GetItemsForTree reads the tree and resolves every entry's blob, returning
// the items in position order.
func (s *Store) GetItemsForTree(ctx context.Context, treeDigest spgithash.Digest) ([]spgitobject.Item, error) {
	tree, err := s.GetTree(ctx, treeDigest)
	if err != nil {
		return nil, err
	}
	items := make([]spgitobject.Item, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		item, err := s.GetBlob(ctx, entry.BlobDigest)
		if err != nil {
			return nil, err
		}
		item.Position = entry.Position
		items = append(items, item)
	}
	return items, nil
}

// GetTreeForCommit reads the commit and then its tree.
func (s *Store) GetTreeForCommit(ctx context.Context, commitDigest spgithash.Digest) (*spgitobject.Tree, error) {
	commit, err := s.GetCommit(ctx, commitDigest)
	if err != nil {
		return nil, err
	}
	return s.GetTree(ctx, commit.Tree)
}

func (s *Store) getKind(ctx context.Context, digest spgithash.Digest, expected spgitobject.Kind) ([]byte, error) {
	kind, payload, err := s.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	if kind != expected {
		return nil, fmt.Errorf("object %s: %w: expected %s, got %s", digest.String(), errWrongKind, expected.String(), kind.String())
	}
	return payload, nil
}
