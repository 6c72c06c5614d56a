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

// Package spgitindex is the staging area: a single mutable snapshot of the
// intended next commit's item list, kept separate from HEAD's tree.
//
// The index is a binary file of length-prefixed item records written
// atomically.
package spgitindex

import (
	"context"

	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitstore"
	"go.uber.org/zap"
)

// Index is the staging area.
type Index struct {
	logger *zap.Logger
	path   string

	// Items is the staged ordered item list.
	Items []spgitobject.Item
	// Modified reports whether the index diverged from HEAD's tree since the
	// last sync.
	Modified bool
}

// Load reads the index file, returning an empty index if the file does not
// exist.
func Load(logger *zap.Logger, path string) (*Index, error) {
	index := &Index{
		logger: logger,
		path:   path,
	}
	if err := index.load(); err != nil {
		return nil, err
	}
	return index, nil
}

// StageFrom replaces the staged list with the given items.
func (i *Index) StageFrom(items []spgitobject.Item) {
	i.Items = normalizePositions(items)
	i.Modified = true
}

// StageSelected applies only the named identifiers against the remote
// snapshot: an identifier present in the snapshot is staged (appended if not
// yet staged), an identifier absent from the snapshot is removed from the
// staged list.
func (i *Index) StageSelected(itemIDs []string, snapshot []spgitobject.Item) {
	snapshotByID := make(map[string]spgitobject.Item, len(snapshot))
	for _, item := range snapshot {
		snapshotByID[item.ID] = item
	}
	stagedByID := make(map[string]int, len(i.Items))
	for position, item := range i.Items {
		stagedByID[item.ID] = position
	}
	for _, itemID := range itemIDs {
		snapshotItem, inSnapshot := snapshotByID[itemID]
		stagedPosition, staged := stagedByID[itemID]
		switch {
		case inSnapshot && !staged:
			i.Items = append(i.Items, snapshotItem)
			stagedByID[itemID] = len(i.Items) - 1
		case inSnapshot && staged:
			// refresh metadata in place
			position := i.Items[stagedPosition].Position
			i.Items[stagedPosition] = snapshotItem
			i.Items[stagedPosition].Position = position
		case !inSnapshot && staged:
			i.Items = append(i.Items[:stagedPosition], i.Items[stagedPosition+1:]...)
			delete(stagedByID, itemID)
			for id, position := range stagedByID {
				if position > stagedPosition {
					stagedByID[id] = position - 1
				}
			}
		}
	}
	i.Items = normalizePositions(i.Items)
	i.Modified = true
}

// SetToTree resets the staged list to the tree's items and clears the
// modified flag.
func (i *Index) SetToTree(ctx context.Context, store *spgitstore.Store, treeDigest spgithash.Digest) error {
	items, err := store.GetItemsForTree(ctx, treeDigest)
	if err != nil {
		return err
	}
	i.Items = items
	i.Modified = false
	return nil
}

// Clear empties the staged list and clears the modified flag.
func (i *Index) Clear() {
	i.Items = nil
	i.Modified = false
}

// ToTree writes blobs for every staged item and a Tree preserving order,
// returning the tree digest.
func (i *Index) ToTree(ctx context.Context, store *spgitstore.Store) (spgithash.Digest, error) {
	return store.PutItemsAsTree(ctx, i.Items)
}

// DiffAgainst returns the delta from the tree's items to the staged list.
func (i *Index) DiffAgainst(ctx context.Context, store *spgitstore.Store, treeDigest spgithash.Digest) (*spgitdiff.Changes, error) {
	treeItems, err := store.GetItemsForTree(ctx, treeDigest)
	if err != nil {
		return nil, err
	}
	return spgitdiff.Compute(treeItems, i.Items), nil
}

func normalizePositions(items []spgitobject.Item) []spgitobject.Item {
	normalized := make([]spgitobject.Item, len(items))
	copy(normalized, items)
	for position := range normalized {
		normalized[position].Position = position
	}
	return normalized
}
