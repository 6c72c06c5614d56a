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

package spgitobject

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
)

// TreeEntry is one line of a Tree: an item at a position, pointing at the
// blob that carries the item's metadata.
type TreeEntry struct {
	Position    int
	ItemID      string
	BlobDigest  spgithash.Digest
	DisplayName string
}

// Tree is an ordered playlist snapshot.
//
// Ordering is significant and part of the content hash: two trees with the
// same items in different order have different digests.
type Tree struct {
	Entries []TreeEntry
}

// ItemIDs returns the item identifiers in position order.
func (t *Tree) ItemIDs() []string {
	ids := make([]string, len(t.Entries))
	for i, entry := range t.Entries {
		ids[i] = entry.ItemID
	}
	return ids
}

// Entry returns the entry for the item identifier, or nil.
func (t *Tree) Entry(itemID string) *TreeEntry {
	for i := range t.Entries {
		if t.Entries[i].ItemID == itemID {
			return &t.Entries[i]
		}
	}
	return nil
}

// MarshalTree returns the canonical payload of a Tree: one line per entry,
// "<position>\t<item-id>\t<blob-digest>\t<display-name>\n", sorted by
// ascending position.
func MarshalTree(tree *Tree) ([]byte, error) {
	entries := make([]TreeEntry, len(tree.Entries))
	copy(entries, tree.Entries)
	sort.SliceStable(entries, func(i int, j int) bool {
		return entries[i].Position < entries[j].Position
	})
	buffer := bytes.NewBuffer(nil)
	for _, entry := range entries {
		fmt.Fprintf(
			buffer,
			"%d\t%s\t%s\t%s\n",
			entry.Position,
			entry.ItemID,
			entry.BlobDigest.String(),
			entry.DisplayName,
		)
	}
	return buffer.Bytes(), nil
}

// UnmarshalTree parses a Tree payload.
func UnmarshalTree(payload []byte) (*Tree, error) {
	tree := &Tree{}
	if len(payload) == 0 {
		return tree, nil
	}
	for lineNumber, line := range strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n") {
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) != 4 {
			return nil, NewCorruptError("tree line %d: expected 4 fields, got %d", lineNumber+1, len(fields))
		}
		position, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, NewCorruptError("tree line %d: invalid position %q", lineNumber+1, fields[0])
		}
		blobDigest, err := spgithash.ParseDigest(fields[2])
		if err != nil {
			return nil, NewCorruptError("tree line %d: %v", lineNumber+1, err)
		}
		tree.Entries = append(tree.Entries, TreeEntry{
			Position:    position,
			ItemID:      fields[1],
			BlobDigest:  blobDigest,
			DisplayName: fields[3],
		})
	}
	return tree, nil
}
