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

// Package spgitdiff computes and applies deltas between ordered item lists.
//
// A delta is total and structural: added, removed, and moved items with
// positional information. Moves are detected on the relative order of items
// present on both sides, so inserting one item at the front does not report
// every following item as moved.
package spgitdiff

import (
	"sort"

	"github.com/pap-art/spgit/internal/spgit/spgitobject"
)

// Change is an added or removed item at a position.
type Change struct {
	Item     spgitobject.Item
	Position int
}

// Move is an item present on both sides at different positions.
type Move struct {
	Item        spgitobject.Item
	OldPosition int
	NewPosition int
}

// Changes is the delta between two ordered item lists.
type Changes struct {
	Added   []Change
	Removed []Change
	Moved   []Move
}

// IsEmpty returns true if the delta contains no changes.
func (c *Changes) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Moved) == 0
}

// Invert returns the delta that undoes this one.
func (c *Changes) Invert() *Changes {
	inverted := &Changes{
		Added:   make([]Change, len(c.Removed)),
		Removed: make([]Change, len(c.Added)),
		Moved:   make([]Move, len(c.Moved)),
	}
	copy(inverted.Added, c.Removed)
	copy(inverted.Removed, c.Added)
	for i, move := range c.Moved {
		inverted.Moved[i] = Move{
			Item:        move.Item,
			OldPosition: move.NewPosition,
			NewPosition: move.OldPosition,
		}
	}
	return inverted
}

// Compute returns the delta from oldItems to newItems.
func Compute(oldItems []spgitobject.Item, newItems []spgitobject.Item) *Changes {
	oldIndex := indexByID(oldItems)
	newIndex := indexByID(newItems)
	changes := &Changes{}
	for position, item := range newItems {
		if _, ok := oldIndex[item.ID]; !ok {
			changes.Added = append(changes.Added, Change{Item: item, Position: position})
		}
	}
	for position, item := range oldItems {
		if _, ok := newIndex[item.ID]; !ok {
			changes.Removed = append(changes.Removed, Change{Item: item, Position: position})
		}
	}
	// compare the relative order of common items
	oldCommonRank := commonRanks(oldItems, newIndex)
	newCommonRank := commonRanks(newItems, oldIndex)
	for id, oldRank := range oldCommonRank {
		if newRank, ok := newCommonRank[id]; ok && newRank != oldRank {
			changes.Moved = append(changes.Moved, Move{
				Item:        newItems[newIndex[id]],
				OldPosition: oldIndex[id],
				NewPosition: newIndex[id],
			})
		}
	}
	sort.Slice(changes.Moved, func(i int, j int) bool {
		return changes.Moved[i].NewPosition < changes.Moved[j].NewPosition
	})
	return changes
}

// Apply produces a new item list by applying the delta to items.
//
// Application is total: removals of absent items are no-ops, and insert
// positions are clamped to the list length.
func Apply(items []spgitobject.Item, changes *Changes) []spgitobject.Item {
	removed := make(map[string]struct{}, len(changes.Removed))
	for _, change := range changes.Removed {
		removed[change.Item.ID] = struct{}{}
	}
	result := make([]spgitobject.Item, 0, len(items)+len(changes.Added))
	for _, item := range items {
		if _, ok := removed[item.ID]; ok {
			continue
		}
		result = append(result, item)
	}
	added := make([]Change, len(changes.Added))
	copy(added, changes.Added)
	sort.SliceStable(added, func(i int, j int) bool {
		return added[i].Position < added[j].Position
	})
	present := indexByID(result)
	for _, change := range added {
		if _, ok := present[change.Item.ID]; ok {
			continue
		}
		result = insertAt(result, change.Item, change.Position)
		present = indexByID(result)
	}
	for _, move := range changes.Moved {
		position, ok := indexByID(result)[move.Item.ID]
		if !ok {
			continue
		}
		item := result[position]
		result = append(result[:position], result[position+1:]...)
		result = insertAt(result, item, move.NewPosition)
	}
	for position := range result {
		result[position].Position = position
	}
	return result
}

func insertAt(items []spgitobject.Item, item spgitobject.Item, position int) []spgitobject.Item {
	if position > len(items) {
		position = len(items)
	}
	if position < 0 {
		position = 0
	}
	items = append(items, spgitobject.Item{})
	copy(items[position+1:], items[position:])
	items[position] = item
	return items
}

func indexByID(items []spgitobject.Item) map[string]int {
	index := make(map[string]int, len(items))
	for position, item := range items {
		index[item.ID] = position
	}
	return index
}

func commonRanks(items []spgitobject.Item, other map[string]int) map[string]int {
	ranks := make(map[string]int)
	rank := 0
	for _, item := range items {
		if _, ok := other[item.ID]; ok {
			ranks[item.ID] = rank
			rank++
		}
	}
	return ranks
}
