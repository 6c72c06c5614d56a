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

// Package spgitmerge combines ordered item lists under deterministic, total
// strategies. No conflict state is ever surfaced: conflicts are resolved
// structurally, not interactively.
package spgitmerge

import (
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgitobject"
)

const (
	// StrategyUnion keeps the current ordering and appends incoming items
	// not already present, in incoming order. The default.
	StrategyUnion Strategy = iota + 1
	// StrategyAppend appends every incoming item without deduplication.
	// With an item model keyed by identifier this is functionally identical
	// to union.
	StrategyAppend
	// StrategyIntersection keeps items present on both sides, in current
	// order.
	StrategyIntersection
)

// Strategy is a merge strategy.
type Strategy int

// String returns the strategy name as accepted on the command line.
func (s Strategy) String() string {
	switch s {
	case StrategyUnion:
		return "union"
	case StrategyAppend:
		return "append"
	case StrategyIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name. The empty string is union.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "union", "":
		return StrategyUnion, nil
	case "append":
		return StrategyAppend, nil
	case "intersection":
		return StrategyIntersection, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q (expected one of [union,append,intersection])", s)
	}
}

// Combine merges incoming into current under the strategy.
//
// Strategies are total over any pair of inputs; the base tree of a
// three-way merge only determines fast-forward and up-to-date outcomes,
// which the caller detects before combining.
func Combine(current []spgitobject.Item, incoming []spgitobject.Item, strategy Strategy) []spgitobject.Item {
	switch strategy {
	case StrategyAppend:
		// deduplicated all the same: the item model is keyed by identifier
		return union(current, incoming)
	case StrategyIntersection:
		return intersection(current, incoming)
	default:
		return union(current, incoming)
	}
}

func union(current []spgitobject.Item, incoming []spgitobject.Item) []spgitobject.Item {
	present := make(map[string]struct{}, len(current))
	for _, item := range current {
		present[item.ID] = struct{}{}
	}
	result := make([]spgitobject.Item, 0, len(current)+len(incoming))
	result = append(result, current...)
	for _, item := range incoming {
		if _, ok := present[item.ID]; ok {
			continue
		}
		present[item.ID] = struct{}{}
		result = append(result, item)
	}
	return renumber(result)
}

func intersection(current []spgitobject.Item, incoming []spgitobject.Item) []spgitobject.Item {
	incomingSet := make(map[string]struct{}, len(incoming))
	for _, item := range incoming {
		incomingSet[item.ID] = struct{}{}
	}
	var result []spgitobject.Item
	for _, item := range current {
		if _, ok := incomingSet[item.ID]; ok {
			result = append(result, item)
		}
	}
	return renumber(result)
}

func renumber(items []spgitobject.Item) []spgitobject.Item {
	for position := range items {
		items[position].Position = position
	}
	return items
}
