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

package spgitmerge_test

import (
	"testing"

	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	strategy, err := spgitmerge.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, spgitmerge.StrategyUnion, strategy)
	strategy, err = spgitmerge.ParseStrategy("intersection")
	require.NoError(t, err)
	assert.Equal(t, spgitmerge.StrategyIntersection, strategy)
	_, err = spgitmerge.ParseStrategy("theirs")
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	t.Parallel()
	result := spgitmerge.Combine(items("a", "b", "c"), items("a", "b", "d"), spgitmerge.StrategyUnion)
	assert.Equal(t, []string{"a", "b", "c", "d"}, spgitobject.ItemIDs(result))
}

func TestUnionIdempotent(t *testing.T) {
	t.Parallel()
	// union(a, a) = a
	result := spgitmerge.Combine(items("a", "b"), items("a", "b"), spgitmerge.StrategyUnion)
	assert.Equal(t, []string{"a", "b"}, spgitobject.ItemIDs(result))
}

func TestIntersection(t *testing.T) {
	t.Parallel()
	// current order wins
	result := spgitmerge.Combine(items("a", "b", "c"), items("b", "c", "d"), spgitmerge.StrategyIntersection)
	assert.Equal(t, []string{"b", "c"}, spgitobject.ItemIDs(result))
}

func TestIntersectionIdempotent(t *testing.T) {
	t.Parallel()
	result := spgitmerge.Combine(items("a", "b"), items("a", "b"), spgitmerge.StrategyIntersection)
	assert.Equal(t, []string{"a", "b"}, spgitobject.ItemIDs(result))
}

func TestUnionContainsIntersection(t *testing.T) {
	t.Parallel()
	current := items("a", "b", "c")
	incoming := items("b", "x")
	unionIDs := make(map[string]struct{})
	for _, item := range spgitmerge.Combine(current, incoming, spgitmerge.StrategyUnion) {
		unionIDs[item.ID] = struct{}{}
	}
	for _, item := range spgitmerge.Combine(current, incoming, spgitmerge.StrategyIntersection) {
		_, ok := unionIDs[item.ID]
		assert.True(t, ok, "intersection item %s missing from union", item.ID)
	}
}

func TestAppendMatchesUnionForKeyedItems(t *testing.T) {
	t.Parallel()
	current := items("a", "b")
	incoming := items("b", "c")
	assert.Equal(
		t,
		spgitmerge.Combine(current, incoming, spgitmerge.StrategyUnion),
		spgitmerge.Combine(current, incoming, spgitmerge.StrategyAppend),
	)
}

func TestCombineRenumbersPositions(t *testing.T) {
	t.Parallel()
	result := spgitmerge.Combine(items("a"), items("b"), spgitmerge.StrategyUnion)
	require.Len(t, result, 2)
	assert.Equal(t, 0, result[0].Position)
	assert.Equal(t, 1, result[1].Position)
}

func items(ids ...string) []spgitobject.Item {
	result := make([]spgitobject.Item, len(ids))
	for i, id := range ids {
		result[i] = spgitobject.Item{ID: id, Name: "Item " + id, Position: i}
	}
	return result
}
