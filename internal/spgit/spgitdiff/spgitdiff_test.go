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

package spgitdiff_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAddRemove(t *testing.T) {
	t.Parallel()
	oldItems := items("a", "b", "c")
	newItems := items("a", "c", "d")
	changes := spgitdiff.Compute(oldItems, newItems)
	require.Len(t, changes.Added, 1)
	assert.Equal(t, "d", changes.Added[0].Item.ID)
	assert.Equal(t, 2, changes.Added[0].Position)
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "b", changes.Removed[0].Item.ID)
	assert.Equal(t, 1, changes.Removed[0].Position)
	assert.Empty(t, changes.Moved)
}

func TestComputeInsertionIsNotAMove(t *testing.T) {
	t.Parallel()
	// inserting x at the front shifts every absolute position but moves
	// nothing relative to the common order
	changes := spgitdiff.Compute(items("a", "b", "c"), items("x", "a", "b", "c"))
	assert.Len(t, changes.Added, 1)
	assert.Empty(t, changes.Removed)
	assert.Empty(t, changes.Moved)
}

func TestComputeMove(t *testing.T) {
	t.Parallel()
	changes := spgitdiff.Compute(items("a", "b", "c"), items("c", "a", "b"))
	assert.Empty(t, changes.Added)
	assert.Empty(t, changes.Removed)
	require.NotEmpty(t, changes.Moved)
	moved := make(map[string]bool)
	for _, move := range changes.Moved {
		moved[move.Item.ID] = true
	}
	assert.True(t, moved["c"])
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()
	changes := spgitdiff.Compute(items("a", "b"), items("a", "b"))
	assert.True(t, changes.IsEmpty())
}

func TestApply(t *testing.T) {
	t.Parallel()
	oldItems := items("a", "b")
	newItems := items("a", "b", "d")
	changes := spgitdiff.Compute(oldItems, newItems)
	result := spgitdiff.Apply(items("a", "b", "c"), changes)
	assert.Equal(t, []string{"a", "b", "d", "c"}, spgitobject.ItemIDs(result))
}

func TestApplyRemovalOfAbsentIsNoop(t *testing.T) {
	t.Parallel()
	changes := spgitdiff.Compute(items("a", "x"), items("a"))
	result := spgitdiff.Apply(items("a", "b"), changes)
	assert.Equal(t, []string{"a", "b"}, spgitobject.ItemIDs(result))
}

func TestInvertRoundTrip(t *testing.T) {
	t.Parallel()
	oldItems := items("a", "b", "c")
	newItems := items("a", "c", "d")
	changes := spgitdiff.Compute(oldItems, newItems)

	// applying the delta then its inverse restores the original
	applied := spgitdiff.Apply(oldItems, changes)
	restored := spgitdiff.Apply(applied, changes.Invert())
	if diff := cmp.Diff(spgitobject.ItemIDs(oldItems), spgitobject.ItemIDs(restored)); diff != "" {
		t.Errorf("restored list mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyToMatchingTreeIsNoop(t *testing.T) {
	t.Parallel()
	// the delta of a commit applied to a list that already matches the
	// commit's tree changes nothing
	parent := items("a", "b")
	committed := items("a", "b", "d")
	changes := spgitdiff.Compute(parent, committed)
	result := spgitdiff.Apply(committed, changes)
	assert.Equal(t, spgitobject.ItemIDs(committed), spgitobject.ItemIDs(result))
}

func items(ids ...string) []spgitobject.Item {
	result := make([]spgitobject.Item, len(ids))
	for i, id := range ids {
		result[i] = spgitobject.Item{ID: id, Name: "Item " + id, Position: i}
	}
	return result
}
