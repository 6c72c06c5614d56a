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

package spgitindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pap-art/spgit/internal/spgit/spgitindex"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	t.Parallel()
	index, err := spgitindex.Load(zap.NewNop(), filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	assert.Empty(t, index.Items)
	assert.False(t, index.Modified)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "index")
	index, err := spgitindex.Load(zap.NewNop(), path)
	require.NoError(t, err)
	index.StageFrom([]spgitobject.Item{
		{ID: "catalog:item:a", Name: "A", Creator: "X", Container: "P", DurationMS: 1000},
		{ID: "catalog:item:b", Name: "B", Creator: "Y", Container: "P", DurationMS: 2000},
	})
	require.NoError(t, index.Save())

	loaded, err := spgitindex.Load(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, index.Items, loaded.Items)
	assert.True(t, loaded.Modified)
	assert.Equal(t, 0, loaded.Items[0].Position)
	assert.Equal(t, 1, loaded.Items[1].Position)
}

func TestLoadCorrupt(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, os.WriteFile(path, []byte("BOGUS-file"), 0644))
	_, err := spgitindex.Load(zap.NewNop(), path)
	assert.True(t, spgitindex.IsCorrupt(err))
}

func TestStageSelected(t *testing.T) {
	t.Parallel()
	index := newTestIndex(t)
	index.StageFrom([]spgitobject.Item{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	})
	snapshot := []spgitobject.Item{
		{ID: "a", Name: "A"},
		{ID: "c", Name: "C"},
	}
	// b is absent from the snapshot: removed; c is present: appended
	index.StageSelected([]string{"b", "c"}, snapshot)
	assert.Equal(t, []string{"a", "c"}, spgitobject.ItemIDs(index.Items))
	assert.True(t, index.Modified)
}

func TestToTreeAndDiff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := spgitstore.NewStore(zap.NewNop(), t.TempDir())
	index := newTestIndex(t)
	index.StageFrom([]spgitobject.Item{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	})
	treeDigest, err := index.ToTree(ctx, store)
	require.NoError(t, err)

	// staging the same items produces the same tree
	treeDigest2, err := index.ToTree(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, treeDigest, treeDigest2)

	index.StageFrom([]spgitobject.Item{
		{ID: "a", Name: "A"},
		{ID: "c", Name: "C"},
	})
	changes, err := index.DiffAgainst(ctx, store, treeDigest)
	require.NoError(t, err)
	require.Len(t, changes.Added, 1)
	assert.Equal(t, "c", changes.Added[0].Item.ID)
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "b", changes.Removed[0].Item.ID)
}

func TestSetToTree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := spgitstore.NewStore(zap.NewNop(), t.TempDir())
	index := newTestIndex(t)
	index.StageFrom([]spgitobject.Item{{ID: "a", Name: "A"}})
	treeDigest, err := index.ToTree(ctx, store)
	require.NoError(t, err)
	index.StageFrom([]spgitobject.Item{{ID: "z", Name: "Z"}})
	require.NoError(t, index.SetToTree(ctx, store, treeDigest))
	assert.Equal(t, []string{"a"}, spgitobject.ItemIDs(index.Items))
	assert.False(t, index.Modified)
}

func newTestIndex(t *testing.T) *spgitindex.Index {
	index, err := spgitindex.Load(zap.NewNop(), filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	return index
}
