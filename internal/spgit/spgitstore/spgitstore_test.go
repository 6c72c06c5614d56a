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

package spgitstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	payload := []byte(`{"id":"catalog:item:1"}`)
	digest, err := store.Put(ctx, spgitobject.KindBlob, payload)
	require.NoError(t, err)
	kind, gotPayload, err := store.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, spgitobject.KindBlob, kind)
	assert.Equal(t, payload, gotPayload)

	exists, err := store.Exists(ctx, digest)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPutDeduplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	payload := []byte(`{"id":"catalog:item:2"}`)
	digest1, err := store.Put(ctx, spgitobject.KindBlob, payload)
	require.NoError(t, err)
	digest2, err := store.Put(ctx, spgitobject.KindBlob, payload)
	require.NoError(t, err)
	assert.Equal(t, digest1, digest2)
}

func TestGetNotExist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	_, _, err := store.Get(ctx, spgithash.NewDigestForBytes([]byte("missing")))
	assert.True(t, spgitstore.IsNotExist(err))
	exists, err := store.Exists(ctx, spgithash.NewDigestForBytes([]byte("missing")))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	objectsDirPath := t.TempDir()
	store := spgitstore.NewStore(zap.NewNop(), objectsDirPath)
	digest, err := store.Put(ctx, spgitobject.KindBlob, []byte(`{"id":"x"}`))
	require.NoError(t, err)
	hexDigest := digest.String()
	objectPath := filepath.Join(objectsDirPath, hexDigest[:2], hexDigest[2:])
	require.NoError(t, os.Chmod(objectPath, 0644))
	require.NoError(t, os.WriteFile(objectPath, []byte("not zlib at all"), 0644))
	_, _, err = store.Get(ctx, digest)
	assert.True(t, spgitobject.IsCorrupt(err))
}

func TestGetDigestMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	objectsDirPath := t.TempDir()
	store := spgitstore.NewStore(zap.NewNop(), objectsDirPath)
	digest, err := store.Put(ctx, spgitobject.KindBlob, []byte(`{"id":"a"}`))
	require.NoError(t, err)
	other, err := store.Put(ctx, spgitobject.KindBlob, []byte(`{"id":"b"}`))
	require.NoError(t, err)
	// copy the bytes of "other" over "digest"
	otherHex := other.String()
	digestHex := digest.String()
	otherBytes, err := os.ReadFile(filepath.Join(objectsDirPath, otherHex[:2], otherHex[2:]))
	require.NoError(t, err)
	objectPath := filepath.Join(objectsDirPath, digestHex[:2], digestHex[2:])
	require.NoError(t, os.Chmod(objectPath, 0644))
	require.NoError(t, os.WriteFile(objectPath, otherBytes, 0644))
	_, _, err = store.Get(ctx, digest)
	assert.True(t, spgitobject.IsCorrupt(err))
}

func TestWalk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	want := make(map[spgithash.Digest]struct{})
	for _, payload := range []string{`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`} {
		digest, err := store.Put(ctx, spgitobject.KindBlob, []byte(payload))
		require.NoError(t, err)
		want[digest] = struct{}{}
	}
	got := make(map[spgithash.Digest]struct{})
	require.NoError(t, store.Walk(ctx, func(digest spgithash.Digest) error {
		got[digest] = struct{}{}
		return nil
	}))
	assert.Equal(t, want, got)
}

func TestTypedRoundTrips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	items := []spgitobject.Item{
		{ID: "catalog:item:a", Name: "A", Creator: "X", DurationMS: 1000},
		{ID: "catalog:item:b", Name: "B", Creator: "Y", DurationMS: 2000},
	}
	treeDigest, err := store.PutItemsAsTree(ctx, items)
	require.NoError(t, err)
	gotItems, err := store.GetItemsForTree(ctx, treeDigest)
	require.NoError(t, err)
	require.Len(t, gotItems, 2)
	assert.Equal(t, "catalog:item:a", gotItems[0].ID)
	assert.Equal(t, 0, gotItems[0].Position)
	assert.Equal(t, 1, gotItems[1].Position)

	signature := spgitobject.NewSignature("Alice", "alice@example.com", time.Unix(1700000000, 0).UTC())
	commitDigest, err := store.PutCommit(ctx, &spgitobject.Commit{
		Tree:      treeDigest,
		Author:    signature,
		Committer: signature,
		Message:   "first",
	})
	require.NoError(t, err)
	commit, err := store.GetCommit(ctx, commitDigest)
	require.NoError(t, err)
	assert.Equal(t, treeDigest, commit.Tree)

	// writing the same items twice yields the same tree digest
	treeDigest2, err := store.PutItemsAsTree(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, treeDigest, treeDigest2)

	// wrong kind
	_, err = store.GetCommit(ctx, treeDigest)
	assert.True(t, spgitstore.IsWrongKind(err))
}

func newTestStore(t *testing.T) *spgitstore.Store {
	return spgitstore.NewStore(zap.NewNop(), t.TempDir())
}
