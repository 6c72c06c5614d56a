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

package spgitref_test

import (
	"context"
	"testing"
	"time"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpdateReadResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest := spgithash.NewDigestForBytes([]byte("commit"))

	require.NoError(t, store.Update(ctx, "refs/heads/main", nil, digest, newTestRecord("commit", "first")))
	ref, err := store.Read(ctx, "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, digest, ref.Digest)
	assert.False(t, ref.IsSymbolic())

	require.NoError(t, store.SetSymbolic(ctx, spgitref.HEAD, "refs/heads/main", newTestRecord("checkout", "moving to main")))
	resolved, err := store.Resolve(ctx, spgitref.HEAD)
	require.NoError(t, err)
	assert.Equal(t, digest, resolved)
}

func TestUpdateCompareAndSwap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest1 := spgithash.NewDigestForBytes([]byte("c1"))
	digest2 := spgithash.NewDigestForBytes([]byte("c2"))

	// creation expects the zero digest
	zero := spgithash.Digest{}
	require.NoError(t, store.Update(ctx, "refs/heads/main", &zero, digest1, newTestRecord("commit", "first")))

	// stale expectation fails
	err := store.Update(ctx, "refs/heads/main", &zero, digest2, newTestRecord("commit", "second"))
	assert.True(t, spgitref.IsRefRace(err))

	// correct expectation succeeds
	require.NoError(t, store.Update(ctx, "refs/heads/main", &digest1, digest2, newTestRecord("commit", "second")))
	resolved, err := store.Resolve(ctx, "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, digest2, resolved)
}

func TestReflog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest1 := spgithash.NewDigestForBytes([]byte("c1"))
	digest2 := spgithash.NewDigestForBytes([]byte("c2"))
	require.NoError(t, store.Update(ctx, "refs/heads/main", nil, digest1, newTestRecord("commit", "first")))
	require.NoError(t, store.Update(ctx, "refs/heads/main", nil, digest2, newTestRecord("commit", "second")))

	records, err := store.ReadLog(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// newest first
	assert.Equal(t, "second", records[0].Message)
	assert.Equal(t, digest1, records[0].Old)
	assert.Equal(t, digest2, records[0].New)
	assert.Equal(t, "first", records[1].Message)
	assert.True(t, records[1].Old.IsZero())
	assert.Equal(t, "Alice", records[0].Actor.Name)
	assert.Equal(t, "alice@example.com", records[0].Actor.Email)
}

func TestRewriteLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	for _, message := range []string{"zero", "one", "two"} {
		require.NoError(t, store.AppendLog(ctx, "refs/stash", spgitref.LogRecord{
			New:     spgithash.NewDigestForBytes([]byte(message)),
			Actor:   testActor(),
			Action:  "stash",
			Message: message,
		}))
	}
	records, err := store.ReadLog(ctx, "refs/stash")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "two", records[0].Message)

	// drop the middle entry
	require.NoError(t, store.RewriteLog(ctx, "refs/stash", []spgitref.LogRecord{records[0], records[2]}))
	records, err = store.ReadLog(ctx, "refs/stash")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Message)
	assert.Equal(t, "zero", records[1].Message)

	// empty rewrite removes the log
	require.NoError(t, store.RewriteLog(ctx, "refs/stash", nil))
	records, err = store.ReadLog(ctx, "refs/stash")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest := spgithash.NewDigestForBytes([]byte("c1"))
	require.NoError(t, store.Update(ctx, "refs/heads/feature", nil, digest, newTestRecord("branch", "created")))
	require.NoError(t, store.Delete(ctx, "refs/heads/feature"))
	_, err := store.Read(ctx, "refs/heads/feature")
	assert.True(t, spgitref.IsNotExist(err))
	err = store.Delete(ctx, spgitref.HEAD)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest := spgithash.NewDigestForBytes([]byte("c1"))
	require.NoError(t, store.Update(ctx, "refs/heads/main", nil, digest, newTestRecord("commit", "first")))
	require.NoError(t, store.Update(ctx, "refs/heads/feature", nil, digest, newTestRecord("branch", "created")))
	require.NoError(t, store.Update(ctx, "refs/tags/v1", nil, digest, newTestRecord("tag", "v1")))

	branches, err := store.List(ctx, spgitref.BranchPrefix)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "refs/heads/feature", branches[0].Name)
	assert.Equal(t, "refs/heads/main", branches[1].Name)

	all, err := store.List(ctx, "refs/")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestValidateRefName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	digest := spgithash.NewDigestForBytes([]byte("c1"))
	assert.Error(t, store.Update(ctx, "foo", nil, digest, newTestRecord("x", "y")))
	assert.Error(t, store.Update(ctx, "refs/../escape", nil, digest, newTestRecord("x", "y")))
}

func newTestStore(t *testing.T) *spgitref.Store {
	return spgitref.NewStore(zap.NewNop(), t.TempDir())
}

func testActor() spgitobject.Signature {
	return spgitobject.NewSignature("Alice", "alice@example.com", time.Unix(1700000000, 0).UTC())
}

func newTestRecord(action string, message string) spgitref.LogRecord {
	return spgitref.LogRecord{
		Actor:   testActor(),
		Action:  action,
		Message: message,
	}
}
