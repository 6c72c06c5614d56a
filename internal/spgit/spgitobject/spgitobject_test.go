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

package spgitobject_test

import (
	"testing"
	"time"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundTrip(t *testing.T) {
	t.Parallel()
	item := spgitobject.Item{
		ID:         "catalog:item:4uLU6hMCjMI75M1A2tKUQC",
		Name:       "Never Gonna Give You Up",
		Creator:    "Rick Astley",
		Container:  "Whenever You Need Somebody",
		DurationMS: 213573,
		Position:   0,
	}
	payload, err := spgitobject.MarshalBlob(item)
	require.NoError(t, err)
	parsed, err := spgitobject.UnmarshalBlob(payload)
	require.NoError(t, err)
	assert.Equal(t, item, parsed)
}

func TestTreeCanonicalOrder(t *testing.T) {
	t.Parallel()
	blobDigest := spgithash.NewDigestForBytes([]byte("blob"))
	tree := &spgitobject.Tree{
		Entries: []spgitobject.TreeEntry{
			{Position: 1, ItemID: "b", BlobDigest: blobDigest, DisplayName: "B"},
			{Position: 0, ItemID: "a", BlobDigest: blobDigest, DisplayName: "A"},
		},
	}
	payload, err := spgitobject.MarshalTree(tree)
	require.NoError(t, err)
	parsed, err := spgitobject.UnmarshalTree(payload)
	require.NoError(t, err)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, "a", parsed.Entries[0].ItemID)
	assert.Equal(t, "b", parsed.Entries[1].ItemID)

	// marshaling twice yields the same bytes and therefore the same digest
	payload2, err := spgitobject.MarshalTree(tree)
	require.NoError(t, err)
	assert.Equal(t, payload, payload2)

	// order is part of the content hash
	swapped := &spgitobject.Tree{
		Entries: []spgitobject.TreeEntry{
			{Position: 0, ItemID: "b", BlobDigest: blobDigest, DisplayName: "B"},
			{Position: 1, ItemID: "a", BlobDigest: blobDigest, DisplayName: "A"},
		},
	}
	swappedPayload, err := spgitobject.MarshalTree(swapped)
	require.NoError(t, err)
	assert.NotEqual(t,
		spgitobject.DigestForFrame(spgitobject.Frame(spgitobject.KindTree, payload)),
		spgitobject.DigestForFrame(spgitobject.Frame(spgitobject.KindTree, swappedPayload)),
	)
}

func TestCommitRoundTrip(t *testing.T) {
	t.Parallel()
	signature := spgitobject.NewSignature("Alice", "alice@example.com", time.Unix(1700000000, 0).UTC())
	commit := &spgitobject.Commit{
		Tree: spgithash.NewDigestForBytes([]byte("tree")),
		Parents: []spgithash.Digest{
			spgithash.NewDigestForBytes([]byte("p1")),
			spgithash.NewDigestForBytes([]byte("p2")),
		},
		Author:    signature,
		Committer: signature,
		Message:   "Merge branch 'feature'\n\nbody text\n",
	}
	payload, err := spgitobject.MarshalCommit(commit)
	require.NoError(t, err)
	parsed, err := spgitobject.UnmarshalCommit(payload)
	require.NoError(t, err)
	assert.Equal(t, commit, parsed)
	assert.Equal(t, "Merge branch 'feature'", parsed.Subject())
}

func TestCommitRootNoParents(t *testing.T) {
	t.Parallel()
	signature := spgitobject.NewSignature("Bob", "bob@example.com", time.Unix(1700000001, 0).UTC())
	commit := &spgitobject.Commit{
		Tree:      spgithash.NewDigestForBytes([]byte("tree")),
		Author:    signature,
		Committer: signature,
		Message:   "first",
	}
	payload, err := spgitobject.MarshalCommit(commit)
	require.NoError(t, err)
	parsed, err := spgitobject.UnmarshalCommit(payload)
	require.NoError(t, err)
	assert.Empty(t, parsed.Parents)
	assert.Equal(t, "first", parsed.Message)
}

func TestTagRoundTrip(t *testing.T) {
	t.Parallel()
	tag := &spgitobject.Tag{
		Object:     spgithash.NewDigestForBytes([]byte("commit")),
		ObjectKind: spgitobject.KindCommit,
		Name:       "v1.0.0",
		Tagger:     spgitobject.NewSignature("Alice", "alice@example.com", time.Unix(1700000000, 0).UTC()),
		Message:    "release\n",
	}
	payload, err := spgitobject.MarshalTag(tag)
	require.NoError(t, err)
	parsed, err := spgitobject.UnmarshalTag(payload)
	require.NoError(t, err)
	assert.Equal(t, tag, parsed)
}

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()
	payload := []byte(`{"id":"x"}`)
	frame := spgitobject.Frame(spgitobject.KindBlob, payload)
	kind, parsedPayload, err := spgitobject.ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, spgitobject.KindBlob, kind)
	assert.Equal(t, payload, parsedPayload)
}

func TestFrameErrors(t *testing.T) {
	t.Parallel()
	_, _, err := spgitobject.ParseFrame([]byte("no terminator"))
	assert.True(t, spgitobject.IsCorrupt(err))
	_, _, err = spgitobject.ParseFrame([]byte("blob 100\x00short"))
	assert.True(t, spgitobject.IsCorrupt(err))
	_, _, err = spgitobject.ParseFrame([]byte("widget 2\x00ab"))
	assert.True(t, spgitobject.IsUnknownKind(err))
}

func TestDeflateInflateRoundTrip(t *testing.T) {
	t.Parallel()
	frame := spgitobject.Frame(spgitobject.KindBlob, []byte(`{"id":"y"}`))
	compressed, err := spgitobject.Deflate(frame)
	require.NoError(t, err)
	inflated, err := spgitobject.Inflate(compressed)
	require.NoError(t, err)
	assert.Equal(t, frame, inflated)

	_, err = spgitobject.Inflate([]byte("garbage"))
	assert.True(t, spgitobject.IsCorrupt(err))
	require.True(t, len(compressed) > 2)
	_, err = spgitobject.Inflate(compressed[:len(compressed)/2])
	assert.True(t, spgitobject.IsCorrupt(err))
}

func TestSignatureString(t *testing.T) {
	t.Parallel()
	signature := spgitobject.Signature{Name: "Alice Jones", Email: "alice@example.com", Unix: 1700000000, TZ: "+0100"}
	assert.Equal(t, "Alice Jones <alice@example.com> 1700000000 +0100", signature.String())
}
