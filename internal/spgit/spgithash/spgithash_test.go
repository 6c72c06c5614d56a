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

package spgithash_test

import (
	"strings"
	"testing"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDigestForBytes(t *testing.T) {
	t.Parallel()
	digest := spgithash.NewDigestForBytes([]byte("blob 0\x00"))
	assert.Len(t, digest.String(), spgithash.HexLength)
	assert.False(t, digest.IsZero())
	// deterministic
	assert.Equal(t, digest, spgithash.NewDigestForBytes([]byte("blob 0\x00")))
	assert.NotEqual(t, digest, spgithash.NewDigestForBytes([]byte("blob 1\x00a")))
}

func TestParseDigestRoundTrip(t *testing.T) {
	t.Parallel()
	digest := spgithash.NewDigestForBytes([]byte("some content"))
	parsed, err := spgithash.ParseDigest(digest.String())
	require.NoError(t, err)
	assert.Equal(t, digest, parsed)
}

func TestParseDigestError(t *testing.T) {
	t.Parallel()
	testParseDigestError(t, "")
	testParseDigestError(t, "abc123")
	testParseDigestError(t, strings.Repeat("g", spgithash.HexLength))
	testParseDigestError(t, strings.Repeat("a", spgithash.HexLength+2))
}

func TestZeroDigest(t *testing.T) {
	t.Parallel()
	var digest spgithash.Digest
	assert.True(t, digest.IsZero())
	assert.Equal(t, strings.Repeat("0", spgithash.HexLength), digest.String())
}

func testParseDigestError(t *testing.T, digestString string) {
	_, err := spgithash.ParseDigest(digestString)
	assert.Error(t, err)
}
