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

// Package spgithash provides the content-address digest used by every
// stored object: SHA-1 over canonical object bytes, rendered as 40 hex
// characters.
package spgithash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// ByteLength is the length of a raw digest in bytes.
const ByteLength = sha1.Size

// HexLength is the length of a hex-encoded digest.
const HexLength = ByteLength * 2

// Digest is a SHA-1 content address.
//
// The zero value is the null digest, used as the old-value marker in reflog
// entries for ref creation.
type Digest [ByteLength]byte

// NewDigestForBytes returns the Digest of the given bytes.
func NewDigestForBytes(data []byte) Digest {
	return sha1.Sum(data)
}

// ParseDigest parses a 40-hex digest string.
func ParseDigest(s string) (Digest, error) {
	var digest Digest
	if len(s) != HexLength {
		return digest, fmt.Errorf("invalid digest %q: expected %d hex characters, got %d", s, HexLength, len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return digest, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	copy(digest[:], data)
	return digest, nil
}

// String returns the 40-hex rendering of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the abbreviated 7-hex rendering used in human output.
func (d Digest) Short() string {
	return d.String()[:7]
}

// IsZero returns true if the digest is the null digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
