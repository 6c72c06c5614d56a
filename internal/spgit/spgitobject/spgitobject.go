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

// Package spgitobject defines the four object kinds of the content-addressed
// store - Blob, Tree, Commit, Tag - and their canonical byte encodings.
//
// The digest of an object is the SHA-1 of its canonical payload prefixed with
// the "<kind> <byte-length>\x00" frame header. Frames are zlib-deflated for
// disk storage; the digest is always computed over the uncompressed bytes.
package spgitobject

import (
	"fmt"
	"strings"
	"time"
)

// Item is a single entry of an ordered list: an opaque catalog identifier
// plus display metadata. Equality is by identifier alone; the metadata is
// carried for human-readable diffs.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Creator    string `json:"creator"`
	Container  string `json:"container"`
	DurationMS int64  `json:"duration_ms"`
	Position   int    `json:"position"`
}

// Signature identifies the actor and instant of a commit, tag, or reflog
// entry.
type Signature struct {
	Name  string
	Email string
	// Unix is the timestamp in seconds.
	Unix int64
	// TZ is the timezone offset in the form "+0100".
	TZ string
}

// NewSignature returns a Signature for the given actor at the given time.
func NewSignature(name string, email string, when time.Time) Signature {
	return Signature{
		Name:  name,
		Email: email,
		Unix:  when.Unix(),
		TZ:    when.Format("-0700"),
	}
}

// Time returns the signature instant in the signature's timezone.
func (s Signature) Time() time.Time {
	t := time.Unix(s.Unix, 0)
	if location, err := time.Parse("-0700", s.TZ); err == nil {
		return t.In(location.Location())
	}
	return t.UTC()
}

// String renders the signature in its canonical form
// "Name <email> unix tz".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Unix, s.TZ)
}

func parseSignature(value string) (Signature, error) {
	open := strings.LastIndex(value, "<")
	closing := strings.LastIndex(value, ">")
	if open < 0 || closing < open {
		return Signature{}, fmt.Errorf("invalid signature %q", value)
	}
	var signature Signature
	signature.Name = strings.TrimSpace(value[:open])
	signature.Email = value[open+1 : closing]
	rest := strings.Fields(value[closing+1:])
	if len(rest) != 2 {
		return Signature{}, fmt.Errorf("invalid signature timestamp in %q", value)
	}
	if _, err := fmt.Sscanf(rest[0], "%d", &signature.Unix); err != nil {
		return Signature{}, fmt.Errorf("invalid signature timestamp in %q: %w", value, err)
	}
	signature.TZ = rest[1]
	return signature, nil
}

// ItemIDs returns the identifiers of the items, in order.
func ItemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
