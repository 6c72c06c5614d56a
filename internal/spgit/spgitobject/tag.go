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

package spgitobject

import (
	"bytes"
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
)

// Tag is an annotated tag: a named pointer to another object carrying its
// own message and tagger. Lightweight tags are plain refs and never produce
// a Tag object.
type Tag struct {
	Object     spgithash.Digest
	ObjectKind Kind
	Name       string
	Tagger     Signature
	Message    string
}

// MarshalTag returns the canonical payload of a Tag.
func MarshalTag(tag *Tag) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	fmt.Fprintf(buffer, "object %s\n", tag.Object.String())
	fmt.Fprintf(buffer, "type %s\n", tag.ObjectKind.String())
	fmt.Fprintf(buffer, "tag %s\n", tag.Name)
	fmt.Fprintf(buffer, "tagger %s\n", tag.Tagger.String())
	buffer.WriteString("\n")
	buffer.WriteString(tag.Message)
	return buffer.Bytes(), nil
}

// UnmarshalTag parses a Tag payload.
func UnmarshalTag(payload []byte) (*Tag, error) {
	headers, message, err := splitHeadersAndMessage(payload)
	if err != nil {
		return nil, NewCorruptError("tag: %v", err)
	}
	tag := &Tag{Message: message}
	for _, header := range headers {
		switch header.key {
		case "object":
			digest, err := spgithash.ParseDigest(header.value)
			if err != nil {
				return nil, NewCorruptError("tag object header: %v", err)
			}
			tag.Object = digest
		case "type":
			kind, err := ParseKind(header.value)
			if err != nil {
				return nil, err
			}
			tag.ObjectKind = kind
		case "tag":
			tag.Name = header.value
		case "tagger":
			signature, err := parseSignature(header.value)
			if err != nil {
				return nil, NewCorruptError("tag tagger header: %v", err)
			}
			tag.Tagger = signature
		default:
			return nil, NewCorruptError("tag: unknown header %q", header.key)
		}
	}
	if tag.Object.IsZero() {
		return nil, NewCorruptError("tag: missing object header")
	}
	return tag, nil
}
