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

import "fmt"

const (
	// KindBlob is the serialized form of a single Item.
	KindBlob Kind = iota + 1
	// KindTree is an ordered playlist snapshot.
	KindTree
	// KindCommit is a node of the history DAG.
	KindCommit
	// KindTag is an annotated tag.
	KindTag
)

// Kind is an object kind.
type Kind int

// String returns the canonical kind name used in frame headers.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	case KindTag:
		return "tag"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind parses a canonical kind name.
//
// Unknown names return an error that satisfies IsUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "blob":
		return KindBlob, nil
	case "tree":
		return KindTree, nil
	case "commit":
		return KindCommit, nil
	case "tag":
		return KindTag, nil
	default:
		return 0, newUnknownKindError(s)
	}
}
