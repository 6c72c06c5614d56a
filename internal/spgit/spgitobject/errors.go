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
	"errors"
	"fmt"
)

var (
	errCorrupt     = errors.New("corrupt object")
	errUnknownKind = errors.New("unknown object kind")
)

// NewCorruptError returns an error that satisfies IsCorrupt.
func NewCorruptError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errCorrupt, fmt.Sprintf(format, args...))
}

// IsCorrupt returns true if the error reports a corrupted object: a
// malformed frame header, a declared length that does not match the payload,
// or an unparseable canonical encoding.
func IsCorrupt(err error) bool {
	return errors.Is(err, errCorrupt)
}

func newUnknownKindError(name string) error {
	return fmt.Errorf("%w: %q", errUnknownKind, name)
}

// IsUnknownKind returns true if the error reports an object kind this
// implementation does not know.
func IsUnknownKind(err error) bool {
	return errors.Is(err, errUnknownKind)
}
