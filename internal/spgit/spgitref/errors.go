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

package spgitref

import (
	"errors"
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
)

var (
	errNotExist = errors.New("ref does not exist")
	errRefRace  = errors.New("ref update race")
)

// NewErrNotExist returns a new error for a ref not existing.
func NewErrNotExist(name string) error {
	return fmt.Errorf("%w: %s", errNotExist, name)
}

// IsNotExist returns true if the error reports a missing ref.
func IsNotExist(err error) bool {
	return errors.Is(err, errNotExist)
}

func newRefRaceError(name string, expected spgithash.Digest, actual spgithash.Digest) error {
	return fmt.Errorf(
		"%w: %s expected %s, found %s",
		errRefRace,
		name,
		expected.String(),
		actual.String(),
	)
}

// IsRefRace returns true if the error reports a failed compare-and-swap on
// a ref update. This should not occur in single-process use.
func IsRefRace(err error) bool {
	return errors.Is(err, errRefRace)
}
