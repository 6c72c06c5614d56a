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

package spgitrepo

import (
	"errors"
	"fmt"
)

var (
	errUser = errors.New("user error")
	// ErrNotARepository is returned when no .spgit directory is found in the
	// current or any parent directory.
	ErrNotARepository = errors.New("not a spgit repository (or any of the parent directories)")
)

// NewUserError returns an error caused by the user's request rather than
// the repository state: bad arguments, unknown refs, nothing to commit.
func NewUserError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUser, fmt.Sprintf(format, args...))
}

// IsUserError returns true for errors constructed with NewUserError.
func IsUserError(err error) bool {
	return errors.Is(err, errUser)
}

// IsNotARepository returns true if the error reports a missing repository.
func IsNotARepository(err error) bool {
	return errors.Is(err, ErrNotARepository)
}
