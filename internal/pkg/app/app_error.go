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

package app

import (
	"errors"
	"fmt"
	"strconv"
)

// NewError returns an error that carries the given process exit code.
//
// A zero exit code is invalid for an error and is coerced to 1.
func NewError(exitCode int, message string) error {
	return newAppError(exitCode, message)
}

// NewErrorf returns a NewError with fmt.Sprintf formatting.
func NewErrorf(exitCode int, format string, args ...interface{}) error {
	return newAppError(exitCode, fmt.Sprintf(format, args...))
}

// GetExitCode returns the exit code for the error.
//
// Errors constructed with NewError return their embedded code, all other
// non-nil errors return 1, nil returns 0.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	appError := &appError{}
	if errors.As(err, &appError) {
		return appError.exitCode
	}
	return 1
}

type appError struct {
	exitCode int
	message  string
}

func newAppError(exitCode int, message string) *appError {
	if exitCode == 0 {
		message = fmt.Sprintf(
			"got invalid exit code %d when constructing error (original message was %q)",
			exitCode,
			message,
		)
		exitCode = 1
	}
	return &appError{
		exitCode: exitCode,
		message:  message,
	}
}

func (e *appError) Error() string {
	if e.message != "" {
		return e.message
	}
	return "exit status " + strconv.Itoa(e.exitCode)
}
