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

package app_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pap-art/spgit/internal/pkg/app"
	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, app.GetExitCode(nil))
	assert.Equal(t, 1, app.GetExitCode(errors.New("plain")))
	assert.Equal(t, 3, app.GetExitCode(app.NewError(3, "remote failed")))
	// a zero exit code is coerced to 1
	assert.Equal(t, 1, app.GetExitCode(app.NewError(0, "bad")))
}

func TestContainer(t *testing.T) {
	t.Parallel()
	stdout := bytes.NewBuffer(nil)
	container := app.NewContainer(
		map[string]string{"KEY": "value"},
		strings.NewReader("input"),
		stdout,
		bytes.NewBuffer(nil),
		"prog", "arg1",
	)
	assert.Equal(t, "value", container.Env("KEY"))
	assert.Empty(t, container.Env("MISSING"))
	assert.Equal(t, []string{"prog", "arg1"}, container.Args())

	forArgs := app.NewContainerForArgs(container, "other")
	assert.Equal(t, []string{"prog", "other"}, forArgs.Args())
}
