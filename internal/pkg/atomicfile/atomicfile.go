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

// Package atomicfile writes files atomically via a temporary file in the
// same directory followed by a rename. Readers never observe a partially
// written file.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/multierr"
)

// Write writes data to path atomically, creating parent directories as
// needed.
func Write(path string, data []byte, perm os.FileMode) (retErr error) {
	dirPath := filepath.Dir(path)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	tmpPath := filepath.Join(dirPath, "."+filepath.Base(path)+".tmp."+id.String())
	defer func() {
		if retErr != nil {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				retErr = multierr.Append(retErr, err)
			}
		}
	}()
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
