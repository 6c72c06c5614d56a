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

package spgitconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	config := &spgitconfig.RepoConfig{
		ListName:      "My List",
		ListID:        "list:1",
		DefaultRemote: "origin",
		Remotes: map[string]spgitconfig.Remote{
			"origin": {URL: "https://example.com/lists/1", ListID: "list:1"},
		},
		Branches: map[string]spgitconfig.Branch{
			"main": {Remote: "origin", Merge: "main"},
		},
	}
	require.NoError(t, spgitconfig.SaveRepoConfig(path, config))
	loaded, err := spgitconfig.LoadRepoConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestLoadMissingIsZero(t *testing.T) {
	t.Parallel()
	config, err := spgitconfig.LoadRepoConfig(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, &spgitconfig.RepoConfig{}, config)
	userConfig, err := spgitconfig.LoadUserConfig(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, &spgitconfig.UserConfig{}, userConfig)
}

func TestUserConfigPermissions(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	config := &spgitconfig.UserConfig{
		User: spgitconfig.User{Name: "Alice", Email: "alice@example.com"},
		Credentials: map[string]spgitconfig.Credential{
			"catalog.example.com": {Token: "secret"},
		},
	}
	require.NoError(t, spgitconfig.SaveUserConfig(path, config))
	fileInfo, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())
	loaded, err := spgitconfig.LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
