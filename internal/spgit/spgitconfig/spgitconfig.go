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

// Package spgitconfig reads and writes the JSON configuration files: the
// per-repository .spgit/config and the per-user ~/.spgit/config.
//
// Configuration is an explicit value threaded through the repository
// handle, never ambient state.
package spgitconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pap-art/spgit/internal/pkg/atomicfile"
)

// RepoConfig is the per-repository configuration.
type RepoConfig struct {
	// ListName is the human-readable name the list was created with.
	ListName string `json:"list_name,omitempty"`
	// ListID is the identifier of the local working list in the external
	// catalog, if one is bound.
	ListID string `json:"list_id,omitempty"`
	// DefaultRemote is the remote used by bare pull/push. Usually "origin".
	DefaultRemote string `json:"default_remote,omitempty"`
	// Remotes maps remote name to remote definition.
	Remotes map[string]Remote `json:"remotes,omitempty"`
	// Branches maps branch name to its tracking configuration.
	Branches map[string]Branch `json:"branches,omitempty"`
}

// Remote is a named external list.
type Remote struct {
	// URL is the catalog URL the remote was added with.
	URL string `json:"url,omitempty"`
	// ListID is the resolved catalog list identifier.
	ListID string `json:"list_id"`
	// Host is the credential host for this remote.
	Host string `json:"host,omitempty"`
}

// Branch is per-branch tracking configuration.
type Branch struct {
	// Remote is the remote this branch tracks.
	Remote string `json:"remote,omitempty"`
	// Merge is the remote branch merged on pull.
	Merge string `json:"merge,omitempty"`
}

// UserConfig is the per-user configuration under the user's home directory.
type UserConfig struct {
	// User identifies the actor recorded in commits and reflog entries.
	User User `json:"user,omitempty"`
	// Credentials maps catalog host to credential.
	Credentials map[string]Credential `json:"credentials,omitempty"`
}

// User is the commit and reflog actor.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Credential is an API credential for a catalog host.
type Credential struct {
	Token string `json:"token"`
}

// LoadRepoConfig reads the repository config at path, returning the zero
// value if the file does not exist.
func LoadRepoConfig(path string) (*RepoConfig, error) {
	config := &RepoConfig{}
	if err := loadJSON(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveRepoConfig writes the repository config atomically.
func SaveRepoConfig(path string, config *RepoConfig) error {
	return saveJSON(path, config)
}

// LoadUserConfig reads the user config, returning the zero value if the
// file does not exist.
func LoadUserConfig(path string) (*UserConfig, error) {
	config := &UserConfig{}
	if err := loadJSON(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveUserConfig writes the user config atomically with owner-only
// permissions: it holds credentials.
func SaveUserConfig(path string, config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, append(data, '\n'), 0600)
}

// DefaultUserConfigPath returns ~/.spgit/config.
func DefaultUserConfigPath() (string, error) {
	homeDirPath, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDirPath, ".spgit", "config"), nil
}

func loadJSON(path string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, value)
}

func saveJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, append(data, '\n'), 0644)
}
