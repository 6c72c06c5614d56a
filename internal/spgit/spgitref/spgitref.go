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

// Package spgitref stores named mutable pointers to object digests, one
// small text file per ref, plus the append-only reflog for each ref.
//
// The only symbolic ref is HEAD; symbolic resolution follows at most one
// level.
package spgitref

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pap-art/spgit/internal/pkg/atomicfile"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"go.uber.org/zap"
)

const (
	// HEAD is the symbolic ref indicating the checked-out branch or commit.
	HEAD = "HEAD"
	// StashRef holds the top of the stash stack.
	StashRef = "refs/stash"
	// BranchPrefix is the namespace of branch refs.
	BranchPrefix = "refs/heads/"
	// TagPrefix is the namespace of tag refs.
	TagPrefix = "refs/tags/"
	// RemotePrefix is the namespace of remote-tracking refs.
	RemotePrefix = "refs/remotes/"

	symbolicPrefix = "ref: "
)

// BranchRef returns the full ref name for a branch.
func BranchRef(branch string) string {
	return BranchPrefix + branch
}

// TagRef returns the full ref name for a tag.
func TagRef(tag string) string {
	return TagPrefix + tag
}

// RemoteRef returns the full tracking ref name for a remote branch.
func RemoteRef(remote string, branch string) string {
	return RemotePrefix + remote + "/" + branch
}

// BranchName returns the branch name for a branch ref, and whether the ref
// is a branch ref at all.
func BranchName(refName string) (string, bool) {
	if strings.HasPrefix(refName, BranchPrefix) {
		return strings.TrimPrefix(refName, BranchPrefix), true
	}
	return "", false
}

// Ref is a named pointer: either directly to a digest, or symbolically to
// another ref.
type Ref struct {
	Name           string
	Digest         spgithash.Digest
	SymbolicTarget string
}

// IsSymbolic returns true if the ref points at another ref by name.
func (r *Ref) IsSymbolic() bool {
	return r.SymbolicTarget != ""
}

// Store reads and writes refs under a repository metadata directory.
type Store struct {
	logger      *zap.Logger
	rootDirPath string
}

// NewStore returns a new Store rooted at the repository metadata directory
// (the directory that contains HEAD, refs/, and logs/).
func NewStore(logger *zap.Logger, rootDirPath string) *Store {
	return &Store{
		logger:      logger,
		rootDirPath: rootDirPath,
	}
}

// Read reads a ref without resolving symbolic targets.
func (s *Store) Read(ctx context.Context, name string) (*Ref, error) {
	if err := validateRefName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewErrNotExist(name)
		}
		return nil, err
	}
	content := strings.TrimSuffix(string(data), "\n")
	if strings.HasPrefix(content, symbolicPrefix) {
		return &Ref{
			Name:           name,
			SymbolicTarget: strings.TrimPrefix(content, symbolicPrefix),
		}, nil
	}
	digest, err := spgithash.ParseDigest(content)
	if err != nil {
		return nil, fmt.Errorf("ref %s: %w", name, err)
	}
	return &Ref{Name: name, Digest: digest}, nil
}

// Resolve reads a ref and follows a symbolic target one level, returning
// the digest the ref ultimately points at.
func (s *Store) Resolve(ctx context.Context, name string) (spgithash.Digest, error) {
	ref, err := s.Read(ctx, name)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if !ref.IsSymbolic() {
		return ref.Digest, nil
	}
	target, err := s.Read(ctx, ref.SymbolicTarget)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if target.IsSymbolic() {
		return spgithash.Digest{}, fmt.Errorf("ref %s: symbolic target %s is itself symbolic", name, ref.SymbolicTarget)
	}
	return target.Digest, nil
}

// Update atomically points the ref at newDigest and appends a reflog entry.
//
// If expectedOld is non-nil and the current value of the ref differs, the
// update fails with an error satisfying IsRefRace. A nil current value (the
// ref does not exist yet) compares as the zero digest.
func (s *Store) Update(
	ctx context.Context,
	name string,
	expectedOld *spgithash.Digest,
	newDigest spgithash.Digest,
	record LogRecord,
) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	current := spgithash.Digest{}
	if ref, err := s.Read(ctx, name); err == nil {
		if ref.IsSymbolic() {
			return fmt.Errorf("ref %s: cannot update a symbolic ref with a digest", name)
		}
		current = ref.Digest
	} else if !IsNotExist(err) {
		return err
	}
	if expectedOld != nil && *expectedOld != current {
		return newRefRaceError(name, *expectedOld, current)
	}
	if err := atomicfile.Write(s.refPath(name), []byte(newDigest.String()+"\n"), 0644); err != nil {
		return err
	}
	record.Old = current
	record.New = newDigest
	if err := s.AppendLog(ctx, name, record); err != nil {
		return err
	}
	s.logger.Debug(
		"ref updated",
		zap.String("ref", name),
		zap.String("old", current.String()),
		zap.String("new", newDigest.String()),
	)
	return nil
}

// SetSymbolic points the ref at another ref by name, appending the given
// reflog entry. Only HEAD is ever symbolic.
func (s *Store) SetSymbolic(ctx context.Context, name string, target string, record LogRecord) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if err := validateRefName(target); err != nil {
		return err
	}
	if err := atomicfile.Write(s.refPath(name), []byte(symbolicPrefix+target+"\n"), 0644); err != nil {
		return err
	}
	return s.AppendLog(ctx, name, record)
}

// SetDetached points HEAD (or another ref) directly at a digest without
// reflog bookkeeping beyond the given record.
func (s *Store) SetDetached(ctx context.Context, name string, digest spgithash.Digest, record LogRecord) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if err := atomicfile.Write(s.refPath(name), []byte(digest.String()+"\n"), 0644); err != nil {
		return err
	}
	return s.AppendLog(ctx, name, record)
}

// WriteRef points the ref at a digest without touching its reflog.
//
// Only the stash stack uses this: the stash reflog is the stack itself and
// is rewritten separately.
func (s *Store) WriteRef(ctx context.Context, name string, digest spgithash.Digest) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	return atomicfile.Write(s.refPath(name), []byte(digest.String()+"\n"), 0644)
}

// Delete unlinks the ref and its reflog.
//
// Deleting HEAD is forbidden. Guards for the checked-out branch and for
// unmerged branches are the repository's responsibility.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if name == HEAD {
		return fmt.Errorf("refusing to delete %s", HEAD)
	}
	if err := os.Remove(s.refPath(name)); err != nil {
		if os.IsNotExist(err) {
			return NewErrNotExist(name)
		}
		return err
	}
	if err := os.Remove(s.logPath(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.logger.Debug("ref deleted", zap.String("ref", name))
	return nil
}

// List enumerates refs under the prefix, sorted by name.
//
// The prefix is a ref namespace such as "refs/heads/" or "refs/"; the bare
// "refs/stash" file is included when it matches.
func (s *Store) List(ctx context.Context, prefix string) ([]*Ref, error) {
	refsDirPath := filepath.Join(s.rootDirPath, "refs")
	var refs []*Ref
	err := filepath.Walk(refsDirPath, func(path string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !fileInfo.Mode().IsRegular() {
			return nil
		}
		relPath, err := filepath.Rel(s.rootDirPath, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(relPath)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		ref, err := s.Read(ctx, name)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(refs, func(i int, j int) bool {
		return refs[i].Name < refs[j].Name
	})
	return refs, nil
}

func (s *Store) refPath(name string) string {
	return filepath.Join(s.rootDirPath, filepath.FromSlash(name))
}

func (s *Store) logPath(name string) string {
	return filepath.Join(s.rootDirPath, "logs", filepath.FromSlash(name))
}

func validateRefName(name string) error {
	if name == HEAD {
		return nil
	}
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("invalid ref name %q", name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("invalid ref name %q", name)
		}
	}
	return nil
}
