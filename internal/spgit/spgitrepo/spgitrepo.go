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

// Package spgitrepo is the repository facade: every user-facing operation
// composes the object store, ref store, index, graph walker, and merge
// engine here.
//
// Every mutation follows the same ordering: objects are persisted first,
// then the ref moves atomically, then the reflog entry appends. A crash can
// therefore never leave a ref pointing at an absent object.
package spgitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pap-art/spgit/internal/pkg/atomicfile"
	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitindex"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"github.com/pap-art/spgit/internal/spgit/spgitremote"
	"github.com/pap-art/spgit/internal/spgit/spgitstore"
	"go.uber.org/zap"
)

const (
	// MetaDirName is the repository metadata directory.
	MetaDirName = ".spgit"
	// DefaultBranch is the branch created by init.
	DefaultBranch = "main"

	lockFileName   = "lock"
	indexFileName  = "index"
	configFileName = "config"

	defaultUserName  = "spgit"
	defaultUserEmail = "spgit@localhost"
)

// Repository is an open repository handle.
//
// A Repository holds the .spgit file lock for its lifetime; Close releases
// it. One process operates on a given .spgit directory at a time.
type Repository struct {
	logger      *zap.Logger
	rootDirPath string
	metaDirPath string
	fileLock    *flock.Flock

	objects    *spgitstore.Store
	refs       *spgitref.Store
	index      *spgitindex.Index
	repoConfig *spgitconfig.RepoConfig
	userConfig *spgitconfig.UserConfig

	remote spgitremote.RemoteList
	now    func() time.Time
}

type openOptions struct {
	remote         spgitremote.RemoteList
	userConfigPath string
	now            func() time.Time
}

// OpenOption is an option for Init and Open.
type OpenOption func(*openOptions)

// WithRemoteList supplies the external catalog implementation. Operations
// that need the catalog fail without it.
func WithRemoteList(remote spgitremote.RemoteList) OpenOption {
	return func(options *openOptions) {
		options.remote = remote
	}
}

// WithUserConfigPath overrides the per-user config path (default
// ~/.spgit/config).
func WithUserConfigPath(path string) OpenOption {
	return func(options *openOptions) {
		options.userConfigPath = path
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) OpenOption {
	return func(options *openOptions) {
		options.now = now
	}
}

// Init creates a new repository in dirPath.
//
// The new repository has HEAD pointing at the unborn default branch, an
// empty index, and no objects.
func Init(ctx context.Context, logger *zap.Logger, dirPath string, listName string, options ...OpenOption) (*Repository, error) {
	metaDirPath := filepath.Join(dirPath, MetaDirName)
	if _, err := os.Stat(metaDirPath); err == nil {
		return nil, NewUserError("%s already exists", metaDirPath)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	for _, subDirPath := range []string{
		"objects",
		filepath.Join("refs", "heads"),
		filepath.Join("refs", "tags"),
		filepath.Join("refs", "remotes"),
		"logs",
	} {
		if err := os.MkdirAll(filepath.Join(metaDirPath, subDirPath), 0755); err != nil {
			return nil, err
		}
	}
	if err := atomicfile.Write(
		filepath.Join(metaDirPath, spgitref.HEAD),
		[]byte("ref: "+spgitref.BranchRef(DefaultBranch)+"\n"),
		0644,
	); err != nil {
		return nil, err
	}
	if err := spgitconfig.SaveRepoConfig(
		filepath.Join(metaDirPath, configFileName),
		&spgitconfig.RepoConfig{ListName: listName},
	); err != nil {
		return nil, err
	}
	repository, err := Open(ctx, logger, dirPath, options...)
	if err != nil {
		return nil, err
	}
	// persist the empty index so the on-disk layout is complete
	if err := repository.index.Save(); err != nil {
		_ = repository.Close()
		return nil, err
	}
	logger.Debug("repository initialized", zap.String("path", metaDirPath))
	return repository, nil
}

// Open finds the repository containing dirPath by ascending to the
// filesystem root, acquires its lock, and loads its state.
func Open(ctx context.Context, logger *zap.Logger, dirPath string, options ...OpenOption) (*Repository, error) {
	opts := &openOptions{}
	for _, option := range options {
		option(opts)
	}
	absDirPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, err
	}
	rootDirPath, err := findRoot(absDirPath)
	if err != nil {
		return nil, err
	}
	metaDirPath := filepath.Join(rootDirPath, MetaDirName)
	fileLock := flock.New(filepath.Join(metaDirPath, lockFileName))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("repository %s is locked by another process", metaDirPath)
	}
	index, err := spgitindex.Load(logger, filepath.Join(metaDirPath, indexFileName))
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}
	repoConfig, err := spgitconfig.LoadRepoConfig(filepath.Join(metaDirPath, configFileName))
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}
	userConfigPath := opts.userConfigPath
	if userConfigPath == "" {
		userConfigPath, err = spgitconfig.DefaultUserConfigPath()
		if err != nil {
			_ = fileLock.Unlock()
			return nil, err
		}
	}
	userConfig, err := spgitconfig.LoadUserConfig(userConfigPath)
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return &Repository{
		logger:      logger,
		rootDirPath: rootDirPath,
		metaDirPath: metaDirPath,
		fileLock:    fileLock,
		objects:     spgitstore.NewStore(logger, filepath.Join(metaDirPath, "objects")),
		refs:        spgitref.NewStore(logger, metaDirPath),
		index:       index,
		repoConfig:  repoConfig,
		userConfig:  userConfig,
		remote:      opts.remote,
		now:         now,
	}, nil
}

// Close releases the repository lock.
func (r *Repository) Close() error {
	return r.fileLock.Unlock()
}

// Index returns the staging area.
func (r *Repository) Index() *spgitindex.Index {
	return r.index
}

// Objects returns the object store.
func (r *Repository) Objects() *spgitstore.Store {
	return r.objects
}

// Refs returns the ref store.
func (r *Repository) Refs() *spgitref.Store {
	return r.refs
}

// Config returns the repository configuration.
func (r *Repository) Config() *spgitconfig.RepoConfig {
	return r.repoConfig
}

func (r *Repository) saveRepoConfig() error {
	return spgitconfig.SaveRepoConfig(filepath.Join(r.metaDirPath, configFileName), r.repoConfig)
}

func (r *Repository) signature() spgitobject.Signature {
	name := r.userConfig.User.Name
	if name == "" {
		name = defaultUserName
	}
	email := r.userConfig.User.Email
	if email == "" {
		email = defaultUserEmail
	}
	return spgitobject.NewSignature(name, email, r.now())
}

func (r *Repository) newLogRecord(action string, message string) spgitref.LogRecord {
	return spgitref.LogRecord{
		Actor:   r.signature(),
		Action:  action,
		Message: message,
	}
}

// CurrentBranch returns the checked-out branch name, or ok=false when HEAD
// is detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, bool, error) {
	headRef, err := r.refs.Read(ctx, spgitref.HEAD)
	if err != nil {
		return "", false, err
	}
	if !headRef.IsSymbolic() {
		return "", false, nil
	}
	branch, ok := spgitref.BranchName(headRef.SymbolicTarget)
	if !ok {
		return "", false, fmt.Errorf("HEAD points outside refs/heads: %s", headRef.SymbolicTarget)
	}
	return branch, true, nil
}

// Head resolves HEAD to a commit digest. ok is false on an unborn branch.
func (r *Repository) Head(ctx context.Context) (spgithash.Digest, bool, error) {
	digest, err := r.refs.Resolve(ctx, spgitref.HEAD)
	if err != nil {
		if spgitref.IsNotExist(err) {
			return spgithash.Digest{}, false, nil
		}
		return spgithash.Digest{}, false, err
	}
	return digest, true, nil
}

// ResolveRevision resolves a user-supplied revision: HEAD, a branch name, a
// tag name (annotated tags peel to their target commit), a remote tracking
// ref, a full ref name, or a 40-hex digest.
func (r *Repository) ResolveRevision(ctx context.Context, revision string) (spgithash.Digest, error) {
	if revision == "" || revision == spgitref.HEAD {
		digest, ok, err := r.Head(ctx)
		if err != nil {
			return spgithash.Digest{}, err
		}
		if !ok {
			return spgithash.Digest{}, NewUserError("HEAD is unborn: create the first commit")
		}
		return digest, nil
	}
	for _, candidate := range []string{
		spgitref.BranchRef(revision),
		spgitref.TagRef(revision),
		spgitref.RemotePrefix + revision,
		revision,
	} {
		digest, err := r.refs.Resolve(ctx, candidate)
		if err == nil {
			return r.peel(ctx, digest)
		}
		if !spgitref.IsNotExist(err) && candidate != revision {
			return spgithash.Digest{}, err
		}
	}
	if len(revision) == spgithash.HexLength {
		digest, err := spgithash.ParseDigest(revision)
		if err == nil {
			exists, err := r.objects.Exists(ctx, digest)
			if err != nil {
				return spgithash.Digest{}, err
			}
			if exists {
				return r.peel(ctx, digest)
			}
		}
	}
	return spgithash.Digest{}, NewUserError("unknown revision %q", revision)
}

// peel follows annotated tags to the commit they point at.
func (r *Repository) peel(ctx context.Context, digest spgithash.Digest) (spgithash.Digest, error) {
	kind, payload, err := r.objects.Get(ctx, digest)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if kind != spgitobject.KindTag {
		return digest, nil
	}
	tag, err := spgitobject.UnmarshalTag(payload)
	if err != nil {
		return spgithash.Digest{}, err
	}
	return r.peel(ctx, tag.Object)
}

// headItems returns the items of HEAD's tree, or an empty list on an unborn
// branch.
func (r *Repository) headItems(ctx context.Context) ([]spgitobject.Item, error) {
	head, ok, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	commit, err := r.objects.GetCommit(ctx, head)
	if err != nil {
		return nil, err
	}
	return r.objects.GetItemsForTree(ctx, commit.Tree)
}

// advanceHead moves the current branch (or detached HEAD) to digest with
// the given reflog action and message, mirroring the entry onto HEAD's log.
func (r *Repository) advanceHead(ctx context.Context, digest spgithash.Digest, action string, message string) error {
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	old, _, err := r.Head(ctx)
	if err != nil {
		return err
	}
	record := r.newLogRecord(action, message)
	if onBranch {
		if err := r.refs.Update(ctx, spgitref.BranchRef(branch), &old, digest, record); err != nil {
			return err
		}
		record.Old = old
		record.New = digest
		return r.refs.AppendLog(ctx, spgitref.HEAD, record)
	}
	return r.refs.SetDetached(ctx, spgitref.HEAD, digest, spgitref.LogRecord{
		Old:     old,
		New:     digest,
		Actor:   record.Actor,
		Action:  action,
		Message: message,
	})
}

func findRoot(dirPath string) (string, error) {
	current := dirPath
	for {
		if fileInfo, err := os.Stat(filepath.Join(current, MetaDirName)); err == nil && fileInfo.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotARepository
		}
		current = parent
	}
}
