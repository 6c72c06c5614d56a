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
	"context"
	"fmt"
	"sort"

	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"go.uber.org/zap"
)

// RemoteAdd resolves the catalog URL and registers it as a named remote.
//
// The first remote added becomes the default and, when no working list is
// bound yet, binds the repository's working list.
func (r *Repository) RemoteAdd(ctx context.Context, name string, listURL string) error {
	if r.remote == nil {
		return NewUserError("no catalog connection available")
	}
	if name == "" {
		return NewUserError("invalid remote name %q", name)
	}
	if r.repoConfig.Remotes == nil {
		r.repoConfig.Remotes = make(map[string]spgitconfig.Remote)
	}
	if _, ok := r.repoConfig.Remotes[name]; ok {
		return NewUserError("remote %s already exists", name)
	}
	listID, err := r.remote.ResolveURL(ctx, listURL)
	if err != nil {
		return err
	}
	r.repoConfig.Remotes[name] = spgitconfig.Remote{URL: listURL, ListID: listID}
	if r.repoConfig.DefaultRemote == "" {
		r.repoConfig.DefaultRemote = name
	}
	if r.repoConfig.ListID == "" {
		r.repoConfig.ListID = listID
	}
	return r.saveRepoConfig()
}

// RemoteCreate creates a new list in the catalog and registers it as a
// named remote.
func (r *Repository) RemoteCreate(ctx context.Context, name string, listName string) error {
	if r.remote == nil {
		return NewUserError("no catalog connection available")
	}
	if r.repoConfig.Remotes == nil {
		r.repoConfig.Remotes = make(map[string]spgitconfig.Remote)
	}
	if _, ok := r.repoConfig.Remotes[name]; ok {
		return NewUserError("remote %s already exists", name)
	}
	if listName == "" {
		listName = r.repoConfig.ListName
	}
	listID, err := r.remote.CreateList(ctx, listName)
	if err != nil {
		return err
	}
	r.repoConfig.Remotes[name] = spgitconfig.Remote{ListID: listID}
	if r.repoConfig.DefaultRemote == "" {
		r.repoConfig.DefaultRemote = name
	}
	if r.repoConfig.ListID == "" {
		r.repoConfig.ListID = listID
	}
	return r.saveRepoConfig()
}

// RemoteRemove deletes a named remote from the configuration.
func (r *Repository) RemoteRemove(ctx context.Context, name string) error {
	if _, ok := r.repoConfig.Remotes[name]; !ok {
		return NewUserError("remote %s does not exist", name)
	}
	delete(r.repoConfig.Remotes, name)
	if r.repoConfig.DefaultRemote == name {
		r.repoConfig.DefaultRemote = ""
	}
	return r.saveRepoConfig()
}

// RemoteInfo describes one configured remote.
type RemoteInfo struct {
	Name    string
	URL     string
	ListID  string
	Default bool
}

// RemoteList lists configured remotes sorted by name.
func (r *Repository) RemoteList(ctx context.Context) []RemoteInfo {
	infos := make([]RemoteInfo, 0, len(r.repoConfig.Remotes))
	for name, remote := range r.repoConfig.Remotes {
		infos = append(infos, RemoteInfo{
			Name:    name,
			URL:     remote.URL,
			ListID:  remote.ListID,
			Default: name == r.repoConfig.DefaultRemote,
		})
	}
	sort.Slice(infos, func(i int, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Fetch reads the remote list's current state, snapshots it as a commit,
// and advances the remote tracking ref. Returns the tracking commit.
//
// If the remote state is unchanged since the last fetch no new commit is
// created.
func (r *Repository) Fetch(ctx context.Context, remoteName string) (spgithash.Digest, error) {
	remoteName, remote, err := r.resolveRemote(remoteName)
	if err != nil {
		return spgithash.Digest{}, err
	}
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if !onBranch {
		branch = DefaultBranch
	}
	items, err := r.remote.FetchItems(ctx, remote.ListID)
	if err != nil {
		return spgithash.Digest{}, err
	}
	treeDigest, err := r.objects.PutItemsAsTree(ctx, items)
	if err != nil {
		return spgithash.Digest{}, err
	}
	trackingRef := spgitref.RemoteRef(remoteName, branch)
	var parents []spgithash.Digest
	if previous, err := r.refs.Resolve(ctx, trackingRef); err == nil {
		previousCommit, err := r.objects.GetCommit(ctx, previous)
		if err != nil {
			return spgithash.Digest{}, err
		}
		if previousCommit.Tree == treeDigest {
			return previous, nil
		}
		parents = []spgithash.Digest{previous}
	} else if !spgitref.IsNotExist(err) {
		return spgithash.Digest{}, err
	}
	commitDigest, err := r.createCommit(ctx, treeDigest, parents, fmt.Sprintf("Fetch from %s", remoteName))
	if err != nil {
		return spgithash.Digest{}, err
	}
	if err := r.refs.Update(ctx, trackingRef, nil, commitDigest, r.newLogRecord("fetch", "from "+remoteName)); err != nil {
		return spgithash.Digest{}, err
	}
	r.logger.Debug("fetched", zap.String("remote", remoteName), zap.Int("items", len(items)))
	return commitDigest, nil
}

// Pull fetches the remote list and merges the tracking commit into the
// current branch under the strategy.
func (r *Repository) Pull(ctx context.Context, remoteName string, strategy spgitmerge.Strategy) (*MergeResult, error) {
	remoteName, _, err := r.resolveRemote(remoteName)
	if err != nil {
		return nil, err
	}
	tracking, err := r.Fetch(ctx, remoteName)
	if err != nil {
		return nil, err
	}
	_, born, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	if !born {
		// an unborn branch adopts the remote state wholesale
		if err := r.advanceHead(ctx, tracking, "pull", "from "+remoteName); err != nil {
			return nil, err
		}
		if err := r.resetIndexToCommit(ctx, tracking); err != nil {
			return nil, err
		}
		return &MergeResult{Outcome: MergeOutcomeFastForward, Head: tracking}, nil
	}
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	mergeBranch := branch
	if !onBranch {
		mergeBranch = DefaultBranch
	}
	return r.Merge(
		ctx,
		tracking.String(),
		strategy,
		false,
		fmt.Sprintf("Merge remote list '%s' into %s", remoteName, displayBranch(mergeBranch)),
	)
}

// Push publishes HEAD's tree to the remote list, replacing its contents,
// and advances the tracking ref to HEAD.
//
// The remote call happens only after the local commit to publish is
// chosen, so a remote failure leaves local state unchanged.
func (r *Repository) Push(ctx context.Context, remoteName string) error {
	remoteName, remote, err := r.resolveRemote(remoteName)
	if err != nil {
		return err
	}
	head, born, err := r.Head(ctx)
	if err != nil {
		return err
	}
	if !born {
		return NewUserError("HEAD is unborn: create the first commit before pushing")
	}
	items, err := r.commitItems(ctx, head)
	if err != nil {
		return err
	}
	if err := r.remote.ReplaceItems(ctx, remote.ListID, spgitobject.ItemIDs(items)); err != nil {
		return err
	}
	branch, onBranch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if !onBranch {
		branch = DefaultBranch
	}
	trackingRef := spgitref.RemoteRef(remoteName, branch)
	if err := r.refs.Update(ctx, trackingRef, nil, head, r.newLogRecord("update by push", "")); err != nil {
		return err
	}
	if onBranch {
		if r.repoConfig.Branches == nil {
			r.repoConfig.Branches = make(map[string]spgitconfig.Branch)
		}
		if _, ok := r.repoConfig.Branches[branch]; !ok {
			r.repoConfig.Branches[branch] = spgitconfig.Branch{Remote: remoteName, Merge: branch}
			if err := r.saveRepoConfig(); err != nil {
				return err
			}
		}
	}
	r.logger.Debug("pushed", zap.String("remote", remoteName), zap.Int("items", len(items)))
	return nil
}

func (r *Repository) resolveRemote(remoteName string) (string, spgitconfig.Remote, error) {
	if r.remote == nil {
		return "", spgitconfig.Remote{}, NewUserError("no catalog connection available")
	}
	if remoteName == "" {
		remoteName = r.repoConfig.DefaultRemote
	}
	if remoteName == "" {
		return "", spgitconfig.Remote{}, NewUserError("no remote configured: run 'spgit remote add' first")
	}
	remote, ok := r.repoConfig.Remotes[remoteName]
	if !ok {
		return "", spgitconfig.Remote{}, NewUserError("remote %s does not exist", remoteName)
	}
	return remoteName, remote, nil
}
