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
	"sort"
	"strings"

	"github.com/pap-art/spgit/internal/spgit/spgitdiff"
	"github.com/pap-art/spgit/internal/spgit/spgitgraph"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"go.uber.org/zap"
)

// Commit writes the staged index as a new commit on the current branch and
// returns its digest.
func (r *Repository) Commit(ctx context.Context, message string) (spgithash.Digest, error) {
	if message == "" {
		return spgithash.Digest{}, NewUserError("empty commit message")
	}
	head, born, err := r.Head(ctx)
	if err != nil {
		return spgithash.Digest{}, err
	}
	treeDigest, err := r.index.ToTree(ctx, r.objects)
	if err != nil {
		return spgithash.Digest{}, err
	}
	var parents []spgithash.Digest
	if born {
		headCommit, err := r.objects.GetCommit(ctx, head)
		if err != nil {
			return spgithash.Digest{}, err
		}
		if headCommit.Tree == treeDigest {
			return spgithash.Digest{}, NewUserError("nothing to commit")
		}
		parents = []spgithash.Digest{head}
	} else if len(r.index.Items) == 0 && !r.index.Modified {
		return spgithash.Digest{}, NewUserError("nothing to commit")
	}
	commitDigest, err := r.createCommit(ctx, treeDigest, parents, message)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if err := r.advanceHead(ctx, commitDigest, "commit", firstLine(message)); err != nil {
		return spgithash.Digest{}, err
	}
	r.index.Modified = false
	if err := r.index.Save(); err != nil {
		return spgithash.Digest{}, err
	}
	r.logger.Debug("committed", zap.String("digest", commitDigest.String()))
	return commitDigest, nil
}

// createCommit persists a commit object with the repository's signature.
func (r *Repository) createCommit(
	ctx context.Context,
	treeDigest spgithash.Digest,
	parents []spgithash.Digest,
	message string,
) (spgithash.Digest, error) {
	signature := r.signature()
	return r.objects.PutCommit(ctx, &spgitobject.Commit{
		Tree:      treeDigest,
		Parents:   parents,
		Author:    signature,
		Committer: signature,
		Message:   message,
	})
}

// LogEntry is one commit in log output.
type LogEntry struct {
	Digest spgithash.Digest
	Commit *spgitobject.Commit
}

// Log returns commits reachable from the revision (default HEAD), newest
// first by commit timestamp. A limit of 0 means no limit.
func (r *Repository) Log(ctx context.Context, revision string, limit int) ([]LogEntry, error) {
	from, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return nil, err
	}
	walker := spgitgraph.NewWalker(ctx, r.objects, from)
	var entries []LogEntry
	for {
		node, err := walker.Next()
		if err != nil {
			return nil, err
		}
		if node == nil {
			break
		}
		entries = append(entries, LogEntry{Digest: node.Digest, Commit: node.Commit})
	}
	sort.SliceStable(entries, func(i int, j int) bool {
		if entries[i].Commit.Committer.Unix != entries[j].Commit.Committer.Unix {
			return entries[i].Commit.Committer.Unix > entries[j].Commit.Committer.Unix
		}
		return entries[i].Digest.String() > entries[j].Digest.String()
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ShowResult describes one commit for display.
type ShowResult struct {
	Digest spgithash.Digest
	Commit *spgitobject.Commit
	// Items is the commit's full tree contents.
	Items []spgitobject.Item
	// Changes is the delta versus the first parent (versus empty for a
	// root commit).
	Changes *spgitdiff.Changes
}

// Show resolves a revision and returns its commit, tree, and delta.
func (r *Repository) Show(ctx context.Context, revision string) (*ShowResult, error) {
	digest, err := r.ResolveRevision(ctx, revision)
	if err != nil {
		return nil, err
	}
	commit, err := r.objects.GetCommit(ctx, digest)
	if err != nil {
		return nil, err
	}
	items, err := r.objects.GetItemsForTree(ctx, commit.Tree)
	if err != nil {
		return nil, err
	}
	var parentItems []spgitobject.Item
	if len(commit.Parents) > 0 {
		parentCommit, err := r.objects.GetCommit(ctx, commit.Parents[0])
		if err != nil {
			return nil, err
		}
		parentItems, err = r.objects.GetItemsForTree(ctx, parentCommit.Tree)
		if err != nil {
			return nil, err
		}
	}
	return &ShowResult{
		Digest:  digest,
		Commit:  commit,
		Items:   items,
		Changes: spgitdiff.Compute(parentItems, items),
	}, nil
}

// BlameResult reports the commit that introduced an item.
type BlameResult struct {
	Digest spgithash.Digest
	Commit *spgitobject.Commit
}

// Blame walks HEAD's ancestry and reports the earliest commit whose tree
// contains the item while its first parent's tree does not.
//
// An item that was moved but present throughout is attributed to the
// commit that introduced it.
func (r *Repository) Blame(ctx context.Context, itemID string) (*BlameResult, error) {
	head, born, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}
	if !born {
		return nil, NewUserError("HEAD is unborn: create the first commit")
	}
	walker := spgitgraph.NewWalker(ctx, r.objects, head)
	var (
		best       *BlameResult
		bestUnix   int64
		bestDigest string
	)
	for {
		node, err := walker.Next()
		if err != nil {
			return nil, err
		}
		if node == nil {
			break
		}
		tree, err := r.objects.GetTree(ctx, node.Commit.Tree)
		if err != nil {
			return nil, err
		}
		if tree.Entry(itemID) == nil {
			continue
		}
		introduced := true
		if len(node.Commit.Parents) > 0 {
			parentTree, err := r.objects.GetTreeForCommit(ctx, node.Commit.Parents[0])
			if err != nil {
				return nil, err
			}
			introduced = parentTree.Entry(itemID) == nil
		}
		if !introduced {
			continue
		}
		unix := node.Commit.Committer.Unix
		hexDigest := node.Digest.String()
		if best == nil || unix < bestUnix || (unix == bestUnix && hexDigest < bestDigest) {
			best = &BlameResult{Digest: node.Digest, Commit: node.Commit}
			bestUnix = unix
			bestDigest = hexDigest
		}
	}
	if best == nil {
		return nil, NewUserError("item %s not found in history", itemID)
	}
	return best, nil
}

// Reflog returns the reflog for a ref (default HEAD), newest first.
func (r *Repository) Reflog(ctx context.Context, refName string) ([]spgitref.LogRecord, error) {
	if refName == "" {
		refName = spgitref.HEAD
	} else if refName != spgitref.HEAD && !strings.HasPrefix(refName, "refs/") {
		refName = spgitref.BranchRef(refName)
	}
	return r.refs.ReadLog(ctx, refName)
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}
