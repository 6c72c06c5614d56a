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

package spgitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitmerge"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitref"
	"github.com/pap-art/spgit/internal/spgit/spgitremote/spgitremotemem"
	"github.com/pap-art/spgit/internal/spgit/spgitrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRepo struct {
	*spgitrepo.Repository

	t      *testing.T
	ctx    context.Context
	dir    string
	remote *spgitremotemem.RemoteList
	listID string
}

func newTestRepo(t *testing.T) *testRepo {
	ctx := context.Background()
	dir := t.TempDir()
	remote := spgitremotemem.NewRemoteList()
	listID, err := remote.CreateList(ctx, "Test List")
	require.NoError(t, err)
	remote.SetURL("https://catalog.example.com/lists/test", listID)
	var unix int64 = 1700000000
	repository, err := spgitrepo.Init(
		ctx,
		zap.NewNop(),
		dir,
		"Test List",
		spgitrepo.WithRemoteList(remote),
		spgitrepo.WithUserConfigPath(filepath.Join(dir, "user-config")),
		spgitrepo.WithClock(func() time.Time {
			return time.Unix(atomic.AddInt64(&unix, 1), 0).UTC()
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repository.Close()
	})
	// bind the working list so add/push/pull have a catalog to talk to
	require.NoError(t, repository.RemoteAdd(ctx, "origin", "https://catalog.example.com/lists/test"))
	return &testRepo{
		Repository: repository,
		t:          t,
		ctx:        ctx,
		dir:        dir,
		remote:     remote,
		listID:     listID,
	}
}

func (r *testRepo) stage(ids ...string) {
	r.Index().StageFrom(testItems(ids...))
	require.NoError(r.t, r.Index().Save())
}

func (r *testRepo) commit(message string, ids ...string) spgithash.Digest {
	r.stage(ids...)
	digest, err := r.Commit(r.ctx, message)
	require.NoError(r.t, err)
	return digest
}

func (r *testRepo) headIDs() []string {
	result, err := r.Show(r.ctx, "HEAD")
	require.NoError(r.t, err)
	return spgitobject.ItemIDs(result.Items)
}

func testItems(ids ...string) []spgitobject.Item {
	items := make([]spgitobject.Item, len(ids))
	for i, id := range ids {
		items[i] = spgitobject.Item{
			ID:         "catalog:item:" + id,
			Name:       "Item " + id,
			Creator:    "Creator",
			Container:  "Album",
			DurationMS: 180000,
		}
	}
	return items
}

func testIDs(ids ...string) []string {
	full := make([]string, len(ids))
	for i, id := range ids {
		full[i] = "catalog:item:" + id
	}
	return full
}

func TestInitLayout(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	headData, err := os.ReadFile(filepath.Join(r.dir, ".spgit", "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/main\n", string(headData))
	_, err = os.Stat(filepath.Join(r.dir, ".spgit", "refs", "heads", "main"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, r.Index().Items)
	_, err = os.Stat(filepath.Join(r.dir, ".spgit", "index"))
	assert.NoError(t, err)
}

func TestInitTwiceFails(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	_, err := spgitrepo.Init(r.ctx, zap.NewNop(), r.dir, "X")
	assert.True(t, spgitrepo.IsUserError(err))
}

func TestOpenNotARepository(t *testing.T) {
	t.Parallel()
	_, err := spgitrepo.Open(context.Background(), zap.NewNop(), t.TempDir())
	assert.True(t, spgitrepo.IsNotARepository(err))
}

func TestFirstCommit(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	digest := r.commit("first", "I1", "I2")

	commit, err := r.Objects().GetCommit(r.ctx, digest)
	require.NoError(t, err)
	assert.Empty(t, commit.Parents)
	tree, err := r.Objects().GetTree(r.ctx, commit.Tree)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 2)
	assert.Equal(t, 0, tree.Entries[0].Position)
	assert.Equal(t, 1, tree.Entries[1].Position)

	branchDigest, err := r.Refs().Resolve(r.ctx, "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, digest, branchDigest)

	headLog, err := r.Reflog(r.ctx, "HEAD")
	require.NoError(t, err)
	require.Len(t, headLog, 1)
	assert.True(t, headLog[0].Old.IsZero())
	assert.Equal(t, digest, headLog[0].New)
}

func TestCommitNothingToCommit(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("first", "A")
	r.stage("A")
	_, err := r.Commit(r.ctx, "again")
	assert.True(t, spgitrepo.IsUserError(err))
}

func TestFastForwardMerge(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("base", "A", "B")
	require.NoError(t, r.BranchCreate(r.ctx, "f", ""))
	require.NoError(t, r.Checkout(r.ctx, "f"))
	fHead := r.commit("add C", "A", "B", "C")
	require.NoError(t, r.Checkout(r.ctx, "main"))

	result, err := r.Merge(r.ctx, "f", spgitmerge.StrategyUnion, false, "")
	require.NoError(t, err)
	assert.Equal(t, spgitrepo.MergeOutcomeFastForward, result.Outcome)
	assert.Equal(t, fHead, result.Head)

	mainDigest, err := r.Refs().Resolve(r.ctx, "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, fHead, mainDigest)

	branchLog, err := r.Reflog(r.ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "merge f", branchLog[0].Action)
	assert.Equal(t, "fast-forward", branchLog[0].Message)
}

func TestUnionMergeWithDivergence(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("base", "A", "B")
	require.NoError(t, r.BranchCreate(r.ctx, "feature", ""))
	mainHead := r.commit("add C", "A", "B", "C")
	require.NoError(t, r.Checkout(r.ctx, "feature"))
	featureHead := r.commit("add D", "A", "B", "D")
	require.NoError(t, r.Checkout(r.ctx, "main"))

	result, err := r.Merge(r.ctx, "feature", spgitmerge.StrategyUnion, false, "")
	require.NoError(t, err)
	assert.Equal(t, spgitrepo.MergeOutcomeMerge, result.Outcome)
	assert.Equal(t, testIDs("A", "B", "C", "D"), r.headIDs())

	mergeCommit, err := r.Objects().GetCommit(r.ctx, result.Head)
	require.NoError(t, err)
	require.Len(t, mergeCommit.Parents, 2)
	assert.Equal(t, mainHead, mergeCommit.Parents[0])
	assert.Equal(t, featureHead, mergeCommit.Parents[1])
	assert.Equal(t, "Merge branch 'feature'", mergeCommit.Subject())
}

func TestIntersectionMerge(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("base", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "feature", ""))
	r.commit("main", "A", "B", "C")
	require.NoError(t, r.Checkout(r.ctx, "feature"))
	r.commit("feature", "B", "C", "D")
	require.NoError(t, r.Checkout(r.ctx, "main"))

	result, err := r.Merge(r.ctx, "feature", spgitmerge.StrategyIntersection, false, "")
	require.NoError(t, err)
	assert.Equal(t, spgitrepo.MergeOutcomeMerge, result.Outcome)
	assert.Equal(t, testIDs("B", "C"), r.headIDs())
}

func TestMergeUpToDate(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	first := r.commit("first", "A")
	r.commit("second", "A", "B")

	result, err := r.Merge(r.ctx, first.String(), spgitmerge.StrategyUnion, false, "")
	require.NoError(t, err)
	assert.Equal(t, spgitrepo.MergeOutcomeUpToDate, result.Outcome)
}

func TestMergeNoFF(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("base", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "f", ""))
	require.NoError(t, r.Checkout(r.ctx, "f"))
	r.commit("add B", "A", "B")
	require.NoError(t, r.Checkout(r.ctx, "main"))

	result, err := r.Merge(r.ctx, "f", spgitmerge.StrategyUnion, true, "")
	require.NoError(t, err)
	assert.Equal(t, spgitrepo.MergeOutcomeMerge, result.Outcome)
	mergeCommit, err := r.Objects().GetCommit(r.ctx, result.Head)
	require.NoError(t, err)
	assert.Len(t, mergeCommit.Parents, 2)
}

func TestRevert(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A", "B")
	c2 := r.commit("c2 adds D", "A", "B", "D")

	c3, err := r.Revert(r.ctx, c2.String())
	require.NoError(t, err)
	assert.Equal(t, testIDs("A", "B"), r.headIDs())
	c3Commit, err := r.Objects().GetCommit(r.ctx, c3)
	require.NoError(t, err)
	require.Len(t, c3Commit.Parents, 1)
	assert.Equal(t, c2, c3Commit.Parents[0])
	assert.Equal(t, `Revert "c2 adds D"`, c3Commit.Subject())
}

func TestRevertOfRevertRestoresTree(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	c2 := r.commit("c2", "A", "B")
	c3, err := r.Revert(r.ctx, c2.String())
	require.NoError(t, err)
	_, err = r.Revert(r.ctx, c3.String())
	require.NoError(t, err)
	// two reverts cancel at the tree level
	assert.Equal(t, testIDs("A", "B"), r.headIDs())
}

func TestCherryPick(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	base := r.commit("base", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "feature", ""))
	require.NoError(t, r.Checkout(r.ctx, "feature"))
	picked := r.commit("add B", "A", "B")
	require.NoError(t, r.Checkout(r.ctx, "main"))
	r.commit("add C", "A", "C")
	_ = base

	newHead, created, err := r.CherryPick(r.ctx, picked.String())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, testIDs("A", "B", "C"), r.headIDs())
	commit, err := r.Objects().GetCommit(r.ctx, newHead)
	require.NoError(t, err)
	assert.Contains(t, commit.Message, "(cherry picked from commit "+picked.String()+")")
	assert.Equal(t, "add B", commit.Subject())
}

func TestCherryPickNoop(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	c2 := r.commit("c2", "A", "B")

	// HEAD already contains the change
	head, created, err := r.CherryPick(r.ctx, c2.String())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c2, head)
}

func TestRebase(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "feature", ""))
	mainHead := r.commit("main adds C", "A", "C")
	require.NoError(t, r.Checkout(r.ctx, "feature"))
	r.commit("feature adds B", "A", "B")

	result, err := r.Rebase(r.ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Equal(t, testIDs("A", "B", "C"), r.headIDs())

	rebased, err := r.Objects().GetCommit(r.ctx, result.Head)
	require.NoError(t, err)
	require.Len(t, rebased.Parents, 1)
	assert.Equal(t, mainHead, rebased.Parents[0])
}

func TestResetModes(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	c1 := r.commit("c1", "A")
	c2 := r.commit("c2", "A", "B")

	// soft: index keeps c2's tree
	require.NoError(t, r.Reset(r.ctx, c1.String(), spgitrepo.ResetSoft))
	head, _, err := r.Head(r.ctx)
	require.NoError(t, err)
	assert.Equal(t, c1, head)
	assert.Equal(t, testIDs("A", "B"), spgitobject.ItemIDs(r.Index().Items))

	// mixed: index reset to target tree
	require.NoError(t, r.Reset(r.ctx, c2.String(), spgitrepo.ResetMixed))
	require.NoError(t, r.Reset(r.ctx, c1.String(), spgitrepo.ResetMixed))
	assert.Equal(t, testIDs("A"), spgitobject.ItemIDs(r.Index().Items))

	reflog, err := r.Reflog(r.ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "reset", reflog[0].Action)
}

func TestStash(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	r.stage("A", "B")

	_, err := r.StashSave(r.ctx, "wip")
	require.NoError(t, err)
	assert.Equal(t, testIDs("A"), spgitobject.ItemIDs(r.Index().Items))
	assert.False(t, r.Index().Modified)

	entries, err := r.StashList(r.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "wip")

	require.NoError(t, r.StashPop(r.ctx, 0))
	assert.Equal(t, testIDs("A", "B"), spgitobject.ItemIDs(r.Index().Items))
	assert.True(t, r.Index().Modified)

	entries, err = r.StashList(r.ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = r.Refs().Read(r.ctx, spgitref.StashRef)
	assert.True(t, spgitref.IsNotExist(err))
}

func TestStashApplyKeepsEntry(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	r.stage("A", "B")
	_, err := r.StashSave(r.ctx, "one")
	require.NoError(t, err)

	require.NoError(t, r.StashApply(r.ctx, 0))
	entries, err := r.StashList(r.ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStashDropMiddle(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	for _, id := range []string{"B", "C", "D"} {
		r.stage("A", id)
		_, err := r.StashSave(r.ctx, "stash "+id)
		require.NoError(t, err)
	}
	require.NoError(t, r.StashDrop(r.ctx, 1))
	entries, err := r.StashList(r.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Message, "stash D")
	assert.Contains(t, entries[1].Message, "stash B")

	topDigest, err := r.Refs().Resolve(r.ctx, spgitref.StashRef)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Digest, topDigest)
}

func TestAddAndStatus(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.remote.SetItems(r.listID, testItems("A", "B"))
	require.NoError(t, r.Add(r.ctx, nil, true))
	assert.Equal(t, testIDs("A", "B"), spgitobject.ItemIDs(r.Index().Items))

	_, err := r.Commit(r.ctx, "first")
	require.NoError(t, err)

	r.remote.SetItems(r.listID, testItems("A", "B", "C"))
	require.NoError(t, r.Add(r.ctx, testIDs("C"), false))
	status, err := r.Status(r.ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", status.Branch)
	assert.False(t, status.Detached)
	require.Len(t, status.Staged.Added, 1)
	assert.Equal(t, "catalog:item:C", status.Staged.Added[0].Item.ID)
	assert.True(t, status.IndexModified)
}

func TestCheckoutBlockedByModifiedIndex(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "f", ""))
	r.stage("A", "B")
	err := r.Checkout(r.ctx, "f")
	assert.True(t, spgitrepo.IsUserError(err))
}

func TestDetachedCheckout(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	c1 := r.commit("c1", "A")
	r.commit("c2", "A", "B")

	require.NoError(t, r.Checkout(r.ctx, c1.String()))
	status, err := r.Status(r.ctx)
	require.NoError(t, err)
	assert.True(t, status.Detached)
	assert.Equal(t, c1, status.Head)
	assert.Equal(t, testIDs("A"), spgitobject.ItemIDs(r.Index().Items))
}

func TestBranchDeleteGuards(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	require.NoError(t, r.BranchCreate(r.ctx, "f", ""))
	require.NoError(t, r.Checkout(r.ctx, "f"))
	r.commit("c2", "A", "B")
	require.NoError(t, r.Checkout(r.ctx, "main"))

	// f is ahead of main: not merged
	err := r.BranchDelete(r.ctx, "f", false)
	assert.True(t, spgitrepo.IsUserError(err))
	require.NoError(t, r.BranchDelete(r.ctx, "f", true))

	// cannot delete the checked-out branch
	err = r.BranchDelete(r.ctx, "main", true)
	assert.True(t, spgitrepo.IsUserError(err))
}

func TestTags(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	c1 := r.commit("c1", "A")
	require.NoError(t, r.TagCreate(r.ctx, "v1", "", ""))
	require.NoError(t, r.TagCreate(r.ctx, "v1-annotated", "", "the first release"))

	tags, err := r.TagList(r.ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "v1", tags[0].Name)
	assert.False(t, tags[0].Annotated)
	assert.Equal(t, c1, tags[0].Digest)
	assert.True(t, tags[1].Annotated)
	assert.Equal(t, "the first release", tags[1].Message)

	// annotated tags peel to their commit
	resolved, err := r.ResolveRevision(r.ctx, "v1-annotated")
	require.NoError(t, err)
	assert.Equal(t, c1, resolved)

	require.NoError(t, r.TagDelete(r.ctx, "v1"))
	tags, err = r.TagList(r.ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestPushPullFetch(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A", "B")

	require.NoError(t, r.Push(r.ctx, "origin"))
	remoteItems, err := r.remote.FetchItems(r.ctx, r.listID)
	require.NoError(t, err)
	assert.Equal(t, testIDs("A", "B"), spgitobject.ItemIDs(remoteItems))

	// remote mutates out-of-band; pull brings the novel item in
	r.remote.SetItems(r.listID, testItems("A", "B", "X"))
	result, err := r.Pull(r.ctx, "origin", spgitmerge.StrategyUnion)
	require.NoError(t, err)
	assert.Equal(t, testIDs("A", "B", "X"), r.headIDs())
	assert.NotNil(t, result)

	// unchanged remote: fetch reuses the tracking commit
	tracking1, err := r.Fetch(r.ctx, "origin")
	require.NoError(t, err)
	tracking2, err := r.Fetch(r.ctx, "origin")
	require.NoError(t, err)
	assert.Equal(t, tracking1, tracking2)
}

func TestPushFailureLeavesTrackingUntouched(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	err := r.Push(r.ctx, "nosuch")
	assert.True(t, spgitrepo.IsUserError(err))
	_, err = r.Refs().Read(r.ctx, "refs/remotes/nosuch/main")
	assert.True(t, spgitref.IsNotExist(err))
}

func TestBlame(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	c1 := r.commit("c1", "A")
	c2 := r.commit("c2", "A", "B")

	result, err := r.Blame(r.ctx, "catalog:item:A")
	require.NoError(t, err)
	assert.Equal(t, c1, result.Digest)
	result, err = r.Blame(r.ctx, "catalog:item:B")
	require.NoError(t, err)
	assert.Equal(t, c2, result.Digest)

	_, err = r.Blame(r.ctx, "catalog:item:Z")
	assert.True(t, spgitrepo.IsUserError(err))
}

func TestLogOrder(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	r.commit("c2", "A", "B")
	c3 := r.commit("c3", "A", "B", "C")

	entries, err := r.Log(r.ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, c3, entries[0].Digest)
	assert.Equal(t, "c3", entries[0].Commit.Subject())

	limited, err := r.Log(r.ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestFsckClean(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	r.commit("c1", "A")
	r.commit("c2", "A", "B")
	require.NoError(t, r.TagCreate(r.ctx, "v1", "", "release"))

	problems, err := r.Fsck(r.ctx)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
