package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/util"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThreadWithReply(t *testing.T, h *harness) (*model.User, *model.ForumThread, *model.ForumReply) {
	t.Helper()
	author := h.user(t, model.Student)
	thread, err := h.forum.Create(author.ID, &ThreadRequest{Title: "Duda con limites", Content: "No entiendo"})
	require.NoError(t, err)
	replier := h.user(t, model.Creator)
	reply, err := h.forum.Reply(replier.ID, thread.ID, &ReplyRequest{Content: "Factoriza primero"})
	require.NoError(t, err)
	return author, thread, reply
}

func TestVoteToggles(t *testing.T) {
	h := newHarness(t)
	_, _, reply := newThreadWithReply(t, h)
	voter := h.user(t, model.Student)

	res, err := h.forum.Vote(voter.ID, reply.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Votes)
	assert.Equal(t, "created", res.Action)

	res, err = h.forum.Vote(voter.ID, reply.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Votes)
	assert.Equal(t, "removed", res.Action)
	assert.Nil(t, res.Vote)

	res, err = h.forum.Vote(voter.ID, reply.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, -1, res.Votes)
	assert.Equal(t, "created", res.Action)

	res, err = h.forum.Vote(voter.ID, reply.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Votes)
	assert.Equal(t, "switched", res.Action)

	_, err = h.forum.Vote(voter.ID, reply.ID, "sideways")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestVoteTallyMatchesStoredVotes(t *testing.T) {
	h := newHarness(t)
	_, _, reply := newThreadWithReply(t, h)
	voters := []*model.User{h.user(t, model.Student), h.user(t, model.Student), h.user(t, model.Creator)}

	rng := rand.New(rand.NewSource(42))
	current := map[uint]int{}
	var last *VoteResult
	for i := 0; i < 60; i++ {
		v := voters[rng.Intn(len(voters))]
		kind := model.VoteUp
		if rng.Intn(2) == 0 {
			kind = model.VoteDown
		}

		var err error
		last, err = h.forum.Vote(v.ID, reply.ID, kind)
		require.NoError(t, err)

		if current[v.ID] == kind.Delta() {
			current[v.ID] = 0
		} else {
			current[v.ID] = kind.Delta()
		}

		want := 0
		for _, d := range current {
			want += d
		}
		require.Equal(t, want, last.Votes, "step %d", i)

		balance, err := h.forum.Repo.VoteBalance(reply.ID)
		require.NoError(t, err)
		stored, err := h.forum.Repo.FindReply(reply.ID)
		require.NoError(t, err)
		require.Equal(t, balance, stored.Votes, "step %d", i)
	}

	var stored int64
	require.NoError(t, h.db.Model(&model.ReplyVote{}).Where("reply_id = ?", reply.ID).Count(&stored).Error)
	nonZero := 0
	for _, d := range current {
		if d != 0 {
			nonZero++
		}
	}
	assert.EqualValues(t, nonZero, stored)
}

func TestThreadLifecycle(t *testing.T) {
	h := newHarness(t)
	author, thread, reply := newThreadWithReply(t, h)
	stranger := h.user(t, model.Student)
	admin := h.user(t, model.Admin)

	assert.Equal(t, "general", thread.Category)

	detail, err := h.forum.Detail(thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Views)

	_, err = h.forum.Resolve(stranger.ID, thread.ID, true)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = h.forum.MarkSolution(stranger.ID, reply.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	marked, err := h.forum.MarkSolution(author.ID, reply.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsSolution)

	resolved, err := h.forum.Detail(thread.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)

	_, err = h.forum.SetClosed(claimsFor(stranger), thread.ID, true)
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = h.forum.SetClosed(claimsFor(admin), thread.ID, true)
	require.NoError(t, err)

	_, err = h.forum.Reply(stranger.ID, thread.ID, &ReplyRequest{Content: "tarde"})
	assert.ErrorIs(t, err, util.ErrThreadClosed)
}
