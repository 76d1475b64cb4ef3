package service

import (
	"context"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shareArticle(t *testing.T, h *harness, author *model.User) *model.CommunityResource {
	t.Helper()
	res, err := h.community.Create(context.Background(), author.ID, &CommunityResourceRequest{
		Title:   "Resumen de derivadas",
		Type:    model.CommunityArticle,
		Content: "La derivada mide el cambio instantaneo.",
	}, nil)
	require.NoError(t, err)
	return res
}

func TestRatingsAverage(t *testing.T) {
	h := newHarness(t)
	res := shareArticle(t, h, h.user(t, model.Creator))
	ana, luis := h.user(t, model.Student), h.user(t, model.Student)

	_, err := h.community.Rate(claimsFor(ana), res.ID, &RatingRequest{Score: 4})
	require.NoError(t, err)
	out, err := h.community.Rate(claimsFor(luis), res.ID, &RatingRequest{Score: 5, Comment: "muy claro"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, out.AverageRating)
	assert.Equal(t, 2, out.RatingCount)

	t.Run("rating again replaces the previous score", func(t *testing.T) {
		out, err := h.community.Rate(claimsFor(ana), res.ID, &RatingRequest{Score: 2})
		require.NoError(t, err)
		assert.Equal(t, 3.5, out.AverageRating)
		assert.Equal(t, 2, out.RatingCount)

		detail, err := h.community.Detail(claimsFor(ana), res.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Ratings, 2)
		assert.Equal(t, 3.5, detail.AverageRating)
	})

	t.Run("scores outside 1 to 5 are rejected", func(t *testing.T) {
		for _, score := range []int{0, 6, -1} {
			_, err := h.community.Rate(claimsFor(ana), res.ID, &RatingRequest{Score: score})
			assert.ErrorIs(t, err, util.ErrInvalidRating)
		}
	})
}

func TestCommunityModeration(t *testing.T) {
	h := newHarness(t)
	h.community.SetAutoApprove(false)
	author := h.user(t, model.Student)
	reader := h.user(t, model.Student)
	admin := h.user(t, model.Admin)

	res := shareArticle(t, h, author)
	assert.False(t, res.Approved)

	_, err := h.community.Detail(claimsFor(reader), res.ID)
	assert.ErrorIs(t, err, util.ErrCommunityResourceNotFound)
	_, err = h.community.Detail(claimsFor(author), res.ID)
	require.NoError(t, err)

	pending, err := h.community.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = h.community.Moderate(res.ID, true)
	require.NoError(t, err)

	list, total, err := h.community.List(repository.CommunityFilter{Query: "derivadas"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	_, err = h.community.Moderate(res.ID, false)
	require.NoError(t, err)
	_, total, err = h.community.List(repository.CommunityFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, h.community.Delete(context.Background(), claimsFor(reader), res.ID), util.ErrForbidden)
	require.NoError(t, h.community.Delete(context.Background(), claimsFor(admin), res.ID))
}

func TestCommunityCreateNeedsBody(t *testing.T) {
	h := newHarness(t)
	_, err := h.community.Create(context.Background(), h.user(t, model.Student).ID, &CommunityResourceRequest{
		Title: "Vacio",
		Type:  model.CommunityDocument,
	}, nil)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestDownloadCountsEachCall(t *testing.T) {
	h := newHarness(t)
	res := shareArticle(t, h, h.user(t, model.Creator))
	reader := h.user(t, model.Student)

	first, err := h.community.Download(claimsFor(reader), res.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Downloads)
	assert.NotEmpty(t, first.Content)

	second, err := h.community.Download(claimsFor(reader), res.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Downloads)
}
