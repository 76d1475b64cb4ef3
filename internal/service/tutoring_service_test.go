package service

import (
	"context"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeTutor(t *testing.T, h *harness) (*model.User, *model.TutorProfile) {
	t.Helper()
	creator := h.user(t, model.Creator)
	active := true
	tutor, err := h.tutoring.UpdateMe(creator.ID, &TutorProfileRequest{
		Subjects: "algebra, calculo",
		Rate30:   150,
		Rate60:   280,
		Active:   &active,
	})
	require.NoError(t, err)
	return creator, tutor
}

func TestTutorListing(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)

	tutor, err := h.tutoring.Me(creator.ID)
	require.NoError(t, err)
	assert.False(t, tutor.Active)

	tutors, err := h.tutoring.Tutors()
	require.NoError(t, err)
	assert.Empty(t, tutors)

	active := true
	_, err = h.tutoring.UpdateMe(creator.ID, &TutorProfileRequest{Subjects: "fisica", Rate30: 100, Rate60: 180, Active: &active})
	require.NoError(t, err)

	tutors, err = h.tutoring.Tutors()
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "fisica", tutors[0].Subjects)
	assert.Equal(t, "Matematicas", tutors[0].Specialty)

	_, err = h.tutoring.Me(h.user(t, model.Student).ID)
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestRequestSession(t *testing.T) {
	h := newHarness(t)
	creator, tutor := activeTutor(t, h)
	student := h.user(t, model.Student)

	session, err := h.tutoring.Request(context.Background(), student.ID, &SessionRequest{
		TutorID:         tutor.ID,
		Subject:         "Derivadas",
		ScheduledAt:     time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionRequested, session.Status)
	assert.Equal(t, 280.0, session.Price)

	for _, id := range []uint{creator.ID, student.ID} {
		count, err := h.notifications.UnreadCount(id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	}
	sent := h.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, creator.Email, sent[0].To.Address)

	_, err = h.tutoring.Request(context.Background(), student.ID, &SessionRequest{
		TutorID:         tutor.ID,
		Subject:         "Integrales",
		ScheduledAt:     time.Now().Add(-time.Hour),
		DurationMinutes: 30,
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestRequestInactiveTutor(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	tutor, err := h.tutoring.Me(creator.ID)
	require.NoError(t, err)

	_, err = h.tutoring.Request(context.Background(), h.user(t, model.Student).ID, &SessionRequest{
		TutorID:         tutor.ID,
		Subject:         "Algebra",
		ScheduledAt:     time.Now().Add(time.Hour),
		DurationMinutes: 30,
	})
	assert.ErrorIs(t, err, util.ErrTutorInactive)
}

func TestSessionTransitions(t *testing.T) {
	h := newHarness(t)
	creator, tutor := activeTutor(t, h)
	student := h.user(t, model.Student)
	session, err := h.tutoring.Request(context.Background(), student.ID, &SessionRequest{
		TutorID:         tutor.ID,
		Subject:         "Limites",
		ScheduledAt:     time.Now().Add(2 * time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, session.Price)

	_, err = h.tutoring.Transition(claimsFor(h.user(t, model.Creator)), session.ID, model.SessionConfirmed)
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = h.tutoring.Transition(claimsFor(student), session.ID, model.SessionConfirmed)
	assert.ErrorIs(t, err, util.ErrForbidden)

	updated, err := h.tutoring.Transition(claimsFor(creator), session.ID, model.SessionConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.SessionConfirmed, updated.Status)

	updated, err = h.tutoring.Transition(claimsFor(creator), session.ID, model.SessionCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, updated.Status)

	_, err = h.tutoring.Transition(claimsFor(h.user(t, model.Admin)), session.ID, model.SessionConfirmed)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	mine, err := h.tutoring.Sessions(claimsFor(creator))
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	mine, err = h.tutoring.Sessions(claimsFor(student))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	count, err := h.notifications.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestConcurrentTransitionsReachOneTerminalState(t *testing.T) {
	h := newHarness(t)
	creator, tutor := activeTutor(t, h)
	student := h.user(t, model.Student)
	session, err := h.tutoring.Request(context.Background(), student.ID, &SessionRequest{
		TutorID:         tutor.ID,
		Subject:         "Vectores",
		ScheduledAt:     time.Now().Add(3 * time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	targets := []model.SessionStatus{model.SessionCompleted, model.SessionCancelled, model.SessionCompleted, model.SessionCancelled}
	results := make([]*model.TutoringSession, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, next := range targets {
		wg.Add(1)
		go func(i int, next model.SessionStatus) {
			defer wg.Done()
			results[i], errs[i] = h.tutoring.Transition(claimsFor(creator), session.ID, next)
		}(i, next)
	}
	wg.Wait()

	var winner model.SessionStatus
	for i, err := range errs {
		if err == nil {
			require.Empty(t, winner, "two transitions succeeded")
			winner = results[i].Status
			continue
		}
		assert.ErrorIs(t, err, util.ErrInvalidTransition)
	}
	require.NotEmpty(t, winner)

	stored, err := h.tutoring.Repo.FindSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, stored.Status)

	moved, err := h.tutoring.Repo.UpdateStatus(session.ID, model.SessionRequested, model.SessionConfirmed)
	require.NoError(t, err)
	assert.False(t, moved)
}
