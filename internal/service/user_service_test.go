package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRoleSwapsProfile(t *testing.T) {
	h := newHarness(t)
	student := h.user(t, model.Student)

	view, err := h.userSvc.Update(student.ID, &AdminUserUpdate{Role: model.Creator, Specialty: "Historia"})
	require.NoError(t, err)
	assert.Equal(t, model.Creator, view.Role)

	fresh, err := h.users.FindWithProfile(student.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.StudentProfile)
	require.NotNil(t, fresh.CreatorProfile)
	assert.Equal(t, "Historia", fresh.CreatorProfile.Specialty)

	info, err := h.userSvc.VerifyRole(student.ID)
	require.NoError(t, err)
	assert.True(t, info.IsCreator)
	assert.False(t, info.IsStudent)
}

func TestUpdateUserRules(t *testing.T) {
	h := newHarness(t)
	a := h.user(t, model.Student)
	b := h.user(t, model.Student)

	_, err := h.userSvc.Update(a.ID, &AdminUserUpdate{Email: b.Email})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
	_, err = h.userSvc.Update(a.ID, &AdminUserUpdate{Status: "banned"})
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = h.userSvc.Update(999999, &AdminUserUpdate{})
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	name := "Beatriz"
	view, err := h.userSvc.Update(a.ID, &AdminUserUpdate{FirstName: &name, Status: model.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, "Beatriz", view.FirstName)
	assert.Equal(t, model.StatusInactive, view.Status)
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, model.Admin)
	student := h.user(t, model.Student)

	assert.ErrorIs(t, h.userSvc.Delete(admin.ID, admin.ID), util.ErrCannotDeleteSelf)
	require.NoError(t, h.userSvc.Delete(admin.ID, student.ID))
	assert.ErrorIs(t, h.userSvc.Delete(admin.ID, student.ID), util.ErrUserNotFound)

	users, total, err := h.userSvc.List(repository.UserFilter{Role: model.Student}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
}

func TestTrackTime(t *testing.T) {
	h := newHarness(t)
	student := h.user(t, model.Student)
	h.achievements.Now = fixedClock(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	st, err := h.userSvc.TrackTime(student.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, st.StudyMinutes)
	assert.Equal(t, 1, st.Streak)

	st, err = h.userSvc.TrackTime(student.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, st.StudyMinutes)
	assert.Equal(t, 1, st.Streak)

	_, err = h.userSvc.TrackTime(student.ID, 0)
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = h.userSvc.TrackTime(h.user(t, model.Creator).ID, 10)
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestStudentDashboard(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 4, 0)

	_, err := h.progress.Enroll(student.ID, f.Course.ID)
	require.NoError(t, err)
	_, err = h.progress.CompleteResource(student.ID, f.Resources[0].ID, 10)
	require.NoError(t, err)

	d, err := h.dashboard.Student(student.ID)
	require.NoError(t, err)
	require.Len(t, d.InProgress, 1)
	assert.EqualValues(t, 1, d.Stats.CompletedResources)
	assert.Equal(t, 1, d.Stats.EnrolledCourses)
	assert.NotEmpty(t, d.RecentActivity)

	stats, err := h.userSvc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Enrollments)
	assert.EqualValues(t, 1, stats.UsersByRole[model.Student])
}
