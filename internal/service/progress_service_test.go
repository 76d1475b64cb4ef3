package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCalculateProgress(t *testing.T) {
	cases := []struct {
		name                       string
		done, total, passed, exams int64
		want                       float64
	}{
		{"resources and exams", 6, 10, 0, 1, 36},
		{"everything done", 10, 10, 1, 1, 100},
		{"exams only", 0, 0, 1, 2, 50},
		{"resources only", 1, 3, 0, 0, 33.33},
		{"empty course", 0, 0, 0, 0, 0},
		{"half of each", 5, 10, 1, 2, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateProgress(tc.done, tc.total, tc.passed, tc.exams))
		})
	}
}

func TestCompleteResourceWeighsResourcesAndExams(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 10, 0)
	testutil.CreateExam(t, h.db, f.Course.ID, 5, 70)

	var view *CourseProgress
	for i := 0; i < 6; i++ {
		var err error
		view, err = h.progress.CompleteResource(student.ID, f.Resources[i].ID, 5)
		require.NoError(t, err)
	}

	assert.Equal(t, 36.0, view.Progress)
	assert.False(t, view.Completed)
	assert.EqualValues(t, 6, view.CompletedResources)
	assert.EqualValues(t, 10, view.TotalResources)
	assert.EqualValues(t, 1, view.TotalExams)

	// six resources at 5 points plus the first-resource achievement
	assert.Equal(t, 6*PointsResourceCompleted+10, h.reload(t, student).Points)

	t.Run("repeating a completion changes nothing", func(t *testing.T) {
		again, err := h.progress.CompleteResource(student.ID, f.Resources[0].ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 36.0, again.Progress)
		assert.Equal(t, 6*PointsResourceCompleted+10, h.reload(t, student).Points)
	})

	t.Run("recomputing is idempotent", func(t *testing.T) {
		first, err := h.progress.Refresh(student.ID, f.Course.ID)
		require.NoError(t, err)
		second, err := h.progress.Refresh(student.ID, f.Course.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Progress, second.Progress)
	})
}

func TestCourseCompletionAwardsBonusOnce(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 2, 0)

	_, err := h.progress.CompleteResource(student.ID, f.Resources[0].ID, 0)
	require.NoError(t, err)
	view, err := h.progress.CompleteResource(student.ID, f.Resources[1].ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 100.0, view.Progress)
	assert.True(t, view.Completed)
	require.NotNil(t, view.CompletedAt)

	// 2x5 resources, +50 course, +10 first resource, +50 first course
	points := h.reload(t, student).Points
	assert.Equal(t, 120, points)

	_, err = h.progress.MyEnrollments(student.ID)
	require.NoError(t, err)
	assert.Equal(t, points, h.reload(t, student).Points)

	summary, err := h.achievements.Points(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Level)
}

func TestEnrollRules(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 1, 0)

	_, err := h.progress.Enroll(student.ID, f.Course.ID)
	require.NoError(t, err)

	_, err = h.progress.Enroll(student.ID, f.Course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	_, err = h.progress.Enroll(student.ID, 9999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	require.NoError(t, h.progress.Unenroll(student.ID, f.Course.ID))
	assert.ErrorIs(t, h.progress.Unenroll(student.ID, f.Course.ID), util.ErrNotEnrolled)
}

func TestOnlyStudentsEnroll(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, model.Creator)
	f := testutil.CreateCourse(t, h.db, owner, 2, 0)

	for _, role := range []model.UserRole{model.Creator, model.Admin} {
		u := h.user(t, role)

		_, err := h.progress.CompleteResource(u.ID, f.Resources[0].ID, 0)
		assert.ErrorIs(t, err, util.ErrStudentsOnly, role)
		_, err = h.progress.Enroll(u.ID, f.Course.ID)
		assert.ErrorIs(t, err, util.ErrForbidden, role)

		_, err = h.progRepo.FindEnrollment(u.ID, f.Course.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, role)
	}
}

func TestExamDateKeepsCalendarInSync(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 1, 0)
	_, err := h.progress.Enroll(student.ID, f.Course.ID)
	require.NoError(t, err)

	_, err = h.progress.SetExamDate(student.ID, f.Course.ID, &ExamDateRequest{ExamDate: "2999-06-01", ExamTime: "09:30"})
	require.NoError(t, err)
	_, err = h.progress.SetExamDate(student.ID, f.Course.ID, &ExamDateRequest{ExamDate: "2999-06-15"})
	require.NoError(t, err)

	upcoming, err := h.calendar.Upcoming(student.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "2999-06-15", upcoming[0].Date)
	assert.Equal(t, model.OriginExamDate, upcoming[0].Origin)

	t.Run("exam date entries are read only", func(t *testing.T) {
		_, err := h.calendar.Update(student.ID, upcoming[0].ID, &ActivityRequest{Title: "x", Date: "2999-01-01"})
		assert.ErrorIs(t, err, util.ErrActivityReadOnly)
		assert.ErrorIs(t, h.calendar.Delete(student.ID, upcoming[0].ID), util.ErrActivityReadOnly)
	})

	t.Run("time without date is rejected", func(t *testing.T) {
		_, err := h.progress.SetExamDate(student.ID, f.Course.ID, &ExamDateRequest{ExamTime: "10:00"})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("clearing removes the entry", func(t *testing.T) {
		_, err := h.progress.SetExamDate(student.ID, f.Course.ID, &ExamDateRequest{})
		require.NoError(t, err)
		upcoming, err := h.calendar.Upcoming(student.ID)
		require.NoError(t, err)
		assert.Empty(t, upcoming)
	})

	t.Run("unenroll drops exam date entries", func(t *testing.T) {
		_, err := h.progress.SetExamDate(student.ID, f.Course.ID, &ExamDateRequest{ExamDate: "2999-07-01"})
		require.NoError(t, err)
		require.NoError(t, h.progress.Unenroll(student.ID, f.Course.ID))
		upcoming, err := h.calendar.Upcoming(student.ID)
		require.NoError(t, err)
		assert.Empty(t, upcoming)
	})
}
