package service

import (
	"estudiapro_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlockedNames(t *testing.T, h *harness, userID uint) []string {
	t.Helper()
	views, err := h.achievements.ForUser(userID)
	require.NoError(t, err)
	var names []string
	for _, v := range views {
		if v.Unlocked {
			names = append(names, v.Name)
		}
	}
	return names
}

func TestStreak(t *testing.T) {
	h := newHarness(t)
	student := h.user(t, model.Student)
	day := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	steps := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{0, 1},
		{1, 2},
		{2, 3},
		{4, 1},
	}
	for _, step := range steps {
		h.achievements.Now = fixedClock(day.AddDate(0, 0, step.offset))
		got, err := h.achievements.TouchStreak(student.ID)
		require.NoError(t, err)
		assert.Equal(t, step.want, got, "day +%d", step.offset)
	}
}

func TestStreakAchievementRewardsOnce(t *testing.T) {
	h := newHarness(t)
	student := h.user(t, model.Student)
	day := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		h.achievements.Now = fixedClock(day.AddDate(0, 0, i))
		require.NoError(t, h.achievements.Record(student.ID, model.ActivityStudyTime, 0, "estudio", 0))
	}
	assert.Equal(t, []string{"Racha de 7 dias"}, unlockedNames(t, h, student.ID))
	assert.Equal(t, 30, h.reload(t, student).Points)

	unlocked, err := h.achievements.Evaluate(student.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 30, h.reload(t, student).Points)

	count, err := h.notifications.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAchievementsNeverRevoked(t *testing.T) {
	h := newHarness(t)
	student := h.user(t, model.Student)

	require.NoError(t, h.achievements.Record(student.ID, model.ActivityStudyTime, 100, "bono", 0))
	assert.Contains(t, unlockedNames(t, h, student.ID), "Centenario")

	require.NoError(t, h.users.UpdateFields(student.ID, map[string]interface{}{"points": 0}))
	_, err := h.achievements.Evaluate(student.ID)
	require.NoError(t, err)
	assert.Contains(t, unlockedNames(t, h, student.ID), "Centenario")

	summary, err := h.achievements.Points(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Points)
	assert.Equal(t, 1, summary.Level)
	assert.Equal(t, 100, summary.NextLevelAt)
}

func TestAchievementCatalog(t *testing.T) {
	h := newHarness(t)

	a, err := h.achievements.Create(&AchievementRequest{Name: "Maraton", Type: model.AchievementResourcesCompleted, Threshold: 3, RewardPoints: 5})
	require.NoError(t, err)
	assert.True(t, a.Active)

	inactive := false
	_, err = h.achievements.Update(a.ID, &AchievementRequest{Name: "Maraton", Type: model.AchievementResourcesCompleted, Threshold: 3, Active: &inactive})
	require.NoError(t, err)

	views, err := h.achievements.ForUser(h.user(t, model.Student).ID)
	require.NoError(t, err)
	for _, v := range views {
		assert.NotEqual(t, "Maraton", v.Name)
	}

	_, err = h.achievements.Create(&AchievementRequest{Name: "Raro", Type: "karma", Threshold: 1})
	assert.Error(t, err)
	require.NoError(t, h.achievements.Delete(a.ID))
}
