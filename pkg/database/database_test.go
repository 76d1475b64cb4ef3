package database

import (
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSeedsAchievementsOnce(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: "file:dbtest?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	assert.Equal(t, int64(len(DefaultAchievements)), count)

	var active int64
	db.Model(&model.Achievement{}).Where("active = ?", true).Count(&active)
	assert.Equal(t, count, active)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitRedisDisabled(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
