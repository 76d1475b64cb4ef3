// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/pkg/database"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq int64

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:test_%d_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1), len(t.Name()))
	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: name, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func Config() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		JWT:       config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: 3600 * 1e9},
		Auth:      config.AuthConfig{SessionStore: "db"},
		Storage:   config.StorageConfig{Type: "local"},
		Mail:      config.MailConfig{Provider: "console"},
		Community: config.CommunityConfig{AutoApprove: true},
		Exams:     config.ExamsConfig{DefaultPassingScore: 70, DefaultDuration: 30, DefaultQuestions: 10},
	}
}

var userSeq int64

// CreateUser inserts an active user of the given role together with its profile.
func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	n := atomic.AddInt64(&userSeq, 1)
	user := &model.User{
		Username:  fmt.Sprintf("%s%d", role, n),
		Email:     fmt.Sprintf("%s%d@example.com", role, n),
		Password:  "x",
		FirstName: "Test",
		Role:      role,
		Status:    model.StatusActive,
		Level:     1,
	}
	require.NoError(t, db.Create(user).Error)

	switch role {
	case model.Student:
		require.NoError(t, db.Create(&model.StudentProfile{UserID: user.ID, SchoolLevel: "secundaria"}).Error)
	case model.Creator:
		require.NoError(t, db.Create(&model.CreatorProfile{UserID: user.ID, Specialty: "Matematicas", Active: true}).Error)
	case model.Admin:
		require.NoError(t, db.Create(&model.AdminProfile{UserID: user.ID, Permission: "total"}).Error)
	}
	return user
}

func CreatorProfileOf(t *testing.T, db *gorm.DB, user *model.User) *model.CreatorProfile {
	t.Helper()
	var p model.CreatorProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&p).Error)
	return &p
}

// CourseFixture is a course with one module holding the requested number of
// resources and one-point questions.
type CourseFixture struct {
	Course    *model.Course
	Module    *model.Module
	Resources []model.Resource
	Questions []model.Question
}

func CreateCourse(t *testing.T, db *gorm.DB, creator *model.User, resources, questions int) *CourseFixture {
	t.Helper()
	profile := CreatorProfileOf(t, db, creator)

	course := &model.Course{Title: "Calculo I", Category: "matematicas", Level: model.LevelBeginner, CreatorID: profile.ID, Active: true, IsFree: true}
	require.NoError(t, db.Create(course).Error)

	module := &model.Module{CourseID: course.ID, Title: "Limites", SortOrder: 1}
	require.NoError(t, db.Create(module).Error)

	f := &CourseFixture{Course: course, Module: module}
	for i := 0; i < resources; i++ {
		r := model.Resource{ModuleID: module.ID, Title: fmt.Sprintf("Recurso %d", i+1), Type: model.ResourceReading, Content: "texto", SortOrder: i}
		require.NoError(t, db.Create(&r).Error)
		f.Resources = append(f.Resources, r)
	}
	for i := 0; i < questions; i++ {
		q := model.Question{
			ModuleID:      module.ID,
			Text:          fmt.Sprintf("Pregunta %d", i+1),
			OptionA:       fmt.Sprintf("%d", i),
			OptionB:       fmt.Sprintf("%d", i+1),
			OptionC:       fmt.Sprintf("%d", i+2),
			OptionD:       fmt.Sprintf("%d", i+3),
			CorrectOption: "B",
			Difficulty:    model.DifficultyMedium,
			Points:        1,
		}
		require.NoError(t, db.Create(&q).Error)
		f.Questions = append(f.Questions, q)
	}
	return f
}

func CreateExam(t *testing.T, db *gorm.DB, courseID uint, questionCount int, passing float64) *model.Exam {
	t.Helper()
	exam := &model.Exam{
		CourseID:        courseID,
		Title:           "Parcial",
		Type:            model.ExamEvaluation,
		Difficulty:      model.DifficultyMedium,
		DurationMinutes: 30,
		QuestionCount:   questionCount,
		PassingScore:    passing,
		Active:          true,
	}
	require.NoError(t, db.Create(exam).Error)
	return exam
}
