package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

type PlatformStats struct {
	UsersByRole       map[model.UserRole]int64 `json:"usersByRole"`
	TotalUsers        int64                    `json:"totalUsers"`
	Courses           int64                    `json:"courses"`
	ActiveCourses     int64                    `json:"activeCourses"`
	Enrollments       int64                    `json:"enrollments"`
	ExamAttempts      int64                    `json:"examAttempts"`
	ForumThreads      int64                    `json:"forumThreads"`
	PendingResources  int64                    `json:"pendingResources"`
	TutoringSessions  int64                    `json:"tutoringSessions"`
	CompletedCourses  int64                    `json:"completedCourses"`
	SurveyResponses   int64                    `json:"surveyResponses"`
	ResourceDownloads int64                    `json:"resourceDownloads"`
}

func (r *DashboardRepository) count(m interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := r.DB.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// Stats aggregates platform-wide counters for the admin panel.
func (r *DashboardRepository) Stats() (*PlatformStats, error) {
	stats := &PlatformStats{UsersByRole: map[model.UserRole]int64{}}

	users, err := NewUserRepository(r.DB).CountByRole()
	if err != nil {
		return nil, err
	}
	for role, n := range users {
		stats.UsersByRole[role] = n
		stats.TotalUsers += n
	}

	counters := []struct {
		dst   *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&stats.Courses, &model.Course{}, "", nil},
		{&stats.ActiveCourses, &model.Course{}, "active = ?", []interface{}{true}},
		{&stats.Enrollments, &model.Enrollment{}, "", nil},
		{&stats.CompletedCourses, &model.Enrollment{}, "completed = ?", []interface{}{true}},
		{&stats.ExamAttempts, &model.ExamAttempt{}, "", nil},
		{&stats.ForumThreads, &model.ForumThread{}, "", nil},
		{&stats.PendingResources, &model.CommunityResource{}, "approved = ? AND active = ?", []interface{}{false, true}},
		{&stats.TutoringSessions, &model.TutoringSession{}, "", nil},
		{&stats.SurveyResponses, &model.SurveyResponse{}, "", nil},
		{&stats.ResourceDownloads, &model.ResourceDownload{}, "", nil},
	}
	for _, c := range counters {
		n, err := r.count(c.model, c.query, c.args...)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}
