package model

import "time"

type AchievementType string

const (
	AchievementPoints             AchievementType = "points"
	AchievementStreak             AchievementType = "streak"
	AchievementResourcesCompleted AchievementType = "resources_completed"
	AchievementExamsPassed        AchievementType = "exams_passed"
	AchievementCoursesCompleted   AchievementType = "courses_completed"
)

func (t AchievementType) Valid() bool {
	switch t {
	case AchievementPoints, AchievementStreak, AchievementResourcesCompleted,
		AchievementExamsPassed, AchievementCoursesCompleted:
		return true
	}
	return false
}

// swagger:model Achievement
type Achievement struct {
	BaseModel
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Icon         string          `gorm:"size:100" json:"icon"`
	Type         AchievementType `gorm:"size:30;index;not null" json:"type"`
	Threshold    int             `gorm:"not null" json:"threshold"`
	RewardPoints int             `gorm:"default:0" json:"rewardPoints"`
	Active       bool            `json:"active"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type StudentAchievement struct {
	Timestamps
	UserID        uint         `gorm:"not null;uniqueIndex:idx_student_achievement" json:"userId"`
	AchievementID uint         `gorm:"not null;uniqueIndex:idx_student_achievement" json:"achievementId"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	Progress      int          `json:"progress"`
	Unlocked      bool         `json:"unlocked"`
	UnlockedAt    *time.Time   `json:"unlockedAt,omitempty"`
}

func (StudentAchievement) TableName() string {
	return "student_achievements"
}

type ActivityType string

const (
	ActivityEnrolled            ActivityType = "enrolled"
	ActivityResourceCompleted   ActivityType = "resource_completed"
	ActivityExamSubmitted       ActivityType = "exam_submitted"
	ActivityExamPassed          ActivityType = "exam_passed"
	ActivityCourseCompleted     ActivityType = "course_completed"
	ActivityAchievementUnlocked ActivityType = "achievement_unlocked"
	ActivityStudyTime           ActivityType = "study_time"
)

// StudentActivity is the append-only activity log shown on dashboards.
type StudentActivity struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint         `gorm:"index;not null" json:"userId"`
	Type        ActivityType `gorm:"size:30;not null" json:"type"`
	Description string       `gorm:"size:255" json:"description"`
	Points      int          `json:"points"`
	ReferenceID uint         `json:"referenceId,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
}

func (StudentActivity) TableName() string {
	return "student_activities"
}

type ActivityOrigin string

const (
	OriginManual   ActivityOrigin = "manual"
	OriginExamDate ActivityOrigin = "exam_date"
)

// UpcomingActivity is a calendar entry. Entries with OriginExamDate are owned
// by an enrollment and only change through the exam date endpoint.
type UpcomingActivity struct {
	Timestamps
	UserID      uint           `gorm:"index;not null" json:"userId"`
	CourseID    *uint          `gorm:"index" json:"courseId,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Date        string         `gorm:"size:10;index;not null" json:"date"`
	Time        string         `gorm:"size:5" json:"time,omitempty"`
	Origin      ActivityOrigin `gorm:"size:20;not null" json:"origin"`
}

func (UpcomingActivity) TableName() string {
	return "upcoming_activities"
}
