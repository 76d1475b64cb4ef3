package model

import "time"

// swagger:model Enrollment
type Enrollment struct {
	Timestamps
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"studentId"`
	CourseID    uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"courseId"`
	Course      *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress    float64    `gorm:"default:0" json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// ExamDate is YYYY-MM-DD, ExamTime is HH:MM; both empty when unscheduled.
	ExamDate string `gorm:"size:10" json:"examDate,omitempty"`
	ExamTime string `gorm:"size:5" json:"examTime,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type ResourceProgress struct {
	Timestamps
	EnrollmentID     uint       `gorm:"not null;uniqueIndex:idx_progress_enrollment_resource" json:"enrollmentId"`
	ResourceID       uint       `gorm:"not null;uniqueIndex:idx_progress_enrollment_resource;index" json:"resourceId"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	TimeSpentMinutes int        `gorm:"default:0" json:"timeSpentMinutes"`
}

func (ResourceProgress) TableName() string {
	return "resource_progress"
}
