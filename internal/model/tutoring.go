package model

import "time"

// swagger:model TutorProfile
type TutorProfile struct {
	Timestamps
	CreatorID uint            `gorm:"uniqueIndex;not null" json:"creatorId"`
	Creator   *CreatorProfile `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Subjects  string          `gorm:"size:500" json:"subjects"`
	Bio       string          `gorm:"type:text" json:"bio"`
	Rate30    float64         `json:"rate30"`
	Rate60    float64         `json:"rate60"`
	Active    bool            `gorm:"index" json:"active"`
}

func (TutorProfile) TableName() string {
	return "tutor_profiles"
}

type SessionStatus string

const (
	SessionRequested SessionStatus = "requested"
	SessionConfirmed SessionStatus = "confirmed"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionRequested: {SessionConfirmed, SessionCompleted, SessionCancelled},
	SessionConfirmed: {SessionCompleted, SessionCancelled},
}

// CanTransition reports whether a session may move from s to next.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// swagger:model TutoringSession
type TutoringSession struct {
	Timestamps
	TutorID         uint          `gorm:"index;not null" json:"tutorId"`
	Tutor           *TutorProfile `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	StudentID       uint          `gorm:"index;not null" json:"studentId"`
	Student         *User         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject         string        `gorm:"size:200" json:"subject"`
	Notes           string        `gorm:"type:text" json:"notes"`
	ScheduledAt     time.Time     `json:"scheduledAt"`
	DurationMinutes int           `json:"durationMinutes"`
	Price           float64       `json:"price"`
	Status          SessionStatus `gorm:"size:20;index;not null" json:"status"`
}

func (TutoringSession) TableName() string {
	return "tutoring_sessions"
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationAlert   NotificationType = "alert"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// swagger:model Notification
type Notification struct {
	Timestamps
	UserID  uint             `gorm:"index;not null" json:"userId"`
	Type    NotificationType `gorm:"size:20;not null" json:"type"`
	Title   string           `gorm:"size:200;not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Link    string           `gorm:"size:255" json:"link,omitempty"`
	Read    bool             `gorm:"column:is_read;index" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
