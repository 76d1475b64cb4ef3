package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Creator UserRole = "creator"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Student, Creator, Admin:
		return true
	}
	return false
}

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Username         string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"size:100;not null" json:"-"`
	FirstName        string     `gorm:"size:150" json:"firstName"`
	LastName         string     `gorm:"size:150" json:"lastName"`
	Role             UserRole   `gorm:"size:20;not null;index" json:"role"`
	Status           UserStatus `gorm:"size:20;not null" json:"status"`
	Points           int        `gorm:"default:0" json:"points"`
	Level            int        `gorm:"default:1" json:"level"`
	Streak           int        `gorm:"default:0" json:"streak"`
	LastActivityDate string     `gorm:"size:10" json:"lastActivityDate,omitempty"`
	AvatarURL        string     `gorm:"size:255" json:"avatarUrl"`
	IsPremium        bool       `json:"isPremium"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`

	StudentProfile *StudentProfile `gorm:"foreignKey:UserID" json:"studentProfile,omitempty"`
	CreatorProfile *CreatorProfile `gorm:"foreignKey:UserID" json:"creatorProfile,omitempty"`
	AdminProfile   *AdminProfile   `gorm:"foreignKey:UserID" json:"adminProfile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type StudentProfile struct {
	Timestamps
	UserID        uint   `gorm:"uniqueIndex;not null" json:"userId"`
	SchoolLevel   string `gorm:"size:50" json:"schoolLevel"`
	InstitutionID *uint  `json:"institutionId,omitempty"`
	StudyMinutes  int    `gorm:"default:0" json:"studyMinutes"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

type CreatorProfile struct {
	Timestamps
	UserID        uint    `gorm:"uniqueIndex;not null" json:"userId"`
	Specialty     string  `gorm:"size:200" json:"specialty"`
	Bio           string  `gorm:"type:text" json:"bio"`
	AverageRating float64 `gorm:"default:0" json:"averageRating"`
	ReviewCount   int     `gorm:"default:0" json:"reviewCount"`
	Active        bool    `json:"active"`
	User          *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CreatorProfile) TableName() string {
	return "creator_profiles"
}

type AdminProfile struct {
	Timestamps
	UserID     uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Permission string `gorm:"size:50" json:"permission"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}

// AuthSession records an issued token id so that logout can revoke it.
type AuthSession struct {
	Timestamps
	TokenID   string     `gorm:"size:36;uniqueIndex;not null" json:"tokenId"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

func (AuthSession) TableName() string {
	return "auth_sessions"
}
