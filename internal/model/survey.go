package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// swagger:model Survey
type Survey struct {
	BaseModel
	CreatorID   uint             `gorm:"index;not null" json:"creatorId"`
	Creator     *User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CourseID    *uint            `gorm:"index" json:"courseId,omitempty"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Anonymous   bool             `json:"anonymous"`
	ClosesAt    *time.Time       `json:"closesAt,omitempty"`
	Active      bool             `gorm:"index" json:"active"`
	Questions   []SurveyQuestion `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
}

func (Survey) TableName() string {
	return "surveys"
}

func (s *Survey) ClosedAt(now time.Time) bool {
	return s.ClosesAt != nil && now.After(*s.ClosesAt)
}

type SurveyQuestionType string

const (
	SurveyText           SurveyQuestionType = "text"
	SurveyMultipleChoice SurveyQuestionType = "multiple_choice"
	SurveyScale          SurveyQuestionType = "scale"
)

func (t SurveyQuestionType) Valid() bool {
	switch t {
	case SurveyText, SurveyMultipleChoice, SurveyScale:
		return true
	}
	return false
}

type SurveyQuestion struct {
	Timestamps
	SurveyID  uint               `gorm:"index;not null" json:"surveyId"`
	Text      string             `gorm:"type:text;not null" json:"text"`
	Type      SurveyQuestionType `gorm:"size:20;not null" json:"type"`
	Options   datatypes.JSON     `json:"options,omitempty"`
	Required  bool               `json:"required"`
	SortOrder int                `json:"sortOrder"`
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}

func (q *SurveyQuestion) OptionList() []string {
	var opts []string
	if len(q.Options) == 0 {
		return opts
	}
	_ = json.Unmarshal(q.Options, &opts)
	return opts
}

// SurveyResponse has a nil UserID for anonymous surveys, so the unique index
// only constrains identified responses.
type SurveyResponse struct {
	Timestamps
	SurveyID uint             `gorm:"not null;uniqueIndex:idx_survey_response_user" json:"surveyId"`
	UserID   *uint            `gorm:"uniqueIndex:idx_survey_response_user" json:"userId,omitempty"`
	Details  []ResponseDetail `gorm:"foreignKey:ResponseID" json:"details,omitempty"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

type ResponseDetail struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID uint   `gorm:"index;not null" json:"responseId"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Value      string `gorm:"type:text" json:"value"`
}

func (ResponseDetail) TableName() string {
	return "response_details"
}
