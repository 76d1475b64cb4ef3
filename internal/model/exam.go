package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ExamType string

const (
	ExamPractice   ExamType = "practice"
	ExamSimulator  ExamType = "simulator"
	ExamEvaluation ExamType = "evaluation"
)

func (t ExamType) Valid() bool {
	switch t {
	case ExamPractice, ExamSimulator, ExamEvaluation:
		return true
	}
	return false
}

// swagger:model Exam
type Exam struct {
	BaseModel
	CourseID        uint       `gorm:"index;not null" json:"courseId"`
	ModuleID        *uint      `gorm:"index" json:"moduleId,omitempty"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Type            ExamType   `gorm:"size:20;not null" json:"type"`
	Difficulty      Difficulty `gorm:"size:10" json:"difficulty,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	QuestionCount   int        `json:"questionCount"`
	PassingScore    float64    `json:"passingScore"`
	Active          bool       `gorm:"index" json:"active"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamTemplate is an administrator curated bank used when a course has too
// few authored questions. A nil CourseID makes the bank global.
type ExamTemplate struct {
	BaseModel
	CourseID   *uint              `gorm:"index" json:"courseId,omitempty"`
	Title      string             `gorm:"size:200;not null" json:"title"`
	Difficulty Difficulty         `gorm:"size:10;index" json:"difficulty"`
	Questions  []TemplateQuestion `gorm:"foreignKey:TemplateID" json:"questions,omitempty"`
}

func (ExamTemplate) TableName() string {
	return "exam_templates"
}

type TemplateQuestion struct {
	BaseModel
	TemplateID    uint           `gorm:"index;not null" json:"templateId"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `gorm:"size:500;not null" json:"correctAnswer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Points        int            `gorm:"default:1" json:"points"`
}

func (TemplateQuestion) TableName() string {
	return "template_questions"
}

// swagger:model ExamAttempt
type ExamAttempt struct {
	Timestamps
	StudentID       uint              `gorm:"index;not null" json:"studentId"`
	ExamID          uint              `gorm:"index;not null" json:"examId"`
	Exam            *Exam             `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	StartedAt       time.Time         `json:"startedAt"`
	FinishedAt      *time.Time        `json:"finishedAt,omitempty"`
	Score           float64           `json:"score"`
	TimeUsedSeconds int               `json:"timeUsedSeconds"`
	Completed       bool              `gorm:"index" json:"completed"`
	Passed          bool              `json:"passed"`
	Questions       []AttemptQuestion `gorm:"foreignKey:AttemptID" json:"questions,omitempty"`
	Answers         []AttemptAnswer   `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

type QuestionSource string

const (
	SourceCourse   QuestionSource = "course"
	SourceTemplate QuestionSource = "template"
	SourceDefault  QuestionSource = "default"
)

// AttemptQuestion snapshots a question at start time so later edits to the
// bank do not change how an attempt is graded.
type AttemptQuestion struct {
	Timestamps
	AttemptID     uint           `gorm:"index;not null" json:"attemptId"`
	Position      int            `json:"position"`
	Source        QuestionSource `gorm:"size:10" json:"source"`
	QuestionID    *uint          `json:"questionId,omitempty"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `gorm:"size:500;not null" json:"-"`
	Explanation   string         `gorm:"type:text" json:"-"`
	Points        int            `json:"points"`
}

func (AttemptQuestion) TableName() string {
	return "attempt_questions"
}

func (q *AttemptQuestion) OptionList() []string {
	var opts []string
	if len(q.Options) == 0 {
		return opts
	}
	_ = json.Unmarshal(q.Options, &opts)
	return opts
}

type AttemptAnswer struct {
	Timestamps
	AttemptID         uint   `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"attemptId"`
	AttemptQuestionID uint   `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"attemptQuestionId"`
	QuestionID        *uint  `gorm:"index" json:"questionId,omitempty"`
	Response          string `gorm:"size:1000" json:"response"`
	IsCorrect         bool   `json:"isCorrect"`
	PointsAwarded     int    `json:"pointsAwarded"`
	ResponseSeconds   int    `json:"responseSeconds"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

func OptionsJSON(opts []string) datatypes.JSON {
	b, _ := json.Marshal(opts)
	return datatypes.JSON(b)
}
