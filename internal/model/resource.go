package model

type ResourceType string

const (
	ResourceVideo    ResourceType = "video"
	ResourcePDF      ResourceType = "pdf"
	ResourceReading  ResourceType = "reading"
	ResourceExercise ResourceType = "exercise"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceVideo, ResourcePDF, ResourceReading, ResourceExercise:
		return true
	}
	return false
}

// swagger:model Resource
type Resource struct {
	BaseModel
	ModuleID        uint         `gorm:"index;not null" json:"moduleId"`
	Title           string       `gorm:"size:200;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	Type            ResourceType `gorm:"size:20;not null" json:"type"`
	URL             string       `gorm:"size:500" json:"url,omitempty"`
	Content         string       `gorm:"type:text" json:"content,omitempty"`
	SortOrder       int          `gorm:"default:0" json:"sortOrder"`
	DurationMinutes int          `gorm:"default:0" json:"durationMinutes"`
	IsFree          bool         `json:"isFree"`
}

func (Resource) TableName() string {
	return "resources"
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	ModuleID      uint       `gorm:"index;not null" json:"moduleId"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	OptionA       string     `gorm:"size:500;not null" json:"optionA"`
	OptionB       string     `gorm:"size:500;not null" json:"optionB"`
	OptionC       string     `gorm:"size:500;not null" json:"optionC"`
	OptionD       string     `gorm:"size:500;not null" json:"optionD"`
	CorrectOption string     `gorm:"size:1;not null" json:"correctOption"`
	Explanation   string     `gorm:"type:text" json:"explanation"`
	Difficulty    Difficulty `gorm:"size:10;index" json:"difficulty"`
	Points        int        `gorm:"default:1" json:"points"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}
