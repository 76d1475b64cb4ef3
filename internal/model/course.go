package model

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	CoverURL    string          `gorm:"size:255" json:"coverUrl"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Level       CourseLevel     `gorm:"size:20" json:"level"`
	Price       float64         `json:"price"`
	IsFree      bool            `json:"isFree"`
	CreatorID   uint            `gorm:"index;not null" json:"creatorId"`
	Creator     *CreatorProfile `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Active      bool            `gorm:"index" json:"active"`
	Modules     []Module        `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Module
type Module struct {
	BaseModel
	CourseID    uint       `gorm:"index;not null" json:"courseId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	SortOrder   int        `gorm:"default:0" json:"sortOrder"`
	Resources   []Resource `gorm:"foreignKey:ModuleID" json:"resources,omitempty"`
	Questions   []Question `gorm:"foreignKey:ModuleID" json:"questions,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}
