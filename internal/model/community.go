package model

import "time"

type CommunityResourceType string

const (
	CommunityDocument CommunityResourceType = "document"
	CommunityVideo    CommunityResourceType = "video"
	CommunityLink     CommunityResourceType = "link"
	CommunityArticle  CommunityResourceType = "article"
	CommunityOther    CommunityResourceType = "other"
)

func (t CommunityResourceType) Valid() bool {
	switch t {
	case CommunityDocument, CommunityVideo, CommunityLink, CommunityArticle, CommunityOther:
		return true
	}
	return false
}

// swagger:model CommunityResource
type CommunityResource struct {
	BaseModel
	AuthorID      uint                  `gorm:"index;not null" json:"authorId"`
	Author        *User                 `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CourseID      *uint                 `gorm:"index" json:"courseId,omitempty"`
	Title         string                `gorm:"size:200;not null" json:"title"`
	Description   string                `gorm:"type:text" json:"description"`
	Type          CommunityResourceType `gorm:"size:20;not null" json:"type"`
	FileURL       string                `gorm:"size:500" json:"fileUrl,omitempty"`
	FileKey       string                `gorm:"size:255" json:"-"`
	Content       string                `gorm:"type:text" json:"content,omitempty"`
	Approved      bool                  `gorm:"index" json:"approved"`
	Active        bool                  `gorm:"index" json:"active"`
	AverageRating float64               `gorm:"default:0" json:"averageRating"`
	RatingCount   int                   `gorm:"default:0" json:"ratingCount"`
	Downloads     int                   `gorm:"default:0" json:"downloads"`
}

func (CommunityResource) TableName() string {
	return "community_resources"
}

type ResourceRating struct {
	Timestamps
	ResourceID uint   `gorm:"not null;uniqueIndex:idx_resource_rating" json:"resourceId"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_resource_rating" json:"userId"`
	User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Score      int    `gorm:"not null" json:"score"`
	Comment    string `gorm:"type:text" json:"comment"`
}

func (ResourceRating) TableName() string {
	return "resource_ratings"
}

type ResourceDownload struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ResourceID uint      `gorm:"index;not null" json:"resourceId"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ResourceDownload) TableName() string {
	return "resource_downloads"
}
