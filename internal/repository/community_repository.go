package repository

import (
	"estudiapro_backend/internal/model"
	"math"
	"strings"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: db}
}

func (r *CommunityRepository) WithTx(tx *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: tx}
}

type CommunityFilter struct {
	Query    string
	Type     model.CommunityResourceType
	CourseID *uint
}

// ListPublic returns approved, active resources ordered by rating then downloads.
func (r *CommunityRepository) ListPublic(filter CommunityFilter, page, limit int) ([]model.CommunityResource, int64, error) {
	var resources []model.CommunityResource
	var total int64

	query := r.DB.Model(&model.CommunityResource{}).
		Where("approved = ? AND active = ?", true, true)
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("average_rating DESC, downloads DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&resources).Error
	return resources, total, err
}

func (r *CommunityRepository) ListByAuthor(authorID uint) ([]model.CommunityResource, error) {
	var resources []model.CommunityResource
	err := r.DB.Where("author_id = ?", authorID).Order("created_at DESC").Find(&resources).Error
	return resources, err
}

func (r *CommunityRepository) ListPending() ([]model.CommunityResource, error) {
	var resources []model.CommunityResource
	err := r.DB.Where("approved = ? AND active = ?", false, true).
		Preload("Author").
		Order("created_at ASC").
		Find(&resources).Error
	return resources, err
}

func (r *CommunityRepository) CountPending() (int64, error) {
	var count int64
	err := r.DB.Model(&model.CommunityResource{}).
		Where("approved = ? AND active = ?", false, true).
		Count(&count).Error
	return count, err
}

func (r *CommunityRepository) Create(res *model.CommunityResource) error {
	return r.DB.Create(res).Error
}

func (r *CommunityRepository) FindByID(id uint) (*model.CommunityResource, error) {
	var res model.CommunityResource
	err := r.DB.Preload("Author").First(&res, id).Error
	return &res, err
}

func (r *CommunityRepository) Update(res *model.CommunityResource) error {
	return r.DB.Omit("Author").Save(res).Error
}

func (r *CommunityRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.DB.Model(&model.CommunityResource{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CommunityRepository) Delete(id uint) error {
	return r.DB.Delete(&model.CommunityResource{}, id).Error
}

func (r *CommunityRepository) FindRating(resourceID, userID uint) (*model.ResourceRating, error) {
	var rating model.ResourceRating
	err := r.DB.Where("resource_id = ? AND user_id = ?", resourceID, userID).First(&rating).Error
	return &rating, err
}

func (r *CommunityRepository) SaveRating(rating *model.ResourceRating) error {
	return r.DB.Omit("User").Save(rating).Error
}

func (r *CommunityRepository) ListRatings(resourceID uint) ([]model.ResourceRating, error) {
	var ratings []model.ResourceRating
	err := r.DB.Where("resource_id = ?", resourceID).
		Preload("User").
		Order("updated_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// RecountRating recomputes average and count from every rating row and
// stores them rounded to two decimals.
func (r *CommunityRepository) RecountRating(resourceID uint) (float64, int, error) {
	var agg struct {
		Avg   *float64
		Count int
	}
	err := r.DB.Model(&model.ResourceRating{}).
		Select("AVG(score) AS avg, COUNT(*) AS count").
		Where("resource_id = ?", resourceID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}

	avg := 0.0
	if agg.Avg != nil {
		avg = math.Round(*agg.Avg*100) / 100
	}
	err = r.DB.Model(&model.CommunityResource{}).
		Where("id = ?", resourceID).
		UpdateColumns(map[string]interface{}{
			"average_rating": avg,
			"rating_count":   agg.Count,
		}).Error
	return avg, agg.Count, err
}

func (r *CommunityRepository) RecordDownload(resourceID, userID uint) error {
	if err := r.DB.Create(&model.ResourceDownload{ResourceID: resourceID, UserID: userID}).Error; err != nil {
		return err
	}
	return r.DB.Model(&model.CommunityResource{}).
		Where("id = ?", resourceID).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
}
