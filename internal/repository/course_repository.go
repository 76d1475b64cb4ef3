package repository

import (
	"estudiapro_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

type CourseFilter struct {
	Query    string
	Category string
	Level    model.CourseLevel
	Free     *bool
	// IncludeInactive is only set by the admin listing.
	IncludeInactive bool
}

func (r *CourseRepository) List(filter CourseFilter, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if !filter.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Free != nil {
		query = query.Where("is_free = ?", *filter.Free)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Creator.User").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindDetail loads modules and their resources ordered by sort key.
func (r *CourseRepository) FindDetail(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Creator.User").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Modules.Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) SetActive(id uint, active bool) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Update("active", active).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateModule(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *CourseRepository) FindModule(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *CourseRepository) ListModules(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("sort_order ASC, id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) UpdateModule(module *model.Module) error {
	return r.DB.Save(module).Error
}

func (r *CourseRepository) DeleteModule(id uint) error {
	return r.DB.Delete(&model.Module{}, id).Error
}
