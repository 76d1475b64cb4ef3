package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) WithTx(tx *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: tx}
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.First(&resource, id).Error
	return &resource, err
}

func (r *ResourceRepository) FindByModule(moduleID uint) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Where("module_id = ?", moduleID).
		Order("sort_order ASC, id ASC").
		Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) Update(resource *model.Resource) error {
	return r.DB.Save(resource).Error
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Resource{}, id).Error
}

// CourseIDOf resolves the course a resource belongs to through its module.
func (r *ResourceRepository) CourseIDOf(resourceID uint) (uint, error) {
	var module model.Module
	err := r.DB.Model(&model.Module{}).
		Joins("JOIN resources ON resources.module_id = modules.id").
		Where("resources.id = ? AND resources.deleted_at IS NULL", resourceID).
		First(&module).Error
	return module.CourseID, err
}

// CountByCourse counts live resources under live modules of the course.
func (r *ResourceRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Resource{}).
		Joins("JOIN modules ON modules.id = resources.module_id").
		Where("modules.course_id = ? AND modules.deleted_at IS NULL", courseID).
		Count(&count).Error
	return count, err
}

func (r *ResourceRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *ResourceRepository) FindQuestion(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *ResourceRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *ResourceRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *ResourceRepository) ListQuestions(moduleID *uint, difficulty model.Difficulty) ([]model.Question, error) {
	var questions []model.Question
	query := r.DB.Model(&model.Question{})
	if moduleID != nil {
		query = query.Where("module_id = ?", *moduleID)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	err := query.Order("id ASC").Find(&questions).Error
	return questions, err
}

// QuestionsByCourse returns the question pool of a course across all of its
// modules.
func (r *ResourceRepository) QuestionsByCourse(courseID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Model(&model.Question{}).
		Joins("JOIN modules ON modules.id = questions.module_id").
		Where("modules.course_id = ? AND modules.deleted_at IS NULL", courseID).
		Order("questions.id ASC").
		Find(&questions).Error
	return questions, err
}
