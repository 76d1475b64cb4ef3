package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func (r *SurveyRepository) WithTx(tx *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: tx}
}

func (r *SurveyRepository) Create(s *model.Survey) error {
	return r.DB.Create(s).Error
}

func (r *SurveyRepository) FindByID(id uint) (*model.Survey, error) {
	var s model.Survey
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&s, id).Error
	return &s, err
}

func (r *SurveyRepository) ListActive() ([]model.Survey, error) {
	var list []model.Survey
	err := r.DB.Where("active = ?", true).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *SurveyRepository) ListByCreator(creatorID uint) ([]model.Survey, error) {
	var list []model.Survey
	err := r.DB.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// AnsweredSurveyIDs lists surveys the user already answered under their name.
func (r *SurveyRepository) AnsweredSurveyIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.SurveyResponse{}).
		Where("user_id = ?", userID).
		Pluck("survey_id", &ids).Error
	return ids, err
}

func (r *SurveyRepository) HasResponded(surveyID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.SurveyResponse{}).
		Where("survey_id = ? AND user_id = ?", surveyID, userID).
		Count(&count).Error
	return count > 0, err
}

// CreateResponse inserts the response row and its details.
func (r *SurveyRepository) CreateResponse(resp *model.SurveyResponse) error {
	return r.DB.Create(resp).Error
}

func (r *SurveyRepository) CountResponses(surveyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SurveyResponse{}).Where("survey_id = ?", surveyID).Count(&count).Error
	return count, err
}

type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

func (r *SurveyRepository) Distribution(questionID uint) ([]ValueCount, error) {
	var rows []ValueCount
	err := r.DB.Model(&model.ResponseDetail{}).
		Select("value, COUNT(*) AS count").
		Where("question_id = ?", questionID).
		Group("value").
		Order("value ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *SurveyRepository) TextAnswers(questionID uint, limit int) ([]string, error) {
	var values []string
	err := r.DB.Model(&model.ResponseDetail{}).
		Where("question_id = ? AND value <> ''", questionID).
		Order("id ASC").
		Limit(limit).
		Pluck("value", &values).Error
	return values, err
}
