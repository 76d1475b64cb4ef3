package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) WithTx(tx *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: tx}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	return &exam, err
}

func (r *ExamRepository) ListActive(courseID *uint, examType model.ExamType) ([]model.Exam, error) {
	var exams []model.Exam
	query := r.DB.Where("active = ?", true)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	if examType != "" {
		query = query.Where("type = ?", examType)
	}
	err := query.Order("created_at DESC").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Exam{}, id).Error
}

func (r *ExamRepository) CreateTemplate(t *model.ExamTemplate) error {
	return r.DB.Create(t).Error
}

func (r *ExamRepository) ListTemplates() ([]model.ExamTemplate, error) {
	var templates []model.ExamTemplate
	err := r.DB.Preload("Questions").Order("id ASC").Find(&templates).Error
	return templates, err
}

func (r *ExamRepository) FindTemplate(id uint) (*model.ExamTemplate, error) {
	var t model.ExamTemplate
	err := r.DB.Preload("Questions").First(&t, id).Error
	return &t, err
}

func (r *ExamRepository) DeleteTemplate(id uint) error {
	if err := r.DB.Where("template_id = ?", id).Delete(&model.TemplateQuestion{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.ExamTemplate{}, id).Error
}

// TemplateQuestions returns the curated questions attached to the course and
// the global ones. A non-empty difficulty narrows the global templates.
func (r *ExamRepository) TemplateQuestions(courseID uint, difficulty model.Difficulty) (course, global []model.TemplateQuestion, err error) {
	templates := func() *gorm.DB {
		return r.DB.Model(&model.TemplateQuestion{}).
			Joins("JOIN exam_templates ON exam_templates.id = template_questions.template_id AND exam_templates.deleted_at IS NULL").
			Order("template_questions.id ASC")
	}

	if err = templates().Where("exam_templates.course_id = ?", courseID).Find(&course).Error; err != nil {
		return nil, nil, err
	}
	query := templates().Where("exam_templates.course_id IS NULL")
	if difficulty != "" {
		query = query.Where("exam_templates.difficulty = ?", difficulty)
	}
	err = query.Find(&global).Error
	return course, global, err
}

func (r *ExamRepository) CreateAttempt(a *model.ExamAttempt) error {
	return r.DB.Create(a).Error
}

func (r *ExamRepository) FindAttempt(id uint) (*model.ExamAttempt, error) {
	var a model.ExamAttempt
	err := r.DB.Preload("Exam").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Answers").
		First(&a, id).Error
	return &a, err
}

// CompleteAttempt stores the result of an open attempt. It reports false
// when the attempt had already been completed.
func (r *ExamRepository) CompleteAttempt(a *model.ExamAttempt) (bool, error) {
	res := r.DB.Model(&model.ExamAttempt{}).
		Where("id = ? AND completed = ?", a.ID, false).
		Updates(map[string]interface{}{
			"finished_at":       a.FinishedAt,
			"score":             a.Score,
			"passed":            a.Passed,
			"time_used_seconds": a.TimeUsedSeconds,
			"completed":         true,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *ExamRepository) CreateAttemptQuestions(questions []model.AttemptQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *ExamRepository) CreateAnswers(answers []model.AttemptAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Create(&answers).Error
}

func (r *ExamRepository) ListAttempts(studentID uint, examID *uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	query := r.DB.Where("student_id = ?", studentID)
	if examID != nil {
		query = query.Where("exam_id = ?", *examID)
	}
	err := query.Preload("Exam").Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *ExamRepository) PendingAttempts(studentID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("student_id = ? AND completed = ?", studentID, false).
		Preload("Exam").
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// HasPassed reports whether the student already has a passed attempt for the
// exam other than excludeAttemptID.
func (r *ExamRepository) HasPassed(studentID, examID, excludeAttemptID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).
		Where("student_id = ? AND exam_id = ? AND passed = ? AND id <> ?", studentID, examID, true, excludeAttemptID).
		Count(&count).Error
	return count > 0, err
}

func (r *ExamRepository) CountPassedByStudent(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).
		Where("student_id = ? AND passed = ?", studentID, true).
		Distinct("exam_id").
		Count(&count).Error
	return count, err
}

func (r *ExamRepository) CountAttempts() (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).Count(&count).Error
	return count, err
}

func (r *ExamRepository) AverageScore(studentID uint) (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.ExamAttempt{}).
		Where("student_id = ? AND completed = ?", studentID, true).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
