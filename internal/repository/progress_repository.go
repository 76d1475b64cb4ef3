package repository

import (
	"estudiapro_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ProgressRepository owns enrollments and per-resource completion rows.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) CreateEnrollment(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *ProgressRepository) FindEnrollment(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	return &e, err
}

func (r *ProgressRepository) ListEnrollments(studentID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Where("student_id = ?", studentID).
		Preload("Course").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *ProgressRepository) SaveEnrollment(e *model.Enrollment) error {
	return r.DB.Save(e).Error
}

// DeleteEnrollment removes the enrollment and its resource progress rows.
func (r *ProgressRepository) DeleteEnrollment(id uint) error {
	if err := r.DB.Where("enrollment_id = ?", id).Delete(&model.ResourceProgress{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.Enrollment{}, id).Error
}

func (r *ProgressRepository) CountEnrollments() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompletedCourses(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND completed = ?", studentID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) FindResourceProgress(enrollmentID, resourceID uint) (*model.ResourceProgress, error) {
	var p model.ResourceProgress
	err := r.DB.Where("enrollment_id = ? AND resource_id = ?", enrollmentID, resourceID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) SaveResourceProgress(p *model.ResourceProgress) error {
	return r.DB.Save(p).Error
}

// CountCompletedResources counts completed rows whose resource is still live
// under a live module of the course.
func (r *ProgressRepository) CountCompletedResources(enrollmentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ResourceProgress{}).
		Joins("JOIN resources ON resources.id = resource_progress.resource_id AND resources.deleted_at IS NULL").
		Joins("JOIN modules ON modules.id = resources.module_id AND modules.deleted_at IS NULL").
		Where("resource_progress.enrollment_id = ? AND resource_progress.completed = ? AND modules.course_id = ?",
			enrollmentID, true, courseID).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountStudentCompletedResources(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ResourceProgress{}).
		Joins("JOIN enrollments ON enrollments.id = resource_progress.enrollment_id").
		Where("enrollments.student_id = ? AND resource_progress.completed = ?", studentID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CompletedResourceIDs(enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ResourceProgress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Pluck("resource_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) CountActiveExams(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Exam{}).
		Where("course_id = ? AND active = ?", courseID, true).
		Count(&count).Error
	return count, err
}

// CountPassedExams counts distinct active exams of the course with at least
// one completed attempt scoring at or above the exam's passing score.
func (r *ProgressRepository) CountPassedExams(studentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).
		Joins("JOIN exams ON exams.id = exam_attempts.exam_id AND exams.deleted_at IS NULL").
		Where("exam_attempts.student_id = ? AND exams.course_id = ? AND exams.active = ? AND exam_attempts.completed = ? AND exam_attempts.score >= exams.passing_score",
			studentID, courseID, true, true).
		Distinct("exam_attempts.exam_id").
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) UpdateProgress(enrollmentID uint, pct float64, completedAt *time.Time) error {
	fields := map[string]interface{}{
		"progress":     pct,
		"completed":    completedAt != nil,
		"completed_at": completedAt,
	}
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", enrollmentID).Updates(fields).Error
}
