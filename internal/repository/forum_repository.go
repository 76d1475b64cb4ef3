package repository

import (
	"estudiapro_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type ForumRepository struct {
	DB *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: db}
}

func (r *ForumRepository) WithTx(tx *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: tx}
}

type ThreadFilter struct {
	Category string
	CourseID *uint
	AuthorID uint
	Search   string
}

func (r *ForumRepository) ListThreads(filter ThreadFilter, page, limit int) ([]model.ForumThread, int64, error) {
	var threads []model.ForumThread
	var total int64

	query := r.DB.Model(&model.ForumThread{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.AuthorID > 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&threads).Error
	return threads, total, err
}

func (r *ForumRepository) CreateThread(t *model.ForumThread) error {
	return r.DB.Create(t).Error
}

func (r *ForumRepository) FindThread(id uint) (*model.ForumThread, error) {
	var t model.ForumThread
	err := r.DB.First(&t, id).Error
	return &t, err
}

// FindThreadDetail loads the author and replies, best voted first.
func (r *ForumRepository) FindThreadDetail(id uint) (*model.ForumThread, error) {
	var t model.ForumThread
	err := r.DB.Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_solution DESC, votes DESC, created_at ASC")
		}).
		Preload("Replies.Author").
		First(&t, id).Error
	return &t, err
}

func (r *ForumRepository) IncrementViews(id uint) error {
	return r.DB.Model(&model.ForumThread{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *ForumRepository) UpdateThreadFields(id uint, fields map[string]interface{}) error {
	return r.DB.Model(&model.ForumThread{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ForumRepository) DeleteThread(id uint) error {
	if err := r.DB.Where("thread_id = ?", id).Delete(&model.ForumReply{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.ForumThread{}, id).Error
}

func (r *ForumRepository) CountThreads() (int64, error) {
	var count int64
	err := r.DB.Model(&model.ForumThread{}).Count(&count).Error
	return count, err
}

func (r *ForumRepository) CreateReply(reply *model.ForumReply) error {
	return r.DB.Create(reply).Error
}

func (r *ForumRepository) FindReply(id uint) (*model.ForumReply, error) {
	var reply model.ForumReply
	err := r.DB.First(&reply, id).Error
	return &reply, err
}

func (r *ForumRepository) ClearSolutions(threadID uint) error {
	return r.DB.Model(&model.ForumReply{}).
		Where("thread_id = ?", threadID).
		Update("is_solution", false).Error
}

func (r *ForumRepository) MarkSolution(replyID uint) error {
	return r.DB.Model(&model.ForumReply{}).Where("id = ?", replyID).Update("is_solution", true).Error
}

func (r *ForumRepository) FindVote(replyID, userID uint) (*model.ReplyVote, error) {
	var v model.ReplyVote
	err := r.DB.Where("reply_id = ? AND user_id = ?", replyID, userID).First(&v).Error
	return &v, err
}

func (r *ForumRepository) CreateVote(v *model.ReplyVote) error {
	return r.DB.Create(v).Error
}

func (r *ForumRepository) UpdateVote(v *model.ReplyVote) error {
	return r.DB.Save(v).Error
}

func (r *ForumRepository) DeleteVote(id uint) error {
	return r.DB.Delete(&model.ReplyVote{}, id).Error
}

// AdjustVotes applies delta to the cached tally with a single UPDATE.
func (r *ForumRepository) AdjustVotes(replyID uint, delta int) error {
	return r.DB.Model(&model.ForumReply{}).
		Where("id = ?", replyID).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error
}

// VoteBalance recounts up minus down votes for a reply.
func (r *ForumRepository) VoteBalance(replyID uint) (int, error) {
	var rows []struct {
		Type  model.VoteType
		Count int
	}
	err := r.DB.Model(&model.ReplyVote{}).
		Select("type, COUNT(*) AS count").
		Where("reply_id = ?", replyID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	balance := 0
	for _, row := range rows {
		balance += row.Type.Delta() * row.Count
	}
	return balance, nil
}
