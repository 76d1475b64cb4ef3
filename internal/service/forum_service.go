package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type ForumService struct {
	DB   *gorm.DB
	Repo *repository.ForumRepository
}

func NewForumService(db *gorm.DB, repo *repository.ForumRepository) *ForumService {
	return &ForumService{DB: db, Repo: repo}
}

type ThreadRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"max=50"`
	CourseID *uint  `json:"courseId"`
}

type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type VoteRequest struct {
	Type model.VoteType `json:"type" binding:"required,oneof=up down"`
}

func (s *ForumService) thread(id uint) (*model.ForumThread, error) {
	t, err := s.Repo.FindThread(id)
	if err != nil {
		return nil, notFound(err, util.ErrThreadNotFound)
	}
	return t, nil
}

func authorOrAdmin(claims *util.Claims, authorID uint) error {
	if claims.Role == model.Admin || claims.UserID == authorID {
		return nil
	}
	return util.ErrForbidden
}

func (s *ForumService) List(filter repository.ThreadFilter, page, limit int) ([]model.ForumThread, int64, error) {
	return s.Repo.ListThreads(filter, page, limit)
}

// Detail returns the thread with its replies and counts the view.
func (s *ForumService) Detail(id uint) (*model.ForumThread, error) {
	if _, err := s.thread(id); err != nil {
		return nil, err
	}
	if err := s.Repo.IncrementViews(id); err != nil {
		return nil, err
	}
	return s.Repo.FindThreadDetail(id)
}

func (s *ForumService) Create(userID uint, req *ThreadRequest) (*model.ForumThread, error) {
	category := req.Category
	if category == "" {
		category = "general"
	}
	t := &model.ForumThread{
		AuthorID: userID,
		CourseID: req.CourseID,
		Title:    req.Title,
		Content:  req.Content,
		Category: category,
	}
	return t, s.Repo.CreateThread(t)
}

func (s *ForumService) Update(claims *util.Claims, id uint, req *ThreadRequest) (*model.ForumThread, error) {
	t, err := s.thread(id)
	if err != nil {
		return nil, err
	}
	if err := authorOrAdmin(claims, t.AuthorID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"title":     req.Title,
		"content":   req.Content,
		"course_id": req.CourseID,
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if err := s.Repo.UpdateThreadFields(id, fields); err != nil {
		return nil, err
	}
	return s.Repo.FindThread(id)
}

func (s *ForumService) Delete(claims *util.Claims, id uint) error {
	t, err := s.thread(id)
	if err != nil {
		return err
	}
	if err := authorOrAdmin(claims, t.AuthorID); err != nil {
		return err
	}
	return s.Repo.DeleteThread(id)
}

// Resolve toggles the resolved flag. Only the thread's author may do it.
func (s *ForumService) Resolve(userID, id uint, resolved bool) (*model.ForumThread, error) {
	t, err := s.thread(id)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != userID {
		return nil, util.ErrForbidden
	}
	if err := s.Repo.UpdateThreadFields(id, map[string]interface{}{"resolved": resolved}); err != nil {
		return nil, err
	}
	t.Resolved = resolved
	return t, nil
}

func (s *ForumService) SetClosed(claims *util.Claims, id uint, closed bool) (*model.ForumThread, error) {
	t, err := s.thread(id)
	if err != nil {
		return nil, err
	}
	if err := authorOrAdmin(claims, t.AuthorID); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateThreadFields(id, map[string]interface{}{"closed": closed}); err != nil {
		return nil, err
	}
	t.Closed = closed
	return t, nil
}

func (s *ForumService) Reply(userID, threadID uint, req *ReplyRequest) (*model.ForumReply, error) {
	t, err := s.thread(threadID)
	if err != nil {
		return nil, err
	}
	if t.Closed {
		return nil, util.ErrThreadClosed
	}
	reply := &model.ForumReply{ThreadID: threadID, AuthorID: userID, Content: req.Content}
	return reply, s.Repo.CreateReply(reply)
}

// MarkSolution flags a reply as the accepted answer and resolves the thread.
// A thread has at most one solution.
func (s *ForumService) MarkSolution(userID, replyID uint) (*model.ForumReply, error) {
	reply, err := s.Repo.FindReply(replyID)
	if err != nil {
		return nil, notFound(err, util.ErrReplyNotFound)
	}
	t, err := s.thread(reply.ThreadID)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != userID {
		return nil, util.ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		if err := repo.ClearSolutions(t.ID); err != nil {
			return err
		}
		if err := repo.MarkSolution(reply.ID); err != nil {
			return err
		}
		return repo.UpdateThreadFields(t.ID, map[string]interface{}{"resolved": true})
	})
	if err != nil {
		return nil, err
	}
	reply.IsSolution = true
	return reply, nil
}

type VoteResult struct {
	ReplyID uint            `json:"replyId"`
	Votes   int             `json:"votes"`
	Vote    *model.VoteType `json:"vote"`
	Action  string          `json:"action"`
}

// Vote applies a vote and adjusts the cached tally in the same transaction:
// no previous vote creates one, the same type removes it, the opposite type
// switches it and moves the tally by two.
func (s *ForumService) Vote(userID, replyID uint, voteType model.VoteType) (*VoteResult, error) {
	if voteType != model.VoteUp && voteType != model.VoteDown {
		return nil, util.Validationf("vote must be up or down")
	}
	if _, err := s.Repo.FindReply(replyID); err != nil {
		return nil, notFound(err, util.ErrReplyNotFound)
	}

	result := &VoteResult{ReplyID: replyID}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		existing, err := repo.FindVote(replyID, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.CreateVote(&model.ReplyVote{ReplyID: replyID, UserID: userID, Type: voteType}); err != nil {
				return err
			}
			result.Action, result.Vote = "created", &voteType
			return repo.AdjustVotes(replyID, voteType.Delta())
		case err != nil:
			return err
		case existing.Type == voteType:
			if err := repo.DeleteVote(existing.ID); err != nil {
				return err
			}
			result.Action = "removed"
			return repo.AdjustVotes(replyID, -voteType.Delta())
		default:
			existing.Type = voteType
			if err := repo.UpdateVote(existing); err != nil {
				return err
			}
			result.Action, result.Vote = "switched", &voteType
			return repo.AdjustVotes(replyID, 2*voteType.Delta())
		}
	})
	if err != nil {
		return nil, err
	}

	monitoring.ForumVotes.WithLabelValues(result.Action).Inc()
	reply, err := s.Repo.FindReply(replyID)
	if err != nil {
		return nil, err
	}
	result.Votes = reply.Votes
	return result, nil
}
