package service

import (
	"context"
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"mime/multipart"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommunityService struct {
	DB      *gorm.DB
	Repo    *repository.CommunityRepository
	Storage *StorageService

	autoApprove atomic.Bool
}

func NewCommunityService(db *gorm.DB, repo *repository.CommunityRepository, storage *StorageService, autoApprove bool) *CommunityService {
	s := &CommunityService{DB: db, Repo: repo, Storage: storage}
	s.autoApprove.Store(autoApprove)
	return s
}

// SetAutoApprove switches moderation mode; called on config reload.
func (s *CommunityService) SetAutoApprove(v bool) {
	s.autoApprove.Store(v)
}

type CommunityResourceRequest struct {
	Title       string                      `json:"title" form:"title" binding:"required,max=200"`
	Description string                      `json:"description" form:"description"`
	Type        model.CommunityResourceType `json:"type" form:"type" binding:"required"`
	CourseID    *uint                       `json:"courseId" form:"courseId"`
	FileURL     string                      `json:"fileUrl" form:"fileUrl" binding:"omitempty,url"`
	Content     string                      `json:"content" form:"content"`
}

type RatingRequest struct {
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

type ModerationRequest struct {
	Approved bool `json:"approved"`
}

type CommunityResourceDetail struct {
	*model.CommunityResource
	Ratings []model.ResourceRating `json:"ratings"`
}

func (s *CommunityService) resource(id uint) (*model.CommunityResource, error) {
	res, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrCommunityResourceNotFound)
	}
	return res, nil
}

// visible reports whether the caller may see a resource that is not public.
func visible(claims *util.Claims, res *model.CommunityResource) bool {
	if res.Approved && res.Active {
		return true
	}
	return claims != nil && (claims.Role == model.Admin || claims.UserID == res.AuthorID)
}

func (s *CommunityService) List(filter repository.CommunityFilter, page, limit int) ([]model.CommunityResource, int64, error) {
	return s.Repo.ListPublic(filter, page, limit)
}

func (s *CommunityService) Mine(userID uint) ([]model.CommunityResource, error) {
	return s.Repo.ListByAuthor(userID)
}

func (s *CommunityService) Pending() ([]model.CommunityResource, error) {
	return s.Repo.ListPending()
}

func (s *CommunityService) Detail(claims *util.Claims, id uint) (*CommunityResourceDetail, error) {
	res, err := s.resource(id)
	if err != nil {
		return nil, err
	}
	if !visible(claims, res) {
		return nil, util.ErrCommunityResourceNotFound
	}
	ratings, err := s.Repo.ListRatings(id)
	if err != nil {
		return nil, err
	}
	return &CommunityResourceDetail{CommunityResource: res, Ratings: ratings}, nil
}

// Create stores a contributed resource. With a file the upload goes through
// the storage provider and its URL replaces any given link.
func (s *CommunityService) Create(ctx context.Context, userID uint, req *CommunityResourceRequest, file *multipart.FileHeader) (*model.CommunityResource, error) {
	if !req.Type.Valid() {
		return nil, util.Validationf("unknown resource type %q", req.Type)
	}
	res := &model.CommunityResource{
		AuthorID:    userID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		FileURL:     req.FileURL,
		Content:     req.Content,
		Approved:    s.autoApprove.Load(),
		Active:      true,
	}
	if file != nil {
		stored, err := s.Storage.Store(ctx, "community", file)
		if err != nil {
			return nil, err
		}
		res.FileURL, res.FileKey = stored.URL, stored.Key
	}
	if res.FileURL == "" && res.Content == "" {
		return nil, util.Validationf("a file, a link or text content is required")
	}

	if err := s.Repo.Create(res); err != nil {
		_ = s.Storage.Delete(ctx, res.FileKey)
		return nil, err
	}
	return res, nil
}

func (s *CommunityService) Update(claims *util.Claims, id uint, req *CommunityResourceRequest) (*model.CommunityResource, error) {
	res, err := s.resource(id)
	if err != nil {
		return nil, err
	}
	if err := authorOrAdmin(claims, res.AuthorID); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, util.Validationf("unknown resource type %q", req.Type)
	}
	res.Title = req.Title
	res.Description = req.Description
	res.Type = req.Type
	res.CourseID = req.CourseID
	res.Content = req.Content
	if req.FileURL != "" {
		res.FileURL = req.FileURL
	}
	return res, s.Repo.Update(res)
}

func (s *CommunityService) Delete(ctx context.Context, claims *util.Claims, id uint) error {
	res, err := s.resource(id)
	if err != nil {
		return err
	}
	if err := authorOrAdmin(claims, res.AuthorID); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	if err := s.Storage.Delete(ctx, res.FileKey); err != nil {
		logger.Log.Warn("failed to delete community file", zap.String("key", res.FileKey), zap.Error(err))
	}
	return nil
}

// Moderate approves or rejects a resource. Rejected resources are hidden.
func (s *CommunityService) Moderate(id uint, approved bool) (*model.CommunityResource, error) {
	res, err := s.resource(id)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{"approved": approved, "active": approved}
	if err := s.Repo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	res.Approved, res.Active = approved, approved
	logger.Log.Info("community resource moderated", zap.Uint("resourceID", id), zap.Bool("approved", approved))
	return res, nil
}

type RatingResult struct {
	Rating        *model.ResourceRating `json:"rating"`
	AverageRating float64               `json:"averageRating"`
	RatingCount   int                   `json:"ratingCount"`
}

// Rate upserts the caller's rating and recounts the cached average.
func (s *CommunityService) Rate(claims *util.Claims, id uint, req *RatingRequest) (*RatingResult, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, util.ErrInvalidRating
	}
	res, err := s.resource(id)
	if err != nil {
		return nil, err
	}
	if !visible(claims, res) {
		return nil, util.ErrCommunityResourceNotFound
	}

	result := &RatingResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		rating, err := repo.FindRating(id, claims.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			rating = &model.ResourceRating{ResourceID: id, UserID: claims.UserID}
		}
		rating.Score = req.Score
		rating.Comment = req.Comment
		if err := repo.SaveRating(rating); err != nil {
			return err
		}
		result.Rating = rating
		result.AverageRating, result.RatingCount, err = repo.RecountRating(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type DownloadResult struct {
	URL       string `json:"url"`
	Content   string `json:"content,omitempty"`
	Downloads int    `json:"downloads"`
}

// Download records the download and returns where to fetch the resource.
func (s *CommunityService) Download(claims *util.Claims, id uint) (*DownloadResult, error) {
	res, err := s.resource(id)
	if err != nil {
		return nil, err
	}
	if !visible(claims, res) {
		return nil, util.ErrCommunityResourceNotFound
	}
	if err := s.Repo.RecordDownload(id, claims.UserID); err != nil {
		return nil, err
	}
	return &DownloadResult{URL: res.FileURL, Content: res.Content, Downloads: res.Downloads + 1}, nil
}
