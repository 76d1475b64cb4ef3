package service

import (
	"context"
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"
)

// CourseService manages the catalog: courses, modules, resources and the
// question bank.
type CourseService struct {
	UserRepo     *repository.UserRepository
	CourseRepo   *repository.CourseRepository
	ResourceRepo *repository.ResourceRepository
	Storage      *StorageService
}

func NewCourseService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	resourceRepo *repository.ResourceRepository,
	storage *StorageService,
) *CourseService {
	return &CourseService{
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		ResourceRepo: resourceRepo,
		Storage:      storage,
	}
}

func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// Authorize loads the course and checks the caller may edit it: the owning
// creator or any administrator.
func (s *CourseService) Authorize(claims *util.Claims, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if claims.IsAdmin() {
		return course, nil
	}
	if claims.Role != model.Creator {
		return nil, util.ErrForbidden
	}
	profile, err := s.UserRepo.FindCreatorProfile(claims.UserID)
	if err != nil || profile.ID != course.CreatorID {
		return nil, util.ErrForbidden
	}
	return course, nil
}

func (s *CourseService) authorizeModule(claims *util.Claims, moduleID uint) (*model.Module, error) {
	module, err := s.CourseRepo.FindModule(moduleID)
	if err != nil {
		return nil, notFound(err, util.ErrModuleNotFound)
	}
	if _, err := s.Authorize(claims, module.CourseID); err != nil {
		return nil, err
	}
	return module, nil
}

type CourseRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description"`
	CoverURL    string            `json:"coverUrl"`
	Category    string            `json:"category"`
	Level       model.CourseLevel `json:"level"`
	Price       float64           `json:"price" binding:"min=0"`
	IsFree      *bool             `json:"isFree"`
	Active      *bool             `json:"active"`
	CreatorID   *uint             `json:"creatorId"`
}

func (req *CourseRequest) apply(c *model.Course) {
	c.Title = strings.TrimSpace(req.Title)
	c.Description = req.Description
	c.CoverURL = req.CoverURL
	c.Category = req.Category
	if req.Level != "" {
		c.Level = req.Level
	}
	c.Price = req.Price
	if req.IsFree != nil {
		c.IsFree = *req.IsFree
	} else {
		c.IsFree = req.Price == 0
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
}

// resolveOwner picks the creator profile that owns a new course: the
// caller's own, the one named in the request, or the first one on record.
func (s *CourseService) resolveOwner(claims *util.Claims, requested *uint) (uint, error) {
	if profile, err := s.UserRepo.FindCreatorProfile(claims.UserID); err == nil {
		return profile.ID, nil
	}
	if requested != nil {
		profile, err := s.UserRepo.FindCreatorProfileByID(*requested)
		if err != nil {
			return 0, notFound(err, util.ErrNoCreatorProfile)
		}
		return profile.ID, nil
	}
	profile, err := s.UserRepo.FirstCreatorProfile()
	if err != nil {
		return 0, notFound(err, util.ErrNoCreatorProfile)
	}
	return profile.ID, nil
}

func (s *CourseService) List(filter repository.CourseFilter, page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.List(filter, page, limit)
}

func (s *CourseService) Detail(id uint, includeInactive bool) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetail(id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Active && !includeInactive {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) Create(claims *util.Claims, req *CourseRequest) (*model.Course, error) {
	if req.Level != "" && req.Level != model.LevelBeginner && req.Level != model.LevelIntermediate && req.Level != model.LevelAdvanced {
		return nil, util.Validationf("unknown level %q", req.Level)
	}
	ownerID, err := s.resolveOwner(claims, req.CreatorID)
	if err != nil {
		return nil, err
	}

	course := &model.Course{CreatorID: ownerID, Level: model.LevelBeginner, Active: true}
	req.apply(course)
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(claims *util.Claims, id uint, req *CourseRequest) (*model.Course, error) {
	course, err := s.Authorize(claims, id)
	if err != nil {
		return nil, err
	}
	req.apply(course)
	if req.CreatorID != nil && claims.IsAdmin() {
		if _, err := s.UserRepo.FindCreatorProfileByID(*req.CreatorID); err != nil {
			return nil, notFound(err, util.ErrNoCreatorProfile)
		}
		course.CreatorID = *req.CreatorID
	}
	return course, s.CourseRepo.Update(course)
}

func (s *CourseService) Delete(claims *util.Claims, id uint) error {
	if _, err := s.Authorize(claims, id); err != nil {
		return err
	}
	return s.CourseRepo.Delete(id)
}

func (s *CourseService) ToggleActive(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	course.Active = !course.Active
	return course, s.CourseRepo.SetActive(id, course.Active)
}

type ModuleRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

func (s *CourseService) Modules(courseID uint) ([]model.Module, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	return s.CourseRepo.ListModules(courseID)
}

func (s *CourseService) CreateModule(claims *util.Claims, courseID uint, req *ModuleRequest) (*model.Module, error) {
	if _, err := s.Authorize(claims, courseID); err != nil {
		return nil, err
	}
	module := &model.Module{CourseID: courseID, Title: req.Title, Description: req.Description, SortOrder: req.SortOrder}
	return module, s.CourseRepo.CreateModule(module)
}

func (s *CourseService) UpdateModule(claims *util.Claims, id uint, req *ModuleRequest) (*model.Module, error) {
	module, err := s.authorizeModule(claims, id)
	if err != nil {
		return nil, err
	}
	module.Title = req.Title
	module.Description = req.Description
	module.SortOrder = req.SortOrder
	return module, s.CourseRepo.UpdateModule(module)
}

func (s *CourseService) DeleteModule(claims *util.Claims, id uint) error {
	if _, err := s.authorizeModule(claims, id); err != nil {
		return err
	}
	return s.CourseRepo.DeleteModule(id)
}

type ResourceRequest struct {
	ModuleID        uint               `json:"moduleId" form:"moduleId" binding:"required"`
	Title           string             `json:"title" form:"title" binding:"required,max=200"`
	Description     string             `json:"description" form:"description"`
	Type            model.ResourceType `json:"type" form:"type" binding:"required"`
	URL             string             `json:"url" form:"url"`
	Content         string             `json:"content" form:"content"`
	SortOrder       int                `json:"sortOrder" form:"sortOrder"`
	DurationMinutes int                `json:"durationMinutes" form:"durationMinutes" binding:"min=0"`
	IsFree          bool               `json:"isFree" form:"isFree"`
}

func (req *ResourceRequest) apply(r *model.Resource) error {
	if !req.Type.Valid() {
		return util.Validationf("unknown resource type %q", req.Type)
	}
	r.Title = req.Title
	r.Description = req.Description
	r.Type = req.Type
	r.URL = req.URL
	r.Content = req.Content
	r.SortOrder = req.SortOrder
	r.DurationMinutes = req.DurationMinutes
	r.IsFree = req.IsFree
	return nil
}

func (s *CourseService) Resource(id uint) (*model.Resource, error) {
	r, err := s.ResourceRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrResourceNotFound)
	}
	return r, nil
}

// CreateResource stores the resource; an attached file is uploaded first and
// its URL (and video duration) fill in the resource.
func (s *CourseService) CreateResource(ctx context.Context, claims *util.Claims, req *ResourceRequest, file *multipart.FileHeader) (*model.Resource, error) {
	if _, err := s.authorizeModule(claims, req.ModuleID); err != nil {
		return nil, err
	}
	resource := &model.Resource{ModuleID: req.ModuleID}
	if err := req.apply(resource); err != nil {
		return nil, err
	}

	if file != nil {
		stored, err := s.Storage.Store(ctx, "resources", file)
		if err != nil {
			return nil, err
		}
		resource.URL = stored.URL
		if resource.DurationMinutes == 0 {
			resource.DurationMinutes = stored.DurationMinutes
		}
	}
	if resource.URL == "" && resource.Content == "" {
		return nil, util.Validationf("a resource needs a url, a file or content")
	}
	return resource, s.ResourceRepo.Create(resource)
}

func (s *CourseService) UpdateResource(claims *util.Claims, id uint, req *ResourceRequest) (*model.Resource, error) {
	resource, err := s.Resource(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeModule(claims, resource.ModuleID); err != nil {
		return nil, err
	}
	if req.ModuleID != resource.ModuleID {
		if _, err := s.authorizeModule(claims, req.ModuleID); err != nil {
			return nil, err
		}
		resource.ModuleID = req.ModuleID
	}
	if err := req.apply(resource); err != nil {
		return nil, err
	}
	return resource, s.ResourceRepo.Update(resource)
}

func (s *CourseService) DeleteResource(claims *util.Claims, id uint) error {
	resource, err := s.Resource(id)
	if err != nil {
		return err
	}
	if _, err := s.authorizeModule(claims, resource.ModuleID); err != nil {
		return err
	}
	return s.ResourceRepo.Delete(id)
}

type QuestionRequest struct {
	ModuleID      uint             `json:"moduleId" binding:"required"`
	Text          string           `json:"text" binding:"required"`
	OptionA       string           `json:"optionA" binding:"required"`
	OptionB       string           `json:"optionB" binding:"required"`
	OptionC       string           `json:"optionC" binding:"required"`
	OptionD       string           `json:"optionD" binding:"required"`
	CorrectOption string           `json:"correctOption" binding:"required,oneof=A B C D a b c d"`
	Explanation   string           `json:"explanation"`
	Difficulty    model.Difficulty `json:"difficulty"`
	Points        int              `json:"points" binding:"min=0"`
}

func (req *QuestionRequest) apply(q *model.Question) error {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !difficulty.Valid() {
		return util.Validationf("unknown difficulty %q", req.Difficulty)
	}
	q.ModuleID = req.ModuleID
	q.Text = req.Text
	q.OptionA = req.OptionA
	q.OptionB = req.OptionB
	q.OptionC = req.OptionC
	q.OptionD = req.OptionD
	q.CorrectOption = strings.ToUpper(req.CorrectOption)
	q.Explanation = req.Explanation
	q.Difficulty = difficulty
	q.Points = pointsOrOne(req.Points)
	return nil
}

// QuestionView hides the answer from students.
type QuestionView struct {
	ID         uint             `json:"id"`
	ModuleID   uint             `json:"moduleId"`
	Text       string           `json:"text"`
	Options    []string         `json:"options"`
	Difficulty model.Difficulty `json:"difficulty"`
	Points     int              `json:"points"`
}

func (s *CourseService) Questions(moduleID *uint, difficulty model.Difficulty) ([]model.Question, error) {
	if difficulty != "" && !difficulty.Valid() {
		return nil, util.Validationf("unknown difficulty %q", difficulty)
	}
	return s.ResourceRepo.ListQuestions(moduleID, difficulty)
}

func StudentQuestionViews(questions []model.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		views = append(views, QuestionView{
			ID:         q.ID,
			ModuleID:   q.ModuleID,
			Text:       q.Text,
			Options:    q.Options(),
			Difficulty: q.Difficulty,
			Points:     q.Points,
		})
	}
	return views
}

func (s *CourseService) CreateQuestion(claims *util.Claims, req *QuestionRequest) (*model.Question, error) {
	if _, err := s.authorizeModule(claims, req.ModuleID); err != nil {
		return nil, err
	}
	q := &model.Question{}
	if err := req.apply(q); err != nil {
		return nil, err
	}
	return q, s.ResourceRepo.CreateQuestion(q)
}

func (s *CourseService) UpdateQuestion(claims *util.Claims, id uint, req *QuestionRequest) (*model.Question, error) {
	q, err := s.ResourceRepo.FindQuestion(id)
	if err != nil {
		return nil, notFound(err, util.ErrNotFound)
	}
	if _, err := s.authorizeModule(claims, q.ModuleID); err != nil {
		return nil, err
	}
	if req.ModuleID != q.ModuleID {
		if _, err := s.authorizeModule(claims, req.ModuleID); err != nil {
			return nil, err
		}
	}
	if err := req.apply(q); err != nil {
		return nil, err
	}
	return q, s.ResourceRepo.UpdateQuestion(q)
}

func (s *CourseService) DeleteQuestion(claims *util.Claims, id uint) error {
	q, err := s.ResourceRepo.FindQuestion(id)
	if err != nil {
		return notFound(err, util.ErrNotFound)
	}
	if _, err := s.authorizeModule(claims, q.ModuleID); err != nil {
		return err
	}
	return s.ResourceRepo.DeleteQuestion(id)
}
