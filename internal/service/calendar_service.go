package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type CalendarService struct {
	Repo *repository.CalendarRepository
	Now  func() time.Time
}

func NewCalendarService(repo *repository.CalendarRepository) *CalendarService {
	return &CalendarService{Repo: repo, Now: time.Now}
}

type ActivityRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required,isodate"`
	Time        string `json:"time" binding:"omitempty,hhmm"`
	CourseID    *uint  `json:"courseId"`
}

func (req *ActivityRequest) check() error {
	if !util.ValidDate(req.Date) {
		return util.Validationf("date must be YYYY-MM-DD")
	}
	if req.Time != "" && !util.ValidHour(req.Time) {
		return util.Validationf("time must be HH:MM")
	}
	return nil
}

// Upcoming lists the user's entries from today on.
func (s *CalendarService) Upcoming(userID uint) ([]model.UpcomingActivity, error) {
	return s.Repo.Upcoming(userID, s.Now().Format(util.DateFormat))
}

func (s *CalendarService) Create(userID uint, req *ActivityRequest) (*model.UpcomingActivity, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	a := &model.UpcomingActivity{
		UserID:      userID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Origin:      model.OriginManual,
	}
	return a, s.Repo.Create(a)
}

// editable returns the caller's manual entry; entries derived from exam
// dates are read-only here.
func (s *CalendarService) editable(userID, id uint) (*model.UpcomingActivity, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}
	if a.UserID != userID {
		return nil, util.ErrActivityNotFound
	}
	if a.Origin != model.OriginManual {
		return nil, util.ErrActivityReadOnly
	}
	return a, nil
}

func (s *CalendarService) Update(userID, id uint, req *ActivityRequest) (*model.UpcomingActivity, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	a, err := s.editable(userID, id)
	if err != nil {
		return nil, err
	}
	a.Title = req.Title
	a.Description = req.Description
	a.Date = req.Date
	a.Time = req.Time
	a.CourseID = req.CourseID
	return a, s.Repo.Save(a)
}

func (s *CalendarService) Delete(userID, id uint) error {
	if _, err := s.editable(userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}
