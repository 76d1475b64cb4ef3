package service

import (
	"context"
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/mailer"
	"fmt"
	"net/mail"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TutoringService struct {
	Repo     *repository.TutoringRepository
	UserRepo *repository.UserRepository
	Notifier Notifier
	Mailer   mailer.Mailer
	Now      func() time.Time
}

func NewTutoringService(repo *repository.TutoringRepository, userRepo *repository.UserRepository, notifier Notifier, m mailer.Mailer) *TutoringService {
	return &TutoringService{Repo: repo, UserRepo: userRepo, Notifier: notifier, Mailer: m, Now: time.Now}
}

// TutorListing is the public view of a tutor.
type TutorListing struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Specialty     string  `json:"specialty"`
	AverageRating float64 `json:"averageRating"`
	Subjects      string  `json:"subjects"`
	Bio           string  `json:"bio"`
	Rate30        float64 `json:"rate30"`
	Rate60        float64 `json:"rate60"`
}

func (s *TutoringService) Tutors() ([]TutorListing, error) {
	tutors, err := s.Repo.ListActiveTutors()
	if err != nil {
		return nil, err
	}
	listings := make([]TutorListing, 0, len(tutors))
	for i := range tutors {
		var l TutorListing
		if err := copier.Copy(&l, &tutors[i]); err != nil {
			return nil, err
		}
		if c := tutors[i].Creator; c != nil {
			l.Specialty = c.Specialty
			l.AverageRating = c.AverageRating
			if c.User != nil {
				l.Name = c.User.FullName()
			}
		}
		listings = append(listings, l)
	}
	return listings, nil
}

type TutorProfileRequest struct {
	Subjects string  `json:"subjects" binding:"max=500"`
	Bio      string  `json:"bio"`
	Rate30   float64 `json:"rate30" binding:"min=0"`
	Rate60   float64 `json:"rate60" binding:"min=0"`
	Active   *bool   `json:"active"`
}

func (s *TutoringService) creatorProfile(userID uint) (*model.CreatorProfile, error) {
	creator, err := s.UserRepo.FindCreatorProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrForbidden
		}
		return nil, err
	}
	return creator, nil
}

// Me returns the caller's tutor listing, creating an inactive one on first use.
func (s *TutoringService) Me(userID uint) (*model.TutorProfile, error) {
	creator, err := s.creatorProfile(userID)
	if err != nil {
		return nil, err
	}
	tutor, err := s.Repo.FindTutorByCreator(creator.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tutor = &model.TutorProfile{CreatorID: creator.ID}
		return tutor, s.Repo.SaveTutor(tutor)
	}
	return tutor, err
}

func (s *TutoringService) UpdateMe(userID uint, req *TutorProfileRequest) (*model.TutorProfile, error) {
	tutor, err := s.Me(userID)
	if err != nil {
		return nil, err
	}
	tutor.Subjects = req.Subjects
	tutor.Bio = req.Bio
	tutor.Rate30 = req.Rate30
	tutor.Rate60 = req.Rate60
	if req.Active != nil {
		tutor.Active = *req.Active
	}
	return tutor, s.Repo.SaveTutor(tutor)
}

type SessionRequest struct {
	TutorID         uint      `json:"tutorId" binding:"required"`
	Subject         string    `json:"subject" binding:"required,max=200"`
	Notes           string    `json:"notes"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,oneof=30 60"`
}

// Request books a session with an active tutor. The tutor and the student are
// both notified and the tutor also gets an email.
func (s *TutoringService) Request(ctx context.Context, studentID uint, req *SessionRequest) (*model.TutoringSession, error) {
	if req.DurationMinutes != 30 && req.DurationMinutes != 60 {
		return nil, util.Validationf("duration must be 30 or 60 minutes")
	}
	if !req.ScheduledAt.After(s.Now()) {
		return nil, util.Validationf("session must be scheduled in the future")
	}
	tutor, err := s.Repo.FindTutor(req.TutorID)
	if err != nil {
		return nil, notFound(err, util.ErrTutorNotFound)
	}
	if !tutor.Active || tutor.Creator == nil || tutor.Creator.User == nil {
		return nil, util.ErrTutorInactive
	}
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}

	price := tutor.Rate30
	if req.DurationMinutes == 60 {
		price = tutor.Rate60
	}
	session := &model.TutoringSession{
		TutorID:         tutor.ID,
		StudentID:       studentID,
		Subject:         req.Subject,
		Notes:           req.Notes,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Price:           price,
		Status:          model.SessionRequested,
	}
	if err := s.Repo.CreateSession(session); err != nil {
		return nil, err
	}

	tutorUser := tutor.Creator.User
	when := req.ScheduledAt.Format(util.TimeFormat)
	link := fmt.Sprintf("/tutoring/sessions/%d", session.ID)
	if _, err := s.Notifier.Notify(tutorUser.ID, model.NotificationAlert, "Nueva solicitud de tutoría",
		fmt.Sprintf("%s solicitó una tutoría de %s para el %s", student.FullName(), req.Subject, when), link); err != nil {
		return nil, err
	}
	if _, err := s.Notifier.Notify(studentID, model.NotificationSuccess, "Solicitud enviada",
		fmt.Sprintf("Tu solicitud de tutoría con %s fue enviada", tutorUser.FullName()), link); err != nil {
		return nil, err
	}

	if s.Mailer != nil {
		msg := mailer.Message{
			To:      mail.Address{Name: tutorUser.FullName(), Address: tutorUser.Email},
			Subject: "Nueva solicitud de tutoría",
			TextContent: fmt.Sprintf("%s solicitó una tutoría de %d minutos sobre %s para el %s.",
				student.FullName(), req.DurationMinutes, req.Subject, when),
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			logger.Log.Warn("tutoring mail failed", zap.Uint("sessionID", session.ID), zap.Error(err))
		}
	}

	logger.Log.Info("tutoring session requested",
		zap.Uint("sessionID", session.ID), zap.Uint("tutorID", tutor.ID), zap.Uint("studentID", studentID))
	return session, nil
}

// Sessions lists the caller's sessions: as tutor for creators with a tutor
// listing, as student otherwise.
func (s *TutoringService) Sessions(claims *util.Claims) ([]model.TutoringSession, error) {
	if claims.Role == model.Creator {
		creator, err := s.creatorProfile(claims.UserID)
		if err != nil {
			return nil, err
		}
		tutor, err := s.Repo.FindTutorByCreator(creator.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.TutoringSession{}, nil
		}
		if err != nil {
			return nil, err
		}
		return s.Repo.ListByTutor(tutor.ID)
	}
	return s.Repo.ListByStudent(claims.UserID)
}

type StatusRequest struct {
	Status model.SessionStatus `json:"status" binding:"required,oneof=confirmed completed cancelled"`
}

// Transition moves a session along its lifecycle. Only the assigned tutor or
// an administrator may do it; the student is notified.
func (s *TutoringService) Transition(claims *util.Claims, sessionID uint, next model.SessionStatus) (*model.TutoringSession, error) {
	session, err := s.Repo.FindSession(sessionID)
	if err != nil {
		return nil, notFound(err, util.ErrSessionNotFound)
	}
	if claims.Role != model.Admin {
		if session.Tutor == nil || session.Tutor.Creator == nil || session.Tutor.Creator.UserID != claims.UserID {
			return nil, util.ErrForbidden
		}
	}
	if !session.Status.CanTransition(next) {
		return nil, util.ErrInvalidTransition
	}
	moved, err := s.Repo.UpdateStatus(session.ID, session.Status, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, util.ErrInvalidTransition
	}
	session.Status = next

	if _, err := s.Notifier.Notify(session.StudentID, model.NotificationInfo, "Tutoría actualizada",
		fmt.Sprintf("Tu tutoría de %s ahora está %s", session.Subject, next),
		fmt.Sprintf("/tutoring/sessions/%d", session.ID)); err != nil {
		return nil, err
	}
	return session, nil
}
