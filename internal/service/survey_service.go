package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	scaleMin        = 1
	scaleMax        = 5
	textResultLimit = 10
)

type SurveyService struct {
	Repo *repository.SurveyRepository
	Now  func() time.Time
}

func NewSurveyService(repo *repository.SurveyRepository) *SurveyService {
	return &SurveyService{Repo: repo, Now: time.Now}
}

type SurveyQuestionRequest struct {
	Text     string                   `json:"text" binding:"required"`
	Type     model.SurveyQuestionType `json:"type" binding:"required"`
	Options  []string                 `json:"options"`
	Required bool                     `json:"required"`
}

type SurveyRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description"`
	CourseID    *uint                   `json:"courseId"`
	Anonymous   bool                    `json:"anonymous"`
	ClosesAt    *time.Time              `json:"closesAt"`
	Questions   []SurveyQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type SurveyAnswer struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Value      string `json:"value"`
}

type SurveyResponseRequest struct {
	Answers []SurveyAnswer `json:"answers" binding:"dive"`
}

func (s *SurveyService) Create(claims *util.Claims, req *SurveyRequest) (*model.Survey, error) {
	if claims.Role != model.Creator && claims.Role != model.Admin {
		return nil, util.ErrForbidden
	}
	survey := &model.Survey{
		CreatorID:   claims.UserID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Anonymous:   req.Anonymous,
		ClosesAt:    req.ClosesAt,
		Active:      true,
	}
	for i, q := range req.Questions {
		if !q.Type.Valid() {
			return nil, util.Validationf("question %d: unknown type %q", i+1, q.Type)
		}
		if q.Type == model.SurveyMultipleChoice && len(q.Options) < 2 {
			return nil, util.Validationf("question %d: multiple choice needs at least two options", i+1)
		}
		question := model.SurveyQuestion{
			Text:      q.Text,
			Type:      q.Type,
			Required:  q.Required,
			SortOrder: i + 1,
		}
		if q.Type == model.SurveyMultipleChoice {
			question.Options = model.OptionsJSON(q.Options)
		}
		survey.Questions = append(survey.Questions, question)
	}
	return survey, s.Repo.Create(survey)
}

func (s *SurveyService) survey(id uint) (*model.Survey, error) {
	survey, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrSurveyNotFound)
	}
	return survey, nil
}

func (s *SurveyService) Detail(id uint) (*model.Survey, error) {
	return s.survey(id)
}

// Available lists open surveys the user has not answered yet.
func (s *SurveyService) Available(userID uint) ([]model.Survey, error) {
	surveys, err := s.Repo.ListActive()
	if err != nil {
		return nil, err
	}
	answered, err := s.Repo.AnsweredSurveyIDs(userID)
	if err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(answered))
	for _, id := range answered {
		done[id] = true
	}

	now := s.Now()
	available := make([]model.Survey, 0, len(surveys))
	for _, sv := range surveys {
		if done[sv.ID] || sv.ClosedAt(now) {
			continue
		}
		available = append(available, sv)
	}
	return available, nil
}

func (s *SurveyService) Mine(userID uint) ([]model.Survey, error) {
	return s.Repo.ListByCreator(userID)
}

func checkSurveyAnswer(q *model.SurveyQuestion, value string) error {
	switch q.Type {
	case model.SurveyScale:
		n, err := strconv.Atoi(value)
		if err != nil || n < scaleMin || n > scaleMax {
			return util.Validationf("question %d: scale answers go from %d to %d", q.ID, scaleMin, scaleMax)
		}
	case model.SurveyMultipleChoice:
		for _, opt := range q.OptionList() {
			if opt == value {
				return nil
			}
		}
		return util.Validationf("question %d: %q is not one of the options", q.ID, value)
	}
	return nil
}

// Respond stores a response. Identified respondents answer once; anonymous
// surveys store no user and accept repeated submissions.
func (s *SurveyService) Respond(userID, surveyID uint, req *SurveyResponseRequest) (*model.SurveyResponse, error) {
	survey, err := s.survey(surveyID)
	if err != nil {
		return nil, err
	}
	if !survey.Active || survey.ClosedAt(s.Now()) {
		return nil, util.ErrSurveyClosed
	}
	if !survey.Anonymous {
		responded, err := s.Repo.HasResponded(surveyID, userID)
		if err != nil {
			return nil, err
		}
		if responded {
			return nil, util.ErrAlreadyResponded
		}
	}

	questions := make(map[uint]*model.SurveyQuestion, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}
	values := make(map[uint]string, len(req.Answers))
	for _, a := range req.Answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return nil, util.Validationf("question %d does not belong to this survey", a.QuestionID)
		}
		if _, dup := values[a.QuestionID]; dup {
			return nil, util.Validationf("question %d answered twice", a.QuestionID)
		}
		value := strings.TrimSpace(a.Value)
		if value != "" {
			if err := checkSurveyAnswer(q, value); err != nil {
				return nil, err
			}
		}
		values[a.QuestionID] = value
	}

	resp := &model.SurveyResponse{SurveyID: surveyID}
	if !survey.Anonymous {
		resp.UserID = &userID
	}
	for _, q := range survey.Questions {
		value := values[q.ID]
		if value == "" {
			if q.Required {
				return nil, util.Validationf("question %d is required", q.ID)
			}
			continue
		}
		resp.Details = append(resp.Details, model.ResponseDetail{QuestionID: q.ID, Value: value})
	}

	if err := s.Repo.CreateResponse(resp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyResponded
		}
		return nil, err
	}
	return resp, nil
}

type QuestionResult struct {
	QuestionID   uint                     `json:"questionId"`
	Text         string                   `json:"text"`
	Type         model.SurveyQuestionType `json:"type"`
	Distribution []repository.ValueCount  `json:"distribution,omitempty"`
	Answers      []string                 `json:"answers,omitempty"`
}

type SurveyResults struct {
	SurveyID  uint             `json:"surveyId"`
	Title     string           `json:"title"`
	Responses int64            `json:"responses"`
	Questions []QuestionResult `json:"questions"`
}

// Results aggregates responses for the survey's creator: a value
// distribution for structured questions and the first text answers.
func (s *SurveyService) Results(claims *util.Claims, surveyID uint) (*SurveyResults, error) {
	survey, err := s.survey(surveyID)
	if err != nil {
		return nil, err
	}
	if survey.CreatorID != claims.UserID {
		return nil, util.ErrForbidden
	}

	total, err := s.Repo.CountResponses(surveyID)
	if err != nil {
		return nil, err
	}
	results := &SurveyResults{SurveyID: survey.ID, Title: survey.Title, Responses: total}
	for _, q := range survey.Questions {
		qr := QuestionResult{QuestionID: q.ID, Text: q.Text, Type: q.Type}
		if q.Type == model.SurveyText {
			qr.Answers, err = s.Repo.TextAnswers(q.ID, textResultLimit)
		} else {
			qr.Distribution, err = s.Repo.Distribution(q.ID)
		}
		if err != nil {
			return nil, err
		}
		results.Questions = append(results.Questions, qr)
	}
	return results, nil
}
