package service

import (
	"errors"
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/monitoring"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamService struct {
	DB           *gorm.DB
	ExamRepo     *repository.ExamRepository
	ResourceRepo *repository.ResourceRepository
	Courses      *CourseService
	Progress     *ProgressService
	Achievements *AchievementService
	Cfg          *config.Config

	rngMu sync.Mutex
	rng   *rand.Rand
	Now   func() time.Time
}

func NewExamService(
	db *gorm.DB,
	examRepo *repository.ExamRepository,
	resourceRepo *repository.ResourceRepository,
	courses *CourseService,
	progress *ProgressService,
	achievements *AchievementService,
	cfg *config.Config,
) *ExamService {
	return &ExamService{
		DB:           db,
		ExamRepo:     examRepo,
		ResourceRepo: resourceRepo,
		Courses:      courses,
		Progress:     progress,
		Achievements: achievements,
		Cfg:          cfg,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:          time.Now,
	}
}

// SetRand replaces the question sampler's source, for deterministic tests.
func (s *ExamService) SetRand(r *rand.Rand) {
	s.rngMu.Lock()
	s.rng = r
	s.rngMu.Unlock()
}

type ExamRequest struct {
	CourseID        uint             `json:"courseId" binding:"required"`
	ModuleID        *uint            `json:"moduleId"`
	Title           string           `json:"title" binding:"required,max=200"`
	Description     string           `json:"description"`
	Type            model.ExamType   `json:"type"`
	Difficulty      model.Difficulty `json:"difficulty"`
	DurationMinutes int              `json:"durationMinutes" binding:"min=0"`
	QuestionCount   int              `json:"questionCount" binding:"min=0,max=200"`
	PassingScore    *float64         `json:"passingScore" binding:"omitempty,min=0,max=100"`
	Active          *bool            `json:"active"`
}

func (s *ExamService) apply(e *model.Exam, req *ExamRequest) error {
	if req.Type == "" {
		req.Type = model.ExamEvaluation
	}
	if !req.Type.Valid() {
		return util.Validationf("unknown exam type %q", req.Type)
	}
	if req.Difficulty != "" && !req.Difficulty.Valid() {
		return util.Validationf("unknown difficulty %q", req.Difficulty)
	}
	e.CourseID = req.CourseID
	e.ModuleID = req.ModuleID
	e.Title = req.Title
	e.Description = req.Description
	e.Type = req.Type
	e.Difficulty = req.Difficulty
	e.DurationMinutes = req.DurationMinutes
	if e.DurationMinutes == 0 {
		e.DurationMinutes = s.Cfg.Exams.DefaultDuration
	}
	e.QuestionCount = req.QuestionCount
	if e.QuestionCount == 0 {
		e.QuestionCount = s.Cfg.Exams.DefaultQuestions
	}
	if req.PassingScore != nil {
		e.PassingScore = *req.PassingScore
	} else if e.ID == 0 {
		e.PassingScore = s.Cfg.Exams.DefaultPassingScore
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	return nil
}

func (s *ExamService) List(courseID *uint, examType model.ExamType) ([]model.Exam, error) {
	return s.ExamRepo.ListActive(courseID, examType)
}

func (s *ExamService) Get(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrExamNotFound)
	}
	return exam, nil
}

func (s *ExamService) Create(claims *util.Claims, req *ExamRequest) (*model.Exam, error) {
	if _, err := s.Courses.Authorize(claims, req.CourseID); err != nil {
		return nil, err
	}
	exam := &model.Exam{Active: true}
	if err := s.apply(exam, req); err != nil {
		return nil, err
	}
	return exam, s.ExamRepo.Create(exam)
}

func (s *ExamService) Update(claims *util.Claims, id uint, req *ExamRequest) (*model.Exam, error) {
	exam, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Courses.Authorize(claims, exam.CourseID); err != nil {
		return nil, err
	}
	if req.CourseID != exam.CourseID {
		if _, err := s.Courses.Authorize(claims, req.CourseID); err != nil {
			return nil, err
		}
	}
	if err := s.apply(exam, req); err != nil {
		return nil, err
	}
	return exam, s.ExamRepo.Update(exam)
}

func (s *ExamService) Delete(claims *util.Claims, id uint) error {
	exam, err := s.Get(id)
	if err != nil {
		return err
	}
	if _, err := s.Courses.Authorize(claims, exam.CourseID); err != nil {
		return err
	}
	return s.ExamRepo.Delete(id)
}

type SimulatorRequest struct {
	CourseID        uint             `json:"courseId" binding:"required"`
	Title           string           `json:"title"`
	Difficulty      model.Difficulty `json:"difficulty"`
	QuestionCount   int              `json:"questionCount" binding:"min=0,max=200"`
	DurationMinutes int              `json:"durationMinutes" binding:"min=0"`
	PassingScore    *float64         `json:"passingScore" binding:"omitempty,min=0,max=100"`
}

// GenerateSimulator creates a simulator exam for a course.
func (s *ExamService) GenerateSimulator(claims *util.Claims, req *SimulatorRequest) (*model.Exam, error) {
	course, err := s.Courses.Authorize(claims, req.CourseID)
	if err != nil {
		return nil, err
	}
	title := req.Title
	if title == "" {
		title = "Simulador: " + course.Title
	}
	return s.Create(claims, &ExamRequest{
		CourseID:        req.CourseID,
		Title:           title,
		Type:            model.ExamSimulator,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		QuestionCount:   req.QuestionCount,
		PassingScore:    req.PassingScore,
	})
}

type TemplateQuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points" binding:"min=0"`
}

type TemplateRequest struct {
	CourseID   *uint                     `json:"courseId"`
	Title      string                    `json:"title" binding:"required,max=200"`
	Difficulty model.Difficulty          `json:"difficulty"`
	Questions  []TemplateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// CreateTemplate stores a curated bank. A correct answer must be an option
// letter, the text of an option, or free text when there are no options.
func (s *ExamService) CreateTemplate(req *TemplateRequest) (*model.ExamTemplate, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !difficulty.Valid() {
		return nil, util.Validationf("unknown difficulty %q", req.Difficulty)
	}
	if req.CourseID != nil {
		if _, err := s.Courses.CourseRepo.FindByID(*req.CourseID); err != nil {
			return nil, notFound(err, util.ErrCourseNotFound)
		}
	}

	tpl := &model.ExamTemplate{CourseID: req.CourseID, Title: req.Title, Difficulty: difficulty}
	for i, q := range req.Questions {
		if len(q.Options) > 0 && len(acceptedAnswers(q.CorrectAnswer, q.Options)) < 2 {
			return nil, util.Validationf("question %d: correct answer matches no option", i+1)
		}
		tpl.Questions = append(tpl.Questions, model.TemplateQuestion{
			Text:          q.Text,
			Options:       model.OptionsJSON(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Points:        pointsOrOne(q.Points),
		})
	}
	return tpl, s.ExamRepo.CreateTemplate(tpl)
}

func (s *ExamService) Templates() ([]model.ExamTemplate, error) {
	return s.ExamRepo.ListTemplates()
}

func (s *ExamService) DeleteTemplate(id uint) error {
	if _, err := s.ExamRepo.FindTemplate(id); err != nil {
		return notFound(err, util.ErrNotFound)
	}
	return s.ExamRepo.DeleteTemplate(id)
}

// moduleFirst splits the course pool so a module exam draws from its own
// module before the rest of the course.
func moduleFirst(pool []model.Question, moduleID *uint) [][]model.Question {
	if moduleID == nil {
		return [][]model.Question{pool}
	}
	var own, rest []model.Question
	for _, q := range pool {
		if q.ModuleID == *moduleID {
			own = append(own, q)
		} else {
			rest = append(rest, q)
		}
	}
	return [][]model.Question{own, rest}
}

type StartResponse struct {
	AttemptID       uint                    `json:"attemptId"`
	ExamID          uint                    `json:"examId"`
	DurationMinutes int                     `json:"durationMinutes"`
	StartedAt       time.Time               `json:"startedAt"`
	Questions       []model.AttemptQuestion `json:"questions"`
}

// Start opens an attempt and snapshots its questions.
func (s *ExamService) Start(studentID, examID uint) (*StartResponse, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !exam.Active {
		return nil, util.ErrExamInactive
	}

	n := exam.QuestionCount
	if n <= 0 {
		n = s.Cfg.Exams.DefaultQuestions
	}

	pool, err := s.ResourceRepo.QuestionsByCourse(exam.CourseID)
	if err != nil {
		return nil, err
	}
	src := QuestionSources{Questions: moduleFirst(pool, exam.ModuleID)}
	if src.questionCount() < n {
		course, global, err := s.ExamRepo.TemplateQuestions(exam.CourseID, exam.Difficulty)
		if err != nil {
			return nil, err
		}
		src.Templates = [][]model.TemplateQuestion{course, global}
	}

	s.rngMu.Lock()
	questions := SelectQuestions(s.rng, src, exam.Difficulty, n)
	s.rngMu.Unlock()

	attempt := &model.ExamAttempt{StudentID: studentID, ExamID: exam.ID, StartedAt: s.Now()}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		exams := s.ExamRepo.WithTx(tx)
		if err := exams.CreateAttempt(attempt); err != nil {
			return err
		}
		for i := range questions {
			questions[i].AttemptID = attempt.ID
		}
		return exams.CreateAttemptQuestions(questions)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("exam attempt started",
		zap.Uint("attemptID", attempt.ID), zap.Uint("examID", exam.ID), zap.Int("questions", len(questions)))
	return &StartResponse{
		AttemptID:       attempt.ID,
		ExamID:          exam.ID,
		DurationMinutes: exam.DurationMinutes,
		StartedAt:       attempt.StartedAt,
		Questions:       questions,
	}, nil
}

type AnswerInput struct {
	AttemptQuestionID uint   `json:"attemptQuestionId" binding:"required"`
	Response          string `json:"response"`
	Seconds           int    `json:"seconds" binding:"min=0"`
}

type SubmitRequest struct {
	AttemptID    uint          `json:"attemptId" binding:"required"`
	Answers      []AnswerInput `json:"answers" binding:"dive"`
	TotalSeconds int           `json:"totalSeconds" binding:"min=0"`
}

type QuestionReview struct {
	AttemptQuestionID uint     `json:"attemptQuestionId"`
	Position          int      `json:"position"`
	Text              string   `json:"text"`
	Options           []string `json:"options"`
	Response          string   `json:"response"`
	Correct           bool     `json:"correct"`
	CorrectAnswer     string   `json:"correctAnswer"`
	Explanation       string   `json:"explanation,omitempty"`
	Points            int      `json:"points"`
	PointsAwarded     int      `json:"pointsAwarded"`
}

type SubmitResult struct {
	AttemptID       uint             `json:"attemptId"`
	Score           float64          `json:"score"`
	Passed          bool             `json:"passed"`
	PassingScore    float64          `json:"passingScore"`
	CorrectCount    int              `json:"correctCount"`
	TotalQuestions  int              `json:"totalQuestions"`
	EarnedPoints    int              `json:"earnedPoints"`
	TotalPoints     int              `json:"totalPoints"`
	TimeUsedSeconds int              `json:"timeUsedSeconds"`
	Review          []QuestionReview `json:"review"`
	Progress        *CourseProgress  `json:"progress,omitempty"`
}

func (s *ExamService) ownAttempt(studentID, attemptID uint) (*model.ExamAttempt, error) {
	attempt, err := s.ExamRepo.FindAttempt(attemptID)
	if err != nil {
		return nil, notFound(err, util.ErrAttemptNotFound)
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// Submit grades an attempt. Every question of the attempt gets a stored
// answer, unanswered ones with an empty response. The score is correct over
// total points and passing compares against the exam's minimum.
func (s *ExamService) Submit(studentID, examID uint, req *SubmitRequest) (*SubmitResult, error) {
	attempt, err := s.ownAttempt(studentID, req.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.ExamID != examID {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.Exam == nil {
		return nil, util.ErrExamNotFound
	}
	if attempt.Completed {
		return nil, util.ErrAttemptCompleted
	}

	byID := make(map[uint]*model.AttemptQuestion, len(attempt.Questions))
	for i := range attempt.Questions {
		byID[attempt.Questions[i].ID] = &attempt.Questions[i]
	}
	inputs := make(map[uint]AnswerInput, len(req.Answers))
	for _, a := range req.Answers {
		if _, ok := byID[a.AttemptQuestionID]; !ok {
			return nil, util.ErrUnknownQuestion
		}
		if _, dup := inputs[a.AttemptQuestionID]; dup {
			return nil, util.Validationf("question %d answered twice", a.AttemptQuestionID)
		}
		inputs[a.AttemptQuestionID] = a
	}

	result := &SubmitResult{AttemptID: attempt.ID, PassingScore: attempt.Exam.PassingScore, TotalQuestions: len(attempt.Questions)}
	answers := make([]model.AttemptAnswer, 0, len(attempt.Questions))
	for i := range attempt.Questions {
		q := &attempt.Questions[i]
		in := inputs[q.ID]
		correct := IsCorrectAnswer(q, in.Response)

		awarded := 0
		if correct {
			awarded = q.Points
			result.CorrectCount++
		}
		result.TotalPoints += q.Points
		result.EarnedPoints += awarded

		answers = append(answers, model.AttemptAnswer{
			AttemptID:         attempt.ID,
			AttemptQuestionID: q.ID,
			QuestionID:        q.QuestionID,
			Response:          in.Response,
			IsCorrect:         correct,
			PointsAwarded:     awarded,
			ResponseSeconds:   in.Seconds,
		})
		result.Review = append(result.Review, reviewOf(q, in.Response, correct, awarded))
	}

	result.Score = ScorePercent(result.EarnedPoints, result.TotalPoints)
	result.Passed = result.Score >= attempt.Exam.PassingScore

	finished := s.Now()
	result.TimeUsedSeconds = req.TotalSeconds
	if result.TimeUsedSeconds == 0 {
		result.TimeUsedSeconds = int(finished.Sub(attempt.StartedAt).Seconds())
	}
	attempt.FinishedAt = &finished
	attempt.Score = result.Score
	attempt.Passed = result.Passed
	attempt.Completed = true
	attempt.TimeUsedSeconds = result.TimeUsedSeconds

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		exams := s.ExamRepo.WithTx(tx)
		completed, err := exams.CompleteAttempt(attempt)
		if err != nil {
			return err
		}
		if !completed {
			return util.ErrAttemptCompleted
		}
		return exams.CreateAnswers(answers)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrAttemptCompleted
	}
	if err != nil {
		return nil, err
	}

	monitoring.ExamSubmissions.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()
	logger.Log.Info("exam submitted",
		zap.Uint("attemptID", attempt.ID), zap.Uint("studentID", studentID),
		zap.Float64("score", result.Score), zap.Bool("passed", result.Passed))

	if err := s.gamify(studentID, attempt); err != nil {
		return nil, err
	}

	progress, err := s.Progress.Refresh(studentID, attempt.Exam.CourseID)
	switch {
	case err == nil:
		result.Progress = progress
	case errors.Is(err, util.ErrNotEnrolled):
	default:
		return nil, err
	}
	return result, nil
}

func (s *ExamService) gamify(studentID uint, attempt *model.ExamAttempt) error {
	if s.Achievements == nil {
		return nil
	}
	title := attempt.Exam.Title
	if err := s.Achievements.Record(studentID, model.ActivityExamSubmitted, 0, "Examen enviado: "+title, attempt.ExamID); err != nil {
		return err
	}
	if !attempt.Passed {
		return nil
	}
	passedBefore, err := s.ExamRepo.HasPassed(studentID, attempt.ExamID, attempt.ID)
	if err != nil || passedBefore {
		return err
	}
	return s.Achievements.Record(studentID, model.ActivityExamPassed, PointsExamPassed, "Examen aprobado: "+title, attempt.ExamID)
}

func reviewOf(q *model.AttemptQuestion, response string, correct bool, awarded int) QuestionReview {
	return QuestionReview{
		AttemptQuestionID: q.ID,
		Position:          q.Position,
		Text:              q.Text,
		Options:           q.OptionList(),
		Response:          response,
		Correct:           correct,
		CorrectAnswer:     q.CorrectAnswer,
		Explanation:       q.Explanation,
		Points:            q.Points,
		PointsAwarded:     awarded,
	}
}

func (s *ExamService) History(studentID uint, examID *uint) ([]model.ExamAttempt, error) {
	return s.ExamRepo.ListAttempts(studentID, examID)
}

type AttemptReview struct {
	Attempt *model.ExamAttempt `json:"attempt"`
	Review  []QuestionReview   `json:"review"`
}

// Review shows a submitted attempt with answers and explanations.
func (s *ExamService) Review(studentID, attemptID uint) (*AttemptReview, error) {
	attempt, err := s.ownAttempt(studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.Completed {
		return nil, util.Validationf("attempt has not been submitted")
	}

	answers := make(map[uint]model.AttemptAnswer, len(attempt.Answers))
	for _, a := range attempt.Answers {
		answers[a.AttemptQuestionID] = a
	}
	review := make([]QuestionReview, 0, len(attempt.Questions))
	for i := range attempt.Questions {
		q := &attempt.Questions[i]
		a := answers[q.ID]
		review = append(review, reviewOf(q, a.Response, a.IsCorrect, a.PointsAwarded))
	}
	attempt.Answers = nil
	return &AttemptReview{Attempt: attempt, Review: review}, nil
}
