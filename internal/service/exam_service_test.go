package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerAll(start *StartResponse, correct int) *SubmitRequest {
	req := &SubmitRequest{AttemptID: start.AttemptID}
	for i, q := range start.Questions {
		response := "A"
		if i < correct {
			response = "B"
		}
		req.Answers = append(req.Answers, AnswerInput{AttemptQuestionID: q.ID, Response: response, Seconds: 10})
	}
	return req
}

func TestSubmitGradesAttempt(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 5)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 5, 70)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)
	require.Len(t, start.Questions, 5)
	for _, q := range start.Questions {
		assert.Equal(t, model.SourceCourse, q.Source)
		assert.NotZero(t, q.ID)
	}

	result, err := h.exams.Submit(student.ID, exam.ID, answerAll(start, 3))
	require.NoError(t, err)

	assert.Equal(t, 60.0, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Len(t, result.Review, 5)
	assert.Nil(t, result.Progress)

	t.Run("a completed attempt cannot be resubmitted", func(t *testing.T) {
		_, err := h.exams.Submit(student.ID, exam.ID, answerAll(start, 5))
		assert.ErrorIs(t, err, util.ErrAttemptCompleted)
	})

	t.Run("another student cannot submit it", func(t *testing.T) {
		other := h.user(t, model.Student)
		_, err := h.exams.Submit(other.ID, exam.ID, answerAll(start, 5))
		assert.ErrorIs(t, err, util.ErrAttemptNotFound)
	})

	t.Run("review exposes answers after submission", func(t *testing.T) {
		review, err := h.exams.Review(student.ID, start.AttemptID)
		require.NoError(t, err)
		require.Len(t, review.Review, 5)
		correct := 0
		for _, r := range review.Review {
			assert.Equal(t, "B", r.CorrectAnswer)
			if r.Correct {
				correct++
			}
		}
		assert.Equal(t, 3, correct)
	})
}

func TestSubmitRejectsForeignQuestions(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 3)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 3, 70)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)

	req := answerAll(start, 3)
	req.Answers = append(req.Answers, AnswerInput{AttemptQuestionID: 999999, Response: "B"})
	_, err = h.exams.Submit(student.ID, exam.ID, req)
	assert.ErrorIs(t, err, util.ErrUnknownQuestion)

	_, err = h.exams.Submit(student.ID, exam.ID+1, answerAll(start, 3))
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestUnansweredQuestionsCountAsWrong(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 4)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 4, 50)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)

	req := &SubmitRequest{AttemptID: start.AttemptID, Answers: []AnswerInput{
		{AttemptQuestionID: start.Questions[0].ID, Response: "B"},
		{AttemptQuestionID: start.Questions[1].ID, Response: "B"},
	}}
	result, err := h.exams.Submit(student.ID, exam.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Passed)
	assert.Len(t, result.Review, 4)
}

func TestPassingBonusIsAwardedOncePerExam(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	// one unread resource keeps the course from completing
	f := testutil.CreateCourse(t, h.db, creator, 1, 5)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 5, 70)
	_, err := h.progress.Enroll(student.ID, f.Course.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		start, err := h.exams.Start(student.ID, exam.ID)
		require.NoError(t, err)
		result, err := h.exams.Submit(student.ID, exam.ID, answerAll(start, 5))
		require.NoError(t, err)
		assert.True(t, result.Passed)
		require.NotNil(t, result.Progress)
		assert.Equal(t, 40.0, result.Progress.Progress)
	}

	// +20 for the first pass and +20 for the first-exam achievement
	assert.Equal(t, PointsExamPassed+20, h.reload(t, student).Points)

	history, err := h.exams.History(student.ID, &exam.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestStartUsesTemplatesOnlyWhenPoolIsShort(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 2)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 4, 70)

	_, err := h.exams.CreateTemplate(&TemplateRequest{
		CourseID:   &f.Course.ID,
		Title:      "Banco de limites",
		Difficulty: model.DifficultyMedium,
		Questions: []TemplateQuestionRequest{
			{Text: "t1", Options: []string{"1", "2"}, CorrectAnswer: "A"},
			{Text: "t2", Options: []string{"1", "2"}, CorrectAnswer: "2"},
		},
	})
	require.NoError(t, err)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)
	require.Len(t, start.Questions, 4)

	counts := map[model.QuestionSource]int{}
	for _, q := range start.Questions {
		counts[q.Source]++
	}
	assert.Equal(t, 2, counts[model.SourceCourse])
	assert.Equal(t, 2, counts[model.SourceTemplate])
}

func TestConcurrentSubmitsGradeOnce(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 5)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 5, 70)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)

	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.exams.Submit(student.ID, exam.ID, answerAll(start, 5))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, util.ErrAttemptCompleted)
	}
	assert.Equal(t, 1, succeeded)

	var answers int64
	require.NoError(t, h.db.Model(&model.AttemptAnswer{}).Where("attempt_id = ?", start.AttemptID).Count(&answers).Error)
	assert.EqualValues(t, 5, answers)

	stale, err := h.examRepo.FindAttempt(start.AttemptID)
	require.NoError(t, err)
	completed, err := h.examRepo.CompleteAttempt(stale)
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestModuleExamDrawsFromWholeCourse(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 5)

	empty := &model.Module{CourseID: f.Course.ID, Title: "Derivadas", SortOrder: 2}
	require.NoError(t, h.db.Create(empty).Error)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 5, 70)
	require.NoError(t, h.db.Model(exam).Update("module_id", empty.ID).Error)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)
	require.Len(t, start.Questions, 5)
	for _, q := range start.Questions {
		assert.Equal(t, model.SourceCourse, q.Source)
	}
}

func TestModuleExamPrefersItsOwnQuestions(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 6)

	own := &model.Module{CourseID: f.Course.ID, Title: "Integrales", SortOrder: 2}
	require.NoError(t, h.db.Create(own).Error)
	ownIDs := map[uint]bool{}
	for i := 0; i < 2; i++ {
		q := &model.Question{ModuleID: own.ID, Text: "propia", OptionA: "a", OptionB: "b", CorrectOption: "B", Difficulty: model.DifficultyMedium, Points: 1}
		require.NoError(t, h.db.Create(q).Error)
		ownIDs[q.ID] = true
	}
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 3, 70)
	require.NoError(t, h.db.Model(exam).Update("module_id", own.ID).Error)

	start, err := h.exams.Start(student.ID, exam.ID)
	require.NoError(t, err)
	require.Len(t, start.Questions, 3)
	for _, q := range start.Questions[:2] {
		require.NotNil(t, q.QuestionID)
		assert.True(t, ownIDs[*q.QuestionID])
	}
	assert.False(t, ownIDs[*start.Questions[2].QuestionID])
}

func TestCourseTemplatesComeBeforeGlobalOnes(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	f := testutil.CreateCourse(t, h.db, creator, 0, 0)
	exam := testutil.CreateExam(t, h.db, f.Course.ID, 2, 70)

	_, err := h.exams.CreateTemplate(&TemplateRequest{
		Title: "Banco general",
		Questions: []TemplateQuestionRequest{
			{Text: "g1", CorrectAnswer: "x"},
			{Text: "g2", CorrectAnswer: "x"},
			{Text: "g3", CorrectAnswer: "x"},
		},
	})
	require.NoError(t, err)
	_, err = h.exams.CreateTemplate(&TemplateRequest{
		CourseID:  &f.Course.ID,
		Title:     "Banco del curso",
		Questions: []TemplateQuestionRequest{{Text: "c1", CorrectAnswer: "x"}},
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		start, err := h.exams.Start(student.ID, exam.ID)
		require.NoError(t, err)
		require.Len(t, start.Questions, 2)
		assert.Equal(t, "c1", start.Questions[0].Text)
		assert.Contains(t, []string{"g1", "g2", "g3"}, start.Questions[1].Text)
	}
}

func TestCreateTemplateRejectsAnswerOutsideOptions(t *testing.T) {
	h := newHarness(t)
	_, err := h.exams.CreateTemplate(&TemplateRequest{
		Title: "Banco",
		Questions: []TemplateQuestionRequest{
			{Text: "q", Options: []string{"1", "2"}, CorrectAnswer: "7"},
		},
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestGenerateSimulator(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, model.Creator)
	f := testutil.CreateCourse(t, h.db, creator, 0, 0)

	exam, err := h.exams.GenerateSimulator(claimsFor(creator), &SimulatorRequest{CourseID: f.Course.ID, QuestionCount: 8})
	require.NoError(t, err)
	assert.Equal(t, model.ExamSimulator, exam.Type)
	assert.Equal(t, "Simulador: "+f.Course.Title, exam.Title)
	assert.Equal(t, 8, exam.QuestionCount)
	assert.Equal(t, h.cfg.Exams.DefaultPassingScore, exam.PassingScore)

	other := h.user(t, model.Creator)
	_, err = h.exams.GenerateSimulator(claimsFor(other), &SimulatorRequest{CourseID: f.Course.ID})
	assert.ErrorIs(t, err, util.ErrForbidden)
}
