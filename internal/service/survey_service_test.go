package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/util"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSurvey(t *testing.T, h *harness, owner *model.User, anonymous bool) *model.Survey {
	t.Helper()
	survey, err := h.surveys.Create(claimsFor(owner), &SurveyRequest{
		Title:     "Satisfaccion del curso",
		Anonymous: anonymous,
		Questions: []SurveyQuestionRequest{
			{Text: "Claridad", Type: model.SurveyScale, Required: true},
			{Text: "Formato favorito", Type: model.SurveyMultipleChoice, Options: []string{"video", "lectura"}},
			{Text: "Comentarios", Type: model.SurveyText},
		},
	})
	require.NoError(t, err)
	require.Len(t, survey.Questions, 3)
	return survey
}

func answers(s *model.Survey, scale int, choice, text string) *SurveyResponseRequest {
	return &SurveyResponseRequest{Answers: []SurveyAnswer{
		{QuestionID: s.Questions[0].ID, Value: strconv.Itoa(scale)},
		{QuestionID: s.Questions[1].ID, Value: choice},
		{QuestionID: s.Questions[2].ID, Value: text},
	}}
}

func TestSurveyRespondOnce(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	survey := createSurvey(t, h, owner, false)

	available, err := h.surveys.Available(student.ID)
	require.NoError(t, err)
	assert.Len(t, available, 1)

	resp, err := h.surveys.Respond(student.ID, survey.ID, answers(survey, 4, "video", "bien"))
	require.NoError(t, err)
	require.NotNil(t, resp.UserID)
	assert.Equal(t, student.ID, *resp.UserID)

	_, err = h.surveys.Respond(student.ID, survey.ID, answers(survey, 5, "lectura", ""))
	assert.ErrorIs(t, err, util.ErrAlreadyResponded)

	available, err = h.surveys.Available(student.ID)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestSurveyAnonymousAcceptsRepeats(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	survey := createSurvey(t, h, owner, true)

	for i := 0; i < 2; i++ {
		resp, err := h.surveys.Respond(student.ID, survey.ID, answers(survey, 3, "lectura", ""))
		require.NoError(t, err)
		assert.Nil(t, resp.UserID)
	}

	results, err := h.surveys.Results(claimsFor(owner), survey.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, results.Responses)
}

func TestSurveyAnswerValidation(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, model.Creator)
	student := h.user(t, model.Student)
	survey := createSurvey(t, h, owner, false)

	cases := map[string]*SurveyResponseRequest{
		"scale out of range":  answers(survey, 9, "video", ""),
		"unknown option":      answers(survey, 3, "podcast", ""),
		"missing required":    {Answers: []SurveyAnswer{{QuestionID: survey.Questions[2].ID, Value: "hola"}}},
		"foreign question id": {Answers: []SurveyAnswer{{QuestionID: 999999, Value: "1"}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.surveys.Respond(student.ID, survey.ID, req)
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}
}

func TestSurveyClosedAndResults(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, model.Creator)
	survey := createSurvey(t, h, owner, false)

	for i, choice := range []string{"video", "video", "lectura"} {
		student := h.user(t, model.Student)
		_, err := h.surveys.Respond(student.ID, survey.ID, answers(survey, i+3, choice, "texto"))
		require.NoError(t, err)
	}

	results, err := h.surveys.Results(claimsFor(owner), survey.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, results.Responses)
	require.Len(t, results.Questions, 3)

	counts := map[string]int64{}
	for _, vc := range results.Questions[1].Distribution {
		counts[vc.Value] = vc.Count
	}
	assert.Equal(t, map[string]int64{"video": 2, "lectura": 1}, counts)
	assert.Len(t, results.Questions[2].Answers, 3)

	_, err = h.surveys.Results(claimsFor(h.user(t, model.Creator)), survey.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	h.surveys.Now = fixedClock(time.Now().Add(48 * time.Hour))
	closes := time.Now().Add(24 * time.Hour)
	closing, err := h.surveys.Create(claimsFor(owner), &SurveyRequest{
		Title:     "Cierra pronto",
		ClosesAt:  &closes,
		Questions: []SurveyQuestionRequest{{Text: "Algo", Type: model.SurveyText}},
	})
	require.NoError(t, err)
	_, err = h.surveys.Respond(h.user(t, model.Student).ID, closing.ID, &SurveyResponseRequest{})
	assert.ErrorIs(t, err, util.ErrSurveyClosed)
}

func TestSurveyCreateRules(t *testing.T) {
	h := newHarness(t)
	_, err := h.surveys.Create(claimsFor(h.user(t, model.Student)), &SurveyRequest{
		Title:     "No",
		Questions: []SurveyQuestionRequest{{Text: "x", Type: model.SurveyText}},
	})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = h.surveys.Create(claimsFor(h.user(t, model.Creator)), &SurveyRequest{
		Title:     "Una opcion",
		Questions: []SurveyQuestionRequest{{Text: "x", Type: model.SurveyMultipleChoice, Options: []string{"a"}}},
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}
