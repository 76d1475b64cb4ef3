package service

import (
	"estudiapro_backend/internal/model"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, NormalizeAnswer(`$\frac{1}{2}$`), NormalizeAnswer(`\frac 12`))
	assert.Equal(t, "2x", NormalizeAnswer(" $2x$ "))
	assert.Equal(t, "e-1", NormalizeAnswer(`$e - 1$`))
	assert.Equal(t, "(1+x)", NormalizeAnswer(`\left(1 + X\right)`))
	assert.Empty(t, NormalizeAnswer("  $ $ "))
}

func TestIsCorrectAnswerAcceptsLetterOrText(t *testing.T) {
	byLetter := &model.AttemptQuestion{Options: model.OptionsJSON([]string{"2", "4", "6"}), CorrectAnswer: "B"}
	byText := &model.AttemptQuestion{Options: model.OptionsJSON([]string{"$2x$", "$x$"}), CorrectAnswer: "2x"}
	free := &model.AttemptQuestion{CorrectAnswer: `\frac{3}{4}`}

	cases := []struct {
		name     string
		q        *model.AttemptQuestion
		response string
		want     bool
	}{
		{"letter", byLetter, "B", true},
		{"lowercase letter", byLetter, " b ", true},
		{"option text for letter", byLetter, "4", true},
		{"wrong letter", byLetter, "C", false},
		{"empty", byLetter, "", false},
		{"letter for text", byText, "A", true},
		{"markup text", byText, "$2x$", true},
		{"other option", byText, "B", false},
		{"free text", free, "$\\frac 34$", true},
		{"free text wrong", free, "0.5", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCorrectAnswer(tc.q, tc.response))
		})
	}
}

func TestScorePercent(t *testing.T) {
	assert.Equal(t, 60.0, ScorePercent(3, 5))
	assert.Equal(t, 66.67, ScorePercent(2, 3))
	assert.Equal(t, 0.0, ScorePercent(0, 0))
	assert.Equal(t, 100.0, ScorePercent(4, 4))
}

func TestSelectQuestionsFallsBackInOrder(t *testing.T) {
	pool := []model.Question{
		{Text: "p1", OptionA: "a", OptionB: "b", CorrectOption: "A", Points: 1},
		{Text: "p2", OptionA: "a", OptionB: "b", CorrectOption: "B", Points: 2},
	}
	pool[0].ID, pool[1].ID = 1, 2
	templates := []model.TemplateQuestion{{Text: "t1", CorrectAnswer: "x"}}

	got := SelectQuestions(rand.New(rand.NewSource(1)), QuestionSources{
		Questions: [][]model.Question{pool},
		Templates: [][]model.TemplateQuestion{templates},
	}, model.DifficultyHard, 5)

	assert.Len(t, got, 5)
	sources := make([]model.QuestionSource, 0, len(got))
	for i, q := range got {
		assert.Equal(t, i+1, q.Position)
		assert.Positive(t, q.Points)
		sources = append(sources, q.Source)
	}
	assert.Equal(t, []model.QuestionSource{
		model.SourceCourse, model.SourceCourse, model.SourceTemplate, model.SourceDefault, model.SourceDefault,
	}, sources)
	assert.NotEqual(t, *got[0].QuestionID, *got[1].QuestionID)
	assert.Equal(t, bankFor(model.DifficultyHard)[0].Text, got[3].Text)
}

func TestSelectQuestionsSamplesWithoutReplacement(t *testing.T) {
	pool := make([]model.Question, 20)
	for i := range pool {
		pool[i].ID = uint(i + 1)
		pool[i].CorrectOption = "A"
	}

	for seed := int64(0); seed < 20; seed++ {
		got := SelectQuestions(rand.New(rand.NewSource(seed)), QuestionSources{Questions: [][]model.Question{pool}}, model.DifficultyMedium, 8)
		seen := map[uint]bool{}
		for _, q := range got {
			assert.Equal(t, model.SourceCourse, q.Source)
			assert.False(t, seen[*q.QuestionID], "question %d drawn twice", *q.QuestionID)
			seen[*q.QuestionID] = true
		}
		assert.Len(t, seen, 8)
	}
}

func TestSelectQuestionsCyclesDefaultBank(t *testing.T) {
	got := SelectQuestions(rand.New(rand.NewSource(3)), QuestionSources{}, "", 12)
	assert.Len(t, got, 12)
	bank := bankFor(model.DifficultyMedium)
	assert.Equal(t, bank[0].Text, got[len(bank)].Text)
	assert.Nil(t, SelectQuestions(rand.New(rand.NewSource(3)), QuestionSources{}, "", 0))
}

func TestSelectQuestionsDrainsGroupsInOrder(t *testing.T) {
	first := make([]model.Question, 3)
	second := make([]model.Question, 10)
	for i := range first {
		first[i].ID = uint(i + 1)
	}
	for i := range second {
		second[i].ID = uint(100 + i)
	}
	courseTpl := []model.TemplateQuestion{{Text: "c1"}, {Text: "c2"}}
	globalTpl := []model.TemplateQuestion{{Text: "g1"}, {Text: "g2"}, {Text: "g3"}}

	for seed := int64(0); seed < 10; seed++ {
		got := SelectQuestions(rand.New(rand.NewSource(seed)), QuestionSources{
			Questions: [][]model.Question{first, second},
		}, "", 5)
		for _, q := range got[:3] {
			assert.Less(t, *q.QuestionID, uint(100))
		}
		for _, q := range got[3:] {
			assert.GreaterOrEqual(t, *q.QuestionID, uint(100))
		}

		got = SelectQuestions(rand.New(rand.NewSource(seed)), QuestionSources{
			Templates: [][]model.TemplateQuestion{courseTpl, globalTpl},
		}, "", 3)
		assert.ElementsMatch(t, []string{"c1", "c2"}, []string{got[0].Text, got[1].Text})
		assert.Contains(t, []string{"g1", "g2", "g3"}, got[2].Text)
	}
}
