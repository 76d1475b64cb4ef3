package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/util"
	"math/rand"
	"strings"
)

const optionLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var markupReplacer = strings.NewReplacer(
	`\displaystyle`, "",
	`\left`, "",
	`\right`, "",
	`\(`, "",
	`\)`, "",
	`\[`, "",
	`\]`, "",
	"$", "",
)

// NormalizeAnswer strips math markup, braces and backslashes, lowercases and
// drops all whitespace so "$\frac{1}{2}$" and "\frac 12" compare equal.
func NormalizeAnswer(s string) string {
	s = markupReplacer.Replace(s)
	s = strings.NewReplacer("{", "", "}", "", `\`, "").Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), "")
}

func letterIndex(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return -1
	}
	return strings.IndexByte(optionLetters, strings.ToUpper(s)[0])
}

// acceptedAnswers returns both spellings of the correct answer: its letter
// and the literal option text, whichever way it was stored.
func acceptedAnswers(correct string, options []string) []string {
	accepted := []string{correct}
	if idx := letterIndex(correct); idx >= 0 && idx < len(options) {
		return append(accepted, options[idx])
	}
	want := NormalizeAnswer(correct)
	for i, opt := range options {
		if i < len(optionLetters) && NormalizeAnswer(opt) == want {
			return append(accepted, string(optionLetters[i]))
		}
	}
	return accepted
}

// IsCorrectAnswer compares a response against the question's correct answer
// after normalization, accepting either the option letter or its text.
func IsCorrectAnswer(q *model.AttemptQuestion, response string) bool {
	got := NormalizeAnswer(response)
	if got == "" {
		return false
	}
	for _, a := range acceptedAnswers(q.CorrectAnswer, q.OptionList()) {
		if NormalizeAnswer(a) == got {
			return true
		}
	}
	return false
}

// ScorePercent is earned over total points as a percentage rounded to two
// decimals. An attempt without points scores zero.
func ScorePercent(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return util.Round2(float64(earned) / float64(total) * 100)
}

type defaultQuestion struct {
	Text    string
	Options []string
	Correct string
}

// defaultBank backs exams whose course and templates cannot supply enough
// questions.
var defaultBank = map[model.Difficulty][]defaultQuestion{
	model.DifficultyEasy: {
		{`¿Cuánto es $2 + 3 \cdot 4$?`, []string{"20", "14", "24", "11"}, "B"},
		{`Resuelve $x + 5 = 12$`, []string{"5", "17", "7", "6"}, "C"},
		{`¿Cuál es la derivada de $x^2$?`, []string{"$2x$", "$x$", "$x^3$", "$2$"}, "A"},
		{`¿Cuánto es $\frac{1}{2} + \frac{1}{4}$?`, []string{`$\frac{3}{4}$`, `$\frac{2}{6}$`, `$\frac{1}{6}$`, "1"}, "A"},
		{`¿Cuál es el valor de $\sqrt{81}$?`, []string{"8", "7", "9", "81"}, "C"},
	},
	model.DifficultyMedium: {
		{`Calcula $\lim_{x \to 2} (3x - 1)$`, []string{"4", "5", "6", "7"}, "B"},
		{`¿Cuál es la derivada de $\sin x$?`, []string{`$-\cos x$`, `$\cos x$`, `$\tan x$`, `$-\sin x$`}, "B"},
		{`Resuelve $x^2 - 9 = 0$ para $x > 0$`, []string{"3", "9", "-3", "0"}, "A"},
		{`¿Cuál es la derivada de $e^{2x}$?`, []string{"$e^{2x}$", "$2e^{x}$", "$2e^{2x}$", "$x e^{2x}$"}, "C"},
		{`Calcula $\int_0^1 2x \, dx$`, []string{"2", "1", `$\frac{1}{2}$`, "0"}, "B"},
	},
	model.DifficultyHard: {
		{`Calcula $\lim_{x \to 0} \frac{\sin x}{x}$`, []string{"0", "1", `$\infty$`, "No existe"}, "B"},
		{`¿Cuál es la derivada de $\ln(x^2 + 1)$?`, []string{`$\frac{1}{x^2+1}$`, `$\frac{2x}{x^2+1}$`, "$2x$", `$\frac{x}{x^2+1}$`}, "B"},
		{`Calcula $\int_1^e \frac{1}{x} \, dx$`, []string{"e", "0", "1", "$e - 1$"}, "C"},
		{`¿Cuál es la segunda derivada de $x^3$?`, []string{"$3x^2$", "$6x$", "6", "$x^2$"}, "B"},
		{`Calcula $\lim_{x \to \infty} \left(1 + \frac{1}{x}\right)^x$`, []string{"1", `$\infty$`, "e", "0"}, "C"},
	},
}

func bankFor(difficulty model.Difficulty) []defaultQuestion {
	if bank, ok := defaultBank[difficulty]; ok {
		return bank
	}
	return defaultBank[model.DifficultyMedium]
}

// QuestionSources holds the candidates for an attempt in draw order. Each
// group is shuffled and used up before the next one is touched.
type QuestionSources struct {
	Questions [][]model.Question
	Templates [][]model.TemplateQuestion
}

func (src QuestionSources) questionCount() int {
	n := 0
	for _, g := range src.Questions {
		n += len(g)
	}
	return n
}

// SelectQuestions builds n attempt questions. Authored questions are sampled
// without replacement group by group; when they run short, curated template
// questions follow, then the default bank cycled until n.
func SelectQuestions(rng *rand.Rand, src QuestionSources, difficulty model.Difficulty, n int) []model.AttemptQuestion {
	if n <= 0 {
		return nil
	}
	selected := make([]model.AttemptQuestion, 0, n)

	for _, group := range src.Questions {
		for _, i := range rng.Perm(len(group)) {
			if len(selected) == n {
				break
			}
			q := group[i]
			id := q.ID
			selected = append(selected, model.AttemptQuestion{
				Source:        model.SourceCourse,
				QuestionID:    &id,
				Text:          q.Text,
				Options:       model.OptionsJSON(q.Options()),
				CorrectAnswer: q.CorrectOption,
				Explanation:   q.Explanation,
				Points:        pointsOrOne(q.Points),
			})
		}
	}

	for _, group := range src.Templates {
		for _, i := range rng.Perm(len(group)) {
			if len(selected) == n {
				break
			}
			t := group[i]
			selected = append(selected, model.AttemptQuestion{
				Source:        model.SourceTemplate,
				Text:          t.Text,
				Options:       t.Options,
				CorrectAnswer: t.CorrectAnswer,
				Explanation:   t.Explanation,
				Points:        pointsOrOne(t.Points),
			})
		}
	}

	bank := bankFor(difficulty)
	for i := 0; len(selected) < n; i++ {
		d := bank[i%len(bank)]
		selected = append(selected, model.AttemptQuestion{
			Source:        model.SourceDefault,
			Text:          d.Text,
			Options:       model.OptionsJSON(d.Options),
			CorrectAnswer: d.Correct,
			Points:        1,
		})
	}

	for i := range selected {
		selected[i].Position = i + 1
	}
	return selected
}

func pointsOrOne(p int) int {
	if p <= 0 {
		return 1
	}
	return p
}
