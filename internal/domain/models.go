package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// GenerationType selects where the quiz content comes from: a free-form
// theme, or a pasted/extracted source text.
type GenerationType string

const (
	TypeTheme GenerationType = "theme"
	TypeText  GenerationType = "text"
)

// Difficulty is one of three ordered levels. Both Portuguese and English
// labels are accepted on input and normalize to the canonical values here.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes a user-facing label into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "fácil", "facil":
		return DifficultyEasy, true
	case "medium", "médio", "medio":
		return DifficultyMedium, true
	case "hard", "difícil", "dificil":
		return DifficultyHard, true
	}
	return "", false
}

// UnmarshalJSON accepts any supported label; unknown labels are kept as-is
// so the setup validator reports them instead of a decode error.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, ok := ParseDifficulty(raw); ok {
		*d = parsed
	} else {
		*d = Difficulty(raw)
	}
	return nil
}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Label returns the Portuguese label used in prompts and mock questions.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Fácil"
	case DifficultyHard:
		return "Difícil"
	default:
		return "Médio"
	}
}

// QuizSetupData is the student's submitted form, immutable once accepted.
type QuizSetupData struct {
	Name              string         `json:"name"`
	School            string         `json:"school"`
	Grade             string         `json:"grade"`
	Subject           string         `json:"subject"`
	GenerationType    GenerationType `json:"generationType"`
	Theme             string         `json:"theme"`
	SourceText        string         `json:"sourceText"`
	Difficulty        Difficulty     `json:"difficulty"`
	NumberOfQuestions int            `json:"numberOfQuestions"`
}

// Topic returns the subject matter handed to the generator: the theme, or a
// stand-in label when the quiz is built from a source text.
func (s QuizSetupData) Topic() string {
	if s.GenerationType == TypeText {
		return "o texto enviado"
	}
	return s.Theme
}

// Student is the summary carried through to the results screen.
type Student struct {
	Name    string `json:"name"`
	School  string `json:"school"`
	Grade   string `json:"grade"`
	Subject string `json:"subject"`
	Theme   string `json:"theme,omitempty"`
}

// RawQuestion is a question as returned by the generation provider. By
// provider contract Options[0] is the correct answer and CorrectAnswer is 0.
type RawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// QuestionSet is the wire shape of a generated quiz.
type QuestionSet struct {
	Questions []RawQuestion `json:"questions"`
}

// PlayableQuestion is a RawQuestion after answer randomization: Options is a
// permutation of the original four strings and CorrectAnswer points at the
// new position of the originally-correct value.
type PlayableQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Tier bands the final percentage.
type Tier string

const (
	TierExcellent    Tier = "excellent"
	TierGood         Tier = "good"
	TierKeepStudying Tier = "keepStudying"
)

// Message returns the student-facing tier message.
func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excelente! Você dominou o conteúdo!"
	case TierGood:
		return "Bom Trabalho! Continue assim!"
	default:
		return "Continue Estudando! Você vai conseguir!"
	}
}

// Results is the final screen, computed once when a run finishes.
type Results struct {
	Score               int    `json:"score"`
	Total               int    `json:"total"`
	Percentage          int    `json:"percentage"`
	Tier                Tier   `json:"tier"`
	Message             string `json:"message"`
	TotalElapsedSeconds int    `json:"totalElapsedSeconds"`
}

// ResultsFor bands the score: >=80% excellent, >=60% good, otherwise keep
// studying. Elapsed is wall-clock time for the whole run, not the sum of
// per-question timers.
func ResultsFor(score, total int, elapsed time.Duration) Results {
	pct := 0.0
	if total > 0 {
		pct = float64(score) / float64(total) * 100
	}
	tier := TierKeepStudying
	switch {
	case pct >= 80:
		tier = TierExcellent
	case pct >= 60:
		tier = TierGood
	}
	return Results{
		Score:               score,
		Total:               total,
		Percentage:          int(math.Round(pct)),
		Tier:                tier,
		Message:             tier.Message(),
		TotalElapsedSeconds: int(math.Round(elapsed.Seconds())),
	}
}
