package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MinThemeLength is the minimum trimmed length of a theme.
	MinThemeLength = 4
	// MinSourceTextLength is the exclusive lower bound for source text:
	// exactly this many trimmed characters is still rejected.
	MinSourceTextLength = 50

	maxQuestions = 20
)

// SetupValidator checks QuizSetupData before it reaches the generator.
type SetupValidator struct {
	v *validator.Validate
}

func NewSetupValidator() *SetupValidator {
	v := validator.New()
	v.RegisterStructValidation(setupRules, QuizSetupData{})
	return &SetupValidator{v: v}
}

// Validate returns an error wrapping ErrValidation naming the first failed
// field, or nil when the setup is acceptable.
func (sv *SetupValidator) Validate(s QuizSetupData) error {
	err := sv.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		f := fieldErrs[0]
		return fmt.Errorf("%w: field %s failed rule %q", ErrValidation, f.Field(), f.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func setupRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(QuizSetupData)

	for _, f := range []struct {
		value, name string
	}{
		{s.Name, "Name"},
		{s.School, "School"},
		{s.Grade, "Grade"},
		{s.Subject, "Subject"},
	} {
		if strings.TrimSpace(f.value) == "" {
			sl.ReportError(f.value, f.name, f.name, "required", "")
		}
	}

	switch s.GenerationType {
	case TypeTheme:
		if utf8.RuneCountInString(strings.TrimSpace(s.Theme)) < MinThemeLength {
			sl.ReportError(s.Theme, "Theme", "Theme", "min", fmt.Sprint(MinThemeLength))
		}
	case TypeText:
		if utf8.RuneCountInString(strings.TrimSpace(s.SourceText)) <= MinSourceTextLength {
			sl.ReportError(s.SourceText, "SourceText", "SourceText", "gt", fmt.Sprint(MinSourceTextLength))
		}
	default:
		sl.ReportError(s.GenerationType, "GenerationType", "GenerationType", "oneof", "theme text")
	}

	if !s.Difficulty.Valid() {
		sl.ReportError(s.Difficulty, "Difficulty", "Difficulty", "oneof", "easy medium hard")
	}

	if s.NumberOfQuestions < 1 || s.NumberOfQuestions > maxQuestions {
		sl.ReportError(s.NumberOfQuestions, "NumberOfQuestions", "NumberOfQuestions", "range", fmt.Sprintf("1-%d", maxQuestions))
	}
}
