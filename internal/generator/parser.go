package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/JesusVicken/brain-school/internal/domain"
)

// OptionsPerQuestion is fixed by the generation contract.
const OptionsPerQuestion = 4

// ParseQuestionSet extracts and validates a QuestionSet from a raw
// completion reply. Models often wrap the JSON in prose or markdown fences;
// the object is taken greedily from the first '{' to the last '}'.
func ParseQuestionSet(raw string) (domain.QuestionSet, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.Trim(clean, "`")

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return domain.QuestionSet{}, fmt.Errorf("%w: no object delimiters in %d bytes of output", domain.ErrParse, len(raw))
	}

	var set domain.QuestionSet
	if err := json.Unmarshal([]byte(clean[start:end+1]), &set); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.QuestionSet{}, fmt.Errorf("%w: %v", domain.ErrShape, err)
		}
		return domain.QuestionSet{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	if err := validateSet(set); err != nil {
		return domain.QuestionSet{}, err
	}
	return set, nil
}

// validateSet enforces the provider contract on every question: non-empty
// text, exactly four pairwise-distinct non-empty options, and correctAnswer
// pinned to 0. Duplicate options are rejected so correctness recovery by
// value after shuffling is unambiguous.
func validateSet(set domain.QuestionSet) error {
	if len(set.Questions) == 0 {
		return fmt.Errorf("%w: missing or empty questions array", domain.ErrShape)
	}
	for i, q := range set.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrShape, i)
		}
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, want %d", domain.ErrShape, i, len(q.Options), OptionsPerQuestion)
		}
		seen := make(map[string]struct{}, OptionsPerQuestion)
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: question %d has an empty option", domain.ErrShape, i)
			}
			if _, dup := seen[opt]; dup {
				return fmt.Errorf("%w: question %d repeats option %q", domain.ErrShape, i, opt)
			}
			seen[opt] = struct{}{}
		}
		if q.CorrectAnswer != 0 {
			return fmt.Errorf("%w: question %d has correctAnswer %d, contract requires 0", domain.ErrShape, i, q.CorrectAnswer)
		}
	}
	return nil
}
