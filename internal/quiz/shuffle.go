package quiz

import (
	"math/rand"

	"github.com/JesusVicken/brain-school/internal/domain"
)

// Shuffle randomizes a question's answer order without corrupting
// correctness: the value sitting at CorrectAnswer before the shuffle is the
// value marked correct after it. Fisher–Yates over a copy; the input is not
// mutated. When options repeat the first value match wins, which is why the
// parser enforces option uniqueness upstream.
func Shuffle(q domain.RawQuestion, rnd *rand.Rand) domain.PlayableQuestion {
	options := append([]string(nil), q.Options...)

	correct := ""
	if q.CorrectAnswer >= 0 && q.CorrectAnswer < len(options) {
		correct = options[q.CorrectAnswer]
	}

	for i := len(options) - 1; i >= 1; i-- {
		j := rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	newCorrect := 0
	for i, opt := range options {
		if opt == correct {
			newCorrect = i
			break
		}
	}

	return domain.PlayableQuestion{
		Question:      q.Question,
		Options:       options,
		CorrectAnswer: newCorrect,
	}
}

// ShuffleAll applies Shuffle independently to every question in a set.
func ShuffleAll(set domain.QuestionSet, rnd *rand.Rand) []domain.PlayableQuestion {
	playable := make([]domain.PlayableQuestion, len(set.Questions))
	for i, q := range set.Questions {
		playable[i] = Shuffle(q, rnd)
	}
	return playable
}
