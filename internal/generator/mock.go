package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/JesusVicken/brain-school/internal/domain"
)

// Mock is the placeholder generator used whenever no credential is
// configured or the live path fails. It produces deterministic-shape,
// clearly-labeled questions and simulates network latency so the loading
// state is exercised the same way in both paths. It never fails; only
// context cancellation aborts it.
type Mock struct {
	Delay time.Duration
}

func (m Mock) Generate(ctx context.Context, setup domain.QuizSetupData) (domain.QuestionSet, error) {
	delay := m.Delay
	if delay < 0 {
		delay = 0
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return domain.QuestionSet{}, ctx.Err()
	case <-t.C:
	}

	topic := setup.Topic()
	questions := make([]domain.RawQuestion, setup.NumberOfQuestions)
	for i := range questions {
		n := i + 1
		questions[i] = domain.RawQuestion{
			Question: fmt.Sprintf("[Simulado] Questão %d sobre %s em %s (%s): qual é a característica principal?",
				n, topic, setup.Subject, setup.Difficulty.Label()),
			Options: []string{
				fmt.Sprintf("Alternativa A — característica principal %d", n),
				fmt.Sprintf("Alternativa B — aspecto secundário %d", n),
				fmt.Sprintf("Alternativa C — elemento complementar %d", n),
				fmt.Sprintf("Alternativa D — fator irrelevante %d", n),
			},
			CorrectAnswer: 0,
		}
	}
	return domain.QuestionSet{Questions: questions}, nil
}
