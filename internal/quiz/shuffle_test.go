package quiz

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawQuestion() domain.RawQuestion {
	return domain.RawQuestion{
		Question:      "Qual fase do ciclo da água forma as nuvens?",
		Options:       []string{"Condensação", "Evaporação", "Precipitação", "Infiltração"},
		CorrectAnswer: 0,
	}
}

func TestShufflePreservesCorrectValueForEverySeed(t *testing.T) {
	q := rawQuestion()
	for seed := int64(0); seed < 500; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		playable := Shuffle(q, rnd)

		require.Len(t, playable.Options, len(q.Options), "seed %d", seed)
		assert.Equal(t, q.Options[0], playable.Options[playable.CorrectAnswer], "seed %d", seed)

		// output is a permutation of the input
		got := append([]string(nil), playable.Options...)
		want := append([]string(nil), q.Options...)
		sort.Strings(got)
		sort.Strings(want)
		assert.Equal(t, want, got, "seed %d", seed)
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	q := rawQuestion()
	_ = Shuffle(q, rand.New(rand.NewSource(7)))
	assert.Equal(t, rawQuestion(), q)
}

func TestShuffleTwiceStaysInternallyConsistent(t *testing.T) {
	q := rawQuestion()
	first := Shuffle(q, rand.New(rand.NewSource(1)))
	second := Shuffle(q, rand.New(rand.NewSource(2)))

	assert.Equal(t, q.Options[0], first.Options[first.CorrectAnswer])
	assert.Equal(t, q.Options[0], second.Options[second.CorrectAnswer])
}

func TestShuffleAllKeepsOrderAndLength(t *testing.T) {
	set := domain.QuestionSet{Questions: []domain.RawQuestion{
		rawQuestion(),
		{
			Question:      "Qual é o maior planeta do Sistema Solar?",
			Options:       []string{"Júpiter", "Saturno", "Netuno", "Terra"},
			CorrectAnswer: 0,
		},
	}}

	playable := ShuffleAll(set, rand.New(rand.NewSource(42)))
	require.Len(t, playable, 2)
	for i, p := range playable {
		assert.Equal(t, set.Questions[i].Question, p.Question)
		assert.Equal(t, set.Questions[i].Options[0], p.Options[p.CorrectAnswer])
	}
}
