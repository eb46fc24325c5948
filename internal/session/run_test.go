package session_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/JesusVicken/brain-school/internal/session"
	"github.com/sirupsen/logrus"
)

type stubGenerator struct {
	set   domain.QuestionSet
	err   error
	delay time.Duration
}

func (g *stubGenerator) Generate(ctx context.Context, _ domain.QuizSetupData) (domain.QuestionSet, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.QuestionSet{}, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.set, g.err
}

func testSetup(n int) domain.QuizSetupData {
	return domain.QuizSetupData{
		Name:              "Ana",
		School:            "Escola Central",
		Grade:             "9º ano EF",
		Subject:           "Ciências",
		GenerationType:    domain.TypeTheme,
		Theme:             "Ciclo da Água",
		Difficulty:        domain.DifficultyMedium,
		NumberOfQuestions: n,
	}
}

func questionSet(n int) domain.QuestionSet {
	questions := make([]domain.RawQuestion, n)
	for i := range questions {
		questions[i] = domain.RawQuestion{
			Question: fmt.Sprintf("Pergunta %d", i+1),
			Options: []string{
				fmt.Sprintf("Correta %d", i+1),
				fmt.Sprintf("Errada B %d", i+1),
				fmt.Sprintf("Errada C %d", i+1),
				fmt.Sprintf("Errada D %d", i+1),
			},
			CorrectAnswer: 0,
		}
	}
	return domain.QuestionSet{Questions: questions}
}

func fastOptions() session.Options {
	return session.Options{
		AdvanceDelay: 20 * time.Millisecond,
		Tick:         10 * time.Millisecond,
	}
}

func newTestRun(t *testing.T, gen session.Generator) *session.Run {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	run := session.NewRun("run-1", gen, fastOptions(), log)
	t.Cleanup(run.Close)
	return run
}

func waitPhase(t *testing.T, run *session.Run, phase session.Phase) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := run.Snapshot()
		if snap.Phase == phase {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("run never reached phase %q, stuck in %q", phase, run.Snapshot().Phase)
	return session.Snapshot{}
}

// answerCorrectly finds the post-shuffle position of the originally-correct
// value and selects it.
func answerCorrectly(t *testing.T, run *session.Run, raw domain.RawQuestion) session.AnswerFeedback {
	t.Helper()
	snap := run.Snapshot()
	index := -1
	for i, opt := range snap.Options {
		if opt == raw.Options[0] {
			index = i
			break
		}
	}
	if index < 0 {
		t.Fatalf("correct value %q not among options %v", raw.Options[0], snap.Options)
	}
	fb, ok := run.SelectAnswer(index)
	if !ok {
		t.Fatalf("selection rejected for index %d", index)
	}
	if !fb.Correct {
		t.Fatalf("expected index %d to be correct, feedback %+v", index, fb)
	}
	return fb
}

func waitQuestion(t *testing.T, run *session.Run, index int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := run.Snapshot()
		if snap.Phase == session.PhaseInProgress && snap.QuestionIndex == index && snap.SelectedAnswer == nil {
			return
		}
		if snap.Phase == session.PhaseShowingResult {
			t.Fatalf("run finished before reaching question %d", index)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("never advanced to question %d", index)
}

func TestPerfectRunShowsExcellentTier(t *testing.T) {
	set := questionSet(3)
	run := newTestRun(t, &stubGenerator{set: set})

	if err := run.Begin(context.Background(), testSetup(3)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)

	for i, raw := range set.Questions {
		waitQuestion(t, run, i)
		answerCorrectly(t, run, raw)
	}

	snap := waitPhase(t, run, session.PhaseShowingResult)
	if snap.Results == nil {
		t.Fatalf("expected results, got none")
	}
	if snap.Results.Score != 3 || snap.Results.Total != 3 {
		t.Fatalf("expected 3/3, got %d/%d", snap.Results.Score, snap.Results.Total)
	}
	if snap.Results.Percentage != 100 || snap.Results.Tier != domain.TierExcellent {
		t.Fatalf("expected 100%% excellent, got %d%% %q", snap.Results.Percentage, snap.Results.Tier)
	}
}

func TestScoreCountsOnlyCorrectSelections(t *testing.T) {
	set := questionSet(2)
	run := newTestRun(t, &stubGenerator{set: set})

	if err := run.Begin(context.Background(), testSetup(2)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)

	// wrong answer on question 1: pick any index that does not hold the
	// originally-correct value
	snap := run.Snapshot()
	wrong := -1
	for i, opt := range snap.Options {
		if opt != set.Questions[0].Options[0] {
			wrong = i
			break
		}
	}
	fb, ok := run.SelectAnswer(wrong)
	if !ok || fb.Correct {
		t.Fatalf("expected accepted wrong answer, got ok=%v fb=%+v", ok, fb)
	}

	waitQuestion(t, run, 1)
	answerCorrectly(t, run, set.Questions[1])

	final := waitPhase(t, run, session.PhaseShowingResult)
	if final.Results.Score != 1 {
		t.Fatalf("expected score 1, got %d", final.Results.Score)
	}
	if final.Results.Percentage != 50 || final.Results.Tier != domain.TierKeepStudying {
		t.Fatalf("expected 50%% keepStudying, got %d%% %q", final.Results.Percentage, final.Results.Tier)
	}
}

func TestSelectionLocksPerQuestion(t *testing.T) {
	set := questionSet(1)
	run := newTestRun(t, &stubGenerator{set: set})

	if err := run.Begin(context.Background(), testSetup(1)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)

	if _, ok := run.SelectAnswer(0); !ok {
		t.Fatalf("first selection should be accepted")
	}
	if _, ok := run.SelectAnswer(1); ok {
		t.Fatalf("second selection on the same question must be a no-op")
	}
}

func TestOutOfRangeSelectionIsNoOp(t *testing.T) {
	run := newTestRun(t, &stubGenerator{set: questionSet(1)})

	if _, ok := run.SelectAnswer(0); ok {
		t.Fatalf("selection before the quiz starts must be a no-op")
	}

	if err := run.Begin(context.Background(), testSetup(1)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)

	if _, ok := run.SelectAnswer(-1); ok {
		t.Fatalf("negative index must be a no-op")
	}
	if _, ok := run.SelectAnswer(4); ok {
		t.Fatalf("index past the option list must be a no-op")
	}
}

func TestRestartDiscardsRunAndAllowsFreshStart(t *testing.T) {
	set := questionSet(2)
	run := newTestRun(t, &stubGenerator{set: set})

	if err := run.Begin(context.Background(), testSetup(2)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)
	answerCorrectly(t, run, set.Questions[0])

	run.Restart()
	snap := run.Snapshot()
	if snap.Phase != session.PhaseSetup || snap.Score != 0 || snap.TotalQuestions != 0 {
		t.Fatalf("expected clean setup phase after restart, got %+v", snap)
	}

	if err := run.Begin(context.Background(), testSetup(2)); err != nil {
		t.Fatalf("re-begin: %v", err)
	}
	snap = waitPhase(t, run, session.PhaseInProgress)
	if snap.Score != 0 || snap.QuestionIndex != 0 {
		t.Fatalf("expected fresh run, got score=%d index=%d", snap.Score, snap.QuestionIndex)
	}
}

func TestStaleGenerationResultIsDiscarded(t *testing.T) {
	run := newTestRun(t, &stubGenerator{set: questionSet(2), delay: 60 * time.Millisecond})

	if err := run.Begin(context.Background(), testSetup(2)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	run.Restart()

	time.Sleep(150 * time.Millisecond)
	if snap := run.Snapshot(); snap.Phase != session.PhaseSetup {
		t.Fatalf("stale generation result was applied: phase %q", snap.Phase)
	}
}

func TestBeginWhileLoadingIsRejected(t *testing.T) {
	run := newTestRun(t, &stubGenerator{set: questionSet(1), delay: 80 * time.Millisecond})

	if err := run.Begin(context.Background(), testSetup(1)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := run.Begin(context.Background(), testSetup(1)); !errors.Is(err, domain.ErrRunBusy) {
		t.Fatalf("expected ErrRunBusy, got %v", err)
	}
}

func TestGenerationFailureEntersErrorPhase(t *testing.T) {
	run := newTestRun(t, &stubGenerator{err: fmt.Errorf("%w: provider down", domain.ErrGeneration)})

	if err := run.Begin(context.Background(), testSetup(2)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	snap := waitPhase(t, run, session.PhaseError)
	if snap.Error == "" {
		t.Fatalf("expected a student-facing error message")
	}

	run.Restart()
	if snap := run.Snapshot(); snap.Phase != session.PhaseSetup {
		t.Fatalf("restart from error must return to setup, got %q", snap.Phase)
	}
}

func TestTimerCountsWhileUnansweredAndPausesAfterLock(t *testing.T) {
	run := newTestRun(t, &stubGenerator{set: questionSet(1)})

	if err := run.Begin(context.Background(), testSetup(1)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	waitPhase(t, run, session.PhaseInProgress)

	time.Sleep(60 * time.Millisecond)
	before := run.Snapshot().SecondsOnQuestion
	if before < 2 {
		t.Fatalf("expected ticker to advance, got %d", before)
	}

	if _, ok := run.SelectAnswer(0); !ok {
		t.Fatalf("selection rejected")
	}
	at := run.Snapshot().SecondsOnQuestion
	time.Sleep(40 * time.Millisecond)
	after := run.Snapshot().SecondsOnQuestion
	if after > at {
		t.Fatalf("ticker kept counting after answer lock: %d -> %d", at, after)
	}
}

func TestSubscribeSeesTransitions(t *testing.T) {
	run := newTestRun(t, &stubGenerator{set: questionSet(1)})
	updates, cancel := run.Subscribe()
	defer cancel()

	first := <-updates
	if first.Phase != session.PhaseSetup {
		t.Fatalf("expected initial setup snapshot, got %q", first.Phase)
	}

	if err := run.Begin(context.Background(), testSetup(1)); err != nil {
		t.Fatalf("begin: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				t.Fatalf("updates closed before quiz started")
			}
			if snap.Phase == session.PhaseInProgress {
				return
			}
		case <-deadline:
			t.Fatalf("no inProgress snapshot observed")
		}
	}
}
