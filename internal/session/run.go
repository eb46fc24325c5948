package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/JesusVicken/brain-school/internal/quiz"
	"github.com/sirupsen/logrus"
)

// Phase is the run's position in its lifecycle.
type Phase string

const (
	// PhaseSetup is the initial phase and the one restart returns to.
	PhaseSetup         Phase = "setup"
	PhaseLoading       Phase = "loading"
	PhaseInProgress    Phase = "inProgress"
	PhaseShowingResult Phase = "showingResult"
	// PhaseError is terminal until restart; reachable only when the mock
	// fallback is disabled and generation fails outright.
	PhaseError Phase = "error"
)

// Generator produces a question set for a validated setup.
type Generator interface {
	Generate(ctx context.Context, setup domain.QuizSetupData) (domain.QuestionSet, error)
}

// Options tunes run timing. Zero values take the production defaults; tests
// shrink them.
type Options struct {
	// AdvanceDelay is how long a locked answer stays on screen before the
	// run moves to the next question.
	AdvanceDelay time.Duration
	// Tick is the per-question elapsed-seconds resolution.
	Tick time.Duration
	// Clock is a test seam for timestamps.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = 1500 * time.Millisecond
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Snapshot is the immutable view pushed to subscribers. It never carries
// the current question's correct index; that is revealed per answer through
// AnswerFeedback.
type Snapshot struct {
	RunID             string          `json:"runId"`
	Phase             Phase           `json:"phase"`
	Student           domain.Student  `json:"student"`
	QuestionIndex     int             `json:"questionIndex"`
	TotalQuestions    int             `json:"totalQuestions"`
	Question          string          `json:"question,omitempty"`
	Options           []string        `json:"options,omitempty"`
	SelectedAnswer    *int            `json:"selectedAnswer,omitempty"`
	Score             int             `json:"score"`
	SecondsOnQuestion int             `json:"secondsOnQuestion"`
	Results           *domain.Results `json:"results,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// AnswerFeedback is returned once per question when a selection locks in.
type AnswerFeedback struct {
	Index        int  `json:"index"`
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correctIndex"`
	Score        int  `json:"score"`
}

// Run drives one student's quiz from setup through results. All state is
// mutated under the run's own mutex; timers and the generation goroutine
// re-check the epoch counter before touching anything, so a restart or
// teardown deterministically orphans them.
type Run struct {
	id   string
	gen  Generator
	opts Options
	log  logrus.FieldLogger

	mu          sync.RWMutex
	phase       Phase
	setup       domain.QuizSetupData
	student     domain.Student
	questions   []domain.PlayableQuestion
	current     int
	score       int
	selected    int // -1 until an answer locks
	seconds     int
	startedAt   time.Time
	results     *domain.Results
	lastError   string
	epoch       uint64
	closed      bool
	tickStop    chan struct{}
	advance     *time.Timer
	rnd         *rand.Rand
	subscribers map[chan Snapshot]struct{}
}

func NewRun(id string, gen Generator, opts Options, log logrus.FieldLogger) *Run {
	return &Run{
		id:          id,
		gen:         gen,
		opts:        opts.withDefaults(),
		log:         log.WithField("run", id),
		phase:       PhaseSetup,
		selected:    -1,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

func (r *Run) ID() string { return r.id }

// Begin accepts a validated setup and starts generation. Exactly one
// generation call is in flight per submission: Begin during Loading returns
// ErrRunBusy. From any other phase it implicitly restarts, which is what
// makes a re-submit after results or an error produce a fresh run.
func (r *Run) Begin(ctx context.Context, setup domain.QuizSetupData) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return domain.ErrRunClosed
	}
	if r.phase == PhaseLoading {
		r.mu.Unlock()
		return domain.ErrRunBusy
	}
	r.resetLocked()
	r.setup = setup
	r.student = domain.Student{
		Name:    setup.Name,
		School:  setup.School,
		Grade:   setup.Grade,
		Subject: setup.Subject,
		Theme:   setup.Topic(),
	}
	r.phase = PhaseLoading
	r.startedAt = r.opts.Clock()
	epoch := r.epoch
	r.broadcastLocked()
	r.mu.Unlock()

	go r.generate(ctx, epoch, setup)
	return nil
}

// generate resolves off the run's lock and applies the result only if the
// run's epoch still matches the one captured at call time. A restart during
// loading does not abort the call, it just discards interest in the result.
func (r *Run) generate(ctx context.Context, epoch uint64, setup domain.QuizSetupData) {
	set, err := r.gen.Generate(ctx, setup)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		r.log.Debug("discarding stale generation result")
		return
	}
	if err != nil || len(set.Questions) == 0 {
		if err != nil {
			r.log.WithError(err).Error("quiz generation failed")
		}
		r.phase = PhaseError
		r.lastError = "Não foi possível gerar o quiz. Tente novamente."
		r.broadcastLocked()
		return
	}

	r.questions = quiz.ShuffleAll(set, r.rnd)
	r.current = 0
	r.score = 0
	r.selected = -1
	r.seconds = 0
	r.phase = PhaseInProgress
	r.startTickerLocked(epoch)
	r.broadcastLocked()
}

// SelectAnswer locks the student's choice for the current question. A
// second call for the same question, an out-of-range index, or a call in
// the wrong phase is an idempotent no-op (ok=false), not an error.
func (r *Run) SelectAnswer(index int) (AnswerFeedback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseInProgress || r.selected >= 0 {
		return AnswerFeedback{}, false
	}
	q := r.questions[r.current]
	if index < 0 || index >= len(q.Options) {
		return AnswerFeedback{}, false
	}

	r.selected = index
	correct := index == q.CorrectAnswer
	if correct {
		r.score++
	}

	epoch := r.epoch
	r.advance = time.AfterFunc(r.opts.AdvanceDelay, func() {
		r.advanceQuestion(epoch)
	})

	fb := AnswerFeedback{
		Index:        index,
		Correct:      correct,
		CorrectIndex: q.CorrectAnswer,
		Score:        r.score,
	}
	r.broadcastLocked()
	return fb, true
}

func (r *Run) advanceQuestion(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch || r.phase != PhaseInProgress {
		return
	}
	if r.current+1 < len(r.questions) {
		r.current++
		r.selected = -1
		r.seconds = 0
	} else {
		r.finishLocked()
	}
	r.broadcastLocked()
}

// finishLocked computes results exactly once; total time is wall clock from
// Begin, not a sum of per-question counters.
func (r *Run) finishLocked() {
	r.phase = PhaseShowingResult
	r.stopTickerLocked()
	res := domain.ResultsFor(r.score, len(r.questions), r.opts.Clock().Sub(r.startedAt))
	r.results = &res
}

// Restart discards the run's quiz and returns it to the setup phase.
// Callable from any phase; pending timers and the in-flight generation
// result are orphaned by the epoch bump.
func (r *Run) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.resetLocked()
	r.broadcastLocked()
}

func (r *Run) resetLocked() {
	r.epoch++
	r.stopTickerLocked()
	if r.advance != nil {
		r.advance.Stop()
		r.advance = nil
	}
	r.phase = PhaseSetup
	r.questions = nil
	r.current = 0
	r.score = 0
	r.selected = -1
	r.seconds = 0
	r.results = nil
	r.lastError = ""
}

// Close tears the run down for good: timers cancelled, subscribers closed.
func (r *Run) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.resetLocked()
	r.closed = true
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
}

// startTickerLocked runs the per-question seconds counter. The counter only
// moves while the run is in progress and no answer is locked for the
// current question; it is torn down with the epoch.
func (r *Run) startTickerLocked(epoch uint64) {
	stop := make(chan struct{})
	r.tickStop = stop
	tick := r.opts.Tick
	go func() {
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				r.tick(epoch)
			}
		}
	}()
}

func (r *Run) tick(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch || r.phase != PhaseInProgress || r.selected >= 0 {
		return
	}
	r.seconds++
	r.broadcastLocked()
}

func (r *Run) stopTickerLocked() {
	if r.tickStop != nil {
		close(r.tickStop)
		r.tickStop = nil
	}
}

// Subscribe returns a channel receiving a snapshot now and on every
// transition. The caller must invoke cancel to avoid leaks.
func (r *Run) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subscribers[ch] = struct{}{}
	initial := r.snapshotLocked()
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the current view without subscribing.
func (r *Run) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Run) broadcastLocked() {
	snap := r.snapshotLocked()
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// a slow client only ever misses intermediate snapshots
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (r *Run) snapshotLocked() Snapshot {
	snap := Snapshot{
		RunID:             r.id,
		Phase:             r.phase,
		Student:           r.student,
		QuestionIndex:     r.current,
		TotalQuestions:    len(r.questions),
		Score:             r.score,
		SecondsOnQuestion: r.seconds,
		Results:           r.results,
		Error:             r.lastError,
	}
	if r.phase == PhaseInProgress && r.current < len(r.questions) {
		q := r.questions[r.current]
		snap.Question = q.Question
		snap.Options = append([]string(nil), q.Options...)
		if r.selected >= 0 {
			sel := r.selected
			snap.SelectedAnswer = &sel
		}
	}
	return snap
}
