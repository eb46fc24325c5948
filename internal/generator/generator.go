package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Service orchestrates quiz generation: live provider first when one is
// configured, parse/validate, and the mock fallback policy on failure.
// Generated sets are cached briefly per setup fingerprint so a double
// submit does not double-call the completion endpoint.
type Service struct {
	provider Provider // nil means mock-only mode
	mock     Mock
	fallback bool
	cacheTTL time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand
	log      logrus.FieldLogger

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewService(provider Provider, mock Mock, fallback bool, cacheTTL time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		provider: provider,
		mock:     mock,
		fallback: fallback,
		cacheTTL: cacheTTL,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
		cache:    make(map[string]cachedSet),
	}
}

// Generate produces a QuestionSet for a validated setup. With the fallback
// policy enabled (the default) it only fails on context cancellation.
func (s *Service) Generate(ctx context.Context, setup domain.QuizSetupData) (domain.QuestionSet, error) {
	if s.cacheTTL <= 0 {
		return s.generate(ctx, setup)
	}

	key := fingerprint(setup)
	now := s.clock()

	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && entry.expiresAt.After(now) {
		s.mu.RUnlock()
		return entry.set, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		now := s.clock()
		s.mu.RLock()
		if entry, ok := s.cache[key]; ok && entry.expiresAt.After(now) {
			s.mu.RUnlock()
			return entry.set, nil
		}
		s.mu.RUnlock()

		set, err := s.generate(ctx, setup)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		s.mu.Lock()
		s.cache[key] = cachedSet{set: set, expiresAt: now.Add(s.ttlWithJitter())}
		s.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (s *Service) generate(ctx context.Context, setup domain.QuizSetupData) (domain.QuestionSet, error) {
	if s.provider == nil {
		s.log.Info("no completion provider configured, using mock generator")
		return s.mock.Generate(ctx, setup)
	}

	set, err := s.generateLive(ctx, setup)
	if err == nil {
		return set, nil
	}
	if ctx.Err() != nil {
		return domain.QuestionSet{}, ctx.Err()
	}
	if !s.fallback {
		return domain.QuestionSet{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	s.log.WithError(err).Warn("live generation failed, falling back to mock quiz")
	return s.mock.Generate(ctx, setup)
}

func (s *Service) generateLive(ctx context.Context, setup domain.QuizSetupData) (domain.QuestionSet, error) {
	system, user := BuildPrompt(setup)
	s.log.WithFields(logrus.Fields{
		"provider":  s.provider.Name(),
		"mode":      setup.GenerationType,
		"questions": setup.NumberOfQuestions,
	}).Info("generating quiz")

	raw, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	set, err := ParseQuestionSet(raw)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	if len(set.Questions) != setup.NumberOfQuestions {
		return domain.QuestionSet{}, fmt.Errorf("%w: got %d questions, requested %d",
			domain.ErrShape, len(set.Questions), setup.NumberOfQuestions)
	}
	return set, nil
}

// fingerprint keys the result cache; source text is hashed rather than
// embedded because PDF extractions run long.
func fingerprint(s domain.QuizSetupData) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%d\x1f%s\x1f%s",
		s.GenerationType, s.Subject, s.Difficulty, s.NumberOfQuestions, s.Theme, s.SourceText)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) ttlWithJitter() time.Duration {
	if s.cacheTTL <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.cacheTTL) / 10
	return s.cacheTTL + time.Duration(s.rnd.Int63n(jitterMax+1))
}
