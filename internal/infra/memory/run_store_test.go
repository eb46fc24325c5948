package memory

import (
	"io"
	"testing"

	"github.com/JesusVicken/brain-school/internal/session"
	"github.com/sirupsen/logrus"
)

func testFactory() (session.RunFactory, *int) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	calls := 0
	factory := func(runID string) *session.Run {
		calls++
		return session.NewRun(runID, nil, session.Options{}, log)
	}
	return factory, &calls
}

func TestRunStoreLifecycle(t *testing.T) {
	factory, calls := testFactory()
	store := NewRunStore(factory)

	run := store.GetOrCreate("run-1")
	if run == nil {
		t.Fatalf("expected run")
	}
	if again := store.GetOrCreate("run-1"); again != run {
		t.Fatalf("expected the same run for the same ID")
	}
	if *calls != 1 {
		t.Fatalf("expected factory once, got %d", *calls)
	}

	if _, ok := store.Get("run-1"); !ok {
		t.Fatalf("expected run present")
	}

	store.Delete("run-1")
	if _, ok := store.Get("run-1"); ok {
		t.Fatalf("expected run removed")
	}
}
