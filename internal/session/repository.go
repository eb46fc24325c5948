package session

// RunRepository abstracts how runs are stored (in-memory, Redis-marked).
type RunRepository interface {
	GetOrCreate(runID string) *Run
	Get(runID string) (*Run, bool)
	Delete(runID string)
}

// RunFactory builds a run for an ID; stores call it on first sight of an ID
// so the wiring (generator, timing options, logger) stays with the caller.
type RunFactory func(runID string) *Run
