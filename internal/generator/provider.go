package generator

import "context"

// Provider sends a prompt to a hosted completion endpoint and returns the
// model's raw text reply. Implementations do not retry and carry no timeout
// beyond the transport default.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}
