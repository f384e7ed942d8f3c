// Package llm – policy.go is the retry-once-then-degrade policy for
// generation calls. Callers get a tagged outcome instead of a raw error, so
// every call site degrades the same way: one retry, then a user-visible
// apology, never a propagated failure.
package llm

import (
	"context"
	"errors"
	"net"
)

// Status tags the outcome of a generation attempt.
type Status string

const (
	// StatusOK means a reply was produced.
	StatusOK Status = "ok"

	// StatusTimeout means the service did not answer in time on either
	// attempt.
	StatusTimeout Status = "timeout"

	// StatusRejected means the service answered with a non-timeout
	// failure on both attempts.
	StatusRejected Status = "rejected"
)

// Outcome is the result of the two-attempt policy.
type Outcome struct {
	Status Status
	Reply  *Reply
	Err    error
}

// Generator is anything that can produce a reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (*Reply, error)
}

// Ask runs the two-attempt policy: try, retry once on any failure, then
// classify. The context must outlive both attempts; each attempt carries
// its own per-call timeout inside the client.
func Ask(ctx context.Context, g Generator, prompt string, maxTokens int) Outcome {
	reply, err := g.Generate(ctx, prompt, maxTokens)
	if err == nil {
		return Outcome{Status: StatusOK, Reply: reply}
	}

	reply, retryErr := g.Generate(ctx, prompt, maxTokens)
	if retryErr == nil {
		return Outcome{Status: StatusOK, Reply: reply}
	}

	if isTimeout(err) || isTimeout(retryErr) {
		return Outcome{Status: StatusTimeout, Err: retryErr}
	}
	return Outcome{Status: StatusRejected, Err: retryErr}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
