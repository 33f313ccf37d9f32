package ai

import (
	"context"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// Generator produces a single completion for a prompt. It is the synchronous
// counterpart to BatchClient, used when batch submission is disabled or as a
// per-item fallback.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends one prompt and returns the raw completion text.
	// Returns an error if the request fails or the model returns no choices.
	Generate(ctx context.Context, prompt string, spec RequestSpec) (string, error)
}

// BatchClient drives an asynchronous batch completion API. A batch is
// submitted once, polled until it reaches a terminal status, and its results
// fetched as a map keyed by the caller-supplied custom IDs.
// Implementations must be thread-safe for concurrent use.
type BatchClient interface {
	// SubmitBatch uploads the requests and creates a remote batch job.
	// Returns the provider-assigned batch ID. A rejected submission is
	// reported as ErrSubmission; the requests were not accepted and no
	// batch exists remotely.
	SubmitBatch(ctx context.Context, requests []Request, spec RequestSpec) (string, error)

	// BatchStatus reports the current status of a remote batch. Transient
	// failures (network errors, rate limits, server errors) are wrapped in
	// ErrTransientPoll so callers can retry the poll without abandoning
	// the batch.
	BatchStatus(ctx context.Context, batchID string) (core.BatchStatus, error)

	// BatchResults fetches the output of a completed batch. The returned
	// map is keyed by custom ID; requests the provider failed to answer
	// carry a non-nil Err and may be absent entirely.
	BatchResults(ctx context.Context, batchID string) (map[core.ID]Result, error)

	// CancelBatch requests cancellation of an in-flight batch. Best
	// effort; already-terminal batches are not an error.
	CancelBatch(ctx context.Context, batchID string) error
}

// AIProvider aggregates the generation services for convenient initialization
// and lifecycle management.
type AIProvider interface {
	// Generator returns the synchronous completion service.
	Generator() Generator

	// BatchClient returns the asynchronous batch service.
	BatchClient() BatchClient

	// Close releases resources held by the provider and its services.
	Close() error
}

// RequestSpec carries the per-stage model parameters shared by every request
// in a batch.
type RequestSpec struct {
	// Temperature is the sampling temperature for the completion.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// Description labels the batch in provider metadata and logs.
	Description string

	// CompletionWindow is how long the provider may take to finish the
	// batch. Zero means the provider default (24 hours).
	CompletionWindow time.Duration
}
