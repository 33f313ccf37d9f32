package ai

import "github.com/nitin-atom/finetuning-customer-support/core"

// Request is one prompt within a batch submission. The CustomID ties the
// provider's response line back to the originating work item.
type Request struct {
	// CustomID identifies this request within the batch. Must be unique
	// across the batch.
	CustomID core.ID

	// Prompt is the fully rendered user message for the model.
	Prompt string
}

// Result is the outcome of one request in a completed batch.
type Result struct {
	// Content is the raw completion text. Empty when Err is set.
	Content string

	// Err is non-nil when the provider reported a per-request failure.
	Err error
}
