package ai

import "errors"

var (
	// ErrSubmission indicates the provider rejected a batch submission.
	// No remote batch exists; the member items remain unsubmitted.
	ErrSubmission = errors.New("batch submission rejected")

	// ErrTransientPoll indicates a status poll failed for a retryable
	// reason (network error, rate limit, server error). The batch itself
	// is still live and the poll should be retried.
	ErrTransientPoll = errors.New("transient poll failure")

	// ErrNoChoices indicates the model returned an empty choice list for
	// a synchronous completion.
	ErrNoChoices = errors.New("completion returned no choices")
)
