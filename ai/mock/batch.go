package mock

import (
	"context"
	"fmt"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
)

// MockBatchClient is a test double for ai.BatchClient.
// It allows custom behavior injection via function fields.
type MockBatchClient struct {
	// SubmitBatchFunc is called by SubmitBatch if set.
	// If nil, records the requests and returns a sequential batch ID.
	SubmitBatchFunc func(ctx context.Context, requests []ai.Request, spec ai.RequestSpec) (string, error)

	// BatchStatusFunc is called by BatchStatus if set.
	// If nil, every batch reports completed.
	BatchStatusFunc func(ctx context.Context, batchID string) (core.BatchStatus, error)

	// BatchResultsFunc is called by BatchResults if set.
	// If nil, returns a fixed completion for each recorded request.
	BatchResultsFunc func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error)

	// CancelBatchFunc is called by CancelBatch if set.
	// If nil, cancellation is a no-op.
	CancelBatchFunc func(ctx context.Context, batchID string) error

	submitCount int
	statusCount int
	batches     map[string][]ai.Request
}

// NewMockBatchClient creates a mock batch client with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockBatchClient() *MockBatchClient {
	return &MockBatchClient{
		batches: make(map[string][]ai.Request),
	}
}

// SubmitBatch records the requests under a sequential mock batch ID.
func (m *MockBatchClient) SubmitBatch(ctx context.Context, requests []ai.Request, spec ai.RequestSpec) (string, error) {
	m.submitCount++

	if m.SubmitBatchFunc != nil {
		return m.SubmitBatchFunc(ctx, requests, spec)
	}

	batchID := fmt.Sprintf("mock-batch-%d", m.submitCount)
	m.batches[batchID] = requests
	return batchID, nil
}

// BatchStatus reports every batch as completed by default.
func (m *MockBatchClient) BatchStatus(ctx context.Context, batchID string) (core.BatchStatus, error) {
	m.statusCount++

	if m.BatchStatusFunc != nil {
		return m.BatchStatusFunc(ctx, batchID)
	}

	return core.BatchCompleted, nil
}

// BatchResults returns a fixed completion for each recorded request.
func (m *MockBatchClient) BatchResults(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
	if m.BatchResultsFunc != nil {
		return m.BatchResultsFunc(ctx, batchID)
	}

	results := make(map[core.ID]ai.Result)
	for _, req := range m.batches[batchID] {
		results[req.CustomID] = ai.Result{Content: "mock completion"}
	}
	return results, nil
}

// CancelBatch is a no-op by default.
func (m *MockBatchClient) CancelBatch(ctx context.Context, batchID string) error {
	if m.CancelBatchFunc != nil {
		return m.CancelBatchFunc(ctx, batchID)
	}
	return nil
}

// SubmitCount returns the number of times SubmitBatch was called.
func (m *MockBatchClient) SubmitCount() int {
	return m.submitCount
}

// StatusCount returns the number of times BatchStatus was called.
func (m *MockBatchClient) StatusCount() int {
	return m.statusCount
}

// SubmittedRequests returns the requests recorded for a batch ID by the
// default SubmitBatch behavior.
func (m *MockBatchClient) SubmittedRequests(batchID string) []ai.Request {
	return m.batches[batchID]
}

// Reset clears call counts, recorded batches, and custom functions.
func (m *MockBatchClient) Reset() {
	m.submitCount = 0
	m.statusCount = 0
	m.batches = make(map[string][]ai.Request)
	m.SubmitBatchFunc = nil
	m.BatchStatusFunc = nil
	m.BatchResultsFunc = nil
	m.CancelBatchFunc = nil
}
