// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator, ai.BatchClient,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without a live completion API and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	text, err := mockProvider.Generator().Generate(ctx, "test", ai.RequestSpec{})
//
//	// Custom behavior injection
//	batch := mock.NewMockBatchClient()
//	batch.BatchStatusFunc = func(ctx context.Context, batchID string) (core.BatchStatus, error) {
//	    return core.BatchExpired, nil
//	}
//
//	// Check call counts
//	count := batch.SubmitCount()
//
// # Default Behavior
//
//   - MockGenerator: Returns a fixed "mock completion" string
//   - MockBatchClient: Records submitted requests, reports every batch as
//     completed, and answers each request with a fixed completion
//   - MockProvider: Aggregates mock generator and batch client
package mock
