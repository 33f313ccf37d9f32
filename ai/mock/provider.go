// Copyright 2025 Atom
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/nitin-atom/finetuning-customer-support/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock generator and batch client instances.
type MockProvider struct {
	generator *MockGenerator
	batch     *MockBatchClient
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production
// constructors. Use GetMockGenerator()/GetMockBatchClient() to access
// concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		generator: NewMockGenerator(),
		batch:     NewMockBatchClient(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock
// services. This allows full control over the behavior of each service.
func NewMockProviderWithServices(generator *MockGenerator, batch *MockBatchClient) ai.AIProvider {
	return &MockProvider{
		generator: generator,
		batch:     batch,
	}
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// BatchClient returns the mock batch client.
func (p *MockProvider) BatchClient() ai.BatchClient {
	return p.batch
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockBatchClient returns the underlying mock batch client for test
// assertions.
func (p *MockProvider) GetMockBatchClient() *MockBatchClient {
	return p.batch
}
