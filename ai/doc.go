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


// Package ai provides abstractions for the language model services used to
// generate questions and answers.
//
// This package defines interfaces for completion operations, both synchronous
// and via an asynchronous batch API. The orchestration and pipeline layers
// depend on these abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Generator: Produces a single completion for one prompt
//   - BatchClient: Submits, polls, and collects asynchronous batches
//   - AIProvider: Aggregates both services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Error Semantics
//
// BatchClient distinguishes two failure classes that callers must treat
// differently:
//
//   - ErrSubmission: the provider rejected the submission, so no remote
//     batch exists and the requests were never accepted.
//   - ErrTransientPoll: a status poll failed but the remote batch is still
//     live; the poll should be retried with backoff.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(key), ai.WithModel("gpt-4o-mini"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	batchID, err := provider.BatchClient().SubmitBatch(ctx, requests, spec)
package ai
