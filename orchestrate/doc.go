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


// Package orchestrate drives question and answer generation through an
// asynchronous batch API, with checkpointed crash recovery.
//
// # Batch Lifecycle
//
// Each batch moves through an explicit state machine:
//
//	submitted -> in progress -> completed | failed | expired
//
// Pending work items are partitioned into batches in repository insertion
// order, so two runs over the same pending set produce identical batches.
// Every batch of a pass is submitted before any is polled, and a resumed run
// reconciles in-flight batches found in the checkpoint before submitting new
// ones, keeping at most one generation of batches outstanding.
//
// Transition rules:
//
//   - A rejected submission discards the batch; its members revert to
//     pending with an incremented attempt count and are re-batched on the
//     next pass.
//   - Poll failures never advance state. Polls retry with exponential
//     backoff, bounded by a wall-clock budget after which the batch is
//     treated as expired.
//   - A completed batch has its results fetched and merged all-or-nothing
//     relative to the checkpoint write.
//   - Failed and expired batches revert their members to pending with an
//     incremented attempt count.
//
// An item that reaches the configured attempt ceiling is marked permanently
// failed, excluded from further batches, and surfaced in the run summary.
//
// # Scheduling
//
// The orchestrator is single-threaded and cooperative: no two batches are
// polled concurrently, and suspension happens only in polling waits. The
// checkpoint is only ever updated to reflect transitions confirmed from the
// provider, so an interrupt during polling leaves the last-written
// checkpoint consistent.
//
// # Strategies
//
// Two interchangeable Runner implementations exist: Orchestrator (batch
// submission) and SyncRunner (direct per-item calls for small and test
// runs). Both share the same merge and checkpoint path.
package orchestrate
