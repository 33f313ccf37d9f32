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


// Package storage provides the storage abstraction layer for the pipeline.
//
// It defines repository interfaces that decouple persistence from the
// orchestration and stage logic, so different backends (BadgerDB, in-memory)
// can be used interchangeably. Public constructors in implementation
// packages return these interfaces rather than concrete types:
//
//	repo, err := badger.NewWorkItemRepository(backend)  // storage.WorkItemRepository
//
// The repositories cover four concerns:
//
//   - ArticleRepository: scraped helpdesk articles (stage-1 work source)
//   - QAPairRepository: generated questions and their answers
//   - WorkItemRepository: per-stage generation work items
//   - CheckpointRepository: durable progress snapshots for crash recovery
//
// All ordered reads return records in insertion order, which keeps batch
// partitioning and downstream formatting deterministic.
//
// All repository methods accept context.Context. The pipeline is a
// single-writer process; backends only need to guarantee that each call's
// writes commit atomically.
package storage
