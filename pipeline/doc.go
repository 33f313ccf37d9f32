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


// Package pipeline implements the five stage drivers that turn scraped
// helpdesk articles into a validated fine-tuning dataset:
//
//	ingest    - load the scraper's articles JSON into the article store
//	questions - generate candidate questions per article via the orchestrator
//	answers   - generate answers per question via the orchestrator
//	format    - emit fine-tuning JSONL plus dataset metadata
//	check     - validate, ground-check, deduplicate, and write the final set
//
// The generation stages are thin callers around the orchestrate package:
// they seed work items (one per article or question, with the prompt
// rendered into the item at seed time), pick the batch or synchronous
// strategy, and merge completed results into the record repositories. All
// orchestration semantics (batching, polling, checkpointing, resume, the
// attempt ceiling) live in orchestrate.
package pipeline
