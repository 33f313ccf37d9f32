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


// Package openai implements the ai package interfaces against
// OpenAI-compatible APIs.
//
// The synchronous Generator is built on langchaingo's OpenAI client. The
// BatchClient talks to the /files and /batches endpoints directly, since
// langchaingo does not expose them: it uploads a JSONL input file with
// purpose=batch, creates a batch against /v1/chat/completions with a 24 hour
// completion window, polls the batch status, and parses the JSONL output and
// error files into per-request results keyed by custom ID.
//
// Works with the hosted OpenAI API and with local OpenAI-compatible servers
// that implement the batch endpoints.
package openai
