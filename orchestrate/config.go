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


package orchestrate

import (
	"errors"
	"time"
)

// Config holds configuration for an orchestration run.
type Config struct {
	// MaxBatchSize is the maximum number of work items per submitted batch.
	MaxBatchSize int

	// MaxAttempts is the per-item failure ceiling. Once an item has failed
	// this many times it is marked permanently failed and excluded from
	// further batches. Required; there is no safe default.
	MaxAttempts int

	// PollBaseDelay is the initial delay between status polls.
	// The delay doubles after each poll up to PollMaxDelay.
	PollBaseDelay time.Duration

	// PollMaxDelay is the ceiling for the poll backoff interval.
	PollMaxDelay time.Duration

	// PollTimeout is the wall-clock budget for resolving one batch. A
	// batch still unresolved when the budget runs out is treated as
	// expired and its members revert to pending.
	PollTimeout time.Duration

	// RetryBaseDelay is the base delay for exponential backoff on the
	// synchronous fallback path.
	RetryBaseDelay time.Duration

	// SyncCheckpointEvery is how often the synchronous fallback writes a
	// checkpoint, in completed items.
	SyncCheckpointEvery int

	// ReportInterval is how often to report progress (number of items).
	ReportInterval int
}

// DefaultConfig returns a Config with defaults for everything except
// MaxAttempts, which callers must set explicitly.
func DefaultConfig() *Config {
	return &Config{
		MaxBatchSize:        50,
		PollBaseDelay:       30 * time.Second,
		PollMaxDelay:        5 * time.Minute,
		PollTimeout:         24 * time.Hour,
		RetryBaseDelay:      1 * time.Second,
		SyncCheckpointEvery: 5,
		ReportInterval:      10,
	}
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return errors.New("orchestrate config: MaxBatchSize must be greater than 0")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("orchestrate config: MaxAttempts is required and must be greater than 0")
	}
	if c.PollBaseDelay <= 0 {
		return errors.New("orchestrate config: PollBaseDelay must be greater than 0")
	}
	if c.PollMaxDelay < c.PollBaseDelay {
		return errors.New("orchestrate config: PollMaxDelay must be at least PollBaseDelay")
	}
	if c.PollTimeout <= 0 {
		return errors.New("orchestrate config: PollTimeout must be greater than 0")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("orchestrate config: RetryBaseDelay must be greater than 0")
	}
	if c.SyncCheckpointEvery <= 0 {
		return errors.New("orchestrate config: SyncCheckpointEvery must be greater than 0")
	}
	if c.ReportInterval <= 0 {
		return errors.New("orchestrate config: ReportInterval must be greater than 0")
	}
	return nil
}
