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


// Package config loads and validates the pipeline configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/orchestrate"
	"gopkg.in/yaml.v3"
)

// Config is the root of the pipeline configuration.
type Config struct {
	Storage      StorageConfig      `yaml:"storage"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Generation   GenerationConfig   `yaml:"generation"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Validation   ValidationConfig   `yaml:"validation"`
	Paths        PathsConfig        `yaml:"paths"`

	// SystemPrompts maps prompt keys to system prompt text for the
	// formatted training examples. Must contain a "default" entry.
	SystemPrompts map[string]string `yaml:"system_prompts"`

	// CollectionPrompts maps article collection names to SystemPrompts
	// keys. Collections without a mapping use "default".
	CollectionPrompts map[string]string `yaml:"collection_prompt_mapping"`
}

// StorageConfig configures the local record store.
type StorageConfig struct {
	// DataDir is the BadgerDB database directory.
	DataDir string `yaml:"data_dir"`
}

// OpenAIConfig configures the completion provider.
type OpenAIConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// GenerationConfig holds the per-stage model parameters.
type GenerationConfig struct {
	TemperatureQuestions float64 `yaml:"temperature_questions"`
	MaxTokensQuestions   int     `yaml:"max_tokens_questions"`
	TemperatureAnswers   float64 `yaml:"temperature_answers"`
	MaxTokensAnswers     int     `yaml:"max_tokens_answers"`

	// MaxContentChars caps the article content included in a prompt.
	MaxContentChars int `yaml:"max_content_chars"`
}

// OrchestratorConfig configures the batch orchestration engine.
type OrchestratorConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`

	// MaxAttempts is the per-item failure ceiling. Required; there is no
	// default.
	MaxAttempts int `yaml:"max_attempts"`

	PollIntervalSeconds    int `yaml:"poll_interval_seconds"`
	PollMaxIntervalSeconds int `yaml:"poll_max_interval_seconds"`
	PollTimeoutMinutes     int `yaml:"poll_timeout_minutes"`
	RetryDelaySeconds      int `yaml:"retry_delay_seconds"`
	SyncCheckpointEvery    int `yaml:"sync_checkpoint_every"`
	ReportInterval         int `yaml:"report_interval"`
}

// ValidationConfig holds the quality-check thresholds.
type ValidationConfig struct {
	MinQuestionChars int `yaml:"min_question_chars"`
	MaxQuestionChars int `yaml:"max_question_chars"`
	MinAnswerChars   int `yaml:"min_answer_chars"`
	MaxAnswerChars   int `yaml:"max_answer_chars"`

	// SimilarityThreshold is the near-duplicate question ratio in [0,1].
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// SemanticSampleRate is the fraction of pairs grounding-checked.
	SemanticSampleRate float64 `yaml:"semantic_sample_rate"`
}

// PathsConfig holds the file locations the pipeline reads and writes.
type PathsConfig struct {
	RawArticles       string `yaml:"raw_articles"`
	TrainingData      string `yaml:"training_data"`
	FinalTrainingData string `yaml:"final_training_data"`
	Metadata          string `yaml:"metadata"`
	QualityReport     string `yaml:"quality_report"`
}

// Default returns a Config with defaults for everything that has a safe
// default. Orchestrator.MaxAttempts deliberately has none.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "data/db",
		},
		OpenAI: OpenAIConfig{
			Host:      "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Generation: GenerationConfig{
			TemperatureQuestions: 0.7,
			MaxTokensQuestions:   1000,
			TemperatureAnswers:   0.3,
			MaxTokensAnswers:     1000,
			MaxContentChars:      8000,
		},
		Orchestrator: OrchestratorConfig{
			MaxBatchSize:           50,
			PollIntervalSeconds:    30,
			PollMaxIntervalSeconds: 300,
			PollTimeoutMinutes:     24 * 60,
			RetryDelaySeconds:      1,
			SyncCheckpointEvery:    5,
			ReportInterval:         10,
		},
		Validation: ValidationConfig{
			MinQuestionChars:    10,
			MaxQuestionChars:    200,
			MinAnswerChars:      20,
			MaxAnswerChars:      2000,
			SimilarityThreshold: 0.95,
			SemanticSampleRate:  0.1,
		},
		Paths: PathsConfig{
			RawArticles:       "data/raw/articles.json",
			TrainingData:      "data/output/training_data.jsonl",
			FinalTrainingData: "data/output/final_training_data.jsonl",
			Metadata:          "data/output/metadata.json",
			QualityReport:     "data/output/quality_report.json",
		},
		SystemPrompts: map[string]string{
			"default": "You are a helpful customer support assistant for Atom. Answer questions accurately based on Atom's helpdesk documentation.",
		},
		CollectionPrompts: map[string]string{},
	}
}

// Load reads a YAML configuration file on top of the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("config: storage.data_dir is required")
	}
	if c.OpenAI.Host == "" {
		return errors.New("config: openai.host is required")
	}
	if c.OpenAI.Model == "" {
		return errors.New("config: openai.model is required")
	}
	if c.Orchestrator.MaxAttempts <= 0 {
		return errors.New("config: orchestrator.max_attempts is required and must be greater than 0")
	}
	if c.Orchestrator.MaxBatchSize <= 0 {
		return errors.New("config: orchestrator.max_batch_size must be greater than 0")
	}
	if c.Validation.SimilarityThreshold < 0 || c.Validation.SimilarityThreshold > 1 {
		return errors.New("config: validation.similarity_threshold must be between 0 and 1")
	}
	if c.Validation.SemanticSampleRate < 0 || c.Validation.SemanticSampleRate > 1 {
		return errors.New("config: validation.semantic_sample_rate must be between 0 and 1")
	}
	if _, ok := c.SystemPrompts["default"]; !ok {
		return errors.New("config: system_prompts.default is required")
	}
	return nil
}

// APIKey reads the provider API key from the configured environment
// variable. May be empty for local providers.
func (c *Config) APIKey() string {
	if c.OpenAI.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.OpenAI.APIKeyEnv)
}

// Orchestrate converts the orchestrator section to an orchestrate.Config.
func (c *Config) Orchestrate() *orchestrate.Config {
	return &orchestrate.Config{
		MaxBatchSize:        c.Orchestrator.MaxBatchSize,
		MaxAttempts:         c.Orchestrator.MaxAttempts,
		PollBaseDelay:       time.Duration(c.Orchestrator.PollIntervalSeconds) * time.Second,
		PollMaxDelay:        time.Duration(c.Orchestrator.PollMaxIntervalSeconds) * time.Second,
		PollTimeout:         time.Duration(c.Orchestrator.PollTimeoutMinutes) * time.Minute,
		RetryBaseDelay:      time.Duration(c.Orchestrator.RetryDelaySeconds) * time.Second,
		SyncCheckpointEvery: c.Orchestrator.SyncCheckpointEvery,
		ReportInterval:      c.Orchestrator.ReportInterval,
	}
}

// Bounds converts the validation section to core length bounds.
func (c *Config) Bounds() core.LengthBounds {
	return core.LengthBounds{
		MinQuestion: c.Validation.MinQuestionChars,
		MaxQuestion: c.Validation.MaxQuestionChars,
		MinAnswer:   c.Validation.MinAnswerChars,
		MaxAnswer:   c.Validation.MaxAnswerChars,
	}
}

// SystemPromptFor resolves the system prompt for an article collection.
func (c *Config) SystemPromptFor(collection string) string {
	key, ok := c.CollectionPrompts[collection]
	if !ok {
		key = "default"
	}
	prompt, ok := c.SystemPrompts[key]
	if !ok {
		prompt = c.SystemPrompts["default"]
	}
	return prompt
}
