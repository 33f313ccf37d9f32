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


package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// chatMessage and trainingExample are the fine-tuning JSONL line shape.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type trainingExample struct {
	Messages []chatMessage `json:"messages"`
}

// CollectionCount is the number of examples drawn from one collection.
type CollectionCount struct {
	Name     string `json:"name"`
	Examples int    `json:"examples"`
}

// Metadata describes a formatted training dataset. ValidationPassed stays
// null until the check stage fills it in.
type Metadata struct {
	GeneratedAt              time.Time         `json:"generated_at"`
	TotalExamples            int               `json:"total_examples"`
	SourceArticles           int               `json:"source_articles"`
	AvgQuestionsPerArticle   float64           `json:"avg_questions_per_article"`
	CollectionsCovered       []CollectionCount `json:"collections_covered"`
	QuestionTypeDistribution map[string]int    `json:"question_type_distribution"`
	AvgAnswerLengthChars     float64           `json:"avg_answer_length_chars"`
	OutputFile               string            `json:"output_file"`
	ValidationPassed         *bool             `json:"validation_passed"`
	FinalExamples            int               `json:"final_examples,omitempty"`
}

// FormatSummary is the outcome of a format run.
type FormatSummary struct {
	TotalExamples int
	Unanswered    int
	Metadata      *Metadata
}

// Format writes every answered Q&A pair as fine-tuning JSONL, one
// system/user/assistant message triple per line, plus a metadata file. The
// system prompt is resolved per collection from the configuration.
func (p *Pipeline) Format(ctx context.Context) (*FormatSummary, error) {
	pairs, err := p.pairs.GetAllQAPairs(ctx)
	if err != nil {
		return nil, err
	}

	answered := make([]*core.QAPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Answer == "" {
			continue
		}
		answered = append(answered, pair)
	}
	if len(answered) == 0 {
		return nil, errors.New("no answered questions; run the answers stage first")
	}

	outputPath := p.config.Paths.TrainingData
	if err := p.writeTrainingFile(outputPath, answered); err != nil {
		return nil, err
	}
	p.logger.Info("wrote training examples", "count", len(answered), "path", outputPath)

	metadata := buildMetadata(answered, outputPath)
	if err := writeJSONFile(p.config.Paths.Metadata, metadata); err != nil {
		return nil, err
	}
	p.logger.Info("wrote metadata", "path", p.config.Paths.Metadata)

	return &FormatSummary{
		TotalExamples: len(answered),
		Unanswered:    len(pairs) - len(answered),
		Metadata:      metadata,
	}, nil
}

// writeTrainingFile writes pairs as JSONL message triples.
func (p *Pipeline) writeTrainingFile(path string, pairs []*core.QAPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create training file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, pair := range pairs {
		example := trainingExample{
			Messages: []chatMessage{
				{Role: "system", Content: p.config.SystemPromptFor(pair.Collection)},
				{Role: "user", Content: pair.Question},
				{Role: "assistant", Content: pair.Answer},
			},
		}
		if err := enc.Encode(&example); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// buildMetadata computes dataset statistics for answered pairs.
func buildMetadata(pairs []*core.QAPair, outputPath string) *Metadata {
	collectionCounts := make(map[string]int)
	questionTypes := make(map[string]int)
	articleSet := make(map[core.ID]bool)
	totalAnswerChars := 0
	for _, pair := range pairs {
		collectionCounts[pair.Collection]++
		qt := pair.QuestionType
		if qt == "" {
			qt = "unknown"
		}
		questionTypes[qt]++
		articleSet[pair.ArticleId] = true
		totalAnswerChars += len(pair.Answer)
	}

	collections := make([]CollectionCount, 0, len(collectionCounts))
	for name, count := range collectionCounts {
		collections = append(collections, CollectionCount{Name: name, Examples: count})
	}
	sort.Slice(collections, func(i, j int) bool {
		if collections[i].Examples != collections[j].Examples {
			return collections[i].Examples > collections[j].Examples
		}
		return collections[i].Name < collections[j].Name
	})

	avgQuestions := 0.0
	if len(articleSet) > 0 {
		avgQuestions = float64(len(pairs)) / float64(len(articleSet))
	}
	avgAnswerLen := 0.0
	if len(pairs) > 0 {
		avgAnswerLen = float64(totalAnswerChars) / float64(len(pairs))
	}

	return &Metadata{
		GeneratedAt:              time.Now().UTC(),
		TotalExamples:            len(pairs),
		SourceArticles:           len(articleSet),
		AvgQuestionsPerArticle:   avgQuestions,
		CollectionsCovered:       collections,
		QuestionTypeDistribution: questionTypes,
		AvgAnswerLengthChars:     avgAnswerLen,
		OutputFile:               outputPath,
	}
}

// writeJSONFile writes v as indented JSON, creating parent directories.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
