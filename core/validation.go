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


package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// LengthBounds holds the character limits applied to generated content.
type LengthBounds struct {
	MinQuestion int
	MaxQuestion int
	MinAnswer   int
	MaxAnswer   int
}

// ValidateContentLength checks that a Q&A pair's texts fall inside the
// configured bounds.
func ValidateContentLength(pair *QAPair, bounds LengthBounds) error {
	if len(pair.Question) < bounds.MinQuestion {
		return fmt.Errorf("%w: %d < %d", ErrQuestionTooShort, len(pair.Question), bounds.MinQuestion)
	}
	if len(pair.Question) > bounds.MaxQuestion {
		return fmt.Errorf("%w: %d > %d", ErrQuestionTooLong, len(pair.Question), bounds.MaxQuestion)
	}
	if len(pair.Answer) < bounds.MinAnswer {
		return fmt.Errorf("%w: %d < %d", ErrAnswerTooShort, len(pair.Answer), bounds.MinAnswer)
	}
	if len(pair.Answer) > bounds.MaxAnswer {
		return fmt.Errorf("%w: %d > %d", ErrAnswerTooLong, len(pair.Answer), bounds.MaxAnswer)
	}
	return nil
}

// questionStarters are leading words that mark a statement-style query as
// well-formed even without a terminal question mark.
var questionStarters = []string{
	"how", "what", "when", "where", "why", "who",
	"can", "do", "does", "is", "are", "will", "should",
}

// ValidateQuestionFormat checks that a question is well-formed. Brief
// statement-style queries ("Commission rates") are allowed; anything longer
// than 30 characters must either end with '?' or start like a question.
func ValidateQuestionFormat(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	if strings.HasSuffix(question, "?") {
		return nil
	}

	lower := strings.ToLower(question)
	for _, w := range questionStarters {
		if strings.HasPrefix(lower, w+" ") || lower == w {
			return nil
		}
	}

	if len(question) > 30 {
		return ErrMalformedQuestion
	}
	return nil
}

// numberPattern matches dollar amounts, percentages and plain figures so
// they can be cross-checked against the source article.
var numberPattern = regexp.MustCompile(`\$?\d+(?:,\d{3})*(?:\.\d+)?%?`)

// simpleCounts are small figures allowed in answers without appearing in
// the source (step numbering etc).
var simpleCounts = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}

// hallucinationMarkers flag phrasing that leaks the generation context into
// the answer.
var hallucinationMarkers = []string{
	"i don't have information",
	"i cannot find",
	"not mentioned in",
	"according to the article",
	"based on the document",
	"the article states",
	"as mentioned in the article",
}

// CheckGrounding verifies that an answer appears grounded in the article it
// was generated from. It returns the list of ungrounded findings: figures
// absent from the article and hallucination-marker phrases. An empty list
// means the answer passed.
func CheckGrounding(answer, articleText string) []string {
	articleNumbers := make(map[string]bool)
	for _, n := range numberPattern.FindAllString(articleText, -1) {
		articleNumbers[n] = true
	}

	var ungrounded []string
	for _, n := range numberPattern.FindAllString(answer, -1) {
		if !articleNumbers[n] && !simpleCounts[n] {
			ungrounded = append(ungrounded, n)
		}
	}

	lower := strings.ToLower(answer)
	for _, marker := range hallucinationMarkers {
		if strings.Contains(lower, marker) {
			ungrounded = append(ungrounded, "marker: "+marker)
		}
	}

	return ungrounded
}

// trainingExample mirrors the fine-tuning JSONL schema for validation.
type trainingExample struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// expectedRoles is the required message order of a training example.
var expectedRoles = []string{"system", "user", "assistant"}

// ValidateTrainingLine checks one JSONL line against the fine-tuning
// schema: a messages array of exactly system, user, assistant, each with
// non-empty content.
func ValidateTrainingLine(line string) error {
	var example trainingExample
	if err := json.Unmarshal([]byte(line), &example); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessages, err)
	}

	if len(example.Messages) != len(expectedRoles) {
		return fmt.Errorf("%w: want %d messages, got %d", ErrInvalidMessages, len(expectedRoles), len(example.Messages))
	}

	for i, msg := range example.Messages {
		if msg.Role != expectedRoles[i] {
			return fmt.Errorf("%w: message %d should have role %q, got %q", ErrInvalidMessages, i, expectedRoles[i], msg.Role)
		}
		if msg.Content == "" {
			return fmt.Errorf("%w: message %d has empty content", ErrInvalidMessages, i)
		}
	}

	return nil
}
