package pipeline

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// ParsedQuestion is one entry of the model's question generation output.
type ParsedQuestion struct {
	Question     string `json:"question"`
	QuestionType string `json:"question_type"`
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedPattern     = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ParseQuestions extracts a question list from model output, tolerating the
// formatting the model tends to produce: markdown code fences, prose around
// a bare JSON array, or a clean array. Returns nil when nothing parseable is
// found.
func ParseQuestions(response string) []ParsedQuestion {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```json") {
		if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
			response = m[1]
		}
	} else if strings.Contains(response, "```") {
		if m := fencedPattern.FindStringSubmatch(response); m != nil {
			response = m[1]
		}
	}

	// Prefer the outermost array within the text.
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start != -1 && end > start {
		var questions []ParsedQuestion
		if err := json.Unmarshal([]byte(response[start:end+1]), &questions); err == nil {
			return questions
		}
	}

	var questions []ParsedQuestion
	if err := json.Unmarshal([]byte(response), &questions); err == nil {
		return questions
	}

	preview := response
	if len(preview) > 200 {
		preview = preview[:200]
	}
	slog.Warn("failed to parse questions from model output", "response", preview)
	return nil
}
