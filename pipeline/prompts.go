package pipeline

import (
	"strings"
	"text/template"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// Prompt templates rendered into work item source text. The rendered prompt
// is stored on the work item at seed time, so a resumed run resubmits
// exactly what the original run would have sent.

var questionPrompt = template.Must(template.New("questions").Parse(
	`You are generating training questions for Atom's customer support assistant.

Article title: {{.Title}}
Collection: {{.Collection}}
{{- if .Description}}
Description: {{.Description}}
{{- end}}

Article content:
{{.Content}}

Write 3-5 questions a customer might realistically ask that this article
answers. Vary the phrasing and question types. Respond with a JSON array
only, no other text:

[{"question": "...", "question_type": "factual|how-to|troubleshooting|pricing|conceptual"}]
`))

var answerPrompt = template.Must(template.New("answers").Parse(
	`You are Atom's customer support assistant. Answer the customer's question
using only the article below. Be accurate, concise, and helpful. Do not
reference the article itself in your answer.

Article title: {{.Title}}
Collection: {{.Collection}}

Article content:
{{.Content}}

Customer question: {{.Question}}

Answer:`))

type promptData struct {
	Title       string
	Collection  string
	Description string
	Content     string
	Question    string
}

// renderQuestionPrompt renders the question generation prompt for an
// article, truncating the content to maxContentChars.
func renderQuestionPrompt(article *core.Article, maxContentChars int) (string, error) {
	var sb strings.Builder
	err := questionPrompt.Execute(&sb, promptData{
		Title:       article.Title,
		Collection:  article.Collection,
		Description: article.Description,
		Content:     truncate(article.Body, maxContentChars),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// renderAnswerPrompt renders the answer generation prompt for one question
// against its source article.
func renderAnswerPrompt(article *core.Article, question string, maxContentChars int) (string, error) {
	var sb strings.Builder
	err := answerPrompt.Execute(&sb, promptData{
		Title:      article.Title,
		Collection: article.Collection,
		Content:    truncate(article.Body, maxContentChars),
		Question:   question,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// truncate caps a string at max runes. 0 means no cap.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
