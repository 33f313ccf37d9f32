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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// articleFile is one entry of the scraper's articles JSON file.
type articleFile struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Collection  string `json:"collection"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Content     struct {
		Markdown  string `json:"markdown"`
		PlainText string `json:"plain_text"`
	} `json:"content"`
}

// IngestSummary is the outcome of an ingest run.
type IngestSummary struct {
	Read    int
	Stored  int
	Skipped int
}

// Ingest reads the scraper's articles JSON file into the article repository.
// Entries without an id or without content are skipped; duplicate ids within
// the file keep the first occurrence. Re-ingesting is an upsert: existing
// articles are replaced in place and keep their insertion position.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*IngestSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles file: %w", err)
	}

	var entries []articleFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse articles file: %w", err)
	}

	summary := &IngestSummary{Read: len(entries)}
	seen := make(map[string]bool, len(entries))
	articles := make([]*core.Article, 0, len(entries))
	for _, entry := range entries {
		if entry.ArticleID == "" || strings.TrimSpace(entry.Content.Markdown) == "" {
			p.logger.Warn("skipping article without id or content", "article_id", entry.ArticleID, "title", entry.Title)
			summary.Skipped++
			continue
		}
		if seen[entry.ArticleID] {
			p.logger.Warn("skipping duplicate article id", "article_id", entry.ArticleID)
			summary.Skipped++
			continue
		}
		seen[entry.ArticleID] = true

		articles = append(articles, &core.Article{
			Id:          core.ID(entry.ArticleID),
			Title:       entry.Title,
			Collection:  entry.Collection,
			Description: entry.Description,
			Body:        entry.Content.Markdown,
			PlainText:   entry.Content.PlainText,
			Url:         entry.URL,
		})
	}

	if len(articles) > 0 {
		if err := p.articles.PutArticles(ctx, articles...); err != nil {
			return nil, err
		}
	}
	summary.Stored = len(articles)

	p.logger.Info("ingested articles",
		"read", summary.Read,
		"stored", summary.Stored,
		"skipped", summary.Skipped)
	return summary, nil
}
