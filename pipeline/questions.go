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
	"errors"
	"strings"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/orchestrate"
)

// RunQuestions generates questions for every ingested article. Each article
// becomes one work item whose id equals the article id; completed results
// are parsed and merged into the Q&A pair repository with empty answers.
func (p *Pipeline) RunQuestions(ctx context.Context, opts RunOptions) (*orchestrate.Summary, error) {
	articles, err := p.articles.GetAllArticles(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, errors.New("no articles ingested; run the ingest stage first")
	}
	if opts.Limit > 0 && len(articles) > opts.Limit {
		p.logger.Info("limiting articles", "limit", opts.Limit, "total", len(articles))
		articles = articles[:opts.Limit]
	}

	articleMap := make(map[core.ID]*core.Article, len(articles))
	seeds := make([]*core.WorkItem, 0, len(articles))
	for _, article := range articles {
		articleMap[article.Id] = article

		prompt, err := renderQuestionPrompt(article, p.config.Generation.MaxContentChars)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, &core.WorkItem{
			Id:         article.Id,
			SourceText: prompt,
			Status:     core.StatusPending,
		})
	}
	if err := p.seedWorkItems(ctx, core.StageQuestions, seeds, opts.Resume); err != nil {
		return nil, err
	}

	merger := orchestrate.MergeFunc(func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
		return p.mergeQuestions(ctx, articleMap, items)
	})

	spec := ai.RequestSpec{
		Temperature: p.config.Generation.TemperatureQuestions,
		MaxTokens:   p.config.Generation.MaxTokensQuestions,
		Description: "Question generation for Atom helpdesk",
	}
	return p.runner(merger, opts.Sync).Run(ctx, core.StageQuestions, spec, opts.Resume)
}

// mergeQuestions parses completed question results into Q&A pairs. Pair ids
// derive from the article id and question index, so replaying a merge after
// a crash upserts the same records.
func (p *Pipeline) mergeQuestions(ctx context.Context, articleMap map[core.ID]*core.Article, items []*core.WorkItem) error {
	var pairs []*core.QAPair
	for _, item := range items {
		questions := ParseQuestions(item.Result)
		if len(questions) == 0 {
			p.logger.Warn("no valid questions for article", "article_id", item.Id)
			continue
		}

		collection := ""
		if article, ok := articleMap[item.Id]; ok {
			collection = article.Collection
		}

		for i, q := range questions {
			question := strings.TrimSpace(q.Question)
			if question == "" {
				continue
			}
			pairs = append(pairs, &core.QAPair{
				Id:           core.QAPairID(item.Id, i),
				ArticleId:    item.Id,
				Collection:   collection,
				Question:     question,
				QuestionType: q.QuestionType,
			})
		}
	}

	if len(pairs) == 0 {
		return nil
	}
	return p.pairs.PutQAPairs(ctx, pairs...)
}
