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
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// RunAnswers generates answers for every unanswered Q&A pair. Each pair
// becomes one work item whose id equals the pair id; completed results are
// merged back onto the pair's answer field.
func (p *Pipeline) RunAnswers(ctx context.Context, opts RunOptions) (*orchestrate.Summary, error) {
	pairs, err := p.pairs.GetAllQAPairs(ctx)
	if err != nil {
		return nil, err
	}

	unanswered := make([]*core.QAPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Answer == "" {
			unanswered = append(unanswered, pair)
		}
	}
	if len(unanswered) == 0 {
		return nil, errors.New("no unanswered questions; run the questions stage first")
	}
	if opts.Limit > 0 && len(unanswered) > opts.Limit {
		p.logger.Info("limiting questions", "limit", opts.Limit, "total", len(unanswered))
		unanswered = unanswered[:opts.Limit]
	}

	articleCache := make(map[core.ID]*core.Article)
	seeds := make([]*core.WorkItem, 0, len(unanswered))
	for _, pair := range unanswered {
		article, ok := articleCache[pair.ArticleId]
		if !ok {
			article, err = p.articles.GetArticle(ctx, pair.ArticleId)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					p.logger.Warn("skipping question with missing article",
						"qa_id", pair.Id,
						"article_id", pair.ArticleId)
					continue
				}
				return nil, err
			}
			articleCache[pair.ArticleId] = article
		}

		prompt, err := renderAnswerPrompt(article, pair.Question, p.config.Generation.MaxContentChars)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, &core.WorkItem{
			Id:         pair.Id,
			SourceText: prompt,
			Status:     core.StatusPending,
		})
	}
	if err := p.seedWorkItems(ctx, core.StageAnswers, seeds, opts.Resume); err != nil {
		return nil, err
	}

	merger := orchestrate.MergeFunc(p.mergeAnswers)

	spec := ai.RequestSpec{
		Temperature: p.config.Generation.TemperatureAnswers,
		MaxTokens:   p.config.Generation.MaxTokensAnswers,
		Description: "Answer generation for Atom helpdesk",
	}
	return p.runner(merger, opts.Sync).Run(ctx, core.StageAnswers, spec, opts.Resume)
}

// mergeAnswers writes completed answers onto their Q&A pairs. The pair is
// fetched fresh from the repository so a replayed merge after a crash sees
// current state.
func (p *Pipeline) mergeAnswers(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
	updated := make([]*core.QAPair, 0, len(items))
	for _, item := range items {
		pair, err := p.pairs.GetQAPair(ctx, item.Id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				p.logger.Warn("answer result for unknown question", "qa_id", item.Id)
				continue
			}
			return err
		}

		answer := strings.TrimSpace(item.Result)
		if answer == "" {
			p.logger.Warn("empty answer for question", "qa_id", item.Id)
			continue
		}
		pair.Answer = answer
		updated = append(updated, pair)
	}

	if len(updated) == 0 {
		return nil
	}
	return p.pairs.PutQAPairs(ctx, updated...)
}
