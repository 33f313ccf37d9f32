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
	"math/rand"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/panjf2000/ants/v2"
)

// groundingPassTarget is the sample pass rate below which the dataset is
// flagged as not validated.
const groundingPassTarget = 0.95

// CheckCounts is a passed/failed tally for one automated check.
type CheckCounts struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// GroundingIssue records the ungrounded findings of one sampled pair.
type GroundingIssue struct {
	QaID   core.ID  `json:"qa_id"`
	Issues []string `json:"issues"`
}

// RemovalReasons tallies why examples were dropped from the final dataset.
type RemovalReasons struct {
	DuplicateExact        int `json:"duplicate_exact"`
	DuplicateNear         int `json:"duplicate_near"`
	ContentLengthInvalid  int `json:"content_length_invalid"`
	QuestionFormatInvalid int `json:"question_format_invalid"`
}

// QualityReport is the check stage's output document.
type QualityReport struct {
	ValidationTimestamp     time.Time      `json:"validation_timestamp"`
	TotalExamplesGenerated  int            `json:"total_examples_generated"`
	ExamplesAfterValidation int            `json:"examples_after_validation"`
	RemovalReasons          RemovalReasons `json:"removal_reasons"`
	AutomatedChecks         struct {
		JSONValidity   CheckCounts `json:"json_validity"`
		ContentLength  CheckCounts `json:"content_length"`
		QuestionFormat CheckCounts `json:"question_format"`
	} `json:"automated_checks"`
	SemanticChecksSample struct {
		SampleSize        int              `json:"sample_size"`
		GroundingPassRate float64          `json:"grounding_pass_rate"`
		GroundingIssues   []GroundingIssue `json:"grounding_issues"`
	} `json:"semantic_checks_sample"`
	Recommendations []string `json:"recommendations"`
}

// Passed reports whether the dataset is ready for fine-tuning: every
// training line structurally valid and the grounding sample at or above the
// target rate.
func (r *QualityReport) Passed() bool {
	return r.AutomatedChecks.JSONValidity.Failed == 0 &&
		r.SemanticChecksSample.GroundingPassRate >= groundingPassTarget
}

// Check validates the formatted dataset: JSONL structure, content length
// bounds, question format, grounding spot checks on a random sample, and
// exact plus near-duplicate removal. Survivors are written as the final training file,
// alongside a quality report; the format stage's metadata is updated with
// the verdict.
func (p *Pipeline) Check(ctx context.Context) (*QualityReport, error) {
	pairs, err := p.pairs.GetAllQAPairs(ctx)
	if err != nil {
		return nil, err
	}
	answered := make([]*core.QAPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Answer != "" {
			answered = append(answered, pair)
		}
	}
	if len(answered) == 0 {
		return nil, errors.New("no answered questions to validate")
	}
	p.logger.Info("validating dataset", "pairs", len(answered))

	report := &QualityReport{
		ValidationTimestamp:    time.Now().UTC(),
		TotalExamplesGenerated: len(answered),
	}

	if err := p.checkTrainingFile(report); err != nil {
		return nil, err
	}

	// Content length bounds, tracked per pair so failures can be removed
	// from the final set.
	bounds := p.config.Bounds()
	badLength := make(map[core.ID]bool)
	for _, pair := range answered {
		if err := core.ValidateContentLength(pair, bounds); err != nil {
			p.logger.Debug("content length issue", "qa_id", pair.Id, "err", err)
			badLength[pair.Id] = true
			report.AutomatedChecks.ContentLength.Failed++
		} else {
			report.AutomatedChecks.ContentLength.Passed++
		}
	}
	report.RemovalReasons.ContentLengthInvalid = len(badLength)

	badFormat := make(map[core.ID]bool)
	for _, pair := range answered {
		if err := core.ValidateQuestionFormat(pair.Question); err != nil {
			p.logger.Debug("question format issue", "qa_id", pair.Id, "err", err)
			badFormat[pair.Id] = true
			report.AutomatedChecks.QuestionFormat.Failed++
		} else {
			report.AutomatedChecks.QuestionFormat.Passed++
		}
	}
	report.RemovalReasons.QuestionFormatInvalid = len(badFormat)

	if err := p.checkGroundingSample(ctx, answered, report); err != nil {
		return nil, err
	}

	deduped, stats, err := p.deduplicate(answered)
	if err != nil {
		return nil, err
	}
	report.RemovalReasons.DuplicateExact = stats.ExactRemoved
	report.RemovalReasons.DuplicateNear = stats.NearRemoved

	final := make([]*core.QAPair, 0, len(deduped))
	for _, pair := range deduped {
		if !badLength[pair.Id] && !badFormat[pair.Id] {
			final = append(final, pair)
		}
	}
	report.ExamplesAfterValidation = len(final)
	p.logger.Info("final dataset", "examples", len(final))

	if err := p.writeTrainingFile(p.config.Paths.FinalTrainingData, final); err != nil {
		return nil, err
	}

	p.recommend(report, stats)
	if err := writeJSONFile(p.config.Paths.QualityReport, report); err != nil {
		return nil, err
	}

	if err := p.updateMetadata(report); err != nil {
		p.logger.Warn("failed to update metadata", "err", err)
	}

	return report, nil
}

// checkTrainingFile validates every line of the formatted JSONL file.
func (p *Pipeline) checkTrainingFile(report *QualityReport) error {
	f, err := os.Open(p.config.Paths.TrainingData)
	if err != nil {
		return fmt.Errorf("failed to open training file (run the format stage first): %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := core.ValidateTrainingLine(scanner.Text()); err != nil {
			p.logger.Warn("invalid training line", "line", lineNo, "err", err)
			report.AutomatedChecks.JSONValidity.Failed++
		} else {
			report.AutomatedChecks.JSONValidity.Passed++
		}
	}
	return scanner.Err()
}

// checkGroundingSample spot-checks a random sample of answers against their
// source articles.
func (p *Pipeline) checkGroundingSample(ctx context.Context, pairs []*core.QAPair, report *QualityReport) error {
	sampleSize := int(float64(len(pairs)) * p.config.Validation.SemanticSampleRate)
	if sampleSize < 1 {
		sampleSize = 1
	}
	if sampleSize > len(pairs) {
		sampleSize = len(pairs)
	}

	perm := rand.Perm(len(pairs))
	passed, failed := 0, 0
	checked := 0
	for _, idx := range perm {
		if checked >= sampleSize {
			break
		}
		pair := pairs[idx]

		article, err := p.articles.GetArticle(ctx, pair.ArticleId)
		if err != nil {
			continue // article gone, nothing to ground against
		}
		checked++

		issues := core.CheckGrounding(pair.Answer, article.PlainText)
		if len(issues) == 0 {
			passed++
			continue
		}
		failed++
		if len(report.SemanticChecksSample.GroundingIssues) < 10 {
			report.SemanticChecksSample.GroundingIssues = append(
				report.SemanticChecksSample.GroundingIssues,
				GroundingIssue{QaID: pair.Id, Issues: issues},
			)
		}
	}

	rate := 1.0
	if passed+failed > 0 {
		rate = float64(passed) / float64(passed+failed)
	}
	report.SemanticChecksSample.SampleSize = checked
	report.SemanticChecksSample.GroundingPassRate = rate

	p.logger.Info("grounding sample checked",
		"sample", checked,
		"passed", passed,
		"pass_rate", fmt.Sprintf("%.3f", rate))
	return nil
}

// deduplicate removes exact duplicates, then fans the O(n^2) near-duplicate
// question scan out over a worker pool, one row per task.
func (p *Pipeline) deduplicate(pairs []*core.QAPair) ([]*core.QAPair, core.DedupStats, error) {
	stats := core.DedupStats{OriginalCount: len(pairs)}

	exact := core.ExactDuplicates(pairs)
	exactSet := make(map[int]bool, len(exact))
	for _, i := range exact {
		exactSet[i] = true
	}
	stats.ExactRemoved = len(exact)

	noExact := make([]*core.QAPair, 0, len(pairs)-len(exact))
	for i, pair := range pairs {
		if !exactSet[i] {
			noExact = append(noExact, pair)
		}
	}

	near, err := p.nearDuplicatePairs(noExact)
	if err != nil {
		return nil, stats, err
	}

	nearSet := make(map[int]bool, len(near))
	for _, ij := range near {
		nearSet[ij[1]] = true
	}
	// Count removed pairs, not (i, j) matches: one question similar to
	// several earlier ones is still a single removal.
	stats.NearRemoved = len(nearSet)

	deduped := make([]*core.QAPair, 0, len(noExact)-len(nearSet))
	for i, pair := range noExact {
		if !nearSet[i] {
			deduped = append(deduped, pair)
		}
	}
	stats.FinalCount = len(deduped)
	return deduped, stats, nil
}

// nearDuplicatePairs finds (i, j) index pairs, i < j, whose questions meet
// the similarity threshold. Row comparisons run concurrently; the result is
// sorted so the outcome is deterministic regardless of scheduling.
func (p *Pipeline) nearDuplicatePairs(pairs []*core.QAPair) ([][2]int, error) {
	threshold := p.config.Validation.SimilarityThreshold

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		dupes [][2]int
	)
	for i := 0; i < len(pairs); i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			var row [][2]int
			for j := i + 1; j < len(pairs); j++ {
				if core.QuestionSimilarity(pairs[i], pairs[j]) >= threshold {
					row = append(row, [2]int{i, j})
				}
			}
			if len(row) > 0 {
				mu.Lock()
				dupes = append(dupes, row...)
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	sort.Slice(dupes, func(a, b int) bool {
		if dupes[a][0] != dupes[b][0] {
			return dupes[a][0] < dupes[b][0]
		}
		return dupes[a][1] < dupes[b][1]
	})
	return dupes, nil
}

// recommend fills in the report's human-readable recommendations.
func (p *Pipeline) recommend(report *QualityReport, stats core.DedupStats) {
	rate := report.SemanticChecksSample.GroundingPassRate
	if rate < groundingPassTarget {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Grounding pass rate is %.1f%%. Review flagged examples.", rate*100))
	}
	if stats.ExactRemoved+stats.NearRemoved > 10 {
		report.Recommendations = append(report.Recommendations,
			"High duplicate count. Consider reviewing question generation prompts.")
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations,
			"All checks passed. Dataset is ready for fine-tuning.")
	}
}

// updateMetadata writes the check verdict back into the format stage's
// metadata file, when one exists.
func (p *Pipeline) updateMetadata(report *QualityReport) error {
	path := p.config.Paths.Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return err
	}

	passed := report.Passed()
	metadata.ValidationPassed = &passed
	metadata.FinalExamples = report.ExamplesAfterValidation
	return writeJSONFile(path, &metadata)
}
