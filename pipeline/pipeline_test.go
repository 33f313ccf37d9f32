package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/ai/mock"
	"github.com/nitin-atom/finetuning-customer-support/config"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
	badgerstore "github.com/nitin-atom/finetuning-customer-support/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	pipeline *Pipeline
	articles storage.ArticleRepository
	pairs    storage.QAPairRepository
	items    storage.WorkItemRepository
	provider *mock.MockProvider
	config   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	articles, err := badgerstore.NewArticleRepository(backend)
	require.NoError(t, err)
	pairs, err := badgerstore.NewQAPairRepository(backend)
	require.NoError(t, err)
	items, err := badgerstore.NewWorkItemRepository(backend)
	require.NoError(t, err)
	checkpoints := badgerstore.NewCheckpointRepository(backend)
	t.Cleanup(func() {
		items.Close()
		pairs.Close()
		articles.Close()
	})

	provider := mock.NewMockProvider()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Orchestrator.MaxAttempts = 3
	cfg.Paths.RawArticles = filepath.Join(dir, "articles.json")
	cfg.Paths.TrainingData = filepath.Join(dir, "training_data.jsonl")
	cfg.Paths.FinalTrainingData = filepath.Join(dir, "final_training_data.jsonl")
	cfg.Paths.Metadata = filepath.Join(dir, "metadata.json")
	cfg.Paths.QualityReport = filepath.Join(dir, "quality_report.json")
	require.NoError(t, cfg.Validate())

	return &testEnv{
		pipeline: New(articles, pairs, items, checkpoints, provider, cfg, nil),
		articles: articles,
		pairs:    pairs,
		items:    items,
		provider: provider.(*mock.MockProvider),
		config:   cfg,
	}
}

func (e *testEnv) seedArticle(t *testing.T, id, collection, body string) {
	t.Helper()
	require.NoError(t, e.articles.PutArticles(context.Background(), &core.Article{
		Id:         core.ID(id),
		Title:      "Article " + id,
		Collection: collection,
		Body:       body,
		PlainText:  body,
	}))
}

func TestIngest(t *testing.T) {
	env := newTestEnv(t)

	entries := []map[string]any{
		{
			"article_id": "getting-started",
			"title":      "Getting Started",
			"collection": "Basics",
			"url":        "https://help.example.com/getting-started",
			"content":    map[string]string{"markdown": "# Welcome", "plain_text": "Welcome"},
		},
		{
			"article_id": "",
			"title":      "No ID",
			"content":    map[string]string{"markdown": "body"},
		},
		{
			"article_id": "empty-body",
			"title":      "Empty",
			"content":    map[string]string{"markdown": "   "},
		},
		{
			"article_id": "getting-started",
			"title":      "Duplicate",
			"content":    map[string]string{"markdown": "other"},
		},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.config.Paths.RawArticles, data, 0o644))

	summary, err := env.pipeline.Ingest(context.Background(), env.config.Paths.RawArticles)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Read)
	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, 3, summary.Skipped)

	article, err := env.articles.GetArticle(context.Background(), "getting-started")
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", article.Title, "first occurrence wins")
	assert.Equal(t, "# Welcome", article.Body)
}

func TestRunQuestions_Sync(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "payouts", "Billing", "Payouts are sent monthly with a $25 minimum.")

	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, spec ai.RequestSpec) (string, error) {
		assert.Contains(t, prompt, "Article payouts")
		return `[{"question":"When are payouts sent?","question_type":"factual"},{"question":"What is the minimum payout?","question_type":"pricing"}]`, nil
	}

	summary, err := env.pipeline.RunQuestions(context.Background(), RunOptions{Sync: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)

	pairs, err := env.pairs.GetAllQAPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, core.QAPairID("payouts", 0), pairs[0].Id)
	assert.Equal(t, "When are payouts sent?", pairs[0].Question)
	assert.Equal(t, "Billing", pairs[0].Collection)
	assert.Equal(t, "pricing", pairs[1].QuestionType)
	assert.Empty(t, pairs[0].Answer)
}

func TestRunQuestions_Batch(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "a1", "Basics", "Body one.")
	env.seedArticle(t, "a2", "Basics", "Body two.")

	client := env.provider.GetMockBatchClient()
	client.BatchResultsFunc = func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
		return map[core.ID]ai.Result{
			"a1": {Content: `[{"question":"What does one do?","question_type":"factual"}]`},
			"a2": {Content: `[{"question":"What does two do?","question_type":"factual"}]`},
		}, nil
	}

	summary, err := env.pipeline.RunQuestions(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, client.SubmitCount())

	pairs, err := env.pairs.GetAllQAPairs(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestRunAnswers_Sync(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "payouts", "Billing", "Payouts are sent monthly with a $25 minimum.")

	ctx := context.Background()
	require.NoError(t, env.pairs.PutQAPairs(ctx,
		&core.QAPair{
			Id:        core.QAPairID("payouts", 0),
			ArticleId: "payouts",
			Question:  "When are payouts sent?",
		},
		&core.QAPair{
			Id:        core.QAPairID("payouts", 1),
			ArticleId: "payouts",
			Question:  "What is the minimum payout?",
			Answer:    "already answered",
		},
	))

	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, spec ai.RequestSpec) (string, error) {
		assert.Contains(t, prompt, "When are payouts sent?")
		return "Payouts are sent monthly.\n", nil
	}

	summary, err := env.pipeline.RunAnswers(ctx, RunOptions{Sync: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total, "answered pairs are not reseeded")
	assert.Equal(t, 1, summary.Completed)

	pair, err := env.pairs.GetQAPair(ctx, core.QAPairID("payouts", 0))
	require.NoError(t, err)
	assert.Equal(t, "Payouts are sent monthly.", pair.Answer, "answer is trimmed")
}

func TestSeedWorkItems_FreshClearsStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale := []*core.WorkItem{
		{Id: "old-1", Status: core.StatusCompleted, Result: "x"},
		{Id: "old-2", Status: core.StatusFailed, Attempts: 3},
	}
	require.NoError(t, env.items.UpsertWorkItems(ctx, core.StageQuestions, stale...))

	seeds := []*core.WorkItem{
		{Id: "old-1", Status: core.StatusPending},
		{Id: "new-1", Status: core.StatusPending},
	}
	require.NoError(t, env.pipeline.seedWorkItems(ctx, core.StageQuestions, seeds, false))

	all, err := env.items.GetAllWorkItems(ctx, core.StageQuestions)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, item := range all {
		assert.Equal(t, core.StatusPending, item.Status)
		assert.Equal(t, 0, item.Attempts)
	}
}

func TestSeedWorkItems_ResumeKeepsStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	existing := []*core.WorkItem{
		{Id: "done", Status: core.StatusCompleted, Result: "kept"},
		{Id: "pending", Status: core.StatusPending, Attempts: 1},
	}
	require.NoError(t, env.items.UpsertWorkItems(ctx, core.StageQuestions, existing...))

	seeds := []*core.WorkItem{
		{Id: "done", Status: core.StatusPending},
		{Id: "pending", Status: core.StatusPending},
		{Id: "added", Status: core.StatusPending},
	}
	require.NoError(t, env.pipeline.seedWorkItems(ctx, core.StageQuestions, seeds, true))

	all, err := env.items.GetAllWorkItems(ctx, core.StageQuestions)
	require.NoError(t, err)
	require.Len(t, all, 3)

	done, err := env.items.GetWorkItem(ctx, core.StageQuestions, "done")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, done.Status, "resume keeps resolved items")
	assert.Equal(t, "kept", done.Result)

	pending, err := env.items.GetWorkItem(ctx, core.StageQuestions, "pending")
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Attempts, "resume keeps attempt counts")
}

func TestFormatAndCheck(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "payouts", "Billing", "Payouts are sent monthly with a $25 minimum and 15% commission.")

	ctx := context.Background()
	require.NoError(t, env.pairs.PutQAPairs(ctx,
		&core.QAPair{
			Id:         core.QAPairID("payouts", 0),
			ArticleId:  "payouts",
			Collection: "Billing",
			Question:   "When are payouts sent out?",
			Answer:     "Payouts are sent monthly once you reach the $25 minimum.",
		},
		&core.QAPair{
			Id:         core.QAPairID("payouts", 1),
			ArticleId:  "payouts",
			Collection: "Billing",
			Question:   "What commission does the platform take?",
			Answer:     "The platform takes a 15% commission on all sales you make.",
		},
		&core.QAPair{
			Id:        core.QAPairID("payouts", 2),
			ArticleId: "payouts",
			Question:  "Unanswered question here?",
		},
	))

	formatSummary, err := env.pipeline.Format(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, formatSummary.TotalExamples)
	assert.Equal(t, 1, formatSummary.Unanswered)
	assert.Equal(t, 1, formatSummary.Metadata.SourceArticles)
	require.Len(t, formatSummary.Metadata.CollectionsCovered, 1)
	assert.Equal(t, "Billing", formatSummary.Metadata.CollectionsCovered[0].Name)
	assert.Nil(t, formatSummary.Metadata.ValidationPassed)

	// Every line of the training file must pass schema validation.
	data, err := os.ReadFile(env.config.Paths.TrainingData)
	require.NoError(t, err)
	lines := splitLines(string(data))
	require.Len(t, lines, 2)
	for _, line := range lines {
		require.NoError(t, core.ValidateTrainingLine(line))
	}

	report, err := env.pipeline.Check(ctx)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, 2, report.TotalExamplesGenerated)
	assert.Equal(t, 2, report.ExamplesAfterValidation)
	assert.Equal(t, 0, report.AutomatedChecks.JSONValidity.Failed)

	// Final file and quality report written.
	_, err = os.Stat(env.config.Paths.FinalTrainingData)
	require.NoError(t, err)
	_, err = os.Stat(env.config.Paths.QualityReport)
	require.NoError(t, err)

	// Metadata updated with the verdict.
	metaData, err := os.ReadFile(env.config.Paths.Metadata)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(metaData, &meta))
	require.NotNil(t, meta.ValidationPassed)
	assert.True(t, *meta.ValidationPassed)
	assert.Equal(t, 2, meta.FinalExamples)
}

func TestCheck_RemovesDuplicatesAndBadLengths(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "plans", "Basics", "You can switch plans at any time from the settings page.")

	ctx := context.Background()
	require.NoError(t, env.pairs.PutQAPairs(ctx,
		&core.QAPair{
			Id:         core.QAPairID("plans", 0),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Can I switch plans at any time?",
			Answer:     "Yes, you can switch plans at any time from the settings page.",
		},
		&core.QAPair{
			Id:         core.QAPairID("plans", 1),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Can I switch plans at any time?",
			Answer:     "Yes, you can switch plans at any time from the settings page.",
		},
		&core.QAPair{
			Id:         core.QAPairID("plans", 2),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Short?",
			Answer:     "No.",
		},
	))

	_, err := env.pipeline.Format(ctx)
	require.NoError(t, err)

	report, err := env.pipeline.Check(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalExamplesGenerated)
	assert.Equal(t, 1, report.RemovalReasons.DuplicateExact)
	assert.Equal(t, 1, report.RemovalReasons.ContentLengthInvalid)
	assert.Equal(t, 1, report.ExamplesAfterValidation)
}

func TestCheck_NearDuplicateClusterCountedOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "plans", "Basics", "You can switch plans at any time from the settings page.")

	ctx := context.Background()
	// Three near-identical questions: three pairwise matches, two removals.
	require.NoError(t, env.pairs.PutQAPairs(ctx,
		&core.QAPair{
			Id:         core.QAPairID("plans", 0),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Can I switch my plan at any time?",
			Answer:     "Yes, you can switch plans whenever you like.",
		},
		&core.QAPair{
			Id:         core.QAPairID("plans", 1),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Can I switch my plan at any time!",
			Answer:     "Plans can be changed from the settings page.",
		},
		&core.QAPair{
			Id:         core.QAPairID("plans", 2),
			ArticleId:  "plans",
			Collection: "Basics",
			Question:   "Can I switch my plan at any time.",
			Answer:     "Switching is always available in settings.",
		},
	))

	_, err := env.pipeline.Format(ctx)
	require.NoError(t, err)

	report, err := env.pipeline.Check(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.RemovalReasons.DuplicateExact)
	assert.Equal(t, 2, report.RemovalReasons.DuplicateNear)
	assert.Equal(t, 1, report.ExamplesAfterValidation)
}

func TestCheck_FlagsMalformedQuestions(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, "payouts", "Billing", "Payouts are sent monthly once your balance clears the minimum.")

	ctx := context.Background()
	require.NoError(t, env.pairs.PutQAPairs(ctx,
		&core.QAPair{
			Id:         core.QAPairID("payouts", 0),
			ArticleId:  "payouts",
			Collection: "Billing",
			Question:   "How do payouts work for sellers?",
			Answer:     "Payouts are sent monthly once your balance clears the minimum.",
		},
		&core.QAPair{
			Id:         core.QAPairID("payouts", 1),
			ArticleId:  "payouts",
			Collection: "Billing",
			Question:   "Tell me everything about the payout schedule",
			Answer:     "Payouts are sent out on a monthly schedule to sellers.",
		},
	))

	_, err := env.pipeline.Format(ctx)
	require.NoError(t, err)

	report, err := env.pipeline.Check(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.AutomatedChecks.QuestionFormat.Passed)
	assert.Equal(t, 1, report.AutomatedChecks.QuestionFormat.Failed)
	assert.Equal(t, 1, report.RemovalReasons.QuestionFormatInvalid)
	assert.Equal(t, 1, report.ExamplesAfterValidation)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
