package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/ai/mock"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
	"github.com/nitin-atom/finetuning-customer-support/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		MaxBatchSize:        5,
		MaxAttempts:         3,
		PollBaseDelay:       time.Millisecond,
		PollMaxDelay:        5 * time.Millisecond,
		PollTimeout:         time.Second,
		RetryBaseDelay:      time.Millisecond,
		SyncCheckpointEvery: 2,
		ReportInterval:      100,
	}
}

func setupRepos(t *testing.T) (storage.WorkItemRepository, storage.CheckpointRepository) {
	t.Helper()

	itemRepo, cpRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		cpRepo.Close()
		itemRepo.Close()
		backend.Close()
	})
	return itemRepo, cpRepo
}

func seedPending(t *testing.T, items storage.WorkItemRepository, stage core.Stage, n int) {
	t.Helper()

	seeds := make([]*core.WorkItem, n)
	for i := range seeds {
		seeds[i] = &core.WorkItem{
			Id:         core.ID(fmt.Sprintf("item-%02d", i)),
			SourceText: fmt.Sprintf("prompt %d", i),
			Status:     core.StatusPending,
		}
	}
	require.NoError(t, items.UpsertWorkItems(context.Background(), stage, seeds...))
}

func TestOrchestrator_HappyPath(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 12)

	client := mock.NewMockBatchClient()
	var merged []core.ID
	merger := MergeFunc(func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
		for _, item := range items {
			merged = append(merged, item.Id)
		}
		return nil
	})

	o := NewOrchestrator(itemRepo, cpRepo, client, merger, testConfig(), nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Total)
	assert.Equal(t, 12, summary.Completed)
	assert.Equal(t, 0, summary.Pending)
	assert.Empty(t, summary.Failed)
	assert.NoError(t, summary.CeilingError())

	// 12 items at a batch size of 5 means three submissions.
	assert.Equal(t, 3, client.SubmitCount())
	assert.Len(t, merged, 12)

	all, err := itemRepo.GetAllWorkItems(context.Background(), core.StageQuestions)
	require.NoError(t, err)
	for _, item := range all {
		assert.Equal(t, core.StatusCompleted, item.Status)
		assert.Equal(t, "mock completion", item.Result)
		assert.Equal(t, 0, item.Attempts)
	}

	cp, err := cpRepo.LoadCheckpoint(context.Background(), core.StageQuestions)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, core.PhaseComplete, cp.Phase)
	assert.Empty(t, cp.Batches)
	assert.Len(t, cp.Items, 12)
}

func TestOrchestrator_SubmissionRejected(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 3)

	client := mock.NewMockBatchClient()
	var recorded []ai.Request
	calls := 0
	client.SubmitBatchFunc = func(ctx context.Context, requests []ai.Request, spec ai.RequestSpec) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("quota exceeded")
		}
		recorded = requests
		return "batch-ok", nil
	}
	client.BatchResultsFunc = func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
		results := make(map[core.ID]ai.Result)
		for _, req := range recorded {
			results[req.CustomID] = ai.Result{Content: "ok"}
		}
		return results, nil
	}

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, testConfig(), nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Completed)
	assert.Equal(t, 2, calls, "rejected batch is discarded, members re-batched once")

	// The rejection costs each member exactly one attempt.
	all, err := itemRepo.GetAllWorkItems(context.Background(), core.StageQuestions)
	require.NoError(t, err)
	for _, item := range all {
		assert.Equal(t, core.StatusCompleted, item.Status)
		assert.Equal(t, 1, item.Attempts)
	}
}

func TestOrchestrator_ProviderFailureHitsCeiling(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 2)

	client := mock.NewMockBatchClient()
	client.BatchStatusFunc = func(ctx context.Context, batchID string) (core.BatchStatus, error) {
		return core.BatchFailed, nil
	}

	cfg := testConfig()
	cfg.MaxAttempts = 2

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, cfg, nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Completed)
	assert.Equal(t, 0, summary.Pending)
	require.Len(t, summary.Failed, 2)
	assert.Equal(t, []core.ID{"item-00", "item-01"}, summary.Failed)

	err = summary.CeilingError()
	require.Error(t, err)
	var ceiling *CeilingExceededError
	require.ErrorAs(t, err, &ceiling)
	assert.Equal(t, core.StageQuestions, ceiling.Stage)

	all, err := itemRepo.GetAllWorkItems(context.Background(), core.StageQuestions)
	require.NoError(t, err)
	for _, item := range all {
		assert.Equal(t, core.StatusFailed, item.Status)
		assert.Equal(t, 2, item.Attempts)
	}
}

func TestOrchestrator_PollTimeoutCancelsBatch(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 1)

	client := mock.NewMockBatchClient()
	client.BatchStatusFunc = func(ctx context.Context, batchID string) (core.BatchStatus, error) {
		return core.BatchInProgress, nil
	}
	var cancelled []string
	client.CancelBatchFunc = func(ctx context.Context, batchID string) error {
		cancelled = append(cancelled, batchID)
		return nil
	}

	cfg := testConfig()
	cfg.MaxAttempts = 1
	cfg.PollTimeout = 10 * time.Millisecond

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, cfg, nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	require.Len(t, cancelled, 1, "timed-out batch should be cancelled remotely")
	require.Len(t, summary.Failed, 1)

	item, err := itemRepo.GetWorkItem(context.Background(), core.StageQuestions, "item-00")
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, item.Status)
	assert.Equal(t, 1, item.Attempts)
	assert.Empty(t, item.BatchId)
}

func TestOrchestrator_TransientPollErrorsDoNotAdvanceState(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 2)

	client := mock.NewMockBatchClient()
	polls := 0
	client.BatchStatusFunc = func(ctx context.Context, batchID string) (core.BatchStatus, error) {
		polls++
		if polls <= 2 {
			return 0, fmt.Errorf("%w: connection refused", ai.ErrTransientPoll)
		}
		return core.BatchCompleted, nil
	}

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, testConfig(), nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, polls, 3)
	assert.Equal(t, 2, summary.Completed)

	// Failed polls cost nothing; the batch resolved on the third try.
	all, err := itemRepo.GetAllWorkItems(context.Background(), core.StageQuestions)
	require.NoError(t, err)
	for _, item := range all {
		assert.Equal(t, 0, item.Attempts)
	}
}

func TestOrchestrator_PerItemResultFailures(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 3)

	client := mock.NewMockBatchClient()
	client.BatchResultsFunc = func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
		// item-01 never gets a result; item-02 always errors.
		return map[core.ID]ai.Result{
			"item-00": {Content: "fine"},
			"item-02": {Err: errors.New("content filter")},
		}, nil
	}

	cfg := testConfig()
	cfg.MaxAttempts = 1

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, cfg, nil)
	summary, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, []core.ID{"item-01", "item-02"}, summary.Failed)

	ok, err := itemRepo.GetWorkItem(context.Background(), core.StageQuestions, "item-00")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, ok.Status)
	assert.Equal(t, "fine", ok.Result)
}

func TestOrchestrator_ResumeReconcilesInFlightBatch(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	ctx := context.Background()

	// State left behind by a crashed run: two items in an in-flight batch.
	items := []*core.WorkItem{
		{Id: "a", SourceText: "p1", Status: core.StatusSubmitted, BatchId: "batch-old"},
		{Id: "b", SourceText: "p2", Status: core.StatusSubmitted, BatchId: "batch-old"},
	}
	require.NoError(t, itemRepo.UpsertWorkItems(ctx, core.StageAnswers, items...))
	require.NoError(t, cpRepo.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage: core.StageAnswers,
		Phase: core.PhaseRunning,
		Batches: []core.Batch{
			{BatchId: "batch-old", MemberIds: []core.ID{"a", "b"}, Status: core.BatchInProgress},
		},
	}))

	client := mock.NewMockBatchClient()
	client.BatchResultsFunc = func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
		require.Equal(t, "batch-old", batchID)
		return map[core.ID]ai.Result{
			"a": {Content: "answer a"},
			"b": {Content: "answer b"},
		}, nil
	}

	var merged []core.ID
	merger := MergeFunc(func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
		for _, item := range items {
			merged = append(merged, item.Id)
		}
		return nil
	})

	o := NewOrchestrator(itemRepo, cpRepo, client, merger, testConfig(), nil)
	summary, err := o.Run(ctx, core.StageAnswers, ai.RequestSpec{}, true)
	require.NoError(t, err)

	assert.Equal(t, 0, client.SubmitCount(), "reconciled batch must not be resubmitted")
	assert.Equal(t, 2, summary.Completed)
	assert.ElementsMatch(t, []core.ID{"a", "b"}, merged)
}

func TestOrchestrator_ResumeRecoversOrphanedSubmission(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	ctx := context.Background()

	// A crash between the submission write and the checkpoint write leaves
	// the item submitted to a batch the checkpoint has never heard of.
	require.NoError(t, itemRepo.UpsertWorkItems(ctx, core.StageQuestions, &core.WorkItem{
		Id:         "item-00",
		SourceText: "prompt 0",
		Status:     core.StatusSubmitted,
		BatchId:    "batch-lost",
	}))
	require.NoError(t, cpRepo.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage: core.StageQuestions,
		Phase: core.PhaseRunning,
		Items: []core.ItemState{{Id: "item-00", Status: core.StatusPending}},
	}))

	client := mock.NewMockBatchClient()

	o := NewOrchestrator(itemRepo, cpRepo, client, nil, testConfig(), nil)
	summary, err := o.Run(ctx, core.StageQuestions, ai.RequestSpec{}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, client.SubmitCount(), "orphaned item must be resubmitted")
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Pending)

	item, err := itemRepo.GetWorkItem(ctx, core.StageQuestions, "item-00")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, item.Status)
	assert.Equal(t, 0, item.Attempts, "the interrupted attempt is not counted")
}

func TestOrchestrator_ReplayedBatchSkipsResolvedMembers(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	ctx := context.Background()

	// A crash after merging "a" but before the batch went terminal: "a" is
	// already completed, "b" is still submitted.
	items := []*core.WorkItem{
		{Id: "a", Status: core.StatusCompleted, Result: "already merged", Attempts: 0},
		{Id: "b", Status: core.StatusSubmitted, BatchId: "batch-old"},
	}
	require.NoError(t, itemRepo.UpsertWorkItems(ctx, core.StageAnswers, items...))
	require.NoError(t, cpRepo.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage: core.StageAnswers,
		Phase: core.PhaseRunning,
		Batches: []core.Batch{
			{BatchId: "batch-old", MemberIds: []core.ID{"a", "b"}, Status: core.BatchInProgress},
		},
	}))

	client := mock.NewMockBatchClient()
	client.BatchResultsFunc = func(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
		return map[core.ID]ai.Result{
			"a": {Content: "replayed"},
			"b": {Content: "fresh"},
		}, nil
	}

	var merged []core.ID
	merger := MergeFunc(func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
		for _, item := range items {
			merged = append(merged, item.Id)
		}
		return nil
	})

	o := NewOrchestrator(itemRepo, cpRepo, client, merger, testConfig(), nil)
	_, err := o.Run(ctx, core.StageAnswers, ai.RequestSpec{}, true)
	require.NoError(t, err)

	assert.Equal(t, []core.ID{"b"}, merged, "already-resolved member must not be re-merged")

	a, err := itemRepo.GetWorkItem(ctx, core.StageAnswers, "a")
	require.NoError(t, err)
	assert.Equal(t, "already merged", a.Result, "resolved member untouched by replay")
	assert.Equal(t, 0, a.Attempts)
}

func TestOrchestrator_MergeFailureLeavesItemsSubmitted(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)
	seedPending(t, itemRepo, core.StageQuestions, 2)

	client := mock.NewMockBatchClient()
	merger := MergeFunc(func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
		return errors.New("db unavailable")
	})

	o := NewOrchestrator(itemRepo, cpRepo, client, merger, testConfig(), nil)
	_, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.Error(t, err)

	// Merge runs before completed statuses persist, so a failed merge leaves
	// no half-applied batch behind.
	all, getErr := itemRepo.GetAllWorkItems(context.Background(), core.StageQuestions)
	require.NoError(t, getErr)
	for _, item := range all {
		assert.Equal(t, core.StatusSubmitted, item.Status)
		assert.Empty(t, item.Result)
	}
}

func TestOrchestrator_RequiresMaxAttempts(t *testing.T) {
	itemRepo, cpRepo := setupRepos(t)

	cfg := testConfig()
	cfg.MaxAttempts = 0

	o := NewOrchestrator(itemRepo, cpRepo, mock.NewMockBatchClient(), nil, cfg, nil)
	_, err := o.Run(context.Background(), core.StageQuestions, ai.RequestSpec{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxAttempts")
}
