package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a stable string identifier for domain entities. Article IDs come
// from the scraper (URL slugs), Q&A pair IDs are derived from the article ID
// and the question index.
type ID string

// QAPairID derives the identifier for the i-th question of an article.
// The same article and index always yield the same ID, which keeps
// resubmission and merge-back idempotent.
func QAPairID(articleID ID, index int) ID {
	return ID(fmt.Sprintf("%s_q%d", articleID, index))
}

// ContentDigest returns a short deterministic digest of text content using
// BLAKE2b hashing. Identical content produces identical digests, which makes
// it usable as an exact-duplicate key.
func ContentDigest(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Stage identifies a generation phase of the pipeline.
type Stage string

const (
	// StageQuestions generates candidate questions from articles.
	StageQuestions Stage = "questions"
	// StageAnswers generates answers for previously generated questions.
	StageAnswers Stage = "answers"
)

// WorkItemStatus is the lifecycle state of a single unit of generation work.
type WorkItemStatus int

const (
	// StatusPending means the item has not been completed and is eligible
	// for (re)submission.
	StatusPending WorkItemStatus = iota + 1
	// StatusSubmitted means the item is part of an in-flight provider batch.
	StatusSubmitted
	// StatusCompleted means a result has been merged for the item.
	StatusCompleted
	// StatusFailed means the item exhausted its attempt ceiling and is
	// excluded from further submission.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s WorkItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSubmitted:
		return "submitted"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// WorkItem is one unit of generation work: an article needing questions or a
// question needing an answer.
//
// Invariant: Result is non-empty iff Status == StatusCompleted.
type WorkItem struct {
	Id         ID
	Stage      Stage
	SourceText string // fully rendered prompt for the provider
	Status     WorkItemStatus
	Result     string
	BatchId    string // provider batch the item was last submitted in
	Attempts   int
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// BatchStatus is the lifecycle state of a provider batch.
type BatchStatus int

const (
	// BatchSubmitted means the batch was accepted by the provider.
	BatchSubmitted BatchStatus = iota + 1
	// BatchInProgress means the provider reports the batch as running.
	BatchInProgress
	// BatchCompleted means results are available for retrieval.
	BatchCompleted
	// BatchFailed means the provider reported a permanent failure.
	BatchFailed
	// BatchExpired means the batch timed out, either provider-side or
	// against the local wall-clock poll deadline.
	BatchExpired
)

// String returns the lowercase name of the status.
func (s BatchStatus) String() string {
	switch s {
	case BatchSubmitted:
		return "submitted"
	case BatchInProgress:
		return "in_progress"
	case BatchCompleted:
		return "completed"
	case BatchFailed:
		return "failed"
	case BatchExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the status is a terminal state.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed || s == BatchExpired
}

// Batch is a group of work items submitted together to the provider.
//
// Invariant: MemberIds is fixed at submission and never mutated; every
// member's BatchId matches this batch while the batch is non-terminal.
type Batch struct {
	BatchId     string // assigned by the provider
	MemberIds   []ID
	Status      BatchStatus
	SubmittedAt time.Time
}

// ItemState is the per-item slice of a checkpoint: enough to reconcile
// progress without duplicating result payloads already held by the
// repository.
type ItemState struct {
	Id       ID
	Status   WorkItemStatus
	Attempts int
}

// Checkpoint phases.
const (
	// PhaseRunning marks a stage with unresolved work.
	PhaseRunning = "running"
	// PhaseComplete marks a stage that finished a full pass.
	PhaseComplete = "complete"
)

// Checkpoint is a durable snapshot of a stage's progress: item states plus
// every known batch with its last provider-confirmed status. It mirrors
// orchestrator state for crash recovery and has no independent authority.
type Checkpoint struct {
	Stage     Stage
	Phase     string
	Items     []ItemState
	Batches   []Batch
	UpdatedAt time.Time
}

// Article is one scraped helpdesk article, the stage-1 work source.
type Article struct {
	Id          ID
	Title       string
	Collection  string
	Description string
	Body        string // markdown content used for prompting
	PlainText   string // plain text used for grounding checks
	Url         string
	InsertedAt  time.Time
}

// QAPair is a question generated from an article, later joined with its
// answer. A pair with an empty Answer is the input of the answer stage.
type QAPair struct {
	Id           ID
	ArticleId    ID
	Collection   string
	Question     string
	QuestionType string
	Answer       string
	InsertedAt   time.Time
	UpdatedAt    time.Time
}
