package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactDuplicates(t *testing.T) {
	pairs := []*QAPair{
		{Question: "How do payouts work?", Answer: "Monthly via bank transfer."},
		{Question: "how do payouts work?  ", Answer: "MONTHLY VIA BANK TRANSFER."},
		{Question: "What is the commission rate?", Answer: "15% on all sales."},
	}

	dupes := ExactDuplicates(pairs)
	require.Len(t, dupes, 1)
	assert.Equal(t, 1, dupes[0], "first occurrence is kept, later index flagged")
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("same", "same"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abcd", "wxyz"))

	// One character differs out of twenty.
	sim := Similarity("how do payouts work.", "how do payouts work?")
	assert.InDelta(t, 0.95, sim, 0.001)
}

func TestNearDuplicates(t *testing.T) {
	pairs := []*QAPair{
		{Question: "How do I change my commission rate?"},
		{Question: "How do I change my commission rate"},
		{Question: "Where can I see my payout history?"},
	}

	dupes := NearDuplicates(pairs, 0.95)
	require.Len(t, dupes, 1)
	assert.Equal(t, [2]int{0, 1}, dupes[0])
}

func TestDeduplicate(t *testing.T) {
	pairs := []*QAPair{
		{Id: "a_q0", Question: "How do payouts work?", Answer: "Monthly."},
		{Id: "a_q1", Question: "How do payouts work?", Answer: "Monthly."},
		{Id: "b_q0", Question: "How do payouts work!?", Answer: "Every month."},
		{Id: "c_q0", Question: "What is the commission rate?", Answer: "15% on all sales."},
	}

	deduped, stats := Deduplicate(pairs, 0.9)

	assert.Equal(t, 4, stats.OriginalCount)
	assert.Equal(t, 1, stats.ExactRemoved)
	assert.Equal(t, 1, stats.NearRemoved)
	assert.Equal(t, 2, stats.FinalCount)

	require.Len(t, deduped, 2)
	assert.Equal(t, ID("a_q0"), deduped[0].Id, "input order preserved")
	assert.Equal(t, ID("c_q0"), deduped[1].Id)
}

func TestDeduplicate_NearClusterCountedPerRemoval(t *testing.T) {
	// Three near-identical questions with distinct answers: three (i, j)
	// matches, but only two pairs actually removed.
	pairs := []*QAPair{
		{Id: "a_q0", Question: "How do monthly payouts work?", Answer: "Monthly via bank transfer."},
		{Id: "b_q0", Question: "How do monthly payouts work!", Answer: "Every month to your bank."},
		{Id: "c_q0", Question: "How do monthly payouts work.", Answer: "On the first of the month."},
	}

	deduped, stats := Deduplicate(pairs, 0.9)

	assert.Equal(t, 0, stats.ExactRemoved)
	assert.Equal(t, 2, stats.NearRemoved)
	assert.Equal(t, 1, stats.FinalCount)
	require.Len(t, deduped, 1)
	assert.Equal(t, ID("a_q0"), deduped[0].Id)
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	pairs := []*QAPair{
		{Question: "How do payouts work?", Answer: "Monthly."},
		{Question: "What is the commission rate?", Answer: "15%."},
	}

	deduped, stats := Deduplicate(pairs, 0.95)
	assert.Len(t, deduped, 2)
	assert.Equal(t, 0, stats.ExactRemoved)
	assert.Equal(t, 0, stats.NearRemoved)
}
