package orchestrate

import (
	"fmt"
	"testing"

	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []*core.WorkItem {
	items := make([]*core.WorkItem, n)
	for i := range items {
		items[i] = &core.WorkItem{
			Id:     core.ID(fmt.Sprintf("item-%02d", i)),
			Status: core.StatusPending,
		}
	}
	return items
}

func TestPartition_SplitsInOrder(t *testing.T) {
	items := makeItems(12)

	batches := Partition(items, 5)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 5)
	assert.Len(t, batches[1], 5)
	assert.Len(t, batches[2], 2)

	// Input order preserved across the batch boundary.
	assert.Equal(t, core.ID("item-04"), batches[0][4].Id)
	assert.Equal(t, core.ID("item-05"), batches[1][0].Id)
	assert.Equal(t, core.ID("item-11"), batches[2][1].Id)
}

func TestPartition_SingleBatch(t *testing.T) {
	items := makeItems(3)

	batches := Partition(items, 10)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestPartition_Empty(t *testing.T) {
	assert.Nil(t, Partition(nil, 5))
	assert.Nil(t, Partition(makeItems(3), 0))
}

func TestPartition_Deterministic(t *testing.T) {
	items := makeItems(17)

	first := Partition(items, 4)
	second := Partition(items, 4)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, len(first[i]), len(second[i]))
		for j := range first[i] {
			assert.Equal(t, first[i][j].Id, second[i][j].Id)
		}
	}
}
