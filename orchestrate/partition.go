package orchestrate

import "github.com/nitin-atom/finetuning-customer-support/core"

// Partition splits work items into batches of at most maxSize, preserving
// the input order. Given the same pending set and maxSize, two runs produce
// identical partitions.
func Partition(items []*core.WorkItem, maxSize int) [][]*core.WorkItem {
	if len(items) == 0 || maxSize <= 0 {
		return nil
	}

	batches := make([][]*core.WorkItem, 0, (len(items)+maxSize-1)/maxSize)
	for start := 0; start < len(items); start += maxSize {
		end := start + maxSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
