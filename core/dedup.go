package core

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DedupStats summarizes a deduplication pass.
type DedupStats struct {
	OriginalCount int
	ExactRemoved  int
	NearRemoved   int
	FinalCount    int
}

// dedupKey normalizes a Q&A pair to a digest used for exact-duplicate
// detection.
func dedupKey(pair *QAPair) string {
	q := strings.ToLower(strings.TrimSpace(pair.Question))
	a := strings.ToLower(strings.TrimSpace(pair.Answer))
	return ContentDigest(q + "\x00" + a)
}

// ExactDuplicates returns the indices of pairs whose normalized question and
// answer both match an earlier pair. The first occurrence is always kept.
func ExactDuplicates(pairs []*QAPair) []int {
	seen := make(map[string]int, len(pairs))
	var duplicates []int

	for i, pair := range pairs {
		key := dedupKey(pair)
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, i)
		} else {
			seen[key] = i
		}
	}

	return duplicates
}

// Similarity returns a ratio in [0,1] of how alike two strings are, based on
// the Levenshtein distance of their diff. 1 means identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	return 1 - float64(distance)/float64(longest)
}

// QuestionSimilarity compares two pairs' questions after normalization.
func QuestionSimilarity(a, b *QAPair) float64 {
	qa := strings.ToLower(strings.TrimSpace(a.Question))
	qb := strings.ToLower(strings.TrimSpace(b.Question))
	return Similarity(qa, qb)
}

// NearDuplicates returns (i, j) index pairs, i < j, whose questions are at
// least threshold similar. The scan is O(n^2); callers with large datasets
// fan the comparisons out over a worker pool.
func NearDuplicates(pairs []*QAPair, threshold float64) [][2]int {
	var dupes [][2]int
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			if QuestionSimilarity(pairs[i], pairs[j]) >= threshold {
				dupes = append(dupes, [2]int{i, j})
			}
		}
	}
	return dupes
}

// Deduplicate removes exact duplicates, then near-duplicate questions above
// threshold (dropping the later member of each near pair), preserving input
// order. Returns the surviving pairs and removal stats.
func Deduplicate(pairs []*QAPair, threshold float64) ([]*QAPair, DedupStats) {
	stats := DedupStats{OriginalCount: len(pairs)}

	exact := ExactDuplicates(pairs)
	exactSet := make(map[int]bool, len(exact))
	for _, i := range exact {
		exactSet[i] = true
	}
	stats.ExactRemoved = len(exact)

	noExact := make([]*QAPair, 0, len(pairs)-len(exact))
	for i, pair := range pairs {
		if !exactSet[i] {
			noExact = append(noExact, pair)
		}
	}

	near := NearDuplicates(noExact, threshold)
	nearSet := make(map[int]bool, len(near))
	for _, ij := range near {
		nearSet[ij[1]] = true
	}
	// Count removed pairs, not (i, j) matches: one question similar to
	// several earlier ones is still a single removal.
	stats.NearRemoved = len(nearSet)

	deduped := make([]*QAPair, 0, len(noExact)-len(nearSet))
	for i, pair := range noExact {
		if !nearSet[i] {
			deduped = append(deduped, pair)
		}
	}

	stats.FinalCount = len(deduped)
	return deduped, stats
}
