package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// Key prefixes for different data types
const (
	articleRecordPrefix  = "artrec"
	articleOrderPrefix   = "artord"
	articleSeq           = "artseq"
	qaPairRecordPrefix   = "qarec"
	qaPairOrderPrefix    = "qaord"
	qaPairSeq            = "qaseq"
	workItemRecordPrefix = "wirec"
	workItemOrderPrefix  = "wiord"
	workItemSeqPrefix    = "wiseq"
	checkpointPrefix     = "ckpt"
)

// makeArticleKey generates a key for an article by ID.
func makeArticleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", articleRecordPrefix, id))
}

// makeQAPairKey generates a key for a Q&A pair by ID.
func makeQAPairKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", qaPairRecordPrefix, id))
}

// makeWorkItemKey generates a key for a work item by stage and ID.
func makeWorkItemKey(stage core.Stage, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", workItemRecordPrefix, stage, id))
}

// makeCheckpointKey generates the key for a stage's checkpoint.
func makeCheckpointKey(stage core.Stage) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, stage))
}

// makeOrderKey generates a composite key for an insertion-order index.
// Format: prefix:seq. The sequence number is written in BigEndian order so
// lexicographic iteration returns records in insertion order.
func makeOrderKey(prefix string, seq uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// articleOrderKey generates the insertion-order key for an article.
func articleOrderKey(seq uint64) []byte {
	return makeOrderKey(articleOrderPrefix, seq)
}

// qaPairOrderKey generates the insertion-order key for a Q&A pair.
func qaPairOrderKey(seq uint64) []byte {
	return makeOrderKey(qaPairOrderPrefix, seq)
}

// workItemOrderKey generates the insertion-order key for a stage's work item.
func workItemOrderKey(stage core.Stage, seq uint64) []byte {
	return makeOrderKey(fmt.Sprintf("%s:%s", workItemOrderPrefix, stage), seq)
}

// workItemOrderScanPrefix is the iteration prefix for a stage's order index.
func workItemOrderScanPrefix(stage core.Stage) []byte {
	return []byte(fmt.Sprintf("%s:%s:", workItemOrderPrefix, stage))
}

// workItemSeqName is the sequence name for a stage's work items.
func workItemSeqName(stage core.Stage) string {
	return fmt.Sprintf("%s:%s", workItemSeqPrefix, stage)
}
