package orchestrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// CeilingExceededError reports work items that reached the failure ceiling
// during a run. The run itself completed; the listed items were excluded.
type CeilingExceededError struct {
	Stage core.Stage
	Ids   []core.ID
}

func (e *CeilingExceededError) Error() string {
	ids := make([]string, len(e.Ids))
	for i, id := range e.Ids {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%d work item(s) exceeded the attempt ceiling in stage %s: %s",
		len(e.Ids), e.Stage, strings.Join(ids, ", "))
}
