package batch

import (
	"time"

	"github.com/sells-group/audit-cli/internal/model"
)

// ItemStatus is the per-item state machine position.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusInFlight  ItemStatus = "in_flight"
	StatusSuccess   ItemStatus = "success"
	StatusRetryWait ItemStatus = "retry_wait"
	// StatusPermanentlyFailed means a permanent error ended the item.
	StatusPermanentlyFailed ItemStatus = "permanently_failed"
	// StatusExhausted means transient errors consumed every attempt.
	// Distinct from a permanent failure: the item might succeed later.
	StatusExhausted ItemStatus = "exhausted"
)

// Terminal reports whether the status ends the item's lifecycle.
func (s ItemStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusPermanentlyFailed || s == StatusExhausted
}

// RetryState tracks one item's attempts. Created at first attempt,
// mutated on each retry, discarded at a terminal state.
type RetryState struct {
	Attempts     int        `json:"attempts"`
	LastError    string     `json:"last_error,omitempty"`
	Class        ErrorClass `json:"class,omitempty"`
	NextEligible time.Time  `json:"next_eligible,omitempty"`
}

// Item is one batch entry: the request plus its lifecycle state.
type Item struct {
	Request model.AnalysisRequest `json:"request"`
	Status  ItemStatus            `json:"status"`
	Retry   RetryState            `json:"retry"`
	Result  *model.AnalysisResult `json:"result,omitempty"`
}

// Summary aggregates a finished batch.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Exhausted int           `json:"exhausted"`
	TotalCost float64       `json:"total_cost"`
	Duration  time.Duration `json:"duration"`
}
