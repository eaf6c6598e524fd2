package cost

import (
	"sync"
	"time"
)

// Entry is one ledger line: a single network call's token usage, cost and
// wall-clock duration. Write-once, read-many.
type Entry struct {
	Stage        string        `json:"stage"`
	Model        string        `json:"model,omitempty"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Duration     time.Duration `json:"duration"`
}

// Ledger accumulates cost entries across a run. Appends are atomic; every
// stage writes to the same ledger, and it is read only after the run ends.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records one entry.
func (l *Ledger) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of all recorded entries in append order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Summary is the run total, derived from the entries.
type Summary struct {
	Entries      []Entry       `json:"entries"`
	TotalCost    float64       `json:"total_cost"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	CallTime     time.Duration `json:"call_time"`
}

// Summarize sums the ledger into a Summary.
func (l *Ledger) Summarize() Summary {
	entries := l.Entries()
	s := Summary{Entries: entries}
	for _, e := range entries {
		s.TotalCost += e.Cost
		s.InputTokens += e.InputTokens
		s.OutputTokens += e.OutputTokens
		s.CallTime += e.Duration
	}
	return s
}
