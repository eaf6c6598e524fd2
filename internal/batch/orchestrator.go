package batch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/audit-cli/internal/model"
)

// AnalyzeFunc runs one URL through the full pipeline.
type AnalyzeFunc func(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)

// Orchestrator processes batch items sequentially. One item is in flight
// at a time; an explicit inter-item pause keeps the pressure on target
// sites and AI providers bounded.
type Orchestrator struct {
	analyze     AnalyzeFunc
	maxAttempts int
	backoff     []time.Duration
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator. backoff is the explicit wait table indexed
// by attempt number; the last entry repeats if attempts exceed it.
func New(analyze AnalyzeFunc, maxAttempts int, backoff []time.Duration, itemPause time.Duration) *Orchestrator {
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	if len(backoff) == 0 {
		backoff = []time.Duration{5 * time.Second, 15 * time.Second, 45 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if itemPause > 0 {
		limiter = rate.NewLimiter(rate.Every(itemPause), 1)
	}

	return &Orchestrator{
		analyze:     analyze,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		limiter:     limiter,
		sleep:       sleepCtx,
	}
}

// Run processes every item to a terminal state. Items are mutated in
// place; the summary aggregates the outcome. Cancellation stops between
// attempts, leaving unprocessed items pending.
func (o *Orchestrator) Run(ctx context.Context, items []*Item) Summary {
	start := time.Now()

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if err := o.limiter.Wait(ctx); err != nil {
			break
		}
		o.runItem(ctx, item)
	}

	summary := Summary{Total: len(items), Duration: time.Since(start)}
	for _, item := range items {
		switch item.Status {
		case StatusSuccess:
			summary.Succeeded++
			if item.Result != nil {
				summary.TotalCost += item.Result.Cost.TotalCost
			}
		case StatusPermanentlyFailed:
			summary.Failed++
		case StatusExhausted:
			summary.Exhausted++
		}
	}
	return summary
}

// runItem drives one item through the state machine until terminal.
func (o *Orchestrator) runItem(ctx context.Context, item *Item) {
	item.Status = StatusPending

	for {
		item.Status = StatusInFlight
		item.Retry.Attempts++

		result, err := o.analyze(ctx, item.Request)
		if err == nil {
			item.Status = StatusSuccess
			item.Result = result
			return
		}

		item.Retry.LastError = err.Error()
		item.Retry.Class = Classify(err)

		if item.Retry.Class == ClassPermanent {
			item.Status = StatusPermanentlyFailed
			zap.L().Warn("batch: permanent failure, not retrying",
				zap.String("url", item.Request.URL),
				zap.Int("attempts", item.Retry.Attempts),
				zap.Error(err),
			)
			return
		}

		if item.Retry.Attempts >= o.maxAttempts {
			item.Status = StatusExhausted
			zap.L().Warn("batch: retries exhausted",
				zap.String("url", item.Request.URL),
				zap.Int("attempts", item.Retry.Attempts),
				zap.Error(err),
			)
			return
		}

		wait := o.backoffFor(item.Retry.Attempts)
		item.Status = StatusRetryWait
		item.Retry.NextEligible = time.Now().Add(wait)
		zap.L().Info("batch: transient failure, backing off",
			zap.String("url", item.Request.URL),
			zap.Int("attempt", item.Retry.Attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := o.sleep(ctx, wait); err != nil {
			return
		}
	}
}

// backoffFor returns the wait before the given attempt's retry. Attempt
// numbers start at 1; the table's last entry repeats.
func (o *Orchestrator) backoffFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(o.backoff) {
		idx = len(o.backoff) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return o.backoff[idx]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
