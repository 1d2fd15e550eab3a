// Package pipeline submits the usage query batch for an account and polls
// every submitted query until it completes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/metrics"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
	"github.com/j-veylop/tokenflex-dashboard/internal/upstream"
)

// ErrNoResults means no query of the batch produced a completed result.
var ErrNoResults = errors.New("no data available for the usecases")

// Batch outcome labels.
const (
	outcomeComplete  = "complete"
	outcomeTruncated = "truncated"
	outcomeTimedOut  = "timed_out"
	outcomeEmpty     = "empty"
	outcomeCancelled = "cancelled"
)

// Querier is the upstream surface the pipeline needs.
type Querier interface {
	SubmitQuery(ctx context.Context, token, accountID string, spec models.QuerySpec) (models.SubmittedQuery, error)
	GetQuery(ctx context.Context, token string, q models.SubmittedQuery) (models.QueryResult, error)
}

// PollPolicy bounds the polling loop. The zero value polls without delay
// and without limit.
type PollPolicy struct {
	// Interval is the pause between two polls of the same query.
	Interval time.Duration
	// MaxAttempts caps polls per query; 0 means unbounded.
	MaxAttempts int
	// Timeout caps the whole collection phase; 0 means none.
	Timeout time.Duration
}

// Config configures a Pipeline.
type Config struct {
	Clock   quartz.Clock
	Metrics *metrics.Metrics
	// Specs defaults to models.DefaultQuerySpecs.
	Specs []models.QuerySpec
	Poll  PollPolicy
}

// Pipeline runs submit and collect cycles. It holds no per-run state, so a
// single instance serves concurrent requests.
type Pipeline struct {
	querier Querier
	clock   quartz.Clock
	metrics *metrics.Metrics
	specs   []models.QuerySpec
	poll    PollPolicy
}

// New creates a Pipeline.
func New(querier Querier, cfg Config) *Pipeline {
	p := &Pipeline{
		querier: querier,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		specs:   cfg.Specs,
		poll:    cfg.Poll,
	}
	if p.clock == nil {
		p.clock = quartz.NewReal()
	}
	if len(p.specs) == 0 {
		p.specs = models.DefaultQuerySpecs()
	}
	return p
}

// Specs returns a copy of the batch definition.
func (p *Pipeline) Specs() []models.QuerySpec {
	specs := make([]models.QuerySpec, len(p.specs))
	for i, s := range p.specs {
		specs[i] = s.Clone()
	}
	return specs
}

// SubmitBatch submits specs in order. The first failed submission stops the
// batch: the queries obtained so far are returned together with the error
// that interrupted it.
func (p *Pipeline) SubmitBatch(ctx context.Context, token, accountID string, specs []models.QuerySpec) ([]models.SubmittedQuery, error) {
	submitted := make([]models.SubmittedQuery, 0, len(specs))

	for i, spec := range specs {
		logger.Info("requesting usecase", "account", accountID, "usecase", i+1)

		q, err := p.querier.SubmitQuery(ctx, token, accountID, spec)
		if err != nil {
			logger.Error("skipping remaining usecases", "account", accountID, "usecase", i+1, "error", err)
			return submitted, fmt.Errorf("usecase %d: %w", i+1, err)
		}
		submitted = append(submitted, q)
	}

	return submitted, nil
}

// CollectResults polls each query in order until it reports DONE. A
// non-done status or a failed poll repeats the poll for the same query.
// When the poll policy is exceeded the results gathered so far are
// returned along with an error wrapping upstream.ErrTimedOut.
func (p *Pipeline) CollectResults(ctx context.Context, token string, submitted []models.SubmittedQuery) (*models.UsageBatch, error) {
	batch := &models.UsageBatch{
		Results:   make([]models.QueryResult, 0, len(submitted)),
		Submitted: len(submitted),
	}
	if len(submitted) > 0 {
		batch.AccountID = submitted[0].AccountID
	}

	start := p.clock.Now()
	for _, q := range submitted {
		result, err := p.awaitDone(ctx, token, q, start)
		if err != nil {
			return batch, err
		}
		batch.Results = append(batch.Results, result)
	}

	return batch, nil
}

func (p *Pipeline) awaitDone(ctx context.Context, token string, q models.SubmittedQuery, start time.Time) (models.QueryResult, error) {
	log := logger.With("account", q.AccountID, "queryId", q.ID)
	log.Info("fetching data for query")

	for attempt := 1; ; attempt++ {
		result, err := p.querier.GetQuery(ctx, token, q)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.QueryResult{}, ctxErr
			}
			p.metrics.ObservePoll("error")
			log.Error("error fetching data for query", "attempt", attempt, "error", err)

		case result.Status.IsDone():
			p.metrics.ObservePoll(string(models.StatusDone))
			log.Info("data fetched for query", "attempt", attempt, "rows", len(result.Result))
			return result, nil

		default:
			p.metrics.ObservePoll(string(result.Status))
			log.Info("query not complete, retrying", "status", result.Status, "attempt", attempt)
		}

		if p.poll.MaxAttempts > 0 && attempt >= p.poll.MaxAttempts {
			return models.QueryResult{}, fmt.Errorf("%w: query %s not done after %d polls", upstream.ErrTimedOut, q.ID, attempt)
		}
		if p.poll.Timeout > 0 && p.clock.Since(start) >= p.poll.Timeout {
			return models.QueryResult{}, fmt.Errorf("%w: query %s not done within %s", upstream.ErrTimedOut, q.ID, p.poll.Timeout)
		}
		if err := p.pause(ctx); err != nil {
			return models.QueryResult{}, err
		}
	}
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.poll.Interval <= 0 {
		return ctx.Err()
	}

	timer := p.clock.NewTimer(p.poll.Interval, "pipeline", "poll")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run submits the configured batch for accountID and collects its results.
//
// A truncated submission still collects what was submitted. A poll timeout
// keeps the results gathered before it; only when nothing was gathered is
// the timeout returned. An empty batch yields ErrNoResults.
func (p *Pipeline) Run(ctx context.Context, token, accountID string) (*models.UsageBatch, error) {
	start := p.clock.Now()

	submitted, submitErr := p.SubmitBatch(ctx, token, accountID, p.specs)
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.metrics.ObserveBatch(outcomeCancelled, p.clock.Since(start))
		return nil, ctxErr
	}

	batch, err := p.CollectResults(ctx, token, submitted)
	batch.AccountID = accountID
	batch.FetchedAt = p.clock.Now()

	elapsed := p.clock.Since(start)
	switch {
	case err != nil && !errors.Is(err, upstream.ErrTimedOut):
		p.metrics.ObserveBatch(outcomeCancelled, elapsed)
		return nil, err

	case err != nil && batch.Len() == 0:
		p.metrics.ObserveBatch(outcomeTimedOut, elapsed)
		return batch, err

	case batch.Len() == 0:
		p.metrics.ObserveBatch(outcomeEmpty, elapsed)
		if submitErr != nil {
			return batch, fmt.Errorf("%w: %w", ErrNoResults, submitErr)
		}
		return batch, ErrNoResults

	case err != nil:
		logger.Warn("returning partial batch after poll timeout", "account", accountID,
			"results", batch.Len(), "submitted", batch.Submitted, "error", err)
		p.metrics.ObserveBatch(outcomeTimedOut, elapsed)

	case submitErr != nil:
		p.metrics.ObserveBatch(outcomeTruncated, elapsed)

	default:
		p.metrics.ObserveBatch(outcomeComplete, elapsed)
	}

	logger.Info("collected usecase data", "account", accountID, "results", batch.Len(),
		"submitted", batch.Submitted, "elapsed", elapsed)
	return batch, nil
}
