// Package expiration implements the options expiration engine: at contract
// expiration it decides, per position, whether the option expires
// worthless, is exercised, or is assigned, and applies the matching cash
// and inventory adjustments to a private copy of the account.
package expiration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mscarn/paperbroker/internal/assets"
	"github.com/mscarn/paperbroker/internal/models"
	"github.com/mscarn/paperbroker/internal/quotes"
)

const defaultQuoteConcurrency = 4

// ErrNilAccount is returned for a nil account or nil position collection.
var ErrNilAccount = errors.New("expiration: account and position collection must be non-nil")

// Config tunes engine behavior.
type Config struct {
	// QuoteConcurrency bounds parallel quote prefetch across distinct
	// underlyings. Processing itself stays sequential and single-writer.
	QuoteConcurrency int
	Logger           *logrus.Logger
}

// Engine processes option expirations for one account at a time. It is
// stateless between calls: the processing date is an explicit argument and
// each call owns a private deep copy of the account, so concurrent
// invocations are safe.
type Engine struct {
	provider         quotes.Provider
	logger           *logrus.Logger
	quoteConcurrency int
}

// NewEngine creates an expiration engine over the given quote provider.
func NewEngine(provider quotes.Provider, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	concurrency := cfg.QuoteConcurrency
	if concurrency <= 0 {
		concurrency = defaultQuoteConcurrency
	}
	return &Engine{
		provider:         provider,
		logger:           logger,
		quoteConcurrency: concurrency,
	}
}

// ProcessAccountExpirations runs one expiration sweep over the account as
// of processingDate and returns the aggregated result. The caller's
// account is never mutated; the result's NewPositions is the post-sweep
// position list for the service layer to persist.
//
// An error return means invalid top-level input only. Quote failures,
// missing prices, and unexpected data are isolated per underlying and
// surface in the result's Errors.
func (e *Engine) ProcessAccountExpirations(
	ctx context.Context, account *models.Account, processingDate time.Time,
) (*models.ExpirationResult, error) {
	if account == nil || account.Positions == nil {
		return nil, ErrNilAccount
	}

	work := account.Clone()
	result := &models.ExpirationResult{
		RunID:                uuid.New().String(),
		ProcessingDate:       processingDate.UTC().Truncate(24 * time.Hour),
		ExpiredPositions:     make([]models.Position, 0),
		Exercises:            make([]models.ExerciseEvent, 0),
		Assignments:          make([]models.AssignmentEvent, 0),
		WorthlessExpirations: make([]models.WorthlessEvent, 0),
		Warnings:             make([]string, 0),
		Errors:               make([]string, 0),
	}

	expired := findExpiredPositions(work.Positions, processingDate)
	if len(expired) == 0 {
		result.NewPositions = work.Positions
		return result, nil
	}

	groups := groupByUnderlying(expired)
	quoteResults := e.prefetchQuotes(ctx, groups)

	for _, grp := range groups {
		outcome := e.processUnderlying(work, grp, quoteResults[grp.underlying])
		mergeOutcome(result, outcome)
	}

	dropEmptyEquityRows(work)
	result.NewPositions = work.Positions
	result.CashImpact = work.CashBalance - account.CashBalance

	e.logger.WithFields(logrus.Fields{
		"run_id":      result.RunID,
		"expired":     len(result.ExpiredPositions),
		"exercises":   len(result.Exercises),
		"assignments": len(result.Assignments),
		"worthless":   len(result.WorthlessExpirations),
		"cash_impact": result.CashImpact,
		"errors":      len(result.Errors),
	}).Info("expiration sweep complete")

	return result, nil
}

type quoteResult struct {
	quote *quotes.Quote
	err   error
}

// prefetchQuotes fetches one quote per distinct underlying, concurrently
// up to the configured limit. Failures are captured per underlying, never
// propagated: a bad quote must not cancel the sibling lookups.
func (e *Engine) prefetchQuotes(ctx context.Context, groups []underlyingGroup) map[string]quoteResult {
	results := make([]quoteResult, len(groups))
	g := new(errgroup.Group)
	g.SetLimit(e.quoteConcurrency)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			q, err := e.provider.GetQuote(ctx, grp.underlying)
			results[i] = quoteResult{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	byUnderlying := make(map[string]quoteResult, len(groups))
	for i, grp := range groups {
		byUnderlying[grp.underlying] = results[i]
	}
	return byUnderlying
}

// underlyingOutcome is one underlying's isolated partial result, merged
// into the shared ExpirationResult by a single reducer.
type underlyingOutcome struct {
	expired     []models.Position
	exercises   []models.ExerciseEvent
	assignments []models.AssignmentEvent
	worthless   []models.WorthlessEvent
	warnings    []string
	errs        []string
}

// processUnderlying resolves every expired position for one underlying.
// Any failure, including a panic from unexpected data, is converted into
// an error entry on the outcome so the batch continues.
func (e *Engine) processUnderlying(
	work *models.Account, grp underlyingGroup, qr quoteResult,
) (out *underlyingOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = &underlyingOutcome{errs: []string{
				fmt.Sprintf("%s: processing failed: %v", grp.underlying, r),
			}}
		}
	}()

	out = &underlyingOutcome{}
	if qr.err != nil {
		out.errs = append(out.errs, fmt.Sprintf("%s: quote lookup failed: %v", grp.underlying, qr.err))
		return out
	}
	price, ok := qr.quote.Price()
	if !ok {
		out.errs = append(out.errs, fmt.Sprintf("%s: no price available", grp.underlying))
		return out
	}

	longShares, shortShares := equityTotals(work.Positions, grp.underlying)
	e.logger.WithFields(logrus.Fields{
		"underlying":   grp.underlying,
		"price":        price,
		"expired":      len(grp.positions),
		"long_shares":  longShares,
		"short_shares": shortShares,
	}).Debug("processing expired options for underlying")

	for _, pos := range grp.positions {
		snapshot := *pos
		po := resolvePosition(work, pos, price)
		if po.empty() {
			continue
		}
		out.expired = append(out.expired, snapshot)
		switch {
		case po.exercise != nil:
			out.exercises = append(out.exercises, *po.exercise)
		case po.assignment != nil:
			out.assignments = append(out.assignments, *po.assignment)
			if po.assignment.Warning != "" {
				out.warnings = append(out.warnings, po.assignment.Warning)
			}
		case po.worthless != nil:
			out.worthless = append(out.worthless, *po.worthless)
		}
	}
	return out
}

// mergeOutcome folds one underlying's partial result into the aggregate.
func mergeOutcome(result *models.ExpirationResult, out *underlyingOutcome) {
	result.ExpiredPositions = append(result.ExpiredPositions, out.expired...)
	result.Exercises = append(result.Exercises, out.exercises...)
	result.Assignments = append(result.Assignments, out.assignments...)
	result.WorthlessExpirations = append(result.WorthlessExpirations, out.worthless...)
	result.Warnings = append(result.Warnings, out.warnings...)
	result.Errors = append(result.Errors, out.errs...)
}

// dropEmptyEquityRows removes zero-quantity stock rows from the working
// copy. Zeroed option rows are kept so the caller can reconcile them
// against the expired snapshots.
func dropEmptyEquityRows(account *models.Account) {
	kept := account.Positions[:0]
	for _, p := range account.Positions {
		if p.Quantity == 0 && !assets.IsOption(p.Symbol) {
			continue
		}
		kept = append(kept, p)
	}
	account.Positions = kept
}
