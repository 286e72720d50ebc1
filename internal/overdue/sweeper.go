// internal/overdue/sweeper.go

// Package overdue implements the scheduled batch job that detects late
// loans and hands them to the notifier. The circulation service computes
// the late list; this package only groups recipients, composes the message
// and paces the dispatch.
package overdue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"libris/internal/circulation"
	"libris/internal/notify"
)

// DefaultThresholdDays is how long a loan may stay open before it counts
// as late.
const DefaultThresholdDays = 4

const defaultMessage = "You have overdue book loans. Please return the borrowed books to the library."

// Sweeper periodically collects late loans and notifies their customers.
type Sweeper struct {
	loans         circulation.Service
	notifier      notify.Notifier
	logger        *zap.Logger
	thresholdDays int
	limiter       *rate.Limiter
}

// NewSweeper creates a sweeper. thresholdDays falls back to
// DefaultThresholdDays when zero or negative. The limiter paces
// notification batches so a large backlog cannot flood the mail relay.
func NewSweeper(loans circulation.Service, notifier notify.Notifier, logger *zap.Logger, thresholdDays int) *Sweeper {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	return &Sweeper{
		loans:         loans,
		notifier:      notifier,
		logger:        logger,
		thresholdDays: thresholdDays,
		limiter:       rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Sweep runs one pass: fetch late loans, dedupe recipients, dispatch.
// A pass with nothing late is a no-op.
func (s *Sweeper) Sweep(ctx context.Context) error {
	late, err := s.loans.FindLateLoans(ctx, s.thresholdDays)
	if err != nil {
		return fmt.Errorf("failed to find late loans: %w", err)
	}
	if len(late) == 0 {
		s.logger.Debug("no late loans")
		return nil
	}

	recipients := collectRecipients(late)

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.notifier.NotifyLateLoans(ctx, defaultMessage, recipients); err != nil {
		return fmt.Errorf("failed to notify late loans: %w", err)
	}

	s.logger.Info("late loans notified",
		zap.Int("loans", len(late)),
		zap.Int("recipients", len(recipients)))

	return nil
}

// Run sweeps on the given interval until the context is canceled.
// Sweep failures are logged and the loop keeps going; the next tick gets
// another chance.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("overdue sweep failed", zap.Error(err))
			}
		}
	}
}

// collectRecipients returns each customer's contact once, preferring the
// stored email and falling back to the customer name.
func collectRecipients(late []*circulation.Loan) []string {
	seen := make(map[string]struct{}, len(late))
	recipients := make([]string, 0, len(late))
	for _, loan := range late {
		contact := loan.CustomerEmail
		if contact == "" {
			contact = loan.Customer
		}
		if _, ok := seen[contact]; ok {
			continue
		}
		seen[contact] = struct{}{}
		recipients = append(recipients, contact)
	}
	return recipients
}
