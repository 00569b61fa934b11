package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shiftguard/internal/compliance/metrics"
	"shiftguard/internal/domain"
	"shiftguard/internal/workforce/store"
)

// historyWindow bounds how much shift history is resolved around the entry
// under validation. Two weeks back covers the prior ISO week for rest and
// weekly checks; one ahead covers proposed shifts.
const (
	historyBack  = 14 * 24 * time.Hour
	historyAhead = 7 * 24 * time.Hour
)

// ValidateRequest scopes one validation run. Age, pregnancy status, and
// coordinates are auxiliary facts the entry itself does not carry.
type ValidateRequest struct {
	EntryID        uuid.UUID
	UserAge        *int
	IsPregnant     bool
	LocationCoords *domain.Coordinate
	UserCoords     *domain.Coordinate
}

// Service resolves a worker's entries and breaks, assembles the
// ValidationContext, and runs the rule engine over it.
type Service struct {
	entries   store.TimeEntryStore
	breaks    store.BreakStore
	validator *Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithServiceMetrics attaches the metrics collector.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the compliance service.
func NewService(entries store.TimeEntryStore, breaks store.BreakStore, validator *Validator, opts ...ServiceOption) (*Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("time entry store is required")
	}
	if breaks == nil {
		return nil, fmt.Errorf("break store is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	svc := &Service{entries: entries, breaks: breaks, validator: validator}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ValidateEntry runs all twelve rules against the referenced entry and
// returns the full verdict list. Violations come back as results, never as
// errors; an error means the entry could not be resolved or evaluated.
func (s *Service) ValidateEntry(ctx context.Context, req ValidateRequest) ([]domain.ValidationResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveValidate(time.Since(start))
	}()

	entry, err := s.entries.FindByID(ctx, req.EntryID)
	if err != nil {
		return nil, fmt.Errorf("resolve entry %s: %w", req.EntryID, err)
	}

	vc, err := s.gatherContext(ctx, entry, req)
	if err != nil {
		return nil, err
	}

	results, err := s.validator.ValidateAll(vc)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.metrics.IncrementInvalidInput()
		}
		return nil, err
	}

	for _, r := range results {
		result := "pass"
		if !r.Pass {
			result = "fail"
		}
		s.metrics.ObserveRule(string(r.Rule), result, string(r.Severity))
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "entry validated",
			"entry_id", entry.ID,
			"worker_id", entry.WorkerID,
			"failures", countFailures(results),
		)
	}
	return results, nil
}

// gatherContext resolves shift history and breaks in parallel with shared
// cancellation. Both reads are independent, so the first failure cancels
// the other.
func (s *Service) gatherContext(ctx context.Context, entry domain.TimeEntry, req ValidateRequest) (domain.ValidationContext, error) {
	g, ctx := errgroup.WithContext(ctx)

	vc := domain.ValidationContext{
		CurrentEntry:   entry,
		UserAge:        req.UserAge,
		IsPregnant:     req.IsPregnant,
		LocationCoords: req.LocationCoords,
		UserCoords:     req.UserCoords,
	}

	g.Go(func() error {
		from := entry.ClockIn.Add(-historyBack)
		to := entry.ClockIn.Add(historyAhead)
		all, err := s.entries.ListByWorker(ctx, entry.WorkerID, from, to)
		if err != nil {
			return fmt.Errorf("resolve shift history: %w", err)
		}
		vc.AllEntries = all
		return nil
	})

	g.Go(func() error {
		breaks, err := s.breaks.ListByEntry(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("resolve breaks: %w", err)
		}
		vc.Breaks = breaks
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.ValidationContext{}, err
	}
	return vc, nil
}

func countFailures(results []domain.ValidationResult) int {
	n := 0
	for _, r := range results {
		if !r.Pass {
			n++
		}
	}
	return n
}
