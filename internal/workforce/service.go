// Package workforce implements the time-clock workflows: clock-in,
// clock-out, breaks, and correction approval. Every committed mutation is
// documented by an append to the worker's audit chain; if the append fails
// the mutation fails with it.
package workforce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/domain"
	"shiftguard/internal/workforce/store"
	"shiftguard/pkg/platform/sentinel"
)

// Audit actions recorded on the per-worker chain.
const (
	ActionClockIn            = "clock_in"
	ActionClockOut           = "clock_out"
	ActionBreakStarted       = "break_started"
	ActionBreakEnded         = "break_ended"
	ActionCorrectionApproved = "correction_approved"
)

// ChainID returns the audit chain identifier for a worker. Chains are
// scoped per worker, narrower than per organization, so unrelated workers
// never contend on the same head.
func ChainID(workerID uuid.UUID) string {
	return "worker:" + workerID.String()
}

// Service owns the time-clock mutations.
type Service struct {
	entries store.TimeEntryStore
	breaks  store.BreakStore
	audits  *auditchain.Service
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService builds the workforce service.
func NewService(entries store.TimeEntryStore, breaks store.BreakStore, audits *auditchain.Service, opts ...Option) (*Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("time entry store is required")
	}
	if breaks == nil {
		return nil, fmt.Errorf("break store is required")
	}
	if audits == nil {
		return nil, fmt.Errorf("audit service is required")
	}
	svc := &Service{entries: entries, breaks: breaks, audits: audits}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ClockIn opens a new shift. A worker can hold at most one open shift.
func (s *Service) ClockIn(ctx context.Context, workerID uuid.UUID, at time.Time, location *domain.Coordinate) (domain.TimeEntry, error) {
	if _, err := s.entries.FindOpen(ctx, workerID); err == nil {
		return domain.TimeEntry{}, fmt.Errorf("worker %s already has an open shift: %w", workerID, sentinel.ErrInvalidState)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return domain.TimeEntry{}, fmt.Errorf("check open shift: %w", err)
	}

	entry := domain.TimeEntry{
		ID:              uuid.New(),
		WorkerID:        workerID,
		ClockIn:         at.UTC(),
		ClockInLocation: location,
	}
	if err := s.commit(ctx, entry, ActionClockIn); err != nil {
		return domain.TimeEntry{}, err
	}
	return entry, nil
}

// ClockOut closes the worker's open shift.
func (s *Service) ClockOut(ctx context.Context, workerID uuid.UUID, at time.Time, location *domain.Coordinate) (domain.TimeEntry, error) {
	entry, err := s.entries.FindOpen(ctx, workerID)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("find open shift: %w", err)
	}
	out := at.UTC()
	if !out.After(entry.ClockIn) {
		return domain.TimeEntry{}, fmt.Errorf("clock-out %s not after clock-in %s: %w", out, entry.ClockIn, sentinel.ErrInvalidState)
	}

	entry.ClockOut = &out
	entry.ClockOutLocation = location
	if err := s.commit(ctx, entry, ActionClockOut); err != nil {
		return domain.TimeEntry{}, err
	}
	return entry, nil
}

// StartBreak opens a break inside the worker's open shift.
func (s *Service) StartBreak(ctx context.Context, workerID uuid.UUID, at time.Time, breakType domain.BreakType) (domain.BreakEntry, error) {
	entry, err := s.entries.FindOpen(ctx, workerID)
	if err != nil {
		return domain.BreakEntry{}, fmt.Errorf("find open shift: %w", err)
	}

	b := domain.BreakEntry{
		ID:          uuid.New(),
		TimeEntryID: entry.ID,
		BreakStart:  at.UTC(),
		BreakType:   breakType,
	}
	if err := s.breaks.Save(ctx, b); err != nil {
		return domain.BreakEntry{}, fmt.Errorf("save break: %w", err)
	}
	if _, err := s.audits.Record(ctx, ChainID(workerID), ActionBreakStarted, b.ID.String(), b); err != nil {
		return domain.BreakEntry{}, fmt.Errorf("audit break start: %w", err)
	}
	return b, nil
}

// EndBreak closes an open break.
func (s *Service) EndBreak(ctx context.Context, workerID uuid.UUID, breakID uuid.UUID, at time.Time) (domain.BreakEntry, error) {
	b, err := s.breaks.FindByID(ctx, breakID)
	if err != nil {
		return domain.BreakEntry{}, fmt.Errorf("find break: %w", err)
	}
	if b.BreakEnd != nil {
		return domain.BreakEntry{}, fmt.Errorf("break %s already ended: %w", breakID, sentinel.ErrInvalidState)
	}
	end := at.UTC()
	if !end.After(b.BreakStart) {
		return domain.BreakEntry{}, fmt.Errorf("break end not after start: %w", sentinel.ErrInvalidState)
	}

	b.BreakEnd = &end
	if err := s.breaks.Save(ctx, b); err != nil {
		return domain.BreakEntry{}, fmt.Errorf("save break: %w", err)
	}
	if _, err := s.audits.Record(ctx, ChainID(workerID), ActionBreakEnded, b.ID.String(), b); err != nil {
		return domain.BreakEntry{}, fmt.Errorf("audit break end: %w", err)
	}
	return b, nil
}

// ApproveCorrection replaces the clock times of an existing closed entry.
// The approval itself is the compliance-relevant event, so it lands on the
// chain with the corrected record as its hashed payload.
func (s *Service) ApproveCorrection(ctx context.Context, entryID uuid.UUID, clockIn time.Time, clockOut time.Time) (domain.TimeEntry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("find entry: %w", err)
	}
	if !clockOut.After(clockIn) {
		return domain.TimeEntry{}, fmt.Errorf("corrected clock-out not after clock-in: %w", sentinel.ErrInvalidState)
	}

	in := clockIn.UTC()
	out := clockOut.UTC()
	entry.ClockIn = in
	entry.ClockOut = &out
	if err := s.commit(ctx, entry, ActionCorrectionApproved); err != nil {
		return domain.TimeEntry{}, err
	}
	return entry, nil
}

// commit persists the entry and appends the matching audit record.
// Fail-closed: a mutation without its audit entry must not stand.
func (s *Service) commit(ctx context.Context, entry domain.TimeEntry, action string) error {
	if err := s.entries.Save(ctx, entry); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	if _, err := s.audits.Record(ctx, ChainID(entry.WorkerID), action, entry.ID.String(), entry); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "time entry mutation committed",
			"action", action,
			"entry_id", entry.ID,
			"worker_id", entry.WorkerID,
		)
	}
	return nil
}
