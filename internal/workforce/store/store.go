// Package store holds the persistence contracts for time entries and
// breaks. Stores are interface-driven so the services stay testable and the
// in-memory implementation can be swapped for a durable one without
// rewiring business code.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shiftguard/internal/domain"
)

// TimeEntryStore persists worked shifts.
type TimeEntryStore interface {
	Save(ctx context.Context, entry domain.TimeEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.TimeEntry, error)
	// ListByWorker returns the worker's entries with clock-in inside
	// [from, to), ordered by clock-in.
	ListByWorker(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]domain.TimeEntry, error)
	// FindOpen returns the worker's currently open shift, if any.
	FindOpen(ctx context.Context, workerID uuid.UUID) (domain.TimeEntry, error)
}

// BreakStore persists break entries independently of their owning shift.
type BreakStore interface {
	Save(ctx context.Context, b domain.BreakEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.BreakEntry, error)
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]domain.BreakEntry, error)
}
