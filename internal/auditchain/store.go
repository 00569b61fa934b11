package auditchain

import (
	"context"

	"shiftguard/internal/domain"
)

// Store persists audit entries append-only. Implementations must enforce
// the single-writer discipline per chain: Append succeeds only when the
// entry's PreviousHash equals the current chain head, and returns
// sentinel.ErrConflict otherwise so the caller can re-read the head and
// retry. Persisted entries are never updated or deleted.
type Store interface {
	// Append stores the entry if it links to the current head of its chain.
	Append(ctx context.Context, entry domain.AuditEntry) error

	// Head returns the record hash of the last entry in the chain, or the
	// genesis hash for a chain with no entries.
	Head(ctx context.Context, chainID string) (string, error)

	// List returns the chain's entries in append order.
	List(ctx context.Context, chainID string) ([]domain.AuditEntry, error)
}
