// Package memory provides an in-memory audit chain store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
)

// Store keeps chains in process memory. The head check under the write lock
// gives the same compare-and-swap semantics as the durable stores.
type Store struct {
	mu     sync.RWMutex
	chains map[string][]domain.AuditEntry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{chains: make(map[string][]domain.AuditEntry)}
}

// Append stores the entry if it links to the current chain head.
func (s *Store) Append(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := auditchain.GenesisHash()
	chain := s.chains[entry.ChainID]
	if len(chain) > 0 {
		head = chain[len(chain)-1].RecordHash
	}
	if entry.PreviousHash != head {
		return sentinel.ErrConflict
	}
	s.chains[entry.ChainID] = append(chain, entry)
	return nil
}

// Head returns the record hash of the chain's last entry.
func (s *Store) Head(_ context.Context, chainID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[chainID]
	if len(chain) == 0 {
		return auditchain.GenesisHash(), nil
	}
	return chain[len(chain)-1].RecordHash, nil
}

// List returns a copy of the chain in append order.
func (s *Store) List(_ context.Context, chainID string) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[chainID]
	out := make([]domain.AuditEntry, len(chain))
	copy(out, chain)
	return out, nil
}
