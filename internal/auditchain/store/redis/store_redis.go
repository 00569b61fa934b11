// Package redis persists audit chains in Redis for deployments that keep
// the chain head in shared fast storage. Entries live in a per-chain list,
// the head hash in a companion key; optimistic WATCH/MULTI appends give the
// compare-and-swap discipline.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
)

const (
	headKeyPrefix  = "audit:head:"
	chainKeyPrefix = "audit:chain:"
)

// Store implements auditchain.Store on Redis.
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed audit chain store.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Append stores the entry if it links to the current chain head. The head
// key is watched, so a concurrent append invalidates the transaction and
// surfaces as sentinel.ErrConflict for the caller to retry.
func (s *Store) Append(ctx context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	headKey := headKeyPrefix + entry.ChainID
	chainKey := chainKeyPrefix + entry.ChainID

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		head, err := tx.Get(ctx, headKey).Result()
		if errors.Is(err, redis.Nil) {
			head = auditchain.GenesisHash()
		} else if err != nil {
			return fmt.Errorf("read chain head: %w", err)
		}

		if entry.PreviousHash != head {
			return sentinel.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, headKey, entry.RecordHash, 0)
			pipe.RPush(ctx, chainKey, payload)
			return nil
		})
		return err
	}, headKey)

	if errors.Is(err, redis.TxFailedErr) {
		return sentinel.ErrConflict
	}
	return err
}

// Head returns the record hash of the chain's last entry.
func (s *Store) Head(ctx context.Context, chainID string) (string, error) {
	head, err := s.client.Get(ctx, headKeyPrefix+chainID).Result()
	if errors.Is(err, redis.Nil) {
		return auditchain.GenesisHash(), nil
	}
	if err != nil {
		return "", fmt.Errorf("read chain head: %w", err)
	}
	return head, nil
}

// List returns the chain's entries in append order.
func (s *Store) List(ctx context.Context, chainID string) ([]domain.AuditEntry, error) {
	raw, err := s.client.LRange(ctx, chainKeyPrefix+chainID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(raw))
	for i, item := range raw {
		var e domain.AuditEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
