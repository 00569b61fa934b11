// Package auditchain builds and verifies the tamper-evident record chain
// that documents compliance-relevant mutations.
//
// Each entry's RecordHash is a deterministic digest of the serialized record
// data and the previous entry's hash. Altering any stored entry therefore
// breaks the linkage of everything after it, which Verify reports as
// structured evidence.
package auditchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shiftguard/internal/domain"
)

const genesisInput = "shiftguard-genesis"

// GenesisHash returns the fixed previous-hash value for the first entry of
// every chain.
func GenesisHash() string {
	sum := sha256.Sum256([]byte(genesisInput))
	return hex.EncodeToString(sum[:])
}

// ComputeHash digests serialized record data together with the previous
// hash. It is pure: identical inputs always produce identical digests, and
// neither randomness nor wall-clock time participates.
func ComputeHash(serialized []byte, previousHash string) string {
	h := sha256.New()
	h.Write(serialized)
	h.Write([]byte(":"))
	h.Write([]byte(previousHash))
	return hex.EncodeToString(h.Sum(nil))
}

// Writer creates linked audit entries. It holds no chain state; the caller
// supplies the previous hash and must serialize appends per chain.
type Writer struct {
	now func() time.Time
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter builds a Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Append builds a new immutable entry linked to previousHash. recordData is
// serialized to JSON before hashing; map keys are sorted by the encoder, so
// equal data always hashes equally. The entry timestamp is metadata only and
// never feeds the hash.
func (w *Writer) Append(chainID, action, recordID string, recordData any, previousHash string) (domain.AuditEntry, error) {
	if action == "" {
		return domain.AuditEntry{}, fmt.Errorf("audit entry requires an action")
	}
	if previousHash == "" {
		return domain.AuditEntry{}, fmt.Errorf("audit entry requires the previous hash")
	}

	serialized, err := json.Marshal(recordData)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("serialize record data: %w", err)
	}

	return domain.AuditEntry{
		ID:           uuid.New(),
		ChainID:      chainID,
		Action:       action,
		RecordID:     recordID,
		RecordHash:   ComputeHash(serialized, previousHash),
		PreviousHash: previousHash,
		Timestamp:    w.now().UTC(),
	}, nil
}
