package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one link of a tamper-evident chain. RecordHash is a pure
// function of (serialized record data, PreviousHash); silently altering any
// persisted entry breaks the linkage of every entry after it.
//
// Entries are created once and never mutated or deleted. Their trust value
// depends entirely on that immutability.
type AuditEntry struct {
	ID           uuid.UUID `json:"id"`
	ChainID      string    `json:"chain_id"`
	Action       string    `json:"action"`
	RecordID     string    `json:"record_id"`
	RecordHash   string    `json:"record_hash"`
	PreviousHash string    `json:"previous_hash"`
	Timestamp    time.Time `json:"timestamp"`
}
