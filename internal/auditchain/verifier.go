package auditchain

import (
	"fmt"

	"shiftguard/internal/domain"
)

// ChainBreak is the evidence returned when a chain fails verification: the
// index of the first diverging entry plus both hashes. Everything after the
// divergence point is presumptively untrustworthy, so verification stops
// there.
type ChainBreak struct {
	Index        int    `json:"index"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
}

func (b *ChainBreak) Error() string {
	return fmt.Sprintf("audit chain broken at index %d: expected previous hash %s, got %s",
		b.Index, short(b.ExpectedHash), short(b.ActualHash))
}

// Verify walks the chain in stored order and confirms that every entry
// after the first links to its predecessor's record hash. It returns nil
// for an intact (or empty) chain and a *ChainBreak describing the first
// divergence otherwise.
func Verify(chain []domain.AuditEntry) error {
	for i := 1; i < len(chain); i++ {
		if chain[i].PreviousHash != chain[i-1].RecordHash {
			return &ChainBreak{
				Index:        i,
				ExpectedHash: chain[i-1].RecordHash,
				ActualHash:   chain[i].PreviousHash,
			}
		}
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}
