package auditchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shiftguard/internal/auditchain/metrics"
	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
)

// maxAppendRetries bounds the read-head/append loop when concurrent writers
// race on the same chain.
const maxAppendRetries = 5

// Publisher streams committed entries to an external sink, such as the
// compliance export topic. Publishing is best-effort; the durable store is
// the source of truth.
type Publisher interface {
	Publish(ctx context.Context, entry domain.AuditEntry) error
}

// Service is the single write path for audit chains. It links each new
// entry to the current chain head and retries on head conflicts, so callers
// get the compare-and-swap discipline without coordinating among themselves.
type Service struct {
	store     Store
	writer    *Writer
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for conflict and publish diagnostics.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher attaches an export publisher for committed entries.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the audit service.
func NewService(store Store, writer *Writer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if writer == nil {
		writer = NewWriter()
	}
	svc := &Service{store: store, writer: writer}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Record appends a new entry describing a committed mutation. The append is
// fail-closed: if the entry cannot be persisted the caller must fail the
// mutation it documents.
func (s *Service) Record(ctx context.Context, chainID, action, recordID string, recordData any) (domain.AuditEntry, error) {
	start := time.Now()

	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		head, err := s.store.Head(ctx, chainID)
		if err != nil {
			s.metrics.ObserveAppend(action, "error", time.Since(start))
			return domain.AuditEntry{}, fmt.Errorf("read chain head: %w", err)
		}

		entry, err := s.writer.Append(chainID, action, recordID, recordData, head)
		if err != nil {
			s.metrics.ObserveAppend(action, "error", time.Since(start))
			return domain.AuditEntry{}, err
		}

		err = s.store.Append(ctx, entry)
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementHeadConflict()
			if s.logger != nil {
				s.logger.DebugContext(ctx, "audit chain head moved, retrying append",
					"chain_id", chainID,
					"attempt", attempt+1,
				)
			}
			continue
		}
		if err != nil {
			s.metrics.ObserveAppend(action, "error", time.Since(start))
			return domain.AuditEntry{}, fmt.Errorf("append audit entry: %w", err)
		}

		s.metrics.ObserveAppend(action, "ok", time.Since(start))
		s.publish(ctx, entry)
		return entry, nil
	}

	s.metrics.ObserveAppend(action, "conflict", time.Since(start))
	return domain.AuditEntry{}, fmt.Errorf("append to chain %s: %w after %d attempts",
		chainID, sentinel.ErrConflict, maxAppendRetries)
}

// Chain returns the stored entries of a chain in append order.
func (s *Service) Chain(ctx context.Context, chainID string) ([]domain.AuditEntry, error) {
	return s.store.List(ctx, chainID)
}

// VerifyReport is the outcome of replaying a stored chain.
type VerifyReport struct {
	ChainID string      `json:"chain_id"`
	Entries int         `json:"entries"`
	Intact  bool        `json:"intact"`
	Break   *ChainBreak `json:"break,omitempty"`
}

// VerifyChain replays the stored chain and reports the first divergence, if
// any. A broken chain is not an error here; it is the evidence the caller
// asked for.
func (s *Service) VerifyChain(ctx context.Context, chainID string) (VerifyReport, error) {
	entries, err := s.store.List(ctx, chainID)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("list chain %s: %w", chainID, err)
	}

	report := VerifyReport{ChainID: chainID, Entries: len(entries), Intact: true}
	var chainBreak *ChainBreak
	if err := Verify(entries); errors.As(err, &chainBreak) {
		report.Intact = false
		report.Break = chainBreak
		s.metrics.IncrementVerifyDivergent()
		if s.logger != nil {
			s.logger.WarnContext(ctx, "audit chain divergence detected",
				"chain_id", chainID,
				"index", chainBreak.Index,
			)
		}
	}
	return report, nil
}

// publish streams a committed entry to the export sink. Export is
// best-effort: a failed publish is logged, never propagated, because the
// durable store already holds the entry.
func (s *Service) publish(ctx context.Context, entry domain.AuditEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, entry); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit export publish failed",
			"chain_id", entry.ChainID,
			"entry_id", entry.ID,
			"error", err,
		)
	}
}
