package auditchain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/auditchain/store/memory"
	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
)

type AuditServiceSuite struct {
	suite.Suite

	store *memory.Store
	svc   *auditchain.Service
}

func (s *AuditServiceSuite) SetupTest() {
	s.store = memory.New()
	svc, err := auditchain.NewService(s.store, auditchain.NewWriter())
	s.Require().NoError(err)
	s.svc = svc
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceSuite))
}

func (s *AuditServiceSuite) TestRecordLinksEntries() {
	ctx := context.Background()

	first, err := s.svc.Record(ctx, "worker:w1", "clock_in", "e1", map[string]string{"state": "open"})
	s.Require().NoError(err)
	s.Equal(auditchain.GenesisHash(), first.PreviousHash)

	second, err := s.svc.Record(ctx, "worker:w1", "clock_out", "e1", map[string]string{"state": "closed"})
	s.Require().NoError(err)
	s.Equal(first.RecordHash, second.PreviousHash)

	chain, err := s.svc.Chain(ctx, "worker:w1")
	s.Require().NoError(err)
	s.Len(chain, 2)
	s.NoError(auditchain.Verify(chain))
}

func (s *AuditServiceSuite) TestChainsAreIndependent() {
	ctx := context.Background()

	_, err := s.svc.Record(ctx, "worker:w1", "clock_in", "e1", nil)
	s.Require().NoError(err)
	other, err := s.svc.Record(ctx, "worker:w2", "clock_in", "e2", nil)
	s.Require().NoError(err)

	s.Equal(auditchain.GenesisHash(), other.PreviousHash)

	chain, err := s.svc.Chain(ctx, "worker:w2")
	s.Require().NoError(err)
	s.Len(chain, 1)
}

func (s *AuditServiceSuite) TestVerifyChainIntact() {
	ctx := context.Background()
	for range 3 {
		_, err := s.svc.Record(ctx, "worker:w1", "clock_in", "e1", nil)
		s.Require().NoError(err)
	}

	report, err := s.svc.VerifyChain(ctx, "worker:w1")
	s.Require().NoError(err)
	s.True(report.Intact)
	s.Equal(3, report.Entries)
	s.Nil(report.Break)
}

func (s *AuditServiceSuite) TestVerifyChainEmpty() {
	report, err := s.svc.VerifyChain(context.Background(), "worker:none")
	s.Require().NoError(err)
	s.True(report.Intact)
	s.Zero(report.Entries)
}

func (s *AuditServiceSuite) TestConcurrentAppendsAllLand() {
	ctx := context.Background()

	var wg sync.WaitGroup
	const writers = 8
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Record(ctx, "worker:w1", "clock_in", "e1", map[string]int{"writer": i})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		s.NoError(err, "writer %d", i)
	}
	chain, err := s.svc.Chain(ctx, "worker:w1")
	s.Require().NoError(err)
	s.Len(chain, writers)
	s.NoError(auditchain.Verify(chain))
}

// racingStore injects head conflicts by advancing the real chain between
// the caller's Head read and its Append.
type racingStore struct {
	*memory.Store

	svc       *auditchain.Service
	conflicts int
	mu        sync.Mutex
}

func (r *racingStore) Append(ctx context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		_, err := r.svc.Record(ctx, entry.ChainID, "clock_in", "race", nil)
		if err != nil {
			return err
		}
		return r.Store.Append(ctx, entry)
	}
	r.mu.Unlock()
	return r.Store.Append(ctx, entry)
}

func TestRecordRetriesOnHeadConflict(t *testing.T) {
	backing := memory.New()
	inner, err := auditchain.NewService(backing, auditchain.NewWriter())
	require.NoError(t, err)

	racing := &racingStore{Store: backing, svc: inner, conflicts: 2}
	svc, err := auditchain.NewService(racing, auditchain.NewWriter())
	require.NoError(t, err)

	entry, err := svc.Record(context.Background(), "worker:w1", "clock_out", "e1", nil)
	require.NoError(t, err)

	chain, err := backing.List(context.Background(), "worker:w1")
	require.NoError(t, err)
	assert.Len(t, chain, 3)
	assert.Equal(t, entry.ID, chain[2].ID)
	assert.NoError(t, auditchain.Verify(chain))
}

func TestRecordGivesUpAfterMaxRetries(t *testing.T) {
	svc, err := auditchain.NewService(conflictStore{}, auditchain.NewWriter())
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Record(context.Background(), "worker:w1", "clock_in", "e1", nil)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.Less(t, time.Since(start), time.Second)
}

// conflictStore refuses every append, as if another writer always wins.
type conflictStore struct{}

func (conflictStore) Append(context.Context, domain.AuditEntry) error {
	return sentinel.ErrConflict
}

func (conflictStore) Head(context.Context, string) (string, error) {
	return auditchain.GenesisHash(), nil
}

func (conflictStore) List(context.Context, string) ([]domain.AuditEntry, error) {
	return nil, nil
}
