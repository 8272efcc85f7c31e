package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	billingapp "github.com/invoicehub/backend/internal/application/billing"
)

type stubTenantSource struct {
	ids []uuid.UUID
	err error
}

func (s *stubTenantSource) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubGenerator struct {
	mu      sync.Mutex
	calls   []uuid.UUID
	failFor map[uuid.UUID]error
}

func (g *stubGenerator) GenerateDue(ctx context.Context, tenantID uuid.UUID) (*billingapp.GenerateRunResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, tenantID)
	if err, ok := g.failFor[tenantID]; ok {
		return nil, err
	}
	return &billingapp.GenerateRunResponse{
		Generated: []billingapp.GeneratedInvoiceResult{{InvoiceNumber: "INV-000001"}},
	}, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func TestRecurringSchedulerRunOnce(t *testing.T) {
	tenants := &stubTenantSource{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	gen := &stubGenerator{}

	s := NewRecurringScheduler(DefaultRecurringSchedulerConfig(), tenants, gen, zap.NewNop())
	s.RunOnce(context.Background())

	assert.Equal(t, 2, gen.callCount())
}

func TestRecurringSchedulerRunOnceContinuesOnTenantFailure(t *testing.T) {
	bad := uuid.New()
	good := uuid.New()
	tenants := &stubTenantSource{ids: []uuid.UUID{bad, good}}
	gen := &stubGenerator{failFor: map[uuid.UUID]error{bad: errors.New("boom")}}

	s := NewRecurringScheduler(DefaultRecurringSchedulerConfig(), tenants, gen, zap.NewNop())
	s.RunOnce(context.Background())

	assert.Equal(t, 2, gen.callCount(), "failure for one tenant should not stop the run")
}

func TestRecurringSchedulerRunOnceTenantListFailure(t *testing.T) {
	tenants := &stubTenantSource{err: errors.New("db down")}
	gen := &stubGenerator{}

	s := NewRecurringScheduler(DefaultRecurringSchedulerConfig(), tenants, gen, zap.NewNop())
	s.RunOnce(context.Background())

	assert.Zero(t, gen.callCount())
}

func TestRecurringSchedulerRunsOncePastTargetTime(t *testing.T) {
	tenants := &stubTenantSource{ids: []uuid.UUID{uuid.New()}}
	gen := &stubGenerator{}

	// Target time is already in the past, so the first tick fires the run
	// and later ticks on the same day are no-ops.
	now := time.Now()
	cfg := RecurringSchedulerConfig{
		DailyHour:     now.Hour(),
		DailyMinute:   0,
		CheckInterval: 10 * time.Millisecond,
	}
	s := NewRecurringScheduler(cfg, tenants, gen, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
	}()

	assert.Eventually(t, func() bool {
		return gen.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	// Give the loop a few more ticks; the day guard must hold.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, gen.callCount())
}

func TestRecurringSchedulerStartTwice(t *testing.T) {
	tenants := &stubTenantSource{}
	gen := &stubGenerator{}

	s := NewRecurringScheduler(RecurringSchedulerConfig{
		DailyHour:     23,
		DailyMinute:   59,
		CheckInterval: time.Hour,
	}, tenants, gen, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
