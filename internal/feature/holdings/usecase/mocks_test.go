package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/domain/entity"
)

// mockQuoteClient はQuoteClientインターフェースのモック実装です。
type mockQuoteClient struct {
	mu                        sync.Mutex
	FetchQuoteFunc            func(ctx context.Context, symbol string) (entity.Quote, error)
	FetchHistoricalSeriesFunc func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.PricePoint, error)
	QuoteCalls                []string
}

func (m *mockQuoteClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	m.mu.Lock()
	m.QuoteCalls = append(m.QuoteCalls, symbol)
	m.mu.Unlock()
	if m.FetchQuoteFunc != nil {
		return m.FetchQuoteFunc(ctx, symbol)
	}
	return entity.Quote{}, errors.New("FetchQuoteFunc is not implemented")
}

func (m *mockQuoteClient) FetchHistoricalSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.PricePoint, error) {
	if m.FetchHistoricalSeriesFunc != nil {
		return m.FetchHistoricalSeriesFunc(ctx, symbol, interval, outputsize)
	}
	return nil, errors.New("FetchHistoricalSeriesFunc is not implemented")
}

// fakeHoldingRepository はIDを採番するインメモリのHoldingRepositoryです。
type fakeHoldingRepository struct {
	mu      sync.Mutex
	nextID  uint
	rows    map[uint]entity.Holding
	listErr error
}

func newFakeHoldingRepository(hs ...entity.Holding) *fakeHoldingRepository {
	r := &fakeHoldingRepository{rows: map[uint]entity.Holding{}}
	for _, h := range hs {
		_, _ = r.Save(context.Background(), h)
	}
	return r
}

func (r *fakeHoldingRepository) Save(_ context.Context, h entity.Holding) (entity.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == 0 {
		r.nextID++
		h.ID = r.nextID
	}
	r.rows[h.ID] = h
	return h, nil
}

func (r *fakeHoldingRepository) FindByID(_ context.Context, id uint) (*entity.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &h, nil
}

func (r *fakeHoldingRepository) FindAll(_ context.Context) ([]entity.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]entity.Holding, 0, len(r.rows))
	for _, h := range r.rows {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeHoldingRepository) DeleteByID(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeHoldingRepository) UpdateCurrentPrice(_ context.Context, id uint, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	h.CurrentPrice = price
	r.rows[id] = h
	return nil
}

// mockSyncRecorder は記録されたレポートを保持します。
type mockSyncRecorder struct {
	mu        sync.Mutex
	reports   []entity.SyncReport
	recordErr error
}

func (m *mockSyncRecorder) RecordRun(_ context.Context, report entity.SyncReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockSyncRecorder) LastRun(_ context.Context) (*entity.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return nil, nil
	}
	r := m.reports[len(m.reports)-1]
	return &r, nil
}

// countingLimiter はWaitIfNeededの呼び出し回数を数えます。
type countingLimiter struct {
	mu    sync.Mutex
	calls int
}

func (c *countingLimiter) WaitIfNeeded() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}
