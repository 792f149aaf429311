package usecase

import (
	"context"
	"errors"
	"sync"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// mockStore は受け取ったバッチをすべて記録するテスト用の Store 実装です。
type mockStore struct {
	mu sync.Mutex

	ListSymbolsFunc      func(ctx context.Context) ([]entity.Symbol, error)
	UpsertSymbolsFunc    func(ctx context.Context, runID string, symbols []entity.Symbol) (int, error)
	UpsertCandlesFunc    func(ctx context.Context, runID string, candles []entity.Candle) (int, error)
	UpsertStatementsFunc func(ctx context.Context, runID string, items []entity.StatementItem) (int, error)
	UpsertEventsFunc     func(ctx context.Context, runID string, events []entity.Event) (int, error)
	UpsertMarginsFunc    func(ctx context.Context, runID string, policies []entity.MarginPolicy) (int, error)

	symbols    []entity.Symbol
	candles    []entity.Candle
	statements []entity.StatementItem
	events     []entity.Event
	margins    []entity.MarginPolicy
}

func (m *mockStore) ListSymbols(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListSymbolsFunc != nil {
		return m.ListSymbolsFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) UpsertSymbols(ctx context.Context, runID string, symbols []entity.Symbol) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertSymbolsFunc != nil {
		return m.UpsertSymbolsFunc(ctx, runID, symbols)
	}
	m.symbols = append(m.symbols, symbols...)
	return len(symbols), nil
}

func (m *mockStore) UpsertCandles(ctx context.Context, runID string, candles []entity.Candle) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertCandlesFunc != nil {
		return m.UpsertCandlesFunc(ctx, runID, candles)
	}
	m.candles = append(m.candles, candles...)
	return len(candles), nil
}

func (m *mockStore) UpsertStatements(ctx context.Context, runID string, items []entity.StatementItem) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertStatementsFunc != nil {
		return m.UpsertStatementsFunc(ctx, runID, items)
	}
	m.statements = append(m.statements, items...)
	return len(items), nil
}

func (m *mockStore) UpsertEvents(ctx context.Context, runID string, events []entity.Event) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertEventsFunc != nil {
		return m.UpsertEventsFunc(ctx, runID, events)
	}
	m.events = append(m.events, events...)
	return len(events), nil
}

func (m *mockStore) UpsertMargins(ctx context.Context, runID string, policies []entity.MarginPolicy) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertMarginsFunc != nil {
		return m.UpsertMarginsFunc(ctx, runID, policies)
	}
	m.margins = append(m.margins, policies...)
	return len(policies), nil
}

// mockRunRepository は保存された実行状態のコピーをすべて保持します。
type mockRunRepository struct {
	mu      sync.Mutex
	runs    map[string]entity.Run
	saves   []entity.Run
	counts  entity.RowCounts
	SaveErr error
}

func newMockRunRepository() *mockRunRepository {
	return &mockRunRepository{runs: make(map[string]entity.Run)}
}

func snapshot(r *entity.Run) entity.Run {
	c := *r
	c.Notes = append([]string(nil), r.Notes...)
	return c
}

func (m *mockRunRepository) Create(_ context.Context, run *entity.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; ok {
		return errors.New("duplicate run id")
	}
	m.runs[run.ID] = snapshot(run)
	return nil
}

func (m *mockRunRepository) Save(_ context.Context, run *entity.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.runs[run.ID] = snapshot(run)
	m.saves = append(m.saves, snapshot(run))
	return nil
}

func (m *mockRunRepository) Find(_ context.Context, runID string) (*entity.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &r, nil
}

func (m *mockRunRepository) CountByRun(_ context.Context, _ string) (entity.RowCounts, error) {
	return m.counts, nil
}

// mockQuote は並行呼び出しに対応した QuoteProvider のモック実装です。
type mockQuote struct {
	mu    sync.Mutex
	calls map[string]int

	Account             bool
	FetchStockInfoFunc  func(ctx context.Context, code string) (entity.StockInfo, error)
	FetchPricePageFunc  func(ctx context.Context, code, timeframe, from, to string) (entity.PricePage, error)
	FetchStatementFunc  func(ctx context.Context, code string, report entity.ReportType, term entity.Term) ([]entity.StatementItem, error)
	CheckOrderableFunc  func(ctx context.Context, code string) (bool, string, error)
	FetchMarginRateFunc func(ctx context.Context, code string) (*float64, error)
}

func (m *mockQuote) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *mockQuote) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockQuote) FetchStockInfo(ctx context.Context, code string) (entity.StockInfo, error) {
	m.record("FetchStockInfo")
	if m.FetchStockInfoFunc != nil {
		return m.FetchStockInfoFunc(ctx, code)
	}
	return entity.StockInfo{}, nil
}

func (m *mockQuote) FetchPricePage(ctx context.Context, code, timeframe, from, to string) (entity.PricePage, error) {
	m.record("FetchPricePage")
	if m.FetchPricePageFunc != nil {
		return m.FetchPricePageFunc(ctx, code, timeframe, from, to)
	}
	return entity.PricePage{OK: true}, nil
}

func (m *mockQuote) FetchStatement(ctx context.Context, code string, report entity.ReportType, term entity.Term) ([]entity.StatementItem, error) {
	m.record("FetchStatement")
	if m.FetchStatementFunc != nil {
		return m.FetchStatementFunc(ctx, code, report, term)
	}
	return nil, nil
}

func (m *mockQuote) HasAccount() bool { return m.Account }

func (m *mockQuote) CheckOrderable(ctx context.Context, code string) (bool, string, error) {
	m.record("CheckOrderable")
	if m.CheckOrderableFunc != nil {
		return m.CheckOrderableFunc(ctx, code)
	}
	return true, "", nil
}

func (m *mockQuote) FetchMarginRate(ctx context.Context, code string) (*float64, error) {
	m.record("FetchMarginRate")
	if m.FetchMarginRateFunc != nil {
		return m.FetchMarginRateFunc(ctx, code)
	}
	return nil, nil
}

// mockDisclosure は DisclosureProvider のモック実装です。
type mockDisclosure struct {
	ListCorporationsFunc func(ctx context.Context) ([]entity.Symbol, error)
	FetchEventsFunc      func(ctx context.Context, corpCode, begin, end string) ([]entity.Event, error)
}

func (m *mockDisclosure) ListCorporations(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListCorporationsFunc != nil {
		return m.ListCorporationsFunc(ctx)
	}
	return nil, nil
}

func (m *mockDisclosure) FetchEvents(ctx context.Context, corpCode, begin, end string) ([]entity.Event, error) {
	if m.FetchEventsFunc != nil {
		return m.FetchEventsFunc(ctx, corpCode, begin, end)
	}
	return nil, nil
}

func ptr(f float64) *float64 { return &f }
