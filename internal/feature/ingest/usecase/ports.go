package usecase

import (
	"context"
	"errors"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// Interfaces are defined by the consumer (usecase), not the provider (adapters).

// ErrRunNotFound は存在しない run id に対して RunRepository.Find が返すエラーです。
var ErrRunNotFound = errors.New("run not found")

// Store は正規化済みレコードを永続化ストアに反映するリポジトリのインターフェースです。
// Upsert 系の呼び出しはそれぞれ1トランザクションで、書き込んだ自然キーの件数を返します。
type Store interface {
	ListSymbols(ctx context.Context) ([]entity.Symbol, error)
	UpsertSymbols(ctx context.Context, runID string, symbols []entity.Symbol) (int, error)
	UpsertCandles(ctx context.Context, runID string, candles []entity.Candle) (int, error)
	UpsertStatements(ctx context.Context, runID string, items []entity.StatementItem) (int, error)
	UpsertEvents(ctx context.Context, runID string, events []entity.Event) (int, error)
	UpsertMargins(ctx context.Context, runID string, policies []entity.MarginPolicy) (int, error)
}

// RunRepository は実行台帳（ingest_runs）を永続化するインターフェースです。
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	Save(ctx context.Context, run *entity.Run) error
	Find(ctx context.Context, runID string) (*entity.Run, error)
	CountByRun(ctx context.Context, runID string) (entity.RowCounts, error)
}

// QuoteProvider は銘柄情報・株価・財務諸表・証拠金データを取得する外部APIのインターフェースです。
// KIS の実装を抽象化します。
type QuoteProvider interface {
	FetchStockInfo(ctx context.Context, code string) (entity.StockInfo, error)
	FetchPricePage(ctx context.Context, code, timeframe, from, to string) (entity.PricePage, error)
	FetchStatement(ctx context.Context, code string, report entity.ReportType, term entity.Term) ([]entity.StatementItem, error)
	HasAccount() bool
	CheckOrderable(ctx context.Context, code string) (bool, string, error)
	FetchMarginRate(ctx context.Context, code string) (*float64, error)
}

// DisclosureProvider は企業一覧と開示情報を取得する外部APIのインターフェースです。
// DART の実装を抽象化します。
type DisclosureProvider interface {
	ListCorporations(ctx context.Context) ([]entity.Symbol, error)
	FetchEvents(ctx context.Context, corpCode, begin, end string) ([]entity.Event, error)
}
