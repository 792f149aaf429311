package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/shared/dates"
)

// CommandRun は IngestUsecase が作成する実行に記録されるコマンド名です。
const CommandRun = "run"

// NoteDryRun は外部APIに接続しなかった実行を示すノートです。
const NoteDryRun = "dry-run"

// Options は IngestUsecase の動作設定です。
type Options struct {
	Workers       int // ステージごとの同時取得数（最小1）
	MaxPricePages int // 銘柄・時間足ごとの最大ページ数（最小1）
}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースです。
// 銘柄を解決し、有効なカテゴリを順に実行しながら実行台帳を更新します。
type IngestUsecase struct {
	store      Store
	runs       RunRepository
	quote      QuoteProvider      // KIS の認証情報がなければ nil
	disclosure DisclosureProvider // DART の API キーがなければ nil
	creds      Credentials
	opts       Options

	now   func() time.Time
	newID func() string
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
// 認証情報がない場合、quote と disclosure には型なしの nil を渡してください。
func NewIngestUsecase(
	store Store,
	runs RunRepository,
	quote QuoteProvider,
	disclosure DisclosureProvider,
	creds Credentials,
	opts Options,
) *IngestUsecase {
	return &IngestUsecase{
		store:      store,
		runs:       runs,
		quote:      quote,
		disclosure: disclosure,
		creds:      creds,
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (u *IngestUsecase) workers(cfg entity.RunConfig) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return max(1, u.opts.Workers)
}

func (u *IngestUsecase) maxPricePages(cfg entity.RunConfig) int {
	if cfg.MaxPricePages > 0 {
		return cfg.MaxPricePages
	}
	if u.opts.MaxPricePages > 0 {
		return u.opts.MaxPricePages
	}
	return entity.DefaultMaxPricePages
}

// Run は1回のインジェストを実行し、最終的な実行レコードを返します。
//
// 認証情報チェックの *ConfigError では、id のみを持つ未保存の実行を返します。
// 銘柄解決のエラーでは、failed として確定済みの実行とそのエラーを返します。
// ステージの失敗はエラーとして返さず実行に記録し、それ以前にコミットしたデータはストアに残ります。
func (u *IngestUsecase) Run(ctx context.Context, cfg entity.RunConfig) (*entity.Run, error) {
	run := &entity.Run{
		ID:        u.newID(),
		Command:   CommandRun,
		Status:    entity.RunRunning,
		Config:    cfg,
		StartedAt: u.now().UTC(),
	}
	if err := cfg.Validate(); err != nil {
		return run, &ConfigError{Message: err.Error()}
	}
	if err := CheckCredentials(cfg, u.creds); err != nil {
		return run, err
	}

	if err := u.runs.Create(ctx, run); err != nil {
		return run, fmt.Errorf("create run: %w", err)
	}
	log := slog.With("run_id", run.ID)
	log.Info("run started", "run_type", cfg.RunType, "scope", cfg.Scope, "source_profile", cfg.SourceProfile)

	if cfg.DryRun {
		run.AddNote(NoteDryRun)
		return run, u.finalize(ctx, run, nil)
	}

	resolver := NewSymbolResolver(u.store, u.disclosure)
	symbols, notes, err := resolver.Resolve(ctx, cfg)
	for _, n := range notes {
		run.AddNote(n)
	}
	if err != nil {
		if ferr := u.finalize(ctx, run, err); ferr != nil {
			return run, ferr
		}
		return run, err
	}
	run.SymbolsCount = len(symbols)

	rc := &runContext{
		runID:   run.ID,
		cfg:     cfg,
		symbols: symbols,
		today:   dates.Today(u.now()),
		workers: u.workers(cfg),
	}

	var stageErr error
	for _, p := range u.pipelines() {
		if !cfg.RunType.Includes(p.category) {
			continue
		}
		res := p.run(ctx, rc, p.isolatePerSymbol)
		run.Counts.Add(p.category, res.Rows)
		run.ProcessedSymbols += res.Processed
		for _, n := range res.Notes {
			run.AddNote(n)
		}
		log.Info("stage finished", "category", p.category, "status", res.Status, "rows", res.Rows)

		if res.Status == StageFailed {
			stageErr = res.Err
			break
		}
		if err := u.runs.Save(ctx, run); err != nil {
			return run, fmt.Errorf("save run: %w", err)
		}
	}

	return run, u.finalize(ctx, run, stageErr)
}

// finalize は実行を終了状態にして保存します。cause があれば failed にします。
// 返すのは保存時のエラーのみです。
func (u *IngestUsecase) finalize(ctx context.Context, run *entity.Run, cause error) error {
	finished := u.now().UTC()
	run.FinishedAt = &finished
	run.Status = entity.RunSuccess
	if cause != nil {
		run.Status = entity.RunFailed
		run.Error = cause.Error()
		run.AddNote("error: " + run.Error)
		slog.Error("run failed", "run_id", run.ID, "error", cause)
	} else {
		slog.Info("run finished", "run_id", run.ID, "status", run.Status)
	}
	if err := u.runs.Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
