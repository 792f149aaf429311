package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/feature/ingest/usecase"
)

type runRepository struct {
	db *gorm.DB
}

var _ usecase.RunRepository = (*runRepository)(nil)

// NewRunRepository は GORM を使用する実行台帳リポジトリを作成します。
func NewRunRepository(db *gorm.DB) *runRepository {
	return &runRepository{db: db}
}

func toRunModel(r *entity.Run) (IngestRunModel, error) {
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return IngestRunModel{}, err
	}
	notes := r.Notes
	if notes == nil {
		notes = []string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return IngestRunModel{}, err
	}
	m := IngestRunModel{
		RunID:            r.ID,
		StartedAt:        r.StartedAt.UTC(),
		Status:           string(r.Status),
		Command:          r.Command,
		RunType:          string(r.Config.RunType),
		Scope:            string(r.Config.Scope),
		SourceProfile:    string(r.Config.SourceProfile),
		PricesWindow:     string(r.Config.PricesWindow),
		PricesBackfill:   r.Config.Backfill,
		SymbolsCount:     r.SymbolsCount,
		ProcessedSymbols: r.ProcessedSymbols,
		SymbolRows:       r.Counts.Symbols,
		PriceRows:        r.Counts.Prices,
		FundamentalRows:  r.Counts.Fundamentals,
		EventRows:        r.Counts.Events,
		MarginRows:       r.Counts.Margins,
		ConfigJSON:       string(cfg),
		NotesJSON:        string(notesJSON),
		ErrorMessage:     strPtr(r.Error),
	}
	if r.Config.LookbackDays > 0 {
		days := r.Config.LookbackDays
		m.PricesLookbackDays = &days
	}
	if r.FinishedAt != nil {
		t := r.FinishedAt.UTC()
		m.FinishedAt = &t
	}
	return m, nil
}

func toRunEntity(m IngestRunModel) (*entity.Run, error) {
	r := &entity.Run{
		ID:               m.RunID,
		Command:          m.Command,
		Status:           entity.RunStatus(m.Status),
		SymbolsCount:     m.SymbolsCount,
		ProcessedSymbols: m.ProcessedSymbols,
		Counts: entity.RowCounts{
			Symbols:      m.SymbolRows,
			Prices:       m.PriceRows,
			Fundamentals: m.FundamentalRows,
			Events:       m.EventRows,
			Margins:      m.MarginRows,
		},
		Error:      strVal(m.ErrorMessage),
		StartedAt:  m.StartedAt.UTC(),
		FinishedAt: m.FinishedAt,
	}
	if m.ConfigJSON != "" {
		if err := json.Unmarshal([]byte(m.ConfigJSON), &r.Config); err != nil {
			return nil, fmt.Errorf("decode run config: %w", err)
		}
	}
	if m.NotesJSON != "" {
		if err := json.Unmarshal([]byte(m.NotesJSON), &r.Notes); err != nil {
			return nil, fmt.Errorf("decode run notes: %w", err)
		}
	}
	return r, nil
}

func (r *runRepository) Create(ctx context.Context, run *entity.Run) error {
	m, err := toRunModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// Save は実行の更新可能なフィールドをすべて上書きします。
func (r *runRepository) Save(ctx context.Context, run *entity.Run) error {
	m, err := toRunModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *runRepository) Find(ctx context.Context, runID string) (*entity.Run, error) {
	var m IngestRunModel
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return toRunEntity(m)
}

// CountByRun は runID が最後に書き込んだ各テーブルの行数を数えます。
func (r *runRepository) CountByRun(ctx context.Context, runID string) (entity.RowCounts, error) {
	var counts entity.RowCounts
	targets := []struct {
		model any
		dst   *int
	}{
		{&SymbolModel{}, &counts.Symbols},
		{&PriceModel{}, &counts.Prices},
		{&StatementModel{}, &counts.Fundamentals},
		{&EventModel{}, &counts.Events},
		{&MarginModel{}, &counts.Margins},
	}
	for _, t := range targets {
		var n int64
		if err := r.db.WithContext(ctx).Model(t.model).Where("run_id = ?", runID).Count(&n).Error; err != nil {
			return entity.RowCounts{}, err
		}
		*t.dst = int(n)
	}
	return counts, nil
}
