package usecase

import (
	"context"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// StatusUsecase は実行台帳から実行結果を読み出すユースケースです。
type StatusUsecase struct {
	runs RunRepository
}

// NewStatusUsecase は新しい StatusUsecase を作成します。
func NewStatusUsecase(runs RunRepository) *StatusUsecase {
	return &StatusUsecase{runs: runs}
}

// Status は保存済みの実行を返します。存在しない場合は ErrRunNotFound を返します。
func (u *StatusUsecase) Status(ctx context.Context, runID string) (*entity.Run, error) {
	return u.runs.Find(ctx, runID)
}

// DBCheck は保存済みの実行と、その実行が最後に書き込んだ各テーブルの現在の行数を返します。
func (u *StatusUsecase) DBCheck(ctx context.Context, runID string) (*entity.Run, entity.RowCounts, error) {
	run, err := u.runs.Find(ctx, runID)
	if err != nil {
		return nil, entity.RowCounts{}, err
	}
	counts, err := u.runs.CountByRun(ctx, runID)
	if err != nil {
		return nil, entity.RowCounts{}, err
	}
	return run, counts, nil
}
