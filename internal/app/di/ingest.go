package di

import (
	"context"

	"gorm.io/gorm"

	"stock_ingest/internal/feature/ingest/adapters"
	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/platform/config"
)

// NewIngestUsecase wires providers and the gorm store into an IngestUsecase.
// The returned func releases provider resources.
func NewIngestUsecase(ctx context.Context, s config.Settings, gdb *gorm.DB) (*usecase.IngestUsecase, func()) {
	tokens, cleanup := NewTokenStore(ctx, s)
	uc := usecase.NewIngestUsecase(
		adapters.NewIngestStore(gdb),
		adapters.NewRunRepository(gdb),
		NewQuoteProvider(s, tokens),
		NewDisclosureProvider(s),
		Credentials(s),
		usecase.Options{Workers: s.Workers, MaxPricePages: s.MaxPricePages},
	)
	return uc, cleanup
}
