// Package di provides dependency injection factories for creating application components.
package di

import (
	"gorm.io/gorm"

	"stock_ingest/internal/feature/ingest/adapters"
	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/platform/config"
	"stock_ingest/internal/platform/db"
)

// NewDB opens the configured store and migrates every ingest table.
func NewDB(s config.Settings) (*gorm.DB, error) {
	return db.OpenDB(s.DB, adapters.Models()...)
}

// NewStatusUsecase creates the run read-back usecase over gdb.
func NewStatusUsecase(gdb *gorm.DB) *usecase.StatusUsecase {
	return usecase.NewStatusUsecase(adapters.NewRunRepository(gdb))
}
