// Package db はインジェストストアの gorm データベース接続を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 対応ドライバー
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const retryInterval = 3 * time.Second

// Config は接続先データベースの設定です。
type Config struct {
	Driver         string        // sqlite または postgres
	Path           string        // SQLite のファイルパス
	DSN            string        // PostgreSQL の接続文字列
	ConnectTimeout time.Duration // 初回接続をリトライし続ける時間
}

// Location は認証情報を含めずにストアの場所を返します。
func (c Config) Location() string {
	if c.Driver == DriverPostgres {
		cfg, err := pgx.ParseConfig(c.DSN)
		if err != nil {
			return "postgres"
		}
		return fmt.Sprintf("postgres://%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}
	return c.Path
}

// BuildDSN は cfg からドライバー用の接続文字列を組み立てます。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		return cfg.DSN
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.Path)
}

// Opener は DSN から gorm 接続を開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は成功するか timeout を過ぎるまで open を繰り返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
}

func openSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

func openPostgres(dsn string) (*gorm.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	sqlDB := stdlib.OpenDB(*connCfg)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
}

// OpenDB は設定されたデータベースに接続し、models をマイグレーションします。
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	var open Opener
	switch cfg.Driver {
	case DriverSQLite, "":
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		cfg.Driver = DriverSQLite
		open = openSQLite
	case DriverPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		open = openPostgres
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// Close は内部のコネクションプールを解放します。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
