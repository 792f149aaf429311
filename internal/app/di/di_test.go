package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_ingest/internal/platform/config"
	"stock_ingest/internal/platform/db"
	"stock_ingest/internal/platform/externalapi/dart"
	"stock_ingest/internal/platform/externalapi/kis"
	"stock_ingest/internal/platform/tokenstore"
)

func TestProviders_NilWithoutCredentials(t *testing.T) {
	s := config.Settings{}

	assert.Nil(t, NewQuoteProvider(s, tokenstore.NewMemoryStore()))
	assert.Nil(t, NewDisclosureProvider(s))
}

func TestProviders_WithCredentials(t *testing.T) {
	s := config.Settings{
		KIS:  kis.Config{AppKey: "k", AppSecret: "s", BaseURL: kis.DefaultBaseURL},
		DART: dart.Config{APIKey: "d", BaseURL: dart.DefaultBaseURL},
	}

	assert.IsType(t, &kis.Client{}, NewQuoteProvider(s, tokenstore.NewMemoryStore()))
	assert.IsType(t, &dart.Client{}, NewDisclosureProvider(s))

	creds := Credentials(s)
	assert.Equal(t, "k", creds.KISAppKey)
	assert.Equal(t, "d", creds.DARTAPIKey)
}

func TestNewTokenStore_FallsBackToMemory(t *testing.T) {
	store, cleanup := NewTokenStore(context.Background(), config.Settings{})
	defer cleanup()
	assert.IsType(t, &tokenstore.MemoryStore{}, store)

	s := config.Settings{}
	s.Redis.Addr = "127.0.0.1:1"
	store, cleanup = NewTokenStore(context.Background(), s)
	defer cleanup()
	assert.IsType(t, &tokenstore.MemoryStore{}, store, "zero TTL keeps tokens in memory")
}

func TestNewIngestUsecase_OpensStore(t *testing.T) {
	s := config.Settings{DB: db.Config{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "ingest.db")}}

	gdb, err := NewDB(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	uc, cleanup := NewIngestUsecase(context.Background(), s, gdb)
	defer cleanup()
	assert.NotNil(t, uc)
	assert.NotNil(t, NewStatusUsecase(gdb))
}
