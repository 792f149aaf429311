package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	_, ok, err := s.Get(ctx, "kis")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "kis", "tok-1", time.Hour))
	got, ok, err := s.Get(ctx, "kis")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", got)

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, "kis")
	require.NoError(t, err)
	assert.False(t, ok, "token should expire at ttl")
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "kis", "tok", 0))
	now = now.Add(1000 * time.Hour)

	got, ok, err := s.Get(ctx, "kis")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", got)
}

func TestRedisStore_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(mock redismock.ClientMock)
		wantToken string
		wantOK    bool
		wantErr   bool
	}{
		{
			name: "hit",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("kis-token:abc").SetVal("tok")
			},
			wantToken: "tok",
			wantOK:    true,
		},
		{
			name: "miss",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("kis-token:abc").RedisNil()
			},
		},
		{
			name: "redis error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("kis-token:abc").SetErr(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := redismock.NewClientMock()
			tt.setup(mock)
			s := NewRedisStore(db, "kis-token")

			token, ok, err := s.Get(context.Background(), "abc")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisStore_Set(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	mock.ExpectSet("token:abc", "tok", 12*time.Hour).SetVal("OK")
	s := NewRedisStore(db, "")

	require.NoError(t, s.Set(context.Background(), "abc", "tok", 12*time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}
