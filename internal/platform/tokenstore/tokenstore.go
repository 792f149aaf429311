// Package tokenstore はプロバイダーのアクセストークンを保持します。
// Redis を使う場合は実行をまたいで共有されます。
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Store はキーごとにアクセストークンを取得・保存するインターフェースです。
// ttl が0の場合、トークンは期限切れになりません。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

type memoryEntry struct {
	token     string
	expiresAt time.Time // ゼロ値は無期限
}

// MemoryStore はプロセス内のメモリに保持する Store です。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get は key のトークンを返します。期限切れの場合は見つからない扱いです。
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.token, true, nil
}

// Set は key にトークンを保存します。
func (s *MemoryStore) Set(_ context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}
