package beds

import (
	"context"
	"path"
	"sync"
	"time"

	"hospilink-data/internal/store"
)

// fakeKV 仅用于单元测试（内存 KV + TTL）
type fakeKV struct {
	mu   sync.Mutex
	data map[string]fakeKVItem
}

type fakeKVItem struct {
	value   string
	expires time.Time // zero = no ttl
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data: make(map[string]fakeKVItem),
	}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		delete(f.data, key)
		return "", store.ErrMiss
	}
	return item.value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	f.data[key] = fakeKVItem{value: value, expires: exp}
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}
