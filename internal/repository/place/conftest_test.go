package place

import (
	"context"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn       func(ctx context.Context, key, path string, data []byte) error
	jsonSetNXFn     func(ctx context.Context, key, path string, data []byte) (bool, error)
	jsonGetFn       func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonGetMultiFn  func(ctx context.Context, keys []string, path string) ([][]byte, error)
	jsonNumIncrByFn func(ctx context.Context, key, path string, val int64) error
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, path, data)
	}
	return true, nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return []byte("[]"), nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys, path)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) JSONNumIncrBy(ctx context.Context, key, path string, val int64) error {
	if m.jsonNumIncrByFn != nil {
		return m.jsonNumIncrByFn(ctx, key, path, val)
	}
	return nil
}
