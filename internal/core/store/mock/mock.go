// Package mock 提供测试用的 Mock Store 实现
//
// MockStore 特性:
//   - 包装任意 KVStore，未注入错误时透传
//   - 预设错误（SetError / SetKeyError）
//   - 调用记录（GetCalls）
package mock

import (
	"context"
	"sync"
	"time"

	"resource-base/internal/core/store"
	"resource-base/internal/core/store/memory"
)

// =============================================================================
// CallRecord 调用记录
// =============================================================================

// CallRecord 记录一次方法调用
type CallRecord struct {
	Method    string    // 方法名
	Key       string    // 键
	Args      []string  // 其余参数
	Timestamp time.Time // 调用时间
}

// =============================================================================
// MockStore
// =============================================================================

// MockStore 测试用 Mock 存储
type MockStore struct {
	mu sync.RWMutex

	// inner 被包装的存储
	inner store.KVStore

	// errors 预设错误（方法名 → 错误）
	errors map[string]error

	// keyErrors 预设错误（方法名 → 键 → 错误），优先于 errors
	keyErrors map[string]map[string]error

	// calls 调用记录
	calls []CallRecord
}

// NewMockStore 包装一个内存存储
func NewMockStore() *MockStore {
	return Wrap(memory.NewMemoryStore())
}

// Wrap 包装已有存储
func Wrap(inner store.KVStore) *MockStore {
	return &MockStore{
		inner:     inner,
		errors:    make(map[string]error),
		keyErrors: make(map[string]map[string]error),
	}
}

// Inner 返回被包装的存储（绕过错误注入直接检查数据）
func (m *MockStore) Inner() store.KVStore {
	return m.inner
}

// SetError 使某个方法的所有调用返回 err
func (m *MockStore) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method] = err
}

// SetKeyError 使某个方法针对某个键的调用返回 err
func (m *MockStore) SetKeyError(method, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keyErrors[method] == nil {
		m.keyErrors[method] = make(map[string]error)
	}
	m.keyErrors[method][key] = err
}

// ClearError 清除某个方法的预设错误
func (m *MockStore) ClearError(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errors, method)
	delete(m.keyErrors, method)
}

// ClearAllErrors 清除所有预设错误
func (m *MockStore) ClearAllErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = make(map[string]error)
	m.keyErrors = make(map[string]map[string]error)
}

// GetCalls 获取所有调用记录
func (m *MockStore) GetCalls() []CallRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]CallRecord, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallsForMethod 获取指定方法的调用记录
func (m *MockStore) GetCallsForMethod(method string) []CallRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []CallRecord
	for _, c := range m.calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// ClearCalls 清除调用记录
func (m *MockStore) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// intercept 记录调用并返回预设错误
func (m *MockStore) intercept(method, key string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, CallRecord{
		Method:    method,
		Key:       key,
		Args:      args,
		Timestamp: time.Now(),
	})

	if err, ok := m.keyErrors[method][key]; ok {
		return err
	}
	return m.errors[method]
}

// =============================================================================
// KVStore 实现
// =============================================================================

func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := m.intercept("Get", key); err != nil {
		return "", false, err
	}
	return m.inner.Get(ctx, key)
}

func (m *MockStore) Set(ctx context.Context, key string, value string) error {
	if err := m.intercept("Set", key, value); err != nil {
		return err
	}
	return m.inner.Set(ctx, key, value)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	if err := m.intercept("Delete", key); err != nil {
		return err
	}
	return m.inner.Delete(ctx, key)
}

func (m *MockStore) Incr(ctx context.Context, key string) (int64, error) {
	if err := m.intercept("Incr", key); err != nil {
		return 0, err
	}
	return m.inner.Incr(ctx, key)
}

func (m *MockStore) SAdd(ctx context.Context, key string, member string) error {
	if err := m.intercept("SAdd", key, member); err != nil {
		return err
	}
	return m.inner.SAdd(ctx, key, member)
}

func (m *MockStore) SRem(ctx context.Context, key string, member string) error {
	if err := m.intercept("SRem", key, member); err != nil {
		return err
	}
	return m.inner.SRem(ctx, key, member)
}

func (m *MockStore) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	if err := m.intercept("SIsMember", key, member); err != nil {
		return false, err
	}
	return m.inner.SIsMember(ctx, key, member)
}

func (m *MockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := m.intercept("SMembers", key); err != nil {
		return nil, err
	}
	return m.inner.SMembers(ctx, key)
}

// Scan 被包装存储不支持遍历时返回空结果
func (m *MockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if err := m.intercept("Scan", pattern); err != nil {
		return nil, err
	}
	scanner, ok := m.inner.(store.KeyScanner)
	if !ok {
		return []string{}, nil
	}
	return scanner.Scan(ctx, pattern)
}

func (m *MockStore) Ping(ctx context.Context) error {
	if err := m.intercept("Ping", ""); err != nil {
		return err
	}
	return m.inner.Ping(ctx)
}

func (m *MockStore) Close() error {
	if err := m.intercept("Close", ""); err != nil {
		return err
	}
	return m.inner.Close()
}

var (
	_ store.KVStore    = (*MockStore)(nil)
	_ store.KeyScanner = (*MockStore)(nil)
)
