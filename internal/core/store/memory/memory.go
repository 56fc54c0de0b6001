// Package memory 提供进程内存储实现
package memory

import (
	"context"
	"math"
	"path"
	"strconv"
	"sync"
	"time"

	"resource-base/internal/core/store"
)

const storeType = "memory"

// =============================================================================
// MemoryStore 内存存储实现
// =============================================================================

// MemoryStore 内存键值存储
// 字符串与集合共用一个键空间，同一个键不能同时是两种类型（与 Redis 一致）
type MemoryStore struct {
	strings map[string]string
	sets    map[string]map[string]struct{}
	mu      sync.RWMutex
	closed  bool
	metrics *store.StoreMetrics
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		metrics: store.NewStoreMetrics(),
	}
}

func wrongType(op, key string) error {
	return store.NewStoreError(storeType, op, key, store.ErrInvalidType)
}

// Get 获取值
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.metrics.RecordGet(time.Since(start), false, store.ErrClosed)
		return "", false, store.ErrClosed
	}
	if _, isSet := s.sets[key]; isSet {
		err := wrongType("Get", key)
		s.metrics.RecordGet(time.Since(start), false, err)
		return "", false, err
	}

	value, ok := s.strings[key]
	s.metrics.RecordGet(time.Since(start), ok, nil)
	return value, ok, nil
}

// Set 设置值
func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.metrics.RecordSet(time.Since(start), store.ErrClosed)
		return store.ErrClosed
	}

	// SET 覆盖任意类型的旧值
	delete(s.sets, key)
	s.strings[key] = value
	s.metrics.RecordSet(time.Since(start), nil)
	return nil
}

// Delete 删除键
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.metrics.RecordDelete(store.ErrClosed)
		return store.ErrClosed
	}

	delete(s.strings, key)
	delete(s.sets, key)
	s.metrics.RecordDelete(nil)
	return nil
}

// Incr 原子递增
func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.metrics.RecordIncr(store.ErrClosed)
		return 0, store.ErrClosed
	}
	if _, isSet := s.sets[key]; isSet {
		err := wrongType("Incr", key)
		s.metrics.RecordIncr(err)
		return 0, err
	}

	var current int64
	if raw, ok := s.strings[key]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			storeErr := wrongType("Incr", key)
			s.metrics.RecordIncr(storeErr)
			return 0, storeErr
		}
		current = n
	}

	if current == math.MaxInt64 {
		storeErr := store.NewStoreError(storeType, "Incr", key, store.ErrOverflow)
		s.metrics.RecordIncr(storeErr)
		return 0, storeErr
	}
	current++
	s.strings[key] = strconv.FormatInt(current, 10)
	s.metrics.RecordIncr(nil)
	return current, nil
}

// SAdd 向集合添加元素
func (s *MemoryStore) SAdd(ctx context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSetKey("SAdd", key); err != nil {
		s.metrics.RecordSetOp(err)
		return err
	}

	members, ok := s.sets[key]
	if !ok {
		members = make(map[string]struct{})
		s.sets[key] = members
	}
	members[member] = struct{}{}
	s.metrics.RecordSetOp(nil)
	return nil
}

// SRem 从集合移除元素，集合为空时删除键
func (s *MemoryStore) SRem(ctx context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSetKey("SRem", key); err != nil {
		s.metrics.RecordSetOp(err)
		return err
	}

	if members, ok := s.sets[key]; ok {
		delete(members, member)
		if len(members) == 0 {
			delete(s.sets, key)
		}
	}
	s.metrics.RecordSetOp(nil)
	return nil
}

// SIsMember 检查元素是否在集合中
func (s *MemoryStore) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSetKey("SIsMember", key); err != nil {
		s.metrics.RecordSetOp(err)
		return false, err
	}

	_, ok := s.sets[key][member]
	s.metrics.RecordSetOp(nil)
	return ok, nil
}

// SMembers 获取集合所有成员
func (s *MemoryStore) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSetKey("SMembers", key); err != nil {
		s.metrics.RecordSetOp(err)
		return nil, err
	}

	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	s.metrics.RecordSetOp(nil)
	return members, nil
}

// checkSetKey 调用方需持有锁
func (s *MemoryStore) checkSetKey(op, key string) error {
	if s.closed {
		return store.ErrClosed
	}
	if _, isString := s.strings[key]; isString {
		return wrongType(op, key)
	}
	return nil
}

// Scan 按 glob 模式遍历键
func (s *MemoryStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}

	keys := make([]string, 0)
	match := func(key string) error {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return store.NewStoreError(storeType, "Scan", pattern, err)
		}
		if ok {
			keys = append(keys, key)
		}
		return nil
	}
	for key := range s.strings {
		if err := match(key); err != nil {
			return nil, err
		}
	}
	for key := range s.sets {
		if err := match(key); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Ping 健康检查
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

// Close 关闭存储，之后所有操作返回 ErrClosed
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.strings = nil
	s.sets = nil
	return nil
}

// Len 返回键数量（字符串 + 集合）
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.strings) + len(s.sets)
}

// GetMetrics 获取指标
func (s *MemoryStore) GetMetrics() *store.StoreMetrics {
	return s.metrics
}

var (
	_ store.KVStore         = (*MemoryStore)(nil)
	_ store.KeyScanner      = (*MemoryStore)(nil)
	_ store.MetricsProvider = (*MemoryStore)(nil)
)
