package store

import (
	"sync/atomic"
	"time"
)

// =============================================================================
// 存储层监控指标
// =============================================================================

// StoreMetrics 存储层监控指标
type StoreMetrics struct {
	// 字符串操作计数
	GetCount    atomic.Int64
	SetCount    atomic.Int64
	DeleteCount atomic.Int64
	IncrCount   atomic.Int64

	// 集合操作计数（SAdd / SRem / SIsMember / SMembers）
	SetOpCount atomic.Int64

	// 错误计数
	ErrorCount         atomic.Int64
	MissCount          atomic.Int64 // Get 未命中
	ConnectionErrCount atomic.Int64
	TimeoutErrCount    atomic.Int64

	// 延迟统计（纳秒）
	GetLatencySum atomic.Int64
	SetLatencySum atomic.Int64
}

// NewStoreMetrics 创建新的存储指标
func NewStoreMetrics() *StoreMetrics {
	return &StoreMetrics{}
}

func (m *StoreMetrics) recordError(err error) {
	if err == nil {
		return
	}
	m.ErrorCount.Add(1)
	if IsConnectionFailed(err) {
		m.ConnectionErrCount.Add(1)
	} else if IsTimeout(err) {
		m.TimeoutErrCount.Add(1)
	}
}

// RecordGet 记录 Get 操作
func (m *StoreMetrics) RecordGet(duration time.Duration, found bool, err error) {
	m.GetCount.Add(1)
	m.GetLatencySum.Add(int64(duration))
	if err == nil && !found {
		m.MissCount.Add(1)
	}
	m.recordError(err)
}

// RecordSet 记录 Set 操作
func (m *StoreMetrics) RecordSet(duration time.Duration, err error) {
	m.SetCount.Add(1)
	m.SetLatencySum.Add(int64(duration))
	m.recordError(err)
}

// RecordDelete 记录 Delete 操作
func (m *StoreMetrics) RecordDelete(err error) {
	m.DeleteCount.Add(1)
	m.recordError(err)
}

// RecordIncr 记录 Incr 操作
func (m *StoreMetrics) RecordIncr(err error) {
	m.IncrCount.Add(1)
	m.recordError(err)
}

// RecordSetOp 记录集合操作
func (m *StoreMetrics) RecordSetOp(err error) {
	m.SetOpCount.Add(1)
	m.recordError(err)
}

// GetAvgGetLatency 获取平均 Get 延迟
func (m *StoreMetrics) GetAvgGetLatency() time.Duration {
	count := m.GetCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.GetLatencySum.Load() / count)
}

// GetAvgSetLatency 获取平均 Set 延迟
func (m *StoreMetrics) GetAvgSetLatency() time.Duration {
	count := m.SetCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.SetLatencySum.Load() / count)
}

// Snapshot 获取指标快照
func (m *StoreMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		GetCount:      m.GetCount.Load(),
		SetCount:      m.SetCount.Load(),
		DeleteCount:   m.DeleteCount.Load(),
		IncrCount:     m.IncrCount.Load(),
		SetOpCount:    m.SetOpCount.Load(),
		ErrorCount:    m.ErrorCount.Load(),
		MissCount:     m.MissCount.Load(),
		AvgGetLatency: m.GetAvgGetLatency(),
		AvgSetLatency: m.GetAvgSetLatency(),
	}
}

// Reset 重置指标
func (m *StoreMetrics) Reset() {
	m.GetCount.Store(0)
	m.SetCount.Store(0)
	m.DeleteCount.Store(0)
	m.IncrCount.Store(0)
	m.SetOpCount.Store(0)
	m.ErrorCount.Store(0)
	m.MissCount.Store(0)
	m.ConnectionErrCount.Store(0)
	m.TimeoutErrCount.Store(0)
	m.GetLatencySum.Store(0)
	m.SetLatencySum.Store(0)
}

// MetricsSnapshot 指标快照
type MetricsSnapshot struct {
	GetCount      int64         `json:"get_count" yaml:"get_count"`
	SetCount      int64         `json:"set_count" yaml:"set_count"`
	DeleteCount   int64         `json:"delete_count" yaml:"delete_count"`
	IncrCount     int64         `json:"incr_count" yaml:"incr_count"`
	SetOpCount    int64         `json:"set_op_count" yaml:"set_op_count"`
	ErrorCount    int64         `json:"error_count" yaml:"error_count"`
	MissCount     int64         `json:"miss_count" yaml:"miss_count"`
	AvgGetLatency time.Duration `json:"avg_get_latency" yaml:"avg_get_latency"`
	AvgSetLatency time.Duration `json:"avg_set_latency" yaml:"avg_set_latency"`
}

// =============================================================================
// 资源层监控指标
// =============================================================================

// RepositoryMetrics 资源层监控指标（按资源类型一份）
type RepositoryMetrics struct {
	CreateCount atomic.Int64
	LoadCount   atomic.Int64
	UpdateCount atomic.Int64
	DeleteCount atomic.Int64
	ListCount   atomic.Int64
	SearchCount atomic.Int64

	CreateErrorCount atomic.Int64
	LoadErrorCount   atomic.Int64
	UpdateErrorCount atomic.Int64
	DeleteErrorCount atomic.Int64
	ListErrorCount   atomic.Int64
	SearchErrorCount atomic.Int64

	NotFoundCount atomic.Int64
}

// NewRepositoryMetrics 创建新的资源层指标
func NewRepositoryMetrics() *RepositoryMetrics {
	return &RepositoryMetrics{}
}

func record(count, errCount *atomic.Int64, err error) {
	count.Add(1)
	if err != nil {
		errCount.Add(1)
	}
}

// RecordCreate 记录创建
func (m *RepositoryMetrics) RecordCreate(err error) { record(&m.CreateCount, &m.CreateErrorCount, err) }

// RecordUpdate 记录更新
func (m *RepositoryMetrics) RecordUpdate(err error) { record(&m.UpdateCount, &m.UpdateErrorCount, err) }

// RecordDelete 记录销毁
func (m *RepositoryMetrics) RecordDelete(err error) { record(&m.DeleteCount, &m.DeleteErrorCount, err) }

// RecordList 记录列举
func (m *RepositoryMetrics) RecordList(err error) { record(&m.ListCount, &m.ListErrorCount, err) }

// RecordSearch 记录二级键查询
func (m *RepositoryMetrics) RecordSearch(err error) { record(&m.SearchCount, &m.SearchErrorCount, err) }

// RecordLoad 记录加载，notFound 单独计数且不计入错误
func (m *RepositoryMetrics) RecordLoad(notFound bool, err error) {
	m.LoadCount.Add(1)
	if notFound {
		m.NotFoundCount.Add(1)
		return
	}
	if err != nil {
		m.LoadErrorCount.Add(1)
	}
}
