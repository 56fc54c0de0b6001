package store

import (
	"context"
	"errors"
	"fmt"
)

// 存储层错误定义
var (
	// ErrInvalidType 类型不匹配（如对非整数值执行 Incr，对字符串键执行集合操作）
	ErrInvalidType = errors.New("invalid type")

	// ErrConnectionFailed 连接失败
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout 操作超时
	ErrTimeout = errors.New("operation timeout")

	// ErrClosed 存储已关闭
	ErrClosed = errors.New("store closed")

	// ErrOverflow 计数器递增溢出 int64
	ErrOverflow = errors.New("increment would overflow")

	// ErrInvalidKey 无效的键
	ErrInvalidKey = errors.New("invalid key")
)

// StoreError 存储层错误包装
type StoreError struct {
	Op        string // 操作名称
	Key       string // 相关键
	StoreType string // 存储类型
	Err       error  // 原始错误
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s: %s key=%s: %v", e.StoreType, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s: %s: %v", e.StoreType, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError 创建存储错误
func NewStoreError(storeType, op, key string, err error) *StoreError {
	return &StoreError{
		Op:        op,
		Key:       key,
		StoreType: storeType,
		Err:       err,
	}
}

// IsClosed 检查是否为存储已关闭错误
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsConnectionFailed 检查是否为连接错误
func IsConnectionFailed(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsTimeout 检查是否为超时错误
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
