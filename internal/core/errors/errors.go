// Package errors 提供统一的错误处理机制
//
// 设计原则：
// 1. 所有错误都可以通过 errors.Is() 和 errors.As() 进行类型检查
// 2. 错误码用于日志分类与 CLI 退出提示
// 3. 支持错误链（error wrapping），底层存储错误保留为 Cause
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode string

// 错误码定义
const (
	// 资源定义 / 配置
	CodeConfigError  ErrorCode = "CONFIG_ERROR"
	CodeInvalidField ErrorCode = "INVALID_FIELD"

	// 请求错误
	CodeMissingID    ErrorCode = "MISSING_ID"
	CodeInvalidParam ErrorCode = "INVALID_PARAM"

	// 资源不存在
	CodeNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// 系统错误
	CodeStorageError ErrorCode = "STORAGE_ERROR"
	CodeUnavailable  ErrorCode = "UNAVAILABLE"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error 统一错误类型
type Error struct {
	Code    ErrorCode         // 错误码
	Message string            // 错误消息
	Cause   error             // 原始错误
	Details map[string]string // 额外详情（如 key、id、field）
}

// Error 实现 error 接口
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%s", k, e.Details[k])
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap 支持 errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 支持 errors.Is 进行错误码比较
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail 添加详情
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Detail 获取详情，不存在返回空字符串
func (e *Error) Detail(key string) string {
	if e.Details == nil {
		return ""
	}
	return e.Details[key]
}

// New 创建新错误
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf 创建格式化错误
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// GetCode 从错误中提取错误码
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode 检查错误是否为指定错误码
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Is 重导出 errors.Is
var Is = errors.Is

// As 重导出 errors.As
var As = errors.As
