package errors

// 预定义哨兵错误（用于 errors.Is 比较）
// 这些错误用于快速类型检查，不包含详细信息
var (
	ErrConfigError  = New(CodeConfigError, "invalid resource configuration")
	ErrInvalidField = New(CodeInvalidField, "invalid field")
	ErrMissingID    = New(CodeMissingID, "resource identifier required")
	ErrInvalidParam = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound     = New(CodeNotFound, "resource not found")
	ErrStorageError = New(CodeStorageError, "storage error")
	ErrUnavailable  = New(CodeUnavailable, "store unavailable")
)

// IsNotFound 检查是否为资源不存在错误
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsStorageError 检查是否为存储错误
func IsStorageError(err error) bool {
	return IsCode(err, CodeStorageError) || IsCode(err, CodeUnavailable)
}

// IsUsageError 检查是否为调用方错误（配置、字段、缺少 ID、参数）
func IsUsageError(err error) bool {
	switch GetCode(err) {
	case CodeConfigError, CodeInvalidField, CodeMissingID, CodeInvalidParam:
		return true
	default:
		return false
	}
}
