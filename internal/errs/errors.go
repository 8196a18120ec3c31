package errs

import (
	"errors"
	"fmt"
)

// 预定义错误，配合 errors.Is 使用
var (
	// ErrInvalidInput 参数非法
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptContainer 容器结构损坏
	ErrCorruptContainer = errors.New("corrupt container")

	// ErrConfiguration 配置缺失或错误
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound 文件不存在
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied 无权限
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPipelineFailure 外部引擎执行失败
	ErrPipelineFailure = errors.New("pipeline failure")

	// ErrUnsupportedFormat 没有过滤器支持该文件
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnknownFilter 容器声明了未注册的过滤器
	ErrUnknownFilter = errors.New("unknown filter")
)

// Code 错误代码
type Code string

// 错误代码常量
const (
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeCorruptContainer  Code = "CORRUPT_CONTAINER"
	CodeConfiguration     Code = "CONFIGURATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodePermissionDenied  Code = "PERMISSION_DENIED"
	CodePipelineFailure   Code = "PIPELINE_FAILURE"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeUnknownFilter     Code = "UNKNOWN_FILTER"
)

var sentinels = map[Code]error{
	CodeInvalidInput:      ErrInvalidInput,
	CodeCorruptContainer:  ErrCorruptContainer,
	CodeConfiguration:     ErrConfiguration,
	CodeNotFound:          ErrNotFound,
	CodePermissionDenied:  ErrPermissionDenied,
	CodePipelineFailure:   ErrPipelineFailure,
	CodeUnsupportedFormat: ErrUnsupportedFormat,
	CodeUnknownFilter:     ErrUnknownFilter,
}

// Error 转换错误
type Error struct {
	Code    Code   // 错误代码
	Message string // 错误消息
	File    string // 相关文件，可为空
	Cause   error  // 原因
}

// Error 实现 error 接口
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.File != "" {
		msg += fmt.Sprintf(" (file '%s')", e.File)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is(err, ErrNotFound) 这类判断按错误代码生效
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Code]; ok && s == target {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Code == e.Code
	}
	return false
}

// New 创建错误
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf 创建带格式化消息的错误
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装错误
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithFile 附加相关文件名
func (e *Error) WithFile(file string) *Error {
	e.File = file
	return e
}

// CodeOf 返回错误链上第一个 *Error 的代码
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// InvalidInput 参数非法
func InvalidInput(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidInput, format, args...)
}

// Corrupt 容器损坏
func Corrupt(format string, args ...interface{}) *Error {
	return Newf(CodeCorruptContainer, format, args...)
}

// Configuration 配置错误
func Configuration(format string, args ...interface{}) *Error {
	return Newf(CodeConfiguration, format, args...)
}
