// Package errors 封装 go-errors，为配置类错误附带调用栈
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New 创建带调用栈的错误
// 传入 error 时直接包装，传入其他值时使用 fmt 格式化
func New(e any) error {
	if e == nil {
		return nil
	}
	return goerrors.Wrap(e, 1)
}

// Errorf 创建带调用栈的格式化错误
func Errorf(message string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(message, args...), 1)
}

// WithStackTrace 为错误附加调用栈，已有调用栈的错误直接返回
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix 为错误附加调用栈和前缀，保留 errors.Is 链
func WithStackTraceAndPrefix(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(fmt.Errorf("%s: %w", fmt.Sprintf(message, args...), err), 1)
}

// IsError 判断 actual 是否为 expected（会解开调用栈包装）
func IsError(actual, expected error) bool {
	return goerrors.Is(actual, expected)
}

// As 是 errors.As 的转发
func As(err error, target any) bool {
	return errors.As(err, target)
}

// ErrorStack 返回错误信息与调用栈
func ErrorStack(err error) string {
	if err == nil {
		return ""
	}
	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return goErr.ErrorStack()
	}
	return err.Error()
}
