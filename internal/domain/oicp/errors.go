package oicp

import (
	"fmt"

	"github.com/charging-platform/oicp-gateway/internal/domain/validation"
)

// FormatError 标识符/值字符串不符合其语法
type FormatError struct {
	Type   string
	Value  string
	Reason string
}

// Error 实现error接口
func (e FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s %q", e.Type, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Type, e.Value, e.Reason)
}

// ValidationError 构造请求时调用方提供了非法的参数组合
type ValidationError struct {
	Operation Operation
	Cause     error
}

// Error 实现error接口
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s request: %v", e.Operation, e.Cause)
}

// Unwrap 返回底层的 validation.ValidationErrors
func (e ValidationError) Unwrap() error {
	return e.Cause
}

// validateRequest 使用共享验证器检查请求结构体
func validateRequest(op Operation, req interface{}) error {
	if err := sharedValidator.ValidateStruct(req); err != nil {
		return ValidationError{Operation: op, Cause: err}
	}
	return nil
}

// sharedValidator 构造后只读，可并发使用
var sharedValidator = validation.NewValidator()
