package serialization

import (
	"fmt"
)

// SerializationError 序列化错误
type SerializationError struct {
	Operation string
	Message   string
	Cause     error
}

// Error 实现error接口
func (e SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap 返回底层错误
func (e SerializationError) Unwrap() error {
	return e.Cause
}

// MissingFieldError 入站文档缺少必填字段
type MissingFieldError struct {
	Field  QName
	Parent QName
}

// Error 实现error接口
func (e MissingFieldError) Error() string {
	if e.Parent.IsZero() {
		return fmt.Sprintf("missing mandatory field %s", e.Field)
	}
	return fmt.Sprintf("missing mandatory field %s in %s", e.Field, e.Parent)
}

// InvalidFieldError 字段存在但无法解析
type InvalidFieldError struct {
	Field QName
	Value string
	Cause error
}

// Error 实现error接口
func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s: %v", e.Value, e.Field, e.Cause)
}

// Unwrap 返回底层错误
func (e InvalidFieldError) Unwrap() error {
	return e.Cause
}

// StructureError 文档结构错误：根元素缺失/名称不符，或集合中某个元素解析失败
type StructureError struct {
	Expected QName
	Found    string
	// Index 集合元素下标，-1 表示不适用
	Index int
	// Key 失败元素的业务键（例如 SessionID），可能为空
	Key   string
	Cause error
}

// Error 实现error接口
func (e StructureError) Error() string {
	switch {
	case e.Index >= 0 && e.Key != "":
		return fmt.Sprintf("element %s[%d] (%s): %v", e.Expected, e.Index, e.Key, e.Cause)
	case e.Index >= 0:
		return fmt.Sprintf("element %s[%d]: %v", e.Expected, e.Index, e.Cause)
	case e.Found != "":
		return fmt.Sprintf("missing expected root %s, found %s", e.Expected, e.Found)
	case e.Cause != nil:
		return fmt.Sprintf("invalid structure of %s: %v", e.Expected, e.Cause)
	default:
		return fmt.Sprintf("missing expected root %s", e.Expected)
	}
}

// Unwrap 返回底层错误
func (e StructureError) Unwrap() error {
	return e.Cause
}
