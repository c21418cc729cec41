package oicp

import (
	"errors"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// ResultState 调用结果的传输层分类
type ResultState int

const (
	// StateSuccess 收到格式正确的响应，业务结果需看 StatusCode/Result
	StateSuccess ResultState = iota
	// StateFaulted 传输错误、非2xx或SOAP Fault
	StateFaulted
	// StateTimedOut 超过请求超时
	StateTimedOut
	// StateInvalidResponse 响应无法解析
	StateInvalidResponse
)

// String 返回状态名
func (s ResultState) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFaulted:
		return "faulted"
	case StateTimedOut:
		return "timed_out"
	case StateInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Result 客户端调用的唯一返回类型，统一表示传输失败、协议失败和成功
type Result[T any] struct {
	State           ResultState
	Content         *T
	HTTPStatus      int
	Err             error
	Runtime         time.Duration
	EventTrackingID EventTrackingID
}

// Succeeded 成功结果
func Succeeded[T any](content *T, httpStatus int, runtime time.Duration, id EventTrackingID) Result[T] {
	return Result[T]{State: StateSuccess, Content: content, HTTPStatus: httpStatus, Runtime: runtime, EventTrackingID: id}
}

// Faulted 传输失败结果
func Faulted[T any](err error, httpStatus int, runtime time.Duration, id EventTrackingID) Result[T] {
	return Result[T]{State: StateFaulted, Err: err, HTTPStatus: httpStatus, Runtime: runtime, EventTrackingID: id}
}

// TimedOut 超时结果
func TimedOut[T any](err error, runtime time.Duration, id EventTrackingID) Result[T] {
	return Result[T]{State: StateTimedOut, Err: err, Runtime: runtime, EventTrackingID: id}
}

// InvalidResponse 响应无法解析的结果
func InvalidResponse[T any](err error, httpStatus int, runtime time.Duration, id EventTrackingID) Result[T] {
	return Result[T]{State: StateInvalidResponse, Err: err, HTTPStatus: httpStatus, Runtime: runtime, EventTrackingID: id}
}

// IsSuccess 传输层面是否成功
func (r Result[T]) IsSuccess() bool {
	return r.State == StateSuccess && r.Content != nil
}

// ParseErrorKind 解析错误分类，用于指标标签
func ParseErrorKind(err error) string {
	var (
		missing   serialization.MissingFieldError
		invalid   serialization.InvalidFieldError
		structure serialization.StructureError
		format    FormatError
		codec     serialization.SerializationError
	)
	// StructureError 可能包裹字段错误，先按最具体的类型判断
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.As(err, &invalid), errors.As(err, &format):
		return "invalid_field"
	case errors.As(err, &structure):
		return "structure"
	case errors.As(err, &codec):
		return "codec"
	default:
		return "other"
	}
}
