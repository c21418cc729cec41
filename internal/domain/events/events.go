package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// Event 统一业务事件接口
type Event interface {
	// GetID 获取事件ID
	GetID() string
	// GetType 获取事件类型
	GetType() EventType
	// GetOperation 获取OICP操作名
	GetOperation() oicp.Operation
	// GetTimestamp 获取事件时间戳
	GetTimestamp() time.Time
	// GetSeverity 获取事件严重程度
	GetSeverity() EventSeverity
	// GetMetadata 获取事件元数据
	GetMetadata() Metadata
	// GetPayload 获取事件载荷
	GetPayload() interface{}
	// ToJSON 序列化为JSON
	ToJSON() ([]byte, error)
}

// BaseEvent 基础事件结构
type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Operation oicp.Operation `json:"operation"`
	Timestamp time.Time      `json:"timestamp"`
	Severity  EventSeverity  `json:"severity"`
	Metadata  Metadata       `json:"metadata"`
}

// GetID 实现Event接口
func (e *BaseEvent) GetID() string {
	return e.ID
}

// GetType 实现Event接口
func (e *BaseEvent) GetType() EventType {
	return e.Type
}

// GetOperation 实现Event接口
func (e *BaseEvent) GetOperation() oicp.Operation {
	return e.Operation
}

// GetTimestamp 实现Event接口
func (e *BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// GetSeverity 实现Event接口
func (e *BaseEvent) GetSeverity() EventSeverity {
	return e.Severity
}

// GetMetadata 实现Event接口
func (e *BaseEvent) GetMetadata() Metadata {
	return e.Metadata
}

// NewBaseEvent 创建基础事件
func NewBaseEvent(eventType EventType, operation oicp.Operation, severity EventSeverity, metadata Metadata) *BaseEvent {
	return &BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Operation: operation,
		Timestamp: time.Now().UTC(),
		Severity:  severity,
		Metadata:  metadata,
	}
}

// RequestSentEvent 出站请求已发送
type RequestSentEvent struct {
	*BaseEvent
	Request RequestInfo `json:"request"`
}

// GetPayload 实现Event接口
func (e *RequestSentEvent) GetPayload() interface{} {
	return e.Request
}

// ToJSON 实现Event接口
func (e *RequestSentEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ResponseReceivedEvent 出站请求收到结果（包括失败和超时）
type ResponseReceivedEvent struct {
	*BaseEvent
	Response ResponseInfo `json:"response"`
}

// GetPayload 实现Event接口
func (e *ResponseReceivedEvent) GetPayload() interface{} {
	return e.Response
}

// ToJSON 实现Event接口
func (e *ResponseReceivedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RequestReceivedEvent 入站请求
type RequestReceivedEvent struct {
	*BaseEvent
	Request RequestInfo `json:"request"`
}

// GetPayload 实现Event接口
func (e *RequestReceivedEvent) GetPayload() interface{} {
	return e.Request
}

// ToJSON 实现Event接口
func (e *RequestReceivedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ResponseSentEvent 入站请求的应答已发出
type ResponseSentEvent struct {
	*BaseEvent
	Response ResponseInfo `json:"response"`
}

// GetPayload 实现Event接口
func (e *ResponseSentEvent) GetPayload() interface{} {
	return e.Response
}

// ToJSON 实现Event接口
func (e *ResponseSentEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseFailedEvent 报文解析失败
type ParseFailedEvent struct {
	*BaseEvent
	Failure ParseFailureInfo `json:"failure"`
}

// GetPayload 实现Event接口
func (e *ParseFailedEvent) GetPayload() interface{} {
	return e.Failure
}

// ToJSON 实现Event接口
func (e *ParseFailedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CDRReceivedEvent 收到并保存了充电记录
type CDRReceivedEvent struct {
	*BaseEvent
	CDR CDRInfo `json:"cdr"`
}

// GetPayload 实现Event接口
func (e *CDRReceivedEvent) GetPayload() interface{} {
	return e.CDR
}

// ToJSON 实现Event接口
func (e *CDRReceivedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RemoteCommandEvent 远程指令生命周期事件
type RemoteCommandEvent struct {
	*BaseEvent
	Command RemoteCommandInfo `json:"command"`
}

// GetPayload 实现Event接口
func (e *RemoteCommandEvent) GetPayload() interface{} {
	return e.Command
}

// ToJSON 实现Event接口
func (e *RemoteCommandEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFactory 事件工厂
type EventFactory struct {
	source          string
	protocolVersion string
}

// NewEventFactory 创建事件工厂
func NewEventFactory(source, protocolVersion string) *EventFactory {
	return &EventFactory{source: source, protocolVersion: protocolVersion}
}

// Metadata 生成带跟踪标识的元数据
func (f *EventFactory) Metadata(trackingID oicp.EventTrackingID, processID *oicp.ProcessID) Metadata {
	return Metadata{
		Source:          f.source,
		EventTrackingID: trackingID,
		ProcessID:       processID,
		ProtocolVersion: f.protocolVersion,
	}
}

// CreateRequestSentEvent 创建出站请求事件
func (f *EventFactory) CreateRequestSentEvent(info RequestInfo, metadata Metadata) *RequestSentEvent {
	info.Direction = DirectionOutbound
	return &RequestSentEvent{
		BaseEvent: NewBaseEvent(EventTypeRequestSent, info.Operation, EventSeverityInfo, metadata),
		Request:   info,
	}
}

// CreateResponseReceivedEvent 创建出站响应事件，非成功状态记为警告
func (f *EventFactory) CreateResponseReceivedEvent(info ResponseInfo, metadata Metadata) *ResponseReceivedEvent {
	info.Direction = DirectionOutbound
	severity := EventSeverityInfo
	if info.State != oicp.StateSuccess.String() {
		severity = EventSeverityWarning
	}
	return &ResponseReceivedEvent{
		BaseEvent: NewBaseEvent(EventTypeResponseReceived, info.Operation, severity, metadata),
		Response:  info,
	}
}

// CreateRequestReceivedEvent 创建入站请求事件
func (f *EventFactory) CreateRequestReceivedEvent(info RequestInfo, metadata Metadata) *RequestReceivedEvent {
	info.Direction = DirectionInbound
	return &RequestReceivedEvent{
		BaseEvent: NewBaseEvent(EventTypeRequestReceived, info.Operation, EventSeverityInfo, metadata),
		Request:   info,
	}
}

// CreateResponseSentEvent 创建入站应答事件
func (f *EventFactory) CreateResponseSentEvent(info ResponseInfo, metadata Metadata) *ResponseSentEvent {
	info.Direction = DirectionInbound
	return &ResponseSentEvent{
		BaseEvent: NewBaseEvent(EventTypeResponseSent, info.Operation, EventSeverityInfo, metadata),
		Response:  info,
	}
}

// CreateParseFailedEvent 创建解析失败事件
func (f *EventFactory) CreateParseFailedEvent(operation oicp.Operation, direction Direction, err error, metadata Metadata) *ParseFailedEvent {
	return &ParseFailedEvent{
		BaseEvent: NewBaseEvent(EventTypeParseFailed, operation, EventSeverityError, metadata),
		Failure: ParseFailureInfo{
			Operation: operation,
			Direction: direction,
			Kind:      oicp.ParseErrorKind(err),
			Error:     err.Error(),
		},
	}
}

// CreateCDRReceivedEvent 创建CDR事件
func (f *EventFactory) CreateCDRReceivedEvent(cdr oicp.ChargeDetailRecord, metadata Metadata) *CDRReceivedEvent {
	info := CDRInfo{
		SessionID:      cdr.SessionID,
		EVSEID:         cdr.EVSEID,
		SessionStart:   cdr.SessionStart,
		SessionEnd:     cdr.SessionEnd,
		ConsumedEnergy: cdr.ConsumedEnergy,
		OperatorID:     cdr.EVSEID.OperatorID(),
	}
	if cdr.PartnerProductID != nil {
		product := cdr.PartnerProductID.String()
		info.PartnerProduct = &product
	}
	if cdr.Identification != nil {
		info.Identification = cdr.Identification.Variant()
	}
	return &CDRReceivedEvent{
		BaseEvent: NewBaseEvent(EventTypeCDRReceived, oicp.OperationSendChargeDetailRecord, EventSeverityInfo, metadata),
		CDR:       info,
	}
}

// CreateRemoteCommandEvent 创建远程指令事件
func (f *EventFactory) CreateRemoteCommandEvent(eventType EventType, info RemoteCommandInfo, metadata Metadata) *RemoteCommandEvent {
	severity := EventSeverityInfo
	if eventType == EventTypeRemoteCommandFailed {
		severity = EventSeverityError
	}
	return &RemoteCommandEvent{
		BaseEvent: NewBaseEvent(eventType, info.Operation, severity, metadata),
		Command:   info,
	}
}
