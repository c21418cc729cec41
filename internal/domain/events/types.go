package events

import (
	"time"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// EventType 事件类型
type EventType string

const (
	// 出站请求生命周期
	EventTypeRequestSent      EventType = "oicp.request.sent"
	EventTypeResponseReceived EventType = "oicp.response.received"

	// 入站请求生命周期
	EventTypeRequestReceived EventType = "oicp.request.received"
	EventTypeResponseSent    EventType = "oicp.response.sent"

	// 解析失败
	EventTypeParseFailed EventType = "oicp.parse.failed"

	// 收到CDR
	EventTypeCDRReceived EventType = "oicp.cdr.received"

	// 远程指令事件
	EventTypeRemoteCommandReceived EventType = "oicp.remote_command.received"
	EventTypeRemoteCommandExecuted EventType = "oicp.remote_command.executed"
	EventTypeRemoteCommandFailed   EventType = "oicp.remote_command.failed"
)

// EventSeverity 事件严重程度
type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "info"
	EventSeverityWarning  EventSeverity = "warning"
	EventSeverityError    EventSeverity = "error"
	EventSeverityCritical EventSeverity = "critical"
)

// Direction 消息方向
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// RequestInfo 请求摘要
type RequestInfo struct {
	Operation  oicp.Operation   `json:"operation"`
	Direction  Direction        `json:"direction"`
	ProviderID *oicp.ProviderID `json:"provider_id,omitempty"`
	EVSEID     *oicp.EVSEID     `json:"evse_id,omitempty"`
	SessionID  *oicp.SessionID  `json:"session_id,omitempty"`
	Endpoint   string           `json:"endpoint,omitempty"`
}

// ResponseInfo 响应摘要
type ResponseInfo struct {
	Operation  oicp.Operation `json:"operation"`
	Direction  Direction      `json:"direction"`
	State      string         `json:"state"`
	StatusCode *string        `json:"status_code,omitempty"`
	Result     *bool          `json:"result,omitempty"`
	HTTPStatus int            `json:"http_status,omitempty"`
	RuntimeMS  int64          `json:"runtime_ms"`
	Error      *string        `json:"error,omitempty"`
}

// ParseFailureInfo 解析失败详情
type ParseFailureInfo struct {
	Operation oicp.Operation `json:"operation"`
	Direction Direction      `json:"direction"`
	Kind      string         `json:"kind"`
	Error     string         `json:"error"`
}

// CDRInfo 充电记录摘要
type CDRInfo struct {
	SessionID      oicp.SessionID  `json:"session_id"`
	EVSEID         oicp.EVSEID     `json:"evse_id"`
	PartnerProduct *string         `json:"partner_product_id,omitempty"`
	SessionStart   time.Time       `json:"session_start"`
	SessionEnd     time.Time       `json:"session_end"`
	ConsumedEnergy float64         `json:"consumed_energy_kwh"`
	Identification string          `json:"identification_variant"`
	OperatorID     oicp.OperatorID `json:"operator_id"`
}

// RemoteCommandInfo 远程指令信息
type RemoteCommandInfo struct {
	ID           string         `json:"id"`
	Operation    oicp.Operation `json:"operation"`
	EVSEID       string         `json:"evse_id,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	StatusCode   *string        `json:"status_code,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// Metadata 事件元数据
type Metadata struct {
	Source          string                 `json:"source"`               // 事件源标识
	EventTrackingID oicp.EventTrackingID   `json:"event_tracking_id"`    // 请求跟踪标识
	ProcessID       *oicp.ProcessID        `json:"process_id,omitempty"` // 平台处理标识
	ProtocolVersion string                 `json:"protocol_version"`     // 协议版本
	Custom          map[string]interface{} `json:"custom,omitempty"`     // 自定义字段
}
