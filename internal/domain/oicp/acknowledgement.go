package oicp

import (
	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// Acknowledgement 命令型操作的应答，关联原始请求。
// Result 与 StatusCode 共同决定业务结果，HTTP 状态码不参与判断
type Acknowledgement[T any] struct {
	Meta                ResponseMeta
	Request             *T
	Result              bool
	StatusCode          StatusCode
	SessionID           *SessionID
	CPOPartnerSessionID *PartnerSessionID
	EMPPartnerSessionID *PartnerSessionID
}

// AckOption 应答可选字段
type AckOption func(*ackFields)

type ackFields struct {
	meta                ResponseMeta
	sessionID           *SessionID
	cpoPartnerSessionID *PartnerSessionID
	empPartnerSessionID *PartnerSessionID
}

// AckSessionID 设置会话标识
func AckSessionID(id SessionID) AckOption {
	return func(f *ackFields) { f.sessionID = &id }
}

// AckCPOPartnerSessionID 设置CPO会话标识
func AckCPOPartnerSessionID(id PartnerSessionID) AckOption {
	return func(f *ackFields) { f.cpoPartnerSessionID = &id }
}

// AckEMPPartnerSessionID 设置EMP会话标识
func AckEMPPartnerSessionID(id PartnerSessionID) AckOption {
	return func(f *ackFields) { f.empPartnerSessionID = &id }
}

// AckMeta 设置响应关联信息
func AckMeta(meta ResponseMeta) AckOption {
	return func(f *ackFields) { f.meta = meta }
}

// NewAcknowledgement 创建应答
func NewAcknowledgement[T any](req *T, result bool, status StatusCode, opts ...AckOption) Acknowledgement[T] {
	var f ackFields
	for _, opt := range opts {
		opt(&f)
	}
	return Acknowledgement[T]{
		Meta:                f.meta,
		Request:             req,
		Result:              result,
		StatusCode:          status,
		SessionID:           f.sessionID,
		CPOPartnerSessionID: f.cpoPartnerSessionID,
		EMPPartnerSessionID: f.empPartnerSessionID,
	}
}

// AckSuccess Result=true 的成功应答
func AckSuccess[T any](req *T, opts ...AckOption) Acknowledgement[T] {
	return NewAcknowledgement(req, true, SuccessStatus(), opts...)
}

// AckDataError 入站请求无法解析或数据不合法
func AckDataError[T any](req *T, description string, opts ...AckOption) Acknowledgement[T] {
	return NewAcknowledgement(req, false, NewStatusCode(DataError, description), opts...)
}

// AckSystemError 处理过程中出现内部错误
func AckSystemError[T any](req *T, description string, opts ...AckOption) Acknowledgement[T] {
	return NewAcknowledgement(req, false, NewStatusCode(SystemError, description), opts...)
}

// AckServiceNotAvailable 没有可处理该请求的处理器
func AckServiceNotAvailable[T any](req *T, description string, opts ...AckOption) Acknowledgement[T] {
	return NewAcknowledgement(req, false, NewStatusCode(ServiceNotAvailable, description), opts...)
}

// IsSuccessful 业务层面是否成功：Result 为真且结果码为成功
func (a Acknowledgement[T]) IsSuccessful() bool {
	return a.Result && a.StatusCode.IsSuccess()
}

// ToXML 生成 CommonTypes:eRoamingAcknowledgement
func (a Acknowledgement[T]) ToXML() *etree.Element {
	root := serialization.NewRoot(RootAcknowledgement)
	serialization.AddText(root, ct("Result"), serialization.FormatBool(a.Result))
	a.StatusCode.AppendTo(root)
	serialization.AddOptional(root, ct("SessionID"), a.SessionID, SessionID.String)
	serialization.AddOptional(root, ct("CPOPartnerSessionID"), a.CPOPartnerSessionID, PartnerSessionID.String)
	serialization.AddOptional(root, ct("EMPPartnerSessionID"), a.EMPPartnerSessionID, PartnerSessionID.String)
	return root
}

// ParseAcknowledgement 解析 eRoamingAcknowledgement。Result 与 StatusCode 缺失均为错误
func ParseAcknowledgement[T any](root *etree.Element, req *T, opts ...ParseOption) (*Acknowledgement[T], error) {
	var reqMeta *RequestMeta
	if req != nil {
		if m, ok := any(*req).(interface{ Meta() RequestMeta }); ok {
			meta := m.Meta()
			reqMeta = &meta
		}
	}
	cfg := newParseConfig(reqMeta, opts)

	if err := serialization.ExpectRoot(root, RootAcknowledgement); err != nil {
		return nil, err
	}
	raw, err := serialization.ValueOrFail(root, ct("Result"))
	if err != nil {
		return nil, err
	}
	result := serialization.IsTrue(raw)
	status, err := serialization.MapElementOrFail(root, ct("StatusCode"), ParseStatusCode)
	if err != nil {
		return nil, err
	}
	ack := &Acknowledgement[T]{Meta: cfg.meta, Request: req, Result: result, StatusCode: status}
	if ack.SessionID, err = serialization.MapOptional(root, ct("SessionID"), ParseSessionID, cfg.mode); err != nil {
		return nil, err
	}
	if ack.CPOPartnerSessionID, err = serialization.MapOptional(root, ct("CPOPartnerSessionID"), ParsePartnerSessionID, cfg.mode); err != nil {
		return nil, err
	}
	if ack.EMPPartnerSessionID, err = serialization.MapOptional(root, ct("EMPPartnerSessionID"), ParsePartnerSessionID, cfg.mode); err != nil {
		return nil, err
	}
	return ack, nil
}
