package gateway

import (
	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// EventConverter 把OICP请求与调用结果转换为业务事件
type EventConverter struct {
	factory *events.EventFactory
}

// NewEventConverter 创建事件转换器
func NewEventConverter(factory *events.EventFactory) *EventConverter {
	if factory == nil {
		factory = events.NewEventFactory("oicp-gateway", "2.3")
	}
	return &EventConverter{factory: factory}
}

// Factory 返回底层事件工厂
func (c *EventConverter) Factory() *events.EventFactory {
	return c.factory
}

// RequestSent 出站请求事件
func (c *EventConverter) RequestSent(req oicp.Request, endpoint string) *events.RequestSentEvent {
	info := RequestInfo(req, events.DirectionOutbound, endpoint)
	return c.factory.CreateRequestSentEvent(info, c.factory.Metadata(req.Meta().EventTrackingID, nil))
}

// RequestReceived 入站请求事件
func (c *EventConverter) RequestReceived(req oicp.Request, endpoint string) *events.RequestReceivedEvent {
	info := RequestInfo(req, events.DirectionInbound, endpoint)
	return c.factory.CreateRequestReceivedEvent(info, c.factory.Metadata(req.Meta().EventTrackingID, nil))
}

// ResponseReceived 出站调用结果事件
func (c *EventConverter) ResponseReceived(info events.ResponseInfo, trackingID oicp.EventTrackingID, processID *oicp.ProcessID) *events.ResponseReceivedEvent {
	return c.factory.CreateResponseReceivedEvent(info, c.factory.Metadata(trackingID, processID))
}

// ResponseSent 入站请求的应答事件
func (c *EventConverter) ResponseSent(op oicp.Operation, ack oicp.Response, trackingID oicp.EventTrackingID) *events.ResponseSentEvent {
	info := events.ResponseInfo{Operation: op, State: oicp.StateSuccess.String()}
	describeContent(&info, ack)
	return c.factory.CreateResponseSentEvent(info, c.factory.Metadata(trackingID, nil))
}

// ParseFailed 解析失败事件
func (c *EventConverter) ParseFailed(op oicp.Operation, direction events.Direction, err error, trackingID oicp.EventTrackingID) *events.ParseFailedEvent {
	return c.factory.CreateParseFailedEvent(op, direction, err, c.factory.Metadata(trackingID, nil))
}

// CDRReceived 收到充电详单事件
func (c *EventConverter) CDRReceived(cdr oicp.ChargeDetailRecord, trackingID oicp.EventTrackingID) *events.CDRReceivedEvent {
	return c.factory.CreateCDRReceivedEvent(cdr, c.factory.Metadata(trackingID, nil))
}

// RequestInfo 提取请求中可用于检索的标识
func RequestInfo(req oicp.Request, direction events.Direction, endpoint string) events.RequestInfo {
	info := events.RequestInfo{
		Operation: req.Operation(),
		Direction: direction,
		Endpoint:  endpoint,
	}

	switch r := req.(type) {
	case oicp.PullEVSEDataRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.PullEVSEStatusRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.PullEVSEStatusByIDRequest:
		info.ProviderID = ptr(r.ProviderID)
		if len(r.EVSEIDs) == 1 {
			info.EVSEID = ptr(r.EVSEIDs[0])
		}
	case oicp.PullEVSEStatusByOperatorIDRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.PullPricingProductDataRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.PullEVSEPricingRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.PushAuthenticationDataRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.AuthorizeRemoteStartRequest:
		info.ProviderID = ptr(r.ProviderID)
		info.EVSEID = ptr(r.EVSEID)
		info.SessionID = r.SessionID
	case oicp.AuthorizeRemoteStopRequest:
		info.ProviderID = ptr(r.ProviderID)
		info.EVSEID = ptr(r.EVSEID)
		info.SessionID = ptr(r.SessionID)
	case oicp.AuthorizeRemoteReservationStartRequest:
		info.ProviderID = ptr(r.ProviderID)
		info.EVSEID = ptr(r.EVSEID)
		info.SessionID = r.SessionID
	case oicp.AuthorizeRemoteReservationStopRequest:
		info.ProviderID = ptr(r.ProviderID)
		info.EVSEID = ptr(r.EVSEID)
		info.SessionID = ptr(r.SessionID)
	case oicp.GetChargeDetailRecordsRequest:
		info.ProviderID = ptr(r.ProviderID)
	case oicp.SendChargeDetailRecordRequest:
		info.EVSEID = ptr(r.ChargeDetailRecord.EVSEID)
		info.SessionID = ptr(r.ChargeDetailRecord.SessionID)
		info.ProviderID = r.ChargeDetailRecord.HubProviderID
	}
	return info
}

// ResultInfo 把调用结果转换为事件负载
func ResultInfo[T any](op oicp.Operation, r oicp.Result[T]) events.ResponseInfo {
	info := events.ResponseInfo{
		Operation:  op,
		Direction:  events.DirectionOutbound,
		State:      r.State.String(),
		HTTPStatus: r.HTTPStatus,
		RuntimeMS:  r.Runtime.Milliseconds(),
	}
	if r.Err != nil {
		msg := r.Err.Error()
		info.Error = &msg
	}
	if r.Content != nil {
		describeContent(&info, any(*r.Content))
	}
	return info
}

func describeContent(info *events.ResponseInfo, content any) {
	if resp, ok := content.(oicp.Response); ok {
		code := resp.Status().Code.String()
		info.StatusCode = &code
	}
	if ack, ok := content.(interface{ Accepted() bool }); ok {
		accepted := ack.Accepted()
		info.Result = &accepted
	}
}

func ptr[T any](v T) *T {
	return &v
}
