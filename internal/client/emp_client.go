package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/protocol"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
	"github.com/charging-platform/oicp-gateway/internal/gateway"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/metrics"
	"github.com/charging-platform/oicp-gateway/internal/transport/soap"
)

// ProcessIDHeader Hubject 在应答中返回的处理标识
const ProcessIDHeader = "Process-ID"

// maxResponseSize 应答体读取上限
const maxResponseSize = 64 << 20

// Config EMP客户端配置
type Config struct {
	// Endpoint Hubject 服务根地址，例如 https://service.hubject.com/api/oicp
	Endpoint string
	// RequestTimeout 非零时作为所有请求的超时上限
	RequestTimeout time.Duration
	Mode           serialization.Mode
}

// ConfigFrom 由应用配置生成客户端配置
func ConfigFrom(cfg config.OICPConfig) Config {
	return Config{
		Endpoint:       cfg.Endpoint,
		RequestTimeout: cfg.RequestTimeout,
		Mode:           protocol.ResolveParseMode(cfg.Version, cfg.StrictParsing),
	}
}

// EMPClient 调用 Hubject 的 EMP 侧操作。所有方法都返回 oicp.Result，不返回原始错误
type EMPClient struct {
	config     Config
	httpClient *http.Client
	hub        *events.Hub
	converter  *gateway.EventConverter
	logger     *logger.Logger
}

// NewEMPClient 创建客户端。httpClient 为nil时使用不带超时的默认客户端，超时由请求上下文控制
func NewEMPClient(cfg Config, httpClient *http.Client, hub *events.Hub, converter *gateway.EventConverter, log *logger.Logger) *EMPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if converter == nil {
		converter = gateway.NewEventConverter(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EMPClient{
		config:     cfg,
		httpClient: httpClient,
		hub:        hub,
		converter:  converter,
		logger:     log,
	}
}

// servicePath 各操作所属服务的路径
func servicePath(op oicp.Operation) string {
	switch op {
	case oicp.OperationPullEVSEData:
		return "/EVSEData"
	case oicp.OperationPullEVSEStatus, oicp.OperationPullEVSEStatusByID, oicp.OperationPullEVSEStatusByOperatorID:
		return "/EVSEStatus"
	case oicp.OperationPullPricingProductData, oicp.OperationPullEVSEPricing:
		return "/DynamicPricing"
	case oicp.OperationPushAuthenticationData:
		return "/AuthenticationData"
	case oicp.OperationAuthorizeRemoteReservationStart, oicp.OperationAuthorizeRemoteReservationStop:
		return "/Reservation"
	default:
		return "/Authorization"
	}
}

// PullEVSEData 拉取充电点静态数据
func (c *EMPClient) PullEVSEData(ctx context.Context, req oicp.PullEVSEDataRequest) oicp.Result[oicp.PullEVSEDataResponse] {
	return call(ctx, c, req, oicp.ParsePullEVSEDataResponse)
}

// PullEVSEStatus 拉取充电点状态
func (c *EMPClient) PullEVSEStatus(ctx context.Context, req oicp.PullEVSEStatusRequest) oicp.Result[oicp.PullEVSEStatusResponse] {
	return call(ctx, c, req, oicp.ParsePullEVSEStatusResponse)
}

// PullEVSEStatusByID 按充电点标识拉取状态
func (c *EMPClient) PullEVSEStatusByID(ctx context.Context, req oicp.PullEVSEStatusByIDRequest) oicp.Result[oicp.PullEVSEStatusByIDResponse] {
	return call(ctx, c, req, oicp.ParsePullEVSEStatusByIDResponse)
}

// PullEVSEStatusByOperatorID 按运营商拉取状态
func (c *EMPClient) PullEVSEStatusByOperatorID(ctx context.Context, req oicp.PullEVSEStatusByOperatorIDRequest) oicp.Result[oicp.PullEVSEStatusByOperatorIDResponse] {
	return call(ctx, c, req, oicp.ParsePullEVSEStatusByOperatorIDResponse)
}

// PullPricingProductData 拉取计价产品
func (c *EMPClient) PullPricingProductData(ctx context.Context, req oicp.PullPricingProductDataRequest) oicp.Result[oicp.PullPricingProductDataResponse] {
	return call(ctx, c, req, oicp.ParsePullPricingProductDataResponse)
}

// PullEVSEPricing 拉取充电点计价
func (c *EMPClient) PullEVSEPricing(ctx context.Context, req oicp.PullEVSEPricingRequest) oicp.Result[oicp.PullEVSEPricingResponse] {
	return call(ctx, c, req, oicp.ParsePullEVSEPricingResponse)
}

// PushAuthenticationData 推送认证数据
func (c *EMPClient) PushAuthenticationData(ctx context.Context, req oicp.PushAuthenticationDataRequest) oicp.Result[oicp.Acknowledgement[oicp.PushAuthenticationDataRequest]] {
	return call(ctx, c, req, oicp.ParseAcknowledgement[oicp.PushAuthenticationDataRequest])
}

// AuthorizeRemoteStart 远程启动充电
func (c *EMPClient) AuthorizeRemoteStart(ctx context.Context, req oicp.AuthorizeRemoteStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStartRequest]] {
	return call(ctx, c, req, oicp.ParseAcknowledgement[oicp.AuthorizeRemoteStartRequest])
}

// AuthorizeRemoteStop 远程停止充电
func (c *EMPClient) AuthorizeRemoteStop(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest]] {
	return call(ctx, c, req, oicp.ParseAcknowledgement[oicp.AuthorizeRemoteStopRequest])
}

// AuthorizeRemoteReservationStart 远程预约
func (c *EMPClient) AuthorizeRemoteReservationStart(ctx context.Context, req oicp.AuthorizeRemoteReservationStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStartRequest]] {
	return call(ctx, c, req, oicp.ParseAcknowledgement[oicp.AuthorizeRemoteReservationStartRequest])
}

// AuthorizeRemoteReservationStop 取消预约
func (c *EMPClient) AuthorizeRemoteReservationStop(ctx context.Context, req oicp.AuthorizeRemoteReservationStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStopRequest]] {
	return call(ctx, c, req, oicp.ParseAcknowledgement[oicp.AuthorizeRemoteReservationStopRequest])
}

// GetChargeDetailRecords 拉取充电详单
func (c *EMPClient) GetChargeDetailRecords(ctx context.Context, req oicp.GetChargeDetailRecordsRequest) oicp.Result[oicp.GetChargeDetailRecordsResponse] {
	return call(ctx, c, req, oicp.ParseGetChargeDetailRecordsResponse)
}

// call 单次请求/应答往返
func call[Req oicp.Request, Resp any](ctx context.Context, c *EMPClient, req Req, parse func(*etree.Element, *Req, ...oicp.ParseOption) (*Resp, error)) (result oicp.Result[Resp]) {
	op := req.Operation()
	meta := req.Meta()
	url := strings.TrimRight(c.config.Endpoint, "/") + servicePath(op)
	log := c.logger.ForOperation(op.String(), meta.EventTrackingID.String())
	start := time.Now()

	var processID *oicp.ProcessID
	defer func() {
		metrics.ObserveResponse(op.String(), result.State.String(), result.Runtime)
		c.hub.Publish(c.converter.ResponseReceived(gateway.ResultInfo(op, result), meta.EventTrackingID, processID))
		log.Info().
			Str("state", result.State.String()).
			Int("http_status", result.HTTPStatus).
			Dur("runtime", result.Runtime).
			Msg("oicp call finished")
	}()

	metrics.ObserveRequest(op.String(), string(events.DirectionOutbound))
	c.hub.Publish(c.converter.RequestSent(req, url))

	if err := req.Validate(); err != nil {
		return oicp.Faulted[Resp](err, 0, time.Since(start), meta.EventTrackingID)
	}
	body, err := soap.Marshal(req.ToXML())
	if err != nil {
		return oicp.Faulted[Resp](err, 0, time.Since(start), meta.EventTrackingID)
	}

	timeout := meta.RequestTimeout
	if timeout <= 0 {
		timeout = oicp.DefaultRequestTimeout
	}
	if c.config.RequestTimeout > 0 && c.config.RequestTimeout < timeout {
		timeout = c.config.RequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return oicp.Faulted[Resp](err, 0, time.Since(start), meta.EventTrackingID)
	}
	httpReq.Header.Set("Content-Type", soap.ContentType)
	httpReq.Header.Set("SOAPAction", op.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportFailure[Resp](ctx, err, 0, time.Since(start), meta.EventTrackingID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return transportFailure[Resp](ctx, err, resp.StatusCode, time.Since(start), meta.EventTrackingID)
	}
	runtime := time.Since(start)

	pid := responseProcessID(resp.Header)
	processID = &pid

	payload, err := soap.Parse(data)
	var fault *soap.Fault
	switch {
	case errors.As(err, &fault):
		return oicp.Faulted[Resp](fault, resp.StatusCode, runtime, meta.EventTrackingID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return oicp.Faulted[Resp](fmt.Errorf("unexpected HTTP status %d", resp.StatusCode), resp.StatusCode, runtime, meta.EventTrackingID)
	case err != nil:
		c.parseFailed(op, err, meta.EventTrackingID)
		return oicp.InvalidResponse[Resp](err, resp.StatusCode, runtime, meta.EventTrackingID)
	}

	respMeta := oicp.ResponseMeta{
		ResponseTimestamp: time.Now().UTC(),
		EventTrackingID:   meta.EventTrackingID,
		ProcessID:         pid,
		Runtime:           runtime,
	}
	content, err := parse(payload, &req, oicp.WithMode(c.config.Mode), oicp.WithResponseMeta(respMeta))
	if err != nil {
		log.Warn().Err(err).Str(logger.FieldProcessID, pid.String()).Msg("response could not be parsed")
		c.parseFailed(op, err, meta.EventTrackingID)
		return oicp.InvalidResponse[Resp](err, resp.StatusCode, runtime, meta.EventTrackingID)
	}
	return oicp.Succeeded(content, resp.StatusCode, runtime, meta.EventTrackingID)
}

func (c *EMPClient) parseFailed(op oicp.Operation, err error, trackingID oicp.EventTrackingID) {
	metrics.ObserveParseError(op.String(), oicp.ParseErrorKind(err))
	c.hub.Publish(c.converter.ParseFailed(op, events.DirectionOutbound, err, trackingID))
}

// transportFailure 超时归为 TimedOut，其余传输错误归为 Faulted
func transportFailure[Resp any](ctx context.Context, err error, status int, runtime time.Duration, id oicp.EventTrackingID) oicp.Result[Resp] {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return oicp.TimedOut[Resp](err, runtime, id)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return oicp.TimedOut[Resp](err, runtime, id)
	}
	return oicp.Faulted[Resp](err, status, runtime, id)
}

// responseProcessID 读取应答头中的处理标识，缺失或非法时生成新的标识
func responseProcessID(h http.Header) oicp.ProcessID {
	if v := h.Get(ProcessIDHeader); v != "" {
		if id, err := oicp.ParseProcessID(v); err == nil {
			return id
		}
	}
	return oicp.NewProcessID()
}
