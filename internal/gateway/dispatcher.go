package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/metrics"
)

// Handler 入站命令处理器。返回 (nil, nil) 表示不处理，交给下一个处理器；
// 返回错误时以 SystemError 应答
type Handler[Req any] func(ctx context.Context, req Req) (*oicp.Acknowledgement[Req], error)

// handlerList 按注册顺序保存处理器
type handlerList[Req any] struct {
	mu       sync.RWMutex
	handlers []Handler[Req]
}

func (l *handlerList[Req]) add(h Handler[Req]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, h)
}

func (l *handlerList[Req]) snapshot() []Handler[Req] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Handler[Req](nil), l.handlers...)
}

// DispatcherConfig 分发器配置
type DispatcherConfig struct {
	// 入站解析模式
	Mode serialization.Mode `json:"mode"`

	// 单个请求的处理超时
	MessageTimeout time.Duration `json:"message_timeout"`

	// 是否启用统计信息收集
	EnableStats bool `json:"enable_stats"`
}

// DefaultDispatcherConfig 默认分发器配置
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		Mode:           serialization.Lenient,
		MessageTimeout: 30 * time.Second,
		EnableStats:    true,
	}
}

// DispatcherStats 分发器统计信息
type DispatcherStats struct {
	// 总消息数
	TotalMessages int64 `json:"total_messages"`

	// 以成功应答结束的消息数
	SuccessfulMessages int64 `json:"successful_messages"`

	// 以失败应答结束的消息数
	FailedMessages int64 `json:"failed_messages"`

	// 按操作分组的消息统计
	MessagesByOperation map[string]int64 `json:"messages_by_operation"`

	// 平均处理时间
	AverageProcessingTime time.Duration `json:"average_processing_time"`

	// 最大处理时间
	MaxProcessingTime time.Duration `json:"max_processing_time"`

	// 启动时间
	StartTime time.Time `json:"start_time"`

	// 运行时间
	Uptime time.Duration `json:"uptime"`
}

// Dispatcher 按负载根元素把入站请求分发给已注册的处理器，并生成 eRoamingAcknowledgement
type Dispatcher struct {
	config    *DispatcherConfig
	converter *EventConverter
	hub       *events.Hub
	logger    *logger.Logger

	remoteStart      handlerList[oicp.AuthorizeRemoteStartRequest]
	remoteStop       handlerList[oicp.AuthorizeRemoteStopRequest]
	reservationStart handlerList[oicp.AuthorizeRemoteReservationStartRequest]
	reservationStop  handlerList[oicp.AuthorizeRemoteReservationStopRequest]
	authData         handlerList[oicp.PushAuthenticationDataRequest]
	chargeDetail     handlerList[oicp.SendChargeDetailRecordRequest]

	stats      DispatcherStats
	statsMutex sync.RWMutex
}

// NewDispatcher 创建入站分发器
func NewDispatcher(config *DispatcherConfig, converter *EventConverter, hub *events.Hub, log *logger.Logger) *Dispatcher {
	if config == nil {
		config = DefaultDispatcherConfig()
	}
	if converter == nil {
		converter = NewEventConverter(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		config:    config,
		converter: converter,
		hub:       hub,
		logger:    log,
		stats: DispatcherStats{
			MessagesByOperation: make(map[string]int64),
			StartTime:           time.Now(),
		},
	}
}

// OnAuthorizeRemoteStart 注册远程启动处理器
func (d *Dispatcher) OnAuthorizeRemoteStart(h Handler[oicp.AuthorizeRemoteStartRequest]) {
	d.remoteStart.add(h)
}

// OnAuthorizeRemoteStop 注册远程停止处理器
func (d *Dispatcher) OnAuthorizeRemoteStop(h Handler[oicp.AuthorizeRemoteStopRequest]) {
	d.remoteStop.add(h)
}

// OnAuthorizeRemoteReservationStart 注册远程预约处理器
func (d *Dispatcher) OnAuthorizeRemoteReservationStart(h Handler[oicp.AuthorizeRemoteReservationStartRequest]) {
	d.reservationStart.add(h)
}

// OnAuthorizeRemoteReservationStop 注册取消预约处理器
func (d *Dispatcher) OnAuthorizeRemoteReservationStop(h Handler[oicp.AuthorizeRemoteReservationStopRequest]) {
	d.reservationStop.add(h)
}

// OnPushAuthenticationData 注册认证数据推送处理器
func (d *Dispatcher) OnPushAuthenticationData(h Handler[oicp.PushAuthenticationDataRequest]) {
	d.authData.add(h)
}

// OnSendChargeDetailRecord 注册充电详单处理器
func (d *Dispatcher) OnSendChargeDetailRecord(h Handler[oicp.SendChargeDetailRecordRequest]) {
	d.chargeDetail.add(h)
}

// Dispatch 处理一个入站负载并返回应答元素。应答永远是 eRoamingAcknowledgement，
// 无法解析时为 DataError，没有处理器接受时为 ServiceNotAvailable
func (d *Dispatcher) Dispatch(ctx context.Context, payload *etree.Element, endpoint string) (*etree.Element, oicp.Operation) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.config.MessageTimeout)
	defer cancel()

	var (
		op      oicp.Operation
		ack     *etree.Element
		success bool
	)
	switch {
	case serialization.Matches(payload, oicp.RootAuthorizeRemoteStart):
		op = oicp.OperationAuthorizeRemoteStart
		ack, success = dispatch(ctx, d, op, endpoint, &d.remoteStart, func() (oicp.AuthorizeRemoteStartRequest, error) {
			return oicp.ParseAuthorizeRemoteStartRequest(payload)
		})
	case serialization.Matches(payload, oicp.RootAuthorizeRemoteStop):
		op = oicp.OperationAuthorizeRemoteStop
		ack, success = dispatch(ctx, d, op, endpoint, &d.remoteStop, func() (oicp.AuthorizeRemoteStopRequest, error) {
			return oicp.ParseAuthorizeRemoteStopRequest(payload)
		})
	case serialization.Matches(payload, oicp.RootAuthorizeRemoteReservationStart):
		op = oicp.OperationAuthorizeRemoteReservationStart
		ack, success = dispatch(ctx, d, op, endpoint, &d.reservationStart, func() (oicp.AuthorizeRemoteReservationStartRequest, error) {
			return oicp.ParseAuthorizeRemoteReservationStartRequest(payload)
		})
	case serialization.Matches(payload, oicp.RootAuthorizeRemoteReservationStop):
		op = oicp.OperationAuthorizeRemoteReservationStop
		ack, success = dispatch(ctx, d, op, endpoint, &d.reservationStop, func() (oicp.AuthorizeRemoteReservationStopRequest, error) {
			return oicp.ParseAuthorizeRemoteReservationStopRequest(payload)
		})
	case serialization.Matches(payload, oicp.RootPushAuthenticationData):
		op = oicp.OperationPushAuthenticationData
		ack, success = dispatch(ctx, d, op, endpoint, &d.authData, func() (oicp.PushAuthenticationDataRequest, error) {
			return oicp.ParsePushAuthenticationDataRequest(payload)
		})
	case serialization.Matches(payload, oicp.RootChargeDetailRecord):
		op = oicp.OperationSendChargeDetailRecord
		ack, success = dispatch(ctx, d, op, endpoint, &d.chargeDetail, func() (oicp.SendChargeDetailRecordRequest, error) {
			return oicp.ParseSendChargeDetailRecordRequest(payload, d.config.Mode)
		})
	default:
		name := serialization.NameOf(payload)
		d.logger.Warnf("Unsupported inbound payload %s", name)
		metrics.ObserveParseError("unknown", "structure")
		ack = RejectPayload(fmt.Sprintf("unsupported operation %s", name))
	}

	d.updateStats(op, startTime, success)
	return ack, op
}

// RejectPayload 无法识别或无法读取的负载对应的 DataError 应答
func RejectPayload(description string) *etree.Element {
	return oicp.AckDataError[struct{}](nil, description).ToXML()
}

func dispatch[Req oicp.Request](ctx context.Context, d *Dispatcher, op oicp.Operation, endpoint string, list *handlerList[Req], parse func() (Req, error)) (*etree.Element, bool) {
	metrics.ObserveRequest(op.String(), string(events.DirectionInbound))

	req, err := parse()
	trackingID := req.Meta().EventTrackingID
	log := d.logger.ForOperation(op.String(), trackingID.String())

	var ack oicp.Acknowledgement[Req]
	if err != nil {
		log.Warn().Err(err).Msg("rejecting malformed inbound request")
		metrics.ObserveParseError(op.String(), oicp.ParseErrorKind(err))
		d.hub.Publish(d.converter.ParseFailed(op, events.DirectionInbound, err, trackingID))
		ack = oicp.AckDataError(&req, err.Error())
	} else {
		d.hub.Publish(d.converter.RequestReceived(req, endpoint))
		ack = invoke(ctx, log, list.snapshot(), req)
	}

	log.Info().
		Str(logger.FieldStatusCode, ack.StatusCode.Code.String()).
		Bool("result", ack.Result).
		Msg("inbound request acknowledged")
	d.hub.Publish(d.converter.ResponseSent(op, ack, trackingID))
	return ack.ToXML(), ack.IsSuccessful()
}

// invoke 依次调用处理器，第一个非nil应答或错误生效
func invoke[Req any](ctx context.Context, log zerolog.Logger, handlers []Handler[Req], req Req) oicp.Acknowledgement[Req] {
	if len(handlers) == 0 {
		return oicp.AckServiceNotAvailable(&req, "no handler registered")
	}
	for _, h := range handlers {
		ack, err := h(ctx, req)
		if err != nil {
			log.Error().Err(err).Msg("inbound handler failed")
			if errors.Is(err, context.DeadlineExceeded) {
				return oicp.AckServiceNotAvailable(&req, "handler timed out")
			}
			return oicp.AckSystemError(&req, err.Error())
		}
		if ack != nil {
			ack.Request = &req
			return *ack
		}
	}
	return oicp.AckServiceNotAvailable(&req, "no handler accepted the request")
}

// GetStats 获取分发器统计信息
func (d *Dispatcher) GetStats() DispatcherStats {
	d.statsMutex.RLock()
	defer d.statsMutex.RUnlock()

	// 复制统计信息
	stats := d.stats
	stats.Uptime = time.Since(d.stats.StartTime)

	stats.MessagesByOperation = make(map[string]int64, len(d.stats.MessagesByOperation))
	for op, count := range d.stats.MessagesByOperation {
		stats.MessagesByOperation[op] = count
	}
	return stats
}

// updateStats 更新统计信息
func (d *Dispatcher) updateStats(op oicp.Operation, startTime time.Time, success bool) {
	if !d.config.EnableStats {
		return
	}

	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()

	processingTime := time.Since(startTime)

	d.stats.TotalMessages++
	if success {
		d.stats.SuccessfulMessages++
	} else {
		d.stats.FailedMessages++
	}

	name := op.String()
	if name == "" {
		name = "unknown"
	}
	d.stats.MessagesByOperation[name]++

	if processingTime > d.stats.MaxProcessingTime {
		d.stats.MaxProcessingTime = processingTime
	}

	// 增量计算平均处理时间
	totalTime := time.Duration(d.stats.AverageProcessingTime.Nanoseconds()*(d.stats.TotalMessages-1)) + processingTime
	d.stats.AverageProcessingTime = totalTime / time.Duration(d.stats.TotalMessages)
}
