package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/metrics"
)

// Command 业务系统下发的远程指令
type Command struct {
	ID               string         `json:"id,omitempty"`
	Operation        oicp.Operation `json:"operation"`
	ProviderID       string         `json:"provider_id"`
	EVSEID           string         `json:"evse_id"`
	EVCOID           string         `json:"evco_id,omitempty"`
	SessionID        string         `json:"session_id,omitempty"`
	PartnerProductID string         `json:"partner_product_id,omitempty"`
	DurationMinutes  int            `json:"duration_minutes,omitempty"`
}

// 指令执行结果，用作指标标签
const (
	CommandAccepted = "accepted"
	CommandRejected = "rejected"
	CommandFailed   = "failed"
	CommandInvalid  = "invalid"
)

// ErrUnsupportedOperation 指令的操作不是远程授权类操作
var ErrUnsupportedOperation = errors.New("unsupported remote command operation")

// CommandOutcome 指令在平台侧的处理结果
type CommandOutcome struct {
	Accepted   bool
	StatusCode oicp.StatusCode
	SessionID  *oicp.SessionID
}

// CommandExecutor 把远程指令转换为OICP请求并通过EMP客户端发送
type CommandExecutor struct {
	client  RemoteClient
	hub     *events.Hub
	factory *events.EventFactory
	logger  *logger.Logger
}

// NewCommandExecutor 创建指令执行器
func NewCommandExecutor(client RemoteClient, hub *events.Hub, factory *events.EventFactory, log *logger.Logger) *CommandExecutor {
	if factory == nil {
		factory = events.NewEventFactory("oicp-gateway", "")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CommandExecutor{client: client, hub: hub, factory: factory, logger: log}
}

// Handle 实现 CommandHandler，错误只记录日志
func (e *CommandExecutor) Handle(ctx context.Context, cmd *Command) {
	if _, err := e.Execute(ctx, cmd); err != nil {
		log := e.logger.GetLogger()
		log.Warn().
			Err(err).
			Str(logger.FieldOperation, string(cmd.Operation)).
			Str(logger.FieldEVSEID, cmd.EVSEID).
			Str("command_id", cmd.ID).
			Msg("Remote command not executed")
	}
}

// Execute 执行一条指令。平台拒绝时返回 Accepted=false 且 error 为 nil
func (e *CommandExecutor) Execute(ctx context.Context, cmd *Command) (*CommandOutcome, error) {
	trackingID := oicp.NewEventTrackingID()
	meta := e.factory.Metadata(trackingID, nil)
	info := events.RemoteCommandInfo{
		ID:        cmd.ID,
		Operation: cmd.Operation,
		EVSEID:    cmd.EVSEID,
		SessionID: cmd.SessionID,
	}
	e.hub.Publish(e.factory.CreateRemoteCommandEvent(events.EventTypeRemoteCommandReceived, info, meta))

	outcome, err := e.execute(ctx, cmd, oicp.WithEventTrackingID(trackingID))

	result := CommandAccepted
	switch {
	case errors.Is(err, ErrUnsupportedOperation), isInvalid(err):
		result = CommandInvalid
	case err != nil:
		result = CommandFailed
	case !outcome.Accepted:
		result = CommandRejected
	}
	metrics.ObserveRemoteCommand(string(cmd.Operation), result)

	if err != nil {
		msg := err.Error()
		info.ErrorMessage = &msg
		e.hub.Publish(e.factory.CreateRemoteCommandEvent(events.EventTypeRemoteCommandFailed, info, meta))
		return nil, err
	}

	code := outcome.StatusCode.Code.String()
	info.StatusCode = &code
	if outcome.SessionID != nil {
		info.SessionID = outcome.SessionID.String()
	}
	e.hub.Publish(e.factory.CreateRemoteCommandEvent(events.EventTypeRemoteCommandExecuted, info, meta))

	log := e.logger.ForOperation(string(cmd.Operation), trackingID.String())
	log.Info().
		Str(logger.FieldEVSEID, cmd.EVSEID).
		Str(logger.FieldStatusCode, code).
		Bool("accepted", outcome.Accepted).
		Msg("Remote command executed")
	return outcome, nil
}

func (e *CommandExecutor) execute(ctx context.Context, cmd *Command, opts ...oicp.RequestOption) (*CommandOutcome, error) {
	provider, err := oicp.ParseProviderID(cmd.ProviderID)
	if err != nil {
		return nil, invalidCommand(err)
	}
	evse, err := oicp.ParseEVSEID(cmd.EVSEID)
	if err != nil {
		return nil, invalidCommand(err)
	}

	switch cmd.Operation {
	case oicp.OperationAuthorizeRemoteStart:
		ident, err := cmd.identification()
		if err != nil {
			return nil, err
		}
		req, err := oicp.NewAuthorizeRemoteStartRequest(provider, evse, ident, opts...)
		if err != nil {
			return nil, invalidCommand(err)
		}
		if cmd.SessionID != "" {
			id, err := oicp.ParseSessionID(cmd.SessionID)
			if err != nil {
				return nil, invalidCommand(err)
			}
			req = req.WithSessionID(id)
		}
		if cmd.PartnerProductID != "" {
			product, err := oicp.ParsePartnerProductID(cmd.PartnerProductID)
			if err != nil {
				return nil, invalidCommand(err)
			}
			req = req.WithPartnerProductID(product)
		}
		return ackOutcome(e.client.AuthorizeRemoteStart(ctx, req))

	case oicp.OperationAuthorizeRemoteStop:
		session, err := cmd.sessionID()
		if err != nil {
			return nil, err
		}
		req, err := oicp.NewAuthorizeRemoteStopRequest(session, provider, evse, opts...)
		if err != nil {
			return nil, invalidCommand(err)
		}
		return ackOutcome(e.client.AuthorizeRemoteStop(ctx, req))

	case oicp.OperationAuthorizeRemoteReservationStart:
		ident, err := cmd.identification()
		if err != nil {
			return nil, err
		}
		req, err := oicp.NewAuthorizeRemoteReservationStartRequest(provider, evse, ident, opts...)
		if err != nil {
			return nil, invalidCommand(err)
		}
		if cmd.DurationMinutes > 0 {
			req = req.WithDuration(time.Duration(cmd.DurationMinutes) * time.Minute)
		}
		if cmd.PartnerProductID != "" {
			product, err := oicp.ParsePartnerProductID(cmd.PartnerProductID)
			if err != nil {
				return nil, invalidCommand(err)
			}
			req = req.WithPartnerProductID(product)
		}
		return ackOutcome(e.client.AuthorizeRemoteReservationStart(ctx, req))

	case oicp.OperationAuthorizeRemoteReservationStop:
		session, err := cmd.sessionID()
		if err != nil {
			return nil, err
		}
		req, err := oicp.NewAuthorizeRemoteReservationStopRequest(session, provider, evse, opts...)
		if err != nil {
			return nil, invalidCommand(err)
		}
		return ackOutcome(e.client.AuthorizeRemoteReservationStop(ctx, req))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, cmd.Operation)
	}
}

func (c *Command) identification() (oicp.Identification, error) {
	if c.EVCOID == "" {
		return nil, invalidCommand(errors.New("evco_id is required"))
	}
	evco, err := oicp.ParseEVCOID(c.EVCOID)
	if err != nil {
		return nil, invalidCommand(err)
	}
	return oicp.RemoteIdentification{EVCOID: evco}, nil
}

func (c *Command) sessionID() (oicp.SessionID, error) {
	if c.SessionID == "" {
		return "", invalidCommand(errors.New("session_id is required"))
	}
	id, err := oicp.ParseSessionID(c.SessionID)
	if err != nil {
		return "", invalidCommand(err)
	}
	return id, nil
}

// InvalidCommandError 指令字段无法构成合法请求
type InvalidCommandError struct {
	Cause error
}

func (e InvalidCommandError) Error() string { return "invalid remote command: " + e.Cause.Error() }

func (e InvalidCommandError) Unwrap() error { return e.Cause }

func invalidCommand(err error) error { return InvalidCommandError{Cause: err} }

func isInvalid(err error) bool {
	var invalid InvalidCommandError
	return errors.As(err, &invalid)
}

func ackOutcome[T any](res oicp.Result[oicp.Acknowledgement[T]]) (*CommandOutcome, error) {
	if !res.IsSuccess() {
		if res.Err != nil {
			return nil, fmt.Errorf("remote command %s: %w", res.State, res.Err)
		}
		return nil, fmt.Errorf("remote command %s", res.State)
	}
	ack := res.Content
	return &CommandOutcome{
		Accepted:   ack.Accepted(),
		StatusCode: ack.StatusCode,
		SessionID:  ack.SessionID,
	}, nil
}
