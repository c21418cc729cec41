package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// recorder 记录发布到事件中心的事件
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.GetType())
	}
	return out
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recorder) {
	t.Helper()
	hub := events.NewHub()
	rec := &recorder{}
	hub.Subscribe(rec.handle)
	return NewDispatcher(nil, NewEventConverter(events.NewEventFactory("test", "2.3")), hub, nil), rec
}

func remoteStopPayload(t *testing.T) *etree.Element {
	t.Helper()
	req, err := oicp.NewAuthorizeRemoteStopRequest(testSession, testProvider, testEVSE)
	require.NoError(t, err)
	return req.ToXML()
}

func parseAck[T any](t *testing.T, el *etree.Element) *oicp.Acknowledgement[T] {
	t.Helper()
	ack, err := oicp.ParseAcknowledgement[T](el, nil)
	require.NoError(t, err)
	return ack
}

func TestNewDispatcher(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil, nil, nil)
	assert.NotNil(t, dispatcher.config)
	assert.NotNil(t, dispatcher.converter)
	assert.NotNil(t, dispatcher.logger)
	assert.Equal(t, 30*time.Second, dispatcher.config.MessageTimeout)
}

func TestDispatcher_NoHandler(t *testing.T) {
	dispatcher, rec := newTestDispatcher(t)

	el, op := dispatcher.Dispatch(context.Background(), remoteStopPayload(t), "/Authorization")
	assert.Equal(t, oicp.OperationAuthorizeRemoteStop, op)

	ack := parseAck[oicp.AuthorizeRemoteStopRequest](t, el)
	assert.False(t, ack.Result)
	assert.Equal(t, oicp.ServiceNotAvailable, ack.StatusCode.Code)
	assert.Equal(t, []events.EventType{events.EventTypeRequestReceived, events.EventTypeResponseSent}, rec.types())
}

func TestDispatcher_FirstNonNilAckWins(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	var calls []string

	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		calls = append(calls, "skip")
		return nil, nil
	})
	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		calls = append(calls, "accept")
		assert.Equal(t, testSession, req.SessionID)
		ack := oicp.AckSuccess(&req, oicp.AckSessionID(req.SessionID))
		return &ack, nil
	})
	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		calls = append(calls, "never")
		return nil, nil
	})

	el, _ := dispatcher.Dispatch(context.Background(), remoteStopPayload(t), "/Authorization")
	ack := parseAck[oicp.AuthorizeRemoteStopRequest](t, el)
	assert.True(t, ack.IsSuccessful())
	require.NotNil(t, ack.SessionID)
	assert.Equal(t, testSession, *ack.SessionID)
	assert.Equal(t, []string{"skip", "accept"}, calls)

	stats := dispatcher.GetStats()
	assert.Equal(t, int64(1), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.SuccessfulMessages)
	assert.Equal(t, int64(1), stats.MessagesByOperation["AuthorizeRemoteStop"])
}

func TestDispatcher_AllHandlersDecline(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		return nil, nil
	})

	el, _ := dispatcher.Dispatch(context.Background(), remoteStopPayload(t), "/Authorization")
	ack := parseAck[oicp.AuthorizeRemoteStopRequest](t, el)
	assert.Equal(t, oicp.ServiceNotAvailable, ack.StatusCode.Code)
}

func TestDispatcher_HandlerError(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		return nil, errors.New("backend down")
	})

	el, _ := dispatcher.Dispatch(context.Background(), remoteStopPayload(t), "/Authorization")
	ack := parseAck[oicp.AuthorizeRemoteStopRequest](t, el)
	assert.False(t, ack.Result)
	assert.Equal(t, oicp.SystemError, ack.StatusCode.Code)
	assert.Equal(t, "backend down", ack.StatusCode.Description)
	assert.Equal(t, int64(1), dispatcher.GetStats().FailedMessages)
}

func TestDispatcher_MalformedRequest(t *testing.T) {
	dispatcher, rec := newTestDispatcher(t)
	called := false
	dispatcher.OnAuthorizeRemoteStop(func(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest], error) {
		called = true
		return nil, nil
	})

	payload := remoteStopPayload(t)
	evse := payload.SelectElement("EvseID")
	require.NotNil(t, evse)
	evse.SetText("not-an-evse")

	el, op := dispatcher.Dispatch(context.Background(), payload, "/Authorization")
	assert.Equal(t, oicp.OperationAuthorizeRemoteStop, op)
	assert.False(t, called)

	ack := parseAck[oicp.AuthorizeRemoteStopRequest](t, el)
	assert.False(t, ack.Result)
	assert.Equal(t, oicp.DataError, ack.StatusCode.Code)
	assert.Contains(t, ack.StatusCode.Description, "not-an-evse")
	assert.Equal(t, []events.EventType{events.EventTypeParseFailed, events.EventTypeResponseSent}, rec.types())
}

func TestDispatcher_UnknownPayload(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	payload := etree.NewElement("Unknown")
	payload.CreateAttr("xmlns", "urn:example")

	el, op := dispatcher.Dispatch(context.Background(), payload, "/Authorization")
	assert.Empty(t, op)
	ack := parseAck[struct{}](t, el)
	assert.Equal(t, oicp.DataError, ack.StatusCode.Code)
	assert.Contains(t, ack.StatusCode.Description, "{urn:example}Unknown")
	assert.Equal(t, int64(1), dispatcher.GetStats().MessagesByOperation["unknown"])
}

func TestDispatcher_ReservationRoutes(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	var got *oicp.AuthorizeRemoteReservationStartRequest
	dispatcher.OnAuthorizeRemoteReservationStart(func(ctx context.Context, req oicp.AuthorizeRemoteReservationStartRequest) (*oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStartRequest], error) {
		got = &req
		ack := oicp.AckSuccess(&req)
		return &ack, nil
	})

	req, err := oicp.NewAuthorizeRemoteReservationStartRequest(testProvider, testEVSE, oicp.RemoteIdentification{EVCOID: testEVCO})
	require.NoError(t, err)
	req = req.WithDuration(30 * time.Minute)

	el, op := dispatcher.Dispatch(context.Background(), req.ToXML(), "/Reservation")
	assert.Equal(t, oicp.OperationAuthorizeRemoteReservationStart, op)
	assert.True(t, parseAck[oicp.AuthorizeRemoteReservationStartRequest](t, el).IsSuccessful())
	require.NotNil(t, got)
	require.NotNil(t, got.Duration)
	assert.Equal(t, 30*time.Minute, *got.Duration)
}

// memoryStore 内存中的CDR存储
type memoryStore struct {
	saved []oicp.ChargeDetailRecord
	err   error
}

func (m *memoryStore) Save(ctx context.Context, cdr oicp.ChargeDetailRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, cdr)
	return nil
}

func testCDR() oicp.ChargeDetailRecord {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return oicp.ChargeDetailRecord{
		SessionID:      testSession,
		EVSEID:         testEVSE,
		Identification: oicp.RemoteIdentification{EVCOID: testEVCO},
		SessionStart:   start,
		SessionEnd:     start.Add(time.Hour),
		ConsumedEnergy: 22.5,
	}
}

func TestCDRHandler(t *testing.T) {
	dispatcher, rec := newTestDispatcher(t)
	store := &memoryStore{}
	dispatcher.OnSendChargeDetailRecord(NewCDRHandler(store, dispatcher.converter, dispatcher.hub))

	req, err := oicp.NewSendChargeDetailRecordRequest(testCDR())
	require.NoError(t, err)

	el, op := dispatcher.Dispatch(context.Background(), req.ToXML(), "/CDRs")
	assert.Equal(t, oicp.OperationSendChargeDetailRecord, op)
	ack := parseAck[oicp.SendChargeDetailRecordRequest](t, el)
	assert.True(t, ack.IsSuccessful())
	require.NotNil(t, ack.SessionID)
	assert.Equal(t, testSession, *ack.SessionID)

	require.Len(t, store.saved, 1)
	assert.Equal(t, 22.5, store.saved[0].ConsumedEnergy)
	assert.Equal(t, []events.EventType{
		events.EventTypeRequestReceived,
		events.EventTypeCDRReceived,
		events.EventTypeResponseSent,
	}, rec.types())
}

func TestCDRHandler_StoreFailure(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	store := &memoryStore{err: errors.New("connection refused")}
	dispatcher.OnSendChargeDetailRecord(NewCDRHandler(store, dispatcher.converter, dispatcher.hub))

	req, err := oicp.NewSendChargeDetailRecordRequest(testCDR())
	require.NoError(t, err)

	el, _ := dispatcher.Dispatch(context.Background(), req.ToXML(), "/CDRs")
	ack := parseAck[oicp.SendChargeDetailRecordRequest](t, el)
	assert.Equal(t, oicp.SystemError, ack.StatusCode.Code)
	assert.Contains(t, ack.StatusCode.Description, "connection refused")
}
