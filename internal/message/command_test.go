package message

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/metrics"
)

const (
	testProvider = "DE-GDF"
	testEVSE     = "DE*GEF*E1234567*A*1"
	testEVCO     = "DE-GDF-C12345678-X"
	testSession  = "8a2f6bb9-3d4e-4c0b-9a5e-7c1d2e3f4a5b"
)

type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) AuthorizeRemoteStart(ctx context.Context, req oicp.AuthorizeRemoteStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStartRequest]] {
	return m.Called(ctx, req).Get(0).(oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStartRequest]])
}

func (m *MockRemoteClient) AuthorizeRemoteStop(ctx context.Context, req oicp.AuthorizeRemoteStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest]] {
	return m.Called(ctx, req).Get(0).(oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest]])
}

func (m *MockRemoteClient) AuthorizeRemoteReservationStart(ctx context.Context, req oicp.AuthorizeRemoteReservationStartRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStartRequest]] {
	return m.Called(ctx, req).Get(0).(oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStartRequest]])
}

func (m *MockRemoteClient) AuthorizeRemoteReservationStop(ctx context.Context, req oicp.AuthorizeRemoteReservationStopRequest) oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStopRequest]] {
	return m.Called(ctx, req).Get(0).(oicp.Result[oicp.Acknowledgement[oicp.AuthorizeRemoteReservationStopRequest]])
}

// commandRecorder 记录执行器发布的事件类型
func commandRecorder(hub *events.Hub) *[]events.EventType {
	var types []events.EventType
	hub.Subscribe(func(e events.Event) { types = append(types, e.GetType()) })
	return &types
}

func succeeded[T any](ack oicp.Acknowledgement[T]) oicp.Result[oicp.Acknowledgement[T]] {
	return oicp.Succeeded(&ack, 200, 10*time.Millisecond, "track")
}

func TestCommandExecutor_RemoteStart(t *testing.T) {
	client := new(MockRemoteClient)
	hub := events.NewHub()
	recorded := commandRecorder(hub)
	executor := NewCommandExecutor(client, hub, nil, nil)

	before := testutil.ToFloat64(metrics.RemoteCommandsTotal.WithLabelValues("AuthorizeRemoteStart", CommandAccepted))

	client.On("AuthorizeRemoteStart", mock.Anything, mock.MatchedBy(func(req oicp.AuthorizeRemoteStartRequest) bool {
		remote, ok := req.Identification.(oicp.RemoteIdentification)
		return req.EVSEID == testEVSE && ok && remote.EVCOID == testEVCO &&
			req.PartnerProductID != nil && *req.PartnerProductID == "AC1"
	})).Return(succeeded(oicp.AckSuccess[oicp.AuthorizeRemoteStartRequest](nil, oicp.AckSessionID(testSession))))

	outcome, err := executor.Execute(context.Background(), &Command{
		ID:               "cmd-1",
		Operation:        oicp.OperationAuthorizeRemoteStart,
		ProviderID:       testProvider,
		EVSEID:           testEVSE,
		EVCOID:           testEVCO,
		PartnerProductID: "AC1",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
	require.NotNil(t, outcome.SessionID)
	assert.Equal(t, oicp.SessionID(testSession), *outcome.SessionID)

	assert.Equal(t, []events.EventType{events.EventTypeRemoteCommandReceived, events.EventTypeRemoteCommandExecuted}, *recorded)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RemoteCommandsTotal.WithLabelValues("AuthorizeRemoteStart", CommandAccepted)))
	client.AssertExpectations(t)
}

func TestCommandExecutor_RemoteStopRejected(t *testing.T) {
	client := new(MockRemoteClient)
	executor := NewCommandExecutor(client, nil, nil, nil)

	rejected := oicp.NewAcknowledgement[oicp.AuthorizeRemoteStopRequest](nil, false, oicp.StatusCode{Code: oicp.SessionIsInvalid})
	client.On("AuthorizeRemoteStop", mock.Anything, mock.MatchedBy(func(req oicp.AuthorizeRemoteStopRequest) bool {
		return req.SessionID == testSession
	})).Return(succeeded(rejected))

	outcome, err := executor.Execute(context.Background(), &Command{
		Operation:  oicp.OperationAuthorizeRemoteStop,
		ProviderID: testProvider,
		EVSEID:     testEVSE,
		SessionID:  testSession,
	})
	require.NoError(t, err)
	assert.False(t, outcome.Accepted)
	assert.Equal(t, oicp.SessionIsInvalid, outcome.StatusCode.Code)
}

func TestCommandExecutor_Reservation(t *testing.T) {
	client := new(MockRemoteClient)
	executor := NewCommandExecutor(client, nil, nil, nil)

	client.On("AuthorizeRemoteReservationStart", mock.Anything, mock.MatchedBy(func(req oicp.AuthorizeRemoteReservationStartRequest) bool {
		return req.Duration != nil && *req.Duration == 30*time.Minute
	})).Return(succeeded(oicp.AckSuccess[oicp.AuthorizeRemoteReservationStartRequest](nil)))
	client.On("AuthorizeRemoteReservationStop", mock.Anything, mock.Anything).
		Return(succeeded(oicp.AckSuccess[oicp.AuthorizeRemoteReservationStopRequest](nil)))

	_, err := executor.Execute(context.Background(), &Command{
		Operation:       oicp.OperationAuthorizeRemoteReservationStart,
		ProviderID:      testProvider,
		EVSEID:          testEVSE,
		EVCOID:          testEVCO,
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), &Command{
		Operation:  oicp.OperationAuthorizeRemoteReservationStop,
		ProviderID: testProvider,
		EVSEID:     testEVSE,
		SessionID:  testSession,
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestCommandExecutor_InvalidCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{
			name: "bad provider",
			cmd:  Command{Operation: oicp.OperationAuthorizeRemoteStart, ProviderID: "nope", EVSEID: testEVSE, EVCOID: testEVCO},
		},
		{
			name: "bad evse",
			cmd:  Command{Operation: oicp.OperationAuthorizeRemoteStart, ProviderID: testProvider, EVSEID: "E1", EVCOID: testEVCO},
		},
		{
			name: "start without evco",
			cmd:  Command{Operation: oicp.OperationAuthorizeRemoteStart, ProviderID: testProvider, EVSEID: testEVSE},
		},
		{
			name: "stop without session",
			cmd:  Command{Operation: oicp.OperationAuthorizeRemoteStop, ProviderID: testProvider, EVSEID: testEVSE},
		},
		{
			name: "stop with malformed session",
			cmd:  Command{Operation: oicp.OperationAuthorizeRemoteStop, ProviderID: testProvider, EVSEID: testEVSE, SessionID: "not-a-uuid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRemoteClient)
			hub := events.NewHub()
			recorded := commandRecorder(hub)
			executor := NewCommandExecutor(client, hub, nil, nil)

			_, err := executor.Execute(context.Background(), &tt.cmd)
			var invalid InvalidCommandError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, []events.EventType{events.EventTypeRemoteCommandReceived, events.EventTypeRemoteCommandFailed}, *recorded)
			client.AssertNotCalled(t, "AuthorizeRemoteStart", mock.Anything, mock.Anything)
			client.AssertNotCalled(t, "AuthorizeRemoteStop", mock.Anything, mock.Anything)
		})
	}
}

func TestCommandExecutor_UnsupportedOperation(t *testing.T) {
	executor := NewCommandExecutor(new(MockRemoteClient), nil, nil, nil)

	_, err := executor.Execute(context.Background(), &Command{
		Operation:  oicp.OperationPullEVSEData,
		ProviderID: testProvider,
		EVSEID:     testEVSE,
	})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestCommandExecutor_TransportFailure(t *testing.T) {
	client := new(MockRemoteClient)
	executor := NewCommandExecutor(client, nil, nil, nil)

	client.On("AuthorizeRemoteStop", mock.Anything, mock.Anything).Return(
		oicp.TimedOut[oicp.Acknowledgement[oicp.AuthorizeRemoteStopRequest]](context.DeadlineExceeded, time.Second, "track"))

	_, err := executor.Execute(context.Background(), &Command{
		Operation:  oicp.OperationAuthorizeRemoteStop,
		ProviderID: testProvider,
		EVSEID:     testEVSE,
		SessionID:  testSession,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed_out")
}

func TestCommandExecutor_Handle(t *testing.T) {
	client := new(MockRemoteClient)
	executor := NewCommandExecutor(client, nil, nil, nil)

	assert.NotPanics(t, func() {
		executor.Handle(context.Background(), &Command{Operation: "Bogus"})
	})
}
