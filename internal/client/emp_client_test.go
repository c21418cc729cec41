package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
	"github.com/charging-platform/oicp-gateway/internal/transport/soap"
)

const (
	testProvider = oicp.ProviderID("DE-GDF")
	testEVSE     = oicp.EVSEID("DE*GEF*E1234567*A*1")
	testSession  = oicp.SessionID("8a2f6bb9-3d4e-4c0b-9a5e-7c1d2e3f4a5b")
	testEVCO     = oicp.EVCOID("DE-GDF-C12345678-X")
)

type captured struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captured) handle(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captured) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.EventType
	for _, e := range c.events {
		out = append(out, e.GetType())
	}
	return out
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*EMPClient, *captured) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hub := events.NewHub()
	rec := &captured{}
	hub.Subscribe(rec.handle)
	return NewEMPClient(Config{Endpoint: srv.URL + "/api/oicp/"}, srv.Client(), hub, nil, nil), rec
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, payload *etree.Element) {
	t.Helper()
	data, err := soap.Marshal(payload)
	require.NoError(t, err)
	w.Header().Set("Content-Type", soap.ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.OICPConfig{Endpoint: "https://hub.example", Version: "2.3", RequestTimeout: time.Minute})
	assert.Equal(t, serialization.Strict, cfg.Mode)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)

	cfg = ConfigFrom(config.OICPConfig{Version: "2.2"})
	assert.Equal(t, serialization.Lenient, cfg.Mode)
}

func TestServicePath(t *testing.T) {
	assert.Equal(t, "/EVSEData", servicePath(oicp.OperationPullEVSEData))
	assert.Equal(t, "/EVSEStatus", servicePath(oicp.OperationPullEVSEStatusByOperatorID))
	assert.Equal(t, "/DynamicPricing", servicePath(oicp.OperationPullEVSEPricing))
	assert.Equal(t, "/Reservation", servicePath(oicp.OperationAuthorizeRemoteReservationStop))
	assert.Equal(t, "/AuthenticationData", servicePath(oicp.OperationPushAuthenticationData))
	assert.Equal(t, "/Authorization", servicePath(oicp.OperationGetChargeDetailRecords))
}

func TestPullEVSEStatusByID_Success(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/oicp/EVSEStatus", r.URL.Path)
		assert.Equal(t, "PullEVSEStatusById", r.Header.Get("SOAPAction"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		payload, err := soap.Parse(body)
		require.NoError(t, err)
		req, err := oicp.ParsePullEVSEStatusByIDRequest(payload)
		require.NoError(t, err)
		assert.Equal(t, []oicp.EVSEID{testEVSE}, req.EVSEIDs)

		resp := oicp.PullEVSEStatusByIDResponse{
			Records:    []oicp.EVSEStatusRecord{{EVSEID: testEVSE, Status: oicp.EVSEStatusAvailable}},
			StatusCode: oicp.SuccessStatus(),
		}
		w.Header().Set(ProcessIDHeader, "proc-77")
		writeEnvelope(t, w, http.StatusOK, resp.ToXML())
	})

	req, err := oicp.NewPullEVSEStatusByIDRequest(testProvider, []oicp.EVSEID{testEVSE}, oicp.WithEventTrackingID("track-1"))
	require.NoError(t, err)

	result := client.PullEVSEStatusByID(context.Background(), req)
	require.True(t, result.IsSuccess(), "%v", result.Err)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Equal(t, oicp.EventTrackingID("track-1"), result.EventTrackingID)

	content := result.Content
	require.Len(t, content.Records, 1)
	assert.Equal(t, oicp.EVSEStatusAvailable, content.Records[0].Status)
	assert.Equal(t, oicp.ProcessID("proc-77"), content.Meta.ProcessID)
	assert.Equal(t, oicp.EventTrackingID("track-1"), content.Meta.EventTrackingID)
	require.NotNil(t, content.Request)
	assert.Equal(t, req.EVSEIDs, content.Request.EVSEIDs)

	assert.Equal(t, []events.EventType{events.EventTypeRequestSent, events.EventTypeResponseReceived}, rec.types())
	received := rec.events[1].(*events.ResponseReceivedEvent)
	assert.Equal(t, "success", received.Response.State)
	require.NotNil(t, received.GetMetadata().ProcessID)
	assert.Equal(t, oicp.ProcessID("proc-77"), *received.GetMetadata().ProcessID)
}

func TestAuthorizeRemoteStart_Rejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/oicp/Authorization", r.URL.Path)
		ack := oicp.NewAcknowledgement[oicp.AuthorizeRemoteStartRequest](nil, false, oicp.NewStatusCode(oicp.SessionIsInvalid, "unknown session"))
		writeEnvelope(t, w, http.StatusOK, ack.ToXML())
	})

	req, err := oicp.NewAuthorizeRemoteStartRequest(testProvider, testEVSE, oicp.RemoteIdentification{EVCOID: testEVCO})
	require.NoError(t, err)

	result := client.AuthorizeRemoteStart(context.Background(), req)
	require.Equal(t, oicp.StateSuccess, result.State)
	assert.False(t, result.Content.Result)
	assert.False(t, result.Content.IsSuccessful())
	assert.Equal(t, oicp.SessionIsInvalid, result.Content.StatusCode.Code)
	// 缺少 Process-ID 时生成新的标识
	assert.NotEmpty(t, result.Content.Meta.ProcessID)
}

func TestCall_TimedOut(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	req, err := oicp.NewAuthorizeRemoteStopRequest(testSession, testProvider, testEVSE, oicp.WithRequestTimeout(50*time.Millisecond))
	require.NoError(t, err)

	result := client.AuthorizeRemoteStop(context.Background(), req)
	assert.Equal(t, oicp.StateTimedOut, result.State)
	assert.Nil(t, result.Content)
	assert.Error(t, result.Err)
}

func TestCall_Faults(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		check      func(t *testing.T, err error)
	}{
		{
			name: "soap fault",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fault := &soap.Fault{Code: "soapenv:Server", String: "backend unavailable"}
				writeEnvelope(t, w, http.StatusInternalServerError, fault.ToXML())
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var fault *soap.Fault
				require.True(t, errors.As(err, &fault))
				assert.Equal(t, "backend unavailable", fault.String)
			},
		},
		{
			name: "non 2xx without envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "maintenance", http.StatusServiceUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "503")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)
			req, err := oicp.NewPullEVSEDataRequest(testProvider)
			require.NoError(t, err)

			result := client.PullEVSEData(context.Background(), req)
			assert.Equal(t, oicp.StateFaulted, result.State)
			assert.Equal(t, tt.wantStatus, result.HTTPStatus)
			tt.check(t, result.Err)
		})
	}
}

func TestCall_InvalidResponse(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 应答根元素与操作不符
		writeEnvelope(t, w, http.StatusOK, oicp.AckSuccess[oicp.PullEVSEDataRequest](nil).ToXML())
	})

	req, err := oicp.NewPullEVSEDataRequest(testProvider)
	require.NoError(t, err)

	result := client.PullEVSEData(context.Background(), req)
	assert.Equal(t, oicp.StateInvalidResponse, result.State)
	var structure serialization.StructureError
	assert.True(t, errors.As(result.Err, &structure))
	assert.Equal(t, []events.EventType{
		events.EventTypeRequestSent,
		events.EventTypeParseFailed,
		events.EventTypeResponseReceived,
	}, rec.types())
}

func TestCall_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewEMPClient(Config{Endpoint: url}, nil, nil, nil, nil)
	req, err := oicp.NewPullEVSEPricingRequest(testProvider, []oicp.OperatorID{"DE*GEF"})
	require.NoError(t, err)

	result := client.PullEVSEPricing(context.Background(), req)
	assert.Equal(t, oicp.StateFaulted, result.State)
	assert.Zero(t, result.HTTPStatus)
	assert.Error(t, result.Err)
}

func TestCall_InvalidRequestNotSent(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	result := client.PullEVSEData(context.Background(), oicp.PullEVSEDataRequest{})
	assert.Equal(t, oicp.StateFaulted, result.State)
	var validationErr oicp.ValidationError
	assert.True(t, errors.As(result.Err, &validationErr))
	assert.False(t, called)
}

func TestGetChargeDetailRecords(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cdr := oicp.ChargeDetailRecord{
		SessionID:      testSession,
		EVSEID:         testEVSE,
		Identification: oicp.RemoteIdentification{EVCOID: testEVCO},
		SessionStart:   start,
		SessionEnd:     start.Add(time.Hour),
		ConsumedEnergy: 12.5,
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := oicp.GetChargeDetailRecordsResponse{
			ChargeDetailRecords: []oicp.ChargeDetailRecord{cdr},
			StatusCode:          oicp.SuccessStatus(),
		}
		writeEnvelope(t, w, http.StatusOK, resp.ToXML())
	})

	req, err := oicp.NewGetChargeDetailRecordsRequest(testProvider, start.Add(-time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)

	result := client.GetChargeDetailRecords(context.Background(), req)
	require.True(t, result.IsSuccess(), "%v", result.Err)
	require.Len(t, result.Content.ChargeDetailRecords, 1)
	assert.Equal(t, 12.5, result.Content.ChargeDetailRecords[0].ConsumedEnergy)
}
