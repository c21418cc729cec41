package gateway

import (
	"context"
	"fmt"

	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// CDRStore 充电详单存储
type CDRStore interface {
	Save(ctx context.Context, cdr oicp.ChargeDetailRecord) error
}

// NewCDRHandler 持久化收到的充电详单并发布 oicp.cdr.received 事件
func NewCDRHandler(store CDRStore, converter *EventConverter, hub *events.Hub) Handler[oicp.SendChargeDetailRecordRequest] {
	return func(ctx context.Context, req oicp.SendChargeDetailRecordRequest) (*oicp.Acknowledgement[oicp.SendChargeDetailRecordRequest], error) {
		cdr := req.ChargeDetailRecord
		if err := store.Save(ctx, cdr); err != nil {
			return nil, fmt.Errorf("failed to save charge detail record %s: %w", cdr.SessionID, err)
		}
		hub.Publish(converter.CDRReceived(cdr, req.Meta().EventTrackingID))

		ack := oicp.AckSuccess(&req, oicp.AckSessionID(cdr.SessionID))
		return &ack, nil
	}
}
