package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// Schema charge_detail_records 表结构，启动时执行
const Schema = `
	create table if not exists charge_detail_records (
		session_id      text primary key,
		evse_id         text not null,
		session_start   timestamptz not null,
		session_end     timestamptz not null,
		consumed_energy double precision not null,
		payload         text not null,
		received_at     timestamptz not null default now()
	)
`

// CDRRepository 以会话ID为主键保存充电详单，原始XML作为权威数据
type CDRRepository struct {
	db         DBTX
	mode       serialization.Mode
	serializer *serialization.Serializer
}

// NewCDRRepository 创建详单仓库
func NewCDRRepository(db DBTX, mode serialization.Mode) *CDRRepository {
	return &CDRRepository{db: db, mode: mode, serializer: serialization.NewSerializer(0)}
}

// Migrate 创建表（幂等）
func (r *CDRRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, Schema)
	return err
}

// Save 写入详单；同一会话重复推送时覆盖
func (r *CDRRepository) Save(ctx context.Context, cdr oicp.ChargeDetailRecord) error {
	payload, err := r.serializer.Marshal(cdr.ToXML())
	if err != nil {
		return fmt.Errorf("failed to encode CDR %s: %w", cdr.SessionID, err)
	}
	_, err = r.db.Exec(ctx, `
		insert into charge_detail_records (session_id, evse_id, session_start, session_end, consumed_energy, payload)
		values ($1,$2,$3,$4,$5,$6)
		on conflict (session_id) do update set
			evse_id=excluded.evse_id, session_start=excluded.session_start, session_end=excluded.session_end,
			consumed_energy=excluded.consumed_energy, payload=excluded.payload, received_at=now()
	`, cdr.SessionID.String(), cdr.EVSEID.String(), cdr.SessionStart, cdr.SessionEnd, cdr.ConsumedEnergy, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save CDR %s: %w", cdr.SessionID, err)
	}
	return nil
}

// Get 按会话ID读取详单，不存在时返回 nil, nil
func (r *CDRRepository) Get(ctx context.Context, sessionID oicp.SessionID) (*oicp.ChargeDetailRecord, error) {
	row := r.db.QueryRow(ctx, `select payload from charge_detail_records where session_id=$1`, sessionID.String())

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	root, err := r.serializer.Unmarshal([]byte(payload))
	if err != nil {
		return nil, err
	}
	cdr, err := oicp.ParseChargeDetailRecord(root, r.mode)
	if err != nil {
		return nil, fmt.Errorf("stored CDR %s is corrupt: %w", sessionID, err)
	}
	return &cdr, nil
}
