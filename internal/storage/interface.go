package storage

import (
	"context"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
)

// EVSECache 缓存从平台拉取的EVSE状态和静态数据
type EVSECache interface {
	// PutStatuses 批量写入实时状态，ttl 过期后视为状态未知
	PutStatuses(ctx context.Context, records []oicp.EVSEStatusRecord, ttl time.Duration) error

	// GetStatus 查询单个EVSE的状态
	// 如果键不存在，应返回 redis.Nil 错误
	GetStatus(ctx context.Context, evseID oicp.EVSEID) (oicp.EVSEStatusType, error)

	// ApplyEVSEData 按记录的 DeltaType 写入或删除静态数据
	ApplyEVSEData(ctx context.Context, records []oicp.EVSEDataRecord) error

	// GetEVSEData 读取单个EVSE的静态数据，不存在时返回 redis.Nil
	GetEVSEData(ctx context.Context, evseID oicp.EVSEID) (*oicp.EVSEDataRecord, error)

	// Close 关闭与存储后端的连接
	Close() error
}
