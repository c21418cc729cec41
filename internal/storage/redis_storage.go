package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// DefaultKeyPrefix 未配置前缀时使用
const DefaultKeyPrefix = "oicp:"

// RedisStorage 使用 Redis 存储EVSE状态与静态数据
type RedisStorage struct {
	Client *redis.Client // 公共字段，便于测试注入 mock 客户端
	Prefix string
	Mode   serialization.Mode

	serializer *serialization.Serializer
}

var _ EVSECache = (*RedisStorage)(nil)

// NewRedisStorage 创建一个新的 RedisStorage 实例
func NewRedisStorage(cfg config.RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStorage{Client: client, Prefix: prefix}, nil
}

func (r *RedisStorage) statusKey(evseID oicp.EVSEID) string {
	return fmt.Sprintf("%sstatus:%s", r.Prefix, evseID)
}

func (r *RedisStorage) dataKey(evseID oicp.EVSEID) string {
	return fmt.Sprintf("%sevse:%s", r.Prefix, evseID)
}

func (r *RedisStorage) codec() *serialization.Serializer {
	if r.serializer == nil {
		r.serializer = serialization.NewSerializer(0)
	}
	return r.serializer
}

// PutStatuses 批量写入实时状态
func (r *RedisStorage) PutStatuses(ctx context.Context, records []oicp.EVSEStatusRecord, ttl time.Duration) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.Set(ctx, r.statusKey(rec.EVSEID), string(rec.Status), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store %d EVSE statuses: %w", len(records), err)
	}
	return nil
}

// GetStatus 查询单个EVSE的状态
func (r *RedisStorage) GetStatus(ctx context.Context, evseID oicp.EVSEID) (oicp.EVSEStatusType, error) {
	val, err := r.Client.Get(ctx, r.statusKey(evseID)).Result()
	if err == redis.Nil {
		return "", redis.Nil
	}
	if err != nil {
		return "", err
	}
	return oicp.ParseEVSEStatusType(val)
}

// ApplyEVSEData 按增量类型更新静态数据。delete 删除键，其余情况整条覆盖
func (r *RedisStorage) ApplyEVSEData(ctx context.Context, records []oicp.EVSEDataRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]string, len(records))
	for i, rec := range records {
		if rec.DeltaType != nil && *rec.DeltaType == oicp.DeltaDelete {
			continue
		}
		snapshot := rec
		snapshot.DeltaType = nil
		data, err := r.codec().Marshal(snapshot.ToXML())
		if err != nil {
			return fmt.Errorf("failed to encode EVSE data %s: %w", rec.EVSEID, err)
		}
		values[i] = string(data)
	}

	_, err := r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, rec := range records {
			if rec.DeltaType != nil && *rec.DeltaType == oicp.DeltaDelete {
				pipe.Del(ctx, r.dataKey(rec.EVSEID))
				continue
			}
			pipe.Set(ctx, r.dataKey(rec.EVSEID), values[i], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply %d EVSE data records: %w", len(records), err)
	}
	return nil
}

// GetEVSEData 读取并重新解析缓存的 EvseDataRecord
func (r *RedisStorage) GetEVSEData(ctx context.Context, evseID oicp.EVSEID) (*oicp.EVSEDataRecord, error) {
	val, err := r.Client.Get(ctx, r.dataKey(evseID)).Result()
	if err == redis.Nil {
		return nil, redis.Nil
	}
	if err != nil {
		return nil, err
	}
	root, err := r.codec().Unmarshal([]byte(val))
	if err != nil {
		return nil, err
	}
	rec, err := oicp.ParseEVSEDataRecord(root, r.Mode)
	if err != nil {
		return nil, fmt.Errorf("cached EVSE data %s is corrupt: %w", evseID, err)
	}
	return &rec, nil
}

// Close 关闭与存储后端的连接
func (r *RedisStorage) Close() error {
	return r.Client.Close()
}
