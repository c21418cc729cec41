package evse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/storage"
)

// Puller 同步所需的EMP客户端拉取操作
type Puller interface {
	PullEVSEData(ctx context.Context, req oicp.PullEVSEDataRequest) oicp.Result[oicp.PullEVSEDataResponse]
	PullEVSEStatus(ctx context.Context, req oicp.PullEVSEStatusRequest) oicp.Result[oicp.PullEVSEStatusResponse]
}

// SyncConfig 同步器配置
type SyncConfig struct {
	ProviderID oicp.ProviderID `json:"provider_id"`

	// 拉取周期
	StatusInterval time.Duration `json:"status_interval"`
	DataInterval   time.Duration `json:"data_interval"`

	// StatusTTL 状态在缓存中的有效期，应大于 StatusInterval
	StatusTTL time.Duration `json:"status_ttl"`

	GeoFormat oicp.GeoCoordinatesFormat `json:"geo_format"`
}

// DefaultSyncConfig 默认同步配置
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		StatusInterval: 1 * time.Minute,
		DataInterval:   15 * time.Minute,
		StatusTTL:      15 * time.Minute,
		GeoFormat:      oicp.GeoFormatDecimalDegree,
	}
}

// SyncConfigFrom 从应用配置生成同步配置
func SyncConfigFrom(cfg config.OICPConfig) (*SyncConfig, error) {
	out := DefaultSyncConfig()
	provider, err := oicp.ParseProviderID(cfg.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("invalid oicp.provider_id: %w", err)
	}
	out.ProviderID = provider
	if cfg.StatusTTL > 0 {
		out.StatusTTL = cfg.StatusTTL
	}
	if cfg.GeoResponseFormat != "" {
		format, err := oicp.ParseGeoCoordinatesFormat(cfg.GeoResponseFormat)
		if err != nil {
			return nil, fmt.Errorf("invalid oicp.geo_response_format: %w", err)
		}
		out.GeoFormat = format
	}
	return out, nil
}

// SyncStats 同步统计信息
type SyncStats struct {
	StatusPulls    int64     `json:"status_pulls"`
	DataPulls      int64     `json:"data_pulls"`
	StatusRecords  int64     `json:"status_records"`
	DataRecords    int64     `json:"data_records"`
	Failures       int64     `json:"failures"`
	LastStatusSync time.Time `json:"last_status_sync"`
	LastDataSync   time.Time `json:"last_data_sync"`
	LastError      string    `json:"last_error,omitempty"`
}

// Syncer 周期性拉取EVSE状态和静态数据写入缓存
type Syncer struct {
	puller Puller
	cache  storage.EVSECache
	config *SyncConfig

	// lastCall 上次成功拉取静态数据的时间，用于增量拉取
	lastCall *time.Time
	stats    SyncStats
	mutex    sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
	now    func() time.Time
}

// NewSyncer 创建同步器
func NewSyncer(puller Puller, cache storage.EVSECache, config *SyncConfig, log *logger.Logger) *Syncer {
	if config == nil {
		config = DefaultSyncConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		puller: puller,
		cache:  cache,
		config: config,
		ctx:    ctx,
		cancel: cancel,
		logger: log,
		now:    time.Now,
	}
}

// Start 启动同步协程，启动时立即执行一次全量同步
func (s *Syncer) Start() error {
	s.logger.Info("Starting EVSE syncer")

	s.wg.Add(2)
	go s.loop(s.config.DataInterval, s.SyncData)
	go s.loop(s.config.StatusInterval, s.SyncStatus)

	s.logger.Infof("EVSE syncer started: status every %s, data every %s", s.config.StatusInterval, s.config.DataInterval)
	return nil
}

// Stop 停止同步器并等待协程结束
func (s *Syncer) Stop() error {
	s.logger.Info("Stopping EVSE syncer")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("EVSE syncer stopped")
	return nil
}

func (s *Syncer) loop(interval time.Duration, run func(context.Context) (int, error)) {
	defer s.wg.Done()

	if _, err := run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.ErrorWithErr(err, "EVSE sync failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorWithErr(err, "EVSE sync failed")
			}
		}
	}
}

// SyncStatus 拉取全部EVSE状态写入缓存，返回记录数
func (s *Syncer) SyncStatus(ctx context.Context) (int, error) {
	req, err := oicp.NewPullEVSEStatusRequest(s.config.ProviderID)
	if err != nil {
		return 0, s.fail(err)
	}
	res := s.puller.PullEVSEStatus(ctx, req)
	if err := checkPull(res.State, res.Err, res.Content != nil, statusOf(res.Content)); err != nil {
		return 0, s.fail(fmt.Errorf("PullEVSEStatus: %w", err))
	}

	records := res.Content.Records()
	if err := s.cache.PutStatuses(ctx, records, s.config.StatusTTL); err != nil {
		return 0, s.fail(err)
	}

	s.mutex.Lock()
	s.stats.StatusPulls++
	s.stats.StatusRecords += int64(len(records))
	s.stats.LastStatusSync = s.now()
	s.mutex.Unlock()

	log := s.logger.GetLogger()
	log.Debug().
		Str(logger.FieldOperation, string(oicp.OperationPullEVSEStatus)).
		Str(logger.FieldEventTrackingID, res.EventTrackingID.String()).
		Int("records", len(records)).
		Msg("EVSE status synchronized")
	return len(records), nil
}

// SyncData 拉取EVSE静态数据。首次全量，之后以上次成功的开始时间作为 LastCall 增量拉取
func (s *Syncer) SyncData(ctx context.Context) (int, error) {
	started := s.now()

	req, err := oicp.NewPullEVSEDataRequest(s.config.ProviderID)
	if err != nil {
		return 0, s.fail(err)
	}
	req = req.WithGeoCoordinatesResponseFormat(s.config.GeoFormat)

	s.mutex.RLock()
	lastCall := s.lastCall
	s.mutex.RUnlock()
	if lastCall != nil {
		req = req.WithLastCall(*lastCall)
	}

	res := s.puller.PullEVSEData(ctx, req)
	if err := checkPull(res.State, res.Err, res.Content != nil, dataStatusOf(res.Content)); err != nil {
		return 0, s.fail(fmt.Errorf("PullEVSEData: %w", err))
	}

	records := res.Content.Records()
	if err := s.cache.ApplyEVSEData(ctx, records); err != nil {
		return 0, s.fail(err)
	}

	s.mutex.Lock()
	s.lastCall = &started
	s.stats.DataPulls++
	s.stats.DataRecords += int64(len(records))
	s.stats.LastDataSync = started
	s.mutex.Unlock()

	log := s.logger.GetLogger()
	log.Debug().
		Str(logger.FieldOperation, string(oicp.OperationPullEVSEData)).
		Str(logger.FieldEventTrackingID, res.EventTrackingID.String()).
		Bool("incremental", lastCall != nil).
		Int("records", len(records)).
		Msg("EVSE data synchronized")
	return len(records), nil
}

// LastCall 返回下一次增量拉取使用的时间
func (s *Syncer) LastCall() *time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.lastCall == nil {
		return nil
	}
	t := *s.lastCall
	return &t
}

// GetStats 获取统计信息
func (s *Syncer) GetStats() SyncStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.stats
}

func (s *Syncer) fail(err error) error {
	s.mutex.Lock()
	s.stats.Failures++
	s.stats.LastError = err.Error()
	s.mutex.Unlock()
	return err
}

// checkPull 传输失败和业务失败都视为同步失败
func checkPull(state oicp.ResultState, err error, hasContent bool, status *oicp.StatusCode) error {
	if state != oicp.StateSuccess || !hasContent {
		if err != nil {
			return fmt.Errorf("%s: %w", state, err)
		}
		return errors.New(state.String())
	}
	if status != nil && !status.IsSuccess() {
		return fmt.Errorf("status code %s", status)
	}
	return nil
}

func statusOf(r *oicp.PullEVSEStatusResponse) *oicp.StatusCode {
	if r == nil {
		return nil
	}
	return &r.StatusCode
}

func dataStatusOf(r *oicp.PullEVSEDataResponse) *oicp.StatusCode {
	if r == nil {
		return nil
	}
	return &r.StatusCode
}
