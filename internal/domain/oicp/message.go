package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// DefaultRequestTimeout 旧版端点的默认请求超时
const DefaultRequestTimeout = 180 * time.Second

// RequestMeta 每个请求都携带的关联信息，不属于业务负载
type RequestMeta struct {
	EventTrackingID EventTrackingID
	Timestamp       time.Time
	RequestTimeout  time.Duration
}

// RequestOption 请求关联信息选项
type RequestOption func(*RequestMeta)

// WithEventTrackingID 指定跟踪标识，否则自动生成
func WithEventTrackingID(id EventTrackingID) RequestOption {
	return func(m *RequestMeta) {
		m.EventTrackingID = id
	}
}

// WithTimestamp 指定请求创建时间
func WithTimestamp(t time.Time) RequestOption {
	return func(m *RequestMeta) {
		m.Timestamp = t
	}
}

// WithRequestTimeout 指定请求超时
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(m *RequestMeta) {
		m.RequestTimeout = d
	}
}

func newRequestMeta(opts []RequestOption) RequestMeta {
	m := RequestMeta{RequestTimeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&m)
	}
	if m.EventTrackingID == "" {
		m.EventTrackingID = NewEventTrackingID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if m.RequestTimeout <= 0 {
		m.RequestTimeout = DefaultRequestTimeout
	}
	return m
}

// Request 出站请求的公共接口
type Request interface {
	Operation() Operation
	Meta() RequestMeta
	Validate() error
	ToXML() *etree.Element
}

// ResponseMeta 响应关联信息，由传输层提供
type ResponseMeta struct {
	ResponseTimestamp time.Time
	EventTrackingID   EventTrackingID
	ProcessID         ProcessID
	Runtime           time.Duration
}

type parseConfig struct {
	mode serialization.Mode
	meta ResponseMeta
}

// ParseOption 响应解析选项
type ParseOption func(*parseConfig)

// WithMode 指定解析模式（默认宽松）
func WithMode(mode serialization.Mode) ParseOption {
	return func(c *parseConfig) {
		c.mode = mode
	}
}

// WithResponseMeta 指定响应关联信息
func WithResponseMeta(meta ResponseMeta) ParseOption {
	return func(c *parseConfig) {
		c.meta = meta
	}
}

// newParseConfig 解析不读取时钟，缺省的跟踪标识取自请求
func newParseConfig(reqMeta *RequestMeta, opts []ParseOption) parseConfig {
	c := parseConfig{mode: serialization.Lenient}
	for _, opt := range opts {
		opt(&c)
	}
	if c.meta.EventTrackingID == "" && reqMeta != nil {
		c.meta.EventTrackingID = reqMeta.EventTrackingID
	}
	return c
}

// metaOf 允许请求指针为nil
func metaOf[T interface{ Meta() RequestMeta }](req *T) *RequestMeta {
	if req == nil {
		return nil
	}
	m := (*req).Meta()
	return &m
}

// TryParse 把 (值, error) 形式的解析结果转换为 (值, 成功标志)
func TryParse[T any](v T, err error) (T, bool) {
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
