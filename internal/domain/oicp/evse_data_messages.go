package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// PullEVSEDataRequest 拉取EVSE静态数据
type PullEVSEDataRequest struct {
	meta RequestMeta

	ProviderID ProviderID `validate:"required,oicp_id"`
	// SearchCenter 与 DistanceKM 同时设置时才输出检索范围
	SearchCenter                 *GeoCoordinates
	DistanceKM                   *float64 `validate:"omitempty,gt=0"`
	LastCall                     *time.Time
	GeoCoordinatesResponseFormat GeoCoordinatesFormat `validate:"required,oicp_id"`
}

// NewPullEVSEDataRequest 创建请求，默认返回十进制度坐标
func NewPullEVSEDataRequest(providerID ProviderID, opts ...RequestOption) (PullEVSEDataRequest, error) {
	req := PullEVSEDataRequest{
		meta:                         newRequestMeta(opts),
		ProviderID:                   providerID,
		GeoCoordinatesResponseFormat: GeoFormatDecimalDegree,
	}
	if err := req.Validate(); err != nil {
		return PullEVSEDataRequest{}, err
	}
	return req, nil
}

// WithSearchCenter 返回带检索范围的副本
func (r PullEVSEDataRequest) WithSearchCenter(center GeoCoordinates, distanceKM float64) PullEVSEDataRequest {
	r.SearchCenter = &center
	r.DistanceKM = &distanceKM
	return r
}

// WithLastCall 返回增量拉取的副本
func (r PullEVSEDataRequest) WithLastCall(lastCall time.Time) PullEVSEDataRequest {
	r.LastCall = &lastCall
	return r
}

// WithGeoCoordinatesResponseFormat 返回指定坐标响应格式的副本
func (r PullEVSEDataRequest) WithGeoCoordinatesResponseFormat(f GeoCoordinatesFormat) PullEVSEDataRequest {
	r.GeoCoordinatesResponseFormat = f
	return r
}

// Operation 操作名
func (r PullEVSEDataRequest) Operation() Operation { return OperationPullEVSEData }

// Meta 关联信息
func (r PullEVSEDataRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullEVSEDataRequest) Validate() error {
	if r.SearchCenter != nil && !r.SearchCenter.IsValid() {
		return ValidationError{Operation: r.Operation(), Cause: r.SearchCenter.check()}
	}
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingPullEvseData
func (r PullEVSEDataRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullEVSEData, NSCommonTypes)
	serialization.AddText(root, ed("ProviderID"), r.ProviderID.String())
	appendSearchCenter(root, NSEVSEData, r.SearchCenter, r.DistanceKM)
	serialization.AddOptional(root, ed("LastCall"), r.LastCall, serialization.FormatTime)
	serialization.AddText(root, ed("GeoCoordinatesResponseFormat"), string(r.GeoCoordinatesResponseFormat))
	return root
}

// ParsePullEVSEDataRequest 解析入站请求
func ParsePullEVSEDataRequest(root *etree.Element, opts ...RequestOption) (PullEVSEDataRequest, error) {
	if err := serialization.ExpectRoot(root, RootPullEVSEData); err != nil {
		return PullEVSEDataRequest{}, err
	}
	provider, err := serialization.MapValueOrFail(root, ed("ProviderID"), ParseProviderID)
	if err != nil {
		return PullEVSEDataRequest{}, err
	}
	center, distance, err := parseSearchCenter(root, NSEVSEData)
	if err != nil {
		return PullEVSEDataRequest{}, err
	}
	lastCall, err := serialization.MapOptional(root, ed("LastCall"), serialization.ParseTime, serialization.Strict)
	if err != nil {
		return PullEVSEDataRequest{}, err
	}
	format, err := serialization.MapValueOrDefault(root, ed("GeoCoordinatesResponseFormat"), ParseGeoCoordinatesFormat, GeoFormatDecimalDegree)
	if err != nil {
		return PullEVSEDataRequest{}, err
	}
	return PullEVSEDataRequest{
		meta:                         newRequestMeta(opts),
		ProviderID:                   provider,
		SearchCenter:                 center,
		DistanceKM:                   distance,
		LastCall:                     lastCall,
		GeoCoordinatesResponseFormat: format,
	}, nil
}

// PullEVSEDataResponse EVSE数据拉取结果
type PullEVSEDataResponse struct {
	Meta       ResponseMeta
	Request    *PullEVSEDataRequest
	Operators  []OperatorEVSEData
	StatusCode StatusCode
}

// Records 所有运营商的EVSE数据记录（文档顺序）
func (r PullEVSEDataResponse) Records() []EVSEDataRecord {
	var out []EVSEDataRecord
	for _, o := range r.Operators {
		out = append(out, o.Records...)
	}
	return out
}

// ToXML 生成 eRoamingEvseData
func (r PullEVSEDataResponse) ToXML() *etree.Element {
	root := serialization.NewRoot(RootEVSEData, NSCommonTypes)
	data := serialization.AddElement(root, ed("EvseData"))
	for _, o := range r.Operators {
		o.appendTo(data)
	}
	r.StatusCode.AppendTo(root)
	return root
}

// ParsePullEVSEDataResponse 解析 eRoamingEvseData。StatusCode 缺失时视为成功
func ParsePullEVSEDataResponse(root *etree.Element, req *PullEVSEDataRequest, opts ...ParseOption) (*PullEVSEDataResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	if err := serialization.ExpectRoot(root, RootEVSEData); err != nil {
		return nil, err
	}
	operators, err := serialization.MapElementsKeyed(serialization.Child(root, ed("EvseData")), ed("OperatorEvseData"),
		parseOperatorEVSEData(cfg.mode),
		func(o *etree.Element) string { return serialization.ValueOrDefault(o, ed("OperatorID"), "") })
	if err != nil {
		return nil, err
	}
	status, err := statusCodeFor(root, OperationPullEVSEData)
	if err != nil {
		return nil, err
	}
	return &PullEVSEDataResponse{
		Meta:       cfg.meta,
		Request:    req,
		Operators:  operators,
		StatusCode: status,
	}, nil
}
