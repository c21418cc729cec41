package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// PullPricingProductDataRequest 拉取运营商的计价产品数据
type PullPricingProductDataRequest struct {
	meta RequestMeta

	ProviderID  ProviderID   `validate:"required,oicp_id"`
	OperatorIDs []OperatorID `validate:"min=1,max=100,dive,required,oicp_id"`
	LastCall    *time.Time
}

// NewPullPricingProductDataRequest 创建请求
func NewPullPricingProductDataRequest(providerID ProviderID, operatorIDs []OperatorID, opts ...RequestOption) (PullPricingProductDataRequest, error) {
	req := PullPricingProductDataRequest{
		meta:        newRequestMeta(opts),
		ProviderID:  providerID,
		OperatorIDs: append([]OperatorID(nil), operatorIDs...),
	}
	if err := req.Validate(); err != nil {
		return PullPricingProductDataRequest{}, err
	}
	return req, nil
}

// WithLastCall 返回增量拉取的副本
func (r PullPricingProductDataRequest) WithLastCall(lastCall time.Time) PullPricingProductDataRequest {
	r.LastCall = &lastCall
	return r
}

// Operation 操作名
func (r PullPricingProductDataRequest) Operation() Operation { return OperationPullPricingProductData }

// Meta 关联信息
func (r PullPricingProductDataRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullPricingProductDataRequest) Validate() error { return validateRequest(r.Operation(), r) }

// ToXML 生成 eRoamingPullPricingProductData
func (r PullPricingProductDataRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullPricingProductData, NSCommonTypes)
	serialization.AddText(root, dp("ProviderID"), r.ProviderID.String())
	serialization.AddOptional(root, dp("LastCall"), r.LastCall, serialization.FormatTime)
	serialization.AddValues(root, dp("OperatorIDs"), r.OperatorIDs, OperatorID.String)
	return root
}

// ParsePullPricingProductDataRequest 解析入站请求
func ParsePullPricingProductDataRequest(root *etree.Element, opts ...RequestOption) (PullPricingProductDataRequest, error) {
	provider, lastCall, operators, err := parsePricingPull(root, RootPullPricingProductData)
	if err != nil {
		return PullPricingProductDataRequest{}, err
	}
	return PullPricingProductDataRequest{
		meta:        newRequestMeta(opts),
		ProviderID:  provider,
		OperatorIDs: operators,
		LastCall:    lastCall,
	}, nil
}

// PullPricingProductDataResponse 计价产品数据
type PullPricingProductDataResponse struct {
	Meta               ResponseMeta
	Request            *PullPricingProductDataRequest
	PricingProductData []PricingProductData
	StatusCode         StatusCode
}

// ToXML 生成 eRoamingPricingProductData
func (r PullPricingProductDataResponse) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPricingProductData, NSCommonTypes)
	for _, p := range r.PricingProductData {
		p.AppendTo(root)
	}
	r.StatusCode.AppendTo(root)
	return root
}

// ParsePullPricingProductDataResponse 解析 eRoamingPricingProductData
func ParsePullPricingProductDataResponse(root *etree.Element, req *PullPricingProductDataRequest, opts ...ParseOption) (*PullPricingProductDataResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	if err := serialization.ExpectRoot(root, RootPricingProductData); err != nil {
		return nil, err
	}
	data, err := serialization.MapElementsKeyed(root, dp("PricingProductData"),
		func(p *etree.Element) (PricingProductData, error) { return ParsePricingProductData(p, cfg.mode) },
		func(p *etree.Element) string { return serialization.ValueOrDefault(p, dp("OperatorID"), "") })
	if err != nil {
		return nil, err
	}
	status, err := statusCodeFor(root, OperationPullPricingProductData)
	if err != nil {
		return nil, err
	}
	return &PullPricingProductDataResponse{Meta: cfg.meta, Request: req, PricingProductData: data, StatusCode: status}, nil
}

// PullEVSEPricingRequest 拉取EVSE与计价产品的对应关系
type PullEVSEPricingRequest struct {
	meta RequestMeta

	ProviderID  ProviderID   `validate:"required,oicp_id"`
	OperatorIDs []OperatorID `validate:"min=1,max=100,dive,required,oicp_id"`
	LastCall    *time.Time
}

// NewPullEVSEPricingRequest 创建请求
func NewPullEVSEPricingRequest(providerID ProviderID, operatorIDs []OperatorID, opts ...RequestOption) (PullEVSEPricingRequest, error) {
	req := PullEVSEPricingRequest{
		meta:        newRequestMeta(opts),
		ProviderID:  providerID,
		OperatorIDs: append([]OperatorID(nil), operatorIDs...),
	}
	if err := req.Validate(); err != nil {
		return PullEVSEPricingRequest{}, err
	}
	return req, nil
}

// WithLastCall 返回增量拉取的副本
func (r PullEVSEPricingRequest) WithLastCall(lastCall time.Time) PullEVSEPricingRequest {
	r.LastCall = &lastCall
	return r
}

// Operation 操作名
func (r PullEVSEPricingRequest) Operation() Operation { return OperationPullEVSEPricing }

// Meta 关联信息
func (r PullEVSEPricingRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullEVSEPricingRequest) Validate() error { return validateRequest(r.Operation(), r) }

// ToXML 生成 eRoamingPullEVSEPricing
func (r PullEVSEPricingRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullEVSEPricing, NSCommonTypes)
	serialization.AddText(root, dp("ProviderID"), r.ProviderID.String())
	serialization.AddOptional(root, dp("LastCall"), r.LastCall, serialization.FormatTime)
	serialization.AddValues(root, dp("OperatorIDs"), r.OperatorIDs, OperatorID.String)
	return root
}

// ParsePullEVSEPricingRequest 解析入站请求
func ParsePullEVSEPricingRequest(root *etree.Element, opts ...RequestOption) (PullEVSEPricingRequest, error) {
	provider, lastCall, operators, err := parsePricingPull(root, RootPullEVSEPricing)
	if err != nil {
		return PullEVSEPricingRequest{}, err
	}
	return PullEVSEPricingRequest{
		meta:        newRequestMeta(opts),
		ProviderID:  provider,
		OperatorIDs: operators,
		LastCall:    lastCall,
	}, nil
}

// PullEVSEPricingResponse EVSE计价对应关系
type PullEVSEPricingResponse struct {
	Meta        ResponseMeta
	Request     *PullEVSEPricingRequest
	EVSEPricing []EVSEPricing
	StatusCode  StatusCode
}

// ToXML 生成 eRoamingEVSEPricing
func (r PullEVSEPricingResponse) ToXML() *etree.Element {
	root := serialization.NewRoot(RootEVSEPricing, NSCommonTypes)
	for _, p := range r.EVSEPricing {
		p.AppendTo(root)
	}
	r.StatusCode.AppendTo(root)
	return root
}

// ParsePullEVSEPricingResponse 解析 eRoamingEVSEPricing
func ParsePullEVSEPricingResponse(root *etree.Element, req *PullEVSEPricingRequest, opts ...ParseOption) (*PullEVSEPricingResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	if err := serialization.ExpectRoot(root, RootEVSEPricing); err != nil {
		return nil, err
	}
	pricing, err := serialization.MapElementsKeyed(root, dp("EVSEPricing"), ParseEVSEPricing,
		func(p *etree.Element) string { return serialization.ValueOrDefault(p, dp("EvseID"), "") })
	if err != nil {
		return nil, err
	}
	status, err := statusCodeFor(root, OperationPullEVSEPricing)
	if err != nil {
		return nil, err
	}
	return &PullEVSEPricingResponse{Meta: cfg.meta, Request: req, EVSEPricing: pricing, StatusCode: status}, nil
}

func parsePricingPull(root *etree.Element, name serialization.QName) (ProviderID, *time.Time, []OperatorID, error) {
	if err := serialization.ExpectRoot(root, name); err != nil {
		return "", nil, nil, err
	}
	provider, err := serialization.MapValueOrFail(root, dp("ProviderID"), ParseProviderID)
	if err != nil {
		return "", nil, nil, err
	}
	lastCall, err := serialization.MapOptional(root, dp("LastCall"), serialization.ParseTime, serialization.Strict)
	if err != nil {
		return "", nil, nil, err
	}
	operators, err := serialization.MapValues(root, dp("OperatorIDs"), ParseOperatorID)
	if err != nil {
		return "", nil, nil, err
	}
	return provider, lastCall, operators, nil
}
