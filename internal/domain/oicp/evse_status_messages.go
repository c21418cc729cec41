package oicp

import (
	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// PullEVSEStatusRequest 按检索范围/状态拉取EVSE状态
type PullEVSEStatusRequest struct {
	meta RequestMeta

	ProviderID   ProviderID `validate:"required,oicp_id"`
	SearchCenter *GeoCoordinates
	DistanceKM   *float64        `validate:"omitempty,gt=0"`
	StatusFilter *EVSEStatusType `validate:"omitempty,oicp_id"`
}

// NewPullEVSEStatusRequest 创建请求
func NewPullEVSEStatusRequest(providerID ProviderID, opts ...RequestOption) (PullEVSEStatusRequest, error) {
	req := PullEVSEStatusRequest{meta: newRequestMeta(opts), ProviderID: providerID}
	if err := req.Validate(); err != nil {
		return PullEVSEStatusRequest{}, err
	}
	return req, nil
}

// WithSearchCenter 返回带检索范围的副本
func (r PullEVSEStatusRequest) WithSearchCenter(center GeoCoordinates, distanceKM float64) PullEVSEStatusRequest {
	r.SearchCenter = &center
	r.DistanceKM = &distanceKM
	return r
}

// WithStatusFilter 返回只拉取指定状态的副本
func (r PullEVSEStatusRequest) WithStatusFilter(status EVSEStatusType) PullEVSEStatusRequest {
	r.StatusFilter = &status
	return r
}

// Operation 操作名
func (r PullEVSEStatusRequest) Operation() Operation { return OperationPullEVSEStatus }

// Meta 关联信息
func (r PullEVSEStatusRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullEVSEStatusRequest) Validate() error {
	if r.SearchCenter != nil && !r.SearchCenter.IsValid() {
		return ValidationError{Operation: r.Operation(), Cause: r.SearchCenter.check()}
	}
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingPullEvseStatus
func (r PullEVSEStatusRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullEVSEStatus, NSCommonTypes)
	serialization.AddText(root, es("ProviderID"), r.ProviderID.String())
	appendSearchCenter(root, NSEVSEStatus, r.SearchCenter, r.DistanceKM)
	if r.StatusFilter != nil {
		serialization.AddText(root, es("EvseStatus"), string(*r.StatusFilter))
	}
	return root
}

// ParsePullEVSEStatusRequest 解析入站请求
func ParsePullEVSEStatusRequest(root *etree.Element, opts ...RequestOption) (PullEVSEStatusRequest, error) {
	if err := serialization.ExpectRoot(root, RootPullEVSEStatus); err != nil {
		return PullEVSEStatusRequest{}, err
	}
	provider, err := serialization.MapValueOrFail(root, es("ProviderID"), ParseProviderID)
	if err != nil {
		return PullEVSEStatusRequest{}, err
	}
	center, distance, err := parseSearchCenter(root, NSEVSEStatus)
	if err != nil {
		return PullEVSEStatusRequest{}, err
	}
	filter, err := serialization.MapOptional(root, es("EvseStatus"), ParseEVSEStatusType, serialization.Strict)
	if err != nil {
		return PullEVSEStatusRequest{}, err
	}
	return PullEVSEStatusRequest{
		meta:         newRequestMeta(opts),
		ProviderID:   provider,
		SearchCenter: center,
		DistanceKM:   distance,
		StatusFilter: filter,
	}, nil
}

// PullEVSEStatusByIDRequest 按EVSE标识拉取状态（1..100个）
type PullEVSEStatusByIDRequest struct {
	meta RequestMeta

	ProviderID ProviderID `validate:"required,oicp_id"`
	EVSEIDs    []EVSEID   `validate:"min=1,max=100,dive,required,oicp_id"`
}

// NewPullEVSEStatusByIDRequest 创建请求
func NewPullEVSEStatusByIDRequest(providerID ProviderID, evseIDs []EVSEID, opts ...RequestOption) (PullEVSEStatusByIDRequest, error) {
	req := PullEVSEStatusByIDRequest{
		meta:       newRequestMeta(opts),
		ProviderID: providerID,
		EVSEIDs:    append([]EVSEID(nil), evseIDs...),
	}
	if err := req.Validate(); err != nil {
		return PullEVSEStatusByIDRequest{}, err
	}
	return req, nil
}

// Operation 操作名
func (r PullEVSEStatusByIDRequest) Operation() Operation { return OperationPullEVSEStatusByID }

// Meta 关联信息
func (r PullEVSEStatusByIDRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullEVSEStatusByIDRequest) Validate() error { return validateRequest(r.Operation(), r) }

// ToXML 生成 eRoamingPullEvseStatusById
func (r PullEVSEStatusByIDRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullEVSEStatusByID, NSCommonTypes)
	serialization.AddText(root, es("ProviderID"), r.ProviderID.String())
	serialization.AddValues(root, es("EvseId"), r.EVSEIDs, EVSEID.String)
	return root
}

// ParsePullEVSEStatusByIDRequest 解析入站请求
func ParsePullEVSEStatusByIDRequest(root *etree.Element, opts ...RequestOption) (PullEVSEStatusByIDRequest, error) {
	if err := serialization.ExpectRoot(root, RootPullEVSEStatusByID); err != nil {
		return PullEVSEStatusByIDRequest{}, err
	}
	provider, err := serialization.MapValueOrFail(root, es("ProviderID"), ParseProviderID)
	if err != nil {
		return PullEVSEStatusByIDRequest{}, err
	}
	ids, err := serialization.MapValues(root, es("EvseId"), ParseEVSEID)
	if err != nil {
		return PullEVSEStatusByIDRequest{}, err
	}
	return PullEVSEStatusByIDRequest{meta: newRequestMeta(opts), ProviderID: provider, EVSEIDs: ids}, nil
}

// PullEVSEStatusByOperatorIDRequest 按运营商拉取状态（1..100个）
type PullEVSEStatusByOperatorIDRequest struct {
	meta RequestMeta

	ProviderID  ProviderID   `validate:"required,oicp_id"`
	OperatorIDs []OperatorID `validate:"min=1,max=100,dive,required,oicp_id"`
}

// NewPullEVSEStatusByOperatorIDRequest 创建请求
func NewPullEVSEStatusByOperatorIDRequest(providerID ProviderID, operatorIDs []OperatorID, opts ...RequestOption) (PullEVSEStatusByOperatorIDRequest, error) {
	req := PullEVSEStatusByOperatorIDRequest{
		meta:        newRequestMeta(opts),
		ProviderID:  providerID,
		OperatorIDs: append([]OperatorID(nil), operatorIDs...),
	}
	if err := req.Validate(); err != nil {
		return PullEVSEStatusByOperatorIDRequest{}, err
	}
	return req, nil
}

// Operation 操作名
func (r PullEVSEStatusByOperatorIDRequest) Operation() Operation {
	return OperationPullEVSEStatusByOperatorID
}

// Meta 关联信息
func (r PullEVSEStatusByOperatorIDRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PullEVSEStatusByOperatorIDRequest) Validate() error {
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingPullEvseStatusByOperatorId
func (r PullEVSEStatusByOperatorIDRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPullEVSEStatusByOperatorID, NSCommonTypes)
	serialization.AddText(root, es("ProviderID"), r.ProviderID.String())
	serialization.AddValues(root, es("OperatorID"), r.OperatorIDs, OperatorID.String)
	return root
}

// ParsePullEVSEStatusByOperatorIDRequest 解析入站请求
func ParsePullEVSEStatusByOperatorIDRequest(root *etree.Element, opts ...RequestOption) (PullEVSEStatusByOperatorIDRequest, error) {
	if err := serialization.ExpectRoot(root, RootPullEVSEStatusByOperatorID); err != nil {
		return PullEVSEStatusByOperatorIDRequest{}, err
	}
	provider, err := serialization.MapValueOrFail(root, es("ProviderID"), ParseProviderID)
	if err != nil {
		return PullEVSEStatusByOperatorIDRequest{}, err
	}
	ids, err := serialization.MapValues(root, es("OperatorID"), ParseOperatorID)
	if err != nil {
		return PullEVSEStatusByOperatorIDRequest{}, err
	}
	return PullEVSEStatusByOperatorIDRequest{meta: newRequestMeta(opts), ProviderID: provider, OperatorIDs: ids}, nil
}

// PullEVSEStatusResponse eRoamingEvseStatus，按运营商分组的状态记录
type PullEVSEStatusResponse struct {
	Meta       ResponseMeta
	Request    *PullEVSEStatusRequest
	Operators  []OperatorEVSEStatus
	StatusCode StatusCode
}

// Records 所有运营商的状态记录（文档顺序）
func (r PullEVSEStatusResponse) Records() []EVSEStatusRecord {
	return flattenStatus(r.Operators)
}

// ToXML 生成 eRoamingEvseStatus
func (r PullEVSEStatusResponse) ToXML() *etree.Element {
	return evseStatusXML(r.Operators, r.StatusCode)
}

// ParsePullEVSEStatusResponse 解析 eRoamingEvseStatus
func ParsePullEVSEStatusResponse(root *etree.Element, req *PullEVSEStatusRequest, opts ...ParseOption) (*PullEVSEStatusResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	operators, status, err := parseEVSEStatus(root, OperationPullEVSEStatus)
	if err != nil {
		return nil, err
	}
	return &PullEVSEStatusResponse{Meta: cfg.meta, Request: req, Operators: operators, StatusCode: status}, nil
}

// PullEVSEStatusByOperatorIDResponse 与 PullEVSEStatusResponse 同结构，关联不同的请求
type PullEVSEStatusByOperatorIDResponse struct {
	Meta       ResponseMeta
	Request    *PullEVSEStatusByOperatorIDRequest
	Operators  []OperatorEVSEStatus
	StatusCode StatusCode
}

// Records 所有运营商的状态记录（文档顺序）
func (r PullEVSEStatusByOperatorIDResponse) Records() []EVSEStatusRecord {
	return flattenStatus(r.Operators)
}

// ToXML 生成 eRoamingEvseStatus
func (r PullEVSEStatusByOperatorIDResponse) ToXML() *etree.Element {
	return evseStatusXML(r.Operators, r.StatusCode)
}

// ParsePullEVSEStatusByOperatorIDResponse 解析 eRoamingEvseStatus
func ParsePullEVSEStatusByOperatorIDResponse(root *etree.Element, req *PullEVSEStatusByOperatorIDRequest, opts ...ParseOption) (*PullEVSEStatusByOperatorIDResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	operators, status, err := parseEVSEStatus(root, OperationPullEVSEStatusByOperatorID)
	if err != nil {
		return nil, err
	}
	return &PullEVSEStatusByOperatorIDResponse{Meta: cfg.meta, Request: req, Operators: operators, StatusCode: status}, nil
}

// PullEVSEStatusByIDResponse eRoamingEvseStatusById
type PullEVSEStatusByIDResponse struct {
	Meta       ResponseMeta
	Request    *PullEVSEStatusByIDRequest
	Records    []EVSEStatusRecord
	StatusCode StatusCode
}

// ToXML 生成 eRoamingEvseStatusById
func (r PullEVSEStatusByIDResponse) ToXML() *etree.Element {
	root := serialization.NewRoot(RootEVSEStatusByID, NSCommonTypes)
	records := serialization.AddElement(root, es("EvseStatusRecords"))
	for _, rec := range r.Records {
		rec.AppendTo(records)
	}
	r.StatusCode.AppendTo(root)
	return root
}

// ParsePullEVSEStatusByIDResponse 解析 eRoamingEvseStatusById
func ParsePullEVSEStatusByIDResponse(root *etree.Element, req *PullEVSEStatusByIDRequest, opts ...ParseOption) (*PullEVSEStatusByIDResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	if err := serialization.ExpectRoot(root, RootEVSEStatusByID); err != nil {
		return nil, err
	}
	records, err := parseStatusRecords(serialization.Child(root, es("EvseStatusRecords")))
	if err != nil {
		return nil, err
	}
	status, err := statusCodeFor(root, OperationPullEVSEStatusByID)
	if err != nil {
		return nil, err
	}
	return &PullEVSEStatusByIDResponse{Meta: cfg.meta, Request: req, Records: records, StatusCode: status}, nil
}

func evseStatusXML(operators []OperatorEVSEStatus, status StatusCode) *etree.Element {
	root := serialization.NewRoot(RootEVSEStatus, NSCommonTypes)
	statuses := serialization.AddElement(root, es("EvseStatuses"))
	for _, o := range operators {
		o.appendTo(statuses)
	}
	status.AppendTo(root)
	return root
}

func parseEVSEStatus(root *etree.Element, op Operation) ([]OperatorEVSEStatus, StatusCode, error) {
	if err := serialization.ExpectRoot(root, RootEVSEStatus); err != nil {
		return nil, StatusCode{}, err
	}
	operators, err := serialization.MapElementsKeyed(serialization.Child(root, es("EvseStatuses")), es("OperatorEvseStatus"),
		parseOperatorEVSEStatus,
		func(o *etree.Element) string { return serialization.ValueOrDefault(o, es("OperatorID"), "") })
	if err != nil {
		return nil, StatusCode{}, err
	}
	status, err := statusCodeFor(root, op)
	if err != nil {
		return nil, StatusCode{}, err
	}
	return operators, status, nil
}

func flattenStatus(operators []OperatorEVSEStatus) []EVSEStatusRecord {
	var out []EVSEStatusRecord
	for _, o := range operators {
		out = append(out, o.Records...)
	}
	return out
}
