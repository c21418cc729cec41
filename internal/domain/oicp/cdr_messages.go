package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// GetChargeDetailRecordsRequest 按时间窗口查询CDR。From/To 原样传递，不做校正
type GetChargeDetailRecordsRequest struct {
	meta RequestMeta

	ProviderID   ProviderID   `validate:"required,oicp_id"`
	From         time.Time    `validate:"required"`
	To           time.Time    `validate:"required"`
	SessionIDs   []SessionID  `validate:"max=100,dive,required,oicp_id"`
	OperatorIDs  []OperatorID `validate:"max=100,dive,required,oicp_id"`
	CDRForwarded *bool
	Page         *int       `validate:"omitempty,min=0"`
	Size         *int       `validate:"omitempty,min=1,max=2000"`
	SortOrder    *SortOrder `validate:"omitempty,oicp_id"`
}

// NewGetChargeDetailRecordsRequest 创建请求
func NewGetChargeDetailRecordsRequest(providerID ProviderID, from, to time.Time, opts ...RequestOption) (GetChargeDetailRecordsRequest, error) {
	req := GetChargeDetailRecordsRequest{
		meta:       newRequestMeta(opts),
		ProviderID: providerID,
		From:       from,
		To:         to,
	}
	if err := req.Validate(); err != nil {
		return GetChargeDetailRecordsRequest{}, err
	}
	return req, nil
}

// WithSessionIDs 返回按会话过滤的副本
func (r GetChargeDetailRecordsRequest) WithSessionIDs(ids ...SessionID) GetChargeDetailRecordsRequest {
	r.SessionIDs = append([]SessionID(nil), ids...)
	return r
}

// WithOperatorIDs 返回按运营商过滤的副本
func (r GetChargeDetailRecordsRequest) WithOperatorIDs(ids ...OperatorID) GetChargeDetailRecordsRequest {
	r.OperatorIDs = append([]OperatorID(nil), ids...)
	return r
}

// WithCDRForwarded 返回按转发状态过滤的副本
func (r GetChargeDetailRecordsRequest) WithCDRForwarded(forwarded bool) GetChargeDetailRecordsRequest {
	r.CDRForwarded = &forwarded
	return r
}

// WithPage 返回带分页参数的副本
func (r GetChargeDetailRecordsRequest) WithPage(page, size int) GetChargeDetailRecordsRequest {
	r.Page = &page
	r.Size = &size
	return r
}

// WithSortOrder 返回带排序方向的副本
func (r GetChargeDetailRecordsRequest) WithSortOrder(order SortOrder) GetChargeDetailRecordsRequest {
	r.SortOrder = &order
	return r
}

// Operation 操作名
func (r GetChargeDetailRecordsRequest) Operation() Operation { return OperationGetChargeDetailRecords }

// Meta 关联信息
func (r GetChargeDetailRecordsRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r GetChargeDetailRecordsRequest) Validate() error { return validateRequest(r.Operation(), r) }

// ToXML 生成 eRoamingGetChargeDetailRecords，分页参数作为末尾的可选元素
func (r GetChargeDetailRecordsRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootGetChargeDetailRecords, NSCommonTypes)
	serialization.AddText(root, az("ProviderID"), r.ProviderID.String())
	serialization.AddText(root, az("From"), serialization.FormatTime(r.From))
	serialization.AddText(root, az("To"), serialization.FormatTime(r.To))
	serialization.AddValues(root, az("SessionID"), r.SessionIDs, SessionID.String)
	serialization.AddValues(root, az("OperatorID"), r.OperatorIDs, OperatorID.String)
	serialization.AddOptional(root, az("CDRForwarded"), r.CDRForwarded, serialization.FormatBool)
	serialization.AddOptional(root, az("Page"), r.Page, serialization.FormatInt)
	serialization.AddOptional(root, az("Size"), r.Size, serialization.FormatInt)
	if r.SortOrder != nil {
		serialization.AddText(root, az("SortOrder"), string(*r.SortOrder))
	}
	return root
}

// ParseGetChargeDetailRecordsRequest 解析入站请求
func ParseGetChargeDetailRecordsRequest(root *etree.Element, opts ...RequestOption) (GetChargeDetailRecordsRequest, error) {
	req := GetChargeDetailRecordsRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootGetChargeDetailRecords); err != nil {
		return req, err
	}
	var err error
	if req.ProviderID, err = serialization.MapValueOrFail(root, az("ProviderID"), ParseProviderID); err != nil {
		return req, err
	}
	if req.From, err = serialization.MapValueOrFail(root, az("From"), serialization.ParseTime); err != nil {
		return req, err
	}
	if req.To, err = serialization.MapValueOrFail(root, az("To"), serialization.ParseTime); err != nil {
		return req, err
	}
	if req.SessionIDs, err = serialization.MapValues(root, az("SessionID"), ParseSessionID); err != nil {
		return req, err
	}
	if req.OperatorIDs, err = serialization.MapValues(root, az("OperatorID"), ParseOperatorID); err != nil {
		return req, err
	}
	if req.CDRForwarded, err = serialization.MapOptional(root, az("CDRForwarded"), serialization.ParseLiteralBool, serialization.Strict); err != nil {
		return req, err
	}
	if req.Page, err = serialization.MapOptional(root, az("Page"), serialization.ParseInt, serialization.Strict); err != nil {
		return req, err
	}
	if req.Size, err = serialization.MapOptional(root, az("Size"), serialization.ParseInt, serialization.Strict); err != nil {
		return req, err
	}
	if req.SortOrder, err = serialization.MapOptional(root, az("SortOrder"), ParseSortOrder, serialization.Strict); err != nil {
		return req, err
	}
	return req, nil
}

// GetChargeDetailRecordsResponse CDR查询结果
type GetChargeDetailRecordsResponse struct {
	Meta                ResponseMeta
	Request             *GetChargeDetailRecordsRequest
	ChargeDetailRecords []ChargeDetailRecord
	StatusCode          StatusCode
}

// ToXML 生成 eRoamingChargeDetailRecords
func (r GetChargeDetailRecordsResponse) ToXML() *etree.Element {
	root := serialization.NewRoot(RootChargeDetailRecords, NSCommonTypes)
	for _, cdr := range r.ChargeDetailRecords {
		cdr.AppendTo(root)
	}
	r.StatusCode.AppendTo(root)
	return root
}

// ParseGetChargeDetailRecordsResponse 解析 eRoamingChargeDetailRecords。
// 任一记录无法解析时整体失败，错误中带有该记录的下标和 SessionID
func ParseGetChargeDetailRecordsResponse(root *etree.Element, req *GetChargeDetailRecordsRequest, opts ...ParseOption) (*GetChargeDetailRecordsResponse, error) {
	cfg := newParseConfig(metaOf(req), opts)
	if err := serialization.ExpectRoot(root, RootChargeDetailRecords); err != nil {
		return nil, err
	}
	records, err := parseChargeDetailRecords(root, cfg.mode)
	if err != nil {
		return nil, err
	}
	status, err := statusCodeFor(root, OperationGetChargeDetailRecords)
	if err != nil {
		return nil, err
	}
	return &GetChargeDetailRecordsResponse{Meta: cfg.meta, Request: req, ChargeDetailRecords: records, StatusCode: status}, nil
}

// SendChargeDetailRecordRequest CPO推送单条CDR（EMP侧入站）
type SendChargeDetailRecordRequest struct {
	meta RequestMeta

	ChargeDetailRecord ChargeDetailRecord
}

// NewSendChargeDetailRecordRequest 创建请求
func NewSendChargeDetailRecordRequest(cdr ChargeDetailRecord, opts ...RequestOption) (SendChargeDetailRecordRequest, error) {
	req := SendChargeDetailRecordRequest{meta: newRequestMeta(opts), ChargeDetailRecord: cdr}
	if err := req.Validate(); err != nil {
		return SendChargeDetailRecordRequest{}, err
	}
	return req, nil
}

// Operation 操作名
func (r SendChargeDetailRecordRequest) Operation() Operation { return OperationSendChargeDetailRecord }

// Meta 关联信息
func (r SendChargeDetailRecordRequest) Meta() RequestMeta { return r.meta }

// Validate 校验CDR关键字段
func (r SendChargeDetailRecordRequest) Validate() error {
	cdr := r.ChargeDetailRecord
	switch {
	case !cdr.SessionID.IsValid():
		return ValidationError{Operation: r.Operation(), Cause: FormatError{Type: "session id", Value: string(cdr.SessionID)}}
	case !cdr.EVSEID.IsValid():
		return ValidationError{Operation: r.Operation(), Cause: FormatError{Type: "EVSE id", Value: string(cdr.EVSEID)}}
	case cdr.Identification == nil:
		return ValidationError{Operation: r.Operation(), Cause: errIdentificationRequired}
	}
	return nil
}

// ToXML 生成 eRoamingChargeDetailRecord
func (r SendChargeDetailRecordRequest) ToXML() *etree.Element {
	return r.ChargeDetailRecord.ToXML()
}

// ParseSendChargeDetailRecordRequest 解析入站CDR，mode 控制可选字段的容错
func ParseSendChargeDetailRecordRequest(root *etree.Element, mode serialization.Mode, opts ...RequestOption) (SendChargeDetailRecordRequest, error) {
	req := SendChargeDetailRecordRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootChargeDetailRecord); err != nil {
		return req, err
	}
	cdr, err := ParseChargeDetailRecord(root, mode)
	if err != nil {
		return req, err
	}
	req.ChargeDetailRecord = cdr
	return req, nil
}
