package oicp

import (
	"errors"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var ad = NSAuthenticationData.Name

var errNilIdentification = errors.New("authentication data contains a nil identification")

// PushAuthenticationDataRequest EMP向平台推送离线认证数据
type PushAuthenticationDataRequest struct {
	meta RequestMeta

	Action          ActionType `validate:"required,oicp_id"`
	ProviderID      ProviderID `validate:"required,oicp_id"`
	Identifications []Identification
}

// NewPushAuthenticationDataRequest 创建请求。fullLoad 时允许空列表（清空已有数据）
func NewPushAuthenticationDataRequest(providerID ProviderID, action ActionType, identifications []Identification, opts ...RequestOption) (PushAuthenticationDataRequest, error) {
	req := PushAuthenticationDataRequest{
		meta:            newRequestMeta(opts),
		Action:          action,
		ProviderID:      providerID,
		Identifications: append([]Identification(nil), identifications...),
	}
	if err := req.Validate(); err != nil {
		return PushAuthenticationDataRequest{}, err
	}
	return req, nil
}

// Operation 操作名
func (r PushAuthenticationDataRequest) Operation() Operation { return OperationPushAuthenticationData }

// Meta 关联信息
func (r PushAuthenticationDataRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r PushAuthenticationDataRequest) Validate() error {
	for _, id := range r.Identifications {
		if id == nil {
			return ValidationError{Operation: r.Operation(), Cause: errNilIdentification}
		}
	}
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingPushAuthenticationData
func (r PushAuthenticationDataRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootPushAuthenticationData, NSCommonTypes)
	serialization.AddText(root, ad("ActionType"), string(r.Action))
	data := serialization.AddElement(root, ad("ProviderAuthenticationData"))
	serialization.AddText(data, ad("ProviderID"), r.ProviderID.String())
	for _, id := range r.Identifications {
		record := serialization.AddElement(data, ad("AuthenticationDataRecord"))
		AppendIdentification(record, ad("Identification"), id)
	}
	return root
}

// ParsePushAuthenticationDataRequest 解析入站请求
func ParsePushAuthenticationDataRequest(root *etree.Element, opts ...RequestOption) (PushAuthenticationDataRequest, error) {
	req := PushAuthenticationDataRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootPushAuthenticationData); err != nil {
		return req, err
	}
	var err error
	if req.Action, err = serialization.MapValueOrFail(root, ad("ActionType"), ParseActionType); err != nil {
		return req, err
	}
	data, err := serialization.ElementOrFail(root, ad("ProviderAuthenticationData"))
	if err != nil {
		return req, err
	}
	if req.ProviderID, err = serialization.MapValueOrFail(data, ad("ProviderID"), ParseProviderID); err != nil {
		return req, err
	}
	req.Identifications, err = serialization.MapElements(data, ad("AuthenticationDataRecord"), func(el *etree.Element) (Identification, error) {
		return serialization.MapElementOrFail(el, ad("Identification"), ParseIdentification)
	})
	return req, err
}
