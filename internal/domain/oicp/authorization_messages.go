package oicp

import (
	"errors"
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var (
	rs = NSReservation.Name

	errIdentificationRequired = errors.New("identification is required")
)

// sessionIDs 命令请求共用的会话关联标识
type sessionIDs struct {
	SessionID           *SessionID        `validate:"omitempty,oicp_id"`
	CPOPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
	EMPPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
}

func (s sessionIDs) appendTo(el *etree.Element, ns serialization.Namespace) {
	serialization.AddOptional(el, ns.Name("SessionID"), s.SessionID, SessionID.String)
	serialization.AddOptional(el, ns.Name("CPOPartnerSessionID"), s.CPOPartnerSessionID, PartnerSessionID.String)
	serialization.AddOptional(el, ns.Name("EMPPartnerSessionID"), s.EMPPartnerSessionID, PartnerSessionID.String)
}

func parseSessionIDs(el *etree.Element, ns serialization.Namespace) (sessionIDs, error) {
	var (
		s   sessionIDs
		err error
	)
	if s.SessionID, err = serialization.MapOptional(el, ns.Name("SessionID"), ParseSessionID, serialization.Strict); err != nil {
		return sessionIDs{}, err
	}
	if s.CPOPartnerSessionID, err = serialization.MapOptional(el, ns.Name("CPOPartnerSessionID"), ParsePartnerSessionID, serialization.Strict); err != nil {
		return sessionIDs{}, err
	}
	if s.EMPPartnerSessionID, err = serialization.MapOptional(el, ns.Name("EMPPartnerSessionID"), ParsePartnerSessionID, serialization.Strict); err != nil {
		return sessionIDs{}, err
	}
	return s, nil
}

// AuthorizeRemoteStartRequest EMP远程启动充电
type AuthorizeRemoteStartRequest struct {
	meta RequestMeta
	sessionIDs

	ProviderID       ProviderID        `validate:"required,oicp_id"`
	EVSEID           EVSEID            `validate:"required,oicp_id"`
	Identification   Identification    `validate:"required"`
	PartnerProductID *PartnerProductID `validate:"omitempty,oicp_id"`
}

// NewAuthorizeRemoteStartRequest 创建请求
func NewAuthorizeRemoteStartRequest(providerID ProviderID, evseID EVSEID, identification Identification, opts ...RequestOption) (AuthorizeRemoteStartRequest, error) {
	req := AuthorizeRemoteStartRequest{
		meta:           newRequestMeta(opts),
		ProviderID:     providerID,
		EVSEID:         evseID,
		Identification: identification,
	}
	if err := req.Validate(); err != nil {
		return AuthorizeRemoteStartRequest{}, err
	}
	return req, nil
}

// WithSessionID 返回带会话标识的副本
func (r AuthorizeRemoteStartRequest) WithSessionID(id SessionID) AuthorizeRemoteStartRequest {
	r.SessionID = &id
	return r
}

// WithCPOPartnerSessionID 返回带CPO会话标识的副本
func (r AuthorizeRemoteStartRequest) WithCPOPartnerSessionID(id PartnerSessionID) AuthorizeRemoteStartRequest {
	r.CPOPartnerSessionID = &id
	return r
}

// WithEMPPartnerSessionID 返回带EMP会话标识的副本
func (r AuthorizeRemoteStartRequest) WithEMPPartnerSessionID(id PartnerSessionID) AuthorizeRemoteStartRequest {
	r.EMPPartnerSessionID = &id
	return r
}

// WithPartnerProductID 返回带产品标识的副本
func (r AuthorizeRemoteStartRequest) WithPartnerProductID(id PartnerProductID) AuthorizeRemoteStartRequest {
	r.PartnerProductID = &id
	return r
}

// Operation 操作名
func (r AuthorizeRemoteStartRequest) Operation() Operation { return OperationAuthorizeRemoteStart }

// Meta 关联信息
func (r AuthorizeRemoteStartRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r AuthorizeRemoteStartRequest) Validate() error {
	if r.Identification == nil {
		return ValidationError{Operation: r.Operation(), Cause: errIdentificationRequired}
	}
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingAuthorizeRemoteStart
func (r AuthorizeRemoteStartRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootAuthorizeRemoteStart, NSCommonTypes)
	r.sessionIDs.appendTo(root, NSAuthorization)
	serialization.AddText(root, az("ProviderID"), r.ProviderID.String())
	serialization.AddText(root, az("EvseID"), r.EVSEID.String())
	AppendIdentification(root, az("Identification"), r.Identification)
	serialization.AddOptional(root, az("PartnerProductID"), r.PartnerProductID, PartnerProductID.String)
	return root
}

// ParseAuthorizeRemoteStartRequest 解析入站请求。失败时返回已解析的部分，便于生成 DataError 应答
func ParseAuthorizeRemoteStartRequest(root *etree.Element, opts ...RequestOption) (AuthorizeRemoteStartRequest, error) {
	req := AuthorizeRemoteStartRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootAuthorizeRemoteStart); err != nil {
		return req, err
	}
	var err error
	if req.sessionIDs, err = parseSessionIDs(root, NSAuthorization); err != nil {
		return req, err
	}
	if req.ProviderID, err = serialization.MapValueOrFail(root, az("ProviderID"), ParseProviderID); err != nil {
		return req, err
	}
	if req.EVSEID, err = serialization.MapValueOrFail(root, az("EvseID"), ParseEVSEID); err != nil {
		return req, err
	}
	if req.Identification, err = serialization.MapElementOrFail(root, az("Identification"), ParseIdentification); err != nil {
		return req, err
	}
	if req.PartnerProductID, err = serialization.MapOptional(root, az("PartnerProductID"), ParsePartnerProductID, serialization.Strict); err != nil {
		return req, err
	}
	return req, nil
}

// AuthorizeRemoteStopRequest EMP远程停止充电
type AuthorizeRemoteStopRequest struct {
	meta RequestMeta

	SessionID           SessionID         `validate:"required,oicp_id"`
	CPOPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
	EMPPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
	ProviderID          ProviderID        `validate:"required,oicp_id"`
	EVSEID              EVSEID            `validate:"required,oicp_id"`
}

// NewAuthorizeRemoteStopRequest 创建请求
func NewAuthorizeRemoteStopRequest(sessionID SessionID, providerID ProviderID, evseID EVSEID, opts ...RequestOption) (AuthorizeRemoteStopRequest, error) {
	req := AuthorizeRemoteStopRequest{
		meta:       newRequestMeta(opts),
		SessionID:  sessionID,
		ProviderID: providerID,
		EVSEID:     evseID,
	}
	if err := req.Validate(); err != nil {
		return AuthorizeRemoteStopRequest{}, err
	}
	return req, nil
}

// WithCPOPartnerSessionID 返回带CPO会话标识的副本
func (r AuthorizeRemoteStopRequest) WithCPOPartnerSessionID(id PartnerSessionID) AuthorizeRemoteStopRequest {
	r.CPOPartnerSessionID = &id
	return r
}

// WithEMPPartnerSessionID 返回带EMP会话标识的副本
func (r AuthorizeRemoteStopRequest) WithEMPPartnerSessionID(id PartnerSessionID) AuthorizeRemoteStopRequest {
	r.EMPPartnerSessionID = &id
	return r
}

// Operation 操作名
func (r AuthorizeRemoteStopRequest) Operation() Operation { return OperationAuthorizeRemoteStop }

// Meta 关联信息
func (r AuthorizeRemoteStopRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r AuthorizeRemoteStopRequest) Validate() error { return validateRequest(r.Operation(), r) }

// ToXML 生成 eRoamingAuthorizeRemoteStop
func (r AuthorizeRemoteStopRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootAuthorizeRemoteStop, NSCommonTypes)
	appendStop(root, NSAuthorization, r.SessionID, r.CPOPartnerSessionID, r.EMPPartnerSessionID, r.ProviderID, r.EVSEID)
	return root
}

// ParseAuthorizeRemoteStopRequest 解析入站请求，失败时返回已解析的部分
func ParseAuthorizeRemoteStopRequest(root *etree.Element, opts ...RequestOption) (AuthorizeRemoteStopRequest, error) {
	req := AuthorizeRemoteStopRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootAuthorizeRemoteStop); err != nil {
		return req, err
	}
	err := parseStop(root, NSAuthorization, &req.SessionID, &req.CPOPartnerSessionID, &req.EMPPartnerSessionID, &req.ProviderID, &req.EVSEID)
	return req, err
}

// AuthorizeRemoteReservationStartRequest EMP远程预约
type AuthorizeRemoteReservationStartRequest struct {
	meta RequestMeta
	sessionIDs

	ProviderID       ProviderID        `validate:"required,oicp_id"`
	EVSEID           EVSEID            `validate:"required,oicp_id"`
	Identification   Identification    `validate:"required"`
	PartnerProductID *PartnerProductID `validate:"omitempty,oicp_id"`
	// Duration 预约时长，线上以分钟表示
	Duration *time.Duration `validate:"omitempty,min=1m"`
}

// NewAuthorizeRemoteReservationStartRequest 创建请求
func NewAuthorizeRemoteReservationStartRequest(providerID ProviderID, evseID EVSEID, identification Identification, opts ...RequestOption) (AuthorizeRemoteReservationStartRequest, error) {
	req := AuthorizeRemoteReservationStartRequest{
		meta:           newRequestMeta(opts),
		ProviderID:     providerID,
		EVSEID:         evseID,
		Identification: identification,
	}
	if err := req.Validate(); err != nil {
		return AuthorizeRemoteReservationStartRequest{}, err
	}
	return req, nil
}

// WithSessionID 返回带会话标识的副本
func (r AuthorizeRemoteReservationStartRequest) WithSessionID(id SessionID) AuthorizeRemoteReservationStartRequest {
	r.SessionID = &id
	return r
}

// WithCPOPartnerSessionID 返回带CPO会话标识的副本
func (r AuthorizeRemoteReservationStartRequest) WithCPOPartnerSessionID(id PartnerSessionID) AuthorizeRemoteReservationStartRequest {
	r.CPOPartnerSessionID = &id
	return r
}

// WithEMPPartnerSessionID 返回带EMP会话标识的副本
func (r AuthorizeRemoteReservationStartRequest) WithEMPPartnerSessionID(id PartnerSessionID) AuthorizeRemoteReservationStartRequest {
	r.EMPPartnerSessionID = &id
	return r
}

// WithPartnerProductID 返回带产品标识的副本
func (r AuthorizeRemoteReservationStartRequest) WithPartnerProductID(id PartnerProductID) AuthorizeRemoteReservationStartRequest {
	r.PartnerProductID = &id
	return r
}

// WithDuration 返回带预约时长的副本（按分钟截断）
func (r AuthorizeRemoteReservationStartRequest) WithDuration(d time.Duration) AuthorizeRemoteReservationStartRequest {
	d = d.Truncate(time.Minute)
	r.Duration = &d
	return r
}

// Operation 操作名
func (r AuthorizeRemoteReservationStartRequest) Operation() Operation {
	return OperationAuthorizeRemoteReservationStart
}

// Meta 关联信息
func (r AuthorizeRemoteReservationStartRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r AuthorizeRemoteReservationStartRequest) Validate() error {
	if r.Identification == nil {
		return ValidationError{Operation: r.Operation(), Cause: errIdentificationRequired}
	}
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingAuthorizeRemoteReservationStart
func (r AuthorizeRemoteReservationStartRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootAuthorizeRemoteReservationStart, NSCommonTypes)
	r.sessionIDs.appendTo(root, NSReservation)
	serialization.AddText(root, rs("ProviderID"), r.ProviderID.String())
	serialization.AddText(root, rs("EvseID"), r.EVSEID.String())
	AppendIdentification(root, rs("Identification"), r.Identification)
	serialization.AddOptional(root, rs("PartnerProductID"), r.PartnerProductID, PartnerProductID.String)
	if r.Duration != nil {
		serialization.AddText(root, rs("Duration"), serialization.FormatInt(int(r.Duration.Minutes())))
	}
	return root
}

// ParseAuthorizeRemoteReservationStartRequest 解析入站请求，失败时返回已解析的部分
func ParseAuthorizeRemoteReservationStartRequest(root *etree.Element, opts ...RequestOption) (AuthorizeRemoteReservationStartRequest, error) {
	req := AuthorizeRemoteReservationStartRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootAuthorizeRemoteReservationStart); err != nil {
		return req, err
	}
	var err error
	if req.sessionIDs, err = parseSessionIDs(root, NSReservation); err != nil {
		return req, err
	}
	if req.ProviderID, err = serialization.MapValueOrFail(root, rs("ProviderID"), ParseProviderID); err != nil {
		return req, err
	}
	if req.EVSEID, err = serialization.MapValueOrFail(root, rs("EvseID"), ParseEVSEID); err != nil {
		return req, err
	}
	if req.Identification, err = serialization.MapElementOrFail(root, rs("Identification"), ParseIdentification); err != nil {
		return req, err
	}
	if req.PartnerProductID, err = serialization.MapOptional(root, rs("PartnerProductID"), ParsePartnerProductID, serialization.Strict); err != nil {
		return req, err
	}
	minutes, err := serialization.MapOptional(root, rs("Duration"), serialization.ParseInt, serialization.Strict)
	if err != nil {
		return req, err
	}
	if minutes != nil {
		d := time.Duration(*minutes) * time.Minute
		req.Duration = &d
	}
	return req, nil
}

// AuthorizeRemoteReservationStopRequest EMP取消预约
type AuthorizeRemoteReservationStopRequest struct {
	meta RequestMeta

	SessionID           SessionID         `validate:"required,oicp_id"`
	CPOPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
	EMPPartnerSessionID *PartnerSessionID `validate:"omitempty,oicp_id"`
	ProviderID          ProviderID        `validate:"required,oicp_id"`
	EVSEID              EVSEID            `validate:"required,oicp_id"`
}

// NewAuthorizeRemoteReservationStopRequest 创建请求
func NewAuthorizeRemoteReservationStopRequest(sessionID SessionID, providerID ProviderID, evseID EVSEID, opts ...RequestOption) (AuthorizeRemoteReservationStopRequest, error) {
	req := AuthorizeRemoteReservationStopRequest{
		meta:       newRequestMeta(opts),
		SessionID:  sessionID,
		ProviderID: providerID,
		EVSEID:     evseID,
	}
	if err := req.Validate(); err != nil {
		return AuthorizeRemoteReservationStopRequest{}, err
	}
	return req, nil
}

// WithCPOPartnerSessionID 返回带CPO会话标识的副本
func (r AuthorizeRemoteReservationStopRequest) WithCPOPartnerSessionID(id PartnerSessionID) AuthorizeRemoteReservationStopRequest {
	r.CPOPartnerSessionID = &id
	return r
}

// WithEMPPartnerSessionID 返回带EMP会话标识的副本
func (r AuthorizeRemoteReservationStopRequest) WithEMPPartnerSessionID(id PartnerSessionID) AuthorizeRemoteReservationStopRequest {
	r.EMPPartnerSessionID = &id
	return r
}

// Operation 操作名
func (r AuthorizeRemoteReservationStopRequest) Operation() Operation {
	return OperationAuthorizeRemoteReservationStop
}

// Meta 关联信息
func (r AuthorizeRemoteReservationStopRequest) Meta() RequestMeta { return r.meta }

// Validate 校验请求参数
func (r AuthorizeRemoteReservationStopRequest) Validate() error {
	return validateRequest(r.Operation(), r)
}

// ToXML 生成 eRoamingAuthorizeRemoteReservationStop
func (r AuthorizeRemoteReservationStopRequest) ToXML() *etree.Element {
	root := serialization.NewRoot(RootAuthorizeRemoteReservationStop, NSCommonTypes)
	appendStop(root, NSReservation, r.SessionID, r.CPOPartnerSessionID, r.EMPPartnerSessionID, r.ProviderID, r.EVSEID)
	return root
}

// ParseAuthorizeRemoteReservationStopRequest 解析入站请求，失败时返回已解析的部分
func ParseAuthorizeRemoteReservationStopRequest(root *etree.Element, opts ...RequestOption) (AuthorizeRemoteReservationStopRequest, error) {
	req := AuthorizeRemoteReservationStopRequest{meta: newRequestMeta(opts)}
	if err := serialization.ExpectRoot(root, RootAuthorizeRemoteReservationStop); err != nil {
		return req, err
	}
	err := parseStop(root, NSReservation, &req.SessionID, &req.CPOPartnerSessionID, &req.EMPPartnerSessionID, &req.ProviderID, &req.EVSEID)
	return req, err
}

func appendStop(root *etree.Element, ns serialization.Namespace, sessionID SessionID, cpo, emp *PartnerSessionID, provider ProviderID, evse EVSEID) {
	serialization.AddText(root, ns.Name("SessionID"), sessionID.String())
	serialization.AddOptional(root, ns.Name("CPOPartnerSessionID"), cpo, PartnerSessionID.String)
	serialization.AddOptional(root, ns.Name("EMPPartnerSessionID"), emp, PartnerSessionID.String)
	serialization.AddText(root, ns.Name("ProviderID"), provider.String())
	serialization.AddText(root, ns.Name("EvseID"), evse.String())
}

func parseStop(root *etree.Element, ns serialization.Namespace, sessionID *SessionID, cpo, emp **PartnerSessionID, provider *ProviderID, evse *EVSEID) error {
	var err error
	if *sessionID, err = serialization.MapValueOrFail(root, ns.Name("SessionID"), ParseSessionID); err != nil {
		return err
	}
	if *cpo, err = serialization.MapOptional(root, ns.Name("CPOPartnerSessionID"), ParsePartnerSessionID, serialization.Strict); err != nil {
		return err
	}
	if *emp, err = serialization.MapOptional(root, ns.Name("EMPPartnerSessionID"), ParsePartnerSessionID, serialization.Strict); err != nil {
		return err
	}
	if *provider, err = serialization.MapValueOrFail(root, ns.Name("ProviderID"), ParseProviderID); err != nil {
		return err
	}
	if *evse, err = serialization.MapValueOrFail(root, ns.Name("EvseID"), ParseEVSEID); err != nil {
		return err
	}
	return nil
}
