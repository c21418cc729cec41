package oicp

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// StatusCodes 协议结果码（线上三位数字）
type StatusCodes int16

const (
	Success                        StatusCodes = 0
	HubjectSystemError             StatusCodes = 1
	HubjectDatabaseError           StatusCodes = 2
	DataTransactionError           StatusCodes = 9
	UnauthorizedAccess             StatusCodes = 17
	InconsistentEVSEID             StatusCodes = 18
	InconsistentEVCOID             StatusCodes = 19
	SystemError                    StatusCodes = 21
	DataError                      StatusCodes = 22
	QRCodeAuthenticationFailed     StatusCodes = 101
	RFIDAuthenticationFailed       StatusCodes = 102
	RFIDCardNotReadable            StatusCodes = 103
	PINAuthenticationFailed        StatusCodes = 105
	NoPositiveAuthenticationResult StatusCodes = 106
	QRCodeAppAuthenticationTimeout StatusCodes = 110
	PnCAuthenticationFailed        StatusCodes = 120
	NoValidCertificate             StatusCodes = 121
	InvalidCertificate             StatusCodes = 122
	NoEVConnectedToEVSE            StatusCodes = 200
	NoValidContract                StatusCodes = 210
	PartnerNotFound                StatusCodes = 300
	PartnerDidNotRespond           StatusCodes = 310
	ServiceNotAvailable            StatusCodes = 320
	SessionIsInvalid               StatusCodes = 400
	CommunicationToEVSEFailed      StatusCodes = 501
	EVSEAlreadyCharging            StatusCodes = 510
	EVSEAlreadyReserved            StatusCodes = 601
	EVSEAlreadyInUse               StatusCodes = 602
	UnknownEVSEID                  StatusCodes = 603
	EVSENotHubjectCompatible       StatusCodes = 604
	EVSEOutOfService               StatusCodes = 700
)

var statusCodeNames = map[StatusCodes]string{
	Success:                        "Success",
	HubjectSystemError:             "Hubject system error",
	HubjectDatabaseError:           "Hubject database error",
	DataTransactionError:           "Data transaction error",
	UnauthorizedAccess:             "Unauthorized access",
	InconsistentEVSEID:             "Inconsistent EVSE id",
	InconsistentEVCOID:             "Inconsistent EVCO id",
	SystemError:                    "System error",
	DataError:                      "Data error",
	QRCodeAuthenticationFailed:     "QR code authentication failed",
	RFIDAuthenticationFailed:       "RFID authentication failed",
	RFIDCardNotReadable:            "RFID card not readable",
	PINAuthenticationFailed:        "PIN authentication failed",
	NoPositiveAuthenticationResult: "No positive authentication response",
	QRCodeAppAuthenticationTimeout: "QR code app authentication timeout",
	PnCAuthenticationFailed:        "Plug&Charge authentication failed",
	NoValidCertificate:             "No valid certificate",
	InvalidCertificate:             "Invalid certificate",
	NoEVConnectedToEVSE:            "No EV connected to EVSE",
	NoValidContract:                "No valid contract",
	PartnerNotFound:                "Partner not found",
	PartnerDidNotRespond:           "Partner did not respond",
	ServiceNotAvailable:            "Service not available",
	SessionIsInvalid:               "Session is invalid",
	CommunicationToEVSEFailed:      "Communication to EVSE failed",
	EVSEAlreadyCharging:            "EVSE already charging",
	EVSEAlreadyReserved:            "EVSE already reserved",
	EVSEAlreadyInUse:               "EVSE already in use",
	UnknownEVSEID:                  "Unknown EVSE id",
	EVSENotHubjectCompatible:       "EVSE not compatible",
	EVSEOutOfService:               "EVSE out of service",
}

// String 线上格式（三位，不足补零）
func (c StatusCodes) String() string {
	return fmt.Sprintf("%03d", int16(c))
}

// Name 人类可读名称，未知码返回空串
func (c StatusCodes) Name() string {
	return statusCodeNames[c]
}

// ParseStatusCodes 与区域设置无关的整数解析
func ParseStatusCodes(s string) (StatusCodes, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, FormatError{Type: "status code", Value: s, Reason: "not an integer"}
	}
	return StatusCodes(n), nil
}

// StatusCode 结果码 + 描述 + 附加信息。描述字段从不为nil，缺省为空串
type StatusCode struct {
	Code           StatusCodes
	Description    string
	AdditionalInfo string
}

// NewStatusCode 创建结果码，可选依次给出描述和附加信息
func NewStatusCode(code StatusCodes, texts ...string) StatusCode {
	sc := StatusCode{Code: code}
	if len(texts) > 0 {
		sc.Description = texts[0]
	}
	if len(texts) > 1 {
		sc.AdditionalInfo = texts[1]
	}
	return sc
}

// SuccessStatus 成功结果码
func SuccessStatus() StatusCode {
	return StatusCode{Code: Success}
}

// IsSuccess 是否成功
func (s StatusCode) IsSuccess() bool {
	return s.Code == Success
}

// String 诊断用文本
func (s StatusCode) String() string {
	if s.Description == "" {
		return s.Code.String()
	}
	return s.Code.String() + " " + s.Description
}

// AppendTo 在父元素下写入 CommonTypes:StatusCode。描述字段始终输出
func (s StatusCode) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, ct("StatusCode"))
	s.fill(el)
	return el
}

// ToXML 生成独立的 CommonTypes:StatusCode 元素
func (s StatusCode) ToXML() *etree.Element {
	el := serialization.NewRoot(ct("StatusCode"))
	s.fill(el)
	return el
}

func (s StatusCode) fill(el *etree.Element) {
	serialization.AddText(el, ct("Code"), s.Code.String())
	serialization.AddText(el, ct("Description"), s.Description)
	serialization.AddText(el, ct("AdditionalInfo"), s.AdditionalInfo)
}

// ParseStatusCode 解析 StatusCode 元素。Code 缺失或非数字时失败
func ParseStatusCode(el *etree.Element) (StatusCode, error) {
	code, err := serialization.MapValueOrFail(el, ct("Code"), ParseStatusCodes)
	if err != nil {
		return StatusCode{}, err
	}
	return StatusCode{
		Code:           code,
		Description:    serialization.ValueOrDefault(el, ct("Description"), ""),
		AdditionalInfo: serialization.ValueOrDefault(el, ct("AdditionalInfo"), ""),
	}, nil
}

// AbsentStatusPolicy 入站响应缺少 StatusCode 时各操作的隐含值。ok=false 表示缺失即解析失败
func AbsentStatusPolicy(op Operation) (StatusCode, bool) {
	switch op {
	case OperationPullEVSEData,
		OperationPullEVSEStatus,
		OperationPullEVSEStatusByID,
		OperationPullEVSEStatusByOperatorID,
		OperationPullPricingProductData,
		OperationPullEVSEPricing,
		OperationGetChargeDetailRecords:
		return SuccessStatus(), true
	}
	return StatusCode{}, false
}

// statusCodeFor 读取父元素下的 StatusCode，缺失时按操作策略处理
func statusCodeFor(parent *etree.Element, op Operation) (StatusCode, error) {
	el := serialization.Child(parent, ct("StatusCode"))
	if el == nil {
		if sc, ok := AbsentStatusPolicy(op); ok {
			return sc, nil
		}
		_, err := serialization.ElementOrFail(parent, ct("StatusCode"))
		return StatusCode{}, err
	}
	return ParseStatusCode(el)
}
