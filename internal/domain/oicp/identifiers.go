package oicp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// IDFormat 标识符格式：ISO 15118 或 DIN SPEC 91286（旧格式）
type IDFormat string

const (
	IDFormatISO IDFormat = "ISO"
	IDFormatDIN IDFormat = "DIN"
)

var (
	evseIDISO = regexp.MustCompile(`^([A-Za-z]{2})\*?([A-Za-z0-9]{3})\*?[Ee]([A-Za-z0-9][A-Za-z0-9*]{0,30})$`)
	evseIDDIN = regexp.MustCompile(`^\+?([0-9]{1,3})\*([0-9]{3,6})\*([0-9*]{1,32})$`)

	operatorIDISO = regexp.MustCompile(`^([A-Za-z]{2})\*?([A-Za-z0-9]{3})$`)
	operatorIDDIN = regexp.MustCompile(`^\+?([0-9]{1,3})\*([0-9]{3,6})$`)

	providerIDISO = regexp.MustCompile(`^([A-Za-z]{2})-?([A-Za-z0-9]{3})$`)
	providerIDDIN = regexp.MustCompile(`^([A-Za-z]{2})\*([A-Za-z0-9]{3})$`)

	evcoIDISO = regexp.MustCompile(`^([A-Za-z]{2})-?([A-Za-z0-9]{3})-?[Cc]([A-Za-z0-9]{8})(?:-?([A-Za-z0-9]))?$`)
	evcoIDDIN = regexp.MustCompile(`^([A-Za-z]{2})\*([A-Za-z0-9]{3})\*([A-Za-z0-9]{6})\*([0-9Xx])$`)

	uidPattern      = regexp.MustCompile(`^(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{14}|[0-9A-Fa-f]{20})$`)
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Za-z]{3}$`)
	phonePattern    = regexp.MustCompile(`^\+[0-9]{5,15}$`)
)

// EVSEID 充电点标识，如 "DE*GEF*E1234567*A*1"（ISO）或 "+49*822*4201*1"（DIN）
type EVSEID string

// ParseEVSEID 解析并规范化EVSE标识
func ParseEVSEID(s string) (EVSEID, error) {
	s = strings.TrimSpace(s)
	if m := evseIDISO.FindStringSubmatch(s); m != nil && !strings.HasSuffix(m[3], "*") {
		return EVSEID(strings.ToUpper(m[1] + "*" + m[2] + "*E" + m[3])), nil
	}
	if m := evseIDDIN.FindStringSubmatch(s); m != nil && !strings.HasSuffix(m[3], "*") {
		return EVSEID("+" + m[1] + "*" + m[2] + "*" + m[3]), nil
	}
	return "", FormatError{Type: "EVSE id", Value: s, Reason: "expected ISO (CC*OPR*E...) or DIN (+CC*OPR*...) format"}
}

// TryParseEVSEID 解析失败时返回false
func TryParseEVSEID(s string) (EVSEID, bool) {
	id, err := ParseEVSEID(s)
	return id, err == nil
}

// MustParseEVSEID 解析失败时panic，仅用于常量和测试
func MustParseEVSEID(s string) EVSEID {
	id, err := ParseEVSEID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id EVSEID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id EVSEID) IsValid() bool {
	parsed, err := ParseEVSEID(string(id))
	return err == nil && parsed == id
}

// Format 标识符格式
func (id EVSEID) Format() IDFormat {
	if strings.HasPrefix(string(id), "+") {
		return IDFormatDIN
	}
	return IDFormatISO
}

// OperatorID 返回EVSE标识中的运营商部分
func (id EVSEID) OperatorID() OperatorID {
	parts := strings.SplitN(string(id), "*", 3)
	if len(parts) < 2 {
		return ""
	}
	return OperatorID(parts[0] + "*" + parts[1])
}

// OperatorID 充电运营商标识，如 "DE*GEF" 或 "+49*822"
type OperatorID string

// ParseOperatorID 解析并规范化运营商标识
func ParseOperatorID(s string) (OperatorID, error) {
	s = strings.TrimSpace(s)
	if m := operatorIDISO.FindStringSubmatch(s); m != nil {
		return OperatorID(strings.ToUpper(m[1] + "*" + m[2])), nil
	}
	if m := operatorIDDIN.FindStringSubmatch(s); m != nil {
		return OperatorID("+" + m[1] + "*" + m[2]), nil
	}
	return "", FormatError{Type: "operator id", Value: s, Reason: "expected CC*OPR or +CC*OPR"}
}

// TryParseOperatorID 解析失败时返回false
func TryParseOperatorID(s string) (OperatorID, bool) {
	id, err := ParseOperatorID(s)
	return id, err == nil
}

func (id OperatorID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id OperatorID) IsValid() bool {
	parsed, err := ParseOperatorID(string(id))
	return err == nil && parsed == id
}

// ProviderID 电动出行服务商标识，如 "DE-GDF"（ISO）或 "DE*GDF"（DIN）
type ProviderID string

// ParseProviderID 解析并规范化服务商标识
func ParseProviderID(s string) (ProviderID, error) {
	s = strings.TrimSpace(s)
	if m := providerIDISO.FindStringSubmatch(s); m != nil {
		return ProviderID(strings.ToUpper(m[1] + "-" + m[2])), nil
	}
	if m := providerIDDIN.FindStringSubmatch(s); m != nil {
		return ProviderID(strings.ToUpper(m[1] + "*" + m[2])), nil
	}
	return "", FormatError{Type: "provider id", Value: s, Reason: "expected CC-PRV or CC*PRV"}
}

// TryParseProviderID 解析失败时返回false
func TryParseProviderID(s string) (ProviderID, bool) {
	id, err := ParseProviderID(s)
	return id, err == nil
}

// MustParseProviderID 解析失败时panic
func MustParseProviderID(s string) ProviderID {
	id, err := ParseProviderID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ProviderID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id ProviderID) IsValid() bool {
	parsed, err := ParseProviderID(string(id))
	return err == nil && parsed == id
}

// Format 标识符格式
func (id ProviderID) Format() IDFormat {
	if strings.Contains(string(id), "*") {
		return IDFormatDIN
	}
	return IDFormatISO
}

// EVCOID 电动车合同标识，如 "DE-GDF-C12345678-X" 或 "DE*GDF*123456*X"
type EVCOID string

// ParseEVCOID 解析并规范化合同标识
func ParseEVCOID(s string) (EVCOID, error) {
	s = strings.TrimSpace(s)
	if m := evcoIDISO.FindStringSubmatch(s); m != nil {
		id := m[1] + "-" + m[2] + "-C" + m[3]
		if m[4] != "" {
			id += "-" + m[4]
		}
		return EVCOID(strings.ToUpper(id)), nil
	}
	if m := evcoIDDIN.FindStringSubmatch(s); m != nil {
		return EVCOID(strings.ToUpper(m[1] + "*" + m[2] + "*" + m[3] + "*" + m[4])), nil
	}
	return "", FormatError{Type: "EVCO id", Value: s, Reason: "expected CC-PRV-Cxxxxxxxx-X or CC*PRV*xxxxxx*X"}
}

// TryParseEVCOID 解析失败时返回false
func TryParseEVCOID(s string) (EVCOID, bool) {
	id, err := ParseEVCOID(s)
	return id, err == nil
}

// MustParseEVCOID 解析失败时panic
func MustParseEVCOID(s string) EVCOID {
	id, err := ParseEVCOID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id EVCOID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id EVCOID) IsValid() bool {
	parsed, err := ParseEVCOID(string(id))
	return err == nil && parsed == id
}

// ProviderID 返回合同标识中的服务商部分
func (id EVCOID) ProviderID() ProviderID {
	s := string(id)
	if len(s) < 6 {
		return ""
	}
	return ProviderID(s[:6])
}

// SessionID Hubject分配的充电会话标识（UUID）
type SessionID string

// NewSessionID 生成新的会话标识
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// ParseSessionID 解析会话标识，规范形式为小写带连字符
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", FormatError{Type: "session id", Value: s, Reason: err.Error()}
	}
	return SessionID(u.String()), nil
}

// TryParseSessionID 解析失败时返回false
func TryParseSessionID(s string) (SessionID, bool) {
	id, err := ParseSessionID(s)
	return id, err == nil
}

func (id SessionID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id SessionID) IsValid() bool {
	parsed, err := ParseSessionID(string(id))
	return err == nil && parsed == id
}

// PartnerSessionID CPO或EMP侧的会话标识，自由文本，最长250字符
type PartnerSessionID string

// ParsePartnerSessionID 解析伙伴会话标识
func ParsePartnerSessionID(s string) (PartnerSessionID, error) {
	s = strings.TrimSpace(s)
	if err := checkLength("partner session id", s, 250); err != nil {
		return "", err
	}
	return PartnerSessionID(s), nil
}

// TryParsePartnerSessionID 解析失败时返回false
func TryParsePartnerSessionID(s string) (PartnerSessionID, bool) {
	id, err := ParsePartnerSessionID(s)
	return id, err == nil
}

func (id PartnerSessionID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id PartnerSessionID) IsValid() bool {
	parsed, err := ParsePartnerSessionID(string(id))
	return err == nil && parsed == id
}

// PartnerProductID 产品标识（例如 "AC1"），最长100字符
type PartnerProductID string

// ParsePartnerProductID 解析产品标识
func ParsePartnerProductID(s string) (PartnerProductID, error) {
	s = strings.TrimSpace(s)
	if err := checkLength("partner product id", s, 100); err != nil {
		return "", err
	}
	return PartnerProductID(s), nil
}

// TryParsePartnerProductID 解析失败时返回false
func TryParsePartnerProductID(s string) (PartnerProductID, bool) {
	id, err := ParsePartnerProductID(s)
	return id, err == nil
}

func (id PartnerProductID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id PartnerProductID) IsValid() bool {
	parsed, err := ParsePartnerProductID(string(id))
	return err == nil && parsed == id
}

// ChargingStationID 充电站标识，自由文本，最长50字符
type ChargingStationID string

// ParseChargingStationID 解析充电站标识
func ParseChargingStationID(s string) (ChargingStationID, error) {
	s = strings.TrimSpace(s)
	if err := checkLength("charging station id", s, 50); err != nil {
		return "", err
	}
	return ChargingStationID(s), nil
}

func (id ChargingStationID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id ChargingStationID) IsValid() bool {
	parsed, err := ParseChargingStationID(string(id))
	return err == nil && parsed == id
}

// UID RFID卡物理标识（4/7/10字节，十六进制大写）
type UID string

// ParseUID 解析卡号
func ParseUID(s string) (UID, error) {
	s = strings.TrimSpace(s)
	if !uidPattern.MatchString(s) {
		return "", FormatError{Type: "UID", Value: s, Reason: "expected 8, 14 or 20 hex digits"}
	}
	return UID(strings.ToUpper(s)), nil
}

// TryParseUID 解析失败时返回false
func TryParseUID(s string) (UID, bool) {
	id, err := ParseUID(s)
	return id, err == nil
}

func (id UID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id UID) IsValid() bool {
	parsed, err := ParseUID(string(id))
	return err == nil && parsed == id
}

// CurrencyID ISO 4217货币代码
type CurrencyID string

// ParseCurrencyID 解析货币代码
func ParseCurrencyID(s string) (CurrencyID, error) {
	s = strings.TrimSpace(s)
	if !currencyPattern.MatchString(s) {
		return "", FormatError{Type: "currency id", Value: s, Reason: "expected ISO 4217 alpha code"}
	}
	return CurrencyID(strings.ToUpper(s)), nil
}

// TryParseCurrencyID 解析失败时返回false
func TryParseCurrencyID(s string) (CurrencyID, bool) {
	id, err := ParseCurrencyID(s)
	return id, err == nil
}

func (id CurrencyID) String() string { return string(id) }

// IsValid 是否为规范形式
func (id CurrencyID) IsValid() bool {
	parsed, err := ParseCurrencyID(string(id))
	return err == nil && parsed == id
}

// CountryCode ISO 3166-1 alpha-3 国家代码
type CountryCode string

// ParseCountryCode 解析国家代码
func ParseCountryCode(s string) (CountryCode, error) {
	s = strings.TrimSpace(s)
	if !countryPattern.MatchString(s) {
		return "", FormatError{Type: "country code", Value: s, Reason: "expected ISO 3166-1 alpha-3"}
	}
	return CountryCode(strings.ToUpper(s)), nil
}

func (c CountryCode) String() string { return string(c) }

// IsValid 是否为规范形式
func (c CountryCode) IsValid() bool {
	parsed, err := ParseCountryCode(string(c))
	return err == nil && parsed == c
}

// PhoneNumber 国际格式电话号码，如 "+49302345678"
type PhoneNumber string

// ParsePhoneNumber 解析电话号码，忽略空格、连字符、斜线和括号
func ParsePhoneNumber(s string) (PhoneNumber, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '/', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}
	if !phonePattern.MatchString(cleaned) {
		return "", FormatError{Type: "phone number", Value: s, Reason: "expected +<digits>"}
	}
	return PhoneNumber(cleaned), nil
}

// TryParsePhoneNumber 解析失败时返回false
func TryParsePhoneNumber(s string) (PhoneNumber, bool) {
	p, err := ParsePhoneNumber(s)
	return p, err == nil
}

func (p PhoneNumber) String() string { return string(p) }

// IsValid 是否为规范形式
func (p PhoneNumber) IsValid() bool {
	parsed, err := ParsePhoneNumber(string(p))
	return err == nil && parsed == p
}

// EventTrackingID 请求关联标识，调用方未提供时自动生成
type EventTrackingID string

// NewEventTrackingID 生成新的跟踪标识
func NewEventTrackingID() EventTrackingID {
	return EventTrackingID(uuid.New().String())
}

// ParseEventTrackingID 解析跟踪标识（任意非空文本）
func ParseEventTrackingID(s string) (EventTrackingID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", FormatError{Type: "event tracking id", Value: s, Reason: "must not be empty"}
	}
	return EventTrackingID(s), nil
}

func (id EventTrackingID) String() string { return string(id) }

// IsValid 非空即合法
func (id EventTrackingID) IsValid() bool {
	return strings.TrimSpace(string(id)) == string(id) && id != ""
}

// ProcessID 服务端生成的处理标识（Hubject的 Process-ID）
type ProcessID string

// NewProcessID 生成新的处理标识
func NewProcessID() ProcessID {
	return ProcessID(uuid.New().String())
}

// ParseProcessID 解析处理标识（任意非空文本）
func ParseProcessID(s string) (ProcessID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", FormatError{Type: "process id", Value: s, Reason: "must not be empty"}
	}
	return ProcessID(s), nil
}

func (id ProcessID) String() string { return string(id) }

func checkLength(typ, s string, max int) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return FormatError{Type: typ, Value: s, Reason: "must not be empty"}
	}
	if n > max {
		return FormatError{Type: typ, Value: s, Reason: "too long"}
	}
	return nil
}
