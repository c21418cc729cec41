package oicp

import (
	"strings"
)

// 枚举值即协议线上字符串

// EVSEStatusType EVSE实时状态
type EVSEStatusType string

const (
	EVSEStatusAvailable    EVSEStatusType = "Available"
	EVSEStatusReserved     EVSEStatusType = "Reserved"
	EVSEStatusOccupied     EVSEStatusType = "Occupied"
	EVSEStatusOutOfService EVSEStatusType = "OutOfService"
	EVSEStatusNotFound     EVSEStatusType = "EvseNotFound"
	EVSEStatusUnknown      EVSEStatusType = "Unknown"
)

var evseStatusTypes = []EVSEStatusType{
	EVSEStatusAvailable, EVSEStatusReserved, EVSEStatusOccupied,
	EVSEStatusOutOfService, EVSEStatusNotFound, EVSEStatusUnknown,
}

// ParseEVSEStatusType 解析EVSE状态
func ParseEVSEStatusType(s string) (EVSEStatusType, error) {
	return parseEnum("EVSE status", s, evseStatusTypes)
}

// IsValid 是否为已知取值
func (v EVSEStatusType) IsValid() bool { return isKnown(v, evseStatusTypes) }

// PlugType 插头类型
type PlugType string

const (
	PlugSmallPaddleInductive PlugType = "Small Paddle Inductive"
	PlugLargePaddleInductive PlugType = "Large Paddle Inductive"
	PlugAVCONConnector       PlugType = "AVCON Connector"
	PlugTeslaConnector       PlugType = "Tesla Connector"
	PlugNEMA520              PlugType = "NEMA 5-20"
	PlugTypeEFrench          PlugType = "Type E French Standard"
	PlugTypeFSchuko          PlugType = "Type F Schuko"
	PlugTypeGBritish         PlugType = "Type G British Standard"
	PlugTypeJSwiss           PlugType = "Type J Swiss Standard"
	PlugType1Connector       PlugType = "Type 1 Connector (Cable Attached)"
	PlugType2Outlet          PlugType = "Type 2 Outlet"
	PlugType2Connector       PlugType = "Type 2 Connector (Cable Attached)"
	PlugType3Outlet          PlugType = "Type 3 Outlet"
	PlugIEC60309Single       PlugType = "IEC 60309 Single Phase"
	PlugIEC60309Three        PlugType = "IEC 60309 Three Phase"
	PlugCCSCombo2            PlugType = "CCS Combo 2 Plug (Cable Attached)"
	PlugCCSCombo1            PlugType = "CCS Combo 1 Plug (Cable Attached)"
	PlugCHAdeMO              PlugType = "CHAdeMO"
)

var plugTypes = []PlugType{
	PlugSmallPaddleInductive, PlugLargePaddleInductive, PlugAVCONConnector, PlugTeslaConnector,
	PlugNEMA520, PlugTypeEFrench, PlugTypeFSchuko, PlugTypeGBritish, PlugTypeJSwiss,
	PlugType1Connector, PlugType2Outlet, PlugType2Connector, PlugType3Outlet,
	PlugIEC60309Single, PlugIEC60309Three, PlugCCSCombo2, PlugCCSCombo1, PlugCHAdeMO,
}

// ParsePlugType 解析插头类型
func ParsePlugType(s string) (PlugType, error) { return parseEnum("plug type", s, plugTypes) }

// IsValid 是否为已知取值
func (v PlugType) IsValid() bool { return isKnown(v, plugTypes) }

// ChargingFacility 充电设施（电压/相数/电流档位）
type ChargingFacility string

const (
	Facility120V1P10A       ChargingFacility = "100 - 120V, 1-Phase ≤10A"
	Facility120V1P16A       ChargingFacility = "100 - 120V, 1-Phase ≤16A"
	Facility120V1P32A       ChargingFacility = "100 - 120V, 1-Phase ≤32A"
	Facility240V1P10A       ChargingFacility = "200 - 240V, 1-Phase ≤10A"
	Facility240V1P16A       ChargingFacility = "200 - 240V, 1-Phase ≤16A"
	Facility240V1P32A       ChargingFacility = "200 - 240V, 1-Phase ≤32A"
	Facility240V1PAbove32A  ChargingFacility = "200 - 240V, 1-Phase >32A"
	Facility480V3P16A       ChargingFacility = "380 - 480V, 3-Phase ≤16A"
	Facility480V3P32A       ChargingFacility = "380 - 480V, 3-Phase ≤32A"
	Facility480V3P63A       ChargingFacility = "380 - 480V, 3-Phase ≤63A"
	FacilityBatteryExchange ChargingFacility = "Battery exchange"
	FacilityUnspecified     ChargingFacility = "Unspecified"
	FacilityDC20kW          ChargingFacility = "DC Charging ≤20kW"
	FacilityDC50kW          ChargingFacility = "DC Charging ≤50kW"
	FacilityDCAbove50kW     ChargingFacility = "DC Charging >50kW"
)

var chargingFacilities = []ChargingFacility{
	Facility120V1P10A, Facility120V1P16A, Facility120V1P32A,
	Facility240V1P10A, Facility240V1P16A, Facility240V1P32A, Facility240V1PAbove32A,
	Facility480V3P16A, Facility480V3P32A, Facility480V3P63A,
	FacilityBatteryExchange, FacilityUnspecified,
	FacilityDC20kW, FacilityDC50kW, FacilityDCAbove50kW,
}

// ParseChargingFacility 解析充电设施
func ParseChargingFacility(s string) (ChargingFacility, error) {
	return parseEnum("charging facility", s, chargingFacilities)
}

// IsValid 是否为已知取值
func (v ChargingFacility) IsValid() bool { return isKnown(v, chargingFacilities) }

// ChargingMode IEC 61851 充电模式
type ChargingMode string

const (
	ChargingMode1       ChargingMode = "Mode_1"
	ChargingMode2       ChargingMode = "Mode_2"
	ChargingMode3       ChargingMode = "Mode_3"
	ChargingMode4       ChargingMode = "Mode_4"
	ChargingModeCHAdeMO ChargingMode = "CHAdeMO"
)

var chargingModes = []ChargingMode{ChargingMode1, ChargingMode2, ChargingMode3, ChargingMode4, ChargingModeCHAdeMO}

// ParseChargingMode 解析充电模式
func ParseChargingMode(s string) (ChargingMode, error) {
	return parseEnum("charging mode", s, chargingModes)
}

// IsValid 是否为已知取值
func (v ChargingMode) IsValid() bool { return isKnown(v, chargingModes) }

// AuthenticationMode 认证方式
type AuthenticationMode string

const (
	AuthNFCRFIDClassic   AuthenticationMode = "NFC RFID Classic"
	AuthNFCRFIDDESFire   AuthenticationMode = "NFC RFID DESFire"
	AuthPnC              AuthenticationMode = "PnC"
	AuthRemote           AuthenticationMode = "REMOTE"
	AuthDirectPayment    AuthenticationMode = "Direct Payment"
	AuthNoAuthentication AuthenticationMode = "No Authentication Required"
)

var authenticationModes = []AuthenticationMode{
	AuthNFCRFIDClassic, AuthNFCRFIDDESFire, AuthPnC, AuthRemote, AuthDirectPayment, AuthNoAuthentication,
}

// ParseAuthenticationMode 解析认证方式
func ParseAuthenticationMode(s string) (AuthenticationMode, error) {
	return parseEnum("authentication mode", s, authenticationModes)
}

// IsValid 是否为已知取值
func (v AuthenticationMode) IsValid() bool { return isKnown(v, authenticationModes) }

// PaymentOption 支付方式
type PaymentOption string

const (
	PaymentNone     PaymentOption = "No Payment"
	PaymentDirect   PaymentOption = "Direct"
	PaymentContract PaymentOption = "Contract"
)

var paymentOptions = []PaymentOption{PaymentNone, PaymentDirect, PaymentContract}

// ParsePaymentOption 解析支付方式
func ParsePaymentOption(s string) (PaymentOption, error) {
	return parseEnum("payment option", s, paymentOptions)
}

// IsValid 是否为已知取值
func (v PaymentOption) IsValid() bool { return isKnown(v, paymentOptions) }

// Accessibility 可访问性
type Accessibility string

const (
	AccessibilityFreePublic   Accessibility = "Free publicly accessible"
	AccessibilityRestricted   Accessibility = "Restricted access"
	AccessibilityPayingPublic Accessibility = "Paying publicly accessible"
	AccessibilityTestStation  Accessibility = "Test Station"
)

var accessibilities = []Accessibility{
	AccessibilityFreePublic, AccessibilityRestricted, AccessibilityPayingPublic, AccessibilityTestStation,
}

// ParseAccessibility 解析可访问性
func ParseAccessibility(s string) (Accessibility, error) {
	return parseEnum("accessibility", s, accessibilities)
}

// IsValid 是否为已知取值
func (v Accessibility) IsValid() bool { return isKnown(v, accessibilities) }

// DeltaType 增量数据记录的处理方式
type DeltaType string

const (
	DeltaUpdate DeltaType = "update"
	DeltaInsert DeltaType = "insert"
	DeltaDelete DeltaType = "delete"
)

var deltaTypes = []DeltaType{DeltaUpdate, DeltaInsert, DeltaDelete}

// ParseDeltaType 解析增量类型
func ParseDeltaType(s string) (DeltaType, error) { return parseEnum("delta type", s, deltaTypes) }

// IsValid 是否为已知取值
func (v DeltaType) IsValid() bool { return isKnown(v, deltaTypes) }

// ActionType 认证数据推送动作
type ActionType string

const (
	ActionFullLoad ActionType = "fullLoad"
	ActionUpdate   ActionType = "update"
	ActionInsert   ActionType = "insert"
	ActionDelete   ActionType = "delete"
)

var actionTypes = []ActionType{ActionFullLoad, ActionUpdate, ActionInsert, ActionDelete}

// ParseActionType 解析推送动作
func ParseActionType(s string) (ActionType, error) { return parseEnum("action type", s, actionTypes) }

// IsValid 是否为已知取值
func (v ActionType) IsValid() bool { return isKnown(v, actionTypes) }

// MeteringStatus 签名计量值所处阶段
type MeteringStatus string

const (
	MeteringStart    MeteringStatus = "Start"
	MeteringProgress MeteringStatus = "Progress"
	MeteringEnd      MeteringStatus = "End"
)

var meteringStatuses = []MeteringStatus{MeteringStart, MeteringProgress, MeteringEnd}

// ParseMeteringStatus 解析计量阶段
func ParseMeteringStatus(s string) (MeteringStatus, error) {
	return parseEnum("metering status", s, meteringStatuses)
}

// IsValid 是否为已知取值
func (v MeteringStatus) IsValid() bool { return isKnown(v, meteringStatuses) }

// ReferenceUnit 计价单位
type ReferenceUnit string

const (
	ReferenceUnitHour         ReferenceUnit = "HOUR"
	ReferenceUnitKilowattHour ReferenceUnit = "KILOWATT_HOUR"
	ReferenceUnitMinute       ReferenceUnit = "MINUTE"
)

var referenceUnits = []ReferenceUnit{ReferenceUnitHour, ReferenceUnitKilowattHour, ReferenceUnitMinute}

// ParseReferenceUnit 解析计价单位
func ParseReferenceUnit(s string) (ReferenceUnit, error) {
	return parseEnum("reference unit", s, referenceUnits)
}

// IsValid 是否为已知取值
func (v ReferenceUnit) IsValid() bool { return isKnown(v, referenceUnits) }

// AdditionalReferenceType 附加费用类型
type AdditionalReferenceType string

const (
	AdditionalStartFee   AdditionalReferenceType = "START FEE"
	AdditionalFixedFee   AdditionalReferenceType = "FIXED FEE"
	AdditionalParkingFee AdditionalReferenceType = "PARKING FEE"
	AdditionalMinimumFee AdditionalReferenceType = "MINIMUM FEE"
	AdditionalMaximumFee AdditionalReferenceType = "MAXIMUM FEE"
)

var additionalReferenceTypes = []AdditionalReferenceType{
	AdditionalStartFee, AdditionalFixedFee, AdditionalParkingFee, AdditionalMinimumFee, AdditionalMaximumFee,
}

// ParseAdditionalReferenceType 解析附加费用类型
func ParseAdditionalReferenceType(s string) (AdditionalReferenceType, error) {
	return parseEnum("additional reference", s, additionalReferenceTypes)
}

// IsValid 是否为已知取值
func (v AdditionalReferenceType) IsValid() bool { return isKnown(v, additionalReferenceTypes) }

// DayOfWeek 产品可用时间适用的日期
type DayOfWeek string

const (
	Everyday  DayOfWeek = "Everyday"
	Workdays  DayOfWeek = "Workdays"
	Weekend   DayOfWeek = "Weekend"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

var daysOfWeek = []DayOfWeek{
	Everyday, Workdays, Weekend, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

// ParseDayOfWeek 解析日期类型
func ParseDayOfWeek(s string) (DayOfWeek, error) { return parseEnum("day of week", s, daysOfWeek) }

// IsValid 是否为已知取值
func (v DayOfWeek) IsValid() bool { return isKnown(v, daysOfWeek) }

// RFIDType 卡片技术类型
type RFIDType string

const (
	RFIDMifareClassic RFIDType = "mifareCls"
	RFIDMifareDESFire RFIDType = "mifareDes"
	RFIDCalypso       RFIDType = "calypso"
	RFIDNFC           RFIDType = "nfc"
	RFIDMifareFamily  RFIDType = "mifareFamily"
)

var rfidTypes = []RFIDType{RFIDMifareClassic, RFIDMifareDESFire, RFIDCalypso, RFIDNFC, RFIDMifareFamily}

// ParseRFIDType 解析卡片类型
func ParseRFIDType(s string) (RFIDType, error) { return parseEnum("RFID type", s, rfidTypes) }

// IsValid 是否为已知取值
func (v RFIDType) IsValid() bool { return isKnown(v, rfidTypes) }

// PINHashFunction 二维码PIN的哈希算法
type PINHashFunction string

const (
	HashMD5    PINHashFunction = "MD5"
	HashSHA1   PINHashFunction = "SHA-1"
	HashBcrypt PINHashFunction = "Bcrypt"
)

var pinHashFunctions = []PINHashFunction{HashMD5, HashSHA1, HashBcrypt}

// ParsePINHashFunction 解析哈希算法
func ParsePINHashFunction(s string) (PINHashFunction, error) {
	return parseEnum("PIN hash function", s, pinHashFunctions)
}

// IsValid 是否为已知取值
func (v PINHashFunction) IsValid() bool { return isKnown(v, pinHashFunctions) }

// SortOrder 分页排序方向
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

var sortOrders = []SortOrder{SortAscending, SortDescending}

// ParseSortOrder 解析排序方向
func ParseSortOrder(s string) (SortOrder, error) { return parseEnum("sort order", s, sortOrders) }

// IsValid 是否为已知取值
func (v SortOrder) IsValid() bool { return isKnown(v, sortOrders) }

// parseEnum 先精确匹配协议字面量，再按大小写不敏感回退
func parseEnum[T ~string](typ, s string, values []T) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", FormatError{Type: typ, Value: s, Reason: "unknown value"}
}

func isKnown[T ~string](v T, values []T) bool {
	for _, known := range values {
		if known == v {
			return true
		}
	}
	return false
}
