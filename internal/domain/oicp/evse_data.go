package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var ed = NSEVSEData.Name

// EVSEDataRecord 单个EVSE的静态数据快照。解析后不再修改，下一次拉取得到新快照
type EVSEDataRecord struct {
	// DeltaType 增量拉取时的处理方式，全量拉取时为nil
	DeltaType  *DeltaType
	LastUpdate *time.Time

	EVSEID               EVSEID
	ChargingStationID    *ChargingStationID
	ChargingStationNames []DisplayText
	Address              Address
	GeoCoordinates       GeoCoordinates
	Plugs                []PlugType
	ChargingFacilities   []ChargingFacility
	ChargingModes        []ChargingMode
	AuthenticationModes  []AuthenticationMode
	// MaxCapacity 最大容量（kWh）
	MaxCapacity          *float64
	PaymentOptions       []PaymentOption
	Accessibility        Accessibility
	HotlinePhoneNumber   PhoneNumber
	AdditionalInfo       *string
	IsOpen24Hours        bool
	OpeningTime          *string
	HubOperatorID        *OperatorID
	ClearinghouseID      *string
	IsHubjectCompatible  bool
	DynamicInfoAvailable bool
}

// ToXML 生成独立的 EvseDataRecord 元素（缓存存储使用）
func (r EVSEDataRecord) ToXML() *etree.Element {
	root := serialization.NewRoot(ed("EvseDataRecord"), NSCommonTypes)
	r.fill(root)
	return root
}

// AppendTo 在父元素下写入 EvseDataRecord
func (r EVSEDataRecord) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, ed("EvseDataRecord"))
	r.fill(el)
	return el
}

func (r EVSEDataRecord) fill(el *etree.Element) {
	if r.DeltaType != nil {
		el.CreateAttr("deltaType", string(*r.DeltaType))
	}
	if r.LastUpdate != nil {
		el.CreateAttr("lastUpdate", serialization.FormatTime(*r.LastUpdate))
	}

	serialization.AddText(el, ed("EvseId"), r.EVSEID.String())
	serialization.AddOptional(el, ed("ChargingStationId"), r.ChargingStationID, ChargingStationID.String)
	if len(r.ChargingStationNames) > 0 {
		names := serialization.AddElement(el, ed("ChargingStationNames"))
		for _, n := range r.ChargingStationNames {
			appendDisplayText(names, n)
		}
	}
	r.Address.AppendTo(el, ed("Address"))
	r.GeoCoordinates.AppendTo(el, ed("GeoCoordinates"))
	appendSet(el, ed("Plugs"), ed("Plug"), r.Plugs)
	appendSet(el, ed("ChargingFacilities"), ed("ChargingFacility"), r.ChargingFacilities)
	appendSet(el, ed("ChargingModes"), ed("ChargingMode"), r.ChargingModes)
	appendSet(el, ed("AuthenticationModes"), ed("AuthenticationMode"), r.AuthenticationModes)
	serialization.AddOptional(el, ed("MaxCapacity"), r.MaxCapacity, serialization.FormatFloat)
	appendSet(el, ed("PaymentOptions"), ed("PaymentOption"), r.PaymentOptions)
	serialization.AddText(el, ed("Accessibility"), string(r.Accessibility))
	serialization.AddText(el, ed("HotlinePhoneNum"), r.HotlinePhoneNumber.String())
	serialization.AddOptional(el, ed("AdditionalInfo"), r.AdditionalInfo, serialization.Identity)
	serialization.AddText(el, ed("IsOpen24Hours"), serialization.FormatBool(r.IsOpen24Hours))
	serialization.AddOptional(el, ed("OpeningTime"), r.OpeningTime, serialization.Identity)
	serialization.AddOptional(el, ed("HubOperatorID"), r.HubOperatorID, OperatorID.String)
	serialization.AddOptional(el, ed("ClearinghouseID"), r.ClearinghouseID, serialization.Identity)
	serialization.AddText(el, ed("IsHubjectCompatible"), serialization.FormatBool(r.IsHubjectCompatible))
	serialization.AddText(el, ed("DynamicInfoAvailable"), serialization.FormatBool(r.DynamicInfoAvailable))
}

// ParseEVSEDataRecord 解析 EvseDataRecord。mode 控制可选字段无法解析时的行为
func ParseEVSEDataRecord(el *etree.Element, mode serialization.Mode) (EVSEDataRecord, error) {
	var (
		r   EVSEDataRecord
		err error
	)

	// 属性只是提示信息，无法解析时忽略
	if raw, ok := serialization.AttrValue(el, "deltaType"); ok {
		if dt, err := ParseDeltaType(raw); err == nil {
			r.DeltaType = &dt
		}
	}
	if raw, ok := serialization.AttrValue(el, "lastUpdate"); ok {
		if ts, err := serialization.ParseTime(raw); err == nil {
			r.LastUpdate = &ts
		}
	}

	if r.EVSEID, err = serialization.MapValueOrFail(el, ed("EvseId"), ParseEVSEID); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.ChargingStationID, err = serialization.MapOptional(el, ed("ChargingStationId"), ParseChargingStationID, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if names := serialization.Child(el, ed("ChargingStationNames")); names != nil {
		if r.ChargingStationNames, err = serialization.MapElements(names, ct("DisplayText"), parseDisplayText); err != nil {
			return EVSEDataRecord{}, err
		}
	}
	if r.Address, err = serialization.MapElementOrFail(el, ed("Address"), ParseAddress); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.GeoCoordinates, err = serialization.MapElementOrFail(el, ed("GeoCoordinates"), ParseGeoCoordinates); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.Plugs, err = parseSet(el, ed("Plugs"), ed("Plug"), ParsePlugType, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.ChargingFacilities, err = parseSet(el, ed("ChargingFacilities"), ed("ChargingFacility"), ParseChargingFacility, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.ChargingModes, err = parseSet(el, ed("ChargingModes"), ed("ChargingMode"), ParseChargingMode, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.AuthenticationModes, err = parseSet(el, ed("AuthenticationModes"), ed("AuthenticationMode"), ParseAuthenticationMode, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if len(r.AuthenticationModes) == 0 {
		return EVSEDataRecord{}, serialization.MissingFieldError{Field: ed("AuthenticationMode"), Parent: ed("AuthenticationModes")}
	}
	if r.MaxCapacity, err = serialization.MapOptional(el, ed("MaxCapacity"), serialization.ParseFloat, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.PaymentOptions, err = parseSet(el, ed("PaymentOptions"), ed("PaymentOption"), ParsePaymentOption, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.Accessibility, err = serialization.MapValueOrFail(el, ed("Accessibility"), ParseAccessibility); err != nil {
		return EVSEDataRecord{}, err
	}
	if r.HotlinePhoneNumber, err = serialization.MapValueOrFail(el, ed("HotlinePhoneNum"), ParsePhoneNumber); err != nil {
		return EVSEDataRecord{}, err
	}
	r.AdditionalInfo = serialization.OptionalValue(el, ed("AdditionalInfo"))
	r.IsOpen24Hours = serialization.IsTrue(serialization.ValueOrDefault(el, ed("IsOpen24Hours"), ""))
	r.OpeningTime = serialization.OptionalValue(el, ed("OpeningTime"))
	if r.HubOperatorID, err = serialization.MapOptional(el, ed("HubOperatorID"), ParseOperatorID, mode); err != nil {
		return EVSEDataRecord{}, err
	}
	r.ClearinghouseID = serialization.OptionalValue(el, ed("ClearinghouseID"))
	r.IsHubjectCompatible = serialization.IsTrue(serialization.ValueOrDefault(el, ed("IsHubjectCompatible"), ""))
	r.DynamicInfoAvailable = serialization.IsNotFalse(serialization.ValueOrDefault(el, ed("DynamicInfoAvailable"), ""))
	return r, nil
}

// OperatorEVSEData 某运营商的EVSE数据记录
type OperatorEVSEData struct {
	OperatorID   OperatorID
	OperatorName string
	Records      []EVSEDataRecord
}

func (o OperatorEVSEData) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ed("OperatorEvseData"))
	serialization.AddText(el, ed("OperatorID"), o.OperatorID.String())
	serialization.AddText(el, ed("OperatorName"), o.OperatorName)
	for _, r := range o.Records {
		r.AppendTo(el)
	}
}

func parseOperatorEVSEData(mode serialization.Mode) func(*etree.Element) (OperatorEVSEData, error) {
	return func(el *etree.Element) (OperatorEVSEData, error) {
		operatorID, err := serialization.MapValueOrFail(el, ed("OperatorID"), ParseOperatorID)
		if err != nil {
			return OperatorEVSEData{}, err
		}
		records, err := serialization.MapElementsKeyed(el, ed("EvseDataRecord"),
			func(r *etree.Element) (EVSEDataRecord, error) { return ParseEVSEDataRecord(r, mode) },
			func(r *etree.Element) string { return serialization.ValueOrDefault(r, ed("EvseId"), "") })
		if err != nil {
			return OperatorEVSEData{}, err
		}
		return OperatorEVSEData{
			OperatorID:   operatorID,
			OperatorName: serialization.ValueOrDefault(el, ed("OperatorName"), ""),
			Records:      records,
		}, nil
	}
}

// appendSet 集合字段：包装元素 + 重复子元素，空集合时省略
func appendSet[T ~string](parent *etree.Element, wrapper, item serialization.QName, values []T) {
	if len(values) == 0 {
		return
	}
	el := serialization.AddElement(parent, wrapper)
	for _, v := range values {
		serialization.AddText(el, item, string(v))
	}
}

// parseSet 解析集合字段，去重并保持文档顺序。宽松模式下跳过未知取值
func parseSet[T comparable](parent *etree.Element, wrapper, item serialization.QName, parse func(string) (T, error), mode serialization.Mode) ([]T, error) {
	el := serialization.Child(parent, wrapper)
	if el == nil {
		return nil, nil
	}
	values, err := serialization.MapValuesLenient(el, item, parse, mode)
	if err != nil {
		return nil, err
	}
	return distinct(values), nil
}

func distinct[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
