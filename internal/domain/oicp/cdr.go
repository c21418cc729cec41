package oicp

import (
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var az = NSAuthorization.Name

// SignedMeteringValue 计量法签名值
type SignedMeteringValue struct {
	Value  string
	Status *MeteringStatus
}

// CalibrationLawVerification 计量法校验信息
type CalibrationLawVerification struct {
	CalibrationLawCertificateID     *string
	PublicKey                       *string
	MeteringSignatureURL            *string
	MeteringSignatureEncodingFormat *string
	SignedMeteringValuesVersion     *string
}

// ChargeDetailRecord 已完成充电会话的计费明细，解析后不可变
type ChargeDetailRecord struct {
	SessionID           SessionID
	CPOPartnerSessionID *PartnerSessionID
	EMPPartnerSessionID *PartnerSessionID
	PartnerProductID    *PartnerProductID
	EVSEID              EVSEID
	Identification      Identification
	ChargingStart       *time.Time
	ChargingEnd         *time.Time
	SessionStart        time.Time
	SessionEnd          time.Time
	// 电表读数与耗电量单位均为 kWh
	MeterValueStart                *float64
	MeterValueEnd                  *float64
	MeterValuesInBetween           []float64
	ConsumedEnergy                 float64
	SignedMeteringValues           []SignedMeteringValue
	CalibrationLawVerificationInfo *CalibrationLawVerification
	HubOperatorID                  *OperatorID
	HubProviderID                  *ProviderID
}

// ToXML 生成独立的 eRoamingChargeDetailRecord 文档根（CDR推送与存储使用）
func (c ChargeDetailRecord) ToXML() *etree.Element {
	root := serialization.NewRoot(RootChargeDetailRecord, NSCommonTypes)
	c.fill(root)
	return root
}

// AppendTo 在父元素下写入 eRoamingChargeDetailRecord
func (c ChargeDetailRecord) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, RootChargeDetailRecord)
	c.fill(el)
	return el
}

func (c ChargeDetailRecord) fill(el *etree.Element) {
	serialization.AddText(el, az("SessionID"), c.SessionID.String())
	serialization.AddOptional(el, az("CPOPartnerSessionID"), c.CPOPartnerSessionID, PartnerSessionID.String)
	serialization.AddOptional(el, az("EMPPartnerSessionID"), c.EMPPartnerSessionID, PartnerSessionID.String)
	serialization.AddOptional(el, az("PartnerProductID"), c.PartnerProductID, PartnerProductID.String)
	serialization.AddText(el, az("EvseID"), c.EVSEID.String())
	AppendIdentification(el, az("Identification"), c.Identification)
	serialization.AddOptional(el, az("ChargingStart"), c.ChargingStart, serialization.FormatTime)
	serialization.AddOptional(el, az("ChargingEnd"), c.ChargingEnd, serialization.FormatTime)
	serialization.AddText(el, az("SessionStart"), serialization.FormatTime(c.SessionStart))
	serialization.AddText(el, az("SessionEnd"), serialization.FormatTime(c.SessionEnd))
	serialization.AddOptional(el, az("MeterValueStart"), c.MeterValueStart, serialization.FormatFloat)
	serialization.AddOptional(el, az("MeterValueEnd"), c.MeterValueEnd, serialization.FormatFloat)
	if len(c.MeterValuesInBetween) > 0 {
		between := serialization.AddElement(el, az("MeterValueInBetween"))
		serialization.AddValues(between, az("MeterValue"), c.MeterValuesInBetween, serialization.FormatFloat)
	}
	serialization.AddText(el, az("ConsumedEnergy"), serialization.FormatFloat(c.ConsumedEnergy))
	for _, v := range c.SignedMeteringValues {
		signed := serialization.AddElement(el, az("SignedMeteringValues"))
		serialization.AddText(signed, az("SignedMeteringValue"), v.Value)
		if v.Status != nil {
			serialization.AddText(signed, az("MeteringStatus"), string(*v.Status))
		}
	}
	if info := c.CalibrationLawVerificationInfo; info != nil {
		cal := serialization.AddElement(el, az("CalibrationLawVerificationInfo"))
		serialization.AddOptional(cal, az("CalibrationLawCertificateID"), info.CalibrationLawCertificateID, serialization.Identity)
		serialization.AddOptional(cal, az("PublicKey"), info.PublicKey, serialization.Identity)
		serialization.AddOptional(cal, az("MeteringSignatureUrl"), info.MeteringSignatureURL, serialization.Identity)
		serialization.AddOptional(cal, az("MeteringSignatureEncodingFormat"), info.MeteringSignatureEncodingFormat, serialization.Identity)
		serialization.AddOptional(cal, az("SignedMeteringValuesVersion"), info.SignedMeteringValuesVersion, serialization.Identity)
	}
	serialization.AddOptional(el, az("HubOperatorID"), c.HubOperatorID, OperatorID.String)
	serialization.AddOptional(el, az("HubProviderID"), c.HubProviderID, ProviderID.String)
}

// ParseChargeDetailRecord 解析单条CDR
func ParseChargeDetailRecord(el *etree.Element, mode serialization.Mode) (ChargeDetailRecord, error) {
	var (
		c   ChargeDetailRecord
		err error
	)
	if c.SessionID, err = serialization.MapValueOrFail(el, az("SessionID"), ParseSessionID); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.CPOPartnerSessionID, err = serialization.MapOptional(el, az("CPOPartnerSessionID"), ParsePartnerSessionID, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.EMPPartnerSessionID, err = serialization.MapOptional(el, az("EMPPartnerSessionID"), ParsePartnerSessionID, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.PartnerProductID, err = serialization.MapOptional(el, az("PartnerProductID"), ParsePartnerProductID, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.EVSEID, err = serialization.MapValueOrFail(el, az("EvseID"), ParseEVSEID); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.Identification, err = serialization.MapElementOrFail(el, az("Identification"), ParseIdentification); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.ChargingStart, err = serialization.MapOptional(el, az("ChargingStart"), serialization.ParseTime, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.ChargingEnd, err = serialization.MapOptional(el, az("ChargingEnd"), serialization.ParseTime, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.SessionStart, err = serialization.MapValueOrFail(el, az("SessionStart"), serialization.ParseTime); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.SessionEnd, err = serialization.MapValueOrFail(el, az("SessionEnd"), serialization.ParseTime); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.MeterValueStart, err = serialization.MapOptional(el, az("MeterValueStart"), serialization.ParseFloat, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.MeterValueEnd, err = serialization.MapOptional(el, az("MeterValueEnd"), serialization.ParseFloat, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if between := serialization.Child(el, az("MeterValueInBetween")); between != nil {
		if c.MeterValuesInBetween, err = serialization.MapValues(between, az("MeterValue"), serialization.ParseFloat); err != nil {
			return ChargeDetailRecord{}, err
		}
	}
	if c.ConsumedEnergy, err = serialization.MapValueOrFail(el, az("ConsumedEnergy"), serialization.ParseFloat); err != nil {
		return ChargeDetailRecord{}, err
	}
	c.SignedMeteringValues, err = serialization.MapElements(el, az("SignedMeteringValues"), func(s *etree.Element) (SignedMeteringValue, error) {
		value, err := serialization.ValueOrFail(s, az("SignedMeteringValue"))
		if err != nil {
			return SignedMeteringValue{}, err
		}
		status, err := serialization.MapOptional(s, az("MeteringStatus"), ParseMeteringStatus, mode)
		if err != nil {
			return SignedMeteringValue{}, err
		}
		return SignedMeteringValue{Value: value, Status: status}, nil
	})
	if err != nil {
		return ChargeDetailRecord{}, err
	}
	if cal := serialization.Child(el, az("CalibrationLawVerificationInfo")); cal != nil {
		c.CalibrationLawVerificationInfo = &CalibrationLawVerification{
			CalibrationLawCertificateID:     serialization.OptionalValue(cal, az("CalibrationLawCertificateID")),
			PublicKey:                       serialization.OptionalValue(cal, az("PublicKey")),
			MeteringSignatureURL:            serialization.OptionalValue(cal, az("MeteringSignatureUrl")),
			MeteringSignatureEncodingFormat: serialization.OptionalValue(cal, az("MeteringSignatureEncodingFormat")),
			SignedMeteringValuesVersion:     serialization.OptionalValue(cal, az("SignedMeteringValuesVersion")),
		}
	}
	if c.HubOperatorID, err = serialization.MapOptional(el, az("HubOperatorID"), ParseOperatorID, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	if c.HubProviderID, err = serialization.MapOptional(el, az("HubProviderID"), ParseProviderID, mode); err != nil {
		return ChargeDetailRecord{}, err
	}
	return c, nil
}

// parseChargeDetailRecords 解析CDR列表，失败时错误带有下标和会话标识
func parseChargeDetailRecords(el *etree.Element, mode serialization.Mode) ([]ChargeDetailRecord, error) {
	return serialization.MapElementsKeyed(el, RootChargeDetailRecord,
		func(r *etree.Element) (ChargeDetailRecord, error) { return ParseChargeDetailRecord(r, mode) },
		func(r *etree.Element) string { return serialization.ValueOrDefault(r, az("SessionID"), "") })
}
