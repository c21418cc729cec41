package oicp

import (
	"errors"
	"time"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// Identification 用户认证信息，恰有一个变体。实现仅限本包
type Identification interface {
	// Variant 变体元素名
	Variant() string
	appendTo(parent *etree.Element)
}

var errNoIdentificationVariant = errors.New("no known identification variant")

// RFIDMifareFamilyIdentification 仅含卡号的 Mifare 卡
type RFIDMifareFamilyIdentification struct {
	UID UID
}

// Variant 变体元素名
func (RFIDMifareFamilyIdentification) Variant() string { return "RFIDMifareFamilyIdentification" }

func (i RFIDMifareFamilyIdentification) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ct(i.Variant()))
	serialization.AddText(el, ct("UID"), i.UID.String())
}

// RFIDIdentification 带卡片类型的RFID认证
type RFIDIdentification struct {
	UID           UID
	RFIDType      RFIDType
	EVCOID        *EVCOID
	PrintedNumber *string
	ExpiryDate    *time.Time
}

// Variant 变体元素名
func (RFIDIdentification) Variant() string { return "RFIDIdentification" }

func (i RFIDIdentification) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ct(i.Variant()))
	serialization.AddText(el, ct("UID"), i.UID.String())
	serialization.AddOptional(el, ct("EvcoID"), i.EVCOID, EVCOID.String)
	serialization.AddText(el, ct("RFID"), string(i.RFIDType))
	serialization.AddOptional(el, ct("PrintedNumber"), i.PrintedNumber, serialization.Identity)
	serialization.AddOptional(el, ct("ExpiryDate"), i.ExpiryDate, serialization.FormatTime)
}

// HashedPIN 哈希后的PIN
type HashedPIN struct {
	Value    string
	Function PINHashFunction
	Salt     string
}

// QRCodeIdentification 二维码认证：合同号 + PIN 或 HashedPIN
type QRCodeIdentification struct {
	EVCOID    EVCOID
	PIN       *string
	HashedPIN *HashedPIN
}

// Variant 变体元素名
func (QRCodeIdentification) Variant() string { return "QRCodeIdentification" }

func (i QRCodeIdentification) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ct(i.Variant()))
	serialization.AddText(el, ct("EvcoID"), i.EVCOID.String())
	switch {
	case i.HashedPIN != nil:
		hashed := serialization.AddElement(el, ct("HashedPIN"))
		serialization.AddText(hashed, ct("Value"), i.HashedPIN.Value)
		serialization.AddText(hashed, ct("Function"), string(i.HashedPIN.Function))
		serialization.AddText(hashed, ct("Salt"), i.HashedPIN.Salt)
	case i.PIN != nil:
		serialization.AddText(el, ct("PIN"), *i.PIN)
	}
}

// PlugAndChargeIdentification ISO 15118 即插即充
type PlugAndChargeIdentification struct {
	EVCOID EVCOID
}

// Variant 变体元素名
func (PlugAndChargeIdentification) Variant() string { return "PlugAndChargeIdentification" }

func (i PlugAndChargeIdentification) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ct(i.Variant()))
	serialization.AddText(el, ct("EvcoID"), i.EVCOID.String())
}

// RemoteIdentification 远程启动（App/呼叫中心）
type RemoteIdentification struct {
	EVCOID EVCOID
}

// Variant 变体元素名
func (RemoteIdentification) Variant() string { return "RemoteIdentification" }

func (i RemoteIdentification) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, ct(i.Variant()))
	serialization.AddText(el, ct("EvcoID"), i.EVCOID.String())
}

// AppendIdentification 写入认证信息包装元素
func AppendIdentification(parent *etree.Element, name serialization.QName, id Identification) *etree.Element {
	el := serialization.AddElement(parent, name)
	if id != nil {
		id.appendTo(el)
	}
	return el
}

// ParseIdentification 按固定优先级探测变体：
// RFIDMifareFamily, RFID, QRCode, PlugAndCharge, Remote
func ParseIdentification(el *etree.Element) (Identification, error) {
	if v := serialization.Child(el, ct("RFIDMifareFamilyIdentification")); v != nil {
		uid, err := serialization.MapValueOrFail(v, ct("UID"), ParseUID)
		if err != nil {
			return nil, err
		}
		return RFIDMifareFamilyIdentification{UID: uid}, nil
	}
	if v := serialization.Child(el, ct("RFIDIdentification")); v != nil {
		return parseRFIDIdentification(v)
	}
	if v := serialization.Child(el, ct("QRCodeIdentification")); v != nil {
		return parseQRCodeIdentification(v)
	}
	if v := serialization.Child(el, ct("PlugAndChargeIdentification")); v != nil {
		evco, err := serialization.MapValueOrFail(v, ct("EvcoID"), ParseEVCOID)
		if err != nil {
			return nil, err
		}
		return PlugAndChargeIdentification{EVCOID: evco}, nil
	}
	if v := serialization.Child(el, ct("RemoteIdentification")); v != nil {
		evco, err := serialization.MapValueOrFail(v, ct("EvcoID"), ParseEVCOID)
		if err != nil {
			return nil, err
		}
		return RemoteIdentification{EVCOID: evco}, nil
	}
	return nil, serialization.StructureError{Expected: ct("Identification"), Index: -1, Cause: errNoIdentificationVariant}
}

func parseRFIDIdentification(el *etree.Element) (Identification, error) {
	uid, err := serialization.MapValueOrFail(el, ct("UID"), ParseUID)
	if err != nil {
		return nil, err
	}
	rfidType, err := serialization.MapValueOrFail(el, ct("RFID"), ParseRFIDType)
	if err != nil {
		return nil, err
	}
	evco, err := serialization.MapOptional(el, ct("EvcoID"), ParseEVCOID, serialization.Strict)
	if err != nil {
		return nil, err
	}
	expiry, err := serialization.MapOptional(el, ct("ExpiryDate"), serialization.ParseTime, serialization.Strict)
	if err != nil {
		return nil, err
	}
	return RFIDIdentification{
		UID:           uid,
		RFIDType:      rfidType,
		EVCOID:        evco,
		PrintedNumber: serialization.OptionalValue(el, ct("PrintedNumber")),
		ExpiryDate:    expiry,
	}, nil
}

func parseQRCodeIdentification(el *etree.Element) (Identification, error) {
	evco, err := serialization.MapValueOrFail(el, ct("EvcoID"), ParseEVCOID)
	if err != nil {
		return nil, err
	}
	id := QRCodeIdentification{EVCOID: evco}
	if hashed := serialization.Child(el, ct("HashedPIN")); hashed != nil {
		value, err := serialization.ValueOrFail(hashed, ct("Value"))
		if err != nil {
			return nil, err
		}
		fn, err := serialization.MapValueOrFail(hashed, ct("Function"), ParsePINHashFunction)
		if err != nil {
			return nil, err
		}
		id.HashedPIN = &HashedPIN{
			Value:    value,
			Function: fn,
			Salt:     serialization.ValueOrDefault(hashed, ct("Salt"), ""),
		}
		return id, nil
	}
	id.PIN = serialization.OptionalValue(el, ct("PIN"))
	return id, nil
}
