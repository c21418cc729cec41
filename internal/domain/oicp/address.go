package oicp

import (
	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// Address 充电站地址（CommonTypes）
type Address struct {
	Country    CountryCode
	City       string
	Street     string
	PostalCode *string
	HouseNum   *string
	Floor      *string
	Region     *string
	TimeZone   *string
}

// NewAddress 创建只包含必填字段的地址
func NewAddress(country CountryCode, city, street string) Address {
	return Address{Country: country, City: city, Street: street}
}

// AppendTo 写入地址元素
func (a Address) AppendTo(parent *etree.Element, name serialization.QName) *etree.Element {
	el := serialization.AddElement(parent, name)
	serialization.AddText(el, ct("Country"), a.Country.String())
	serialization.AddText(el, ct("City"), a.City)
	serialization.AddText(el, ct("Street"), a.Street)
	serialization.AddOptional(el, ct("PostalCode"), a.PostalCode, serialization.Identity)
	serialization.AddOptional(el, ct("HouseNum"), a.HouseNum, serialization.Identity)
	serialization.AddOptional(el, ct("Floor"), a.Floor, serialization.Identity)
	serialization.AddOptional(el, ct("Region"), a.Region, serialization.Identity)
	serialization.AddOptional(el, ct("TimeZone"), a.TimeZone, serialization.Identity)
	return el
}

// ParseAddress 解析地址元素
func ParseAddress(el *etree.Element) (Address, error) {
	country, err := serialization.MapValueOrFail(el, ct("Country"), ParseCountryCode)
	if err != nil {
		return Address{}, err
	}
	city, err := serialization.ValueOrFail(el, ct("City"))
	if err != nil {
		return Address{}, err
	}
	street, err := serialization.ValueOrFail(el, ct("Street"))
	if err != nil {
		return Address{}, err
	}
	return Address{
		Country:    country,
		City:       city,
		Street:     street,
		PostalCode: serialization.OptionalValue(el, ct("PostalCode")),
		HouseNum:   serialization.OptionalValue(el, ct("HouseNum")),
		Floor:      serialization.OptionalValue(el, ct("Floor")),
		Region:     serialization.OptionalValue(el, ct("Region")),
		TimeZone:   serialization.OptionalValue(el, ct("TimeZone")),
	}, nil
}

// DisplayText 多语言文本
type DisplayText struct {
	Lang  string
	Value string
}

// appendDisplayText 写入 CommonTypes:DisplayText
func appendDisplayText(parent *etree.Element, t DisplayText) {
	el := serialization.AddElement(parent, ct("DisplayText"))
	serialization.AddText(el, ct("lang"), t.Lang)
	serialization.AddText(el, ct("value"), t.Value)
}

func parseDisplayText(el *etree.Element) (DisplayText, error) {
	lang, err := serialization.ValueOrFail(el, ct("lang"))
	if err != nil {
		return DisplayText{}, err
	}
	value, err := serialization.ValueOrFail(el, ct("value"))
	if err != nil {
		return DisplayText{}, err
	}
	return DisplayText{Lang: lang, Value: value}, nil
}
