package oicp

import (
	"regexp"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var dp = NSDynamicPricing.Name

var clockPattern = regexp.MustCompile(`^(?:[01][0-9]|2[0-3]):[0-5][0-9]$`)

// Period 每日时段，HH:MM
type Period struct {
	Begin string
	End   string
}

func parseClock(s string) (string, error) {
	if !clockPattern.MatchString(s) {
		return "", FormatError{Type: "time of day", Value: s, Reason: "expected HH:MM"}
	}
	return s, nil
}

// ProductAvailabilityTime 产品在某类日期下的可用时段
type ProductAvailabilityTime struct {
	Periods []Period
	On      DayOfWeek
}

// AdditionalReference 附加费用
type AdditionalReference struct {
	Type  AdditionalReferenceType
	Unit  ReferenceUnit
	Price float64
}

// PricingProductDataRecord 单个计价产品
type PricingProductDataRecord struct {
	ProductID                   PartnerProductID
	ReferenceUnit               ReferenceUnit
	ProductPriceCurrency        CurrencyID
	PricePerReferenceUnit       float64
	MaximumProductChargingPower float64
	IsValid24Hours              bool
	ProductAvailabilityTimes    []ProductAvailabilityTime
	AdditionalReferences        []AdditionalReference
}

// PricingProductData 某运营商对某服务商的计价产品数据
type PricingProductData struct {
	OperatorID                  OperatorID
	OperatorName                *string
	ProviderID                  ProviderID
	PricingDefaultPrice         float64
	PricingDefaultPriceCurrency CurrencyID
	PricingDefaultReferenceUnit ReferenceUnit
	Records                     []PricingProductDataRecord
}

// AppendTo 写入 PricingProductData
func (p PricingProductData) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, dp("PricingProductData"))
	serialization.AddText(el, dp("OperatorID"), p.OperatorID.String())
	serialization.AddOptional(el, dp("OperatorName"), p.OperatorName, serialization.Identity)
	serialization.AddText(el, dp("ProviderID"), p.ProviderID.String())
	serialization.AddText(el, dp("PricingDefaultPrice"), serialization.FormatFloat(p.PricingDefaultPrice))
	serialization.AddText(el, dp("PricingDefaultPriceCurrency"), p.PricingDefaultPriceCurrency.String())
	serialization.AddText(el, dp("PricingDefaultReferenceUnit"), string(p.PricingDefaultReferenceUnit))
	for _, r := range p.Records {
		r.appendTo(el)
	}
	return el
}

func (r PricingProductDataRecord) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, dp("PricingProductDataRecord"))
	serialization.AddText(el, dp("ProductID"), r.ProductID.String())
	serialization.AddText(el, dp("ReferenceUnit"), string(r.ReferenceUnit))
	serialization.AddText(el, dp("ProductPriceCurrency"), r.ProductPriceCurrency.String())
	serialization.AddText(el, dp("PricePerReferenceUnit"), serialization.FormatFloat(r.PricePerReferenceUnit))
	serialization.AddText(el, dp("MaximumProductChargingPower"), serialization.FormatFloat(r.MaximumProductChargingPower))
	serialization.AddText(el, dp("IsValid24hours"), serialization.FormatBool(r.IsValid24Hours))
	for _, t := range r.ProductAvailabilityTimes {
		times := serialization.AddElement(el, dp("ProductAvailabilityTimes"))
		for _, p := range t.Periods {
			period := serialization.AddElement(times, dp("Periods"))
			serialization.AddText(period, dp("begin"), p.Begin)
			serialization.AddText(period, dp("end"), p.End)
		}
		serialization.AddText(times, dp("on"), string(t.On))
	}
	for _, a := range r.AdditionalReferences {
		ref := serialization.AddElement(el, dp("AdditionalReferences"))
		serialization.AddText(ref, dp("AdditionalReference"), string(a.Type))
		serialization.AddText(ref, dp("AdditionalReferenceUnit"), string(a.Unit))
		serialization.AddText(ref, dp("PricePerAdditionalReferenceUnit"), serialization.FormatFloat(a.Price))
	}
}

// ParsePricingProductData 解析 PricingProductData。mode 决定无法解析的可选条目是被丢弃还是中止解析
func ParsePricingProductData(el *etree.Element, mode serialization.Mode) (PricingProductData, error) {
	var (
		p   PricingProductData
		err error
	)
	if p.OperatorID, err = serialization.MapValueOrFail(el, dp("OperatorID"), ParseOperatorID); err != nil {
		return PricingProductData{}, err
	}
	p.OperatorName = serialization.OptionalValue(el, dp("OperatorName"))
	if p.ProviderID, err = serialization.MapValueOrFail(el, dp("ProviderID"), ParseProviderID); err != nil {
		return PricingProductData{}, err
	}
	if p.PricingDefaultPrice, err = serialization.MapValueOrFail(el, dp("PricingDefaultPrice"), serialization.ParseFloat); err != nil {
		return PricingProductData{}, err
	}
	if p.PricingDefaultPriceCurrency, err = serialization.MapValueOrFail(el, dp("PricingDefaultPriceCurrency"), ParseCurrencyID); err != nil {
		return PricingProductData{}, err
	}
	if p.PricingDefaultReferenceUnit, err = serialization.MapValueOrFail(el, dp("PricingDefaultReferenceUnit"), ParseReferenceUnit); err != nil {
		return PricingProductData{}, err
	}
	p.Records, err = serialization.MapElementsKeyed(el, dp("PricingProductDataRecord"),
		func(r *etree.Element) (PricingProductDataRecord, error) {
			return parsePricingProductDataRecord(r, mode)
		},
		func(r *etree.Element) string { return serialization.ValueOrDefault(r, dp("ProductID"), "") })
	if err != nil {
		return PricingProductData{}, err
	}
	return p, nil
}

func parsePricingProductDataRecord(el *etree.Element, mode serialization.Mode) (PricingProductDataRecord, error) {
	var (
		r   PricingProductDataRecord
		err error
	)
	if r.ProductID, err = serialization.MapValueOrFail(el, dp("ProductID"), ParsePartnerProductID); err != nil {
		return PricingProductDataRecord{}, err
	}
	if r.ReferenceUnit, err = serialization.MapValueOrFail(el, dp("ReferenceUnit"), ParseReferenceUnit); err != nil {
		return PricingProductDataRecord{}, err
	}
	if r.ProductPriceCurrency, err = serialization.MapValueOrFail(el, dp("ProductPriceCurrency"), ParseCurrencyID); err != nil {
		return PricingProductDataRecord{}, err
	}
	if r.PricePerReferenceUnit, err = serialization.MapValueOrFail(el, dp("PricePerReferenceUnit"), serialization.ParseFloat); err != nil {
		return PricingProductDataRecord{}, err
	}
	if r.MaximumProductChargingPower, err = serialization.MapValueOrFail(el, dp("MaximumProductChargingPower"), serialization.ParseFloat); err != nil {
		return PricingProductDataRecord{}, err
	}
	r.IsValid24Hours = serialization.IsTrue(serialization.ValueOrDefault(el, dp("IsValid24hours"), ""))
	if r.ProductAvailabilityTimes, err = serialization.MapElementsLenient(el, dp("ProductAvailabilityTimes"), parseProductAvailabilityTime, mode); err != nil {
		return PricingProductDataRecord{}, err
	}
	if r.AdditionalReferences, err = serialization.MapElementsLenient(el, dp("AdditionalReferences"), parseAdditionalReference, mode); err != nil {
		return PricingProductDataRecord{}, err
	}
	return r, nil
}

func parseProductAvailabilityTime(el *etree.Element) (ProductAvailabilityTime, error) {
	periods, err := serialization.MapElements(el, dp("Periods"), func(p *etree.Element) (Period, error) {
		begin, err := serialization.MapValueOrFail(p, dp("begin"), parseClock)
		if err != nil {
			return Period{}, err
		}
		end, err := serialization.MapValueOrFail(p, dp("end"), parseClock)
		if err != nil {
			return Period{}, err
		}
		return Period{Begin: begin, End: end}, nil
	})
	if err != nil {
		return ProductAvailabilityTime{}, err
	}
	on, err := serialization.MapValueOrFail(el, dp("on"), ParseDayOfWeek)
	if err != nil {
		return ProductAvailabilityTime{}, err
	}
	return ProductAvailabilityTime{Periods: periods, On: on}, nil
}

func parseAdditionalReference(el *etree.Element) (AdditionalReference, error) {
	typ, err := serialization.MapValueOrFail(el, dp("AdditionalReference"), ParseAdditionalReferenceType)
	if err != nil {
		return AdditionalReference{}, err
	}
	unit, err := serialization.MapValueOrFail(el, dp("AdditionalReferenceUnit"), ParseReferenceUnit)
	if err != nil {
		return AdditionalReference{}, err
	}
	price, err := serialization.MapValueOrFail(el, dp("PricePerAdditionalReferenceUnit"), serialization.ParseFloat)
	if err != nil {
		return AdditionalReference{}, err
	}
	return AdditionalReference{Type: typ, Unit: unit, Price: price}, nil
}

// EVSEPricing 某EVSE对某服务商可用的产品列表
type EVSEPricing struct {
	EVSEID     EVSEID
	ProviderID ProviderID
	ProductIDs []PartnerProductID
}

// AppendTo 写入 EVSEPricing
func (p EVSEPricing) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, dp("EVSEPricing"))
	serialization.AddText(el, dp("EvseID"), p.EVSEID.String())
	serialization.AddText(el, dp("ProviderID"), p.ProviderID.String())
	list := serialization.AddElement(el, dp("EvseIDProductList"))
	serialization.AddValues(list, dp("ProductID"), p.ProductIDs, PartnerProductID.String)
	return el
}

// ParseEVSEPricing 解析 EVSEPricing
func ParseEVSEPricing(el *etree.Element) (EVSEPricing, error) {
	id, err := serialization.MapValueOrFail(el, dp("EvseID"), ParseEVSEID)
	if err != nil {
		return EVSEPricing{}, err
	}
	provider, err := serialization.MapValueOrFail(el, dp("ProviderID"), ParseProviderID)
	if err != nil {
		return EVSEPricing{}, err
	}
	list, err := serialization.ElementOrFail(el, dp("EvseIDProductList"))
	if err != nil {
		return EVSEPricing{}, err
	}
	products, err := serialization.MapValues(list, dp("ProductID"), ParsePartnerProductID)
	if err != nil {
		return EVSEPricing{}, err
	}
	return EVSEPricing{EVSEID: id, ProviderID: provider, ProductIDs: products}, nil
}
