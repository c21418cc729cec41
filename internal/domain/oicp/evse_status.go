package oicp

import (
	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var es = NSEVSEStatus.Name

// EVSEStatusRecord 单个EVSE的实时状态
type EVSEStatusRecord struct {
	EVSEID EVSEID
	Status EVSEStatusType
}

// AppendTo 写入 EvseStatusRecord
func (r EVSEStatusRecord) AppendTo(parent *etree.Element) *etree.Element {
	el := serialization.AddElement(parent, es("EvseStatusRecord"))
	serialization.AddText(el, es("EvseId"), r.EVSEID.String())
	serialization.AddText(el, es("EvseStatus"), string(r.Status))
	return el
}

// ParseEVSEStatusRecord 解析 EvseStatusRecord
func ParseEVSEStatusRecord(el *etree.Element) (EVSEStatusRecord, error) {
	id, err := serialization.MapValueOrFail(el, es("EvseId"), ParseEVSEID)
	if err != nil {
		return EVSEStatusRecord{}, err
	}
	status, err := serialization.MapValueOrFail(el, es("EvseStatus"), ParseEVSEStatusType)
	if err != nil {
		return EVSEStatusRecord{}, err
	}
	return EVSEStatusRecord{EVSEID: id, Status: status}, nil
}

// OperatorEVSEStatus 某运营商的EVSE状态记录
type OperatorEVSEStatus struct {
	OperatorID   OperatorID
	OperatorName string
	Records      []EVSEStatusRecord
}

func (o OperatorEVSEStatus) appendTo(parent *etree.Element) {
	el := serialization.AddElement(parent, es("OperatorEvseStatus"))
	serialization.AddText(el, es("OperatorID"), o.OperatorID.String())
	serialization.AddText(el, es("OperatorName"), o.OperatorName)
	for _, r := range o.Records {
		r.AppendTo(el)
	}
}

func parseOperatorEVSEStatus(el *etree.Element) (OperatorEVSEStatus, error) {
	operatorID, err := serialization.MapValueOrFail(el, es("OperatorID"), ParseOperatorID)
	if err != nil {
		return OperatorEVSEStatus{}, err
	}
	records, err := parseStatusRecords(el)
	if err != nil {
		return OperatorEVSEStatus{}, err
	}
	return OperatorEVSEStatus{
		OperatorID:   operatorID,
		OperatorName: serialization.ValueOrDefault(el, es("OperatorName"), ""),
		Records:      records,
	}, nil
}

func parseStatusRecords(el *etree.Element) ([]EVSEStatusRecord, error) {
	return serialization.MapElementsKeyed(el, es("EvseStatusRecord"), ParseEVSEStatusRecord,
		func(r *etree.Element) string { return serialization.ValueOrDefault(r, es("EvseId"), "") })
}
