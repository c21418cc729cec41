package oicp

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
	"github.com/charging-platform/oicp-gateway/internal/domain/validation"
)

// fixedMeta 让构造与解析得到相同的关联信息，便于整体比较
var fixedMeta = []RequestOption{WithEventTrackingID("track-1"), WithTimestamp(testTime)}

func TestRequests_RoundTrip(t *testing.T) {
	center, err := NewGeoCoordinates(52.52, 13.405)
	require.NoError(t, err)

	pullData, err := NewPullEVSEDataRequest(testProvider, fixedMeta...)
	require.NoError(t, err)
	pullStatus, err := NewPullEVSEStatusRequest(testProvider, fixedMeta...)
	require.NoError(t, err)
	byID, err := NewPullEVSEStatusByIDRequest(testProvider, []EVSEID{testEVSE, "DE*GEF*E7654321"}, fixedMeta...)
	require.NoError(t, err)
	byOperator, err := NewPullEVSEStatusByOperatorIDRequest(testProvider, []OperatorID{testOperator, "+49*822"}, fixedMeta...)
	require.NoError(t, err)
	products, err := NewPullPricingProductDataRequest(testProvider, []OperatorID{testOperator}, fixedMeta...)
	require.NoError(t, err)
	evsePricing, err := NewPullEVSEPricingRequest(testProvider, []OperatorID{testOperator}, fixedMeta...)
	require.NoError(t, err)
	push, err := NewPushAuthenticationDataRequest(testProvider, ActionFullLoad, []Identification{
		RFIDMifareFamilyIdentification{UID: "1234ABCD"},
		QRCodeIdentification{EVCOID: testEVCO, PIN: ptr("0000")},
	}, fixedMeta...)
	require.NoError(t, err)
	start, err := NewAuthorizeRemoteStartRequest(testProvider, testEVSE, RemoteIdentification{EVCOID: testEVCO}, fixedMeta...)
	require.NoError(t, err)
	stop, err := NewAuthorizeRemoteStopRequest(testSession, testProvider, testEVSE, fixedMeta...)
	require.NoError(t, err)
	reserve, err := NewAuthorizeRemoteReservationStartRequest(testProvider, testEVSE, PlugAndChargeIdentification{EVCOID: testEVCO}, fixedMeta...)
	require.NoError(t, err)
	cancel, err := NewAuthorizeRemoteReservationStopRequest(testSession, testProvider, testEVSE, fixedMeta...)
	require.NoError(t, err)
	cdrs, err := NewGetChargeDetailRecordsRequest(testProvider, testTime, testTime.Add(24*time.Hour), fixedMeta...)
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   Request
		parse func(*etree.Element) (Request, error)
	}{
		{
			name: "PullEVSEData",
			req:  pullData.WithSearchCenter(center, 10).WithLastCall(testTime).WithGeoCoordinatesResponseFormat(GeoFormatGoogle),
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullEVSEDataRequest(el, fixedMeta...)
			},
		},
		{
			name: "PullEVSEStatus",
			req:  pullStatus.WithSearchCenter(center, 2.5).WithStatusFilter(EVSEStatusAvailable),
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullEVSEStatusRequest(el, fixedMeta...)
			},
		},
		{
			name: "PullEVSEStatusById",
			req:  byID,
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullEVSEStatusByIDRequest(el, fixedMeta...)
			},
		},
		{
			name: "PullEVSEStatusByOperatorId",
			req:  byOperator,
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullEVSEStatusByOperatorIDRequest(el, fixedMeta...)
			},
		},
		{
			name: "PullPricingProductData",
			req:  products.WithLastCall(testTime),
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullPricingProductDataRequest(el, fixedMeta...)
			},
		},
		{
			name: "PullEVSEPricing",
			req:  evsePricing,
			parse: func(el *etree.Element) (Request, error) {
				return ParsePullEVSEPricingRequest(el, fixedMeta...)
			},
		},
		{
			name: "PushAuthenticationData",
			req:  push,
			parse: func(el *etree.Element) (Request, error) {
				return ParsePushAuthenticationDataRequest(el, fixedMeta...)
			},
		},
		{
			name: "AuthorizeRemoteStart",
			req:  start.WithSessionID(testSession).WithEMPPartnerSessionID("emp-7").WithPartnerProductID("AC1"),
			parse: func(el *etree.Element) (Request, error) {
				return ParseAuthorizeRemoteStartRequest(el, fixedMeta...)
			},
		},
		{
			name: "AuthorizeRemoteStop",
			req:  stop.WithCPOPartnerSessionID("cpo-7"),
			parse: func(el *etree.Element) (Request, error) {
				return ParseAuthorizeRemoteStopRequest(el, fixedMeta...)
			},
		},
		{
			name: "AuthorizeRemoteReservationStart",
			req:  reserve.WithDuration(15*time.Minute + 30*time.Second),
			parse: func(el *etree.Element) (Request, error) {
				return ParseAuthorizeRemoteReservationStartRequest(el, fixedMeta...)
			},
		},
		{
			name: "AuthorizeRemoteReservationStop",
			req:  cancel,
			parse: func(el *etree.Element) (Request, error) {
				return ParseAuthorizeRemoteReservationStopRequest(el, fixedMeta...)
			},
		},
		{
			name: "GetChargeDetailRecords",
			req: cdrs.WithSessionIDs(testSession).WithOperatorIDs(testOperator).WithCDRForwarded(false).
				WithPage(2, 50).WithSortOrder(SortDescending),
			parse: func(el *etree.Element) (Request, error) {
				return ParseGetChargeDetailRecordsRequest(el, fixedMeta...)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.req.Validate())
			parsed, err := tt.parse(roundTrip(t, tt.req.ToXML()))
			require.NoError(t, err)
			assert.Equal(t, tt.req, parsed)
			assert.Equal(t, tt.req.Operation(), parsed.Operation())
		})
	}
}

func TestNewRequest_GeneratesMeta(t *testing.T) {
	req, err := NewPullEVSEStatusByIDRequest(testProvider, []EVSEID{testEVSE})
	require.NoError(t, err)
	meta := req.Meta()
	assert.True(t, meta.EventTrackingID.IsValid())
	assert.False(t, meta.Timestamp.IsZero())
	assert.Equal(t, DefaultRequestTimeout, meta.RequestTimeout)

	other, err := NewPullEVSEStatusByIDRequest(testProvider, []EVSEID{testEVSE}, WithRequestTimeout(30*time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, meta.EventTrackingID, other.Meta().EventTrackingID)
	assert.Equal(t, 30*time.Second, other.Meta().RequestTimeout)
}

func TestNewRequest_ValidationErrors(t *testing.T) {
	tooMany := make([]EVSEID, 101)
	for i := range tooMany {
		tooMany[i] = testEVSE
	}

	tests := []struct {
		name  string
		build func() error
		op    Operation
	}{
		{
			name: "empty EVSE id list",
			build: func() error {
				_, err := NewPullEVSEStatusByIDRequest(testProvider, nil)
				return err
			},
			op: OperationPullEVSEStatusByID,
		},
		{
			name: "more than 100 EVSE ids",
			build: func() error {
				_, err := NewPullEVSEStatusByIDRequest(testProvider, tooMany)
				return err
			},
			op: OperationPullEVSEStatusByID,
		},
		{
			name: "non canonical EVSE id",
			build: func() error {
				_, err := NewPullEVSEStatusByIDRequest(testProvider, []EVSEID{"degefe1"})
				return err
			},
			op: OperationPullEVSEStatusByID,
		},
		{
			name: "missing provider",
			build: func() error {
				_, err := NewPullEVSEDataRequest("")
				return err
			},
			op: OperationPullEVSEData,
		},
		{
			name: "empty operator list",
			build: func() error {
				_, err := NewPullPricingProductDataRequest(testProvider, nil)
				return err
			},
			op: OperationPullPricingProductData,
		},
		{
			name: "missing identification",
			build: func() error {
				_, err := NewAuthorizeRemoteStartRequest(testProvider, testEVSE, nil)
				return err
			},
			op: OperationAuthorizeRemoteStart,
		},
		{
			name: "invalid session id",
			build: func() error {
				_, err := NewAuthorizeRemoteStopRequest("not-a-uuid", testProvider, testEVSE)
				return err
			},
			op: OperationAuthorizeRemoteStop,
		},
		{
			name: "zero time window",
			build: func() error {
				_, err := NewGetChargeDetailRecordsRequest(testProvider, time.Time{}, testTime)
				return err
			},
			op: OperationGetChargeDetailRecords,
		},
		{
			name: "nil pushed identification",
			build: func() error {
				_, err := NewPushAuthenticationDataRequest(testProvider, ActionUpdate, []Identification{nil})
				return err
			},
			op: OperationPushAuthenticationData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.op, ve.Operation)
		})
	}
}

func TestNewRequest_ValidationErrorCarriesFields(t *testing.T) {
	_, err := NewPullEVSEStatusByIDRequest(testProvider, nil)
	var fields validation.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, []string{"EVSEIDs"}, fields.Fields())
}

func TestNewRequest_SearchCenterOutOfRange(t *testing.T) {
	req, err := NewPullEVSEDataRequest(testProvider)
	require.NoError(t, err)
	bad := req.WithSearchCenter(GeoCoordinates{Latitude: 120, Longitude: 0}, 5)

	var ve ValidationError
	require.ErrorAs(t, bad.Validate(), &ve)
}

func TestSearchCenter_EmittedOnlyWhenComplete(t *testing.T) {
	req, err := NewPullEVSEStatusRequest(testProvider)
	require.NoError(t, err)
	center, err := NewGeoCoordinates(52.52, 13.405)
	require.NoError(t, err)

	assert.Nil(t, serialization.Child(req.ToXML(), es("SearchCenter")))

	partial := req
	partial.SearchCenter = &center
	assert.Nil(t, serialization.Child(partial.ToXML(), es("SearchCenter")))

	full := req.WithSearchCenter(center, 3)
	group := serialization.Child(full.ToXML(), es("SearchCenter"))
	require.NotNil(t, group)
	assert.Equal(t, "3", serialization.Text(serialization.Child(group, ct("Radius"))))
}

func TestGetChargeDetailRecords_PaginationIsTrailing(t *testing.T) {
	req, err := NewGetChargeDetailRecordsRequest(testProvider, testTime, testTime.Add(time.Hour))
	require.NoError(t, err)
	el := req.WithOperatorIDs(testOperator).WithPage(0, 100).WithSortOrder(SortAscending).ToXML()

	var names []string
	for _, child := range el.ChildElements() {
		names = append(names, child.Tag)
	}
	assert.Equal(t, []string{"ProviderID", "From", "To", "OperatorID", "Page", "Size", "SortOrder"}, names)

	var ve ValidationError
	require.ErrorAs(t, req.WithPage(0, 5000).Validate(), &ve)
}

func TestParseGetChargeDetailRecordsRequest_CDRForwardedTokens(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"TRUE", false},
		{"1", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			root := parseDoc(t, `<Authorization:eRoamingGetChargeDetailRecords `+xmlnsAuth+`>
				<Authorization:ProviderID>DE-GDF</Authorization:ProviderID>
				<Authorization:From>2024-03-01T10:30:00Z</Authorization:From>
				<Authorization:To>2024-03-02T10:30:00Z</Authorization:To>
				<Authorization:CDRForwarded>`+tt.token+`</Authorization:CDRForwarded>
			</Authorization:eRoamingGetChargeDetailRecords>`)

			req, err := ParseGetChargeDetailRecordsRequest(root)
			require.NoError(t, err)
			require.NotNil(t, req.CDRForwarded)
			assert.Equal(t, tt.want, *req.CDRForwarded)
		})
	}
}

func TestReservationDuration_InMinutes(t *testing.T) {
	req, err := NewAuthorizeRemoteReservationStartRequest(testProvider, testEVSE, RemoteIdentification{EVCOID: testEVCO})
	require.NoError(t, err)
	el := req.WithDuration(90 * time.Minute).ToXML()
	assert.Equal(t, "90", serialization.Text(serialization.Child(el, rs("Duration"))))
}

func TestParseCommandRequest_ReturnsPartialOnError(t *testing.T) {
	root := parseDoc(t, `<Authorization:eRoamingAuthorizeRemoteStart `+xmlnsAuth+` `+xmlnsCommon+`>
		<Authorization:SessionID>`+string(testSession)+`</Authorization:SessionID>
		<Authorization:ProviderID>DE-GDF</Authorization:ProviderID>
		<Authorization:EvseID>not an evse</Authorization:EvseID>
	</Authorization:eRoamingAuthorizeRemoteStart>`)

	req, err := ParseAuthorizeRemoteStartRequest(root)
	var invalid serialization.InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, az("EvseID"), invalid.Field)
	require.NotNil(t, req.SessionID)
	assert.Equal(t, testSession, *req.SessionID)
	assert.Equal(t, testProvider, req.ProviderID)
}

func TestParseRequest_WrongRoot(t *testing.T) {
	stop, err := NewAuthorizeRemoteStopRequest(testSession, testProvider, testEVSE)
	require.NoError(t, err)

	_, err = ParseAuthorizeRemoteStartRequest(roundTrip(t, stop.ToXML()))
	var structure serialization.StructureError
	require.ErrorAs(t, err, &structure)
	assert.Equal(t, RootAuthorizeRemoteStart, structure.Expected)
	assert.Contains(t, structure.Found, "eRoamingAuthorizeRemoteStop")
}

// 按EVSE标识拉取状态，返回一条 Available 记录
func TestPullEVSEStatusByID_SingleAvailable(t *testing.T) {
	req, err := NewPullEVSEStatusByIDRequest(testProvider, []EVSEID{MustParseEVSEID("DE*GEF*E1234567*A*1")})
	require.NoError(t, err)

	root := parseDoc(t, `<EVSEStatus:eRoamingEvseStatusById `+xmlnsStatus+` `+xmlnsCommon+`>
		<EVSEStatus:EvseStatusRecords>
			<EVSEStatus:EvseStatusRecord>
				<EVSEStatus:EvseId>DE*GEF*E1234567*A*1</EVSEStatus:EvseId>
				<EVSEStatus:EvseStatus>Available</EVSEStatus:EvseStatus>
			</EVSEStatus:EvseStatusRecord>
		</EVSEStatus:EvseStatusRecords>
		<CommonTypes:StatusCode><CommonTypes:Code>000</CommonTypes:Code></CommonTypes:StatusCode>
	</EVSEStatus:eRoamingEvseStatusById>`)

	processID := NewProcessID()
	resp, err := ParsePullEVSEStatusByIDResponse(root, &req, WithResponseMeta(ResponseMeta{ProcessID: processID}))
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, EVSEStatusRecord{EVSEID: testEVSE, Status: EVSEStatusAvailable}, resp.Records[0])
	assert.True(t, resp.StatusCode.IsSuccess())
	assert.Same(t, &req, resp.Request)
	assert.Equal(t, processID, resp.Meta.ProcessID)
	assert.Equal(t, req.Meta().EventTrackingID, resp.Meta.EventTrackingID)
}

func TestPullEVSEStatus_RoundTripAndFlatten(t *testing.T) {
	resp := PullEVSEStatusResponse{
		Operators: []OperatorEVSEStatus{
			{OperatorID: testOperator, OperatorName: "GEF", Records: []EVSEStatusRecord{
				{EVSEID: testEVSE, Status: EVSEStatusOccupied},
				{EVSEID: "DE*GEF*E2", Status: EVSEStatusOutOfService},
			}},
			{OperatorID: "+49*822", OperatorName: "DIN Operator", Records: []EVSEStatusRecord{
				{EVSEID: "+49*822*4201*1", Status: EVSEStatusUnknown},
			}},
		},
		StatusCode: SuccessStatus(),
	}

	parsed, err := ParsePullEVSEStatusResponse(roundTrip(t, resp.ToXML()), nil)
	require.NoError(t, err)
	assert.Equal(t, resp.Operators, parsed.Operators)
	assert.Len(t, parsed.Records(), 3)
	assert.Equal(t, EVSEStatusUnknown, parsed.Records()[2].Status)

	byOperator, err := ParsePullEVSEStatusByOperatorIDResponse(roundTrip(t, resp.ToXML()), nil)
	require.NoError(t, err)
	assert.Equal(t, resp.Operators, byOperator.Operators)
}

// CDR 查询：电表读数与耗电量
func TestGetChargeDetailRecords_MeterReadings(t *testing.T) {
	req, err := NewGetChargeDetailRecordsRequest(testProvider, testTime, testTime.Add(24*time.Hour))
	require.NoError(t, err)

	resp := GetChargeDetailRecordsResponse{
		ChargeDetailRecords: []ChargeDetailRecord{sampleCDR(testSession)},
		StatusCode:          SuccessStatus(),
	}

	parsed, err := ParseGetChargeDetailRecordsResponse(roundTrip(t, resp.ToXML()), &req)
	require.NoError(t, err)
	require.Len(t, parsed.ChargeDetailRecords, 1)
	cdr := parsed.ChargeDetailRecords[0]
	assert.Equal(t, 35.0, cdr.ConsumedEnergy)
	assert.Equal(t, 3.0, *cdr.MeterValueStart)
	assert.Equal(t, 38.0, *cdr.MeterValueEnd)
	assert.Equal(t, []float64{4, 5, 6}, cdr.MeterValuesInBetween)
}

// 计价产品：默认价格与 09:00-18:00 每日可用时段
func TestPullPricingProductData_Document(t *testing.T) {
	req, err := NewPullPricingProductDataRequest(testProvider, []OperatorID{testOperator})
	require.NoError(t, err)

	root := parseDoc(t, `<DynamicPricing:eRoamingPricingProductData `+xmlnsPricing+` `+xmlnsCommon+`>
		<DynamicPricing:PricingProductData>
			<DynamicPricing:OperatorID>DE*GEF</DynamicPricing:OperatorID>
			<DynamicPricing:ProviderID>DE-GDF</DynamicPricing:ProviderID>
			<DynamicPricing:PricingDefaultPrice>1.23</DynamicPricing:PricingDefaultPrice>
			<DynamicPricing:PricingDefaultPriceCurrency>EUR</DynamicPricing:PricingDefaultPriceCurrency>
			<DynamicPricing:PricingDefaultReferenceUnit>HOUR</DynamicPricing:PricingDefaultReferenceUnit>
			<DynamicPricing:PricingProductDataRecord>
				<DynamicPricing:ProductID>AC1</DynamicPricing:ProductID>
				<DynamicPricing:ReferenceUnit>KILOWATT_HOUR</DynamicPricing:ReferenceUnit>
				<DynamicPricing:ProductPriceCurrency>EUR</DynamicPricing:ProductPriceCurrency>
				<DynamicPricing:PricePerReferenceUnit>1</DynamicPricing:PricePerReferenceUnit>
				<DynamicPricing:MaximumProductChargingPower>22</DynamicPricing:MaximumProductChargingPower>
				<DynamicPricing:IsValid24hours>false</DynamicPricing:IsValid24hours>
				<DynamicPricing:ProductAvailabilityTimes>
					<DynamicPricing:Periods>
						<DynamicPricing:begin>09:00</DynamicPricing:begin>
						<DynamicPricing:end>18:00</DynamicPricing:end>
					</DynamicPricing:Periods>
					<DynamicPricing:on>Everyday</DynamicPricing:on>
				</DynamicPricing:ProductAvailabilityTimes>
			</DynamicPricing:PricingProductDataRecord>
		</DynamicPricing:PricingProductData>
	</DynamicPricing:eRoamingPricingProductData>`)

	resp, err := ParsePullPricingProductDataResponse(root, &req)
	require.NoError(t, err)
	// 缺少 StatusCode 时视为成功
	assert.True(t, resp.StatusCode.IsSuccess())
	require.Len(t, resp.PricingProductData, 1)

	data := resp.PricingProductData[0]
	assert.Equal(t, 1.23, data.PricingDefaultPrice)
	assert.Nil(t, data.OperatorName)
	require.Len(t, data.Records, 1)
	record := data.Records[0]
	assert.Equal(t, PartnerProductID("AC1"), record.ProductID)
	assert.Equal(t, 1.0, record.PricePerReferenceUnit)
	assert.Equal(t, []ProductAvailabilityTime{{Periods: []Period{{Begin: "09:00", End: "18:00"}}, On: Everyday}}, record.ProductAvailabilityTimes)
	assert.Nil(t, record.AdditionalReferences)
}

func TestPullEVSEPricing_RoundTrip(t *testing.T) {
	resp := PullEVSEPricingResponse{
		EVSEPricing: []EVSEPricing{{EVSEID: testEVSE, ProviderID: testProvider, ProductIDs: []PartnerProductID{"AC1", "DC1"}}},
		StatusCode:  SuccessStatus(),
	}
	parsed, err := ParsePullEVSEPricingResponse(roundTrip(t, resp.ToXML()), nil)
	require.NoError(t, err)
	assert.Equal(t, resp.EVSEPricing, parsed.EVSEPricing)
}

func TestPullEVSEData_EmptyResult(t *testing.T) {
	req, err := NewPullEVSEDataRequest(testProvider)
	require.NoError(t, err)

	tests := []struct {
		name string
		xml  string
	}{
		{
			name: "empty EvseData",
			xml: `<EVSEData:eRoamingEvseData ` + xmlnsData + ` ` + xmlnsCommon + `>
				<EVSEData:EvseData/>
				<CommonTypes:StatusCode><CommonTypes:Code>000</CommonTypes:Code></CommonTypes:StatusCode>
			</EVSEData:eRoamingEvseData>`,
		},
		{
			name: "missing EvseData and StatusCode",
			xml:  `<EVSEData:eRoamingEvseData ` + xmlnsData + `/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParsePullEVSEDataResponse(parseDoc(t, tt.xml), &req)
			require.NoError(t, err)
			assert.Empty(t, resp.Operators)
			assert.Empty(t, resp.Records())
			assert.True(t, resp.StatusCode.IsSuccess())
		})
	}

	// 空结果仍输出 EvseData 元素
	out := PullEVSEDataResponse{StatusCode: SuccessStatus()}.ToXML()
	assert.NotNil(t, serialization.Child(out, ed("EvseData")))
}

func TestPullEVSEData_RoundTripAndModes(t *testing.T) {
	record := sampleEVSEDataRecord(t)
	resp := PullEVSEDataResponse{
		Operators:  []OperatorEVSEData{{OperatorID: testOperator, OperatorName: "GEF", Records: []EVSEDataRecord{record}}},
		StatusCode: SuccessStatus(),
	}

	parsed, err := ParsePullEVSEDataResponse(roundTrip(t, resp.ToXML()), nil, WithMode(serialization.Strict))
	require.NoError(t, err)
	assert.Equal(t, resp.Operators, parsed.Operators)

	el := resp.ToXML()
	recordEl := serialization.Child(serialization.Child(serialization.Child(el, ed("EvseData")), ed("OperatorEvseData")), ed("EvseDataRecord"))
	serialization.Child(recordEl, ed("MaxCapacity")).SetText("n/a")

	lenient, err := ParsePullEVSEDataResponse(roundTrip(t, el), nil)
	require.NoError(t, err)
	assert.Nil(t, lenient.Records()[0].MaxCapacity)

	_, err = ParsePullEVSEDataResponse(roundTrip(t, el), nil, WithMode(serialization.Strict))
	var structure serialization.StructureError
	require.ErrorAs(t, err, &structure)
	assert.Equal(t, string(testOperator), structure.Key)
}

func TestAbsentStatusCode_PerOperation(t *testing.T) {
	// 拉取类操作缺少 StatusCode 视为成功
	resp, err := ParsePullEVSEStatusByIDResponse(parseDoc(t,
		`<EVSEStatus:eRoamingEvseStatusById `+xmlnsStatus+`><EVSEStatus:EvseStatusRecords/></EVSEStatus:eRoamingEvseStatusById>`), nil)
	require.NoError(t, err)
	assert.True(t, resp.StatusCode.IsSuccess())
	assert.Empty(t, resp.Records)

	cdrs, err := ParseGetChargeDetailRecordsResponse(parseDoc(t,
		`<Authorization:eRoamingChargeDetailRecords `+xmlnsAuth+`/>`), nil)
	require.NoError(t, err)
	assert.True(t, cdrs.StatusCode.IsSuccess())

	// 命令类应答缺少 StatusCode 时失败
	_, err = ParseAcknowledgement[PushAuthenticationDataRequest](parseDoc(t,
		`<CommonTypes:eRoamingAcknowledgement `+xmlnsCommon+`><CommonTypes:Result>true</CommonTypes:Result></CommonTypes:eRoamingAcknowledgement>`), nil)
	assert.True(t, errors.As(err, new(serialization.MissingFieldError)))
}

func TestSendChargeDetailRecord_Validate(t *testing.T) {
	_, err := NewSendChargeDetailRecordRequest(sampleCDR(testSession))
	require.NoError(t, err)

	missingID := sampleCDR(testSession)
	missingID.Identification = nil
	_, err = NewSendChargeDetailRecordRequest(missingID)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, OperationSendChargeDetailRecord, ve.Operation)

	badEVSE := sampleCDR(testSession)
	badEVSE.EVSEID = "degef"
	_, err = NewSendChargeDetailRecordRequest(badEVSE)
	assert.Error(t, err)
}

func TestOperation_IsCommand(t *testing.T) {
	assert.True(t, OperationAuthorizeRemoteStart.IsCommand())
	assert.True(t, OperationSendChargeDetailRecord.IsCommand())
	assert.False(t, OperationPullEVSEData.IsCommand())
	assert.False(t, OperationGetChargeDetailRecords.IsCommand())
	assert.Len(t, Operations, 13)
}
