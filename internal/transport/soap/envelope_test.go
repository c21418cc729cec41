package soap

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/domain/oicp"
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	ack := oicp.AckSuccess[oicp.AuthorizeRemoteStopRequest](nil)

	data, err := Marshal(ack.ToXML())
	require.NoError(t, err)
	assert.Contains(t, string(data), `xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"`)

	payload, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, serialization.Matches(payload, oicp.RootAcknowledgement))

	parsed, err := oicp.ParseAcknowledgement[oicp.AuthorizeRemoteStopRequest](payload, nil)
	require.NoError(t, err)
	assert.True(t, parsed.IsSuccessful())
}

func TestWrap_Header(t *testing.T) {
	header := etree.NewElement("Token")
	header.SetText("abc")
	doc := Wrap(oicp.SuccessStatus().ToXML(), header)

	hdr := doc.FindElement("//Header/Token")
	require.NotNil(t, hdr)
	assert.Equal(t, "abc", hdr.Text())
}

func TestMarshal_NilPayload(t *testing.T) {
	_, err := Marshal(nil)
	var codec serialization.SerializationError
	assert.True(t, errors.As(err, &codec))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "malformed xml",
			input: "<soapenv:Envelope",
			check: func(t *testing.T, err error) {
				var codec serialization.SerializationError
				assert.True(t, errors.As(err, &codec))
			},
		},
		{
			name:  "not an envelope",
			input: `<Foo xmlns="urn:x"/>`,
			check: func(t *testing.T, err error) {
				var structure serialization.StructureError
				require.True(t, errors.As(err, &structure))
				assert.Equal(t, "{urn:x}Foo", structure.Found)
			},
		},
		{
			name:  "missing body",
			input: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"/>`,
			check: func(t *testing.T, err error) {
				var missing serialization.MissingFieldError
				assert.True(t, errors.As(err, &missing))
			},
		},
		{
			name:  "empty body",
			input: `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body/></soapenv:Envelope>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyBody)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Parse([]byte(tt.input))
			assert.Nil(t, payload)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestParse_Fault11(t *testing.T) {
	fault := &Fault{Code: "soapenv:Server", String: "internal error", Actor: "hub"}
	data, err := Marshal(fault.ToXML())
	require.NoError(t, err)

	_, err = Parse(data)
	var got *Fault
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "soapenv:Server", got.Code)
	assert.Equal(t, "internal error", got.String)
	assert.Equal(t, "hub", got.Actor)
	assert.Contains(t, got.Error(), "internal error")
}

func TestParse_Fault12(t *testing.T) {
	input := `<env:Envelope xmlns:env="http://www.w3.org/2003/05/soap-envelope">
  <env:Body>
    <env:Fault>
      <env:Code><env:Value>env:Receiver</env:Value></env:Code>
      <env:Reason><env:Text>timeout</env:Text></env:Reason>
    </env:Fault>
  </env:Body>
</env:Envelope>`

	_, err := Parse([]byte(input))
	var got *Fault
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "env:Receiver", got.Code)
	assert.Equal(t, "timeout", got.String)
}

func TestParse_PayloadKeepsNamespaces(t *testing.T) {
	// 负载的命名空间声明在信封上
	input := `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" xmlns:CommonTypes="http://www.hubject.com/b2b/services/commontypes/v2.0">
  <s:Header/>
  <s:Body>
    <CommonTypes:eRoamingAcknowledgement>
      <CommonTypes:Result>false</CommonTypes:Result>
      <CommonTypes:StatusCode><CommonTypes:Code>400</CommonTypes:Code></CommonTypes:StatusCode>
    </CommonTypes:eRoamingAcknowledgement>
  </s:Body>
</s:Envelope>`

	payload, err := Parse([]byte(input))
	require.NoError(t, err)
	ack, err := oicp.ParseAcknowledgement[oicp.AuthorizeRemoteStartRequest](payload, nil)
	require.NoError(t, err)
	assert.False(t, ack.Result)
	assert.Equal(t, oicp.StatusCodes(400), ack.StatusCode.Code)
}
