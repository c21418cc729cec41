package serialization

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNS   = Namespace{Prefix: "T", URI: "urn:test:v1"}
	commonNS = Namespace{Prefix: "C", URI: "urn:common:v1"}
)

func TestNewSerializer(t *testing.T) {
	serializer := NewSerializer(2)
	assert.NotNil(t, serializer)
	assert.Equal(t, 2, serializer.indent)
}

func TestSerializer_MarshalUnmarshal(t *testing.T) {
	serializer := NewSerializer(0)

	root := NewRoot(testNS.Name("Request"), commonNS)
	AddText(root, testNS.Name("ProviderID"), "DE-GDF")
	status := AddElement(root, commonNS.Name("StatusCode"))
	AddText(status, commonNS.Name("Code"), "000")

	data, err := serializer.Marshal(root)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(data), `xmlns:T="urn:test:v1"`)

	// 入参不被修改
	assert.Nil(t, root.Parent())

	parsed, err := serializer.Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, ExpectRoot(parsed, testNS.Name("Request")))

	provider, err := ValueOrFail(parsed, testNS.Name("ProviderID"))
	require.NoError(t, err)
	assert.Equal(t, "DE-GDF", provider)

	code, err := ValueOrFail(Child(parsed, commonNS.Name("StatusCode")), commonNS.Name("Code"))
	require.NoError(t, err)
	assert.Equal(t, "000", code)
}

func TestSerializer_Errors(t *testing.T) {
	serializer := NewSerializer(0)

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "marshal nil root",
			run: func() error {
				_, err := serializer.Marshal(nil)
				return err
			},
		},
		{
			name: "unmarshal invalid XML",
			run: func() error {
				_, err := serializer.Unmarshal([]byte("<a><b></a>"))
				return err
			},
		},
		{
			name: "unmarshal empty document",
			run: func() error {
				_, err := serializer.Unmarshal([]byte(""))
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			var serErr SerializationError
			assert.True(t, errors.As(err, &serErr))
		})
	}
}

func TestSerializer_PrettyPrint(t *testing.T) {
	serializer := NewSerializer(0)
	data, err := serializer.PrettyPrint([]byte(`<a xmlns="urn:x"><b>1</b></a>`))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  <b>1</b>")
}

func TestExpectRoot(t *testing.T) {
	root := NewRoot(testNS.Name("Response"))

	assert.NoError(t, ExpectRoot(root, testNS.Name("Response")))

	err := ExpectRoot(root, testNS.Name("Other"))
	var structErr StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, "Other", structErr.Expected.Local)
	assert.Contains(t, err.Error(), "missing expected root")

	// 同名但命名空间不同
	err = ExpectRoot(root, commonNS.Name("Response"))
	assert.Error(t, err)

	err = ExpectRoot(nil, testNS.Name("Response"))
	assert.Error(t, err)
}

func TestMapValueOrFail(t *testing.T) {
	root := NewRoot(testNS.Name("R"))
	AddText(root, testNS.Name("Count"), "42")
	AddText(root, testNS.Name("Bad"), "4x2")

	v, err := MapValueOrFail(root, testNS.Name("Count"), strconv.Atoi)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = MapValueOrFail(root, testNS.Name("Missing"), strconv.Atoi)
	var missingErr MissingFieldError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, "Missing", missingErr.Field.Local)
	assert.Equal(t, "R", missingErr.Parent.Local)

	_, err = MapValueOrFail(root, testNS.Name("Bad"), strconv.Atoi)
	var invalidErr InvalidFieldError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "4x2", invalidErr.Value)
}

func TestMapOptional_Modes(t *testing.T) {
	root := NewRoot(testNS.Name("R"))
	AddText(root, testNS.Name("MaxCapacity"), "n/a")
	AddText(root, testNS.Name("Good"), "11.5")

	v, err := MapOptional(root, testNS.Name("MaxCapacity"), ParseFloat, Lenient)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = MapOptional(root, testNS.Name("MaxCapacity"), ParseFloat, Strict)
	assert.Error(t, err)

	v, err = MapOptional(root, testNS.Name("Good"), ParseFloat, Strict)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 11.5, *v)

	v, err = MapOptional(root, testNS.Name("Absent"), ParseFloat, Strict)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMapElements_ReportsIndex(t *testing.T) {
	root := NewRoot(testNS.Name("List"))
	for _, s := range []string{"1", "2", "x"} {
		item := AddElement(root, testNS.Name("Item"))
		AddText(item, testNS.Name("Value"), s)
		AddText(item, testNS.Name("Key"), "key-"+s)
	}

	parse := func(el *etree.Element) (int, error) {
		return MapValueOrFail(el, testNS.Name("Value"), strconv.Atoi)
	}
	key := func(el *etree.Element) string {
		return ValueOrDefault(el, testNS.Name("Key"), "")
	}

	_, err := MapElementsKeyed(root, testNS.Name("Item"), parse, key)
	var structErr StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, 2, structErr.Index)
	assert.Equal(t, "key-x", structErr.Key)

	var invalidErr InvalidFieldError
	assert.True(t, errors.As(err, &invalidErr))
}

func TestMapValuesLenient(t *testing.T) {
	root := NewRoot(testNS.Name("List"))
	AddValues(root, testNS.Name("N"), []string{"1", "zwei", "3"}, Identity)

	values, err := MapValuesLenient(root, testNS.Name("N"), strconv.Atoi, Lenient)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, values)

	_, err = MapValuesLenient(root, testNS.Name("N"), strconv.Atoi, Strict)
	assert.Error(t, err)
}

func TestAddElement_DeclaresUnresolvedPrefix(t *testing.T) {
	root := etree.NewElement("Detached")
	child := AddElement(root, commonNS.Name("StatusCode"))
	assert.Equal(t, commonNS.URI, child.NamespaceURI())

	nested := AddElement(child, commonNS.Name("Code"))
	assert.Nil(t, nested.SelectAttr("xmlns:C"))
	assert.Equal(t, commonNS.URI, nested.NamespaceURI())
}

func TestFormatFloat_Invariant(t *testing.T) {
	assert.Equal(t, "1.23", FormatFloat(1.23))
	assert.Equal(t, "50", FormatFloat(50))
	assert.Equal(t, "-0.000125", FormatFloat(-0.000125))

	v, err := ParseFloat("8.6833")
	require.NoError(t, err)
	assert.Equal(t, 8.6833, v)

	_, err = ParseFloat("8,6833")
	assert.Error(t, err)
}

func TestParseFloat_PlainDecimalOnly(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.5", 1.5, true},
		{"-3", -3, true},
		{"+35", 35, true},
		{"0.000", 0, true},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"+Inf", 0, false},
		{"-Infinity", 0, false},
		{"0x1p3", 0, false},
		{"1e3", 0, false},
		{"1_000", 0, false},
		{".5", 0, false},
		{"5.", 0, false},
		{"-", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseFloat(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, strconv.ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestBoolTokens(t *testing.T) {
	assert.True(t, IsTrue("true"))
	assert.False(t, IsTrue("True"))
	assert.False(t, IsTrue(""))
	assert.True(t, IsNotFalse(""))
	assert.False(t, IsNotFalse("false"))

	for _, token := range []string{"TRUE", "1", "yes", ""} {
		v, err := ParseLiteralBool(token)
		require.NoError(t, err)
		assert.False(t, v, token)
	}
	v, err := ParseLiteralBool("true")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	parsed, err := ParseTime(FormatTime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	parsed, err = ParseTime("2024-03-01T10:30:00+01:00")
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
}
