package oicp

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

var testSerializer = serialization.NewSerializer(0)

// roundTrip 元素树写为字节后重新解析，模拟线上传输
func roundTrip(t *testing.T, el *etree.Element) *etree.Element {
	t.Helper()
	data, err := testSerializer.Marshal(el)
	require.NoError(t, err)
	root, err := testSerializer.Unmarshal(data)
	require.NoError(t, err)
	return root
}

// parseDoc 解析测试用XML文本
func parseDoc(t *testing.T, xml string) *etree.Element {
	t.Helper()
	root, err := testSerializer.Unmarshal([]byte(xml))
	require.NoError(t, err)
	return root
}

// 测试文档中使用的命名空间声明
const (
	xmlnsCommon  = `xmlns:CommonTypes="http://www.hubject.com/b2b/services/commontypes/v2.0"`
	xmlnsData    = `xmlns:EVSEData="http://www.hubject.com/b2b/services/evsedata/v2.0"`
	xmlnsStatus  = `xmlns:EVSEStatus="http://www.hubject.com/b2b/services/evsestatus/v2.0"`
	xmlnsAuth    = `xmlns:Authorization="http://www.hubject.com/b2b/services/authorization/v2.0"`
	xmlnsPricing = `xmlns:DynamicPricing="http://www.hubject.com/b2b/services/dynamicpricing/v1.0"`
)

var (
	testProvider = ProviderID("DE-GDF")
	testOperator = OperatorID("DE*GEF")
	testEVSE     = EVSEID("DE*GEF*E1234567*A*1")
	testEVCO     = EVCOID("DE-GDF-C12345678-X")
	testSession  = SessionID("8a2f6bb9-3d4e-4c0b-9a5e-7c1d2e3f4a5b")
	testTime     = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
)

func ptr[T any](v T) *T {
	return &v
}
