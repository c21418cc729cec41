package protocol

import (
	"strings"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// OICP协议版本常量
const (
	OICP_VERSION_2_1 = "2.1"
	OICP_VERSION_2_2 = "2.2"
	OICP_VERSION_2_3 = "2.3"

	// 默认版本
	DEFAULT_VERSION = OICP_VERSION_2_3
)

// 支持的协议版本列表
var SupportedVersions = []string{
	OICP_VERSION_2_1,
	OICP_VERSION_2_2,
	OICP_VERSION_2_3,
}

// 版本映射表 - 处理各种格式的版本号（比较前统一小写）
var VersionMapping = map[string]string{
	"2.1":      OICP_VERSION_2_1,
	"v2.1":     OICP_VERSION_2_1,
	"oicp2.1":  OICP_VERSION_2_1,
	"oicp 2.1": OICP_VERSION_2_1,

	"2.2":      OICP_VERSION_2_2,
	"v2.2":     OICP_VERSION_2_2,
	"oicp2.2":  OICP_VERSION_2_2,
	"oicp 2.2": OICP_VERSION_2_2,

	"2.3":      OICP_VERSION_2_3,
	"v2.3":     OICP_VERSION_2_3,
	"oicp2.3":  OICP_VERSION_2_3,
	"oicp 2.3": OICP_VERSION_2_3,
}

// NormalizeVersion 规范化协议版本，未知版本返回空串
func NormalizeVersion(version string) string {
	if normalized, exists := VersionMapping[strings.ToLower(strings.TrimSpace(version))]; exists {
		return normalized
	}
	return ""
}

// IsVersionSupported 检查版本是否支持
func IsVersionSupported(version string) bool {
	normalized := NormalizeVersion(version)
	if normalized == "" {
		return false
	}

	for _, supported := range SupportedVersions {
		if normalized == supported {
			return true
		}
	}
	return false
}

// GetDefaultVersion 获取默认版本
func GetDefaultVersion() string {
	return DEFAULT_VERSION
}

// GetSupportedVersions 获取支持的版本列表
func GetSupportedVersions() []string {
	// 返回副本，避免外部修改
	result := make([]string, len(SupportedVersions))
	copy(result, SupportedVersions)
	return result
}

// ParseModeFor 版本对应的解析模式：2.3 起严格，旧版本宽松
func ParseModeFor(version string) serialization.Mode {
	if NormalizeVersion(version) == OICP_VERSION_2_3 {
		return serialization.Strict
	}
	return serialization.Lenient
}

// ResolveParseMode 配置中显式开启严格解析时覆盖版本默认值
func ResolveParseMode(version string, strict bool) serialization.Mode {
	if strict {
		return serialization.Strict
	}
	return ParseModeFor(version)
}
