package serialization

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// TimeLayout 出站时间格式，入站同样接受不带小数秒的形式
const TimeLayout = time.RFC3339Nano

// NewRoot 创建根元素并声明其命名空间及附加命名空间
func NewRoot(name QName, declare ...Namespace) *etree.Element {
	root := etree.NewElement(name.Tag())
	DeclareNamespace(root, name.NS)
	for _, ns := range declare {
		DeclareNamespace(root, ns)
	}
	return root
}

// DeclareNamespace 在元素上声明命名空间（已声明则跳过）
func DeclareNamespace(el *etree.Element, ns Namespace) {
	if ns.URI == "" {
		return
	}
	if ns.Prefix == "" {
		if el.SelectAttr("xmlns") == nil {
			el.CreateAttr("xmlns", ns.URI)
		}
		return
	}
	if el.SelectAttr("xmlns:"+ns.Prefix) == nil {
		el.CreateAttr("xmlns:"+ns.Prefix, ns.URI)
	}
}

// AddElement 追加子元素；前缀在祖先中不可解析时在该元素上声明
func AddElement(parent *etree.Element, name QName) *etree.Element {
	child := parent.CreateElement(name.Tag())
	if name.NS.URI != "" && !prefixDeclared(parent, name.NS.Prefix) {
		DeclareNamespace(child, name.NS)
	}
	return child
}

// AddText 追加文本子元素
func AddText(parent *etree.Element, name QName, value string) *etree.Element {
	child := AddElement(parent, name)
	child.SetText(value)
	return child
}

// AddOptional 值非nil时追加文本子元素，否则完全省略
func AddOptional[T any](parent *etree.Element, name QName, value *T, format func(T) string) {
	if value == nil {
		return
	}
	AddText(parent, name, format(*value))
}

// AddValues 按输入顺序追加重复文本子元素
func AddValues[T any](parent *etree.Element, name QName, values []T, format func(T) string) {
	for _, v := range values {
		AddText(parent, name, format(v))
	}
}

// FormatFloat 与区域设置无关的小数格式（'.' 小数点，最短精确表示）
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat 与区域设置无关的小数解析。仅接受 [+-]digits[.digits]，
// 拒绝 NaN、Inf、指数与进制前缀
func ParseFloat(s string) (float64, error) {
	if !isPlainDecimal(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

func isPlainDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasFrac || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatBool 协议布尔字面量
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// IsTrue 仅字面量 "true" 为真
func IsTrue(s string) bool {
	return s == "true"
}

// IsNotFalse 仅字面量 "false" 为假（缺省为真的字段使用）
func IsNotFalse(s string) bool {
	return s != "false"
}

// ParseLiteralBool 供 Map* 组合子使用的 IsTrue，永不失败
func ParseLiteralBool(s string) (bool, error) {
	return IsTrue(s), nil
}

// FormatTime 时间格式化
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime 时间解析
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// FormatInt 整数格式化
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// ParseInt 与区域设置无关的整数解析
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// Identity 原样返回字符串
func Identity(s string) string {
	return s
}

// ParseString 原样接受字符串
func ParseString(s string) (string, error) {
	return s, nil
}

func prefixDeclared(el *etree.Element, prefix string) bool {
	key := "xmlns"
	if prefix != "" {
		key = "xmlns:" + prefix
	}
	for e := el; e != nil; e = e.Parent() {
		if e.SelectAttr(key) != nil {
			return true
		}
	}
	return false
}
