package serialization

import (
	"strings"

	"github.com/beevik/etree"
)

// Mode 入站解析模式
type Mode int

const (
	// Lenient 旧版本宽松模式：可选字段存在但无法解析时忽略该字段
	Lenient Mode = iota
	// Strict 严格模式（v2.3）：可选字段无法解析时整个记录失败
	Strict
)

// String 返回模式名称
func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Matches 元素是否具有给定限定名
func Matches(el *etree.Element, name QName) bool {
	if el == nil {
		return false
	}
	return el.Tag == name.Local && el.NamespaceURI() == name.NS.URI
}

// NameOf 返回元素的展开名，用于错误信息
func NameOf(el *etree.Element) string {
	if el == nil {
		return "<nil>"
	}
	return "{" + el.NamespaceURI() + "}" + el.Tag
}

// ExpectRoot 校验根元素名称
func ExpectRoot(el *etree.Element, name QName) error {
	if el == nil {
		return StructureError{Expected: name, Index: -1}
	}
	if !Matches(el, name) {
		return StructureError{Expected: name, Found: NameOf(el), Index: -1}
	}
	return nil
}

// Child 返回第一个匹配的子元素
func Child(el *etree.Element, name QName) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if Matches(c, name) {
			return c
		}
	}
	return nil
}

// Children 返回所有匹配的子元素（文档顺序）
func Children(el *etree.Element, name QName) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if Matches(c, name) {
			out = append(out, c)
		}
	}
	return out
}

// Text 返回去除首尾空白的文本
func Text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// ElementOrFail 必填子元素
func ElementOrFail(el *etree.Element, name QName) (*etree.Element, error) {
	c := Child(el, name)
	if c == nil {
		return nil, missing(el, name)
	}
	return c, nil
}

// ValueOrFail 必填文本字段
func ValueOrFail(el *etree.Element, name QName) (string, error) {
	c, err := ElementOrFail(el, name)
	if err != nil {
		return "", err
	}
	return Text(c), nil
}

// ValueOrDefault 可选文本字段，缺失时返回默认值
func ValueOrDefault(el *etree.Element, name QName, dflt string) string {
	c := Child(el, name)
	if c == nil {
		return dflt
	}
	return Text(c)
}

// OptionalValue 可选文本字段，缺失时返回nil
func OptionalValue(el *etree.Element, name QName) *string {
	c := Child(el, name)
	if c == nil {
		return nil
	}
	v := Text(c)
	return &v
}

// MapValueOrFail 必填字段并转换
func MapValueOrFail[T any](el *etree.Element, name QName, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, err := ValueOrFail(el, name)
	if err != nil {
		return zero, err
	}
	v, err := parse(raw)
	if err != nil {
		return zero, InvalidFieldError{Field: name, Value: raw, Cause: err}
	}
	return v, nil
}

// MapValueOrDefault 可选字段并转换，缺失时返回默认值；存在但无法解析时报错
func MapValueOrDefault[T any](el *etree.Element, name QName, parse func(string) (T, error), dflt T) (T, error) {
	c := Child(el, name)
	if c == nil {
		return dflt, nil
	}
	raw := Text(c)
	v, err := parse(raw)
	if err != nil {
		return dflt, InvalidFieldError{Field: name, Value: raw, Cause: err}
	}
	return v, nil
}

// MapOptional 可选字段并转换。宽松模式下无法解析的值被忽略（返回nil）
func MapOptional[T any](el *etree.Element, name QName, parse func(string) (T, error), mode Mode) (*T, error) {
	c := Child(el, name)
	if c == nil {
		return nil, nil
	}
	raw := Text(c)
	v, err := parse(raw)
	if err != nil {
		if mode == Lenient {
			return nil, nil
		}
		return nil, InvalidFieldError{Field: name, Value: raw, Cause: err}
	}
	return &v, nil
}

// MapElementOrFail 必填复合子元素
func MapElementOrFail[T any](el *etree.Element, name QName, parse func(*etree.Element) (T, error)) (T, error) {
	var zero T
	c, err := ElementOrFail(el, name)
	if err != nil {
		return zero, err
	}
	return parse(c)
}

// MapElementOptional 可选复合子元素
func MapElementOptional[T any](el *etree.Element, name QName, parse func(*etree.Element) (T, error)) (*T, error) {
	c := Child(el, name)
	if c == nil {
		return nil, nil
	}
	v, err := parse(c)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MapElements 重复子元素，保持文档顺序。任一元素失败时返回带下标的 StructureError
func MapElements[T any](el *etree.Element, name QName, parse func(*etree.Element) (T, error)) ([]T, error) {
	return MapElementsKeyed(el, name, parse, nil)
}

// MapElementsKeyed 同 MapElements，失败时用 key 提取业务键用于诊断
func MapElementsKeyed[T any](el *etree.Element, name QName, parse func(*etree.Element) (T, error), key func(*etree.Element) string) ([]T, error) {
	children := Children(el, name)
	var out []T
	for i, c := range children {
		v, err := parse(c)
		if err != nil {
			se := StructureError{Expected: name, Index: i, Cause: err}
			if key != nil {
				se.Key = key(c)
			}
			return nil, se
		}
		out = append(out, v)
	}
	return out, nil
}

// MapElementsLenient 可选的重复子元素；宽松模式下跳过无法解析的元素
func MapElementsLenient[T any](el *etree.Element, name QName, parse func(*etree.Element) (T, error), mode Mode) ([]T, error) {
	if mode == Strict {
		return MapElements(el, name, parse)
	}
	var out []T
	for _, c := range Children(el, name) {
		if v, err := parse(c); err == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// MapValues 重复文本子元素
func MapValues[T any](el *etree.Element, name QName, parse func(string) (T, error)) ([]T, error) {
	children := Children(el, name)
	var out []T
	for _, c := range children {
		raw := Text(c)
		v, err := parse(raw)
		if err != nil {
			return nil, InvalidFieldError{Field: name, Value: raw, Cause: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// MapValuesLenient 重复文本子元素；宽松模式下跳过无法解析的值
func MapValuesLenient[T any](el *etree.Element, name QName, parse func(string) (T, error), mode Mode) ([]T, error) {
	if mode == Strict {
		return MapValues(el, name, parse)
	}
	children := Children(el, name)
	var out []T
	for _, c := range children {
		if v, err := parse(Text(c)); err == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// AttrValue 读取无前缀属性
func AttrValue(el *etree.Element, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return strings.TrimSpace(a.Value), true
}

func missing(parent *etree.Element, name QName) error {
	e := MissingFieldError{Field: name}
	if parent != nil {
		e.Parent = QName{NS: Namespace{Prefix: parent.Space, URI: parent.NamespaceURI()}, Local: parent.Tag}
	}
	return e
}
