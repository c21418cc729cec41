package serialization

import "fmt"

// Namespace XML命名空间（输出前缀 + URI）
type Namespace struct {
	Prefix string
	URI    string
}

// Name 在该命名空间下构造限定名
func (ns Namespace) Name(local string) QName {
	return QName{NS: ns, Local: local}
}

// QName 限定名。匹配只比较命名空间URI和本地名，前缀仅用于输出
type QName struct {
	NS    Namespace
	Local string
}

// String 返回 "Prefix:Local" 形式，便于诊断
func (q QName) String() string {
	if q.NS.Prefix == "" {
		return q.Local
	}
	return q.NS.Prefix + ":" + q.Local
}

// Tag etree使用的带前缀标签
func (q QName) Tag() string {
	return q.String()
}

// Expanded 返回 "{uri}local" 形式
func (q QName) Expanded() string {
	return fmt.Sprintf("{%s}%s", q.NS.URI, q.Local)
}

// IsZero 是否为空名
func (q QName) IsZero() bool {
	return q.Local == ""
}
