package soap

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// SOAP 1.1 与 1.2 信封命名空间。出站固定使用 1.1，入站两者都接受
var (
	NSEnvelope   = serialization.Namespace{Prefix: "soapenv", URI: "http://schemas.xmlsoap.org/soap/envelope/"}
	NSEnvelope12 = serialization.Namespace{Prefix: "soap12", URI: "http://www.w3.org/2003/05/soap-envelope"}
)

// ErrEmptyBody Body 中没有负载元素
var ErrEmptyBody = errors.New("soap body is empty")

// ContentType 出站请求与应答的 HTTP Content-Type
const ContentType = "text/xml; charset=utf-8"

// Wrap 把负载放入 Envelope/Body，header 非nil时写入 Envelope/Header
func Wrap(payload *etree.Element, header ...*etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := serialization.NewRoot(NSEnvelope.Name("Envelope"))
	doc.SetRoot(env)

	hdr := serialization.AddElement(env, NSEnvelope.Name("Header"))
	for _, h := range header {
		if h != nil {
			hdr.AddChild(h.Copy())
		}
	}
	body := serialization.AddElement(env, NSEnvelope.Name("Body"))
	if payload != nil {
		body.AddChild(payload.Copy())
	}
	return doc
}

// Marshal 生成完整的 SOAP 文档字节
func Marshal(payload *etree.Element, header ...*etree.Element) ([]byte, error) {
	if payload == nil {
		return nil, serialization.SerializationError{Operation: "soap.Marshal", Message: "payload is nil"}
	}
	data, err := Wrap(payload, header...).WriteToBytes()
	if err != nil {
		return nil, serialization.SerializationError{Operation: "soap.Marshal", Message: "failed to write envelope", Cause: err}
	}
	return data, nil
}

// Parse 解析字节并返回 Body 中的负载
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, serialization.SerializationError{Operation: "soap.Parse", Message: "malformed XML", Cause: err}
	}
	return Unwrap(doc)
}

// Unwrap 返回 Body 的第一个子元素。Body 中是 Fault 时返回 *Fault 错误
func Unwrap(doc *etree.Document) (*etree.Element, error) {
	env := doc.Root()
	ns, ok := envelopeNamespace(env)
	if !ok {
		return nil, serialization.StructureError{
			Expected: NSEnvelope.Name("Envelope"),
			Found:    serialization.NameOf(env),
			Index:    -1,
		}
	}
	body, err := serialization.ElementOrFail(env, ns.Name("Body"))
	if err != nil {
		return nil, err
	}
	children := body.ChildElements()
	if len(children) == 0 {
		return nil, ErrEmptyBody
	}
	payload := children[0]
	if serialization.Matches(payload, ns.Name("Fault")) {
		return nil, parseFault(payload, ns)
	}
	return payload, nil
}

func envelopeNamespace(env *etree.Element) (serialization.Namespace, bool) {
	for _, ns := range []serialization.Namespace{NSEnvelope, NSEnvelope12} {
		if serialization.Matches(env, ns.Name("Envelope")) {
			return ns, true
		}
	}
	return serialization.Namespace{}, false
}

// Fault SOAP Fault
type Fault struct {
	Code   string
	String string
	Actor  string
	Detail string
}

// Error 实现 error 接口
func (f *Fault) Error() string {
	if f.Actor != "" {
		return fmt.Sprintf("soap fault %s: %s (actor %s)", f.Code, f.String, f.Actor)
	}
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// ToXML 生成 SOAP 1.1 Fault 元素
func (f *Fault) ToXML() *etree.Element {
	el := etree.NewElement(NSEnvelope.Name("Fault").Tag())
	el.CreateElement("faultcode").SetText(f.Code)
	el.CreateElement("faultstring").SetText(f.String)
	if f.Actor != "" {
		el.CreateElement("faultactor").SetText(f.Actor)
	}
	if f.Detail != "" {
		el.CreateElement("detail").SetText(f.Detail)
	}
	return el
}

// 1.1 的子元素不带命名空间，1.2 使用 Code/Value 与 Reason/Text
func parseFault(el *etree.Element, ns serialization.Namespace) *Fault {
	if ns == NSEnvelope12 {
		f := &Fault{}
		if code := serialization.Child(el, ns.Name("Code")); code != nil {
			f.Code = serialization.ValueOrDefault(code, ns.Name("Value"), "")
		}
		if reason := serialization.Child(el, ns.Name("Reason")); reason != nil {
			f.String = serialization.ValueOrDefault(reason, ns.Name("Text"), "")
		}
		f.Actor = serialization.ValueOrDefault(el, ns.Name("Role"), "")
		if detail := serialization.Child(el, ns.Name("Detail")); detail != nil {
			f.Detail = serialization.Text(detail)
		}
		return f
	}
	f := &Fault{}
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "faultcode":
			f.Code = serialization.Text(c)
		case "faultstring":
			f.String = serialization.Text(c)
		case "faultactor":
			f.Actor = serialization.Text(c)
		case "detail":
			f.Detail = serialization.Text(c)
		}
	}
	return f
}
