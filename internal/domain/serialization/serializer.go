package serialization

import (
	"github.com/beevik/etree"
)

// Serializer XML文档级编解码器：元素树 <-> 字节
type Serializer struct {
	indent int
}

// NewSerializer 创建新的序列化器，indent<=0 时输出紧凑格式
func NewSerializer(indent int) *Serializer {
	return &Serializer{
		indent: indent,
	}
}

// Marshal 将元素树写为带XML声明的文档。入参不会被修改
func (s *Serializer) Marshal(root *etree.Element) ([]byte, error) {
	if root == nil {
		return nil, SerializationError{
			Operation: "Marshal",
			Message:   "root element is nil",
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(root.Copy())
	if s.indent > 0 {
		doc.Indent(s.indent)
	}

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, SerializationError{
			Operation: "Marshal",
			Message:   "Failed to write XML document",
			Cause:     err,
		}
	}
	return data, nil
}

// Unmarshal 解析字节为文档并返回根元素
func (s *Serializer) Unmarshal(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, SerializationError{
			Operation: "Unmarshal",
			Message:   "Failed to parse XML document",
			Cause:     err,
		}
	}

	root := doc.Root()
	if root == nil {
		return nil, SerializationError{
			Operation: "Unmarshal",
			Message:   "XML document has no root element",
		}
	}
	return root, nil
}

// PrettyPrint 格式化XML
func (s *Serializer) PrettyPrint(data []byte) ([]byte, error) {
	root, err := s.Unmarshal(data)
	if err != nil {
		return nil, SerializationError{
			Operation: "PrettyPrint",
			Message:   "Failed to parse XML",
			Cause:     err,
		}
	}
	indent := s.indent
	if indent <= 0 {
		indent = 2
	}
	return NewSerializer(indent).Marshal(root)
}
