package realex

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/kevin07696/realex-gateway/pkg/encoding"
)

const indent = "  "

// ErrNoRootElement is returned when a document has no complete root element
var ErrNoRootElement = errors.New("document has no root element")

// Attr is one element attribute. Attributes keep their insertion order.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of a request or response document
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement creates an element with optional attributes
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// Add appends child and returns it
func (e *Element) Add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a leaf child holding text and returns it
func (e *Element) AddText(name, text string, attrs ...Attr) *Element {
	return e.Add(&Element{Name: name, Attrs: attrs, Text: text})
}

// Attr returns the value of the named attribute, or ""
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given name
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find walks a slash separated path of child names, e.g. "card/cvn/number"
func (e *Element) Find(path string) *Element {
	current := e
	if path == "" {
		return current
	}
	for _, name := range strings.Split(path, "/") {
		current = current.Child(name)
		if current == nil {
			return nil
		}
	}
	return current
}

// Value returns the text at path, or the attribute when the path ends in
// "@name" (e.g. "amount@currency", "@timestamp"). Missing nodes yield "".
func (e *Element) Value(path string) string {
	attr := ""
	if i := strings.LastIndexByte(path, '@'); i >= 0 {
		path, attr = path[:i], path[i+1:]
	}
	node := e.Find(path)
	if node == nil {
		return ""
	}
	if attr != "" {
		return node.Attr(attr)
	}
	return node.Text
}

// IsLeaf reports whether the element has no child elements
func (e *Element) IsLeaf() bool {
	return len(e.Children) == 0
}

// Render serializes the element tree with two-space indentation.
// Empty leaves render self-closing.
func Render(root *Element) ([]byte, error) {
	return encoding.Render(func(buf *bytes.Buffer) error {
		if err := writeElement(buf, root, 0); err != nil {
			return fmt.Errorf("failed to render %s: %w", root.Name, err)
		}
		return nil
	})
}

func writeElement(buf *bytes.Buffer, e *Element, depth int) error {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}

	switch {
	case e.IsLeaf() && e.Text == "":
		buf.WriteString("/>\n")
		return nil
	case e.IsLeaf():
		buf.WriteByte('>')
		if err := xml.EscapeText(buf, []byte(e.Text)); err != nil {
			return err
		}
	default:
		buf.WriteString(">\n")
		for _, c := range e.Children {
			if err := writeElement(buf, c, depth+1); err != nil {
				return err
			}
		}
		for i := 0; i < depth; i++ {
			buf.WriteString(indent)
		}
	}

	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteString(">\n")
	return nil
}

// ParseDocument decodes data into an element tree. Decoding stops once the
// root element closes, so trailing bytes after the root are ignored.
func ParseDocument(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Gateway responses are usually declared ISO-8859-1
	dec.CharsetReader = charset.NewReaderLabel

	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, ErrNoRootElement
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				root = el
			} else {
				stack[len(stack)-1].Add(el)
			}
			stack = append(stack, el)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, nil
			}
		}
	}
}
