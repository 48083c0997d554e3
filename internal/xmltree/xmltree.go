// Package xmltree builds a generic, read-only element tree from XML documents.
//
// The tree is deliberately schema-agnostic: it records element names, attributes,
// child order and character data, and nothing else. Install scripts are interpreted
// by the loader in internal/core through the ElementView interface.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ElementView is the read-only view of a parsed element
type ElementView interface {
	// Name returns the local element name
	Name() string
	// Attr returns the attribute value, or def when the attribute is absent
	Attr(key, def string) string
	// HasAttr reports whether the attribute is present
	HasAttr(key string) bool
	// Children returns direct children with the given local name in document order.
	// An empty name returns every child.
	Children(name string) []ElementView
	// Child returns the first direct child with the given name, or nil
	Child(name string) ElementView
	// CData returns the concatenated character data directly under the element
	CData() string
}

// Element is a parsed XML element
type Element struct {
	name     string
	attrs    map[string]string
	children []*Element
	cdata    strings.Builder
}

// NewElement creates an element, mainly for building trees in tests
func NewElement(name string, attrs map[string]string, cdata string, children ...*Element) *Element {
	e := &Element{name: name, attrs: attrs, children: children}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.cdata.WriteString(cdata)
	return e
}

// Name implements ElementView
func (e *Element) Name() string {
	return e.name
}

// Attr implements ElementView
func (e *Element) Attr(key, def string) string {
	if v, ok := e.attrs[key]; ok {
		return v
	}
	return def
}

// HasAttr implements ElementView
func (e *Element) HasAttr(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

// Children implements ElementView
func (e *Element) Children(name string) []ElementView {
	var out []ElementView
	for _, c := range e.children {
		if name == "" || c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// Child implements ElementView
func (e *Element) Child(name string) ElementView {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// CData implements ElementView
func (e *Element) CData() string {
	return e.cdata.String()
}

// ParseFile reads and parses an XML file
func ParseFile(path string) (*Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// ParseBytes parses XML from a byte slice
func ParseBytes(data []byte) (*Element, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads an XML document and returns its root element.
// UTF-8 and BOM-marked UTF-16 input are accepted; other declared charsets are
// resolved through the IANA registry.
func Parse(r io.Reader) (*Element, error) {
	// Strips a UTF-8 BOM and converts BOM-marked UTF-16 to UTF-8
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	dec := xml.NewDecoder(decoded)
	dec.CharsetReader = charsetReader

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				name:  t.Name.Local,
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parsing XML: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].cdata.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return root, nil
}

// charsetReader handles the encoding named in the XML declaration. Input has
// already been converted to UTF-8 when it carried a BOM, so unicode labels pass through.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "utf-16", "utf16", "utf-16le", "utf-16be":
		return input, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
