package xmldoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"
)

const (
	attrPrefix = "@"
	textKey    = "#text"
)

// element is an open element during decoding.
type element struct {
	name    string
	item    *ir.Node
	text    strings.Builder
	hasText bool
}

// value is what the element decodes to once closed: its mapping when it
// had attributes or children, otherwise its stripped text or null.
func (el *element) value() *ir.Node {
	var text string
	if el.hasText {
		text = strings.TrimSpace(el.text.String())
	}
	if el.item != nil {
		if text != "" {
			el.item.Set(ir.FromString(textKey), ir.FromString(text))
		}
		return el.item
	}
	if text == "" {
		return ir.Null()
	}
	return ir.FromString(text)
}

// Decode reads the single XML document in data. Comments, processing
// instructions and directives are ignored; namespace prefixes are kept
// as written.
func Decode(data []byte, opts ...DecodeOption) (*ir.Node, error) {
	o := decodeOpts{}
	for _, opt := range opts {
		opt(&o)
	}
	d := xml.NewDecoder(bytes.NewReader(data))
	var (
		stack []*element
		root  *ir.Node
	)
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		line, col := d.InputPos()
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("%w: line %d column %d: junk after document element", ErrSyntax, line, col)
			}
			el := &element{name: qname(t.Name)}
			for _, a := range t.Attr {
				if el.item == nil {
					el.item = ir.FromKeyVals(nil)
				}
				el.item.Set(ir.FromString(attrPrefix+qname(a.Name)), ir.FromString(a.Value))
			}
			stack = append(stack, el)
		case xml.EndElement:
			n := len(stack) - 1
			if n < 0 || stack[n].name != qname(t.Name) {
				return nil, fmt.Errorf("%w: line %d column %d: mismatched tag %s", ErrSyntax, line, col, qname(t.Name))
			}
			el := stack[n]
			stack = stack[:n]
			if n == 0 {
				root = ir.FromKeyVals(nil)
				push(&o, root, el.name, el.value())
				continue
			}
			parent := stack[n-1]
			if parent.item == nil {
				parent.item = ir.FromKeyVals(nil)
			}
			push(&o, parent.item, el.name, el.value())
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return nil, fmt.Errorf("%w: line %d column %d: text outside the document element", ErrSyntax, line, col)
				}
				continue
			}
			el := stack[len(stack)-1]
			el.text.Write(t)
			el.hasText = true
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unclosed element %s", ErrSyntax, stack[len(stack)-1].name)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no element found", ErrSyntax)
	}
	if debug.Load() {
		debug.Logf("decoded XML document: %s", debug.NodeString(root))
	}
	return root, nil
}

// push adds the child name to item, turning a repeated child into an
// array.
func push(o *decodeOpts, item *ir.Node, name string, v *ir.Node) {
	if prev := ir.Get(item, name); prev != nil {
		if prev.Type == ir.ArrayType {
			prev.Append(v)
			return
		}
		item.Set(ir.FromString(name), ir.FromSlice([]*ir.Node{prev, v}))
		return
	}
	if o.forceList[name] {
		v = ir.FromSlice([]*ir.Node{v})
	}
	item.Set(ir.FromString(name), v)
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
