package xmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"
)

const header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// Encode writes doc as XML followed by a newline. Each entry of the root
// mapping becomes a top level element; arrays repeat their element.
func Encode(doc *ir.Node, w io.Writer, opts ...EncodeOption) error {
	o := encodeOpts{indent: "  "}
	for _, opt := range opts {
		opt(&o)
	}
	if o.root != "" {
		doc = ir.FromKeyVals([]ir.KeyVal{{Key: ir.FromString(o.root), Val: doc}})
	}
	if doc.Type != ir.ObjectType {
		return ErrNonObjectRoot
	}
	if o.fullDocument && len(doc.Fields) != 1 {
		return ErrMultipleRoots
	}
	buf := &bytes.Buffer{}
	if o.fullDocument {
		buf.WriteString(header)
	}
	e := &xmlEncoder{buf: buf, opts: &o}
	for i, f := range doc.Fields {
		name, err := ir.KeyText(f)
		if err != nil {
			return err
		}
		if err := e.emit(name, doc.Values[i], 0); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	if debug.Dump() {
		debug.Logf("dumped XML document (%d bytes)", buf.Len())
	}
	_, err := w.Write(buf.Bytes())
	return err
}

type xmlEncoder struct {
	buf  *bytes.Buffer
	opts *encodeOpts
}

func (e *xmlEncoder) emit(name string, node *ir.Node, depth int) error {
	items := []*ir.Node{node}
	if node.Type == ir.ArrayType {
		items = node.Values
	}
	for i, item := range items {
		if e.opts.fullDocument && depth == 0 && i > 0 {
			return ErrMultipleRoots
		}
		if err := e.element(name, item, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *xmlEncoder) element(name string, node *ir.Node, depth int) error {
	var (
		attrs    [][2]string
		text     *string
		children []ir.KeyVal
	)
	switch node.Type {
	case ir.ObjectType:
		for i, f := range node.Fields {
			k, err := ir.KeyText(f)
			if err != nil {
				return err
			}
			v := node.Values[i]
			switch {
			case k == textKey:
				s, err := scalarText(v)
				if err != nil {
					return fmt.Errorf("%w at %s", err, v.Path())
				}
				text = &s
			case strings.HasPrefix(k, attrPrefix):
				s, err := scalarText(v)
				if err != nil {
					return fmt.Errorf("%w at %s", err, v.Path())
				}
				attrs = append(attrs, [2]string{k[len(attrPrefix):], s})
			default:
				children = append(children, ir.KeyVal{Key: f, Val: v})
			}
		}
	case ir.NullType:
	default:
		s, err := scalarText(node)
		if err != nil {
			return fmt.Errorf("%w at %s", err, node.Path())
		}
		text = &s
	}

	if depth > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte('<')
	e.buf.WriteString(name)
	for _, a := range attrs {
		e.buf.WriteByte(' ')
		e.buf.WriteString(a[0])
		e.buf.WriteByte('=')
		e.buf.WriteString(quoteAttr(a[1]))
	}
	e.buf.WriteByte('>')
	for _, kv := range children {
		k, _ := ir.KeyText(kv.Key)
		if err := e.emit(k, kv.Val, depth+1); err != nil {
			return err
		}
	}
	if text != nil {
		e.buf.WriteString(textEscaper.Replace(*text))
	}
	if len(children) > 0 {
		e.newline(depth)
	}
	e.buf.WriteString("</")
	e.buf.WriteString(name)
	e.buf.WriteByte('>')
	return nil
}

func (e *xmlEncoder) newline(depth int) {
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.opts.indent, depth))
}

func scalarText(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "", nil
	case ir.BoolType, ir.NumberType:
		return ir.KeyText(node)
	case ir.StringType, ir.TimestampType:
		return node.String, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotElement, node.Type)
}

// quoteAttr quotes an attribute value, preferring double quotes and
// switching to single quotes when the value contains only double ones.
func quoteAttr(s string) string {
	s = attrEscaper.Replace(s)
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + strings.ReplaceAll(s, `"`, "&quot;") + `"`
}
