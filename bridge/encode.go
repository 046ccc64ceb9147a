package bridge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signadot/tony-format/yq/annotate"
	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML: false,
}.Froze()

// Encoder writes documents as newline separated JSON values.
type Encoder struct {
	w       io.Writer
	written int64
	n       int
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Written returns the number of bytes written so far.
func (e *Encoder) Written() int64 { return e.written }

// Encode writes doc on one line. Node annotations are carried by
// sentinel entries, timestamps become ISO-8601 strings and non finite
// floats the strings ".inf", "-.inf" and ".nan".
func (e *Encoder) Encode(doc *ir.Node) error {
	d, err := ToJSON(doc)
	if err != nil {
		return err
	}
	n, err := e.w.Write(d)
	e.written += int64(n)
	e.n++
	if debug.Bridge() {
		debug.Logf("to json %d: %s", e.n, bytes.TrimSpace(d))
	}
	return err
}

// ToJSON returns the JSON line for doc, newline included.
func ToJSON(doc *ir.Node) ([]byte, error) {
	flat, err := annotate.Flatten(doc)
	if err != nil {
		return nil, err
	}
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)
	if err := writeValue(stream, flat); err != nil {
		return nil, err
	}
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return nil, stream.Error
	}
	return bytes.Clone(stream.Buffer()), nil
}

func writeValue(s *jsoniter.Stream, node *ir.Node) error {
	switch node.Type {
	case ir.NullType:
		s.WriteNil()
	case ir.BoolType:
		s.WriteBool(node.Bool)
	case ir.NumberType:
		switch {
		case !ir.IsFinite(node):
			s.WriteString(ir.FormatFloat(*node.Float64))
		case node.Int64 == nil && node.Float64 == nil:
			s.WriteRaw(node.Number)
		default:
			s.WriteRaw(ir.NumberText(node))
		}
	case ir.StringType, ir.TimestampType:
		s.WriteString(node.String)
	case ir.ArrayType:
		s.WriteArrayStart()
		for i, v := range node.Values {
			if i > 0 {
				s.WriteMore()
			}
			if err := writeValue(s, v); err != nil {
				return err
			}
		}
		s.WriteArrayEnd()
	case ir.ObjectType:
		s.WriteObjectStart()
		for i, f := range node.Fields {
			k, err := ir.KeyText(f)
			if err != nil {
				return err
			}
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(k)
			if err := writeValue(s, node.Values[i]); err != nil {
				return err
			}
		}
		s.WriteObjectEnd()
	default:
		return fmt.Errorf("%w: %s at %s", ErrUnsupported, node.Type, node.Path())
	}
	return nil
}
