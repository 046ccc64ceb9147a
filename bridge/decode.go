package bridge

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrMalformed   = errors.New("malformed JSON")
	ErrUnsupported = errors.New("unsupported value")
)

// Decoder reads a stream of JSON values separated by whitespace.
type Decoder struct {
	it  *jsoniter.Iterator
	n   int
	err error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{it: jsoniter.ParseBytes(jsonAPI, data)}
}

// FromJSON decodes every value of data.
func FromJSON(data []byte) ([]*ir.Node, error) {
	d := NewDecoder(data)
	var res []*ir.Node
	for doc, err := range d.All() {
		if err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	return res, nil
}

// Decode returns the next value, or io.EOF once the input is exhausted.
// Errors are sticky.
func (d *Decoder) Decode() (*ir.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	doc, err := d.decode()
	if err != nil {
		d.err = err
		return nil, err
	}
	d.n++
	if debug.Bridge() {
		debug.Logf("from json %d: %s", d.n, debug.NodeString(doc))
	}
	return doc, nil
}

func (d *Decoder) All() iter.Seq2[*ir.Node, error] {
	return func(yield func(*ir.Node, error) bool) {
		for {
			doc, err := d.Decode()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

func (d *Decoder) decode() (*ir.Node, error) {
	it := d.it
	// a number ending the input leaves io.EOF behind after a good read
	if errors.Is(it.Error, io.EOF) {
		return nil, io.EOF
	}
	if it.WhatIsNext() == jsoniter.InvalidValue {
		if errors.Is(it.Error, io.EOF) {
			return nil, io.EOF
		}
		return nil, d.malformed("unexpected trailing data")
	}
	node := readValue(it)
	if it.Error != nil && !errors.Is(it.Error, io.EOF) {
		return nil, d.malformed(it.Error.Error())
	}
	if node == nil {
		return nil, d.malformed("unexpected end of input")
	}
	return node, nil
}

func (d *Decoder) malformed(msg string) error {
	return fmt.Errorf("%w: value %d: %s", ErrMalformed, d.n+1, msg)
}

func readValue(it *jsoniter.Iterator) *ir.Node {
	switch it.WhatIsNext() {
	case jsoniter.NilValue:
		it.ReadNil()
		return ir.Null()
	case jsoniter.BoolValue:
		return ir.FromBool(it.ReadBool())
	case jsoniter.NumberValue:
		return number(it, string(it.ReadNumber()))
	case jsoniter.StringValue:
		return ir.FromString(it.ReadString())
	case jsoniter.ArrayValue:
		res := ir.FromSlice(nil)
		ok := it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			v := readValue(it)
			if v == nil {
				return false
			}
			res.Append(v)
			return true
		})
		if !ok {
			return nil
		}
		return res
	case jsoniter.ObjectValue:
		var kvs []ir.KeyVal
		index := map[string]int{}
		ok := it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			v := readValue(it)
			if v == nil {
				return false
			}
			// a repeated key keeps its first position
			if i, dup := index[key]; dup {
				kvs[i].Val = v
				return true
			}
			index[key] = len(kvs)
			kvs = append(kvs, ir.KeyVal{Key: ir.FromString(key), Val: v})
			return true
		})
		if !ok {
			return nil
		}
		return ir.FromKeyVals(kvs)
	}
	it.ReportError("readValue", "expected a JSON value")
	return nil
}

func number(it *jsoniter.Iterator, text string) *ir.Node {
	if digits := strings.TrimPrefix(text, "-"); len(digits) > 1 && digits[0] == '0' && isDigit(digits[1]) {
		it.ReportError("readNumber", fmt.Sprintf("leading zero in number %q", text))
		return nil
	}
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return ir.FromInt(i)
		}
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return ir.FromNumber(strings.TrimPrefix(text, "+"))
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		it.ReportError("readNumber", fmt.Sprintf("invalid number %q", text))
		return nil
	}
	return ir.FromFloat(f)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
