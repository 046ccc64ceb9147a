package tomldoc

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	"github.com/BurntSushi/toml"
)

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Encode writes doc, which must be a mapping, as TOML. Within each table
// the plain key/value pairs come first, in order, followed by the
// sub-tables and arrays of tables. Null values have no TOML form and are
// left out.
func Encode(doc *ir.Node, w io.Writer) error {
	if doc.Type != ir.ObjectType {
		return ErrNonObjectRoot
	}
	e := &tomlEncoder{buf: &bytes.Buffer{}}
	if err := e.table(nil, doc, false); err != nil {
		return err
	}
	if debug.Dump() {
		debug.Logf("dumped TOML document (%d bytes)", e.buf.Len())
	}
	_, err := w.Write(e.buf.Bytes())
	return err
}

type tomlEncoder struct {
	buf *bytes.Buffer
}

func (e *tomlEncoder) table(path []string, node *ir.Node, arrayElem bool) error {
	var (
		leaves []int
		tables []int
	)
	for i, v := range node.Values {
		switch {
		case v.Type == ir.NullType:
		case v.Type == ir.ObjectType, isTableArray(v):
			tables = append(tables, i)
		default:
			leaves = append(leaves, i)
		}
	}
	if path != nil && (arrayElem || len(leaves) > 0 || len(tables) == 0) {
		if e.buf.Len() > 0 {
			e.buf.WriteByte('\n')
		}
		header, err := e.header(path)
		if err != nil {
			return err
		}
		if arrayElem {
			fmt.Fprintf(e.buf, "[[%s]]\n", header)
		} else {
			fmt.Fprintf(e.buf, "[%s]\n", header)
		}
	}
	for _, i := range leaves {
		if err := e.leaf(node.Fields[i], node.Values[i]); err != nil {
			return err
		}
	}
	for _, i := range tables {
		k, err := ir.KeyText(node.Fields[i])
		if err != nil {
			return err
		}
		sub := append(path[:len(path):len(path)], k)
		v := node.Values[i]
		if v.Type == ir.ObjectType {
			if err := e.table(sub, v, false); err != nil {
				return err
			}
			continue
		}
		for _, elem := range v.Values {
			if err := e.table(sub, elem, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// leaf writes one key/value pair, formatted by the toml encoder.
func (e *tomlEncoder) leaf(key, v *ir.Node) error {
	k, err := ir.KeyText(key)
	if err != nil {
		return err
	}
	gv, err := goValue(v)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(e.buf).Encode(map[string]any{k: gv}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncoding, v.Path(), err)
	}
	return nil
}

func (e *tomlEncoder) header(path []string) (string, error) {
	parts := make([]string, len(path))
	for i, p := range path {
		q, err := quoteKey(p)
		if err != nil {
			return "", err
		}
		parts[i] = q
	}
	return strings.Join(parts, "."), nil
}

// quoteKey returns k as it appears on the left of a TOML key/value pair.
func quoteKey(k string) (string, error) {
	if bareKey.MatchString(k) {
		return k, nil
	}
	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(map[string]any{k: 0}); err != nil {
		return "", fmt.Errorf("%w: key %q: %w", ErrEncoding, k, err)
	}
	return strings.TrimSuffix(buf.String(), " = 0\n"), nil
}

func isTableArray(v *ir.Node) bool {
	if v.Type != ir.ArrayType || len(v.Values) == 0 {
		return false
	}
	for _, e := range v.Values {
		if e.Type != ir.ObjectType {
			return false
		}
	}
	return true
}

// goValue converts v to the value the toml encoder expects.
func goValue(v *ir.Node) (any, error) {
	switch v.Type {
	case ir.NullType:
		return nil, fmt.Errorf("%w: null at %s", ErrEncoding, v.Path())
	case ir.BoolType:
		return v.Bool, nil
	case ir.NumberType:
		switch {
		case v.Int64 != nil:
			return *v.Int64, nil
		case v.Float64 != nil:
			return *v.Float64, nil
		}
		f, err := strconv.ParseFloat(v.Number, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %s at %s", ErrEncoding, v.Number, v.Path())
		}
		return f, nil
	case ir.StringType, ir.TimestampType:
		return v.String, nil
	case ir.ArrayType:
		res := make([]any, 0, len(v.Values))
		for _, e := range v.Values {
			ge, err := goValue(e)
			if err != nil {
				return nil, err
			}
			res = append(res, ge)
		}
		return res, nil
	case ir.ObjectType:
		res := make(map[string]any, len(v.Fields))
		for i, f := range v.Fields {
			if v.Values[i].Type == ir.NullType {
				continue
			}
			k, err := ir.KeyText(f)
			if err != nil {
				return nil, err
			}
			ge, err := goValue(v.Values[i])
			if err != nil {
				return nil, err
			}
			res[k] = ge
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s at %s", ErrEncoding, v.Type, v.Path())
}
