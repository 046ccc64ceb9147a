package filter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signadot/tony-format/yq/bridge"
	"github.com/signadot/tony-format/yq/ir"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// eachDocument calls f with every JSON document of in and writes what f
// returns as one line of out.
func eachDocument(in io.Reader, out io.Writer, f func(*ir.Node) (*ir.Node, error)) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	dec := bridge.NewDecoder(data)
	enc := bridge.NewEncoder(out)
	for doc, err := range dec.All() {
		if err != nil {
			return err
		}
		res, err := f(doc)
		if err != nil {
			return err
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

// toAny returns the value of node with Go types: int64, float64, string,
// bool, nil, []any and map[string]any.
func toAny(node *ir.Node) any {
	switch node.Type {
	case ir.NullType:
		return nil
	case ir.BoolType:
		return node.Bool
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			return int(*node.Int64)
		case node.Float64 != nil:
			return *node.Float64
		}
		return node.Number
	case ir.ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			k, _ := ir.KeyText(f)
			res[k] = toAny(node.Values[i])
		}
		return res
	case ir.ArrayType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			res[i] = toAny(v)
		}
		return res
	}
	return node.String
}

// fromAny converts a Go value back to a node by way of its JSON form.
// Mapping keys come out sorted.
func fromAny(v any) (*ir.Node, error) {
	d, err := jsonAPI.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot represent %T as JSON: %w", v, err)
	}
	docs, err := bridge.FromJSON(d)
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, fmt.Errorf("expected one value, got %d", len(docs))
	}
	return docs[0], nil
}

// reorder arranges the keys of every mapping in res in the order of the
// mapping of orig sharing the most keys with it. Keys orig does not have
// follow in their own order.
func reorder(orig, res *ir.Node) *ir.Node {
	var objs []*ir.Node
	for y := range orig.All() {
		if y.Type == ir.ObjectType {
			objs = append(objs, y)
		}
	}
	return reorderNode(objs, res)
}

func reorderNode(objs []*ir.Node, res *ir.Node) *ir.Node {
	switch res.Type {
	case ir.ArrayType:
		for i, v := range res.Values {
			r := reorderNode(objs, v)
			r.Parent, r.ParentIndex = res, i
			res.Values[i] = r
		}
		return res
	case ir.ObjectType:
	default:
		return res
	}
	kvs := make([]ir.KeyVal, 0, len(res.Fields))
	used := make([]bool, len(res.Fields))
	if src := closest(objs, res); src != nil {
		for _, f := range src.Fields {
			k, _ := ir.KeyText(f)
			for j, rf := range res.Fields {
				if used[j] || !keyEqual(rf, k) {
					continue
				}
				used[j] = true
				kvs = append(kvs, ir.KeyVal{Key: rf, Val: reorderNode(objs, res.Values[j])})
				break
			}
		}
	}
	for j, rf := range res.Fields {
		if !used[j] {
			kvs = append(kvs, ir.KeyVal{Key: rf, Val: reorderNode(objs, res.Values[j])})
		}
	}
	return ir.FromKeyVals(kvs)
}

// closest returns the first of objs sharing the most keys with res, nil
// when none shares any.
func closest(objs []*ir.Node, res *ir.Node) *ir.Node {
	keys := make(map[string]bool, len(res.Fields))
	for _, f := range res.Fields {
		k, _ := ir.KeyText(f)
		keys[k] = true
	}
	var (
		best  *ir.Node
		score int
	)
	for _, o := range objs {
		n := 0
		for _, f := range o.Fields {
			if k, err := ir.KeyText(f); err == nil && keys[k] {
				n++
			}
		}
		if n > score {
			best, score = o, n
		}
	}
	return best
}

func keyEqual(f *ir.Node, k string) bool {
	t, err := ir.KeyText(f)
	return err == nil && t == k
}

func compact(node *ir.Node) ([]byte, error) {
	d, err := bridge.ToJSON(node)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(d), nil
}
