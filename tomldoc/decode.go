// Package tomldoc converts TOML documents to and from ir nodes, keeping
// key order in both directions.
package tomldoc

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	"github.com/BurntSushi/toml"
)

// Decode reads a TOML document. Tables keep the order in which their keys
// were defined. Offset date-times become timestamps in RFC 3339 form;
// local dates, times and date-times keep their TOML text.
func Decode(data []byte) (*ir.Node, error) {
	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	o := keyOrder{}
	// implicit tables of dotted keys are not listed, they take the
	// position of their first descendant.
	for i, k := range md.Keys() {
		for j := 1; j <= len(k); j++ {
			p := pathKey(k[:j])
			if _, ok := o[p]; !ok {
				o[p] = i
			}
		}
	}
	res, err := o.node(nil, m)
	if err != nil {
		return nil, err
	}
	if debug.Load() {
		debug.Logf("decoded TOML document: %s", debug.NodeString(res))
	}
	return res, nil
}

// keyOrder maps a key path to the position of its first definition.
type keyOrder map[string]int

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

func (o keyOrder) keys(path []string, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	pos := func(k string) (int, bool) {
		i, ok := o[pathKey(append(slices.Clone(path), k))]
		return i, ok
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia, oka := pos(a)
		ib, okb := pos(b)
		switch {
		case oka && okb:
			return cmp.Compare(ia, ib)
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func (o keyOrder) node(path []string, v any) (*ir.Node, error) {
	switch x := v.(type) {
	case map[string]any:
		res := ir.FromKeyVals(nil)
		for _, k := range o.keys(path, x) {
			child, err := o.node(append(slices.Clone(path), k), x[k])
			if err != nil {
				return nil, err
			}
			res.Set(ir.FromString(k), child)
		}
		return res, nil
	case []map[string]any:
		res := ir.FromSlice(nil)
		for _, e := range x {
			child, err := o.node(path, e)
			if err != nil {
				return nil, err
			}
			res.Append(child)
		}
		return res, nil
	case []any:
		res := ir.FromSlice(nil)
		for _, e := range x {
			child, err := o.node(path, e)
			if err != nil {
				return nil, err
			}
			res.Append(child)
		}
		return res, nil
	case string:
		return ir.FromString(x), nil
	case int64:
		return ir.FromInt(x), nil
	case float64:
		return ir.FromFloat(x), nil
	case bool:
		return ir.FromBool(x), nil
	case time.Time:
		return ir.FromTimestamp(timeText(x)), nil
	}
	return nil, fmt.Errorf("%w: unexpected %T at %s", ErrSyntax, v, strings.Join(path, "."))
}

func timeText(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format(time.DateOnly)
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}
