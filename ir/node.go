package ir

import (
	"iter"
	"maps"
	"slices"
)

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string
	Fields      []*Node
	Values      []*Node

	Tag    string
	Style  Style
	Anchor string

	// 1-based source position, zero when the node was not parsed from text.
	Line, Column int

	// String holds string values, the ISO-8601 rendering of timestamps
	// and the anchor name of aliases.
	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

func (y *Node) WithTag(tag string) *Node {
	y.Tag = tag
	return y
}

func (y *Node) WithStyle(s Style) *Node {
	y.Style = s
	return y
}

func (y *Node) WithAnchor(name string) *Node {
	y.Anchor = name
	return y
}

// HasAnnotations reports whether y carries a tag, a non-plain style or an anchor.
func (y *Node) HasAnnotations() bool {
	return y.Tag != "" || y.Style != PlainStyle || y.Anchor != ""
}

// Clone returns a deep copy of y attached to the same parent.
func (y *Node) Clone() *Node {
	return y.cloneUnder(y.Parent)
}

func (y *Node) cloneUnder(parent *Node) *Node {
	res := *y
	res.Parent = parent
	if y.Float64 != nil {
		res.Float64 = new(float64)
		*res.Float64 = *y.Float64
	}
	if y.Int64 != nil {
		res.Int64 = new(int64)
		*res.Int64 = *y.Int64
	}
	res.Fields = cloneAll(y.Fields, &res)
	res.Values = cloneAll(y.Values, &res)
	return &res
}

func cloneAll(ns []*Node, parent *Node) []*Node {
	if ns == nil {
		return nil
	}
	res := make([]*Node, len(ns))
	for i, n := range ns {
		res[i] = n.cloneUnder(parent)
	}
	return res
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

// FromNumber returns a number node holding digits which do not fit an int64.
func FromNumber(v string) *Node {
	return &Node{
		Type:   NumberType,
		Number: v,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

// FromTimestamp returns a timestamp node from its ISO-8601 rendering.
func FromTimestamp(iso string) *Node {
	return &Node{
		Type:   TimestampType,
		String: iso,
	}
}

// FromAlias returns a reference to the node anchored as name.
func FromAlias(name string) *Node {
	return &Node{
		Type:   AliasType,
		String: name,
	}
}

// FromMap builds an object with its keys sorted.
func FromMap(m map[string]*Node) *Node {
	kvs := make([]KeyVal, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		kvs = append(kvs, KeyVal{Key: FromString(k), Val: m[k]})
	}
	return FromKeyVals(kvs)
}

type KeyVal struct {
	Key *Node
	Val *Node
}

// FromKeyVals builds an object keeping the order of kvs. A nil key is
// null.
func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{
		Type:   ObjectType,
		Fields: make([]*Node, 0, len(kvs)),
		Values: make([]*Node, 0, len(kvs)),
	}
	for _, kv := range kvs {
		key := kv.Key
		if key == nil {
			key = Null()
		}
		res.appendPair(key, kv.Val)
	}
	return res
}

// FromUniqueKeyVals builds an object from kvs as successive calls to Set
// would: a key equal to an earlier one keeps the earlier position and
// takes the later value.
func FromUniqueKeyVals(kvs []KeyVal) *Node {
	index := make(map[string]int, len(kvs))
	res := make([]KeyVal, 0, len(kvs))
	for _, kv := range kvs {
		if kv.Key == nil {
			kv.Key = Null()
		}
		id, ok := keyID(kv.Key)
		if !ok {
			res = append(res, kv)
			continue
		}
		if i, dup := index[id]; dup {
			res[i].Val = kv.Val
			continue
		}
		index[id] = len(res)
		res = append(res, kv)
	}
	return FromKeyVals(res)
}

func (y *Node) appendPair(key, val *Node) {
	field, _ := KeyText(key)
	i := len(y.Fields)
	for _, n := range [2]*Node{key, val} {
		n.Parent, n.ParentIndex, n.ParentField = y, i, field
	}
	y.Fields = append(y.Fields, key)
	y.Values = append(y.Values, val)
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	for i, y := range ySlice {
		res.Values[i] = y
		y.Parent = res
		y.ParentIndex = i
	}
	return res
}

// Append adds v to the end of the array y.
func (y *Node) Append(v *Node) {
	v.Parent = y
	v.ParentIndex = len(y.Values)
	y.Values = append(y.Values, v)
}

// Set assigns val to key in the object y. An equal key keeps its position
// and gets the new value, otherwise the pair is appended.
func (y *Node) Set(key, val *Node) {
	id, ok := keyID(key)
	for i, f := range y.Fields {
		if fid, fok := keyID(f); ok && fok && fid == id || !ok && Compare(f, key) == 0 {
			val.Parent, val.ParentIndex, val.ParentField = y, i, f.ParentField
			y.Values[i] = val
			return
		}
	}
	y.appendPair(key, val)
}

// Get returns the value of the first key whose JSON key text is field.
func Get(y *Node, field string) *Node {
	n := len(y.Fields)
	for i := range n {
		if k, err := KeyText(y.Fields[i]); err == nil && k == field {
			return y.Values[i]
		}
	}
	return nil
}

func Null() *Node {
	return &Node{Type: NullType}
}

// All iterates over y and its descendants depth first, parents before
// children. Mapping keys are not visited.
func (y *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		y.walk(yield)
	}
}

func (y *Node) walk(yield func(*Node) bool) bool {
	if !yield(y) {
		return false
	}
	for _, v := range y.Values {
		if !v.walk(yield) {
			return false
		}
	}
	return true
}
