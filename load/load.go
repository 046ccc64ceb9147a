package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/ir"

	"gopkg.in/yaml.v3"
)

// Decoder reads the documents of a YAML stream one at a time.
type Decoder struct {
	opts      loadOpts
	grammar   *grammar.Grammar
	dec       *yaml.Decoder
	guard     *Guard
	lineStart []int
	size      int
	n         int
	err       error
}

func NewDecoder(src []byte, opts ...LoadOption) (*Decoder, error) {
	o := defaultOpts()
	for _, opt := range opts {
		opt(&o)
	}
	g := o.grammar
	if g == nil {
		var err error
		g, err = grammar.Select(o.version, o.expandMerge)
		if err != nil {
			return nil, err
		}
	}
	return &Decoder{
		opts:      o,
		grammar:   g,
		dec:       yaml.NewDecoder(bytes.NewReader(src)),
		guard:     NewGuard(o.factor),
		lineStart: lineStarts(src),
		size:      len(src),
	}, nil
}

// Load decodes every document of src.
func Load(src []byte, opts ...LoadOption) ([]*ir.Node, error) {
	d, err := NewDecoder(src, opts...)
	if err != nil {
		return nil, err
	}
	var res []*ir.Node
	for doc, err := range d.All() {
		if err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	return res, nil
}

// Guard returns the expansion guard shared by all documents of the stream.
func (d *Decoder) Guard() *Guard { return d.guard }

// Decode returns the next document, or io.EOF after the last one.
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
	return doc, nil
}

// All iterates over the remaining documents, stopping after the first error.
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
	var yn yaml.Node
	if err := d.dec.Decode(&yn); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, syntaxError(d.opts.name, err)
	}
	d.n++
	c := &constructor{
		d:      d,
		built:  map[*yaml.Node]*ir.Node{},
		active: map[*yaml.Node]bool{},
		sizes:  map[*ir.Node]int64{},
	}
	var (
		doc *ir.Node
		err error
	)
	if yn.Kind == yaml.DocumentNode && len(yn.Content) > 0 {
		doc, err = c.construct(yn.Content[0])
	} else {
		doc = ir.Null()
		err = d.guard.Charge(4)
	}
	if err != nil {
		return nil, err
	}
	// one newline per document on the wire
	if err := d.guard.Charge(1); err != nil {
		return nil, err
	}
	if debug.Load() {
		debug.Logf("document %d: %v", d.n, doc)
	}
	return doc, nil
}

func lineStarts(src []byte) []int {
	res := []int{0}
	for i, c := range src {
		if c == '\n' {
			res = append(res, i+1)
		}
	}
	return res
}

// offset returns the byte offset of a 1-based line and column.
func (d *Decoder) offset(line, col int) int64 {
	if line <= 0 {
		return 0
	}
	if line > len(d.lineStart) {
		return int64(d.size)
	}
	off := d.lineStart[line-1]
	if col > 0 {
		off += col - 1
	}
	return int64(min(off, d.size))
}

type constructor struct {
	d      *Decoder
	built  map[*yaml.Node]*ir.Node
	active map[*yaml.Node]bool
	sizes  map[*ir.Node]int64
}

func (c *constructor) errorf(yn *yaml.Node, err error, format string, args ...any) error {
	return &ParseError{
		Name:   c.d.opts.name,
		Line:   yn.Line,
		Column: yn.Column,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (c *constructor) charge(yn *yaml.Node, n int64) error {
	if err := c.d.guard.Charge(n); err != nil {
		return c.errorf(yn, ErrUnsafeExpansion, "%v", err)
	}
	return nil
}

func (c *constructor) construct(yn *yaml.Node) (*ir.Node, error) {
	// the source counts as read through the end of the node's line, or
	// of its text for scalars spanning several lines.
	end := c.d.offset(yn.Line+1, 1)
	if yn.Kind == yaml.ScalarNode {
		end = max(end, c.d.offset(yn.Line, yn.Column)+int64(len(yn.Value)))
	}
	c.d.guard.Consume(min(end, int64(c.d.size)))

	var (
		node *ir.Node
		err  error
	)
	switch yn.Kind {
	case yaml.AliasNode:
		return c.alias(yn)
	case yaml.ScalarNode:
		node, err = c.scalar(yn)
	case yaml.SequenceNode:
		c.active[yn] = true
		node, err = c.sequence(yn)
		delete(c.active, yn)
	case yaml.MappingNode:
		c.active[yn] = true
		node, err = c.mapping(yn)
		delete(c.active, yn)
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return ir.Null(), nil
		}
		return c.construct(yn.Content[0])
	default:
		return nil, c.errorf(yn, nil, "unexpected node kind %d", yn.Kind)
	}
	if err != nil {
		return nil, err
	}
	node.Line, node.Column = yn.Line, yn.Column
	c.annotate(yn, node)
	if yn.Anchor != "" {
		c.built[yn] = node
	}
	return node, nil
}

func (c *constructor) annotate(yn *yaml.Node, node *ir.Node) {
	if !c.d.opts.annotate {
		return
	}
	if yn.Style&yaml.TaggedStyle != 0 && isLocalTag(yn.Tag) {
		node.Tag = yn.Tag
	}
	switch {
	case yn.Kind == yaml.ScalarNode:
		switch {
		case yn.Style&yaml.SingleQuotedStyle != 0:
			node.Style = ir.SingleQuotedStyle
		case yn.Style&yaml.DoubleQuotedStyle != 0:
			node.Style = ir.DoubleQuotedStyle
		case yn.Style&yaml.LiteralStyle != 0:
			node.Style = ir.LiteralStyle
		case yn.Style&yaml.FoldedStyle != 0:
			node.Style = ir.FoldedStyle
		}
	case yn.Style&yaml.FlowStyle != 0:
		node.Style = ir.FlowStyle
	}
	if !c.d.opts.expandAliases {
		node.Anchor = yn.Anchor
	}
}

// isLocalTag reports whether tag is a custom "!foo" tag, as opposed to a
// "!!" core tag or the non-specific "!".
func isLocalTag(tag string) bool {
	return len(tag) > 1 && tag[0] == '!' && tag[1] != '!'
}

func (c *constructor) alias(yn *yaml.Node) (*ir.Node, error) {
	if !c.d.opts.expandAliases {
		node := ir.FromAlias(yn.Value)
		node.Line, node.Column = yn.Line, yn.Column
		size := int64(len(yn.Value)) + int64(len(`{"__yq_alias__":""}`))
		c.sizes[node] = size
		return node, c.charge(yn, size)
	}
	target := yn.Alias
	if target == nil || c.active[target] {
		return nil, c.errorf(yn, ErrRecursiveAlias, "%v *%s", ErrRecursiveAlias, yn.Value)
	}
	orig, ok := c.built[target]
	if !ok {
		return nil, c.errorf(yn, nil, "unknown anchor '%s' referenced", yn.Value)
	}
	size := c.sizes[orig]
	if err := c.charge(yn, size); err != nil {
		return nil, err
	}
	node := orig.Clone()
	node.Parent = nil
	node.Anchor = ""
	c.sizes[node] = size
	return node, nil
}

func (c *constructor) scalarTag(yn *yaml.Node) string {
	if yn.Style&yaml.TaggedStyle != 0 {
		return yn.Tag
	}
	if yn.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return grammar.StrTag
	}
	return c.d.grammar.Resolve(yn.Value)
}

func (c *constructor) scalar(yn *yaml.Node) (*ir.Node, error) {
	node, err := constructScalar(c.d.grammar.Version(), c.scalarTag(yn), yn.Value)
	if err != nil {
		return nil, c.errorf(yn, err, "%v", err)
	}
	size := scalarSize(node)
	c.sizes[node] = size
	return node, c.charge(yn, size)
}

// scalarSize estimates the JSON encoding length of a leaf.
func scalarSize(node *ir.Node) int64 {
	switch node.Type {
	case ir.NullType:
		return 4
	case ir.BoolType:
		return 5
	case ir.NumberType:
		return int64(len(ir.NumberText(node)))
	default:
		return int64(len(node.String)) + 2
	}
}

func (c *constructor) sequence(yn *yaml.Node) (*ir.Node, error) {
	res := ir.FromSlice(nil)
	size := int64(2)
	if err := c.charge(yn, size); err != nil {
		return nil, err
	}
	for _, cn := range yn.Content {
		v, err := c.construct(cn)
		if err != nil {
			return nil, err
		}
		res.Append(v)
		size += c.sizes[v] + 1
		if err := c.charge(yn, 1); err != nil {
			return nil, err
		}
	}
	c.sizes[res] = size
	return res, nil
}

type pair struct {
	key, val *ir.Node
}

func (c *constructor) isMerge(kn *yaml.Node) bool {
	if kn.Kind != yaml.ScalarNode {
		return false
	}
	return c.scalarTag(kn) == grammar.MergeTag
}

func (c *constructor) mapping(yn *yaml.Node) (*ir.Node, error) {
	if err := c.charge(yn, 2); err != nil {
		return nil, err
	}
	var merged, own []pair
	for i := 0; i+1 < len(yn.Content); i += 2 {
		kn, vn := yn.Content[i], yn.Content[i+1]
		if c.isMerge(kn) && (c.d.opts.expandAliases || !refersToAlias(vn)) {
			ps, err := c.mergeSource(vn)
			if err != nil {
				return nil, err
			}
			merged = append(merged, ps...)
			continue
		}
		if kn.Kind == yaml.MappingNode || kn.Kind == yaml.SequenceNode {
			return nil, c.errorf(kn, ir.ErrUnhashableKey, "%v", ir.ErrUnhashableKey)
		}
		key, err := c.construct(kn)
		if err != nil {
			return nil, err
		}
		if key.Type == ir.AliasType || !key.Type.IsLeaf() {
			return nil, c.errorf(kn, ir.ErrUnhashableKey, "%v", ir.ErrUnhashableKey)
		}
		// keys carry no annotations
		key.Tag, key.Style, key.Anchor = "", ir.PlainStyle, ""
		val, err := c.construct(vn)
		if err != nil {
			return nil, err
		}
		if err := c.charge(kn, 2); err != nil {
			return nil, err
		}
		own = append(own, pair{key, val})
	}
	kvs := make([]ir.KeyVal, 0, len(merged)+len(own))
	for _, p := range append(merged, own...) {
		kvs = append(kvs, ir.KeyVal{Key: p.key, Val: p.val})
	}
	res := ir.FromUniqueKeyVals(kvs)
	size := int64(2)
	for i := range res.Fields {
		size += c.sizes[res.Fields[i]] + c.sizes[res.Values[i]] + 2
	}
	c.sizes[res] = size
	return res, nil
}

// mergeSource returns the pairs a "<<" value contributes, in the order
// which gives the first mapping of a sequence precedence.
func (c *constructor) mergeSource(vn *yaml.Node) ([]pair, error) {
	switch resolveKind(vn) {
	case yaml.MappingNode:
		return c.mergePairs(vn)
	case yaml.SequenceNode:
		var subs [][]pair
		for _, sn := range vn.Content {
			if resolveKind(sn) != yaml.MappingNode {
				return nil, c.errorf(sn, ErrConstruct, "expected a mapping for merging, but found %s", kindName(sn))
			}
			ps, err := c.mergePairs(sn)
			if err != nil {
				return nil, err
			}
			subs = append(subs, ps)
		}
		var res []pair
		for i := len(subs) - 1; i >= 0; i-- {
			res = append(res, subs[i]...)
		}
		return res, nil
	}
	return nil, c.errorf(vn, ErrConstruct, "expected a mapping or list of mappings for merging, but found %s", kindName(vn))
}

func (c *constructor) mergePairs(vn *yaml.Node) ([]pair, error) {
	m, err := c.construct(vn)
	if err != nil {
		return nil, err
	}
	res := make([]pair, len(m.Fields))
	for i := range m.Fields {
		res[i] = pair{m.Fields[i], m.Values[i]}
	}
	return res, nil
}

// refersToAlias reports whether a "<<" value is an alias or a sequence
// holding one. Unexpanded, such a merge is kept as a literal entry.
func refersToAlias(vn *yaml.Node) bool {
	if vn.Kind == yaml.AliasNode {
		return true
	}
	if vn.Kind != yaml.SequenceNode {
		return false
	}
	for _, sn := range vn.Content {
		if sn.Kind == yaml.AliasNode {
			return true
		}
	}
	return false
}

func resolveKind(yn *yaml.Node) yaml.Kind {
	for yn.Kind == yaml.AliasNode && yn.Alias != nil {
		yn = yn.Alias
	}
	return yn.Kind
}

func kindName(yn *yaml.Node) string {
	switch resolveKind(yn) {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return strings.ToLower(fmt.Sprint(yn.Kind))
	}
}
