package encode

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/signadot/tony-format/yq/annotate"
	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/ir"
)

const (
	defaultWidth = 80
	noWidth      = math.MaxInt
)

type EncState struct {
	out       *bytes.Buffer
	line, col int
	indent    int
	indents   []int
	flowLevel int

	// whether the last character written was whitespace, and whether
	// only indentation has been written on the current line.
	whitespace bool
	indention  bool
	openEnded  bool

	bestIndent int
	width      int

	format        format.Format
	version       grammar.Version
	grammar       *grammar.Grammar
	indentless    bool
	explicitStart bool
	explicitEnd   bool
	annotations   bool

	anchors map[string]bool

	colorType ir.Type
	colorAttr ColorAttr
	Color     func(ir.Type, ColorAttr, string) string
}

// nodeCtx tells a node where it is being written.
type nodeCtx struct {
	root      bool
	sequence  bool
	mapping   bool
	simpleKey bool
	key       bool
	// a "<<" key whose value reads back as a merge
	merge bool
}

// Encoder writes a stream of documents.
type Encoder struct {
	w      io.Writer
	es     *EncState
	n      int
	closed bool
	err    error
}

func NewEncoder(w io.Writer, opts ...EncodeOption) *Encoder {
	es := &EncState{
		out:        bytes.NewBuffer(nil),
		indent:     -1,
		whitespace: true,
		indention:  true,
		bestIndent: 2,
		width:      defaultWidth,
		version:    grammar.V11,
	}
	for _, opt := range opts {
		opt(es)
	}
	e := &Encoder{w: w, es: es}
	es.grammar, e.err = grammar.Select(es.version, true)
	return e
}

// Encode writes doc followed by a newline.
func Encode(doc *ir.Node, w io.Writer, opts ...EncodeOption) error {
	return EncodeAll([]*ir.Node{doc}, w, opts...)
}

// EncodeAll writes docs as one stream.
func EncodeAll(docs []*ir.Node, w io.Writer, opts ...EncodeOption) error {
	enc := NewEncoder(w, opts...)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return enc.Close()
}

// Encode writes the next document. Errors are sticky.
func (e *Encoder) Encode(doc *ir.Node) error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return fmt.Errorf("%w: encoder closed", ErrEncoding)
	}
	es := e.es
	es.out.Reset()
	var err error
	if es.format.IsJSON() {
		err = encodeJSONDocument(doc, es)
	} else {
		err = encodeDocument(doc, es, e.n == 0)
	}
	if err == nil {
		_, err = e.w.Write(es.out.Bytes())
	}
	if err != nil {
		e.err = err
		return err
	}
	e.n++
	if debug.Dump() {
		debug.Logf("dumped document %d as %s (%d bytes)", e.n, es.format, es.out.Len())
	}
	return nil
}

// Close ends the stream, writing a document end marker when the last
// document could otherwise run on.
func (e *Encoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return nil
	}
	e.closed = true
	es := e.es
	if !es.openEnded {
		return nil
	}
	es.out.Reset()
	es.colorType = ir.NullType
	es.writeIndicator("...", true, false, false, MarkerColor)
	es.writeIndent()
	_, e.err = e.w.Write(es.out.Bytes())
	return e.err
}

func encodeDocument(doc *ir.Node, es *EncState, first bool) error {
	if es.annotations {
		var err error
		if doc, err = annotate.Restore(doc); err != nil {
			return err
		}
	}
	es.anchors = map[string]bool{}
	if !first || es.explicitStart {
		es.writeIndent()
		es.colorType = doc.Type
		es.writeIndicator("---", true, false, false, MarkerColor)
	}
	if err := encode(doc, es, nodeCtx{root: true}); err != nil {
		return err
	}
	es.writeIndent()
	if es.explicitEnd {
		es.colorType = doc.Type
		es.writeIndicator("...", true, false, false, MarkerColor)
		es.writeIndent()
	}
	return nil
}

func encode(node *ir.Node, es *EncState, ctx nodeCtx) error {
	if node.Type == ir.AliasType {
		if es.annotations && es.anchors[node.String] {
			es.colorType = ir.AliasType
			es.writeIndicator("*"+node.String, true, false, false, AnchorColor)
			return nil
		}
		node = aliasObject(node, es.annotations)
	}
	es.colorType = node.Type
	if err := writeAnchor(node, es); err != nil {
		return err
	}
	switch node.Type {
	case ir.ObjectType:
		writeCollectionTag(node, es)
		if es.flowLevel > 0 || isFlow(node, es) || len(node.Fields) == 0 {
			return encodeFlowObject(node, es)
		}
		return encodeBlockObject(node, es)
	case ir.ArrayType:
		writeCollectionTag(node, es)
		if es.flowLevel > 0 || isFlow(node, es) || len(node.Values) == 0 {
			return encodeFlowArray(node, es)
		}
		return encodeBlockArray(node, es, ctx)
	default:
		return encodeScalar(node, es, ctx)
	}
}

// aliasObject stands in for an alias whose anchor is not available.
func aliasObject(node *ir.Node, flow bool) *ir.Node {
	res := ir.FromKeyVals([]ir.KeyVal{
		{Key: ir.FromString(annotate.AliasKey), Val: ir.FromString(node.String)},
	})
	if flow {
		res.Style = ir.FlowStyle
	}
	return res
}

func isFlow(node *ir.Node, es *EncState) bool {
	return es.annotations && node.Style == ir.FlowStyle
}

func writeAnchor(node *ir.Node, es *EncState) error {
	if !es.annotations || node.Anchor == "" {
		return nil
	}
	if strings.ContainsAny(node.Anchor, " \t\r\n,[]{}") {
		return fmt.Errorf("%w: %q at %s", ErrInvalidAnchor, node.Anchor, node.Path())
	}
	es.anchors[node.Anchor] = true
	es.writeIndicator("&"+node.Anchor, true, false, false, AnchorColor)
	return nil
}

func writeCollectionTag(node *ir.Node, es *EncState) {
	if !es.annotations || node.Tag == "" {
		return
	}
	es.writeIndicator(prepareTag(node.Tag), true, false, false, TagColor)
}

// Object encoding

func encodeBlockObject(node *ir.Node, es *EncState) error {
	es.increaseIndent(false, false)
	for i, k := range node.Fields {
		es.writeIndent()
		if err := encodeKey(k, node.Values[i], es, false); err != nil {
			return err
		}
		if err := encode(node.Values[i], es, nodeCtx{mapping: true}); err != nil {
			return err
		}
	}
	es.popIndent()
	return nil
}

func encodeFlowObject(node *ir.Node, es *EncState) error {
	es.colorType = ir.ObjectType
	es.writeIndicator("{", true, true, false, SepColor)
	es.flowLevel++
	es.increaseIndent(true, false)
	for i, k := range node.Fields {
		if i > 0 {
			es.colorType = ir.ObjectType
			es.writeIndicator(",", false, false, false, SepColor)
		}
		if es.col > es.width {
			es.writeIndent()
		}
		if err := encodeKey(k, node.Values[i], es, true); err != nil {
			return err
		}
		if err := encode(node.Values[i], es, nodeCtx{mapping: true}); err != nil {
			return err
		}
	}
	es.popIndent()
	es.flowLevel--
	es.colorType = ir.ObjectType
	es.writeIndicator("}", false, false, false, SepColor)
	return nil
}

// encodeKey writes k and the value indicator, as "k:" when k fits on one
// line and as "? k\n:" otherwise.
func encodeKey(k, v *ir.Node, es *EncState, flow bool) error {
	merge := isMerge(k, v, es)
	if checkSimpleKey(k, es) {
		if err := encode(k, es, nodeCtx{mapping: true, simpleKey: true, key: true, merge: merge}); err != nil {
			return err
		}
		es.colorType = ir.ObjectType
		es.writeIndicator(":", false, false, false, SepColor)
		return nil
	}
	es.colorType = ir.ObjectType
	es.writeIndicator("?", true, false, !flow, SepColor)
	if err := encode(k, es, nodeCtx{mapping: true, key: true, merge: merge}); err != nil {
		return err
	}
	if !flow {
		es.writeIndent()
	} else if es.col > es.width {
		es.writeIndent()
	}
	es.colorType = ir.ObjectType
	es.writeIndicator(":", true, false, !flow, SepColor)
	return nil
}

// isMerge reports whether k is a "<<" key kept from a merge of aliases:
// its value is an alias written as "*name", or a list of mappings and
// such aliases holding at least one alias.
func isMerge(k, v *ir.Node, es *EncState) bool {
	if !es.annotations || k.Type != ir.StringType || k.String != "<<" || k.Tag != "" {
		return false
	}
	emitted := func(n *ir.Node) bool {
		return n.Type == ir.AliasType && es.anchors[n.String]
	}
	if v.Type != ir.ArrayType {
		return emitted(v)
	}
	aliases := 0
	for _, sv := range v.Values {
		switch {
		case emitted(sv):
			aliases++
		case sv.Type != ir.ObjectType:
			return false
		}
	}
	return aliases > 0
}

func checkSimpleKey(k *ir.Node, es *EncState) bool {
	n := 0
	if es.annotations && k.Anchor != "" {
		n += utf8.RuneCountInString(k.Anchor)
	}
	switch k.Type {
	case ir.AliasType:
		return n+utf8.RuneCountInString(k.String) < 128
	case ir.ObjectType:
		return n+len(grammar.MapTag) < 128 && len(k.Fields) == 0
	case ir.ArrayType:
		return n+len(grammar.SeqTag) < 128 && len(k.Values) == 0
	}
	sc := newScalar(k, es)
	n += utf8.RuneCountInString(prepareTag(sc.tag)) + len(sc.text)
	return n < 128 && !sc.a.empty && !sc.a.multiline
}

// Array encoding

func encodeBlockArray(node *ir.Node, es *EncState, ctx nodeCtx) error {
	indentless := es.indentless && ctx.mapping && !es.indention
	es.increaseIndent(false, indentless)
	for _, v := range node.Values {
		es.writeIndent()
		es.colorType = ir.ArrayType
		es.writeIndicator("-", true, false, true, SepColor)
		if err := encode(v, es, nodeCtx{sequence: true}); err != nil {
			return err
		}
	}
	es.popIndent()
	return nil
}

func encodeFlowArray(node *ir.Node, es *EncState) error {
	es.colorType = ir.ArrayType
	es.writeIndicator("[", true, true, false, SepColor)
	es.flowLevel++
	es.increaseIndent(true, false)
	for i, v := range node.Values {
		if i > 0 {
			es.colorType = ir.ArrayType
			es.writeIndicator(",", false, false, false, SepColor)
		}
		if es.col > es.width {
			es.writeIndent()
		}
		if err := encode(v, es, nodeCtx{sequence: true}); err != nil {
			return err
		}
	}
	es.popIndent()
	es.flowLevel--
	es.colorType = ir.ArrayType
	es.writeIndicator("]", false, false, false, SepColor)
	return nil
}

// Indentation

func (es *EncState) increaseIndent(flow, indentless bool) {
	es.indents = append(es.indents, es.indent)
	switch {
	case es.indent < 0 && flow:
		es.indent = es.bestIndent
	case es.indent < 0:
		es.indent = 0
	case !indentless:
		es.indent += es.bestIndent
	}
}

func (es *EncState) popIndent() {
	n := len(es.indents) - 1
	es.indent = es.indents[n]
	es.indents = es.indents[:n]
}

// Helper functions for writing

func (es *EncState) writeIndicator(ind string, needWhitespace, whitespace, indention bool, attr ColorAttr) {
	if !es.whitespace && needWhitespace {
		es.out.WriteByte(' ')
		es.col++
	}
	es.whitespace = whitespace
	es.indention = es.indention && indention
	es.col += utf8.RuneCountInString(ind)
	es.openEnded = false
	es.out.WriteString(applyColor(es, es.colorType, attr, ind))
}

func (es *EncState) writeIndent() {
	indent := max(es.indent, 0)
	if !es.indention || es.col > indent || (es.col == indent && !es.whitespace) {
		es.writeLineBreak("\n")
	}
	if es.col < indent {
		es.whitespace = true
		es.out.WriteString(strings.Repeat(" ", indent-es.col))
		es.col = indent
	}
}

func (es *EncState) writeLineBreak(br string) {
	es.whitespace = true
	es.indention = true
	es.line++
	es.col = 0
	es.out.WriteString(br)
}

// writeChunk writes scalar text, advancing the column.
func (es *EncState) writeChunk(text []rune) {
	if len(text) == 0 {
		return
	}
	es.col += len(text)
	es.writeData(string(text))
}

// writeData writes scalar text in the current scalar color.
func (es *EncState) writeData(s string) {
	if s == "" {
		return
	}
	es.out.WriteString(applyColor(es, es.colorType, es.colorAttr, s))
}

// Color application helpers

func applyColor(es *EncState, nodeType ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(nodeType, attr, v)
}
