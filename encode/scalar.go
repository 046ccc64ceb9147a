package encode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/ir"
)

type scalar struct {
	node *ir.Node
	text []rune
	tag  string

	// whether the tag may be left out for plain and for quoted text.
	plainImplicit  bool
	quotedImplicit bool
	custom         bool

	style ir.Style
	a     analysis
}

func newScalar(node *ir.Node, es *EncState) *scalar {
	sc := &scalar{node: node}
	var text string
	switch node.Type {
	case ir.NullType:
		text, sc.tag = "null", grammar.NullTag
	case ir.BoolType:
		text, sc.tag = strconv.FormatBool(node.Bool), grammar.BoolTag
	case ir.NumberType:
		text, sc.tag = numberText(node), grammar.IntTag
		if node.Float64 != nil {
			sc.tag = grammar.FloatTag
		}
	case ir.TimestampType:
		text, sc.tag = node.String, grammar.TimestampTag
	default:
		text, sc.tag = node.String, grammar.StrTag
	}
	sc.plainImplicit = es.grammar.Resolve(text) == sc.tag
	if sc.tag == grammar.StrTag && es.version == grammar.V11 && leadingZeroDigits(text) {
		sc.plainImplicit = false
	}
	sc.quotedImplicit = sc.tag == grammar.StrTag
	if es.annotations {
		sc.style = node.Style
		if node.Tag != "" {
			sc.tag = node.Tag
			sc.custom = true
			sc.plainImplicit, sc.quotedImplicit = false, false
		}
	}
	sc.text = []rune(text)
	sc.a = analyze(sc.text)
	return sc
}

// leadingZeroDigits reports whether s is a run of digits and underscores
// after a leading zero, like 0900. Under 1.1 such text is a string, but
// many 1.1 readers take it for a number.
func leadingZeroDigits(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	return strings.Trim(s, "0123456789_") == ""
}

// numberText writes floats so that they read back as floats under both
// grammars.
func numberText(n *ir.Node) string {
	if n.Float64 == nil {
		return ir.NumberText(n)
	}
	s := ir.FormatFloat(*n.Float64)
	if !strings.Contains(s, ".") && strings.Contains(s, "e") {
		s = strings.Replace(s, "e", ".0e", 1)
	}
	return s
}

func encodeScalar(node *ir.Node, es *EncState, ctx nodeCtx) error {
	sc := newScalar(node, es)
	if ctx.merge {
		sc.plainImplicit, sc.style = true, ir.PlainStyle
	}
	style := chooseStyle(sc, es, ctx)
	if !sc.implicit(style) {
		es.writeIndicator(prepareTag(sc.tag), true, false, false, TagColor)
	}
	es.colorType, es.colorAttr = node.Type, scalarColor(sc, style, ctx)
	es.increaseIndent(true, false)
	split := !ctx.simpleKey
	switch style {
	case ir.DoubleQuotedStyle:
		writeDoubleQuoted(sc.text, split, es)
	case ir.SingleQuotedStyle:
		writeSingleQuoted(sc.text, split, es)
	case ir.FoldedStyle:
		writeFolded(sc.text, es)
	case ir.LiteralStyle:
		writeLiteral(sc.text, es)
	default:
		writePlain(sc.text, split, ctx.root, es)
	}
	es.popIndent()
	return nil
}

func (sc *scalar) implicit(style ir.Style) bool {
	if style == ir.PlainStyle {
		return sc.plainImplicit
	}
	return sc.quotedImplicit
}

func scalarColor(sc *scalar, style ir.Style, ctx nodeCtx) ColorAttr {
	switch {
	case ctx.key && string(sc.text) == "<<":
		return MergeColor
	case ctx.key:
		return FieldColor
	case sc.node.Type != ir.StringType:
		return ValueColor
	case style.IsBlockScalar():
		return LiteralMultiColor
	case style == ir.PlainStyle:
		return LiteralSingleColor
	}
	return ValueColor
}

// chooseStyle picks plain when the text reads back unchanged, then the
// requested block style, a literal block for multi-line text, single
// quotes and finally double quotes, which can hold anything.
func chooseStyle(sc *scalar, es *EncState, ctx nodeCtx) ir.Style {
	a := &sc.a
	if sc.style == ir.DoubleQuotedStyle {
		return ir.DoubleQuotedStyle
	}
	if sc.style == ir.PlainStyle && (sc.plainImplicit || sc.custom && !a.empty) {
		keyOK := !(ctx.simpleKey && (a.empty || a.multiline))
		if keyOK && (es.flowLevel > 0 && a.allowFlowPlain || es.flowLevel == 0 && a.allowBlockPlain) {
			return ir.PlainStyle
		}
	}
	block := es.flowLevel == 0 && !ctx.simpleKey && a.allowBlock
	if sc.style.IsBlockScalar() && block {
		return sc.style
	}
	if sc.style == ir.PlainStyle && a.multiline && block && !ctx.key {
		return ir.LiteralStyle
	}
	if sc.style == ir.PlainStyle || sc.style == ir.SingleQuotedStyle {
		if a.allowSingleQuoted && !(ctx.simpleKey && a.multiline) {
			return ir.SingleQuotedStyle
		}
	}
	return ir.DoubleQuotedStyle
}

func prepareTag(tag string) string {
	if tag == "!" {
		return tag
	}
	handle, suffix := "", tag
	switch {
	case strings.HasPrefix(tag, "tag:yaml.org,2002:") && len(tag) > len("tag:yaml.org,2002:"):
		handle, suffix = "!!", tag[len("tag:yaml.org,2002:"):]
	case strings.HasPrefix(tag, "!!") && len(tag) > 2:
		handle, suffix = "!!", tag[2:]
	case strings.HasPrefix(tag, "!"):
		handle, suffix = "!", tag[1:]
	}
	buf := &strings.Builder{}
	for _, ch := range suffix {
		if isTagChar(ch) || ch == '!' && handle != "!" {
			buf.WriteRune(ch)
			continue
		}
		for _, b := range []byte(string(ch)) {
			fmt.Fprintf(buf, "%%%02X", b)
		}
	}
	if handle == "" {
		return "!<" + buf.String() + ">"
	}
	return handle + buf.String()
}

func isTagChar(ch rune) bool {
	switch {
	case ch >= '0' && ch <= '9', ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
		return true
	}
	return strings.ContainsRune("-;/?:@&=+$,_.~*'()[]", ch)
}

type analysis struct {
	empty             bool
	multiline         bool
	allowFlowPlain    bool
	allowBlockPlain   bool
	allowSingleQuoted bool
	allowBlock        bool
}

func isBreak(ch rune) bool {
	return ch == '\n' || ch == '\u0085' || ch == '\u2028' || ch == '\u2029'
}

func isBlank(ch rune) bool {
	return ch == 0 || ch == ' ' || ch == '\t' || ch == '\r' || isBreak(ch)
}

func isPrintable(ch rune) bool {
	switch {
	case ch == '\n', ch >= 0x20 && ch <= 0x7e:
		return true
	case ch == 0xfeff:
		return false
	}
	return ch == 0x85 || ch >= 0xa0 && ch <= 0xd7ff || ch >= 0xe000 && ch <= 0xfffd ||
		ch >= 0x10000 && ch < 0x10ffff
}

// analyze reports which styles can represent text.
func analyze(text []rune) analysis {
	if len(text) == 0 {
		return analysis{empty: true, allowBlockPlain: true, allowSingleQuoted: true}
	}
	var (
		blockIndicators, flowIndicators bool
		lineBreaks, special             bool
		leadingSpace, leadingBreak      bool
		trailingSpace, trailingBreak    bool
		breakSpace, spaceBreak          bool
	)
	if s := string(text); strings.HasPrefix(s, "---") || strings.HasPrefix(s, "...") {
		blockIndicators, flowIndicators = true, true
	}
	precededByBlank := true
	followedByBlank := len(text) == 1 || isBlank(text[1])
	prevSpace, prevBreak := false, false
	last := len(text) - 1
	for i, ch := range text {
		if i == 0 {
			if strings.ContainsRune("#,[]{}&*!|>'\"%@`", ch) {
				flowIndicators, blockIndicators = true, true
			}
			if ch == '?' || ch == ':' {
				flowIndicators = true
				if followedByBlank {
					blockIndicators = true
				}
			}
			if ch == '-' && followedByBlank {
				flowIndicators, blockIndicators = true, true
			}
		} else {
			if strings.ContainsRune(",?[]{}", ch) {
				flowIndicators = true
			}
			if ch == ':' {
				flowIndicators = true
				if followedByBlank {
					blockIndicators = true
				}
			}
			if ch == '#' && precededByBlank {
				flowIndicators, blockIndicators = true, true
			}
		}
		if isBreak(ch) {
			lineBreaks = true
		}
		if !isPrintable(ch) {
			special = true
		}
		switch {
		case ch == ' ':
			leadingSpace = leadingSpace || i == 0
			trailingSpace = trailingSpace || i == last
			breakSpace = breakSpace || prevBreak
			prevSpace, prevBreak = true, false
		case isBreak(ch):
			leadingBreak = leadingBreak || i == 0
			trailingBreak = trailingBreak || i == last
			spaceBreak = spaceBreak || prevSpace
			prevSpace, prevBreak = false, true
		default:
			prevSpace, prevBreak = false, false
		}
		precededByBlank = isBlank(ch)
		followedByBlank = i+2 >= len(text) || isBlank(text[i+2])
	}
	a := analysis{
		multiline:         lineBreaks,
		allowFlowPlain:    true,
		allowBlockPlain:   true,
		allowSingleQuoted: true,
		allowBlock:        true,
	}
	if leadingSpace || leadingBreak || trailingSpace || trailingBreak {
		a.allowFlowPlain, a.allowBlockPlain = false, false
	}
	if trailingSpace {
		a.allowBlock = false
	}
	if breakSpace {
		a.allowFlowPlain, a.allowBlockPlain, a.allowSingleQuoted = false, false, false
	}
	if spaceBreak || special {
		a.allowFlowPlain, a.allowBlockPlain, a.allowSingleQuoted, a.allowBlock = false, false, false, false
	}
	if lineBreaks {
		a.allowFlowPlain, a.allowBlockPlain = false, false
	}
	if flowIndicators {
		a.allowFlowPlain = false
	}
	if blockIndicators {
		a.allowBlockPlain = false
	}
	return a
}

// Scalar writers. Each walks the text once, tracking whether it is in a
// run of spaces or of line breaks; a single space past the width limit
// becomes a line break.

const eof = rune(-1)

func at(text []rune, i int) rune {
	if i < len(text) {
		return text[i]
	}
	return eof
}

func writePlain(text []rune, split, root bool, es *EncState) {
	if root {
		es.openEnded = true
	}
	if len(text) == 0 {
		return
	}
	if !es.whitespace {
		es.out.WriteByte(' ')
		es.col++
	}
	es.whitespace = false
	es.indention = false
	spaces := false
	start := 0
	for end := 0; end <= len(text); end++ {
		ch := at(text, end)
		if spaces {
			if ch != ' ' {
				if start+1 == end && es.col > es.width && split {
					es.writeIndent()
					es.whitespace = false
					es.indention = false
				} else {
					es.writeChunk(text[start:end])
				}
				start = end
			}
		} else if ch == eof || ch == ' ' {
			es.writeChunk(text[start:end])
			start = end
		}
		spaces = ch == ' '
	}
}

func writeSingleQuoted(text []rune, split bool, es *EncState) {
	es.writeIndicator("'", true, false, false, es.colorAttr)
	spaces, breaks := false, false
	start := 0
	for end := 0; end <= len(text); end++ {
		ch := at(text, end)
		switch {
		case spaces:
			if ch != ' ' {
				if start+1 == end && es.col > es.width && split && start != 0 && end != len(text) {
					es.writeIndent()
				} else {
					es.writeChunk(text[start:end])
				}
				start = end
			}
		case breaks:
			if !isBreak(ch) {
				if text[start] == '\n' {
					es.writeLineBreak("\n")
				}
				for _, br := range text[start:end] {
					es.writeLineBreak(string(br))
				}
				es.writeIndent()
				start = end
			}
		default:
			if ch == eof || ch == ' ' || ch == '\'' || isBreak(ch) {
				es.writeChunk(text[start:end])
				start = end
			}
		}
		if ch == '\'' {
			es.writeData("''")
			es.col += 2
			start = end + 1
		}
		if ch != eof {
			spaces, breaks = ch == ' ', isBreak(ch)
		}
	}
	es.writeIndicator("'", false, false, false, es.colorAttr)
}

var escapes = map[rune]string{
	0:        "0",
	'\a':     "a",
	'\b':     "b",
	'\t':     "t",
	'\n':     "n",
	'\v':     "v",
	'\f':     "f",
	'\r':     "r",
	0x1b:     "e",
	'"':      "\"",
	'\\':     "\\",
	0x85:     "N",
	0xa0:     "_",
	'\u2028': "L",
	'\u2029': "P",
}

func needsEscape(ch rune) bool {
	switch ch {
	case '"', '\\', 0x85, '\u2028', '\u2029', 0xfeff:
		return true
	}
	return !(ch >= 0x20 && ch <= 0x7e || ch >= 0xa0 && ch <= 0xd7ff || ch >= 0xe000 && ch <= 0xfffd)
}

func writeDoubleQuoted(text []rune, split bool, es *EncState) {
	es.writeIndicator("\"", true, false, false, es.colorAttr)
	start := 0
	for end := 0; end <= len(text); end++ {
		ch := at(text, end)
		if ch == eof || needsEscape(ch) {
			if start < end {
				es.writeChunk(text[start:end])
				start = end
			}
			if ch != eof {
				var data string
				switch r, ok := escapes[ch]; {
				case ok:
					data = "\\" + r
				case ch <= 0xff:
					data = fmt.Sprintf("\\x%02X", ch)
				case ch <= 0xffff:
					data = fmt.Sprintf("\\u%04X", ch)
				default:
					data = fmt.Sprintf("\\U%08X", ch)
				}
				es.col += len(data)
				es.writeData(data)
				start = end + 1
			}
		}
		if end > 0 && end < len(text)-1 && (ch == ' ' || start >= end) &&
			es.col+(end-start) > es.width && split {
			data := "\\"
			if start < end {
				data = string(text[start:end]) + data
				start = end
			}
			es.col += len([]rune(data))
			es.writeData(data)
			es.writeIndent()
			es.whitespace = false
			es.indention = false
			if text[start] == ' ' {
				es.writeData("\\")
				es.col++
			}
		}
	}
	es.writeIndicator("\"", false, false, false, es.colorAttr)
}

// blockHints returns the indentation and chomping indicators for a block
// scalar holding text.
func blockHints(text []rune, es *EncState) string {
	hints := ""
	if len(text) == 0 {
		return hints
	}
	if text[0] == ' ' || isBreak(text[0]) {
		hints += strconv.Itoa(es.bestIndent)
	}
	n := len(text)
	switch {
	case !isBreak(text[n-1]):
		hints += "-"
	case n == 1 || isBreak(text[n-2]):
		hints += "+"
	}
	return hints
}

func writeFolded(text []rune, es *EncState) {
	hints := blockHints(text, es)
	es.writeIndicator(">"+hints, true, false, false, es.colorAttr)
	if strings.HasSuffix(hints, "+") {
		es.openEnded = true
	}
	es.writeLineBreak("\n")
	leadingSpace, spaces, breaks := true, false, true
	start := 0
	for end := 0; end <= len(text); end++ {
		ch := at(text, end)
		switch {
		case breaks:
			if !isBreak(ch) {
				if !leadingSpace && ch != eof && ch != ' ' && text[start] == '\n' {
					es.writeLineBreak("\n")
				}
				leadingSpace = ch == ' '
				for _, br := range text[start:end] {
					es.writeLineBreak(string(br))
				}
				if ch != eof {
					es.writeIndent()
				}
				start = end
			}
		case spaces:
			if ch != ' ' {
				if start+1 == end && es.col > es.width {
					es.writeIndent()
				} else {
					es.writeChunk(text[start:end])
				}
				start = end
			}
		default:
			if ch == eof || ch == ' ' || isBreak(ch) {
				es.writeChunk(text[start:end])
				if ch == eof {
					es.writeLineBreak("\n")
				}
				start = end
			}
		}
		if ch != eof {
			breaks, spaces = isBreak(ch), ch == ' '
		}
	}
}

func writeLiteral(text []rune, es *EncState) {
	hints := blockHints(text, es)
	es.writeIndicator("|"+hints, true, false, false, es.colorAttr)
	if strings.HasSuffix(hints, "+") {
		es.openEnded = true
	}
	es.writeLineBreak("\n")
	breaks := true
	start := 0
	for end := 0; end <= len(text); end++ {
		ch := at(text, end)
		if breaks {
			if !isBreak(ch) {
				for _, br := range text[start:end] {
					es.writeLineBreak(string(br))
				}
				if ch != eof {
					es.writeIndent()
				}
				start = end
			}
		} else if ch == eof || isBreak(ch) {
			es.writeData(string(text[start:end]))
			if ch == eof {
				es.writeLineBreak("\n")
			}
			start = end
		}
		if ch != eof {
			breaks = isBreak(ch)
		}
	}
}
