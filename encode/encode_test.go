package encode

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/signadot/tony-format/yq/bridge"
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/ir"
	"github.com/signadot/tony-format/yq/load"
)

// obj builds a mapping from alternating string keys and values.
func obj(kvs ...any) *ir.Node {
	res := ir.FromKeyVals(nil)
	for i := 0; i < len(kvs); i += 2 {
		res.Set(ir.FromString(kvs[i].(string)), value(kvs[i+1]))
	}
	return res
}

func arr(vs ...any) *ir.Node {
	res := ir.FromSlice(nil)
	for _, v := range vs {
		res.Append(value(v))
	}
	return res
}

func value(v any) *ir.Node {
	switch x := v.(type) {
	case *ir.Node:
		return x
	case string:
		return ir.FromString(x)
	case int:
		return ir.FromInt(int64(x))
	case float64:
		return ir.FromFloat(x)
	case bool:
		return ir.FromBool(x)
	case nil:
		return ir.Null()
	}
	panic("value")
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func dump(t *testing.T, docs []*ir.Node, opts ...EncodeOption) string {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := EncodeAll(docs, buf, opts...); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		docs []*ir.Node
		opts []EncodeOption
		want string
	}{
		{
			name: "nested",
			docs: []*ir.Node{obj("a", obj("b", nil))},
			want: "a:\n  b: null\n",
		},
		{
			name: "multi document",
			docs: []*ir.Node{obj("a", "b"), obj("c", "d")},
			want: "a: b\n---\nc: d\n",
		},
		{
			name: "root scalars leave the stream open",
			docs: []*ir.Node{ir.FromString("b"), ir.FromInt(1)},
			want: "b\n--- 1\n...\n",
		},
		{
			name: "explicit markers",
			docs: []*ir.Node{obj("a", 1), ir.FromString("x")},
			opts: []EncodeOption{ExplicitStart(true), ExplicitEnd(true)},
			want: "---\na: 1\n...\n--- x\n...\n",
		},
		{
			name: "quoting under 1.1",
			docs: []*ir.Node{obj(
				"on", "12:34:56",
				"x", "yes",
				"y", "1.5",
				"z", "",
				"t", "a\tb",
				"n", "null",
				"d", "2001-12-14",
				"m", "<<",
				"h", "#x",
				"c", "a: b",
				"s", " lead",
				"q", "it's",
				"dash", "- x",
				"u", "é ü",
				"e", "😀\t",
				"k", "~",
				"o", "0o17",
				"b", "0b11",
				"z1", "0900",
				"z2", "-09_1",
				"z3", "0",
				"z4", "10900",
			)},
			want: `'on': '12:34:56'
x: 'yes'
y: '1.5'
z: ''
t: "a\tb"
n: 'null'
d: '2001-12-14'
m: '<<'
h: '#x'
c: 'a: b'
s: ' lead'
q: it's
dash: '- x'
u: é ü
e: "\U0001F600\t"
k: '~'
o: 0o17
b: '0b11'
z1: '0900'
z2: '-09_1'
z3: '0'
z4: '10900'
`,
		},
		{
			name: "quoting under 1.2",
			docs: []*ir.Node{obj("on", "12:34:56", "x", "yes", "o", "0o17", "b", "0b11")},
			opts: []EncodeOption{GrammarVersion(grammar.V12)},
			want: "on: 12:34:56\nx: yes\no: '0o17'\nb: 0b11\n",
		},
		{
			name: "floats",
			docs: []*ir.Node{arr(1.0, 1e20, 1e-05, 0.5, 1e16, 123456.789)},
			want: "- 1.0\n- 1.0e+20\n- 1.0e-05\n- 0.5\n- 1.0e+16\n- 123456.789\n",
		},
		{
			name: "other scalars",
			docs: []*ir.Node{arr(1, -5, ir.FromNumber("123456789012345678901234567890"), true, false, nil)},
			want: "- 1\n- -5\n- 123456789012345678901234567890\n- true\n- false\n- null\n",
		},
		{
			name: "collections",
			docs: []*ir.Node{obj(
				"a", arr(1, arr(2, 3), obj("x", 1, "y", arr(2))),
				"e", arr(),
				"f", obj(),
				"g", arr(arr()),
				"h", arr(obj()),
			)},
			want: "a:\n  - 1\n  - - 2\n    - 3\n  - x: 1\n    y:\n      - 2\ne: []\nf: {}\ng:\n  - []\nh:\n  - {}\n",
		},
		{
			name: "indentless",
			docs: []*ir.Node{obj(
				"a", arr(1, arr(2, 3), obj("x", 1, "y", arr(2))),
				"e", arr(),
				"f", obj(),
				"g", arr(arr()),
				"h", arr(obj()),
			)},
			opts: []EncodeOption{Indentless(true)},
			want: "a:\n- 1\n- - 2\n  - 3\n- x: 1\n  y:\n  - 2\ne: []\nf: {}\ng:\n- []\nh:\n- {}\n",
		},
		{
			name: "root sequence",
			docs: []*ir.Node{arr(obj("a", 1, "b", 2), arr(1, 2), "x")},
			want: "- a: 1\n  b: 2\n- - 1\n  - 2\n- x\n",
		},
		{
			name: "long key",
			docs: []*ir.Node{obj(strings.Repeat("k", 130), 1)},
			want: "? " + strings.Repeat("k", 130) + "\n: 1\n",
		},
		{
			name: "literal block by default",
			docs: []*ir.Node{obj("a", "l1\nl2\n", "b", "x\n y", "c", "a \nb")},
			want: "a: |\n  l1\n  l2\nb: |-\n  x\n   y\nc: \"a \\nb\"\n",
		},
		{
			name: "multi-line key",
			docs: []*ir.Node{obj("k\nk", 1)},
			want: "? 'k\n\n  k'\n: 1\n",
		},
		{
			name: "plain wraps at 80",
			docs: []*ir.Node{obj("a", words(30))},
			want: "a: " + words(16) + "\n  " + words(14) + "\n",
		},
		{
			name: "single quoted wraps",
			docs: []*ir.Node{obj("a", "x: "+words(30))},
			want: "a: 'x: " + words(15) + "\n  " + words(15) + "'\n",
		},
		{
			name: "double quoted wraps with escapes",
			docs: []*ir.Node{obj("a", "\t"+words(30))},
			want: "a: \"\\t" + words(16) + "\\\n  \\ " + words(14) + "\"\n",
		},
		{
			name: "width",
			docs: []*ir.Node{arr("aaaaaaaaaa bbb")},
			opts: []EncodeOption{Width(8)},
			want: "- aaaaaaaaaa\n  bbb\n",
		},
		{
			name: "nested width",
			docs: []*ir.Node{obj("a", obj("b", arr(words(30))))},
			opts: []EncodeOption{Width(40)},
			want: "a:\n  b:\n    - " + words(8) + "\n      " + words(8) + "\n      " + words(8) + "\n      " + words(6) + "\n",
		},
		{
			name: "no width",
			docs: []*ir.Node{obj("a", words(30))},
			opts: []EncodeOption{Width(0)},
			want: "a: " + words(30) + "\n",
		},
		{
			name: "indent",
			docs: []*ir.Node{obj("a", obj("b", arr(1)))},
			opts: []EncodeOption{Indent(4)},
			want: "a:\n    b:\n        - 1\n",
		},
		{
			name: "annotations ignored",
			docs: []*ir.Node{obj("a", ir.FromString("x").WithTag("!t").WithStyle(ir.DoubleQuotedStyle))},
			want: "a: x\n",
		},
		{
			name: "unresolved alias without annotations",
			docs: []*ir.Node{obj("a", ir.FromAlias("x"))},
			want: "a:\n  __yq_alias__: x\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dump(t, tt.docs, tt.opts...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

// roundTrip loads src with annotations and unexpanded aliases, passes it
// through JSON and dumps it back with annotations.
func roundTrip(t *testing.T, src string, opts ...EncodeOption) string {
	t.Helper()
	docs, err := load.Load([]byte(src), load.Annotate(true), load.ExpandAliases(false))
	if err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	enc := bridge.NewEncoder(buf)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			t.Fatal(err)
		}
	}
	back, err := bridge.FromJSON(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return dump(t, back, append([]EncodeOption{UseAnnotations(true)}, opts...)...)
}

func TestEncodeAnnotated(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []EncodeOption
		want string
	}{
		{
			name: "tags",
			in:   "a: !foo x\nb: !bar {c: 1}\nc: !baz\n  d: 2\ne: !q [1]\nf:\n  - !t g\n  - !m {h: 1}\n  - !k\n    i: j\n",
		},
		{
			name: "styles",
			in:   "a: |\n  l1\n  l2\nb: |+\n  k\n\nc: >-\n  f1\n  f2\n\n  f3\nd: \"q\"\ne: 's'\nf: [1, {g: h}]\n",
			want: "a: |\n  l1\n  l2\nb: |+\n  k\n\nc: >-\n  f1 f2\n\n  f3\nd: \"q\"\ne: 's'\nf: [1, {g: h}]\n",
		},
		{
			name: "anchors and aliases",
			in:   "a: &x 1\nb: *x\nc: &y {d: 2}\ne: *y\nf: &z\n  g: 1\nh: *z\n",
		},
		{
			name: "sequence aliases",
			in:   "- &a x\n- *a\n",
		},
		{
			name: "merge alias",
			in:   "b: &b {x: 1}\nm:\n  <<: *b\n  y: 2\n",
		},
		{
			name: "merge alias list",
			in:   "b: &b {x: 1}\nc: &c {z: 3}\nm:\n  <<: [*b, *c]\n  y: 2\n",
		},
		{
			name: "merge of an alias and a mapping",
			in:   "b: &b {x: 1}\nm:\n  <<: [*b, {z: 3}]\n  y: 2\n",
		},
		{
			name: "flow merge alias",
			in:   "b: &b {x: 1}\nm: {<<: *b, y: 2}\n",
		},
		{
			name: "merge of a plain mapping",
			in:   "m:\n  <<: {x: 1}\n  y: 2\n",
			want: "m:\n  x: 1\n  y: 2\n",
		},
		{
			name: "flow wraps",
			in:   "f: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20]\n",
			opts: []EncodeOption{Width(20)},
			want: "f: [1, 2, 3, 4, 5, 6,\n  7, 8, 9, 10, 11, 12,\n  13, 14, 15, 16, 17,\n  18, 19, 20]\n",
		},
		{
			name: "flow mapping wraps",
			in:   "f: {aaaa: 1, bbbb: 2, cccc: 3, dddd: 4, eeee: 5}\n",
			opts: []EncodeOption{Width(20)},
			want: "f: {aaaa: 1, bbbb: 2,\n  cccc: 3, dddd: 4, eeee: 5}\n",
		},
		{
			name: "multi document",
			in:   "a: !t b\n---\n- 'c'\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			if want == "" {
				want = tt.in
			}
			got := roundTrip(t, tt.in, tt.opts...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeKeyQuoting(t *testing.T) {
	tests := []struct {
		name string
		doc  *ir.Node
		want string
	}{
		{
			name: "string value",
			doc:  obj("<<", ir.FromString("x")),
			want: "'<<': x\n",
		},
		{
			name: "alias before its anchor",
			doc:  obj("<<", ir.FromAlias("b"), "b", ir.FromInt(1).WithAnchor("b")),
			want: "'<<': {__yq_alias__: b}\nb: &b 1\n",
		},
		{
			name: "emitted alias",
			doc:  obj("b", obj("x", ir.FromInt(1)).WithAnchor("b"), "m", obj("<<", ir.FromAlias("b"))),
			want: "b: &b\n  x: 1\nm:\n  <<: *b\n",
		},
		{
			name: "list with an unknown alias",
			doc: obj("b", obj("x", ir.FromInt(1)).WithAnchor("b"),
				"m", obj("<<", ir.FromSlice([]*ir.Node{ir.FromAlias("b"), ir.FromAlias("c")}))),
			want: "b: &b\n  x: 1\nm:\n  '<<':\n    - *b\n    - {__yq_alias__: c}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dump(t, []*ir.Node{tt.doc}, UseAnnotations(true))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestAliasBeforeAnchor(t *testing.T) {
	doc := obj("b", ir.FromAlias("x"), "a", ir.FromInt(1).WithAnchor("x"))
	got := dump(t, []*ir.Node{doc}, UseAnnotations(true))
	want := "b: {__yq_alias__: x}\na: &x 1\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAnchorsAreScopedToDocuments(t *testing.T) {
	docs := []*ir.Node{
		obj("a", ir.FromInt(1).WithAnchor("x")),
		obj("b", ir.FromAlias("x")),
	}
	got := dump(t, docs, UseAnnotations(true))
	want := "a: &x 1\n---\nb: {__yq_alias__: x}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"z: 1\na: [x, {y: 'q'}]\nm:\n  - |\n    text\n  - >\n    folded\n",
		"on: yes\nt: 2001-12-14\nn: ~\nf: 1e3\n",
		"- &a !t {k: v}\n- *a\n- \"\\ttab\"\n",
		"a: b\n---\n- c\n---\nplain\n",
	}
	for _, in := range inputs {
		once := roundTrip(t, in)
		twice := roundTrip(t, once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("%q: (-once +twice):\n%s", in, diff)
		}
	}
}

func TestRoundTripPreservesValues(t *testing.T) {
	in := "z: 1\na: [x, {y: 'q', '1': 2.5}]\nempty: ''\ntext: \"a\\nb \"\nbig: 123456789012345678901234567890\nk: 'on'\n"
	orig, err := load.Load([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	d, err := bridge.ToJSON(orig[0])
	if err != nil {
		t.Fatal(err)
	}
	fromJSON, err := bridge.FromJSON(d)
	if err != nil {
		t.Fatal(err)
	}
	out := dump(t, fromJSON)
	back, err := load.Load([]byte(out))
	if err != nil {
		t.Fatalf("%v in\n%s", err, out)
	}
	if ir.Compare(orig[0], back[0]) != 0 {
		t.Errorf("values differ after round trip:\n%s", out)
	}
}

func TestEncodeJSON(t *testing.T) {
	doc := obj("a", arr(1, "x", 1.5), "b", obj(), "c", arr(), "d", obj("e", nil, "f", true), "g", ir.FromAlias("y"))
	got := dump(t, []*ir.Node{doc}, EncodeFormat(format.JSONFormat))
	want := `{
  "a": [
    1,
    "x",
    1.5
  ],
  "b": {},
  "c": [],
  "d": {
    "e": null,
    "f": true
  },
  "g": {
    "__yq_alias__": "y"
  }
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if f := FormatFromOpts(EncodeFormat(format.JSONFormat)); f != format.JSONFormat {
		t.Errorf("format %s", f)
	}
}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestColors(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	doc := obj("a", arr(1, "x", nil), "<<", obj("b", "100%"))
	plain := dump(t, []*ir.Node{doc})
	colored := dump(t, []*ir.Node{doc}, EncodeColors(NewColors()))
	if colored == plain {
		t.Fatal("expected escape sequences")
	}
	if diff := cmp.Diff(plain, ansi.ReplaceAllString(colored, "")); diff != "" {
		t.Errorf("(-plain +stripped):\n%s", diff)
	}
}

func TestEncodeErrors(t *testing.T) {
	doc := obj("a", ir.FromInt(1).WithAnchor("a b"))
	err := Encode(doc, &bytes.Buffer{}, UseAnnotations(true))
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Errorf("got %v, want ErrInvalidAnchor", err)
	}
	err = Encode(obj("a", 1), &bytes.Buffer{}, GrammarVersion("1.3"))
	if !errors.Is(err, grammar.ErrUnknownVersion) {
		t.Errorf("got %v, want ErrUnknownVersion", err)
	}
}

func TestEncoderClosed(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := NewEncoder(buf)
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty stream wrote %q", buf.String())
	}
	if err := enc.Encode(ir.Null()); !errors.Is(err, ErrEncoding) {
		t.Errorf("got %v, want ErrEncoding", err)
	}
}
