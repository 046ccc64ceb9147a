package transcode

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/tony-format/yq/filter"
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/load"
	"github.com/signadot/tony-format/yq/xmldoc"
)

func inputs(docs ...string) []Input {
	res := make([]Input, len(docs))
	for i, d := range docs {
		res[i] = Input{Name: "test", Data: []byte(d)}
	}
	return res
}

func yamlOut(opts ...func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.OutputFormat = format.YAMLFormat
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func roundTrip(cfg *Config) {
	cfg.Annotate = true
	cfg.ExpandAliases = false
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		in   []Input
		f    filter.Filter
		want string
	}{
		{
			name: "yaml to json keeps key order",
			cfg:  DefaultConfig(),
			in:   inputs("z: 1\na: [x, 2.5]\nm: null\n---\nc: d\n"),
			want: "{\"z\":1,\"a\":[\"x\",2.5],\"m\":null}\n{\"c\":\"d\"}\n",
		},
		{
			name: "inputs concatenate",
			cfg:  DefaultConfig(),
			in:   inputs("a: 1\n", "b: 2\n"),
			want: "{\"a\":1}\n{\"b\":2}\n",
		},
		{
			name: "round trip without annotations",
			cfg:  yamlOut(),
			in:   inputs("a: !foo x\nb: 'q'\nd: [1, 2]\n"),
			want: "a: x\nb: q\nd:\n  - 1\n  - 2\n",
		},
		{
			name: "round trip with annotations",
			cfg:  yamlOut(roundTrip),
			in:   inputs("a: !foo x\nb: 'q'\nc: |\n  l1\n  l2\nd: [1, 2]\ne: &x 1\nf: *x\n"),
			want: "a: !foo x\nb: 'q'\nc: |\n  l1\n  l2\nd: [1, 2]\ne: &x 1\nf: *x\n",
		},
		{
			name: "output grammar 1.1 quotes",
			cfg:  yamlOut(),
			in:   inputs("on: 12:34:56\n"),
			want: "'on': '12:34:56'\n",
		},
		{
			name: "output grammar 1.1 quotes leading zeros",
			cfg:  yamlOut(),
			in:   inputs("on: '0900'\n"),
			want: "'on': '0900'\n",
		},
		{
			name: "one line documents",
			cfg:  DefaultConfig(),
			in:   inputs("a: 1", "[1, 2, 3]", "{}"),
			want: "{\"a\":1}\n[1,2,3]\n{}\n",
		},
		{
			name: "output grammar 1.2",
			cfg:  yamlOut(func(c *Config) { c.OutputGrammar = grammar.V12 }),
			in:   inputs("on: 12:34:56\n"),
			want: "on: 12:34:56\n",
		},
		{
			name: "input grammar 1.1",
			cfg:  func() *Config { c := DefaultConfig(); c.InputGrammar = grammar.V11; return c }(),
			in:   inputs("on: 12:34:56\n"),
			want: "{\"true\":45296}\n",
		},
		{
			name: "multi document yaml",
			cfg:  yamlOut(func(c *Config) { c.ExplicitStart = true }),
			in:   inputs("a: 1\n---\n- b\n"),
			want: "---\na: 1\n---\n- b\n",
		},
		{
			name: "mild aliasing passes",
			cfg:  DefaultConfig(),
			in:   inputs("a: &a [1, 2]\nb: *a\nc: *a\n"),
			want: "{\"a\":[1,2],\"b\":[1,2],\"c\":[1,2]}\n",
		},
		{
			name: "expr filter",
			cfg:  yamlOut(),
			in:   inputs("a:\n  z: 1\n  b: [x]\n"),
			f:    mustExpr(t, "doc.a"),
			want: "z: 1\nb:\n  - x\n",
		},
		{
			name: "xml to yaml",
			cfg:  yamlOut(func(c *Config) { c.InputFormat = format.XMLFormat }),
			in:   inputs("<a><b/></a>"),
			want: "a:\n  b: null\n",
		},
		{
			name: "xml force list",
			cfg: yamlOut(func(c *Config) {
				c.InputFormat = format.XMLFormat
				c.XMLForceList = []string{"b"}
			}),
			in:   inputs("<a><b/></a>"),
			want: "a:\n  b:\n    - null\n",
		},
		{
			name: "xml to xml",
			cfg: func() *Config {
				c := DefaultConfig()
				c.InputFormat, c.OutputFormat = format.XMLFormat, format.XMLFormat
				return c
			}(),
			in:   inputs("<a><b/></a>", "<a><c/></a>"),
			f:    mustExpr(t, "doc.a"),
			want: "<b></b>\n<c></c>\n",
		},
		{
			name: "xml dtd",
			cfg: func() *Config {
				c := DefaultConfig()
				c.InputFormat, c.OutputFormat = format.XMLFormat, format.XMLFormat
				c.XMLDTD = true
				return c
			}(),
			in:   inputs(`<a><b c="d">e</b><b>f</b></a>`),
			want: `<?xml version="1.0" encoding="utf-8"?>` + "\n<a>\n  <b c=\"d\">e</b>\n  <b>f</b>\n</a>\n",
		},
		{
			name: "toml",
			cfg: func() *Config {
				c := DefaultConfig()
				c.InputFormat, c.OutputFormat = format.TOMLFormat, format.TOMLFormat
				return c
			}(),
			in:   inputs("[foo]\nbar = 1"),
			f:    mustExpr(t, "doc.foo"),
			want: "bar = 1\n",
		},
		{
			name: "toml to json",
			cfg:  func() *Config { c := DefaultConfig(); c.InputFormat = format.TOMLFormat; return c }(),
			in:   inputs("[foo]\nbar = 2020-02-20"),
			want: "{\"foo\":{\"bar\":\"2020-02-20\"}}\n",
		},
		{
			name: "json input",
			cfg:  yamlOut(func(c *Config) { c.InputFormat = format.JSONFormat }),
			in:   inputs(`{"a": [1, {"b": null}]} 2`),
			want: "a:\n  - 1\n  - b: null\n--- 2\n...\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.f
			if f == nil {
				f = filter.Identity{}
			}
			out := &bytes.Buffer{}
			if err := Run(context.Background(), tt.cfg, tt.in, f, out); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func mustExpr(t *testing.T, code string) filter.Filter {
	t.Helper()
	f, err := filter.NewExpr(code)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestExpansionGuard(t *testing.T) {
	bomb := `a: &a ["lol","lol","lol","lol","lol","lol","lol","lol","lol"]
b: &b [*a,*a,*a,*a,*a,*a,*a,*a,*a]
c: &c [*b,*b,*b,*b,*b,*b,*b,*b,*b]
d: &d [*c,*c,*c,*c,*c,*c,*c,*c,*c]
e: &e [*d,*d,*d,*d,*d,*d,*d,*d,*d]
f: &f [*e,*e,*e,*e,*e,*e,*e,*e,*e]
g: &g [*f,*f,*f,*f,*f,*f,*f,*f,*f]
`
	out := &bytes.Buffer{}
	err := Run(context.Background(), DefaultConfig(), inputs(bomb), filter.Identity{}, out)
	if !errors.Is(err, load.ErrUnsafeExpansion) {
		t.Fatalf("got %v, want ErrUnsafeExpansion", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageLoading {
		t.Errorf("got %v, want loading stage", err)
	}
	if out.Len() != 0 {
		t.Errorf("partial output %q", out.String())
	}

	cfg := DefaultConfig()
	cfg.ExpandAliases = false
	if err := Run(context.Background(), cfg, inputs(bomb), filter.Identity{}, &bytes.Buffer{}); err != nil {
		t.Errorf("unexpanded aliases: %v", err)
	}
}

func TestStageErrors(t *testing.T) {
	xmlOut := DefaultConfig()
	xmlOut.OutputFormat = format.XMLFormat
	out := &bytes.Buffer{}
	err := Run(context.Background(), xmlOut, inputs("[1]"), filter.Identity{}, out)
	if !errors.Is(err, xmldoc.ErrNonObjectRoot) {
		t.Fatalf("got %v", err)
	}
	want := "Error converting JSON to XML: cannot represent non-object types at top level. Use --xml-root=name to envelope your output with a root element."
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
	if out.Len() != 0 {
		t.Errorf("partial output %q", out.String())
	}

	err = Run(context.Background(), DefaultConfig(), inputs("a: [1"), filter.Identity{}, out)
	var pe *load.ParseError
	if !errors.As(err, &pe) || !strings.HasPrefix(err.Error(), "Error loading: test:") {
		t.Errorf("got %v, want parse error", err)
	}

	boom := errors.New("boom")
	err = Run(context.Background(), DefaultConfig(), inputs("a: 1"), failFilter{boom}, out)
	if !errors.Is(err, boom) || err.Error() != "Error running filter: boom" {
		t.Errorf("got %v", err)
	}
}

type failFilter struct{ err error }

func (f failFilter) Run(context.Context, io.Reader, io.Writer) error {
	return f.err
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, DefaultConfig(), inputs("a: 1"), filter.Identity{}, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}

func TestLoadDump(t *testing.T) {
	cfg := yamlOut(roundTrip)
	payload := &bytes.Buffer{}
	if err := Load(context.Background(), cfg, inputs("a: !t {b: 'c'}\n"), payload); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload.String(), "__yq_tag_") {
		t.Errorf("payload lacks annotations: %s", payload)
	}
	out := &bytes.Buffer{}
	if err := Dump(context.Background(), cfg, payload.Bytes(), out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("a: !t {b: 'c'}\n", out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
