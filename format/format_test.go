package format

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"y", YAMLFormat},
		{"yml", YAMLFormat},
		{"yaml", YAMLFormat},
		{"json", JSONFormat},
		{"x", XMLFormat},
		{"toml", TOMLFormat},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("%q: got %s want %s", tc.in, got, tc.want)
		}
	}
	if _, err := ParseFormat("ini"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, f := range AllFormats() {
		d, err := f.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var g Format
		if err := g.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if g != f {
			t.Errorf("got %s want %s", g, f)
		}
	}
}

func TestProgram(t *testing.T) {
	tests := []struct {
		prog string
		want Format
		ok   bool
	}{
		{"yq", YAMLFormat, true},
		{"xq", XMLFormat, true},
		{"tomlq", TOMLFormat, true},
		{"jq", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		f, ok := FromProgram(tc.prog)
		if ok != tc.ok || f != tc.want {
			t.Errorf("%q: got %s %t", tc.prog, f, ok)
		}
		if ok && f.Program() != tc.prog {
			t.Errorf("%s: program %q", f, f.Program())
		}
	}
	if p := JSONFormat.Program(); p != "" {
		t.Errorf("json program %q", p)
	}
	if _, err := Format(9).MarshalText(); !errors.Is(err, ErrBadFormat) {
		t.Errorf("got %v", err)
	}
}
