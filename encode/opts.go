package encode

import (
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
)

type EncodeOption func(*EncState)

// EncodeFormat selects YAML (the default) or JSON output.
func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

// FormatFromOpts extracts the format from encode options.
func FormatFromOpts(opts ...EncodeOption) format.Format {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	return es.format
}

// GrammarVersion selects the implicit typing rules deciding which strings
// need quotes. The default is 1.1.
func GrammarVersion(v grammar.Version) EncodeOption {
	return func(es *EncState) { es.version = v }
}

// Indentless writes block sequences under mapping keys at the key's
// indentation.
func Indentless(v bool) EncodeOption {
	return func(es *EncState) { es.indentless = v }
}

func ExplicitStart(v bool) EncodeOption {
	return func(es *EncState) { es.explicitStart = v }
}

func ExplicitEnd(v bool) EncodeOption {
	return func(es *EncState) { es.explicitEnd = v }
}

// UseAnnotations restores sentinel annotations before writing and emits
// node tags, styles, anchors and aliases.
func UseAnnotations(v bool) EncodeOption {
	return func(es *EncState) { es.annotations = v }
}

// Width sets the column after which scalars are folded at spaces. 0 means
// no limit; values not above twice the indentation are ignored.
func Width(n int) EncodeOption {
	return func(es *EncState) {
		switch {
		case n == 0:
			es.width = noWidth
		case n > 2*es.bestIndent:
			es.width = n
		}
	}
}

// Indent sets the indentation step, between 2 and 9.
func Indent(n int) EncodeOption {
	return func(es *EncState) {
		if n > 1 && n < 10 {
			es.bestIndent = n
		}
	}
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.Color = c.Color }
}
