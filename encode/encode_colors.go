package encode

import (
	"github.com/signadot/tony-format/yq/ir"

	"github.com/fatih/color"
)

// ColorAttr is the syntactic role of a piece of output.
type ColorAttr int

const (
	MarkerColor ColorAttr = iota
	TagColor
	AnchorColor
	FieldColor
	ValueColor
	SepColor
	LiteralSingleColor
	LiteralMultiColor
	MergeColor
)

// Colors maps output roles, and for values the node type, to terminal
// colors. The defaults follow jq's palette so that YAML output reads
// like colored jq output.
type Colors struct {
	Default func(...any) string
	Attrs   map[ColorAttr]func(...any) string
	Values  map[ir.Type]func(...any) string
}

func NewColors() *Colors {
	fn := func(attrs ...color.Attribute) func(...any) string {
		return color.New(attrs...).SprintFunc()
	}
	return &Colors{
		Default: fn(color.Reset),
		Attrs: map[ColorAttr]func(...any) string{
			MarkerColor:        fn(color.Faint),
			TagColor:           fn(color.FgMagenta),
			AnchorColor:        fn(color.FgYellow),
			FieldColor:         fn(color.FgBlue, color.Bold),
			SepColor:           fn(color.Bold),
			LiteralSingleColor: fn(color.FgGreen),
			LiteralMultiColor:  fn(color.FgGreen),
			MergeColor:         fn(color.FgCyan, color.Bold),
		},
		Values: map[ir.Type]func(...any) string{
			ir.NullType:      fn(color.FgHiBlack),
			ir.StringType:    fn(color.FgGreen),
			ir.TimestampType: fn(color.FgYellow),
		},
	}
}

// Color renders s in the color of attr, or of the node type for values.
func (c *Colors) Color(t ir.Type, attr ColorAttr, s string) string {
	if attr == ValueColor {
		if f := c.Values[t]; f != nil {
			return f(s)
		}
		return s
	}
	if f := c.Attrs[attr]; f != nil {
		return f(s)
	}
	if c.Default == nil {
		return s
	}
	return c.Default(s)
}
