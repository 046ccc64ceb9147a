package ir

import (
	"errors"
	"fmt"
)

var ErrBadStyle = errors.New("bad style")

// Style is the presentation style a node had in its source document.
type Style int

const (
	PlainStyle Style = iota
	SingleQuotedStyle
	DoubleQuotedStyle
	LiteralStyle
	FoldedStyle
	FlowStyle
)

// String returns the annotation form of the style; plain is "".
func (s Style) String() string {
	switch s {
	case SingleQuotedStyle:
		return "'"
	case DoubleQuotedStyle:
		return `"`
	case LiteralStyle:
		return "|"
	case FoldedStyle:
		return ">"
	case FlowStyle:
		return "flow"
	default:
		return ""
	}
}

func ParseStyle(v string) (Style, error) {
	s, ok := map[string]Style{
		"":     PlainStyle,
		"'":    SingleQuotedStyle,
		`"`:    DoubleQuotedStyle,
		"|":    LiteralStyle,
		">":    FoldedStyle,
		"flow": FlowStyle,
	}[v]
	if !ok {
		return PlainStyle, fmt.Errorf("%w: %q", ErrBadStyle, v)
	}
	return s, nil
}

// IsBlockScalar reports whether the style is literal or folded.
func (s Style) IsBlockScalar() bool {
	return s == LiteralStyle || s == FoldedStyle
}
