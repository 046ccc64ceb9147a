package ir

import (
	"regexp"
	"strconv"
	"strings"
)

var jqIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Path locates y from the root of its document as a jq path expression,
// e.g. .a["b c"][0]. The root is ".".
func (y *Node) Path() string {
	var parts []string
	for n := y; n.Parent != nil; n = n.Parent {
		parts = append(parts, n.pathStep())
	}
	if len(parts) == 0 {
		return "."
	}
	b := &strings.Builder{}
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

func (y *Node) pathStep() string {
	if y.Parent.Type == ArrayType {
		return "[" + strconv.Itoa(y.ParentIndex) + "]"
	}
	if jqIdent.MatchString(y.ParentField) {
		return "." + y.ParentField
	}
	return "[" + strconv.Quote(y.ParentField) + "]"
}
