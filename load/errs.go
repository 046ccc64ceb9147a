package load

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrUnsafeExpansion = errors.New("detected unsafe YAML entity expansion")
	ErrRecursiveAlias  = errors.New("recursive alias")
	ErrConstruct       = errors.New("cannot construct value")
)

// ParseError locates a syntax or construction failure in the source.
// Line and Column are 1-based; zero means unknown.
type ParseError struct {
	Name   string
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	name := e.Name
	if name == "" {
		name = "<input>"
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", name, e.Line, e.Column, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", name, e.Line, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", name, e.Msg)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var yamlLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// syntaxError turns a yaml.v3 error message into a *ParseError.
func syntaxError(name string, err error) *ParseError {
	msg := err.Error()
	pe := &ParseError{Name: name, Err: err}
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		pe.Msg = m[2]
		return pe
	}
	pe.Msg = strings.TrimPrefix(msg, "yaml: ")
	return pe
}
