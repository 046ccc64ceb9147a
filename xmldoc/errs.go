package xmldoc

import "errors"

var (
	ErrSyntax        = errors.New("XML syntax error")
	ErrNonObjectRoot = errors.New("cannot represent non-object types at top level. Use --xml-root=name to envelope your output with a root element.")
	ErrMultipleRoots = errors.New("document must have exactly one root")
	ErrNotElement    = errors.New("cannot represent value as XML")
)
