package tomldoc

import "errors"

var (
	ErrSyntax        = errors.New("TOML syntax error")
	ErrNonObjectRoot = errors.New("cannot represent non-object types at top level")
	ErrEncoding      = errors.New("TOML encoding error")
)
