package encode

import "errors"

var (
	ErrEncoding      = errors.New("encoding error")
	ErrInvalidAnchor = errors.New("invalid anchor")
)
