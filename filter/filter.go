// Package filter runs the program that transforms the JSON documents
// between loading and dumping.
//
// A filter reads newline delimited JSON documents from its input and
// writes zero or more JSON documents to its output. Exec hands the
// stream to an external program, jq by default; Expr and JSONPatch
// transform each document in process.
package filter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/signadot/tony-format/yq/debug"
)

var ErrStart = errors.New("failed to start filter")

type Filter interface {
	Run(ctx context.Context, in io.Reader, out io.Writer) error
}

// ExitError is returned when the filter program exits with a non-zero
// status.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// Identity copies its input.
type Identity struct{}

func (Identity) Run(_ context.Context, in io.Reader, out io.Writer) error {
	n, err := io.Copy(out, in)
	if debug.Filter() {
		debug.Logf("identity filter copied %d bytes", n)
	}
	return err
}
