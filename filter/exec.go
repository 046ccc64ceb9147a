package filter

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/signadot/tony-format/yq/debug"
)

const DefaultProgram = "jq"

// Exec runs Program with Args, feeding it the whole input on stdin.
type Exec struct {
	Program string
	Args    []string
	// Stderr receives the program's standard error, os.Stderr when nil.
	Stderr io.Writer
}

func (x *Exec) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	prog := cmp.Or(x.Program, DefaultProgram)
	cmd := exec.CommandContext(ctx, prog, x.Args...)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = x.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if debug.Filter() {
		debug.Logf("running %s %q", prog, x.Args)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStart, prog, err)
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ExitError{Program: prog, Code: exitErr.ExitCode()}
	}
	return err
}
