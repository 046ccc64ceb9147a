package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/filter"
	"github.com/signadot/tony-format/yq/transcode"

	"github.com/scott-cotton/cli"
)

const stdinName = "<stdin>"

func yqMain(ctx context.Context, cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	ctx = debug.WithLogger(ctx, newLogger(cfg.Name, cfg.Verbose))
	err = cfg.execute(ctx, cc.In, cc.Out, args)
	var exitErr *filter.ExitError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cli.ErrUsage):
		cfg.Main.Usage(cc, err)
		return cli.ExitCodeErr(cfg.Main.Exit(cc, err))
	case errors.As(err, &exitErr):
		return cli.ExitCodeErr(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", cfg.Name, err)
	return cli.ExitCodeErr(1)
}

// execute runs one invocation. args holds the filter followed by the
// input files; with no files the input is read from in.
func (cfg *MainConfig) execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	tc, err := cfg.transcodeConfig(out)
	if err != nil {
		return err
	}
	f, files, err := cfg.filter(args)
	if err != nil {
		return err
	}
	debug.FromContext(ctx).Debug("transcoding", "input", tc.InputFormat, "output", tc.OutputFormat, "engine", cfg.engine(), "files", len(files))
	if cfg.InPlace || cfg.Diff {
		if len(files) == 0 {
			return fmt.Errorf("%w: -i and -diff need input files", cli.ErrUsage)
		}
		return cfg.perFile(ctx, tc, f, files, out)
	}
	inputs, err := readInputs(in, files)
	if err != nil {
		return err
	}
	return transcode.Run(ctx, tc, inputs, f, out)
}

func (cfg *MainConfig) engine() string {
	if cfg.Engine == "" {
		return "jq"
	}
	return cfg.Engine
}

// filter builds the filter named by the engine from the first argument
// and returns the remaining arguments.
func (cfg *MainConfig) filter(args []string) (filter.Filter, []string, error) {
	switch cfg.engine() {
	case "jq":
		program := "."
		if len(args) > 0 {
			program, args = args[0], args[1:]
		}
		return &filter.Exec{
			Program: cfg.JQ,
			Args:    append(append([]string{}, cfg.JQArgs...), program),
		}, args, nil
	case "expr":
		if len(args) == 0 {
			return nil, nil, fmt.Errorf("%w: the expr engine needs a program", cli.ErrUsage)
		}
		x, err := filter.NewExpr(args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		return x, args[1:], nil
	case "jsonpatch":
		if len(args) == 0 {
			return nil, nil, fmt.Errorf("%w: the jsonpatch engine needs a patch", cli.ErrUsage)
		}
		patch, err := readPatch(args[0])
		if err != nil {
			return nil, nil, err
		}
		p, err := filter.NewJSONPatch(patch)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		return p, args[1:], nil
	}
	return nil, nil, fmt.Errorf("%w: unknown engine %q", cli.ErrUsage, cfg.Engine)
}

// readPatch reads the file named after a leading "@", or returns arg.
func readPatch(arg string) ([]byte, error) {
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return []byte(arg), nil
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read patch %q: %w", path, err)
	}
	return d, nil
}

func readInputs(in io.Reader, files []string) ([]transcode.Input, error) {
	if len(files) == 0 {
		files = []string{"-"}
	}
	res := make([]transcode.Input, 0, len(files))
	for _, file := range files {
		input, err := readInput(in, file)
		if err != nil {
			return nil, err
		}
		res = append(res, input)
	}
	return res, nil
}

func readInput(in io.Reader, file string) (transcode.Input, error) {
	if file == "-" {
		d, err := io.ReadAll(in)
		if err != nil {
			return transcode.Input{}, fmt.Errorf("error reading %s: %w", stdinName, err)
		}
		return transcode.Input{Name: stdinName, Data: d}, nil
	}
	d, err := os.ReadFile(file)
	if err != nil {
		return transcode.Input{}, fmt.Errorf("could not open %q: %w", file, err)
	}
	return transcode.Input{Name: file, Data: d}, nil
}

type result struct {
	input transcode.Input
	mode  os.FileMode
	out   []byte
}

// perFile runs every file on its own. Files are rewritten, or their diffs
// written to w, only once all of them succeeded.
func (cfg *MainConfig) perFile(ctx context.Context, tc *transcode.Config, f filter.Filter, files []string, w io.Writer) error {
	results := make([]result, 0, len(files))
	for _, file := range files {
		if file == "-" {
			return fmt.Errorf("%w: cannot rewrite %s", cli.ErrUsage, stdinName)
		}
		st, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("could not open %q: %w", file, err)
		}
		input, err := readInput(nil, file)
		if err != nil {
			return err
		}
		buf := &bytes.Buffer{}
		if err := transcode.Run(ctx, tc, []transcode.Input{input}, f, buf); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		results = append(results, result{input: input, mode: st.Mode().Perm(), out: buf.Bytes()})
	}
	for _, r := range results {
		if cfg.Diff {
			if _, err := io.WriteString(w, lineDiff(r.input.Name, r.input.Data, r.out)); err != nil {
				return err
			}
			continue
		}
		debug.FromContext(ctx).Debug("rewriting", "file", r.input.Name, "bytes", len(r.out))
		if err := os.WriteFile(r.input.Name, r.out, r.mode); err != nil {
			return err
		}
	}
	return nil
}
