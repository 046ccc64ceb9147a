// Package transcode runs the load, filter and dump stages of a
// conversion.
//
// Inputs are loaded into one newline delimited JSON payload, handed to a
// filter.Filter in a single invocation, and the filter's output is
// written back in the configured output format. Each stage fully
// completes before the next starts, and nothing is written to the
// destination unless every stage succeeds.
package transcode

import (
	"bytes"
	"context"
	"io"

	"github.com/signadot/tony-format/yq/bridge"
	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/encode"
	"github.com/signadot/tony-format/yq/filter"
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/load"
	"github.com/signadot/tony-format/yq/tomldoc"
	"github.com/signadot/tony-format/yq/xmldoc"
)

// Input is one source document stream.
type Input struct {
	Name string
	Data []byte
}

// Load converts inputs to JSON documents, one per line.
func Load(ctx context.Context, cfg *Config, inputs []Input, w io.Writer) error {
	// one grammar for every input of the run
	g, err := grammar.Select(cfg.InputGrammar, cfg.ExpandMergeKeys)
	if err != nil {
		return &StageError{Stage: StageLoading, Err: err}
	}
	enc := bridge.NewEncoder(w)
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: StageLoading, Err: err}
		}
		if err := loadInput(cfg, g, in, enc); err != nil {
			return &StageError{Stage: StageLoading, Err: err}
		}
	}
	debug.FromContext(ctx).Debug("loaded", "inputs", len(inputs), "bytes", enc.Written())
	return nil
}

func loadInput(cfg *Config, g *grammar.Grammar, in Input, enc *bridge.Encoder) error {
	switch cfg.InputFormat {
	case format.XMLFormat:
		doc, err := xmldoc.Decode(in.Data, xmldoc.ForceList(cfg.XMLForceList...))
		if err != nil {
			return err
		}
		return enc.Encode(doc)
	case format.TOMLFormat:
		doc, err := tomldoc.Decode(in.Data)
		if err != nil {
			return err
		}
		return enc.Encode(doc)
	case format.JSONFormat:
		for doc, err := range bridge.NewDecoder(in.Data).All() {
			if err != nil {
				return err
			}
			if err := enc.Encode(doc); err != nil {
				return err
			}
		}
		return nil
	}
	dec, err := load.NewDecoder(in.Data, cfg.loadOptions(in.Name, g)...)
	if err != nil {
		return err
	}
	base := enc.Written()
	for doc, err := range dec.All() {
		if err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
		if err := dec.Guard().Check(enc.Written() - base); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the JSON documents of payload in the output format.
func Dump(ctx context.Context, cfg *Config, payload []byte, w io.Writer) error {
	buf := &bytes.Buffer{}
	if err := dump(ctx, cfg, payload, buf); err != nil {
		return &StageError{Stage: convertingStage(cfg.OutputFormat), Err: err}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func dump(ctx context.Context, cfg *Config, payload []byte, w io.Writer) error {
	dec := bridge.NewDecoder(payload)
	switch cfg.OutputFormat {
	case format.XMLFormat:
		opts := cfg.xmlOptions()
		for doc, err := range dec.All() {
			if err != nil {
				return err
			}
			if err := xmldoc.Encode(doc, w, opts...); err != nil {
				return err
			}
		}
		return nil
	case format.TOMLFormat:
		for doc, err := range dec.All() {
			if err != nil {
				return err
			}
			if err := tomldoc.Encode(doc, w); err != nil {
				return err
			}
		}
		return nil
	}
	enc := encode.NewEncoder(w, cfg.encodeOptions()...)
	for doc, err := range dec.All() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return enc.Close()
}

// Run loads inputs, runs f once over the whole payload and dumps its
// output. JSON output is the filter's output unchanged unless colors are
// on.
func Run(ctx context.Context, cfg *Config, inputs []Input, f filter.Filter, w io.Writer) error {
	payload := &bytes.Buffer{}
	if err := Load(ctx, cfg, inputs, payload); err != nil {
		return err
	}
	filtered := &bytes.Buffer{}
	if err := f.Run(ctx, payload, filtered); err != nil {
		return &StageError{Stage: StageFilter, Err: err}
	}
	debug.FromContext(ctx).Debug("filtered", "in", payload.Len(), "out", filtered.Len())
	if cfg.OutputFormat.IsJSON() && !cfg.Colors {
		_, err := w.Write(filtered.Bytes())
		return err
	}
	return Dump(ctx, cfg, filtered.Bytes(), w)
}
