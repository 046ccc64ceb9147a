package filter

import (
	"context"
	"io"

	"github.com/signadot/tony-format/yq/bridge"
	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	jsonpatch "github.com/evanphx/json-patch"
)

// JSONPatch applies an RFC 6902 patch to each document.
type JSONPatch struct {
	ops jsonpatch.Patch
}

func NewJSONPatch(patch []byte) (*JSONPatch, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, err
	}
	return &JSONPatch{ops: ops}, nil
}

func (p *JSONPatch) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return eachDocument(in, out, func(doc *ir.Node) (*ir.Node, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := compact(doc)
		if err != nil {
			return nil, err
		}
		if debug.Filter() {
			debug.Logf("json-patch on %d bytes", len(d))
		}
		patched, err := p.ops.Apply(d)
		if err != nil {
			return nil, err
		}
		res, err := bridge.FromJSON(patched)
		if err != nil {
			return nil, err
		}
		return reorder(doc, res[0]), nil
	})
}
