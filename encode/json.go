package encode

import (
	"strings"

	"github.com/signadot/tony-format/yq/annotate"
	"github.com/signadot/tony-format/yq/ir"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML: false,
}.Froze()

// encodeJSONDocument writes doc as indented JSON in the layout jq uses.
// Annotations travel as sentinel entries.
func encodeJSONDocument(doc *ir.Node, es *EncState) error {
	flat, err := annotate.Flatten(doc)
	if err != nil {
		return err
	}
	if err := encodeJSON(flat, es, 0); err != nil {
		return err
	}
	es.out.WriteByte('\n')
	return nil
}

func encodeJSON(node *ir.Node, es *EncState, depth int) error {
	switch node.Type {
	case ir.ObjectType:
		if len(node.Fields) == 0 {
			writeJSONSep(es, ir.ObjectType, "{}")
			return nil
		}
		writeJSONSep(es, ir.ObjectType, "{")
		for i, f := range node.Fields {
			k, err := ir.KeyText(f)
			if err != nil {
				return err
			}
			if i > 0 {
				writeJSONSep(es, ir.ObjectType, ",")
			}
			writeJSONIndent(es, depth+1)
			es.out.WriteString(applyColor(es, ir.ObjectType, FieldColor, quoteJSON(k)))
			writeJSONSep(es, ir.ObjectType, ":")
			es.out.WriteByte(' ')
			if err := encodeJSON(node.Values[i], es, depth+1); err != nil {
				return err
			}
		}
		writeJSONIndent(es, depth)
		writeJSONSep(es, ir.ObjectType, "}")
	case ir.ArrayType:
		if len(node.Values) == 0 {
			writeJSONSep(es, ir.ArrayType, "[]")
			return nil
		}
		writeJSONSep(es, ir.ArrayType, "[")
		for i, v := range node.Values {
			if i > 0 {
				writeJSONSep(es, ir.ArrayType, ",")
			}
			writeJSONIndent(es, depth+1)
			if err := encodeJSON(v, es, depth+1); err != nil {
				return err
			}
		}
		writeJSONIndent(es, depth)
		writeJSONSep(es, ir.ArrayType, "]")
	default:
		es.out.WriteString(applyColor(es, node.Type, ValueColor, jsonLeaf(node)))
	}
	return nil
}

func jsonLeaf(node *ir.Node) string {
	switch node.Type {
	case ir.NullType:
		return "null"
	case ir.BoolType:
		if node.Bool {
			return "true"
		}
		return "false"
	case ir.NumberType:
		if !ir.IsFinite(node) {
			return quoteJSON(ir.FormatFloat(*node.Float64))
		}
		return ir.NumberText(node)
	}
	return quoteJSON(node.String)
}

func writeJSONIndent(es *EncState, depth int) {
	es.out.WriteByte('\n')
	es.out.WriteString(strings.Repeat(" ", depth*es.bestIndent))
}

func writeJSONSep(es *EncState, t ir.Type, s string) {
	es.out.WriteString(applyColor(es, t, SepColor, s))
}

func quoteJSON(s string) string {
	d, err := jsonAPI.MarshalToString(s)
	if err != nil {
		return `""`
	}
	return d
}
