// Package encode writes IR documents as YAML or indented JSON.
//
// # Usage
//
//	enc := encode.NewEncoder(os.Stdout, encode.UseAnnotations(true))
//	for _, doc := range docs {
//	    if err := enc.Encode(doc); err != nil {
//	        return err
//	    }
//	}
//	return enc.Close()
//
// Mappings keep their key order. Strings are written plain when the
// result reads back as the same string under the output grammar,
// otherwise quoted; multi-line strings become literal blocks when their
// content allows it. With UseAnnotations, sentinel entries produced by
// the annotate package are turned back into tags, styles, anchors and
// aliases. An alias is written as *name only once its anchor has been
// written in the same document.
//
// # Related Packages
//
//   - github.com/signadot/tony-format/yq/annotate - sentinel encoding
//   - github.com/signadot/tony-format/yq/load - YAML to IR
package encode
