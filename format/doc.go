// Package format names the document formats the transcoder reads and writes.
//
// # Usage
//
//	f, err := format.ParseFormat("xml")
//	if err != nil {
//	    return err
//	}
//	in, ok := format.FromProgram("tomlq") // format.TOMLFormat, true
//
// # Related Packages
//
//   - github.com/signadot/tony-format/yq/transcode - the pipeline selecting readers and writers by format
package format
