package xmldoc

type decodeOpts struct {
	forceList map[string]bool
}

type DecodeOption func(*decodeOpts)

// ForceList makes the named elements decode as arrays even when they
// occur once.
func ForceList(names ...string) DecodeOption {
	return func(o *decodeOpts) {
		if o.forceList == nil {
			o.forceList = map[string]bool{}
		}
		for _, name := range names {
			o.forceList[name] = true
		}
	}
}

type encodeOpts struct {
	root         string
	fullDocument bool
	indent       string
}

type EncodeOption func(*encodeOpts)

// Root wraps the document in an element with the given name.
func Root(name string) EncodeOption {
	return func(o *encodeOpts) { o.root = name }
}

// FullDocument writes the XML declaration and requires a single root
// element.
func FullDocument(v bool) EncodeOption {
	return func(o *encodeOpts) { o.fullDocument = v }
}

func Indent(s string) EncodeOption {
	return func(o *encodeOpts) { o.indent = s }
}
