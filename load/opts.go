package load

import "github.com/signadot/tony-format/yq/grammar"

// DefaultMaxExpansionFactor bounds the JSON size of the loaded documents
// relative to the size of their source.
const DefaultMaxExpansionFactor = 1024

type LoadOption func(*loadOpts)

type loadOpts struct {
	annotate      bool
	expandAliases bool
	expandMerge   bool
	version       grammar.Version
	grammar       *grammar.Grammar
	factor        int
	name          string
}

func defaultOpts() loadOpts {
	return loadOpts{
		expandAliases: true,
		expandMerge:   true,
		version:       grammar.V12,
		factor:        DefaultMaxExpansionFactor,
	}
}

// Annotate records local tags, explicit styles and, when aliases are not
// expanded, anchors on the loaded nodes.
func Annotate(v bool) LoadOption {
	return func(o *loadOpts) { o.annotate = v }
}

// ExpandAliases replaces alias references by copies of the anchored node.
// When false they load as ir.AliasType nodes. Defaults to true.
func ExpandAliases(v bool) LoadOption {
	return func(o *loadOpts) { o.expandAliases = v }
}

// ExpandMergeKeys applies "<<" merge keys. Defaults to true.
func ExpandMergeKeys(v bool) LoadOption {
	return func(o *loadOpts) { o.expandMerge = v }
}

// GrammarVersion selects the implicit typing rules. Defaults to 1.2.
func GrammarVersion(v grammar.Version) LoadOption {
	return func(o *loadOpts) { o.version = v }
}

// WithGrammar uses an already selected grammar, overriding GrammarVersion
// and ExpandMergeKeys.
func WithGrammar(g *grammar.Grammar) LoadOption {
	return func(o *loadOpts) { o.grammar = g }
}

func MaxExpansionFactor(n int) LoadOption {
	return func(o *loadOpts) { o.factor = n }
}

// Name is the source name used in error messages.
func Name(name string) LoadOption {
	return func(o *loadOpts) { o.name = name }
}
