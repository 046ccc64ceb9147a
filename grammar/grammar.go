package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Version is a YAML specification version whose implicit typing rules
// decide what a plain scalar means.
type Version string

const (
	V11 Version = "1.1"
	V12 Version = "1.2"
)

var ErrUnknownVersion = errors.New("unknown YAML grammar version")

func ParseVersion(v string) (Version, error) {
	switch Version(v) {
	case V11, V12:
		return Version(v), nil
	}
	return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownVersion, v, V11, V12)
}

func (v Version) String() string { return string(v) }

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

func (v *Version) UnmarshalText(d []byte) error {
	pv, err := ParseVersion(string(d))
	if err != nil {
		return err
	}
	*v = pv
	return nil
}

// Resolved tags, in the short form.
const (
	StrTag       = "!!str"
	NullTag      = "!!null"
	BoolTag      = "!!bool"
	IntTag       = "!!int"
	FloatTag     = "!!float"
	TimestampTag = "!!timestamp"
	MergeTag     = "!!merge"
	ValueTag     = "!!value"
	BinaryTag    = "!!binary"
	SetTag       = "!!set"
	SeqTag       = "!!seq"
	MapTag       = "!!map"
)

// Rule is one implicit typing candidate: a plain scalar starting with one
// of First and matching Regexp resolves to Tag.
type Rule struct {
	Tag    string
	Regexp *regexp.Regexp
	First  string
}

// Grammar is an immutable implicit typing table. The zero value is not
// usable; obtain one from Select.
type Grammar struct {
	version Version
	merge   bool
	rules   []Rule
	byFirst map[byte][]int
}

// Select returns the table for version v, with the "<<" merge key rule
// appended when expandMergeKeys is set.
func Select(v Version, expandMergeKeys bool) (*Grammar, error) {
	var rules []Rule
	switch v {
	case V11:
		rules = yaml11
	case V12:
		rules = yaml12
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, v)
	}
	rules = slices.Clone(rules)
	if expandMergeKeys {
		rules = append(rules, mergeRule)
	}
	g := &Grammar{
		version: v,
		merge:   expandMergeKeys,
		rules:   rules,
		byFirst: map[byte][]int{},
	}
	for i := range rules {
		for j := 0; j < len(rules[i].First); j++ {
			c := rules[i].First[j]
			g.byFirst[c] = append(g.byFirst[c], i)
		}
	}
	return g, nil
}

// MustSelect is Select for versions known to be valid.
func MustSelect(v Version, expandMergeKeys bool) *Grammar {
	g, err := Select(v, expandMergeKeys)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grammar) Version() Version { return g.version }

func (g *Grammar) MergeKeys() bool { return g.merge }

// Rules returns a copy of the ordered rule table.
func (g *Grammar) Rules() []Rule {
	return slices.Clone(g.rules)
}

// Candidates returns the rules to test, in order, for a plain scalar
// starting with c.
func (g *Grammar) Candidates(c byte) []Rule {
	idx := g.byFirst[c]
	res := make([]Rule, len(idx))
	for i, j := range idx {
		res[i] = g.rules[j]
	}
	return res
}

// Resolve returns the tag a plain scalar implicitly takes.
func (g *Grammar) Resolve(plain string) string {
	if plain == "" {
		for _, i := range g.byFirst[0] {
			if g.rules[i].Regexp.MatchString(plain) {
				return g.rules[i].Tag
			}
		}
		return StrTag
	}
	for _, i := range g.byFirst[plain[0]] {
		if g.rules[i].Regexp.MatchString(plain) {
			return g.rules[i].Tag
		}
	}
	return StrTag
}
