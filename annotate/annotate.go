package annotate

import (
	"regexp"
	"strconv"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"
)

// AliasKey is the only key of the mapping standing in for an alias.
const AliasKey = "__yq_alias__"

const (
	kindTag    = "tag"
	kindStyle  = "style"
	kindAnchor = "anchor"
)

var (
	mapSentinel = regexp.MustCompile(`^__yq_(tag|style|anchor)_(.+)__$`)
	seqSentinel = regexp.MustCompile(`^__yq_(tag|style|anchor)_(\d+)_(.+)__$`)
)

// IsSentinel reports whether key has the form of a mapping annotation key.
func IsSentinel(key string) bool {
	return key == AliasKey || mapSentinel.MatchString(key)
}

// MapKey returns the annotation key recording kind for the sibling entry
// whose key text is key.
func MapKey(kind, key string) string {
	return "__yq_" + kind + "_" + ir.KeyHash(key) + "__"
}

// SeqItem returns the trailing annotation element recording kind with
// value v for the sequence element at index i.
func SeqItem(kind string, i int, v string) string {
	return "__yq_" + kind + "_" + strconv.Itoa(i) + "_" + v + "__"
}

// Flatten returns a copy of doc in which tags, styles and anchors are
// carried by sentinel entries instead of node fields, and aliases are
// single entry mappings keyed by AliasKey. The result is representable
// in JSON. The annotations of doc itself have no parent to live in and
// are dropped.
func Flatten(doc *ir.Node) (*ir.Node, error) {
	return flatten(doc)
}

func flatten(node *ir.Node) (*ir.Node, error) {
	switch node.Type {
	case ir.AliasType:
		return ir.FromKeyVals([]ir.KeyVal{
			{Key: ir.FromString(AliasKey), Val: ir.FromString(node.String)},
		}), nil
	case ir.ObjectType:
		return flattenObject(node)
	case ir.ArrayType:
		return flattenArray(node)
	default:
		return bare(node), nil
	}
}

func flattenObject(node *ir.Node) (*ir.Node, error) {
	kvs := make([]ir.KeyVal, 0, len(node.Fields))
	var notes []ir.KeyVal
	for i, f := range node.Fields {
		v, err := flatten(node.Values[i])
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: bare(f), Val: v})
		orig := node.Values[i]
		if !orig.HasAnnotations() {
			continue
		}
		k, err := ir.KeyText(f)
		if err != nil {
			return nil, err
		}
		for _, n := range notesFor(orig) {
			notes = append(notes, ir.KeyVal{
				Key: ir.FromString(MapKey(n[0], k)),
				Val: ir.FromString(n[1]),
			})
		}
	}
	return ir.FromKeyVals(append(kvs, notes...)), nil
}

func flattenArray(node *ir.Node) (*ir.Node, error) {
	vs := make([]*ir.Node, 0, len(node.Values))
	var notes []*ir.Node
	for i, orig := range node.Values {
		v, err := flatten(orig)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
		for _, n := range notesFor(orig) {
			notes = append(notes, ir.FromString(SeqItem(n[0], i, n[1])))
		}
	}
	return ir.FromSlice(append(vs, notes...)), nil
}

func notesFor(n *ir.Node) [][2]string {
	var res [][2]string
	if n.Tag != "" {
		res = append(res, [2]string{kindTag, n.Tag})
	}
	if n.Style != ir.PlainStyle {
		res = append(res, [2]string{kindStyle, n.Style.String()})
	}
	if n.Anchor != "" {
		res = append(res, [2]string{kindAnchor, n.Anchor})
	}
	return res
}

func bare(n *ir.Node) *ir.Node {
	res := n.Clone()
	res.Parent = nil
	res.Tag, res.Style, res.Anchor = "", ir.PlainStyle, ""
	return res
}

type notes struct {
	tag, style, anchor string
}

func (ns *notes) set(kind, v string) {
	switch kind {
	case kindTag:
		ns.tag = v
	case kindStyle:
		ns.style = v
	case kindAnchor:
		ns.anchor = v
	}
}

func (ns *notes) apply(n *ir.Node) error {
	if ns.tag != "" {
		n.Tag = ns.tag
	}
	if ns.anchor != "" {
		n.Anchor = ns.anchor
	}
	if ns.style == "" {
		return nil
	}
	s, err := ir.ParseStyle(ns.style)
	if err != nil {
		if debug.Annotate() {
			debug.Logf("ignoring style annotation at %s: %v", n.Path(), err)
		}
		return nil
	}
	// flow is for collections, the rest for scalars
	if (s == ir.FlowStyle) == n.Type.IsLeaf() {
		return nil
	}
	n.Style = s
	return nil
}

// Restore is the inverse of Flatten: it returns a copy of doc with
// sentinel entries removed and applied to their sibling nodes, and alias
// mappings turned back into alias nodes. Annotations naming an entry
// which no longer exists are dropped.
func Restore(doc *ir.Node) (*ir.Node, error) {
	return restore(doc)
}

func restore(node *ir.Node) (*ir.Node, error) {
	switch node.Type {
	case ir.ObjectType:
		if name, ok := aliasName(node); ok {
			return ir.FromAlias(name), nil
		}
		return restoreObject(node)
	case ir.ArrayType:
		return restoreArray(node)
	default:
		res := node.Clone()
		res.Parent = nil
		return res, nil
	}
}

func aliasName(node *ir.Node) (string, bool) {
	if len(node.Fields) != 1 {
		return "", false
	}
	k, v := node.Fields[0], node.Values[0]
	if k.Type != ir.StringType || k.String != AliasKey || v.Type != ir.StringType {
		return "", false
	}
	return v.String, true
}

func restoreObject(node *ir.Node) (*ir.Node, error) {
	byHash := map[string]*notes{}
	var kvs []ir.KeyVal
	for i, f := range node.Fields {
		v := node.Values[i]
		if f.Type == ir.StringType && v.Type == ir.StringType {
			if m := mapSentinel.FindStringSubmatch(f.String); m != nil {
				ns := byHash[m[2]]
				if ns == nil {
					ns = &notes{}
					byHash[m[2]] = ns
				}
				ns.set(m[1], v.String)
				continue
			}
		}
		rv, err := restore(v)
		if err != nil {
			return nil, err
		}
		k := f.Clone()
		k.Parent = nil
		kvs = append(kvs, ir.KeyVal{Key: k, Val: rv})
	}
	res := ir.FromKeyVals(kvs)
	res.Tag, res.Style, res.Anchor = node.Tag, node.Style, node.Anchor
	if len(byHash) == 0 {
		return res, nil
	}
	for i, f := range res.Fields {
		k, err := ir.KeyText(f)
		if err != nil {
			continue
		}
		ns := byHash[ir.KeyHash(k)]
		if ns == nil {
			continue
		}
		if err := ns.apply(res.Values[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func restoreArray(node *ir.Node) (*ir.Node, error) {
	byIndex := map[int]*notes{}
	var vs []*ir.Node
	for _, v := range node.Values {
		if v.Type == ir.StringType {
			if m := seqSentinel.FindStringSubmatch(v.String); m != nil {
				i, err := strconv.Atoi(m[2])
				if err == nil {
					ns := byIndex[i]
					if ns == nil {
						ns = &notes{}
						byIndex[i] = ns
					}
					ns.set(m[1], m[3])
					continue
				}
			}
		}
		rv, err := restore(v)
		if err != nil {
			return nil, err
		}
		vs = append(vs, rv)
	}
	res := ir.FromSlice(vs)
	res.Tag, res.Style, res.Anchor = node.Tag, node.Style, node.Anchor
	for i, ns := range byIndex {
		if i >= len(res.Values) {
			continue
		}
		if err := ns.apply(res.Values[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}
