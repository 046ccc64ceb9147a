package annotate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"
)

func kv(k string, v *ir.Node) ir.KeyVal {
	return ir.KeyVal{Key: ir.FromString(k), Val: v}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   *ir.Node
		want string
	}{
		{
			name: "mapping tag",
			in:   ir.FromKeyVals([]ir.KeyVal{kv("x", ir.FromString("bar").WithTag("!foo"))}),
			want: `{"x": "bar", "__yq_tag_VKL3+Spfl12Alq93oSbt2n2mDFqocu8bhxcBrg==__": "!foo"}`,
		},
		{
			name: "mapping notes after all pairs",
			in: ir.FromKeyVals([]ir.KeyVal{
				kv("a", ir.FromString("q").WithStyle(ir.SingleQuotedStyle)),
				kv("x", ir.FromInt(1)),
			}),
			want: `{"a": "q", "x": 1, "__yq_style_q9N1NMfZou+5Rl3pMc1wVf/biHlWOumAeNbW1Q==__": "'"}`,
		},
		{
			name: "sequence",
			in: ir.FromSlice([]*ir.Node{
				ir.FromString("a"),
				ir.FromString("b").WithTag("!t").WithStyle(ir.DoubleQuotedStyle),
				ir.FromSlice([]*ir.Node{ir.FromInt(1)}).WithStyle(ir.FlowStyle),
			}),
			want: `["a", "b", [1], "__yq_tag_1_!t__", "__yq_style_1_\"__", "__yq_style_2_flow__"]`,
		},
		{
			name: "alias and anchor",
			in: ir.FromSlice([]*ir.Node{
				ir.FromString("v").WithAnchor("x"),
				ir.FromAlias("x"),
			}),
			want: `["v", {"__yq_alias__": "x"}, "__yq_anchor_0_x__"]`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Flatten(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, debug.NodeString(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if tc.in.Values[0].Parent != tc.in {
				t.Errorf("input was modified")
			}
		})
	}
}

func TestRestoreInvertsFlatten(t *testing.T) {
	in := ir.FromKeyVals([]ir.KeyVal{
		kv("a", ir.FromKeyVals([]ir.KeyVal{kv("b", ir.FromString("c"))}).WithAnchor("m").WithStyle(ir.FlowStyle)),
		kv("lit", ir.FromString("line\n").WithStyle(ir.LiteralStyle)),
		kv("seq", ir.FromSlice([]*ir.Node{
			ir.FromString("secret").WithTag("!vault"),
			ir.FromAlias("m"),
		})),
		kv("n", ir.FromInt(3)),
	})
	flat, err := Flatten(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Restore(flat)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.EqualAnnotated(in, got) {
		t.Errorf("got %s want %s", debug.NodeString(got), debug.NodeString(in))
	}
}

func TestRestoreDropsOrphans(t *testing.T) {
	in := ir.FromKeyVals([]ir.KeyVal{
		kv("y", ir.FromString("v")),
		kv(MapKey(kindTag, "x"), ir.FromString("!foo")),
		kv(MapKey(kindStyle, "y"), ir.FromString("bogus")),
	})
	got, err := Restore(in)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"y": "v"}`, debug.NodeString(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got.Values[0].Style != ir.PlainStyle {
		t.Errorf("bogus style applied")
	}
}

func TestRestoreScalarStyleNotOnCollections(t *testing.T) {
	in := ir.FromSlice([]*ir.Node{
		ir.FromSlice(nil),
		ir.FromString(SeqItem(kindStyle, 0, "|")),
	})
	got, err := Restore(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Values) != 1 || got.Values[0].Style != ir.PlainStyle {
		t.Errorf("got %s", debug.NodeString(got))
	}
}

func TestIsSentinel(t *testing.T) {
	for _, k := range []string{AliasKey, MapKey(kindTag, "k"), MapKey(kindAnchor, "k")} {
		if !IsSentinel(k) {
			t.Errorf("%q should be a sentinel", k)
		}
	}
	if IsSentinel("__yq_other__") || IsSentinel("tag") {
		t.Errorf("false positive")
	}
}
