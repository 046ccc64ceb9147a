package ir

import "testing"

func TestPath(t *testing.T) {
	leaf := FromString("x")
	inner := FromMap(map[string]*Node{"b c": leaf})
	one := FromInt(1)
	arr := FromSlice([]*Node{one, inner})
	root := FromKeyVals([]KeyVal{{Key: FromString("a"), Val: arr}})
	tests := []struct {
		node *Node
		want string
	}{
		{root, "."},
		{arr, ".a"},
		{one, ".a[0]"},
		{leaf, `.a[1]["b c"]`},
	}
	for _, tt := range tests {
		if got := tt.node.Path(); got != tt.want {
			t.Errorf("got %s want %s", got, tt.want)
		}
	}
}
