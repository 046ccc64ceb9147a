package filter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, f Filter, in string) string {
	t.Helper()
	out := &bytes.Buffer{}
	if err := f.Run(context.Background(), strings.NewReader(in), out); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestIdentity(t *testing.T) {
	in := "{\"a\":1}\n[2]\n"
	if got := run(t, Identity{}, in); got != in {
		t.Errorf("got %q", got)
	}
}

func TestExec(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	in := "{\"a\":1}\n"
	if got := run(t, &Exec{Program: "cat"}, in); got != in {
		t.Errorf("got %q", got)
	}
}

func TestExecExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	f := &Exec{Program: "sh", Args: []string{"-c", "cat >/dev/null; exit 3"}, Stderr: &bytes.Buffer{}}
	err := f.Run(context.Background(), strings.NewReader("{}\n"), &bytes.Buffer{})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("got %v, want *ExitError", err)
	}
	if exitErr.Code != 3 || exitErr.Program != "sh" {
		t.Errorf("got %+v", exitErr)
	}
}

func TestExecStart(t *testing.T) {
	f := &Exec{Program: "/nonexistent/yq-filter"}
	err := f.Run(context.Background(), strings.NewReader(""), &bytes.Buffer{})
	if !errors.Is(err, ErrStart) {
		t.Errorf("got %v, want ErrStart", err)
	}
}

func TestExpr(t *testing.T) {
	tests := []struct {
		name string
		code string
		in   string
		want string
	}{
		{
			name: "field",
			code: "doc.a",
			in:   "{\"a\":{\"z\":1,\"b\":[1,2.5]}}\n{\"a\":\"x\"}\n",
			want: "{\"z\":1,\"b\":[1,2.5]}\n\"x\"\n",
		},
		{
			name: "arithmetic keeps ints",
			code: "doc.n * 2",
			in:   "{\"n\":21}\n",
			want: "42\n",
		},
		{
			name: "missing",
			code: "doc.q",
			in:   "{\"n\":1}\n",
			want: "null\n",
		},
		{
			name: "map keeps source order",
			code: "doc",
			in:   "{\"z\":1,\"a\":{\"y\":true,\"b\":null}}\n",
			want: "{\"z\":1,\"a\":{\"y\":true,\"b\":null}}\n",
		},
		{
			name: "new keys follow",
			code: `{"z": doc.z, "n": 2, "m": 3}`,
			in:   "{\"z\":1}\n",
			want: "{\"z\":1,\"m\":3,\"n\":2}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewExpr(tt.code)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, run(t, f, tt.in)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestExprErrors(t *testing.T) {
	if _, err := NewExpr("doc."); err == nil {
		t.Error("expected compile error")
	}
	f, err := NewExpr("doc.a")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Run(context.Background(), strings.NewReader("{\"a\":"), &bytes.Buffer{}); err == nil {
		t.Error("expected malformed input error")
	}
}

func TestJSONPatch(t *testing.T) {
	f, err := NewJSONPatch([]byte(`[{"op":"replace","path":"/b","value":2},{"op":"add","path":"/c","value":[true]},{"op":"remove","path":"/d"}]`))
	if err != nil {
		t.Fatal(err)
	}
	got := run(t, f, "{\"z\":0,\"b\":1,\"d\":3}\n{\"b\":\"x\",\"d\":0}\n")
	want := "{\"z\":0,\"b\":2,\"c\":[true]}\n{\"b\":2,\"c\":[true]}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestJSONPatchErrors(t *testing.T) {
	if _, err := NewJSONPatch([]byte(`{"op":"add"}`)); err == nil {
		t.Error("expected decode error")
	}
	f, err := NewJSONPatch([]byte(`[{"op":"replace","path":"/a/b","value":1}]`))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Run(context.Background(), strings.NewReader("{}\n"), &bytes.Buffer{}); err == nil {
		t.Error("expected apply error")
	}
}
