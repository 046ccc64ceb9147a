package debug

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/signadot/tony-format/yq/ir"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "yq",
	Level:  log.WarnLevel,
})

// Logger returns the process wide logger.
func Logger() *log.Logger {
	return logger
}

type ctxKey int

const loggerKey ctxKey = 0

func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or Logger().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return logger
}

// Logf prints regardless of level; callers gate it on a debug switch.
// *ir.Node arguments are rendered compactly.
func Logf(msg string, args ...any) {
	for i := range args {
		if x, ok := args[i].(*ir.Node); ok {
			args[i] = NodeString(x)
		}
	}
	logger.Print(strings.TrimRight(fmt.Sprintf(msg, args...), "\n"))
}

// NodeString renders y in a compact flow form showing annotations.
func NodeString(y *ir.Node) string {
	if y == nil {
		return "<nil>"
	}
	buf := &strings.Builder{}
	writeNode(buf, y)
	return buf.String()
}

func writeNode(buf *strings.Builder, y *ir.Node) {
	if y.Anchor != "" {
		buf.WriteString("&" + y.Anchor + " ")
	}
	if y.Tag != "" {
		buf.WriteString(y.Tag + " ")
	}
	switch y.Type {
	case ir.ObjectType:
		buf.WriteByte('{')
		for i, f := range y.Fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeNode(buf, f)
			buf.WriteString(": ")
			writeNode(buf, y.Values[i])
		}
		buf.WriteByte('}')
	case ir.ArrayType:
		buf.WriteByte('[')
		for i, v := range y.Values {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeNode(buf, v)
		}
		buf.WriteByte(']')
	case ir.AliasType:
		buf.WriteString("*" + y.String)
	case ir.StringType, ir.TimestampType:
		buf.WriteString(strconv.Quote(y.String))
	default:
		k, _ := ir.KeyText(y)
		buf.WriteString(k)
	}
}
