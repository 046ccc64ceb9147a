package load

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/ir"
)

// constructScalar builds the value of a scalar resolved to tag.
// Tags without a native type, custom ones included, give strings.
func constructScalar(v grammar.Version, tag, text string) (*ir.Node, error) {
	switch tag {
	case grammar.NullTag:
		return ir.Null(), nil
	case grammar.BoolTag:
		return constructBool(text)
	case grammar.IntTag:
		return constructInt(v, text)
	case grammar.FloatTag:
		return constructFloat(v, text)
	case grammar.TimestampTag:
		iso, err := timestampISO(text)
		if err != nil {
			return nil, err
		}
		return ir.FromTimestamp(iso), nil
	default:
		return ir.FromString(text), nil
	}
}

func constructBool(text string) (*ir.Node, error) {
	switch strings.ToLower(text) {
	case "yes", "true", "on":
		return ir.FromBool(true), nil
	case "no", "false", "off":
		return ir.FromBool(false), nil
	}
	return nil, fmt.Errorf("%w: invalid bool %q", ErrConstruct, text)
}

func constructInt(v grammar.Version, text string) (*ir.Node, error) {
	value := text
	if v == grammar.V11 {
		value = strings.ReplaceAll(value, "_", "")
	}
	neg := false
	if value != "" && (value[0] == '-' || value[0] == '+') {
		neg = value[0] == '-'
		value = value[1:]
	}
	base := 10
	switch {
	case value == "0":
	case strings.HasPrefix(value, "0x"):
		base, value = 16, value[2:]
	case v == grammar.V11 && strings.HasPrefix(value, "0b"):
		base, value = 2, value[2:]
	case v == grammar.V12 && strings.HasPrefix(value, "0o"):
		base, value = 8, value[2:]
	case v == grammar.V11 && strings.HasPrefix(value, "0"):
		base, value = 8, value[1:]
	case v == grammar.V11 && strings.Contains(value, ":"):
		return sexagesimalInt(neg, value, text)
	}
	n, ok := new(big.Int).SetString(value, base)
	if !ok {
		return nil, fmt.Errorf("%w: invalid int %q", ErrConstruct, text)
	}
	if neg {
		n.Neg(n)
	}
	return fromBig(n), nil
}

func sexagesimalInt(neg bool, value, text string) (*ir.Node, error) {
	res := new(big.Int)
	sixty := big.NewInt(60)
	for _, part := range strings.Split(value, ":") {
		d, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, fmt.Errorf("%w: invalid int %q", ErrConstruct, text)
		}
		res.Mul(res, sixty).Add(res, d)
	}
	if neg {
		res.Neg(res)
	}
	return fromBig(res), nil
}

func fromBig(n *big.Int) *ir.Node {
	if n.IsInt64() {
		return ir.FromInt(n.Int64())
	}
	return ir.FromNumber(n.String())
}

func constructFloat(v grammar.Version, text string) (*ir.Node, error) {
	value := strings.ToLower(text)
	if v == grammar.V11 {
		value = strings.ReplaceAll(value, "_", "")
	}
	sign := 1.0
	if value != "" && (value[0] == '-' || value[0] == '+') {
		if value[0] == '-' {
			sign = -1
		}
		value = value[1:]
	}
	switch {
	case value == ".inf":
		return ir.FromFloat(sign * math.Inf(1)), nil
	case value == ".nan":
		return ir.FromFloat(math.NaN()), nil
	case v == grammar.V11 && strings.Contains(value, ":"):
		var f float64
		for _, part := range strings.Split(value, ":") {
			d, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid float %q", ErrConstruct, text)
			}
			f = f*60 + d
		}
		return ir.FromFloat(sign * f), nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil && !isRange(err) {
		return nil, fmt.Errorf("%w: invalid float %q", ErrConstruct, text)
	}
	return ir.FromFloat(sign * f), nil
}

func isRange(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

var timestampRe = regexp.MustCompile(`^([0-9][0-9][0-9][0-9])-([0-9][0-9]?)-([0-9][0-9]?)` +
	`(?:(?:[Tt]|[ \t]+)([0-9][0-9]?):([0-9][0-9]):([0-9][0-9])(?:\.([0-9]*))?` +
	`(?:[ \t]*(Z|([-+])([0-9][0-9]?)(?::([0-9][0-9]))?))?)?$`)

// timestampISO renders a YAML 1.1 timestamp in ISO-8601: a calendar date
// for dates, otherwise date and time with microseconds when non zero and
// an offset when the source has one.
func timestampISO(text string) (string, error) {
	m := timestampRe.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w: invalid timestamp %q", ErrConstruct, text)
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	hour, minute, second := atoi(m[4]), atoi(m[5]), atoi(m[6])
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return "", fmt.Errorf("%w: invalid timestamp %q", ErrConstruct, text)
	}
	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if m[4] == "" {
		return date, nil
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "%sT%02d:%02d:%02d", date, hour, minute, second)
	if frac := m[7]; frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac += strings.Repeat("0", 6-len(frac))
		if us := atoi(frac); us != 0 {
			fmt.Fprintf(b, ".%06d", us)
		}
	}
	switch {
	case m[8] == "Z":
		b.WriteString("+00:00")
	case m[9] != "":
		fmt.Fprintf(b, "%s%02d:%02d", m[9], atoi(m[10]), atoi(m[11]))
	}
	return b.String(), nil
}
