package format

import (
	"errors"
	"fmt"
	"slices"
)

type Format int

const (
	YAMLFormat Format = iota
	JSONFormat
	XMLFormat
	TOMLFormat
)

var ErrBadFormat = errors.New("bad format")

type info struct {
	name    string
	aliases []string
	// program is the name the command takes when this format is its
	// input, if any.
	program string
}

var formats = [...]info{
	YAMLFormat: {name: "yaml", aliases: []string{"y", "yml"}, program: "yq"},
	JSONFormat: {name: "json", aliases: []string{"j"}},
	XMLFormat:  {name: "xml", aliases: []string{"x"}, program: "xq"},
	TOMLFormat: {name: "toml", aliases: []string{"t"}, program: "tomlq"},
}

// ParseFormat accepts a format name or its one letter abbreviation.
func ParseFormat(v string) (Format, error) {
	for i, fi := range formats {
		if fi.name == v || slices.Contains(fi.aliases, v) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// FromProgram returns the input format of the command named prog.
func FromProgram(prog string) (Format, bool) {
	for i, fi := range formats {
		if fi.program != "" && fi.program == prog {
			return Format(i), true
		}
	}
	return 0, false
}

func (f Format) valid() bool {
	return f >= 0 && int(f) < len(formats)
}

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("<err: %d is not a format>", int(f))
	}
	return formats[f].name
}

// Program is the command name for this input format, "" for JSON.
func (f Format) Program() string {
	if !f.valid() {
		return ""
	}
	return formats[f].program
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, int(f))
	}
	return []byte(formats[f].name), nil
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsJSON() bool { return f == JSONFormat }

// AllFormats returns all supported formats.
func AllFormats() []Format {
	res := make([]Format, len(formats))
	for i := range res {
		res[i] = Format(i)
	}
	return res
}
