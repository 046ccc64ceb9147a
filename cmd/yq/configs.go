package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/transcode"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Y         bool `cli:"name=y aliases=yaml-output desc='transcode filter output back into YAML'"`
	RoundTrip bool `cli:"name=Y aliases=yaml-roundtrip desc='YAML output keeping tags, styles and anchors'"`
	X         bool `cli:"name=x aliases=xml-output desc='transcode filter output back into XML'"`
	T         bool `cli:"name=t aliases=toml-output desc='transcode filter output back into TOML'"`

	Width         int  `cli:"name=w aliases=width desc='YAML line width'"`
	Indentless    bool `cli:"name=indentless aliases=indentless-lists desc='do not indent sequences under mappings'"`
	ExplicitStart bool `cli:"name=explicit-start desc='start every YAML document with ---'"`
	ExplicitEnd   bool `cli:"name=explicit-end desc='end every YAML document with ...'"`

	MaxExpansionFactor int `cli:"name=max-expansion-factor desc='bound on the size of expanded aliases relative to the input'"`

	XMLRoot string `cli:"name=xml-root desc='wrap XML output in an element of this name'"`
	XMLDTD  bool   `cli:"name=xml-dtd desc='write the XML declaration'"`

	InPlace bool `cli:"name=i aliases=in-place desc='rewrite the input files with the output'"`
	Diff    bool `cli:"name=diff desc='show a line diff of each input file and its output'"`

	ColorOut   bool `cli:"name=C aliases=color-output desc='color the output'"`
	Monochrome bool `cli:"name=M aliases=monochrome-output desc='do not color the output'"`

	Engine string `cli:"name=engine desc='filter engine: jq, expr or jsonpatch' default=jq"`
	JQ     string `cli:"name=jq desc='jq program to run' default=jq"`

	ConfigFile string `cli:"name=config desc='configuration file (yaml)'"`
	Verbose    bool   `cli:"name=v aliases=verbose desc='log what is done to stderr'"`

	Name        string
	Personality *format.Format
	InGrammar   *grammar.Version
	OutGrammar  *grammar.Version
	ForceList   []string
	JQArgs      []string

	Main *cli.Command
}

// personalityOf returns the command name and input format implied by
// the program name. Unknown names are yq.
func personalityOf(argv0 string) (string, format.Format) {
	name := strings.TrimSuffix(filepath.Base(argv0), ".exe")
	if f, ok := format.FromProgram(name); ok {
		return name, f
	}
	return format.YAMLFormat.Program(), format.YAMLFormat
}

func parsePersonality(v string) (format.Format, error) {
	if f, ok := format.FromProgram(v); ok {
		return f, nil
	}
	return format.ParseFormat(v)
}

func (cfg *MainConfig) personalityFunc() cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := parsePersonality(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		cfg.Personality = &f
		return f, nil
	})
}

func (cfg *MainConfig) grammarFunc(vp **grammar.Version) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		g, err := grammar.ParseVersion(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		*vp = &g
		return g, nil
	})
}

func appendFunc(vs *[]string) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		*vs = append(*vs, v)
		return v, nil
	})
}

func (cfg *MainConfig) outputFormat() (*format.Format, error) {
	if count(cfg.Y, cfg.RoundTrip, cfg.X, cfg.T) > 1 {
		return nil, fmt.Errorf("%w: must specify at most one of -y -Y -x -t", cli.ErrUsage)
	}
	var f format.Format
	switch {
	case cfg.Y, cfg.RoundTrip:
		f = format.YAMLFormat
	case cfg.X:
		f = format.XMLFormat
	case cfg.T:
		f = format.TOMLFormat
	default:
		return nil, nil
	}
	return &f, nil
}

// transcodeConfig layers the flags over the configuration file, if any,
// and the defaults.
func (cfg *MainConfig) transcodeConfig(w io.Writer) (*transcode.Config, error) {
	tc := transcode.DefaultConfig()
	if cfg.ConfigFile != "" {
		if err := transcode.LoadConfig(cfg.ConfigFile, tc); err != nil {
			return nil, err
		}
	}
	if cfg.Personality != nil {
		tc.InputFormat = *cfg.Personality
	}
	out, err := cfg.outputFormat()
	if err != nil {
		return nil, err
	}
	if out != nil {
		tc.OutputFormat = *out
	}
	if cfg.RoundTrip {
		tc.Annotate = true
		tc.ExpandAliases = false
	}
	if cfg.Width > 0 {
		tc.Width = cfg.Width
	}
	tc.Indentless = tc.Indentless || cfg.Indentless
	tc.ExplicitStart = tc.ExplicitStart || cfg.ExplicitStart
	tc.ExplicitEnd = tc.ExplicitEnd || cfg.ExplicitEnd
	if cfg.MaxExpansionFactor > 0 {
		tc.MaxExpansionFactor = cfg.MaxExpansionFactor
	}
	if cfg.InGrammar != nil {
		tc.InputGrammar = *cfg.InGrammar
	}
	if cfg.OutGrammar != nil {
		tc.OutputGrammar = *cfg.OutGrammar
	}
	if cfg.XMLRoot != "" {
		tc.XMLRoot = cfg.XMLRoot
	}
	tc.XMLDTD = tc.XMLDTD || cfg.XMLDTD
	tc.XMLForceList = append(tc.XMLForceList, cfg.ForceList...)

	if count(cfg.ColorOut, cfg.Monochrome) > 1 {
		return nil, fmt.Errorf("%w: must specify at most one of -C -M", cli.ErrUsage)
	}
	switch {
	case cfg.ColorOut:
		tc.Colors = true
	case cfg.Monochrome, cfg.InPlace, cfg.Diff:
		tc.Colors = false
	case !tc.Colors:
		if f, ok := w.(*os.File); ok {
			tc.Colors = isatty.IsTerminal(f.Fd())
		}
	}
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return tc, nil
}

func count(vs ...bool) int {
	ttl := 0
	for _, v := range vs {
		if v {
			ttl++
		}
	}
	return ttl
}
