package transcode

import (
	"fmt"
	"os"
	"regexp"

	"github.com/signadot/tony-format/yq/encode"
	"github.com/signadot/tony-format/yq/format"
	"github.com/signadot/tony-format/yq/grammar"
	"github.com/signadot/tony-format/yq/load"
	"github.com/signadot/tony-format/yq/xmldoc"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-yaml"
)

// Config holds the settings of one transcoding run.
type Config struct {
	InputFormat  format.Format `yaml:"input-format"`
	OutputFormat format.Format `yaml:"output-format"`

	// Annotate records tags, styles and anchors when loading and
	// restores them when dumping YAML.
	Annotate           bool `yaml:"annotate"`
	ExpandAliases      bool `yaml:"expand-aliases"`
	ExpandMergeKeys    bool `yaml:"expand-merge-keys"`
	MaxExpansionFactor int  `yaml:"max-expansion-factor"`

	InputGrammar  grammar.Version `yaml:"yaml-input-grammar-version"`
	OutputGrammar grammar.Version `yaml:"yaml-output-grammar-version"`

	Indentless    bool `yaml:"indentless"`
	ExplicitStart bool `yaml:"explicit-start"`
	ExplicitEnd   bool `yaml:"explicit-end"`
	// Width is the YAML line width, 0 for the default.
	Width int `yaml:"width"`

	XMLRoot      string   `yaml:"xml-root"`
	XMLDTD       bool     `yaml:"xml-dtd"`
	XMLForceList []string `yaml:"xml-force-list"`

	Colors bool `yaml:"colors"`
}

func DefaultConfig() *Config {
	return &Config{
		InputFormat:        format.YAMLFormat,
		OutputFormat:       format.JSONFormat,
		ExpandAliases:      true,
		ExpandMergeKeys:    true,
		MaxExpansionFactor: load.DefaultMaxExpansionFactor,
		InputGrammar:       grammar.V12,
		OutputGrammar:      grammar.V11,
	}
}

var xmlName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

func (c *Config) Validate() error {
	formats := []any{format.YAMLFormat, format.JSONFormat, format.XMLFormat, format.TOMLFormat}
	versions := []any{grammar.V11, grammar.V12}
	return validation.ValidateStruct(c,
		validation.Field(&c.InputFormat, validation.In(formats...)),
		validation.Field(&c.OutputFormat, validation.In(formats...)),
		validation.Field(&c.MaxExpansionFactor, validation.Required, validation.Min(1)),
		validation.Field(&c.InputGrammar, validation.Required, validation.In(versions...)),
		validation.Field(&c.OutputGrammar, validation.Required, validation.In(versions...)),
		validation.Field(&c.Width, validation.Min(0)),
		validation.Field(&c.XMLRoot, validation.Match(xmlName)),
	)
}

// LoadConfig reads a YAML configuration file into cfg, expanding
// ${VAR} references from the environment, and validates the result.
// Settings absent from the file keep their value in cfg.
func LoadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) loadOptions(name string, g *grammar.Grammar) []load.LoadOption {
	return []load.LoadOption{
		load.Name(name),
		load.Annotate(c.Annotate),
		load.ExpandAliases(c.ExpandAliases),
		load.WithGrammar(g),
		load.MaxExpansionFactor(c.MaxExpansionFactor),
	}
}

func (c *Config) encodeOptions() []encode.EncodeOption {
	opts := []encode.EncodeOption{
		encode.EncodeFormat(c.OutputFormat),
		encode.GrammarVersion(c.OutputGrammar),
		encode.UseAnnotations(c.Annotate),
		encode.Indentless(c.Indentless),
		encode.ExplicitStart(c.ExplicitStart),
		encode.ExplicitEnd(c.ExplicitEnd),
	}
	if c.Width > 0 {
		opts = append(opts, encode.Width(c.Width))
	}
	if c.Colors {
		opts = append(opts, encode.EncodeColors(encode.NewColors()))
	}
	return opts
}

func (c *Config) xmlOptions() []xmldoc.EncodeOption {
	return []xmldoc.EncodeOption{
		xmldoc.Root(c.XMLRoot),
		xmldoc.FullDocument(c.XMLDTD),
	}
}
