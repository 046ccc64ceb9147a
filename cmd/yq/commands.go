package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/signadot/tony-format/yq/format"

	"github.com/scott-cotton/cli"
)

func MainCommand(ctx context.Context, argv0 string) *cli.Command {
	cfg := &MainConfig{}
	name, personality := personalityOf(argv0)
	cfg.Name = name
	if personality != format.YAMLFormat {
		cfg.Personality = &personality
	}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"input"},
			Description: "input personality: yq, xq, tomlq or a format (yaml, json, xml, toml)",
			Type:        cli.NamedFuncOpt(cfg.personalityFunc(), "(personality)"),
		},
		&cli.Opt{
			Name:        "yaml-input-grammar-version",
			Description: "YAML grammar used to type plain scalars when loading: 1.1 or 1.2",
			Type:        cli.NamedFuncOpt(cfg.grammarFunc(&cfg.InGrammar), "(version)"),
		},
		&cli.Opt{
			Name:        "yaml-output-grammar-version",
			Description: "YAML grammar whose plain scalars are quoted when dumping: 1.1 or 1.2",
			Type:        cli.NamedFuncOpt(cfg.grammarFunc(&cfg.OutGrammar), "(version)"),
		},
		&cli.Opt{
			Name:        "xml-force-list",
			Description: "element name that always loads as a list, may be repeated",
			Type:        cli.NamedFuncOpt(appendFunc(&cfg.ForceList), "(name)"),
		},
		&cli.Opt{
			Name:        "a",
			Aliases:     []string{"jq-arg"},
			Description: "argument passed to jq before the filter, may be repeated",
			Type:        cli.NamedFuncOpt(appendFunc(&cfg.JQArgs), "(arg)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, name).
		WithSynopsis(fmt.Sprintf("%s [opts] [filter] [files]", name)).
		WithDescription(fmt.Sprintf("%s transcodes %s to JSON, runs a filter over it and optionally transcodes the result back.",
			name, inputNoun(cfg))).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return yqMain(ctx, cfg, cc, args)
		})
}

func inputNoun(cfg *MainConfig) string {
	if cfg.Personality == nil {
		return "YAML"
	}
	return strings.ToUpper(cfg.Personality.String())
}
