package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "lq").
		WithSynopsis("lq [opts] command [opts]").
		WithDescription("lq diffs, patches and replays live query results.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return lqMain(cfg, cc, args)
		}).
		WithSubs(
			DiffCommand(cfg),
			PatchCommand(cfg),
			ReverseCommand(cfg),
			JSONPatchCommand(cfg),
			StreamCommand(cfg),
			ApplyCommand(cfg))
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithOpts(opts...).
		WithSynopsis("diff [opts] a b").
		WithDescription("diff two json or yaml documents, exiting 1 if they differ").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("patch").
		WithAliases("p", "pa").
		WithSynopsis("patch [opts] <delta> <file>").
		WithDescription("apply a delta to a document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}

func ReverseCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ReverseConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("reverse").
		WithAliases("r", "rev").
		WithSynopsis("reverse <delta>").
		WithDescription("print the delta undoing a delta").
		WithRun(func(cc *cli.Context, args []string) error {
			return reverse(cfg, cc, args)
		})
	cfg.Reverse = cmd
	return cmd
}

func JSONPatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &JSONPatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("jsonpatch").
		WithAliases("jp").
		WithSynopsis("jsonpatch [-a] <delta> <file>").
		WithDescription("convert a delta against a document to an RFC 6902 json patch").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return jsonPatch(cfg, cc, args)
		})
	cfg.JSONPatch = cmd
	return cmd
}

func StreamCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &StreamConfig{DiffConfig: &DiffConfig{MainConfig: mainCfg}}
	opts, err := cli.StructOpts(cfg.DiffConfig)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("stream").
		WithAliases("s").
		WithSynopsis("stream [opts] [file]").
		WithDescription("turn newline delimited live results into revisioned patches").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return stream(cfg, cc, args)
		})
	cfg.Stream = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("apply").
		WithAliases("a").
		WithSynopsis("apply [file]").
		WithDescription("turn newline delimited revisioned patches back into results").
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}
