package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/livequery/libdiff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := getObjFile(cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	b, err := getObjFile(cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	d := libdiff.Diff(a, b, cfg.diffOpts()...)
	if d == nil {
		return nil
	}
	if cfg.Reverse {
		rev, err := libdiff.Reverse(d)
		if err != nil {
			return fmt.Errorf("error reversing: %w", err)
		}
		d = rev
	}
	if cfg.Summary {
		newSummary(cc.Out, cfg.colorFor(cc.Out)).delta("$", d)
	} else if err := cfg.encode(cc.Out, d); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}
