package main

import (
	"encoding/json"
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/livequery/libdiff"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires 2 arguments, a delta, and a file to which to apply it", cli.ErrUsage)
	}
	d, err := getObjFile(cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	if cfg.Reverse {
		rev, err := libdiff.Reverse(d)
		if err != nil {
			return fmt.Errorf("error reversing delta: %w", err)
		}
		d = rev
	}
	target, err := getObjFile(cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	res, err := libdiff.Patch(target, d)
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	if err := cfg.encode(cc.Out, res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

func reverse(cfg *ReverseConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Reverse.Parse(cc, args)
	if err != nil {
		cfg.Reverse.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: reverse requires 1 argument, a delta", cli.ErrUsage)
	}
	d, err := getObjFile(cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	rev, err := libdiff.Reverse(d)
	if err != nil {
		return fmt.Errorf("error reversing delta: %w", err)
	}
	return cfg.encode(cc.Out, rev)
}

func jsonPatch(cfg *JSONPatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.JSONPatch.Parse(cc, args)
	if err != nil {
		cfg.JSONPatch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: jsonpatch requires 2 arguments, a delta, and the document it applies to", cli.ErrUsage)
	}
	d, err := getObjFile(cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	doc, err := getObjFile(cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	if !cfg.Apply {
		ops, err := libdiff.JSONPatchOps(doc, d)
		if err != nil {
			return err
		}
		return cfg.encode(cc.Out, ops)
	}
	res, err := applyAsJSONPatch(doc, d)
	if err != nil {
		return err
	}
	return cfg.encode(cc.Out, res)
}

func applyAsJSONPatch(doc, d any) (any, error) {
	p, err := libdiff.ToJSONPatch(doc, d)
	if err != nil {
		return nil, err
	}
	in, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out, err := libdiff.ApplyJSONPatch(in, p)
	if err != nil {
		return nil, err
	}
	var res any
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, err
	}
	return res, nil
}
