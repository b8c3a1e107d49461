package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/scott-cotton/cli"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/patchstream"
)

// resultLine is the input line format of stream.  Results are live unless
// live is false.
type resultLine struct {
	Data       any                        `json:"data,omitempty"`
	Errors     []gqlerrors.FormattedError `json:"errors,omitempty"`
	Extensions map[string]any             `json:"extensions,omitempty"`
	Live       *bool                      `json:"live,omitempty"`
}

func decodeLines[T any](r io.Reader) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		dec := json.NewDecoder(r)
		for {
			v := new(T)
			err := dec.Decode(v)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("error decoding line: %w", err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func results(r io.Reader) iter.Seq2[*gql.Result, error] {
	return func(yield func(*gql.Result, error) bool) {
		for line, err := range decodeLines[resultLine](r) {
			if err != nil {
				yield(nil, err)
				return
			}
			res := &gql.Result{
				Data:       line.Data,
				Errors:     line.Errors,
				Extensions: line.Extensions,
				IsLive:     line.Live == nil || *line.Live,
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}

func inputArg(cc *cli.Context, args []string) (io.ReadCloser, error) {
	switch len(args) {
	case 0:
		return openArg(cc, "-")
	case 1:
		return openArg(cc, args[0])
	}
	return nil, fmt.Errorf("%w: expected at most 1 file, got %v", cli.ErrUsage, args)
}

func stream(cfg *StreamConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Stream.Parse(cc, args)
	if err != nil {
		cfg.Stream.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	r, err := inputArg(cc, args)
	if err != nil {
		return err
	}
	defer r.Close()
	enc := json.NewEncoder(cc.Out)
	for env, err := range patchstream.Generate(results(r), cfg.diffOpts()...) {
		if err != nil {
			return err
		}
		if err := enc.Encode(env); err != nil {
			return err
		}
	}
	return nil
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	r, err := inputArg(cc, args)
	if err != nil {
		return err
	}
	defer r.Close()
	enc := json.NewEncoder(cc.Out)
	for res, err := range patchstream.Apply(decodeLines[patchstream.Envelope](r)) {
		if err != nil {
			return err
		}
		live := res.IsLive
		if err := enc.Encode(&resultLine{
			Data:       res.Data,
			Errors:     res.Errors,
			Extensions: res.Extensions,
			Live:       &live,
		}); err != nil {
			return err
		}
	}
	return nil
}
