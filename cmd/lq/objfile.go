package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

func openArg(cc *cli.Context, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cc.In), nil
	}
	return os.Open(path)
}

// getObjFile decodes a json or yaml document from path, "-" being stdin.
func getObjFile(cc *cli.Context, path string) (any, error) {
	r, err := openArg(cc, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	var v any
	if err := yaml.Unmarshal(d, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (cfg *MainConfig) encode(w io.Writer, v any) error {
	var (
		d   []byte
		err error
	)
	switch {
	case cfg.Y:
		d, err = yaml.Marshal(v)
	case cfg.Wire:
		d, err = json.Marshal(v)
	default:
		d, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	if len(d) == 0 || d[len(d)-1] != '\n' {
		d = append(d, '\n')
	}
	_, err = w.Write(d)
	return err
}

func splitFields(s string) []string {
	var res []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				res = append(res, s[start:i])
			}
			start = i + 1
		}
	}
	return res
}
