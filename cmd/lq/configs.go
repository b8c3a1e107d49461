package main

import (
	"io"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/signadot/livequery/libdiff"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='render summaries in color'"`
	Y     bool `cli:"name=y aliases=yaml desc='output yaml instead of json'"`
	Wire  bool `cli:"name=wire desc='output compact json'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

// colorFor reports whether output to w is colored: -color forces it,
// otherwise it follows whether w is a terminal.
func (cfg *MainConfig) colorFor(w io.Writer) bool {
	for _, opt := range cfg.Main.Opts {
		if opt.Name == "color" && opt.Value != nil {
			return cfg.Color
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type DiffConfig struct {
	*MainConfig
	Reverse  bool   `cli:"name=r desc='output the reversed diff'"`
	Hash     string `cli:"name=hash desc='comma separated fields identifying array objects'"`
	Content  bool   `cli:"name=content desc='identify array objects by content hash'"`
	Position bool   `cli:"name=pos desc='match unidentified array objects by position'"`
	Text     int    `cli:"name=text desc='text diff strings of at least this length'"`
	NoPrev   bool   `cli:"name=noprev desc='omit previous values from the diff'"`
	Summary  bool   `cli:"name=s desc='print a line per change instead of the delta'"`

	Diff *cli.Command
}

func (cfg *DiffConfig) diffOpts() []libdiff.DiffOpt {
	var res []libdiff.DiffOpt
	switch {
	case cfg.Hash != "":
		res = append(res, libdiff.ObjectHash(libdiff.HashFields(splitFields(cfg.Hash)...)))
	case cfg.Content:
		res = append(res, libdiff.ContentHash())
	}
	if cfg.Position {
		res = append(res, libdiff.MatchByPosition(true))
	}
	if cfg.Text > 0 {
		res = append(res, libdiff.TextDiff(cfg.Text))
	}
	if cfg.NoPrev {
		res = append(res, libdiff.IncludePreviousValue(false))
	}
	return res
}

type PatchConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='apply the patch reversed'"`

	Patch *cli.Command
}

type ReverseConfig struct {
	*MainConfig

	Reverse *cli.Command
}

type JSONPatchConfig struct {
	*MainConfig
	Apply bool `cli:"name=a desc='apply the resulting json patch and print the document'"`

	JSONPatch *cli.Command
}

type StreamConfig struct {
	*DiffConfig

	Stream *cli.Command
}

type ApplyConfig struct {
	*MainConfig

	Apply *cli.Command
}
