package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Diff   bool
	Patch  bool
	Store  bool
	Stream bool
}

var d *debug

func init() {
	d = &debug{}
	d.Diff = boolEnv("LQ_DEBUG_DIFF")
	d.Patch = boolEnv("LQ_DEBUG_PATCH")
	d.Store = boolEnv("LQ_DEBUG_STORE")
	d.Stream = boolEnv("LQ_DEBUG_STREAM")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Diff() bool {
	return d.Diff
}
func Patch() bool {
	return d.Patch
}
func Store() bool {
	return d.Store
}
func Stream() bool {
	return d.Stream
}
