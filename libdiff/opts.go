package libdiff

// ObjectHashFunc identifies an array item across positions.  The second
// result is false when the item has no identity, in which case it only
// matches structurally equal items.
type ObjectHashFunc func(item any, index int) (string, bool)

type DiffConfig struct {
	// IncludePreviousValue embeds old values in replaced, removed and
	// moved entries.  Without them a delta cannot be reversed.
	IncludePreviousValue bool
	// ObjectHash, when set, matches object and array items of arrays by
	// hash, which enables move detection and nested diffs of moved items.
	ObjectHash ObjectHashFunc
	// MatchByPosition matches container items at the same index when no
	// hash is available.
	MatchByPosition bool
	// TextDiffMinLength enables text deltas for strings when both sides
	// are at least this many bytes long.  Zero disables text deltas.
	TextDiffMinLength int
}

type DiffOpt func(*DiffConfig)

func IncludePreviousValue(v bool) DiffOpt {
	return func(c *DiffConfig) { c.IncludePreviousValue = v }
}

func ObjectHash(f ObjectHashFunc) DiffOpt {
	return func(c *DiffConfig) { c.ObjectHash = f }
}

func MatchByPosition(v bool) DiffOpt {
	return func(c *DiffConfig) { c.MatchByPosition = v }
}

// TextDiff enables unidiff text deltas for strings of at least minLength
// bytes on both sides.
func TextDiff(minLength int) DiffOpt {
	return func(c *DiffConfig) { c.TextDiffMinLength = minLength }
}

// ContentHash matches array items by a hash of their content.  Moved
// items are detected but changed items are not paired.
func ContentHash() DiffOpt {
	return ObjectHash(HashContent)
}

func newDiffConfig(opts []DiffOpt) *DiffConfig {
	cfg := &DiffConfig{IncludePreviousValue: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
