package libdiff

// Delta is a structural delta as described in the package documentation.
// A nil Delta means no difference.
type Delta = any

const (
	// ArrayTag is the key marking an object delta as an array delta.
	ArrayTag = "_t"
	// ArrayTagValue is the value stored under ArrayTag.
	ArrayTagValue = "a"
	// RemovedPrefix prefixes array delta keys that refer to old indices.
	RemovedPrefix = "_"

	// DeleteTag is the third element of a removal tuple.
	DeleteTag = 0
	// TextDiffTag is the third element of a text delta tuple.
	TextDiffTag = 2
	// MoveTag is the third element of an array move tuple.
	MoveTag = 3
)
