package libdiff

import (
	"slices"
	"strconv"
)

// diffArray trims the common head and tail, then aligns the rest with a
// longest common subsequence.  Unaligned left items are removed unless
// they match an unaligned right item, in which case they move there.
// Keys of the result use right indices for added and modified items and
// "_"-prefixed left indices for removed and moved ones.
func (d *differ) diffArray(left, right []any) Delta {
	m := newMatcher(d.cfg, left, right)
	res := map[string]any{}
	n1, n2 := len(left), len(right)

	head := 0
	for head < n1 && head < n2 && m.match(head, head) {
		if cd := d.diff(left[head], right[head]); cd != nil {
			res[strconv.Itoa(head)] = cd
		}
		head++
	}
	tail := 0
	for head+tail < n1 && head+tail < n2 && m.match(n1-1-tail, n2-1-tail) {
		i, j := n1-1-tail, n2-1-tail
		if cd := d.diff(left[i], right[j]); cd != nil {
			res[strconv.Itoa(j)] = cd
		}
		tail++
	}

	switch {
	case head+tail == n1:
		for j := head; j < n2-tail; j++ {
			res[strconv.Itoa(j)] = d.added(right[j])
		}
		return arrayResult(res)
	case head+tail == n2:
		for i := head; i < n1-tail; i++ {
			res[RemovedPrefix+strconv.Itoa(i)] = d.removed(left[i])
		}
		return arrayResult(res)
	}

	seq1, seq2 := m.lcs(head, n1-tail, head, n2-tail)
	inSeq1 := make(map[int]bool, len(seq1))
	for _, i := range seq1 {
		inSeq1[i] = true
	}
	bySeq2 := make(map[int]int, len(seq2))
	for k, j := range seq2 {
		bySeq2[j] = seq1[k]
	}

	var removed []int
	for i := head; i < n1-tail; i++ {
		if inSeq1[i] {
			continue
		}
		res[RemovedPrefix+strconv.Itoa(i)] = d.removed(left[i])
		removed = append(removed, i)
	}
	for j := head; j < n2-tail; j++ {
		if i, ok := bySeq2[j]; ok {
			if cd := d.diff(left[i], right[j]); cd != nil {
				res[strconv.Itoa(j)] = cd
			}
			continue
		}
		moved := false
		for k, i := range removed {
			if !m.match(i, j) {
				continue
			}
			res[RemovedPrefix+strconv.Itoa(i)] = d.moved(left[i], j)
			if cd := d.diff(left[i], right[j]); cd != nil {
				res[strconv.Itoa(j)] = cd
			}
			removed = slices.Delete(removed, k, k+1)
			moved = true
			break
		}
		if !moved {
			res[strconv.Itoa(j)] = d.added(right[j])
		}
	}
	return arrayResult(res)
}

func arrayResult(res map[string]any) Delta {
	if len(res) == 0 {
		return nil
	}
	res[ArrayTag] = ArrayTagValue
	return res
}

// matcher decides whether a left and a right array item are the same
// item.  Hashes are computed at most once per item.
type matcher struct {
	cfg         *DiffConfig
	left, right []any
	lh, rh      []hashEntry
}

type hashEntry struct {
	done bool
	ok   bool
	hash string
}

func newMatcher(cfg *DiffConfig, left, right []any) *matcher {
	m := &matcher{cfg: cfg, left: left, right: right}
	if cfg.ObjectHash != nil {
		m.lh = make([]hashEntry, len(left))
		m.rh = make([]hashEntry, len(right))
	}
	return m
}

func (m *matcher) match(i, j int) bool {
	a, b := m.left[i], m.right[j]
	ka, kb := kindOf(a), kindOf(b)
	if !isContainer(ka) || !isContainer(kb) {
		return ka == kb && Equal(a, b)
	}
	if m.cfg.ObjectHash != nil {
		ha, oka := m.hash(m.lh, a, i)
		hb, okb := m.hash(m.rh, b, j)
		if oka && okb {
			return ha == hb
		}
	}
	if Equal(a, b) {
		return true
	}
	return m.cfg.MatchByPosition && i == j
}

func (m *matcher) hash(cache []hashEntry, v any, i int) (string, bool) {
	e := &cache[i]
	if !e.done {
		e.hash, e.ok = m.cfg.ObjectHash(v, i)
		e.done = true
	}
	return e.hash, e.ok
}

func isContainer(k kind) bool {
	return k == objectKind || k == arrayKind
}

// lcs computes a longest common subsequence of left[lo1:hi1] and
// right[lo2:hi2] under the matcher, returning the aligned absolute
// indices on each side.
func (m *matcher) lcs(lo1, hi1, lo2, hi2 int) ([]int, []int) {
	n, k := hi1-lo1, hi2-lo2
	lengths := make([][]int, n+1)
	matches := make([][]bool, n+1)
	for x := range lengths {
		lengths[x] = make([]int, k+1)
		matches[x] = make([]bool, k+1)
	}
	for x := 1; x <= n; x++ {
		for y := 1; y <= k; y++ {
			if m.match(lo1+x-1, lo2+y-1) {
				matches[x][y] = true
				lengths[x][y] = lengths[x-1][y-1] + 1
				continue
			}
			lengths[x][y] = max(lengths[x-1][y], lengths[x][y-1])
		}
	}
	size := lengths[n][k]
	idx1 := make([]int, size)
	idx2 := make([]int, size)
	x, y := n, k
	for x > 0 && y > 0 {
		switch {
		case matches[x][y]:
			size--
			idx1[size] = lo1 + x - 1
			idx2[size] = lo2 + y - 1
			x--
			y--
		case lengths[x][y-1] > lengths[x-1][y]:
			y--
		default:
			x--
		}
	}
	return idx1, idx2
}
