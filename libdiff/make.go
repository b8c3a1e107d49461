package libdiff

// MakeAdded returns the delta for a value that did not exist before.
func MakeAdded(to any) Delta {
	return []any{to}
}

// MakeReplaced returns the delta replacing from by to.
func MakeReplaced(from, to any) Delta {
	return []any{from, to}
}

// MakeRemoved returns the delta removing from.
func MakeRemoved(from any) Delta {
	return []any{from, 0, DeleteTag}
}

// MakeMoved returns the array delta entry moving an item to newIndex.
func MakeMoved(value any, newIndex int) Delta {
	return []any{value, newIndex, MoveTag}
}

func (d *differ) added(to any) Delta {
	return MakeAdded(to)
}

func (d *differ) replaced(from, to any) Delta {
	return MakeReplaced(d.previous(from), to)
}

func (d *differ) removed(from any) Delta {
	return MakeRemoved(d.previous(from))
}

func (d *differ) moved(from any, newIndex int) Delta {
	return MakeMoved(d.previous(from), newIndex)
}

func (d *differ) previous(v any) any {
	if d.cfg.IncludePreviousValue {
		return v
	}
	return nil
}

func isArrayDelta(m map[string]any) bool {
	t, ok := m[ArrayTag]
	return ok && t == ArrayTagValue
}
