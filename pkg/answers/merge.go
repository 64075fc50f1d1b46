package answers

// Merge deep-merges source over target and returns target.
// Objects merge recursively; any other non-null source value wins;
// a null source value is only written when target has no such key.
func Merge(target, source map[string]any) map[string]any {
	for k, sv := range source {
		tv, exists := target[k]

		sm, sIsMap := sv.(map[string]any)
		tm, tIsMap := tv.(map[string]any)
		switch {
		case sIsMap && tIsMap:
			target[k] = Merge(tm, sm)
		case sv != nil:
			target[k] = deepCopy(sv)
		case !exists:
			target[k] = nil
		}
	}
	return target
}

// RemoveEmpty returns a copy of tree without null leaves, empty strings and
// objects that end up empty.
func RemoveEmpty(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
			out[k] = t
		case map[string]any:
			sub := RemoveEmpty(t)
			if len(sub) == 0 {
				continue
			}
			out[k] = sub
		default:
			out[k] = deepCopy(t)
		}
	}
	return out
}
