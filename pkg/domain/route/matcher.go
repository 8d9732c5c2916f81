package route

import "strings"

// Match compares t against input segments.
//
// With allowWildcard false the segment counts must be equal and a wildcard
// segment, should t contain one, binds a single segment like a plain
// parameter. With allowWildcard true a wildcard segment binds every input
// segment up to (not including) the first one equal to the literal that
// follows it, or the rest of the input if it ends the template, and input
// left over once the template is exhausted is ignored.
//
// It returns the bound parameters and true on success, false when the
// template does not match, and a *TemplateError for any input when a wildcard
// parameter is directly followed by another parameter and allowWildcard is
// set.
func Match(t Template, input []string, allowWildcard bool) (map[string]string, bool, error) {
	segs := t.segments
	if !allowWildcard && len(segs) != len(input) {
		return nil, false, nil
	}
	if allowWildcard && t.invalid != nil {
		return nil, false, t.invalid
	}

	params := make(map[string]string, len(segs))
	ti, ii := 0, 0
	for ; ti < len(segs) && ii < len(input); ti++ {
		seg := segs[ti]
		switch {
		case seg.Kind == Literal:
			if seg.Text != input[ii] {
				return nil, false, nil
			}
			ii++

		case seg.Kind == Param, !allowWildcard:
			params[seg.Text] = input[ii]
			ii++

		default:
			// Validated at parse time: next is a literal or absent.
			var next *Segment
			if ti+1 < len(segs) {
				next = &segs[ti+1]
			}
			end := ii
			for end < len(input) && (next == nil || input[end] != next.Text) {
				end++
			}
			params[seg.Text] = strings.Join(input[ii:end], "/")
			ii = end
		}
	}

	if ti < len(segs) {
		return nil, false, nil
	}
	return params, true, nil
}
