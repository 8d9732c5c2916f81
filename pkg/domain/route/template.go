package route

import (
	"net/url"
	"strings"
)

// marker opens every parameter segment and closes wildcard ones.
const marker = ':'

// SegmentKind tags a template segment.
type SegmentKind int

const (
	// Literal segments must equal the input segment byte for byte.
	Literal SegmentKind = iota

	// Param segments bind exactly one input segment.
	Param

	// WildcardParam segments bind every input segment up to the next literal.
	WildcardParam
)

func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Param:
		return "param"
	case WildcardParam:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Segment is one slash separated piece of a template. Text is the literal
// text or the parameter name without markers.
type Segment struct {
	Kind SegmentKind
	Text string
}

// String renders the segment back into template syntax.
func (s Segment) String() string {
	switch s.Kind {
	case Param:
		return string(marker) + s.Text
	case WildcardParam:
		return string(marker) + s.Text + string(marker)
	default:
		return s.Text
	}
}

// Template is a parsed, immutable route pattern.
type Template struct {
	raw      string
	segments []Segment
	wildcard bool
	invalid  error
}

// ParseTemplate splits format into segments. It never fails: malformed
// wildcard placement is reported by Validate or when the template is matched.
func ParseTemplate(format string) Template {
	parts := Split(Normalize(format))
	t := Template{
		raw:      format,
		segments: make([]Segment, len(parts)),
	}
	for i, part := range parts {
		t.segments[i] = parseSegment(part)
		if t.segments[i].Kind == WildcardParam {
			t.wildcard = true
		}
	}
	t.invalid = t.Validate()
	return t
}

func parseSegment(part string) Segment {
	if len(part) == 0 || part[0] != marker {
		return Segment{Kind: Literal, Text: part}
	}
	name := part[1:]
	if len(name) > 0 && name[len(name)-1] == marker {
		return Segment{Kind: WildcardParam, Text: name[:len(name)-1]}
	}
	return Segment{Kind: Param, Text: name}
}

// String returns the template as it was registered.
func (t Template) String() string {
	return t.raw
}

// Segments returns a copy of the parsed segments.
func (t Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// IsWildcard reports whether any segment is a wildcard parameter.
func (t Template) IsWildcard() bool {
	return t.wildcard
}

// Validate returns a *TemplateError if a wildcard parameter is directly
// followed by another parameter.
func (t Template) Validate() error {
	for i, seg := range t.segments {
		if seg.Kind != WildcardParam || i+1 >= len(t.segments) {
			continue
		}
		if next := t.segments[i+1]; next.Kind != Literal {
			return &TemplateError{Template: t.raw, Segment: seg.String(), Next: next.String()}
		}
	}
	return nil
}

// Normalize reduces raw input to the key used for matching and caching: a
// leading scheme and authority, the query and fragment, surrounding whitespace and
// every leading or trailing slash are removed. "https://host/users/42/?a=1"
// and "/users/42" both normalize to "users/42". Degenerate input yields "",
// the root route.
func Normalize(raw string) string {
	p := strings.TrimSpace(raw)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if i := strings.Index(p, "://"); i > 0 && isScheme(p[:i]) {
		rest := p[i+len("://"):]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			p = rest[j:]
		} else {
			p = ""
		}
	}
	return strings.Trim(p, "/")
}

// isScheme reports whether s is a URI scheme: a letter followed by letters,
// digits, '+', '-' or '.'. A "://" later in the path is path text.
func isScheme(s string) bool {
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

// Split breaks a normalized path into segments. The empty path is a single
// empty segment so that it only ever matches the empty template.
func Split(normalized string) []string {
	return strings.Split(normalized, "/")
}

// Unescape percent-decodes each segment in place. A segment with a malformed
// escape is left as it is.
func Unescape(segments []string) []string {
	for i, seg := range segments {
		if !strings.Contains(seg, "%") {
			continue
		}
		if dec, err := url.PathUnescape(seg); err == nil {
			segments[i] = dec
		}
	}
	return segments
}
