package http

import (
	"path"
	"strconv"
	"strings"

	"github.com/damianoneill/go-routable/pkg/domain/route"
)

// pathMatcher tests request paths against exclusion patterns. A "*" segment
// matches exactly one segment and a trailing "*" one or more segments.
// Patterns are compiled to route templates once.
type pathMatcher struct {
	templates []route.Template
}

func newMatcher(patterns []string) *pathMatcher {
	m := &pathMatcher{templates: make([]route.Template, 0, len(patterns))}
	for _, p := range patterns {
		m.templates = append(m.templates, route.ParseTemplate(toTemplate(p)))
	}
	return m
}

func toTemplate(pattern string) string {
	segs := strings.Split(route.Normalize(path.Clean("/"+pattern)), "/")
	for i, s := range segs {
		if s != "*" {
			continue
		}
		if i == len(segs)-1 {
			segs[i] = ":rest:"
		} else {
			segs[i] = ":seg" + strconv.Itoa(i)
		}
	}
	return strings.Join(segs, "/")
}

// Matches reports whether reqPath matches any pattern.
func (m *pathMatcher) Matches(reqPath string) bool {
	if len(m.templates) == 0 {
		return false
	}
	input := route.Split(route.Normalize(path.Clean("/" + reqPath)))
	for _, t := range m.templates {
		// Compiled patterns only place a wildcard last, so Match never errors.
		if _, ok, _ := route.Match(t, input, t.IsWildcard()); ok {
			return true
		}
	}
	return false
}
