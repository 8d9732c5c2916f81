package route

import (
	"errors"
	"fmt"
)

var (
	// ErrRouteNotFound is matched by errors returned when no template matches.
	ErrRouteNotFound = errors.New("route not found")

	// ErrInvalidTemplate is matched by errors returned for malformed templates.
	ErrInvalidTemplate = errors.New("invalid template")
)

// NotFoundError carries the raw path that failed to resolve.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route found for url %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// TemplateError reports a wildcard parameter directly followed by another
// parameter, which leaves the end of the wildcard undefined.
type TemplateError struct {
	Template string
	Segment  string
	Next     string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: wildcard parameter %s cannot be directly followed by a parameter %s",
		e.Template, e.Segment, e.Next)
}

func (e *TemplateError) Is(target error) bool {
	return target == ErrInvalidTemplate
}
