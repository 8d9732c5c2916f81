package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{name: "no patterns", path: "/test", want: false},
		{name: "exact", path: "/internal/health", patterns: []string{"/internal/health"}, want: true},
		{name: "no match", path: "/test", patterns: []string{"/other"}, want: false},
		{name: "one of many", path: "/test", patterns: []string{"/other", "/test"}, want: true},
		{name: "trailing wildcard", path: "/internal/ready", patterns: []string{"/internal/*"}, want: true},
		{name: "trailing wildcard spans segments", path: "/api/v1/users", patterns: []string{"/api/*"}, want: true},
		{name: "trailing wildcard needs a segment", path: "/api", patterns: []string{"/api/*"}, want: false},
		{name: "segment wildcard", path: "/users/123/profile", patterns: []string{"/users/*/profile"}, want: true},
		{name: "segment wildcard arity", path: "/users/1/2/profile", patterns: []string{"/users/*/profile"}, want: false},
		{name: "segment wildcard literal mismatch", path: "/users/123/settings", patterns: []string{"/users/*/profile"}, want: false},
		{name: "several wildcards", path: "/api/v1/users/1/posts/2", patterns: []string{"/api/*/users/*/posts/*"}, want: true},
		{name: "trailing slash cleaned", path: "/test/", patterns: []string{"/test"}, want: true},
		{name: "double slash cleaned", path: "/test//path", patterns: []string{"/test/path"}, want: true},
		{name: "dot segments cleaned", path: "/test/./path", patterns: []string{"/test/path"}, want: true},
		{name: "case sensitive", path: "/API/users", patterns: []string{"/api/users"}, want: false},
		{name: "root", path: "/", patterns: []string{"/"}, want: true},
		{name: "empty path is root", path: "", patterns: []string{"/"}, want: true},
		{name: "root does not match others", path: "/x", patterns: []string{"/"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newMatcher(tt.patterns).Matches(tt.path))
		})
	}
}

func TestToTemplate(t *testing.T) {
	assert.Equal(t, "internal/:rest:", toTemplate("/internal/*"))
	assert.Equal(t, "users/:seg1/profile", toTemplate("/users/*/profile"))
	assert.Equal(t, "", toTemplate("/"))
}
