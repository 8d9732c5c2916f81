package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name          string
		template      string
		path          string
		allowWildcard bool
		want          map[string]string
		wantMatch     bool
	}{
		{
			name:      "single param",
			template:  "users/:id",
			path:      "users/42",
			want:      map[string]string{"id": "42"},
			wantMatch: true,
		},
		{
			name:      "multiple params",
			template:  "groups/:id/topics/:topic_id",
			path:      "groups/5/topics/20",
			want:      map[string]string{"id": "5", "topic_id": "20"},
			wantMatch: true,
		},
		{
			name:      "static only",
			template:  "settings/privacy",
			path:      "settings/privacy",
			want:      map[string]string{},
			wantMatch: true,
		},
		{
			name:     "literal mismatch",
			template: "users/:id",
			path:     "groups/42",
		},
		{
			name:     "literal comparison is case sensitive",
			template: "users/:id",
			path:     "Users/42",
		},
		{
			name:     "arity mismatch",
			template: "users/:id",
			path:     "users/42/photos",
		},
		{
			name:      "empty template matches empty input",
			template:  "",
			path:      "",
			want:      map[string]string{},
			wantMatch: true,
		},
		{
			name:     "empty template rejects input",
			template: "",
			path:     "users",
		},
		{
			name:          "wildcard between literals",
			template:      "files/:path:/download",
			path:          "files/a/b/c/download",
			allowWildcard: true,
			want:          map[string]string{"path": "a/b/c"},
			wantMatch:     true,
		},
		{
			name:          "wildcard at end consumes the rest",
			template:      "any/:rest:",
			path:          "any/x/y/z",
			allowWildcard: true,
			want:          map[string]string{"rest": "x/y/z"},
			wantMatch:     true,
		},
		{
			name:          "wildcard may bind nothing before its literal",
			template:      "files/:path:/download",
			path:          "files/download",
			allowWildcard: true,
			want:          map[string]string{"path": ""},
			wantMatch:     true,
		},
		{
			name:          "wildcard without closing literal",
			template:      "files/:path:/download",
			path:          "files/a/b",
			allowWildcard: true,
		},
		{
			name:          "wildcard needs at least one remaining segment",
			template:      "any/:rest:",
			path:          "any",
			allowWildcard: true,
		},
		{
			name:          "trailing input tolerated in wildcard mode",
			template:      "files/:path:/download",
			path:          "files/a/download/extra",
			allowWildcard: true,
			want:          map[string]string{"path": "a"},
			wantMatch:     true,
		},
		{
			name:          "params around a wildcard",
			template:      "users/:id/:rest:/edit/:field",
			path:          "users/7/photos/3/edit/title",
			allowWildcard: true,
			want:          map[string]string{"id": "7", "rest": "photos/3", "field": "title"},
			wantMatch:     true,
		},
		{
			name:      "wildcard binds one segment in exact mode",
			template:  "a/:x:",
			path:      "a/1",
			want:      map[string]string{"x": "1"},
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Match(ParseTemplate(tt.template), Split(Normalize(tt.path)), tt.allowWildcard)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestMatch_InvalidTemplate(t *testing.T) {
	tmpl := ParseTemplate("a/:w:/:bad")

	for _, path := range []string{"a/x/y", "b", "", "a/x/y/z/w"} {
		t.Run(path, func(t *testing.T) {
			_, ok, err := Match(tmpl, Split(path), true)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}

	t.Run("exact mode does not consume greedily", func(t *testing.T) {
		got, ok, err := Match(tmpl, Split("a/x/y"), false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, map[string]string{"w": "x", "bad": "y"}, got)
	})
}
