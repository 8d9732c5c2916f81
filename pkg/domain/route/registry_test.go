package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRegistry = Registry[string, string, string]

func templatesOf(entries []Entry[string, string, string]) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Template.String())
	}
	return out
}

func TestRegistry_Buckets(t *testing.T) {
	r := NewRegistry[string, string, string]()
	r.Add("users/:id", Options[string, string, string]{})
	r.Add("files/:path:/download", Options[string, string, string]{})
	r.Add("groups/:id", Options[string, string, string]{})
	r.Add("any/:rest:", Options[string, string, string]{})

	assert.Equal(t, []string{"users/:id", "groups/:id"}, templatesOf(r.Entries(ExactSet)))
	assert.Equal(t, []string{"files/:path:/download", "any/:rest:"}, templatesOf(r.Entries(WildcardSet)))
	assert.Equal(t, []string{"users/:id", "groups/:id", "files/:path:/download", "any/:rest:"}, r.Templates())
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_OverwriteKeepsPosition(t *testing.T) {
	var r testRegistry
	r.Add("a", Options[string, string, string]{Defaults: map[string]string{"v": "1"}})
	r.Add("b", Options[string, string, string]{})
	r.Add("a", Options[string, string, string]{Defaults: map[string]string{"v": "2"}})

	entries := r.Entries(ExactSet)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Template.String())
	assert.Equal(t, "2", entries[0].Options.Defaults["v"])
	assert.Equal(t, "b", entries[1].Template.String())
}

func TestRegistry_EntriesIsSnapshot(t *testing.T) {
	r := NewRegistry[string, string, string]()
	r.Add("a", Options[string, string, string]{})

	snapshot := r.Entries(ExactSet)
	r.Add("b", Options[string, string, string]{})

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.Entries(ExactSet), 2)
}
