package pathtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	t.Parallel()

	var r Root[int]
	_, ok := r.Get("foo")
	assert.False(t, ok)
	_, ok = r.Get("")
	assert.False(t, ok)
	assert.Empty(t, r.Trail("foo/bar"))
}

func TestSetAndGet(t *testing.T) {
	t.Parallel()

	var r Root[int]
	r.Set("foo/bar", 42)

	got, ok := r.Get("foo/bar")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	for _, p := range []string{"foo", "foo/bar/baz", "foobar", ""} {
		_, ok := r.Get(p)
		assert.False(t, ok, "path %q", p)
	}

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()

		var r Root[string]
		r.Set("foo", "a")
		r.Set("foo", "b")
		got, ok := r.Get("foo")
		require.True(t, ok)
		assert.Equal(t, "b", got)
	})

	t.Run("repeated separators", func(t *testing.T) {
		t.Parallel()

		var r Root[string]
		r.Set("foo//bar", "x")
		got, ok := r.Get("foo/bar")
		require.True(t, ok)
		assert.Equal(t, "x", got)
	})
}

func TestTrail(t *testing.T) {
	t.Parallel()

	var r Root[string]
	r.Set("", "Home")
	r.Set("guide", "Guide")
	r.Set("guide/basics/variables", "Variables")
	r.Set("reference", "Reference")

	tests := []struct {
		desc string
		give string
		want []Entry[string]
	}{
		{desc: "root", give: ""},
		{
			desc: "top level",
			give: "guide",
			want: []Entry[string]{{Path: "", Value: "Home"}},
		},
		{
			desc: "skips directories without values",
			give: "guide/basics/variables",
			want: []Entry[string]{
				{Path: "", Value: "Home"},
				{Path: "guide", Value: "Guide"},
			},
		},
		{
			desc: "unknown page",
			give: "reference/api/types",
			want: []Entry[string]{
				{Path: "", Value: "Home"},
				{Path: "reference", Value: "Reference"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, r.Trail(tt.give))
		})
	}
}
