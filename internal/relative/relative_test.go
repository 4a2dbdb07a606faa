package relative

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		src  string
		dst  string
		want string
	}{
		{
			desc: "child",
			src:  "guide",
			dst:  "guide/syntax/variables.html",
			want: "syntax/variables.html",
		},
		{
			desc: "sibling",
			src:  "guide/syntax",
			dst:  "guide/types/int.html",
			want: "../types/int.html",
		},
		{
			desc: "parent",
			src:  "guide/syntax/types",
			dst:  "guide",
			want: "../..",
		},
		{
			desc: "static",
			src:  "guide",
			dst:  "_/css/main.css",
			want: "../_/css/main.css",
		},
		{
			desc: "from root",
			src:  "",
			dst:  "_/css/main.css",
			want: "_/css/main.css",
		},
		{
			desc: "absolute",
			src:  "/guide/syntax",
			dst:  "/_/css",
			want: "../../_/css",
		},
		{
			desc: "trailing slash src",
			src:  "guide/syntax/",
			dst:  "guide/types/int.html",
			want: "../types/int.html",
		},
		{
			desc: "trailing slash dst",
			src:  "guide/syntax/",
			dst:  "guide/types/",
			want: "../types/",
		},
		{
			desc: "to root",
			src:  "guide/syntax/types",
			dst:  "",
			want: "../../..",
		},
		{
			desc: "same",
			src:  "guide",
			dst:  "guide",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Path(tt.src, tt.dst))
		})
	}
}

func TestFromPage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_/css/main.css", FromPage("index.html", "_/css/main.css"))
	assert.Equal(t, "../../_/css/main.css", FromPage("guide/syntax/variables.html", "_/css/main.css"))
	assert.Equal(t, "../index.html", FromPage("guide/variables.html", "index.html"))
	assert.Equal(t, ".", FromPage("guide/variables.html", "guide"))
}
