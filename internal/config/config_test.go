package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	site := Default()
	assert.Equal(t, "docs", site.Source)
	assert.Equal(t, "_site", site.Output)
	assert.Equal(t, runtime.GOMAXPROCS(0), site.Jobs)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
source: pages
theme: theme/dark.yaml
classes: true
jobs: 2
frontmatter: "title: {{.Title}}"
languages:
  - id: jule
    displayName: Jule
    aliases: [jl]
    grammar: grammar/jule.yaml
  - id: abs
    grammar: /grammars/abs.yaml
`)
	dir := filepath.Dir(path)

	site, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, &Site{
		Source:      filepath.Join(dir, "pages"),
		Output:      filepath.Join(dir, "_site"),
		Theme:       filepath.Join(dir, "theme/dark.yaml"),
		Classes:     true,
		Jobs:        2,
		FrontMatter: "title: {{.Title}}",
		Languages: []*Language{
			{
				ID:          "jule",
				DisplayName: "Jule",
				Aliases:     []string{"jl"},
				Grammar:     filepath.Join(dir, "grammar/jule.yaml"),
			},
			{
				ID:      "abs",
				Grammar: "/grammars/abs.yaml",
			},
		},
	}, site)
	assert.NoError(t, site.Validate())
}

func TestLoad_empty(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "")
	site, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "docs"), site.Source)
}

func TestLoad_env(t *testing.T) {
	t.Setenv("JULESITE_TEST_THEME", "mytheme.yaml")

	path := writeConfig(t, "theme: ${JULESITE_TEST_THEME}\n")
	site, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "mytheme.yaml"), site.Theme)
}

func TestLoad_errors(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), DefaultFile))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := Load(writeConfig(t, "sauce: docs\n"))
		assert.ErrorContains(t, err, "sauce")
	})

	t.Run("bad type", func(t *testing.T) {
		t.Parallel()

		_, err := Load(writeConfig(t, "jobs: many\n"))
		assert.ErrorContains(t, err, DefaultFile)
	})
}

func TestSite_Validate(t *testing.T) {
	t.Parallel()

	site := &Site{
		Jobs: 0,
		Languages: []*Language{
			{ID: "jule", Grammar: "a.yaml"},
			{ID: "jule", Grammar: "b.yaml"},
			{Grammar: "c.yaml"},
			{ID: "x"},
			nil,
		},
	}

	err := site.Validate()
	require.Error(t, err)
	for _, msg := range []string{
		"no source directory",
		"no output directory",
		"no theme",
		"jobs must be at least 1",
		`languages[1]: id "jule" is used more than once`,
		"languages[2]: no id",
		"languages[3]: no grammar",
		"languages[4]: empty",
	} {
		assert.ErrorContains(t, err, msg)
	}
}
