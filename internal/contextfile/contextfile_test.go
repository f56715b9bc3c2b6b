package contextfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/magiconair/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "ctx.yaml", `
page: dashboard
page_id: 42
logged_in: true
options:
  wcvendors_dashboard_page_id: "42"
  wcvendors_tag_limit: 15
  countries: [US, CA]
flags:
  wcv_pro_maps: true
query:
  terms: "yes"
  paged: 2
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dashboard", c.Page())
	assert.Equal(t, "42", c.PageID())
	assert.True(t, c.LoggedIn())
	assert.Equal(t, "42", c.OptionString("wcvendors_dashboard_page_id"))
	assert.Equal(t, int64(15), c.OptionValue("wcvendors_tag_limit"))
	assert.Equal(t, []any{"US", "CA"}, c.OptionValue("countries"))
	assert.True(t, c.Flag("wcv_pro_maps"))
	assert.Equal(t, "yes", c.Query("terms"))
	assert.Equal(t, "2", c.Query("paged"))
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "ctx.json", `{"page": "shop", "options": {"ratio": 0.5}}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", c.Page())
	assert.False(t, c.LoggedIn())
	assert.Equal(t, 0.5, c.OptionValue("ratio"))
}

func TestLoad_EmptyDocument(t *testing.T) {
	path := writeFile(t, "ctx.yml", "")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", c.Page())
}

func TestLoad_SchemaViolations(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "page: shop\nuser: bob\n"},
		{name: "logged_in not bool", content: "logged_in: maybe\n"},
		{name: "flag not bool", content: "flags:\n  maps: on-ish\n"},
		{name: "options not object", content: "options: [1, 2]\n"},
		{name: "top level not object", content: "- page\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "ctx.yaml", tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestLoad_Properties(t *testing.T) {
	path := writeFile(t, "ctx.properties", `
page = dashboard
page_id = 7
logged_in = true
option.wcvendors_dashboard_page_id = 7
option.wcvendors_hide_product_tags = yes
flag.wcv_pro_maps = true
query.terms = yes
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dashboard", c.Page())
	assert.Equal(t, "7", c.PageID())
	assert.True(t, c.LoggedIn())
	assert.Equal(t, "7", c.OptionValue("wcvendors_dashboard_page_id"))
	assert.True(t, c.OptionBool("wcvendors_hide_product_tags"))
	assert.True(t, c.Flag("wcv_pro_maps"))
	assert.Equal(t, "yes", c.Query("terms"))
}

func TestFromProperties_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		errMsg string
	}{
		{name: "bad logged_in", source: "logged_in = sometimes", errMsg: "logged_in"},
		{name: "bad flag", source: "flag.maps = perhaps", errMsg: "flag.maps"},
		{name: "unknown key", source: "user = bob", errMsg: `unknown key "user"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := properties.LoadString(tc.source)
			require.NoError(t, err)
			_, err = FromProperties(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read context file")

	_, err = Load(writeFile(t, "ctx.toml", "page = 'x'"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported context file extension")

	_, err = Load(writeFile(t, "ctx.yaml", "page: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")
}

func TestApply(t *testing.T) {
	base, err := Parse([]byte(`
page: shop
logged_in: true
options:
  keep: 1
  replace: old
flags:
  a: true
query:
  q: x
`))
	require.NoError(t, err)

	loggedOut := false
	c := Apply(base, Overrides{
		Page:     "dashboard",
		LoggedIn: &loggedOut,
		Options:  map[string]string{"replace": "new"},
		Flags:    map[string]bool{"b": true},
		Query:    map[string]string{"terms": "yes"},
	})

	assert.Equal(t, "dashboard", c.Page())
	assert.False(t, c.LoggedIn())
	assert.Equal(t, int64(1), c.OptionValue("keep"))
	assert.Equal(t, "new", c.OptionValue("replace"))
	assert.True(t, c.Flag("a"))
	assert.True(t, c.Flag("b"))
	assert.Equal(t, "x", c.Query("q"))
	assert.Equal(t, "yes", c.Query("terms"))

	// The base snapshot is untouched.
	assert.Equal(t, "shop", base.Page())
	assert.Equal(t, "old", base.OptionValue("replace"))
}

func TestApply_NilBase(t *testing.T) {
	assert.True(t, Overrides{}.Empty())

	c := Apply(nil, Overrides{Page: "feedback"})
	assert.Equal(t, "feedback", c.Page())
	assert.False(t, Overrides{Page: "feedback"}.Empty())
}
