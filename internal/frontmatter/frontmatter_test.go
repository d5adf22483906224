package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Key Terminology\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nid: key-terminology\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("id: key-terminology\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nid: x\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("id: x\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nid: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("id: x\n"), fm)
	require.Empty(t, body)
}

func TestSplit_HorizontalRuleIsNotAClosingDelimiter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nid: x\n----\ntitle: y\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("id: x\n----\ntitle: y\n"), fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplit_Unterminated(t *testing.T) {
	_, _, had, err := Split([]byte("---\nid: x\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrUnterminated))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	fields, err = ParseYAML([]byte("id: intro\nsidebar_position: 2\n"))
	require.NoError(t, err)
	require.Equal(t, "intro", fields["id"])
	require.Equal(t, 2, fields["sidebar_position"])

	_, err = ParseYAML([]byte("id: [broken\n"))
	require.Error(t, err)
}

func TestMetaFromFields(t *testing.T) {
	m, err := MetaFromFields(map[string]any{
		"id":            " key-terminology ",
		"slug":          "/terms",
		"title":         "Key Terminology",
		"sidebar_label": "Terms",
		"draft":         true,
		"tags":          []any{"zk"},
	})
	require.NoError(t, err)
	require.Equal(t, Meta{
		ID:           "key-terminology",
		Slug:         "/terms",
		Title:        "Key Terminology",
		SidebarLabel: "Terms",
		Draft:        true,
	}, m)

	m, err = MetaFromFields(map[string]any{"id": 2023})
	require.NoError(t, err)
	require.Equal(t, "2023", m.ID)

	_, err = MetaFromFields(map[string]any{"slug": []any{"a"}})
	require.Error(t, err)

	_, err = MetaFromFields(map[string]any{"draft": "yes"})
	require.Error(t, err)
}
