package definitions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGlossaryCoversResolverFields(t *testing.T) {
	t.Parallel()

	g, err := DefaultGlossary()
	require.NoError(t, err)

	all := append(append(DefaultTestFields.list(), ViralTestFields.list()...),
		FieldRecovered, FieldDeath, FieldDeathProbable, FieldDeathConfirmed)
	for _, field := range all {
		_, ok := g.entry(field)
		assert.True(t, ok, "missing glossary entry for %s", field)
	}
}

func TestGlossaryLookupKeepsQueryOrder(t *testing.T) {
	t.Parallel()

	g, err := DefaultGlossary()
	require.NoError(t, err)

	q := MustResolve(KindOutcomes, SubstatDeath, Modifiers{DeathConfirmed: true})
	entries := g.Lookup(q)
	require.Len(t, entries, 3)
	assert.Equal(t, "recovered", entries[0].Field)
	assert.Equal(t, "death", entries[1].Field)
	assert.Equal(t, "deathConfirmed", entries[2].Field)
	assert.False(t, entries[0].Highlighted)
	assert.True(t, entries[1].Highlighted)
	assert.Contains(t, string(entries[1].Definition), "<strong>")
}

func TestParseGlossarySanitisesMarkdown(t *testing.T) {
	t.Parallel()

	src := `fields:
  - field: positive
    definition: |
      Cases <script>alert(1)</script> see [docs](https://example.com).
  - field: pending
    title: Pending
    definition: Awaiting results.
`
	g, err := ParseGlossary(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	q, err := NewQuery([]string{"positive", "unknownField"}, "unknownField")
	require.NoError(t, err)
	entries := g.Lookup(q)

	assert.Equal(t, "positive", entries[0].Title)
	assert.NotContains(t, string(entries[0].Definition), "<script>")
	assert.Contains(t, string(entries[0].Definition), `rel="nofollow`)
	assert.Equal(t, "unknownField", entries[1].Title)
	assert.Contains(t, string(entries[1].Definition), missingDefinition)
	assert.True(t, entries[1].Highlighted)
}

func TestParseGlossaryRejectsBadEntries(t *testing.T) {
	t.Parallel()

	_, err := ParseGlossary(strings.NewReader("fields:\n  - title: Nameless\n"))
	require.Error(t, err)

	_, err = ParseGlossary(strings.NewReader("fields:\n  - field: death\n  - field: death\n"))
	require.ErrorIs(t, err, ErrDuplicateField)
}
