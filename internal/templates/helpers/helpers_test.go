package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"covidtracking.org/statecards/internal/definitions"
)

func TestDefinitionsURLKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	q, err := definitions.NewQuery([]string{"negative", "positive", "totalTestResults"}, "totalTestResults")
	require.NoError(t, err)

	got := DefinitionsURL("01J0ABC", q)
	require.Equal(t, "/pages/01J0ABC/definitions?field=negative&field=positive&field=totalTestResults&highlight=totalTestResults", got)
}

func TestStatisticClass(t *testing.T) {
	t.Parallel()

	require.Equal(t, "statistic", StatisticClass(false, false, false))
	require.Equal(t, "statistic statistic--drill-down statistic--calculated", StatisticClass(true, false, true))
	require.Equal(t, "statistic statistic--subelement", StatisticClass(false, true, false))
}

func TestDefinitionClass(t *testing.T) {
	t.Parallel()

	require.Equal(t, "definition", DefinitionClass(false))
	require.Equal(t, "definition definition--highlighted", DefinitionClass(true))
}

func TestPagePathEscapes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/pages/a%2Fb", PagePath("a/b"))
}
