package cards

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/stats"
)

func TestAssemblePreservesOrderAndLink(t *testing.T) {
	t.Parallel()

	card, err := Assemble("ny", CategoryTests, "Tests",
		Statistic{Title: "Total tests", Value: stats.Float(30)},
		Statistic{Title: "Positive", Value: stats.Float(10)},
		Statistic{Title: "Negative", Value: stats.Float(20)},
	)
	require.NoError(t, err)

	require.Equal(t, "Tests", card.Title)
	require.Equal(t, Link{Label: "Historical data", Href: "/data/state/ny/tests"}, card.Link)
	require.Equal(t, []string{"Total tests: 30", "Positive: 10", "Negative: 20"}, card.Lines())
	for _, s := range card.Statistics {
		require.False(t, s.HasDefinitions())
	}
}

func TestAssembleValidatesContext(t *testing.T) {
	t.Parallel()

	_, err := Assemble("", CategoryCases, "Cases")
	require.ErrorIs(t, err, ErrInvalidEntity)

	_, err = Assemble("New York", CategoryCases, "Cases")
	require.ErrorIs(t, err, ErrInvalidEntity)

	_, err = Assemble("ny", Category("vaccines"), "Vaccines")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestAssembleOmitsAbsentConditionalStatistics(t *testing.T) {
	t.Parallel()

	card, err := Assemble("ny", CategoryTests, "Tests",
		Statistic{Title: "Pending", Value: nil, Conditional: true},
		Statistic{Title: "Zero pending", Value: stats.Float(0), Conditional: true},
		Statistic{Title: "Unreported", Value: nil},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Unreported: N/A"}, card.Lines())
}

func TestHistoricalDataPaths(t *testing.T) {
	t.Parallel()

	for _, category := range []Category{CategoryCases, CategoryTests, CategoryHospitalization, CategoryOutcomes, CategoryRaceEthnicity} {
		ctx, err := NewContext("wa", category)
		require.NoError(t, err)
		require.Equal(t, "/data/state/wa/"+string(category), ctx.HistoricalDataPath())
	}
}

func TestCasesCardExample(t *testing.T) {
	t.Parallel()

	rec := dataset.Record{
		Slug:             "ny",
		Positive:         stats.Float(1000000),
		PositiveIncrease: stats.Float(5000),
		SevenDayIncrease: stats.Float(0.0234),
	}
	card, err := Cases(rec)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Total cases: 1000000",
		"New cases: 5000",
		"Increase in 7 days: 2.3%",
	}, card.Lines())
	require.Equal(t, "/data/state/ny/cases", card.Link.Href)
	require.Equal(t, "1,000,000", card.Statistics[0].Grouped.Text)

	total := card.Statistics[0]
	require.True(t, total.HasDefinitions())
	if diff := cmp.Diff([]string{"positive", "negative"}, total.Query.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "positive", total.Query.Highlight())

	for _, drill := range card.Statistics[1:] {
		require.True(t, drill.Calculated)
		require.True(t, drill.DrillDown)
		require.False(t, drill.HasDefinitions())
	}
}

func TestCasesCardMissingSevenDayIncrease(t *testing.T) {
	t.Parallel()

	card, err := Cases(dataset.Record{Slug: "as", Positive: stats.Float(0)})
	require.NoError(t, err)
	require.Equal(t, []string{"Total cases: 0", "New cases: N/A", "Increase in 7 days: N/A"}, card.Lines())
	require.Empty(t, card.Statistics[2].Display.Suffix)
}

func TestTestsCardUndefinedTotalStillResolvesDefinitions(t *testing.T) {
	t.Parallel()

	card, err := Tests(dataset.Record{Slug: "ny", Positive: stats.Float(10), Negative: stats.Float(90)})
	require.NoError(t, err)

	require.Equal(t, []string{"Total tests: N/A", "Positive: 10", "Negative: 90"}, card.Lines())
	total := card.Statistics[0]
	require.Equal(t, []string{"negative", "positive", "totalTestResults"}, total.Query.Fields())
	require.Equal(t, "totalTestResults", total.Query.Highlight())
	require.Equal(t, "positive", card.Statistics[1].Query.Highlight())
	require.Equal(t, "negative", card.Statistics[2].Query.Highlight())
}

func TestTestsCardPendingHasNoDefinitions(t *testing.T) {
	t.Parallel()

	card, err := Tests(dataset.Record{Slug: "ca", Pending: stats.Float(12000)})
	require.NoError(t, err)
	require.Equal(t, []string{"Total tests", "Positive", "Pending", "Negative"}, titles(card))
	require.False(t, card.Statistics[2].HasDefinitions())
}

func TestPCRTestsCardUsesViralFields(t *testing.T) {
	t.Parallel()

	card, err := PCRTests(dataset.Record{
		Slug:               "ny",
		TotalTestsViral:    stats.Float(100),
		PositiveTestsViral: stats.Float(7),
		NegativeTestsViral: stats.Float(93),
		Pending:            stats.Float(4),
	})
	require.NoError(t, err)

	require.Equal(t, "Tests (PCR)", card.Title)
	require.Equal(t, "/data/state/ny/tests", card.Link.Href)
	require.Equal(t, []string{"Total tests: 100", "Positive: 7", "Negative: 93"}, card.Lines())
	want := []string{"negativeTestsViral", "positiveTestsViral", "totalTestsViral"}
	for i, highlight := range []string{"totalTestsViral", "positiveTestsViral", "negativeTestsViral"} {
		require.Equal(t, want, card.Statistics[i].Query.Fields())
		require.Equal(t, highlight, card.Statistics[i].Query.Highlight())
	}
}

func TestHospitalizationCards(t *testing.T) {
	t.Parallel()

	rec := dataset.Record{Slug: "ny", HospitalizedCurrently: stats.Float(4500), HospitalizedCumulative: stats.Float(89995)}

	current, err := CurrentHospitalization(rec)
	require.NoError(t, err)
	require.Equal(t, []string{
		"Currently hospitalized: 4500",
		"Currently in ICU: N/A",
		"Currently on ventilator: N/A",
	}, current.Lines())
	require.Equal(t, "/data/state/ny/hospitalization", current.Link.Href)

	cumulative, err := CumulativeHospitalization(rec)
	require.NoError(t, err)
	require.Equal(t, "Cumulative Hospitalization", cumulative.Title)
	require.Equal(t, "Cumulative hospitalized: 89995", cumulative.Lines()[0])
	for _, s := range append(current.Statistics, cumulative.Statistics...) {
		require.False(t, s.HasDefinitions())
	}
}

func TestOutcomesCard(t *testing.T) {
	t.Parallel()

	t.Run("probable only", func(t *testing.T) {
		t.Parallel()
		card, err := Outcomes(dataset.Record{
			Slug:          "ny",
			Recovered:     stats.Float(10),
			Death:         stats.Float(5),
			DeathProbable: stats.Float(2),
		})
		require.NoError(t, err)
		require.Equal(t, []string{"Recovered: 10", "Deaths: 5", "Probable deaths: 2"}, card.Lines())
		probable := card.Statistics[2]
		require.True(t, probable.Subelement)
		require.Equal(t, []string{"recovered", "death", "deathProbable"}, probable.Query.Fields())
		require.Equal(t, "deathProbable", probable.Query.Highlight())
	})

	t.Run("both reported", func(t *testing.T) {
		t.Parallel()
		card, err := Outcomes(dataset.Record{
			Slug:           "ny",
			DeathsLabel:    "Deaths (confirmed and probable)",
			Death:          stats.Float(5),
			DeathProbable:  stats.Float(2),
			DeathConfirmed: stats.Float(3),
		})
		require.NoError(t, err)
		require.Equal(t, []string{"Recovered", "Deaths (confirmed and probable)", "Probable deaths", "Confirmed deaths"}, titles(card))
		want := []string{"recovered", "death", "deathProbable", "deathConfirmed"}
		highlights := []string{"recovered", "death", "deathProbable", "deathConfirmed"}
		for i, s := range card.Statistics {
			require.Equal(t, want, s.Query.Fields())
			require.Equal(t, highlights[i], s.Query.Highlight())
		}
	})

	t.Run("zero probable deaths are omitted", func(t *testing.T) {
		t.Parallel()
		card, err := Outcomes(dataset.Record{Slug: "as", Death: stats.Float(0), DeathProbable: stats.Float(0)})
		require.NoError(t, err)
		require.Equal(t, []string{"Recovered: N/A", "Deaths: 0"}, card.Lines())
		require.Equal(t, []string{"recovered", "death"}, card.Statistics[1].Query.Fields())
	})
}

func TestRaceEthnicityCard(t *testing.T) {
	t.Parallel()

	_, ok, err := RaceEthnicity(dataset.Record{Slug: "as"})
	require.NoError(t, err)
	require.False(t, ok)

	combined, ok, err := RaceEthnicity(dataset.Record{Slug: "ny", Race: &dataset.RaceData{
		Combined: &dataset.CombinedRace{KnownRaceEthPos: stats.Float(0.62), KnownRaceEthDeath: stats.Float(0.915)},
	}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/data/state/ny/race-ethnicity", combined.Link.Href)
	require.Equal(t, []string{"Cases: 62%", "Death: 92%"}, combined.Lines())
	require.Equal(t, GroupRaceEthnicity, combined.Statistics[0].Group)

	separate, ok, err := RaceEthnicity(dataset.Record{Slug: "ca", Race: &dataset.RaceData{
		Separate: &dataset.SeparateRace{KnownRacePos: stats.Float(0.71), KnownEthPos: stats.Float(0.68)},
	}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"Cases: 71%", "Death: N/A", "Cases: 68%", "Death: N/A"}, separate.Lines())
	require.Equal(t, GroupEthnicity, separate.Statistics[3].Group)
	require.Contains(t, separate.Text(), GroupRace+"\nCases: 71%\n")
	require.Contains(t, separate.Text(), GroupEthnicity+"\nCases: 68%\n")
}

func TestForRecordOrdersCards(t *testing.T) {
	t.Parallel()

	records := dataset.SampleRecords()
	ny, err := ForRecord(records[0])
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cases", "Tests", "Tests (PCR)", "Current Hospitalization",
		"Cumulative Hospitalization", "Outcomes", "Race & Ethnicity",
	}, cardTitles(ny))

	as, err := ForRecord(records[2])
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cases", "Tests", "Current Hospitalization", "Cumulative Hospitalization", "Outcomes",
	}, cardTitles(as))
}

func TestCardText(t *testing.T) {
	t.Parallel()

	card, err := Cases(dataset.SampleRecords()[0])
	require.NoError(t, err)
	want := "Cases\nTotal cases: 1000000\nNew cases: 5000\nIncrease in 7 days: 2.3%\nHistorical data: /data/state/ny/cases\n"
	require.Equal(t, want, card.Text())
}

func TestBuildersQueriesAreValid(t *testing.T) {
	t.Parallel()

	for _, rec := range dataset.SampleRecords() {
		all, err := ForRecord(rec)
		require.NoError(t, err)
		for _, card := range all {
			for _, s := range card.Statistics {
				if !s.HasDefinitions() {
					continue
				}
				_, err := definitions.NewQuery(s.Query.Fields(), s.Query.Highlight())
				require.NoError(t, err, "%s/%s", card.Title, s.Title)
			}
		}
	}
}

func titles(card Card) []string {
	out := make([]string, 0, len(card.Statistics))
	for _, s := range card.Statistics {
		out = append(out, s.Title)
	}
	return out
}

func cardTitles(list []Card) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Title)
	}
	return out
}
