package cards

import (
	"strings"

	"covidtracking.org/statecards/internal/dataset"
	defs "covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/stats"
)

const defaultDeathsLabel = "Deaths"

// Race card group headings.
const (
	GroupRaceEthnicity = "Reported race & ethnicity data for:"
	GroupRace          = "Reported race data for:"
	GroupEthnicity     = "Reported ethnicity data for:"
)

func query(kind defs.CardKind, substat defs.Substat, mods defs.Modifiers) *defs.Query {
	q := defs.MustResolve(kind, substat, mods)
	return &q
}

// Cases builds the cases card: total cases with new-case and seven-day drill-downs.
func Cases(rec dataset.Record) (Card, error) {
	return Assemble(rec.Slug, CategoryCases, "Cases",
		Statistic{
			Title: "Total cases",
			Value: rec.Positive,
			Query: query(defs.KindCases, defs.SubstatTotal, defs.Modifiers{}),
		},
		Statistic{
			Title:      "New cases",
			Value:      rec.PositiveIncrease,
			Calculated: true,
			DrillDown:  true,
		},
		Statistic{
			Title:      "Increase in 7 days",
			Value:      rec.SevenDayIncrease,
			Format:     stats.Percent(1),
			Calculated: true,
			DrillDown:  true,
		},
	)
}

type testsCardConfig struct {
	title    string
	kind     defs.CardKind
	fields   defs.TestFields
	total    *float64
	positive *float64
	negative *float64
	pending  *float64
}

// Tests builds the tests card from the combined test-result columns.
func Tests(rec dataset.Record) (Card, error) {
	return testsCard(rec.Slug, testsCardConfig{
		title:    "Tests",
		kind:     defs.KindTests,
		fields:   defs.DefaultTestFields,
		total:    rec.TotalTestResults,
		positive: rec.Positive,
		negative: rec.Negative,
		pending:  rec.Pending,
	})
}

// PCRTests builds the tests card from the PCR (viral) columns.
func PCRTests(rec dataset.Record) (Card, error) {
	return testsCard(rec.Slug, testsCardConfig{
		title:    "Tests (PCR)",
		kind:     defs.KindPCRTests,
		fields:   defs.ViralTestFields,
		total:    rec.TotalTestsViral,
		positive: rec.PositiveTestsViral,
		negative: rec.NegativeTestsViral,
	})
}

func testsCard(slug string, cfg testsCardConfig) (Card, error) {
	mods := defs.Modifiers{TestFields: cfg.fields}
	return Assemble(slug, CategoryTests, cfg.title,
		Statistic{Title: "Total tests", Value: cfg.total, Query: query(cfg.kind, defs.SubstatTotal, mods)},
		Statistic{Title: "Positive", Value: cfg.positive, Query: query(cfg.kind, defs.SubstatPositive, mods)},
		Statistic{Title: "Pending", Value: cfg.pending, Conditional: true},
		Statistic{Title: "Negative", Value: cfg.negative, Query: query(cfg.kind, defs.SubstatNegative, mods)},
	)
}

// CurrentHospitalization builds the current hospitalization card.
func CurrentHospitalization(rec dataset.Record) (Card, error) {
	return Assemble(rec.Slug, CategoryHospitalization, "Current Hospitalization",
		Statistic{Title: "Currently hospitalized", Value: rec.HospitalizedCurrently},
		Statistic{Title: "Currently in ICU", Value: rec.InIcuCurrently},
		Statistic{Title: "Currently on ventilator", Value: rec.OnVentilatorCurrently},
	)
}

// CumulativeHospitalization builds the cumulative hospitalization card.
func CumulativeHospitalization(rec dataset.Record) (Card, error) {
	return Assemble(rec.Slug, CategoryHospitalization, "Cumulative Hospitalization",
		Statistic{Title: "Cumulative hospitalized", Value: rec.HospitalizedCumulative},
		Statistic{Title: "Cumulative in ICU", Value: rec.InIcuCumulative},
		Statistic{Title: "Cumulative on ventilator", Value: rec.OnVentilatorCumulative},
	)
}

// Outcomes builds the outcomes card. Probable and confirmed deaths are shown,
// and added to the definitions query, only when the record reports them.
func Outcomes(rec dataset.Record) (Card, error) {
	mods := defs.ModifiersFor(rec.DeathProbable, rec.DeathConfirmed)
	deathsLabel := strings.TrimSpace(rec.DeathsLabel)
	if deathsLabel == "" {
		deathsLabel = defaultDeathsLabel
	}

	statistics := []Statistic{
		{Title: "Recovered", Value: rec.Recovered, Query: query(defs.KindOutcomes, defs.SubstatRecovered, mods)},
		{Title: deathsLabel, Value: rec.Death, Query: query(defs.KindOutcomes, defs.SubstatDeath, mods)},
	}
	if mods.DeathProbable {
		statistics = append(statistics, Statistic{
			Title:       "Probable deaths",
			Value:       rec.DeathProbable,
			Subelement:  true,
			Conditional: true,
			Query:       query(defs.KindOutcomes, defs.SubstatDeathProbable, mods),
		})
	}
	if mods.DeathConfirmed {
		statistics = append(statistics, Statistic{
			Title:       "Confirmed deaths",
			Value:       rec.DeathConfirmed,
			Subelement:  true,
			Conditional: true,
			Query:       query(defs.KindOutcomes, defs.SubstatDeathConfirmed, mods),
		})
	}
	return Assemble(rec.Slug, CategoryOutcomes, "Outcomes", statistics...)
}

// RaceEthnicity builds the race and ethnicity completeness card.
// It reports ok=false when the record has no race data.
func RaceEthnicity(rec dataset.Record) (card Card, ok bool, err error) {
	if rec.Race.Empty() {
		return Card{}, false, nil
	}
	pct := stats.Percent(0)
	var statistics []Statistic
	if c := rec.Race.Combined; c != nil {
		statistics = append(statistics,
			Statistic{Title: "Cases", Value: c.KnownRaceEthPos, Format: pct, Group: GroupRaceEthnicity},
			Statistic{Title: "Death", Value: c.KnownRaceEthDeath, Format: pct, Group: GroupRaceEthnicity},
		)
	}
	if s := rec.Race.Separate; s != nil {
		statistics = append(statistics,
			Statistic{Title: "Cases", Value: s.KnownRacePos, Format: pct, Group: GroupRace},
			Statistic{Title: "Death", Value: s.KnownRaceDeath, Format: pct, Group: GroupRace},
			Statistic{Title: "Cases", Value: s.KnownEthPos, Format: pct, Group: GroupEthnicity},
			Statistic{Title: "Death", Value: s.KnownEthDeath, Format: pct, Group: GroupEthnicity},
		)
	}
	card, err = Assemble(rec.Slug, CategoryRaceEthnicity, "Race & Ethnicity", statistics...)
	if err != nil {
		return Card{}, false, err
	}
	return card, true, nil
}

// ForRecord builds every card for a record in page order. The PCR tests card
// is included only when PCR columns are reported, the race card only when
// race data exists.
func ForRecord(rec dataset.Record) ([]Card, error) {
	builders := []func(dataset.Record) (Card, error){Cases, Tests}
	if rec.HasViralTests() {
		builders = append(builders, PCRTests)
	}
	builders = append(builders, CurrentHospitalization, CumulativeHospitalization, Outcomes)

	out := make([]Card, 0, len(builders)+1)
	for _, build := range builders {
		card, err := build(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	race, ok, err := RaceEthnicity(rec)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, race)
	}
	return out, nil
}
