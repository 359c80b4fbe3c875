package definitions

import (
	"errors"
	"fmt"

	"covidtracking.org/statecards/internal/stats"
)

// Dataset field names referenced by definition queries.
const (
	FieldPositive           = "positive"
	FieldNegative           = "negative"
	FieldTotalTestResults   = "totalTestResults"
	FieldPositiveTestsViral = "positiveTestsViral"
	FieldNegativeTestsViral = "negativeTestsViral"
	FieldTotalTestsViral    = "totalTestsViral"
	FieldRecovered          = "recovered"
	FieldDeath              = "death"
	FieldDeathProbable      = "deathProbable"
	FieldDeathConfirmed     = "deathConfirmed"
)

var (
	// ErrUnknownKind is returned for card kinds the resolver does not know.
	ErrUnknownKind = errors.New("definitions: unknown card kind")
	// ErrUnknownSubstat is returned when the substat does not apply to the card kind.
	ErrUnknownSubstat = errors.New("definitions: unknown substat")
)

// CardKind identifies the semantic type of a card.
type CardKind string

const (
	KindCases    CardKind = "cases"
	KindTests    CardKind = "tests"
	KindPCRTests CardKind = "pcr-tests"
	KindOutcomes CardKind = "outcomes"
)

// Substat is the statistic of a card the user is inspecting.
type Substat string

const (
	SubstatTotal          Substat = "total"
	SubstatPositive       Substat = "positive"
	SubstatNegative       Substat = "negative"
	SubstatRecovered      Substat = "recovered"
	SubstatDeath          Substat = "death"
	SubstatDeathProbable  Substat = "deathProbable"
	SubstatDeathConfirmed Substat = "deathConfirmed"
)

// TestFields is the field-name variant a tests card is configured with.
type TestFields struct {
	Negative string
	Positive string
	Total    string
}

var (
	// DefaultTestFields covers the combined test-result columns.
	DefaultTestFields = TestFields{
		Negative: FieldNegative,
		Positive: FieldPositive,
		Total:    FieldTotalTestResults,
	}
	// ViralTestFields covers the PCR (viral) test columns.
	ViralTestFields = TestFields{
		Negative: FieldNegativeTestsViral,
		Positive: FieldPositiveTestsViral,
		Total:    FieldTotalTestsViral,
	}
)

func (f TestFields) list() []string {
	return []string{f.Negative, f.Positive, f.Total}
}

func (f TestFields) zero() bool {
	return f == TestFields{}
}

// Modifiers carries per-record facts that change the field set.
type Modifiers struct {
	// DeathProbable adds deathProbable to outcome queries.
	DeathProbable bool
	// DeathConfirmed adds deathConfirmed to outcome queries.
	DeathConfirmed bool
	// TestFields overrides the field variant of a tests card.
	TestFields TestFields
}

// ModifiersFor derives outcome modifiers from the probable/confirmed death values of a record.
func ModifiersFor(deathProbable, deathConfirmed *float64) Modifiers {
	return Modifiers{
		DeathProbable:  stats.Present(deathProbable),
		DeathConfirmed: stats.Present(deathConfirmed),
	}
}

// Resolve returns the definitions query for the statistic active on a card.
func Resolve(kind CardKind, active Substat, mods Modifiers) (Query, error) {
	switch kind {
	case KindCases:
		return NewQuery([]string{FieldPositive, FieldNegative}, FieldPositive)
	case KindTests, KindPCRTests:
		variant := mods.TestFields
		if variant.zero() {
			variant = DefaultTestFields
			if kind == KindPCRTests {
				variant = ViralTestFields
			}
		}
		highlight, err := testHighlight(variant, active)
		if err != nil {
			return Query{}, err
		}
		return NewQuery(variant.list(), highlight)
	case KindOutcomes:
		highlight, err := outcomeHighlight(active)
		if err != nil {
			return Query{}, err
		}
		return NewQuery(OutcomeFields(mods), highlight)
	default:
		return Query{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// MustResolve is like Resolve but panics when the request breaks the resolver
// contract. Card builders use it because their inputs are fixed at compile time.
func MustResolve(kind CardKind, active Substat, mods Modifiers) Query {
	q, err := Resolve(kind, active, mods)
	if err != nil {
		panic(err)
	}
	return q
}

// OutcomeFields returns a new ordered field list for an outcomes card.
func OutcomeFields(mods Modifiers) []string {
	fields := make([]string, 0, 4)
	fields = append(fields, FieldRecovered, FieldDeath)
	if mods.DeathProbable {
		fields = append(fields, FieldDeathProbable)
	}
	if mods.DeathConfirmed {
		fields = append(fields, FieldDeathConfirmed)
	}
	return fields
}

func testHighlight(variant TestFields, active Substat) (string, error) {
	switch active {
	case SubstatTotal:
		return variant.Total, nil
	case SubstatPositive:
		return variant.Positive, nil
	case SubstatNegative:
		return variant.Negative, nil
	default:
		return "", fmt.Errorf("%w: %q for tests card", ErrUnknownSubstat, active)
	}
}

func outcomeHighlight(active Substat) (string, error) {
	switch active {
	case SubstatRecovered:
		return FieldRecovered, nil
	case SubstatDeath:
		return FieldDeath, nil
	case SubstatDeathProbable:
		return FieldDeathProbable, nil
	case SubstatDeathConfirmed:
		return FieldDeathConfirmed, nil
	default:
		return "", fmt.Errorf("%w: %q for outcomes card", ErrUnknownSubstat, active)
	}
}
