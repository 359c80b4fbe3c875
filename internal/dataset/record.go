// Package dataset holds the precomputed per-jurisdiction records the cards are built from.
package dataset

import (
	"errors"
	"regexp"
)

// ErrNotFound indicates no record exists for the requested slug.
var ErrNotFound = errors.New("dataset: record not found")

// ErrInvalidSlug indicates a record carries a slug that is not URL safe.
var ErrInvalidSlug = errors.New("dataset: invalid slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a URL-safe jurisdiction identifier.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Record is the latest reported data for one jurisdiction. Nil numeric fields
// are values the jurisdiction does not report.
type Record struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	DeathsLabel string `yaml:"deathsLabel"`

	Positive         *float64 `yaml:"positive"`
	PositiveIncrease *float64 `yaml:"positiveIncrease"`
	SevenDayIncrease *float64 `yaml:"sevenDayIncrease"`
	Negative         *float64 `yaml:"negative"`
	Pending          *float64 `yaml:"pending"`
	TotalTestResults *float64 `yaml:"totalTestResults"`

	TotalTestsViral    *float64 `yaml:"totalTestsViral"`
	PositiveTestsViral *float64 `yaml:"positiveTestsViral"`
	NegativeTestsViral *float64 `yaml:"negativeTestsViral"`

	HospitalizedCurrently *float64 `yaml:"hospitalizedCurrently"`
	InIcuCurrently        *float64 `yaml:"inIcuCurrently"`
	OnVentilatorCurrently *float64 `yaml:"onVentilatorCurrently"`

	HospitalizedCumulative *float64 `yaml:"hospitalizedCumulative"`
	InIcuCumulative        *float64 `yaml:"inIcuCumulative"`
	OnVentilatorCumulative *float64 `yaml:"onVentilatorCumulative"`

	Recovered      *float64 `yaml:"recovered"`
	Death          *float64 `yaml:"death"`
	DeathProbable  *float64 `yaml:"deathProbable"`
	DeathConfirmed *float64 `yaml:"deathConfirmed"`

	Race *RaceData `yaml:"race"`
}

// HasViralTests reports whether any PCR test column is reported.
func (r Record) HasViralTests() bool {
	return r.TotalTestsViral != nil || r.PositiveTestsViral != nil || r.NegativeTestsViral != nil
}

// RaceData holds the share of cases and deaths with known race/ethnicity.
// Jurisdictions report either a combined race-and-ethnicity figure or separate ones.
type RaceData struct {
	Combined *CombinedRace `yaml:"combined"`
	Separate *SeparateRace `yaml:"separate"`
}

// Empty reports whether neither reporting mode is present.
func (r *RaceData) Empty() bool {
	return r == nil || (r.Combined == nil && r.Separate == nil)
}

// CombinedRace is reported when race and ethnicity are collected together.
type CombinedRace struct {
	KnownRaceEthPos   *float64 `yaml:"knownRaceEthPos"`
	KnownRaceEthDeath *float64 `yaml:"knownRaceEthDeath"`
}

// SeparateRace is reported when race and ethnicity are collected separately.
type SeparateRace struct {
	KnownRacePos   *float64 `yaml:"knownRacePos"`
	KnownRaceDeath *float64 `yaml:"knownRaceDeath"`
	KnownEthPos    *float64 `yaml:"knownEthPos"`
	KnownEthDeath  *float64 `yaml:"knownEthDeath"`
}
