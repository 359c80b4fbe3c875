package dataset

import (
	"context"
	"slices"
)

// StaticSource provides canned records for development and tests.
type StaticSource struct {
	Records []Record
}

// NewStaticSource returns a StaticSource populated with sample data if none supplied.
func NewStaticSource(records ...Record) *StaticSource {
	if len(records) == 0 {
		records = SampleRecords()
	}
	return &StaticSource{Records: records}
}

// FetchRecords returns the configured records.
func (s *StaticSource) FetchRecords(ctx context.Context) ([]Record, error) {
	return slices.Clone(s.Records), nil
}

// SampleRecords returns a small fixture covering every reporting shape:
// combined and separate race data, PCR columns, probable deaths and gaps.
func SampleRecords() []Record {
	return []Record{
		{
			Slug:                   "ny",
			Name:                   "New York",
			Positive:               f(1000000),
			PositiveIncrease:       f(5000),
			SevenDayIncrease:       f(0.0234),
			Negative:               f(9500000),
			TotalTestResults:       f(10500000),
			TotalTestsViral:        f(10400000),
			PositiveTestsViral:     f(990000),
			NegativeTestsViral:     f(9410000),
			HospitalizedCurrently:  f(4500),
			InIcuCurrently:         f(900),
			OnVentilatorCurrently:  f(600),
			HospitalizedCumulative: f(89995),
			Recovered:              f(140000),
			Death:                  f(38000),
			DeathProbable:          f(4600),
			DeathConfirmed:         f(33400),
			Race: &RaceData{
				Combined: &CombinedRace{
					KnownRaceEthPos:   f(0.62),
					KnownRaceEthDeath: f(0.915),
				},
			},
		},
		{
			Slug:                   "ca",
			Name:                   "California",
			DeathsLabel:            "Deaths (confirmed)",
			Positive:               f(2400000),
			PositiveIncrease:       f(41000),
			SevenDayIncrease:       f(0.1075),
			Negative:               f(26000000),
			Pending:                f(12000),
			TotalTestResults:       f(28400000),
			HospitalizedCurrently:  f(21000),
			InIcuCurrently:         f(4800),
			Death:                  f(26500),
			DeathConfirmed:         f(26500),
			Race: &RaceData{
				Separate: &SeparateRace{
					KnownRacePos:   f(0.71),
					KnownRaceDeath: f(0.99),
					KnownEthPos:    f(0.68),
					KnownEthDeath:  f(0.98),
				},
			},
		},
		{
			Slug:             "as",
			Name:             "American Samoa",
			Positive:         f(0),
			PositiveIncrease: f(0),
			Negative:         f(1988),
			TotalTestResults: f(1988),
			Death:            f(0),
		},
	}
}

func f(v float64) *float64 {
	return &v
}
