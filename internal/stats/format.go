// Package stats formats statistic values for display on state cards.
package stats

import (
	"math"
	"strconv"
	"strings"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is displayed in place of undefined or not-a-number values.
const NotAvailable = "N/A"

// PercentSuffix is appended to values formatted with Options.AsPercent.
const PercentSuffix = "%"

// Options controls how a single value is rendered.
type Options struct {
	// AsPercent treats the value as a ratio and scales it by 100.
	AsPercent bool
	// DecimalPlaces is the rounding precision applied to percentages.
	DecimalPlaces int
	// Suffix is appended to non-percent values (ignored when AsPercent is set).
	Suffix string
	// Grouped inserts thousands separators into the integer part.
	Grouped bool
}

// Percent returns options for a ratio rendered as a percentage with the given precision.
func Percent(places int) Options {
	return Options{AsPercent: true, DecimalPlaces: places}
}

// Display is the rendered form of a statistic value.
type Display struct {
	Text   string
	Suffix string
}

// String joins the text and suffix.
func (d Display) String() string {
	return d.Text + d.Suffix
}

// Available reports whether the display holds a number rather than the N/A sentinel.
func (d Display) Available() bool {
	return d.Text != NotAvailable
}

var groupingPrinter = message.NewPrinter(language.English)

// Format renders value according to opts. A nil value, or a value that is
// NaN after scaling, renders as N/A with an empty suffix.
func Format(value *float64, opts Options) Display {
	if value == nil {
		return Display{Text: NotAvailable}
	}
	v := *value
	suffix := opts.Suffix
	places := -1

	if opts.AsPercent {
		places = clampPlaces(opts.DecimalPlaces)
		// round(v * 10^(places+2)) / 10^places, scaled in a single multiplication.
		scaled, err := mstats.Round(v*math.Pow(10, float64(places+2)), 0)
		if err != nil {
			return Display{Text: NotAvailable}
		}
		v = scaled / math.Pow(10, float64(places))
		suffix = PercentSuffix
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Display{Text: NotAvailable}
	}
	if v == 0 {
		// normalises -0
		v = 0
	}

	if opts.Grouped {
		return Display{Text: grouped(v, places), Suffix: suffix}
	}
	return Display{Text: strconv.FormatFloat(v, 'f', -1, 64), Suffix: suffix}
}

// FormatFloat is a convenience wrapper for callers holding a plain float.
func FormatFloat(value float64, opts Options) Display {
	return Format(&value, opts)
}

// Present reports whether value carries a usable, non-zero number. It is the
// test applied to conditional statistics before they are shown.
func Present(value *float64) bool {
	return value != nil && !math.IsNaN(*value) && *value != 0
}

// Float returns a pointer to v; handy for literals in fixtures.
func Float(v float64) *float64 {
	return &v
}

func grouped(v float64, places int) string {
	maxFraction := places
	if maxFraction < 0 {
		maxFraction = fractionDigits(v)
	}
	return groupingPrinter.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(maxFraction)))
}

func fractionDigits(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func clampPlaces(places int) int {
	if places < 0 {
		return 0
	}
	return places
}
