// Package cards assembles the statistic cards shown on a jurisdiction page.
package cards

import (
	"errors"
	"fmt"
	"strings"

	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/stats"
)

var (
	// ErrInvalidEntity is returned when the entity identifier is not a slug.
	ErrInvalidEntity = errors.New("cards: invalid entity identifier")
	// ErrUnknownCategory is returned for categories without a historical-data page.
	ErrUnknownCategory = errors.New("cards: unknown category")
)

// Category names the historical-data page a card links to.
type Category string

const (
	CategoryCases           Category = "cases"
	CategoryTests           Category = "tests"
	CategoryHospitalization Category = "hospitalization"
	CategoryOutcomes        Category = "outcomes"
	CategoryRaceEthnicity   Category = "race-ethnicity"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCases, CategoryTests, CategoryHospitalization, CategoryOutcomes, CategoryRaceEthnicity:
		return true
	}
	return false
}

// HistoricalDataLabel is the text of every card's outbound link.
const HistoricalDataLabel = "Historical data"

// Context identifies what a card is about.
type Context struct {
	Entity   string
	Category Category
}

// NewContext validates the entity slug and category.
func NewContext(entity string, category Category) (Context, error) {
	if !dataset.ValidSlug(entity) {
		return Context{}, fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	if !category.Valid() {
		return Context{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return Context{Entity: entity, Category: category}, nil
}

// HistoricalDataPath returns /data/state/{entity}/{category}.
func (c Context) HistoricalDataPath() string {
	return "/data/state/" + c.Entity + "/" + string(c.Category)
}

// Statistic is one figure given to Assemble.
type Statistic struct {
	Title  string
	Value  *float64
	Format stats.Options
	// Calculated marks figures derived by the site rather than reported.
	Calculated bool
	// DrillDown marks a figure shown beneath the preceding headline figure.
	DrillDown bool
	// Subelement marks a breakdown of the preceding figure.
	Subelement bool
	// Conditional statistics are omitted when their value is absent or zero.
	Conditional bool
	// Group is a heading shared by consecutive statistics.
	Group string
	// Query, when set, gives the statistic a definitions affordance.
	Query *definitions.Query
}

// Link is a card's outbound navigation link.
type Link struct {
	Label string
	Href  string
}

// RenderedStatistic is a statistic with its value formatted.
type RenderedStatistic struct {
	Title      string
	Display    stats.Display
	Grouped    stats.Display
	Calculated bool
	DrillDown  bool
	Subelement bool
	Group      string
	Query      *definitions.Query
}

// HasDefinitions reports whether the statistic links to the definitions panel.
func (s RenderedStatistic) HasDefinitions() bool {
	return s.Query != nil
}

// Line renders "title: value".
func (s RenderedStatistic) Line() string {
	return s.Title + ": " + s.Display.String()
}

// Card is a titled block of statistics for one category of one jurisdiction.
type Card struct {
	Title      string
	Context    Context
	Link       Link
	Statistics []RenderedStatistic
}

// Assemble builds a card, formatting statistics in the order given and
// dropping conditional statistics whose value is absent.
func Assemble(entity string, category Category, title string, statistics ...Statistic) (Card, error) {
	ctx, err := NewContext(entity, category)
	if err != nil {
		return Card{}, err
	}
	card := Card{
		Title:      title,
		Context:    ctx,
		Link:       Link{Label: HistoricalDataLabel, Href: ctx.HistoricalDataPath()},
		Statistics: make([]RenderedStatistic, 0, len(statistics)),
	}
	for _, s := range statistics {
		if s.Conditional && !stats.Present(s.Value) {
			continue
		}
		grouped := s.Format
		grouped.Grouped = true
		card.Statistics = append(card.Statistics, RenderedStatistic{
			Title:      s.Title,
			Display:    stats.Format(s.Value, s.Format),
			Grouped:    stats.Format(s.Value, grouped),
			Calculated: s.Calculated,
			DrillDown:  s.DrillDown,
			Subelement: s.Subelement,
			Group:      s.Group,
			Query:      s.Query,
		})
	}
	return card, nil
}

// Text renders the card as plain text, one statistic per line.
func (c Card) Text() string {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteByte('\n')
	group := ""
	for _, s := range c.Statistics {
		if s.Group != "" && s.Group != group {
			b.WriteString(s.Group)
			b.WriteByte('\n')
		}
		group = s.Group
		b.WriteString(s.Line())
		b.WriteByte('\n')
	}
	b.WriteString(c.Link.Label + ": " + c.Link.Href + "\n")
	return b.String()
}

// Lines returns the statistic lines of the card in order.
func (c Card) Lines() []string {
	out := make([]string, 0, len(c.Statistics))
	for _, s := range c.Statistics {
		out = append(out, s.Line())
	}
	return out
}
