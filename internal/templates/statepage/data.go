// Package statepage renders the jurisdiction page, its cards and the definitions panel.
package statepage

import (
	"time"

	"covidtracking.org/statecards/internal/cards"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/panel"
	"covidtracking.org/statecards/internal/templates/helpers"
)

// PanelTargetID is the element the definitions fragment is swapped into.
const PanelTargetID = "definitions-panel"

// PageData is the full state page SSR payload.
type PageData struct {
	Title     string
	Name      string
	PageID    string
	PagePath  string
	Cards     []CardView
	Panel     PanelData
	UpdatedAt time.Time
}

// UpdatedDatetime is the machine-readable load time for the <time> element.
func (p PageData) UpdatedDatetime() string {
	return p.UpdatedAt.UTC().Format(time.RFC3339)
}

// UpdatedLabel is the human-readable load time.
func (p PageData) UpdatedLabel() string {
	return p.UpdatedAt.UTC().Format("January 2, 2006 15:04 MST")
}

// CardView is a card ready for rendering.
type CardView struct {
	Title      string
	Category   string
	Link       cards.Link
	Statistics []StatisticView
}

// StatisticView is one statistic row. GroupHeading is set on the first
// statistic of each group.
type StatisticView struct {
	Title          string
	Text           string
	Suffix         string
	Class          string
	GroupHeading   string
	DefinitionsURL string
}

// PanelData is the definitions panel payload.
type PanelData struct {
	PageID     string
	DismissURL string
	Open       bool
	Entries    []definitions.Entry
}

// BuildPageData prepares the template payload for a mounted page session.
func BuildPageData(name string, list []cards.Card, state panel.State, glossary *definitions.Glossary, updatedAt time.Time) PageData {
	views := make([]CardView, 0, len(list))
	for _, card := range list {
		views = append(views, toCardView(state.PageID, card))
	}
	return PageData{
		Title:     name + " | The COVID Tracking Project",
		Name:      name,
		PageID:    state.PageID,
		PagePath:  helpers.PagePath(state.PageID),
		Cards:     views,
		Panel:     BuildPanelData(state, glossary),
		UpdatedAt: updatedAt,
	}
}

// BuildPanelData prepares the definitions panel for the current panel state.
func BuildPanelData(state panel.State, glossary *definitions.Glossary) PanelData {
	data := PanelData{
		PageID:     state.PageID,
		DismissURL: helpers.PagePath(state.PageID) + "/definitions",
	}
	if state.Current != nil {
		data.Open = true
		data.Entries = glossary.Lookup(*state.Current)
	}
	return data
}

func toCardView(pageID string, card cards.Card) CardView {
	view := CardView{
		Title:      card.Title,
		Category:   string(card.Context.Category),
		Link:       card.Link,
		Statistics: make([]StatisticView, 0, len(card.Statistics)),
	}
	group := ""
	for _, s := range card.Statistics {
		sv := StatisticView{
			Title:  s.Title,
			Text:   s.Grouped.Text,
			Suffix: s.Grouped.Suffix,
			Class:  helpers.StatisticClass(s.DrillDown, s.Subelement, s.Calculated),
		}
		if s.Group != "" && s.Group != group {
			sv.GroupHeading = s.Group
		}
		group = s.Group
		if s.HasDefinitions() {
			sv.DefinitionsURL = helpers.DefinitionsURL(pageID, *s.Query)
		}
		view.Statistics = append(view.Statistics, sv)
	}
	return view
}
