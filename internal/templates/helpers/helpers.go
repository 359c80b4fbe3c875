// Package helpers holds small rendering helpers shared by the page templates.
package helpers

import (
	"net/url"
	"strings"

	"covidtracking.org/statecards/internal/definitions"
)

// DefinitionsURL is the htmx endpoint that opens the definitions panel for q.
func DefinitionsURL(pageID string, q definitions.Query) string {
	values := url.Values{}
	for _, field := range q.Fields() {
		values.Add("field", field)
	}
	values.Set("highlight", q.Highlight())
	return PagePath(pageID) + "/definitions?" + values.Encode()
}

// PagePath is the page-session resource path.
func PagePath(pageID string) string {
	return "/pages/" + url.PathEscape(pageID)
}

// StatisticClass maps statistic flags to CSS classes.
func StatisticClass(drillDown, subelement, calculated bool) string {
	classes := []string{"statistic"}
	if drillDown {
		classes = append(classes, "statistic--drill-down")
	}
	if subelement {
		classes = append(classes, "statistic--subelement")
	}
	if calculated {
		classes = append(classes, "statistic--calculated")
	}
	return strings.Join(classes, " ")
}

// DefinitionClass highlights the entry the user asked about.
func DefinitionClass(highlighted bool) string {
	if highlighted {
		return "definition definition--highlighted"
	}
	return "definition"
}
