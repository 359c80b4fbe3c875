package definitions

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed glossary.yaml
var defaultGlossary []byte

const missingDefinition = "No definition is available for this field."

// Entry is one field definition as shown in the panel.
type Entry struct {
	Field       string
	Title       string
	Definition  template.HTML
	Highlighted bool
}

// Glossary holds rendered field definitions keyed by dataset field name.
type Glossary struct {
	entries map[string]Entry
}

type glossaryFile struct {
	Fields []glossaryField `yaml:"fields"`
}

type glossaryField struct {
	Field      string `yaml:"field"`
	Title      string `yaml:"title"`
	Definition string `yaml:"definition"`
}

// DefaultGlossary parses the glossary bundled with the binary.
func DefaultGlossary() (*Glossary, error) {
	return ParseGlossary(bytes.NewReader(defaultGlossary))
}

// LoadGlossary reads a glossary file from disk. An empty path loads the bundled glossary.
func LoadGlossary(path string) (*Glossary, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultGlossary()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("definitions: open glossary: %w", err)
	}
	defer f.Close()
	return ParseGlossary(f)
}

// ParseGlossary decodes YAML glossary entries and renders their markdown definitions.
func ParseGlossary(r io.Reader) (*Glossary, error) {
	var file glossaryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("definitions: decode glossary: %w", err)
	}

	md := goldmark.New()
	policy := newDefinitionHTMLPolicy()
	g := &Glossary{entries: make(map[string]Entry, len(file.Fields))}
	for _, item := range file.Fields {
		field := strings.TrimSpace(item.Field)
		if field == "" {
			return nil, fmt.Errorf("definitions: glossary entry %q has no field name", item.Title)
		}
		if _, dup := g.entries[field]; dup {
			return nil, fmt.Errorf("%w: glossary entry %q", ErrDuplicateField, field)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(item.Definition), &buf); err != nil {
			return nil, fmt.Errorf("definitions: render %s: %w", field, err)
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = field
		}
		g.entries[field] = Entry{
			Field:      field,
			Title:      title,
			Definition: template.HTML(policy.SanitizeBytes(buf.Bytes())),
		}
	}
	return g, nil
}

// Lookup returns the entries for q in query order, marking the highlighted one.
// Fields without a glossary entry get a placeholder definition.
func (g *Glossary) Lookup(q Query) []Entry {
	fields := q.Fields()
	out := make([]Entry, 0, len(fields))
	for _, field := range fields {
		entry, ok := g.entry(field)
		if !ok {
			entry = Entry{
				Field:      field,
				Title:      field,
				Definition: template.HTML("<p>" + missingDefinition + "</p>"),
			}
		}
		entry.Highlighted = field == q.Highlight()
		out = append(out, entry)
	}
	return out
}

// Len reports the number of defined fields.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

func (g *Glossary) entry(field string) (Entry, bool) {
	if g == nil {
		return Entry{}, false
	}
	e, ok := g.entries[field]
	return e, ok
}

func newDefinitionHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "code")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}
