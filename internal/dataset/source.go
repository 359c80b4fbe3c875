package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotConfigured indicates no dataset path was provided.
var ErrNotConfigured = errors.New("dataset: source not configured")

// Source produces the full set of records.
type Source interface {
	// FetchRecords returns every jurisdiction record.
	FetchRecords(ctx context.Context) ([]Record, error)
}

type datasetFile struct {
	States []Record `yaml:"states"`
}

// Decode reads records from YAML or JSON input with a top-level "states" list.
func Decode(r io.Reader) ([]Record, error) {
	var file datasetFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	for i := range file.States {
		rec := &file.States[i]
		rec.Slug = strings.ToLower(strings.TrimSpace(rec.Slug))
		if !ValidSlug(rec.Slug) {
			return nil, fmt.Errorf("%w: record %d has slug %q", ErrInvalidSlug, i, rec.Slug)
		}
	}
	return file.States, nil
}

// FileSource reads records from a file on every fetch.
type FileSource struct {
	Path string
}

// NewFileSource returns a source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchRecords implements Source.
func (s *FileSource) FetchRecords(ctx context.Context) ([]Record, error) {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", s.Path, err)
	}
	defer f.Close()
	return Decode(f)
}
