package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"covidtracking.org/statecards/internal/cards"
	"covidtracking.org/statecards/internal/config"
	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/panel"
	"covidtracking.org/statecards/internal/templates/statepage"
)

func renderCmd(load func() (config.Config, error)) *cobra.Command {
	var state, format, datasetPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one state's cards to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if datasetPath != "" {
				cfg.Data.DatasetPath = datasetPath
			}
			store := newStore(cfg.Data.DatasetPath)
			if _, err := store.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			glossary, err := definitions.LoadGlossary(cfg.Data.GlossaryPath)
			if err != nil {
				return err
			}
			return renderState(cmd.Context(), cmd.OutOrStdout(), store, glossary, state, format)
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "jurisdiction slug, e.g. ny")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or html")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides STATECARDS_DATASET)")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func renderState(ctx context.Context, w io.Writer, store *dataset.Store, glossary *definitions.Glossary, slug, format string) error {
	rec, err := store.Get(strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return err
	}
	list, err := cards.ForRecord(rec)
	if err != nil {
		return err
	}

	switch format {
	case "text", "":
		for i, card := range list {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, card.Text()); err != nil {
				return err
			}
		}
		return nil
	case "html":
		controller := panel.NewController()
		defer controller.Teardown()
		data := statepage.BuildPageData(rec.Name, list, controller.State(), glossary, store.LoadedAt())
		return statepage.Index(data).Render(ctx, w)
	default:
		return fmt.Errorf("unknown format %q (want text or html)", format)
	}
}
