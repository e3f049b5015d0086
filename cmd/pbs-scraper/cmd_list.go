package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/external-adapters/filesystem"
)

// listEntry is the --json shape of one definition
type listEntry struct {
	PythonVersion string `json:"python_version"`
	ReleaseTag    string `json:"release_tag"`
	Platform      string `json:"platform"`
	URL           string `json:"url"`
	SHA256        string `json:"sha256"`
	Path          string `json:"path"`
}

func newListCmd(global *globalOptions) *cobra.Command {
	var (
		asJSON  bool
		release string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the definitions on disk",
		Example: `  pbs-scraper list
  pbs-scraper list --release 20230826 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := global.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}

			repo := filesystem.NewDefinitionRepository(cfg.DefinitionsDir, logger)
			if err := repo.CheckRoot(cmd.Context()); err != nil {
				return rootMissingError(err, cfg.DefinitionsDir)
			}

			defs, err := repo.ListDefinitions(cmd.Context(), release)
			if err != nil {
				return errors.Wrap(err, "failed to list definitions")
			}

			if asJSON {
				return writeDefinitionsJSON(cmd.OutOrStdout(), defs)
			}
			writeDefinitionsText(cmd.OutOrStdout(), defs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	cmd.Flags().StringVar(&release, "release", "", "Only list definitions of this release tag")

	return cmd
}

func writeDefinitionsJSON(w io.Writer, defs []*entities.Definition) error {
	entries := make([]listEntry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, listEntry{
			PythonVersion: def.PythonVersion,
			ReleaseTag:    def.ReleaseTag,
			Platform:      def.Platform(),
			URL:           def.URL,
			SHA256:        def.SHA256,
			Path:          def.RelPath(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(entries), "encoding json")
}

func writeDefinitionsText(w io.Writer, defs []*entities.Definition) {
	fmt.Fprintf(w, "Definitions (%d total):\n\n", len(defs))
	for _, def := range defs {
		fmt.Fprintf(w, "  %-8s %-10s %-28s %s\n", def.PythonVersion, def.ReleaseTag, def.Platform(), def.SHA256)
	}
}
