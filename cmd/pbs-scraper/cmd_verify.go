package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ochairo/pbs-scraper/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pbs-scraper/internal/domain-orchestrators"
	"github.com/ochairo/pbs-scraper/internal/external-adapters/filesystem"
)

func newVerifyCmd(global *globalOptions) *cobra.Command {
	var release string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-download recorded artifacts and check their checksums",
		Long: `Download every artifact referenced by a definition file and compare its
SHA-256 with the recorded one. Exits with status 1 if any definition fails.`,
		Example: `  pbs-scraper verify --release 20230826`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := global.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}

			verifier := gateways.NewChecksumVerifier(gateways.NewDownloader(cfg.Download, logger))
			orch := orchestrators.NewVerifyOrchestrator(
				filesystem.NewDefinitionRepository(cfg.DefinitionsDir, logger),
				verifier,
				logger,
			)

			result, err := orch.VerifyDefinitions(cmd.Context(), release)
			if err != nil {
				return rootMissingError(err, cfg.DefinitionsDir)
			}

			w := cmd.OutOrStdout()
			for _, failure := range result.Failed {
				fmt.Fprintf(w, "%s %s: %v\n", red("✗"), failure.Definition.RelPath(), failure.Err)
			}
			fmt.Fprintf(w, "%s %d verified, %d failed in %s\n",
				green("✓"), len(result.Verified), len(result.Failed), result.TotalDuration.Round(time.Millisecond))

			if !result.OK() {
				return errors.Errorf("%d definition(s) failed verification", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&release, "release", "", "Only verify definitions of this release tag")

	return cmd
}
