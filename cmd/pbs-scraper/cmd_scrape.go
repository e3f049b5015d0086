package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ochairo/pbs-scraper/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pbs-scraper/internal/domain-orchestrators"
	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
	"github.com/ochairo/pbs-scraper/internal/external-adapters/filesystem"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func newScrapeCmd(global *globalOptions) *cobra.Command {
	opts := entities.ScrapeOptions{}

	cmd := &cobra.Command{
		Use:   "pbs-scraper",
		Short: "Scrape python-build-standalone releases into definition files",
		Long: `Scrape python-build-standalone GitHub releases and record, for every
install_only archive of a supported platform, its download URL and SHA-256
under <defs-dir>/<python-version>/<release-tag>/<machine>-<os>.def.

By default only releases newer than the latest scraped tag are processed.
Set GITHUB_TOKEN to raise the API rate limit.`,
		Example: `  pbs-scraper
  pbs-scraper --scrape-release 20230826 --scrape-release 20231002
  pbs-scraper --scrape-all-releases --overwrite-existing-defs`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, global, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ScrapeAll, "scrape-all-releases", false, "Scrape every release regardless of what was scraped before")
	cmd.Flags().StringArrayVar(&opts.Releases, "scrape-release", nil, "Scrape this release tag (repeatable)")
	cmd.Flags().BoolVar(&opts.OverwriteExisting, "overwrite-existing-defs", false, "Rewrite definition files that already exist")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Resolve checksums but write nothing")

	return cmd
}

func runScrape(cmd *cobra.Command, global *globalOptions, opts entities.ScrapeOptions) error {
	ctx := cmd.Context()

	logger, err := global.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}

	token := githubToken()
	if token == "" {
		logger.Warn("No GitHub token configured in " + tokenEnv + ". Lower rate limits will apply!")
	}

	ghOpts := []gateways.GitHubOption{gateways.WithUserAgent(cfg.Download.UserAgent)}
	if apiURL := os.Getenv(apiURLEnv); apiURL != "" {
		ghOpts = append(ghOpts, gateways.WithBaseURL(apiURL))
	}
	releases, err := gateways.NewGitHubGateway(ctx, token, logger, ghOpts...)
	if err != nil {
		return err
	}

	orch := orchestrators.NewScrapeOrchestrator(
		releases,
		gateways.NewDownloader(cfg.Download, logger),
		filesystem.NewDefinitionRepository(cfg.DefinitionsDir, logger),
		logger,
		*cfg,
	)

	result, err := orch.Scrape(ctx, opts)
	if err != nil {
		return rootMissingError(err, cfg.DefinitionsDir)
	}

	printScrapeSummary(cmd.OutOrStdout(), result, logger)
	return nil
}

func printScrapeSummary(w io.Writer, result *orchestrators.ScrapeResult, logger interfaces.Logger) {
	fmt.Fprintf(w, "\n%s %d release(s) scraped, %d skipped in %s\n",
		green("✓"), len(result.ReleasesScraped), len(result.ReleasesSkipped), result.TotalDuration.Round(time.Millisecond))

	if len(result.Written) > 0 {
		fmt.Fprintf(w, "  %s %s definition(s) written\n", green("+"), humanize.Comma(int64(len(result.Written))))
	}
	if len(result.Planned) > 0 {
		fmt.Fprintf(w, "  %s %s definition(s) would be written (dry run)\n", yellow("~"), humanize.Comma(int64(len(result.Planned))))
		for _, def := range result.Planned {
			fmt.Fprintf(w, "      %s\n", def.RelPath())
		}
	}
	if len(result.Kept) > 0 {
		fmt.Fprintf(w, "  %s %s existing definition(s) kept\n", yellow("="), humanize.Comma(int64(len(result.Kept))))
	}
	if len(result.Unparseable) > 0 {
		fmt.Fprintf(w, "  %s %d asset(s) could not be parsed\n", red("!"), len(result.Unparseable))
		for _, name := range result.Unparseable {
			logger.Debug("Unparseable asset", interfaces.F("asset", name))
		}
	}
}
