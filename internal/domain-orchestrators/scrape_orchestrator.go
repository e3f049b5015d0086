// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/gateways"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/repositories"
	"github.com/ochairo/pbs-scraper/internal/domain/services"
)

// ScrapeOrchestrator coordinates a complete scrape run:
// list releases, select, filter assets, resolve checksums, write definitions.
type ScrapeOrchestrator struct {
	releases gateways.ReleaseGateway
	fetcher  gateways.ArtifactFetcher
	defRepo  repositories.DefinitionRepository
	matcher  *services.AssetMatcher
	logger   interfaces.Logger
	owner    string
	repo     string
}

// NewScrapeOrchestrator creates a new scrape orchestrator
func NewScrapeOrchestrator(
	releases gateways.ReleaseGateway,
	fetcher gateways.ArtifactFetcher,
	defRepo repositories.DefinitionRepository,
	logger interfaces.Logger,
	config entities.ScrapeConfig,
) *ScrapeOrchestrator {
	platforms := config.Platforms
	if len(platforms) == 0 {
		platforms = entities.DefaultPlatforms()
	}

	return &ScrapeOrchestrator{
		releases: releases,
		fetcher:  fetcher,
		defRepo:  defRepo,
		matcher:  services.NewAssetMatcher(platforms),
		logger:   logger,
		owner:    config.RepoOwner,
		repo:     config.RepoName,
	}
}

// ScrapeResult contains the outcome of a scrape run
type ScrapeResult struct {
	LatestScrapedTag string
	ReleasesScraped  []string
	ReleasesSkipped  []string
	Written          []*entities.Definition
	Kept             []*entities.Definition
	Planned          []*entities.Definition
	Unparseable      []string
	TotalDuration    time.Duration
}

// Scrape executes the complete scrape workflow
func (o *ScrapeOrchestrator) Scrape(ctx context.Context, opts entities.ScrapeOptions) (*ScrapeResult, error) {
	startTime := time.Now()
	result := &ScrapeResult{}

	// Step 1: The definitions tree must already exist
	if err := o.defRepo.CheckRoot(ctx); err != nil {
		return nil, err
	}

	// Step 2: Work out what has been scraped before
	scrapedTags, err := o.defRepo.ListScrapedTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scraped releases")
	}
	selector := services.NewReleaseSelector(opts, scrapedTags)
	result.LatestScrapedTag = selector.LatestScrapedTag()

	// Step 3: Fetch release metadata
	o.logger.Info("Downloading release metadata", interfaces.F("repo", o.owner+"/"+o.repo))
	releases, err := o.releases.ListReleases(ctx, o.owner, o.repo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list releases")
	}
	o.logger.Info("Downloaded release metadata", interfaces.F("releases", len(releases)))

	// Step 4: Walk releases oldest first
	for i := len(releases) - 1; i >= 0; i-- {
		release := releases[i]

		decision := selector.Decide(release.TagName)
		o.logger.Info(decision.Message(result.LatestScrapedTag))
		if !decision.Scrape {
			result.ReleasesSkipped = append(result.ReleasesSkipped, release.TagName)
			continue
		}

		if err := o.scrapeRelease(ctx, release, opts, result); err != nil {
			return nil, errors.Wrapf(err, "failed to scrape release %s", release.TagName)
		}
		result.ReleasesScraped = append(result.ReleasesScraped, release.TagName)
	}

	o.logger.Info("Finished scraping releases")
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// scrapeRelease collects the applicable assets of one release and writes their definitions
func (o *ScrapeOrchestrator) scrapeRelease(ctx context.Context, release *entities.Release, opts entities.ScrapeOptions, result *ScrapeResult) error {
	assets, err := o.releases.ListReleaseAssets(ctx, o.owner, o.repo, release.ID)
	if err != nil {
		return err
	}

	checksums := make(map[string]string)
	seen := make(map[string]bool)
	var binaries []*entities.Asset
	var manifest *entities.Asset

	for _, asset := range assets {
		if asset.IsChecksumManifest() {
			manifest = asset
			continue
		}
		if !o.matcher.IsApplicable(asset.Name) {
			continue
		}

		if asset.IsChecksum() {
			sum, err := o.fetcher.FetchText(ctx, asset.BrowserDownloadURL)
			if err != nil {
				return err
			}
			checksums[asset.ChecksumTarget()] = sum
			continue
		}

		if !seen[asset.Name] {
			seen[asset.Name] = true
			binaries = append(binaries, asset)
		}
	}

	if manifest != nil && missingChecksum(binaries, checksums) {
		if err := o.mergeManifest(ctx, manifest, checksums); err != nil {
			return err
		}
	}

	for _, asset := range binaries {
		if err := o.writeDefinition(ctx, asset, checksums, opts, result); err != nil {
			return err
		}
	}

	return nil
}

// mergeManifest fills checksums from SHA256SUMS without overriding per-asset sidecars
func (o *ScrapeOrchestrator) mergeManifest(ctx context.Context, manifest *entities.Asset, checksums map[string]string) error {
	text, err := o.fetcher.FetchText(ctx, manifest.BrowserDownloadURL)
	if err != nil {
		return err
	}

	for name, sum := range services.ParseChecksumManifest(text) {
		if checksums[name] != "" || !o.matcher.IsApplicable(name) {
			continue
		}
		checksums[name] = sum
	}

	return nil
}

func (o *ScrapeOrchestrator) writeDefinition(ctx context.Context, asset *entities.Asset, checksums map[string]string, opts entities.ScrapeOptions, result *ScrapeResult) error {
	def, err := o.matcher.Parse(asset)
	if err != nil {
		o.logger.Warn("Could not parse asset", interfaces.F("asset", asset.Name))
		result.Unparseable = append(result.Unparseable, asset.Name)
		return nil
	}

	exists, err := o.defRepo.Exists(ctx, def)
	if err != nil {
		return err
	}
	if exists && !opts.OverwriteExisting {
		o.logger.Debug("Keeping existing definition", interfaces.F("path", def.RelPath()))
		result.Kept = append(result.Kept, def)
		return nil
	}

	sum := checksums[asset.Name]
	if sum == "" {
		sum, err = o.fetcher.ComputeSHA256(ctx, asset.BrowserDownloadURL)
		if err != nil {
			return err
		}
	}
	def.SHA256 = sum

	if opts.DryRun {
		o.logger.Info("Would write definition", interfaces.F("path", def.RelPath()))
		result.Planned = append(result.Planned, def)
		return nil
	}

	if err := o.defRepo.Save(ctx, def); err != nil {
		return err
	}
	o.logger.Info("Wrote definition", interfaces.F("path", def.RelPath()))
	result.Written = append(result.Written, def)

	return nil
}

func missingChecksum(binaries []*entities.Asset, checksums map[string]string) bool {
	for _, asset := range binaries {
		if checksums[asset.Name] == "" {
			return true
		}
	}
	return false
}
