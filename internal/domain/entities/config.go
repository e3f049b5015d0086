package entities

import "time"

// Default values for a scrape run
const (
	DefaultRepoOwner       = "astral-sh"
	DefaultRepoName        = "python-build-standalone"
	DefaultDefinitionsDir  = "share/python-build-standalone"
	DefaultUserAgent       = "pbs-scraper/1.0"
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultMaxRetries      = 3
)

// ScrapeConfig carries everything a single scrape run needs
type ScrapeConfig struct {
	RepoOwner      string
	RepoName       string
	DefinitionsDir string
	Platforms      []Platform
	Download       DownloadConfig
}

// DownloadConfig tunes the HTTP client used for assets
type DownloadConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// ScrapeOptions are the per-invocation switches from the command line
type ScrapeOptions struct {
	ScrapeAll         bool
	Releases          []string
	OverwriteExisting bool
	DryRun            bool
}

// DefaultScrapeConfig returns the configuration used when no file is given
func DefaultScrapeConfig() ScrapeConfig {
	return ScrapeConfig{
		RepoOwner:      DefaultRepoOwner,
		RepoName:       DefaultRepoName,
		DefinitionsDir: DefaultDefinitionsDir,
		Platforms:      DefaultPlatforms(),
		Download: DownloadConfig{
			Timeout:    DefaultDownloadTimeout,
			MaxRetries: DefaultMaxRetries,
			UserAgent:  DefaultUserAgent,
		},
	}
}
