// Package yaml provides YAML-based scraper configuration parsing.
package yaml

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	Repository     yamlRepository `yaml:"repository"`
	DefinitionsDir string         `yaml:"definitions_dir"`
	Platforms      []yamlPlatform `yaml:"platforms"`
	Download       yamlDownload   `yaml:"download"`
}

type yamlRepository struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

type yamlPlatform struct {
	Machine string `yaml:"machine"`
	OS      string `yaml:"os"`
}

type yamlDownload struct {
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
	UserAgent  string `yaml:"user_agent"`
}

// ConfigParser parses YAML scraper configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML config file on top of the defaults
func (p *ConfigParser) ParseFile(filePath string) (*entities.ScrapeConfig, error) {
	//nolint:gosec // G304: filePath is the --config flag value
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", filePath)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes; fields left out keep their default values
func (p *ConfigParser) Parse(data []byte) (*entities.ScrapeConfig, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	cfg := entities.DefaultScrapeConfig()

	if raw.Repository.Owner != "" {
		cfg.RepoOwner = raw.Repository.Owner
	}
	if raw.Repository.Name != "" {
		cfg.RepoName = raw.Repository.Name
	}
	if raw.DefinitionsDir != "" {
		cfg.DefinitionsDir = raw.DefinitionsDir
	}

	if len(raw.Platforms) > 0 {
		platforms, err := convertPlatforms(raw.Platforms)
		if err != nil {
			return nil, err
		}
		cfg.Platforms = platforms
	}

	if err := applyDownload(&cfg.Download, raw.Download); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func convertPlatforms(yps []yamlPlatform) ([]entities.Platform, error) {
	platforms := make([]entities.Platform, 0, len(yps))
	for i, yp := range yps {
		if yp.Machine == "" || yp.OS == "" {
			return nil, errors.Errorf("platform %d must have both machine and os", i)
		}
		platforms = append(platforms, entities.Platform{Machine: yp.Machine, OS: yp.OS})
	}
	return platforms, nil
}

func applyDownload(dc *entities.DownloadConfig, yd yamlDownload) error {
	if yd.Timeout != "" {
		timeout, err := time.ParseDuration(yd.Timeout)
		if err != nil {
			return errors.Wrapf(err, "invalid download.timeout %q", yd.Timeout)
		}
		if timeout <= 0 {
			return errors.Errorf("download.timeout must be positive, got %s", yd.Timeout)
		}
		dc.Timeout = timeout
	}

	if yd.MaxRetries != nil {
		if *yd.MaxRetries < 0 {
			return errors.Errorf("download.max_retries must not be negative, got %d", *yd.MaxRetries)
		}
		dc.MaxRetries = *yd.MaxRetries
	}

	if yd.UserAgent != "" {
		dc.UserAgent = yd.UserAgent
	}

	return nil
}
