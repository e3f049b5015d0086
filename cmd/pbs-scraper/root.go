package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/repositories"
	"github.com/ochairo/pbs-scraper/internal/external-adapters/logrus"
	"github.com/ochairo/pbs-scraper/internal/external-adapters/yaml"
)

const (
	tokenEnv  = "GITHUB_TOKEN"
	apiURLEnv = "GITHUB_API_URL"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	defsDir    string
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}

	cmd := newScrapeCmd(global)
	cmd.PersistentFlags().StringVar(&global.defsDir, "defs-dir", entities.DefaultDefinitionsDir, "Path to the definitions tree")
	cmd.PersistentFlags().StringVar(&global.configFile, "config", "", "Optional YAML configuration file")
	cmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newListCmd(global))
	cmd.AddCommand(newVerifyCmd(global))

	return cmd
}

// loadConfig layers the config file and flags over the defaults
func (g *globalOptions) loadConfig(cmd *cobra.Command) (*entities.ScrapeConfig, error) {
	cfg := entities.DefaultScrapeConfig()
	if g.configFile != "" {
		parsed, err := yaml.NewConfigParser().ParseFile(g.configFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		cfg = *parsed
	}

	if g.configFile == "" || cmd.Flags().Changed("defs-dir") {
		cfg.DefinitionsDir = g.defsDir
	}

	return &cfg, nil
}

func (g *globalOptions) newLogger(out io.Writer) (*logrus.Logger, error) {
	return logrus.NewLogger(out, g.logLevel)
}

// rootMissingError turns the repository sentinel into the user-facing fatal message
func rootMissingError(err error, defsDir string) error {
	if errors.Is(err, repositories.ErrDefinitionsRootMissing) {
		return errors.Errorf("%s does not exist; must be run from the root of the repository", defsDir)
	}
	return err
}

func githubToken() string {
	return os.Getenv(tokenEnv)
}
