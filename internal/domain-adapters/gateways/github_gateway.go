package gateways

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v52/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
)

const (
	// Page size for release and asset listings (GitHub maximum)
	perPage = 100
	// Remaining-quota threshold below which a warning is logged
	rateLimitWarnThreshold = 10
)

// GitHubGateway implements gateways.ReleaseGateway on top of go-github
type GitHubGateway struct {
	client *github.Client
	logger interfaces.Logger
}

// GitHubOption configures a GitHubGateway
type GitHubOption func(*GitHubGateway) error

// WithBaseURL points the gateway at another API root (GitHub Enterprise, tests)
func WithBaseURL(baseURL string) GitHubOption {
	return func(g *GitHubGateway) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return errors.Wrap(err, "invalid GitHub API base URL")
		}
		g.client.BaseURL = u
		return nil
	}
}

// WithUserAgent overrides the User-Agent sent to the API
func WithUserAgent(ua string) GitHubOption {
	return func(g *GitHubGateway) error {
		g.client.UserAgent = ua
		return nil
	}
}

// NewGitHubGateway creates a gateway. An empty token means anonymous access.
func NewGitHubGateway(ctx context.Context, token string, logger interfaces.Logger, opts ...GitHubOption) (*GitHubGateway, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	g := &GitHubGateway{
		client: github.NewClient(httpClient),
		logger: logger,
	}
	g.client.UserAgent = entities.DefaultUserAgent

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// ListReleases lists all releases in a repository, following pagination
func (g *GitHubGateway) ListReleases(ctx context.Context, owner, repo string) ([]*entities.Release, error) {
	var releases []*entities.Release

	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list releases of %s/%s", owner, repo)
		}
		g.checkRateLimit(resp)

		for _, r := range page {
			releases = append(releases, &entities.Release{
				ID:         r.GetID(),
				TagName:    r.GetTagName(),
				Name:       r.GetName(),
				Draft:      r.GetDraft(),
				Prerelease: r.GetPrerelease(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return releases, nil
}

// ListReleaseAssets lists all assets for a release, following pagination
func (g *GitHubGateway) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]*entities.Asset, error) {
	var assets []*entities.Asset

	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := g.client.Repositories.ListReleaseAssets(ctx, owner, repo, releaseID, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list assets of release %d", releaseID)
		}
		g.checkRateLimit(resp)

		for _, a := range page {
			assets = append(assets, &entities.Asset{
				ID:                 a.GetID(),
				Name:               a.GetName(),
				BrowserDownloadURL: a.GetBrowserDownloadURL(),
				Size:               int64(a.GetSize()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return assets, nil
}

// checkRateLimit warns when the API quota is about to run out
func (g *GitHubGateway) checkRateLimit(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	if resp.Rate.Remaining <= rateLimitWarnThreshold {
		g.logger.Warn("GitHub API rate limit low",
			interfaces.F("remaining", resp.Rate.Remaining),
			interfaces.F("limit", resp.Rate.Limit),
			interfaces.F("resets_at", resp.Rate.Reset.Time),
		)
	}
}
