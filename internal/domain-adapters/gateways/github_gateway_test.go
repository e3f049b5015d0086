package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
)

// recordingLogger keeps warnings so tests can assert on them
type recordingLogger struct {
	interfaces.NoOpLogger
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...interfaces.Field) {
	l.warnings = append(l.warnings, msg)
}

func newTestGateway(t *testing.T, server *httptest.Server, logger interfaces.Logger) *GitHubGateway {
	t.Helper()

	gateway, err := NewGitHubGateway(context.Background(), "test-token", logger, WithBaseURL(server.URL))
	require.NoError(t, err)
	return gateway
}

// Test listing releases across two pages
func TestGitHubGateway_ListReleases_Paginated(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/repos/astral-sh/python-build-standalone/releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/astral-sh/python-build-standalone/releases?per_page=100&page=2>; rel="next"`, server.URL))
			_, _ = w.Write([]byte(`[{"id": 3, "tag_name": "20231002"}, {"id": 2, "tag_name": "20230826"}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id": 1, "tag_name": "20230726", "prerelease": true}]`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	gateway := newTestGateway(t, server, &interfaces.NoOpLogger{})

	releases, err := gateway.ListReleases(context.Background(), "astral-sh", "python-build-standalone")
	require.NoError(t, err)
	require.Len(t, releases, 3)

	assert.Equal(t, int64(3), releases[0].ID)
	assert.Equal(t, "20231002", releases[0].TagName)
	assert.Equal(t, "20230726", releases[2].TagName)
	assert.True(t, releases[2].Prerelease)
}

// Test listing assets of a release
func TestGitHubGateway_ListReleaseAssets(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/repos/test/repo/releases/42/assets", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 7, "name": "cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz",
			 "size": 1024, "browser_download_url": "https://example.test/a.tar.gz"},
			{"id": 8, "name": "cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz.sha256",
			 "size": 64, "browser_download_url": "https://example.test/a.tar.gz.sha256"}
		]`))
	})

	gateway := newTestGateway(t, server, &interfaces.NoOpLogger{})

	assets, err := gateway.ListReleaseAssets(context.Background(), "test", "repo", 42)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, int64(7), assets[0].ID)
	assert.Equal(t, "https://example.test/a.tar.gz", assets[0].BrowserDownloadURL)
	assert.Equal(t, int64(1024), assets[0].Size)
	assert.True(t, assets[1].IsChecksum())
}

// Test list assets with API error
func TestGitHubGateway_ListReleaseAssets_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer server.Close()

	gateway := newTestGateway(t, server, &interfaces.NoOpLogger{})

	_, err := gateway.ListReleaseAssets(context.Background(), "test", "repo", 123)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list assets of release 123")
}

// Test that a nearly exhausted quota is reported
func TestGitHubGateway_RateLimitWarning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "3")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	logger := &recordingLogger{}
	gateway := newTestGateway(t, server, logger)

	releases, err := gateway.ListReleases(context.Background(), "test", "repo")
	require.NoError(t, err)
	assert.Empty(t, releases)
	assert.Equal(t, []string{"GitHub API rate limit low"}, logger.warnings)
}

// Test anonymous access sends no Authorization header
func TestGitHubGateway_Anonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	gateway, err := NewGitHubGateway(context.Background(), "", &interfaces.NoOpLogger{}, WithBaseURL(server.URL), WithUserAgent("pbs-scraper-test"))
	require.NoError(t, err)

	_, err = gateway.ListReleases(context.Background(), "test", "repo")
	require.NoError(t, err)
}

// Test context cancellation
func TestGitHubGateway_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	gateway := newTestGateway(t, server, &interfaces.NoOpLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.ListReleases(ctx, "test", "repo")
	require.Error(t, err)
}

func TestWithBaseURL_Invalid(t *testing.T) {
	_, err := NewGitHubGateway(context.Background(), "", &interfaces.NoOpLogger{}, WithBaseURL("://bad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid GitHub API base URL")
}
