package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

func TestAssetMatcher_IsApplicable(t *testing.T) {
	m := NewAssetMatcher(entities.DefaultPlatforms())

	tests := []struct {
		name string
		want bool
	}{
		{"cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz", true},
		{"cpython-3.11.4+20230826-aarch64-unknown-linux-gnu-install_only.tar.gz", true},
		{"cpython-3.11.4+20230826-aarch64-apple-darwin-install_only.tar.gz", true},
		{"cpython-3.11.4+20230826-x86_64-apple-darwin-install_only.tar.gz.sha256", true},
		{"cpython-3.11.4+20230826-arm64-apple-darwin-install_only.tar.gz", false},
		{"cpython-3.11.4+20230826-x86_64-unknown-linux-musl-install_only.tar.gz", false},
		{"cpython-3.11.4+20230826-x86_64_v3-unknown-linux-gnu-install_only.tar.gz", false},
		{"cpython-3.11.4+20230826-x86_64-pc-windows-msvc-shared-install_only.tar.gz", false},
		{"cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-pgo+lto-full.tar.zst", false},
		{"SHA256SUMS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsApplicable(tt.name))
		})
	}
}

func TestAssetMatcher_IsApplicable_CustomPlatforms(t *testing.T) {
	m := NewAssetMatcher([]entities.Platform{{Machine: "x86_64", OS: "unknown-linux-musl"}})

	assert.True(t, m.IsApplicable("cpython-3.12.0+20231002-x86_64-unknown-linux-musl-install_only.tar.gz"))
	assert.False(t, m.IsApplicable("cpython-3.12.0+20231002-x86_64-unknown-linux-gnu-install_only.tar.gz"))
}

func TestAssetMatcher_Parse(t *testing.T) {
	m := NewAssetMatcher(entities.DefaultPlatforms())

	tests := []struct {
		name     string
		asset    string
		want     *entities.Definition
		wantPath string
	}{
		{
			name:  "linux x86_64",
			asset: "cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz",
			want: &entities.Definition{
				PythonVersion: "3.11.4",
				ReleaseTag:    "20230826",
				Machine:       "x86_64",
				OS:            "unknown-linux-gnu",
				URL:           "https://example.test/asset",
			},
			wantPath: "3.11.4/20230826/x86_64-unknown-linux-gnu.def",
		},
		{
			name:  "darwin aarch64",
			asset: "cpython-3.10.13+20231002-aarch64-apple-darwin-install_only.tar.gz",
			want: &entities.Definition{
				PythonVersion: "3.10.13",
				ReleaseTag:    "20231002",
				Machine:       "aarch64",
				OS:            "apple-darwin",
				URL:           "https://example.test/asset",
			},
			wantPath: "3.10.13/20231002/aarch64-apple-darwin.def",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Parse(&entities.Asset{Name: tt.asset, BrowserDownloadURL: "https://example.test/asset"})
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantPath, got.RelPath())
		})
	}
}

func TestAssetMatcher_Parse_Mismatch(t *testing.T) {
	m := NewAssetMatcher(entities.DefaultPlatforms())

	names := []string{
		"python-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz",
		"cpython-3.11.4-x86_64-unknown-linux-gnu-install_only.tar.gz",
		"cpython-3.11.4+latest-x86_64-unknown-linux-gnu-install_only.tar.gz",
		"cpython-..+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(&entities.Asset{Name: name})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparseableAsset))
		})
	}
}

func TestParseChecksumManifest(t *testing.T) {
	text := `ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz
E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855 *cpython-3.11.4+20230826-aarch64-apple-darwin-install_only.tar.gz
not-a-checksum  something.tar.gz

garbage
`

	got := ParseChecksumManifest(text)

	want := map[string]string{
		"cpython-3.11.4+20230826-x86_64-unknown-linux-gnu-install_only.tar.gz": "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"cpython-3.11.4+20230826-aarch64-apple-darwin-install_only.tar.gz":     "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseChecksumManifest() mismatch (-want +got):\n%s", diff)
	}
}
