package services

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

// AssetPattern extracts python version, release tag, machine and os-and-libc
// from an install_only archive name.
const AssetPattern = `^cpython-([\d.]+)\+([\d.]+)-([\w\d]+)-([-_\w\d]+)-install_only`

// ErrUnparseableAsset is returned when an asset name does not match AssetPattern
var ErrUnparseableAsset = errors.New("asset name does not match the expected pattern")

// AssetMatcher filters release assets to the platform allowlist and parses their names
type AssetMatcher struct {
	pattern *regexp.Regexp
	markers []string
}

// NewAssetMatcher creates a matcher for the given platforms and AssetPattern
func NewAssetMatcher(platforms []entities.Platform) *AssetMatcher {
	markers := make([]string, len(platforms))
	for i, p := range platforms {
		markers[i] = p.AssetMarker()
	}

	return &AssetMatcher{
		pattern: regexp.MustCompile(AssetPattern),
		markers: markers,
	}
}

// IsApplicable reports whether an asset name targets an allowlisted platform.
// Checksum sidecars of applicable archives are applicable too.
func (m *AssetMatcher) IsApplicable(name string) bool {
	for _, marker := range m.markers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Parse turns a binary asset into a Definition without a checksum
func (m *AssetMatcher) Parse(asset *entities.Asset) (*entities.Definition, error) {
	groups := m.pattern.FindStringSubmatch(asset.Name)
	if groups == nil {
		return nil, errors.Wrap(ErrUnparseableAsset, asset.Name)
	}

	def := &entities.Definition{
		PythonVersion: groups[1],
		ReleaseTag:    groups[2],
		Machine:       groups[3],
		OS:            groups[4],
		URL:           asset.BrowserDownloadURL,
	}

	// [\d.]+ admits "." and ".." which would escape the tree
	for _, part := range []string{def.PythonVersion, def.ReleaseTag} {
		if strings.Trim(part, ".") == "" {
			return nil, errors.Wrapf(ErrUnparseableAsset, "%s: invalid path component %q", asset.Name, part)
		}
	}

	return def, nil
}

// ParseChecksumManifest reads sha256sum-style lines ("<hex>  <name>" or
// "<hex> *<name>") into a map keyed by file name. Malformed lines are ignored.
func ParseChecksumManifest(text string) map[string]string {
	sums := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		sum, name := fields[0], strings.TrimPrefix(fields[1], "*")
		if len(sum) != 64 {
			continue
		}
		sums[name] = strings.ToLower(sum)
	}

	return sums
}
