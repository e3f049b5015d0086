// Package entities defines core domain models and data structures.
package entities

import "strings"

// ChecksumSuffix marks a per-asset checksum sidecar
const ChecksumSuffix = ".sha256"

// ChecksumManifestName is the release-wide checksum manifest published by newer releases
const ChecksumManifestName = "SHA256SUMS"

// Release represents a published upstream release
type Release struct {
	ID         int64
	TagName    string
	Name       string
	Draft      bool
	Prerelease bool
}

// Asset represents a single file attached to a release
type Asset struct {
	ID                 int64
	Name               string
	BrowserDownloadURL string
	Size               int64
}

// IsChecksum reports whether the asset is a per-asset checksum sidecar
func (a *Asset) IsChecksum() bool {
	return strings.HasSuffix(a.Name, ChecksumSuffix)
}

// ChecksumTarget returns the name of the binary asset a sidecar describes
func (a *Asset) ChecksumTarget() string {
	return strings.TrimSuffix(a.Name, ChecksumSuffix)
}

// IsChecksumManifest reports whether the asset is the release-wide SHA256SUMS file
func (a *Asset) IsChecksumManifest() bool {
	return a.Name == ChecksumManifestName
}
