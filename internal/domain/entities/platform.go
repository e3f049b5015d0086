package entities

// InstallOnlyMarker is the archive flavor scraped from each release.
// Most users want install_only; the full archives carry build artifacts.
const InstallOnlyMarker = "install_only"

// Platform is a machine/os target triple split at the first dash
type Platform struct {
	Machine string
	OS      string
}

// String returns the machine-os pair
func (p Platform) String() string {
	return p.Machine + "-" + p.OS
}

// AssetMarker returns the substring an applicable asset name must contain
func (p Platform) AssetMarker() string {
	return p.String() + "-" + InstallOnlyMarker
}

// DefaultPlatforms returns the supported platform matrix
func DefaultPlatforms() []Platform {
	machines := []string{"aarch64", "x86_64"}
	systems := []string{"apple-darwin", "unknown-linux-gnu"}

	platforms := make([]Platform, 0, len(machines)*len(systems))
	for _, m := range machines {
		for _, os := range systems {
			platforms = append(platforms, Platform{Machine: m, OS: os})
		}
	}
	return platforms
}
