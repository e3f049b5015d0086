package gateways

import "context"

// ArtifactFetcher retrieves asset bodies over HTTP
type ArtifactFetcher interface {
	// FetchText downloads a small text resource (checksum sidecars, manifests)
	FetchText(ctx context.Context, url string) (string, error)

	// ComputeSHA256 streams the body at url through SHA-256 and returns the hex digest
	ComputeSHA256(ctx context.Context, url string) (string, error)
}
