// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

// ReleaseGateway lists releases and their assets on the hosting platform
type ReleaseGateway interface {
	// ListReleases returns every release of the repository, newest first
	ListReleases(ctx context.Context, owner, repo string) ([]*entities.Release, error)

	// ListReleaseAssets returns every asset attached to a release
	ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]*entities.Asset, error)
}
