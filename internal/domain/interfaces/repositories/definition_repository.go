// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

// ErrDefinitionsRootMissing is returned when the definitions tree does not exist
var ErrDefinitionsRootMissing = errors.New("definitions root directory does not exist")

// DefinitionRepository defines access to the tree of definition records
type DefinitionRepository interface {
	// CheckRoot verifies that the definitions root exists
	CheckRoot(ctx context.Context) error

	// ListScrapedTags returns the distinct release tags that already have records
	ListScrapedTags(ctx context.Context) ([]string, error)

	// Exists reports whether a record for the definition's key is on disk
	Exists(ctx context.Context, def *entities.Definition) (bool, error)

	// Save writes the record, creating parent directories as needed
	Save(ctx context.Context, def *entities.Definition) error

	// ListDefinitions loads every record, optionally limited to one release tag
	ListDefinitions(ctx context.Context, releaseTag string) ([]*entities.Definition, error)
}
