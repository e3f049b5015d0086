// Package filesystem stores definition records in a version/tag directory tree.
package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/repositories"
)

const (
	dirPerm  = 0750
	filePerm = 0644
)

// DefinitionRepository implements repositories.DefinitionRepository on the local filesystem.
//
// Layout: <root>/<python-version>/<release-tag>/<machine>-<os>.def
type DefinitionRepository struct {
	root   string
	logger interfaces.Logger
}

// NewDefinitionRepository creates a repository rooted at root
func NewDefinitionRepository(root string, logger interfaces.Logger) *DefinitionRepository {
	return &DefinitionRepository{
		root:   root,
		logger: logger,
	}
}

// Root returns the definitions root directory
func (r *DefinitionRepository) Root() string {
	return r.root
}

// CheckRoot verifies the definitions root exists and is a directory
func (r *DefinitionRepository) CheckRoot(_ context.Context) error {
	info, err := os.Stat(r.root)
	if os.IsNotExist(err) {
		return errors.Wrap(repositories.ErrDefinitionsRootMissing, r.root)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", r.root)
	}
	if !info.IsDir() {
		return errors.Wrapf(repositories.ErrDefinitionsRootMissing, "%s is not a directory", r.root)
	}
	return nil
}

// ListScrapedTags returns the distinct tag directories found two levels below the root
func (r *DefinitionRepository) ListScrapedTags(_ context.Context) ([]string, error) {
	versions, err := os.ReadDir(r.root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read definitions directory")
	}

	seen := make(map[string]bool)
	for _, version := range versions {
		if !version.IsDir() {
			continue
		}

		tags, err := os.ReadDir(filepath.Join(r.root, version.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read version directory %s", version.Name())
		}
		for _, tag := range tags {
			if tag.IsDir() {
				seen[tag.Name()] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for tag := range seen {
		result = append(result, tag)
	}
	sort.Strings(result)

	return result, nil
}

// Exists reports whether the record for def's key is already on disk
func (r *DefinitionRepository) Exists(_ context.Context, def *entities.Definition) (bool, error) {
	_, err := os.Stat(r.path(def))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat %s", def.RelPath())
}

// Save writes the two-line record, creating parent directories as needed
func (r *DefinitionRepository) Save(_ context.Context, def *entities.Definition) error {
	path := r.path(def)

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "failed to create definition directory")
	}

	//nolint:gosec // G306: definitions are committed to a public repository
	if err := os.WriteFile(path, []byte(def.Content()), filePerm); err != nil {
		return errors.Wrapf(err, "failed to write %s", def.RelPath())
	}

	return nil
}

// ListDefinitions loads every record; releaseTag limits the result when non-empty
func (r *DefinitionRepository) ListDefinitions(_ context.Context, releaseTag string) ([]*entities.Definition, error) {
	pattern := filepath.Join(r.root, "*", "*", "*"+entities.DefinitionExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob %s", pattern)
	}
	sort.Strings(matches)

	defs := make([]*entities.Definition, 0, len(matches))
	for _, match := range matches {
		def, err := r.load(match)
		if err != nil {
			// Log warning but continue processing other files
			r.logger.Warn("Skipping unreadable definition", interfaces.F("path", match), interfaces.F("error", err))
			continue
		}
		if releaseTag != "" && def.ReleaseTag != releaseTag {
			continue
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func (r *DefinitionRepository) load(path string) (*entities.Definition, error) {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve definition path")
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return nil, errors.Errorf("unexpected definition path %s", rel)
	}

	machine, osName, ok := strings.Cut(strings.TrimSuffix(parts[2], entities.DefinitionExt), "-")
	if !ok {
		return nil, errors.Errorf("definition file name %s has no machine-os pair", parts[2])
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	def := &entities.Definition{
		PythonVersion: parts[0],
		ReleaseTag:    parts[1],
		Machine:       machine,
		OS:            osName,
	}
	if err := def.ParseDefinitionContent(data); err != nil {
		return nil, errors.Wrap(err, rel)
	}

	return def, nil
}

func readFile(path string) (string, error) {
	//nolint:gosec // G304: path comes from globbing the definitions root
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

func (r *DefinitionRepository) path(def *entities.Definition) string {
	return filepath.Join(r.root, def.RelPath())
}
