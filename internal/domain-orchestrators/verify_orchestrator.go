package orchestrators

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/repositories"
)

// ChecksumVerifier checks that the artifact at url still hashes to expectedSum
type ChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, url, expectedSum string) error
}

// VerifyOrchestrator re-checks recorded definitions against their upstream artifacts
type VerifyOrchestrator struct {
	defRepo  repositories.DefinitionRepository
	verifier ChecksumVerifier
	logger   interfaces.Logger
}

// NewVerifyOrchestrator creates a new verify orchestrator
func NewVerifyOrchestrator(defRepo repositories.DefinitionRepository, verifier ChecksumVerifier, logger interfaces.Logger) *VerifyOrchestrator {
	return &VerifyOrchestrator{
		defRepo:  defRepo,
		verifier: verifier,
		logger:   logger,
	}
}

// VerifyFailure pairs a definition with the reason it did not verify
type VerifyFailure struct {
	Definition *entities.Definition
	Err        error
}

// VerifyResult contains the outcome of a verify run
type VerifyResult struct {
	Verified      []*entities.Definition
	Failed        []VerifyFailure
	TotalDuration time.Duration
}

// OK reports whether every checked definition verified
func (r *VerifyResult) OK() bool {
	return len(r.Failed) == 0
}

// VerifyDefinitions downloads every recorded artifact (optionally for one tag)
// and compares its SHA-256 with the recorded checksum. A failing definition
// does not stop the run; cancellation does.
func (o *VerifyOrchestrator) VerifyDefinitions(ctx context.Context, releaseTag string) (*VerifyResult, error) {
	startTime := time.Now()
	result := &VerifyResult{}

	if err := o.defRepo.CheckRoot(ctx); err != nil {
		return nil, err
	}

	defs, err := o.defRepo.ListDefinitions(ctx, releaseTag)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list definitions")
	}

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := o.verifier.VerifyChecksum(ctx, def.URL, def.SHA256); err != nil {
			o.logger.Error("Checksum verification failed", interfaces.F("path", def.RelPath()), interfaces.F("error", err))
			result.Failed = append(result.Failed, VerifyFailure{Definition: def, Err: err})
			continue
		}

		o.logger.Info("Verified definition", interfaces.F("path", def.RelPath()))
		result.Verified = append(result.Verified, def)
	}

	result.TotalDuration = time.Since(startTime)
	return result, nil
}
