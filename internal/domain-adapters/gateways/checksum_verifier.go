package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/interfaces/gateways"
)

// hashChunkSize bounds memory while hashing large archives
const hashChunkSize = 4096

// ErrChecksumMismatch is returned when a recomputed digest differs from the recorded one
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumVerifier re-downloads artifacts and compares their SHA-256
type ChecksumVerifier struct {
	fetcher gateways.ArtifactFetcher
}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier(fetcher gateways.ArtifactFetcher) *ChecksumVerifier {
	return &ChecksumVerifier{fetcher: fetcher}
}

// VerifyChecksum downloads url and checks its SHA-256 against expectedSum
func (v *ChecksumVerifier) VerifyChecksum(ctx context.Context, url, expectedSum string) error {
	actualSum, err := v.fetcher.ComputeSHA256(ctx, url)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return errors.Wrapf(ErrChecksumMismatch, "expected %s, got %s", expectedSum, actualSum)
	}

	return nil
}

// HashReader hashes r in fixed-size chunks and returns the hex digest and byte count
func HashReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)

	written, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", written, errors.Wrap(err, "failed to hash stream")
	}

	return hex.EncodeToString(h.Sum(nil)), written, nil
}
