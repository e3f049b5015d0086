package entities

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DefinitionExt is the file extension of a definition record
const DefinitionExt = ".def"

// Definition is the on-disk record for one interpreter build
type Definition struct {
	PythonVersion string
	ReleaseTag    string
	Machine       string
	OS            string
	URL           string
	SHA256        string
}

// Platform returns the machine-os pair, e.g. x86_64-unknown-linux-gnu
func (d *Definition) Platform() string {
	return d.Machine + "-" + d.OS
}

// RelPath returns the path of the record relative to the definitions root
func (d *Definition) RelPath() string {
	return filepath.Join(d.PythonVersion, d.ReleaseTag, d.Platform()+DefinitionExt)
}

// Content renders the two-line file body: download URL, then checksum
func (d *Definition) Content() string {
	return fmt.Sprintf("%s\n%s\n", d.URL, d.SHA256)
}

// ParseDefinitionContent fills URL and SHA256 from a record body
func (d *Definition) ParseDefinitionContent(data string) error {
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	if len(lines) != 2 {
		return errors.Errorf("definition must contain exactly 2 lines, got %d", len(lines))
	}

	d.URL = strings.TrimSpace(lines[0])
	d.SHA256 = strings.TrimSpace(lines[1])
	if d.URL == "" || d.SHA256 == "" {
		return errors.New("definition has empty url or checksum")
	}

	return nil
}
