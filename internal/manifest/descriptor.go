// Package manifest discovers contract source units in a Stacks project.
// Discovery runs a fixed sequence of strategies (Clarinet.toml parse with a
// regex fallback chain, directory scans, conventional project structures)
// and deduplicates the concatenated results by contract name, first
// occurrence winning. The output is deliberately unordered; deployment
// ordering is a separate concern.
package manifest

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stacksorbit/stacksorbit/internal/category"
)

// ContractExt is the file extension of Clarity contract sources.
const ContractExt = ".clar"

// Source identifies which discovery strategy produced a descriptor.
type Source string

const (
	SourceManifest           Source = "manifest-declared"
	SourceDirectoryScan      Source = "directory-scan"
	SourceStructureScan      Source = "project-structure-scan"
	SourceDeploymentManifest Source = "deployment-manifest-reference"
)

// Descriptor describes one discovered contract source unit. Descriptors are
// rebuilt fresh on every discovery pass; Name equality is the only identity
// that survives across runs.
type Descriptor struct {
	Name        string            `json:"name"`
	RelPath     string            `json:"path"`
	AbsPath     string            `json:"full_path"`
	SizeBytes   int64             `json:"size"`
	ModTime     time.Time         `json:"modified"`
	ContentHash string            `json:"hash"`
	Source      Source            `json:"source"`
	Category    category.Category `json:"category"`
}

// hashUnknown is the sentinel content hash used when the file cannot be read.
const hashUnknown = "unknown"

// fileHash returns the md5 hex digest of the file contents. The digest is
// used for change detection only, not integrity: collisions are accepted.
// Read failures yield the "unknown" sentinel rather than an error.
func fileHash(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return hashUnknown
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// contractName derives a contract name from its file path: the base name
// with the extension stripped.
func contractName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
