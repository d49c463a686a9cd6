package manifest

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ArtifactRecord is one contract entry inside a deployment-manifest JSON
// artifact: a previously deployed contract and its transaction id.
type ArtifactRecord struct {
	Name string `json:"name"`
	TxID string `json:"tx_id"`
}

// Artifact is a deployment-manifest JSON file recording a prior run.
type Artifact struct {
	Path       string           `json:"path"`
	Modified   time.Time        `json:"modified"`
	Successful []ArtifactRecord `json:"successful"`
}

// HistoryEntry is one record of a local deployment-history JSON file. Only
// the fields this tool consumes are decoded; unknown fields are ignored.
type HistoryEntry struct {
	Name      string `json:"name,omitempty"`
	TxID      string `json:"tx_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Network   string `json:"network,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// artifactFile reports whether the path (relative to the project root)
// looks like a deployment-manifest artifact. The accepted shapes mirror the
// glob patterns older releases used: anything under deployment/ or
// .stacksorbit/, or a manifest.json / deployments.json /
// *-manifest.json anywhere in the tree.
func artifactFile(rel string) bool {
	if !strings.HasSuffix(rel, ".json") {
		return false
	}
	slash := filepath.ToSlash(rel)
	if strings.HasPrefix(slash, "deployment/") || strings.HasPrefix(slash, ".stacksorbit/") {
		return true
	}
	base := filepath.Base(slash)
	return base == "manifest.json" || base == "deployments.json" ||
		strings.HasSuffix(base, "-manifest.json")
}

// historyFile reports whether the path looks like a deployment-history
// artifact.
func historyFile(rel string) bool {
	slash := filepath.ToSlash(rel)
	if slash == "deployment/history.json" || slash == ".stacksorbit/deployment_history.json" {
		return true
	}
	return filepath.Base(slash) == "deployment_history.json"
}

// FindArtifacts scans root for deployment-manifest JSON artifacts and
// returns the ones that decode. Decode and read errors are logged per
// artifact and skipped; one bad file never aborts the scan.
func FindArtifacts(root string, log zerolog.Logger) []Artifact {
	var out []Artifact
	for _, path := range collectJSON(root, artifactFile) {
		artifact, err := readArtifact(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("reading deployment artifact")
			continue
		}
		out = append(out, artifact)
	}
	return out
}

// LoadHistory scans root for deployment-history JSON files and returns the
// concatenated records. Per-file errors are logged and skipped.
func LoadHistory(root string, log zerolog.Logger) []HistoryEntry {
	var out []HistoryEntry
	for _, path := range collectJSON(root, historyFile) {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("reading deployment history")
			continue
		}
		var entries []HistoryEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("decoding deployment history")
			continue
		}
		out = append(out, entries...)
	}
	return out
}

// artifactPayload is the on-disk shape of a deployment manifest.
type artifactPayload struct {
	Deployment struct {
		Successful []ArtifactRecord `json:"successful"`
	} `json:"deployment"`
}

func readArtifact(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, err
	}
	var payload artifactPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Artifact{}, err
	}
	artifact := Artifact{Path: path, Successful: payload.Deployment.Successful}
	if info, err := os.Stat(path); err == nil {
		artifact.Modified = info.ModTime()
	}
	return artifact, nil
}

// collectJSON walks root and returns every regular file whose project-
// relative path satisfies match, sorted for reproducible output.
func collectJSON(root string, match func(rel string) bool) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			// .stacksorbit is the one hidden directory artifacts live in.
			if strings.HasPrefix(d.Name(), ".") && d.Name() != ".stacksorbit" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if match(rel) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
