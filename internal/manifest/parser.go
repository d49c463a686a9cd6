package manifest

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/stacksorbit/stacksorbit/internal/category"
)

// ManifestFile is the project manifest name looked for at the project root.
const ManifestFile = "Clarinet.toml"

// Stats records per-strategy discovery counts and the informational
// deployment-manifest references that do not become descriptors.
type Stats struct {
	ByStrategy   map[Source]int   `json:"by_strategy"`
	Duplicates   int              `json:"duplicates_dropped"`
	ManifestRefs []ArtifactRecord `json:"manifest_references,omitempty"`
}

// Parser discovers contracts under a project root. The zero value is not
// usable; construct with NewParser.
type Parser struct {
	table *category.Table
	log   zerolog.Logger
}

// NewParser returns a Parser categorizing contracts with the given table.
func NewParser(table *category.Table, log zerolog.Logger) *Parser {
	return &Parser{table: table, log: log}
}

// Discover runs every discovery strategy against root and returns the
// deduplicated descriptor list. The order of strategies is fixed; within the
// result, the first strategy to report a name owns it and later duplicates
// are dropped, never merged. Discovery never fails: every per-file and
// per-strategy error is logged and skipped.
//
// The returned list is not sorted; deployment ordering is applied elsewhere.
func (p *Parser) Discover(root string) ([]Descriptor, Stats) {
	stats := Stats{ByStrategy: make(map[Source]int)}
	seen := make(map[string]bool)
	var out []Descriptor

	add := func(ds []Descriptor) {
		for _, d := range ds {
			if d.Name == "" {
				continue
			}
			if seen[d.Name] {
				stats.Duplicates++
				continue
			}
			seen[d.Name] = true
			stats.ByStrategy[d.Source]++
			out = append(out, d)
		}
	}

	add(p.parseManifest(root))
	add(p.directoryScan(root))
	add(p.structureScan(root))

	// Deployment manifests only annotate discovery statistics; they never
	// produce descriptors.
	for _, artifact := range FindArtifacts(root, p.log) {
		stats.ManifestRefs = append(stats.ManifestRefs, artifact.Successful...)
	}
	stats.ByStrategy[SourceDeploymentManifest] = len(stats.ManifestRefs)

	return out, stats
}

// parseManifest reads Clarinet.toml via an ordered fallback chain: a
// structured TOML parse first, then regex scans tolerating historical
// syntax variants. The first parser yielding any descriptors wins; results
// from different parsers are never merged.
func (p *Parser) parseManifest(root string) []Descriptor {
	path := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.log.Warn().Err(err).Str("file", path).Msg("reading project manifest")
		}
		return nil
	}

	if ds, err := p.parseManifestTOML(root, data); err == nil {
		return ds
	} else {
		p.log.Warn().Err(err).Msg("structured manifest parse failed, trying regex fallback")
	}
	return p.parseManifestRegex(root, string(data))
}

// clarinetContract is one [contracts.<name>] section of Clarinet.toml.
type clarinetContract struct {
	Path      string   `toml:"path"`
	DependsOn []string `toml:"depends_on"`
}

// clarinetManifest is the subset of Clarinet.toml this tool reads.
// Dependency lists are parsed but not used for graph resolution.
type clarinetManifest struct {
	Project   map[string]any              `toml:"project"`
	Contracts map[string]clarinetContract `toml:"contracts"`
}

func (p *Parser) parseManifestTOML(root string, data []byte) ([]Descriptor, error) {
	var m clarinetManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	// Map iteration order is random in Go; sort names so a single manifest
	// always yields the same in-strategy ordering.
	names := make([]string, 0, len(m.Contracts))
	for name := range m.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Descriptor
	for _, name := range names {
		rel := m.Contracts[name].Path
		if rel == "" {
			continue
		}
		d, ok := p.describe(root, name, rel, SourceManifest)
		if !ok {
			continue // referenced file missing on disk
		}
		out = append(out, d)
	}
	return out, nil
}

// manifestPatterns lists the regex fallbacks for manifests that defeat the
// TOML parser. Order matters: the first pattern producing any match wins.
var manifestPatterns = []*regexp.Regexp{
	// [contracts.name] followed by a path attribute.
	regexp.MustCompile(`(?is)\[contracts\.([^\]]+)\]\s+path\s*=\s*["']([^"']+)["']`),
	// Same shape with an inline dependency list.
	regexp.MustCompile(`(?is)\[contracts\.([^\]]+)\]\s+path\s*=\s*["']([^"']+)["'].*?depends_on\s*=\s*\[`),
	// Legacy flat form: name = "path/to/contract.clar".
	regexp.MustCompile(`(?im)^\s*([A-Za-z0-9_.-]+)\s*=\s*["']([^"']+\.clar)["']\s*$`),
}

func (p *Parser) parseManifestRegex(root, content string) []Descriptor {
	for _, pattern := range manifestPatterns {
		matches := pattern.FindAllStringSubmatch(content, -1)
		if len(matches) == 0 {
			continue
		}
		var out []Descriptor
		for _, m := range matches {
			name, rel := m[1], m[2]
			d, ok := p.describe(root, name, rel, SourceManifest)
			if !ok {
				continue
			}
			out = append(out, d)
		}
		// First pattern that matched wins, even if none of its referenced
		// files existed on disk.
		return out
	}
	return nil
}

// describe builds a descriptor for a contract at root/rel. Returns false
// when the file does not exist or cannot be stat'ed.
func (p *Parser) describe(root, name, rel string, src Source) (Descriptor, bool) {
	abs := filepath.Join(root, rel)
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return Descriptor{}, false
	}
	return Descriptor{
		Name:        name,
		RelPath:     filepath.ToSlash(rel),
		AbsPath:     abs,
		SizeBytes:   info.Size(),
		ModTime:     info.ModTime(),
		ContentHash: fileHash(abs),
		Source:      src,
		Category:    p.table.Categorize(name),
	}, true
}
