package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// scanRoots lists the conventional subtrees searched by the directory scan,
// in order. The empty string means the whole project tree and acts as the
// catch-all final pattern.
var scanRoots = []string{
	"contracts",
	filepath.Join("clarinet", "contracts"),
	"src",
	"",
}

// structureDirs lists well-known Stacks project layouts checked by the
// project-structure scan. This list is independent of scanRoots on purpose:
// it mirrors how projects that skip Clarinet entirely tend to be organized.
var structureDirs = []string{
	"clarinet",
	"contracts",
	filepath.Join("src", "contracts"),
	"packages",
	filepath.Join("tests", "contracts"),
}

// directoryScan recursively collects contract sources under the
// conventional subtrees. Duplicate names across subtrees are resolved by
// the caller's global first-writer-wins dedup.
func (p *Parser) directoryScan(root string) []Descriptor {
	var out []Descriptor
	for _, sub := range scanRoots {
		base := root
		if sub != "" {
			base = filepath.Join(root, sub)
		}
		files := collectContracts(base)
		if len(files) > 0 {
			p.log.Debug().Str("dir", base).Int("files", len(files)).Msg("directory scan found contracts")
		}
		for _, abs := range files {
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				continue
			}
			d, ok := p.describe(root, contractName(abs), rel, SourceDirectoryScan)
			if !ok {
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// structureScan checks a fixed list of well-known subdirectory names and
// recursively collects contract sources beneath each one that exists.
func (p *Parser) structureScan(root string) []Descriptor {
	var out []Descriptor
	for _, sub := range structureDirs {
		dir := filepath.Join(root, sub)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		p.log.Debug().Str("dir", dir).Msg("found conventional project structure")
		for _, abs := range collectContracts(dir) {
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				continue
			}
			d, ok := p.describe(root, contractName(abs), rel, SourceStructureScan)
			if !ok {
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// collectContracts walks dir and returns every regular *.clar file, sorted
// by path for reproducible within-strategy ordering. Unreadable entries are
// skipped, and a missing dir yields nil.
func collectContracts(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			// Hidden directories (.git, .stacksorbit) never hold sources.
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ContractExt) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
