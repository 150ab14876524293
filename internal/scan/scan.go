// # internal/scan/scan.go

// Package scan discovers the Python source files under an analysis root,
// applying directory and file exclusion globs. Results come back sorted by
// relative path so downstream id assignment is deterministic.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"intmap/internal/errors"
)

// SourceFile pairs the absolute path of a discovered file with its
// slash-separated path relative to the scan root.
type SourceFile struct {
	AbsPath string
	RelPath string
}

type Scanner struct {
	root      string
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
}

// New compiles the exclusion patterns for a scanner rooted at root. Patterns
// match against path base names, not full paths.
func New(root string, excludeDirs, excludeFiles []string) (*Scanner, error) {
	s := &Scanner{root: root}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude dir pattern").
				WithContext("pattern", p)
		}
		s.dirGlobs = append(s.dirGlobs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude file pattern").
				WithContext("pattern", p)
		}
		s.fileGlobs = append(s.fileGlobs, g)
	}
	return s, nil
}

// Walk returns every non-excluded .py file under the root, sorted by
// relative path.
func (s *Scanner) Walk() ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != s.root && s.excludedDir(base) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(base, ".py") {
			return nil
		}
		if s.excludedFile(base) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "scanning source root").
			WithContext(errors.CtxPath, s.root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// ExcludedPath reports whether any segment of the slash-separated relative
// path matches a directory glob, or the base name matches a file glob. Used
// by the watcher to filter events the walk never sees.
func (s *Scanner) ExcludedPath(relPath string) bool {
	segs := strings.Split(filepath.ToSlash(relPath), "/")
	for i, seg := range segs {
		if i < len(segs)-1 && s.excludedDir(seg) {
			return true
		}
	}
	return s.excludedFile(segs[len(segs)-1])
}

func (s *Scanner) excludedDir(base string) bool {
	for _, g := range s.dirGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (s *Scanner) excludedFile(base string) bool {
	for _, g := range s.fileGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}
