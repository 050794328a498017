// Package batch finds employee files, runs them through the normalizer and writes the results.
package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"empfmt/internal/logger"
)

const jsonExt = ".json"

// Path-level errors. Each one ends the run.
var (
	ErrNotFound         = errors.New("path does not exist")
	ErrAlreadyFormatted = errors.New("file is already processed")
	ErrNoValidFiles     = errors.New("no valid files to process")
)

// Kind classifies what discovery found at the root path.
type Kind int

// Discovery kinds.
const (
	KindFound Kind = iota
	KindNotFound
	KindAlreadyFormatted
)

func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindNotFound:
		return "not_found"
	case KindAlreadyFormatted:
		return "already_formatted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Discovery is the result of scanning a root path. Files is set only for KindFound.
type Discovery struct {
	Root  string
	Kind  Kind
	Files []string
}

// Err maps the discovery to its path-level error, or nil when there is work to do.
func (d Discovery) Err() error {
	switch d.Kind {
	case KindNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, d.Root)
	case KindAlreadyFormatted:
		return fmt.Errorf("%w: %s", ErrAlreadyFormatted, d.Root)
	}

	if len(d.Files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoValidFiles, d.Root)
	}

	return nil
}

// Discoverer collects candidate input files below a root path.
type Discoverer struct {
	suffix string
	log    *logger.Logger
}

// NewDiscoverer creates a discoverer that treats files ending in suffix as outputs.
func NewDiscoverer(suffix string, log *logger.Logger) *Discoverer {
	return &Discoverer{suffix: suffix, log: log}
}

// IsCandidate reports whether name looks like an unprocessed input file.
func (d *Discoverer) IsCandidate(name string) bool {
	return strings.HasSuffix(name, jsonExt) && !strings.HasSuffix(name, d.suffix)
}

// Discover classifies root. A file root is taken as-is unless it is already an
// output file; a directory root is walked recursively in lexical order, and
// output files found inside it are skipped without aborting. Symlinked
// directories are followed once each.
func (d *Discoverer) Discover(root string) (Discovery, error) {
	res := Discovery{Root: root}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Kind = KindNotFound

			return res, nil
		}

		return res, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if !info.IsDir() {
		if strings.HasSuffix(root, d.suffix) {
			res.Kind = KindAlreadyFormatted

			return res, nil
		}

		if d.IsCandidate(root) {
			res.Files = []string{root}
		}

		return res, nil
	}

	d.walk(root, make(map[string]struct{}), &res.Files)

	return res, nil
}

// walk appends the candidates below dir to files. visited holds resolved
// directory paths so a symlink cycle is entered only once.
func (d *Discoverer) walk(dir string, visited map[string]struct{}, files *[]string) {
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		d.log.Warn("Error accessing path, skipping", "path", dir, logger.Err(err))

		return
	}

	if _, seen := visited[target]; seen {
		d.log.Debug("directory already walked, skipping", "path", dir, "target", target)

		return
	}

	visited[target] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Warn("Error accessing path, skipping", "path", dir, logger.Err(err))

		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		info, err := resolve(path, entry)
		if err != nil {
			d.log.Warn("Error accessing path, skipping", "path", path, logger.Err(err))

			continue
		}

		if info.IsDir() {
			d.walk(path, visited, files)

			continue
		}

		if !d.IsCandidate(entry.Name()) {
			continue
		}

		if !info.Mode().IsRegular() {
			d.log.Debug("skipping non-regular file", "path", path)

			continue
		}

		*files = append(*files, path)
	}
}

// resolve returns the file info of entry, following it when it is a symlink.
func resolve(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}

	return entry.Info()
}
