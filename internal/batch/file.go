package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"empfmt/internal/logger"
	"empfmt/internal/models"
	"empfmt/internal/normalizer"
)

// ErrNotAnArray is returned when a file's top-level JSON value is not an array.
var ErrNotAnArray = errors.New("file does not contain a list of employees")

// FileStatus describes what happened to one input file.
type FileStatus string

// File statuses.
const (
	StatusWritten  FileStatus = "written"
	StatusNotArray FileStatus = "not_array"
	StatusEmpty    FileStatus = "empty"
	StatusFailed   FileStatus = "failed"
)

// FileResult summarizes the processing of one input file.
type FileResult struct {
	Path     string
	Output   string
	Status   FileStatus
	Records  int
	Accepted int
	Rejected map[normalizer.Reason]int
	Err      error
}

// Counted reports whether the file counts as processed in the run summary.
func (r *FileResult) Counted() bool {
	return r.Status == StatusWritten
}

// RejectedTotal returns the number of rejected records.
func (r *FileResult) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}

	return total
}

// FileProcessor reads one employee file, processes it and writes the formatted sibling.
type FileProcessor struct {
	processor *normalizer.Processor
	suffix    string
	indent    string
	log       *logger.Logger
}

// NewFileProcessor creates a file processor. indent is the number of spaces per level.
func NewFileProcessor(p *normalizer.Processor, suffix string, indent int, log *logger.Logger) *FileProcessor {
	return &FileProcessor{
		processor: p,
		suffix:    suffix,
		indent:    strings.Repeat(" ", indent),
		log:       log,
	}
}

// WithLogger returns a copy of the file processor that logs to log.
func (fp *FileProcessor) WithLogger(log *logger.Logger) *FileProcessor {
	cp := *fp
	cp.log = log

	return &cp
}

// OutputPath returns the sibling output path for path: the base name without
// its extension, followed by suffix, in the same directory.
func OutputPath(path, suffix string) string {
	dir, base := filepath.Split(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, stem+suffix)
}

// ProcessFile runs every record of path through the normalizer. A file whose
// top-level value is not an array, or an empty array, produces no output and
// is not counted. Malformed JSON is returned as an error.
func (fp *FileProcessor) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	log := fp.log.With("file", path)
	res := &FileResult{Path: path}

	records, err := ReadEmployees(path)
	if err != nil {
		if errors.Is(err, ErrNotAnArray) {
			log.Warn(fmt.Sprintf("Warning: The file %s does not contain a list of employees.", path))
			res.Status = StatusNotArray

			return res, nil
		}

		res.Status = StatusFailed
		res.Err = err

		return res, err
	}

	res.Records = len(records)

	if len(records) == 0 {
		log.Info("file has no employee entries, nothing to write")
		res.Status = StatusEmpty

		return res, nil
	}

	batch, err := fp.processor.WithLogger(log).ProcessAll(ctx, records)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err

		return res, err
	}

	res.Accepted = len(batch.Accepted)
	res.Rejected = batch.Rejected
	res.Output = OutputPath(path, fp.suffix)

	if err := WriteEmployees(res.Output, batch.Accepted, fp.indent); err != nil {
		res.Status = StatusFailed
		res.Err = err

		return res, err
	}

	res.Status = StatusWritten

	log.Info("file formatted",
		"output", res.Output,
		"accepted", res.Accepted,
		"rejected", res.RejectedTotal(),
	)

	return res, nil
}

// ReadEmployees parses path as a JSON array of employee objects. Elements that
// are not objects come back as nil so the caller can reject them in place.
func ReadEmployees(path string) ([]*models.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if top[0] != '[' {
		return nil, fmt.Errorf("%w: %s", ErrNotAnArray, path)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(top, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	records := make([]*models.Employee, len(items))

	for i, item := range items {
		if len(item) == 0 || item[0] != '{' {
			continue
		}

		var e models.Employee
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, fmt.Errorf("failed to parse %s entry %d: %w", path, i, err)
		}

		records[i] = &e
	}

	return records, nil
}

// WriteEmployees writes records to path as an indented JSON array.
func WriteEmployees(path string, records []*models.Employee, indent string) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)

	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
