package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"empfmt/internal/config"
	"empfmt/internal/logger"
	"empfmt/internal/metrics"
	"empfmt/internal/normalizer"
)

// ErrFilesFailed is returned by Run when at least one file could not be processed.
var ErrFilesFailed = errors.New("some files failed to process")

// Summary is the outcome of a whole run.
type Summary struct {
	RunID              string
	Root               string
	Files              []*FileResult
	FilesProcessed     int
	FilesFailed        int
	EmployeesFormatted int
	EmployeesRejected  int
	Duration           time.Duration
}

// Runner drives discovery and file processing for one root path.
type Runner struct {
	discoverer *Discoverer
	files      *FileProcessor
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewRunner wires a runner from configuration. m may be nil.
func NewRunner(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *Runner {
	processor := normalizer.NewProcessor(cfg, log)

	return &Runner{
		discoverer: NewDiscoverer(cfg.Output.Suffix, log),
		files:      NewFileProcessor(processor, cfg.Output.Suffix, cfg.Output.Indent, log),
		metrics:    m,
		log:        log,
	}
}

// Run processes every candidate file under root, strictly in order.
//
// Path-level problems (ErrNotFound, ErrAlreadyFormatted, ErrNoValidFiles) are
// returned before anything is written. A file that fails to parse is logged
// and skipped; the run then finishes and returns the summary with ErrFilesFailed.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With("run_id", runID)

	sum := &Summary{RunID: runID, Root: root}

	found, err := r.discoverer.Discover(root)
	if err != nil {
		return sum, err
	}

	if err := found.Err(); err != nil {
		return sum, err
	}

	log.Info("starting run", "root", root, "files", len(found.Files))

	for _, path := range found.Files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := r.files.WithLogger(log).ProcessFile(ctx, path)
		sum.Files = append(sum.Files, res)
		r.observeFile(res)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return sum, ctxErr
			}

			log.Error("Failed to process file", "file", path, logger.Err(err))
			sum.FilesFailed++

			continue
		}

		if res.Counted() {
			sum.FilesProcessed++
			sum.EmployeesFormatted += res.Accepted
			sum.EmployeesRejected += res.RejectedTotal()
		}
	}

	sum.Duration = time.Since(start)
	r.observeRun(sum)

	log.Info("run finished",
		"files_processed", sum.FilesProcessed,
		"files_failed", sum.FilesFailed,
		"employees_formatted", sum.EmployeesFormatted,
		"employees_rejected", sum.EmployeesRejected,
		"duration", sum.Duration.String(),
	)

	if sum.FilesFailed > 0 {
		return sum, fmt.Errorf("%w: %d of %d", ErrFilesFailed, sum.FilesFailed, len(found.Files))
	}

	return sum, nil
}

func (r *Runner) observeFile(res *FileResult) {
	if r.metrics == nil {
		return
	}

	r.metrics.Files.WithLabelValues(string(res.Status)).Inc()

	if !res.Counted() {
		return
	}

	r.metrics.Employees.WithLabelValues("accepted").Add(float64(res.Accepted))
	r.metrics.Employees.WithLabelValues("rejected").Add(float64(res.RejectedTotal()))

	for reason, n := range res.Rejected {
		r.metrics.RejectedEmployees.WithLabelValues(string(reason)).Add(float64(n))
	}
}

func (r *Runner) observeRun(sum *Summary) {
	if r.metrics == nil {
		return
	}

	r.metrics.RunDuration.Set(sum.Duration.Seconds())
	r.metrics.LastRun.SetToCurrentTime()
}
