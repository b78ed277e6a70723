// =============================================================================
// Sales Data Processor - Pipeline
// =============================================================================
//
// The pipeline processes one input file from start to finish.
//
// PROCESSING STEPS:
//   1. Read the file into raw records (source)
//   2. Validate and enrich the records (engine)
//   3. Write the reports (report)
//   4. Archive the input file
//
// Steps 3 and 4 are skipped in dry-run mode. Report names are reserved per
// run, so inputs sharing a base name get distinct reports. A failure in step 1 or 3 fails
// the file; an archival failure is logged and does not.
//
// CONCURRENCY:
//   RunAll processes several files at once, bounded by max_concurrency. Each
//   file gets its own engine run, so records of different files never mix.
//
// =============================================================================

package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/engine"
	"github.com/ginjaninja78/sales-data-processor/internal/report"
	"github.com/ginjaninja78/sales-data-processor/internal/source"
	"github.com/ginjaninja78/sales-data-processor/internal/types"
	"github.com/ginjaninja78/sales-data-processor/pkg/utils"
)

// ErrAborted marks files that were not started because an earlier file
// failed and continue_on_error is off.
var ErrAborted = errors.New("processing aborted after an earlier failure")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file that was processed.
	FilePath string

	// OutputFiles are the reports written, empty in dry-run mode.
	OutputFiles []string

	// ArchivePath is where the input file was moved, if archived.
	ArchivePath string

	// Success is false when the file could not be read or reported.
	Success bool

	// Error holds the failure, nil on success.
	Error error

	// Records are the enriched records of the file.
	Records []types.EnrichedRecord

	// Summary holds the engine counters for the file.
	Summary types.Summary

	// Rejections counts rejected records per rule.
	Rejections map[engine.Rule]int

	// Skipped lists rows the source discarded.
	Skipped []source.Diagnostic

	// ProcessingTime is the wall time spent on the file.
	ProcessingTime time.Duration
}

// Options controls optional pipeline steps.
type Options struct {
	// DryRun reads and validates but writes and archives nothing.
	DryRun bool

	// Archive moves the input file to the archive directory on success.
	Archive bool
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs the pipeline with one configuration.
type Processor struct {
	cfg     *config.Config
	files   *utils.FileManager
	logger  logrus.FieldLogger
	runID   string
	options Options
	now     func() time.Time
}

// New creates a Processor. runID is recorded in every report.
func New(cfg *config.Config, logger logrus.FieldLogger, runID string, options Options) *Processor {
	return &Processor{
		cfg:     cfg,
		files:   utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ArchiveDir),
		logger:  logger.WithField("run_id", runID),
		runID:   runID,
		options: options,
		now:     time.Now,
	}
}

// Run processes one file.
func (p *Processor) Run(path string) (result Result) {
	startTime := p.now()
	log := p.logger.WithField("file", path)
	result = Result{FilePath: path}

	defer func() {
		result.ProcessingTime = p.now().Sub(startTime)
	}()

	// =========================================================================
	// STEP 1: READ
	// =========================================================================

	log.Debug("Reading source file")

	batch, err := source.ReadFile(path, p.cfg.Source)
	if err != nil {
		log.WithError(err).Error("Failed to read source file")
		result.Error = fmt.Errorf("failed to read source: %w", err)
		return result
	}

	for _, d := range batch.Diagnostics {
		log.WithFields(logrus.Fields{
			"line":     d.Line,
			"fields":   d.Fields,
			"expected": d.Expected,
		}).Warn("Skipping invalid row")
	}
	result.Skipped = batch.Diagnostics

	// =========================================================================
	// STEP 2: VALIDATE AND ENRICH
	// =========================================================================

	run := engine.Run(batch.Records)
	result.Records = run.Records
	result.Summary = run.Summary
	result.Rejections = run.Rejections

	fields := logrus.Fields{
		"lines":        batch.Lines,
		"skipped_rows": len(batch.Diagnostics),
	}
	for counter, n := range run.Summary.Map() {
		fields[counter] = n
	}
	log.WithFields(fields).Info("Validation complete")

	if p.options.DryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 3: WRITE REPORTS
	// =========================================================================

	rep := &report.Report{
		RunID:      p.runID,
		Source:     path,
		Headers:    batch.Headers,
		Records:    run.Records,
		Summary:    run.Summary,
		Rejections: ruleCounts(run.Rejections),
		Skipped:    batch.Diagnostics,
		StartedAt:  startTime,
		FinishedAt: p.now(),
	}

	baseName := utils.GenerateOutputFileName(p.cfg.OutputNameFormat, map[string]string{
		"original": utils.BaseName(path),
		"run":      p.runID,
	})
	baseName = p.files.ReserveOutputName(baseName, p.cfg.OutputFormats)

	written, err := report.Write(rep, p.cfg.OutputDir, baseName, p.cfg.OutputFormats)
	result.OutputFiles = written
	if err != nil {
		log.WithError(err).Error("Failed to write reports")
		result.Error = err
		return result
	}

	for _, out := range written {
		log.WithField("output", out).Debug("Wrote report")
	}

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	if p.options.Archive && p.cfg.ArchiveDir != "" {
		archived, err := p.files.ArchiveInputFile(path)
		if err != nil {
			log.WithError(err).Warn("Failed to archive input file")
		} else {
			result.ArchivePath = archived
			log.WithField("archive", archived).Debug("Archived input file")
		}
	}

	result.Success = true
	return result
}

// RunAll processes files concurrently and returns the results in the same
// order as paths. When continue_on_error is off, files not yet started after
// a failure are reported with ErrAborted.
func (p *Processor) RunAll(paths []string) []Result {
	results := make([]Result, len(paths))

	limit := p.cfg.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var (
		wg      sync.WaitGroup
		aborted atomic.Bool
	)

	for i, path := range paths {
		sem <- struct{}{}

		if aborted.Load() {
			<-sem
			results[i] = Result{FilePath: path, Error: ErrAborted}
			continue
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = p.Run(path)
			if !results[i].Success && !p.cfg.KeepGoing() {
				aborted.Store(true)
			}
		}(i, path)
	}

	wg.Wait()
	return results
}

// ruleCounts converts a rule breakdown into plain string keys for reports.
func ruleCounts(in map[engine.Rule]int) map[string]int {
	out := make(map[string]int, len(in))
	for rule, n := range in {
		out[string(rule)] = n
	}
	return out
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals aggregates results across files.
type Totals struct {
	Files      int
	Succeeded  int
	Failed     int
	Skipped    int
	Summary    types.Summary
	Rejections map[engine.Rule]int
}

// Aggregate sums up a set of results.
func Aggregate(results []Result) Totals {
	totals := Totals{
		Files:      len(results),
		Rejections: make(map[engine.Rule]int),
	}

	for _, r := range results {
		if r.Success {
			totals.Succeeded++
		} else {
			totals.Failed++
		}
		totals.Skipped += len(r.Skipped)
		totals.Summary.Add(r.Summary)
		for rule, n := range r.Rejections {
			totals.Rejections[rule] += n
		}
	}

	return totals
}
