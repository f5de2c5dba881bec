package extract

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of extracting one file in a batch.
type FileResult struct {
	Path    string
	Methods []MethodRecord
	// Err is the *ExtractionError for this file, nil on success.
	Err error
}

// BatchResult holds per-file results in the order the paths were given.
type BatchResult struct {
	Files []FileResult
}

// Methods returns the records for every successfully extracted file.
func (b *BatchResult) Methods() map[string][]MethodRecord {
	out := make(map[string][]MethodRecord, len(b.Files))
	for _, f := range b.Files {
		if f.Err == nil {
			out[f.Path] = f.Methods
		}
	}
	return out
}

// Errors returns the per-file failures in input order.
func (b *BatchResult) Errors() []error {
	var errs []error
	for _, f := range b.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Batch runs a over paths in parallel, bounded by concurrency (<= 0 means
// the default). A file that fails extraction is recorded in its FileResult
// and does not affect the others. The returned error is non-nil only when
// ctx is cancelled before the batch finishes.
//
// onProgress is called from worker goroutines; it may be nil.
func Batch(ctx context.Context, a Adapter, paths []string, concurrency int, onProgress func(ProgressEvent)) (*BatchResult, error) {
	emit := func(ev ProgressEvent) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Options{Concurrency: concurrency}.concurrency())

	for _, path := range paths {
		emit(ProgressEvent{Path: path, Status: ProgressPending})
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(ProgressEvent{Path: path, Status: ProgressWorking})

			methods, err := a.Extract(gctx, path)
			if err != nil {
				var ee *ExtractionError
				if !errors.As(err, &ee) {
					// Cancellation, not a per-file failure.
					return err
				}
				results[i] = FileResult{Path: path, Err: err}
				emit(ProgressEvent{Path: path, Status: ProgressFailed, Message: err.Error()})
				return nil
			}

			results[i] = FileResult{Path: path, Methods: methods}
			emit(ProgressEvent{Path: path, Status: ProgressComplete, Methods: len(methods)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &BatchResult{Files: results}, nil
}
