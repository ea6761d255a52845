// Package split partitions an oversized media file into independently
// playable, time-bounded segments.
package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
)

// Segment is one slice of a split source file. Index is 1-based.
type Segment struct {
	Path  string
	Index int
	Total int
}

// Span is one time range of the split plan.
type Span struct {
	Start    time.Duration
	Duration time.Duration
}

// NumParts returns ceil(size/ceiling).
func NumParts(size, ceiling int64) int {
	return int((size + ceiling - 1) / ceiling)
}

// PlanSpans partitions [0, total] into NumParts(size, ceiling) spans of
// roughly equal duration. The spans tile the total exactly: no gap, no
// overlap, and the final span ends at total even when the uniform part
// duration does not divide it evenly.
func PlanSpans(size, ceiling int64, total time.Duration) []Span {
	n := NumParts(size, ceiling)
	if n < 1 {
		n = 1
	}
	part := total / time.Duration(n)
	spans := make([]Span, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * part
		end := start + part
		if i == n-1 {
			end = total
		}
		spans[i] = Span{Start: start, Duration: end - start}
	}
	return spans
}

type Splitter struct {
	runner *ffmpeg.Runner
	log    *zap.SugaredLogger
}

func New(runner *ffmpeg.Runner) *Splitter {
	return &Splitter{
		runner: runner,
		log:    zap.S().Named("split"),
	}
}

// Split partitions path into segments, each re-encoded into its own playable
// file next to the source. Segment names derive from the index and the
// source basename, so concurrent runs with unique source names cannot
// collide. The source file is left in place; the caller releases it after
// all segments are materialized.
func (s *Splitter) Split(ctx context.Context, path string, ceiling int64) ([]Segment, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, telefetch.NewError(telefetch.KindSplitFailed, err)
	}
	total, err := s.runner.Duration(ctx, path)
	if err != nil {
		return nil, telefetch.NewError(telefetch.KindSplitFailed, err)
	}

	spans := PlanSpans(stat.Size(), ceiling, total)
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	s.log.Infow("splitting oversized file",
		"path", path, "size", stat.Size(), "ceiling", ceiling, "parts", len(spans))

	segments := make([]Segment, 0, len(spans))
	for i, span := range spans {
		segPath := filepath.Join(dir, fmt.Sprintf("part_%d_%s", i+1, base))
		if err := s.runner.Slice(ctx, path, span.Start, span.Duration, segPath); err != nil {
			for _, seg := range segments {
				s.removeQuiet(seg.Path)
			}
			s.removeQuiet(segPath)
			return nil, telefetch.NewError(telefetch.KindSplitFailed, err)
		}
		segments = append(segments, Segment{Path: segPath, Index: i + 1, Total: len(spans)})
	}
	return segments, nil
}

func (s *Splitter) removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warnw("failed to remove segment", "path", path, "error", err)
	}
}
