package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
)

func TestNumParts(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal(1, NumParts(45, 45))
	assert.Equal(2, NumParts(46, 45))
	assert.Equal(3, NumParts(120, 45))
	assert.Equal(3, NumParts(135, 45))
	assert.Equal(4, NumParts(136, 45))
}

func TestPlanSpans(t *testing.T) {
	assert := assert_.New(t)

	// 120MB over a 45MB ceiling: 3 parts.
	total := 10*time.Minute + 1*time.Nanosecond
	spans := PlanSpans(120<<20, 45<<20, total)
	assert.Len(spans, 3)

	// Spans tile [0, total] exactly: no gap, no overlap, clamped tail.
	var cursor, sum time.Duration
	for _, span := range spans {
		assert.Equal(cursor, span.Start)
		cursor += span.Duration
		sum += span.Duration
	}
	assert.Equal(total, sum)
	assert.Equal(total, spans[2].Start+spans[2].Duration)
}

func TestPlanSpansSinglePart(t *testing.T) {
	assert := assert_.New(t)

	spans := PlanSpans(10<<20, 45<<20, time.Minute)
	assert.Len(spans, 1)
	assert.Equal(Span{Start: 0, Duration: time.Minute}, spans[0])
}

// sliceExecutor fakes ffprobe (fixed duration) and ffmpeg (creates the
// output file, optionally failing on a chosen call).
type sliceExecutor struct {
	duration string
	failOn   int
	slices   int
}

type sliceCommand struct {
	executor *sliceExecutor
	name     string
	args     []string
}

func (c sliceCommand) CombinedOutput() ([]byte, error) {
	if len(c.args) > 0 && c.args[0] == "-v" {
		// ffprobe
		return []byte(c.executor.duration + "\n"), nil
	}
	c.executor.slices++
	if c.executor.failOn == c.executor.slices {
		return []byte("boom"), fmt.Errorf("exit status 1")
	}
	return nil, os.WriteFile(c.args[len(c.args)-1], []byte("segment"), 0644)
}

func (e *sliceExecutor) Command(ctx context.Context, name string, arg ...string) ffmpeg.Command {
	return sliceCommand{executor: e, name: name, args: arg}
}

func writeSourceFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc123.mp4")
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplit(t *testing.T) {
	assert := assert_.New(t)

	path := writeSourceFile(t, 1000)
	runner := ffmpeg.NewRunner("ffmpeg", "ffprobe", &sliceExecutor{duration: "300.0"})
	segments, err := New(runner).Split(context.Background(), path, 400)

	assert.NoError(err)
	assert.Len(segments, 3)
	for i, seg := range segments {
		assert.Equal(i+1, seg.Index)
		assert.Equal(3, seg.Total)
		assert.Equal(fmt.Sprintf("part_%d_abc123.mp4", i+1), filepath.Base(seg.Path))
		_, err := os.Stat(seg.Path)
		assert.NoError(err)
	}
	// The source file is still in place; the caller releases it.
	_, err = os.Stat(path)
	assert.NoError(err)
}

func TestSplitSliceFailure(t *testing.T) {
	assert := assert_.New(t)

	path := writeSourceFile(t, 1000)
	runner := ffmpeg.NewRunner("ffmpeg", "ffprobe", &sliceExecutor{duration: "300.0", failOn: 2})
	segments, err := New(runner).Split(context.Background(), path, 400)

	assert.Nil(segments)
	assert.Equal(telefetch.KindSplitFailed, telefetch.KindOf(err))
	// Already-materialized segments are removed on failure.
	entries, readErr := os.ReadDir(filepath.Dir(path))
	assert.NoError(readErr)
	assert.Len(entries, 1)
}

func TestSplitMissingSource(t *testing.T) {
	assert := assert_.New(t)

	runner := ffmpeg.NewRunner("ffmpeg", "ffprobe", &sliceExecutor{duration: "300.0"})
	_, err := New(runner).Split(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), 400)
	assert.Equal(telefetch.KindSplitFailed, telefetch.KindOf(err))
}
