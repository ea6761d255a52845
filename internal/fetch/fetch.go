// Package fetch downloads the selected remote format into the local staging
// area, producing a single normalized mp4 file.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
	"github.com/telefetch/telefetch/internal/media"
	"github.com/telefetch/telefetch/internal/selector"
)

// File is a fetched local media file. The caller owns it from here on: it
// must be deleted exactly once, after delivery resolves.
type File struct {
	Path  string
	Title string
}

type Fetcher struct {
	src        media.Source
	runner     *ffmpeg.Runner
	stagingDir string
	progress   func(downloaded, expected int64)
	log        *zap.SugaredLogger
}

type Option func(*Fetcher)

// WithProgress registers a callback invoked as stream bytes arrive.
func WithProgress(f func(downloaded, expected int64)) Option {
	return func(fe *Fetcher) {
		fe.progress = f
	}
}

func New(src media.Source, runner *ffmpeg.Runner, stagingDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:        src,
		runner:     runner,
		stagingDir: stagingDir,
		log:        zap.S().Named("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads sel into the staging area. File names embed a fresh UUID,
// so concurrent fetches never collide without any locking.
func (f *Fetcher) Fetch(ctx context.Context, url string, sel selector.Selection) (File, error) {
	if err := os.MkdirAll(f.stagingDir, 0755); err != nil {
		return File{}, telefetch.NewError(telefetch.KindFetchFailed, err)
	}

	info, err := f.src.Probe(ctx, url)
	if err != nil {
		f.log.Warnw("fetch probe failed", "url", url, "error", err)
		return File{}, telefetch.NewError(telefetch.KindFetchFailed, err)
	}

	base := uuid.NewString()
	outPath := filepath.Join(f.stagingDir, base+".mp4")

	switch {
	case sel.Exact != nil:
		err = f.saveStream(ctx, url, sel.Exact.Itag, outPath)
	case sel.Fallback != nil:
		err = f.fetchFallback(ctx, url, info.Formats, *sel.Fallback, base, outPath)
	default:
		err = fmt.Errorf("empty selection")
	}
	if err != nil {
		f.log.Warnw("fetch failed", "url", url, "error", err)
		removeQuiet(f.log, outPath)
		return File{}, telefetch.NewError(telefetch.KindFetchFailed, err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return File{}, telefetch.Errorf(telefetch.KindFetchFailed, "output missing after download: %v", err)
	}
	return File{Path: outPath, Title: info.Title}, nil
}

// fetchFallback works through the fallback plan: best matching video stream
// merged with best audio first, then the best combined single stream.
func (f *Fetcher) fetchFallback(ctx context.Context, url string, formats media.FormatList, plan selector.FallbackPlan, base, outPath string) error {
	constrained := formats.Container(plan.Container).MaxHeight(plan.MaxHeight).UnderSize(plan.MaxBytes)

	video, haveVideo := constrained.VideoOnly().Best()
	audio, haveAudio := formats.AudioOnly().Container(plan.AudioContainer).Best()
	if haveVideo && haveAudio {
		if err := f.mergePair(ctx, url, video, audio, plan, base, outPath); err == nil {
			return nil
		} else {
			f.log.Warnw("split-stream fetch failed, trying single stream", "url", url, "error", err)
		}
	}

	combined, ok := constrained.WithBothStreams().Best()
	if !ok {
		return fmt.Errorf("no remote format satisfies height<=%d %s under %d bytes",
			plan.MaxHeight, plan.Container, plan.MaxBytes)
	}
	return f.saveStream(ctx, url, combined.Itag, outPath)
}

func (f *Fetcher) mergePair(ctx context.Context, url string, video, audio media.Format, plan selector.FallbackPlan, base, outPath string) error {
	videoPath := filepath.Join(f.stagingDir, base+".video."+plan.Container)
	audioPath := filepath.Join(f.stagingDir, base+".audio."+plan.AudioContainer)
	defer removeQuiet(f.log, videoPath)
	defer removeQuiet(f.log, audioPath)

	if err := f.saveStream(ctx, url, video.Itag, videoPath); err != nil {
		return err
	}
	if err := f.saveStream(ctx, url, audio.Itag, audioPath); err != nil {
		return err
	}
	return f.runner.Merge(ctx, videoPath, audioPath, outPath)
}

func (f *Fetcher) saveStream(ctx context.Context, url string, itag int, path string) error {
	stream, size, err := f.src.Stream(ctx, url, itag)
	if err != nil {
		return err
	}
	defer stream.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	counter := &progressWriter{expected: size, notify: f.progress}
	if _, err := io.Copy(io.MultiWriter(out, counter), &ctxReader{ctx: ctx, r: stream}); err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}
	return nil
}

func removeQuiet(log *zap.SugaredLogger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnw("failed to remove staging file", "path", path, "error", err)
	}
}

// progressWriter ignores the data but forwards running byte counts.
type progressWriter struct {
	downloaded int64
	expected   int64
	notify     func(downloaded, expected int64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.downloaded += int64(len(p))
	if w.notify != nil {
		w.notify(w.downloaded, w.expected)
	}
	return len(p), nil
}

// A context-aware io.Reader wrapper.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
