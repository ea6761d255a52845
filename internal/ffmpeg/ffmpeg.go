// Package ffmpeg drives the external transcode tool: merging separate
// audio/video streams into one container, probing durations, and re-encoding
// time-bounded slices.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Executor abstracts process execution so tests can fake the transcode tool.
type Executor interface {
	Command(ctx context.Context, name string, arg ...string) Command
}

type Command interface {
	CombinedOutput() ([]byte, error)
}

var _ Executor = BinaryExecutor{}

type BinaryExecutor struct{}

func (BinaryExecutor) Command(ctx context.Context, name string, arg ...string) Command {
	return exec.CommandContext(ctx, name, arg...)
}

// Encoding settings for re-encoded segments.
const (
	videoCodec   = "libx264"
	videoPreset  = "medium"
	videoCRF     = "23"
	audioCodec   = "aac"
	audioBitrate = "128k"
)

type Runner struct {
	ffmpegPath  string
	ffprobePath string
	exec        Executor
	log         *zap.SugaredLogger
}

// NewRunner resolves the given tool paths against PATH when they are bare
// names; unresolved names are kept as-is and will fail on first use.
func NewRunner(ffmpegPath, ffprobePath string, executor Executor) *Runner {
	if resolved, err := exec.LookPath(ffmpegPath); err == nil {
		ffmpegPath = resolved
	}
	if resolved, err := exec.LookPath(ffprobePath); err == nil {
		ffprobePath = resolved
	}
	return &Runner{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		exec:        executor,
		log:         zap.S().Named("ffmpeg"),
	}
}

// Merge remuxes a video stream and an audio stream into one mp4 file.
func (r *Runner) Merge(ctx context.Context, videoPath, audioPath, outPath string) error {
	return r.runFFmpeg(ctx,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", audioCodec,
		"-movflags", "+faststart",
		outPath,
	)
}

// Slice re-encodes the [start, start+duration) range of inPath into an
// independently playable mp4 file.
func (r *Runner) Slice(ctx context.Context, inPath string, start, duration time.Duration, outPath string) error {
	return r.runFFmpeg(ctx,
		"-y",
		"-ss", formatSeconds(start),
		"-i", inPath,
		"-t", formatSeconds(duration),
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		outPath,
	)
}

// Duration reads the total duration of a media file.
func (r *Runner) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := r.exec.Command(ctx, r.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.log.Warnw("ffprobe failed", "path", path, "output", string(output), "error", err)
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable ffprobe duration %q: %w", string(output), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (r *Runner) runFFmpeg(ctx context.Context, args ...string) error {
	cmd := r.exec.Command(ctx, r.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.log.Warnw("ffmpeg failed", "args", args, "output", string(output), "error", err)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
