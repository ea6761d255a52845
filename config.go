package telefetch

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config carries the tunables shared across the pipeline stages.
type Config struct {
	// StagingDir is where fetched files and their segments live until
	// delivered.
	StagingDir string
	// UploadLimit is the transport's hard per-file size limit in bytes;
	// files above it are split.
	UploadLimit int64
	// SizeMargin is headroom subtracted from UploadLimit when selecting a
	// format, absorbing container overhead between the advertised stream
	// size and the final file.
	SizeMargin int64

	FFmpegPath  string
	FFprobePath string

	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	SendTimeout  time.Duration
}

var DefaultConfig = Config{
	StagingDir:   "downloads",
	UploadLimit:  50 << 20,
	SizeMargin:   5 << 20,
	FFmpegPath:   "ffmpeg",
	FFprobePath:  "ffprobe",
	ProbeTimeout: 30 * time.Second,
	FetchTimeout: 10 * time.Minute,
	SendTimeout:  5 * time.Minute,
}

// SelectLimit is the size ceiling used when picking a format that should
// fit a single upload without splitting.
func (c Config) SelectLimit() int64 {
	return c.UploadLimit - c.SizeMargin
}

// Validate reports every problem with the config, not just the first.
func (c Config) Validate() error {
	var result error
	if c.StagingDir == "" {
		result = multierror.Append(result, fmt.Errorf("staging dir must not be empty"))
	}
	if c.UploadLimit <= 0 {
		result = multierror.Append(result, fmt.Errorf("upload limit must be positive, got %d", c.UploadLimit))
	}
	if c.SizeMargin < 0 {
		result = multierror.Append(result, fmt.Errorf("size margin must not be negative, got %d", c.SizeMargin))
	}
	if c.SizeMargin >= c.UploadLimit {
		result = multierror.Append(result, fmt.Errorf("size margin %d leaves no room under upload limit %d", c.SizeMargin, c.UploadLimit))
	}
	if c.FFmpegPath == "" {
		result = multierror.Append(result, fmt.Errorf("ffmpeg path must not be empty"))
	}
	if c.FFprobePath == "" {
		result = multierror.Append(result, fmt.Errorf("ffprobe path must not be empty"))
	}
	return result
}
