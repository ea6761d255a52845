// Package media defines the normalized view of a remote video source: a
// title, a duration, and the set of downloadable formats.
package media

import (
	"context"
	"io"
	"time"
)

// Format describes one downloadable remote format.
type Format struct {
	// Itag identifies the format to the remote source.
	Itag int
	// Container is the file extension implied by the MIME subtype ("mp4",
	// "webm", ...).
	Container string
	Height    int
	Bitrate   int
	// Size is the remote-reported byte size, or 0 when unknown.
	Size     int64
	HasVideo bool
	HasAudio bool
}

type FormatList []Format

// Info is the result of one metadata probe. It is never cached; every probe
// re-queries the remote source.
type Info struct {
	ID       string
	Title    string
	Duration time.Duration
	Formats  FormatList
}

// Source is the remote video source API: metadata without download, and
// per-format streaming.
type Source interface {
	Probe(ctx context.Context, url string) (*Info, error)
	// Stream opens the media stream for one format, returning its expected
	// size in bytes.
	Stream(ctx context.Context, url string, itag int) (io.ReadCloser, int64, error)
}

func (l FormatList) filter(pred func(Format) bool) FormatList {
	res := FormatList{}
	for _, f := range l {
		if pred(f) {
			res = append(res, f)
		}
	}
	return res
}

// WithBothStreams keeps formats that carry audio and video together.
func (l FormatList) WithBothStreams() FormatList {
	return l.filter(func(f Format) bool { return f.HasVideo && f.HasAudio })
}

// VideoOnly keeps formats that carry a video stream but no audio.
func (l FormatList) VideoOnly() FormatList {
	return l.filter(func(f Format) bool { return f.HasVideo && !f.HasAudio })
}

// AudioOnly keeps formats that carry an audio stream but no video.
func (l FormatList) AudioOnly() FormatList {
	return l.filter(func(f Format) bool { return f.HasAudio && !f.HasVideo })
}

// Container keeps formats in the given container.
func (l FormatList) Container(ext string) FormatList {
	return l.filter(func(f Format) bool { return f.Container == ext })
}

// MaxHeight keeps formats no taller than h.
func (l FormatList) MaxHeight(h int) FormatList {
	return l.filter(func(f Format) bool { return f.Height <= h })
}

// UnderSize keeps formats whose reported size is known and strictly under n.
func (l FormatList) UnderSize(n int64) FormatList {
	return l.filter(func(f Format) bool { return f.Size > 0 && f.Size < n })
}

// Best returns the format with the greatest height, breaking ties by
// bitrate. ok is false for an empty list.
func (l FormatList) Best() (best Format, ok bool) {
	for _, f := range l {
		if !ok || f.Height > best.Height || (f.Height == best.Height && f.Bitrate > best.Bitrate) {
			best = f
			ok = true
		}
	}
	return best, ok
}
