// Package selector picks the remote format to download for a requested
// quality under a byte-size bound.
package selector

import (
	"context"

	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/media"
)

// DefaultHeight substitutes for a quality label that carries no digits.
const DefaultHeight = 720

const (
	preferredContainer = "mp4"
	// audioContainer is the companion container for the separate audio
	// stream in a split-stream selection ("mp4" audio is m4a).
	audioContainer = "mp4"
)

// FallbackPlan is the synthesized selection when no single remote format
// satisfies every constraint: best video no taller than MaxHeight in
// Container under MaxBytes, merged with the best audio in AudioContainer,
// with a combined single stream under the same bounds as the second attempt.
type FallbackPlan struct {
	MaxHeight      int
	Container      string
	AudioContainer string
	MaxBytes       int64
}

// Selection is either one concrete remote format or a fallback plan for the
// fetcher to try in order. Exactly one field is set.
type Selection struct {
	Exact    *media.Format
	Fallback *FallbackPlan
}

type Selector struct {
	src media.Source
	log *zap.SugaredLogger
}

func New(src media.Source) *Selector {
	return &Selector{
		src: src,
		log: zap.S().Named("selector"),
	}
}

// Select re-queries the formats for url and picks one for the requested
// quality label under maxBytes. A malformed label falls back to
// DefaultHeight; selection itself never aborts on parse. The metadata
// re-query is deliberate: caching the earlier probe could leave a stale
// quality-to-format mapping.
func (s *Selector) Select(ctx context.Context, url string, requested string, maxBytes int64) (Selection, error) {
	quality, ok := telefetch.ParseQuality(requested)
	if !ok {
		s.log.Warnw("invalid quality label, substituting default",
			"requested", requested, "default", DefaultHeight)
		quality = DefaultHeight
	}
	height := quality.Height()

	info, err := s.src.Probe(ctx, url)
	if err != nil {
		return Selection{}, telefetch.NewError(telefetch.KindProbeFailed, err)
	}

	if exact := scanExact(info.Formats, height, maxBytes); exact != nil {
		s.log.Debugw("exact format match", "itag", exact.Itag, "height", height, "size", exact.Size)
		return Selection{Exact: exact}, nil
	}

	s.log.Debugw("no exact format match, synthesizing fallback", "height", height, "max_bytes", maxBytes)
	return Selection{Fallback: &FallbackPlan{
		MaxHeight:      height,
		Container:      preferredContainer,
		AudioContainer: audioContainer,
		MaxBytes:       maxBytes,
	}}, nil
}

// scanExact returns the first format, in remote-reported order, with the
// exact height, the preferred container, both streams, and a known size
// strictly under maxBytes.
func scanExact(formats media.FormatList, height int, maxBytes int64) *media.Format {
	for i := range formats {
		f := formats[i]
		if f.Height == height &&
			f.Container == preferredContainer &&
			f.HasVideo && f.HasAudio &&
			f.Size > 0 && f.Size < maxBytes {
			return &formats[i]
		}
	}
	return nil
}
