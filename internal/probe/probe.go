// Package probe discovers the title and viewer-selectable qualities of a
// remote video without downloading any media.
package probe

import (
	"context"

	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/generic"
	"github.com/telefetch/telefetch/internal/media"
)

// commonHeights is the fixed allow-list of heights that count as qualities
// even when only seen on formats outside the combined/mp4 sets.
var commonHeights = generic.NewSet(144, 240, 360, 480, 720, 1080)

// fallbackQualities is used verbatim when no quality can be derived at all.
var fallbackQualities = telefetch.QualityList{360, 720}

const preferredContainer = "mp4"

type Probe struct {
	src media.Source
	log *zap.SugaredLogger
}

func New(src media.Source) *Probe {
	return &Probe{
		src: src,
		log: zap.S().Named("probe"),
	}
}

// Validate issues a no-download metadata query and reports whether the URL
// resolves to a usable video. Any failure is logged and reported as false.
func (p *Probe) Validate(ctx context.Context, url string) bool {
	if _, err := p.src.Probe(ctx, url); err != nil {
		p.log.Infow("validation failed", "url", url, "error", err)
		return false
	}
	return true
}

// FetchInfo queries the remote source once and derives the available
// qualities. Results are never partial: any failure yields only an error.
func (p *Probe) FetchInfo(ctx context.Context, url string) (*telefetch.VideoMetadata, error) {
	info, err := p.src.Probe(ctx, url)
	if err != nil {
		p.log.Infow("probe failed", "url", url, "error", err)
		return nil, telefetch.NewError(telefetch.KindProbeFailed, err)
	}
	return &telefetch.VideoMetadata{
		Title:     info.Title,
		Qualities: availableQualities(info.Formats),
	}, nil
}

// availableQualities derives the quality set from three sources: formats
// with both streams, video-only formats in the preferred container, and the
// common-height allow-list cross-checked against all observed heights.
func availableQualities(formats media.FormatList) telefetch.QualityList {
	heights := generic.NewSet[int]()
	for _, f := range formats {
		if f.Height <= 0 {
			continue
		}
		if f.HasVideo && f.HasAudio {
			heights.Add(f.Height)
		} else if f.HasVideo && f.Container == preferredContainer {
			heights.Add(f.Height)
		}
	}
	for _, f := range formats {
		if f.Height > 0 && commonHeights.Contains(f.Height) {
			heights.Add(f.Height)
		}
	}

	if heights.Count() == 0 {
		return append(telefetch.QualityList{}, fallbackQualities...)
	}
	qualities := make(telefetch.QualityList, 0, heights.Count())
	for _, h := range heights.ToSlice() {
		qualities = append(qualities, telefetch.Quality(h))
	}
	qualities.SortDescending()
	return qualities
}
