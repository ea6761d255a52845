package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var _ Source = (*YouTube)(nil)

// YouTube is the Source implementation over the YouTube innertube API.
type YouTube struct {
	client youtube.Client
}

func NewYouTube() *YouTube {
	return &YouTube{}
}

func (y *YouTube) Probe(ctx context.Context, url string) (*Info, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	formats := make(FormatList, 0, len(video.Formats))
	for _, f := range video.Formats {
		formats = append(formats, normalizeFormat(f))
	}
	return &Info{
		ID:       video.ID,
		Title:    video.Title,
		Duration: video.Duration,
		Formats:  formats,
	}, nil
}

func (y *YouTube) Stream(ctx context.Context, url string, itag int) (io.ReadCloser, int64, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get video info: %w", err)
	}
	format := video.Formats.FindByItag(itag)
	if format == nil {
		return nil, 0, fmt.Errorf("no format with itag %d", itag)
	}
	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stream: %w", err)
	}
	return stream, size, nil
}

func normalizeFormat(f youtube.Format) Format {
	mimeType := strings.SplitN(f.MimeType, ";", 2)[0]
	kind, container := "", mimeType
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 {
		kind, container = parts[0], parts[1]
	}
	return Format{
		Itag:      f.ItagNo,
		Container: container,
		Height:    f.Height,
		Bitrate:   f.Bitrate,
		Size:      f.ContentLength,
		HasVideo:  kind == "video",
		HasAudio:  f.AudioChannels > 0 || kind == "audio",
	}
}
