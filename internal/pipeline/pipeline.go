// Package pipeline coordinates one download-and-delivery sequence: resolve,
// probe, select, fetch, split when oversized, deliver, clean up.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/deliver"
	"github.com/telefetch/telefetch/internal/fetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
	"github.com/telefetch/telefetch/internal/media"
	"github.com/telefetch/telefetch/internal/probe"
	"github.com/telefetch/telefetch/internal/resolve"
	"github.com/telefetch/telefetch/internal/selector"
	"github.com/telefetch/telefetch/internal/split"
)

type Pipeline struct {
	cfg      telefetch.Config
	probe    *probe.Probe
	selector *selector.Selector
	fetcher  *fetch.Fetcher
	splitter *split.Splitter
	log      *zap.SugaredLogger
}

func New(cfg telefetch.Config, src media.Source, runner *ffmpeg.Runner, fetchOpts ...fetch.Option) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		probe:    probe.New(src),
		selector: selector.New(src),
		fetcher:  fetch.New(src, runner, cfg.StagingDir, fetchOpts...),
		splitter: split.New(runner),
		log:      zap.S().Named("pipeline"),
	}
}

// Inspect validates the URL and discovers the title and selectable
// qualities. No media is downloaded.
func (p *Pipeline) Inspect(ctx context.Context, rawURL string) (*telefetch.VideoMetadata, error) {
	if id := resolve.ExtractVideoID(rawURL); id.IsNone() {
		return nil, telefetch.NewError(telefetch.KindUnrecognizedURL, nil)
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()
	if !p.probe.Validate(probeCtx, rawURL) {
		return nil, telefetch.NewError(telefetch.KindProbeFailed, nil)
	}
	meta, err := p.probe.FetchInfo(probeCtx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(meta.Qualities) == 0 {
		return nil, telefetch.NewError(telefetch.KindNoQualities, nil)
	}
	return meta, nil
}

// Download runs the full pipeline for one (url, quality) request, editing
// status along the way and delivering through transport. The returned error
// is for the caller's control flow; user-facing text has already been placed
// on status. A panic anywhere in the pipeline is contained here so the
// caller's interaction loop keeps running.
func (p *Pipeline) Download(ctx context.Context, rawURL, quality string, status deliver.Status, transport deliver.Transport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("pipeline panicked", "url", rawURL, "panic", r)
			err = telefetch.Errorf(telefetch.KindUnknown, "panic: %v", r)
			status.Update(UserMessage(err))
		}
	}()

	status.Update("⏳ Downloading... This might take a few minutes.")

	selectCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	sel, err := p.selector.Select(selectCtx, rawURL, quality, p.cfg.SelectLimit())
	cancel()
	if err != nil {
		status.Update(UserMessage(err))
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	file, err := p.fetcher.Fetch(fetchCtx, rawURL, sel)
	cancel()
	if err != nil {
		status.Update(UserMessage(err))
		return err
	}
	// The staged source is released no matter how the rest goes; delete of
	// an already-delivered (and removed) file is a no-op.
	defer p.removeQuiet(file.Path)

	status.Update("📤 Processing video...")
	stat, err := os.Stat(file.Path)
	if err != nil {
		err = telefetch.NewError(telefetch.KindFetchFailed, err)
		status.Update(UserMessage(err))
		return err
	}

	var units []deliver.Unit
	if stat.Size() > p.cfg.UploadLimit {
		parts := split.NumParts(stat.Size(), p.cfg.UploadLimit)
		status.Update(fmt.Sprintf("Video is too large, splitting into %d parts...", parts))
		segments, err := p.splitter.Split(ctx, file.Path, p.cfg.UploadLimit)
		if err != nil {
			status.Update(UserMessage(err))
			return err
		}
		for _, seg := range segments {
			units = append(units, deliver.Unit{
				Path:    seg.Path,
				Caption: fmt.Sprintf("✅ %s (Part %d/%d)", file.Title, seg.Index, seg.Total),
			})
		}
	} else {
		status.Update("📤 Upload in progress...")
		units = []deliver.Unit{{Path: file.Path, Caption: "✅ " + file.Title}}
	}

	outcomes := deliver.New(transport, p.cfg.SendTimeout).DeliverAll(ctx, units, status)
	for _, outcome := range outcomes {
		if outcome != deliver.Failed {
			// At least one unit arrived; DeliverAll already reported any
			// per-unit failures on status.
			return nil
		}
	}
	return telefetch.NewError(telefetch.KindFallbackSendFailed, fmt.Errorf("no unit delivered"))
}

func (p *Pipeline) removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Warnw("cleanup failed",
			"path", path, "error", telefetch.NewError(telefetch.KindCleanupFailed, err))
	}
}

// UserMessage maps a pipeline error to the short, non-technical status text
// shown to the user. Raw error text never reaches the chat.
func UserMessage(err error) string {
	switch telefetch.KindOf(err) {
	case telefetch.KindUnrecognizedURL:
		return "❌ Invalid YouTube URL. Please send a valid YouTube video link."
	case telefetch.KindProbeFailed, telefetch.KindNoQualities:
		return "❌ Error fetching video information. Please try again with a different video."
	case telefetch.KindFetchFailed:
		return "❌ Sorry, there was an error downloading the file."
	case telefetch.KindSplitFailed:
		return "❌ Sorry, there was an error processing the file."
	case telefetch.KindPrimarySendFailed, telefetch.KindFallbackSendFailed:
		return "❌ Sorry, there was an error uploading the file."
	default:
		return "❌ Sorry, something went wrong. Please try again."
	}
}
