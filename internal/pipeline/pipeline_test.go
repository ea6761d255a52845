package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
	"github.com/telefetch/telefetch/internal/media"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakeSource struct {
	info       *media.Info
	infoErr    error
	streamData []byte
	probes     int
}

func (s *fakeSource) Probe(ctx context.Context, url string) (*media.Info, error) {
	s.probes++
	return s.info, s.infoErr
}

func (s *fakeSource) Stream(ctx context.Context, url string, itag int) (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader(s.streamData)), int64(len(s.streamData)), nil
}

// fakeExecutor stands in for both binaries: ffprobe reports a fixed
// duration, ffmpeg materializes its output file (the last argument).
type fakeExecutor struct {
	duration string
}

type fakeCommand struct {
	executor *fakeExecutor
	args     []string
}

func (c fakeCommand) CombinedOutput() ([]byte, error) {
	if len(c.args) > 0 && c.args[0] == "-v" {
		return []byte(c.executor.duration + "\n"), nil
	}
	return nil, os.WriteFile(c.args[len(c.args)-1], []byte("segment"), 0644)
}

func (e *fakeExecutor) Command(ctx context.Context, name string, arg ...string) ffmpeg.Command {
	return fakeCommand{executor: e, args: arg}
}

type fakeTransport struct {
	sendErr  error
	captions []string
}

func (t *fakeTransport) SendVideo(ctx context.Context, path, caption string) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.captions = append(t.captions, caption)
	return nil
}

func (t *fakeTransport) SendDocument(ctx context.Context, path, caption string) error {
	return t.sendErr
}

type fakeStatus struct {
	updates []string
}

func (s *fakeStatus) Update(text string) {
	s.updates = append(s.updates, text)
}

func testConfig(t *testing.T) telefetch.Config {
	cfg := telefetch.DefaultConfig
	cfg.StagingDir = t.TempDir()
	cfg.UploadLimit = 10
	cfg.SizeMargin = 1
	return cfg
}

func exactFormats() media.FormatList {
	return media.FormatList{
		{Itag: 22, Container: "mp4", Height: 720, Bitrate: 2_000_000, Size: 5, HasVideo: true, HasAudio: true},
	}
}

func newTestPipeline(src media.Source, cfg telefetch.Config) *Pipeline {
	runner := ffmpeg.NewRunner("ffmpeg", "ffprobe", &fakeExecutor{duration: "30.0"})
	return New(cfg, src, runner)
}

func TestInspect(t *testing.T) {
	assert := assert_.New(t)

	src := &fakeSource{info: &media.Info{
		ID:      "dQw4w9WgXcQ",
		Title:   "Some Video",
		Formats: exactFormats(),
	}}
	pipe := newTestPipeline(src, testConfig(t))

	meta, err := pipe.Inspect(context.Background(), watchURL)
	assert.NoError(err)
	assert.Equal("Some Video", meta.Title)
	assert.Contains(meta.Qualities.Labels(), "720p")
}

func TestInspectUnrecognizedURL(t *testing.T) {
	assert := assert_.New(t)

	src := &fakeSource{}
	pipe := newTestPipeline(src, testConfig(t))

	_, err := pipe.Inspect(context.Background(), "https://example.com/watch?v=nope")
	assert.Equal(telefetch.KindUnrecognizedURL, telefetch.KindOf(err))
	// Rejected before any remote traffic.
	assert.Equal(0, src.probes)
}

func TestDownloadSingleFile(t *testing.T) {
	assert := assert_.New(t)

	cfg := testConfig(t)
	src := &fakeSource{
		info:       &media.Info{ID: "dQw4w9WgXcQ", Title: "Some Video", Formats: exactFormats()},
		streamData: []byte("12345"),
	}
	transport := &fakeTransport{}
	status := &fakeStatus{}

	err := newTestPipeline(src, cfg).Download(context.Background(), watchURL, "720p", status, transport)
	assert.NoError(err)
	assert.Equal([]string{"✅ Some Video"}, transport.captions)

	// Nothing left behind in staging.
	entries, readErr := os.ReadDir(cfg.StagingDir)
	assert.NoError(readErr)
	assert.Empty(entries)
}

func TestDownloadSplitsOversized(t *testing.T) {
	assert := assert_.New(t)

	cfg := testConfig(t)
	src := &fakeSource{
		info: &media.Info{ID: "dQw4w9WgXcQ", Title: "Long Video", Formats: exactFormats()},
		// 25 bytes against a 10 byte limit: 3 parts.
		streamData: []byte("0123456789012345678901234"),
	}
	transport := &fakeTransport{}
	status := &fakeStatus{}

	err := newTestPipeline(src, cfg).Download(context.Background(), watchURL, "720p", status, transport)
	assert.NoError(err)
	assert.Equal([]string{
		"✅ Long Video (Part 1/3)",
		"✅ Long Video (Part 2/3)",
		"✅ Long Video (Part 3/3)",
	}, transport.captions)
	assert.Contains(status.updates, "Video is too large, splitting into 3 parts...")
	assert.Contains(status.updates, "📤 Uploading part 2 of 3...")

	entries, readErr := os.ReadDir(cfg.StagingDir)
	assert.NoError(readErr)
	assert.Empty(entries)
}

func TestDownloadAllSendsFail(t *testing.T) {
	assert := assert_.New(t)

	cfg := testConfig(t)
	src := &fakeSource{
		info:       &media.Info{ID: "dQw4w9WgXcQ", Title: "Some Video", Formats: exactFormats()},
		streamData: []byte("12345"),
	}
	transport := &fakeTransport{sendErr: fmt.Errorf("chat gone")}
	status := &fakeStatus{}

	err := newTestPipeline(src, cfg).Download(context.Background(), watchURL, "720p", status, transport)
	assert.Equal(telefetch.KindFallbackSendFailed, telefetch.KindOf(err))
	assert.Contains(status.updates, "❌ Sorry, there was an error uploading the file.")

	// The staged file is still released.
	entries, readErr := os.ReadDir(cfg.StagingDir)
	assert.NoError(readErr)
	assert.Empty(entries)
}

func TestUserMessage(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("❌ Invalid YouTube URL. Please send a valid YouTube video link.",
		UserMessage(telefetch.NewError(telefetch.KindUnrecognizedURL, nil)))
	assert.Equal("❌ Sorry, there was an error downloading the file.",
		UserMessage(telefetch.NewError(telefetch.KindFetchFailed, fmt.Errorf("503"))))
	assert.Equal("❌ Sorry, something went wrong. Please try again.",
		UserMessage(fmt.Errorf("opaque")))
}

func TestDownloadFetchTimeoutConfigured(t *testing.T) {
	assert := assert_.New(t)

	// A cancelled parent context surfaces as a fetch failure, not a hang.
	cfg := testConfig(t)
	cfg.FetchTimeout = time.Minute
	src := &fakeSource{
		info:       &media.Info{ID: "dQw4w9WgXcQ", Title: "Some Video", Formats: exactFormats()},
		streamData: []byte("12345"),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestPipeline(src, cfg).Download(ctx, watchURL, "720p", &fakeStatus{}, &fakeTransport{})
	assert.Equal(telefetch.KindFetchFailed, telefetch.KindOf(err))
}
