package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/async"
	"github.com/telefetch/telefetch/generic"
	"github.com/telefetch/telefetch/internal/fetch"
	"github.com/telefetch/telefetch/internal/ffmpeg"
	"github.com/telefetch/telefetch/internal/media"
	"github.com/telefetch/telefetch/internal/probe"
	"github.com/telefetch/telefetch/internal/selector"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "fetch-video",
		Usage: "download a single video without the bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "quality",
				Value: "720p",
				Usage: "preferred `QUALITY` label, e.g. 480p",
			},
			&cli.StringFlag{
				Name:  "target",
				Value: ".",
				Usage: "save downloaded video to `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			quality := c.String("quality")
			target := c.String("target")
			for _, source := range c.Args().Slice() {
				if err := download(ctx, source, quality, target); err != nil {
					return err
				}
			}
			return nil
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		logger.Error(ctx.Err().Error())
		stop()
	}
}

func download(ctx context.Context, source, quality, target string) error {
	logger := zap.S()
	logger.Infof("Downloading %s from %s into %s", quality, source, target)

	src := media.NewYouTube()

	logger.Info("Fetching video info...")
	meta, err := probe.New(src).FetchInfo(ctx, source)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	logger.Infof("Title: %s (available: %v)", meta.Title, meta.Qualities.Labels())

	sel, err := selector.New(src).Select(ctx, source, quality, telefetch.DefaultConfig.SelectLimit())
	if err != nil {
		return fmt.Errorf("format selection failed: %w", err)
	}

	logger.Info("Starting download...")
	bar := progressbar.DefaultBytes(1, "downloading")
	runner := ffmpeg.NewRunner(
		telefetch.DefaultConfig.FFmpegPath,
		telefetch.DefaultConfig.FFprobePath,
		ffmpeg.BinaryExecutor{},
	)
	fetcher := fetch.New(src, runner, target, fetch.WithProgress(func(downloaded, expected int64) {
		if bar.GetMax64() != expected && expected > 0 {
			bar.ChangeMax64(expected)
		}
		generic.Unwrap_(bar.Set64(downloaded))
	}))

	file, err := fetcher.Fetch(ctx, source, sel)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	logger.Infof("Download complete: %s (%s)", file.Path, file.Title)

	return nil
}
