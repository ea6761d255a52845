package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/async"
	"github.com/telefetch/telefetch/internal/bot"
	"github.com/telefetch/telefetch/internal/ffmpeg"
	"github.com/telefetch/telefetch/internal/media"
	"github.com/telefetch/telefetch/internal/pipeline"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "telefetch",
		Usage: "Telegram bot that downloads videos and delivers them to the chat",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Telegram bot API `TOKEN`",
				EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "staging-dir",
				Value: telefetch.DefaultConfig.StagingDir,
				Usage: "stage downloads in `DIR`",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Value: telefetch.DefaultConfig.FFmpegPath,
				Usage: "ffmpeg binary `PATH`",
			},
			&cli.StringFlag{
				Name:  "ffprobe",
				Value: telefetch.DefaultConfig.FFprobePath,
				Usage: "ffprobe binary `PATH`",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := telefetch.DefaultConfig
			cfg.StagingDir = c.String("staging-dir")
			cfg.FFmpegPath = c.String("ffmpeg")
			cfg.FFprobePath = c.String("ffprobe")
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(ctx, c.String("token"), cfg)
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
		stop()
		err = <-result
		if err != nil && err != context.Canceled {
			logger.Fatal(err.Error())
		}
	}
}

func run(ctx context.Context, token string, cfg telefetch.Config) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}

	runner := ffmpeg.NewRunner(cfg.FFmpegPath, cfg.FFprobePath, ffmpeg.BinaryExecutor{})
	pipe := pipeline.New(cfg, media.NewYouTube(), runner)

	if err := bot.New(api, pipe).Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	zap.S().Info("Exiting gracefully...")
	return nil
}
