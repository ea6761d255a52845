// Package bot is the chat front end: menu navigation, URL intake, quality
// selection, and one pipeline run per confirmed request.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
	"github.com/telefetch/telefetch/async"
	"github.com/telefetch/telefetch/internal/pipeline"
)

// callbackPrefix marks quality-selection callbacks; the suffix is the
// quality label itself.
const callbackPrefix = "dl_"

type Bot struct {
	api    *tgbotapi.BotAPI
	pipe   *pipeline.Pipeline
	states *stateStore
	log    *zap.SugaredLogger
}

func New(api *tgbotapi.BotAPI, pipe *pipeline.Pipeline) *Bot {
	return &Bot{
		api:    api,
		pipe:   pipe,
		states: newStateStore(),
		log:    zap.S().Named("bot"),
	}
}

// Run long-polls for updates until ctx is cancelled. Message handling is
// synchronous; downloads run in their own goroutines so one slow fetch never
// blocks the update loop.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)
	b.log.Infow("bot running", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.reply(chatID, "Hi! I can fetch YouTube videos for you.")
			b.showMainMenu(chatID)
		}
		return
	}

	switch text := msg.Text; text {
	case "Menu 1":
		b.replyKeyboard(chatID, "Menu 1 Options:", tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("YouTube Video Downloader")),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Option 2")),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Back to Main Menu")),
		))
	case "Menu 2":
		b.replyKeyboard(chatID, "Menu 2 Options:", tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Option A")),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Option B")),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Back to Main Menu")),
		))
	case "YouTube Video Downloader":
		b.states.expectURL(chatID)
		b.reply(chatID, "Please send the YouTube video URL:")
	case "Option 2", "Option A", "Option B":
		b.reply(chatID, fmt.Sprintf("You selected %s!", text))
		b.showMainMenu(chatID)
	case "Back to Main Menu":
		b.showMainMenu(chatID)
	default:
		if b.states.awaitingURL(chatID) {
			b.handleURL(ctx, chatID, strings.TrimSpace(text))
			return
		}
		b.showMainMenu(chatID)
	}
}

// handleURL inspects the submitted URL and, when it checks out, turns the
// progress message into the quality-selection keyboard.
func (b *Bot) handleURL(ctx context.Context, chatID int64, url string) {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, "🔄 Analyzing video URL, please wait..."))
	if err != nil {
		b.log.Warnw("failed to send analyzing message", "chat", chatID, "error", err)
		return
	}
	status := &statusMessage{api: b.api, chatID: chatID, messageID: sent.MessageID, log: b.log}

	result := async.RunResult(func() (*telefetch.VideoMetadata, error) {
		return b.pipe.Inspect(ctx, url)
	})
	go func() {
		res := <-result
		if res.IsErr() {
			status.Update(pipeline.UserMessage(res.Error))
			return
		}
		meta := res.Value
		b.states.setPendingURL(chatID, url)
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, sent.MessageID,
			fmt.Sprintf("🎥 Video Title: %s\n\nPlease select the format:", meta.Title),
			qualityKeyboard(meta.Qualities))
		if _, err := b.api.Send(edit); err != nil {
			b.log.Warnw("failed to present qualities", "chat", chatID, "error", err)
		}
	}()
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Debugw("callback ack failed", "error", err)
	}
	if query.Message == nil || !strings.HasPrefix(query.Data, callbackPrefix) {
		return
	}
	chatID := query.Message.Chat.ID
	quality := strings.TrimPrefix(query.Data, callbackPrefix)

	// The keyboard message becomes the request's progress message.
	status := &statusMessage{api: b.api, chatID: chatID, messageID: query.Message.MessageID, log: b.log}
	url, ok := b.states.takePendingURL(chatID)
	if !ok {
		status.Update("❌ This request has expired. Please send the link again.")
		return
	}

	transport := &chatTransport{api: b.api, chatID: chatID}
	go func() {
		if err := b.pipe.Download(ctx, url, quality, status, transport); err != nil {
			b.log.Warnw("download failed", "chat", chatID, "url", url, "error", err)
			return
		}
		// The delivered file speaks for itself; the progress message goes.
		status.Delete()
	}()
}

func (b *Bot) showMainMenu(chatID int64) {
	b.replyKeyboard(chatID, "Please choose a menu:", tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Menu 1")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Menu 2")),
	))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warnw("send failed", "chat", chatID, "error", err)
	}
}

func (b *Bot) replyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warnw("send failed", "chat", chatID, "error", err)
	}
}

// qualityKeyboard lays the quality labels out two buttons per row, highest
// quality first.
func qualityKeyboard(qualities telefetch.QualityList) tgbotapi.InlineKeyboardMarkup {
	labels := qualities.Labels()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(labels)+1)/2)
	for i := 0; i < len(labels); i += 2 {
		row := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(labels[i], callbackPrefix+labels[i]))
		if i+1 < len(labels) {
			row = append(row,
				tgbotapi.NewInlineKeyboardButtonData(labels[i+1], callbackPrefix+labels[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
