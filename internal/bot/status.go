package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// statusMessage is the single editable progress message owned by one
// download request. Edit failures are logged and swallowed; progress text is
// best-effort and must never abort the pipeline.
type statusMessage struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	messageID int
	log       *zap.SugaredLogger
}

func (s *statusMessage) Update(text string) {
	if _, err := s.api.Send(tgbotapi.NewEditMessageText(s.chatID, s.messageID, text)); err != nil {
		s.log.Debugw("status edit failed", "chat", s.chatID, "error", err)
	}
}

func (s *statusMessage) Delete() {
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, s.messageID)); err != nil {
		s.log.Debugw("status delete failed", "chat", s.chatID, "error", err)
	}
}

// chatTransport sends local files into one chat. The underlying client has
// no context support, so cancellation is only checked before each attempt.
type chatTransport struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func (t *chatTransport) SendVideo(ctx context.Context, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	video := tgbotapi.NewVideo(t.chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.SupportsStreaming = true
	_, err := t.api.Send(video)
	return err
}

func (t *chatTransport) SendDocument(ctx context.Context, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	document := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(path))
	document.Caption = caption
	_, err := t.api.Send(document)
	return err
}
