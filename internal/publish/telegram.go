package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

// telegramSender is the part of *tele.Bot the sink needs.
type telegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramSink posts into one chat, threading through reply-to.
type TelegramSink struct {
	tracer trace.Tracer
	bot    telegramSender
	chat   *tele.Chat
}

func NewTelegramSink(tracer trace.Tracer, bot telegramSender, chatID int64) *TelegramSink {
	return &TelegramSink{tracer: tracer, bot: bot, chat: &tele.Chat{ID: chatID}}
}

// NewTelegramBot builds a bot for the sink. It is not started, so it never
// polls for updates.
func NewTelegramBot(token string) (*tele.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	return tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Post(ctx context.Context, text, replyTo string) (string, error) {
	_, span := s.tracer.Start(ctx, "publish.telegram")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat_id", s.chat.ID))

	opts := &tele.SendOptions{DisableWebPagePreview: true}
	if replyTo != "" {
		id, err := strconv.Atoi(replyTo)
		if err != nil {
			return "", fmt.Errorf("invalid telegram parent id %q: %w", replyTo, err)
		}
		opts.ReplyTo = &tele.Message{ID: id, Chat: s.chat}
	}

	msg, err := s.bot.Send(s.chat, text, opts)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return strconv.Itoa(msg.ID), nil
}
