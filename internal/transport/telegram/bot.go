// Package telegram bridges Telegram updates to the conversation service.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/service"
)

// Bot is the long-polling Telegram transport.
type Bot struct {
	api  *tgbotapi.BotAPI
	conv *service.Conversation
	log  *zap.Logger
}

// NewBot authenticates against the Telegram API.
func NewBot(token string, conv *service.Conversation, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, conv: conv, log: log}, nil
}

// Username returns the bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until ctx is cancelled. Each update is handled
// in its own goroutine, so one user's blocking price fetch cannot stall
// another user's conversation.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			go b.handleUpdate(ctx, update)
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
	if msg.From == nil {
		return
	}
	user := service.User{ID: msg.From.ID, Username: msg.From.UserName}

	var reply service.Reply
	if msg.IsCommand() {
		reply = b.conv.HandleCommand(ctx, user, msg.Command())
	} else {
		reply = b.conv.HandleText(ctx, user, msg.Text)
	}
	b.send(msg.Chat.ID, reply)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack failed", zap.Error(err))
	}

	user := service.User{ID: cb.From.ID, Username: cb.From.UserName}
	reply := b.conv.HandleButton(ctx, user, cb.Data)
	if cb.Message == nil {
		return
	}

	if reply.Edit {
		b.edit(cb.Message.Chat.ID, cb.Message.MessageID, reply)
		return
	}
	b.send(cb.Message.Chat.ID, reply)
}

func (b *Bot) send(chatID int64, reply service.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if kb, ok := keyboard(reply.Buttons); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, reply service.Reply) {
	if reply.Text == "" {
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)
	if kb, ok := keyboard(reply.Buttons); ok {
		edit.ReplyMarkup = &kb
	}
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("edit failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func keyboard(rows [][]service.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		kb = append(kb, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...), true
}
