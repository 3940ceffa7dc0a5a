// Package service implements the conversation state machine, the
// calculation engine and the persistence coordinator of the exchange bot.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// User identifies the chat-platform user behind an inbound event.
type User struct {
	ID       int64
	Username string
}

// Button is one labeled inline button with its opaque payload.
type Button struct {
	Label string
	Data  string
}

// Reply is what a transport renders back to the user. A zero Reply means
// nothing to send. Edit asks the transport to replace the message that
// carried the pressed button instead of sending a new one.
type Reply struct {
	Text    string
	Buttons [][]Button
	Edit    bool
}

// PriceSource fetches a current price for a provider symbol.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

const (
	msgChooseOperation  = "📊 Выберите тип операции:"
	msgEnterCleanAmount = "Введите сумму для очистки:"
	msgOperationError   = "❌ Ошибка операции"
	msgInvalidAmount    = "⚠️ Введите положительное число!"
	msgStaleSession     = "❌ Сессия устарела"
	msgSaved            = "✅ Операция успешно сохранена"
	msgSaveError        = "❌ Ошибка сохранения"
	msgCancelled        = "❌ Операция отменена"
	msgEmptyHistory     = "📭 История операций пуста"
	msgUseButtons       = "🤖 Используйте кнопки для управления ботом"
)

const (
	dataConfirm = "confirm"
	dataCancel  = "cancel"
)

var operationMenu = [][]Button{
	{{Label: "BTC ↔ USDT", Data: "BTC-USDT"}, {Label: "USDT ↔ BTC", Data: "USDT-BTC"}},
	{{Label: "ETH ↔ USDT", Data: "ETH-USDT"}, {Label: "USDT ↔ ETH", Data: "USDT-ETH"}},
	{{Label: "🧹 Очистка (10%)", Data: domain.CleanCode}},
}

// Conversation drives the per-user exchange dialog from operation choice
// through amount entry to confirmation.
type Conversation struct {
	prices   PriceSource
	recorder *Recorder
	sessions *SessionStore
	symbols  map[string]string
	now      func() time.Time
	log      *zap.Logger
}

// NewConversation wires the controller over its collaborators. symbols
// maps operation codes to provider symbols.
func NewConversation(prices PriceSource, recorder *Recorder, sessions *SessionStore, symbols map[string]string, log *zap.Logger) *Conversation {
	return &Conversation{
		prices:   prices,
		recorder: recorder,
		sessions: sessions,
		symbols:  symbols,
		now:      time.Now,
		log:      log,
	}
}

// HandleCommand processes a slash command.
func (c *Conversation) HandleCommand(ctx context.Context, user User, name string) Reply {
	switch name {
	case "start":
		return c.start(user)
	case "history":
		return c.history(ctx, user)
	case "cancel":
		_, ok := c.sessions.Get(user.ID)
		c.sessions.Clear(user.ID)
		if !ok {
			return Reply{Text: msgStaleSession}
		}
		return Reply{Text: msgCancelled}
	default:
		return Reply{Text: msgUseButtons}
	}
}

// HandleButton processes an inline button press.
func (c *Conversation) HandleButton(ctx context.Context, user User, data string) Reply {
	switch data {
	case dataConfirm, dataCancel:
		return c.finishConfirmation(ctx, user, data)
	default:
		return c.selectOperation(ctx, user, data)
	}
}

// HandleText processes free text. In the amount-wait state it is the
// amount entry; otherwise numeric text points at a session lost to a
// restart, and anything else is idle chatter.
func (c *Conversation) HandleText(ctx context.Context, user User, text string) Reply {
	sess, ok := c.sessions.Get(user.ID)
	if !ok || sess.State != domain.StateAwaitingAmount {
		if _, err := parseAmount(text); err == nil && !ok {
			return Reply{Text: msgStaleSession}
		}
		return Reply{Text: msgUseButtons}
	}
	return c.processAmount(ctx, user, sess, text)
}

func (c *Conversation) start(user User) Reply {
	sess := domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		TraceID:   uuid.NewString(),
		State:     domain.StateChoosingOperation,
		UpdatedAt: c.now(),
	}
	// Overwrites any incomplete session for this user.
	c.sessions.Set(sess)
	c.log.Debug("conversation started",
		zap.String("trace_id", sess.TraceID),
		zap.Int64("user_id", user.ID))
	return Reply{Text: msgChooseOperation, Buttons: operationMenu}
}

func (c *Conversation) selectOperation(ctx context.Context, user User, data string) Reply {
	op, ok := domain.OperationFromCode(data)
	if !ok {
		return Reply{Text: msgOperationError, Edit: true}
	}

	sess := domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		TraceID:   uuid.NewString(),
		State:     domain.StateAwaitingAmount,
		Op:        op,
		UpdatedAt: c.now(),
	}

	if op.Kind == domain.KindClean {
		c.sessions.Set(sess)
		return Reply{Text: msgEnterCleanAmount, Edit: true}
	}

	symbol, ok := c.symbols[op.Code]
	if !ok {
		// A code outside the pair table means menu and table drifted
		// apart: a data error, not something a retry can fix.
		c.log.Error("operation code has no symbol",
			zap.String("trace_id", sess.TraceID),
			zap.String("code", op.Code),
			zap.Error(domain.ErrUnknownPair))
		c.sessions.Clear(user.ID)
		return Reply{Text: msgOperationError, Edit: true}
	}

	// The session is published before the blocking fetch so a /cancel
	// during the fetch has something to clear.
	c.sessions.Set(sess)

	price, err := c.prices.GetPrice(ctx, symbol)

	// The fetch may outlive the session: the user can cancel or restart
	// while it is in flight. Apply the result only to the same session.
	cur, ok := c.sessions.Get(user.ID)
	if !ok || cur.TraceID != sess.TraceID {
		c.log.Debug("dropping late price result",
			zap.String("trace_id", sess.TraceID),
			zap.String("symbol", symbol))
		return Reply{}
	}

	if err != nil {
		c.log.Warn("price fetch failed",
			zap.String("trace_id", sess.TraceID),
			zap.String("symbol", symbol),
			zap.Error(err))
		c.sessions.Clear(user.ID)
		return Reply{Text: msgOperationError, Edit: true}
	}

	cur.Rate = price
	cur.UpdatedAt = c.now()
	c.sessions.Set(cur)
	return Reply{Text: fmt.Sprintf("Введите количество %s:", op.From), Edit: true}
}

func (c *Conversation) processAmount(ctx context.Context, user User, sess domain.Session, text string) Reply {
	amount, err := parseAmount(text)
	if err != nil {
		// Stay in the amount-wait state, session untouched.
		return Reply{Text: msgInvalidAmount}
	}

	// The amount can arrive while the price fetch is still in flight.
	// Without a rate there is nothing to calculate against.
	if sess.Op.Kind == domain.KindConvert && sess.Rate.Sign() <= 0 {
		c.sessions.Clear(user.ID)
		return Reply{Text: msgOperationError}
	}

	sess.Username = displayName(user)

	var res CalcResult
	var summary string
	switch sess.Op.Kind {
	case domain.KindClean:
		res = Clean(amount)
		summary = fmt.Sprintf(
			"🧹 Очистка средств\n• Введено: %s\n• Комиссия: %s\n• Итого: %s",
			fmt8(amount), fmt8(res.Commission), fmt8(res.Result))
	case domain.KindConvert:
		res = Convert(amount, sess.Rate, sess.Op.From == domain.QuoteCurrency)
		summary = fmt.Sprintf(
			"🔁 Обмен %s %s\n• Курс: 1 %s = %s %s\n• Итого: %s %s\n• Комиссия: %s %s",
			fmt8(amount), sess.Op.From,
			sess.Op.From, fmt8(sess.Rate), sess.Op.To,
			fmt8(res.Result), sess.Op.To,
			fmt8(res.Commission), sess.Op.To)
	}

	sess.FromAmount = amount
	sess.ToAmount = res.Result
	sess.Commission = res.Commission
	sess.State = domain.StateAwaitingConfirm
	sess.UpdatedAt = c.now()
	c.sessions.Set(sess)

	return Reply{
		Text: summary + "\n\nПодтвердить операцию?",
		Buttons: [][]Button{{
			{Label: "✅ Подтвердить", Data: dataConfirm},
			{Label: "❌ Отменить", Data: dataCancel},
		}},
	}
}

func (c *Conversation) finishConfirmation(ctx context.Context, user User, choice string) Reply {
	sess, ok := c.sessions.Get(user.ID)
	if !ok || sess.State != domain.StateAwaitingConfirm {
		c.sessions.Clear(user.ID)
		return Reply{Text: msgStaleSession, Edit: true}
	}

	// Terminal either way: confirmed, failed or cancelled.
	c.sessions.Clear(user.ID)

	if choice == dataCancel {
		return Reply{Text: msgCancelled, Edit: true}
	}

	tx := &domain.Transaction{
		UserID:     sess.UserID,
		Username:   sess.Username,
		Operation:  sess.Op.Code,
		FromAmount: sess.FromAmount,
		ToAmount:   sess.ToAmount,
		Commission: sess.Commission,
		Timestamp:  c.now(),
	}
	if err := c.recorder.Record(ctx, tx); err != nil {
		c.log.Error("failed to record transaction",
			zap.String("trace_id", sess.TraceID),
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return Reply{Text: msgSaveError, Edit: true}
	}

	c.log.Info("transaction recorded",
		zap.String("trace_id", sess.TraceID),
		zap.Int64("user_id", user.ID),
		zap.Int64("tx_id", tx.ID),
		zap.String("operation", tx.Operation))
	return Reply{Text: msgSaved, Edit: true}
}

func (c *Conversation) history(ctx context.Context, user User) Reply {
	txs, err := c.recorder.History(ctx, user.ID)
	if err != nil {
		c.log.Error("failed to load history",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return Reply{Text: msgEmptyHistory}
	}
	if len(txs) == 0 {
		return Reply{Text: msgEmptyHistory}
	}

	lines := []string{"📜 История операций:\n"}
	for i, tx := range txs {
		date := tx.Timestamp.Format("02.01.2006 15:04")
		if tx.Operation == domain.CleanCode {
			lines = append(lines, fmt.Sprintf(
				"%d. 🧹 Очистка (%s)\n   Пользователь: @%s\n   Сумма: %s\n   Итого: %s\n   Комиссия: %s\n",
				i+1, date, tx.Username,
				fmt8(tx.FromAmount), fmt8(tx.ToAmount), fmt8(tx.Commission)))
			continue
		}
		from, to, _ := strings.Cut(tx.Operation, "-")
		lines = append(lines, fmt.Sprintf(
			"%d. 🔄 %s → %s (%s)\n   Пользователь: @%s\n   Отправлено: %s %s\n   Получено: %s %s\n   Комиссия: %s %s\n",
			i+1, from, to, date, tx.Username,
			fmt8(tx.FromAmount), from,
			fmt8(tx.ToAmount), to,
			fmt8(tx.Commission), to))
	}
	return Reply{Text: strings.Join(lines, "\n")}
}

func displayName(user User) string {
	if user.Username != "" {
		return user.Username
	}
	return fmt.Sprintf("user_%d", user.ID)
}

func fmt8(d decimal.Decimal) string {
	return d.StringFixed(8)
}

func parseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %w", err)
	}
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, errors.New("amount must be positive")
	}
	return amount, nil
}
