package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"berrybot/internal/config"
	"berrybot/internal/storage"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	logger   *zap.Logger
	cfg      *config.Config
	catalog  *config.Catalog
	sessions SessionStore
	orders   *storage.OrderStore
	users    *storage.UserStore
	handlers map[string]func(context.Context, *tgbotapi.Message, Session)
}

func New(
	cfg *config.Config,
	catalog *config.Catalog,
	sessions SessionStore,
	orders *storage.OrderStore,
	users *storage.UserStore,
	logger *zap.Logger,
) (*Bot, error) {
	var api *tgbotapi.BotAPI

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	err := backoff.RetryNotify(
		func() error {
			var err error
			api, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
			return err
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("Telegram authorization failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID))

	b := &Bot{
		api:      api,
		logger:   logger,
		cfg:      cfg,
		catalog:  catalog,
		sessions: sessions,
		orders:   orders,
		users:    users,
	}
	b.registerStepHandlers()
	return b, nil
}

func (b *Bot) registerStepHandlers() {
	b.handlers = map[string]func(context.Context, *tgbotapi.Message, Session){
		StepAwaitingFullName: b.handleFullName,
		StepSelectingBerry:   b.handleBerrySelection,
		StepEnteringQuantity: b.handleQuantity,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update := <-updates:
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.processCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	// Contact shares log the user in regardless of the current step.
	if msg.Contact != nil {
		b.handleContact(ctx, msg)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	if handler, exists := b.handlers[session.Step]; exists {
		handler(ctx, msg, session)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	data := callback.Data

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", callback.Message.Chat.ID),
		zap.String("data", data))

	switch {
	case data == callbackStartOrder:
		b.answerCallback(callback.ID)
		b.handleStartOrder(ctx, callback)
	case data == callbackViewCart:
		b.handleViewCart(ctx, callback)
	case data == callbackOrderHistory:
		b.answerCallback(callback.ID)
		b.sendOrderHistory(ctx, callback.Message.Chat.ID, callback.From.ID)
	case data == callbackCurrentOrders:
		b.handleCurrentOrders(ctx, callback)
	case strings.HasPrefix(data, callbackCancelOrder):
		b.handleUserCancelOrder(ctx, callback)
	case strings.HasPrefix(data, callbackDate):
		b.handleDateSelection(ctx, callback)
	case strings.HasPrefix(data, callbackTime):
		b.handleTimeSelection(ctx, callback)
	default:
		b.answerCallback(callback.ID)
	}
}

func (b *Bot) isOperator(id int64) bool {
	return b.cfg.IsOperator(id)
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// send is for deliveries whose failure the caller must know about,
// such as payment links.
func (b *Bot) send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}

// answerCallback acknowledges a button press so the client stops the
// loading spinner.
func (b *Bot) answerCallback(callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

// answerAlert replies to a button press with an ephemeral alert popup.
func (b *Bot) answerAlert(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		b.logger.Warn("Failed to answer callback with alert", zap.Error(err))
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
