package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"berrybot/internal/storage"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg.Chat.ID)
	case "help":
		b.handleHelp(ctx, msg)
	case "order":
		b.handleOrderCommand(ctx, msg)
	case "my_orders":
		b.sendOrderHistory(ctx, msg.Chat.ID, msg.From.ID)
	case "cancel_order":
		b.handleCancelLatestOrder(ctx, msg)
	case "cancel":
		b.handleCancel(ctx, msg.Chat.ID)
	case "oplata", "cancel_order_admin", "admin_orders", "admin_slots",
		"admin_stats", "admin_broadcast", "admin_export":
		b.handleAdminCommand(ctx, msg)
	default:
		b.handleUnknownCommand(ctx, msg.Chat.ID)
	}
}

// handleStart resets any dialogue in progress and asks for a contact.
func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear session on /start",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID,
		"Здравствуйте! 👋\nЯ бот магазина «Ягодки».\n\n"+
			"Пожалуйста, нажмите кнопку ниже, чтобы отправить ваш контакт и войти в аккаунт.")
	msg.ReplyMarkup = b.createContactRequestKeyboard()
	b.sendMessage(msg)

	if err := b.sessions.Save(ctx, chatID, Session{Step: StepAwaitingContact}); err != nil {
		b.logger.Error("Failed to set awaiting contact state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	userHelp := "🛒 Покупатель:\n" +
		"/start — начать работу / перезайти\n" +
		"/order — оформить текущую корзину\n" +
		"/my_orders — история заказов\n" +
		"/cancel_order — отменить последний активный заказ\n" +
		"/cancel — отменить текущее действие\n"

	text := userHelp
	if b.isOperator(msg.From.ID) {
		text = "🛠 Админка:\n" +
			"/oplata [номер] [ссылка] — отправить клиенту ссылку на оплату\n" +
			"/cancel_order_admin [номер] [причина] — отменить заказ\n" +
			"/admin_orders — список всех заказов\n" +
			"/admin_slots — занятые даты и время доставки\n" +
			"/admin_stats — статистика продаж\n" +
			"/admin_broadcast [текст] — рассылка всем пользователям\n" +
			"/admin_export — выгрузка заказов в Excel\n\n" +
			userHelp
	}
	b.sendText(msg.Chat.ID, text)
}

// handleCancel clears the dialogue state unconditionally.
func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear session on /cancel",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "❌ Действие отменено.")
	msg.ReplyMarkup = b.createMainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendError(chatID, "Я не понимаю эту команду. Пожалуйста, используйте меню.")
}

func (b *Bot) handleUnknownCommand(ctx context.Context, chatID int64) {
	b.sendError(chatID, "Неизвестная команда. Пожалуйста, используйте /start для начала работы.")
}

// sendOrderHistory lists the user's orders newest first, with a cancel
// button on orders that are still awaiting payment.
func (b *Bot) sendOrderHistory(ctx context.Context, chatID, userID int64) {
	orders, err := b.orders.ListByUser(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to list user orders",
			zap.Int64("user_id", userID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке заказов")
		return
	}

	if len(orders) == 0 {
		b.sendText(chatID, "У вас пока нет заказов. 🛒")
		return
	}

	for _, order := range orders {
		msg := tgbotapi.NewMessage(chatID, formatOrder(order))
		if order.Status == storage.StatusPendingPayment {
			msg.ReplyMarkup = b.createCancelOrderKeyboard(order.ID)
		}
		b.sendMessage(msg)
	}
}

// handleCancelLatestOrder cancels the user's newest order that is still
// awaiting payment. Paid orders can only be cancelled by the operator.
func (b *Bot) handleCancelLatestOrder(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	orders, err := b.orders.ListByUser(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("Failed to list user orders",
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при отмене заказа")
		return
	}

	var latest *storage.Order
	for i := range orders {
		if orders[i].Status == storage.StatusPendingPayment {
			latest = &orders[i]
			break
		}
	}
	if latest == nil {
		b.sendText(chatID, "У вас нет активных заказов для отмены.")
		return
	}

	if err := b.orders.UpdateStatus(ctx, latest.ID, storage.StatusCancelled); err != nil {
		b.logger.Error("Failed to cancel order",
			zap.Int64("order_id", latest.ID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при отмене заказа")
		return
	}

	b.sendText(chatID, fmt.Sprintf("❌ Заказ №%d отменён.", latest.ID))
	b.notifyOperators(ctx, fmt.Sprintf("🔁 Пользователь отменил заказ №%d", latest.ID))
}
