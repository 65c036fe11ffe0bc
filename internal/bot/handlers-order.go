package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"berrybot/internal/storage"
)

// handleOrderCommand moves a non-empty cart on to delivery date
// selection, warning about an identical order placed for the nearest
// delivery date.
func (b *Bot) handleOrderCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	if !session.LoggedIn() {
		b.sendText(chatID, "Сначала войдите через /start.")
		return
	}
	if len(session.Cart) == 0 {
		b.sendText(chatID, "Ваша корзина пуста. Сначала добавьте ягоды.")
		return
	}

	nextDate := time.Now().AddDate(0, 0, 1).Format(storage.DateLayout)
	duplicate, err := b.orders.IsDuplicate(ctx, session.Cart, session.UserID, nextDate)
	if err != nil {
		b.logger.Error("Failed to check for duplicate order",
			zap.Int64("user_id", session.UserID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}
	if duplicate {
		b.sendText(chatID, "⚠️ Вы уже оформляли идентичный заказ на ближайшую дату.\nИзмените состав или подождите.")
		return
	}

	session.Step = StepChoosingDate
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	reply := tgbotapi.NewMessage(chatID, "📅 Выберите дату доставки:")
	reply.ReplyMarkup = b.createDateSelectionKeyboard(time.Now())
	b.sendMessage(reply)
}

func (b *Bot) handleDateSelection(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	date := strings.TrimPrefix(callback.Data, callbackDate)

	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.answerAlert(callback.ID, "Ошибка при обработке запроса.")
		return
	}
	if session.Step != StepChoosingDate {
		b.answerAlert(callback.ID, "Эта кнопка устарела. Отправьте /order ещё раз.")
		return
	}

	if _, err := time.Parse(storage.DateLayout, date); err != nil {
		b.answerAlert(callback.ID, "Некорректная дата.")
		return
	}

	session.DeliveryDate = date
	session.Step = StepChoosingTime
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.answerAlert(callback.ID, "Ошибка при обработке запроса.")
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, callback.Message.MessageID,
		fmt.Sprintf("🚚 Доставка %s. Выберите удобное время:", date),
		b.createTimeSelectionKeyboard())
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.answerCallback(callback.ID)
}

// handleTimeSelection finalizes the order: assigns the next id,
// persists it and notifies the operator. The operator notification is
// best effort; the order stays created even if it fails.
func (b *Bot) handleTimeSelection(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	slot := strings.TrimPrefix(callback.Data, callbackTime)

	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.answerAlert(callback.ID, "Ошибка при обработке запроса.")
		return
	}
	if session.Step != StepChoosingTime {
		b.answerAlert(callback.ID, "Эта кнопка устарела. Отправьте /order ещё раз.")
		return
	}

	if !isValidSlot(slot) {
		b.answerAlert(callback.ID, "Некорректное время.")
		return
	}

	order := storage.Order{
		UserID:   session.UserID,
		FullName: session.FullName,
		Phone:    session.Phone,
		Cart:     session.Cart,
		Date:     session.DeliveryDate,
		Time:     slot,
		Status:   storage.StatusPendingPayment,
	}

	orderID, err := b.orders.Create(ctx, order)
	if err != nil {
		b.logger.Error("Failed to create order",
			zap.Int64("user_id", session.UserID),
			zap.Error(err))
		b.answerAlert(callback.ID, "Не удалось сохранить заказ. Попробуйте позже.")
		return
	}
	order.ID = orderID

	b.editMessage(chatID, callback.Message.MessageID, fmt.Sprintf(
		"✅ Заказ №%d успешно оформлен!\n📅 %s в %s\n💰 Итого: %s₽\n\n"+
			"Ожидайте ссылку на оплату от менеджера.",
		orderID, order.Date, order.Time, formatMoney(order.Total())))

	b.notifyNewOrder(ctx, order)

	if err := b.sessions.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.answerCallback(callback.ID)
}

// Hourly delivery slots between 10:00 and 20:00 inclusive.
func isValidSlot(slot string) bool {
	t, err := time.Parse(storage.TimeLayout, slot)
	if err != nil {
		return false
	}
	return t.Minute() == 0 && t.Hour() >= 10 && t.Hour() <= 20
}

// handleViewCart shows the in-progress cart as an ephemeral alert.
func (b *Bot) handleViewCart(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	session, err := b.sessions.Get(ctx, callback.Message.Chat.ID)
	if err != nil || len(session.Cart) == 0 {
		b.answerAlert(callback.ID, "🛒 Корзина пуста.")
		return
	}
	b.answerAlert(callback.ID, fmt.Sprintf("🧺 Корзина:\n%s\n\n💰 Итого: %s₽",
		formatCartLines(session.Cart), formatMoney(storage.CartTotal(session.Cart))))
}

// handleCurrentOrders shows the user's active orders as an alert.
func (b *Bot) handleCurrentOrders(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	orders, err := b.orders.ListByUser(ctx, callback.From.ID)
	if err != nil {
		b.logger.Error("Failed to list user orders",
			zap.Int64("user_id", callback.From.ID),
			zap.Error(err))
		b.answerAlert(callback.ID, "❌ Не удалось загрузить заказы.")
		return
	}

	var lines []string
	for _, order := range orders {
		if !order.Status.Active() {
			continue
		}
		mark := "⏳"
		if order.Status == storage.StatusPaid {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s №%d — %s в %s", mark, order.ID, order.Date, order.Time))
	}

	if len(lines) == 0 {
		b.answerAlert(callback.ID, "У вас нет активных заказов.")
		return
	}
	b.answerAlert(callback.ID, "📦 Ваши текущие заказы:\n"+strings.Join(lines, "\n"))
}

// handleUserCancelOrder cancels one of the user's own orders from the
// inline button. Paid orders can only be cancelled by the operator.
func (b *Bot) handleUserCancelOrder(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	orderID, err := strconv.ParseInt(strings.TrimPrefix(callback.Data, callbackCancelOrder), 10, 64)
	if err != nil {
		b.answerAlert(callback.ID, "Заказ не найден.")
		return
	}

	order, err := b.orders.Get(ctx, orderID)
	if errors.Is(err, storage.ErrOrderNotFound) {
		b.answerAlert(callback.ID, "Заказ не найден.")
		return
	}
	if err != nil {
		b.logger.Error("Failed to get order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.answerAlert(callback.ID, "❌ Не удалось загрузить заказ.")
		return
	}

	if order.UserID != callback.From.ID {
		b.answerAlert(callback.ID, "Вы не можете отменить чужой заказ.")
		return
	}
	if order.Status == storage.StatusCancelled {
		b.answerAlert(callback.ID, "Этот заказ уже отменён.")
		return
	}
	if order.Status == storage.StatusPaid {
		b.answerAlert(callback.ID, "Оплаченный заказ может отменить только администратор.")
		return
	}

	if err := b.orders.UpdateStatus(ctx, orderID, storage.StatusCancelled); err != nil {
		b.logger.Error("Failed to cancel order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.answerAlert(callback.ID, "Не удалось отменить заказ.")
		return
	}

	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("❌ Заказ №%d отменён.", orderID))

	// Best effort: the cancellation already happened.
	b.notifyOperators(ctx, fmt.Sprintf("🔁 Пользователь отменил заказ №%d", orderID))

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "Заказ успешно отменён.")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
