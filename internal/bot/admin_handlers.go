package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"berrybot/internal/storage"
)

func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOperator(msg.From.ID) {
		b.handleUnknownCommand(ctx, msg.Chat.ID)
		return
	}

	args := msg.CommandArguments()
	switch msg.Command() {
	case "oplata":
		b.handlePayment(ctx, msg.Chat.ID, args)
	case "cancel_order_admin":
		b.handleAdminCancel(ctx, msg.Chat.ID, args)
	case "admin_orders":
		b.handleAdminOrders(ctx, msg.Chat.ID)
	case "admin_slots":
		b.handleAdminSlots(ctx, msg.Chat.ID)
	case "admin_stats":
		b.handleAdminStats(ctx, msg.Chat.ID)
	case "admin_broadcast":
		b.handleBroadcast(ctx, msg.Chat.ID, args)
	case "admin_export":
		b.handleExportOrders(ctx, msg.Chat.ID)
	}
}

// handlePayment sends the customer a payment link and marks the order
// paid. The order is only marked paid after the link was delivered.
func (b *Bot) handlePayment(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		b.sendError(chatID, "Неверный формат.\nИспользуйте: /oplata <номер_заказа> <ссылка_на_оплату>")
		return
	}

	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendError(chatID, "Неверный формат ID заказа")
		return
	}
	paymentLink := parts[1]

	order, err := b.orders.Get(ctx, orderID)
	if errors.Is(err, storage.ErrOrderNotFound) {
		b.sendText(chatID, fmt.Sprintf("Заказ №%d не найден.", orderID))
		return
	}
	if err != nil {
		b.logger.Error("Failed to get order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке заказа")
		return
	}

	switch order.Status {
	case storage.StatusPaid:
		b.sendText(chatID, fmt.Sprintf("Заказ №%d уже оплачен.", orderID))
		return
	case storage.StatusCancelled:
		b.sendText(chatID, fmt.Sprintf("Заказ №%d отменён и не может быть оплачен.", orderID))
		return
	}

	if err := b.send(order.UserID, fmt.Sprintf(
		"💳 Ссылка на оплату для заказа №%d:\n%s\n\nПосле оплаты с вами свяжется менеджер.",
		orderID, paymentLink)); err != nil {
		b.sendText(chatID, fmt.Sprintf("⚠️ Не удалось отправить сообщение пользователю: %v", err))
		return
	}

	if err := b.orders.UpdateStatus(ctx, orderID, storage.StatusPaid); err != nil {
		b.logger.Error("Failed to mark order paid",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обновлении статуса")
		return
	}

	b.sendText(chatID, fmt.Sprintf("✅ Ссылка на оплату отправлена клиенту заказа №%d.", orderID))
}

// handleAdminCancel cancels any non-cancelled order. The customer
// notification is best effort: the cancellation stays even if it fails.
func (b *Bot) handleAdminCancel(ctx context.Context, chatID int64, args string) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		b.sendError(chatID, "Неверный формат.\nИспользуйте: /cancel_order_admin <номер_заказа> [причина]")
		return
	}

	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendError(chatID, "Неверный формат.\nИспользуйте: /cancel_order_admin <номер_заказа> [причина]")
		return
	}
	reason := "Причина не указана"
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		reason = strings.TrimSpace(parts[1])
	}

	order, err := b.orders.Get(ctx, orderID)
	if errors.Is(err, storage.ErrOrderNotFound) {
		b.sendText(chatID, fmt.Sprintf("Заказ №%d не найден.", orderID))
		return
	}
	if err != nil {
		b.logger.Error("Failed to get order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке заказа")
		return
	}

	if order.Status == storage.StatusCancelled {
		b.sendText(chatID, fmt.Sprintf("Заказ №%d уже отменён.", orderID))
		return
	}

	if err := b.orders.UpdateStatus(ctx, orderID, storage.StatusCancelled); err != nil {
		b.logger.Error("Failed to cancel order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при отмене заказа")
		return
	}

	if err := b.send(order.UserID, fmt.Sprintf(
		"❌ Ваш заказ №%d был отменён администратором.\nПричина: %s",
		orderID, reason)); err != nil {
		b.sendText(chatID, fmt.Sprintf("⚠️ Не удалось уведомить пользователя: %v", err))
	}

	b.sendText(chatID, fmt.Sprintf("✅ Заказ №%d успешно отменён.\nПричина: %s", orderID, reason))
}

func (b *Bot) handleAdminOrders(ctx context.Context, chatID int64) {
	orders, err := b.orders.List(ctx)
	if err != nil {
		b.logger.Error("Failed to list orders", zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке заказов")
		return
	}
	if len(orders) == 0 {
		b.sendText(chatID, "📦 Нет заказов.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Все заказы:\n\n")
	for _, order := range orders {
		fmt.Fprintf(&sb, "№%d | %s | %s\n📅 %s в %s | 💰 %s₽ | 📌 %s\n\n",
			order.ID, order.FullName, FormatPhone(order.Phone),
			order.Date, order.Time, formatMoney(order.Total()), order.Status.Label())
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) handleAdminSlots(ctx context.Context, chatID int64) {
	slots, err := b.orders.Slots(ctx)
	if err != nil {
		b.logger.Error("Failed to collect slots", zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке слотов")
		return
	}
	if len(slots) == 0 {
		b.sendText(chatID, "📅 Нет активных слотов.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🗓 Занятые слоты доставки:\n\n")
	for _, day := range slots {
		fmt.Fprintf(&sb, "📅 %s: %s\n", day.Date, strings.Join(day.Times, ", "))
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) handleAdminStats(ctx context.Context, chatID int64) {
	stats, err := b.orders.Stats(ctx, 3)
	if err != nil {
		b.logger.Error("Failed to compute stats", zap.Error(err))
		b.sendError(chatID, "Ошибка при получении статистики")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Статистика продаж:\n\n")
	fmt.Fprintf(&sb, "🛒 Всего оплачено заказов: %d\n", stats.PaidOrders)
	fmt.Fprintf(&sb, "💰 Общая выручка: %s₽\n\n", formatMoney(stats.Revenue))
	sb.WriteString("🏆 ТОП-3 ягоды по объёму:\n")
	for i, berry := range stats.TopBerries {
		fmt.Fprintf(&sb, "%d. %s — %s кг\n", i+1, berry.Berry, formatKg(berry.Kg))
	}
	b.sendText(chatID, sb.String())
}

// handleBroadcast sends a text to every registered user and reports the
// delivery tally back to the operator.
func (b *Bot) handleBroadcast(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		b.sendText(chatID, "Используйте: /admin_broadcast [текст рассылки]")
		return
	}

	users, err := b.users.All(ctx)
	if err != nil {
		b.logger.Error("Failed to list users", zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке пользователей")
		return
	}
	if len(users) == 0 {
		b.sendText(chatID, "📭 Нет пользователей для рассылки.")
		return
	}

	var success, failed int
	for _, user := range users {
		if err := b.send(user.UserID, "📢 Рассылка:\n\n"+text); err != nil {
			b.logger.Warn("Broadcast delivery failed",
				zap.Int64("user_id", user.UserID),
				zap.Error(err))
			failed++
			continue
		}
		success++
	}

	b.sendText(chatID, fmt.Sprintf("✅ Рассылка завершена!\nУспешно: %d, Неудачно: %d", success, failed))
}

// handleExportOrders builds an .xlsx report of all orders and sends it
// to the operator as a document.
func (b *Bot) handleExportOrders(ctx context.Context, chatID int64) {
	orders, err := b.orders.List(ctx)
	if err != nil {
		b.logger.Error("Failed to list orders", zap.Error(err))
		b.sendError(chatID, "Ошибка при загрузке заказов")
		return
	}

	if err := os.MkdirAll("reports", 0o755); err != nil {
		b.logger.Error("Failed to create reports directory", zap.Error(err))
		b.sendError(chatID, "Не удалось создать отчёт")
		return
	}

	path := filepath.Join("reports", fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_1504")))
	if err := storage.ExportOrdersToExcel(path, orders); err != nil {
		b.logger.Error("Failed to export orders", zap.Error(err))
		b.sendError(chatID, "Не удалось создать отчёт")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📊 Выгрузка заказов"
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("Failed to send report",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось отправить отчёт")
	}
}
