package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"berrybot/internal/storage"
)

// notifyOperators sends a text to the operator and every helper.
// Delivery failures are logged per recipient and never abort anything.
func (b *Bot) notifyOperators(ctx context.Context, text string) {
	for _, id := range b.cfg.OperatorIDs() {
		if id == 0 {
			continue
		}
		b.sendText(id, text)
	}
}

// notifyNewOrder tells the operators about a freshly created order.
func (b *Bot) notifyNewOrder(ctx context.Context, order storage.Order) {
	b.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.String("date", order.Date),
		zap.String("time", order.Time))

	b.notifyOperators(ctx, fmt.Sprintf(
		"🛒 Новый заказ №%d\n"+
			"👤 %s\n"+
			"📞 %s\n"+
			"📅 %s в %s\n"+
			"📦\n%s\n"+
			"💰 %s₽\n\n"+
			"Используйте: /oplata %d https://...",
		order.ID,
		order.FullName,
		FormatPhone(order.Phone),
		order.Date, order.Time,
		formatCartLines(order.Cart),
		formatMoney(order.Total()),
		order.ID,
	))
}
