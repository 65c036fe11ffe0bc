package bot

import (
	"fmt"
	"strconv"
	"strings"

	"berrybot/internal/storage"
)

// FormatPhone renders a stored 10-digit phone for display.
func FormatPhone(phone string) string {
	return "+7" + phone
}

// formatMoney prints an amount without trailing zeroes: 1400, 757.5.
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCartLines(cart []storage.CartItem) string {
	var sb strings.Builder
	for _, item := range cart {
		fmt.Fprintf(&sb, "• %s: %s кг\n", item.Berry, formatKg(item.Kg))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCartSummary(cart []storage.CartItem) string {
	var sb strings.Builder
	for _, item := range cart {
		fmt.Fprintf(&sb, "• %s: %s кг × %d₽ = %s₽\n",
			item.Berry, formatKg(item.Kg), item.PricePerKg, formatMoney(item.TotalPrice))
	}
	fmt.Fprintf(&sb, "\n💰 Итого: %s₽", formatMoney(storage.CartTotal(cart)))
	return sb.String()
}

func statusLine(status storage.OrderStatus) string {
	switch status {
	case storage.StatusPendingPayment:
		return "⏳ Ожидает оплаты"
	case storage.StatusPaid:
		return "✅ Оплачен"
	case storage.StatusCancelled:
		return "❌ Отменён"
	}
	return status.Label()
}

func formatOrder(order storage.Order) string {
	return fmt.Sprintf(
		"Заказ №%d\n"+
			"📅 %s в %s\n"+
			"%s\n"+
			"💰 Итого: %s₽\n"+
			"📌 %s",
		order.ID,
		order.Date, order.Time,
		formatCartLines(order.Cart),
		formatMoney(order.Total()),
		statusLine(order.Status),
	)
}
