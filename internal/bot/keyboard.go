package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"berrybot/internal/storage"
)

// BOT KEYBOARDS

// Callback data prefixes used by the inline keyboards.
const (
	callbackStartOrder    = "order:start"
	callbackViewCart      = "cart:view"
	callbackOrderHistory  = "orders:history"
	callbackCurrentOrders = "orders:current"
	callbackCancelOrder   = "order:cancel:"
	callbackDate          = "date:"
	callbackTime          = "time:"
)

func (b *Bot) createContactRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📲 Отправить контакт"),
		),
	)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

// createBerryKeyboard lists every berry with its price plus the finish
// button. The keyboard stays visible so several berries can be picked.
func (b *Bot) createBerryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(b.catalog.Berries)+1)
	for _, item := range b.catalog.Berries {
		label := fmt.Sprintf("%s — %d₽", item.Name, item.PricePerKg)
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(b.catalog.Finish)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func (b *Bot) createMainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Заказать ягоды", callbackStartOrder),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧺 Корзина", callbackViewCart),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 История заказов", callbackOrderHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Текущие заказы", callbackCurrentOrders),
		),
	)
}

// createDateSelectionKeyboard offers the next 30 calendar days, three
// buttons per row.
func (b *Bot) createDateSelectionKeyboard(today time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := 1; i <= 30; i++ {
		date := today.AddDate(0, 0, i).Format(storage.DateLayout)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(date, callbackDate+date))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// createTimeSelectionKeyboard offers hourly slots from 10:00 to 20:00.
func (b *Bot) createTimeSelectionKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for h := 10; h <= 20; h++ {
		slot := fmt.Sprintf("%02d:00", h)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(slot, callbackTime+slot),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) createCancelOrderKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить заказ",
				fmt.Sprintf("%s%d", callbackCancelOrder, orderID)),
		),
	)
}
