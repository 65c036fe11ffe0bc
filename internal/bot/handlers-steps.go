package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"berrybot/internal/storage"
)

// handleContact verifies a shared contact and either logs the user in
// or starts registration.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	contact := msg.Contact

	// The contact must belong to the sender, not be someone from their
	// address book.
	if contact.UserID != msg.From.ID {
		b.sendError(chatID, "Пожалуйста, отправьте именно свой контакт.")
		return
	}

	phone := NormalizePhone(contact.PhoneNumber)
	if len(phone) != 10 {
		b.sendError(chatID, "Некорректный номер телефона. Попробуйте снова.")
		return
	}

	user, err := b.users.Get(ctx, phone)
	switch {
	case err == nil:
		session := Session{UserID: msg.From.ID, Phone: phone, FullName: user.FullName}
		if err := b.sessions.Save(ctx, chatID, session); err != nil {
			b.logger.Error("Failed to save session",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			b.sendError(chatID, "Ошибка при обработке запроса")
			return
		}

		reply := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"👋 Добро пожаловать, %s!\n📞 %s\n\nВы вошли в свой аккаунт.",
			user.FullName, FormatPhone(phone)))
		reply.ReplyMarkup = b.createMainMenuKeyboard()
		b.sendMessage(reply)

	case errors.Is(err, storage.ErrUserNotFound):
		session := Session{Step: StepAwaitingFullName, UserID: msg.From.ID, Phone: phone}
		if err := b.sessions.Save(ctx, chatID, session); err != nil {
			b.logger.Error("Failed to save session",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			b.sendError(chatID, "Ошибка при обработке запроса")
			return
		}
		b.sendText(chatID, "✅ Контакт сохранён!\n\nТеперь введите ваше ФИО (например: Иванов Иван Иванович):")

	default:
		b.logger.Error("Failed to look up user",
			zap.String("phone", phone),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
	}
}

// handleFullName finishes registration. An invalid name re-prompts
// without a state change.
func (b *Bot) handleFullName(ctx context.Context, msg *tgbotapi.Message, session Session) {
	chatID := msg.Chat.ID
	fullName := strings.TrimSpace(msg.Text)

	if !IsValidFullName(fullName) {
		b.sendError(chatID,
			"Пожалуйста, введите корректное ФИО из трёх слов (только кириллица, с заглавных букв).\n"+
				"Пример: Иванов Иван Иванович")
		return
	}

	user := storage.User{
		UserID:   session.UserID,
		FullName: fullName,
		Phone:    session.Phone,
	}
	if err := b.users.Upsert(ctx, user); err != nil {
		b.logger.Error("Failed to save user",
			zap.Int64("user_id", session.UserID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось сохранить данные. Попробуйте ещё раз.")
		return
	}

	session.FullName = fullName
	session.Step = ""
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🎉 Регистрация завершена, %s!\n📞 Ваш номер: %s\n\nДобро пожаловать в магазин «Ягодки»! 🍒",
		fullName, FormatPhone(session.Phone)))
	reply.ReplyMarkup = b.createMainMenuKeyboard()
	b.sendMessage(reply)
}

// handleStartOrder resets the cart and opens berry selection.
func (b *Bot) handleStartOrder(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

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

	session.Cart = nil
	session.CurrentBerry = ""
	session.DeliveryDate = ""
	session.Step = StepSelectingBerry
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Давайте соберём ваш заказ.\nВыберите ягоду:")
	msg.ReplyMarkup = b.createBerryKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleBerrySelection(ctx context.Context, msg *tgbotapi.Message, session Session) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if b.catalog.IsFinish(text) {
		b.sendCartConfirmation(chatID, session)
		return
	}

	berry := ExtractBerryName(text)
	if _, ok := b.catalog.Price(berry); !ok {
		reply := tgbotapi.NewMessage(chatID, "Пожалуйста, выберите ягоду из списка.")
		reply.ReplyMarkup = b.createBerryKeyboard()
		b.sendMessage(reply)
		return
	}

	session.CurrentBerry = berry
	session.Step = StepEnteringQuantity
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("Сколько кг %s вы хотите заказать?", strings.ToLower(berry)))
}

func (b *Bot) handleQuantity(ctx context.Context, msg *tgbotapi.Message, session Session) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if b.catalog.IsFinish(text) {
		b.sendCartConfirmation(chatID, session)
		return
	}

	qty, err := ParseQuantity(text)
	if err != nil {
		b.sendText(chatID, "Пожалуйста, введите корректное количество (от 0.1 до 100 кг).")
		return
	}

	price, ok := b.catalog.Price(session.CurrentBerry)
	if !ok {
		// Catalog changed mid-dialogue; back to berry selection.
		session.CurrentBerry = ""
		session.Step = StepSelectingBerry
		if err := b.sessions.Save(ctx, chatID, session); err != nil {
			b.logger.Error("Failed to save session",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
		reply := tgbotapi.NewMessage(chatID, "Эта ягода больше недоступна. Выберите другую:")
		reply.ReplyMarkup = b.createBerryKeyboard()
		b.sendMessage(reply)
		return
	}

	line := storage.NewCartLine(session.CurrentBerry, qty, price)
	session.Cart = append(session.Cart, line)
	session.CurrentBerry = ""
	session.Step = StepSelectingBerry
	if err := b.sessions.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendText(chatID, fmt.Sprintf("✅ %s (%s кг × %d₽ = %s₽) добавлено в заказ.",
		line.Berry, formatKg(line.Kg), line.PricePerKg, formatMoney(line.TotalPrice)))

	reply := tgbotapi.NewMessage(chatID, "Выберите ещё ягоду или нажмите «Завершить заказ»:")
	reply.ReplyMarkup = b.createBerryKeyboard()
	b.sendMessage(reply)
}

// sendCartConfirmation summarizes the in-progress cart. No state change.
func (b *Bot) sendCartConfirmation(chatID int64, session Session) {
	if len(session.Cart) == 0 {
		b.sendText(chatID, "Ваша корзина пуста.")
		return
	}

	b.sendText(chatID, fmt.Sprintf(
		"🧺 Ваш заказ:\n%s\n\nЧтобы выбрать дату доставки, отправьте команду:\n/order",
		formatCartSummary(session.Cart)))
}
