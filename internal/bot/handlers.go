package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"brochure-bot/internal/pricing"
	"brochure-bot/internal/storage"
	"brochure-bot/pkg/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	buttonContinue    = "✅ Продолжить"
	buttonNoColor     = "Без цветных страниц"
	buttonFormatA4    = "A4"
	buttonFormatA3    = "A3 (со сгибом до A4)"
	buttonPlaceOrder  = "✅ Оформить заказ"
	buttonRecalculate = "🔁 Новый расчёт"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string, args []string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID)
	case "export", "stats", "status":
		b.handleAdminCommand(ctx, chatID, command, args)
	default:
		b.handleUnknownCommand(ctx, chatID)
	}
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendError(chatID, "Я не понимаю эту команду. Пожалуйста, используйте меню.")
}

func (b *Bot) handleUnknownCommand(ctx context.Context, chatID int64) {
	b.sendError(chatID, "Неизвестная команда. Пожалуйста, используйте /start для начала работы.")
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	helpText := `Доступные команды:
	/start - Рассчитать стоимость брошюры
	/cancel - Отменить текущий расчёт
	/help - Показать эту справку

	Если у вас возникли проблемы, свяжитесь с поддержкой.`
	b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state on cancel",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "❌ Расчёт отменён. Начните заново:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/start"),
		),
	)
	b.sendMessage(msg)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	text := `Привет! 👋

	Я помогу рассчитать стоимость печати брошюры на скрепке.

	⚠️ Прежде чем продолжить, ознакомьтесь с нашей Политикой конфиденциальности.
	Используя этого бота, вы соглашаетесь на обработку персональных данных.

	Если всё ок — нажмите кнопку ниже 👇`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.createPrivacyAgreementKeyboard()

	b.sendMessage(msg)
	if err := b.state.SetStep(ctx, chatID, StepPrivacyAgreement); err != nil {
		b.logger.Error("Failed to set privacy agreement state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handlePrivacyAgreement(ctx context.Context, chatID int64, text string) {
	if text != buttonContinue {
		b.sendError(chatID, "Пожалуйста, нажмите кнопку \"✅ Продолжить\" чтобы согласиться с условиями")
		return
	}

	b.askPageCount(ctx, chatID)
}

func (b *Bot) askPageCount(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Сколько страниц в брошюре? Введите число от 1 до %d (например: 8)",
		b.cfg.MaxBrochurePages))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepPageCount); err != nil {
		b.logger.Error("Failed to set page count state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handlePageCount(ctx context.Context, chatID int64, text string) {
	pages, err := strconv.Atoi(text)
	if err != nil || pages < 1 || pages > b.cfg.MaxBrochurePages {
		b.sendError(chatID, fmt.Sprintf(
			"Некорректное количество страниц. Допустимый диапазон: 1-%d",
			b.cfg.MaxBrochurePages))
		return
	}

	if err := b.state.SetPages(ctx, chatID, pages); err != nil {
		b.logger.Error("Failed to set pages",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при сохранении количества страниц")
		return
	}

	msg := tgbotapi.NewMessage(chatID,
		"Какие страницы цветные? Перечислите номера и диапазоны через запятую (например: 1, 3-5, 8)")
	msg.ReplyMarkup = b.createColorPagesKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepColorPages); err != nil {
		b.logger.Error("Failed to set color pages state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleColorPages(ctx context.Context, chatID int64, text string) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	spec := text
	if text == buttonNoColor {
		spec = ""
	} else {
		// Validate immediately so the user can correct the page list in
		// place; the list is re-parsed again at computation time.
		if _, err := pricing.ParsePages(spec, state.Pages); err != nil {
			b.sendError(chatID, parseErrorText(err))
			return
		}
	}

	if err := b.state.SetColorSpec(ctx, chatID, spec); err != nil {
		b.logger.Error("Failed to set color spec",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при сохранении цветных страниц")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Сколько экземпляров печатаем?")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepCopyCount); err != nil {
		b.logger.Error("Failed to set copy count state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleCopyCount(ctx context.Context, chatID int64, text string) {
	copies, err := strconv.Atoi(text)
	if err != nil || copies < 1 || copies > b.cfg.MaxCopies {
		b.sendError(chatID, fmt.Sprintf(
			"Некорректный тираж. Допустимый диапазон: 1-%d", b.cfg.MaxCopies))
		return
	}

	if err := b.state.SetCopies(ctx, chatID, copies); err != nil {
		b.logger.Error("Failed to set copies",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при сохранении тиража")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите формат бумаги:")
	msg.ReplyMarkup = b.createFormatKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepFormatSelection); err != nil {
		b.logger.Error("Failed to set format selection state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleFormatSelection(ctx context.Context, chatID int64, text string) {
	var a3 bool
	switch text {
	case buttonFormatA4:
		a3 = false
	case buttonFormatA3:
		a3 = true
	default:
		b.sendError(chatID, "Пожалуйста, выберите формат с помощью кнопок")
		return
	}

	if err := b.state.SetFormat(ctx, chatID, a3); err != nil {
		b.logger.Error("Failed to set format",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при сохранении формата")
		return
	}

	b.sendQuote(ctx, chatID)
}

// sendQuote recomputes the breakdown from the stored inputs and presents it.
func (b *Bot) sendQuote(ctx context.Context, chatID int64) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	breakdown, err := b.computeBreakdown(state)
	if err != nil {
		b.sendError(chatID, parseErrorText(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatQuoteMessage(state, breakdown))
	msg.ReplyMarkup = b.createQuoteKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepQuoteConfirmation); err != nil {
		b.logger.Error("Failed to set quote confirmation state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// computeBreakdown re-parses the color page list and runs the pricing engine.
func (b *Bot) computeBreakdown(state UserState) (pricing.Breakdown, error) {
	colorPages, err := pricing.ParsePages(state.ColorSpec, state.Pages)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.ComputeBreakdown(state.Pages, colorPages, state.Copies, state.A3), nil
}

func (b *Bot) handleQuoteConfirmation(ctx context.Context, chatID int64, text string) {
	switch text {
	case buttonPlaceOrder:
		msg := tgbotapi.NewMessage(chatID, "Введите ваш номер телефона для связи:")
		msg.ReplyMarkup = b.createContactRequestKeyboard()
		b.sendMessage(msg)

		if err := b.state.SetStep(ctx, chatID, StepPhoneNumber); err != nil {
			b.logger.Error("Failed to set phone number state",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}

	case buttonRecalculate:
		b.askPageCount(ctx, chatID)

	default:
		b.sendError(chatID, "Пожалуйста, используйте кнопки под расчётом")
	}
}

func (b *Bot) handlePhoneNumber(ctx context.Context, chatID int64, text string) {
	if !IsValidPhoneNumber(text) {
		b.sendError(chatID, "Пожалуйста, введите реальный номер телефона с кодом страны (например, +79161234567)")
		return
	}
	phone := NormalizePhoneNumber(text)

	limited, err := b.storage.CheckRateLimit(ctx, chatID, "order", 5, time.Hour)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	} else if limited {
		b.sendError(chatID, "Слишком много заказов за последний час. Попробуйте позже.")
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get order state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке заказа")
		return
	}

	breakdown, err := b.computeBreakdown(state)
	if err != nil {
		b.sendError(chatID, parseErrorText(err))
		return
	}

	quote := storage.Quote{
		UserID:         chatID,
		Pages:          state.Pages,
		ColorSpec:      state.ColorSpec,
		Copies:         state.Copies,
		A3:             state.A3,
		MonoCount:      breakdown.MonoCount,
		ColorCount:     breakdown.ColorCount,
		MonoPrice:      breakdown.MonoUnitPrice,
		ColorPrice:     breakdown.ColorUnitPrice,
		MonoSurcharge:  breakdown.MonoSurcharge,
		ColorSurcharge: breakdown.ColorSurcharge,
		MonoCost:       breakdown.MonoCost,
		ColorCost:      breakdown.ColorCost,
		BindingCost:    breakdown.BindingCost,
		TotalCost:      breakdown.TotalCost,
		Contact:        phone,
		Status:         "new",
		CreatedAt:      time.Now(),
	}

	quoteID, err := b.storage.SaveQuote(ctx, quote)
	if err != nil {
		b.logger.Error("Failed to save quote",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при сохранении заказа")
		return
	}
	quote.ID = quoteID

	confirmation := tgbotapi.NewMessage(chatID,
		"✅ Ваш заказ успешно оформлен!\n\nМы свяжемся с вами в ближайшее время.")
	confirmation.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(confirmation)

	b.NotifyNewQuoteToChannel(ctx, quote)
	b.NotifyAdmin(ctx, quote)

	if b.crm.Enabled() {
		req := api.QuoteRequest{
			UserID:     quote.UserID,
			Pages:      quote.Pages,
			ColorPages: quote.ColorSpec,
			Copies:     quote.Copies,
			Format:     quote.Format(),
			TotalCost:  quote.TotalCost,
			Contact:    quote.Contact,
		}
		if err := b.crm.SubmitQuote(ctx, req); err != nil {
			b.logger.Error("Failed to submit quote to CRM",
				zap.Int64("quote_id", quote.ID),
				zap.Error(err))
		}
	}

	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
