package bot

import (
	"context"
	"fmt"

	"brochure-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NotifyNewQuoteToChannel отправляет краткое уведомление в канал
func (b *Bot) NotifyNewQuoteToChannel(ctx context.Context, quote storage.Quote) {
	if b.cfg.Admin.ChannelID == 0 {
		b.logger.Warn("Channel notifications disabled - no channel ID configured")
		return
	}

	text := fmt.Sprintf(
		"📦 Новый заказ #%d\n"+
			"Брошюра: %d стр., %s\n"+
			"Тираж: %d экз.\n"+
			"Цена: %.2f ₽\n"+
			"Контакт: %s",
		quote.ID,
		quote.Pages,
		quote.Format(),
		quote.Copies,
		quote.TotalCost,
		FormatPhoneNumber(quote.Contact),
	)

	msg := tgbotapi.NewMessage(b.cfg.Admin.ChannelID, text)

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send channel notification",
			zap.Int64("quote_id", quote.ID),
			zap.Error(err))
	}
}

// NotifyAdmin отправляет детали заказа и Excel файл админам
func (b *Bot) NotifyAdmin(ctx context.Context, quote storage.Quote) {
	if b.cfg.Admin.ChatID != 0 {
		b.sendAdminNotification(ctx, b.cfg.Admin.ChatID, quote)
	}

	for _, adminID := range b.cfg.Admin.IDs {
		if adminID != 0 && adminID != b.cfg.Admin.ChatID {
			b.sendAdminNotification(ctx, adminID, quote)
		}
	}
}

func (b *Bot) sendAdminNotification(ctx context.Context, chatID int64, quote storage.Quote) {
	if chatID == 0 {
		b.logger.Warn("Skipping notification to zero chat ID")
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatQuoteNotification(quote))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ В обработку", fmt.Sprintf("status:%d:processing", quote.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("status:%d:cancelled", quote.ID)),
		),
	)

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send admin notification",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	filepath, err := b.storage.ExportQuoteToExcel(ctx, quote)
	if err != nil {
		b.logger.Error("Failed to create Excel file for quote",
			zap.Int64("quote_id", quote.ID),
			zap.Error(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filepath))
	doc.Caption = fmt.Sprintf("📊 Детали заказа #%d", quote.ID)

	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file to admin",
			zap.Int64("quote_id", quote.ID),
			zap.Error(err))
	}
}
