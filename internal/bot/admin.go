package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var statusTitles = map[string]string{
	"new":        "Новый",
	"processing": "В обработке",
	"completed":  "Завершён",
	"cancelled":  "Отменён",
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.Admin.IDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	if !b.isAdmin(chatID) {
		return
	}

	switch cmd {
	case "export":
		if len(args) == 0 {
			b.handleExportAllQuotes(ctx, chatID)
		} else {
			quoteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				b.sendError(chatID, "Неверный формат ID заказа")
				return
			}
			b.handleExportSingleQuote(ctx, chatID, quoteID)
		}
	case "stats":
		b.handleQuoteStats(ctx, chatID)
	case "status":
		if len(args) < 2 {
			b.sendError(chatID, "Использование: /status <ID_заказа> <новый_статус>")
			return
		}
		b.handleStatusUpdate(ctx, chatID, args[0], args[1])
	default:
		b.sendError(chatID, "Неизвестная команда администратора")
	}
}

func (b *Bot) handleStatusUpdate(ctx context.Context, chatID int64, quoteIDStr string, newStatus string) {
	if !b.isAdmin(chatID) {
		return
	}

	quoteID, err := strconv.ParseInt(quoteIDStr, 10, 64)
	if err != nil {
		b.sendError(chatID, "Неверный формат ID заказа")
		return
	}

	if _, ok := statusTitles[newStatus]; !ok {
		b.sendError(chatID, "Недопустимый статус. Допустимые значения: new, processing, completed, cancelled")
		return
	}

	if err := b.storage.UpdateQuoteStatus(ctx, quoteID, newStatus); err != nil {
		b.logger.Error("Failed to update quote status",
			zap.Int64("quote_id", quoteID),
			zap.String("status", newStatus),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обновлении статуса")
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ Статус заказа #%d изменён на: %s", quoteID, statusTitles[newStatus])))

	// Notify user if possible
	quote, err := b.storage.GetQuoteByID(ctx, quoteID)
	if err == nil {
		userMsg := tgbotapi.NewMessage(quote.UserID, fmt.Sprintf(
			"ℹ️ Статус вашего заказа #%d изменён на: %s", quoteID, statusTitles[newStatus]))
		if _, err := b.bot.Send(userMsg); err != nil {
			b.logger.Warn("Failed to notify user about status change",
				zap.Int64("user_id", quote.UserID),
				zap.Error(err))
		}
	}
}

// handleQuoteStats shows aggregate order statistics.
func (b *Bot) handleQuoteStats(ctx context.Context, chatID int64) {
	stats, err := b.storage.GetQuoteStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get quote statistics", zap.Error(err))
		b.sendError(chatID, "Ошибка при получении статистики")
		return
	}

	msgText := fmt.Sprintf(
		"📊 *Статистика заказов*\n\n"+
			"📌 Всего заказов: %d\n"+
			"💰 Общая сумма: %.2f ₽\n"+
			"📅 За сегодня: %d (%.2f ₽)\n"+
			"📅 За неделю: %d (%.2f ₽)\n"+
			"📅 За месяц: %d (%.2f ₽)\n\n"+
			"📌 По статусам:\n"+
			"🆕 Новые: %d\n"+
			"🔄 В обработке: %d\n"+
			"✅ Завершённые: %d\n"+
			"❌ Отменённые: %d",
		stats.TotalQuotes,
		stats.TotalRevenue,
		stats.TodayQuotes, stats.TodayRevenue,
		stats.WeekQuotes, stats.WeekRevenue,
		stats.MonthQuotes, stats.MonthRevenue,
		stats.StatusCounts["new"],
		stats.StatusCounts["processing"],
		stats.StatusCounts["completed"],
		stats.StatusCounts["cancelled"],
	)

	msg := tgbotapi.NewMessage(chatID, msgText)
	msg.ParseMode = "Markdown"
	b.sendMessage(msg)
}

func (b *Bot) handleExportAllQuotes(ctx context.Context, chatID int64) {
	filename := fmt.Sprintf("quotes_report_%s", time.Now().Format("20060102"))
	if err := b.storage.ExportAllQuotesToExcel(ctx, filename); err != nil {
		b.logger.Error("Failed to export all quotes", zap.Error(err))
		b.sendError(chatID, "Не удалось выгрузить заказы")
		return
	}

	filepath := fmt.Sprintf("reports/%s.xlsx", filename)
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filepath))
	msg.Caption = "📊 Выгрузка всех заказов"

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Не удалось отправить файл выгрузки")
	}
}

func (b *Bot) handleExportSingleQuote(ctx context.Context, chatID int64, quoteID int64) {
	quote, err := b.storage.GetQuoteByID(ctx, quoteID)
	if err != nil {
		b.logger.Error("Failed to get quote",
			zap.Int64("quote_id", quoteID),
			zap.Error(err))
		b.sendError(chatID, "Заказ не найден")
		return
	}

	filepath, err := b.storage.ExportQuoteToExcel(ctx, *quote)
	if err != nil {
		b.logger.Error("Failed to export quote",
			zap.Int64("quote_id", quoteID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось выгрузить заказ")
		return
	}

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filepath))
	msg.Caption = fmt.Sprintf("📊 Заказ #%d", quoteID)

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Не удалось отправить файл выгрузки")
	}
}
