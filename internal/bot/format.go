package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"brochure-bot/internal/pricing"
	"brochure-bot/internal/storage"
)

// FormatQuoteMessage renders a breakdown into the quote message, splitting a
// surcharged category into its first-impression and remaining-impressions
// rows and adding a per-copy price for multi-copy jobs.
func FormatQuoteMessage(state UserState, b pricing.Breakdown) string {
	var sb strings.Builder

	format := "A4"
	if state.A3 {
		format = "A3 со сгибом до A4"
	}

	fmt.Fprintf(&sb, "📖 Брошюра: %d стр., %s, %d экз.\n", state.Pages, format, state.Copies)
	if state.ColorSpec != "" {
		fmt.Fprintf(&sb, "🎨 Цветные страницы: %s\n", state.ColorSpec)
	}
	sb.WriteString("\n")

	sb.WriteString(formatCategory("⬛ Ч/б оттиски", b.MonoCount, b.MonoUnitPrice, b.MonoSurcharge, b.MonoCost))
	sb.WriteString(formatCategory("🎨 Цветные оттиски", b.ColorCount, b.ColorUnitPrice, b.ColorSurcharge, b.ColorCost))

	if b.BindingCount > 0 {
		fmt.Fprintf(&sb, "📎 Скрепление: %d × %.2f ₽ = %.2f ₽\n",
			b.BindingCount, b.BindingCost/float64(b.BindingCount), b.BindingCost)
	} else {
		sb.WriteString("📎 Скрепление: не требуется\n")
	}

	sb.WriteString("────────────────────\n")
	fmt.Fprintf(&sb, "💵 Итого: %.2f ₽\n", b.TotalCost)

	if state.Copies > 1 {
		fmt.Fprintf(&sb, "Цена за экземпляр: %.2f ₽\n", b.TotalCost/float64(state.Copies))
	}

	return sb.String()
}

func formatCategory(label string, count int, unit, surcharge, cost float64) string {
	if count == 0 {
		return fmt.Sprintf("%s: нет\n", label)
	}

	if surcharge > 0 {
		s := fmt.Sprintf("%s: %d\n", label, count)
		s += fmt.Sprintf("    Первый оттиск: %.2f ₽\n", surcharge)
		if count > 1 {
			s += fmt.Sprintf("    Остальные: %d × %.2f ₽ = %.2f ₽\n",
				count-1, unit, float64(count-1)*unit)
		}
		return s
	}

	return fmt.Sprintf("%s: %d × %.2f ₽ = %.2f ₽\n", label, count, unit, cost)
}

// parseErrorText maps parser failures to user-facing messages.
func parseErrorText(err error) string {
	var parseErr *pricing.ParseError
	if !errors.As(err, &parseErr) {
		return "Не удалось разобрать список страниц"
	}

	switch parseErr.Kind {
	case pricing.InvalidCharacters:
		return "Список страниц может содержать только цифры, запятые и дефисы (например: 1, 3-5, 8)"
	case pricing.InvalidRange:
		return fmt.Sprintf("Некорректный диапазон страниц: %q. Укажите его как начало-конец, например 3-5", parseErr.Token)
	case pricing.PageOutOfBounds:
		return fmt.Sprintf("Страницы %d нет в брошюре: всего %d стр.", parseErr.Value, parseErr.Max)
	default:
		return "Не удалось разобрать список страниц"
	}
}

// FormatQuoteNotification renders an order for admin notifications.
func FormatQuoteNotification(quote storage.Quote) string {
	return fmt.Sprintf(
		"📦 Новый заказ #%d\n\n"+
			"Брошюра: %d стр., %s\n"+
			"Цветные страницы: %s\n"+
			"Тираж: %d экз.\n"+
			"──────────────────\n"+
			"Детали расчета:\n"+
			"- Ч/б оттиски: %d × %.2f ₽ = %.2f ₽\n"+
			"- Цветные оттиски: %d × %.2f ₽ = %.2f ₽\n"+
			"- Скрепление: %.2f ₽\n"+
			"Итого: %.2f ₽\n"+
			"──────────────────\n"+
			"Контакт: %s\n"+
			"Статус: %s\n"+
			"Дата: %s",
		quote.ID,
		quote.Pages,
		quote.Format(),
		orDash(quote.ColorSpec),
		quote.Copies,
		quote.MonoCount,
		quote.MonoPrice,
		quote.MonoCost,
		quote.ColorCount,
		quote.ColorPrice,
		quote.ColorCost,
		quote.BindingCost,
		quote.TotalCost,
		FormatPhoneNumber(quote.Contact),
		quote.Status,
		quote.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func NormalizePhoneNumber(phone string) string {
	// Remove all non-digit characters
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	// Add +7 for Russian numbers if no country code exists
	if strings.HasPrefix(cleaned, "7") && len(cleaned) == 11 {
		return "+" + cleaned
	}
	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		return "+7" + cleaned[1:]
	}
	if strings.HasPrefix(cleaned, "9") && len(cleaned) == 10 {
		return "+7" + cleaned
	}

	// For international numbers, preserve the + if it was there
	if strings.HasPrefix(phone, "+") {
		return "+" + cleaned
	}

	return cleaned
}

func IsValidPhoneNumber(phone string) bool {
	if phone == "" {
		return false
	}

	// Remove all non-digit characters for validation
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	// Check length (10-15 digits without +)
	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}

	// Check for obviously fake numbers
	badNumbers := map[string]bool{
		"0000000000": true,
		"1111111111": true,
		"1234567890": true,
		"9999999999": true,
		"0123456789": true,
	}
	if badNumbers[cleaned] {
		return false
	}

	if !strings.HasPrefix(phone, "+") && !unicode.IsDigit(rune(phone[0])) {
		return false
	}

	return true
}

func FormatPhoneNumber(phone string) string {
	// Format as +7 (XXX) XXX-XX-XX for Russian numbers
	if strings.HasPrefix(phone, "+7") && len(phone) == 12 {
		return fmt.Sprintf("%s (%s) %s-%s-%s",
			phone[:2],
			phone[2:5],
			phone[5:8],
			phone[8:10],
			phone[10:12])
	}
	return phone
}
