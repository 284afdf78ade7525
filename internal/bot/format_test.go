package bot

import (
	"strings"
	"testing"

	"brochure-bot/internal/pricing"
)

func TestFormatQuoteMessageSurchargeSplit(t *testing.T) {
	state := UserState{Pages: 8, Copies: 1}
	breakdown := pricing.ComputeBreakdown(8, nil, 1, false)

	msg := FormatQuoteMessage(state, breakdown)

	if !strings.Contains(msg, "Первый оттиск: 0.45 ₽") {
		t.Errorf("quote message missing first-impression row:\n%s", msg)
	}
	if !strings.Contains(msg, "Остальные: 3 × 0.10 ₽") {
		t.Errorf("quote message missing remaining-impressions row:\n%s", msg)
	}
	if !strings.Contains(msg, "Итого: 0.93 ₽") {
		t.Errorf("quote message missing total:\n%s", msg)
	}
	if strings.Contains(msg, "Цена за экземпляр") {
		t.Errorf("per-copy price shown for a single copy:\n%s", msg)
	}
}

func TestFormatQuoteMessagePerCopyPrice(t *testing.T) {
	state := UserState{Pages: 8, Copies: 100}
	breakdown := pricing.ComputeBreakdown(8, nil, 100, false)

	msg := FormatQuoteMessage(state, breakdown)

	if !strings.Contains(msg, "Цена за экземпляр: 0.42 ₽") {
		t.Errorf("quote message missing per-copy price:\n%s", msg)
	}
	if strings.Contains(msg, "Первый оттиск") {
		t.Errorf("surcharge split shown for a volume run:\n%s", msg)
	}
}

func TestParseErrorText(t *testing.T) {
	_, err := pricing.ParsePages("7-19", 8)
	text := parseErrorText(err)
	if !strings.Contains(text, "8") || !strings.Contains(text, "9") {
		t.Errorf("out-of-bounds message should cite page and bound: %q", text)
	}

	_, err = pricing.ParsePages("страница 1", 8)
	if text := parseErrorText(err); !strings.Contains(text, "цифры") {
		t.Errorf("invalid characters message = %q", text)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	cases := map[string]string{
		"89161234567":        "+79161234567",
		"79161234567":        "+79161234567",
		"9161234567":         "+79161234567",
		"+7 (916) 123-45-67": "+79161234567",
	}
	for input, want := range cases {
		if got := NormalizePhoneNumber(input); got != want {
			t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"+79161234567", "89161234567", "+380501234567"}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}

	invalid := []string{"", "12345", "1234567890", "0000000000"}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}
