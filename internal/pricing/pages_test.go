package pricing

import (
	"errors"
	"reflect"
	"testing"
)

func pageSetOf(pages ...int) PageSet {
	s := make(PageSet)
	for _, p := range pages {
		s[p] = struct{}{}
	}
	return s
}

func TestParsePagesListsAndRanges(t *testing.T) {
	got, err := ParsePages("1, 3-5, 7", 10)
	if err != nil {
		t.Fatalf("ParsePages failed: %v", err)
	}
	want := pageSetOf(1, 3, 4, 5, 7)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePages = %v, want %v", got, want)
	}
}

func TestParsePagesDeduplicates(t *testing.T) {
	got, err := ParsePages("2, 2, 1-3", 8)
	if err != nil {
		t.Fatalf("ParsePages failed: %v", err)
	}
	if want := pageSetOf(1, 2, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePages = %v, want %v", got, want)
	}
}

func TestParsePagesIgnoresEmptyTokens(t *testing.T) {
	got, err := ParsePages("1,,2,", 8)
	if err != nil {
		t.Fatalf("ParsePages failed: %v", err)
	}
	if want := pageSetOf(1, 2); !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePages = %v, want %v", got, want)
	}
}

func TestParsePagesSkipsNonNumericTokens(t *testing.T) {
	// "1 2" passes the character check but is not a number; such tokens are
	// skipped, not rejected.
	got, err := ParsePages("1 2, 4", 8)
	if err != nil {
		t.Fatalf("ParsePages failed: %v", err)
	}
	if want := pageSetOf(4); !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePages = %v, want %v", got, want)
	}
}

func TestParsePagesInvalidCharacters(t *testing.T) {
	for _, input := range []string{"1;3", "1, страница 2", "3..5", "1+2"} {
		set, err := ParsePages(input, 10)
		if set != nil {
			t.Errorf("ParsePages(%q) returned a set alongside an error", input)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) || parseErr.Kind != InvalidCharacters {
			t.Errorf("ParsePages(%q) = %v, want InvalidCharacters", input, err)
		}
	}
}

func TestParsePagesInvalidRange(t *testing.T) {
	for _, input := range []string{"5-3", "-4", "3-", "1-2-3"} {
		_, err := ParsePages(input, 10)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) || parseErr.Kind != InvalidRange {
			t.Errorf("ParsePages(%q) = %v, want InvalidRange", input, err)
			continue
		}
		if parseErr.Token != input {
			t.Errorf("ParsePages(%q) token = %q, want %q", input, parseErr.Token, input)
		}
	}
}

func TestParsePagesRangeOutOfBounds(t *testing.T) {
	set, err := ParsePages("7-19", 8)
	if set != nil {
		t.Error("ParsePages returned a partial set alongside an error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != PageOutOfBounds {
		t.Fatalf("ParsePages = %v, want PageOutOfBounds", err)
	}
	if parseErr.Value != 9 || parseErr.Max != 8 {
		t.Errorf("PageOutOfBounds cites %d/%d, want 9/8", parseErr.Value, parseErr.Max)
	}
}

func TestParsePagesSingleOutOfBounds(t *testing.T) {
	_, err := ParsePages("12", 8)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != PageOutOfBounds {
		t.Fatalf("ParsePages = %v, want PageOutOfBounds", err)
	}
	if parseErr.Value != 12 || parseErr.Max != 8 {
		t.Errorf("PageOutOfBounds cites %d/%d, want 12/8", parseErr.Value, parseErr.Max)
	}
}

func TestParsePagesIdempotent(t *testing.T) {
	inputs := []string{"1, 3-5, 7", "7-19", "1;3", ""}
	for _, input := range inputs {
		first, errFirst := ParsePages(input, 8)
		second, errSecond := ParsePages(input, 8)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("ParsePages(%q) not deterministic: %v vs %v", input, first, second)
		}
		if (errFirst == nil) != (errSecond == nil) {
			t.Errorf("ParsePages(%q) error not deterministic", input)
			continue
		}
		if errFirst != nil && errFirst.Error() != errSecond.Error() {
			t.Errorf("ParsePages(%q) errors differ: %v vs %v", input, errFirst, errSecond)
		}
	}
}
