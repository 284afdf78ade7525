package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// PageSet is a deduplicated set of page numbers produced by ParsePages.
type PageSet map[int]struct{}

// Contains reports whether page is in the set.
func (s PageSet) Contains(page int) bool {
	_, ok := s[page]
	return ok
}

type ParseErrorKind int

const (
	InvalidCharacters ParseErrorKind = iota
	InvalidRange
	PageOutOfBounds
)

// ParseError reports exactly one malformed-input condition. No partial page
// set is ever returned alongside it.
type ParseError struct {
	Kind  ParseErrorKind
	Token string // offending token, set for InvalidRange
	Value int    // offending page number, set for PageOutOfBounds
	Max   int    // page-count bound, set for PageOutOfBounds
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case InvalidCharacters:
		return "page list contains invalid characters"
	case InvalidRange:
		return fmt.Sprintf("invalid page range %q", e.Token)
	case PageOutOfBounds:
		return fmt.Sprintf("page %d exceeds page count %d", e.Value, e.Max)
	default:
		return "invalid page list"
	}
}

// ParsePages turns a free-form specification like "1, 3-5, 7" into the set of
// page numbers it names. maxPage is the brochure's page count; the first value
// above it aborts parsing. Tokens without a hyphen that are not numbers are
// skipped, broken range tokens are an error.
func ParsePages(input string, maxPage int) (PageSet, error) {
	for _, r := range input {
		if !isPageListRune(r) {
			return nil, &ParseError{Kind: InvalidCharacters}
		}
	}

	pages := make(PageSet)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			if err := addRange(pages, token, maxPage); err != nil {
				return nil, err
			}
			continue
		}

		page, err := strconv.Atoi(token)
		if err != nil {
			// Tokens that survive the character check but do not form a
			// number (e.g. "1 2") are ignored. Broken ranges are not.
			continue
		}
		if page > maxPage {
			return nil, &ParseError{Kind: PageOutOfBounds, Value: page, Max: maxPage}
		}
		pages[page] = struct{}{}
	}

	return pages, nil
}

func addRange(pages PageSet, token string, maxPage int) error {
	bounds := strings.SplitN(token, "-", 2)
	start, errStart := strconv.Atoi(strings.TrimSpace(bounds[0]))
	end, errEnd := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if errStart != nil || errEnd != nil || start > end {
		return &ParseError{Kind: InvalidRange, Token: token}
	}

	for page := start; page <= end; page++ {
		if page > maxPage {
			return &ParseError{Kind: PageOutOfBounds, Value: page, Max: maxPage}
		}
		pages[page] = struct{}{}
	}
	return nil
}

func isPageListRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == ',' || r == '-' || unicode.IsSpace(r)
}
