package pricing

import "testing"

func TestRoundUpToSheet(t *testing.T) {
	cases := map[int]int{1: 4, 2: 4, 3: 4, 4: 4, 5: 8, 8: 8, 9: 12, 12: 12, 13: 16}
	for pages, want := range cases {
		if got := RoundUpToSheet(pages); got != want {
			t.Errorf("RoundUpToSheet(%d) = %d, want %d", pages, got, want)
		}
		if got := RoundUpToSheet(pages); got%4 != 0 || got < pages {
			t.Errorf("RoundUpToSheet(%d) = %d violates the rounding invariant", pages, got)
		}
	}
}

// Hand-computed reader-spread layouts for small brochures.
func TestSheetImpressions(t *testing.T) {
	cases := []struct {
		totalPages, sheet int
		outer, inner      Impression
	}{
		{4, 0, Impression{4, 1}, Impression{2, 3}},
		{8, 0, Impression{8, 1}, Impression{2, 7}},
		{8, 1, Impression{6, 3}, Impression{4, 5}},
		{12, 0, Impression{12, 1}, Impression{2, 11}},
		{12, 1, Impression{10, 3}, Impression{4, 9}},
		{12, 2, Impression{8, 5}, Impression{6, 7}},
		{16, 0, Impression{16, 1}, Impression{2, 15}},
		{16, 3, Impression{10, 7}, Impression{8, 9}},
	}

	for _, tc := range cases {
		outer, inner := SheetImpressions(tc.totalPages, tc.sheet)
		if outer != tc.outer || inner != tc.inner {
			t.Errorf("SheetImpressions(%d, %d) = %v, %v, want %v, %v",
				tc.totalPages, tc.sheet, outer, inner, tc.outer, tc.inner)
		}
	}
}

func TestSheetImpressionsCoverAllPages(t *testing.T) {
	for _, totalPages := range []int{4, 8, 12, 16, 32} {
		seen := make(map[int]bool)
		for j := 0; j < totalPages/4; j++ {
			outer, inner := SheetImpressions(totalPages, j)
			for _, slot := range []int{outer[0], outer[1], inner[0], inner[1]} {
				if slot < 1 || slot > totalPages {
					t.Fatalf("totalPages=%d sheet=%d: slot %d out of range", totalPages, j, slot)
				}
				if seen[slot] {
					t.Fatalf("totalPages=%d: slot %d appears twice", totalPages, slot)
				}
				seen[slot] = true
			}
		}
		if len(seen) != totalPages {
			t.Errorf("totalPages=%d: %d distinct slots, want %d", totalPages, len(seen), totalPages)
		}
	}
}

func TestCountImpressionsSkipsBlankFiller(t *testing.T) {
	cases := []struct {
		pages int
		mono  int
	}{
		{1, 1}, // sheet {4,1},{2,3}: only the impression holding page 1 is real
		{2, 2},
		{3, 2},
		{4, 2},
		{5, 4}, // rounded to 8 pages, every impression holds a real page
		{8, 4},
	}
	for _, tc := range cases {
		mono, color := countImpressions(tc.pages, nil)
		if mono != tc.mono || color != 0 {
			t.Errorf("countImpressions(%d, nil) = %d mono, %d color, want %d, 0",
				tc.pages, mono, color, tc.mono)
		}
	}
}

func TestCountImpressionsColorBleed(t *testing.T) {
	// Page 1 shares an impression with page 8: the whole impression bills
	// at color rate even though page 8 stays monochrome.
	mono, color := countImpressions(8, pageSetOf(1))
	if mono != 3 || color != 1 {
		t.Errorf("countImpressions(8, {1}) = %d mono, %d color, want 3, 1", mono, color)
	}

	// Pages 2 and 7 share one impression; a single color impression results.
	mono, color = countImpressions(8, pageSetOf(2, 7))
	if mono != 3 || color != 1 {
		t.Errorf("countImpressions(8, {2,7}) = %d mono, %d color, want 3, 1", mono, color)
	}

	// Color page beyond the true page count is filler and must not bill.
	mono, color = countImpressions(5, pageSetOf(7))
	if mono != 4 || color != 0 {
		t.Errorf("countImpressions(5, {7}) = %d mono, %d color, want 4, 0", mono, color)
	}
}
