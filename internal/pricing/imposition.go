package pricing

// Impression is one printed side of one sheet half: two logical page slots
// that are always printed together.
type Impression [2]int

// SheetImpressions returns the two impressions carried by sheet j of a
// brochure with totalPages logical pages. totalPages must already be rounded
// to a multiple of 4. Slots follow the outside-in reader-spread order, so
// sheet 0's first impression carries the last and the first page.
func SheetImpressions(totalPages, j int) (Impression, Impression) {
	outer := Impression{totalPages - 2*j, 1 + 2*j}
	inner := Impression{2 + 2*j, totalPages - (2*j + 1)}
	return outer, inner
}

// RoundUpToSheet rounds a page count up to the next multiple of 4, the
// capacity of one saddle-stitched sheet.
func RoundUpToSheet(pages int) int {
	if rem := pages % 4; rem != 0 {
		return pages + 4 - rem
	}
	return pages
}

// countImpressions walks the sheet layout of a single brochure and counts its
// billable impressions. An impression whose slots both fall beyond the true
// page count is blank filler from rounding and is not billed. A single
// colored page makes its whole impression bill at color rate.
func countImpressions(pagesPerBrochure int, colorPages PageSet) (mono, color int) {
	totalPages := RoundUpToSheet(pagesPerBrochure)

	for j := 0; j < totalPages/4; j++ {
		outer, inner := SheetImpressions(totalPages, j)
		for _, imp := range [2]Impression{outer, inner} {
			counted := false
			colored := false
			for _, slot := range imp {
				if slot > pagesPerBrochure {
					continue
				}
				counted = true
				if colorPages.Contains(slot) {
					colored = true
				}
			}
			switch {
			case !counted:
			case colored:
				color++
			default:
				mono++
			}
		}
	}

	return mono, color
}
