package pricing

// Tier maps a minimum effective impression count to a unit price. Tables are
// ordered by descending MinQuantity and end in a MinQuantity=1 floor, so the
// first matching tier is the deepest volume discount for the quantity.
type Tier struct {
	MinQuantity int
	UnitPrice   float64
}

// Base rates per A4 impression. A3 jobs bill at double these.
var (
	monoTiers = []Tier{
		{MinQuantity: 1000, UnitPrice: 0.04},
		{MinQuantity: 500, UnitPrice: 0.05},
		{MinQuantity: 250, UnitPrice: 0.06},
		{MinQuantity: 100, UnitPrice: 0.07},
		{MinQuantity: 50, UnitPrice: 0.09},
		{MinQuantity: 1, UnitPrice: 0.10},
	}
	colorTiers = []Tier{
		{MinQuantity: 5000, UnitPrice: 0.38},
		{MinQuantity: 1000, UnitPrice: 0.18},
		{MinQuantity: 500, UnitPrice: 0.28},
		{MinQuantity: 250, UnitPrice: 0.35},
		{MinQuantity: 100, UnitPrice: 0.43},
		{MinQuantity: 50, UnitPrice: 0.69},
		{MinQuantity: 1, UnitPrice: 0.84},
	}
)

const (
	monoSurchargeA4  = 0.45
	colorSurchargeA4 = 1.20
	bindingPerCopy   = 0.18

	// Effective counts below this bill their first impression at the flat
	// surcharge instead of the tier price.
	surchargeBelow = 50
)

// Breakdown is the full cost decomposition of one print job. It is recomputed
// wholesale on every input change, never partially mutated.
type Breakdown struct {
	MonoCount  int // billable monochrome impressions across all copies
	ColorCount int

	// A4-equivalent counts: doubled for A3, used for tier lookup and
	// surcharge thresholds.
	EffectiveMono  int
	EffectiveColor int

	MonoUnitPrice  float64 // per impression at the chosen format
	ColorUnitPrice float64

	MonoSurcharge  float64 // flat first-impression price, 0 when not applied
	ColorSurcharge float64

	MonoCost     float64
	ColorCost    float64
	BindingCount int
	BindingCost  float64
	TotalCost    float64
}

// unitPrice scans tiers in descending MinQuantity order and returns the price
// of the first tier the quantity meets, falling back to the floor tier.
func unitPrice(tiers []Tier, quantity int) float64 {
	for _, t := range tiers {
		if quantity >= t.MinQuantity {
			return t.UnitPrice
		}
	}
	return tiers[len(tiers)-1].UnitPrice
}

// ComputeBreakdown prices a saddle-stitched brochure job. The caller
// guarantees pagesPerBrochure >= 1 and brochureCount >= 1; colorPages may be
// nil. The function is pure and never fails.
func ComputeBreakdown(pagesPerBrochure int, colorPages PageSet, brochureCount int, a3 bool) Breakdown {
	monoPerCopy, colorPerCopy := countImpressions(pagesPerBrochure, colorPages)

	b := Breakdown{
		MonoCount:  monoPerCopy * brochureCount,
		ColorCount: colorPerCopy * brochureCount,
	}

	factor := 1.0
	sizeMul := 1
	if a3 {
		// An A3 sheet folds to two A4-equivalent impressions, so counts
		// double for tier lookup and every price doubles. Subtotals stay
		// raw count x doubled price.
		factor = 2.0
		sizeMul = 2
	}
	b.EffectiveMono = b.MonoCount * sizeMul
	b.EffectiveColor = b.ColorCount * sizeMul

	b.MonoUnitPrice = factor * unitPrice(monoTiers, b.EffectiveMono)
	b.ColorUnitPrice = factor * unitPrice(colorTiers, b.EffectiveColor)

	switch {
	case b.ColorCount > 0 && b.EffectiveColor < surchargeBelow:
		b.ColorSurcharge = factor * colorSurchargeA4
		b.ColorCost = b.ColorSurcharge + float64(b.ColorCount-1)*b.ColorUnitPrice
		b.MonoCost = float64(b.MonoCount) * b.MonoUnitPrice
	case b.ColorCount == 0 && b.MonoCount > 0 && b.EffectiveMono < surchargeBelow:
		b.MonoSurcharge = factor * monoSurchargeA4
		b.MonoCost = b.MonoSurcharge + float64(b.MonoCount-1)*b.MonoUnitPrice
	default:
		b.MonoCost = float64(b.MonoCount) * b.MonoUnitPrice
		b.ColorCost = float64(b.ColorCount) * b.ColorUnitPrice
	}

	// Single- and double-sheet brochures are not stitched.
	if pagesPerBrochure >= 5 {
		b.BindingCount = brochureCount
		b.BindingCost = float64(brochureCount) * bindingPerCopy
	}

	b.TotalCost = b.MonoCost + b.ColorCost + b.BindingCost
	return b
}
