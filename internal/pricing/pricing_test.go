package pricing

import (
	"math"
	"testing"
)

const priceEps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < priceEps
}

func TestComputeBreakdownSmallMonoRun(t *testing.T) {
	// 8 pages, no color, 1 copy, A4: 4 mono impressions under the surcharge
	// threshold, stitched.
	b := ComputeBreakdown(8, nil, 1, false)

	if b.MonoCount != 4 || b.ColorCount != 0 {
		t.Fatalf("counts = %d mono, %d color, want 4, 0", b.MonoCount, b.ColorCount)
	}
	if b.EffectiveMono != 4 {
		t.Errorf("effective mono = %d, want 4", b.EffectiveMono)
	}
	if !almostEqual(b.MonoSurcharge, 0.45) {
		t.Errorf("mono surcharge = %v, want 0.45", b.MonoSurcharge)
	}
	if !almostEqual(b.MonoCost, 0.45+3*0.10) {
		t.Errorf("mono cost = %v, want 0.75", b.MonoCost)
	}
	if b.BindingCount != 1 || !almostEqual(b.BindingCost, 0.18) {
		t.Errorf("binding = %d / %v, want 1 / 0.18", b.BindingCount, b.BindingCost)
	}
	if !almostEqual(b.TotalCost, 0.93) {
		t.Errorf("total = %v, want 0.93", b.TotalCost)
	}
}

func TestComputeBreakdownColorSurcharge(t *testing.T) {
	// 4 pages with page 1 colored: one impression goes color, the other
	// stays monochrome, no binding below 5 pages.
	b := ComputeBreakdown(4, pageSetOf(1), 1, false)

	if b.MonoCount != 1 || b.ColorCount != 1 {
		t.Fatalf("counts = %d mono, %d color, want 1, 1", b.MonoCount, b.ColorCount)
	}
	if !almostEqual(b.ColorSurcharge, 1.20) {
		t.Errorf("color surcharge = %v, want 1.20", b.ColorSurcharge)
	}
	if !almostEqual(b.ColorCost, 1.20) {
		t.Errorf("color cost = %v, want 1.20", b.ColorCost)
	}
	if !almostEqual(b.MonoCost, 0.10) {
		t.Errorf("mono cost = %v, want 0.10", b.MonoCost)
	}
	if b.BindingCount != 0 || b.BindingCost != 0 {
		t.Errorf("binding = %d / %v, want none", b.BindingCount, b.BindingCost)
	}
	if !almostEqual(b.TotalCost, 1.30) {
		t.Errorf("total = %v, want 1.30", b.TotalCost)
	}
}

func TestComputeBreakdownVolumeRun(t *testing.T) {
	// 8 pages x 100 copies: 400 effective mono impressions hit the 250 tier
	// and no surcharge applies.
	b := ComputeBreakdown(8, nil, 100, false)

	if b.MonoCount != 400 {
		t.Fatalf("mono count = %d, want 400", b.MonoCount)
	}
	if b.MonoSurcharge != 0 || b.ColorSurcharge != 0 {
		t.Errorf("unexpected surcharge: mono %v, color %v", b.MonoSurcharge, b.ColorSurcharge)
	}
	if !almostEqual(b.MonoUnitPrice, 0.06) {
		t.Errorf("mono unit price = %v, want 0.06", b.MonoUnitPrice)
	}
	if !almostEqual(b.TotalCost, 400*0.06+100*0.18) {
		t.Errorf("total = %v, want 42.00", b.TotalCost)
	}
}

func TestComputeBreakdownA3Doubling(t *testing.T) {
	a4 := ComputeBreakdown(8, pageSetOf(1), 10, false)
	a3 := ComputeBreakdown(8, pageSetOf(1), 10, true)

	if a3.MonoCount != a4.MonoCount || a3.ColorCount != a4.ColorCount {
		t.Fatalf("raw counts changed under A3: %+v vs %+v", a3, a4)
	}
	if a3.EffectiveMono != 2*a4.EffectiveMono || a3.EffectiveColor != 2*a4.EffectiveColor {
		t.Errorf("effective counts not doubled: %d/%d vs %d/%d",
			a3.EffectiveMono, a3.EffectiveColor, a4.EffectiveMono, a4.EffectiveColor)
	}
	if !almostEqual(a3.MonoUnitPrice, 2*unitPrice(monoTiers, a3.EffectiveMono)) {
		t.Errorf("A3 mono unit price = %v, want doubled base rate", a3.MonoUnitPrice)
	}
	if !almostEqual(a3.ColorSurcharge, 2.40) {
		t.Errorf("A3 color surcharge = %v, want 2.40", a3.ColorSurcharge)
	}
}

func TestComputeBreakdownCategorySumsToTotal(t *testing.T) {
	cases := []struct {
		pages  int
		color  PageSet
		copies int
		a3     bool
	}{
		{1, nil, 1, false},
		{4, pageSetOf(1), 1, false},
		{8, nil, 1, false},
		{8, pageSetOf(1, 3), 25, true},
		{13, pageSetOf(2, 5, 13), 7, false},
		{16, pageSetOf(1, 2, 3, 4), 500, true},
		{32, nil, 1000, false},
	}

	for _, tc := range cases {
		b := ComputeBreakdown(tc.pages, tc.color, tc.copies, tc.a3)
		if !almostEqual(b.TotalCost, b.MonoCost+b.ColorCost+b.BindingCost) {
			t.Errorf("ComputeBreakdown(%d, %v, %d, %v): subtotals %v+%v+%v do not sum to %v",
				tc.pages, tc.color, tc.copies, tc.a3,
				b.MonoCost, b.ColorCost, b.BindingCost, b.TotalCost)
		}
		if b.MonoSurcharge > 0 && b.ColorSurcharge > 0 {
			t.Errorf("ComputeBreakdown(%d, %v, %d, %v): both surcharges applied",
				tc.pages, tc.color, tc.copies, tc.a3)
		}
	}
}

func TestUnitPriceTierLookup(t *testing.T) {
	cases := []struct {
		quantity int
		want     float64
	}{
		{0, 0.10}, // empty jobs fall back to the floor tier
		{1, 0.10},
		{49, 0.10},
		{50, 0.09},
		{99, 0.09},
		{100, 0.07},
		{249, 0.07},
		{250, 0.06},
		{500, 0.05},
		{999, 0.05},
		{1000, 0.04},
		{100000, 0.04},
	}
	for _, tc := range cases {
		if got := unitPrice(monoTiers, tc.quantity); !almostEqual(got, tc.want) {
			t.Errorf("unitPrice(mono, %d) = %v, want %v", tc.quantity, got, tc.want)
		}
	}

	if got := unitPrice(colorTiers, 5000); !almostEqual(got, 0.38) {
		t.Errorf("unitPrice(color, 5000) = %v, want 0.38", got)
	}
	if got := unitPrice(colorTiers, 4999); !almostEqual(got, 0.18) {
		t.Errorf("unitPrice(color, 4999) = %v, want 0.18", got)
	}
}

func TestMonoTiersMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for quantity := 0; quantity <= 2000; quantity++ {
		price := unitPrice(monoTiers, quantity)
		if price > prev+priceEps {
			t.Fatalf("mono unit price rose from %v to %v at quantity %d", prev, price, quantity)
		}
		prev = price
	}
}
