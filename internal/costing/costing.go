// Package costing computes per-unit production cost and suggested retail
// prices for a printed part. Pure arithmetic, no side effects.
package costing

// Maintenance is amortized assuming the printer runs 8 hours a day, 30 days
// a month.
const productiveHoursPerMonth = 30.0 * 8.0

type Inputs struct {
	WeightGrams            float64 `json:"weight_grams"`
	PricePerKg             float64 `json:"price_per_kg"`
	WasteRatePercent       float64 `json:"waste_rate_percent"`
	PowerConsumptionWatts  float64 `json:"power_consumption_watts"`
	PrintTimeMinutes       float64 `json:"print_time_minutes"`
	EnergyPricePerKwh      float64 `json:"energy_price_per_kwh"`
	MaintenanceCostMonthly float64 `json:"maintenance_cost_monthly"`
	PackagingCost          float64 `json:"packaging_cost"`
	PostProductionCost     float64 `json:"post_production_cost"`
	CardFeePercent         float64 `json:"card_fee_percent"`
}

type Breakdown struct {
	FilamentCost     float64 `json:"filament_cost"`
	EnergyCost       float64 `json:"energy_cost"`
	MaintenanceCost  float64 `json:"maintenance_cost"`
	Subtotal         float64 `json:"subtotal"`
	TotalCost        float64 `json:"total_cost"`
	SuggestedPrice2x float64 `json:"suggested_price_2x"`
	SuggestedPrice3x float64 `json:"suggested_price_3x"`
}

// Estimate derives the full cost breakdown. The card fee grosses up the
// subtotal so the seller nets the true cost after the processor takes its
// cut; a fee at or above 100% (or below 0) cannot be grossed up and is
// ignored instead of producing Inf/NaN. Negative outcomes clamp to zero so
// junk inputs never surface negative money.
func Estimate(in Inputs) Breakdown {
	filament := in.WeightGrams * (1 + in.WasteRatePercent/100) * (in.PricePerKg / 1000)
	energy := (in.PowerConsumptionWatts / 1000) * (in.PrintTimeMinutes / 60) * in.EnergyPricePerKwh
	maintenance := (in.MaintenanceCostMonthly / productiveHoursPerMonth) * (in.PrintTimeMinutes / 60)

	subtotal := filament + energy + maintenance + in.PackagingCost + in.PostProductionCost

	total := subtotal
	if in.CardFeePercent > 0 && in.CardFeePercent < 100 {
		total = subtotal / (1 - in.CardFeePercent/100)
	}

	return Breakdown{
		FilamentCost:     clamp(filament),
		EnergyCost:       clamp(energy),
		MaintenanceCost:  clamp(maintenance),
		Subtotal:         clamp(subtotal),
		TotalCost:        clamp(total),
		SuggestedPrice2x: clamp(total * 2),
		SuggestedPrice3x: clamp(total * 3),
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
