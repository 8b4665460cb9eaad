package billing

import "sort"

// Plan describes one subscription tier. Prices are in INR, the excess rate is
// INR per refund beyond the included quota.
type Plan struct {
	Name            string `json:"name"`
	BasePrice       int64  `json:"base_price"`
	IncludedRefunds int64  `json:"included_refunds"`
	ExcessRate      int64  `json:"excess_rate"`
	Limit           int64  `json:"limit"`
}

// Plans is the static plan catalog. An unknown plan key is a configuration
// error, not a user error: callers fail hard instead of defaulting.
var Plans = map[string]Plan{
	"starter": {Name: "starter", BasePrice: 999, IncludedRefunds: 100, ExcessRate: 15, Limit: 100},
	"growth":  {Name: "growth", BasePrice: 2499, IncludedRefunds: 500, ExcessRate: 10, Limit: 500},
	"scale":   {Name: "scale", BasePrice: 5999, IncludedRefunds: 2000, ExcessRate: 5, Limit: 2000},
}

// GetPlan looks up a plan by key.
func GetPlan(planType string) (Plan, bool) {
	p, ok := Plans[planType]
	return p, ok
}

// PlanList returns the catalog sorted by price, for the pricing page.
func PlanList() []Plan {
	plans := make([]Plan, 0, len(Plans))
	for _, p := range Plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].BasePrice < plans[j].BasePrice })
	return plans
}

// TaxBreakdown is the GST split of a base amount.
type TaxBreakdown struct {
	Subtotal  float64 `json:"subtotal"`
	GSTAmount float64 `json:"gst_amount"`
	Total     float64 `json:"total"`
}

// CalculateGST computes the tax breakdown of a base amount at the given rate.
func CalculateGST(base float64, rate float64) TaxBreakdown {
	gst := base * rate
	return TaxBreakdown{
		Subtotal:  base,
		GSTAmount: gst,
		Total:     base + gst,
	}
}
