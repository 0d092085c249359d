package upgrade

// Plan is one premium tier. Feature lists only; payment is simulated.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
}

var plans = []Plan{
	{
		ID:          "premium",
		Name:        "Premium",
		Price:       "$9.99",
		Period:      "/month",
		Description: "Advanced matching filters",
		Features: []string{
			"Gender filtering",
			"Country selection",
			"Age range filtering",
			"Height preferences",
			"Race preferences",
			"Priority matching",
		},
	},
	{
		ID:          "premium-plus",
		Name:        "Premium+",
		Price:       "$19.99",
		Period:      "/month",
		Description: "Everything in Premium plus exclusive features",
		Features: []string{
			"All Premium features",
			"Religion filtering",
			"Education level filtering",
			"Profession filtering",
			"Interest-based matching",
			"Video chat priority",
			"No ads",
		},
		Popular: true,
	},
}

// Plans returns the plan catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan tier.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
