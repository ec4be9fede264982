package models

// ServiceCategory is one entry of the static service catalog.
type ServiceCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RuleType selects how a pricing rule resolves a variant to a price.
type RuleType string

const (
	RuleFixed     RuleType = "fixed"
	RuleSurface   RuleType = "surface"
	RuleLevel     RuleType = "level"
	RuleRecurring RuleType = "recurring"
)

// PriceOption is one selectable variant of a pricing rule. OnRequest marks
// the quotation sentinel: the service is offered but priced manually. For
// surface rules MinSurface/MaxSurface bound the closed interval the option
// covers.
type PriceOption struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`
	OnRequest  bool    `json:"onRequest,omitempty"`
	MinSurface float64 `json:"minSurface,omitempty"`
	MaxSurface float64 `json:"maxSurface,omitempty"`
}

// Covers reports whether a surface-band option contains the given area.
// Intervals are closed on both ends.
func (o PriceOption) Covers(surface float64) bool {
	return surface >= o.MinSurface && surface <= o.MaxSurface
}

// PricingRule holds the ordered options for one service category.
type PricingRule struct {
	CategoryID string        `json:"categoryId"`
	Type       RuleType      `json:"type"`
	Options    []PriceOption `json:"options"`
}
