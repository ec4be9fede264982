package pricing

import (
	"time"

	"helper/models"
)

// Pricing constants. CommissionRate is the platform's cut of every numeric
// price; the night surcharge applies to missions scheduled at 18:00 or
// later. The surcharge is a single canonical flat amount: pricing runs only
// here, server-side, and preview calls go through the same function.
const (
	CommissionRate      = 0.25
	NightSurcharge      = 5000
	NightSurchargeHour  = 18
	apartCustomBase     = 45000
	apartCustomIncluded = 4
	apartCustomPerRoom  = 15000
	villaCustomBase     = 35000
	villaCustomPerSqm   = 150
	gasCustomPerUnit    = 6000
	handymanPerHour     = 5000
	tutoringPerHour     = 2500
)

// Quote is the result of a price resolution. OnRequest marks the quotation
// sentinel: the service exists but must be priced manually.
type Quote struct {
	Amount    float64 `json:"amount"`
	OnRequest bool    `json:"onRequest"`
}

// QuoteRequest is a partial booking configuration.
type QuoteRequest struct {
	CategoryID     string
	VariantKey     string
	CustomQuantity float64
	SurfaceArea    float64
	ScheduledAt    time.Time
}

// GetPrice resolves a quote for a partial booking configuration. It returns
// nil when no price can be resolved: unknown category, no variant selected,
// or a surface area outside every band.
//
// Resolution order: the "custom" variant with a positive quantity goes
// through the category formulas; any other variant key is looked up in the
// static rules table; surface rules match by area instead of key.
func GetPrice(req QuoteRequest) *Quote {
	if req.CategoryID == "" {
		return nil
	}

	var q *Quote
	if req.VariantKey == VariantCustom && req.CustomQuantity > 0 {
		q = customPrice(req.CategoryID, req.CustomQuantity)
	} else if req.VariantKey != "" {
		q = lookupPrice(req)
	}
	if q == nil {
		return nil
	}

	if !q.OnRequest && !req.ScheduledAt.IsZero() && req.ScheduledAt.Hour() >= NightSurchargeHour {
		q.Amount += NightSurcharge
	}
	return q
}

// customPrice applies the category-specific quantity formulas.
func customPrice(categoryID string, qty float64) *Quote {
	switch categoryID {
	case CategoryApartment:
		// Tiered marginal pricing: base covers the first rooms, each extra
		// room adds a flat increment.
		amount := float64(apartCustomBase)
		if qty > apartCustomIncluded {
			amount += (qty - apartCustomIncluded) * apartCustomPerRoom
		}
		return &Quote{Amount: amount}
	case CategoryVilla:
		// Linear extra-area pricing over the base villa rate.
		return &Quote{Amount: villaCustomBase + qty*villaCustomPerSqm}
	case CategoryGas:
		return &Quote{Amount: qty * gasCustomPerUnit}
	case CategoryHandyman:
		return &Quote{Amount: qty * handymanPerHour}
	case CategoryTutoring:
		return &Quote{Amount: qty * tutoringPerHour}
	default:
		return &Quote{OnRequest: true}
	}
}

// lookupPrice resolves a variant against the static rules table.
func lookupPrice(req QuoteRequest) *Quote {
	rule, ok := Rules[req.CategoryID]
	if !ok {
		return nil
	}

	if rule.Type == models.RuleSurface {
		for _, opt := range rule.Options {
			if opt.Covers(req.SurfaceArea) {
				return quoteFromOption(opt)
			}
		}
		return nil
	}

	for _, opt := range rule.Options {
		if opt.Key == req.VariantKey {
			return quoteFromOption(opt)
		}
	}
	return nil
}

func quoteFromOption(opt models.PriceOption) *Quote {
	if opt.OnRequest {
		return &Quote{OnRequest: true}
	}
	return &Quote{Amount: opt.Amount}
}

// Commission returns the platform commission for a quote. The bool is false
// when the quote is nil or a quotation, in which case no commission is
// defined.
func Commission(q *Quote) (float64, bool) {
	if q == nil || q.OnRequest {
		return 0, false
	}
	return q.Amount * CommissionRate, true
}

// Payout returns the provider payout, the price minus the commission.
// Commission and payout always sum back to the price exactly.
func Payout(q *Quote) (float64, bool) {
	commission, ok := Commission(q)
	if !ok {
		return 0, false
	}
	return q.Amount - commission, true
}
