package pricing

import "helper/models"

// Service catalog and pricing tables for the Abidjan launch. The catalog is
// static and immutable at runtime; prices are in XOF.

const (
	CategoryApartment = "cat_apart"
	CategoryVilla     = "cat_villa"
	CategoryPlumbing  = "cat_plumbing"
	CategoryElectric  = "cat_electric"
	CategoryGas       = "cat_gas"
	CategoryHandyman  = "cat_handyman"
	CategoryTutoring  = "cat_tutoring"
)

// VariantCustom is the sentinel variant key that routes pricing through the
// category-specific quantity formulas instead of the option tables.
const VariantCustom = "custom"

var Categories = []models.ServiceCategory{
	{ID: CategoryApartment, Name: "Ménage appartement", Description: "Nettoyage complet d'appartement", Icon: "broom"},
	{ID: CategoryVilla, Name: "Ménage villa", Description: "Nettoyage de villa avec extérieurs", Icon: "home"},
	{ID: CategoryPlumbing, Name: "Plomberie", Description: "Dépannage et installation plomberie", Icon: "wrench"},
	{ID: CategoryElectric, Name: "Électricité", Description: "Dépannage et installation électrique", Icon: "bolt"},
	{ID: CategoryGas, Name: "Gaz", Description: "Recharge et installation bouteilles de gaz", Icon: "flame"},
	{ID: CategoryHandyman, Name: "Bricolage", Description: "Petits travaux à l'heure ou à la journée", Icon: "hammer"},
	{ID: CategoryTutoring, Name: "Cours à domicile", Description: "Soutien scolaire à domicile", Icon: "book"},
}

// Rules maps a category to its pricing rule. Surface bands are contiguous
// closed intervals: every area in the declared domain matches exactly one
// option.
var Rules = map[string]models.PricingRule{
	CategoryApartment: {
		CategoryID: CategoryApartment,
		Type:       models.RuleLevel,
		Options: []models.PriceOption{
			{Key: "studio", Label: "Studio", Amount: 15000},
			{Key: "2p", Label: "2 pièces", Amount: 20000},
			{Key: "3p", Label: "3 pièces", Amount: 28000},
			{Key: "4p", Label: "4 pièces", Amount: 38000},
		},
	},
	CategoryVilla: {
		CategoryID: CategoryVilla,
		Type:       models.RuleSurface,
		Options: []models.PriceOption{
			{Key: "v_small", Label: "Villa jusqu'à 120 m²", Amount: 35000, MinSurface: 0, MaxSurface: 120},
			{Key: "v_medium", Label: "Villa 121–250 m²", Amount: 55000, MinSurface: 121, MaxSurface: 250},
			{Key: "v_large", Label: "Villa 251–500 m²", Amount: 85000, MinSurface: 251, MaxSurface: 500},
			{Key: "v_estate", Label: "Villa de plus de 500 m²", OnRequest: true, MinSurface: 501, MaxSurface: 1000},
		},
	},
	CategoryPlumbing: {
		CategoryID: CategoryPlumbing,
		Type:       models.RuleFixed,
		Options: []models.PriceOption{
			{Key: "diagnostic", Label: "Diagnostic", Amount: 5000},
			{Key: "leak", Label: "Réparation de fuite", Amount: 12000},
			{Key: "unclog", Label: "Débouchage", Amount: 15000},
			{Key: "install_wc", Label: "Installation WC", Amount: 35000},
			{Key: "renovation", Label: "Rénovation complète", OnRequest: true},
		},
	},
	CategoryElectric: {
		CategoryID: CategoryElectric,
		Type:       models.RuleFixed,
		Options: []models.PriceOption{
			{Key: "diagnostic", Label: "Diagnostic", Amount: 5000},
			{Key: "lamp", Label: "Pose de luminaire", Amount: 6000},
			{Key: "outlet", Label: "Pose de prise", Amount: 8000},
			{Key: "panel", Label: "Tableau électrique", OnRequest: true},
		},
	},
	CategoryGas: {
		CategoryID: CategoryGas,
		Type:       models.RuleFixed,
		Options: []models.PriceOption{
			{Key: "refill_6kg", Label: "Recharge 6 kg", Amount: 6500},
			{Key: "refill_12kg", Label: "Recharge 12 kg", Amount: 12500},
			{Key: "install", Label: "Installation", OnRequest: true},
		},
	},
	CategoryHandyman: {
		CategoryID: CategoryHandyman,
		Type:       models.RuleFixed,
		Options: []models.PriceOption{
			{Key: "hour", Label: "1 heure", Amount: 5000},
			{Key: "half_day", Label: "Demi-journée", Amount: 18000},
			{Key: "day", Label: "Journée", Amount: 30000},
		},
	},
	CategoryTutoring: {
		CategoryID: CategoryTutoring,
		Type:       models.RuleRecurring,
		Options: []models.PriceOption{
			{Key: "weekly_1h", Label: "1 h / semaine", Amount: 10000},
			{Key: "weekly_2h", Label: "2 h / semaine", Amount: 18000},
			{Key: "monthly", Label: "Forfait mensuel", Amount: 60000},
		},
	},
}

// CategoryByID looks up a catalog entry.
func CategoryByID(id string) (models.ServiceCategory, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.ServiceCategory{}, false
}
