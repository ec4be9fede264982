package pricing

import (
	"testing"

	"helper/models"
)

// Surface bands must partition their declared domain: every integer area
// matches exactly one option, with no gap and no overlap at band edges.
func TestSurfaceBandsCoverDomainExactlyOnce(t *testing.T) {
	for categoryID, rule := range Rules {
		if rule.Type != models.RuleSurface {
			continue
		}
		min, max := rule.Options[0].MinSurface, rule.Options[0].MaxSurface
		for _, opt := range rule.Options {
			if opt.MinSurface < min {
				min = opt.MinSurface
			}
			if opt.MaxSurface > max {
				max = opt.MaxSurface
			}
		}
		for area := int(min); area <= int(max); area++ {
			matches := 0
			for _, opt := range rule.Options {
				if opt.Covers(float64(area)) {
					matches++
				}
			}
			if matches != 1 {
				t.Errorf("%s: surface %d matched %d bands, want exactly 1", categoryID, area, matches)
			}
		}
	}
}

func TestEveryCategoryHasARule(t *testing.T) {
	for _, c := range Categories {
		rule, ok := Rules[c.ID]
		if !ok {
			t.Errorf("category %s has no pricing rule", c.ID)
			continue
		}
		if rule.CategoryID != c.ID {
			t.Errorf("rule for %s carries categoryId %s", c.ID, rule.CategoryID)
		}
		if len(rule.Options) == 0 {
			t.Errorf("rule for %s has no options", c.ID)
		}
		seen := map[string]bool{}
		for _, opt := range rule.Options {
			if seen[opt.Key] {
				t.Errorf("rule for %s has duplicate option key %s", c.ID, opt.Key)
			}
			seen[opt.Key] = true
			if !opt.OnRequest && opt.Amount <= 0 {
				t.Errorf("rule for %s option %s has no price and is not a quotation", c.ID, opt.Key)
			}
		}
	}
}

func TestCategoryByID(t *testing.T) {
	if c, ok := CategoryByID(CategoryApartment); !ok || c.Name == "" {
		t.Errorf("CategoryByID(%s) = %+v, %v", CategoryApartment, c, ok)
	}
	if _, ok := CategoryByID("cat_nope"); ok {
		t.Error("CategoryByID should miss on unknown ids")
	}
}
