package handlers

import (
	"net/http"
	"time"

	"helper/services/pricing"

	"github.com/gin-gonic/gin"
)

// ListServicesHandler returns the static service catalog with its pricing
// options so the app renders choices without hardcoding amounts.
func ListServicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		type categoryView struct {
			ID   string      `json:"id"`
			Name string      `json:"name"`
			Rule interface{} `json:"rule,omitempty"`
		}
		out := make([]categoryView, 0, len(pricing.Categories))
		for _, cat := range pricing.Categories {
			view := categoryView{ID: cat.ID, Name: cat.Name}
			if rule, ok := pricing.Rules[cat.ID]; ok {
				view.Rule = rule
			}
			out = append(out, view)
		}
		c.JSON(http.StatusOK, gin.H{"services": out})
	}
}

type quoteInput struct {
	CategoryID     string  `json:"serviceCategoryId" binding:"required"`
	VariantKey     string  `json:"selectedVariantKey"`
	CustomQuantity float64 `json:"customQuantity"`
	SurfaceArea    float64 `json:"surfaceArea"`
	ScheduledAt    string  `json:"scheduledAt"`
}

// QuoteHandler prices a partial booking configuration. The same engine runs
// again at booking time; this endpoint exists so the app never does its own
// arithmetic.
func QuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in quoteInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		scheduledAt := time.Now()
		if in.ScheduledAt != "" {
			t, err := time.Parse(time.RFC3339, in.ScheduledAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduledAt"})
				return
			}
			scheduledAt = t
		}

		q := pricing.GetPrice(pricing.QuoteRequest{
			CategoryID:     in.CategoryID,
			VariantKey:     in.VariantKey,
			CustomQuantity: in.CustomQuantity,
			SurfaceArea:    in.SurfaceArea,
			ScheduledAt:    scheduledAt,
		})
		if q == nil {
			c.JSON(http.StatusOK, gin.H{"available": false})
			return
		}
		if q.OnRequest {
			c.JSON(http.StatusOK, gin.H{"available": true, "onRequest": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"available": true, "onRequest": false, "amount": q.Amount})
	}
}
