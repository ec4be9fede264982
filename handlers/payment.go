package handlers

import (
	"errors"
	"net/http"

	missionRepo "helper/database/repository/mission"
	"helper/models"
	paymentSvc "helper/services/payment"

	"github.com/gin-gonic/gin"
)

// PaymentIntentHandler opens a card payment intent for the client's own
// pending mission.
func PaymentIntentHandler(svc paymentSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.PaymentIntentRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		res, err := svc.CreateIntent(c.Request.Context(), c.GetString("callerID"), in)
		if err != nil {
			switch {
			case errors.Is(err, missionRepo.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			case errors.Is(err, paymentSvc.ErrMissionNotPayable):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create payment intent"})
			}
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// PaymentWebhookHandler receives settlement callbacks from the payment
// provider. It always answers 200 for well-formed payloads so the provider
// stops retrying; the no-op on re-delivery happens in the service.
func PaymentWebhookHandler(svc paymentSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hook models.PaymentWebhook
		if err := c.ShouldBindJSON(&hook); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if err := svc.HandleWebhook(c.Request.Context(), hook); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
