package handlers

import (
	"errors"
	"net/http"

	inboxRepo "helper/database/repository/inbox"
	"helper/models"
	"helper/services/dispatch"

	"github.com/gin-gonic/gin"
)

// ListInboxHandler returns the provider's offers, optionally filtered by
// status (?status=pending).
func ListInboxHandler(inbox inboxRepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.InboxStatus(c.Query("status"))
		entries, err := inbox.ListByProvider(c.Request.Context(), c.GetString("callerID"), status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list inbox"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

// AcceptOfferHandler claims the mission for the calling provider. Exactly
// one of the concurrent accepts wins; the rest see a conflict.
func AcceptOfferHandler(d *dispatch.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := d.Accept(c.Request.Context(), c.GetString("callerID"), c.Param("missionID"))
		if err != nil {
			switch {
			case errors.Is(err, dispatch.ErrNoOffer):
				c.JSON(http.StatusNotFound, gin.H{"error": "no pending offer for this mission"})
			case errors.Is(err, dispatch.ErrAlreadyAssigned):
				c.JSON(http.StatusConflict, gin.H{"error": "mission already assigned"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "accept failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "mission": m.View()})
	}
}

// DeclineOfferHandler marks the offer declined for this provider only.
func DeclineOfferHandler(d *dispatch.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Decline(c.Request.Context(), c.GetString("callerID"), c.Param("missionID")); err != nil {
			if errors.Is(err, dispatch.ErrNoOffer) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no pending offer for this mission"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decline failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
