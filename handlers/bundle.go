package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct wired in main.
type HandlerBundle struct {
	// User endpoints
	RegisterClient   gin.HandlerFunc
	LoginClient      gin.HandlerFunc
	RegisterProvider gin.HandlerFunc
	LoginProvider    gin.HandlerFunc
	GetProfile       gin.HandlerFunc
	UpdateFCMToken   gin.HandlerFunc

	// Catalog endpoints
	ListServices gin.HandlerFunc
	Quote        gin.HandlerFunc

	// Mission endpoints
	CreateMission   gin.HandlerFunc
	GetMission      gin.HandlerFunc
	WatchMission    gin.HandlerFunc
	CancelMission   gin.HandlerFunc
	StartMission    gin.HandlerFunc
	CompleteMission gin.HandlerFunc

	// Provider inbox endpoints
	ListInbox    gin.HandlerFunc
	AcceptOffer  gin.HandlerFunc
	DeclineOffer gin.HandlerFunc

	// Payment endpoints
	PaymentIntent  gin.HandlerFunc
	PaymentWebhook gin.HandlerFunc
}
