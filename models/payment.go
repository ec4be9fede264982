package models

// PaymentWebhook is the payload posted by the payment provider. The
// provider is treated as opaque: only the transaction id and final status
// matter here.
type PaymentWebhook struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Status        string `json:"status" binding:"required"`
}

const WebhookSuccess = "SUCCESS"

// PaymentIntentRequest asks for a card payment intent for a mission.
type PaymentIntentRequest struct {
	MissionID string `json:"missionId" binding:"required"`
}

// PaymentIntentResponse carries the processor client secret back to the app.
type PaymentIntentResponse struct {
	MissionID    string  `json:"missionId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ClientSecret string  `json:"clientSecret"`
}
