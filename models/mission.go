package models

import "time"

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	StatusPendingPayment MissionStatus = "pending_payment"
	StatusSearching      MissionStatus = "searching"
	StatusAssigned       MissionStatus = "assigned"
	StatusInProgress     MissionStatus = "in_progress"
	StatusCompleted      MissionStatus = "completed"
	StatusCancelled      MissionStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s MissionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// missionTransitions lists the allowed forward edges of the lifecycle.
var missionTransitions = map[MissionStatus][]MissionStatus{
	StatusPendingPayment: {StatusSearching, StatusCancelled},
	StatusSearching:      {StatusAssigned, StatusCancelled},
	StatusAssigned:       {StatusInProgress, StatusCancelled},
	StatusInProgress:     {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to MissionStatus) bool {
	for _, next := range missionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Payment status markers derived from the payment method at creation.
const (
	PaymentCashPending = "CASH_PENDING"
	PaymentInitiated   = "INITIATED"
	PaymentPaid        = "PAID"
)

const PaymentMethodCash = "cash"

// ProviderSnapshot is the denormalized provider summary embedded in a
// mission once it has been claimed.
type ProviderSnapshot struct {
	ID     string  `bson:"id" json:"id"`
	Name   string  `bson:"name" json:"name"`
	Phone  string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Rating float64 `bson:"rating,omitempty" json:"rating,omitempty"`
}

// Mission is one requested service engagement, from creation through
// completion or cancellation. The same document is materialized in the live
// "missions" collection and the historical "bookings" collection; both views
// are written through a single transactional path.
type Mission struct {
	ID                string            `bson:"id" json:"id"`
	ClientID          string            `bson:"clientId" json:"clientId"`
	ServiceCategoryID string            `bson:"serviceCategoryId" json:"serviceCategoryId"`
	ServiceName       string            `bson:"serviceName" json:"serviceName"`
	Address           *string           `bson:"address" json:"address"`
	LocationGeo       *GeoPoint         `bson:"locationGeo,omitempty" json:"locationGeo,omitempty"`
	ScheduledAt       time.Time         `bson:"scheduledAt" json:"scheduledAt"`
	Status            MissionStatus     `bson:"status" json:"status"`
	TotalAmount       float64           `bson:"totalAmount" json:"totalAmount"`
	CommissionAmount  float64           `bson:"commissionAmount" json:"commissionAmount"`
	ProviderPayout    float64           `bson:"providerPayout" json:"providerPayout"`
	PriceOnRequest    bool              `bson:"priceOnRequest,omitempty" json:"priceOnRequest,omitempty"`
	PaymentMethod     string            `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus     string            `bson:"paymentStatus" json:"paymentStatus"`
	TransactionID     string            `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	VariantKey        string            `bson:"variantKey,omitempty" json:"variantKey,omitempty"`
	CustomQuantity    float64           `bson:"customQuantity,omitempty" json:"customQuantity,omitempty"`
	SurfaceArea       float64           `bson:"surfaceArea,omitempty" json:"surfaceArea,omitempty"`
	Provider          *ProviderSnapshot `bson:"provider" json:"provider"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// MissionInput is the client-submitted booking payload. Numeric fields and
// timestamps are coerced defensively by the mission service rather than
// rejected; scheduledAt and scheduledDateTime are both accepted.
type MissionInput struct {
	ServiceCategoryID string    `json:"serviceCategoryId"`
	ServiceName       string    `json:"serviceName"`
	VariantKey        string    `json:"selectedVariantKey"`
	CustomQuantity    float64   `json:"customQuantity"`
	SurfaceArea       float64   `json:"surfaceArea"`
	ScheduledAt       string    `json:"scheduledAt"`
	ScheduledDateTime string    `json:"scheduledDateTime"`
	Address           string    `json:"address"`
	PaymentMethod     string    `json:"paymentMethod"`
	Location          *GeoPoint `json:"location,omitempty"`
	TotalAmount       float64   `json:"totalAmount"`
}

// CreateMissionResult is returned by the booking creation endpoint.
type CreateMissionResult struct {
	Success   bool          `json:"success"`
	MissionID string        `json:"missionId"`
	Status    MissionStatus `json:"status"`
}

// View projects the mission into the client-facing read model.
func (m *Mission) View() *MissionView {
	return &MissionView{
		MissionID:   m.ID,
		Status:      string(m.Status),
		ServiceName: m.ServiceName,
		ScheduledAt: m.ScheduledAt,
		Amount:      m.TotalAmount,
		Provider:    m.Provider,
	}
}

// MissionView is the role-routed read model served to watchers: providers
// see their inbox entry, clients see the historical booking document.
type MissionView struct {
	MissionID   string            `json:"missionId"`
	Status      string            `json:"status"`
	ServiceName string            `json:"serviceName"`
	ScheduledAt time.Time         `json:"scheduledAt"`
	Amount      float64           `json:"amount"`
	Provider    *ProviderSnapshot `json:"provider,omitempty"`
}
