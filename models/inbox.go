package models

import "time"

// InboxStatus is the per-provider state of a dispatched offer.
type InboxStatus string

const (
	InboxPending  InboxStatus = "pending"
	InboxAccepted InboxStatus = "accepted"
	InboxDeclined InboxStatus = "declined"
	InboxExpired  InboxStatus = "expired"
)

// InboxEntry is a provider-scoped pending-offer record for one mission.
// Entries are keyed by (providerId, missionId) and written by upsert, so a
// re-delivered dispatch overwrites rather than duplicates.
type InboxEntry struct {
	ProviderID  string      `bson:"providerId" json:"providerId"`
	MissionID   string      `bson:"missionId" json:"missionId"`
	ServiceName string      `bson:"serviceName" json:"serviceName"`
	Address     *string     `bson:"address" json:"address"`
	ScheduledAt time.Time   `bson:"scheduledAt" json:"scheduledAt"`
	Payout      float64     `bson:"payout" json:"payout"`
	DistanceKm  float64     `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	Status      InboxStatus `bson:"status" json:"status"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updatedAt" json:"updatedAt"`
}
