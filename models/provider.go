package models

import "time"

// Provider statuses. Only active providers are dispatch candidates.
const (
	ProviderActive    = "active"
	ProviderSuspended = "suspended"
)

// Provider is a registered service professional.
type Provider struct {
	ID                string    `bson:"id" json:"id"`
	Name              string    `bson:"name" json:"name"`
	Email             string    `bson:"email" json:"email"`
	Phone             string    `bson:"phone" json:"phone"`
	Status            string    `bson:"status" json:"status"`
	ServiceCategories []string  `bson:"serviceCategories" json:"serviceCategories"`
	Rating            float64   `bson:"rating" json:"rating"`
	CompletedMissions int       `bson:"completedMissions" json:"completedMissions"`
	LocationGeo       GeoPoint  `bson:"locationGeo" json:"locationGeo"`
	FCMToken          string    `bson:"fcmToken,omitempty" json:"-"`
	PasswordHash      string    `bson:"passwordHash" json:"-"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot builds the denormalized summary embedded into a claimed mission.
func (p *Provider) Snapshot() ProviderSnapshot {
	return ProviderSnapshot{
		ID:     p.ID,
		Name:   p.Name,
		Phone:  p.Phone,
		Rating: p.Rating,
	}
}
