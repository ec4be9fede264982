package models

import "time"

// DispatchAttempt records one fan-out pass for a mission. Attempts are
// appended, never overwritten, so repeated deliveries stay visible.
type DispatchAttempt struct {
	At          time.Time `bson:"at" json:"at"`
	TargetCount int       `bson:"targetCount" json:"targetCount"`
	Policy      string    `bson:"policy" json:"policy"`
	RadiusKm    float64   `bson:"radiusKm,omitempty" json:"radiusKm,omitempty"`
}

// DispatchLog is the write-once-per-attempt audit trail of a mission's
// dispatch history.
type DispatchLog struct {
	MissionID string            `bson:"missionId" json:"missionId"`
	Attempts  []DispatchAttempt `bson:"attempts" json:"attempts"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}
