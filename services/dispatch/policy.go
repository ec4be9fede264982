package dispatch

import (
	"context"
	"math"
	"sort"

	"helper/models"

	providerRepo "helper/database/repository/provider"
)

// Candidate is a provider selected for fan-out, with its distance to the
// mission when the policy is geographic.
type Candidate struct {
	Provider   models.Provider
	DistanceKm float64
}

// CandidatePolicy selects the providers a mission is offered to. Exactly one
// policy is active per deployment; radiusKm overrides the policy default
// when positive (used by redispatch expansion).
type CandidatePolicy interface {
	Name() string
	Candidates(ctx context.Context, m *models.Mission, radiusKm float64) ([]Candidate, error)
}

// AbidjanPlateau is the fallback search center for missions without
// coordinates.
var AbidjanPlateau = models.NewGeoPoint(-4.0267, 5.3364)

// RadiusPolicy selects active providers within a haversine radius of the
// mission location, nearest first.
type RadiusPolicy struct {
	Providers       providerRepo.Repository
	DefaultRadiusKm float64
}

func (p *RadiusPolicy) Name() string { return "radius" }

func (p *RadiusPolicy) Candidates(ctx context.Context, m *models.Mission, radiusKm float64) ([]Candidate, error) {
	if radiusKm <= 0 {
		radiusKm = p.DefaultRadiusKm
	}
	center := AbidjanPlateau
	if m.LocationGeo != nil && m.LocationGeo.Valid() {
		center = *m.LocationGeo
	}

	providers, err := p.Providers.ActiveWithinRadius(ctx, center, radiusKm, m.ServiceCategoryID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(providers))
	for _, prov := range providers {
		d := Haversine(center.Lat(), center.Lon(), prov.LocationGeo.Lat(), prov.LocationGeo.Lon())
		if d > radiusKm {
			// The index query is spherical; keep the contract strict.
			continue
		}
		candidates = append(candidates, Candidate{Provider: prov, DistanceKm: d})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})
	return candidates, nil
}

// TopNPolicy takes a flat limit of active providers with no geo filtering.
type TopNPolicy struct {
	Providers providerRepo.Repository
	Limit     int
}

func (p *TopNPolicy) Name() string { return "topn" }

func (p *TopNPolicy) Candidates(ctx context.Context, m *models.Mission, _ float64) ([]Candidate, error) {
	providers, err := p.Providers.ActiveTopN(ctx, p.Limit, m.ServiceCategoryID)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(providers))
	for _, prov := range providers {
		candidates = append(candidates, Candidate{Provider: prov})
	}
	return candidates, nil
}

// Haversine returns the great-circle distance in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
