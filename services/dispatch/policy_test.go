package dispatch

import (
	"context"
	"math"
	"testing"

	"helper/models"
)

func TestHaversineKnownDistances(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{"same point", 5.3364, -4.0267, 5.3364, -4.0267, 0, 0.001},
		// Abidjan Plateau to Cocody is a short hop across the lagoon.
		{"plateau to cocody", 5.3364, -4.0267, 5.3599, -3.9673, 7.1, 0.5},
		// Abidjan to Yamoussoukro, roughly 217 km great-circle.
		{"abidjan to yamoussoukro", 5.3364, -4.0267, 6.8276, -5.2893, 217, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Haversine(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.wantKm) > tc.tolKm {
				t.Fatalf("Haversine = %.2f km, want %.2f ± %.2f", got, tc.wantKm, tc.tolKm)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := Haversine(5.3364, -4.0267, 6.8276, -5.2893)
	b := Haversine(6.8276, -5.2893, 5.3364, -4.0267)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("Haversine not symmetric: %v vs %v", a, b)
	}
}

func TestRadiusPolicyOrdersNearestFirst(t *testing.T) {
	providers := &memProviderRepo{providers: []models.Provider{
		testProvider("p-far", -4.06, 5.36),
		testProvider("p-near", -4.025, 5.335),
		testProvider("p-mid", -4.04, 5.35),
	}}
	policy := &RadiusPolicy{Providers: providers, DefaultRadiusKm: 7}

	m := searchingMission("m-1")
	candidates, err := policy.Candidates(context.Background(), m, 0)
	if err != nil {
		t.Fatalf("Candidates = %v, want nil", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(candidates))
	}
	want := []string{"p-near", "p-mid", "p-far"}
	for i, id := range want {
		if candidates[i].Provider.ID != id {
			t.Fatalf("candidate %d = %s, want %s", i, candidates[i].Provider.ID, id)
		}
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].DistanceKm < candidates[i-1].DistanceKm {
			t.Fatal("candidates not sorted by distance")
		}
	}
}

func TestRadiusPolicyFallsBackToPlateauCenter(t *testing.T) {
	providers := &memProviderRepo{providers: []models.Provider{
		testProvider("p-plateau", AbidjanPlateau.Lon(), AbidjanPlateau.Lat()),
		testProvider("p-yakro", -5.2893, 6.8276),
	}}
	policy := &RadiusPolicy{Providers: providers, DefaultRadiusKm: 7}

	m := searchingMission("m-noloc")
	m.LocationGeo = nil
	candidates, err := policy.Candidates(context.Background(), m, 0)
	if err != nil {
		t.Fatalf("Candidates = %v, want nil", err)
	}
	if len(candidates) != 1 || candidates[0].Provider.ID != "p-plateau" {
		t.Fatalf("candidates = %+v, want only the Plateau provider", candidates)
	}
}

type topNProviderRepo struct {
	memProviderRepo
	topN []models.Provider
}

func (r *topNProviderRepo) ActiveTopN(ctx context.Context, n int, categoryID string) ([]models.Provider, error) {
	if n > len(r.topN) {
		n = len(r.topN)
	}
	return r.topN[:n], nil
}

func TestTopNPolicyIgnoresRadius(t *testing.T) {
	repo := &topNProviderRepo{topN: []models.Provider{
		testProvider("p-1", -4.02, 5.33),
		testProvider("p-2", -5.2893, 6.8276), // far away, still eligible
	}}
	policy := &TopNPolicy{Providers: repo, Limit: 2}

	candidates, err := policy.Candidates(context.Background(), searchingMission("m-1"), 7)
	if err != nil {
		t.Fatalf("Candidates = %v, want nil", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if policy.Name() != "topn" {
		t.Fatalf("policy name = %q, want topn", policy.Name())
	}
}
