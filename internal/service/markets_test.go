package service

import (
	"reflect"
	"testing"

	"krishisense/internal/model"
)

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(); err != nil {
		t.Fatalf("Expected catalog to be valid, got %v", err)
	}
	if got := len(Markets()); got != 23 {
		t.Errorf("Expected 23 markets, got %d", got)
	}
}

func TestLookupAgroZone(t *testing.T) {
	tests := []struct {
		market string
		want   model.AgroZone
		ok     bool
	}{
		{"Kolkata", model.ZoneNewAlluvial, true},
		{"Darjeeling", model.ZoneHill, true},
		{"Purulia", model.ZoneRedLaterite, true},
		{"Cooch Behar", model.ZoneTerai, true},
		{"Atlantis", "", false},
	}

	for _, tt := range tests {
		zone, ok := LookupAgroZone(tt.market)
		if zone != tt.want || ok != tt.ok {
			t.Errorf("LookupAgroZone(%q) = (%q, %v), expected (%q, %v)", tt.market, zone, ok, tt.want, tt.ok)
		}
	}
	if got := DetermineAgroZone("Atlantis"); got != DefaultAgroZone {
		t.Errorf("Expected default zone, got %s", got)
	}
}

func TestNearbyMarkets(t *testing.T) {
	tests := []struct {
		name   string
		market string
		k      int
		want   []string
	}{
		{"mapped", "Kolkata", 3, []string{"Howrah", "North 24 Parganas", "Hooghly"}},
		{"mapped truncated", "Kolkata", 1, []string{"Howrah"}},
		{"short list", "Purulia", 3, []string{"Bankura", "Jhargram"}},
		{"unmapped falls back to table order", "Atlantis", 3, []string{"Purba Medinipur", "Darjeeling", "Kalimpong"}},
		{"zero", "Kolkata", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearbyMarkets(tt.market, tt.k)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNearbyMarkets_ReturnsCopy(t *testing.T) {
	got := NearbyMarkets("Kolkata", 3)
	got[0] = "Mutated"
	if again := NearbyMarkets("Kolkata", 3); again[0] != "Howrah" {
		t.Errorf("Adjacency table was modified through returned slice: %v", again)
	}
}
