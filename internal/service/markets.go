package service

import (
	"fmt"
	"log"

	"krishisense/internal/model"
)

// DefaultAgroZone is used for markets missing from the zone table
const DefaultAgroZone = model.ZoneNewAlluvial

// MaxNearbyMarkets caps how many alternative markets are compared
const MaxNearbyMarkets = 3

type districtZone struct {
	Market string
	Zone   model.AgroZone
}

// districtZones is ordered so fallback neighbour selection is deterministic.
var districtZones = []districtZone{
	{"Purba Medinipur", model.ZoneCoastalSaline},

	{"Darjeeling", model.ZoneHill},
	{"Kalimpong", model.ZoneHill},

	{"Dakshin Dinajpur", model.ZoneNewAlluvial},
	{"Howrah", model.ZoneNewAlluvial},
	{"Kolkata", model.ZoneNewAlluvial},
	{"Malda", model.ZoneNewAlluvial},
	{"Uttar Dinajpur", model.ZoneNewAlluvial},

	{"Hooghly", model.ZoneOldAlluvial},
	{"Murshidabad", model.ZoneOldAlluvial},
	{"Nadia", model.ZoneOldAlluvial},
	{"North 24 Parganas", model.ZoneOldAlluvial},
	{"South 24 Parganas", model.ZoneOldAlluvial},

	{"Bankura", model.ZoneRedLaterite},
	{"Jhargram", model.ZoneRedLaterite},
	{"Paschim Medinipur", model.ZoneRedLaterite},
	{"Purulia", model.ZoneRedLaterite},

	{"Alipurduar", model.ZoneTerai},
	{"Cooch Behar", model.ZoneTerai},
	{"Jalpaiguri", model.ZoneTerai},

	{"Birbhum", model.ZoneWesternPlateau},
	{"Paschim Bardhaman", model.ZoneWesternPlateau},
	{"Purba Bardhaman", model.ZoneWesternPlateau},
}

var nearbyMarkets = map[string][]string{
	"Kolkata":           {"Howrah", "North 24 Parganas", "Hooghly"},
	"Howrah":            {"Kolkata", "Hooghly", "North 24 Parganas"},
	"Hooghly":           {"Kolkata", "Howrah", "Nadia"},
	"Nadia":             {"Hooghly", "North 24 Parganas", "Murshidabad"},
	"North 24 Parganas": {"Kolkata", "Howrah", "Nadia"},
	"South 24 Parganas": {"Kolkata", "North 24 Parganas", "Howrah"},
	"Purba Medinipur":   {"Paschim Medinipur", "Howrah", "South 24 Parganas"},
	"Paschim Medinipur": {"Purba Medinipur", "Jhargram", "Bankura"},
	"Jhargram":          {"Paschim Medinipur", "Bankura", "Purulia"},
	"Bankura":           {"Paschim Medinipur", "Purulia", "Birbhum"},
	"Birbhum":           {"Bankura", "Purba Bardhaman", "Murshidabad"},
	"Purba Bardhaman":   {"Paschim Bardhaman", "Birbhum", "Nadia"},
	"Paschim Bardhaman": {"Purba Bardhaman", "Bankura", "Birbhum"},
	"Murshidabad":       {"Nadia", "Malda", "Birbhum"},
	"Malda":             {"Murshidabad", "Dakshin Dinajpur", "Uttar Dinajpur"},
	"Dakshin Dinajpur":  {"Malda", "Uttar Dinajpur"},
	"Uttar Dinajpur":    {"Dakshin Dinajpur", "Malda"},
	"Alipurduar":        {"Cooch Behar", "Jalpaiguri"},
	"Cooch Behar":       {"Alipurduar", "Jalpaiguri"},
	"Jalpaiguri":        {"Darjeeling", "Cooch Behar", "Alipurduar"},
	"Darjeeling":        {"Jalpaiguri", "Kalimpong"},
	"Kalimpong":         {"Darjeeling", "Jalpaiguri"},
	"Purulia":           {"Bankura", "Jhargram"},
}

var zoneByMarket = func() map[string]model.AgroZone {
	m := make(map[string]model.AgroZone, len(districtZones))
	for _, d := range districtZones {
		m[d.Market] = d.Zone
	}
	return m
}()

func init() {
	mustValidateCatalog()
}

func mustValidateCatalog() {
	if err := ValidateCatalog(); err != nil {
		log.Fatalf("market catalog is inconsistent: %v", err)
	}
}

// ValidateCatalog checks the zone and adjacency tables against each other.
func ValidateCatalog() error {
	seen := make(map[string]bool, len(districtZones))
	for _, d := range districtZones {
		if seen[d.Market] {
			return fmt.Errorf("district %q listed twice", d.Market)
		}
		seen[d.Market] = true
		if !d.Zone.Valid() {
			return fmt.Errorf("district %q has unknown zone %q", d.Market, d.Zone)
		}
	}

	for market, neighbours := range nearbyMarkets {
		if !seen[market] {
			return fmt.Errorf("adjacency entry %q has no agro zone", market)
		}
		if len(neighbours) == 0 || len(neighbours) > MaxNearbyMarkets {
			return fmt.Errorf("market %q has %d neighbours, want 1..%d", market, len(neighbours), MaxNearbyMarkets)
		}
		dup := make(map[string]bool, len(neighbours))
		for _, n := range neighbours {
			if n == market {
				return fmt.Errorf("market %q lists itself as a neighbour", market)
			}
			if !seen[n] {
				return fmt.Errorf("neighbour %q of %q has no agro zone", n, market)
			}
			if dup[n] {
				return fmt.Errorf("neighbour %q of %q listed twice", n, market)
			}
			dup[n] = true
		}
	}
	return nil
}

// LookupAgroZone returns the zone of a market and whether it was mapped explicitly.
func LookupAgroZone(market string) (model.AgroZone, bool) {
	zone, ok := zoneByMarket[market]
	return zone, ok
}

// DetermineAgroZone returns the zone of a market, defaulting to New Alluvial.
func DetermineAgroZone(market string) model.AgroZone {
	if zone, ok := zoneByMarket[market]; ok {
		return zone
	}
	return DefaultAgroZone
}

// NearbyMarkets returns up to k markets to compare against.
// Markets without an adjacency entry get the first other districts of the zone table.
func NearbyMarkets(market string, k int) []string {
	if k <= 0 {
		return nil
	}
	if neighbours, ok := nearbyMarkets[market]; ok {
		if len(neighbours) > k {
			neighbours = neighbours[:k]
		}
		out := make([]string, len(neighbours))
		copy(out, neighbours)
		return out
	}

	out := make([]string, 0, k)
	for _, d := range districtZones {
		if d.Market == market {
			continue
		}
		out = append(out, d.Market)
		if len(out) == k {
			break
		}
	}
	return out
}

// Markets lists every supported market in table order.
func Markets() []model.MarketInfo {
	out := make([]model.MarketInfo, 0, len(districtZones))
	for _, d := range districtZones {
		out = append(out, model.MarketInfo{
			Market:   d.Market,
			AgroZone: d.Zone,
			Nearby:   NearbyMarkets(d.Market, MaxNearbyMarkets),
		})
	}
	return out
}
