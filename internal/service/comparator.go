package service

import (
	"log"

	"krishisense/internal/model"
)

// MarketComparator prices the same request at nearby markets
type MarketComparator struct {
	model PriceModel
	limit int
}

// NewMarketComparator creates a comparator that checks up to MaxNearbyMarkets markets
func NewMarketComparator(m PriceModel) *MarketComparator {
	return &MarketComparator{model: m, limit: MaxNearbyMarkets}
}

// Compare never fails. Markets whose prediction errors are left out.
func (c *MarketComparator) Compare(base model.FeatureVector) []model.AlternativeMarket {
	out := []model.AlternativeMarket{}
	for _, market := range NearbyMarkets(base.Market, c.limit) {
		price, err := c.model.Predict(WithMarket(base, market))
		if err != nil {
			log.Printf("Warning: price for nearby market %s failed: %v", market, err)
			continue
		}
		out = append(out, model.AlternativeMarket{Market: market, Price: price})
	}
	return out
}
