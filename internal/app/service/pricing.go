package service

import (
	"math"
	"strconv"

	"github.com/loomshop/loomshop-backend/internal/app/model"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CharmPrice lowers x to the nearest ".99" ending: floor plus 0.99.
// Zero stays zero so free items are never priced at 0.99.
func CharmPrice(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return Round2(math.Floor(x) + 0.99)
}

// AggregateBundlePrice derives the stored price pair of a bundle from the
// base prices of its member products. The members are summed raw and
// charm-priced once; the sale price is charm-priced off the already
// charmed base. A discount outside (0, 100) yields a zero sale price,
// which readers treat as "no sale". Non-finite member prices contribute
// nothing to the sum.
func AggregateBundlePrice(memberBasePrices []float64, discountPercentage float64) model.PricingTriple {
	var sum float64
	for _, price := range memberBasePrices {
		if math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		sum += price
	}

	triple := model.PricingTriple{
		BasePrice:          CharmPrice(sum),
		DiscountPercentage: discountPercentage,
	}
	if discountPercentage > 0 && discountPercentage < 100 {
		triple.SalePrice = CharmPrice(triple.BasePrice * (1 - discountPercentage/100))
	}
	return triple
}

// UpsellComparison frames a bundle against the product being viewed:
// the extra spend to take the bundle instead, and that extra as a
// percentage of the product's own price.
type UpsellComparison struct {
	AdditionalSpend    string `json:"additional_spend"`
	PercentageIncrease int    `json:"percentage_increase"`
}

// DeriveUpsellComparison compares a product's effective price against a
// bundle's effective price. Returns nil when the original price is zero.
// The spend is pre-formatted with two decimals; the percentage is an
// integer and is not capped here, oversized increases are a rendering
// concern.
func DeriveUpsellComparison(originalPrice, upsellPrice float64) *UpsellComparison {
	if originalPrice <= 0 {
		return nil
	}
	additional := Round2(upsellPrice - originalPrice)
	return &UpsellComparison{
		AdditionalSpend:    strconv.FormatFloat(additional, 'f', 2, 64),
		PercentageIncrease: int(math.Round(additional / originalPrice * 100)),
	}
}

// PricingLookup maps catalog ids to their current price pairs, keyed by
// line kind. Lines whose referent is absent are skipped, mirroring how
// cart composition drops lines pointing at deleted documents.
type PricingLookup struct {
	Products map[uint]model.PricingTriple
	Upsells  map[uint]model.PricingTriple
}

// CartTotal sums the effective price of every resolvable line times its
// quantity. Per-line prices are added raw and the grand total is rounded
// once at the end, so intermediate rounding can never accumulate drift.
func CartTotal(lines []model.CartLine, lookup PricingLookup) float64 {
	var total float64
	for _, line := range lines {
		var triple model.PricingTriple
		var ok bool
		switch line.Kind {
		case model.CartLineProduct:
			if line.ProductID != nil {
				triple, ok = lookup.Products[*line.ProductID]
			}
		case model.CartLineUpsell:
			if line.UpsellID != nil {
				triple, ok = lookup.Upsells[*line.UpsellID]
			}
		}
		if !ok {
			continue
		}

		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		total += triple.Effective() * float64(quantity)
	}
	return Round2(total)
}
