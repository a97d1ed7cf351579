package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomshop/loomshop-backend/internal/app/model"
)

func TestCharmPrice(t *testing.T) {
	assert.Equal(t, 0.0, CharmPrice(0))
	assert.Equal(t, 0.0, CharmPrice(-5))
	assert.Equal(t, 44.99, CharmPrice(44.5))
	assert.Equal(t, 44.99, CharmPrice(44.99))
	assert.Equal(t, 12.99, CharmPrice(12.01))
	assert.Equal(t, 0.99, CharmPrice(0.5))
}

func TestAggregateBundlePrice(t *testing.T) {
	triple := AggregateBundlePrice([]float64{19, 25.5}, 20)

	assert.Equal(t, 44.99, triple.BasePrice)
	assert.Equal(t, 35.99, triple.SalePrice) // 44.99 * 0.8 = 35.992
	assert.Equal(t, 20.0, triple.DiscountPercentage)
	assert.Equal(t, 35.99, triple.Effective())
}

func TestAggregateBundlePrice_EmptyMembers(t *testing.T) {
	triple := AggregateBundlePrice(nil, 20)

	assert.Equal(t, 0.0, triple.BasePrice)
	assert.Equal(t, 0.0, triple.SalePrice)
	assert.Equal(t, 0.0, triple.Effective())
}

func TestAggregateBundlePrice_NonFiniteMembersContributeZero(t *testing.T) {
	triple := AggregateBundlePrice([]float64{19, math.NaN(), 25.5}, 20)

	assert.Equal(t, 44.99, triple.BasePrice)
	assert.Equal(t, 35.99, triple.SalePrice)

	triple = AggregateBundlePrice([]float64{math.Inf(1), math.Inf(-1)}, 20)
	assert.Equal(t, 0.0, triple.BasePrice)
	assert.Equal(t, 0.0, triple.SalePrice)
}

func TestAggregateBundlePrice_DiscountOutOfRange(t *testing.T) {
	for _, discount := range []float64{0, -10, 100, 150} {
		triple := AggregateBundlePrice([]float64{30}, discount)
		assert.Equal(t, 30.99, triple.BasePrice)
		assert.Equal(t, 0.0, triple.SalePrice, "discount %v must not produce a sale price", discount)
		assert.Equal(t, 30.99, triple.Effective())
	}
}

func TestDeriveUpsellComparison(t *testing.T) {
	cmp := DeriveUpsellComparison(40, 50)

	require.NotNil(t, cmp)
	assert.Equal(t, "10.00", cmp.AdditionalSpend)
	assert.Equal(t, 25, cmp.PercentageIncrease)
}

func TestDeriveUpsellComparison_ZeroOriginal(t *testing.T) {
	assert.Nil(t, DeriveUpsellComparison(0, 50))
}

func TestDeriveUpsellComparison_CheaperBundle(t *testing.T) {
	cmp := DeriveUpsellComparison(50, 40)

	require.NotNil(t, cmp)
	assert.Equal(t, "-10.00", cmp.AdditionalSpend)
	assert.Equal(t, -20, cmp.PercentageIncrease)
}

func TestDeriveUpsellComparison_LargeIncreaseUncapped(t *testing.T) {
	cmp := DeriveUpsellComparison(10, 49.99)

	require.NotNil(t, cmp)
	assert.Equal(t, "39.99", cmp.AdditionalSpend)
	assert.Equal(t, 400, cmp.PercentageIncrease)
}

func uintPtr(v uint) *uint { return &v }

func TestCartTotal(t *testing.T) {
	lines := []model.CartLine{
		{Kind: model.CartLineProduct, ProductID: uintPtr(1), Quantity: 2},
		{Kind: model.CartLineUpsell, UpsellID: uintPtr(7), Quantity: 1},
		{Kind: model.CartLineProduct, ProductID: uintPtr(99), Quantity: 1}, // no price doc
	}
	lookup := PricingLookup{
		Products: map[uint]model.PricingTriple{
			1: {BasePrice: 19.99, SalePrice: 15.99, DiscountPercentage: 20},
		},
		Upsells: map[uint]model.PricingTriple{
			7: {BasePrice: 44.99},
		},
	}

	// 15.99*2 + 44.99 = 76.97
	assert.Equal(t, 76.97, CartTotal(lines, lookup))
}

func TestCartTotal_RoundsOnce(t *testing.T) {
	lines := []model.CartLine{
		{Kind: model.CartLineProduct, ProductID: uintPtr(1), Quantity: 1},
		{Kind: model.CartLineProduct, ProductID: uintPtr(2), Quantity: 1},
		{Kind: model.CartLineProduct, ProductID: uintPtr(3), Quantity: 1},
	}
	lookup := PricingLookup{
		Products: map[uint]model.PricingTriple{
			1: {BasePrice: 0.1},
			2: {BasePrice: 0.2},
			3: {BasePrice: 0.3},
		},
	}

	assert.Equal(t, 0.6, CartTotal(lines, lookup))
}

func TestCartTotal_ZeroQuantityCountsAsOne(t *testing.T) {
	lines := []model.CartLine{
		{Kind: model.CartLineProduct, ProductID: uintPtr(1), Quantity: 0},
	}
	lookup := PricingLookup{
		Products: map[uint]model.PricingTriple{1: {BasePrice: 9.99}},
	}

	assert.Equal(t, 9.99, CartTotal(lines, lookup))
}

func TestCartTotal_EmptyCart(t *testing.T) {
	assert.Equal(t, 0.0, CartTotal(nil, PricingLookup{}))
}
