package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/internal/db"
)

func setupUpsellServiceTest(t *testing.T) (UpsellService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	upsellRepo := repository.NewUpsellRepository(testDB)
	productRepo := repository.NewProductRepository(testDB, 0)
	return NewUpsellService(upsellRepo, productRepo, 0), testDB
}

func TestUpsellService_CreateDerivesPricing(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	a := createTestProduct(t, testDB, "towel", 19)
	b := createTestProduct(t, testDB, "apron", 25.5)

	upsell := &model.Upsell{
		Name:     "kitchen-set",
		Pricing:  model.PricingTriple{DiscountPercentage: 20},
		IsActive: true,
	}
	require.NoError(t, upsellService.CreateUpsell(context.Background(), upsell, []uint{a.ID, b.ID}))

	assert.Equal(t, 44.99, upsell.Pricing.BasePrice)
	assert.Equal(t, 35.99, upsell.Pricing.SalePrice)

	stored, err := upsellService.GetUpsellByID(context.Background(), upsell.ID)
	require.NoError(t, err)
	require.Len(t, stored.Products, 2)
	assert.Equal(t, a.ID, stored.Products[0].ProductID)
	assert.Equal(t, b.ID, stored.Products[1].ProductID)
}

func TestUpsellService_CreateRejectsEmptyBundle(t *testing.T) {
	upsellService, _ := setupUpsellServiceTest(t)

	err := upsellService.CreateUpsell(context.Background(), &model.Upsell{Name: "empty"}, nil)
	assert.ErrorIs(t, err, ErrUpsellEmptyBundle)
}

func TestUpsellService_CreateRejectsUnknownMember(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	a := createTestProduct(t, testDB, "towel", 19)

	err := upsellService.CreateUpsell(context.Background(), &model.Upsell{Name: "set"}, []uint{a.ID, 999})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsellService_DetailComparison(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	a := createTestProduct(t, testDB, "towel", 19)
	b := createTestProduct(t, testDB, "apron", 25.5)

	upsell := &model.Upsell{
		Name:     "kitchen-set",
		Pricing:  model.PricingTriple{DiscountPercentage: 20},
		IsActive: true,
	}
	require.NoError(t, upsellService.CreateUpsell(context.Background(), upsell, []uint{a.ID, b.ID}))

	detail, err := upsellService.GetUpsellDetail(context.Background(), upsell.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comparisons, 2)

	// upgrading from the 19.00 towel to the 35.99 bundle
	cmpA := detail.Comparisons[a.ID]
	require.NotNil(t, cmpA)
	assert.Equal(t, "16.99", cmpA.AdditionalSpend)
	assert.Equal(t, 89, cmpA.PercentageIncrease)

	// upgrading from the 25.50 apron
	cmpB := detail.Comparisons[b.ID]
	require.NotNil(t, cmpB)
	assert.Equal(t, "10.49", cmpB.AdditionalSpend)
	assert.Equal(t, 41, cmpB.PercentageIncrease)
}

func TestUpsellService_DetailComparison_SkipsFreeMembers(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	free := createTestProduct(t, testDB, "sample", 0)
	paid := createTestProduct(t, testDB, "towel", 19)

	upsell := &model.Upsell{Name: "starter", IsActive: true}
	require.NoError(t, upsellService.CreateUpsell(context.Background(), upsell, []uint{free.ID, paid.ID}))

	detail, err := upsellService.GetUpsellDetail(context.Background(), upsell.ID)
	require.NoError(t, err)
	assert.NotContains(t, detail.Comparisons, free.ID)
	assert.Contains(t, detail.Comparisons, paid.ID)
}

func TestUpsellService_RepriceAll(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	a := createTestProduct(t, testDB, "towel", 19)
	b := createTestProduct(t, testDB, "apron", 25.5)

	upsell := &model.Upsell{
		Name:     "kitchen-set",
		Pricing:  model.PricingTriple{DiscountPercentage: 20},
		IsActive: true,
	}
	require.NoError(t, upsellService.CreateUpsell(context.Background(), upsell, []uint{a.ID, b.ID}))

	// member price edit does not touch the bundle until reprice runs
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", a.ID).
		Update("base_price", 30).Error)

	changed, err := upsellService.RepriceAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, err := upsellService.GetUpsellByID(context.Background(), upsell.ID)
	require.NoError(t, err)
	assert.Equal(t, 55.99, stored.Pricing.BasePrice) // 30 + 25.5 charmed
	assert.Equal(t, 44.99, stored.Pricing.SalePrice) // 55.99 * 0.8 = 44.792

	// second run is a no-op
	changed, err = upsellService.RepriceAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestUpsellService_UpdateKeepsMembershipWhenNil(t *testing.T) {
	upsellService, testDB := setupUpsellServiceTest(t)
	a := createTestProduct(t, testDB, "towel", 19)
	b := createTestProduct(t, testDB, "apron", 25.5)

	upsell := &model.Upsell{
		Name:     "kitchen-set",
		Pricing:  model.PricingTriple{DiscountPercentage: 20},
		IsActive: true,
	}
	require.NoError(t, upsellService.CreateUpsell(context.Background(), upsell, []uint{a.ID, b.ID}))

	upsell.Name = "renamed"
	require.NoError(t, upsellService.UpdateUpsell(context.Background(), upsell, nil))

	stored, err := upsellService.GetUpsellByID(context.Background(), upsell.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	assert.Len(t, stored.Products, 2)
}
