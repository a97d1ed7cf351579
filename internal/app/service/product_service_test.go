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

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB, 0)
	return NewProductService(productRepo, 0), testDB
}

func TestProductService_CreateNormalizesPricing(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product := &model.Product{
		Name: "Linen Apron",
		Slug: "linen-apron",
		Pricing: model.PricingTriple{
			BasePrice:          40,
			SalePrice:          12.34, // authored sale prices are ignored
			DiscountPercentage: 20,
		},
		IsActive: true,
	}
	require.NoError(t, productService.CreateProduct(context.Background(), product))

	assert.Equal(t, 40.0, product.Pricing.BasePrice)
	assert.Equal(t, 32.99, product.Pricing.SalePrice) // 40 * 0.8 charmed
}

func TestProductService_CreateClearsSaleOutsideDiscountRange(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	for i, discount := range []float64{0, -5, 100, 120} {
		product := &model.Product{
			Name: "p",
			Slug: string(rune('a' + i)),
			Pricing: model.PricingTriple{
				BasePrice:          40,
				SalePrice:          9.99,
				DiscountPercentage: discount,
			},
		}
		require.NoError(t, productService.CreateProduct(context.Background(), product))
		assert.Equal(t, 0.0, product.Pricing.SalePrice, "discount %v", discount)
	}
}

func TestProductService_SlugConflict(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	first := &model.Product{Name: "a", Slug: "dup"}
	require.NoError(t, productService.CreateProduct(context.Background(), first))

	second := &model.Product{Name: "b", Slug: "dup"}
	err := productService.CreateProduct(context.Background(), second)
	assert.ErrorIs(t, err, ErrProductSlugExists)

	// updating a product to its own slug is fine
	first.Name = "renamed"
	assert.NoError(t, productService.UpdateProduct(context.Background(), first))
}

func TestProductService_GetProductByID_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	_, err := productService.GetProductByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product := &model.Product{Name: "a", Slug: "a"}
	require.NoError(t, productService.CreateProduct(context.Background(), product))
	require.NoError(t, productService.DeleteProduct(context.Background(), product.ID))

	_, err := productService.GetProductByID(context.Background(), product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = productService.DeleteProduct(context.Background(), product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
