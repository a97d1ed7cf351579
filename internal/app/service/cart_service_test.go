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

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB, 0)
	upsellRepo := repository.NewUpsellRepository(testDB)
	return NewCartService(cartRepo, productRepo, upsellRepo), testDB
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, basePrice float64) *model.Product {
	product := &model.Product{
		Name:            name,
		Slug:            name,
		Pricing:         model.PricingTriple{BasePrice: basePrice},
		MainImageURL:    "https://cdn.example.com/" + name + ".jpg",
		ChainingEnabled: true,
		IsActive:        true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestUpsell(t *testing.T, testDB *gorm.DB, name string, products ...*model.Product) *model.Upsell {
	var prices []float64
	for _, p := range products {
		prices = append(prices, p.Pricing.BasePrice)
	}
	upsell := &model.Upsell{
		Name:     name,
		Pricing:  AggregateBundlePrice(prices, 20),
		IsActive: true,
	}
	require.NoError(t, testDB.Create(upsell).Error)
	for i, p := range products {
		require.NoError(t, testDB.Create(&model.UpsellProduct{
			UpsellID:  upsell.ID,
			ProductID: p.ID,
			Position:  i,
		}).Error)
	}
	return upsell
}

func TestCartService_AddProductLine(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "tea-towel", 12)

	line, err := cartService.AddProductLine(context.Background(), 1, product.ID, 2, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, line.VariantID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, model.CartLineProduct, line.Kind)
}

func TestCartService_AddProductLine_MergesIdenticalConfiguration(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "tea-towel", 12)

	first, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)
	second, err := cartService.AddProductLine(context.Background(), 1, product.ID, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, first.VariantID, second.VariantID)
	assert.Equal(t, 3, second.Quantity)

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCartService_AddProductLine_RejectsIncompleteSelection(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "apron", 25)

	group := &model.OptionGroup{ProductID: product.ID, Name: "Color"}
	require.NoError(t, testDB.Create(group).Error)
	value := &model.OptionValue{GroupID: group.ID, Value: "Red", IsActive: true}
	require.NoError(t, testDB.Create(value).Error)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	assert.ErrorIs(t, err, ErrIncompleteSelection)

	_, err = cartService.AddProductLine(context.Background(), 1, product.ID, 1, model.Selection{group.ID: value.ID})
	assert.NoError(t, err)
}

func TestCartService_AddProductLine_UnknownProduct(t *testing.T) {
	cartService, _ := setupCartServiceTest(t)

	_, err := cartService.AddProductLine(context.Background(), 1, 999, 1, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddUpsellLine_RejectsForeignMember(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	member := createTestProduct(t, testDB, "towel", 10)
	outsider := createTestProduct(t, testDB, "mug", 8)
	upsell := createTestUpsell(t, testDB, "kitchen-set", member)

	_, err := cartService.AddUpsellLine(context.Background(), 1, upsell.ID, 1, model.UpsellSelections{
		{ProductID: outsider.ID},
	})
	assert.ErrorIs(t, err, ErrUpsellMemberMismatch)

	_, err = cartService.AddUpsellLine(context.Background(), 1, upsell.ID, 1, model.UpsellSelections{
		{ProductID: member.ID},
	})
	assert.NoError(t, err)
}

func TestCartService_ComposeCart_DropsDanglingLines(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	keep := createTestProduct(t, testDB, "keep", 10)
	gone := createTestProduct(t, testDB, "gone", 20)

	_, err := cartService.AddProductLine(context.Background(), 1, keep.ID, 1, nil)
	require.NoError(t, err)
	_, err = cartService.AddProductLine(context.Background(), 1, gone.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, testDB.Delete(&model.Product{}, gone.ID).Error)

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, keep.ID, cart.Lines[0].Product.ID)
	assert.Equal(t, 10.0, cart.Total)
}

func TestCartService_ComposeCart_DropsInactiveDocuments(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "seasonal", 15)

	_, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("is_active", false).Error)

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0.0, cart.Total)
}

func TestCartService_ComposeCart_DropsImagelessBundleMembers(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	imaged := createTestProduct(t, testDB, "imaged", 10)
	imageless := createTestProduct(t, testDB, "imageless", 20)
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", imageless.ID).
		Update("main_image_url", "").Error)
	upsell := createTestUpsell(t, testDB, "kitchen-set", imaged, imageless)

	_, err := cartService.AddUpsellLine(context.Background(), 1, upsell.ID, 1, nil)
	require.NoError(t, err)

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	require.Len(t, cart.Lines[0].Members, 1)
	assert.Equal(t, imaged.ID, cart.Lines[0].Members[0].ProductID)
}

func TestCartService_ComposeCart_DropsBundleWithNoRenderableMember(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	member := createTestProduct(t, testDB, "bare", 10)
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", member.ID).
		Update("main_image_url", "").Error)
	upsell := createTestUpsell(t, testDB, "bare-set", member)

	_, err := cartService.AddUpsellLine(context.Background(), 1, upsell.ID, 1, nil)
	require.NoError(t, err)

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0.0, cart.Total)
}

func TestCartService_ComposeCart_SelectedLinesOnly(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	a := createTestProduct(t, testDB, "a", 10)
	b := createTestProduct(t, testDB, "b", 20)

	lineA, err := cartService.AddProductLine(context.Background(), 1, a.ID, 1, nil)
	require.NoError(t, err)
	_, err = cartService.AddProductLine(context.Background(), 1, b.ID, 1, nil)
	require.NoError(t, err)

	cart, err := cartService.ComposeCart(context.Background(), 1, []string{lineA.VariantID})
	require.NoError(t, err)

	// every line is still shown, only the selected one is charged
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 10.0, cart.Total)

	// deselecting everything zeroes the total
	cart, err = cartService.ComposeCart(context.Background(), 1, []string{})
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 0.0, cart.Total)
}

func TestCartService_ComposeCart_SortsByPosition(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	a := createTestProduct(t, testDB, "a", 10)
	b := createTestProduct(t, testDB, "b", 20)

	lineA, err := cartService.AddProductLine(context.Background(), 1, a.ID, 1, nil)
	require.NoError(t, err)
	lineB, err := cartService.AddProductLine(context.Background(), 1, b.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, cartService.ReorderLines(1, []string{lineB.VariantID, lineA.VariantID}))

	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, lineB.VariantID, cart.Lines[0].Line.VariantID)
	assert.Equal(t, lineA.VariantID, cart.Lines[1].Line.VariantID)
}

func TestCartService_ReorderLines_UnknownVariantRollsBack(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	a := createTestProduct(t, testDB, "a", 10)
	b := createTestProduct(t, testDB, "b", 20)

	lineA, err := cartService.AddProductLine(context.Background(), 1, a.ID, 1, nil)
	require.NoError(t, err)
	lineB, err := cartService.AddProductLine(context.Background(), 1, b.ID, 1, nil)
	require.NoError(t, err)

	err = cartService.ReorderLines(1, []string{lineB.VariantID, "no-such-variant", lineA.VariantID})
	assert.ErrorIs(t, err, ErrCartLineNotFound)

	// the partial reorder rolled back, original order stands
	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, lineA.VariantID, cart.Lines[0].Line.VariantID)
	assert.Equal(t, lineB.VariantID, cart.Lines[1].Line.VariantID)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 10)

	line, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateQuantity(1, line.VariantID, 5))
	cart, err := cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cart.Total)

	// zero quantity removes the line
	require.NoError(t, cartService.UpdateQuantity(1, line.VariantID, 0))
	cart, err = cartService.ComposeCart(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_RemoveLine_WrongUser(t *testing.T) {
	cartService, testDB := setupCartServiceTest(t)
	product := createTestProduct(t, testDB, "towel", 10)

	line, err := cartService.AddProductLine(context.Background(), 1, product.ID, 1, nil)
	require.NoError(t, err)

	err = cartService.RemoveLine(2, line.VariantID)
	assert.ErrorIs(t, err, ErrCartLineNotFound)
}
