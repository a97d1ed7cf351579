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

func setupOptionServiceTest(t *testing.T) (OptionService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	optionRepo := repository.NewOptionRepository(testDB)
	productRepo := repository.NewProductRepository(testDB, 0)
	return NewOptionService(optionRepo, productRepo), testDB
}

func seedChainedProduct(t *testing.T, svc OptionService, testDB *gorm.DB) (*model.Product, *model.OptionGroup, *model.OptionGroup, map[string]uint) {
	product := createTestProduct(t, testDB, "apron", 25)

	color := &model.OptionGroup{ProductID: product.ID, Name: "Color", DisplayOrder: 0}
	require.NoError(t, svc.CreateGroup(context.Background(), color))
	size := &model.OptionGroup{ProductID: product.ID, Name: "Size", DisplayOrder: 1}
	require.NoError(t, svc.CreateGroup(context.Background(), size))

	ids := make(map[string]uint)
	for _, spec := range []struct {
		group *model.OptionGroup
		name  string
	}{
		{color, "Red"}, {color, "Blue"}, {size, "S"}, {size, "M"},
	} {
		value := &model.OptionValue{GroupID: spec.group.ID, Value: spec.name, IsActive: true}
		require.NoError(t, svc.CreateValue(context.Background(), value))
		ids[spec.name] = value.ID
	}

	rel := &model.ChainingRelationship{
		ProductID:     product.ID,
		ParentGroupID: color.ID,
		ChildGroupID:  size.ID,
		Constraints: model.ConstraintMap{
			ids["Red"]:  {ids["S"]},
			ids["Blue"]: {ids["S"], ids["M"]},
		},
	}
	require.NoError(t, svc.CreateRelationship(context.Background(), rel))

	return product, color, size, ids
}

func TestOptionService_ResolveProduct(t *testing.T) {
	svc, testDB := setupOptionServiceTest(t)
	product, color, size, ids := seedChainedProduct(t, svc, testDB)

	res, err := svc.ResolveProduct(context.Background(), product.ID, model.Selection{color.ID: ids["Red"]})
	require.NoError(t, err)
	assert.True(t, res.IsSelectable(size.ID, ids["S"]))
	assert.False(t, res.IsSelectable(size.ID, ids["M"]))
}

func TestOptionService_SelectProductOption_Cascades(t *testing.T) {
	svc, testDB := setupOptionServiceTest(t)
	product, color, size, ids := seedChainedProduct(t, svc, testDB)

	sel := model.Selection{color.ID: ids["Blue"], size.ID: ids["M"]}
	next, res, err := svc.SelectProductOption(context.Background(), product.ID, sel, color.ID, ids["Red"])
	require.NoError(t, err)

	_, kept := next[size.ID]
	assert.False(t, kept)
	assert.False(t, res.Complete)
}

func TestOptionService_SelectProductOption_UnknownValue(t *testing.T) {
	svc, testDB := setupOptionServiceTest(t)
	product, color, _, _ := seedChainedProduct(t, svc, testDB)

	_, _, err := svc.SelectProductOption(context.Background(), product.ID, nil, color.ID, 9999)
	assert.ErrorIs(t, err, ErrOptionValueNotFound)

	_, _, err = svc.SelectProductOption(context.Background(), product.ID, nil, 9999, 1)
	assert.ErrorIs(t, err, ErrOptionGroupNotFound)
}

func TestOptionService_CreateRelationship_Validation(t *testing.T) {
	svc, testDB := setupOptionServiceTest(t)
	product, color, _, _ := seedChainedProduct(t, svc, testDB)

	// self-referential
	err := svc.CreateRelationship(context.Background(), &model.ChainingRelationship{
		ProductID:     product.ID,
		ParentGroupID: color.ID,
		ChildGroupID:  color.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidChaining)

	// group from another product
	other := createTestProduct(t, testDB, "towel", 10)
	foreign := &model.OptionGroup{ProductID: other.ID, Name: "Material"}
	require.NoError(t, svc.CreateGroup(context.Background(), foreign))

	err = svc.CreateRelationship(context.Background(), &model.ChainingRelationship{
		ProductID:     product.ID,
		ParentGroupID: color.ID,
		ChildGroupID:  foreign.ID,
	})
	assert.ErrorIs(t, err, ErrOptionGroupMismatch)
}

func TestOptionService_CreateGroup_UnknownProduct(t *testing.T) {
	svc, _ := setupOptionServiceTest(t)

	err := svc.CreateGroup(context.Background(), &model.OptionGroup{ProductID: 999, Name: "Color"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
