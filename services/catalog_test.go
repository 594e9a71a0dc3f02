package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
)

func TestCatalog_CreateUpdateList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewCatalogService(db)

	tea, err := svc.CreateProduct(ctx, ProductInput{
		Name:     "Green Tea",
		Category: "drinks",
		Price:    decimal.RequireFromString("4.20"),
		Quantity: 12,
	})
	require.NoError(t, err)
	assert.True(t, tea.IsActive)

	hidden := false
	_, err = svc.CreateProduct(ctx, ProductInput{
		Name:     "Secret Blend",
		Category: "drinks",
		Price:    decimal.RequireFromString("9.00"),
		IsActive: &hidden,
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Mug", Category: "kitchen", Price: decimal.RequireFromString("7.00")})
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx, ProductFilter{Category: "drinks"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Green Tea", products[0].Name)

	products, err = svc.ListProducts(ctx, ProductFilter{Search: "TEA"})
	require.NoError(t, err)
	assert.Len(t, products, 1)

	all, err := svc.ListProducts(ctx, ProductFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	discount := decimal.NewFromInt(50)
	updated, err := svc.UpdateProduct(ctx, tea.ID, ProductUpdate{Discount: &discount})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.10").Equal(updated.DiscountedPrice()))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{{"drinks", 1}, {"kitchen", 1}}, categories)
}

func TestCatalog_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newTestDB(t))

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Free", Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Odd", Price: decimal.NewFromInt(1), Discount: decimal.NewFromInt(120)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Neg", Price: decimal.NewFromInt(1), Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetProduct(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_DeleteKeepsOrderedProducts(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	svc := NewCatalogService(f.db)
	ordered := seedProduct(t, f.db, "Tea", "4.00", 0, 5)
	unused := seedProduct(t, f.db, "Cup", "2.00", 0, 5)

	_, err := f.svc.Create(ctx, f.customer.ID, pickup(OrderItemInput{ProductID: ordered.ID, Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, ordered.ID))
	got, err := svc.GetProduct(ctx, ordered.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.DeleteProduct(ctx, unused.ID))
	_, err = svc.GetProduct(ctx, unused.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContent_Pages(t *testing.T) {
	ctx := context.Background()
	svc := NewContentService(newTestDB(t))

	page, err := svc.GetPage(ctx, models.PageAbout)
	require.NoError(t, err)
	assert.Equal(t, "About us", page.Title)
	assert.Empty(t, page.Body)

	_, err = svc.UpsertPage(ctx, 1, models.PageAbout, "About", "We sell tea.")
	require.NoError(t, err)
	page, err = svc.UpsertPage(ctx, 2, models.PageAbout, "About the shop", "We sell tea and cups.")
	require.NoError(t, err)
	assert.Equal(t, "About the shop", page.Title)
	assert.Equal(t, uint(2), page.UpdatedBy)

	_, err = svc.GetPage(ctx, "careers")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpsertPage(ctx, 1, models.PageContact, " ", "body")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContent_ContactMessages(t *testing.T) {
	ctx := context.Background()
	svc := NewContentService(newTestDB(t))

	_, err := svc.SubmitContactMessage(ctx, ContactInput{Name: "Alex", Message: "Do you ship abroad?"})
	require.NoError(t, err)
	_, err = svc.SubmitContactMessage(ctx, ContactInput{Name: "Sam", Phone: "123", Message: "hi"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SubmitContactMessage(ctx, ContactInput{Name: "Sam", Message: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	msgs, err := svc.ListContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Do you ship abroad?", msgs[0].Message)
}

func TestErrorKinds(t *testing.T) {
	err := wrap("outer", Validation("phone", "bad phone"))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Kind(""), KindOf(assert.AnError))

	assert.False(t, isUniqueViolation(assert.AnError))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: accounts.phone")))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, isUniqueViolation(nil))
}
