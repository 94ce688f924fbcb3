package usecase_test

import (
	"context"
	"testing"

	"electrohub/internal/domain/model"
	"electrohub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks（CartUsecase向け）
// =====================

type CrtCartRepoMock struct{ mock.Mock }

func (m *CrtCartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CrtCartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CrtCartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	panic("not used in CartUsecase tests")
}

func (m *CrtCartRepoMock) Clear(ctx context.Context, cartID int64) error {
	panic("not used in CartUsecase tests")
}

type CrtCartItemRepoMock struct{ mock.Mock }

func (m *CrtCartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CrtCartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CrtCartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CrtCartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CrtCartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CrtCartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type CrtProductRepoMock struct{ mock.Mock }

func (m *CrtProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CrtProductRepoMock) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CrtProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CrtProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CrtProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

type cartFixture struct {
	carts    *CrtCartRepoMock
	items    *CrtCartItemRepoMock
	products *CrtProductRepoMock
	uc       *usecase.CartUsecase
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:    new(CrtCartRepoMock),
		items:    new(CrtCartItemRepoMock),
		products: new(CrtProductRepoMock),
	}
	f.uc = usecase.NewCartUsecase(f.carts, f.items, f.products)
	return f
}

// =====================
// GetCart
// =====================

func TestCartUsecase_GetCart_TotalsFromSnapshots(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(10)).
		Return(model.Cart{ID: 7, UserID: 10, Status: model.CartStatusActive}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 1, Quantity: 2, UnitPriceSnapshot: 100},
		{ID: 2, CartID: 7, ProductID: 2, Quantity: 1, UnitPriceSnapshot: 50},
	}, nil)
	//現在価格が変わっていても合計はスナップショット基準
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Keyboard", Price: 999, Status: model.ProductStatusActive}, nil)
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Name: "Mouse", Price: 999, Status: model.ProductStatusActive}, nil)

	out, err := f.uc.GetCart(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(250), out.Total)
	assert.Equal(t, 2, len(out.Items))
	assert.Equal(t, int64(100), out.Items[0].Price)
}

func TestCartUsecase_GetCart_SkipsInactiveProducts(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(10)).
		Return(model.Cart{ID: 7}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 1, Quantity: 1, UnitPriceSnapshot: 100},
		{ID: 2, CartID: 7, ProductID: 2, Quantity: 1, UnitPriceSnapshot: 50},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Status: model.ProductStatusActive}, nil)
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Status: model.ProductStatusInactive}, nil)

	out, err := f.uc.GetCart(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(100), out.Total)
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	f := newCartFixture()

	_, err := f.uc.AddToCart(context.Background(), 10, usecase.AddCartInput{ProductID: 1, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 7}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Status: model.ProductStatusInactive}, nil)

	_, err := f.uc.AddToCart(context.Background(), 10, usecase.AddCartInput{ProductID: 1, Quantity: 1})
	assertErrContains(t, err, "invalid")
	f.items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 7}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Stock: 4, Status: model.ProductStatusActive}, nil)
	//既に2個入っている＋3個追加 > 在庫4
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 1, Quantity: 2, UnitPriceSnapshot: 100},
	}, nil)

	_, err := f.uc.AddToCart(context.Background(), 10, usecase.AddCartInput{ProductID: 1, Quantity: 3})
	assertErrContains(t, err, "stock exceeded")
	f.items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_SnapshotsSalePrice(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 7}, nil)
	//Price 100 - Discount 10 = 90 がスナップショットに入る
	product := model.Product{ID: 1, Name: "Keyboard", Price: 100, Discount: 10, Stock: 5, Status: model.ProductStatusActive}
	f.products.On("FindByID", mock.Anything, int64(1)).Return(product, nil)

	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil).Once()
	f.items.On("UpsertByCartAndProduct", mock.Anything, int64(7), int64(1), int64(2), int64(90)).Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, CartID: 7, ProductID: 1, Quantity: 2, UnitPriceSnapshot: 90},
	}, nil)

	out, err := f.uc.AddToCart(context.Background(), 10, usecase.AddCartInput{ProductID: 1, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(180), out.Total)

	f.items.AssertExpectations(t)
}

// =====================
// UpdateCartItem / DeleteCartItem
// =====================

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(5), int64(10)).Return(false, nil)

	_, err := f.uc.UpdateCartItem(context.Background(), 10, 5, usecase.UpdateCartItemInput{Quantity: 2})
	assertErrContains(t, err, "not found")
	f.items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_UpdateCartItem_StockExceeded(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(5), int64(10)).Return(true, nil)
	f.items.On("FindByID", mock.Anything, int64(5)).
		Return(model.CartItem{ID: 5, CartID: 7, ProductID: 1, Quantity: 1, UnitPriceSnapshot: 100}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Stock: 3, Status: model.ProductStatusActive}, nil)

	_, err := f.uc.UpdateCartItem(context.Background(), 10, 5, usecase.UpdateCartItemInput{Quantity: 4})
	assertErrContains(t, err, "stock exceeded")
}

func TestCartUsecase_UpdateCartItem_Success(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(5), int64(10)).Return(true, nil)
	f.items.On("FindByID", mock.Anything, int64(5)).
		Return(model.CartItem{ID: 5, CartID: 7, ProductID: 1, Quantity: 1, UnitPriceSnapshot: 100}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Keyboard", Stock: 10, Status: model.ProductStatusActive}, nil)
	f.items.On("UpdateQuantity", mock.Anything, int64(5), int64(3)).Return(nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 7}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 5, CartID: 7, ProductID: 1, Quantity: 3, UnitPriceSnapshot: 100},
	}, nil)

	out, err := f.uc.UpdateCartItem(context.Background(), 10, 5, usecase.UpdateCartItemInput{Quantity: 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(300), out.Total)
}

func TestCartUsecase_DeleteCartItem_Success(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(5), int64(10)).Return(true, nil)
	f.items.On("DeleteByID", mock.Anything, int64(5)).Return(nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 7}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	out, err := f.uc.DeleteCartItem(context.Background(), 10, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.Equal(t, int64(0), out.Total)
}

func TestCartUsecase_DeleteCartItem_NotOwned(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(5), int64(10)).Return(false, nil)

	_, err := f.uc.DeleteCartItem(context.Background(), 10, 5)
	assertErrContains(t, err, "not found")
	f.items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}
