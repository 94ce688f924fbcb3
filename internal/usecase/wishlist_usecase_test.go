package usecase_test

import (
	"context"
	"testing"

	"electrohub/internal/domain/model"
	repo "electrohub/internal/repository"
	"electrohub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type WishWishlistRepoMock struct{ mock.Mock }

func (m *WishWishlistRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.WishlistItem)
	return items, args.Error(1)
}

func (m *WishWishlistRepoMock) Add(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *WishWishlistRepoMock) Remove(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func TestWishlistUsecase_List_DropsDeletedProducts(t *testing.T) {
	wRepo := new(WishWishlistRepoMock)
	pRepo := new(CrtProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	wRepo.On("ListByUserID", mock.Anything, int64(10)).Return([]model.WishlistItem{
		{ID: 1, UserID: 10, ProductID: 1},
		{ID: 2, UserID: 10, ProductID: 2},
	}, nil)
	pRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Keyboard", Price: 100, Discount: 10, Status: model.ProductStatusActive}, nil)
	//削除済みは一覧に出さない
	pRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.List(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out))
	//価格は値引き後
	assert.Equal(t, int64(90), out[0].Price)
}

func TestWishlistUsecase_Add_UnknownProduct(t *testing.T) {
	wRepo := new(WishWishlistRepoMock)
	pRepo := new(CrtProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	err := uc.Add(context.Background(), 10, 99)
	assertErrContains(t, err, "invalid")
	wRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistUsecase_Add_Success(t *testing.T) {
	wRepo := new(WishWishlistRepoMock)
	pRepo := new(CrtProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Status: model.ProductStatusActive}, nil)
	wRepo.On("Add", mock.Anything, int64(10), int64(1)).Return(nil)

	err := uc.Add(context.Background(), 10, 1)
	assert.NoError(t, err)

	wRepo.AssertExpectations(t)
}

func TestWishlistUsecase_Remove_NotFound(t *testing.T) {
	wRepo := new(WishWishlistRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, new(CrtProductRepoMock))

	wRepo.On("Remove", mock.Anything, int64(10), int64(1)).Return(repo.ErrNotFound)

	err := uc.Remove(context.Background(), 10, 1)
	assertErrContains(t, err, "not found")
}
