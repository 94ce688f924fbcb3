package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"electrohub/internal/domain/model"
	repo "electrohub/internal/repository"
)

// usecase層のエラーはstatusとmessageを持って上に返す
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 販売者向けの商品管理。
type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

type ProductCreateInput struct {
	Name        string
	Description string
	Price       int64
	Discount    int64
	Stock       int64
}

type ProductUpdateInput struct {
	Name        string
	Description string
	Price       int64
	Discount    int64
	IsActive    bool
}

type SetStockInput struct {
	Stock  int64
	Reason string
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, sellerID int64, in ProductCreateInput) (model.Product, error) {
	if sellerID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Discount < 0 || in.Discount > in.Price {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid discount")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	status := model.ProductStatusActive
	if in.Stock == 0 {
		status = model.ProductStatusOutOfStock
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		SellerID:    sellerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Discount:    in.Discount,
		Stock:       in.Stock,
		Status:      status,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) ListMyProducts(ctx context.Context, sellerID int64) ([]model.Product, error) {
	if sellerID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.productRepo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, actorID int64, actorRole model.Role, productID int64, in ProductUpdateInput) (model.Product, error) {
	p, err := u.findOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return model.Product{}, err
	}

	if in.Name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Discount < 0 || in.Discount > in.Price {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid discount")
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Discount = in.Discount

	//在庫0のときはOUT_OF_STOCKを優先する
	if !in.IsActive {
		p.Status = model.ProductStatusInactive
	} else if p.Stock == 0 {
		p.Status = model.ProductStatusOutOfStock
	} else {
		p.Status = model.ProductStatusActive
	}

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 在庫の現在値を設定し、調整履歴と監査ログを残す
func (u *ProductUsecase) SetStock(ctx context.Context, actorID int64, actorRole model.Role, productID int64, in SetStockInput) error {
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	if in.Reason == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	p, err := u.findOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return err
	}

	if err := u.inventoryRepo.SetStock(ctx, productID, in.Stock); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID:   productID,
		ActorUserID: actorID,
		Delta:       in.Stock - p.Stock,
		Reason:      in.Reason,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeStockAudit(ctx, actorID, productID, p.Stock, in.Stock)
	return nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, actorID int64, actorRole model.Role, productID int64) error {
	if _, err := u.findOwned(ctx, actorID, actorRole, productID); err != nil {
		return err
	}
	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 存在確認＋所有チェック（ADMINは全商品を触れる）
func (u *ProductUsecase) findOwned(ctx context.Context, actorID int64, actorRole model.Role, productID int64) (model.Product, error) {
	if actorID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actorRole != model.RoleAdmin && p.SellerID != actorID {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return p, nil
}

// 監査ログはベストエフォート（本処理は成立済み）
func (u *ProductUsecase) writeStockAudit(ctx context.Context, actorID int64, productID int64, before int64, after int64) {
	b, _ := json.Marshal(map[string]int64{"stock": before})
	a, _ := json.Marshal(map[string]int64{"stock": after})

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
	})
}
