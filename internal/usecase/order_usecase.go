package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"electrohub/internal/domain/model"
	repo "electrohub/internal/repository"
)

// 明細ステータスの遷移表。
// ORDER_CONFIRMED → SHIPPED → DELIVERED、
// 配達後はRETURNED、早い段階ならCANCELEDへ。
var allowedItemTransitions = map[model.OrderItemStatus][]model.OrderItemStatus{
	model.OrderItemStatusConfirmed: {model.OrderItemStatusShipped, model.OrderItemStatusCanceled},
	model.OrderItemStatusShipped:   {model.OrderItemStatusDelivered, model.OrderItemStatusCanceled},
	model.OrderItemStatusDelivered: {model.OrderItemStatusReturned},
}

func canTransition(from model.OrderItemStatus, to model.OrderItemStatus) bool {
	for _, s := range allowedItemTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, auditRepo: auditRepo}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type UpdateItemStatusInput struct {
	Status model.OrderItemStatus
}

// 明細の配送ステータスを更新する（販売者・管理者のみ）。
// キャンセル時は在庫を戻す。
func (u *OrderUsecase) UpdateItemStatus(ctx context.Context, actorID int64, orderItemID int64, in UpdateItemStatusInput) error {
	if actorID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var before model.OrderItemStatus

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.OrderItems().FindByID(ctx, orderItemID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !canTransition(item.Status, in.Status) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}
		before = item.Status

		if err := r.OrderItems().UpdateStatus(ctx, orderItemID, in.Status); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//キャンセルは在庫を戻す
		if in.Status == model.OrderItemStatusCanceled {
			if err := r.Inventory().IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})

	if err != nil {
		return err
	}

	//監査ログはベストエフォート
	b, _ := json.Marshal(map[string]string{"status": string(before)})
	a, _ := json.Marshal(map[string]string{"status": string(in.Status)})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateOrderItemStatus,
		ResourceType: model.AuditResourceOrderItem,
		ResourceID:   orderItemID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
	})

	return nil
}
