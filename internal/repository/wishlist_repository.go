package repository

import (
	"context"

	"electrohub/internal/domain/model"
)

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)

	//既に入っていれば何もしない
	Add(ctx context.Context, userID int64, productID int64) error

	Remove(ctx context.Context, userID int64, productID int64) error
}
