package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"electrohub/internal/domain/model"
	"electrohub/internal/mail"
	"electrohub/internal/payment"
	repo "electrohub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 注文の作り方（buy = 即時購入 / cart = カート決済）
type CheckoutSource string

const (
	CheckoutSourceBuy  CheckoutSource = "buy"
	CheckoutSourceCart CheckoutSource = "cart"
)

// 決済フロー全体。
// 注文作成フロー（PlaceOrder）でゲートウェイ注文を作り、
// クライアント側の支払い後に検証フロー（VerifyPayment）で注文を確定する。
type CheckoutUsecase struct {
	tx       repo.TransactionManager
	gateway  payment.Gateway
	verifier *payment.SignatureVerifier
	mailer   mail.OrderMailer
	userRepo repo.UserRepository
	logger   *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	gateway payment.Gateway,
	verifier *payment.SignatureVerifier,
	mailer mail.OrderMailer,
	userRepo repo.UserRepository,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		gateway:  gateway,
		verifier: verifier,
		mailer:   mailer,
		userRepo: userRepo,
		logger:   logger,
	}
}

type CheckoutItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type PlaceOrderInput struct {
	Total int64               `json:"total"`
	Items []CheckoutItemInput `json:"items"`
}

type PlaceOrderOutput struct {
	Order     payment.GatewayOrder `json:"order"`
	OrderData PlaceOrderInput      `json:"order_data"`
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	Source            CheckoutSource

	//buyのときだけ必須
	OrderData *PlaceOrderInput
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Status    string `json:"status"`
}

type OrderOutput struct {
	ID                int64             `json:"id"`
	UserID            int64             `json:"user_id"`
	TotalPrice        int64             `json:"total_price"`
	RazorpayOrderID   string            `json:"razorpay_order_id"`
	RazorpayPaymentID string            `json:"razorpay_payment_id"`
	CreatedAt         time.Time         `json:"created_at"`
	Items             []OrderItemOutput `json:"items"`
}

type VerifyPaymentOutput struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   OrderOutput `json:"order"`
}

// ゲートウェイ注文を作る。
// DBには何も書かない（支払い前の注文はゲートウェイ側にだけ存在する）。
// 失敗してもリトライしない（クライアントが再実行する）。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Total <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid total")
	}
	if len(in.Items) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "empty items")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	//最小通貨単位へ変換（INRならpaise）
	amount := in.Total * 100

	receipt := newReceipt(time.Now())

	order, err := u.gateway.CreateOrder(ctx, amount, "INR", receipt)
	if err != nil {
		u.logger.Error("gateway order create failed", zap.Error(err), zap.Int64("user_id", userID))
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to create order")
	}

	//入力をそのまま返してクライアント側で照合できるようにする
	return PlaceOrderOutput{Order: order, OrderData: in}, nil
}

// 支払い検証〜注文確定。
// 注文作成・在庫減算・在庫切れフラグ・カートクリアは1つのトランザクションで行う。
func (u *CheckoutUsecase) VerifyPayment(ctx context.Context, userID int64, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	if userID <= 0 {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//署名が合わないならここで終わり。何も変更しない
	if !u.verifier.Verify(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "payment verification failed")
	}

	if in.Source != CheckoutSourceBuy && in.Source != CheckoutSourceCart {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid flag")
	}
	if in.Source == CheckoutSourceBuy {
		if in.OrderData == nil || len(in.OrderData.Items) == 0 {
			return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "empty items")
		}
		for _, it := range in.OrderData.Items {
			if it.ProductID <= 0 || it.Quantity < 1 {
				return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
			}
		}
	}

	var (
		out VerifyPaymentOutput

		//この呼び出しで新規作成したときだけメールを送る
		createdNow bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じ決済IDなら既存の注文を返す（再送しても二重注文にならない）
		existing, found, err := r.Orders().FindByPaymentID(ctx, in.RazorpayPaymentID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = VerifyPaymentOutput{
				Success: true,
				Message: "payment already verified",
				Order:   toOrderOutput(existing, items),
			}
			return nil
		}

		//明細と合計を経路ごとに解決する
		var (
			total      int64
			orderItems []model.OrderItem
			cartID     int64
		)

		switch in.Source {
		case CheckoutSourceBuy:
			//合計はクライアント申告値をそのまま使う（既知の信頼境界ギャップ）
			total = in.OrderData.Total
			orderItems, err = u.buildBuyItems(ctx, r, in.OrderData.Items)
			if err != nil {
				return err
			}

		case CheckoutSourceCart:
			cart, err := r.Carts().FindActiveByUserID(ctx, userID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart empty")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if len(cartItems) == 0 {
				return NewHTTPError(http.StatusNotFound, "cart empty")
			}

			cartID = cart.ID
			orderItems, total, err = u.buildCartItems(ctx, r, cartItems)
			if err != nil {
				return err
			}
		}

		// 注文作成
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:            userID,
			TotalPrice:        total,
			RazorpayOrderID:   in.RazorpayOrderID,
			RazorpayPaymentID: in.RazorpayPaymentID,
		})
		if err != nil {
			//ユニーク制約と競合した場合はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByPaymentID(ctx, in.RazorpayPaymentID)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = VerifyPaymentOutput{
					Success: true,
					Message: "payment already verified",
					Order:   toOrderOutput(ex2, items2),
				}
				return nil
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫減算（足りないなら全体をロールバック）
		productIDs := make([]int64, 0, len(orderItems))
		for _, it := range orderItems {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}
			productIDs = append(productIDs, it.ProductID)
		}

		//購入した商品のうち在庫0になったものだけフラグを立てる
		if err := r.Inventory().MarkOutOfStock(ctx, productIDs); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート経路ならカートを空にする（カート自体は残す）
		if in.Source == CheckoutSourceCart {
			if err := r.Carts().UpdateStatus(ctx, cartID, model.CartStatusCheckedOut); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Carts().Clear(ctx, cartID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		created := model.Order{
			ID:                orderID,
			UserID:            userID,
			TotalPrice:        total,
			RazorpayOrderID:   in.RazorpayOrderID,
			RazorpayPaymentID: in.RazorpayPaymentID,
		}
		out = VerifyPaymentOutput{
			Success: true,
			Message: "payment verified",
			Order:   toOrderOutput(created, orderItems),
		}
		createdNow = true
		return nil
	})

	if err != nil {
		return VerifyPaymentOutput{}, err
	}

	//確定メールはコミット後にベストエフォートで送る（再送時は送らない）
	if createdNow {
		u.sendConfirmation(ctx, userID, out.Order)
	}

	return out, nil
}

// buy経路：申告された明細から商品を引いてスナップショットを作る
func (u *CheckoutUsecase) buildBuyItems(ctx context.Context, r repo.TxRepos, items []CheckoutItemInput) ([]model.OrderItem, error) {
	orderItems := make([]model.OrderItem, 0, len(items))

	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if p.Status != model.ProductStatusActive {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid")
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: p.Name,
			UnitPriceSnapshot:   p.SalePrice(),
			Quantity:            it.Quantity,
			Status:              model.OrderItemStatusConfirmed,
		})
	}
	return orderItems, nil
}

// cart経路：カート明細からスナップショットと合計を作る
func (u *CheckoutUsecase) buildCartItems(ctx context.Context, r repo.TxRepos, cartItems []model.CartItem) ([]model.OrderItem, int64, error) {
	orderItems := make([]model.OrderItem, 0, len(cartItems))
	var total int64 = 0

	for _, ci := range cartItems {
		p, err := r.Products().FindByID(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//カート投入後に販売停止になった商品は注文できない
		if p.Status != model.ProductStatusActive {
			return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid")
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID:           ci.ProductID,
			ProductNameSnapshot: p.Name,
			UnitPriceSnapshot:   ci.UnitPriceSnapshot,
			Quantity:            ci.Quantity,
			Status:              model.OrderItemStatusConfirmed,
		})

		total += ci.UnitPriceSnapshot * ci.Quantity
	}
	return orderItems, total, nil
}

func (u *CheckoutUsecase) sendConfirmation(ctx context.Context, userID int64, order OrderOutput) {
	usr, err := u.userRepo.FindByID(ctx, userID)
	if err != nil || usr == nil {
		u.logger.Warn("order confirmation skipped: user lookup failed",
			zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	items := make([]model.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: it.Name,
			UnitPriceSnapshot:   it.Price,
			Quantity:            it.Quantity,
		})
	}

	o := model.Order{ID: order.ID, TotalPrice: order.TotalPrice}
	if err := u.mailer.SendOrderConfirmation(usr.Email, o, items); err != nil {
		u.logger.Warn("order confirmation mail failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		status := it.Status
		if status == "" {
			status = model.OrderItemStatusConfirmed
		}
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Status:    string(status),
		})
	}

	return OrderOutput{
		ID:                o.ID,
		UserID:            o.UserID,
		TotalPrice:        o.TotalPrice,
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		CreatedAt:         o.CreatedAt,
		Items:             outItems,
	}
}

// レシートラベルは時刻由来＋uuidで一意にする
func newReceipt(now time.Time) string {
	return fmt.Sprintf("rcpt_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
