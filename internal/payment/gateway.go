package payment

import "context"

// ゲートウェイ側に作られた注文（この時点ではDBに行は無い）
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// 決済ゲートウェイの約束。
// main.goで実装をnewしてusecaseに注入する（パッケージ内シングルトンにしない）。
type Gateway interface {
	//amountは最小通貨単位（INRならpaise）
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (GatewayOrder, error)
}
