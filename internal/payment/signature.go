package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// 決済確認がゲートウェイ由来であることをHMACで検証する
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

// "{order_id}|{payment_id}" のHMAC-SHA256（hex）をシークレットで計算して、
// クライアントが送ってきた署名と定数時間で比較する。
func (v *SignatureVerifier) Verify(orderID string, paymentID string, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
