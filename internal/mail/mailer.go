package mail

import (
	"fmt"

	"electrohub/internal/domain/model"

	gomail "gopkg.in/gomail.v2"
)

// 注文確定メールの約束。
// 送信はベストエフォート（失敗しても注文は成立済み）。
type OrderMailer interface {
	SendOrderConfirmation(to string, order model.Order, items []model.OrderItem) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username string, password string, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendOrderConfirmation(to string, order model.Order, items []model.OrderItem) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("ご注文ありがとうございます（注文番号: %d）", order.ID))

	body := fmt.Sprintf("注文番号: %d\n合計金額: %d\n\n", order.ID, order.TotalPrice)
	for _, it := range items {
		body += fmt.Sprintf("- %s × %d（単価 %d）\n", it.ProductNameSnapshot, it.Quantity, it.UnitPriceSnapshot)
	}
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// SMTP未設定のときに使う
type NopMailer struct{}

func (NopMailer) SendOrderConfirmation(string, model.Order, []model.OrderItem) error {
	return nil
}
