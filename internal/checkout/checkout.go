// Package checkout реализует границу с платёжным шлюзом: по заказу получить
// подписанный ответ {orderId, paymentId, signature}. Сколько ждать ответа,
// решает вызывающий через ctx.
package checkout

import (
	"bufio"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// ErrDismissed возвращается, если пользователь закрыл оплату без ответа шлюза.
var ErrDismissed = errors.New("checkout dismissed")

// Sign вычисляет подпись шлюза: HMAC-SHA256 от "orderID|paymentID" в hex.
func Sign(secret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Terminal просит пользователя вставить ответ шлюза в терминал.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal создаёт шлюз поверх ввода и вывода терминала.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Open печатает заказ и читает payment id и подпись. Пустой ввод означает отказ.
func (t *Terminal) Open(ctx context.Context, order models.PendingOrder) (models.PaymentVerification, error) {
	const op = "checkout.Terminal.Open"

	fmt.Fprintf(t.out, "Order %s: %.2f %s (key %s)\n", order.OrderID, order.Amount, order.Currency, order.RazorpayKeyID)
	fmt.Fprintln(t.out, "Complete the payment in the gateway and paste its response. Leave empty to cancel.")

	type answer struct {
		lines []string
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		sc := bufio.NewScanner(t.in)
		var lines []string
		for _, prompt := range []string{"payment id: ", "signature: "} {
			fmt.Fprint(t.out, prompt)
			if !sc.Scan() {
				done <- answer{err: sc.Err()}
				return
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				done <- answer{}
				return
			}
			lines = append(lines, line)
		}
		done <- answer{lines: lines}
	}()

	select {
	case <-ctx.Done():
		return models.PaymentVerification{}, fmt.Errorf("%s: %w", op, ctx.Err())
	case a := <-done:
		if a.err != nil {
			return models.PaymentVerification{}, fmt.Errorf("%s: %w", op, a.err)
		}
		if len(a.lines) < 2 {
			return models.PaymentVerification{}, ErrDismissed
		}
		return models.PaymentVerification{OrderID: order.OrderID, PaymentID: a.lines[0], Signature: a.lines[1]}, nil
	}
}

// Simulated сам «оплачивает» заказ и подписывает ответ секретом шлюза.
// Используется с тестовыми ключами.
type Simulated struct {
	Secret []byte
}

func (s Simulated) Open(ctx context.Context, order models.PendingOrder) (models.PaymentVerification, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentVerification{}, err
	}
	paymentID := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return models.PaymentVerification{
		OrderID:   order.OrderID,
		PaymentID: paymentID,
		Signature: Sign(s.Secret, order.OrderID, paymentID),
	}, nil
}
