package port

import (
	"github.com/quickpos/stablepay/internal/core/domain"
)

//go:generate mockgen -source=paymentrequest.go -destination=mock/paymentrequest.go -package=mock
type PaymentRequestBuilder interface {
	// Build renders the deep link / QR payload for paying the order with
	// the given token. Pure formatting, no state transition.
	Build(order *domain.Order, network *domain.Network, token *domain.Token) (*domain.PaymentRequest, error)
}
