package port

import (
	"context"

	"github.com/quickpos/stablepay/internal/core/domain"
)

// PaymentState is what a status-check caller sees: the order plus its
// audit record as last committed.
type PaymentState struct {
	Order  *domain.Order
	Record *domain.PaymentStatusRecord
}

type CreateOrderInput struct {
	AmountFiat  float64
	Network     string
	AssetSymbol string
	Description string
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	BuildPaymentRequest(ctx context.Context, orderID string) (*domain.PaymentRequest, error)
	CheckPayment(ctx context.Context, orderID string) (*PaymentState, error)
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)

	HandleProviderEvent(ctx context.Context, event *domain.ProviderTransferEvent) error
	HandleIndexerEvent(ctx context.Context, event *domain.TransferEvent) error
}
