package port

import (
	"context"

	"github.com/quickpos/stablepay/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// CreateOrder writes the order and its initial payment status record as
	// one transaction.
	CreateOrder(ctx context.Context, order *domain.Order, record *domain.PaymentStatusRecord) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ReadPaymentStatus(ctx context.Context, orderID string) (*domain.PaymentStatusRecord, error)
	ListOpenOrders(ctx context.Context, merchantAddress string) ([]*domain.Order, error)

	// UpdateOrderStatus performs the conditional transition: the write
	// applies only while the order's current status is in expectedFrom.
	// A status history entry is appended in the same transaction. When the
	// order has concurrently left the expected set, domain.ErrStatusConflict
	// is returned and nothing is written.
	UpdateOrderStatus(ctx context.Context, orderID string,
		expectedFrom []domain.OrderStatus, to domain.OrderStatus,
		update *domain.StatusUpdate) (*domain.Order, error)
}
