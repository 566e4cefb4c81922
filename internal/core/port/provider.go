package port

import (
	"context"

	"github.com/quickpos/stablepay/internal/core/domain"
)

//go:generate mockgen -source=provider.go -destination=mock/provider.go -package=mock
type TransferProvider interface {
	// GetTransfer polls the provider for the current state of one brokered
	// transfer. Status strings are the provider's own vocabulary; mapping
	// onto the order state machine is the caller's concern.
	GetTransfer(ctx context.Context, transferID string) (*domain.ProviderTransfer, error)
}
