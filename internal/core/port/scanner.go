package port

import (
	"context"

	"github.com/quickpos/stablepay/internal/core/domain"
)

//go:generate mockgen -source=scanner.go -destination=mock/scanner.go -package=mock
type ChainScanner interface {
	// RecentTransfers returns stablecoin transfer events addressed to the
	// given address within the network's recent block window.
	RecentTransfers(ctx context.Context, network *domain.Network, address string) ([]*domain.TransferEvent, error)
}
