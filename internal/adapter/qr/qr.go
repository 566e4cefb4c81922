package qr

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"

	"github.com/quickpos/stablepay/internal/core/domain"
)

// Builder renders EIP-681 style token-transfer deep links. The POS terminal
// turns QRContent into an image; no state is touched here.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(order *domain.Order, network *domain.Network, token *domain.Token) (*domain.PaymentRequest, error) {
	units, err := scaleToUnits(order.AmountFiat, token.Decimals)
	if err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("ethereum:%s@%d/transfer?address=%s&uint256=%s",
		token.Contract, network.ChainID, order.MerchantAddress, units)

	return &domain.PaymentRequest{
		OrderID:     order.OrderID,
		NetworkID:   network.ID,
		AssetSymbol: token.Symbol,
		Address:     order.MerchantAddress,
		Amount:      order.AmountFiat,
		URI:         uri,
		QRContent:   uri,
		ExpiresAt:   order.ExpiresAt,
	}, nil
}

// scaleToUnits converts a fiat-denominated decimal into raw token units.
func scaleToUnits(amount decimal.Decimal, decimals int) (string, error) {
	if amount.Sign() < 0 {
		return "", fmt.Errorf("negative amount %s", amount)
	}

	intPart, fracPart, _ := strings.Cut(amount.String(), ".")
	if len(fracPart) > decimals {
		return "", fmt.Errorf("amount %s has more precision than token decimals %d", amount, decimals)
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	units := strings.TrimLeft(intPart+fracPart, "0")
	if units == "" {
		units = "0"
	}
	return units, nil
}
