package service

import (
	"github.com/govalues/decimal"

	"github.com/quickpos/stablepay/internal/core/domain"
)

// Tolerance bands for amount matching. Strict applies when the observed
// amount is a provider-asserted fiat value; loose applies to amounts derived
// from raw on-chain token units, where decimals rounding and fee deduction
// make exact equality unreliable.
var (
	StrictTolerance = decimal.MustParse("0.01")
	LooseTolerance  = decimal.MustParse("0.05")
)

// AmountWithinTolerance reports whether |observed-target|/target <= tol.
// Target must be positive; a non-positive target never matches.
func AmountWithinTolerance(observed, target, tol decimal.Decimal) bool {
	if target.Sign() <= 0 {
		return false
	}
	diff, err := observed.Sub(target)
	if err != nil {
		return false
	}
	ratio, err := diff.Abs().Quo(target)
	if err != nil {
		return false
	}
	return ratio.Cmp(tol) <= 0
}

// assetMatches applies the selector gate: a concrete selector must equal the
// transfer's (network, symbol) pair; auto accepts any supported pair.
func assetMatches(order *domain.Order, event *domain.TransferEvent, networks *domain.NetworkTable) bool {
	if order.Asset.Auto() {
		return networks.Supported(event.NetworkID, event.AssetSymbol)
	}
	return order.Asset.Network == event.NetworkID && order.Asset.Symbol == event.AssetSymbol
}

// MatchOrder selects the open order best matching the observed transfer:
// closest amount within tolerance, ties broken by earliest creation time so
// allocation is first-come and reproducible. Returns nil when nothing
// matches.
func MatchOrder(orders []*domain.Order, event *domain.TransferEvent,
	tol decimal.Decimal, networks *domain.NetworkTable) *domain.Order {

	var best *domain.Order
	var bestDiff decimal.Decimal

	for _, order := range orders {
		if !order.Open() {
			continue
		}
		if !assetMatches(order, event, networks) {
			continue
		}
		if !AmountWithinTolerance(event.Amount, order.AmountFiat, tol) {
			continue
		}
		diff, err := event.Amount.Sub(order.AmountFiat)
		if err != nil {
			continue
		}
		diff = diff.Abs()

		switch {
		case best == nil:
			best, bestDiff = order, diff
		case diff.Cmp(bestDiff) < 0:
			best, bestDiff = order, diff
		case diff.Cmp(bestDiff) == 0 && order.CreatedAt.Before(best.CreatedAt):
			best = order
		}
	}
	return best
}

// BestEvent is the poll-channel inverse of MatchOrder: given one order and
// the transfers observed at its merchant address, pick the closest event
// within tolerance.
func BestEvent(order *domain.Order, events []*domain.TransferEvent,
	tol decimal.Decimal, networks *domain.NetworkTable) *domain.TransferEvent {

	var best *domain.TransferEvent
	var bestDiff decimal.Decimal

	for _, event := range events {
		if !assetMatches(order, event, networks) {
			continue
		}
		if !AmountWithinTolerance(event.Amount, order.AmountFiat, tol) {
			continue
		}
		diff, err := event.Amount.Sub(order.AmountFiat)
		if err != nil {
			continue
		}
		diff = diff.Abs()

		if best == nil || diff.Cmp(bestDiff) < 0 {
			best, bestDiff = event, diff
		}
	}
	return best
}
