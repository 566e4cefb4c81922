package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusScanning   OrderStatus = "scanning"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusExpired    OrderStatus = "expired"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// statusEdges is the full transition table. Terminal states have no entry:
// once an order reaches one of them no channel may move it again.
var statusEdges = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusScanning, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusFailed, OrderStatusExpired, OrderStatusCancelled,
	},
	OrderStatusScanning: {
		OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusFailed, OrderStatusExpired, OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled,
	},
}

func (s OrderStatus) Terminal() bool {
	_, ok := statusEdges[s]
	return !ok
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, t := range statusEdges[s] {
		if t == to {
			return true
		}
	}
	return false
}

// OpenOrderStatuses are the statuses in which an order is still waiting for
// an on-chain transfer and is a candidate for matching.
var OpenOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusScanning}

// AssetSelector pins an order to one (network, stablecoin) pair.
// The zero value means "auto": any supported pair is accepted.
type AssetSelector struct {
	Network string
	Symbol  string
}

func (a AssetSelector) Auto() bool {
	return a.Network == "" && a.Symbol == ""
}

func (a AssetSelector) String() string {
	if a.Auto() {
		return "auto"
	}
	return a.Network + ":" + a.Symbol
}

type Order struct {
	OrderID         string
	AmountFiat      decimal.Decimal
	Asset           AssetSelector
	MerchantAddress string
	Description     string
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
}

func (o *Order) Open() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusScanning
}

func (o *Order) ExpiredAt(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
