package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message,omitempty"`
}

// PaymentStatusRecord is the audit trail attached 1:1 to an order.
// It is owned by the reconciliation engine; status-check callers only read it.
type PaymentStatusRecord struct {
	OrderID            string
	Status             OrderStatus
	TransactionHash    string
	SenderAddress      string
	AmountReceived     decimal.Decimal
	NetworkID          string
	AssetSymbol        string
	ProviderTransferID string
	StatusHistory      []StatusHistoryEntry
	ErrorCode          string
	ErrorMessage       string
}

// PaymentDetails carries the write-once fields of a terminal completion.
type PaymentDetails struct {
	TransactionHash string
	SenderAddress   string
	AmountReceived  decimal.Decimal
	NetworkID       string
	AssetSymbol     string
}

// StatusUpdate describes one status transition as applied to the store:
// the new status, the history message, and any fields that become known
// with this transition.
type StatusUpdate struct {
	Message            string
	Details            *PaymentDetails
	ProviderTransferID string
	ErrorCode          string
	ErrorMessage       string
}

// PaymentRequest is the rendered deep link the POS terminal shows as a QR
// code. Formatting only; producing one never transitions the order.
type PaymentRequest struct {
	OrderID     string
	NetworkID   string
	AssetSymbol string
	Address     string
	Amount      decimal.Decimal
	URI         string
	QRContent   string
	ExpiresAt   time.Time
}

// ProviderTransfer is the transfer-provider's view of one brokered transfer,
// as returned by the status poll endpoint.
type ProviderTransfer struct {
	TransferID  string
	Status      string
	AmountFiat  decimal.Decimal
	TxHash      string
	NetworkID   string
	AssetSymbol string
	Sender      string
	Reason      string
}

// ProviderTransferEvent is the decoded payload of a provider webhook
// delivery. Reference carries the order id the transfer was opened for.
type ProviderTransferEvent struct {
	Reference   string
	TransferID  string
	Status      string
	AmountFiat  decimal.Decimal
	TxHash      string
	NetworkID   string
	AssetSymbol string
	Sender      string
	Reason      string
}

// MapProviderStatus translates the provider's status vocabulary into the
// order state machine. The second return reports whether the input was a
// known status; unknown strings map to the non-terminal processing state so
// a new provider vocabulary can never terminate an order by accident.
func MapProviderStatus(s string) (OrderStatus, bool) {
	switch s {
	case "pending":
		return OrderStatusProcessing, true
	case "succeeded":
		return OrderStatusCompleted, true
	case "failed":
		return OrderStatusFailed, true
	default:
		return OrderStatusProcessing, false
	}
}
