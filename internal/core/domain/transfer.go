package domain

import "github.com/govalues/decimal"

// TransferEvent is one observed candidate transfer. It is produced by the
// chain scanner or decoded from an indexer webhook, consumed once by the
// matcher and then discarded; it is never persisted on its own.
type TransferEvent struct {
	TransactionHash string
	BlockNumber     int64
	FromAddress     string
	ToAddress       string
	Amount          decimal.Decimal
	AssetSymbol     string
	NetworkID       string
}
