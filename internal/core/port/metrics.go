package port

// Metrics is the observability sink for the reconciliation engine.
type Metrics interface {
	OrderCreated()
	OrderCompleted(channel string)
	IllegalTransition(from, to string)
	SignatureFailure(channel string)
	SignalSourceError(source string)
	TransferUnmatched()
}
