package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest   = errors.New("error parsing request")
	ErrBadSignature = errors.New("webhook signature mismatch")

	// * Configuration errors.
	ErrMerchantAddressNotSet = errors.New("merchant address is not configured")
	ErrNoNetworksConfigured  = errors.New("no payment networks configured")

	// * Business errors.
	ErrAmountOutOfRange  = errors.New("order amount out of range")
	ErrUnknownAsset      = errors.New("unknown network or asset")
	ErrOrderNotPayable   = errors.New("order is not awaiting payment")
	ErrOrderTerminal     = errors.New("order is in a terminal state")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrSignalSource      = errors.New("signal source unavailable")
)
