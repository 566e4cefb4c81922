package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quickpos/stablepay/internal/core/domain"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{"pending to scanning", domain.OrderStatusPending, domain.OrderStatusScanning, true},
		{"pending to processing", domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{"pending to completed", domain.OrderStatusPending, domain.OrderStatusCompleted, true},
		{"pending to expired", domain.OrderStatusPending, domain.OrderStatusExpired, true},
		{"scanning to completed", domain.OrderStatusScanning, domain.OrderStatusCompleted, true},
		{"scanning to expired", domain.OrderStatusScanning, domain.OrderStatusExpired, true},
		{"scanning back to pending", domain.OrderStatusScanning, domain.OrderStatusPending, false},
		{"processing to completed", domain.OrderStatusProcessing, domain.OrderStatusCompleted, true},
		{"processing to failed", domain.OrderStatusProcessing, domain.OrderStatusFailed, true},
		{"processing to expired", domain.OrderStatusProcessing, domain.OrderStatusExpired, false},
		{"completed to failed", domain.OrderStatusCompleted, domain.OrderStatusFailed, false},
		{"completed to completed", domain.OrderStatusCompleted, domain.OrderStatusCompleted, false},
		{"expired to completed", domain.OrderStatusExpired, domain.OrderStatusCompleted, false},
		{"cancelled to completed", domain.OrderStatusCancelled, domain.OrderStatusCompleted, false},
		{"failed to processing", domain.OrderStatusFailed, domain.OrderStatusProcessing, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.allowed, test.from.CanTransition(test.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	terminal := []domain.OrderStatus{
		domain.OrderStatusCompleted, domain.OrderStatusFailed,
		domain.OrderStatusExpired, domain.OrderStatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), string(s))
	}

	active := []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusScanning, domain.OrderStatusProcessing,
	}
	for _, s := range active {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestOrder_Open(t *testing.T) {
	assert.True(t, (&domain.Order{Status: domain.OrderStatusPending}).Open())
	assert.True(t, (&domain.Order{Status: domain.OrderStatusScanning}).Open())
	assert.False(t, (&domain.Order{Status: domain.OrderStatusProcessing}).Open())
	assert.False(t, (&domain.Order{Status: domain.OrderStatusCompleted}).Open())
}

func TestOrder_ExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	order := &domain.Order{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, order.ExpiredAt(now))
	assert.False(t, order.ExpiredAt(order.ExpiresAt))
	assert.True(t, order.ExpiredAt(now.Add(2*time.Minute)))
}

func TestAssetSelector(t *testing.T) {
	auto := domain.AssetSelector{}
	assert.True(t, auto.Auto())
	assert.Equal(t, "auto", auto.String())

	pinned := domain.AssetSelector{Network: "base", Symbol: "USDC"}
	assert.False(t, pinned.Auto())
	assert.Equal(t, "base:USDC", pinned.String())
}
