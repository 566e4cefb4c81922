package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/adapter/metrics"
	"github.com/quickpos/stablepay/internal/core/domain"
	"github.com/quickpos/stablepay/internal/core/port"
	"github.com/quickpos/stablepay/internal/core/port/mock"
	"github.com/quickpos/stablepay/internal/core/service"
)

const merchantAddr = "0x52908400098527886e0f7030069857d2e4169ee7"

type serviceMocks struct {
	repo     *mock.MockRepository
	provider *mock.MockTransferProvider
	scanner  *mock.MockChainScanner
	payreq   *mock.MockPaymentRequestBuilder
}

type prepareMocks func(m serviceMocks)

func newTestService(t *testing.T, ctrl *gomock.Controller,
	settings service.Settings, prep prepareMocks) (*service.Service, serviceMocks) {

	t.Helper()

	m := serviceMocks{
		repo:     mock.NewMockRepository(ctrl),
		provider: mock.NewMockTransferProvider(ctrl),
		scanner:  mock.NewMockChainScanner(ctrl),
		payreq:   mock.NewMockPaymentRequestBuilder(ctrl),
	}
	if prep != nil {
		prep(m)
	}

	logger, _ := zap.NewProduction()
	s, err := service.NewService(m.repo, m.provider, m.scanner, m.payreq,
		testNetworks(), metrics.New(prometheus.NewRegistry()), logger, settings)
	assert.NoError(t, err)

	return s, m
}

func defaultSettings() service.Settings {
	return service.Settings{
		MerchantAddress: merchantAddr,
		OrderTTL:        15 * time.Minute,
		ScanTimeout:     time.Second,
	}
}

func pendingOrder(id, amount string, asset domain.AssetSelector) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		OrderID:         id,
		AmountFiat:      decimal.MustParse(amount),
		Asset:           asset,
		MerchantAddress: merchantAddr,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(15 * time.Minute),
	}
}

func withStatus(order *domain.Order, status domain.OrderStatus) *domain.Order {
	copied := *order
	copied.Status = status
	return &copied
}

func TestService_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name     string
		input    port.CreateOrderInput
		settings service.Settings
		mock     prepareMocks
		expError error
	}{
		{
			name:     "Create good auto",
			input:    port.CreateOrderInput{AmountFiat: 25.50, Description: "2x coffee"},
			settings: defaultSettings(),
			mock: func(m serviceMocks) {
				m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, order *domain.Order, record *domain.PaymentStatusRecord) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusPending, order.Status)
						assert.Equal(t, "25.5", order.AmountFiat.String())
						assert.Equal(t, merchantAddr, order.MerchantAddress)
						assert.True(t, order.Asset.Auto())
						assert.Equal(t, order.OrderID, record.OrderID)
						assert.Len(t, record.StatusHistory, 1)
						assert.Equal(t, domain.OrderStatusPending, record.StatusHistory[0].Status)
						return order, nil
					})
			},
		},
		{
			name:     "Create good pinned asset",
			input:    port.CreateOrderInput{AmountFiat: 10, Network: "base", AssetSymbol: "USDC"},
			settings: defaultSettings(),
			mock: func(m serviceMocks) {
				m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, order *domain.Order, _ *domain.PaymentStatusRecord) (*domain.Order, error) {
						return order, nil
					})
			},
		},
		{
			name:     "Zero amount",
			input:    port.CreateOrderInput{AmountFiat: 0},
			settings: defaultSettings(),
			expError: domain.ErrAmountOutOfRange,
		},
		{
			name:     "Negative amount",
			input:    port.CreateOrderInput{AmountFiat: -3},
			settings: defaultSettings(),
			expError: domain.ErrAmountOutOfRange,
		},
		{
			name:     "Amount over cap",
			input:    port.CreateOrderInput{AmountFiat: 10000.01},
			settings: defaultSettings(),
			expError: domain.ErrAmountOutOfRange,
		},
		{
			name:     "Unknown asset",
			input:    port.CreateOrderInput{AmountFiat: 5, Network: "base", AssetSymbol: "DAI"},
			settings: defaultSettings(),
			expError: domain.ErrUnknownAsset,
		},
		{
			name:     "Merchant address not configured",
			input:    port.CreateOrderInput{AmountFiat: 5},
			settings: service.Settings{OrderTTL: 15 * time.Minute},
			expError: domain.ErrMerchantAddressNotSet,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, _ := newTestService(t, mockCtrl, test.settings, test.mock)

			order, err := s.CreateOrder(context.Background(), test.input)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, order)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, order.OrderID)
			assert.Equal(t, domain.OrderStatusPending, order.Status)
			assert.True(t, order.ExpiresAt.After(order.CreatedAt))
		})
	}
}

func TestService_CheckPayment_ScanMatchCompletes(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := pendingOrder("o1", "5.00", domain.AssetSelector{Network: "base", Symbol: "USDC"})
	completed := withStatus(order, domain.OrderStatusCompleted)

	s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
		m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: domain.OrderStatusPending}, nil)
		m.scanner.EXPECT().RecentTransfers(gomock.Any(), gomock.Any(), merchantAddr).
			Return([]*domain.TransferEvent{
				{
					TransactionHash: "0xdead",
					FromAddress:     "0xpayer",
					ToAddress:       merchantAddr,
					Amount:          decimal.MustParse("5.00"),
					NetworkID:       "base",
					AssetSymbol:     "USDC",
				},
			}, nil)
		m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
			[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCompleted, gomock.Any()).
			Return(completed, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{
				OrderID:         "o1",
				Status:          domain.OrderStatusCompleted,
				TransactionHash: "0xdead",
				SenderAddress:   "0xpayer",
				AmountReceived:  decimal.MustParse("5.00"),
				NetworkID:       "base",
				AssetSymbol:     "USDC",
			}, nil)
	})

	state, err := s.CheckPayment(context.Background(), "o1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, state.Order.Status)
	assert.Equal(t, "0xdead", state.Record.TransactionHash)
}

func TestService_CheckPayment_NoMatchMovesToScanning(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := pendingOrder("o1", "5.00", domain.AssetSelector{Network: "base", Symbol: "USDC"})
	scanning := withStatus(order, domain.OrderStatusScanning)

	s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
		m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: domain.OrderStatusPending}, nil)
		m.scanner.EXPECT().RecentTransfers(gomock.Any(), gomock.Any(), merchantAddr).
			Return([]*domain.TransferEvent{}, nil)
		m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
			[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusScanning, gomock.Any()).
			Return(scanning, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: domain.OrderStatusScanning}, nil)
	})

	state, err := s.CheckPayment(context.Background(), "o1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusScanning, state.Order.Status)
}

func TestService_CheckPayment_ExpiresBeforeScan(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := pendingOrder("o1", "5.00", domain.AssetSelector{Network: "base", Symbol: "USDC"})
	order.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	expired := withStatus(order, domain.OrderStatusExpired)

	s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
		m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
			[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusExpired, gomock.Any()).
			Return(expired, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: domain.OrderStatusExpired}, nil)
	})

	state, err := s.CheckPayment(context.Background(), "o1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusExpired, state.Order.Status)
}

func TestService_CheckPayment_TerminalOrderIsInert(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusCompleted)

	s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
		m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: domain.OrderStatusCompleted}, nil)
	})

	state, err := s.CheckPayment(context.Background(), "o1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, state.Order.Status)
}

func TestService_CheckPayment_ProviderPoll(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name      string
		transfer  *domain.ProviderTransfer
		target    domain.OrderStatus
		expStatus domain.OrderStatus
	}{
		{
			name: "Succeeded completes",
			transfer: &domain.ProviderTransfer{
				TransferID:  "tr-1",
				Status:      "succeeded",
				AmountFiat:  decimal.MustParse("5.00"),
				TxHash:      "0xbeef",
				NetworkID:   "base",
				AssetSymbol: "USDC",
				Sender:      "0xpayer",
			},
			target:    domain.OrderStatusCompleted,
			expStatus: domain.OrderStatusCompleted,
		},
		{
			name: "Failed fails",
			transfer: &domain.ProviderTransfer{
				TransferID: "tr-1",
				Status:     "failed",
				Reason:     "insufficient allowance",
			},
			target:    domain.OrderStatusFailed,
			expStatus: domain.OrderStatusFailed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusProcessing)
			final := withStatus(order, test.expStatus)

			s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
				m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
					Return(&domain.PaymentStatusRecord{
						OrderID:            "o1",
						Status:             domain.OrderStatusProcessing,
						ProviderTransferID: "tr-1",
					}, nil)
				m.provider.EXPECT().GetTransfer(gomock.Any(), "tr-1").Return(test.transfer, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusProcessing}, test.target, gomock.Any()).
					Return(final, nil)
				m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
					Return(&domain.PaymentStatusRecord{OrderID: "o1", Status: test.expStatus}, nil)
			})

			state, err := s.CheckPayment(context.Background(), "o1")

			assert.NoError(t, err)
			assert.Equal(t, test.expStatus, state.Order.Status)
		})
	}
}

func TestService_CheckPayment_ProviderOutageKeepsOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusProcessing)

	s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
		m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		m.repo.EXPECT().ReadPaymentStatus(gomock.Any(), "o1").
			Return(&domain.PaymentStatusRecord{
				OrderID:            "o1",
				Status:             domain.OrderStatusProcessing,
				ProviderTransferID: "tr-1",
			}, nil)
		m.provider.EXPECT().GetTransfer(gomock.Any(), "tr-1").
			Return(nil, domain.ErrInternal)
	})

	state, err := s.CheckPayment(context.Background(), "o1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, state.Order.Status)
}

func TestService_CancelOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name     string
		order    *domain.Order
		mock     prepareMocks
		expError error
	}{
		{
			name:  "Cancel pending",
			order: pendingOrder("o1", "5.00", domain.AssetSelector{}),
			mock: func(m serviceMocks) {
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCancelled, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ []domain.OrderStatus,
						_ domain.OrderStatus, _ *domain.StatusUpdate) (*domain.Order, error) {
						return withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusCancelled), nil
					})
			},
		},
		{
			name:     "Cancel completed rejected",
			order:    withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusCompleted),
			expError: domain.ErrOrderTerminal,
		},
		{
			name:  "Cancel loses race",
			order: pendingOrder("o1", "5.00", domain.AssetSelector{}),
			mock: func(m serviceMocks) {
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCancelled, gomock.Any()).
					Return(nil, domain.ErrStatusConflict)
			},
			expError: domain.ErrOrderTerminal,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, m := newTestService(t, mockCtrl, defaultSettings(), test.mock)
			m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(test.order, nil)

			order, err := s.CancelOrder(context.Background(), "o1")

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, order)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, order.Status)
		})
	}
}

func TestService_BuildPaymentRequest(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Pinned order renders on its network", func(t *testing.T) {
		order := pendingOrder("o1", "5.00", domain.AssetSelector{Network: "polygon", Symbol: "USDT"})

		s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
			m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
			m.payreq.EXPECT().Build(order, gomock.Any(), gomock.Any()).
				DoAndReturn(func(order *domain.Order, network *domain.Network, token *domain.Token) (*domain.PaymentRequest, error) {
					assert.Equal(t, "polygon", network.ID)
					assert.Equal(t, "USDT", token.Symbol)
					return &domain.PaymentRequest{
						OrderID:     order.OrderID,
						NetworkID:   network.ID,
						AssetSymbol: token.Symbol,
						Address:     order.MerchantAddress,
						Amount:      order.AmountFiat,
					}, nil
				})
		})

		request, err := s.BuildPaymentRequest(context.Background(), "o1")

		assert.NoError(t, err)
		assert.Equal(t, "polygon", request.NetworkID)
	})

	t.Run("Auto order renders on first configured pair", func(t *testing.T) {
		order := pendingOrder("o1", "5.00", domain.AssetSelector{})

		s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
			m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
			m.payreq.EXPECT().Build(order, gomock.Any(), gomock.Any()).
				DoAndReturn(func(order *domain.Order, network *domain.Network, token *domain.Token) (*domain.PaymentRequest, error) {
					assert.Equal(t, "base", network.ID)
					assert.Equal(t, "USDC", token.Symbol)
					return &domain.PaymentRequest{OrderID: order.OrderID}, nil
				})
		})

		_, err := s.BuildPaymentRequest(context.Background(), "o1")
		assert.NoError(t, err)
	})

	t.Run("Terminal order not payable", func(t *testing.T) {
		order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusCompleted)

		s, _ := newTestService(t, mockCtrl, defaultSettings(), func(m serviceMocks) {
			m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
		})

		_, err := s.BuildPaymentRequest(context.Background(), "o1")
		assert.ErrorIs(t, err, domain.ErrOrderNotPayable)
	})
}

func TestService_HandleProviderEvent(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name     string
		event    *domain.ProviderTransferEvent
		mock     prepareMocks
		expError error
	}{
		{
			name:  "Unknown order acknowledged",
			event: &domain.ProviderTransferEvent{Reference: "missing", TransferID: "tr-1", Status: "pending"},
			mock: func(m serviceMocks) {
				m.repo.EXPECT().ReadOrder(gomock.Any(), "missing").Return(nil, domain.ErrDataNotFound)
			},
		},
		{
			name:  "Accepted moves pending to processing",
			event: &domain.ProviderTransferEvent{Reference: "o1", TransferID: "tr-1", Status: "pending"},
			mock: func(m serviceMocks) {
				order := pendingOrder("o1", "5.00", domain.AssetSelector{})
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusProcessing,
					gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ []domain.OrderStatus,
						_ domain.OrderStatus, update *domain.StatusUpdate) (*domain.Order, error) {
						assert.Equal(t, "tr-1", update.ProviderTransferID)
						return withStatus(order, domain.OrderStatusProcessing), nil
					})
			},
		},
		{
			name:  "Accepted redelivery on processing is a no-op",
			event: &domain.ProviderTransferEvent{Reference: "o1", TransferID: "tr-1", Status: "pending"},
			mock: func(m serviceMocks) {
				order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusProcessing)
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
			},
		},
		{
			name: "Succeeded completes processing order",
			event: &domain.ProviderTransferEvent{
				Reference: "o1", TransferID: "tr-1", Status: "succeeded",
				AmountFiat: decimal.MustParse("5.00"), TxHash: "0xbeef",
				NetworkID: "base", AssetSymbol: "USDC",
			},
			mock: func(m serviceMocks) {
				order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusProcessing)
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusProcessing}, domain.OrderStatusCompleted,
					gomock.Any()).
					Return(withStatus(order, domain.OrderStatusCompleted), nil)
			},
		},
		{
			name: "Succeeded redelivery on completed order is a no-op",
			event: &domain.ProviderTransferEvent{
				Reference: "o1", TransferID: "tr-1", Status: "succeeded",
			},
			mock: func(m serviceMocks) {
				order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusCompleted)
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
			},
		},
		{
			name: "Succeeded loses race to another channel",
			event: &domain.ProviderTransferEvent{
				Reference: "o1", TransferID: "tr-1", Status: "succeeded",
			},
			mock: func(m serviceMocks) {
				order := pendingOrder("o1", "5.00", domain.AssetSelector{})
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCompleted,
					gomock.Any()).
					Return(nil, domain.ErrStatusConflict)
			},
		},
		{
			name: "Failed fails processing order",
			event: &domain.ProviderTransferEvent{
				Reference: "o1", TransferID: "tr-1", Status: "failed", Reason: "rejected",
			},
			mock: func(m serviceMocks) {
				order := withStatus(pendingOrder("o1", "5.00", domain.AssetSelector{}), domain.OrderStatusProcessing)
				m.repo.EXPECT().ReadOrder(gomock.Any(), "o1").Return(order, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusProcessing}, domain.OrderStatusFailed,
					gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ []domain.OrderStatus,
						_ domain.OrderStatus, update *domain.StatusUpdate) (*domain.Order, error) {
						assert.Equal(t, "provider_failed", update.ErrorCode)
						assert.Equal(t, "rejected", update.ErrorMessage)
						return withStatus(order, domain.OrderStatusFailed), nil
					})
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, _ := newTestService(t, mockCtrl, defaultSettings(), test.mock)

			err := s.HandleProviderEvent(context.Background(), test.event)
			assert.Equal(t, test.expError, err)
		})
	}
}

func TestService_HandleIndexerEvent(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	event := func(amount string) *domain.TransferEvent {
		return &domain.TransferEvent{
			TransactionHash: "0xdead",
			FromAddress:     "0xpayer",
			ToAddress:       merchantAddr,
			Amount:          decimal.MustParse(amount),
			NetworkID:       "base",
			AssetSymbol:     "USDC",
		}
	}

	tests := []struct {
		name     string
		event    *domain.TransferEvent
		mock     prepareMocks
		expError error
	}{
		{
			name: "Unsupported asset discarded",
			event: &domain.TransferEvent{
				ToAddress: merchantAddr, NetworkID: "base", AssetSymbol: "DAI",
				Amount: decimal.MustParse("5.00"),
			},
		},
		{
			name:  "Match completes order",
			event: event("5.00"),
			mock: func(m serviceMocks) {
				order := pendingOrder("o1", "5.00", domain.AssetSelector{})
				m.repo.EXPECT().ListOpenOrders(gomock.Any(), merchantAddr).
					Return([]*domain.Order{order}, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCompleted,
					gomock.Any()).
					Return(withStatus(order, domain.OrderStatusCompleted), nil)
			},
		},
		{
			name:  "No order within tolerance discarded",
			event: event("5.00"),
			mock: func(m serviceMocks) {
				m.repo.EXPECT().ListOpenOrders(gomock.Any(), merchantAddr).
					Return([]*domain.Order{pendingOrder("o1", "100.00", domain.AssetSelector{})}, nil)
			},
		},
		{
			name:  "Matched order expired before commit",
			event: event("5.00"),
			mock: func(m serviceMocks) {
				order := pendingOrder("o1", "5.00", domain.AssetSelector{})
				order.ExpiresAt = time.Now().UTC().Add(-time.Minute)
				m.repo.EXPECT().ListOpenOrders(gomock.Any(), merchantAddr).
					Return([]*domain.Order{order}, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusExpired,
					gomock.Any()).
					Return(withStatus(order, domain.OrderStatusExpired), nil)
			},
		},
		{
			name:  "Lost race is a no-op",
			event: event("5.00"),
			mock: func(m serviceMocks) {
				order := pendingOrder("o1", "5.00", domain.AssetSelector{})
				m.repo.EXPECT().ListOpenOrders(gomock.Any(), merchantAddr).
					Return([]*domain.Order{order}, nil)
				m.repo.EXPECT().UpdateOrderStatus(gomock.Any(), "o1",
					[]domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusCompleted,
					gomock.Any()).
					Return(nil, domain.ErrStatusConflict)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, _ := newTestService(t, mockCtrl, defaultSettings(), test.mock)

			err := s.HandleIndexerEvent(context.Background(), test.event)
			assert.Equal(t, test.expError, err)
		})
	}
}
