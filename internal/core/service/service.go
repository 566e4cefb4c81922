package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/core/domain"
	"github.com/quickpos/stablepay/internal/core/port"
)

const (
	defaultOrderTTL    = 15 * time.Minute
	defaultScanTimeout = 5 * time.Second
)

// Settings is the static configuration the engine needs, resolved once at
// process start.
type Settings struct {
	MerchantAddress string
	OrderTTL        time.Duration
	ScanTimeout     time.Duration
	MaxAmountFiat   decimal.Decimal
}

// Service is the order lifecycle manager and reconciliation engine. All
// status mutation funnels through transition(), which enforces the edge
// table in memory and relies on the repository's conditional write for
// linearization; no locks are held across I/O.
type Service struct {
	repo     port.Repository
	provider port.TransferProvider
	scanner  port.ChainScanner
	payreq   port.PaymentRequestBuilder
	networks *domain.NetworkTable
	metrics  port.Metrics
	logger   *zap.Logger
	settings Settings
}

func NewService(repo port.Repository, provider port.TransferProvider,
	scanner port.ChainScanner, payreq port.PaymentRequestBuilder,
	networks *domain.NetworkTable, metrics port.Metrics,
	logger *zap.Logger, settings Settings) (*Service, error) {

	if settings.OrderTTL <= 0 {
		settings.OrderTTL = defaultOrderTTL
	}
	if settings.ScanTimeout <= 0 {
		settings.ScanTimeout = defaultScanTimeout
	}
	if settings.MaxAmountFiat.IsZero() {
		settings.MaxAmountFiat = decimal.MustParse("10000")
	}

	return &Service{
		repo:     repo,
		provider: provider,
		scanner:  scanner,
		payreq:   payreq,
		networks: networks,
		metrics:  metrics,
		logger:   logger,
		settings: settings,
	}, nil
}

func (s *Service) CreateOrder(ctx context.Context, input port.CreateOrderInput) (*domain.Order, error) {
	amount, err := decimal.NewFromFloat64(input.AmountFiat)
	if err != nil {
		return nil, domain.ErrAmountOutOfRange
	}
	if amount.Sign() <= 0 || amount.Cmp(s.settings.MaxAmountFiat) > 0 {
		return nil, domain.ErrAmountOutOfRange
	}

	asset := domain.AssetSelector{Network: input.Network, Symbol: input.AssetSymbol}
	if !asset.Auto() && !s.networks.Supported(asset.Network, asset.Symbol) {
		return nil, domain.ErrUnknownAsset
	}
	if len(s.networks.All()) == 0 {
		return nil, domain.ErrNoNetworksConfigured
	}
	if s.settings.MerchantAddress == "" {
		return nil, domain.ErrMerchantAddressNotSet
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderID:         uuid.NewString(),
		AmountFiat:      amount,
		Asset:           asset,
		MerchantAddress: s.settings.MerchantAddress,
		Description:     input.Description,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(s.settings.OrderTTL),
	}
	record := &domain.PaymentStatusRecord{
		OrderID: order.OrderID,
		Status:  domain.OrderStatusPending,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.OrderStatusPending, Timestamp: now, Message: "Order created"},
		},
	}

	created, err := s.repo.CreateOrder(ctx, order, record)
	if err != nil {
		s.logger.Error("Create order", zap.Error(err))
		return nil, err
	}
	s.metrics.OrderCreated()

	return created, nil
}

func (s *Service) BuildPaymentRequest(ctx context.Context, orderID string) (*domain.PaymentRequest, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order = s.checkExpiry(ctx, order)
	if !order.Open() {
		return nil, domain.ErrOrderNotPayable
	}

	network, token, err := s.resolvePaymentAsset(order)
	if err != nil {
		return nil, err
	}
	return s.payreq.Build(order, network, token)
}

// resolvePaymentAsset picks the network and token the payment request is
// rendered for. Auto orders get the first configured pair; the matcher will
// still accept payment on any supported pair.
func (s *Service) resolvePaymentAsset(order *domain.Order) (*domain.Network, *domain.Token, error) {
	if order.Asset.Auto() {
		nets := s.networks.All()
		if len(nets) == 0 || len(nets[0].Tokens) == 0 {
			return nil, nil, domain.ErrNoNetworksConfigured
		}
		return &nets[0], &nets[0].Tokens[0], nil
	}
	network, ok := s.networks.Network(order.Asset.Network)
	if !ok {
		return nil, nil, domain.ErrUnknownAsset
	}
	token, ok := network.Token(order.Asset.Symbol)
	if !ok {
		return nil, nil, domain.ErrUnknownAsset
	}
	return network, token, nil
}

// CheckPayment is the poll ingestion channel. It reads the order, applies
// opportunistic expiry, runs whichever signal source fits the current
// status, and reports the last committed state. Transient source failures
// never fail the call.
func (s *Service) CheckPayment(ctx context.Context, orderID string) (*port.PaymentState, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order = s.checkExpiry(ctx, order)

	record, err := s.repo.ReadPaymentStatus(ctx, orderID)
	if err != nil {
		s.logger.Error("Read payment status", zap.String("order", orderID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	switch {
	case order.Open():
		order = s.pollChain(ctx, order)
	case order.Status == domain.OrderStatusProcessing && record.ProviderTransferID != "":
		order = s.pollProvider(ctx, order, record.ProviderTransferID)
	}

	if order.Status != record.Status {
		if record, err = s.repo.ReadPaymentStatus(ctx, orderID); err != nil {
			s.logger.Error("Re-read payment status", zap.String("order", orderID), zap.Error(err))
			return nil, domain.ErrInternal
		}
	}

	return &port.PaymentState{Order: order, Record: record}, nil
}

// pollChain fans out one scan per candidate network and completes the order
// on the first tolerance match. Remaining in-flight scans are not awaited:
// a late redundant match loses the conditional write and is dropped.
func (s *Service) pollChain(ctx context.Context, order *domain.Order) *domain.Order {
	networks := s.candidateNetworks(order)
	if len(networks) == 0 {
		return order
	}

	hits := make(chan *domain.TransferEvent, len(networks))
	for _, network := range networks {
		go func(network *domain.Network) {
			scanCtx, cancel := context.WithTimeout(ctx, s.settings.ScanTimeout)
			defer cancel()

			events, err := s.scanner.RecentTransfers(scanCtx, network, order.MerchantAddress)
			if err != nil {
				s.metrics.SignalSourceError("chainscan")
				s.logger.Warn("Chain scan failed",
					zap.String("order", order.OrderID),
					zap.String("network", network.ID),
					zap.Error(err))
				hits <- nil
				return
			}
			hits <- BestEvent(order, events, LooseTolerance, s.networks)
		}(network)
	}

	var match *domain.TransferEvent
	for range networks {
		if event := <-hits; event != nil {
			match = event
			break
		}
	}

	if match == nil {
		if order.Status == domain.OrderStatusPending {
			updated, err := s.transition(ctx, order, domain.OrderStatusScanning, &domain.StatusUpdate{
				Message: "Scanning for incoming transfer",
			})
			if err == nil {
				return updated
			}
		}
		return order
	}

	updated, err := s.transition(ctx, order, domain.OrderStatusCompleted, &domain.StatusUpdate{
		Message: fmt.Sprintf("Matched transfer %s on %s", match.TransactionHash, match.NetworkID),
		Details: &domain.PaymentDetails{
			TransactionHash: match.TransactionHash,
			SenderAddress:   match.FromAddress,
			AmountReceived:  match.Amount,
			NetworkID:       match.NetworkID,
			AssetSymbol:     match.AssetSymbol,
		},
	})
	if err != nil {
		return s.reload(ctx, order)
	}
	s.metrics.OrderCompleted("poll")
	return updated
}

func (s *Service) candidateNetworks(order *domain.Order) []*domain.Network {
	if order.Asset.Auto() {
		all := s.networks.All()
		out := make([]*domain.Network, 0, len(all))
		for i := range all {
			out = append(out, &all[i])
		}
		return out
	}
	network, ok := s.networks.Network(order.Asset.Network)
	if !ok {
		s.logger.Warn("Order references unknown network",
			zap.String("order", order.OrderID),
			zap.String("network", order.Asset.Network))
		return nil
	}
	return []*domain.Network{network}
}

// pollProvider maps the provider's terminal statuses onto the order; any
// non-terminal or unknown status is a no-op.
func (s *Service) pollProvider(ctx context.Context, order *domain.Order, transferID string) *domain.Order {
	transfer, err := s.provider.GetTransfer(ctx, transferID)
	if err != nil {
		s.metrics.SignalSourceError("provider")
		s.logger.Warn("Provider poll failed",
			zap.String("order", order.OrderID),
			zap.String("transfer", transferID),
			zap.Error(err))
		return order
	}

	target, known := domain.MapProviderStatus(transfer.Status)
	if !known {
		s.logger.Warn("Unrecognized provider status",
			zap.String("order", order.OrderID),
			zap.String("status", transfer.Status))
	}

	switch target {
	case domain.OrderStatusCompleted:
		s.auditProviderAmount(order, transfer.AmountFiat)
		updated, err := s.transition(ctx, order, domain.OrderStatusCompleted, &domain.StatusUpdate{
			Message: "Provider transfer completed",
			Details: &domain.PaymentDetails{
				TransactionHash: transfer.TxHash,
				SenderAddress:   transfer.Sender,
				AmountReceived:  transfer.AmountFiat,
				NetworkID:       transfer.NetworkID,
				AssetSymbol:     transfer.AssetSymbol,
			},
		})
		if err != nil {
			return s.reload(ctx, order)
		}
		s.metrics.OrderCompleted("provider-poll")
		return updated
	case domain.OrderStatusFailed:
		updated, err := s.transition(ctx, order, domain.OrderStatusFailed, &domain.StatusUpdate{
			Message:      "Provider transfer failed",
			ErrorCode:    "provider_failed",
			ErrorMessage: transfer.Reason,
		})
		if err != nil {
			return s.reload(ctx, order)
		}
		return updated
	default:
		return order
	}
}

func (s *Service) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order = s.checkExpiry(ctx, order)
	if order.Status.Terminal() {
		return nil, domain.ErrOrderTerminal
	}

	updated, err := s.transition(ctx, order, domain.OrderStatusCancelled, &domain.StatusUpdate{
		Message: "Cancelled by merchant",
	})
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) || errors.Is(err, domain.ErrIllegalTransition) {
			return nil, domain.ErrOrderTerminal
		}
		return nil, err
	}
	return updated, nil
}

// HandleProviderEvent is the provider webhook ingestion channel. The payload
// is keyed to an order by its reference; deliveries for unknown orders are
// acknowledged and ignored so the provider stops retrying.
func (s *Service) HandleProviderEvent(ctx context.Context, event *domain.ProviderTransferEvent) error {
	order, err := s.repo.ReadOrder(ctx, event.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Info("Provider event for unknown order",
				zap.String("reference", event.Reference),
				zap.String("transfer", event.TransferID))
			return nil
		}
		return err
	}
	order = s.checkExpiry(ctx, order)

	target, known := domain.MapProviderStatus(event.Status)
	if !known {
		s.logger.Warn("Unrecognized provider status",
			zap.String("order", order.OrderID),
			zap.String("status", event.Status))
	}

	switch target {
	case domain.OrderStatusProcessing:
		if order.Status == domain.OrderStatusProcessing {
			return nil
		}
		_, err = s.transition(ctx, order, domain.OrderStatusProcessing, &domain.StatusUpdate{
			Message:            "Provider transfer accepted",
			ProviderTransferID: event.TransferID,
		})
	case domain.OrderStatusCompleted:
		s.auditProviderAmount(order, event.AmountFiat)
		_, err = s.transition(ctx, order, domain.OrderStatusCompleted, &domain.StatusUpdate{
			Message: "Provider transfer succeeded",
			Details: &domain.PaymentDetails{
				TransactionHash: event.TxHash,
				SenderAddress:   event.Sender,
				AmountReceived:  event.AmountFiat,
				NetworkID:       event.NetworkID,
				AssetSymbol:     event.AssetSymbol,
			},
		})
		if err == nil {
			s.metrics.OrderCompleted("provider-webhook")
		}
	case domain.OrderStatusFailed:
		_, err = s.transition(ctx, order, domain.OrderStatusFailed, &domain.StatusUpdate{
			Message:      "Provider transfer failed",
			ErrorCode:    "provider_failed",
			ErrorMessage: event.Reason,
		})
	}

	if errors.Is(err, domain.ErrStatusConflict) || errors.Is(err, domain.ErrIllegalTransition) {
		// Redelivery or a lost race against another channel. Safe no-op.
		return nil
	}
	return err
}

// HandleIndexerEvent is the chain-indexer webhook ingestion channel: raw
// transfer activity, not keyed to an order. The matcher allocates it to the
// best open order, if any.
func (s *Service) HandleIndexerEvent(ctx context.Context, event *domain.TransferEvent) error {
	if !s.networks.Supported(event.NetworkID, event.AssetSymbol) {
		s.logger.Debug("Indexer event for unsupported asset",
			zap.String("network", event.NetworkID),
			zap.String("symbol", event.AssetSymbol))
		return nil
	}

	orders, err := s.repo.ListOpenOrders(ctx, event.ToAddress)
	if err != nil {
		return err
	}

	match := MatchOrder(orders, event, LooseTolerance, s.networks)
	if match == nil {
		s.metrics.TransferUnmatched()
		s.logger.Info("Unmatched transfer discarded",
			zap.String("tx", event.TransactionHash),
			zap.String("to", event.ToAddress),
			zap.String("amount", event.Amount.String()))
		return nil
	}

	match = s.checkExpiry(ctx, match)
	if !match.Open() {
		s.metrics.TransferUnmatched()
		return nil
	}

	_, err = s.transition(ctx, match, domain.OrderStatusCompleted, &domain.StatusUpdate{
		Message: fmt.Sprintf("Matched transfer %s on %s", event.TransactionHash, event.NetworkID),
		Details: &domain.PaymentDetails{
			TransactionHash: event.TransactionHash,
			SenderAddress:   event.FromAddress,
			AmountReceived:  event.Amount,
			NetworkID:       event.NetworkID,
			AssetSymbol:     event.AssetSymbol,
		},
	})
	if errors.Is(err, domain.ErrStatusConflict) || errors.Is(err, domain.ErrIllegalTransition) {
		return nil
	}
	if err == nil {
		s.metrics.OrderCompleted("indexer-webhook")
	}
	return err
}

// checkExpiry applies the opportunistic expiry rule: executed on every read
// path instead of a background sweep. Losing the conditional write here just
// means another channel moved the order first.
func (s *Service) checkExpiry(ctx context.Context, order *domain.Order) *domain.Order {
	if !order.Open() || !order.ExpiredAt(time.Now().UTC()) {
		return order
	}

	updated, err := s.transition(ctx, order, domain.OrderStatusExpired, &domain.StatusUpdate{
		Message: "Order expired",
	})
	if err != nil {
		return s.reload(ctx, order)
	}
	return updated
}

// transition applies one edge of the state machine. The in-memory edge check
// catches logic errors early; the repository's conditional write on the
// expected source status is what makes concurrent channels safe. Exactly one
// caller wins a race; losers get ErrStatusConflict and must treat it as a
// no-op.
func (s *Service) transition(ctx context.Context, order *domain.Order,
	to domain.OrderStatus, update *domain.StatusUpdate) (*domain.Order, error) {

	if !order.Status.CanTransition(to) {
		s.metrics.IllegalTransition(string(order.Status), string(to))
		s.logger.Warn("Illegal transition suppressed",
			zap.String("order", order.OrderID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(to)))
		return order, domain.ErrIllegalTransition
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, order.OrderID,
		[]domain.OrderStatus{order.Status}, to, update)
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			s.logger.Info("Transition lost race",
				zap.String("order", order.OrderID),
				zap.String("from", string(order.Status)),
				zap.String("to", string(to)),
				zap.String("message", update.Message))
			return order, domain.ErrStatusConflict
		}
		s.logger.Error("Update order status",
			zap.String("order", order.OrderID),
			zap.Error(err))
		return order, err
	}
	return updated, nil
}

func (s *Service) reload(ctx context.Context, order *domain.Order) *domain.Order {
	fresh, err := s.repo.ReadOrder(ctx, order.OrderID)
	if err != nil {
		s.logger.Error("Reload order", zap.String("order", order.OrderID), zap.Error(err))
		return order
	}
	return fresh
}

// auditProviderAmount logs provider-asserted amounts that drift outside the
// strict band. The provider remains authoritative for its own transfers;
// this is audit signal, not a gate.
func (s *Service) auditProviderAmount(order *domain.Order, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	if !AmountWithinTolerance(amount, order.AmountFiat, StrictTolerance) {
		s.logger.Warn("Provider amount outside strict tolerance",
			zap.String("order", order.OrderID),
			zap.String("expected", order.AmountFiat.String()),
			zap.String("received", amount.String()))
	}
}
