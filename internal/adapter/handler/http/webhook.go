package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/adapter/config"
	"github.com/quickpos/stablepay/internal/core/domain"
	"github.com/quickpos/stablepay/internal/core/port"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookHandler receives push notifications from the transfer provider and
// the chain indexer. Both channels sign the raw payload with HMAC-SHA256;
// a bad signature is a hard 401, while an unparseable body from a correctly
// signed sender is acknowledged and dropped so the sender stops retrying.
type WebhookHandler struct {
	Handler
	service        port.Service
	metrics        port.Metrics
	providerSecret []byte
	indexerSecret  []byte
}

func NewWebhookHandler(service port.Service, metrics port.Metrics,
	conf *config.Webhook, logger *zap.Logger) (*WebhookHandler, error) {

	return &WebhookHandler{
		Handler:        *NewHandler(logger),
		service:        service,
		metrics:        metrics,
		providerSecret: []byte(conf.ProviderSecret),
		indexerSecret:  []byte(conf.IndexerSecret),
	}, nil
}

func verifySignature(secret, body []byte, header string) bool {
	sig, err := hex.DecodeString(strings.TrimPrefix(header, "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), sig)
}

type providerEventPayload struct {
	Event      string  `json:"event"`
	TransferID string  `json:"transferId"`
	Reference  string  `json:"reference"`
	Status     string  `json:"status"`
	AmountFiat float64 `json:"amountFiat"`
	TxHash     string  `json:"txHash"`
	Network    string  `json:"network"`
	Asset      string  `json:"asset"`
	Sender     string  `json:"sender"`
	Reason     string  `json:"reason"`
}

func (wh *WebhookHandler) Provider(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		wh.handleError(ctx, domain.ErrBadRequest)
		return
	}

	if !verifySignature(wh.providerSecret, body, ctx.GetHeader(signatureHeader)) {
		wh.metrics.SignatureFailure("provider")
		wh.logger.Warn("Provider webhook signature mismatch")
		wh.handleError(ctx, domain.ErrBadSignature)
		return
	}

	payload := providerEventPayload{}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Reference == "" {
		// Signed but malformed; acknowledging suppresses infinite redelivery.
		wh.logger.Warn("Unparseable provider webhook payload", zap.Error(err))
		wh.handleSuccess(ctx, gin.H{"status": "ignored"})
		return
	}

	amount, err := decimal.NewFromFloat64(payload.AmountFiat)
	if err != nil {
		amount = decimal.Zero
	}

	err = wh.service.HandleProviderEvent(ctx, &domain.ProviderTransferEvent{
		Reference:   payload.Reference,
		TransferID:  payload.TransferID,
		Status:      payload.Status,
		AmountFiat:  amount,
		TxHash:      payload.TxHash,
		NetworkID:   payload.Network,
		AssetSymbol: payload.Asset,
		Sender:      payload.Sender,
		Reason:      payload.Reason,
	})
	if err != nil {
		wh.handleError(ctx, domain.ErrInternal)
		return
	}

	wh.handleSuccess(ctx, gin.H{"status": "ok"})
}

type indexerActivity struct {
	Category    string  `json:"category"`
	Hash        string  `json:"hash"`
	FromAddress string  `json:"fromAddress"`
	ToAddress   string  `json:"toAddress"`
	Asset       string  `json:"asset"`
	Value       float64 `json:"value"`
	BlockNum    string  `json:"blockNum"`
}

type indexerEventPayload struct {
	Network  string            `json:"network"`
	Activity []indexerActivity `json:"activity"`
}

func (wh *WebhookHandler) Indexer(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		wh.handleError(ctx, domain.ErrBadRequest)
		return
	}

	if !verifySignature(wh.indexerSecret, body, ctx.GetHeader(signatureHeader)) {
		wh.metrics.SignatureFailure("indexer")
		wh.logger.Warn("Indexer webhook signature mismatch")
		wh.handleError(ctx, domain.ErrBadSignature)
		return
	}

	payload := indexerEventPayload{}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Network == "" {
		wh.logger.Warn("Unparseable indexer webhook payload", zap.Error(err))
		wh.handleSuccess(ctx, gin.H{"status": "ignored"})
		return
	}

	for _, activity := range payload.Activity {
		if activity.Category != "token" {
			continue
		}
		amount, err := decimal.NewFromFloat64(activity.Value)
		if err != nil {
			continue
		}
		blockNumber, _ := strconv.ParseInt(strings.TrimPrefix(activity.BlockNum, "0x"), 16, 64)

		err = wh.service.HandleIndexerEvent(ctx, &domain.TransferEvent{
			TransactionHash: activity.Hash,
			BlockNumber:     blockNumber,
			FromAddress:     activity.FromAddress,
			ToAddress:       activity.ToAddress,
			Amount:          amount,
			AssetSymbol:     activity.Asset,
			NetworkID:       payload.Network,
		})
		if err != nil {
			// One bad activity entry must not fail the rest of the batch.
			wh.logger.Error("Indexer event processing failed",
				zap.String("tx", activity.Hash), zap.Error(err))
		}
	}

	wh.handleSuccess(ctx, gin.H{"status": "ok"})
}
