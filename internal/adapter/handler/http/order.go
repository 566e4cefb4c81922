package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/core/domain"
	"github.com/quickpos/stablepay/internal/core/port"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type createOrderRequest struct {
	AmountFiat  float64 `json:"amountFiat" binding:"required"`
	Network     string  `json:"network"`
	AssetSymbol string  `json:"assetSymbol"`
	Description string  `json:"description"`
}

type orderResponse struct {
	OrderID         string    `json:"orderId"`
	AmountFiat      string    `json:"amountFiat"`
	Asset           string    `json:"asset"`
	MerchantAddress string    `json:"merchantAddress"`
	Description     string    `json:"description,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func newOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{
		OrderID:         order.OrderID,
		AmountFiat:      order.AmountFiat.String(),
		Asset:           order.Asset.String(),
		MerchantAddress: order.MerchantAddress,
		Description:     order.Description,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		ExpiresAt:       order.ExpiresAt,
	}
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	req := createOrderRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.CreateOrder(ctx, port.CreateOrderInput{
		AmountFiat:  req.AmountFiat,
		Network:     req.Network,
		AssetSymbol: req.AssetSymbol,
		Description: req.Description,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResponse(order), http.StatusCreated)
}

type paymentRequestResponse struct {
	OrderID     string    `json:"orderId"`
	NetworkID   string    `json:"networkId"`
	AssetSymbol string    `json:"assetSymbol"`
	Address     string    `json:"address"`
	Amount      string    `json:"amount"`
	URI         string    `json:"uri"`
	QRContent   string    `json:"qrContent"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (oh *OrderHandler) PaymentRequest(ctx *gin.Context) {
	request, err := oh.service.BuildPaymentRequest(ctx, ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, paymentRequestResponse{
		OrderID:     request.OrderID,
		NetworkID:   request.NetworkID,
		AssetSymbol: request.AssetSymbol,
		Address:     request.Address,
		Amount:      request.Amount.String(),
		URI:         request.URI,
		QRContent:   request.QRContent,
		ExpiresAt:   request.ExpiresAt,
	})
}

type paymentDetailsResponse struct {
	TransactionHash    string `json:"transactionHash,omitempty"`
	SenderAddress      string `json:"senderAddress,omitempty"`
	AmountReceived     string `json:"amountReceived,omitempty"`
	NetworkID          string `json:"networkId,omitempty"`
	AssetSymbol        string `json:"assetSymbol,omitempty"`
	ProviderTransferID string `json:"providerTransferId,omitempty"`
	ErrorCode          string `json:"errorCode,omitempty"`
	ErrorMessage       string `json:"errorMessage,omitempty"`
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

type statusResponse struct {
	Status         string                  `json:"status"`
	Order          orderResponse           `json:"order"`
	PaymentDetails *paymentDetailsResponse `json:"paymentDetails,omitempty"`
	History        []historyEntryResponse  `json:"history"`
}

func (oh *OrderHandler) Status(ctx *gin.Context) {
	state, err := oh.service.CheckPayment(ctx, ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	resp := statusResponse{
		Status: string(state.Order.Status),
		Order:  newOrderResponse(state.Order),
	}

	record := state.Record
	if record.TransactionHash != "" || record.ProviderTransferID != "" || record.ErrorCode != "" {
		details := paymentDetailsResponse{
			TransactionHash:    record.TransactionHash,
			SenderAddress:      record.SenderAddress,
			NetworkID:          record.NetworkID,
			AssetSymbol:        record.AssetSymbol,
			ProviderTransferID: record.ProviderTransferID,
			ErrorCode:          record.ErrorCode,
			ErrorMessage:       record.ErrorMessage,
		}
		if !record.AmountReceived.IsZero() {
			details.AmountReceived = record.AmountReceived.String()
		}
		resp.PaymentDetails = &details
	}

	resp.History = make([]historyEntryResponse, 0, len(record.StatusHistory))
	for _, entry := range record.StatusHistory {
		resp.History = append(resp.History, historyEntryResponse{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
			Message:   entry.Message,
		})
	}

	oh.handleSuccess(ctx, resp)
}

func (oh *OrderHandler) Cancel(ctx *gin.Context) {
	order, err := oh.service.CancelOrder(ctx, ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}
