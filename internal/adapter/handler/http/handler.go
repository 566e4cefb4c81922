package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/core/domain"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,
	domain.ErrNoUpdatedData:   http.StatusBadRequest,
	domain.ErrBadRequest:      http.StatusBadRequest,
	domain.ErrBadSignature:    http.StatusUnauthorized,

	domain.ErrMerchantAddressNotSet: http.StatusInternalServerError,
	domain.ErrNoNetworksConfigured:  http.StatusInternalServerError,

	domain.ErrAmountOutOfRange: http.StatusBadRequest,
	domain.ErrUnknownAsset:     http.StatusBadRequest,
	domain.ErrOrderNotPayable:  http.StatusBadRequest,
	domain.ErrOrderTerminal:    http.StatusConflict,
	domain.ErrStatusConflict:   http.StatusConflict,
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrBadRequest.Error()})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
		h.logger.Error("error processing request", zap.Error(err))
	}
	ctx.JSON(statusCode, errorResponse{Error: err.Error()})
}

// handleSuccess sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
