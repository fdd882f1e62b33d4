package httphandler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/usecase"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
)

type TransactionHandler struct {
	uc     *usecase.TransactionUsecase
	logger *zap.Logger
}

func NewTransactionHandler(uc *usecase.TransactionUsecase, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{uc: uc, logger: logger}
}

type addTransactionRequest struct {
	Type        domain.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	TxHash      *string                `json:"tx_hash,omitempty"`
	FromAddress *string                `json:"from_address,omitempty"`
	ToAddress   *string                `json:"to_address,omitempty"`
	PriceINR    *decimal.Decimal       `json:"price_inr,omitempty"`
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	items, err := h.uc.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *TransactionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	tx, err := h.uc.Add(r.Context(), &domain.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		TxHash:      req.TxHash,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		PriceINR:    req.PriceINR,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, tx)
}
