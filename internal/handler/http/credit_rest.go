package httphandler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/usecase"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
	xerrors "solarcredits-service/shared/utils/errors"
)

type CreditHandler struct {
	uc     *usecase.CreditUsecase
	logger *zap.Logger
}

func NewCreditHandler(uc *usecase.CreditUsecase, logger *zap.Logger) *CreditHandler {
	return &CreditHandler{uc: uc, logger: logger}
}

type mintRequest struct {
	VerificationID string `json:"verification_id"`
}

type retireRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type esgResponse struct {
	CO2Kg           decimal.Decimal `json:"co2_kg"`
	CreditsRequired decimal.Decimal `json:"credits_required"`
}

func (h *CreditHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := uuid.Parse(req.VerificationID)
	if err != nil {
		writeError(w, h.logger, xerrors.ErrInvalidRequest)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.MintFromVerification(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusCreated, "Credits minted", res)
}

func (h *CreditHandler) Retire(w http.ResponseWriter, r *http.Request) {
	var req retireRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.Retire(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusOK, "Credits retired", res)
}

func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	items, err := h.uc.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// Calculate answers ?co2_kg= with the SRC needed to offset it.
func (h *CreditHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	co2, err := decimal.NewFromString(r.URL.Query().Get("co2_kg"))
	if err != nil {
		writeError(w, h.logger, xerrors.ErrInvalidRequest)
		return
	}

	credits, err := usecase.CreditsRequired(co2)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, esgResponse{CO2Kg: co2, CreditsRequired: credits})
}
