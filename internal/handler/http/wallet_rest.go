package httphandler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/usecase"
	"solarcredits-service/internal/wallet"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
)

type WalletHandler struct {
	uc     *usecase.WalletUsecase
	logger *zap.Logger
}

func NewWalletHandler(uc *usecase.WalletUsecase, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{uc: uc, logger: logger}
}

type sendRequest struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data,omitempty"`
}

type tokenRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *WalletHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	response.JSON(w, http.StatusOK, h.uc.State(userID))
}

func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	email, _ := middleware.GetEmail(r.Context())

	state, err := h.uc.Connect(r.Context(), userID, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusOK, "Wallet connected", state)
}

func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	h.uc.Disconnect(userID)
	response.Message(w, http.StatusOK, "Wallet disconnected", h.uc.State(userID))
}

func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	state, err := h.uc.Refresh(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, state)
}

func (h *WalletHandler) SwitchNetwork(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	state, err := h.uc.SwitchNetwork(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, state)
}

func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.Send(r.Context(), userID, req.To, req.Value, req.Data)
	writeTxResult(w, h.logger, res, err)
}

func (h *WalletHandler) TransferToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.TransferToken(r.Context(), userID, req.To, req.Amount)
	writeTxResult(w, h.logger, res, err)
}

func (h *WalletHandler) ApproveToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.ApproveToken(r.Context(), userID, req.To, req.Amount)
	writeTxResult(w, h.logger, res, err)
}

// writeTxResult answers 202 with the hash when the transaction went out but its confirmation was cut short.
func writeTxResult(w http.ResponseWriter, logger *zap.Logger, res *wallet.TxResult, err error) {
	switch {
	case err == nil:
		response.JSON(w, http.StatusOK, res)
	case res != nil:
		logger.Warn("transaction submitted without confirmation", zap.String("tx_hash", res.Hash), zap.Error(err))
		response.Message(w, http.StatusAccepted, "Transaction submitted, confirmation pending", res)
	default:
		writeError(w, logger, err)
	}
}
