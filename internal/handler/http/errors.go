package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"solarcredits-service/internal/wallet"
	"solarcredits-service/shared/response"
	xerrors "solarcredits-service/shared/utils/errors"
)

var walletStatus = map[wallet.Kind]int{
	wallet.KindProviderMissing:          http.StatusServiceUnavailable,
	wallet.KindNotConnected:             http.StatusConflict,
	wallet.KindWrongNetwork:             http.StatusConflict,
	wallet.KindContractNotReady:         http.StatusConflict,
	wallet.KindInvalidAddress:           http.StatusBadRequest,
	wallet.KindInvalidValue:             http.StatusBadRequest,
	wallet.KindUserRejected:             http.StatusBadRequest,
	wallet.KindInsufficientTokenBalance: http.StatusUnprocessableEntity,
	wallet.KindInsufficientFunds:        http.StatusUnprocessableEntity,
	wallet.KindGasTooLow:                http.StatusUnprocessableEntity,
	wallet.KindReverted:                 http.StatusUnprocessableEntity,
	wallet.KindRPCUnreachable:           http.StatusBadGateway,
	wallet.KindUnknown:                  http.StatusInternalServerError,
}

type walletErrorData struct {
	Kind   string `json:"kind"`
	TxHash string `json:"tx_hash,omitempty"`
}

// writeError maps usecase errors onto the response envelope.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var we *wallet.Error
	if errors.As(err, &we) {
		status, ok := walletStatus[we.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		response.ErrorWithData(w, status, we.Message, walletErrorData{Kind: we.Kind.String(), TxHash: we.TxHash})
		return
	}

	var repoErr *xerrors.RepoError
	if errors.As(err, &repoErr) {
		response.Error(w, http.StatusConflict, repoErr.Msg)
		return
	}

	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrUserIDRequired), errors.Is(err, xerrors.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, xerrors.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrInvalidAmount),
		errors.Is(err, xerrors.ErrEmptyDocument),
		errors.Is(err, xerrors.ErrInvalidSellerAddress),
		errors.Is(err, xerrors.ErrSelfPurchase):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrListingUnavailable):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, "request timed out")
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, xerrors.ErrInternalServer.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return xerrors.ErrInvalidRequest
	}
	return nil
}
