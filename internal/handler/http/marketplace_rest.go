package httphandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/usecase"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
	xerrors "solarcredits-service/shared/utils/errors"
)

type MarketplaceHandler struct {
	uc     *usecase.MarketplaceUsecase
	logger *zap.Logger
}

func NewMarketplaceHandler(uc *usecase.MarketplaceUsecase, logger *zap.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{uc: uc, logger: logger}
}

type buyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ListListings supports ?search= on producer/location and ?sort=price|rating|credits.
func (h *MarketplaceHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Search: q.Get("search"),
		Sort:   domain.ListingSort(q.Get("sort")),
	}

	items, err := h.uc.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *MarketplaceHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, xerrors.ErrInvalidRequest)
		return
	}

	l, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, l)
}

func (h *MarketplaceHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, xerrors.ErrInvalidRequest)
		return
	}

	var req buyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	res, err := h.uc.Buy(r.Context(), userID, id, req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusOK, "Purchase successful", res)
}
