package httphandler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"solarcredits-service/internal/usecase"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
	xerrors "solarcredits-service/shared/utils/errors"
)

const maxBillSize = 10 << 20

type VerificationHandler struct {
	uc     *usecase.VerificationUsecase
	logger *zap.Logger
}

func NewVerificationHandler(uc *usecase.VerificationUsecase, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{uc: uc, logger: logger}
}

// Upload takes a multipart "bill" file and returns the verification result.
func (h *VerificationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBillSize+1<<20)
	if err := r.ParseMultipartForm(maxBillSize); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("bill")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "bill file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBillSize+1))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "failed to read bill")
		return
	}
	if len(data) > maxBillSize {
		response.Error(w, http.StatusRequestEntityTooLarge, "bill exceeds 10MB")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	v, err := h.uc.Verify(r.Context(), userID, usecase.BillUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusCreated, "Verification complete", v)
}

func (h *VerificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	items, err := h.uc.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, xerrors.ErrInvalidRequest)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	v, err := h.uc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *VerificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	stats, err := h.uc.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}
