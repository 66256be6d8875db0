package handlers

import (
	"net/http"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/logx"
)

// OfferHandler serves the courier offer feed.
type OfferHandler struct {
	uc     offersUsecase
	logger logx.Logger
}

// NewOfferHandler creates an OfferHandler.
func NewOfferHandler(logger logx.Logger, uc offersUsecase) *OfferHandler {
	return &OfferHandler{uc: uc, logger: logger}
}

// List handles GET /offers for the calling courier.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identityAs(h.logger, w, r, auth.RoleCourier)
	if !ok {
		return
	}

	list, err := h.uc.OffersFor(r.Context(), id.SubjectID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}
