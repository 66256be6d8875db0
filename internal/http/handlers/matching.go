package handlers

import (
	"net/http"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// MatchingHandler serves courier search around a pickup point.
type MatchingHandler struct {
	uc     matchingUsecase
	logger logx.Logger
}

// NewMatchingHandler creates a MatchingHandler.
func NewMatchingHandler(logger logx.Logger, uc matchingUsecase) *MatchingHandler {
	return &MatchingHandler{uc: uc, logger: logger}
}

// Find handles POST /matching/find.
func (h *MatchingHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req findCouriersRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	pickup, err := pointFrom(req.PickupLat, req.PickupLng, "pickup")
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	var res domain.MatchResult
	if req.RadiusKm != nil {
		res, err = h.uc.MatchWithin(r.Context(), pickup, *req.RadiusKm)
	} else {
		res, err = h.uc.Match(r.Context(), pickup)
	}
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, matchToResponse(res))
}
