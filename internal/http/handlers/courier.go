package handlers

import (
	"net/http"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// CourierHandler is the HTTP tracking channel for couriers without Kafka.
type CourierHandler struct {
	uc     courierUsecase
	logger logx.Logger
}

// NewCourierHandler wires a courier usecase into HTTP handlers.
func NewCourierHandler(logger logx.Logger, uc courierUsecase) *CourierHandler {
	return &CourierHandler{uc: uc, logger: logger}
}

// UpdateLocation handles PUT /couriers/{id}/location.
func (h *CourierHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	courierID, ok := h.self(w, r)
	if !ok {
		return
	}
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	loc, err := pointFrom(req.Lat, req.Lng, "location")
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	c, err := h.uc.UpdateLocation(r.Context(), domain.LocationUpdate{
		CourierID: courierID,
		Location:  loc,
		Available: req.Available,
	})
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(c))
}

// SetAvailability handles PUT /couriers/{id}/availability.
func (h *CourierHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	courierID, ok := h.self(w, r)
	if !ok {
		return
	}
	var req setAvailabilityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.Available == nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "available is required")
		return
	}

	c, err := h.uc.SetAvailability(r.Context(), courierID, *req.Available)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(*c))
}

// self resolves {id} and checks that the caller is that courier.
func (h *CourierHandler) self(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := identityAs(h.logger, w, r, auth.RoleCourier)
	if !ok {
		return 0, false
	}
	courierID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	if courierID != id.SubjectID {
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return courierID, true
}
