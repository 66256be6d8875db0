package handlers

import (
	"net/http"
	"strconv"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	uc     ordersUsecase
	logger logx.Logger
}

// NewOrderHandler wires an orders usecase into HTTP handlers.
func NewOrderHandler(logger logx.Logger, uc ordersUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

// Create handles POST /orders. The client is taken from the caller identity.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identityAs(h.logger, w, r, auth.RoleClient)
	if !ok {
		return
	}
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	in, err := req.toModel(id.SubjectID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	o, err := h.uc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+strconv.FormatInt(o.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(*o))
}

// GetByID handles GET /orders/{id}. Clients see their own orders,
// couriers see orders assigned to them or still on offer.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	by, ok := actor(h.logger, w, r)
	if !ok {
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.uc.GetAs(r.Context(), by, orderID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// ListByClient handles GET /orders/client/{client_id}.
func (h *OrderHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := idFromURL(r, "client_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid client_id")
		return
	}
	if !h.ownsHistory(w, r, auth.RoleClient, clientID) {
		return
	}

	list, err := h.uc.ListByClient(r.Context(), clientID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// ListByCourier handles GET /orders/courier/{courier_id}.
func (h *OrderHandler) ListByCourier(w http.ResponseWriter, r *http.Request) {
	courierID, err := idFromURL(r, "courier_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier_id")
		return
	}
	if !h.ownsHistory(w, r, auth.RoleCourier, courierID) {
		return
	}

	list, err := h.uc.ListByCourier(r.Context(), courierID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// Accept handles POST /orders/{id}/accept for the calling courier.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := identityAs(h.logger, w, r, auth.RoleCourier)
	if !ok {
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.uc.Claim(r.Context(), orderID, id.SubjectID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Reject handles POST /orders/{id}/reject for the calling courier.
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := identityAs(h.logger, w, r, auth.RoleCourier)
	if !ok {
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.uc.Reject(r.Context(), orderID, id.SubjectID); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "rejected"})
}

// UpdateStatus handles PATCH /orders/{id}/status. "cancelled" cancels the
// order, any other status advances it one step. Only the assigned courier
// advances; the owning client may also cancel.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	by, ok := actor(h.logger, w, r)
	if !ok {
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	to := domain.OrderStatus(req.Status)
	if !to.Valid() {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
		return
	}

	if to == domain.OrderCancelled {
		o, err := h.uc.CancelAs(r.Context(), by, orderID)
		if err != nil {
			writeServiceError(h.logger, w, r, err)
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, advanceResponse{Order: orderToResponse(*o)})
		return
	}

	res, err := h.uc.AdvanceAs(r.Context(), by, orderID, to)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, advanceToResponse(res))
}

// ownsHistory lets a caller read only its own history.
func (h *OrderHandler) ownsHistory(w http.ResponseWriter, r *http.Request, role auth.Role, subjectID int64) bool {
	id, ok := identityAs(h.logger, w, r, role)
	if !ok {
		return false
	}
	if id.SubjectID != subjectID {
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
