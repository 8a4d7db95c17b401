package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"staybook/internal/reservations/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

// caller extracts the authenticated user or writes a 401.
func (h *ReservationHandler) caller(w http.ResponseWriter, r *http.Request) (model.UserContext, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok || caller.UserID == "" {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
		}
		return model.UserContext{}, false
	}
	return caller, true
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req model.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListByGuest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	reservations, err := h.service.ListByGuest(r.Context(), caller.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByGuest", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByGuest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListByHost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	reservations, err := h.service.ListByHost(r.Context(), caller.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByHost", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Approve", h.service.Approve)
}

func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Reject", h.service.Reject)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Cancel", h.service.Cancel)
}

func (h *ReservationHandler) Withdraw(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), caller, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Withdraw", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

type decisionFunc func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)

func (h *ReservationHandler) decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, fn decisionFunc) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	reservation, err := fn(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/guest", h.ListByGuest)
	router.GET("/api/v1/reservations/host", h.ListByHost)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/approve", h.Approve)
	router.POST("/api/v1/reservations/id/:id/reject", h.Reject)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.DELETE("/api/v1/reservations/id/:id", h.Withdraw)
}
