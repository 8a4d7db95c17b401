package handler

import (
	"fmt"
	"net/http"

	"staybook/internal/reservations/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// InternalHandler serves the service-to-service surface: availability checks
// for the accommodation catalog and deletion checks for the user service.
// These routes are not exposed through the public gateway.
type InternalHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewInternalHandler(service service.ReservationService, log *logger.Logger) *InternalHandler {
	return &InternalHandler{
		service: service,
		log:     log,
	}
}

func (h *InternalHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	accommodationID := query.Get("accommodation_id")

	start, err := model.ParseDate(query.Get("start_date"))
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput(fmt.Sprintf("invalid start_date, must be %s", model.DateLayout)))
		return
	}
	end, err := model.ParseDate(query.Get("end_date"))
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput(fmt.Sprintf("invalid end_date, must be %s", model.DateLayout)))
		return
	}

	check, err := h.service.CheckAvailability(r.Context(), accommodationID, start, end)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, check); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InternalHandler) GuestDeletionCheck(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	check, err := h.service.GuestDeletionCheck(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GuestDeletionCheck", err)
		return
	}

	if err := httputil.WriteSuccess(w, check); err != nil {
		h.log.Error("failed to write success response", "handler", "GuestDeletionCheck", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InternalHandler) HostDeletionCheck(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	check, err := h.service.HostDeletionCheck(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "HostDeletionCheck", err)
		return
	}

	if err := httputil.WriteSuccess(w, check); err != nil {
		h.log.Error("failed to write success response", "handler", "HostDeletionCheck", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InternalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InternalHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/internal/reservations/availability", h.CheckAvailability)
	router.GET("/internal/reservations/guests/:id/deletion-check", h.GuestDeletionCheck)
	router.GET("/internal/reservations/hosts/:id/deletion-check", h.HostDeletionCheck)
}
