package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockReservationService struct {
	createFunc  func(ctx context.Context, caller model.UserContext, req *model.CreateReservationRequest) (*model.Reservation, error)
	getByIDFunc func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	approveFunc func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	cancelFunc  func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
}

func (m *mockReservationService) Create(ctx context.Context, caller model.UserContext, req *model.CreateReservationRequest) (*model.Reservation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, caller, req)
	}
	return &model.Reservation{ID: "res-1", Status: model.StatusPending}, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, caller, id)
	}
	return &model.Reservation{ID: id}, nil
}

func (m *mockReservationService) ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationService) ListByHost(ctx context.Context, hostID string) ([]*model.HostReservation, error) {
	return []*model.HostReservation{}, nil
}

func (m *mockReservationService) Approve(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, caller, id)
	}
	return &model.Reservation{ID: id, Status: model.StatusApproved}, nil
}

func (m *mockReservationService) Reject(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	return &model.Reservation{ID: id, Status: model.StatusRejected}, nil
}

func (m *mockReservationService) Withdraw(ctx context.Context, caller model.UserContext, id string) error {
	return nil
}

func (m *mockReservationService) Cancel(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, caller, id)
	}
	return &model.Reservation{ID: id, Status: model.StatusCancelled}, nil
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, accommodationID string, start, end model.Date) (*model.AvailabilityCheck, error) {
	return &model.AvailabilityCheck{HasReservations: false}, nil
}

func (m *mockReservationService) GuestDeletionCheck(ctx context.Context, guestID string) (*model.DeletionCheck, error) {
	return &model.DeletionCheck{CanBeDeleted: true}, nil
}

func (m *mockReservationService) HostDeletionCheck(ctx context.Context, hostID string) (*model.DeletionCheck, error) {
	return &model.DeletionCheck{CanBeDeleted: true}, nil
}

func newTestRouter(svc *mockReservationService) http.Handler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	router := httprouter.New()
	NewReservationHandler(svc, log).RegisterRoutes(router)
	NewInternalHandler(svc, log).RegisterRoutes(router)
	return middleware.Identity()(router)
}

func createBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(model.CreateReservationRequest{
		AccommodationID: "acc-1",
		StartDate:       model.Today().AddDays(7),
		EndDate:         model.Today().AddDays(10),
		GuestCount:      2,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestCreate_RequiresIdentity(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", createBody(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestCreate_Success(t *testing.T) {
	var receivedCaller model.UserContext
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, caller model.UserContext, req *model.CreateReservationRequest) (*model.Reservation, error) {
			receivedCaller = caller
			return &model.Reservation{ID: "res-1", GuestID: caller.UserID, Status: model.StatusPending}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", createBody(t))
	req.Header.Set(middleware.HeaderUserID, "guest-1")
	req.Header.Set(middleware.HeaderUserRole, "GUEST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if receivedCaller.UserID != "guest-1" {
		t.Errorf("expected caller guest-1, got %s", receivedCaller.UserID)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewBufferString("{not json"))
	req.Header.Set(middleware.HeaderUserID, "guest-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", apperrors.NotFoundWithID("Reservation", "res-404"), http.StatusNotFound},
		{"forbidden", apperrors.Forbidden("You do not have access to this reservation"), http.StatusForbidden},
		{"invalid id", apperrors.InvalidInput("Invalid reservation ID format"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				getByIDFunc: func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/id/res-404", nil)
			req.Header.Set(middleware.HeaderUserID, "guest-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestCancel_InvalidStateMapsToConflict(t *testing.T) {
	svc := &mockReservationService{
		cancelFunc: func(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
			return nil, apperrors.InvalidState("Reservations can only be cancelled at least one day before the start date")
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/res-1/cancel", nil)
	req.Header.Set(middleware.HeaderUserID, "guest-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}
}

func TestWithdraw_NoContent(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/res-1", nil)
	req.Header.Set(middleware.HeaderUserID, "guest-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
}

func TestCheckAvailability_RejectsBadDates(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/internal/reservations/availability?accommodation_id=acc-1&start_date=garbage&end_date=2026-09-10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCheckAvailability_Success(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/internal/reservations/availability?accommodation_id=acc-1&start_date=2026-09-05&end_date=2026-09-10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}
