package service

import (
	"context"
	"errors"
	"time"

	reservationerrors "staybook/internal/reservations/errors"
	"staybook/internal/reservations/repository"
	"staybook/internal/reservations/validator"
	"staybook/pkg/client"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const unknownAccommodationName = "Unknown Accommodation"

// AccommodationCatalog is the slice of the accommodation service this
// service depends on.
type AccommodationCatalog interface {
	Validate(ctx context.Context, accommodationID string, start, end model.Date, guestCount int) (*client.AccommodationValidation, error)
	Get(ctx context.Context, accommodationID string) (*client.AccommodationInfo, error)
}

type ReservationService interface {
	Create(ctx context.Context, caller model.UserContext, req *model.CreateReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error)
	ListByHost(ctx context.Context, hostID string) ([]*model.HostReservation, error)
	Approve(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	Reject(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	Withdraw(ctx context.Context, caller model.UserContext, id string) error
	Cancel(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error)
	CheckAvailability(ctx context.Context, accommodationID string, start, end model.Date) (*model.AvailabilityCheck, error)
	GuestDeletionCheck(ctx context.Context, guestID string) (*model.DeletionCheck, error)
	HostDeletionCheck(ctx context.Context, hostID string) (*model.DeletionCheck, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.ReservationLockRepository
	validator *validator.ReservationValidator
	catalog   AccommodationCatalog
	events    EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	validator *validator.ReservationValidator,
	catalog AccommodationCatalog,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		catalog:   catalog,
		events:    events,
		cfg:       cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, caller model.UserContext, req *model.CreateReservationRequest) (*model.Reservation, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	validation, err := s.catalog.Validate(ctx, req.AccommodationID, req.StartDate, req.EndDate, req.GuestCount)
	if err != nil {
		s.cfg.Log.Error("Accommodation validation unreachable",
			"accommodation_id", req.AccommodationID,
			"error", err,
		)
		return nil, apperrors.Unavailable("accommodation service")
	}
	if !validation.Valid {
		if validation.ErrorCode == client.AccommodationErrorNotFound {
			return nil, apperrors.NotFoundWithID("Accommodation", req.AccommodationID)
		}
		return nil, apperrors.InvalidInput(validation.ErrorMessage)
	}

	reservation := &model.Reservation{
		AccommodationID: req.AccommodationID,
		GuestID:         caller.UserID,
		HostID:          validation.HostID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		GuestCount:      req.GuestCount,
		TotalPrice:      validation.TotalPrice,
		Status:          model.StatusPending,
	}
	if validation.AutoApproval() {
		reservation.Status = model.StatusApproved
	}

	// Serialize concurrent creations per accommodation so two requests
	// cannot both pass the overlap check.
	lockID, err := s.acquireReservationLock(ctx, req.AccommodationID)
	if err != nil {
		return nil, err
	}
	lockHeld := true
	defer func() {
		if lockHeld {
			s.releaseReservationLock(ctx, lockID)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoApprovedOverlap(sessCtx, req.AccommodationID, req.StartDate, req.EndDate, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return nil, err
	}

	// The lock only guards the check-and-insert; let it go before the
	// notification round trips so other requests for this accommodation
	// are not queued behind them.
	lockHeld = false
	s.releaseReservationLock(ctx, lockID)

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"accommodation_id", reservation.AccommodationID,
		"guest_id", reservation.GuestID,
		"status", reservation.Status,
	)

	s.events.ReservationCreated(ctx, reservation, validation.Name)
	if reservation.Status == model.StatusApproved {
		s.events.ReservationDecision(ctx, reservation, DecisionApproved)
	}

	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.UserID != reservation.GuestID && caller.UserID != reservation.HostID {
		return nil, apperrors.Forbidden("You do not have access to this reservation")
	}

	return reservation, nil
}

func (s *reservationService) ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error) {
	if guestID == "" {
		return nil, apperrors.InvalidInput("Guest ID cannot be empty")
	}

	reservations, err := s.repo.FindByGuest(ctx, guestID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations by guest", "guest_id", guestID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}

	return reservations, nil
}

// ListByHost returns the host's reservations enriched with each guest's
// cancellation history, so the host can judge a request's reliability.
func (s *reservationService) ListByHost(ctx context.Context, hostID string) ([]*model.HostReservation, error) {
	if hostID == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty")
	}

	reservations, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations by host", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}

	cancellations := make(map[string]int64)
	enriched := make([]*model.HostReservation, 0, len(reservations))
	for _, reservation := range reservations {
		count, ok := cancellations[reservation.GuestID]
		if !ok {
			count, err = s.repo.CountByGuestAndStatus(ctx, reservation.GuestID, model.StatusCancelled)
			if err != nil {
				s.cfg.Log.Error("Failed to count guest cancellations",
					"guest_id", reservation.GuestID,
					"error", err,
				)
				return nil, apperrors.Internal("Failed to retrieve reservations", err)
			}
			cancellations[reservation.GuestID] = count
		}
		enriched = append(enriched, &model.HostReservation{
			Reservation:            *reservation,
			GuestCancellationCount: count,
		})
	}

	return enriched, nil
}

func (s *reservationService) Approve(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.UserID != reservation.HostID {
		return nil, apperrors.Forbidden("Only the host can approve a reservation")
	}
	if reservation.Status != model.StatusPending {
		return nil, apperrors.InvalidState("Only pending reservations can be approved")
	}

	lockID, err := s.acquireReservationLock(ctx, reservation.AccommodationID)
	if err != nil {
		return nil, err
	}
	lockHeld := true
	defer func() {
		if lockHeld {
			s.releaseReservationLock(ctx, lockID)
		}
	}()

	var rejected []*model.Reservation
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-read under the lock: the record may have changed between the
		// pre-check and lock acquisition.
		current, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapLoadError(err, id)
		}
		if current.Status != model.StatusPending {
			return apperrors.InvalidState("Only pending reservations can be approved")
		}

		if err := s.verifyNoApprovedOverlap(sessCtx, current.AccommodationID, current.StartDate, current.EndDate, id); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(sessCtx, id, model.StatusApproved); err != nil {
			return apperrors.Internal("Failed to approve reservation", err)
		}

		overlapping, err := s.repo.FindOverlappingByStatus(sessCtx, current.AccommodationID, current.StartDate, current.EndDate, model.StatusPending, id)
		if err != nil {
			return apperrors.Internal("Failed to find overlapping requests", err)
		}

		if len(overlapping) > 0 {
			ids := make([]string, 0, len(overlapping))
			for _, r := range overlapping {
				ids = append(ids, r.ID)
			}
			if _, err := s.repo.UpdateStatusMany(sessCtx, ids, model.StatusRejected); err != nil {
				return apperrors.Internal("Failed to reject overlapping requests", err)
			}
			rejected = overlapping
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to approve reservation", "id", id, "error", err)
		return nil, err
	}

	// Same as Create: the decision events below fan out one publish per
	// cascaded rejection, so drop the lock before them.
	lockHeld = false
	s.releaseReservationLock(ctx, lockID)

	reservation.Status = model.StatusApproved

	s.cfg.Log.Info("Reservation approved",
		"id", id,
		"accommodation_id", reservation.AccommodationID,
		"rejected_count", len(rejected),
	)

	s.events.ReservationDecision(ctx, reservation, DecisionApproved)
	for _, r := range rejected {
		r.Status = model.StatusRejected
		s.events.ReservationDecision(ctx, r, DecisionDeclined)
	}

	return reservation, nil
}

func (s *reservationService) Reject(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.UserID != reservation.HostID {
		return nil, apperrors.Forbidden("Only the host can reject a reservation")
	}
	if reservation.Status != model.StatusPending {
		return nil, apperrors.InvalidState("Only pending reservations can be rejected")
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusRejected); err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to reject reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to reject reservation", err)
	}

	reservation.Status = model.StatusRejected

	s.cfg.Log.Info("Reservation rejected", "id", id, "accommodation_id", reservation.AccommodationID)

	s.events.ReservationDecision(ctx, reservation, DecisionDeclined)

	return reservation, nil
}

// Withdraw removes a pending request on the guest's initiative. The record
// is kept for history but hidden from all reads.
func (s *reservationService) Withdraw(ctx context.Context, caller model.UserContext, id string) error {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if caller.UserID != reservation.GuestID {
		return apperrors.Forbidden("Only the guest can withdraw a reservation request")
	}
	if reservation.Status != model.StatusPending {
		return apperrors.InvalidState("Only pending reservation requests can be withdrawn")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to withdraw reservation", "id", id, "error", err)
		return apperrors.Internal("Failed to withdraw reservation", err)
	}

	s.cfg.Log.Info("Reservation withdrawn", "id", id, "guest_id", reservation.GuestID)
	return nil
}

func (s *reservationService) Cancel(ctx context.Context, caller model.UserContext, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.UserID != reservation.GuestID {
		return nil, apperrors.Forbidden("Only the guest can cancel a reservation")
	}
	if reservation.Status != model.StatusApproved {
		return nil, apperrors.InvalidState("Only approved reservations can be cancelled")
	}

	deadline := reservation.StartDate.AddDays(-1)
	if !model.Today().Before(deadline) {
		return nil, apperrors.InvalidState("Reservations can only be cancelled at least one day before the start date")
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel reservation", err)
	}

	reservation.Status = model.StatusCancelled

	s.cfg.Log.Info("Reservation cancelled", "id", id, "accommodation_id", reservation.AccommodationID)

	s.events.ReservationCancelled(ctx, reservation, s.accommodationName(ctx, reservation.AccommodationID))

	return reservation, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, accommodationID string, start, end model.Date) (*model.AvailabilityCheck, error) {
	if accommodationID == "" {
		return nil, apperrors.InvalidInput("Accommodation ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}

	overlapping, err := s.repo.FindOverlappingByStatus(ctx, accommodationID, start, end, model.StatusApproved, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "accommodation_id", accommodationID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	return &model.AvailabilityCheck{HasReservations: len(overlapping) > 0}, nil
}

func (s *reservationService) GuestDeletionCheck(ctx context.Context, guestID string) (*model.DeletionCheck, error) {
	if guestID == "" {
		return nil, apperrors.InvalidInput("Guest ID cannot be empty")
	}

	count, err := s.repo.CountActiveForGuest(ctx, guestID)
	if err != nil {
		s.cfg.Log.Error("Failed to count guest reservations", "guest_id", guestID, "error", err)
		return nil, apperrors.Internal("Failed to check guest reservations", err)
	}

	check := &model.DeletionCheck{
		CanBeDeleted:           count == 0,
		ActiveReservationCount: count,
	}
	if count > 0 {
		check.Reason = "guest has active reservations"
	}
	return check, nil
}

func (s *reservationService) HostDeletionCheck(ctx context.Context, hostID string) (*model.DeletionCheck, error) {
	if hostID == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty")
	}

	count, err := s.repo.CountActiveForHost(ctx, hostID)
	if err != nil {
		s.cfg.Log.Error("Failed to count host reservations", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to check host reservations", err)
	}

	check := &model.DeletionCheck{
		CanBeDeleted:           count == 0,
		ActiveReservationCount: count,
	}
	if count > 0 {
		check.Reason = "host has accommodations with active reservations"
	}
	return check, nil
}

// --- Helpers ---

func (s *reservationService) load(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLoadError(err, id)
	}

	return reservation, nil
}

func (s *reservationService) mapLoadError(err error, id string) error {
	if errors.Is(err, reservationerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	if errors.Is(err, reservationerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid reservation ID format")
	}
	return apperrors.Internal("Failed to retrieve reservation", err)
}

func (s *reservationService) verifyNoApprovedOverlap(ctx context.Context, accommodationID string, start, end model.Date, excludeID string) error {
	overlapping, err := s.repo.FindOverlappingByStatus(ctx, accommodationID, start, end, model.StatusApproved, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	if len(overlapping) > 0 {
		return apperrors.Conflict("The accommodation is already booked for the requested dates")
	}
	return nil
}

// accommodationName resolves the accommodation's display name for
// notifications, best-effort.
func (s *reservationService) accommodationName(ctx context.Context, accommodationID string) string {
	info, err := s.catalog.Get(ctx, accommodationID)
	if err != nil || info.Name == "" {
		s.cfg.Log.Warn("Could not resolve accommodation name", "accommodation_id", accommodationID, "error", err)
		return unknownAccommodationName
	}
	return info.Name
}

// acquireReservationLock creates an advisory lock keyed per accommodation.
// A held lock is retried a few times before giving up with a conflict.
func (s *reservationService) acquireReservationLock(ctx context.Context, accommodationID string) (string, error) {
	lockID := "reservation_lock_" + accommodationID

	for attempt := 0; attempt < s.cfg.LockRetryAttempts; attempt++ {
		lock := &model.ReservationLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.ReservationLockTTL),
		}

		_, err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire reservation lock", err)
		}

		if attempt < s.cfg.LockRetryAttempts-1 {
			select {
			case <-ctx.Done():
				return "", apperrors.Timeout("Timed out waiting for reservation lock")
			case <-time.After(s.cfg.LockRetryBackoff):
			}
		}
	}

	return "", apperrors.Conflict("The accommodation is currently being reserved by another request. Please try again.")
}

// releaseReservationLock removes the advisory lock. A failed delete is only
// logged: the TTL index reclaims the document.
func (s *reservationService) releaseReservationLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", err)
	}
}
