package validator

import (
	"strings"
	"testing"

	"staybook/pkg/logger"
	"staybook/pkg/model"
)

func newTestValidator() *ReservationValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewReservationValidator(log)
}

func validRequest() *model.CreateReservationRequest {
	return &model.CreateReservationRequest{
		AccommodationID: "acc-1",
		StartDate:       model.Today().AddDays(7),
		EndDate:         model.Today().AddDays(10),
		GuestCount:      2,
	}
}

func TestValidateCreate_Valid(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCreate(validRequest()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateCreate_MissingFields(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.CreateReservationRequest)
		field  string
	}{
		{
			name:   "missing accommodation id",
			mutate: func(r *model.CreateReservationRequest) { r.AccommodationID = "" },
			field:  "AccommodationID",
		},
		{
			name:   "missing start date",
			mutate: func(r *model.CreateReservationRequest) { r.StartDate = model.Date{} },
			field:  "StartDate",
		},
		{
			name:   "missing end date",
			mutate: func(r *model.CreateReservationRequest) { r.EndDate = model.Date{} },
			field:  "EndDate",
		},
		{
			name:   "zero guest count",
			mutate: func(r *model.CreateReservationRequest) { r.GuestCount = 0 },
			field:  "GuestCount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateCreate(req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidateCreate_EndNotAfterStart(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.EndDate = req.StartDate
	if err := v.ValidateCreate(req); err == nil {
		t.Error("expected error for zero-length stay, got nil")
	}

	req = validRequest()
	req.EndDate = req.StartDate.AddDays(-1)
	if err := v.ValidateCreate(req); err == nil {
		t.Error("expected error for inverted range, got nil")
	}
}

func TestValidateCreate_StartInPast(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.StartDate = model.Today().AddDays(-1)
	req.EndDate = model.Today().AddDays(3)

	err := v.ValidateCreate(req)
	if err == nil {
		t.Fatal("expected error for past start date, got nil")
	}
	if !strings.Contains(err.Error(), "past") {
		t.Errorf("expected past-date message, got: %v", err)
	}
}

func TestValidateCreate_StartToday(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.StartDate = model.Today()
	req.EndDate = model.Today().AddDays(2)

	if err := v.ValidateCreate(req); err != nil {
		t.Errorf("same-day start should be allowed, got: %v", err)
	}
}
