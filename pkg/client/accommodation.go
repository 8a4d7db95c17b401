package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"staybook/pkg/model"
)

// Error codes returned by the accommodation catalog's validate endpoint.
const (
	AccommodationErrorNotFound = "ACCOMMODATION_NOT_FOUND"
)

// ApprovalModeAutomatic marks accommodations whose reservations skip the
// host review step and start out approved.
const ApprovalModeAutomatic = "AUTOMATIC"

// AccommodationValidation is the catalog's verdict for a requested stay:
// whether the accommodation exists and can take the party, who owns it, what
// the stay costs, and how approvals are handled.
type AccommodationValidation struct {
	Valid        bool    `json:"valid"`
	ErrorCode    string  `json:"error_code,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	HostID       string  `json:"host_id,omitempty"`
	TotalPrice   float64 `json:"total_price,omitempty"`
	PricingMode  string  `json:"pricing_mode,omitempty"`
	ApprovalMode string  `json:"approval_mode,omitempty"`
	Name         string  `json:"name,omitempty"`
}

func (v *AccommodationValidation) AutoApproval() bool {
	return v.ApprovalMode == ApprovalModeAutomatic
}

// AccommodationInfo is the minimal catalog record used when addressing
// notifications.
type AccommodationInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	HostID string `json:"host_id"`
}

type AccommodationClient struct {
	httpClient *HttpClient
}

func NewAccommodationClient(baseURL string) *AccommodationClient {
	return &AccommodationClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// Validate asks the catalog to confirm the accommodation and price the stay.
// A business rejection comes back with Valid=false and an error code;
// transport failures are returned as errors.
func (c *AccommodationClient) Validate(ctx context.Context, accommodationID string, start, end model.Date, guestCount int) (*AccommodationValidation, error) {
	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	q.Set("guest_count", fmt.Sprintf("%d", guestCount))

	path := "/internal/accommodations/" + url.PathEscape(accommodationID) + "/validate?" + q.Encode()
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("accommodation validation request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("accommodation validation returned status %d", resp.StatusCode)
	}

	var result AccommodationValidation
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("could not decode accommodation validation: %w", err)
	}

	return &result, nil
}

// Get fetches the accommodation's catalog record.
func (c *AccommodationClient) Get(ctx context.Context, accommodationID string) (*AccommodationInfo, error) {
	path := "/internal/accommodations/" + url.PathEscape(accommodationID)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("accommodation lookup request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("accommodation lookup returned status %d", resp.StatusCode)
	}

	var info AccommodationInfo
	if err := resp.DecodeJSON(&info); err != nil {
		return nil, fmt.Errorf("could not decode accommodation: %w", err)
	}

	return &info, nil
}
