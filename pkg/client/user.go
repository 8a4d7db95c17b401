package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UserSummary is the slimmed-down user record needed to address a
// notification. Found=false means the user no longer exists.
type UserSummary struct {
	Found     bool   `json:"found"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *UserSummary) FullName() string {
	return s.FirstName + " " + s.LastName
}

type UserClient struct {
	httpClient *HttpClient
}

func NewUserClient(baseURL string) *UserClient {
	return &UserClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// Summary fetches the user's contact details. A 404 from the user service is
// not an error: it yields Found=false so the caller can skip the
// notification.
func (c *UserClient) Summary(ctx context.Context, userID string) (*UserSummary, error) {
	path := "/internal/users/" + url.PathEscape(userID) + "/summary"
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("user summary request failed: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return &UserSummary{Found: false, UserID: userID}, nil
	}

	var summary UserSummary
	if err := resp.DecodeJSON(&summary); err != nil {
		return nil, fmt.Errorf("could not decode user summary: %w", err)
	}
	if summary.UserID == "" {
		summary.UserID = userID
	}

	return &summary, nil
}
