package counters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Field is a count kept by the identity service.
type Field string

const (
	FieldFollowers Field = "followers"
	FieldFollowing Field = "following"
)

const (
	userIDHeader   = "x-user-id"
	defaultTimeout = 5 * time.Second
	// maxErrorBody caps how much of a failed response is kept in AdjustError.
	maxErrorBody = 512
)

// AdjustError describes a failed count adjustment. Transport errors, non-2xx
// statuses and unparsable bodies all produce one.
type AdjustError struct {
	UserID     string
	Field      Field
	Delta      int
	StatusCode int
	Message    string
}

func (e *AdjustError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("adjust %s %+d for %s: HTTP %d: %s", e.Field, e.Delta, e.UserID, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("adjust %s %+d for %s: %s", e.Field, e.Delta, e.UserID, e.Message)
}

// Client updates follower/following counts on the identity service with
// PUT {baseURL}/user. Each call is a single attempt.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. A non-positive timeout falls back to five seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Adjust applies delta (+1 or -1) to field for userID. It returns nil on a 2xx
// response and an *AdjustError otherwise.
func (c *Client) Adjust(ctx context.Context, userID string, field Field, delta int) error {
	fail := func(status int, format string, args ...any) error {
		return &AdjustError{UserID: userID, Field: field, Delta: delta, StatusCode: status, Message: fmt.Sprintf(format, args...)}
	}

	if field != FieldFollowers && field != FieldFollowing {
		return fail(0, "unknown field")
	}
	if delta != 1 && delta != -1 {
		return fail(0, "delta must be +1 or -1")
	}

	body, err := json.Marshal(map[Field]int{field: delta})
	if err != nil {
		return fail(0, "encode body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/user", bytes.NewReader(body))
	if err != nil {
		return fail(0, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userIDHeader, userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "%v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "read body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, "%s", truncate(strings.TrimSpace(string(payload))))
	}
	if len(bytes.TrimSpace(payload)) > 0 && !json.Valid(payload) {
		return fail(resp.StatusCode, "unparsable response body")
	}
	return nil
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody]
}
