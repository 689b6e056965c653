package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// Client talks to the punch API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx answer from the server. Transport failures are
// returned as plain errors instead.
type APIError struct {
	StatusCode            int
	Code                  string
	Message               string
	RequiresJustification bool
	RetryAfter            time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("punch API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Permanent reports whether resending the same punch can never succeed.
// Auth and throttling answers are about the caller, not the punch.
func (e *APIError) Permanent() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequiresJustification bool `json:"requires_justification"`
}

// Submit posts a punch. idempotencyKey makes retries of the same attempt safe.
func (c *Client) Submit(ctx context.Context, req timeentry.PunchRequest, idempotencyKey string) (timeentry.PunchResponse, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return timeentry.PunchResponse{}, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/clock-in", bytes.NewReader(body))
	if err != nil {
		return timeentry.PunchResponse{}, "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	env, err := c.do(httpReq)
	if err != nil {
		return timeentry.PunchResponse{}, "", err
	}

	var out timeentry.PunchResponse
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return timeentry.PunchResponse{}, "", fmt.Errorf("failed to decode punch response: %w", err)
		}
	}
	return out, env.Message, nil
}

// Heartbeat probes the server root, which answers without auth.
func (c *Client) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func (c *Client) do(req *http.Request) (envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, err
	}
	// A non-JSON body leaves env empty.
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return env, nil
	}

	apiErr := &APIError{
		StatusCode:            resp.StatusCode,
		Message:               http.StatusText(resp.StatusCode),
		RequiresJustification: env.RequiresJustification,
	}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = time.Duration(s) * time.Second
	}
	return env, apiErr
}
