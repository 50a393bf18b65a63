package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/incident/domain"
)

const maxResponseBytes = 1 << 20

// StatusError is the cause attached when the endpoint rejects a report.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ticketing endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("ticketing endpoint returned %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Client posts incidents to a table-style ticketing API using HTTP Basic
// authentication.
type Client struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		url:        cfg.URL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type createResponse struct {
	Result struct {
		Number string `json:"number"`
		SysID  string `json:"sys_id"`
	} `json:"result"`
}

// Submit sends one report. Every failure, including transport errors and
// non-2xx answers, is returned as a remote service error.
func (c *Client) Submit(ctx context.Context, payload domain.Payload) (domain.Ticket, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("encode incident: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(&StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), 200),
		})
	}

	var parsed createResponse
	if len(raw) > 0 && json.Unmarshal(raw, &parsed) == nil {
		return domain.Ticket{Number: parsed.Result.Number, SysID: parsed.Result.SysID}, nil
	}
	return domain.Ticket{}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
