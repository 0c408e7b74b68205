package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/justsurfingit/jacker/internal/dtos"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/justsurfingit/jacker/internal/services"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match a 404 with services.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == services.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to a running jacker API. It satisfies dashboard.Store.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

func (c *Client) ListAll(ctx context.Context) ([]models.TrackedJob, error) {
	var resp dtos.ListJobsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/list-jobs", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Jobs == nil {
		resp.Jobs = []models.TrackedJob{}
	}
	return resp.Jobs, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	body := dtos.UpdateStatusRequest{Status: &status}
	return c.do(ctx, http.MethodPatch, "/api/v1/jobs/"+url.PathEscape(id)+"/status", body, nil)
}

func (c *Client) Track(ctx context.Context, pageURL, title string) (*dtos.TrackJobResponse, error) {
	var resp dtos.TrackJobResponse
	body := dtos.TrackJobRequest{URL: pageURL, Title: title}
	if err := c.do(ctx, http.MethodPost, "/api/v1/track-job", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stats(ctx context.Context) (*dtos.StatsResponse, error) {
	var resp dtos.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e dtos.ErrorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: res.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
