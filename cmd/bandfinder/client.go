package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"bandfinder/internal/api"
)

// client is a thin HTTP wrapper over the daemon API.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base, token string) *client {
	return &client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `bandfinderd`", c.base)
		}
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s (http %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon returned http %d", resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var out api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *client) UpsertMusician(ctx context.Context, id int64, musician api.Musician) (api.Musician, error) {
	var out api.Musician
	err := c.do(ctx, http.MethodPut, "/api/musicians/"+strconv.FormatInt(id, 10), musician, &out)
	return out, err
}

func (c *client) GetMusician(ctx context.Context, id int64) (api.Musician, error) {
	var out api.Musician
	err := c.do(ctx, http.MethodGet, "/api/musicians/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *client) PatchMusician(ctx context.Context, id int64, patch api.MusicianPatch) (api.Musician, error) {
	var out api.Musician
	err := c.do(ctx, http.MethodPatch, "/api/musicians/"+strconv.FormatInt(id, 10), patch, &out)
	return out, err
}

func (c *client) SearchMusicians(ctx context.Context, instrument string, minExperience int) ([]api.Musician, error) {
	query := url.Values{}
	if instrument != "" {
		query.Set("instrument", instrument)
	}
	if minExperience > 0 {
		query.Set("min_experience", strconv.Itoa(minExperience))
	}
	path := "/api/musicians"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out api.MusicianListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Musicians, err
}

func (c *client) SubmitRequest(ctx context.Context, submit api.SubmitRequest) (api.SubmitResponse, error) {
	var out api.SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/requests", submit, &out)
	return out, err
}

func (c *client) ListRequests(ctx context.Context, bandID int64) ([]api.Request, error) {
	var out api.RequestListResponse
	err := c.do(ctx, http.MethodGet, "/api/requests?band_id="+strconv.FormatInt(bandID, 10), nil, &out)
	return out.Requests, err
}

func (c *client) CancelRequest(ctx context.Context, id, bandID int64) error {
	path := fmt.Sprintf("/api/requests/%d?band_id=%d", id, bandID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *client) Accept(ctx context.Context, id, musicianID int64) (api.AcceptResponse, error) {
	var out api.AcceptResponse
	path := fmt.Sprintf("/api/requests/%d/accept", id)
	err := c.do(ctx, http.MethodPost, path, api.AcceptRequest{MusicianID: musicianID}, &out)
	return out, err
}

func (c *client) NotifyTest(ctx context.Context, recipientID int64) error {
	return c.do(ctx, http.MethodPost, "/api/notify/test", api.NotifyTestRequest{RecipientID: recipientID}, nil)
}
