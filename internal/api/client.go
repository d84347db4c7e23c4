package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the server answers 404
var ErrNotFound = errors.New("not found")

var httpClient = &http.Client{Timeout: 5 * time.Second}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	URL     string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %s: %d", e.URL, e.Code)
	}
	return fmt.Sprintf("http %s: %d: %s", e.URL, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// PostJSON sends body as JSON and decodes the response into out, if non-nil.
func PostJSON(ctx context.Context, url string, body any, out any) error {
	return doJSON(ctx, http.MethodPost, url, body, out)
}

// PutJSON sends body as JSON with PUT and decodes the response into out, if non-nil.
func PutJSON(ctx context.Context, url string, body any, out any) error {
	return doJSON(ctx, http.MethodPut, url, body, out)
}

// GetJSON fetches url and decodes the response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	return doJSON(ctx, http.MethodGet, url, nil, out)
}

// Delete issues a DELETE request.
func Delete(ctx context.Context, url string) error {
	return doJSON(ctx, http.MethodDelete, url, nil, nil)
}

func doJSON(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var apiErr Error
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{URL: url, Code: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Client talks to a running dashboard server.
type Client struct {
	base string
}

// NewClient returns a client for the server at base, e.g. "http://127.0.0.1:8080".
func NewClient(base string) *Client {
	return &Client{base: strings.TrimRight(base, "/")}
}

func (c *Client) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.base + "/" + strings.Join(escaped, "/")
}

// Health returns nil if the server is up.
func (c *Client) Health(ctx context.Context) error {
	return doJSON(ctx, http.MethodGet, c.url("health"), nil, nil)
}

// Controls fetches the sidebar definition.
func (c *Client) Controls(ctx context.Context) (Controls, error) {
	var out Controls
	err := GetJSON(ctx, c.url("controls"), &out)
	return out, err
}

// CreateSession opens a session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionResponse, error) {
	var out SessionResponse
	err := PostJSON(ctx, c.url("sessions"), req, &out)
	return out, err
}

// Sessions lists open sessions.
func (c *Client) Sessions(ctx context.Context) (SessionList, error) {
	var out SessionList
	err := GetJSON(ctx, c.url("sessions"), &out)
	return out, err
}

// Session fetches one session's parameters.
func (c *Client) Session(ctx context.Context, id string) (SessionResponse, error) {
	var out SessionResponse
	err := GetJSON(ctx, c.url("sessions", id), &out)
	return out, err
}

// CloseSession deletes a session.
func (c *Client) CloseSession(ctx context.Context, id string) error {
	return Delete(ctx, c.url("sessions", id))
}

// SetSpecies replaces the species selection.
func (c *Client) SetSpecies(ctx context.Context, id string, species []string) (SessionResponse, error) {
	var out SessionResponse
	err := PutJSON(ctx, c.url("sessions", id, "species"), SpeciesRequest{Species: species}, &out)
	return out, err
}

// SetMaxMass replaces the mass threshold.
func (c *Client) SetMaxMass(ctx context.Context, id string, maxMass float64) (SessionResponse, error) {
	var out SessionResponse
	err := PutJSON(ctx, c.url("sessions", id, "mass"), MassRequest{MaxMass: &maxMass}, &out)
	return out, err
}

// Summary fetches the value boxes.
func (c *Client) Summary(ctx context.Context, id string) (Summary, error) {
	var out Summary
	err := GetJSON(ctx, c.url("sessions", id, "summary"), &out)
	return out, err
}

// Table fetches the data grid.
func (c *Client) Table(ctx context.Context, id string) (Table, error) {
	var out Table
	err := GetJSON(ctx, c.url("sessions", id, "table"), &out)
	return out, err
}

// Scatter fetches the plot data.
func (c *Client) Scatter(ctx context.Context, id string) (Scatter, error) {
	var out Scatter
	err := GetJSON(ctx, c.url("sessions", id, "scatter"), &out)
	return out, err
}

// Stats fetches the session's cache counters.
func (c *Client) Stats(ctx context.Context, id string) (Stats, error) {
	var out Stats
	err := GetJSON(ctx, c.url("sessions", id, "stats"), &out)
	return out, err
}
