// Package rest implements the secondary data path: the same store reached
// through its REST interface instead of the Postgres wire protocol.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Select fetches rows: GET /{table}?{query}.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, table, query, nil, out)
}

// Insert posts a row and decodes the representation back into out.
func (c *Client) Insert(ctx context.Context, table string, body, out any) error {
	return c.do(ctx, http.MethodPost, table, nil, body, out)
}

// Patch updates rows matching the filter and decodes the representation.
func (c *Client) Patch(ctx context.Context, table string, filter url.Values, body, out any) error {
	return c.do(ctx, http.MethodPatch, table, filter, body, out)
}

// Delete removes rows matching the filter; out (if non-nil) receives the
// deleted representation so callers can detect "nothing matched".
func (c *Client) Delete(ctx context.Context, table string, filter url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, table, filter, nil, out)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Prefer", "return=representation")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &store.RESTError{Status: resp.StatusCode, Body: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func eq(field, value string) url.Values {
	return url.Values{field: []string{"eq." + value}}
}
