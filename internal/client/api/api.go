// Package api implements thin typed clients for the three remote
// services the formflow client composes: identity, forms and
// responses. Each client shapes requests and responses only; auth
// policy, persistence and aggregation live server-side.
package api

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

// caller is the shared request plumbing of all three service clients.
type caller struct {
	base string
	hc   *http.Client
}

func newCaller(base string, hc *http.Client) caller {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return caller{base: strings.TrimRight(base, "/"), hc: hc}
}

// do issues one JSON request. A bearer header is attached exactly when
// token is non-empty. Non-2xx responses become an *Error carrying the
// body text; transport failures are returned as-is wrapped, so callers
// can tell the two apart.
func (c caller) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("invalid response: %w", err)
		}
	}
	return nil
}

// doForm issues one x-www-form-urlencoded POST (identity login in form
// mode).
func (c caller) doForm(ctx context.Context, path string, form string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("invalid response: %w", err)
		}
	}
	return nil
}
