package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx service response. Its message is the response
// body text, or an "HTTP <status>" fallback when the body is empty.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// StatusOf returns the HTTP status of err when it is a service
// response error, 0 otherwise (local or transport failures).
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsTransport reports whether err is a failure that never produced an
// HTTP response (connection refused, DNS, timeout). The registration
// flow treats these as a documented soft success.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	return !errors.As(err, &apiErr)
}

// LoginMessage maps a login failure to a user-facing message. Known
// credential failures (401 or credential-ish body text) get a friendly
// explanation; rate limiting and server failures get a retry hint;
// anything else surfaces its raw text.
func LoginMessage(err error) string {
	if err == nil {
		return ""
	}
	status := StatusOf(err)
	lower := strings.ToLower(err.Error())

	switch {
	case status == http.StatusUnauthorized,
		strings.Contains(lower, "invalid"),
		strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "credentials"),
		strings.Contains(lower, "wrong password"),
		strings.Contains(lower, "login failed"):
		return "Invalid email or password — check that both are correct."
	case status == http.StatusTooManyRequests, strings.Contains(lower, "too many"):
		return "Too many login attempts — try again in a few minutes."
	case status == http.StatusBadRequest, strings.Contains(lower, "bad request"):
		return "Invalid request — check your input and try again."
	case status >= 500, strings.Contains(lower, "server"):
		return "Server error — login is unavailable right now, try again later."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Login failed. Please try again."
}

// Message maps any service failure to a user-facing message. Unlike
// LoginMessage it only rewrites rate-limit and server failures and
// otherwise falls back to the raw error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch status := StatusOf(err); {
	case status == http.StatusTooManyRequests:
		return "Too many requests — try again later."
	case status >= 500:
		return "Server error — try again later."
	}
	return err.Error()
}
