package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mlukic/formflow/internal/models"
)

// DefaultSubmitPath is the submit endpoint used when no path template
// is configured.
const DefaultSubmitPath = "/submit"

// Responses talks to the responses service.
type Responses struct {
	caller
	submitPath string
}

// NewResponses builds a responses client. submitPath is a path
// template which may reference the form id as {id} or :id; empty means
// DefaultSubmitPath. hc may be nil.
func NewResponses(baseURL, submitPath string, hc *http.Client) *Responses {
	if submitPath == "" {
		submitPath = DefaultSubmitPath
	}
	return &Responses{caller: newCaller(baseURL, hc), submitPath: submitPath}
}

// SubmitPath resolves the submit path template for one form.
func (c *Responses) SubmitPath(formID int64) string {
	path := c.submitPath
	id := strconv.FormatInt(formID, 10)
	path = strings.ReplaceAll(path, "{id}", id)
	path = strings.ReplaceAll(path, ":id", id)
	return path
}

// Submit posts one submission. The token is attached when present so
// non-anonymous forms can attribute the response.
func (c *Responses) Submit(ctx context.Context, token string, sub models.Submission) (models.Response, error) {
	var out models.Response
	err := c.do(ctx, http.MethodPost, c.SubmitPath(sub.FormID), token, sub, &out)
	return out, err
}

// List returns the collected submissions of a form.
func (c *Responses) List(ctx context.Context, token string, formID int64) ([]models.Response, error) {
	var out []models.Response
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forms/%d/responses", formID), token, nil, &out)
	return out, err
}

// Aggregate returns the server-computed summary statistics. The shape
// is owned by the responses service and passed through opaquely.
func (c *Responses) Aggregate(ctx context.Context, token string, formID int64) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forms/%d/aggregate", formID), token, nil, &out)
	return out, err
}

// ExportURL returns the direct download link for a form's export
// file. It is handed to the user, never fetched as JSON.
func (c *Responses) ExportURL(formID int64) string {
	return fmt.Sprintf("%s/forms/%d/export", c.base, formID)
}
