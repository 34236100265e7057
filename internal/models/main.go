// Package models defines the wire-level data structures shared by the
// formflow client and the dev stack: forms, questions, collaborators,
// responses and the auth DTOs.
package models

// QuestionType identifies one of the supported question kinds.
type QuestionType string

const (
	// ShortText is a free-text answer up to 512 characters.
	ShortText QuestionType = "short_text"
	// LongText is a free-text answer up to 4096 characters.
	LongText QuestionType = "long_text"
	// SingleChoice picks exactly one value from a fixed choice list.
	SingleChoice QuestionType = "single_choice"
	// MultiChoice picks any subset of a fixed choice list.
	MultiChoice QuestionType = "multi_choice"
	// Numeric picks a number from an explicit list or a generated range.
	Numeric QuestionType = "numeric"
	// Date is an ISO calendar date string (YYYY-MM-DD).
	Date QuestionType = "date"
	// Time is an HH:MM string.
	Time QuestionType = "time"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{
	ShortText, LongText, SingleChoice, MultiChoice, Numeric, Date, Time,
}

// Known reports whether t is one of the supported question types.
// Unknown types are tolerated throughout the client (they render as an
// unsupported placeholder and never block submission).
func (t QuestionType) Known() bool {
	switch t {
	case ShortText, LongText, SingleChoice, MultiChoice, Numeric, Date, Time:
		return true
	}
	return false
}

// NumericRange describes a generated numeric domain: start, start+step,
// ... up to and including end. Degenerate ranges (step 0, direction
// mismatch) are stored as-is and resolved to an empty domain by the fill
// package.
type NumericRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

// Options is the type-dependent configuration payload of a question
// (the options_json column). Which fields are populated depends on the
// question type: Choices (plus optional RequiredCount) for choice types,
// exactly one of List or Range for numeric, nothing for the rest.
type Options struct {
	Choices       []string      `json:"choices,omitempty"`
	RequiredCount *int          `json:"required_count,omitempty"`
	List          []float64     `json:"list,omitempty"`
	Range         *NumericRange `json:"range,omitempty"`

	// LegacyChoices holds the "options" key used by older records.
	LegacyChoices []string `json:"options,omitempty"`
}

// ChoiceList returns the candidate options of a choice question, falling
// back to the legacy "options" key when "choices" is absent.
func (o *Options) ChoiceList() []string {
	if o == nil {
		return nil
	}
	if len(o.Choices) > 0 {
		return o.Choices
	}
	return o.LegacyChoices
}

// Question is one prompt within a form.
type Question struct {
	ID       int64        `json:"id,omitempty"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	// OrderIndex is the sort key within the form. nil sorts as 0.
	OrderIndex *int     `json:"order_index"`
	ImageURL   string   `json:"image_url,omitempty"`
	Options    *Options `json:"options_json"`
}

// Order returns the effective sort key, treating nil as 0.
func (q *Question) Order() int {
	if q.OrderIndex == nil {
		return 0
	}
	return *q.OrderIndex
}

// Form is a named collection of ordered questions with sharing flags.
type Form struct {
	ID             int64      `json:"id,omitempty"`
	OwnerEmail     string     `json:"owner_email,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	AllowAnonymous bool       `json:"allow_anonymous"`
	IsLocked       bool       `json:"is_locked"`
	Questions      []Question `json:"questions"`
}

// FormPatch is a partial form update. Nil fields are left untouched by
// the forms service.
type FormPatch struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	AllowAnonymous *bool   `json:"allow_anonymous,omitempty"`
	IsLocked       *bool   `json:"is_locked,omitempty"`
}

// FormMeta is the unauthenticated single-form view served to fill pages.
// Name and Description may be absent; callers fall back to a placeholder.
type FormMeta struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name,omitempty"`
	Description    string     `json:"description,omitempty"`
	AllowAnonymous bool       `json:"allow_anonymous"`
	IsLocked       bool       `json:"is_locked"`
	Questions      []Question `json:"questions"`
}

// Collaborator roles.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// Collaborator grants another account access to a form.
type Collaborator struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Answer pairs a question with the value entered for it. Value is a
// string, a []string or a number depending on the question type.
type Answer struct {
	QuestionID int64 `json:"question_id"`
	Value      any   `json:"value"`
}

// Submission is the payload posted to the responses service.
type Submission struct {
	FormID  int64    `json:"form_id"`
	Answers []Answer `json:"answers"`
}

// Response is one collected submission as returned by the responses
// service.
type Response struct {
	ID        string   `json:"id"`
	FormID    int64    `json:"form_id"`
	CreatedAt string   `json:"created_at,omitempty"`
	Answers   []Answer `json:"answers"`
}

// User is the identity service's account record.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// RegisterRequest is the identity service registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// TokenResponse covers the login response shapes seen across identity
// service versions: the bearer token may arrive under access_token,
// token or jwt, optionally nested under data.
type TokenResponse struct {
	AccessToken string         `json:"access_token,omitempty"`
	Token       string         `json:"token,omitempty"`
	JWT         string         `json:"jwt,omitempty"`
	Data        *TokenResponse `json:"data,omitempty"`
}

// BearerToken extracts the first non-empty token field, looking one
// level into data. Returns "" when the response carries no token.
func (t *TokenResponse) BearerToken() string {
	if t == nil {
		return ""
	}
	for _, v := range []string{t.AccessToken, t.Token, t.JWT} {
		if v != "" {
			return v
		}
	}
	if t.Data != nil {
		for _, v := range []string{t.Data.AccessToken, t.Data.Token, t.Data.JWT} {
			if v != "" {
				return v
			}
		}
	}
	return ""
}
