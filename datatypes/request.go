// Package datatypes provides the request and response shapes for the
// LawGuide AI service.
//
// Request structs carry go-playground/validator tags and follow the
// EnsureDefaults/Validate convention: handlers populate defaults first,
// then validate, so the pipeline never sees a half-initialized request.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// DefaultUserState is the nationwide jurisdiction sentinel. Retrieval
// biases toward sections tagged with the caller's state or this value.
const DefaultUserState = "India"

var validate = validator.New()

// ConversationTurn is one prior exchange supplied by the caller. The
// service does not persist history; turns only inform the current run.
type ConversationTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// QueryRequest is the body of POST /answer.
type QueryRequest struct {
	QueryText       string             `json:"query_text" validate:"required"`
	UserState       string             `json:"user_state"`
	UserLanguage    string             `json:"user_language"`
	ExplanationMode string             `json:"explanation_mode" validate:"omitempty,oneof=normal eli15"`
	QueryID         int                `json:"query_id,omitempty"`
	UserID          int                `json:"user_id,omitempty"`
	Conversation    []ConversationTurn `json:"conversation,omitempty"`
}

// EnsureDefaults fills in the optional fields the pipeline relies on.
func (r *QueryRequest) EnsureDefaults() {
	if r.ExplanationMode == "" {
		r.ExplanationMode = "normal"
	}
	if r.UserState == "" {
		r.UserState = DefaultUserState
	}
}

// Validate checks the request against its validation tags.
func (r *QueryRequest) Validate() error {
	return validate.Struct(r)
}

// SectionSearchRequest is the body of POST /search-sections.
type SectionSearchRequest struct {
	QueryText    string `json:"query_text" validate:"required"`
	UserState    string `json:"user_state"`
	UserLanguage string `json:"user_language"`
	TopK         int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

func (r *SectionSearchRequest) EnsureDefaults(defaultTopK int) {
	if r.TopK == 0 {
		r.TopK = defaultTopK
	}
	if r.UserState == "" {
		r.UserState = DefaultUserState
	}
}

func (r *SectionSearchRequest) Validate() error {
	return validate.Struct(r)
}

// SummaryRequest is the body of POST /summarize-section.
type SummaryRequest struct {
	Text         string `json:"text" validate:"required"`
	UserLanguage string `json:"user_language"`
}

func (r *SummaryRequest) Validate() error {
	return validate.Struct(r)
}
