// Package llm wraps the hosted completion service behind a small
// interface so the pipeline never handles transport errors directly.
package llm

import "context"

// Message is one chat turn sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams are optional sampling overrides. Nil fields use the
// backend defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// Client is the contract for any chat-completion backend.
type Client interface {
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
}

// State classifies the result of a best-effort collaborator call, so
// callers cannot confuse "collaborator down" with "collaborator said no".
type State int

const (
	StateOK State = iota
	// StateUnavailable means the call failed at the transport level
	// (network, quota, timeout) or the backend returned nothing.
	StateUnavailable
	// StateMalformed means the backend answered but the payload did not
	// match the expected contract.
	StateMalformed
)

// Outcome is the typed result of a best-effort completion call.
type Outcome struct {
	State State
	Text  string
	Err   error
}

func (o Outcome) OK() bool { return o.State == StateOK }

// Complete runs one chat call and folds any failure into an Outcome.
// An empty completion is reported as unavailable: downstream policy
// treats "no text" the same as "no service".
func Complete(ctx context.Context, client Client, messages []Message, params GenerationParams) Outcome {
	if client == nil {
		return Outcome{State: StateUnavailable}
	}
	text, err := client.Chat(ctx, messages, params)
	if err != nil {
		return Outcome{State: StateUnavailable, Err: err}
	}
	if text == "" {
		return Outcome{State: StateUnavailable}
	}
	return Outcome{State: StateOK, Text: text}
}

func FloatPtr(v float32) *float32 { return &v }
func IntPtr(v int) *int           { return &v }
