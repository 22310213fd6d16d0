// Package llm turns a plain text-completion backend into the judgment and
// narrative collaborators used by the ranking and sentiment services.
package llm

import (
	"context"
	"errors"
)

// Request is one prompt sent to a completion backend.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the backend for a JSON-only response when it supports it.
	JSON bool
}

// Completer is a text-completion backend (Gemini, OpenAI).
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// ErrEmptyResponse is returned when a backend produced no text.
var ErrEmptyResponse = errors.New("llm returned an empty response")
