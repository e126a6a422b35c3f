// Package llm defines the boundary to the AI-invocation collaborator. The
// core never performs the network call itself; it assembles context, hands it
// to a Provider implementation owned by the caller, and interprets whatever
// text comes back.
package llm

import "context"

// CompletionRequest carries assembled context to a provider.
type CompletionRequest struct {
	Prompt    string
	Model     string // optional override; empty uses the provider default
	MaxTokens int
}

// CompletionResponse is the raw provider answer fed to the response parser.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is implemented outside the core. Implementations must be safe for
// concurrent use; the core never assumes a call succeeds and accepts either
// outcome.
type Provider interface {
	// Complete submits the prompt and returns the model's raw answer.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name identifies the provider for logging and result attribution.
	Name() string
}
