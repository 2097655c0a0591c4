package ai

import "context"

// Responder generates assistant replies from a prompt that already
// carries the conversation history and order context.
// Implementations must be thread-safe for concurrent use.
type Responder interface {
	// Respond generates a single completion for the prompt.
	// Returns an error if the completion fails.
	Respond(ctx context.Context, prompt string) (string, error)

	// Close releases resources held by the responder.
	// After Close is called, the responder should not be used.
	Close() error
}
