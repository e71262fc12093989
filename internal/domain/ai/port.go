package ai

import "context"

// Client is the chat-completion transport used by the task executor. It
// returns the raw assistant text for one system/user prompt pair. An empty
// model selects the client's default.
type Client interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}
