package core

import "context"

// CmdRouter dispatches slash-prefixed chat input. Execute reports handled=false
// for plain text so the caller can route it to the question pipeline instead.
type CmdRouter interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
	ListCommands() []Command
}

// Command is one chat command, shared by the CLI and the Telegram transport.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}
