package host

import (
	"context"
	"fmt"

	"github.com/sandevgo/bizbot/pkg/log"
)

// TurnState tracks one query turn through its lifecycle.
type TurnState string

const (
	StateReceived   TurnState = "received"
	StateRetrieving TurnState = "retrieving"
	StateAssembling TurnState = "assembling"
	StateDispatched TurnState = "dispatched"
	StateCompleted  TurnState = "completed"
	StateFailed     TurnState = "failed"
)

// legalTransitions is the full transition table; anything else is a
// programming error. Failed is reachable from every live state.
var legalTransitions = map[TurnState][]TurnState{
	StateReceived:   {StateRetrieving, StateFailed},
	StateRetrieving: {StateAssembling, StateFailed},
	StateAssembling: {StateDispatched, StateFailed},
	StateDispatched: {StateCompleted, StateFailed},
}

type turn struct {
	sessionID string
	query     string
	state     TurnState
}

func newTurn(sessionID, query string) *turn {
	return &turn{
		sessionID: sessionID,
		query:     query,
		state:     StateReceived,
	}
}

func (t *turn) transition(ctx context.Context, to TurnState) error {
	for _, allowed := range legalTransitions[t.state] {
		if allowed == to {
			log.FromCtx(ctx).Debug().
				Str("component", "host").
				Str("session_id", t.sessionID).
				Str("from", string(t.state)).
				Str("to", string(to)).
				Msg("turn transition")
			t.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal turn transition %s -> %s", t.state, to)
}
