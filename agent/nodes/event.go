// Package node holds the per-event pipeline state and the phase-independent
// steps of call-event handling. The orchestrator composes these into a graph.
package node

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

type EventInput struct {
	Session *statex.CallSession
	Speech  string
	Now     time.Time
}

type EventOutput struct {
	Action contractx.VoiceAction
}

// EventState flows through the pipeline. A node that decides the outcome sets
// Action; later nodes pass through untouched state.
type EventState struct {
	Session *statex.CallSession
	Speech  string
	Now     time.Time

	Action *contractx.VoiceAction
}

// Decided reports whether a previous node already produced the voice action.
func (st *EventState) Decided() bool {
	return st != nil && st.Action != nil
}

// Decide records the outcome. Gathering actions keep the call open; ending
// actions terminate it after speaking.
func (st *EventState) Decide(text string, endCall bool) {
	st.Action = &contractx.VoiceAction{Text: text, EndCall: endCall}
}

// NormalizeEvent validates the raw event and prepares the pipeline state.
// Empty speech is legal; it means the gather timed out without the caller
// saying anything.
func NormalizeEvent(in EventInput) (*EventState, error) {
	if in.Session == nil {
		return nil, fmt.Errorf("%w: event session is nil", contractx.ErrValidation)
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &EventState{
		Session: in.Session,
		Speech:  strings.TrimSpace(in.Speech),
		Now:     now.UTC(),
	}, nil
}

// FinalizeAction closes the pipeline: every event must end with something to
// speak.
func FinalizeAction(st *EventState) (EventOutput, error) {
	if st == nil || st.Action == nil {
		return EventOutput{}, fmt.Errorf("%w: no voice action was decided", contractx.ErrValidation)
	}
	if strings.TrimSpace(st.Action.Text) == "" {
		return EventOutput{}, fmt.Errorf("%w: voice action text is empty", contractx.ErrValidation)
	}
	return EventOutput{Action: *st.Action}, nil
}
