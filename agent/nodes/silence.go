package node

import (
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

// DefaultMaxSilenceStrikes ends the call after this many consecutive empty
// gathers.
const DefaultMaxSilenceStrikes = 3

// silencePrompts escalate with each consecutive strike. The last entry is the
// polite termination line.
var silencePrompts = []string{
	"Hello? Are you still there?",
	"I could not hear you. Could you please say that again?",
	"It seems like now is not a good time to talk. I will call back another day. Goodbye!",
}

// HandleSilence escalates on empty speech and resets the strike counter
// otherwise. At the strike limit the session moves to the terminal phase and
// the call ends.
func HandleSilence(st *EventState, maxStrikes int) (*EventState, error) {
	if st.Decided() {
		return st, nil
	}
	if maxStrikes <= 0 {
		maxStrikes = DefaultMaxSilenceStrikes
	}

	if st.Speech != "" {
		st.Session.ResetSilence()
		return st, nil
	}

	strikes := st.Session.RecordSilence()
	if strikes >= maxStrikes {
		st.Session.Phase = statex.PhaseEnded
		st.Decide(silencePrompts[len(silencePrompts)-1], true)
		return st, nil
	}

	idx := strikes - 1
	if idx >= len(silencePrompts)-1 {
		idx = len(silencePrompts) - 2
	}
	st.Decide(silencePrompts[idx], false)
	return st, nil
}
