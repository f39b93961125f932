// Package engine drives one dialogue-agent turn, transparently resolving the
// catalog lookups the agent requests before a final utterance comes back.
package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

const (
	// DefaultMaxIterations caps lookup round-trips within one caller turn, so
	// an agent that keeps asking for data can never loop forever.
	DefaultMaxIterations = 5

	// FallbackUtterance replaces the reply when the agent fails, exhausts the
	// iteration cap, or produces output unsafe to speak.
	FallbackUtterance = "I'm sorry, I'm having a little trouble with that right now. Could you please say that again?"

	// FarewellUtterance is spoken when the agent ends the call without words.
	FarewellUtterance = "Thank you for calling. Goodbye!"
)

// Result is the outcome of one resolved turn.
type Result struct {
	Text    string
	EndCall bool
}

// Engine owns the bounded tool-calling loop between the dialogue agent and
// the inventory gateway.
type Engine struct {
	agent         contractx.DialogueAgent
	inventory     contractx.InventoryGateway
	maxIterations int
}

type Option func(*Engine)

func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

func New(agent contractx.DialogueAgent, inventory contractx.InventoryGateway, opts ...Option) *Engine {
	e := &Engine{
		agent:         agent,
		inventory:     inventory,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Resolve appends the caller's utterance to the session history, runs the
// agent until it produces a final reply (resolving at most one lookup per
// agent turn), and returns a spoken-safe result. Agent failures and cap
// exhaustion degrade to a fallback utterance; Resolve never returns an error
// because the caller must always have something to speak.
func (e *Engine) Resolve(ctx context.Context, sess *statex.CallSession, userText string) Result {
	sess.AppendUser(userText)

	for i := 0; i < e.maxIterations; i++ {
		reply, err := e.agent.Converse(ctx, sess.History)
		if err != nil {
			log.Error().Err(err).Str("caller", sess.CallerID).Msg("dialogue agent failed")
			return Result{Text: FallbackUtterance}
		}
		sess.AppendAssistant(reply.Raw)

		switch reply.Kind {
		case contractx.ReplyLookup:
			result := e.inventory.Query(ctx, reply.Query)
			sess.History = append(sess.History, lookupResultMessage(result))

		case contractx.ReplyEndCall:
			text := Sanitize(reply.Text)
			if text == "" {
				text = FarewellUtterance
			}
			return Result{Text: text, EndCall: true}

		default:
			text := Sanitize(reply.Text)
			if text == "" {
				text = FallbackUtterance
			}
			return Result{Text: text}
		}
	}

	log.Warn().Str("caller", sess.CallerID).Int("cap", e.maxIterations).
		Msg("tool loop iteration cap reached")
	return Result{Text: FallbackUtterance}
}
