// Package orchestrator owns the per-caller state machine that turns call
// events into spoken responses and, eventually, committed orders.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	enginex "github.com/zaidtausif56/smart-calling-agent/agent/engine"
	llmx "github.com/zaidtausif56/smart-calling-agent/agent/llm"
	nodex "github.com/zaidtausif56/smart-calling-agent/agent/nodes"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

type Config struct {
	MaxSilenceStrikes int
}

// Orchestrator handles one call event at a time per caller: the session store
// serializes events for the same caller, so every phase transition is a plain
// read-modify-write on the locked session.
type Orchestrator struct {
	sessions *statex.Store
	agent    contractx.DialogueAgent
	engine   *enginex.Engine
	catalog  contractx.Catalog
	orders   contractx.OrderStore

	graphRunner compose.Runnable[nodex.EventInput, nodex.EventOutput]

	maxSilenceStrikes int
	now               func() time.Time
}

func New(
	sessions *statex.Store,
	agent contractx.DialogueAgent,
	eng *enginex.Engine,
	catalog contractx.Catalog,
	orders contractx.OrderStore,
	cfg Config,
) (*Orchestrator, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if agent == nil {
		return nil, errors.New("dialogue agent is required")
	}
	if eng == nil {
		return nil, errors.New("tool loop engine is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if orders == nil {
		return nil, errors.New("order store is required")
	}

	maxStrikes := cfg.MaxSilenceStrikes
	if maxStrikes <= 0 {
		maxStrikes = nodex.DefaultMaxSilenceStrikes
	}

	o := &Orchestrator{
		sessions:          sessions,
		agent:             agent,
		engine:            eng,
		catalog:           catalog,
		orders:            orders,
		maxSilenceStrikes: maxStrikes,
		now:               time.Now,
	}

	runner, err := o.compileEventGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = runner

	return o, nil
}

// StartCall resolves (or creates) the caller's session and produces the
// opening utterance: a reorder prompt for returning customers, the agent's
// greeting otherwise.
func (o *Orchestrator) StartCall(ctx context.Context, callerID string) (contractx.VoiceAction, error) {
	if callerID == "" {
		return contractx.VoiceAction{}, fmt.Errorf("%w: caller id is empty", contractx.ErrValidation)
	}

	var action contractx.VoiceAction
	err := o.sessions.Update(callerID, o.now(), func(sess *statex.CallSession) error {
		last, err := o.orders.Last(ctx, callerID)
		switch {
		case err == nil && last != nil:
			sess.SourceOrder = last
			sess.Phase = statex.PhaseAwaitingReorderConfirm
			action = contractx.VoiceAction{Text: fmt.Sprintf(
				"Welcome back! Your last order was for %d %s. Would you like to reorder?",
				last.Quantity, last.Product)}
			return nil
		case err != nil && !errors.Is(err, contractx.ErrOrderNotFound):
			log.Warn().Err(err).Str("caller", callerID).Msg("last order lookup failed")
		}

		greeting, gerr := o.agent.Greet(ctx)
		if gerr != nil {
			log.Warn().Err(gerr).Str("caller", callerID).Msg("greeting generation failed")
			greeting = llmx.FallbackGreeting
		}
		sess.Phase = statex.PhaseDefault
		sess.AppendAssistant(greeting)
		action = contractx.VoiceAction{Text: greeting}
		return nil
	})
	return action, err
}

// HandleEvent processes one "continue call" event: recognized speech, or an
// empty string when the gather timed out in silence.
func (o *Orchestrator) HandleEvent(ctx context.Context, callerID, speech string) (contractx.VoiceAction, error) {
	if callerID == "" {
		return contractx.VoiceAction{}, fmt.Errorf("%w: caller id is empty", contractx.ErrValidation)
	}

	var action contractx.VoiceAction
	err := o.sessions.Update(callerID, o.now(), func(sess *statex.CallSession) error {
		out, err := o.graphRunner.Invoke(ctx, nodex.EventInput{
			Session: sess,
			Speech:  speech,
			Now:     o.now(),
		})
		if err != nil {
			return err
		}
		action = out.Action
		return nil
	})
	return action, err
}

// EndCall discards the caller's session on an explicit hangup. Any operation
// still in flight for the caller finishes against the dropped session and its
// result is discarded.
func (o *Orchestrator) EndCall(callerID string) {
	o.sessions.Drop(callerID)
}
