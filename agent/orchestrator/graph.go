package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/zaidtausif56/smart-calling-agent/agent/nodes"
)

// compileEventGraph builds the per-event pipeline. Nodes that have nothing to
// do for a decided event pass the state through, which keeps the graph linear
// instead of branching on every outcome.
func (o *Orchestrator) compileEventGraph(
	ctx context.Context,
) (compose.Runnable[nodex.EventInput, nodex.EventOutput], error) {
	graph := compose.NewGraph[nodex.EventInput, nodex.EventOutput]()

	if err := graph.AddLambdaNode("normalize_event",
		compose.InvokableLambda(func(ctx context.Context, in nodex.EventInput) (*nodex.EventState, error) {
			return nodex.NormalizeEvent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node normalize_event: %w", err)
	}

	if err := graph.AddLambdaNode("handle_silence",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.EventState) (*nodex.EventState, error) {
			return nodex.HandleSilence(in, o.maxSilenceStrikes)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node handle_silence: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_phase",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.EventState) (*nodex.EventState, error) {
			return o.dispatchPhase(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_phase: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.EventState) (nodex.EventOutput, error) {
			return nodex.FinalizeAction(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_action: %w", err)
	}

	edges := [][2]string{
		{compose.START, "normalize_event"},
		{"normalize_event", "handle_silence"},
		{"handle_silence", "dispatch_phase"},
		{"dispatch_phase", "finalize_action"},
		{"finalize_action", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_event"))
	if err != nil {
		return nil, fmt.Errorf("compile event graph: %w", err)
	}
	return runner, nil
}
