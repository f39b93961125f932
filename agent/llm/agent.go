// Package llm adapts a chat model into the DialogueAgent contract. This is
// the only place the sentinel text protocol is parsed; everything downstream
// works with the structured AgentReply.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

// FallbackGreeting is spoken when the model cannot produce an opening line.
const FallbackGreeting = "Hello! This is Alice from V-I-T Marketplace, your one-stop destination for amazing deals and top-quality products. May I take a moment to share some exciting offers with you?"

// ModelBuilder produces the backing chat model. pkg/openrouter satisfies it.
type ModelBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

// GenerativeAgent drives one chat model with the embedded sales prompt.
type GenerativeAgent struct {
	model        model.BaseChatModel
	systemPrompt string
}

var _ contractx.DialogueAgent = (*GenerativeAgent)(nil)

func New(ctx context.Context, builder ModelBuilder, systemPrompt string) (*GenerativeAgent, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: model builder is required", contractx.ErrValidation)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}

	m, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: build chat model: %v", contractx.ErrModelInvoke, err)
	}

	return &GenerativeAgent{model: m, systemPrompt: systemPrompt}, nil
}

// Greet asks the model for its opening line. The caller decides what to do
// when this fails; FallbackGreeting is the usual substitute.
func (a *GenerativeAgent) Greet(ctx context.Context) (string, error) {
	out, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(a.systemPrompt),
		schema.UserMessage("The call has just connected. Open the conversation."),
	})
	if err != nil {
		return "", fmt.Errorf("%w: greeting: %v", contractx.ErrModelInvoke, err)
	}

	reply := Classify(out.Content)
	if reply.Kind == contractx.ReplyLookup || strings.TrimSpace(reply.Text) == "" {
		return FallbackGreeting, nil
	}
	return reply.Text, nil
}

func (a *GenerativeAgent) Converse(ctx context.Context, history []*schema.Message) (contractx.AgentReply, error) {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(a.systemPrompt))
	msgs = append(msgs, history...)

	out, err := a.model.Generate(ctx, msgs)
	if err != nil {
		return contractx.AgentReply{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	reply := Classify(out.Content)
	if reply.Kind == contractx.ReplyLookup && reply.Query == "" {
		return contractx.AgentReply{}, fmt.Errorf("%w: lookup with empty query", contractx.ErrSchemaViolation)
	}
	return reply, nil
}

// Classify turns one raw model reply into its structured form. A lookup is a
// first line opening with the lookup prefix; a trailing end-call sentinel is
// stripped from the spoken text.
func Classify(raw string) contractx.AgentReply {
	trimmed := strings.TrimSpace(raw)

	firstLine := trimmed
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if rest, ok := cutPrefixFold(firstLine, contractx.LookupPrefix); ok {
		return contractx.AgentReply{
			Kind:  contractx.ReplyLookup,
			Query: strings.TrimSpace(rest),
			Raw:   raw,
		}
	}

	// The end sentinel is matched case-sensitively so a spoken "exit" never
	// hangs up the call.
	if body, ok := strings.CutSuffix(trimmed, contractx.EndCallSentinel); ok {
		return contractx.AgentReply{
			Kind: contractx.ReplyEndCall,
			Text: strings.TrimSpace(body),
			Raw:  raw,
		}
	}

	return contractx.AgentReply{Kind: contractx.ReplyFinal, Text: trimmed, Raw: raw}
}

// FormatLookupResult builds the message fed back to the model after a lookup.
func FormatLookupResult(result string) string {
	return contractx.LookupResultPrefix + " " + result
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
