package state

import (
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

// Phase is the discrete stage of the purchase conversation a session is in.
// Transitions are owned exclusively by the orchestrator; no other component
// writes Phase.
type Phase string

const (
	PhaseStart                 Phase = "start"
	PhaseDefault               Phase = "default"
	PhaseAwaitingProduct       Phase = "awaiting_product"
	PhaseAwaitingConfirm       Phase = "awaiting_confirm"
	PhaseAwaitingReorderConfirm Phase = "awaiting_reorder_confirm"
	PhaseAwaitingAddress       Phase = "awaiting_address"
	PhaseAwaitingFinalConfirm  Phase = "awaiting_final_confirm"
	PhaseEnded                 Phase = "ended"
)

// MinAddressLength is the smallest delivery address accepted by AttachAddress.
const MinAddressLength = 6

// DraftOrder is an in-progress, uncommitted purchase intent.
type DraftOrder struct {
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Address   string  `json:"address"`
}

// ReadyToCommit reports whether every field a commit requires is present.
func (d *DraftOrder) ReadyToCommit() bool {
	return d != nil &&
		strings.TrimSpace(d.Product) != "" &&
		d.Quantity > 0 &&
		d.UnitPrice > 0 &&
		len(strings.TrimSpace(d.Address)) >= MinAddressLength
}

// ExtractedContext holds the freshest structured values mined from the
// conversation. Fields persist until overwritten by a newer match.
type ExtractedContext struct {
	LastProduct   string  `json:"last_product"`
	LastUnitPrice float64 `json:"last_unit_price"`
	LastQuantity  int     `json:"last_quantity"`
	LastTotal     float64 `json:"last_total"`
}

// CallSession is the mutable per-caller state for the duration of one call.
// It is only ever touched while the session store holds the caller's lock.
type CallSession struct {
	CallerID string `json:"caller_id"`

	Phase        Phase             `json:"phase"`
	SilenceCount int               `json:"silence_count"`
	Draft        *DraftOrder       `json:"draft,omitempty"`
	Extracted    ExtractedContext  `json:"extracted"`
	// SourceOrder is the prior order a reorder confirmation would repeat.
	SourceOrder *contractx.Order `json:"source_order,omitempty"`

	// History is the dialogue so far (user and assistant turns, raw model
	// text on the assistant side), fed back to the agent each turn.
	History []*schema.Message `json:"-"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCallSession(callerID string, now time.Time) *CallSession {
	return &CallSession{
		CallerID:  callerID,
		Phase:     PhaseStart,
		StartedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *CallSession) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// BeginDraft stores a pending purchase on the session. Nothing is persisted.
func (s *CallSession) BeginDraft(product string, quantity int, unitPrice float64) {
	if quantity <= 0 {
		quantity = 1
	}
	s.Draft = &DraftOrder{
		Product:   strings.TrimSpace(product),
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

// AttachAddress sets the delivery address on the current draft. Inputs below
// the minimum length are rejected with ErrAddressTooShort; the caller should
// be re-prompted, nothing about the session changes.
func (s *CallSession) AttachAddress(address string) error {
	address = strings.TrimSpace(address)
	if len(address) < MinAddressLength {
		return contractx.ErrAddressTooShort
	}
	if s.Draft == nil {
		return contractx.ErrDraftIncomplete
	}
	s.Draft.Address = address
	return nil
}

func (s *CallSession) ClearDraft() {
	s.Draft = nil
	s.SourceOrder = nil
}

// RecordSilence bumps the silence counter and reports the new count.
func (s *CallSession) RecordSilence() int {
	s.SilenceCount++
	return s.SilenceCount
}

// ResetSilence clears the counter. Called on any non-empty utterance.
func (s *CallSession) ResetSilence() {
	s.SilenceCount = 0
}

func (s *CallSession) AppendUser(text string) {
	s.History = append(s.History, schema.UserMessage(text))
}

func (s *CallSession) AppendAssistant(raw string) {
	s.History = append(s.History, schema.AssistantMessage(raw, nil))
}
