package contract

import "time"

// ReplyKind discriminates what the dialogue agent wants to do with its turn.
type ReplyKind string

const (
	// ReplyLookup asks the engine to run a read-only catalog query and feed
	// the result back before the agent produces its final utterance.
	ReplyLookup ReplyKind = "lookup"
	// ReplyFinal is a finished natural-language utterance for the caller.
	ReplyFinal ReplyKind = "final"
	// ReplyEndCall is a final utterance after which the call should end.
	ReplyEndCall ReplyKind = "end_call"
)

// AgentReply is the structured form of one dialogue-agent turn. The sentinel
// markers embedded in the raw model text are parsed exactly once, at the
// model-client boundary; everything downstream switches on Kind.
type AgentReply struct {
	Kind ReplyKind

	// Text is the utterance (Final/EndCall), with sentinels stripped.
	Text string
	// Query is the requested catalog query (Lookup only).
	Query string
	// Raw is the unmodified model output, kept for dialogue history.
	Raw string
}

// VoiceAction tells the telephony boundary what to speak and whether to keep
// listening afterwards.
type VoiceAction struct {
	Text    string `json:"text"`
	EndCall bool   `json:"end_call"`
}

// InventoryItem is a row of the read-only product catalog.
type InventoryItem struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description"`
}

// Order statuses. Confirmed is the only status the call flow assigns; the
// authenticated order surface may move an order to any of the others.
const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is a committed purchase. Immutable except for Status.
type Order struct {
	ID         string    `json:"id"`
	CallerID   string    `json:"caller_id"`
	Product    string    `json:"product"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Address    string    `json:"address"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnitPrice derives the per-unit price from the committed total. Used by the
// reorder flow to seed a draft from a prior order.
func (o *Order) UnitPrice() float64 {
	if o == nil || o.Quantity <= 0 {
		return 0
	}
	return o.TotalPrice / float64(o.Quantity)
}
