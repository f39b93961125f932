package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// DialogueAgent is the generative model behind the call. Converse receives
// the full dialogue history (system prompt excluded, latest user turn last)
// and returns one classified turn.
type DialogueAgent interface {
	Greet(ctx context.Context) (string, error)
	Converse(ctx context.Context, history []*schema.Message) (AgentReply, error)
}

// InventoryGateway mediates read-only catalog lookups on behalf of the
// dialogue agent. The returned string is always safe to feed back to the
// model: formatted rows, "no matching rows", or an "ERROR: ..." description.
// This boundary never returns an error to its caller.
type InventoryGateway interface {
	Query(ctx context.Context, query string) string
}

// Catalog is the product relation the gateway and the state machine read.
type Catalog interface {
	// Select runs a validated read-only query and returns column names plus
	// stringified rows.
	Select(ctx context.Context, query string) (cols []string, rows [][]string, err error)
	// FindProduct finds the closest-matching in-catalog product by name.
	// Returns ErrProductNotFound when nothing matches.
	FindProduct(ctx context.Context, name string) (*InventoryItem, error)
}

// OrderStore persists committed orders. Every accessor that names an order
// re-checks ownership against callerID and reports ErrOrderNotFound for both
// missing and foreign orders.
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	Last(ctx context.Context, callerID string) (*Order, error)
	List(ctx context.Context, callerID string) ([]Order, error)
	Get(ctx context.Context, callerID, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, callerID, orderID, status string) error
	Delete(ctx context.Context, callerID, orderID string) error
}

// OTPStore holds short-lived login codes for the order query surface.
type OTPStore interface {
	Put(ctx context.Context, phone, code string) error
	// Consume verifies and invalidates a code. A second Consume with the same
	// code fails.
	Consume(ctx context.Context, phone, code string) (bool, error)
}
