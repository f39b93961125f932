package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	extractx "github.com/zaidtausif56/smart-calling-agent/agent/extract"
	nodex "github.com/zaidtausif56/smart-calling-agent/agent/nodes"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

var (
	buyIntentRe   = regexp.MustCompile(`(?i)\b(buy|order|purchase|want)\b`)
	affirmativeRe = regexp.MustCompile(`(?i)\b(yes|confirm|sure|ok|okay|yeah|yep)\b`)

	productTailRe   = regexp.MustCompile(`(?i)\b(?:buy|order|purchase|want)\b\s+(.+)$`)
	tailBoilerRe    = regexp.MustCompile(`(?i)^(?:to\s+)?(?:buy|order|purchase|get|have)?\s*(?:a|an|some|the)?\s+`)
	leadingDigitsRe = regexp.MustCompile(`^\d+\s*`)
)

// isAffirmative implements the deliberate simplification of the design:
// anything that does not contain an affirmative word counts as negative.
func isAffirmative(speech string) bool {
	return affirmativeRe.MatchString(speech)
}

// dispatchPhase routes one non-silent event to the handler for the session's
// current phase.
func (o *Orchestrator) dispatchPhase(ctx context.Context, st *nodex.EventState) (*nodex.EventState, error) {
	if st.Decided() {
		return st, nil
	}

	sess := st.Session
	if sess.Phase == statex.PhaseStart {
		// Continue events can arrive for sessions created without a start
		// event; treat them as free-form conversation.
		sess.Phase = statex.PhaseDefault
	}

	switch sess.Phase {
	case statex.PhaseDefault:
		o.handleDefault(ctx, st)
	case statex.PhaseAwaitingProduct:
		o.handleAwaitingProduct(ctx, st)
	case statex.PhaseAwaitingConfirm:
		o.handleAwaitingConfirm(st)
	case statex.PhaseAwaitingReorderConfirm:
		o.handleAwaitingReorderConfirm(st)
	case statex.PhaseAwaitingAddress:
		o.handleAwaitingAddress(st)
	case statex.PhaseAwaitingFinalConfirm:
		o.handleAwaitingFinalConfirm(ctx, st)
	default:
		sess.Phase = statex.PhaseEnded
		st.Decide("Thank you for calling. Goodbye!", true)
	}
	return st, nil
}

// handleDefault is the free-form conversation phase: buy intent short-circuits
// into product capture, everything else goes through the tool-calling loop.
func (o *Orchestrator) handleDefault(ctx context.Context, st *nodex.EventState) {
	sess := st.Session

	if buyIntentRe.MatchString(st.Speech) {
		extractx.Update(&sess.Extracted, st.Speech, "")
		// "I want to buy a Cotton T-Shirt" names the product already; only
		// ask when the utterance carries no recognizable one.
		if name := productCandidate(st.Speech); name != "" && o.lookupIntoConfirm(ctx, st, name) {
			return
		}
		sess.Phase = statex.PhaseAwaitingProduct
		st.Decide("Sure! What product would you like to buy?", false)
		return
	}

	res := o.engine.Resolve(ctx, sess, st.Speech)
	extractx.Update(&sess.Extracted, st.Speech, res.Text)

	if !res.EndCall {
		st.Decide(res.Text, false)
		return
	}

	// The agent wants to wrap up. If the conversation produced a concrete
	// purchase, capture the delivery address before letting go; otherwise end
	// the call as requested.
	ec := sess.Extracted
	if ec.LastProduct != "" && ec.LastUnitPrice > 0 {
		sess.BeginDraft(ec.LastProduct, ec.LastQuantity, ec.LastUnitPrice)
		sess.Phase = statex.PhaseAwaitingAddress
		st.Decide(res.Text+" Before we finish, please tell me your delivery address.", false)
		return
	}

	sess.Phase = statex.PhaseEnded
	st.Decide(res.Text, true)
}

func (o *Orchestrator) handleAwaitingProduct(ctx context.Context, st *nodex.EventState) {
	if o.lookupIntoConfirm(ctx, st, st.Speech) {
		return
	}
	if !st.Decided() {
		st.Decide("Sorry, I could not find that product. Could you try saying another name?", false)
	}
}

// lookupIntoConfirm looks the named product up in the catalog and, when it is
// in stock, caches the draft and moves to confirmation. It reports whether it
// decided the event; a plain not-found leaves the decision to the caller.
func (o *Orchestrator) lookupIntoConfirm(ctx context.Context, st *nodex.EventState, name string) bool {
	sess := st.Session

	item, err := o.catalog.FindProduct(ctx, name)
	switch {
	case errors.Is(err, contractx.ErrProductNotFound):
		return false
	case err != nil:
		log.Warn().Err(err).Str("caller", sess.CallerID).Msg("product lookup failed")
		st.Decide("Sorry, something went wrong while checking that product. Could you say the name again?", false)
		return true
	}

	if item.Stock <= 0 {
		sess.Phase = statex.PhaseDefault
		st.Decide(fmt.Sprintf("I'm sorry, the %s is out of stock right now. Can I interest you in something else?", item.Name), false)
		return true
	}

	qty := sess.Extracted.LastQuantity
	if qty <= 0 {
		qty = 1
	}
	sess.BeginDraft(item.Name, qty, item.Price)
	sess.Extracted.LastProduct = item.Name
	sess.Extracted.LastUnitPrice = item.Price
	sess.Phase = statex.PhaseAwaitingConfirm
	st.Decide(fmt.Sprintf("One %s costs %s rupees and we have %d in stock. Would you like to confirm your order?",
		item.Name, formatPrice(item.Price), item.Stock), false)
	return true
}

// productCandidate strips buy-intent boilerplate off an utterance, leaving
// the part that might name a product.
func productCandidate(speech string) string {
	m := productTailRe.FindStringSubmatch(speech)
	if m == nil {
		return ""
	}
	tail := strings.TrimSpace(m[1])
	tail = tailBoilerRe.ReplaceAllString(tail, "")
	tail = leadingDigitsRe.ReplaceAllString(tail, "")
	return strings.TrimSpace(tail)
}

func (o *Orchestrator) handleAwaitingConfirm(st *nodex.EventState) {
	sess := st.Session

	if !isAffirmative(st.Speech) {
		sess.ClearDraft()
		sess.Phase = statex.PhaseDefault
		st.Decide("No problem, I have cancelled that. Would you like to check other products?", false)
		return
	}

	sess.Phase = statex.PhaseAwaitingAddress
	st.Decide("Great! Please tell me your delivery address.", false)
}

func (o *Orchestrator) handleAwaitingReorderConfirm(st *nodex.EventState) {
	sess := st.Session

	if !isAffirmative(st.Speech) {
		sess.ClearDraft()
		sess.Phase = statex.PhaseDefault
		st.Decide("Alright, let's explore something new! What can I help you find today?", false)
		return
	}

	src := sess.SourceOrder
	if src == nil {
		sess.Phase = statex.PhaseDefault
		st.Decide("I'm sorry, I could not find your previous order. What would you like to buy today?", false)
		return
	}

	sess.BeginDraft(src.Product, src.Quantity, src.UnitPrice())
	sess.Phase = statex.PhaseAwaitingAddress
	st.Decide(fmt.Sprintf("Wonderful! I'll repeat your order for %d %s. Please tell me your delivery address.",
		src.Quantity, src.Product), false)
}

func (o *Orchestrator) handleAwaitingAddress(st *nodex.EventState) {
	sess := st.Session

	if err := sess.AttachAddress(st.Speech); err != nil {
		if errors.Is(err, contractx.ErrAddressTooShort) {
			st.Decide("That address seems a little short. Could you please repeat your full delivery address?", false)
			return
		}
		// Draft vanished mid-flow; restart the purchase rather than commit
		// something malformed.
		sess.ClearDraft()
		sess.Phase = statex.PhaseDefault
		st.Decide("I'm sorry, I lost track of your order. What would you like to buy?", false)
		return
	}

	d := sess.Draft
	total := d.UnitPrice * float64(d.Quantity)
	sess.Phase = statex.PhaseAwaitingFinalConfirm
	st.Decide(fmt.Sprintf("I have %d %s for a total of %s rupees, delivered to %s. Shall I place the order?",
		d.Quantity, d.Product, formatPrice(total), d.Address), false)
}

func (o *Orchestrator) handleAwaitingFinalConfirm(ctx context.Context, st *nodex.EventState) {
	sess := st.Session

	if !isAffirmative(st.Speech) {
		sess.ClearDraft()
		sess.Phase = statex.PhaseDefault
		st.Decide("Okay, I have cancelled that order. Is there anything else I can help you with?", false)
		return
	}

	order, err := o.commitDraft(ctx, sess)
	if errors.Is(err, contractx.ErrDraftIncomplete) {
		sess.ClearDraft()
		sess.Phase = statex.PhaseDefault
		st.Decide("I'm sorry, I'm missing some order details. Let's try that again. What would you like to buy?", false)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("caller", sess.CallerID).Msg("order commit failed")
		st.Decide("Sorry, there was an issue confirming your order. Could you say confirm once more?", false)
		return
	}

	sess.ClearDraft()
	sess.Phase = statex.PhaseEnded
	st.Decide(fmt.Sprintf("Your order for %d %s has been placed. Thank you for shopping with V-I-T Marketplace. Goodbye!",
		order.Quantity, order.Product), true)
}

// commitDraft validates the draft, assigns a fresh identity, computes the
// total exactly once, and persists the order. Duplicate confirmations create
// duplicate orders; there is no idempotency key.
func (o *Orchestrator) commitDraft(ctx context.Context, sess *statex.CallSession) (*contractx.Order, error) {
	d := sess.Draft
	if !d.ReadyToCommit() {
		return nil, contractx.ErrDraftIncomplete
	}

	order := &contractx.Order{
		ID:         uuid.NewString(),
		CallerID:   sess.CallerID,
		Product:    d.Product,
		Quantity:   d.Quantity,
		TotalPrice: d.UnitPrice * float64(d.Quantity),
		Address:    d.Address,
		Status:     contractx.OrderStatusConfirmed,
		CreatedAt:  o.now().UTC(),
	}
	if err := o.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	log.Info().Str("caller", sess.CallerID).Str("order", order.ID).
		Str("product", order.Product).Int("quantity", order.Quantity).
		Float64("total", order.TotalPrice).Msg("order committed")
	return order, nil
}

// formatPrice renders whole-rupee amounts without a decimal tail.
func formatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
