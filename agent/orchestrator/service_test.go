package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	enginex "github.com/zaidtausif56/smart-calling-agent/agent/engine"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

type fakeAgent struct {
	greeting string
	greetErr error
	replies  []contractx.AgentReply
	calls    int
}

func (f *fakeAgent) Greet(ctx context.Context) (string, error) {
	if f.greetErr != nil {
		return "", f.greetErr
	}
	if f.greeting == "" {
		return "Hello from the fake agent!", nil
	}
	return f.greeting, nil
}

func (f *fakeAgent) Converse(ctx context.Context, history []*schema.Message) (contractx.AgentReply, error) {
	f.calls++
	idx := f.calls - 1
	if idx >= len(f.replies) {
		return contractx.AgentReply{Kind: contractx.ReplyFinal, Text: "Anything else I can help with?", Raw: "Anything else I can help with?"}, nil
	}
	return f.replies[idx], nil
}

type fakeGateway struct{}

func (fakeGateway) Query(ctx context.Context, query string) string { return "no matching rows" }

type fakeCatalog struct {
	items []contractx.InventoryItem
}

func (f *fakeCatalog) Select(ctx context.Context, query string) ([]string, [][]string, error) {
	return nil, nil, nil
}

func (f *fakeCatalog) FindProduct(ctx context.Context, name string) (*contractx.InventoryItem, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, contractx.ErrProductNotFound
	}
	for i := range f.items {
		if strings.Contains(needle, strings.ToLower(f.items[i].Name)) ||
			strings.Contains(strings.ToLower(f.items[i].Name), needle) {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, contractx.ErrProductNotFound
}

type fakeOrders struct {
	last    *contractx.Order
	created []*contractx.Order
}

func (f *fakeOrders) Create(ctx context.Context, o *contractx.Order) error {
	cp := *o
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeOrders) Last(ctx context.Context, callerID string) (*contractx.Order, error) {
	if f.last == nil {
		return nil, contractx.ErrOrderNotFound
	}
	cp := *f.last
	return &cp, nil
}

func (f *fakeOrders) List(ctx context.Context, callerID string) ([]contractx.Order, error) {
	return nil, nil
}

func (f *fakeOrders) Get(ctx context.Context, callerID, orderID string) (*contractx.Order, error) {
	return nil, contractx.ErrOrderNotFound
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, callerID, orderID, status string) error {
	return contractx.ErrOrderNotFound
}

func (f *fakeOrders) Delete(ctx context.Context, callerID, orderID string) error {
	return contractx.ErrOrderNotFound
}

func storeCatalog() *fakeCatalog {
	return &fakeCatalog{items: []contractx.InventoryItem{
		{Name: "Cotton T-Shirt", Category: "Clothing", Brand: "Essentials", Price: 299, Stock: 150},
		{Name: "Denim Jeans", Category: "Clothing", Brand: "Levis", Price: 1499, Stock: 75},
		{Name: "Gramophone", Category: "Antiques", Brand: "HMV", Price: 8000, Stock: 0},
	}}
}

func newTestOrchestrator(t *testing.T, agent *fakeAgent, orders *fakeOrders) (*Orchestrator, *statex.Store) {
	t.Helper()
	if agent == nil {
		agent = &fakeAgent{}
	}
	if orders == nil {
		orders = &fakeOrders{}
	}
	sessions := statex.NewStore()
	eng := enginex.New(agent, fakeGateway{})
	o, err := New(sessions, agent, eng, storeCatalog(), orders, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o, sessions
}

func mustPhase(t *testing.T, sessions *statex.Store, caller string, want statex.Phase) {
	t.Helper()
	snap, ok := sessions.Snapshot(caller)
	if !ok {
		t.Fatalf("session for %s missing", caller)
	}
	if snap.Phase != want {
		t.Fatalf("phase = %s, want %s", snap.Phase, want)
	}
}

const caller = "+911234567890"

func TestPurchaseScenarioEndToEnd(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{}
	o, sessions := newTestOrchestrator(t, nil, orders)
	ctx := context.Background()

	got, err := o.HandleEvent(ctx, caller, "I want to buy a Cotton T-Shirt")
	if err != nil {
		t.Fatalf("event 1: %v", err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingConfirm)
	if !strings.Contains(got.Text, "299") {
		t.Fatalf("reply must mention the price, got %q", got.Text)
	}
	if !strings.Contains(got.Text, "150") {
		t.Fatalf("reply must mention the stock count, got %q", got.Text)
	}

	if _, err := o.HandleEvent(ctx, caller, "yes"); err != nil {
		t.Fatalf("event 2: %v", err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingAddress)

	if _, err := o.HandleEvent(ctx, caller, "12 Baker Street, Chennai"); err != nil {
		t.Fatalf("event 3: %v", err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingFinalConfirm)

	got, err = o.HandleEvent(ctx, caller, "confirm")
	if err != nil {
		t.Fatalf("event 4: %v", err)
	}
	if !got.EndCall {
		t.Fatal("final confirmation must end the call")
	}
	if sessions.Contains(caller) {
		t.Fatal("session must be removed after commit")
	}

	if len(orders.created) != 1 {
		t.Fatalf("orders committed = %d, want 1", len(orders.created))
	}
	ord := orders.created[0]
	if ord.Product != "Cotton T-Shirt" || ord.Quantity != 1 || ord.TotalPrice != 299 {
		t.Fatalf("order = %+v", ord)
	}
	if ord.Status != contractx.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", ord.Status)
	}
	if ord.CallerID != caller {
		t.Fatalf("caller id = %s", ord.CallerID)
	}
	if ord.ID == "" {
		t.Fatal("order must get an identity at commit")
	}
}

func TestBuyIntentWithoutProductAsks(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)

	got, err := o.HandleEvent(context.Background(), caller, "i would like to buy something nice")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingProduct)
	if !strings.Contains(strings.ToLower(got.Text), "what product") {
		t.Fatalf("got %q", got.Text)
	}

	// Product named in the follow-up turn.
	got, err = o.HandleEvent(context.Background(), caller, "denim jeans")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingConfirm)
	if !strings.Contains(got.Text, "1499") {
		t.Fatalf("got %q", got.Text)
	}
}

func TestUnknownProductReasks(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.HandleEvent(ctx, caller, "i want to buy a flying carpet")
	mustPhase(t, sessions, caller, statex.PhaseAwaitingProduct)

	got, err := o.HandleEvent(ctx, caller, "a nicer flying carpet")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingProduct)
	if !strings.Contains(strings.ToLower(got.Text), "could you try") {
		t.Fatalf("got %q", got.Text)
	}
}

func TestOutOfStockFallsBackToConversation(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.HandleEvent(ctx, caller, "i want to buy hmm")
	got, err := o.HandleEvent(ctx, caller, "gramophone")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseDefault)
	if !strings.Contains(strings.ToLower(got.Text), "out of stock") {
		t.Fatalf("got %q", got.Text)
	}
}

func TestNegativeConfirmClearsDraft(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.HandleEvent(ctx, caller, "I want to buy a Cotton T-Shirt")
	mustPhase(t, sessions, caller, statex.PhaseAwaitingConfirm)

	_, err := o.HandleEvent(ctx, caller, "no, not today")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseDefault)

	snap, _ := sessions.Snapshot(caller)
	if snap.Draft != nil {
		t.Fatal("negative confirmation must clear the draft")
	}
}

func TestAddressTooShortReprompts(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.HandleEvent(ctx, caller, "I want to buy a Cotton T-Shirt")
	_, _ = o.HandleEvent(ctx, caller, "yes")
	mustPhase(t, sessions, caller, statex.PhaseAwaitingAddress)

	got, err := o.HandleEvent(ctx, caller, "12 A")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingAddress)
	if !strings.Contains(strings.ToLower(got.Text), "address") {
		t.Fatalf("got %q", got.Text)
	}
}

func TestFinalConfirmNegativeCancels(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{}
	o, sessions := newTestOrchestrator(t, nil, orders)
	ctx := context.Background()

	_, _ = o.HandleEvent(ctx, caller, "I want to buy a Cotton T-Shirt")
	_, _ = o.HandleEvent(ctx, caller, "yes")
	_, _ = o.HandleEvent(ctx, caller, "42 MG Road, Pune")
	mustPhase(t, sessions, caller, statex.PhaseAwaitingFinalConfirm)

	_, err := o.HandleEvent(ctx, caller, "actually no")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseDefault)
	if len(orders.created) != 0 {
		t.Fatalf("no order may be committed on a negative, got %d", len(orders.created))
	}
}

func TestStartCallGreetsNewCaller(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{greeting: "Welcome to V-I-T Marketplace!"}
	o, sessions := newTestOrchestrator(t, agent, nil)

	got, err := o.StartCall(context.Background(), caller)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "Welcome to V-I-T Marketplace!" || got.EndCall {
		t.Fatalf("got %+v", got)
	}
	mustPhase(t, sessions, caller, statex.PhaseDefault)
}

func TestStartCallGreetingFailureFallsBack(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{greetErr: fmt.Errorf("model down")}
	o, _ := newTestOrchestrator(t, agent, nil)

	got, err := o.StartCall(context.Background(), caller)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text == "" || got.EndCall {
		t.Fatalf("fallback greeting expected, got %+v", got)
	}
}

func TestReorderFlow(t *testing.T) {
	t.Parallel()

	prior := &contractx.Order{
		ID:         "ord-1",
		CallerID:   caller,
		Product:    "Denim Jeans",
		Quantity:   2,
		TotalPrice: 2998,
		Address:    "42 MG Road, Pune",
		Status:     contractx.OrderStatusConfirmed,
		CreatedAt:  time.Now().Add(-24 * time.Hour),
	}
	orders := &fakeOrders{last: prior}
	o, sessions := newTestOrchestrator(t, nil, orders)
	ctx := context.Background()

	got, err := o.StartCall(ctx, caller)
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingReorderConfirm)
	if !strings.Contains(got.Text, "Denim Jeans") || !strings.Contains(got.Text, "2") {
		t.Fatalf("reorder prompt must recap the prior order, got %q", got.Text)
	}

	_, _ = o.HandleEvent(ctx, caller, "yes please")
	mustPhase(t, sessions, caller, statex.PhaseAwaitingAddress)

	_, _ = o.HandleEvent(ctx, caller, "42 MG Road, Pune")
	got, err = o.HandleEvent(ctx, caller, "confirm")
	if err != nil {
		t.Fatal(err)
	}
	if !got.EndCall {
		t.Fatal("reorder commit must end the call")
	}

	if len(orders.created) != 1 {
		t.Fatalf("orders committed = %d, want 1", len(orders.created))
	}
	ord := orders.created[0]
	if ord.Product != prior.Product || ord.Quantity != prior.Quantity {
		t.Fatalf("reorder must repeat product and quantity, got %+v", ord)
	}
	if ord.TotalPrice != prior.TotalPrice {
		t.Fatalf("total = %v, want %v (unit price T/Q preserved)", ord.TotalPrice, prior.TotalPrice)
	}
	if ord.ID == prior.ID {
		t.Fatal("reorder must mint a fresh identity")
	}
}

func TestReorderDeclinedGoesToConversation(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{last: &contractx.Order{
		ID: "ord-1", CallerID: caller, Product: "Denim Jeans", Quantity: 1, TotalPrice: 1499,
	}}
	o, sessions := newTestOrchestrator(t, nil, orders)
	ctx := context.Background()

	_, _ = o.StartCall(ctx, caller)
	_, err := o.HandleEvent(ctx, caller, "no thanks")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseDefault)
	snap, _ := sessions.Snapshot(caller)
	if snap.Draft != nil || snap.SourceOrder != nil {
		t.Fatal("declined reorder must clear draft and source order")
	}
}

func TestSilenceEscalationTerminatesCall(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.StartCall(ctx, caller)

	var prompts []string
	var last contractx.VoiceAction
	for i := 0; i < 3; i++ {
		got, err := o.HandleEvent(ctx, caller, "")
		if err != nil {
			t.Fatalf("silence %d: %v", i+1, err)
		}
		prompts = append(prompts, got.Text)
		last = got
	}

	if prompts[0] == prompts[1] || prompts[1] == prompts[2] || prompts[0] == prompts[2] {
		t.Fatalf("silence prompts must escalate distinctly: %q", prompts)
	}
	if !last.EndCall {
		t.Fatal("third silence must terminate the call")
	}
	if sessions.Contains(caller) {
		t.Fatal("session must be removed after silence termination")
	}
}

func TestSilenceCounterResetsOnSpeech(t *testing.T) {
	t.Parallel()

	o, sessions := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	_, _ = o.StartCall(ctx, caller)
	_, _ = o.HandleEvent(ctx, caller, "")
	_, _ = o.HandleEvent(ctx, caller, "")
	_, _ = o.HandleEvent(ctx, caller, "hello, sorry, I am here")

	snap, _ := sessions.Snapshot(caller)
	if snap.SilenceCount != 0 {
		t.Fatalf("silence count = %d, want 0 after speech", snap.SilenceCount)
	}

	// The reset means three more strikes are needed again.
	got, _ := o.HandleEvent(ctx, caller, "")
	if got.EndCall {
		t.Fatal("first silence after reset must not end the call")
	}
}

func TestAgentEndCallWithPurchaseCapturesAddress(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{replies: []contractx.AgentReply{
		{Kind: contractx.ReplyFinal, Text: "Our bestselling Cotton T-Shirt costs 299 rupees. Great choice!", Raw: "r1"},
		{Kind: contractx.ReplyEndCall, Text: "Lovely, I have noted your order. Goodbye!", Raw: "r2"},
	}}
	o, sessions := newTestOrchestrator(t, agent, nil)
	ctx := context.Background()

	_, _ = o.StartCall(ctx, caller)
	_, _ = o.HandleEvent(ctx, caller, "tell me about the cotton t shirt")
	mustPhase(t, sessions, caller, statex.PhaseDefault)

	got, err := o.HandleEvent(ctx, caller, "that sounds perfect, go ahead")
	if err != nil {
		t.Fatal(err)
	}
	mustPhase(t, sessions, caller, statex.PhaseAwaitingAddress)
	if got.EndCall {
		t.Fatal("call must stay open to capture the address")
	}
	if !strings.Contains(strings.ToLower(got.Text), "address") {
		t.Fatalf("got %q", got.Text)
	}

	snap, _ := sessions.Snapshot(caller)
	if snap.Draft == nil || snap.Draft.Product != "Cotton T-Shirt" || snap.Draft.UnitPrice != 299 {
		t.Fatalf("draft = %+v", snap.Draft)
	}
}

func TestAgentEndCallWithoutPurchaseEnds(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{replies: []contractx.AgentReply{
		{Kind: contractx.ReplyEndCall, Text: "Thanks for your time. Goodbye!", Raw: "r1"},
	}}
	o, sessions := newTestOrchestrator(t, agent, nil)
	ctx := context.Background()

	_, _ = o.StartCall(ctx, caller)
	got, err := o.HandleEvent(ctx, caller, "not interested, thank you")
	if err != nil {
		t.Fatal(err)
	}
	if !got.EndCall {
		t.Fatal("agent end-call without a purchase must end the call")
	}
	if sessions.Contains(caller) {
		t.Fatal("session must be removed when the call ends")
	}
}
