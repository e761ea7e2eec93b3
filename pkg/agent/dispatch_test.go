package agent_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/signalwire/sigmond-holyguacamole/pkg/agent"
	"github.com/signalwire/sigmond-holyguacamole/pkg/agent/session"
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

func newTestDispatcher(t *testing.T) (*agent.Dispatcher, *session.Session) {
	t.Helper()
	m := menu.Default()
	d := agent.New(m,
		agent.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		agent.WithOrderNumbers(func() int { return 401 }),
	)
	return d, session.New("test", m)
}

func dispatch(t *testing.T, d *agent.Dispatcher, s *session.Session, op flow.Op, args string) *agent.Outcome {
	t.Helper()
	out := d.Dispatch(op, []byte(args), s)
	if out == nil {
		t.Fatalf("%s: nil outcome", op)
	}
	return out
}

func mustOK(t *testing.T, d *agent.Dispatcher, s *session.Session, op flow.Op, args string) *agent.Outcome {
	t.Helper()
	out := dispatch(t, d, s, op, args)
	if !out.OK {
		t.Fatalf("%s failed: %+v", op, out.Failure)
	}
	return out
}

func hasEvent(out *agent.Outcome, typ agent.EventType) bool {
	for _, ev := range out.Events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestOrderLifecycle(t *testing.T) {
	d, s := newTestDispatcher(t)

	// First add moves greeting to taking_order.
	out := mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":2}`)
	if s.Phase != flow.TakingOrder {
		t.Fatalf("phase = %s, want %s", s.Phase, flow.TakingOrder)
	}
	if !hasEvent(out, agent.EventItemAdded) || !hasEvent(out, agent.EventPhaseChanged) {
		t.Fatalf("events = %+v", out.Events)
	}
	if !strings.Contains(out.Say, "Added 2 Beef Tacos") {
		t.Fatalf("say = %q", out.Say)
	}

	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"chips and salsa"}`)

	// Completing the combo set triggers the upsell.
	out = mustOK(t, d, s, flow.OpAddItem, `{"item_name":"small drink"}`)
	if !strings.Contains(out.Say, "Great news!") {
		t.Fatalf("say = %q, want combo suggestion", out.Say)
	}
	if len(out.Suggestions) != 1 {
		t.Fatalf("suggestions = %+v", out.Suggestions)
	}

	out = mustOK(t, d, s, flow.OpFinalizeOrder, "")
	if s.Phase != flow.ConfirmingOrder {
		t.Fatalf("phase = %s, want %s", s.Phase, flow.ConfirmingOrder)
	}
	if !strings.Contains(out.Say, "look correct") {
		t.Fatalf("say = %q", out.Say)
	}

	out = mustOK(t, d, s, flow.OpProcessPayment, "")
	if s.Phase != flow.PaymentProcessing {
		t.Fatalf("phase = %s", s.Phase)
	}
	// The 3-digit order number is spoken digit by digit.
	if !strings.Contains(out.Say, "four zero one") {
		t.Fatalf("say = %q", out.Say)
	}
	if s.Order.Number != 401 {
		t.Fatalf("order number = %d", s.Order.Number)
	}

	out = mustOK(t, d, s, flow.OpCompleteOrder, "")
	if s.Phase != flow.Complete {
		t.Fatalf("phase = %s", s.Phase)
	}
	if !strings.Contains(out.Say, "four zero one") {
		t.Fatalf("say = %q", out.Say)
	}

	out = mustOK(t, d, s, flow.OpNewOrder, "")
	if s.Phase != flow.Greeting {
		t.Fatalf("phase = %s", s.Phase)
	}
	if len(s.Order.Lines) != 0 || s.Order.Number != 0 {
		t.Fatalf("order not reset: %+v", s.Order)
	}
	if !hasEvent(out, agent.EventNewOrder) {
		t.Fatalf("events = %+v", out.Events)
	}
}

func TestIllegalOperation(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco"}`)

	out := dispatch(t, d, s, flow.OpProcessPayment, "")
	if out.OK {
		t.Fatal("payment accepted in taking_order")
	}
	if out.Failure == nil || out.Failure.Kind != agent.FailIllegalOperation {
		t.Fatalf("failure = %+v", out.Failure)
	}
	found := false
	for _, op := range out.Failure.LegalOps {
		if op == flow.OpFinalizeOrder {
			found = true
		}
	}
	if !found {
		t.Fatalf("legal ops = %v, missing finalize_order", out.Failure.LegalOps)
	}
	// Nothing moved.
	if s.Phase != flow.TakingOrder || s.Order.ItemCount != 1 {
		t.Fatalf("session mutated by illegal op: %s %d", s.Phase, s.Order.ItemCount)
	}
}

func TestAddUnknownItem(t *testing.T) {
	d, s := newTestDispatcher(t)

	out := dispatch(t, d, s, flow.OpAddItem, `{"item_name":"flibbertigibbet"}`)
	if out.OK {
		t.Fatal("nonsense item accepted")
	}
	if out.Failure == nil || out.Failure.Kind != agent.FailItemNotFound {
		t.Fatalf("failure = %+v", out.Failure)
	}
	if out.Failure.Phrase != "flibbertigibbet" {
		t.Fatalf("phrase = %q", out.Failure.Phrase)
	}
	if !strings.Contains(out.Say, "couldn't find 'flibbertigibbet'") {
		t.Fatalf("say = %q", out.Say)
	}
	if s.Phase != flow.Greeting {
		t.Fatalf("failed add advanced the phase to %s", s.Phase)
	}
}

func TestAddClampReported(t *testing.T) {
	d, s := newTestDispatcher(t)

	out := mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":25}`)
	if !out.Clamped {
		t.Fatal("clamp not reported")
	}
	if !strings.Contains(out.Say, "limited to 10 per request") {
		t.Fatalf("say = %q", out.Say)
	}
	if s.Order.ItemCount != 10 {
		t.Fatalf("item count = %d, want 10", s.Order.ItemCount)
	}
}

func TestRemoveAbsentItem(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco"}`)

	out := dispatch(t, d, s, flow.OpRemoveItem, `{"item_name":"burrito"}`)
	if !out.OK || !out.NoOp {
		t.Fatalf("outcome = %+v, want ok no-op", out)
	}
	if s.Order.ItemCount != 1 {
		t.Fatal("ledger changed")
	}
}

func TestRemovePartial(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"bottled water","quantity":3}`)

	out := mustOK(t, d, s, flow.OpRemoveItem, `{"item_name":"water"}`)
	if !strings.Contains(out.Say, "You still have 2 remaining") {
		t.Fatalf("say = %q", out.Say)
	}
	if !hasEvent(out, agent.EventQuantityModified) {
		t.Fatalf("events = %+v", out.Events)
	}

	out = mustOK(t, d, s, flow.OpRemoveItem, `{"item_name":"water","quantity":-1}`)
	if !hasEvent(out, agent.EventItemRemoved) {
		t.Fatalf("events = %+v", out.Events)
	}
	if !strings.Contains(out.Say, "Your order is now empty") {
		t.Fatalf("say = %q", out.Say)
	}
}

func TestModifyQuantity(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":2}`)

	out := mustOK(t, d, s, flow.OpModifyQuantity, `{"item_name":"beef taco","new_quantity":5}`)
	if !strings.Contains(out.Say, "Changed Beef Taco quantity to 5") {
		t.Fatalf("say = %q", out.Say)
	}
	if s.Order.ItemCount != 5 {
		t.Fatalf("item count = %d", s.Order.ItemCount)
	}

	// Zero removes.
	out = mustOK(t, d, s, flow.OpModifyQuantity, `{"item_name":"beef taco","new_quantity":0}`)
	if !hasEvent(out, agent.EventItemRemoved) {
		t.Fatalf("events = %+v", out.Events)
	}
	if len(s.Order.Lines) != 0 {
		t.Fatal("line survived")
	}
}

func TestUpgradeCombo(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":2}`)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"chips"}`)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"small drink"}`)

	out := mustOK(t, d, s, flow.OpUpgradeCombo, `{"combo_type":"taco"}`)
	if !strings.Contains(out.Say, "Taco Combo") || !strings.Contains(out.Say, "one dollar and ninety-seven cents") {
		t.Fatalf("say = %q", out.Say)
	}
	if !hasEvent(out, agent.EventComboUpgraded) {
		t.Fatalf("events = %+v", out.Events)
	}
	if got := s.Order.Line("C001"); got == nil || got.Quantity != 1 {
		t.Fatalf("combo line = %+v", got)
	}
	if len(s.Order.Lines) != 1 {
		t.Fatalf("lines = %+v", s.Order.Lines)
	}
}

func TestUpgradeComboWithoutItems(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco"}`)

	out := dispatch(t, d, s, flow.OpUpgradeCombo, `{"combo_type":"taco"}`)
	if !out.NoOp {
		t.Fatalf("outcome = %+v, want no-op", out)
	}
	if s.Order.ItemCount != 1 {
		t.Fatal("ledger changed")
	}
}

func TestCancelFromConfirming(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":2}`)
	mustOK(t, d, s, flow.OpFinalizeOrder, "")

	out := mustOK(t, d, s, flow.OpCancelOrder, "")
	if s.Phase != flow.Greeting {
		t.Fatalf("phase = %s, want greeting", s.Phase)
	}
	if len(s.Order.Lines) != 0 {
		t.Fatal("order survived cancel")
	}
	if !hasEvent(out, agent.EventOrderCancelled) || !hasEvent(out, agent.EventPhaseChanged) {
		t.Fatalf("events = %+v", out.Events)
	}
}

func TestReviewEmptyOrder(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.Phase = flow.TakingOrder

	out := dispatch(t, d, s, flow.OpReviewOrder, "")
	if !out.OK || !out.NoOp {
		t.Fatalf("outcome = %+v, want ok no-op", out)
	}

	out = dispatch(t, d, s, flow.OpFinalizeOrder, "")
	if !out.NoOp {
		t.Fatalf("finalize on empty = %+v, want no-op", out)
	}
	if s.Phase != flow.TakingOrder {
		t.Fatalf("empty finalize advanced phase to %s", s.Phase)
	}
}

func TestEventsCarryFullSnapshots(t *testing.T) {
	d, s := newTestDispatcher(t)
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":2}`)
	out := mustOK(t, d, s, flow.OpAddItem, `{"item_name":"chips"}`)

	ev := out.Events[0]
	if ev.Type != agent.EventItemAdded {
		t.Fatalf("event = %s", ev.Type)
	}
	if len(ev.Order.Lines) != 2 || ev.Order.ItemCount != 3 {
		t.Fatalf("event order = %+v, want full snapshot", ev.Order)
	}
	if ev.Order.Total != out.Order.Total {
		t.Fatalf("event total %d != outcome total %d", ev.Order.Total, out.Order.Total)
	}

	// The snapshot is independent of later mutations.
	mustOK(t, d, s, flow.OpAddItem, `{"item_name":"beef taco","quantity":3}`)
	if ev.Order.ItemCount != 3 || ev.Order.Lines[0].Quantity != 2 {
		t.Fatalf("event snapshot mutated: %+v", ev.Order)
	}
}

func TestMalformedArgumentsRepaired(t *testing.T) {
	d, s := newTestDispatcher(t)

	// Single quotes and a trailing comma, the way language models write
	// JSON on a bad day.
	out := dispatch(t, d, s, flow.OpAddItem, `{'item_name': 'beef taco', 'quantity': 2,}`)
	if !out.OK {
		t.Fatalf("outcome = %+v", out.Failure)
	}
	if s.Order.ItemCount != 2 {
		t.Fatalf("item count = %d, want 2", s.Order.ItemCount)
	}
}

func TestCorruptPhaseRecovers(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.Phase = flow.Phase("garbage")

	out := dispatch(t, d, s, flow.OpAddItem, `{"item_name":"beef taco"}`)
	if !out.OK {
		t.Fatalf("outcome = %+v", out.Failure)
	}
	if s.Phase != flow.TakingOrder {
		t.Fatalf("phase = %s", s.Phase)
	}
}
