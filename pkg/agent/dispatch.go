// Package agent executes named order operations against a conversation
// session. It is the seam between the hosting voice platform and the
// order engine: the platform's language model picks an operation and
// emits JSON arguments, and the dispatcher does everything
// deterministic — phase gating, phrase matching, ledger mutation, and
// the speech and display payloads that go back out.
//
// Dispatch never panics on caller input. Unknown phrases, illegal
// operations, and malformed arguments all come back as structured
// failures with something sensible to say.
package agent

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/signalwire/sigmond-holyguacamole/pkg/agent/session"
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu/match"
	"github.com/signalwire/sigmond-holyguacamole/pkg/order"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMatcher replaces the default phrase matcher, e.g. to change the
// acceptance threshold.
func WithMatcher(m *match.Matcher) Option {
	return func(d *Dispatcher) { d.matcher = m }
}

// WithOrderNumbers replaces the order-number source. Tests use this to
// make numbers deterministic.
func WithOrderNumbers(fn func() int) Option {
	return func(d *Dispatcher) { d.orderNum = fn }
}

// Dispatcher executes operations against sessions. It is stateless
// between calls and safe for concurrent use as long as each session is
// dispatched from one goroutine at a time (see session.Locker).
type Dispatcher struct {
	menu     *menu.Menu
	matcher  *match.Matcher
	log      *slog.Logger
	orderNum func() int
}

// New creates a Dispatcher over the given catalog.
func New(m *menu.Menu, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		menu: m,
		log:  slog.Default(),
		// Three spoken digits, like a ticket printer.
		orderNum: func() int { return rand.IntN(900) + 100 },
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.matcher == nil {
		d.matcher = match.New(m)
	}
	return d
}

// Dispatch runs one operation against the session and returns the
// outcome. The session is mutated in place on success; on any failure
// it is left exactly as it was, except that an unknown phase is first
// normalized to greeting so a corrupted session can recover.
func (d *Dispatcher) Dispatch(op flow.Op, rawArgs []byte, s *session.Session) *Outcome {
	if !s.Phase.Valid() {
		s.Phase = flow.Greeting
	}

	var out *Outcome
	var advance bool
	if !flow.Legal(s.Phase, op) {
		ops := flow.LegalOps(s.Phase)
		out = &Outcome{
			Say:     "I can't do that right now. Right now I can: " + joinOps(ops) + ".",
			Failure: &Failure{Kind: FailIllegalOperation, LegalOps: ops},
		}
	} else {
		out, advance = d.handle(op, rawArgs, s)
	}

	if advance {
		if next := flow.Next(s.Phase, op); next != s.Phase {
			out.Events = append(out.Events, Event{
				Type:  EventPhaseChanged,
				Order: snapshot(&s.Order),
				From:  s.Phase,
				To:    next,
			})
			s.Phase = next
		}
		s.UpdatedAt = time.Now()
	}

	out.Op = op
	out.Order = snapshot(&s.Order)
	out.Phase = s.Phase
	d.log.Info("dispatched",
		"session", s.ID,
		"op", op,
		"ok", out.OK,
		"phase", s.Phase,
		"items", s.Order.ItemCount,
		"total", s.Order.Total)
	return out
}

// handle runs the operation body. The second return value reports
// success: only a successful operation advances the phase machine.
func (d *Dispatcher) handle(op flow.Op, rawArgs []byte, s *session.Session) (*Outcome, bool) {
	switch op {
	case flow.OpAddItem:
		return d.addItem(rawArgs, s)
	case flow.OpRemoveItem:
		return d.removeItem(rawArgs, s)
	case flow.OpModifyQuantity:
		return d.modifyQuantity(rawArgs, s)
	case flow.OpUpgradeCombo:
		return d.upgradeCombo(rawArgs, s)
	case flow.OpReviewOrder:
		return d.reviewOrder(s)
	case flow.OpFinalizeOrder:
		return d.finalizeOrder(s)
	case flow.OpProcessPayment:
		return d.processPayment(s)
	case flow.OpCompleteOrder:
		return d.completeOrder(s)
	case flow.OpCancelOrder:
		return d.cancelOrder(s)
	case flow.OpNewOrder:
		return d.newOrder(s)
	}
	return &Outcome{
		Say:     "I can't do that right now.",
		Failure: &Failure{Kind: FailIllegalOperation, LegalOps: flow.LegalOps(s.Phase)},
	}, false
}

func (d *Dispatcher) addItem(rawArgs []byte, s *session.Session) (*Outcome, bool) {
	var args AddItemArgs
	if err := unmarshalArgs(rawArgs, &args); err != nil || strings.TrimSpace(args.ItemName) == "" {
		return &Outcome{
			Say:     "I didn't catch which item you wanted. Could you say that again?",
			Failure: &Failure{Kind: FailBadArguments},
		}, false
	}

	res := d.matcher.Resolve(args.ItemName)
	if !res.Found() {
		return &Outcome{
			Say: fmt.Sprintf("I couldn't find '%s' on our menu. "+
				"Please check the menu on your screen for available items.", args.ItemName),
			Failure: &Failure{Kind: FailItemNotFound, Phrase: args.ItemName},
		}, false
	}
	d.log.Debug("phrase resolved", "phrase", args.ItemName, "sku", res.Item.SKU, "stage", res.Stage)

	delta := s.Order.Add(res.Item, args.Quantity)
	if !delta.Changed() {
		// Every unit was clamped away; the ledger is untouched.
		return &Outcome{
			OK:      true,
			NoOp:    true,
			Clamped: true,
			Say:     fmt.Sprintf("I couldn't add %s: %s.", res.Item.Name, delta.ClampReason),
		}, false
	}

	var sb strings.Builder
	added := delta.Qty - delta.PrevQty
	switch {
	case delta.Kind == order.DeltaUpdated:
		fmt.Fprintf(&sb, "Updated %s - now you have %d", res.Item.Name, delta.Qty)
	case added > 1:
		fmt.Fprintf(&sb, "Added %d %s to your order", added, plural(res.Item.Name, added))
	default:
		fmt.Fprintf(&sb, "Added %s to your order", res.Item.Name)
	}
	if delta.Clamped {
		fmt.Fprintf(&sb, " (%s)", delta.ClampReason)
	}
	fmt.Fprintf(&sb, ". Your total is now %s.", order.SpeakCents(s.Order.Total))

	out := &Outcome{OK: true, Clamped: delta.Clamped}
	out.Events = append(out.Events, Event{
		Type:  EventItemAdded,
		Order: snapshot(&s.Order),
		Item:  lineCopy(s.Order.Line(res.Item.SKU)),
	})

	if say, opps := d.comboSuggestion(&s.Order); say != "" {
		sb.WriteString(" " + say)
		out.Suggestions = opps
	}
	out.Say = sb.String()
	return out, true
}

func (d *Dispatcher) removeItem(rawArgs []byte, s *session.Session) (*Outcome, bool) {
	var args RemoveItemArgs
	if err := unmarshalArgs(rawArgs, &args); err != nil || strings.TrimSpace(args.ItemName) == "" {
		return &Outcome{
			Say:     "Which item should I remove?",
			Failure: &Failure{Kind: FailBadArguments},
		}, false
	}

	line := d.lineFor(s, args.ItemName)
	if line == nil {
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  fmt.Sprintf("You don't have %s in your order.", args.ItemName),
		}, false
	}

	qty := args.Quantity
	if qty == 0 {
		qty = 1
	} else if qty < 0 {
		qty = order.All
	}
	delta := s.Order.Remove(line.SKU, qty)

	var sb strings.Builder
	taken := delta.PrevQty - delta.Qty
	if delta.Kind == order.DeltaRemoved {
		if taken > 1 {
			fmt.Fprintf(&sb, "Removed all %d %s from your order.", taken, plural(delta.Name, taken))
		} else {
			fmt.Fprintf(&sb, "Removed %s from your order.", delta.Name)
		}
	} else {
		fmt.Fprintf(&sb, "Removed %d %s from your order. You still have %d remaining.",
			taken, plural(delta.Name, taken), delta.Qty)
	}
	if len(s.Order.Lines) > 0 {
		fmt.Fprintf(&sb, " Your new total is %s.", order.SpeakCents(s.Order.Total))
	} else {
		sb.WriteString(" Your order is now empty.")
	}

	ev := Event{Type: EventQuantityModified, Order: snapshot(&s.Order), Item: lineCopy(s.Order.Line(delta.SKU))}
	if delta.Kind == order.DeltaRemoved {
		ev.Type = EventItemRemoved
		ev.Item = &order.Line{SKU: delta.SKU, Name: delta.Name}
	}
	return &Outcome{OK: true, Say: sb.String(), Events: []Event{ev}}, true
}

func (d *Dispatcher) modifyQuantity(rawArgs []byte, s *session.Session) (*Outcome, bool) {
	var args ModifyQuantityArgs
	if err := unmarshalArgs(rawArgs, &args); err != nil || strings.TrimSpace(args.ItemName) == "" {
		return &Outcome{
			Say:     "Which item, and how many would you like?",
			Failure: &Failure{Kind: FailBadArguments},
		}, false
	}

	line := d.lineFor(s, args.ItemName)
	if line == nil {
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  fmt.Sprintf("You don't have %s in your order.", args.ItemName),
		}, false
	}

	delta := s.Order.SetQuantity(line.SKU, args.NewQuantity)
	if !delta.Changed() {
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  fmt.Sprintf("You already have %d %s.", delta.Qty, plural(delta.Name, delta.Qty)),
		}, false
	}

	var sb strings.Builder
	var ev Event
	if delta.Kind == order.DeltaRemoved {
		fmt.Fprintf(&sb, "Removed %s from your order.", delta.Name)
		ev = Event{Type: EventItemRemoved, Order: snapshot(&s.Order), Item: &order.Line{SKU: delta.SKU, Name: delta.Name}}
	} else {
		fmt.Fprintf(&sb, "Changed %s quantity to %d", delta.Name, delta.Qty)
		if delta.Clamped {
			fmt.Fprintf(&sb, " (%s)", delta.ClampReason)
		}
		sb.WriteString(".")
		ev = Event{Type: EventQuantityModified, Order: snapshot(&s.Order), Item: lineCopy(s.Order.Line(delta.SKU))}
	}
	if len(s.Order.Lines) > 0 {
		fmt.Fprintf(&sb, " Your new total is %s.", order.SpeakCents(s.Order.Total))
	} else {
		sb.WriteString(" Your order is now empty.")
	}
	return &Outcome{OK: true, Clamped: delta.Clamped, Say: sb.String(), Events: []Event{ev}}, true
}

func (d *Dispatcher) upgradeCombo(rawArgs []byte, s *session.Session) (*Outcome, bool) {
	var args UpgradeComboArgs
	if err := unmarshalArgs(rawArgs, &args); err != nil {
		return &Outcome{
			Say:     "Which combo would you like?",
			Failure: &Failure{Kind: FailBadArguments},
		}, false
	}

	rules := d.selectCombos(args.ComboType)
	if len(rules) == 0 {
		var names []string
		for _, rule := range d.menu.Combos() {
			names = append(names, rule.Result.Name)
		}
		return &Outcome{
			Say:     "I can only upgrade to " + joinAnd(names, "or") + ".",
			Failure: &Failure{Kind: FailBadArguments},
		}, false
	}

	applied, ok := order.Apply(&s.Order, d.menu, rules)
	if !ok {
		if len(rules) == 1 {
			return &Outcome{
				OK:   true,
				NoOp: true,
				Say: fmt.Sprintf("You don't have the items for a %s yet. It needs %s.",
					rules[0].Result.Name, rules[0].Result.Description),
			}, false
		}
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  "You don't have the items for a combo upgrade yet.",
		}, false
	}

	say := fmt.Sprintf("Awesome! I've upgraded your order to %s, saving you %s! Your new total is %s.",
		describeLines(applied.Added), order.SpeakCents(applied.Savings), order.SpeakCents(s.Order.Total))
	ev := Event{
		Type:    EventComboUpgraded,
		Order:   snapshot(&s.Order),
		Removed: applied.Removed,
		Added:   applied.Added,
		Savings: applied.Savings,
	}
	return &Outcome{OK: true, Say: say, Events: []Event{ev}}, true
}

func (d *Dispatcher) reviewOrder(s *session.Session) (*Outcome, bool) {
	if len(s.Order.Lines) == 0 {
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  "Your order is empty. What would you like to order?",
		}, false
	}
	out := &Outcome{
		OK:  true,
		Say: fmt.Sprintf("Your current total is %s. You can see your order on the screen.", order.SpeakCents(s.Order.Total)),
	}
	out.Events = append(out.Events, Event{Type: EventOrderReviewed, Order: snapshot(&s.Order)})
	return out, true
}

func (d *Dispatcher) finalizeOrder(s *session.Session) (*Outcome, bool) {
	if len(s.Order.Lines) == 0 {
		return &Outcome{
			OK:   true,
			NoOp: true,
			Say:  "Your order is empty. Please add some items first!",
		}, false
	}
	out := &Outcome{
		OK: true,
		Say: fmt.Sprintf("Alright, your total comes to %s. Does everything on the screen look correct?",
			order.SpeakCents(s.Order.Total)),
	}
	out.Events = append(out.Events, Event{Type: EventOrderFinalized, Order: snapshot(&s.Order)})
	return out, true
}

func (d *Dispatcher) processPayment(s *session.Session) (*Outcome, bool) {
	s.Order.Number = d.orderNum()
	out := &Outcome{
		OK: true,
		Say: fmt.Sprintf("Perfect! Your order number is %s. Your total is %s. "+
			"Please pull forward to the first window to pay.",
			order.SpeakDigits(s.Order.Number), order.SpeakCents(s.Order.Total)),
	}
	out.Events = append(out.Events, Event{Type: EventPaymentStarted, Order: snapshot(&s.Order)})
	return out, true
}

func (d *Dispatcher) completeOrder(s *session.Session) (*Outcome, bool) {
	out := &Outcome{
		OK: true,
		Say: fmt.Sprintf("Thank you for your order! Order number %s is complete. Have a wonderful day!",
			order.SpeakDigits(s.Order.Number)),
	}
	out.Events = append(out.Events, Event{Type: EventOrderCompleted, Order: snapshot(&s.Order)})
	return out, true
}

func (d *Dispatcher) cancelOrder(s *session.Session) (*Outcome, bool) {
	hadItems := len(s.Order.Lines) > 0
	s.Order.Clear()

	say := "Order cancelled. How can I help you today?"
	if hadItems && (s.Phase == flow.Greeting || s.Phase == flow.TakingOrder) {
		say = "Alright, I've cleared everything. What would you like?"
	}
	out := &Outcome{OK: true, Say: say}
	out.Events = append(out.Events, Event{Type: EventOrderCancelled, Order: snapshot(&s.Order)})
	return out, true
}

func (d *Dispatcher) newOrder(s *session.Session) (*Outcome, bool) {
	s.Order.Clear()
	out := &Outcome{OK: true, Say: "Welcome back to Holy Guacamole! What can I get started for you?"}
	out.Events = append(out.Events, Event{Type: EventNewOrder, Order: snapshot(&s.Order)})
	return out, true
}

// lineFor resolves a phrase to a line already in the order: first
// through the catalog matcher, then by matching against the ledger's
// own line names, so "the taco" works even when the matcher would pick
// a taco the customer never ordered.
func (d *Dispatcher) lineFor(s *session.Session, phrase string) *order.Line {
	if res := d.matcher.Resolve(phrase); res.Found() {
		if l := s.Order.Line(res.Item.SKU); l != nil {
			return l
		}
	}
	return s.Order.MatchLine(phrase)
}

// selectCombos picks the rules named by the spoken combo type. "both",
// "all", or an empty type selects every rule.
func (d *Dispatcher) selectCombos(comboType string) []menu.Combo {
	typ := menu.Normalize(comboType)
	switch typ {
	case "", "both", "all", "everything":
		return d.menu.Combos()
	}
	var rules []menu.Combo
	for _, rule := range d.menu.Combos() {
		if strings.Contains(strings.ToLower(rule.Result.Name), typ) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// comboSuggestion builds the upsell line spoken after a successful add,
// or "" when nothing qualifies.
func (d *Dispatcher) comboSuggestion(o *order.Order) (string, []order.Opportunity) {
	opps := order.Detect(o, d.menu)
	if len(opps) == 0 {
		return "", nil
	}
	var total menu.Cents
	for _, opp := range opps {
		total += opp.Savings
	}
	if total <= 0 {
		// An upgrade that saves nothing is not worth interrupting for.
		return "", nil
	}
	if len(opps) == 1 {
		opp := opps[0]
		return fmt.Sprintf("Great news! I can upgrade your %s to a %s and save you %s! Just say 'yes' to save money.",
			opp.Combo.Result.Description, opp.Combo.Result.Name, order.SpeakCents(opp.Savings)), opps
	}
	return fmt.Sprintf("Amazing! You qualify for %d combo upgrades, saving you a total of %s! Just say 'upgrade both' to save money.",
		len(opps), order.SpeakCents(total)), opps
}

// snapshot returns an independent copy of the order, so events keep
// their state even as the ledger keeps changing.
func snapshot(o *order.Order) order.Order {
	c := *o
	c.Lines = append([]order.Line(nil), o.Lines...)
	return c
}

func lineCopy(l *order.Line) *order.Line {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func plural(name string, n int) string {
	if n == 1 {
		return name
	}
	return name + "s"
}

// describeLines renders added combo lines for speech: "a Taco Combo",
// "2 Taco Combos and a Burrito Combo".
func describeLines(lines []order.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%d %s", l.Quantity, plural(l.Name, l.Quantity)))
		} else {
			parts = append(parts, "a "+l.Name)
		}
	}
	return joinAnd(parts, "and")
}

func joinAnd(parts []string, conj string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " " + conj + " " + parts[len(parts)-1]
}

func joinOps(ops []flow.Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = string(op)
	}
	return strings.Join(parts, ", ")
}
