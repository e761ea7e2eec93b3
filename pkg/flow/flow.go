// Package flow is the conversational state machine for an order. Each
// conversation sits in exactly one Phase, the phase gates which
// operations are legal, and transitions only happen as a side effect of
// an operation succeeding — never from raw user speech.
package flow

// Phase is a stage of the ordering conversation.
type Phase string

const (
	// Greeting is the entry phase of a fresh conversation.
	Greeting Phase = "greeting"
	// TakingOrder is the main ordering phase.
	TakingOrder Phase = "taking_order"
	// ConfirmingOrder is the on-screen review before payment.
	ConfirmingOrder Phase = "confirming_order"
	// PaymentProcessing is the pull-forward-and-pay phase.
	PaymentProcessing Phase = "payment_processing"
	// Complete is the terminal phase; only a new order leaves it.
	Complete Phase = "complete"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case Greeting, TakingOrder, ConfirmingOrder, PaymentProcessing, Complete:
		return true
	}
	return false
}

// Op is a named engine operation, spelled the way the hosting platform
// advertises it as a callable tool.
type Op string

const (
	OpAddItem        Op = "add_item"
	OpRemoveItem     Op = "remove_item"
	OpModifyQuantity Op = "modify_quantity"
	OpReviewOrder    Op = "review_order"
	OpFinalizeOrder  Op = "finalize_order"
	OpProcessPayment Op = "process_payment"
	OpCompleteOrder  Op = "complete_order"
	OpCancelOrder    Op = "cancel_order"
	OpNewOrder       Op = "new_order"
	OpUpgradeCombo   Op = "upgrade_to_combo"
)

// legal lists the operations permitted in each phase, in the order they
// are reported back on an illegal-operation rejection. cancel_order is
// handled separately: it is legal everywhere.
var legal = map[Phase][]Op{
	Greeting:          {OpAddItem},
	TakingOrder:       {OpAddItem, OpRemoveItem, OpModifyQuantity, OpReviewOrder, OpFinalizeOrder, OpUpgradeCombo},
	ConfirmingOrder:   {OpAddItem, OpRemoveItem, OpProcessPayment},
	PaymentProcessing: {OpCompleteOrder},
	Complete:          {OpNewOrder},
}

// transitions maps (phase, op) to the phase entered when that op
// succeeds. Absent entries keep the current phase.
var transitions = map[Phase]map[Op]Phase{
	Greeting:          {OpAddItem: TakingOrder},
	TakingOrder:       {OpFinalizeOrder: ConfirmingOrder},
	ConfirmingOrder:   {OpProcessPayment: PaymentProcessing},
	PaymentProcessing: {OpCompleteOrder: Complete},
	Complete:          {OpNewOrder: Greeting},
}

// Legal reports whether op may run in phase p.
func Legal(p Phase, op Op) bool {
	if op == OpCancelOrder {
		return true
	}
	for _, o := range legal[p] {
		if o == op {
			return true
		}
	}
	return false
}

// LegalOps returns the operations permitted in phase p, including
// cancel_order, for the rejection message on an illegal call.
func LegalOps(p Phase) []Op {
	ops := make([]Op, 0, len(legal[p])+1)
	ops = append(ops, legal[p]...)
	return append(ops, OpCancelOrder)
}

// Next returns the phase entered when op succeeds in phase p. Cancel
// always restarts the conversation at Greeting.
func Next(p Phase, op Op) Phase {
	if op == OpCancelOrder {
		return Greeting
	}
	if to, ok := transitions[p][op]; ok {
		return to
	}
	return p
}
