package agent

import (
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/order"
)

// FailureKind classifies why an operation was refused. Failures are
// data, never panics: the dialogue layer phrases them for the customer.
type FailureKind string

const (
	// FailIllegalOperation: the operation is not permitted in the
	// current phase. The failure carries the operations that are.
	FailIllegalOperation FailureKind = "illegal_operation"
	// FailItemNotFound: the matcher exhausted every stage. The failure
	// carries the original phrase for the clarification prompt.
	FailItemNotFound FailureKind = "item_not_found"
	// FailBadArguments: the arguments were missing or undecodable even
	// after repair.
	FailBadArguments FailureKind = "bad_arguments"
)

// Failure describes a refused operation.
type Failure struct {
	Kind FailureKind `json:"kind"`
	// Phrase is the unresolved item phrase (item_not_found).
	Phrase string `json:"phrase,omitempty"`
	// LegalOps lists what the caller may do instead (illegal_operation).
	LegalOps []flow.Op `json:"legal_operations,omitempty"`
}

// Outcome is the result of one dispatch: what to say, what happened to
// the ledger, and the notification events for the display surface.
//
// A clamped or no-op operation is still a success (OK with NoOp or
// Clamped set); only taxonomy failures set Failure.
type Outcome struct {
	Op flow.Op `json:"op"`
	OK bool    `json:"ok"`
	// Say is the speech payload for the dialogue layer.
	Say     string   `json:"say"`
	Failure *Failure `json:"failure,omitempty"`
	// NoOp marks operations that changed nothing (remove of an absent
	// item, finalize of an empty order) but aren't errors.
	NoOp bool `json:"no_op,omitempty"`
	// Clamped marks that a requested quantity was reduced by a limit;
	// Say states the reduction explicitly.
	Clamped bool `json:"clamped,omitempty"`
	// Suggestions are combo opportunities detected after the mutation.
	Suggestions []order.Opportunity `json:"-"`
	Events      []Event             `json:"events,omitempty"`
	// Order and Phase are the post-operation snapshot for the caller to
	// persist.
	Order order.Order `json:"order"`
	Phase flow.Phase  `json:"phase"`
}

// EventType tags a notification event for the display surface.
type EventType string

const (
	EventItemAdded        EventType = "item_added"
	EventItemRemoved      EventType = "item_removed"
	EventQuantityModified EventType = "quantity_modified"
	EventOrderReviewed    EventType = "order_reviewed"
	EventOrderFinalized   EventType = "order_finalized"
	EventPaymentStarted   EventType = "payment_started"
	EventOrderCompleted   EventType = "order_completed"
	EventOrderCancelled   EventType = "order_cancelled"
	EventNewOrder         EventType = "new_order"
	EventComboUpgraded    EventType = "combo_upgraded"
	EventPhaseChanged     EventType = "phase_changed"
)

// Event is one observable state change. Every event carries the full
// order snapshot, never a diff, so a display that missed earlier events
// can resynchronize from the latest one alone.
type Event struct {
	Type EventType `json:"type"`
	// Order is the complete post-change ledger.
	Order order.Order `json:"order"`
	// Item is the touched line, when one line changed.
	Item *order.Line `json:"item,omitempty"`
	// Removed and Added describe a combo upgrade's consumed and bundled
	// lines; Savings is the customer's win.
	Removed []order.Line `json:"removed_items,omitempty"`
	Added   []order.Line `json:"added_combos,omitempty"`
	Savings menu.Cents   `json:"savings,omitempty"`
	// From and To trace a phase change.
	From flow.Phase `json:"from,omitempty"`
	To   flow.Phase `json:"to,omitempty"`
}
