package agent

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
)

// AddItemArgs are the arguments for add_item.
type AddItemArgs struct {
	// ItemName is the item as the customer spoke it; it goes through
	// the full matcher cascade, so aliases and partial names work.
	ItemName string `json:"item_name"`
	// Quantity defaults to 1 when omitted or non-positive.
	Quantity int `json:"quantity,omitempty"`
}

// RemoveItemArgs are the arguments for remove_item.
type RemoveItemArgs struct {
	ItemName string `json:"item_name"`
	// Quantity defaults to 1; pass -1 to remove the whole line.
	Quantity int `json:"quantity,omitempty"`
}

// ModifyQuantityArgs are the arguments for modify_quantity.
type ModifyQuantityArgs struct {
	ItemName string `json:"item_name"`
	// NewQuantity replaces the line's quantity; 0 removes the line.
	NewQuantity int `json:"new_quantity"`
}

// UpgradeComboArgs are the arguments for upgrade_to_combo.
type UpgradeComboArgs struct {
	// ComboType selects which bundle to assemble ("taco", "burrito"),
	// or "both" / empty to apply every eligible upgrade.
	ComboType string `json:"combo_type,omitempty"`
}

// Tool describes one operation the way a voice platform advertises
// functions to its language model: a name, a prompt-visible
// description, and a JSON schema for the arguments.
type Tool struct {
	Op          flow.Op
	Description string
	Args        *jsonschema.Schema
}

func mustSchema[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		panic(fmt.Sprintf("agent: schema: %v", err))
	}
	return s
}

type noArgs struct{}

// Tools returns the operation catalog for prompt assembly. The order is
// stable so regenerated prompts diff cleanly.
func Tools() []Tool {
	return []Tool{
		{flow.OpAddItem, "Add an item from the menu to the customer's order.", mustSchema[AddItemArgs]()},
		{flow.OpRemoveItem, "Remove an item (or some of its quantity) from the order.", mustSchema[RemoveItemArgs]()},
		{flow.OpModifyQuantity, "Change the quantity of an item already in the order.", mustSchema[ModifyQuantityArgs]()},
		{flow.OpUpgradeCombo, "Upgrade eligible items in the order to a combo meal.", mustSchema[UpgradeComboArgs]()},
		{flow.OpReviewOrder, "Read back the current order and total.", mustSchema[noArgs]()},
		{flow.OpFinalizeOrder, "Lock the order and ask the customer to confirm it.", mustSchema[noArgs]()},
		{flow.OpProcessPayment, "Confirm the order, assign an order number, and start payment.", mustSchema[noArgs]()},
		{flow.OpCompleteOrder, "Hand off the finished order and close it out.", mustSchema[noArgs]()},
		{flow.OpCancelOrder, "Cancel the order and start over.", mustSchema[noArgs]()},
		{flow.OpNewOrder, "Begin a fresh order for the next customer.", mustSchema[noArgs]()},
	}
}
