package commands

import (
	"encoding/json"
	"testing"

	"github.com/signalwire/sigmond-holyguacamole/pkg/agent"
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		line string
		op   flow.Op
		args any
	}{
		{"add 2 beef tacos", flow.OpAddItem, agent.AddItemArgs{ItemName: "beef tacos", Quantity: 2}},
		{"add water", flow.OpAddItem, agent.AddItemArgs{ItemName: "water"}},
		{"remove all waters", flow.OpRemoveItem, agent.RemoveItemArgs{ItemName: "waters", Quantity: -1}},
		{"rm taco", flow.OpRemoveItem, agent.RemoveItemArgs{ItemName: "taco"}},
		{"set 5 beef taco", flow.OpModifyQuantity, agent.ModifyQuantityArgs{ItemName: "beef taco", NewQuantity: 5}},
		{"combo both", flow.OpUpgradeCombo, agent.UpgradeComboArgs{ComboType: "both"}},
		{"review", flow.OpReviewOrder, nil},
		{"finalize", flow.OpFinalizeOrder, nil},
		{"pay", flow.OpProcessPayment, nil},
		{"done", flow.OpCompleteOrder, nil},
		{"cancel", flow.OpCancelOrder, nil},
		{"new", flow.OpNewOrder, nil},
	}
	for _, tt := range tests {
		op, raw, err := parseRequest(tt.line)
		if err != nil {
			t.Errorf("parseRequest(%q): %v", tt.line, err)
			continue
		}
		if op != tt.op {
			t.Errorf("parseRequest(%q) op = %s, want %s", tt.line, op, tt.op)
		}
		if tt.args == nil {
			if raw != nil {
				t.Errorf("parseRequest(%q) args = %s, want none", tt.line, raw)
			}
			continue
		}
		want, _ := json.Marshal(tt.args)
		if string(raw) != string(want) {
			t.Errorf("parseRequest(%q) args = %s, want %s", tt.line, raw, want)
		}
	}
}

func TestParseRequestErrors(t *testing.T) {
	for _, line := range []string{"set tacos", "frobnicate", "set onlyitem"} {
		if _, _, err := parseRequest(line); err == nil {
			t.Errorf("parseRequest(%q) accepted", line)
		}
	}
}
