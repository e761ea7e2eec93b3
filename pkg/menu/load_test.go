package menu_test

import (
	"strings"
	"testing"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

func TestDefaultMenu(t *testing.T) {
	m := menu.Default()

	items := m.Items()
	if len(items) != 15 {
		t.Fatalf("Default has %d items, want 15", len(items))
	}
	if m.TaxBps != 1000 {
		t.Fatalf("TaxBps = %d, want 1000", m.TaxBps)
	}

	taco := m.Item("T001")
	if taco == nil {
		t.Fatal("T001 missing")
	}
	if taco.Name != "Beef Taco" {
		t.Errorf("T001 name = %q", taco.Name)
	}
	if taco.Price != 349 {
		t.Errorf("T001 price = %d, want 349", taco.Price)
	}
	if taco.Category != "tacos" {
		t.Errorf("T001 category = %q", taco.Category)
	}

	// Declaration order survives: tacos come before drinks.
	if items[0].SKU != "T001" {
		t.Errorf("first item = %s, want T001", items[0].SKU)
	}

	if got := len(m.Combos()); got != 2 {
		t.Fatalf("combos = %d, want 2", got)
	}
	for _, c := range m.Combos() {
		if c.Result.Category != menu.ComboCategory {
			t.Errorf("combo result %s in category %q", c.Result.SKU, c.Result.Category)
		}
	}
}

func TestAliasLookup(t *testing.T) {
	m := menu.Default()
	tests := []struct {
		phrase string
		sku    string
	}{
		{"beef taco", "T001"},
		{"BEEF TACO", "T001"},
		{"  beef   tacos ", "T001"},
		{"quesadilla", "Q001"},
		{"soda", "D001"},
		{"water", "D003"},
		{"guac", "S002"},
	}
	for _, tt := range tests {
		sku, ok := m.AliasSKU(tt.phrase)
		if !ok {
			t.Errorf("AliasSKU(%q): not found", tt.phrase)
			continue
		}
		if sku != tt.sku {
			t.Errorf("AliasSKU(%q) = %s, want %s", tt.phrase, sku, tt.sku)
		}
	}
	if _, ok := m.AliasSKU("flibbertigibbet"); ok {
		t.Error("AliasSKU matched nonsense")
	}
}

func TestParseRejectsBadMenus(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "duplicate sku",
			doc: `
categories:
  - name: tacos
    items:
      - {sku: T001, name: Beef Taco, price: 3.49}
      - {sku: T001, name: Other Taco, price: 3.99}
`,
			wantErr: "duplicate sku",
		},
		{
			name: "zero price",
			doc: `
categories:
  - name: tacos
    items:
      - {sku: T001, name: Beef Taco, price: 0}
`,
			wantErr: "non-positive price",
		},
		{
			name: "dangling combo",
			doc: `
categories:
  - name: tacos
    items:
      - {sku: T001, name: Beef Taco, price: 3.49}
combos:
  - sku: C999
    requires:
      - {category: tacos, qty: 2}
`,
			wantErr: "unknown sku",
		},
		{
			name:    "empty menu",
			doc:     `categories: []`,
			wantErr: "no items",
		},
		{
			name: "tax out of range",
			doc: `
tax_rate: 1.5
categories:
  - name: tacos
    items:
      - {sku: T001, name: Beef Taco, price: 3.49}
`,
			wantErr: "tax_rate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := menu.Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse accepted invalid menu")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCustomTaxRate(t *testing.T) {
	m, err := menu.Parse([]byte(`
tax_rate: 0.0825
categories:
  - name: tacos
    items:
      - {sku: T001, name: Beef Taco, price: 3.49}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.TaxBps != 825 {
		t.Fatalf("TaxBps = %d, want 825", m.TaxBps)
	}
}

func TestRequirementMatches(t *testing.T) {
	taco := &menu.Item{SKU: "T001", Name: "Beef Taco", Category: "tacos"}
	chips := &menu.Item{SKU: "S001", Name: "Chips & Salsa", Category: "sides"}
	small := &menu.Item{SKU: "D001", Name: "Small Drink", Category: "drinks"}

	byCat := menu.Requirement{Category: "tacos", Qty: 2}
	if !byCat.Matches(taco) || byCat.Matches(chips) {
		t.Error("category requirement mismatched")
	}

	byName := menu.Requirement{NameHas: []string{"chips", "salsa"}, Qty: 1}
	if !byName.Matches(chips) || byName.Matches(small) {
		t.Error("name requirement mismatched")
	}

	empty := menu.Requirement{Qty: 1}
	if empty.Matches(taco) {
		t.Error("empty requirement matched")
	}
}
