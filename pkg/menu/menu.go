// Package menu holds the static catalog for the Holy Guacamole ordering
// engine: items with prices and spoken-name aliases, and the combo rules
// that bundle items at a discount.
//
// A Menu is immutable after load and safe to share across conversations.
// Everything derived from it (alias index, term-weight model) is built
// once during Load and treated as read-only.
package menu

import (
	"strings"
)

// Item is a single orderable catalog entry. Items are immutable after
// load; order lines copy the price at add time so later catalog edits
// never reprice an existing line.
type Item struct {
	SKU         string
	Name        string
	Price       Cents
	Category    string
	Description string
	Aliases     []string
}

// Requirement is one predicate of a combo rule: how many items matching
// either a category or a set of name words are consumed per combo
// instance.
type Requirement struct {
	// Category matches items whose category equals this value.
	Category string
	// NameHas matches items whose lowercase name contains every word.
	// Ignored when Category is set.
	NameHas []string
	// Qty is the number of matching items consumed per combo instance.
	Qty int
}

// Matches reports whether the item satisfies this requirement's
// predicate.
func (r Requirement) Matches(it *Item) bool {
	if r.Category != "" {
		return it.Category == r.Category
	}
	name := strings.ToLower(it.Name)
	for _, w := range r.NameHas {
		if !strings.Contains(name, strings.ToLower(w)) {
			return false
		}
	}
	return len(r.NameHas) > 0
}

// Combo is a bundle-upgrade rule: when the requirements are met by
// à-la-carte lines, they can be swapped for the result item at the
// bundle price. Rules are evaluated independently of each other.
type Combo struct {
	// Result is the catalog item added when the combo is applied.
	Result *Item
	// Requires lists the predicates consumed per combo instance.
	Requires []Requirement
}

// Menu is the loaded catalog. Item order is declaration order from the
// source document, which matters: similarity ties resolve to the
// first-declared item.
type Menu struct {
	items   []*Item
	bySKU   map[string]*Item
	aliases map[string]string // normalized alias -> SKU, first-declared wins
	combos  []Combo

	// TaxBps is the order-level tax rate in basis points (1000 = 10%).
	TaxBps int64
}

// Items returns all items in declaration order. The caller must not
// modify the returned slice.
func (m *Menu) Items() []*Item {
	return m.items
}

// Item returns the item with the given SKU, or nil.
func (m *Menu) Item(sku string) *Item {
	return m.bySKU[sku]
}

// Combos returns the combo rules in declaration order.
func (m *Menu) Combos() []Combo {
	return m.combos
}

// AliasSKU returns the SKU registered for a normalized alias, if any.
func (m *Menu) AliasSKU(phrase string) (string, bool) {
	sku, ok := m.aliases[Normalize(phrase)]
	return sku, ok
}

// ComboCategory is the category holding combo result items. Lines in
// this category never count toward a combo's requirements.
const ComboCategory = "combos"

// Normalize lowercases a phrase, trims it, and collapses interior
// whitespace so spoken variants compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
