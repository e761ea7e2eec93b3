// Package order is the mutable side of the ordering engine: the ledger
// of line items with derived totals, and the combo-upgrade arithmetic
// over it.
//
// All derived fields (Subtotal, Tax, Total, ItemCount) are recomputed
// from the lines after every mutation; nothing ever trusts an
// externally supplied total. Mutations clamp against the order limits
// instead of failing, and every mutation returns a Delta describing
// exactly what changed so the caller can phrase it for the customer.
package order

import (
	"strings"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// Order-wide limits. Requests beyond them are clamped, not rejected.
const (
	// MaxPerAdd caps a single add request; one utterance can't add more
	// than this many units of one item.
	MaxPerAdd = 10
	// MaxPerType caps the quantity of any single SKU.
	MaxPerType = 20
	// MaxTotalItems caps the summed quantity across all lines.
	MaxTotalItems = 50
	// MaxOrderValue caps the order subtotal.
	MaxOrderValue = menu.Cents(50000)
)

// All is the sentinel quantity for Remove meaning "the whole line".
const All = -1

// Line is one ledger entry. UnitPrice is copied from the catalog at add
// time and never changes afterwards, so catalog edits don't reprice
// existing lines.
type Line struct {
	SKU         string     `json:"sku" msgpack:"sku"`
	Name        string     `json:"name" msgpack:"name"`
	Category    string     `json:"category,omitempty" msgpack:"category,omitempty"`
	Description string     `json:"description,omitempty" msgpack:"description,omitempty"`
	UnitPrice   menu.Cents `json:"price" msgpack:"price"`
	Quantity    int        `json:"quantity" msgpack:"quantity"`
	Total       menu.Cents `json:"total" msgpack:"total"`
}

// Order is the running ledger for one conversation. It is not safe for
// concurrent mutation; the caller serializes operations per
// conversation.
type Order struct {
	Lines     []Line     `json:"items" msgpack:"items"`
	Subtotal  menu.Cents `json:"subtotal" msgpack:"subtotal"`
	Tax       menu.Cents `json:"tax" msgpack:"tax"`
	Total     menu.Cents `json:"total" msgpack:"total"`
	ItemCount int        `json:"item_count" msgpack:"item_count"`
	// Number is the spoken order number, assigned at payment.
	Number int `json:"order_number,omitempty" msgpack:"order_number,omitempty"`
	// TaxBps is the order-level tax rate in basis points.
	TaxBps int64 `json:"-" msgpack:"tax_bps"`
}

// New creates an empty order with the given tax rate.
func New(taxBps int64) *Order {
	return &Order{TaxBps: taxBps}
}

// DeltaKind classifies what a mutation did to the ledger.
type DeltaKind string

const (
	// DeltaAdded means a new line appeared.
	DeltaAdded DeltaKind = "added"
	// DeltaUpdated means an existing line's quantity changed.
	DeltaUpdated DeltaKind = "updated"
	// DeltaRemoved means a line disappeared.
	DeltaRemoved DeltaKind = "removed"
	// DeltaNone means the ledger did not change.
	DeltaNone DeltaKind = "none"
)

// Delta describes one mutation: pre/post quantity for the touched line
// and whether the requested amount was clamped by a limit.
type Delta struct {
	Kind    DeltaKind
	SKU     string
	Name    string
	PrevQty int
	Qty     int
	// Clamped reports that the request was reduced to satisfy a limit;
	// ClampReason says which one, phrased for the customer.
	Clamped     bool
	ClampReason string
}

// Changed reports whether the mutation altered the ledger.
func (d Delta) Changed() bool { return d.Kind != DeltaNone }

// Line returns a pointer to the line with the given SKU, or nil. The
// pointer is invalidated by the next mutation.
func (o *Order) Line(sku string) *Line {
	for i := range o.Lines {
		if o.Lines[i].SKU == sku {
			return &o.Lines[i]
		}
	}
	return nil
}

// Add merges quantity into the SKU's line, or appends a new line. The
// request is clamped, in order, by MaxPerAdd, MaxTotalItems, MaxPerType,
// and MaxOrderValue; the strongest clamp wins and is reported in the
// Delta. A request clamped all the way to zero is a DeltaNone.
func (o *Order) Add(it *menu.Item, qty int) Delta {
	d := Delta{SKU: it.SKU, Name: it.Name}

	if qty < 1 {
		qty = 1
	}
	if qty > MaxPerAdd {
		qty = MaxPerAdd
		d.clamp("limited to 10 per request")
	}

	if headroom := MaxTotalItems - o.ItemCount; qty > headroom {
		qty = headroom
		d.clamp("the order is limited to 50 items")
	}

	existing := o.Line(it.SKU)
	if existing != nil {
		d.PrevQty = existing.Quantity
		if existing.Quantity+qty > MaxPerType {
			qty = MaxPerType - existing.Quantity
			d.clamp("limited to 20 per item")
		}
	} else if qty > MaxPerType {
		qty = MaxPerType
		d.clamp("limited to 20 per item")
	}

	if remaining := MaxOrderValue - o.Subtotal; it.Price.Mul(qty) > remaining {
		qty = int(remaining / it.Price)
		d.clamp("the order is limited to " + MaxOrderValue.String())
	}

	if qty <= 0 {
		d.Kind = DeltaNone
		d.Qty = d.PrevQty
		return d
	}

	if existing != nil {
		existing.Quantity += qty
		d.Kind = DeltaUpdated
		d.Qty = existing.Quantity
	} else {
		o.Lines = append(o.Lines, Line{
			SKU:         it.SKU,
			Name:        it.Name,
			Category:    it.Category,
			Description: it.Description,
			UnitPrice:   it.Price,
			Quantity:    qty,
		})
		d.Kind = DeltaAdded
		d.Qty = qty
	}
	o.recalc()
	return d
}

// Remove decrements the SKU's line by qty, removing the line when it
// reaches zero. qty of All (or anything at or above the line quantity)
// removes the whole line. Removing an absent SKU is a no-op, not an
// error.
func (o *Order) Remove(sku string, qty int) Delta {
	i := o.lineIndex(sku)
	if i < 0 {
		return Delta{Kind: DeltaNone, SKU: sku}
	}
	line := &o.Lines[i]
	d := Delta{SKU: line.SKU, Name: line.Name, PrevQty: line.Quantity}

	if qty == All || qty >= line.Quantity {
		o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		d.Kind = DeltaRemoved
		d.Qty = 0
	} else {
		if qty < 1 {
			qty = 1
		}
		line.Quantity -= qty
		d.Kind = DeltaUpdated
		d.Qty = line.Quantity
	}
	o.recalc()
	return d
}

// SetQuantity sets the SKU's line to an absolute quantity, clamped by
// the order limits. A target of zero removes the line.
func (o *Order) SetQuantity(sku string, qty int) Delta {
	i := o.lineIndex(sku)
	if i < 0 {
		return Delta{Kind: DeltaNone, SKU: sku}
	}
	line := &o.Lines[i]
	d := Delta{SKU: line.SKU, Name: line.Name, PrevQty: line.Quantity}

	if qty <= 0 {
		o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		d.Kind = DeltaRemoved
		d.Qty = 0
		o.recalc()
		return d
	}

	if qty > MaxPerType {
		qty = MaxPerType
		d.clamp("limited to 20 per item")
	}
	if others := o.ItemCount - line.Quantity; others+qty > MaxTotalItems {
		qty = MaxTotalItems - others
		d.clamp("the order is limited to 50 items")
	}
	if others := o.Subtotal - line.Total; others+line.UnitPrice.Mul(qty) > MaxOrderValue {
		qty = int((MaxOrderValue - others) / line.UnitPrice)
		d.clamp("the order is limited to " + MaxOrderValue.String())
	}
	if qty <= 0 {
		o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		d.Kind = DeltaRemoved
		d.Qty = 0
		o.recalc()
		return d
	}

	if qty == line.Quantity {
		d.Kind = DeltaNone
		d.Qty = qty
		return d
	}
	line.Quantity = qty
	d.Kind = DeltaUpdated
	d.Qty = qty
	o.recalc()
	return d
}

// Clear empties the ledger completely, including the order number.
func (o *Order) Clear() {
	o.Lines = nil
	o.Number = 0
	o.recalc()
}

// ClearLines empties the ledger but keeps the order number, for the
// completed-order display.
func (o *Order) ClearLines() {
	o.Lines = nil
	o.recalc()
}

// MatchLine finds a line by loose phrase match, for removals when the
// phrase didn't resolve against the catalog ("remove the bottles").
// Substring containment is tried first, then word-by-word prefix
// overlap.
func (o *Order) MatchLine(phrase string) *Line {
	p := menu.Normalize(phrase)
	if p == "" {
		return nil
	}
	for i := range o.Lines {
		if strings.Contains(strings.ToLower(o.Lines[i].Name), p) {
			return &o.Lines[i]
		}
	}
	pwords := strings.Fields(p)
	for i := range o.Lines {
		nwords := strings.Fields(strings.ToLower(o.Lines[i].Name))
		for _, pw := range pwords {
			for _, nw := range nwords {
				if strings.HasPrefix(nw, pw) || strings.HasPrefix(pw, nw) {
					return &o.Lines[i]
				}
			}
		}
	}
	return nil
}

func (o *Order) lineIndex(sku string) int {
	for i := range o.Lines {
		if o.Lines[i].SKU == sku {
			return i
		}
	}
	return -1
}

// recalc rebuilds every derived field from the lines. This is the sole
// source of truth for totals.
func (o *Order) recalc() {
	o.Subtotal = 0
	o.ItemCount = 0
	for i := range o.Lines {
		line := &o.Lines[i]
		line.Total = line.UnitPrice.Mul(line.Quantity)
		o.Subtotal += line.Total
		o.ItemCount += line.Quantity
	}
	o.Tax = o.Subtotal.RoundedPercent(o.TaxBps)
	o.Total = o.Subtotal + o.Tax
}

func (d *Delta) clamp(reason string) {
	d.Clamped = true
	d.ClampReason = reason
}
