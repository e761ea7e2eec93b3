package order

import (
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// Opportunity is one detected combo upgrade: the rule, how many
// instances the current ledger can satisfy, and what the customer would
// save by taking all of them.
type Opportunity struct {
	Combo menu.Combo
	// Count is how many instances are fully satisfiable right now.
	Count int
	// Savings is the total across Count instances: consumed à-la-carte
	// value minus Count bundle prices. Consumption follows line order,
	// so which tacos get eaten affects the number.
	Savings menu.Cents
}

// Detect finds every combo opportunity in the ledger. Pure: the order
// is not modified. Rules are evaluated independently, so two
// opportunities may claim the same chips; the caller applies at most a
// chosen subset, and Apply re-counts against the live ledger.
func Detect(o *Order, m *menu.Menu) []Opportunity {
	var out []Opportunity
	for _, rule := range m.Combos() {
		count := achievable(o.Lines, rule)
		if count == 0 {
			continue
		}
		consumed, _ := consume(o.Lines, rule, count)
		out = append(out, Opportunity{
			Combo:   rule,
			Count:   count,
			Savings: consumed - rule.Result.Price.Mul(count),
		})
	}
	return out
}

// Applied describes one atomic combo upgrade: which quantities were
// taken off which lines, the combo lines added, and the net savings.
type Applied struct {
	Removed []Line
	Added   []Line
	Savings menu.Cents
	Count   int
}

// Apply upgrades the ledger in place for each rule, in rule order, as a
// single atomic mutation: either the order ends up with every
// achievable instance applied and totals recomputed once, or (when no
// rule is achievable) it is left untouched and ok is false.
//
// Later rules see the lines already consumed by earlier ones, so
// overlapping rules resolve first-rule-wins rather than double-spending
// an item.
func Apply(o *Order, m *menu.Menu, rules []menu.Combo) (Applied, bool) {
	working := make([]Line, len(o.Lines))
	copy(working, o.Lines)

	var res Applied
	for _, rule := range rules {
		count := achievable(working, rule)
		if count == 0 {
			continue
		}
		consumedValue, next := consume(working, rule, count)
		removed := diffConsumed(working, next)
		working = next

		bundle := Line{
			SKU:         rule.Result.SKU,
			Name:        rule.Result.Name,
			Category:    rule.Result.Category,
			Description: rule.Result.Description,
			UnitPrice:   rule.Result.Price,
			Quantity:    count,
		}
		bundle.Total = bundle.UnitPrice.Mul(count)
		merged := false
		for i := range working {
			if working[i].SKU == bundle.SKU {
				working[i].Quantity += count
				merged = true
				break
			}
		}
		if !merged {
			working = append(working, bundle)
		}

		res.Removed = append(res.Removed, removed...)
		res.Added = append(res.Added, bundle)
		res.Savings += consumedValue - rule.Result.Price.Mul(count)
		res.Count += count
	}

	if res.Count == 0 {
		return Applied{}, false
	}
	o.Lines = working
	o.recalc()
	return res, true
}

// achievable returns how many instances of the rule the lines can fully
// satisfy: the minimum over requirements of floor(available / qty).
// Combo lines never feed another combo.
func achievable(lines []Line, rule menu.Combo) int {
	count := -1
	for _, req := range rule.Requires {
		avail := 0
		for i := range lines {
			if eligible(&lines[i], req) {
				avail += lines[i].Quantity
			}
		}
		n := avail / req.Qty
		if count < 0 || n < count {
			count = n
		}
	}
	if count < 0 {
		return 0
	}
	return count
}

// consume returns the à-la-carte value of count instances' worth of
// required items and a copy of lines with those quantities deducted.
// Lines are consumed in ledger order.
func consume(lines []Line, rule menu.Combo, count int) (menu.Cents, []Line) {
	next := make([]Line, len(lines))
	copy(next, lines)
	var value menu.Cents
	for _, req := range rule.Requires {
		need := req.Qty * count
		for i := range next {
			if need == 0 {
				break
			}
			if !eligible(&next[i], req) {
				continue
			}
			take := next[i].Quantity
			if take > need {
				take = need
			}
			next[i].Quantity -= take
			value += next[i].UnitPrice.Mul(take)
			need -= take
		}
	}
	kept := next[:0]
	for _, l := range next {
		if l.Quantity > 0 {
			l.Total = l.UnitPrice.Mul(l.Quantity)
			kept = append(kept, l)
		}
	}
	return value, kept
}

// eligible reports whether a line can feed a requirement. Combo lines
// are excluded outright: a bundle never feeds another bundle.
func eligible(l *Line, req menu.Requirement) bool {
	if l.Category == menu.ComboCategory {
		return false
	}
	return req.Matches(&menu.Item{SKU: l.SKU, Name: l.Name, Category: l.Category})
}

// diffConsumed reports, per line, the quantity that disappeared between
// before and after, as removal descriptions priced at the line's unit
// price.
func diffConsumed(before, after []Line) []Line {
	remaining := make(map[string]int, len(after))
	for _, l := range after {
		remaining[l.SKU] = l.Quantity
	}
	var out []Line
	for _, l := range before {
		gone := l.Quantity - remaining[l.SKU]
		if gone > 0 {
			out = append(out, Line{
				SKU:       l.SKU,
				Name:      l.Name,
				UnitPrice: l.UnitPrice,
				Quantity:  gone,
				Total:     l.UnitPrice.Mul(gone),
			})
		}
	}
	return out
}
