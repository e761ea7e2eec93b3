// Package cli provides terminal rendering for the guacd command line:
// menu boards and order receipts styled with lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/order"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // accent: headings, prices
	Dim     lipgloss.Color // secondary: descriptions, help
}

// DefaultTheme is guacamole green.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#7bc96f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Price   lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Section: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Price:   lipgloss.NewStyle().Foreground(t.Primary),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// MenuBoard renders the full catalog grouped by category, in
// declaration order.
func MenuBoard(m *menu.Menu, s Styles) string {
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Holy Guacamole! Menu"))
	sb.WriteString("\n")

	var lastCat string
	for _, it := range m.Items() {
		if it.Category != lastCat {
			lastCat = it.Category
			sb.WriteString("\n" + s.Section.Render(titleCase(it.Category)) + "\n")
		}
		name := it.Name
		price := s.Price.Render(it.Price.String())
		pad := max(1, 30-lipgloss.Width(name))
		fmt.Fprintf(&sb, "  %s%s%s\n", name, strings.Repeat(" ", pad), price)
		if it.Description != "" {
			sb.WriteString("    " + s.Dim.Render(it.Description) + "\n")
		}
	}
	return sb.String()
}

// Receipt renders the current order as a receipt, ending with the
// subtotal, tax, and total lines.
func Receipt(o *order.Order, s Styles) string {
	if len(o.Lines) == 0 {
		return s.Dim.Render("(your order is empty)")
	}

	var sb strings.Builder
	for _, l := range o.Lines {
		left := fmt.Sprintf("%dx %s", l.Quantity, l.Name)
		pad := max(1, 32-lipgloss.Width(left))
		fmt.Fprintf(&sb, "  %s%s%s\n", left, strings.Repeat(" ", pad), s.Price.Render(l.Total.String()))
	}
	sb.WriteString("  " + s.Dim.Render(strings.Repeat("─", 40)) + "\n")
	writeTotal(&sb, s, "Subtotal", o.Subtotal)
	writeTotal(&sb, s, "Tax", o.Tax)
	writeTotal(&sb, s, "Total", o.Total)
	if o.Number != 0 {
		fmt.Fprintf(&sb, "  %s\n", s.Section.Render(fmt.Sprintf("Order #%d", o.Number)))
	}
	return sb.String()
}

func writeTotal(sb *strings.Builder, s Styles, label string, c menu.Cents) {
	pad := max(1, 32-len(label))
	fmt.Fprintf(sb, "  %s%s%s\n", s.Section.Render(label), strings.Repeat(" ", pad), s.Price.Render(c.String()))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
