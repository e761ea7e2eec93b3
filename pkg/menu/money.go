package menu

import "fmt"

// Cents is a fixed-point currency amount in US cents. All prices and
// totals in the engine are Cents; floating point is only touched at the
// YAML boundary when parsing dollar amounts.
type Cents int64

// Mul returns the amount multiplied by a quantity.
func (c Cents) Mul(n int) Cents {
	return c * Cents(n)
}

// String formats the amount as "$12.99". Negative amounts render as
// "-$1.97".
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

// Dollars returns the whole-dollar part and the remaining cents,
// both non-negative for non-negative amounts.
func (c Cents) Dollars() (int64, int64) {
	return int64(c) / 100, int64(c) % 100
}

// RoundedPercent returns c scaled by bps basis points (1% = 100 bps),
// rounded half-up to the nearest cent. Used for order-level tax so the
// rounding happens once, never per line.
func (c Cents) RoundedPercent(bps int64) Cents {
	v := int64(c) * bps
	if v >= 0 {
		return Cents((v + 5000) / 10000)
	}
	return Cents(-((-v + 5000) / 10000))
}
