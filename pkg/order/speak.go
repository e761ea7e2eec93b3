package order

import (
	"strconv"
	"strings"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// Spoken rendering for the dialogue layer. Totals and order numbers go
// to a text-to-speech engine, which reads "$11.96" badly; "eleven
// dollars and ninety-six cents" it reads fine.

var (
	onesWords = []string{"", "one", "two", "three", "four", "five", "six",
		"seven", "eight", "nine"}
	teensWords = []string{"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tensWords = []string{"", "", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety"}
	digitWords = []string{"zero", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine"}
)

// SpeakCents renders a currency amount as spoken English:
// 1196 -> "eleven dollars and ninety-six cents".
func SpeakCents(c menu.Cents) string {
	if c == 0 {
		return "zero dollars"
	}
	dollars, cents := c.Dollars()

	var parts []string
	if dollars > 0 {
		w := speakWhole(dollars)
		if dollars == 1 {
			parts = append(parts, "one dollar")
		} else {
			parts = append(parts, w+" dollars")
		}
	}
	if cents > 0 {
		var cw string
		if cents == 1 {
			cw = "one cent"
		} else {
			cw = speakUnderThousand(int(cents)) + " cents"
		}
		if len(parts) > 0 {
			parts = append(parts, "and "+cw)
		} else {
			parts = append(parts, cw)
		}
	}
	return strings.Join(parts, " ")
}

// SpeakDigits renders a number digit by digit: 401 -> "four zero one".
// Order numbers are read this way so the customer hears them the same
// way the pickup window announces them.
func SpeakDigits(n int) string {
	if n < 0 {
		n = -n
	}
	s := strconv.Itoa(n)
	words := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		words[i] = digitWords[s[i]-'0']
	}
	return strings.Join(words, " ")
}

// speakWhole handles amounts up to the order-value cap; thousands are
// plenty.
func speakWhole(n int64) string {
	if n >= 1000 {
		head := speakUnderThousand(int(n / 1000))
		rest := int(n % 1000)
		if rest == 0 {
			return head + " thousand"
		}
		return head + " thousand " + speakUnderThousand(rest)
	}
	return speakUnderThousand(int(n))
}

func speakUnderThousand(n int) string {
	switch {
	case n <= 0:
		return ""
	case n < 10:
		return onesWords[n]
	case n < 20:
		return teensWords[n-10]
	case n < 100:
		w := tensWords[n/10]
		if n%10 > 0 {
			w += "-" + onesWords[n%10]
		}
		return w
	default:
		w := onesWords[n/100] + " hundred"
		if rest := n % 100; rest > 0 {
			w += " and " + speakUnderThousand(rest)
		}
		return w
	}
}
