package brain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxFractionDigits bounds the fractional digits in number text.
const MaxFractionDigits = 6

var printer = message.NewPrinter(language.English)

// FormatNumber renders v the way operands appear in descriptions: no digit
// grouping and at most MaxFractionDigits fractional digits with trailing
// zeros dropped. Displays should use the same function so the trace and the
// live value agree.
//
// Non-finite values render as "+Inf", "-Inf" and "NaN".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return printer.Sprint(number.Decimal(v,
		number.MaxFractionDigits(MaxFractionDigits),
		number.NoSeparator(),
	))
}
