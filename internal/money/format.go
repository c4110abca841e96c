package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLanguage is the locale the console renders values in.
var DefaultLanguage = language.BrazilianPortuguese

// Formatter renders money and percentages for one locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a Formatter for tag using symbol as currency prefix.
func NewFormatter(tag language.Tag, symbol string) Formatter {
	return Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Default returns the pt-BR formatter.
func Default() Formatter {
	return NewFormatter(DefaultLanguage, "R$")
}

// Cents formats an amount in hundredths, e.g. "R$ 1.234,50".
func (f Formatter) Cents(cents int64) string {
	v := float64(cents) / 100
	return f.symbol + " " + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Percent formats a percentage with up to two fraction digits, e.g. "12,5%".
func (f Formatter) Percent(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2))) + "%"
}
