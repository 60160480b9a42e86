package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale = "es-AR"
	DefaultSymbol = "$"
)

// Formatter renders local-currency amounts as whole units, symbol first.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(locale string, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

func (f *Formatter) Format(amount float64) string {
	if math.IsNaN(amount) {
		return f.symbol + "0"
	}

	sign := ""
	rounded := math.Round(amount)
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + f.symbol + "\u00a0" + f.printer.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(0)))
}
