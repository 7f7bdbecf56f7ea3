package view

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats amounts in a single configured currency. Cart amounts
// arrive in minor units, order totals arrive as backend decimals; both
// render through the same unit and symbol.
type Money struct {
	unit    currency.Unit
	printer *message.Printer
	scale   float64
}

// NewMoney builds a formatter for the given ISO 4217 code. An unknown
// code falls back to USD rather than failing startup.
func NewMoney(code string) *Money {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}

	scale, _ := currency.Cash.Rounding(unit)
	factor := 1.0
	for i := 0; i < scale; i++ {
		factor *= 10
	}

	return &Money{
		unit:    unit,
		printer: message.NewPrinter(language.English),
		scale:   factor,
	}
}

// Minor formats an amount held in minor units (cents).
func (m *Money) Minor(amount int64) string {
	return m.Amount(float64(amount) / m.scale)
}

// Amount formats a decimal amount.
func (m *Money) Amount(amount float64) string {
	return m.printer.Sprintf("%v", currency.Symbol(m.unit.Amount(amount)))
}

// formatDate renders an order timestamp for display. The zero time means
// the backend sent no date; it renders as a dash, never as the zero value.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}
