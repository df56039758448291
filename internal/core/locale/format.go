package locale

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatNumber formata um número com separadores pt-BR e a quantidade de casas decimais informada.
func FormatNumber(v float64, decimals int) string {
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

// FormatBRL formata um valor monetário: 1234.5 -> "R$ 1.234,50".
func FormatBRL(v float64) string {
	return "R$ " + FormatNumber(v, 2)
}

// FormatKm formata uma distância sem casas decimais: 12345.4 -> "12.345 km".
func FormatKm(v float64) string {
	return FormatNumber(v, 0) + " km"
}

// FormatDate formata uma data no padrão dia/mês/ano.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
