// Package locale concentra a conversão de números e datas no formato brasileiro
// e a formatação pt-BR usada na exibição dos relatórios.
package locale

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const currencyPrefix = "R$"

// Intervalo aceito para seriais de data do Excel (1954 a 2119).
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/06",
}

// ParseCurrency converte um valor monetário ("R$ 1.234,56", "1234,56" ou numérico) em float64.
// Retorna false quando o valor não pode ser convertido.
func ParseCurrency(raw any) (float64, bool) {
	if s, ok := raw.(string); ok {
		return parseBRText(strings.ReplaceAll(s, currencyPrefix, ""))
	}
	return toFloat(raw)
}

// ParseDistance converte leituras de hodômetro ("10.000,5") em float64.
func ParseDistance(raw any) (float64, bool) {
	if s, ok := raw.(string); ok {
		return parseBRText(s)
	}
	return toFloat(raw)
}

// parseBRText remove separadores de milhar, troca a vírgula decimal por ponto e converte.
func parseBRText(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// NaN e infinitos não são representáveis no JSON de saída; tratamos como nulos.
func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDayFirst converte datas no formato dia/mês/ano (com ou sem hora), datas ISO
// e seriais do Excel vindos de células numéricas.
func ParseDayFirst(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelSerial(f)
		}
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	}
	if f, ok := toFloat(raw); ok {
		return excelSerial(f)
	}
	return time.Time{}, false
}

func excelSerial(f float64) (time.Time, bool) {
	if f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	return ExcelSerialToDate(f), true
}

// ExcelSerialToDate converte um serial do Excel (base 1899-12-30) em data UTC.
func ExcelSerialToDate(serial float64) time.Time {
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := math.Floor(serial)
	frac := serial - days
	t := base.AddDate(0, 0, int(days))
	return t.Add(time.Duration(math.Round(frac*86400)) * time.Second)
}

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeText remove acentos, coloca em maiúsculas e troca pontuação por espaço.
func NormalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
