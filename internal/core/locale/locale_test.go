package locale

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"prefixo e milhar", "R$ 1.234,56", 1234.56, true},
		{"sem prefixo", "1234,56", 1234.56, true},
		{"espacos", "  R$  10,00 ", 10, true},
		{"negativo", "-5,5", -5.5, true},
		{"inteiro", "100", 100, true},
		{"float nativo", 42.5, 42.5, true},
		{"int nativo", 7, 7, true},
		{"texto", "abc", 0, false},
		{"vazio", "", 0, false},
		{"nil", nil, 0, false},
		{"nan nativo", math.NaN(), 0, false},
		{"texto nan", "NaN", 0, false},
		{"bool", true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCurrency(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestParseDistance(t *testing.T) {
	got, ok := ParseDistance("10.000,5")
	assert.True(t, ok)
	assert.InDelta(t, 10000.5, got, 1e-9)

	got, ok = ParseDistance(int64(15300))
	assert.True(t, ok)
	assert.Equal(t, 15300.0, got)

	// o prefixo de moeda só é aceito no parser monetário
	_, ok = ParseDistance("R$ 10")
	assert.False(t, ok)
}

func TestParseDayFirst(t *testing.T) {
	cases := []struct {
		in   any
		want time.Time
		ok   bool
	}{
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/2024 14:30", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), true},
		{"5/3/2024 08:15:10", time.Date(2024, 3, 5, 8, 15, 10, 0, time.UTC), true},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05 09:00:00", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), true},
		{45356.5, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), true},
		{"45356", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"31/02/2024", time.Time{}, false},
		{"amanhã", time.Time{}, false},
		{"", time.Time{}, false},
		{12.0, time.Time{}, false},
		{nil, time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDayFirst(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		if tc.ok {
			assert.True(t, tc.want.Equal(got), "%v: esperado %v, obtido %v", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "LOCATARIO", NormalizeText(" Locatário "))
	assert.Equal(t, "KM RETIRADA", NormalizeText("Km_Retirada"))
	assert.Equal(t, "DATA DE DEVOLUCAO", NormalizeText("data  de devolução"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 1.234.567,89", FormatBRL(1234567.891))
	assert.Equal(t, "12.345 km", FormatKm(12345.4))
	assert.Equal(t, "05/03/2024", FormatDate(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
}
