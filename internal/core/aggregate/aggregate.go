// Package aggregate calcula as métricas e os sub-relatórios sobre a tabela filtrada.
// As funções só leem a tabela; valores nulos são ignorados nas somas.
package aggregate

import (
	"sort"

	"rental-report-service/internal/domain"

	"gonum.org/v1/gonum/floats"
)

// ExtraCostFields compõem os custos extras do resumo.
var ExtraCostFields = []string{
	domain.ColTxRetorno, domain.ColDespesas, domain.ColAdicionais, domain.ColTxServico,
}

// CategoryFields são as categorias de custo extra, na ordem de exibição.
var CategoryFields = []string{
	domain.ColTotalHoraExtra, domain.ColQtdeKmExtra, domain.ColDespesas, domain.ColTxRetorno,
	domain.ColAdicionais, domain.ColTxServico, domain.ColCombustivel,
	domain.ColRecuperacaoAvarias, domain.ColReembolso,
}

// UserCostFields são os custos somados por usuário.
var UserCostFields = []string{
	domain.ColTxRetorno, domain.ColDespesas, domain.ColAdicionais, domain.ColTxServico,
	domain.ColCombustivel, domain.ColRecuperacaoAvarias, domain.ColReembolso,
}

// Summary calcula as métricas gerais do período.
func Summary(table *domain.Table) domain.Summary {
	s := domain.Summary{Records: table.Len()}
	if table.Len() == 0 {
		return s
	}

	s.TotalKm = sumKm(table.Records)
	s.Revenue = sumColumn(table, domain.ColTotalRA)
	for _, col := range ExtraCostFields {
		s.ExtraCosts += sumColumn(table, col)
	}
	if s.TotalKm != 0 {
		s.AvgCostPerKm = s.Revenue / s.TotalKm
	}
	return s
}

// PresentColumns filtra as colunas que existem na tabela, mantendo a ordem.
func PresentColumns(table *domain.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if table.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// CostCategories soma cada categoria de custo extra presente na tabela.
func CostCategories(table *domain.Table) []domain.CategoryTotal {
	if table.Len() == 0 {
		return []domain.CategoryTotal{}
	}
	out := []domain.CategoryTotal{}
	for _, col := range PresentColumns(table, CategoryFields) {
		out = append(out, domain.CategoryTotal{Category: col, Total: sumColumn(table, col)})
	}
	return out
}

// ByUser agrega km rodado, custos e quantidade de reservas por usuário, ordenando pelo
// km rodado de forma decrescente. Empates ficam em ordem alfabética.
func ByUser(table *domain.Table) []domain.UserUsage {
	out := []domain.UserUsage{}
	if table.Len() == 0 || !table.HasColumn(domain.ColUsuario) {
		return out
	}

	costCols := PresentColumns(table, UserCostFields)
	groups := groupBy(table.Records, func(r domain.Record) (string, bool) { return r.Usuario, true })
	for _, g := range groups {
		u := domain.UserUsage{
			User:         g.key,
			KmRodado:     sumKm(g.records),
			Costs:        make(map[string]float64, len(costCols)),
			Reservations: len(g.records),
		}
		for _, col := range costCols {
			u.Costs[col] = sumValues(g.records, col)
		}
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].User < out[j].User })
	sort.SliceStable(out, func(i, j int) bool { return out[i].KmRodado > out[j].KmRodado })
	return out
}

// ByMonth conta as linhas de cada mês (AnoMes), em ordem crescente.
func ByMonth(table *domain.Table) []domain.MonthCount {
	out := []domain.MonthCount{}
	groups := groupBy(table.Records, func(r domain.Record) (string, bool) { return r.AnoMes, r.AnoMes != "" })
	for _, g := range groups {
		out = append(out, domain.MonthCount{Month: g.key, Count: len(g.records)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ReservationsByUser conta as locações de cada usuário, da maior para a menor.
func ReservationsByUser(table *domain.Table) []domain.UserCount {
	out := []domain.UserCount{}
	if !table.HasColumn(domain.ColUsuario) {
		return out
	}
	groups := groupBy(table.Records, func(r domain.Record) (string, bool) { return r.Usuario, true })
	for _, g := range groups {
		out = append(out, domain.UserCount{User: g.key, Count: len(g.records)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].User < out[j].User })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// KmByDay soma o km rodado por data de retirada, em ordem cronológica.
func KmByDay(table *domain.Table) []domain.DayKm {
	out := []domain.DayKm{}
	if !table.HasColumn(domain.ColKmRodado) {
		return out
	}
	groups := groupBy(table.Records, func(r domain.Record) (string, bool) {
		if r.Retirada == nil {
			return "", false
		}
		return r.Retirada.Format("2006-01-02"), true
	})
	for _, g := range groups {
		out = append(out, domain.DayKm{Date: g.key, KmRodado: sumKm(g.records)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type group struct {
	key     string
	records []domain.Record
}

// groupBy agrupa os registros preservando a ordem da primeira aparição de cada chave.
func groupBy(records []domain.Record, key func(domain.Record) (string, bool)) []*group {
	var groups []*group
	idx := map[string]*group{}
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		g, found := idx[k]
		if !found {
			g = &group{key: k}
			idx[k] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}
	return groups
}

func sumColumn(table *domain.Table, col string) float64 {
	if !table.HasColumn(col) {
		return 0
	}
	return sumValues(table.Records, col)
}

func sumValues(records []domain.Record, col string) float64 {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if v := r.Value(col); v.Valid {
			vals = append(vals, v.Value)
		}
	}
	return floats.Sum(vals)
}

func sumKm(records []domain.Record) float64 {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if r.KmRodado.Valid {
			vals = append(vals, r.KmRodado.Value)
		}
	}
	return floats.Sum(vals)
}
