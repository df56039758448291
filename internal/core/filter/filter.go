// Package filter recorta a tabela normalizada por período e empresa.
package filter

import (
	"sort"
	"time"

	"rental-report-service/internal/domain"
)

// Apply retorna as linhas que atendem ao período e à empresa informados.
// Linhas sem data de retirada nunca entram no recorte. O resultado pode ser vazio.
func Apply(table *domain.Table, f domain.Filter) *domain.Table {
	var out []domain.Record
	for _, rec := range table.Records {
		if !matchPeriod(rec, f) {
			continue
		}
		if !matchCompany(rec, f.Company) {
			continue
		}
		out = append(out, rec)
	}
	return table.WithRecords(out)
}

func matchPeriod(rec domain.Record, f domain.Filter) bool {
	if rec.Retirada == nil {
		return false
	}
	switch f.Mode {
	case domain.ModeMonthly:
		return rec.Ano == f.Year && rec.Mes == f.Month
	default:
		t := *rec.Retirada
		return !t.Before(f.Start) && !t.After(f.End)
	}
}

func matchCompany(rec domain.Record, company string) bool {
	if company == "" || company == domain.AllCompanies {
		return true
	}
	return rec.Empresa == company
}

// Options lista os valores disponíveis para o filtro: empresas, anos, meses de cada ano
// e o intervalo de datas de retirada.
func Options(table *domain.Table) domain.FilterOptions {
	opts := domain.FilterOptions{Months: map[int][]int{}}
	companies := map[string]bool{}
	months := map[int]map[int]bool{}

	for _, rec := range table.Records {
		if table.HasColumn(domain.ColEmpresa) && rec.Empresa != "" && !companies[rec.Empresa] {
			companies[rec.Empresa] = true
			opts.Companies = append(opts.Companies, rec.Empresa)
		}
		if rec.Retirada == nil {
			continue
		}
		t := *rec.Retirada
		if opts.MinDate == nil || t.Before(*opts.MinDate) {
			opts.MinDate = &t
		}
		if opts.MaxDate == nil || t.After(*opts.MaxDate) {
			opts.MaxDate = &t
		}
		if months[rec.Ano] == nil {
			months[rec.Ano] = map[int]bool{}
			opts.Years = append(opts.Years, rec.Ano)
		}
		if !months[rec.Ano][rec.Mes] {
			months[rec.Ano][rec.Mes] = true
			opts.Months[rec.Ano] = append(opts.Months[rec.Ano], rec.Mes)
		}
	}

	sort.Strings(opts.Companies)
	sort.Ints(opts.Years)
	for _, ms := range opts.Months {
		sort.Ints(ms)
	}
	return opts
}

// Resolve completa o filtro com os valores padrão: o período inteiro do arquivo no modo
// período, o primeiro ano e o primeiro mês desse ano no modo mensal.
func Resolve(f domain.Filter, opts domain.FilterOptions) domain.Filter {
	if f.Mode == "" {
		f.Mode = domain.ModePeriod
	}
	if f.Company == "" {
		f.Company = domain.AllCompanies
	}

	switch f.Mode {
	case domain.ModeMonthly:
		if f.Year == 0 && len(opts.Years) > 0 {
			f.Year = opts.Years[0]
		}
		if f.Month == 0 {
			if ms := opts.Months[f.Year]; len(ms) > 0 {
				f.Month = ms[0]
			}
		}
	default:
		if f.Start.IsZero() && opts.MinDate != nil {
			f.Start = startOfDay(*opts.MinDate)
		}
		if f.End.IsZero() && opts.MaxDate != nil {
			f.End = EndOfDay(*opts.MaxDate)
		}
	}
	return f
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay retorna o último instante do dia de t, para que a data final do período
// inclua todas as retiradas daquele dia.
func EndOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
