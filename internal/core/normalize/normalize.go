// Package normalize limpa a tabela bruta do relatório de locação: descarta linhas
// administrativas, converte valores monetários, quilometragens e datas e calcula os
// campos derivados usados pelos sub-relatórios.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rental-report-service/internal/core/ingest"
	"rental-report-service/internal/core/locale"
	"rental-report-service/internal/domain"

	"github.com/go-gota/gota/series"
	"golang.org/x/text/cases"
)

// ErrMissingColumn indica a ausência de uma das colunas de data obrigatórias.
var ErrMissingColumn = errors.New("coluna obrigatória ausente")

// noiseMarker identifica linhas de cabeçalho/rodapé embutidas no meio dos dados.
const noiseMarker = "cadastro"

var renames = map[string]string{
	domain.SrcPreposto:  domain.ColPreposto,
	domain.SrcLocatario: domain.ColLocatario,
}

// Result é a saída da normalização.
type Result struct {
	Table   *domain.Table
	Alerts  []domain.Alert
	Notices []domain.Notice
	Dropped int
}

type parser func(any) (float64, bool)

type numericField struct {
	name  string
	parse parser
}

// Normalize aplica o filtro de linhas e a conversão de campos sobre a tabela bruta.
// Campos declarados que não existem no arquivo são ignorados; só a falta das colunas
// de data gera erro.
func Normalize(raw *ingest.RawTable) (*Result, error) {
	df := raw.Frame
	columns, colIdx := canonicalColumns(raw.Headers)

	for _, col := range domain.DateFields {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var fields []numericField
	for _, name := range domain.MoneyFields {
		if _, ok := colIdx[name]; ok {
			fields = append(fields, numericField{name: name, parse: locale.ParseCurrency})
		}
	}
	for _, name := range domain.DistanceFields {
		if _, ok := colIdx[name]; ok {
			fields = append(fields, numericField{name: name, parse: locale.ParseDistance})
		}
	}

	_, hasKmRet := colIdx[domain.ColKmRetirada]
	_, hasKmDev := colIdx[domain.ColKmDevolucao]
	_, hasPreposto := colIdx[domain.ColPreposto]
	_, hasLocatario := colIdx[domain.ColLocatario]
	withUser := hasPreposto && hasLocatario

	nullsBefore := make(map[string]int)
	nullsAfter := make(map[string]int)
	folder := cases.Fold()

	var records []domain.Record
	dropped := 0
	for i := 0; i < df.Nrow(); i++ {
		values := make(map[string]any, len(columns))
		cells := make(map[string]string, len(columns))
		noise := false
		for _, col := range columns {
			e := df.Elem(i, colIdx[col])
			values[col] = cellValue(e, raw.IsNumeric(i, colIdx[col]))
			text := cellText(e)
			cells[col] = text
			if strings.Contains(folder.String(text), noiseMarker) {
				noise = true
			}
		}
		if noise {
			dropped++
			continue
		}

		rec := domain.Record{
			Line:   raw.Line(i),
			Cells:  cells,
			Values: make(map[string]domain.NullFloat, len(fields)),
		}
		rec.Retirada = parseDate(values[domain.ColRetirada], domain.ColRetirada, nullsBefore, nullsAfter)
		rec.Devolucao = parseDate(values[domain.ColDevolucao], domain.ColDevolucao, nullsBefore, nullsAfter)

		for _, f := range fields {
			v := values[f.name]
			if v == nil {
				nullsBefore[f.name]++
			}
			parsed, ok := f.parse(v)
			if !ok {
				nullsAfter[f.name]++
				rec.Values[f.name] = domain.NullFloat{}
				continue
			}
			rec.Values[f.name] = domain.Float(parsed)
		}

		if hasKmRet && hasKmDev {
			rec.KmRodado = rec.Values[domain.ColKmDevolucao].Sub(rec.Values[domain.ColKmRetirada])
		}
		if rec.Retirada != nil {
			t := *rec.Retirada
			rec.Ano = t.Year()
			rec.Mes = int(t.Month())
			rec.Dia = t.Day()
			rec.AnoMes = t.Format("2006-01")
		}

		rec.Empresa = cells[domain.ColEmpresa]
		rec.Preposto = cells[domain.ColPreposto]
		rec.Locatario = cells[domain.ColLocatario]
		if withUser {
			rec.Usuario = ResolveUser(rec.Preposto, rec.Locatario)
		}

		records = append(records, rec)
	}

	outColumns := append([]string{}, columns...)
	outColumns = append(outColumns, domain.ColKmRodado, domain.ColAno, domain.ColMes, domain.ColDia, domain.ColAnoMes)
	if withUser {
		outColumns = append(outColumns, domain.ColUsuario)
	}

	var alerts []domain.Alert
	for _, f := range fields {
		alerts = appendAlert(alerts, f.name, domain.AlertNumeric, nullsAfter[f.name]-nullsBefore[f.name])
	}
	for _, col := range domain.DateFields {
		alerts = appendAlert(alerts, col, domain.AlertDate, nullsAfter[col]-nullsBefore[col])
	}

	return &Result{
		Table:   domain.NewTable(outColumns, records),
		Alerts:  alerts,
		Notices: missingColumnNotices(colIdx, raw.Headers),
		Dropped: dropped,
	}, nil
}

// ResolveUser devolve o preposto quando informado; caso contrário, o locatário marcado
// com o sufixo de origem.
func ResolveUser(preposto, locatario string) string {
	if p := strings.TrimSpace(preposto); p != "" {
		return p
	}
	return strings.TrimSpace(locatario + domain.UserSuffix)
}

// canonicalColumns apara os nomes, aplica as renomeações e mapeia cada coluna ao seu
// índice na tabela bruta. Nomes repetidos ganham o sufixo ".1", ".2"... e cabeçalhos
// vazios viram "Unnamed: <índice>"; a primeira ocorrência mantém o nome.
func canonicalColumns(names []string) ([]string, map[string]int) {
	columns := make([]string, 0, len(names))
	idx := make(map[string]int, len(names))
	for i, name := range names {
		col := strings.TrimSpace(name)
		if col == "" {
			col = fmt.Sprintf("Unnamed: %d", i)
		}
		if renamed, ok := renames[col]; ok {
			col = renamed
		}
		if _, seen := idx[col]; seen {
			base := col
			for n := 1; ; n++ {
				col = fmt.Sprintf("%s.%d", base, n)
				if _, taken := idx[col]; !taken {
					break
				}
			}
		}
		idx[col] = i
		columns = append(columns, col)
	}
	return columns, idx
}

func parseDate(v any, col string, before, after map[string]int) *time.Time {
	if v == nil {
		before[col]++
	}
	t, ok := locale.ParseDayFirst(v)
	if !ok {
		after[col]++
		return nil
	}
	return &t
}

func appendAlert(alerts []domain.Alert, field string, kind domain.AlertKind, delta int) []domain.Alert {
	if delta <= 0 {
		return alerts
	}
	msg := fmt.Sprintf("Campo '%s': %d valores não numéricos convertidos para NaN.", field, delta)
	if kind == domain.AlertDate {
		msg = fmt.Sprintf("Campo '%s': %d datas inválidas convertidas para nulo.", field, delta)
	}
	return append(alerts, domain.Alert{Field: field, Kind: kind, Count: delta, Message: msg})
}

// cellValue converte o elemento da tabela bruta em nil, float64 ou string. Células
// gravadas como número na planilha viram float64 mesmo em colunas de texto.
func cellValue(e series.Element, numeric bool) any {
	if e.IsNA() {
		return nil
	}
	switch e.Type() {
	case series.Int, series.Float:
		return e.Float()
	}
	s := e.String()
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if numeric {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return s
}

func cellText(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}
