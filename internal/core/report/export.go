package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"rental-report-service/internal/core/aggregate"
	"rental-report-service/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// Nomes aceitos em ExportSubReport.
const (
	SubReportCategorias = "categorias"
	SubReportUsuarios   = "usuarios"
	SubReportMeses      = "meses"
	SubReportLocacoes   = "locacoes"
	SubReportDias       = "dias"
)

type subReportBuilder func(*domain.Table) ([]string, [][]string)

var subReports = map[string]subReportBuilder{
	SubReportCategorias: categoriasRows,
	SubReportUsuarios:   usuariosRows,
	SubReportMeses:      mesesRows,
	SubReportLocacoes:   locacoesRows,
	SubReportDias:       diasRows,
}

// SubReportNames lista os sub-relatórios exportáveis.
func SubReportNames() []string {
	return []string{SubReportCategorias, SubReportUsuarios, SubReportMeses, SubReportLocacoes, SubReportDias}
}

// ---------------------- tabela filtrada ----------------------

func tableView(table *domain.Table) domain.TableView {
	view := domain.TableView{Columns: table.Columns, Rows: make([][]string, 0, table.Len())}
	for _, rec := range table.Records {
		row := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = cellFor(rec, col)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// cellFor devolve o texto de uma coluna do registro: valores convertidos saem no formato
// numérico simples, datas como timestamp e as demais colunas como vieram do arquivo.
func cellFor(rec domain.Record, col string) string {
	switch col {
	case domain.ColRetirada:
		return formatTime(rec.Retirada)
	case domain.ColDevolucao:
		return formatTime(rec.Devolucao)
	case domain.ColKmRodado:
		return formatNull(rec.KmRodado)
	case domain.ColAno:
		return formatPart(rec, rec.Ano)
	case domain.ColMes:
		return formatPart(rec, rec.Mes)
	case domain.ColDia:
		return formatPart(rec, rec.Dia)
	case domain.ColAnoMes:
		return rec.AnoMes
	case domain.ColUsuario:
		return rec.Usuario
	}
	if v, ok := rec.Values[col]; ok {
		return formatNull(v)
	}
	return rec.Cells[col]
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}

func formatNull(v domain.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

func formatPart(rec domain.Record, n int) string {
	if rec.Retirada == nil {
		return ""
	}
	return strconv.Itoa(n)
}

func gerarCSVTabela(table *domain.Table) ([]byte, error) {
	view := tableView(table)
	return gerarCSV(view.Columns, view.Rows)
}

// ---------------------- sub-relatórios ----------------------

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func categoriasRows(table *domain.Table) ([]string, [][]string) {
	header := []string{"Categoria", "Total (R$)"}
	var rows [][]string
	for _, c := range aggregate.CostCategories(table) {
		rows = append(rows, []string{c.Category, money(c.Total)})
	}
	return header, rows
}

func usuariosRows(table *domain.Table) ([]string, [][]string) {
	costCols := aggregate.PresentColumns(table, aggregate.UserCostFields)
	header := append([]string{domain.ColUsuario, domain.ColKmRodado}, costCols...)
	header = append(header, "QTDE_RESERVAS")

	var rows [][]string
	for _, u := range aggregate.ByUser(table) {
		row := []string{u.User, strconv.FormatFloat(u.KmRodado, 'f', -1, 64)}
		for _, col := range costCols {
			row = append(row, money(u.Costs[col]))
		}
		row = append(row, strconv.Itoa(u.Reservations))
		rows = append(rows, row)
	}
	return header, rows
}

func mesesRows(table *domain.Table) ([]string, [][]string) {
	header := []string{domain.ColAnoMes, "Quantidade de Aparições"}
	var rows [][]string
	for _, m := range aggregate.ByMonth(table) {
		rows = append(rows, []string{m.Month, strconv.Itoa(m.Count)})
	}
	return header, rows
}

func locacoesRows(table *domain.Table) ([]string, [][]string) {
	header := []string{domain.ColUsuario, "Quantidade de Locações"}
	var rows [][]string
	for _, u := range aggregate.ReservationsByUser(table) {
		rows = append(rows, []string{u.User, strconv.Itoa(u.Count)})
	}
	return header, rows
}

func diasRows(table *domain.Table) ([]string, [][]string) {
	header := []string{"Data", domain.ColKmRodado}
	var rows [][]string
	for _, d := range aggregate.KmByDay(table) {
		rows = append(rows, []string{d.Date, strconv.FormatFloat(d.KmRodado, 'f', -1, 64)})
	}
	return header, rows
}

// ---------------------- escrita do CSV ----------------------

// gerarCSV escreve cabeçalho e linhas em CSV UTF-8 separado por vírgula.
func gerarCSV(header []string, rows [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	clean := make([]string, len(header))
	for i := range header {
		clean[i] = sanitizeForCSV(header[i])
	}
	if err := writer.Write(clean); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := make([]string, len(row))
		for i := range row {
			record[i] = sanitizeForCSV(row[i])
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

// sanitizeForCSV apara espaços das pontas, descarta quebras de linha e tabs embutidos e
// troca os demais caracteres de controle por espaço.
func sanitizeForCSV(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < 32 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
