// Package ingest lê o arquivo enviado (xlsx, xls, tsv ou csv) e o transforma em uma
// tabela bruta, sem nenhuma interpretação de negócio.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"rental-report-service/internal/domain"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	// ErrEmptyFile indica um arquivo sem cabeçalho ou sem linhas de dados.
	ErrEmptyFile = errors.New("arquivo vazio ou sem linhas de dados")
	// ErrUnsupportedFormat indica um conteúdo que não pôde ser lido no formato esperado.
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
)

// Format identifica o formato de leitura escolhido para o arquivo.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
)

const previewRows = 5

// DetectFormat escolhe o formato pela extensão do arquivo.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".tsv":
		return FormatTSV
	default:
		return FormatCSV
	}
}

// RawTable é a tabela lida do arquivo, com os tipos detectados por coluna.
type RawTable struct {
	Format    Format
	Delimiter rune
	// Headers é o cabeçalho como está no arquivo. Os nomes do Frame podem diferir em
	// cabeçalhos repetidos ou vazios.
	Headers []string
	Frame   dataframe.DataFrame

	numeric [][]bool
	lines   []int
}

// IsNumeric informa se a célula foi gravada como número na planilha. Em arquivos de
// texto é sempre falso.
func (r *RawTable) IsNumeric(row, col int) bool {
	if row < 0 || row >= len(r.numeric) || col < 0 || col >= len(r.numeric[row]) {
		return false
	}
	return r.numeric[row][col]
}

// Line devolve a linha do arquivo (base 1) de onde veio a linha de dados row.
func (r *RawTable) Line(row int) int {
	if row < 0 || row >= len(r.lines) {
		return row + 2
	}
	return r.lines[row]
}

// Preview retorna as primeiras linhas da tabela bruta.
func (r *RawTable) Preview() domain.Preview {
	n := r.Frame.Nrow()
	if n == 0 {
		return domain.Preview{Columns: r.Headers}
	}
	if n > previewRows {
		n = previewRows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	records := r.Frame.Subset(idx).Records()
	return domain.Preview{Columns: r.Headers, Rows: records[1:]}
}

// Loader define a leitura de arquivos de relatório.
type Loader interface {
	Load(file io.Reader, filename string) (*RawTable, error)
}

type loader struct{}

// NewLoader cria um novo leitor de arquivos.
func NewLoader() Loader {
	return &loader{}
}

func (l *loader) Load(file io.Reader, filename string) (*RawTable, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	raw := &RawTable{Format: DetectFormat(filename)}
	var rows []sheetRow

	switch raw.Format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	case FormatTSV:
		raw.Delimiter = '\t'
		rows, err = readDelimited(data, raw.Delimiter)
	default:
		text := decodeText(data)
		raw.Delimiter = sniffDelimiter(text)
		rows, err = readDelimitedText(text, raw.Delimiter)
	}
	if err != nil {
		return nil, err
	}

	if err := raw.build(rows); err != nil {
		return nil, err
	}
	return raw, nil
}

// sheetRow é uma linha do arquivo: o texto das células, quais delas estão gravadas
// como número e a linha de origem (base 1).
type sheetRow struct {
	cells   []string
	numeric []bool
	line    int
}

// ---------------------- leitores por formato ----------------------

func readXLSX(data []byte) ([]sheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao abrir planilha .xlsx: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	// valores brutos: números e seriais de data chegam sem a máscara de exibição
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha %q: %w", sheet, err)
	}

	out := make([]sheetRow, 0, len(rows))
	for i, cells := range rows {
		row := sheetRow{cells: cells, numeric: make([]bool, len(cells)), line: i + 1}
		for j, v := range cells {
			if v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("erro ao ler planilha %q: %w", sheet, err)
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("erro ao ler célula %s da planilha %q: %w", axis, sheet, err)
			}
			// células sem tipo explícito guardam números
			row.numeric[j] = (typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset) && isFloat(v)
		}
		out = append(out, row)
	}
	return out, nil
}

func readXLS(data []byte) ([]sheetRow, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		// talvez seja xlsx salvo com extensão .xls; tentar excelize
		if rows, errX := readXLSX(data); errX == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("%w: erro ao abrir planilha .xls: %v", ErrUnsupportedFormat, err)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, ErrEmptyFile
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}

	var rows []sheetRow
	for i, r := range sheet.GetRows() {
		row := sheetRow{line: i + 1}
		for _, cell := range r.GetCols() {
			v := cell.GetString()
			row.cells = append(row.cells, v)
			row.numeric = append(row.numeric, xlsNumberTypes[cell.GetType()] && isFloat(v))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// xlsNumberTypes são os registros BIFF que guardam valores numéricos.
var xlsNumberTypes = map[string]bool{"*record.Number": true, "*record.Rk": true}

func isFloat(v string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil
}

func readDelimited(data []byte, delimiter rune) ([]sheetRow, error) {
	return readDelimitedText(decodeText(data), delimiter)
}

func readDelimitedText(text string, delimiter rune) ([]sheetRow, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []sheetRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler arquivo delimitado por %q: %w", delimiter, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, sheetRow{cells: rec, line: line})
	}
	return rows, nil
}

// decodeText remove o BOM e decodifica arquivos que não estão em UTF-8 como ISO-8859-1.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ---------------------- montagem da tabela ----------------------

// build descarta linhas totalmente vazias, ajusta a largura das linhas ao cabeçalho e
// carrega os registros detectando o tipo de cada coluna. O tipo de cada célula e a linha
// de origem ficam guardados à parte.
func (r *RawTable) build(rows []sheetRow) error {
	var kept []sheetRow
	for _, row := range rows {
		if isBlank(row.cells) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) < 2 {
		return ErrEmptyFile
	}

	width := len(kept[0].cells)
	records := make([][]string, len(kept))
	for i, row := range kept {
		records[i] = fitWidth(row.cells, width)
	}

	r.Headers = records[0]
	r.numeric = make([][]bool, 0, len(kept)-1)
	r.lines = make([]int, 0, len(kept)-1)
	for _, row := range kept[1:] {
		flags := make([]bool, width)
		copy(flags, row.numeric)
		r.numeric = append(r.numeric, flags)
		r.lines = append(r.lines, row.line)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fmt.Errorf("erro ao montar tabela: %w", df.Err)
	}
	r.Frame = df
	return nil
}

func fitWidth(cells []string, width int) []string {
	switch {
	case len(cells) < width:
		padded := make([]string, width)
		copy(padded, cells)
		return padded
	case len(cells) > width:
		return cells[:width]
	}
	return cells
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
