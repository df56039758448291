package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const semicolonCSV = "DT_RETIRADA_RA;Km_Retirada;TOTAL_RA\n" +
	"05/03/2024;15300;R$ 1.234,56\n" +
	"06/03/2024;15400;R$ 10,00\n"

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXLSX, DetectFormat("relatorio.XLSX"))
	assert.Equal(t, FormatXLS, DetectFormat("antigo.xls"))
	assert.Equal(t, FormatTSV, DetectFormat("dados.tsv"))
	assert.Equal(t, FormatCSV, DetectFormat("dados.csv"))
	assert.Equal(t, FormatCSV, DetectFormat("sem_extensao"))
}

func TestLoad_CSVWithSniffedDelimiter(t *testing.T) {
	raw, err := NewLoader().Load(strings.NewReader(semicolonCSV), "unidas.csv")
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, raw.Format)
	assert.Equal(t, ';', raw.Delimiter)
	assert.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, []string{"DT_RETIRADA_RA", "Km_Retirada", "TOTAL_RA"}, raw.Frame.Names())
	assert.Equal(t, series.Int, raw.Frame.Col("Km_Retirada").Type())
	assert.Equal(t, series.String, raw.Frame.Col("TOTAL_RA").Type())
	assert.Equal(t, "R$ 1.234,56", raw.Frame.Elem(0, 2).String())
}

func TestLoad_TSVByExtension(t *testing.T) {
	data := "EMPRESA\tTOTAL_RA\nACME\t1,5\n"
	raw, err := NewLoader().Load(strings.NewReader(data), "dados.tsv")
	require.NoError(t, err)

	assert.Equal(t, '\t', raw.Delimiter)
	assert.Equal(t, []string{"EMPRESA", "TOTAL_RA"}, raw.Frame.Names())
	assert.Equal(t, "1,5", raw.Frame.Elem(0, 1).String())
}

func TestLoad_Latin1AndRaggedRows(t *testing.T) {
	// "Locatário" em ISO-8859-1
	data := []byte("EMPRESA,Locat\xe1rio,TOTAL_RA\nACME,Jo\xe3o\nBeta,Maria,10\n")
	raw, err := NewLoader().Load(bytes.NewReader(data), "dados.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"EMPRESA", "Locatário", "TOTAL_RA"}, raw.Frame.Names())
	assert.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, "João", raw.Frame.Elem(0, 1).String())
}

func TestLoad_EmptyFiles(t *testing.T) {
	_, err := NewLoader().Load(strings.NewReader("   \n"), "vazio.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewLoader().Load(strings.NewReader("A;B\n"), "so_cabecalho.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoad_InvalidWorkbook(t *testing.T) {
	_, err := NewLoader().Load(strings.NewReader("isto não é uma planilha"), "dados.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader().Load(strings.NewReader("isto não é uma planilha"), "dados.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_XLSXKeepsNumericCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"DT_RETIRADA_RA", "TOTAL_RA", "EMPRESA"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{45356.5, 1234.5, "ACME"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{45357, 99.9, "Beta"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	raw, err := NewLoader().Load(buf, "planilha.xlsx")
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, raw.Format)
	assert.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, series.Float, raw.Frame.Col("TOTAL_RA").Type())
	assert.InDelta(t, 1234.5, raw.Frame.Elem(0, 1).Float(), 1e-9)
	assert.Equal(t, "ACME", raw.Frame.Elem(0, 2).String())
}

func TestLoad_XLSXCellTypes(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"TOTAL_RA", "EMPRESA"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{150.5, "123"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Data de Cadastro", "ACME"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	raw, err := NewLoader().Load(buf, "planilha.xlsx")
	require.NoError(t, err)

	require.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, series.String, raw.Frame.Col("TOTAL_RA").Type())
	assert.True(t, raw.IsNumeric(0, 0))
	assert.False(t, raw.IsNumeric(0, 1))
	assert.False(t, raw.IsNumeric(1, 0))
	assert.False(t, raw.IsNumeric(5, 0))
	assert.Equal(t, 3, raw.Line(0))
	assert.Equal(t, 4, raw.Line(1))
}

func TestLoad_HeadersAndSourceLines(t *testing.T) {
	data := "EMPRESA;EMPRESA;;TOTAL_RA\n;;;\nACME;Sul;x;1\n\nBeta;Norte;y;2\n"
	raw, err := NewLoader().Load(strings.NewReader(data), "dados.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"EMPRESA", "EMPRESA", "", "TOTAL_RA"}, raw.Headers)
	assert.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, 3, raw.Line(0))
	assert.Equal(t, 5, raw.Line(1))
	assert.False(t, raw.IsNumeric(0, 3))
	assert.Equal(t, raw.Headers, raw.Preview().Columns)
}

func TestPreview(t *testing.T) {
	var b strings.Builder
	b.WriteString("A;B\n")
	for i := 0; i < 8; i++ {
		b.WriteString("x;y\n")
	}
	raw, err := NewLoader().Load(strings.NewReader(b.String()), "dados.csv")
	require.NoError(t, err)

	preview := raw.Preview()
	assert.Equal(t, []string{"A", "B"}, preview.Columns)
	assert.Len(t, preview.Rows, 5)
}

func TestSniffDelimiter(t *testing.T) {
	cases := []struct {
		name string
		text string
		want rune
	}{
		{"ponto e virgula", "a;b;c\n1;2,5;3\n", ';'},
		{"virgula", "a,b,c\n1,2,3\n", ','},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"aspas", "a,b\n\"1;2;3\",4\n", ','},
		{"coluna unica", "a\n1\n", ','},
		{"vazio", "", ','},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sniffDelimiter(tc.text))
		})
	}
}
