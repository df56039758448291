// internal/domain/models.go
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Nomes canônicos das colunas do relatório de locação.
const (
	ColRetirada    = "DT_RETIRADA_RA"
	ColDevolucao   = "DT_DEVOLUCAO_RA"
	ColEmpresa     = "EMPRESA"
	ColPreposto    = "PREPOSTO"
	ColLocatario   = "LOCATARIO"
	ColKmRetirada  = "Km_Retirada"
	ColKmDevolucao = "Km_Devolucao"
	ColQtdeKmExtra = "QTDE_KM_EXTRA"

	// Colunas de origem renomeadas na normalização.
	SrcPreposto  = "Nm_Preposto_1"
	SrcLocatario = "Locatario"

	// Colunas derivadas.
	ColKmRodado = "KM_RODADO"
	ColAno      = "Ano"
	ColMes      = "Mes"
	ColDia      = "Dia"
	ColAnoMes   = "AnoMes"
	ColUsuario  = "USUARIO"
)

// Campos monetários.
const (
	ColTarifa             = "TARIFA"
	ColSubTotal           = "SUB_TOTAL"
	ColTotalRA            = "TOTAL_RA"
	ColTxRetorno          = "TX_RETORNO"
	ColDespesas           = "DESPESAS"
	ColAdicionais         = "ADICIONAIS"
	ColTxServico          = "TX_SERVICO"
	ColTotalProt          = "TOTAL_PROT"
	ColTotalHoraExtra     = "TOTAL_HORA_EXTRA"
	ColPartObrigatoria    = "PART_OBRIGATORIA"
	ColRecuperacaoAvarias = "RECUPERACAO_AVARIAS"
	ColReembolso          = "REEMBOLSO"
	ColTotalDescon        = "TOTAL_DESCON"
	ColCombustivel        = "COMBUSTIVEL"
)

// MoneyFields lista, na ordem de processamento, os campos convertidos pelo parser de moeda.
var MoneyFields = []string{
	ColTarifa, ColSubTotal, ColTotalRA, ColTxRetorno, ColDespesas,
	ColAdicionais, ColTxServico, ColTotalProt, ColTotalHoraExtra, ColPartObrigatoria,
	ColRecuperacaoAvarias, ColReembolso, ColTotalDescon, ColCombustivel,
}

// DistanceFields lista os campos convertidos pelo parser de distância.
var DistanceFields = []string{ColKmRetirada, ColKmDevolucao, ColQtdeKmExtra}

// DateFields lista as colunas de data obrigatórias.
var DateFields = []string{ColRetirada, ColDevolucao}

// UserSuffix marca a identidade resolvida a partir do locatário.
const UserSuffix = " (Locatário)"

// NullFloat é um float64 anulável. Valores inválidos são serializados como null.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float cria um NullFloat válido, exceto para NaN.
func Float(v float64) NullFloat {
	if math.IsNaN(v) {
		return NullFloat{}
	}
	return NullFloat{Value: v, Valid: true}
}

// Sub subtrai dois valores anuláveis; o resultado é nulo se qualquer operando for nulo.
func (n NullFloat) Sub(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Value - o.Value)
}

// MarshalJSON implementa json.Marshaler.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Record representa uma linha normalizada do relatório de locação.
type Record struct {
	Line      int                  `json:"linha"`
	Empresa   string               `json:"empresa"`
	Preposto  string               `json:"preposto"`
	Locatario string               `json:"locatario"`
	Usuario   string               `json:"usuario"`
	Retirada  *time.Time           `json:"retirada"`
	Devolucao *time.Time           `json:"devolucao"`
	KmRodado  NullFloat            `json:"km_rodado"`
	Ano       int                  `json:"ano,omitempty"`
	Mes       int                  `json:"mes,omitempty"`
	Dia       int                  `json:"dia,omitempty"`
	AnoMes    string               `json:"ano_mes,omitempty"`
	Values    map[string]NullFloat `json:"valores"`
	Cells     map[string]string    `json:"-"`
}

// Value retorna o valor numérico de uma coluna convertida.
func (r Record) Value(col string) NullFloat {
	return r.Values[col]
}

// Table é a tabela normalizada: colunas em ordem de exportação e os registros.
type Table struct {
	Columns []string
	Records []Record

	present map[string]bool
}

// NewTable cria uma tabela com as colunas informadas.
func NewTable(columns []string, records []Record) *Table {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	return &Table{Columns: columns, Records: records, present: present}
}

// HasColumn informa se a coluna existe na tabela.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	return t.present[col]
}

// Len retorna a quantidade de registros.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// WithRecords retorna uma nova tabela com as mesmas colunas e outro conjunto de registros.
func (t *Table) WithRecords(records []Record) *Table {
	return &Table{Columns: t.Columns, Records: records, present: t.present}
}

// AlertKind identifica a origem de um alerta de conversão.
type AlertKind string

// Tipos de alerta.
const (
	AlertNumeric AlertKind = "numeric"
	AlertDate    AlertKind = "date"
)

// Alert é um diagnóstico de conversão: quantos valores de um campo viraram nulos.
type Alert struct {
	Field   string    `json:"field"`
	Kind    AlertKind `json:"kind"`
	Count   int       `json:"count"`
	Message string    `json:"message"`
}

// Notice é um aviso informativo sobre colunas ausentes.
type Notice struct {
	Column     string `json:"column"`
	Suggestion string `json:"suggestion,omitempty"`
	Message    string `json:"message"`
}
