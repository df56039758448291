package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rental-report-service/internal/api/responses"
	"rental-report-service/internal/core/filter"
	"rental-report-service/internal/core/ingest"
	"rental-report-service/internal/core/report"
	"rental-report-service/internal/domain"
	"rental-report-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess      = "success"
	statusInvalidInput = "invalid_input"
	statusParseError   = "parse_error"
)

var allowedExtensions = map[string]bool{".csv": true, ".tsv": true, ".txt": true, ".xlsx": true, ".xls": true}

var dateLayouts = []string{"02/01/2006", "2006-01-02"}

// ReportHandler lida com as requisições de relatório de custos de locação.
type ReportHandler struct {
	service   report.Service
	maxUpload int64
}

// NewReportHandler cria um novo handler de relatório. maxUpload é o tamanho máximo do
// arquivo em bytes.
func NewReportHandler(service report.Service, maxUpload int64) *ReportHandler {
	return &ReportHandler{
		service:   service,
		maxUpload: maxUpload,
	}
}

// upload é o arquivo recebido e o filtro já validado.
type upload struct {
	file     io.ReadCloser
	filename string
	format   ingest.Format
	filter   domain.Filter
}

// readUpload valida o arquivo e os campos de filtro do formulário. Em caso de erro a
// resposta já foi enviada.
func (h *ReportHandler) readUpload(c *gin.Context) (*upload, bool) {
	fileHeader, err := c.FormFile("arquivo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de relatório (.csv, .tsv, .xlsx, .xls) não encontrado ou inválido")
		return nil, false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada: %s", ext))
		return nil, false
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		responses.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Arquivo excede o tamanho máximo de %d MB", h.maxUpload/(1<<20)))
		return nil, false
	}

	f, err := parseFilter(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Filtro inválido", err.Error())
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de relatório")
		return nil, false
	}

	return &upload{
		file:     file,
		filename: fileHeader.Filename,
		format:   ingest.DetectFormat(fileHeader.Filename),
		filter:   f,
	}, true
}

// processError responde com o erro de processamento do arquivo.
func processError(c *gin.Context, err error) {
	code := http.StatusUnprocessableEntity
	if errors.Is(err, report.ErrUnknownSubReport) {
		code = http.StatusNotFound
	}
	responses.Error(c, code, fmt.Sprintf("Erro ao processar o arquivo: %v", err), err.Error())
}

// HandleReport processa o arquivo e devolve o relatório completo em JSON.
func (h *ReportHandler) HandleReport(c *gin.Context) {
	start := time.Now()
	up, ok := h.readUpload(c)
	if !ok {
		metrics.ObserveUpload(statusInvalidInput, "", time.Since(start))
		return
	}
	defer up.file.Close()

	rep, err := h.service.BuildReport(up.file, up.filename, up.filter)
	if err != nil {
		metrics.ObserveUpload(statusParseError, string(up.format), time.Since(start))
		processError(c, err)
		return
	}

	metrics.ObserveUpload(statusSuccess, string(up.format), time.Since(start))
	responses.Success(c, rep, "Arquivo carregado com sucesso!")
}

// HandleExport devolve a tabela filtrada em CSV.
func (h *ReportHandler) HandleExport(c *gin.Context) {
	start := time.Now()
	up, ok := h.readUpload(c)
	if !ok {
		metrics.ObserveUpload(statusInvalidInput, "", time.Since(start))
		return
	}
	defer up.file.Close()

	out, err := h.service.ExportCSV(up.file, up.filename, up.filter)
	if err != nil {
		metrics.ObserveUpload(statusParseError, string(up.format), time.Since(start))
		processError(c, err)
		return
	}

	metrics.ObserveUpload(statusSuccess, string(up.format), time.Since(start))
	responses.CSV(c, "dados_filtrados.csv", out)
}

// HandleExportSubReport devolve um dos sub-relatórios em CSV.
func (h *ReportHandler) HandleExportSubReport(c *gin.Context) {
	start := time.Now()
	name := c.Param("subrelatorio")
	up, ok := h.readUpload(c)
	if !ok {
		metrics.ObserveUpload(statusInvalidInput, "", time.Since(start))
		return
	}
	defer up.file.Close()

	out, err := h.service.ExportSubReport(up.file, up.filename, up.filter, name)
	if err != nil {
		metrics.ObserveUpload(statusParseError, string(up.format), time.Since(start))
		processError(c, err)
		return
	}

	metrics.ObserveUpload(statusSuccess, string(up.format), time.Since(start))
	responses.CSV(c, fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102_150405")), out)
}

// parseFilter lê os campos de filtro do formulário. Campos vazios ficam com o valor zero
// e são completados pelo serviço.
func parseFilter(c *gin.Context) (domain.Filter, error) {
	var f domain.Filter

	switch mode := strings.TrimSpace(c.PostForm("tipo_filtro")); mode {
	case "", string(domain.ModePeriod):
		f.Mode = domain.ModePeriod
	case string(domain.ModeMonthly):
		f.Mode = domain.ModeMonthly
	default:
		return f, fmt.Errorf("tipo_filtro deve ser %q ou %q, recebido %q", domain.ModePeriod, domain.ModeMonthly, mode)
	}

	var err error
	if f.Start, err = formDate(c, "data_inicio"); err != nil {
		return f, err
	}
	if f.End, err = formDate(c, "data_fim"); err != nil {
		return f, err
	}
	if !f.End.IsZero() {
		f.End = filter.EndOfDay(f.End)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, errors.New("data_fim anterior a data_inicio")
	}

	if f.Year, err = formInt(c, "ano", 1900, 9999); err != nil {
		return f, err
	}
	if f.Month, err = formInt(c, "mes", 1, 12); err != nil {
		return f, err
	}

	f.Company = strings.TrimSpace(c.PostForm("empresa"))
	return f, nil
}

func formDate(c *gin.Context, key string) (time.Time, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s inválida: %q (use dd/mm/aaaa)", key, v)
}

func formInt(c *gin.Context, key string, lo, hi int) (int, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s inválido: %q", key, v)
	}
	return n, nil
}
