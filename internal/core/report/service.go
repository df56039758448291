// internal/core/report/service.go
package report

import (
	"errors"
	"fmt"
	"io"

	"rental-report-service/internal/core/aggregate"
	"rental-report-service/internal/core/filter"
	"rental-report-service/internal/core/ingest"
	"rental-report-service/internal/core/locale"
	"rental-report-service/internal/core/normalize"
	"rental-report-service/internal/domain"
	"rental-report-service/internal/metrics"

	"go.uber.org/zap"
)

// ErrUnknownSubReport indica um nome de sub-relatório inexistente.
var ErrUnknownSubReport = errors.New("sub-relatório desconhecido")

const (
	noCategoryNotice = "Nenhuma das colunas de custos extras foi encontrada no relatório."
	noUserNotice     = "As colunas 'PREPOSTO' e 'LOCATARIO' não foram encontradas para os sub-relatórios por usuário."
)

// Service define a interface do relatório de custos de locação.
type Service interface {
	BuildReport(file io.Reader, filename string, f domain.Filter) (*domain.Report, error)
	ExportCSV(file io.Reader, filename string, f domain.Filter) ([]byte, error)
	ExportSubReport(file io.Reader, filename string, f domain.Filter, name string) ([]byte, error)
}

type service struct {
	loader ingest.Loader
	logger *zap.Logger
}

// NewService cria uma nova instância do serviço de relatório.
func NewService(loader ingest.Loader, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{loader: loader, logger: logger}
}

// pipeline guarda o resultado de cada etapa do processamento de um arquivo.
type pipeline struct {
	raw      *ingest.RawTable
	norm     *normalize.Result
	options  domain.FilterOptions
	filter   domain.Filter
	filtered *domain.Table
}

func (s *service) run(file io.Reader, filename string, f domain.Filter) (*pipeline, error) {
	raw, err := s.loader.Load(file, filename)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar arquivo: %w", err)
	}

	norm, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("falha ao normalizar dados: %w", err)
	}
	for _, a := range norm.Alerts {
		metrics.ObserveAlert(a.Field, a.Count)
		s.logger.Debug("alerta de conversão", zap.String("campo", a.Field), zap.Int("quantidade", a.Count))
	}
	metrics.ObserveDropped(norm.Dropped)

	options := filter.Options(norm.Table)
	resolved := filter.Resolve(f, options)
	filtered := filter.Apply(norm.Table, resolved)

	s.logger.Info("arquivo processado",
		zap.String("arquivo", filename),
		zap.String("formato", string(raw.Format)),
		zap.Int("linhas", norm.Table.Len()),
		zap.Int("descartadas", norm.Dropped),
		zap.Int("alertas", len(norm.Alerts)),
		zap.Int("filtradas", filtered.Len()),
	)

	return &pipeline{raw: raw, norm: norm, options: options, filter: resolved, filtered: filtered}, nil
}

// BuildReport processa o arquivo e monta o relatório completo do recorte pedido.
func (s *service) BuildReport(file io.Reader, filename string, f domain.Filter) (*domain.Report, error) {
	p, err := s.run(file, filename, f)
	if err != nil {
		return nil, err
	}
	table := p.filtered

	summary := aggregate.Summary(table)
	summary.Display = map[string]string{
		"total_km":        locale.FormatKm(summary.TotalKm),
		"revenue":         locale.FormatBRL(summary.Revenue),
		"extra_costs":     locale.FormatBRL(summary.ExtraCosts),
		"avg_cost_per_km": locale.FormatBRL(summary.AvgCostPerKm),
	}

	notices := append([]domain.Notice{}, p.norm.Notices...)
	if len(aggregate.PresentColumns(table, aggregate.CategoryFields)) == 0 {
		notices = append(notices, domain.Notice{Message: noCategoryNotice})
	}
	if !table.HasColumn(domain.ColUsuario) {
		notices = append(notices, domain.Notice{Message: noUserNotice})
	}

	rep := &domain.Report{
		Title:              title(p.filter, table.Len()),
		Filter:             p.filter,
		Options:            p.options,
		Preview:            p.raw.Preview(),
		Alerts:             append([]domain.Alert{}, p.norm.Alerts...),
		Notices:            notices,
		Summary:            summary,
		CostColumns:        aggregate.PresentColumns(table, aggregate.UserCostFields),
		Categories:         aggregate.CostCategories(table),
		ByUser:             aggregate.ByUser(table),
		ByMonth:            aggregate.ByMonth(table),
		ReservationsByUser: aggregate.ReservationsByUser(table),
		KmByDay:            aggregate.KmByDay(table),
		Table:              tableView(table),
	}
	if p.filter.Company != domain.AllCompanies {
		rep.Company = p.filter.Company
	}
	return rep, nil
}

// ExportCSV gera o CSV da tabela filtrada.
func (s *service) ExportCSV(file io.Reader, filename string, f domain.Filter) ([]byte, error) {
	p, err := s.run(file, filename, f)
	if err != nil {
		return nil, err
	}
	return gerarCSVTabela(p.filtered)
}

// ExportSubReport gera o CSV de um dos sub-relatórios do recorte pedido.
func (s *service) ExportSubReport(file io.Reader, filename string, f domain.Filter, name string) ([]byte, error) {
	build, ok := subReports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubReport, name)
	}
	p, err := s.run(file, filename, f)
	if err != nil {
		return nil, err
	}
	header, rows := build(p.filtered)
	return gerarCSV(header, rows)
}

// title monta a linha de título do recorte.
func title(f domain.Filter, n int) string {
	if f.Mode == domain.ModeMonthly {
		return fmt.Sprintf("Dados de %02d/%d (%d registros)", f.Month, f.Year, n)
	}
	if f.Start.IsZero() || f.End.IsZero() {
		return fmt.Sprintf("Dados (%d registros)", n)
	}
	return fmt.Sprintf("Dados de %s a %s (%d registros)", locale.FormatDate(f.Start), locale.FormatDate(f.End), n)
}
