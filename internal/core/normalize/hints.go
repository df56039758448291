package normalize

import (
	"fmt"
	"strings"

	"rental-report-service/internal/core/locale"
	"rental-report-service/internal/domain"

	"github.com/schollz/closestmatch"
)

// optionalColumns são as colunas opcionais das quais algum sub-relatório depende.
var optionalColumns = []struct {
	name  string
	usage string
}{
	{domain.ColEmpresa, "filtro por empresa"},
	{domain.ColPreposto, "sub-relatórios por usuário"},
	{domain.ColLocatario, "sub-relatórios por usuário"},
	{domain.ColKmRetirada, "km rodado"},
	{domain.ColKmDevolucao, "km rodado"},
	{domain.ColTotalRA, "receita bruta"},
}

// missingColumnNotices gera um aviso para cada coluna opcional ausente, sugerindo o
// cabeçalho do arquivo mais parecido quando houver.
func missingColumnNotices(colIdx map[string]int, headers []string) []domain.Notice {
	var notices []domain.Notice
	for _, oc := range optionalColumns {
		if _, ok := colIdx[oc.name]; ok {
			continue
		}
		// as colunas renomeadas também são aceitas pelo nome de origem
		source := sourceName(oc.name)
		suggestion := suggestColumn(source, headers)
		msg := fmt.Sprintf("Coluna '%s' não encontrada (%s).", source, oc.usage)
		if suggestion != "" {
			msg += fmt.Sprintf(" Coluna semelhante: '%s'.", suggestion)
		}
		notices = append(notices, domain.Notice{Column: source, Suggestion: suggestion, Message: msg})
	}
	return notices
}

func sourceName(canonical string) string {
	for src, dst := range renames {
		if dst == canonical {
			return src
		}
	}
	return canonical
}

// suggestColumn procura, entre os cabeçalhos do arquivo, o nome mais próximo da coluna
// esperada. A comparação é feita sobre os textos normalizados (sem acento, maiúsculas).
func suggestColumn(missing string, headers []string) string {
	byKey := make(map[string]string, len(headers))
	var keys []string
	for _, h := range headers {
		k := locale.NormalizeText(h)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; !ok {
			byKey[k] = strings.TrimSpace(h)
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}

	target := locale.NormalizeText(missing)
	if h, ok := byKey[target]; ok {
		return h
	}

	cm := closestmatch.New(keys, []int{2, 3})
	match := cm.Closest(target)
	if match == "" || !shareWord(target, match) {
		return ""
	}
	return byKey[match]
}

func shareWord(a, b string) bool {
	words := strings.Fields(b)
	for _, w := range strings.Fields(a) {
		for _, o := range words {
			if w == o {
				return true
			}
		}
	}
	return false
}
