package ingest

import (
	"bufio"
	"strings"
)

var delimiterCandidates = []rune{';', ',', '\t', '|'}

const sniffLines = 10

// sniffDelimiter escolhe o separador que aparece com a mesma quantidade (não nula)
// no maior número de linhas da amostra. Empates favorecem a maior contagem por linha.
func sniffDelimiter(text string) rune {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && len(lines) < sniffLines {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ','
	}

	best := ','
	bestConsistent, bestCount := 0, 0
	for _, cand := range delimiterCandidates {
		headerCount := countOutsideQuotes(lines[0], cand)
		if headerCount == 0 {
			continue
		}
		consistent := 0
		for _, line := range lines {
			if countOutsideQuotes(line, cand) == headerCount {
				consistent++
			}
		}
		if consistent > bestConsistent || (consistent == bestConsistent && headerCount > bestCount) {
			best, bestConsistent, bestCount = cand, consistent, headerCount
		}
	}
	return best
}

func countOutsideQuotes(line string, sep rune) int {
	inQuotes := false
	n := 0
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			n++
		}
	}
	return n
}
