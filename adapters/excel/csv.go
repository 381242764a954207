package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
)

var candidateDelimiters = []rune{',', ';', '\t'}

func (l *Loader) readCSV(raw []byte) ([][]string, error) {
	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	delim := l.config.Delimiter
	if delim == 0 {
		delim = detectDelimiter(text)
	}
	l.logger.Debug("csv: encoding %s, delimiter %q", enc, delim)

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks the candidate that occurs most often, outside quotes, on the first
// non-blank line. Ties go to the earlier candidate.
func detectDelimiter(text []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		counts := make(map[rune]int, len(candidateDelimiters))
		quoted := false
		for _, r := range string(line) {
			if r == '"' {
				quoted = !quoted
				continue
			}
			if !quoted {
				counts[r]++
			}
		}
		best, bestCount := candidateDelimiters[0], 0
		for _, d := range candidateDelimiters {
			if counts[d] > bestCount {
				best, bestCount = d, counts[d]
			}
		}
		return best
	}
	return candidateDelimiters[0]
}
