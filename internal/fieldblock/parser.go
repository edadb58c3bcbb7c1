// Package fieldblock turns CSV rows into named groups of values.
//
// A group starts at a marker row whose first cell is wrapped in "**", e.g.
// "**Discipline**", and collects every non-empty cell of the rows that follow
// until the next marker or the end of input.
package fieldblock

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const markerDelim = "**"

// FieldGroup is a field name with the values collected under it.
type FieldGroup struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse groups rows with a no-op logger.
func Parse(lines [][]string) []FieldGroup {
	return NewParser(nil).Parse(lines)
}

// Parse runs a single pass over lines. Rows seen before the first marker are
// skipped. A group opened by the last marker is emitted even when it has no
// values.
func (p *Parser) Parse(lines [][]string) []FieldGroup {
	groups := make([]FieldGroup, 0)
	var current *FieldGroup

	for i, line := range lines {
		row := i + 1
		if name, ok := markerName(line); ok {
			p.logger.Debug("found field", zap.Int("row", row), zap.String("name", name))
			if current != nil {
				groups = append(groups, *current)
			}
			current = &FieldGroup{Name: name, Values: make([]string, 0)}
			continue
		}

		if current == nil {
			p.logger.Debug("skipping row: no current field", zap.Int("row", row))
			continue
		}

		for _, cell := range line {
			if v := strings.TrimSpace(cell); v != "" {
				current.Values = append(current.Values, v)
			}
		}
	}

	if current != nil {
		groups = append(groups, *current)
	}

	p.logger.Debug("finished parsing", zap.Int("fields", len(groups)))
	return groups
}

// ParseReader decodes r as UTF-8 text (dropping a byte-order mark), splits it
// into comma-separated rows and parses them.
func (p *Parser) ParseReader(r io.Reader) ([]FieldGroup, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var lines [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d failed: %w", len(lines)+1, err)
		}
		lines = append(lines, record)
	}

	return p.Parse(lines), nil
}

// markerName reports whether line opens a new group. The first cell is
// checked untrimmed; "**" on its own is a marker for a field with an empty
// name.
func markerName(line []string) (string, bool) {
	if len(line) == 0 {
		return "", false
	}
	first := line[0]
	if !strings.HasPrefix(first, markerDelim) || !strings.HasSuffix(first, markerDelim) {
		return "", false
	}
	return strings.TrimSpace(strings.Trim(first, "*")), true
}
