package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/notescribe/internal/doctree"
)

// noteColumns are header names that hold free-text notes, in preference order.
var noteColumns = []string{"full_note", "note", "text", "transcription"}

// CSVParser handles CSV exports. When a note column is present each row
// becomes one section holding that note; otherwise rows are rendered as
// "header: value" lines in batches.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: baseTitle(filename)}
	if len(records) == 0 {
		return tree, nil
	}

	headers := records[0]
	rows := records[1:]

	if col := noteColumn(headers); col >= 0 {
		for i, row := range rows {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			tree.Children = append(tree.Children, &doctree.DocNode{
				Title: fmt.Sprintf("Row %d", i+2),
				Text:  Normalize(strings.TrimSpace(row[col])),
			})
		}
		return tree, nil
	}

	for i := 0; i < len(rows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(rows))
		var text strings.Builder
		for _, row := range rows[i:end] {
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": ")
				}
				text.WriteString(cell)
			}
			text.WriteString("\n")
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, after header
			Text:  Normalize(strings.TrimSpace(text.String())),
		})
	}
	return tree, nil
}

func noteColumn(headers []string) int {
	for _, want := range noteColumns {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}
