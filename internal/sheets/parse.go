package sheets

import (
	"fmt"
	"strings"

	"orderdesk/internal/model"
)

// ParseValues turns a raw 2D value range into headered rows. The first row
// holds the headers; columns with a blank header are dropped, and so are rows
// whose mapped cells are all blank.
func ParseValues(values [][]interface{}) model.Sheet {
	if len(values) == 0 {
		return model.Sheet{Rows: []model.Row{}, Headers: []string{}}
	}

	headerRow := make([]string, len(values[0]))
	headers := make([]string, 0, len(values[0]))
	for i, cell := range values[0] {
		headerRow[i] = sanitizeHeader(cell)
		if headerRow[i] != "" {
			headers = append(headers, headerRow[i])
		}
	}

	rows := make([]model.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		mapped := make(model.Row, len(headers))
		for i, header := range headerRow {
			if header == "" {
				continue
			}
			if i < len(raw) && raw[i] != nil {
				mapped[header] = cellString(raw[i])
			} else {
				mapped[header] = nil
			}
		}
		if isMeaningful(mapped) {
			rows = append(rows, mapped)
		}
	}

	return model.Sheet{
		Rows:                rows,
		Headers:             headers,
		SourceColumnPresent: model.HasSourceColumn(headers),
	}
}

func sanitizeHeader(cell interface{}) string {
	if cell == nil {
		return ""
	}
	return strings.TrimSpace(cellString(cell))
}

func cellString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}

func isMeaningful(row model.Row) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return true
		}
	}
	return false
}
