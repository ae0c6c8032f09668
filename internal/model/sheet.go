package model

import "strings"

// Row maps a sanitized header to its cell value. Cells from the sheet are
// strings or nil; mock rows may carry any JSON scalar.
type Row map[string]any

type Sheet struct {
	Rows                []Row
	Headers             []string
	SourceColumnPresent bool
}

// HasSourceColumn reports whether any header is "source", ignoring case.
func HasSourceColumn(headers []string) bool {
	for _, h := range headers {
		if strings.EqualFold(h, "source") {
			return true
		}
	}
	return false
}
