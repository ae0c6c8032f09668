package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"orderdesk/internal/model"
)

const displayLayout = "2006-01-02 15:04"

// dottedLayouts are day-first dates as typed in local spreadsheets.
// dateparse reads "05.10.2025" month-first and rejects "15.10.2025 14:32".
var dottedLayouts = []string{
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2.1.2006",
}

var numericReplacer = strings.NewReplacer(",", ".", " ", "", "\u00a0", "", "\u202f", "")

// TransformCompleted maps a sheet row to a completed order. Unparseable
// timestamps and prices become nil.
func TransformCompleted(row model.Row, dispatched map[string]model.DispatchRecord, loc *time.Location) model.CompletedOrder {
	name := strings.TrimSpace(stringValue(row["customerName"]))
	surname := strings.TrimSpace(stringValue(row["customerSurname"]))
	ts := ParseTimestamp(row["timestamp"], loc)

	order := model.CompletedOrder{
		OrderID:          stringValue(row["orderId"]),
		Timestamp:        ts,
		TimestampDisplay: displayOf(ts),
		CustomerName:     name,
		CustomerSurname:  surname,
		CustomerFullName: strings.TrimSpace(name + " " + surname),
		CustomerPhone:    stringValue(row["customerPhone"]),
		CustomerAddress:  stringValue(row["customerAddress"]),
		PaymentType:      stringValue(row["paymentType"]),
		TotalPrice:       ParseNumeric(row["totalPrice"]),
		Status:           model.StatusPending,
		Source:           optionalString(row["source"]),
		Raw: map[string]any{
			"timestamp":  row["timestamp"],
			"totalPrice": row["totalPrice"],
		},
	}

	if rec, ok := dispatched[order.OrderID]; ok {
		order.Status = rec.Status
		dispatchedAt := rec.DispatchedAt
		order.DispatchedAt = &dispatchedAt
	}

	return order
}

func TransformAbandoned(row model.Row, loc *time.Location) model.AbandonedOrder {
	ts := ParseTimestamp(row["timestamp"], loc)

	return model.AbandonedOrder{
		OrderID:          stringValue(row["orderId"]),
		Timestamp:        ts,
		TimestampDisplay: displayOf(ts),
		OrderStatus:      stringValue(row["orderStatus"]),
		Source:           optionalString(row["source"]),
		Raw: map[string]any{
			"timestamp": row["timestamp"],
		},
	}
}

// ParseTimestamp accepts most human date formats. Values without an offset
// are read in loc.
func ParseTimestamp(v any, loc *time.Location) (ts *time.Time) {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(stringValue(v))
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dottedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}

	// dateparse has panicked on odd inputs before
	defer func() {
		if recover() != nil {
			ts = nil
		}
	}()

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return nil
	}
	return &t
}

// ParseNumeric reads a price, tolerating a comma decimal separator and
// spaces used as thousands separators ("1 234,56").
func ParseNumeric(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case json.Number:
		return parseDecimal(x.String())
	case string:
		return parseDecimal(numericReplacer.Replace(x))
	default:
		return nil
	}
}

func parseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func displayOf(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	s := ts.Format(displayLayout)
	return &s
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func optionalString(v any) *string {
	if v == nil {
		return nil
	}
	s := stringValue(v)
	return &s
}
