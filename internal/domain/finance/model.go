package finance

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrNoData = errors.New("finance feed has no data")

// MonthNames holds the Brazilian Portuguese month names in calendar order.
// Month filters and the available-months list always follow this order, not
// the lexicographic one.
var MonthNames = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func MonthIndex(name string) int {
	needle := strings.ToLower(strings.TrimSpace(name))
	for index, month := range MonthNames {
		if month == needle {
			return index
		}
	}
	return -1
}

// ParseCurrency reads a pt-BR formatted amount such as "R$ 1.234,56".
// The currency prefix and thousands dots are stripped and the decimal comma
// becomes a point. Unparseable cells yield zero.
func ParseCurrency(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "R$", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// LedgerEntry is one revenue or expense line.
type LedgerEntry struct {
	Date        string  `json:"date"`
	Month       string  `json:"month"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// PaymentRow tracks one player's monthly dues statuses keyed by the payment
// section's header columns.
type PaymentRow struct {
	Player   string            `json:"player"`
	Statuses map[string]string `json:"statuses"`
}

// Summary is the aggregate view used when the feed exposes only the fixed
// totals cells instead of itemized sections.
type Summary struct {
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Report is either detailed (itemized entries plus payments) or summary-only,
// never both.
type Report struct {
	Revenues        []LedgerEntry `json:"revenues"`
	Expenses        []LedgerEntry `json:"expenses"`
	Payments        []PaymentRow  `json:"payments"`
	PaymentColumns  []string      `json:"paymentColumns"`
	AvailableMonths []string      `json:"availableMonths"`
	Summary         *Summary      `json:"summary,omitempty"`
}

func (r Report) IsSummary() bool {
	return r.Summary != nil
}

// Totals sums the itemized entries, optionally restricted to one month name.
// Summary reports return their fixed totals and ignore the filter.
func (r Report) Totals(month string) Summary {
	if r.Summary != nil {
		return *r.Summary
	}

	filter := strings.ToLower(strings.TrimSpace(month))
	var totals Summary
	for _, entry := range r.Revenues {
		if filter != "" && strings.ToLower(entry.Month) != filter {
			continue
		}
		totals.Revenue += entry.Value
	}
	for _, entry := range r.Expenses {
		if filter != "" && strings.ToLower(entry.Month) != filter {
			continue
		}
		totals.Expense += entry.Value
	}
	totals.Revenue = roundCents(totals.Revenue)
	totals.Expense = roundCents(totals.Expense)
	totals.Balance = roundCents(totals.Revenue - totals.Expense)
	return totals
}

// FilterMonth narrows a detailed report to a single month's entries. Summary
// reports come back unchanged.
func (r Report) FilterMonth(month string) Report {
	if r.Summary != nil || strings.TrimSpace(month) == "" {
		return r
	}

	filter := strings.ToLower(strings.TrimSpace(month))
	out := Report{
		Revenues:        make([]LedgerEntry, 0, len(r.Revenues)),
		Expenses:        make([]LedgerEntry, 0, len(r.Expenses)),
		Payments:        r.Payments,
		PaymentColumns:  r.PaymentColumns,
		AvailableMonths: r.AvailableMonths,
	}
	for _, entry := range r.Revenues {
		if strings.ToLower(entry.Month) == filter {
			out.Revenues = append(out.Revenues, entry)
		}
	}
	for _, entry := range r.Expenses {
		if strings.ToLower(entry.Month) == filter {
			out.Expenses = append(out.Expenses, entry)
		}
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func monthFromDate(date string) string {
	parsed, err := time.Parse("2/1/2006", strings.TrimSpace(date))
	if err != nil {
		return ""
	}
	return MonthNames[int(parsed.Month())-1]
}
