package finance

import (
	"sort"
	"strings"
)

const (
	revenueMarker = "RECEITAS"
	expenseMarker = "DESPESAS"
	paymentMarker = "JOGADOR"
)

// Fixed cells the published sheet keeps its totals in. Used only when no
// ledger entry parses anywhere in the feed.
var summaryCells = struct {
	revenue [2]int
	expense [2]int
	balance [2]int
}{
	revenue: [2]int{38, 15},
	expense: [2]int{54, 15},
	balance: [2]int{56, 15},
}

type section int

const (
	sectionNone section = iota
	sectionRevenues
	sectionExpenses
	sectionPayments
)

// BuildReport walks the raw feed rows as a state machine keyed on the section
// markers. A feed yielding no ledger entries falls back to the fixed summary
// cells; the summary-layout sheet carries the marker labels too, so the
// markers alone prove nothing about which variant this is.
func BuildReport(records [][]string) (Report, error) {
	if len(records) == 0 {
		return Report{}, ErrNoData
	}

	report := Report{
		Revenues: []LedgerEntry{},
		Expenses: []LedgerEntry{},
		Payments: []PaymentRow{},
	}

	current := sectionNone
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		first := strings.ToUpper(strings.TrimSpace(row[0]))

		switch {
		case strings.HasPrefix(first, revenueMarker):
			current = sectionRevenues
			continue
		case strings.HasPrefix(first, expenseMarker):
			current = sectionExpenses
			continue
		case first == paymentMarker:
			current = sectionPayments
			report.PaymentColumns = paymentColumns(row)
			continue
		}

		switch current {
		case sectionRevenues:
			if entry, ok := ledgerEntry(row); ok {
				report.Revenues = append(report.Revenues, entry)
			}
		case sectionExpenses:
			if entry, ok := ledgerEntry(row); ok {
				report.Expenses = append(report.Expenses, entry)
			}
		case sectionPayments:
			if payment, ok := paymentRow(row, report.PaymentColumns); ok {
				report.Payments = append(report.Payments, payment)
			}
		}
	}

	if len(report.Revenues) == 0 && len(report.Expenses) == 0 {
		summary, ok := summaryFromCells(records)
		if !ok {
			return Report{}, ErrNoData
		}
		report.Summary = &summary
		return report, nil
	}

	report.AvailableMonths = availableMonths(report.Revenues, report.Expenses)
	return report, nil
}

func ledgerEntry(row []string) (LedgerEntry, bool) {
	if len(row) < 3 {
		return LedgerEntry{}, false
	}
	date := strings.TrimSpace(row[0])
	description := strings.TrimSpace(row[1])
	month := monthFromDate(date)
	if month == "" || description == "" {
		return LedgerEntry{}, false
	}
	return LedgerEntry{
		Date:        date,
		Month:       month,
		Description: description,
		Value:       ParseCurrency(row[2]),
	}, true
}

func paymentColumns(header []string) []string {
	columns := make([]string, 0, len(header)-1)
	for _, cell := range header[1:] {
		column := strings.TrimSpace(cell)
		if column == "" {
			continue
		}
		columns = append(columns, column)
	}
	return columns
}

func paymentRow(row []string, columns []string) (PaymentRow, bool) {
	player := strings.TrimSpace(row[0])
	if player == "" || len(columns) == 0 {
		return PaymentRow{}, false
	}
	payment := PaymentRow{
		Player:   player,
		Statuses: make(map[string]string, len(columns)),
	}
	for index, column := range columns {
		cell := ""
		if index+1 < len(row) {
			cell = strings.TrimSpace(row[index+1])
		}
		payment.Statuses[column] = cell
	}
	return payment, true
}

func summaryFromCells(records [][]string) (Summary, bool) {
	revenue, okRevenue := cellAt(records, summaryCells.revenue)
	expense, okExpense := cellAt(records, summaryCells.expense)
	balance, okBalance := cellAt(records, summaryCells.balance)
	if !okRevenue && !okExpense && !okBalance {
		return Summary{}, false
	}
	return Summary{
		Revenue: ParseCurrency(revenue),
		Expense: ParseCurrency(expense),
		Balance: ParseCurrency(balance),
	}, true
}

func cellAt(records [][]string, position [2]int) (string, bool) {
	row, column := position[0], position[1]
	if row >= len(records) || column >= len(records[row]) {
		return "", false
	}
	return records[row][column], true
}

func availableMonths(revenues, expenses []LedgerEntry) []string {
	seen := make(map[string]struct{}, 12)
	for _, entry := range revenues {
		seen[strings.ToLower(entry.Month)] = struct{}{}
	}
	for _, entry := range expenses {
		seen[strings.ToLower(entry.Month)] = struct{}{}
	}

	months := make([]string, 0, len(seen))
	for month := range seen {
		months = append(months, month)
	}
	sort.SliceStable(months, func(i, j int) bool {
		return MonthIndex(months[i]) < MonthIndex(months[j])
	})
	return months
}
