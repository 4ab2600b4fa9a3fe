package finance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func detailedRecords() [][]string {
	return [][]string{
		{"Controle Financeiro"},
		{"RECEITAS"},
		{"10/01/2026", "Mensalidade Ana", "R$ 150,00"},
		{"15/02/2026", "Churrasco", "R$ 1.234,56"},
		{"", "linha sem data", "R$ 10,00"},
		{"DESPESAS"},
		{"12/01/2026", "Aluguel quadra", "R$ 400,00"},
		{"JOGADOR", "janeiro", "fevereiro"},
		{"Ana", "PAGO", "PENDENTE"},
		{"Bruno", "PAGO"},
	}
}

func TestParseCurrency(t *testing.T) {
	require.Equal(t, 150.0, ParseCurrency("R$ 150,00"))
	require.Equal(t, 1234.56, ParseCurrency("R$ 1.234,56"))
	require.Equal(t, -75.5, ParseCurrency("-75,50"))
	require.Zero(t, ParseCurrency(""))
	require.Zero(t, ParseCurrency("n/a"))
}

func TestMonthIndex(t *testing.T) {
	require.Equal(t, 0, MonthIndex("Janeiro"))
	require.Equal(t, 11, MonthIndex(" dezembro "))
	require.Equal(t, -1, MonthIndex("smarch"))
}

func TestBuildReport_Detailed(t *testing.T) {
	report, err := BuildReport(detailedRecords())
	require.NoError(t, err)
	require.False(t, report.IsSummary())

	require.Len(t, report.Revenues, 2)
	require.Equal(t, "janeiro", report.Revenues[0].Month)
	require.Equal(t, 1234.56, report.Revenues[1].Value)

	require.Len(t, report.Expenses, 1)
	require.Equal(t, "Aluguel quadra", report.Expenses[0].Description)

	require.Equal(t, []string{"janeiro", "fevereiro"}, report.PaymentColumns)
	require.Len(t, report.Payments, 2)
	require.Equal(t, "PENDENTE", report.Payments[0].Statuses["fevereiro"])
	require.Equal(t, "", report.Payments[1].Statuses["fevereiro"])

	// Calendar order, not lexicographic.
	require.Equal(t, []string{"janeiro", "fevereiro"}, report.AvailableMonths)
}

func TestBuildReport_SummaryFallback(t *testing.T) {
	records := make([][]string, 60)
	for i := range records {
		records[i] = make([]string, 20)
	}
	records[38][15] = "R$ 5.000,00"
	records[54][15] = "R$ 3.200,00"
	records[56][15] = "R$ 1.800,00"

	report, err := BuildReport(records)
	require.NoError(t, err)
	require.True(t, report.IsSummary())
	require.Equal(t, Summary{Revenue: 5000, Expense: 3200, Balance: 1800}, *report.Summary)

	// The filter has nothing to act on for summary reports.
	require.Equal(t, *report.Summary, report.Totals("janeiro"))
}

func TestBuildReport_SummaryFallbackWithMarkers(t *testing.T) {
	// The summary-layout sheet still carries the section labels in column 0;
	// only the absence of parseable entries selects the fallback.
	records := make([][]string, 60)
	for i := range records {
		records[i] = make([]string, 20)
	}
	records[2][0] = "RECEITAS"
	records[3][1] = "Total arrecadado"
	records[20][0] = "DESPESAS"
	records[40][0] = "JOGADOR"
	records[40][1] = "janeiro"
	records[41][0] = "Ana"
	records[41][1] = "PAGO"
	records[38][15] = "R$ 5.000,00"
	records[54][15] = "R$ 3.200,00"
	records[56][15] = "R$ 1.800,00"

	report, err := BuildReport(records)
	require.NoError(t, err)
	require.True(t, report.IsSummary())
	require.Empty(t, report.Revenues)
	require.Empty(t, report.Expenses)
	require.Equal(t, Summary{Revenue: 5000, Expense: 3200, Balance: 1800}, *report.Summary)

	// Payment rows parse independently of the ledger and survive the fallback.
	require.Len(t, report.Payments, 1)
	require.Equal(t, "PAGO", report.Payments[0].Statuses["janeiro"])
}

func TestBuildReport_NoData(t *testing.T) {
	_, err := BuildReport(nil)
	require.ErrorIs(t, err, ErrNoData)

	_, err = BuildReport([][]string{{"apenas", "texto"}})
	require.ErrorIs(t, err, ErrNoData)
}

func TestReport_Totals(t *testing.T) {
	report, err := BuildReport(detailedRecords())
	require.NoError(t, err)

	all := report.Totals("")
	require.Equal(t, 1384.56, all.Revenue)
	require.Equal(t, 400.0, all.Expense)
	require.Equal(t, 984.56, all.Balance)

	january := report.Totals("janeiro")
	require.Equal(t, 150.0, january.Revenue)
	require.Equal(t, 400.0, january.Expense)
	require.Equal(t, -250.0, january.Balance)
}

func TestReport_FilterMonth(t *testing.T) {
	report, err := BuildReport(detailedRecords())
	require.NoError(t, err)

	february := report.FilterMonth("Fevereiro")
	require.Len(t, february.Revenues, 1)
	require.Equal(t, "Churrasco", february.Revenues[0].Description)
	require.Empty(t, february.Expenses)
	require.Equal(t, report.AvailableMonths, february.AvailableMonths)
}
