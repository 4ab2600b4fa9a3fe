package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func boardRecords() [][]string {
	return [][]string{
		{"Jogador", "05/01/2026", "12/01/2026", "19/01/2026", "02/02/2026"},
		{"Ana", "✅", "✅", "✅", "✅"},
		{"Bruno", "✅", "NÃO JUSTIFICOU", "lesionado", ""},
		{"Caio", "", "", "", "✅"},
		{"Davi", "NÃO JUSTIFICOU", "NÃO JUSTIFICOU", "✅", ""},
	}
}

func TestClassify(t *testing.T) {
	require.Equal(t, StatusPresent, Classify("✅"))
	require.Equal(t, StatusPresent, Classify(" ✅ confirmado "))
	require.Equal(t, StatusAbsentUnjustified, Classify("NÃO JUSTIFICOU"))
	require.Equal(t, StatusAbsentUnjustified, Classify("não justificou"))
	require.Equal(t, StatusAbsentOther, Classify("lesionado"))
	require.Equal(t, StatusEmpty, Classify("   "))
}

func TestBuildBoard(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)
	require.Equal(t, []string{"05/01/2026", "12/01/2026", "19/01/2026", "02/02/2026"}, board.Dates)
	require.Len(t, board.Players, 4)

	ana := board.Players[0]
	require.Equal(t, "Ana", ana.Name)
	require.Equal(t, 4, ana.Presences)
	require.Equal(t, 4, ana.TotalGames)
	require.Equal(t, 100.0, ana.Average)

	bruno := board.Players[1]
	require.Equal(t, 1, bruno.Presences)
	require.Equal(t, 3, bruno.TotalGames)
	require.Equal(t, 33.3, bruno.Average)
	require.Equal(t, []string{"12/01/2026"}, bruno.UnjustifiedAbsenceDates)

	caio := board.Players[2]
	require.Equal(t, 1, caio.TotalGames)
	require.Equal(t, 100.0, caio.Average)
}

func TestBuildBoard_SortsUnorderedDates(t *testing.T) {
	board, err := BuildBoard([][]string{
		{"Jogador", "19/01/2026", "05/01/2026", "12/01/2026"},
		{"Ana", "✅", "", "✅"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"05/01/2026", "12/01/2026", "19/01/2026"}, board.Dates)
	require.Equal(t, "✅", board.Players[0].Attendance["19/01/2026"])
	require.Equal(t, "", board.Players[0].Attendance["05/01/2026"])
}

func TestBuildBoard_NoData(t *testing.T) {
	_, err := BuildBoard(nil)
	require.ErrorIs(t, err, ErrNoData)

	_, err = BuildBoard([][]string{{"Jogador", "Observações"}, {"Ana", "x"}})
	require.ErrorIs(t, err, ErrNoData)
}

func TestBoard_Trend(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)

	trend := board.Trend()
	require.Equal(t, []TrendPoint{
		{Date: "05/01/2026", Present: 2},
		{Date: "12/01/2026", Present: 1},
		{Date: "19/01/2026", Present: 2},
		{Date: "02/02/2026", Present: 2},
	}, trend)
}

func TestBoard_AvailableMonths(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)
	require.Equal(t, []string{"2026-01", "2026-02"}, board.AvailableMonths())
}

func TestBoard_HallOfFame(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)

	fame := board.HallOfFame()
	require.NotNil(t, fame.OnFire)
	// Ana and Caio both sit at 100%, names ascending break the tie.
	require.Equal(t, "Ana", fame.OnFire.Name)
	require.Equal(t, "Ana", fame.MostPresent.Name)
	require.Len(t, fame.LeastPresent, 3)
	require.Equal(t, "Bruno", fame.LeastPresent[0].Name)

	require.Equal(t, "2026-02", fame.PerfectMonth)
	require.Equal(t, []string{"Ana", "Caio"}, fame.MonthlyPerfect)
}

func TestBoard_Performance(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)

	reference := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	rows := board.Performance(reference, 60)
	require.Len(t, rows, 4)

	byName := make(map[string]PerformanceRow, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	require.True(t, byName["Ana"].Compliant)
	require.Equal(t, 100.0, byName["Ana"].Percentage)

	// Four game dates fall inside the window; Bruno's blank on 02/02 counts
	// against him like any other absence.
	require.False(t, byName["Bruno"].Compliant)
	require.Equal(t, 4, byName["Bruno"].Games)
	require.Equal(t, 25.0, byName["Bruno"].Percentage)

	require.Equal(t, 1, byName["Davi"].Presences)
	require.Equal(t, 4, byName["Davi"].Games)
	require.False(t, byName["Davi"].Compliant)
}

func TestBoard_Performance_BlanksCountAsAbsences(t *testing.T) {
	board, err := BuildBoard([][]string{
		{"Jogador", "05/01/2026", "12/01/2026", "19/01/2026", "26/01/2026"},
		{"Elias", "✅", "NÃO JUSTIFICOU", "", ""},
	})
	require.NoError(t, err)

	reference := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := board.Performance(reference, 60)
	require.Len(t, rows, 1)
	require.Equal(t, 4, rows[0].Games)
	require.Equal(t, 1, rows[0].Presences)
	require.Equal(t, 25.0, rows[0].Percentage)
	require.False(t, rows[0].Compliant)
}

func TestBoard_Performance_NoGamesIsNonCompliant(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)

	reference := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := board.Performance(reference, 60)
	for _, row := range rows {
		require.Zero(t, row.Games)
		require.Zero(t, row.Percentage)
		require.False(t, row.Compliant)
	}
}

func TestBoard_PeriodReport(t *testing.T) {
	board, err := BuildBoard(boardRecords())
	require.NoError(t, err)

	rows, err := board.PeriodReport("2026-01", "2026-01")
	require.NoError(t, err)
	require.Equal(t, "Ana", rows[0].Name)
	require.Equal(t, 3, rows[0].Presences)
	require.Equal(t, 3, rows[0].Games)

	_, err = board.PeriodReport("2026-03", "2026-01")
	require.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = board.PeriodReport("not-a-month", "2026-01")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
