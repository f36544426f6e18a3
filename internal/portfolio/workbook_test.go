package portfolio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"atlas/pkg/logger"
)

func TestWriteWorkbook(t *testing.T) {
	require.NoError(t, logger.Init("error", "test"))

	p := Portfolio{
		HighBeta: Bucket{
			Name: "high_beta",
			Members: []Candidate{
				{Symbol: "NVDA", Beta: 1.85, AnnualVolatility: 0.52, SharpeRatio: 1.4, LastPrice: 880.12},
				{Symbol: "TSLA", Beta: 1.62, AnnualVolatility: 0.61, SharpeRatio: 0.9, LastPrice: 244.50},
			},
			AvgCorrelation: 0.31,
		},
		LowBeta: Bucket{
			Name: "low_beta",
			Members: []Candidate{
				{Symbol: "KO", Beta: 0.55, AnnualVolatility: 0.14, SharpeRatio: 0.7, LastPrice: 61.33},
			},
			AvgCorrelation: 0.12,
		},
	}

	dir := t.TempDir()
	path, err := WriteWorkbook(dir, p, logger.Get())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "portfolio.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"High Beta", "Low Beta", "Metrics"}, f.GetSheetList())

	sym, err := f.GetCellValue("High Beta", "A2")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", sym)

	beta, err := f.GetCellValue("High Beta", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1.62", beta)

	low, err := f.GetCellValue("Low Beta", "A2")
	require.NoError(t, err)
	assert.Equal(t, "KO", low)

	metric, err := f.GetCellValue("Metrics", "A4")
	require.NoError(t, err)
	assert.Equal(t, "High-beta avg pairwise correlation", metric)
	value, err := f.GetCellValue("Metrics", "B4")
	require.NoError(t, err)
	assert.Equal(t, "0.31", value)
}
