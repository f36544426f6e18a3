package portfolio

import (
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"atlas/internal/metrics"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

const workbookFileName = "portfolio.xlsx"

var memberHeaders = []string{"Symbol", "Beta", "Annual Volatility", "Sharpe Ratio", "Last Price"}

// WriteWorkbook renders the constructed portfolio to an Excel workbook:
// one sheet per bucket plus a metrics sheet with the realized
// diversification figures. Returns the written path.
func WriteWorkbook(dir string, p Portfolio, log *logger.Logger) (string, error) {
	path := filepath.Join(dir, workbookFileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.RecordArtifactWrite("xlsx", err)
		return "", errors.Wrapf(errors.ErrArtifactWrite, "failed to create %s: %v", dir, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create header style")
	}

	if err := f.SetSheetName("Sheet1", "High Beta"); err != nil {
		return "", errors.Wrap(err, "failed to rename sheet")
	}
	if err := writeBucketSheet(f, "High Beta", p.HighBeta, headerStyle); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Low Beta"); err != nil {
		return "", errors.Wrap(err, "failed to add sheet")
	}
	if err := writeBucketSheet(f, "Low Beta", p.LowBeta, headerStyle); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Metrics"); err != nil {
		return "", errors.Wrap(err, "failed to add sheet")
	}
	if err := writeMetricsSheet(f, p, headerStyle); err != nil {
		return "", err
	}

	saveErr := f.SaveAs(path)
	metrics.RecordArtifactWrite("xlsx", saveErr)
	if saveErr != nil {
		return "", errors.Wrapf(errors.ErrArtifactWrite, "failed to save workbook %s: %v", path, saveErr)
	}
	log.Info("Portfolio workbook written",
		"path", path,
		"high_beta", len(p.HighBeta.Members),
		"low_beta", len(p.LowBeta.Members))
	return path, nil
}

func writeBucketSheet(f *excelize.File, sheet string, bucket Bucket, headerStyle int) error {
	for col, header := range memberHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrapf(err, "failed to write header on %s", sheet)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(memberHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return errors.Wrapf(err, "failed to style header on %s", sheet)
	}

	for i, member := range bucket.Members {
		row := i + 2
		values := []interface{}{
			member.Symbol,
			round4(member.Beta),
			round4(member.AnnualVolatility),
			round4(member.SharpeRatio),
			round4(member.LastPrice),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "failed to write row %d on %s", row, sheet)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 18); err != nil {
		return errors.Wrapf(err, "failed to size columns on %s", sheet)
	}
	return nil
}

func writeMetricsSheet(f *excelize.File, p Portfolio, headerStyle int) error {
	const sheet = "Metrics"
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"High-beta members", len(p.HighBeta.Members)},
		{"Low-beta members", len(p.LowBeta.Members)},
		{"High-beta avg pairwise correlation", round4(p.HighBeta.AvgCorrelation)},
		{"Low-beta avg pairwise correlation", round4(p.LowBeta.AvgCorrelation)},
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "failed to write metrics row %d", r+1)
			}
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return errors.Wrap(err, "failed to style metrics header")
	}
	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return errors.Wrap(err, "failed to size metrics columns")
	}
	return nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
