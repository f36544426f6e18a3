package portfolio

import (
	"encoding/json"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/portfolio"
	"atlas/internal/tools/shared"
)

type workbookMember struct {
	Symbol           string  `json:"symbol"`
	Beta             float64 `json:"beta"`
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	LastPrice        float64 `json:"last_price"`
}

type workbookPayload struct {
	HighBeta        []workbookMember `json:"high_beta"`
	LowBeta         []workbookMember `json:"low_beta"`
	HighBetaAvgCorr float64          `json:"high_beta_avg_correlation"`
	LowBetaAvgCorr  float64          `json:"low_beta_avg_correlation"`
}

// NewWriteWorkbookTool renders the constructed portfolio, as emitted by
// build_portfolio, to the Excel artifact.
func NewWriteWorkbookTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		raw := argStringDefault(args, "portfolio_json", "")
		if raw == "" {
			if encoded, err := json.Marshal(args["portfolio"]); err == nil && string(encoded) != "null" {
				raw = string(encoded)
			}
		}
		if raw == "" {
			return errResult("write_portfolio_workbook: portfolio_json is required"), nil
		}

		var payload workbookPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return errResult("write_portfolio_workbook: invalid portfolio JSON: %v", err), nil
		}
		if len(payload.HighBeta) == 0 && len(payload.LowBeta) == 0 {
			return errResult("write_portfolio_workbook: portfolio has no members"), nil
		}

		built := portfolio.Portfolio{
			HighBeta: toBucket("high_beta", payload.HighBeta, payload.HighBetaAvgCorr),
			LowBeta:  toBucket("low_beta", payload.LowBeta, payload.LowBetaAvgCorr),
		}

		path, err := portfolio.WriteWorkbook(deps.OutputDir, built, deps.Log)
		if err != nil {
			return errResult("write_portfolio_workbook: %v", err), nil
		}
		return map[string]interface{}{
			"status": "written",
			"path":   path,
		}, nil
	}

	return shared.NewToolBuilder(
		"write_portfolio_workbook",
		"Write the constructed portfolio to the Excel workbook artifact",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

func toBucket(name string, members []workbookMember, avgCorr float64) portfolio.Bucket {
	out := portfolio.Bucket{Name: name, AvgCorrelation: avgCorr}
	for _, m := range members {
		out.Members = append(out.Members, portfolio.Candidate{
			Symbol:           m.Symbol,
			Beta:             m.Beta,
			AnnualVolatility: m.AnnualVolatility,
			SharpeRatio:      m.SharpeRatio,
			LastPrice:        m.LastPrice,
		})
	}
	return out
}
