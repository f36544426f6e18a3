package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"atlas/internal/metrics"
	"atlas/pkg/errors"
)

// FundamentalsSummary carries the valuation fields used by the ratio tools.
// Absent fields are zero.
type FundamentalsSummary struct {
	Symbol         string  `json:"symbol"`
	TrailingPE     float64 `json:"trailing_pe"`
	EarningsGrowth float64 `json:"earnings_growth"`
	EBITDA         float64 `json:"ebitda"`
}

// StatementPeriod is one reporting period of a financial statement, keyed
// by the upstream field name (e.g. "netIncome", "totalAssets").
type StatementPeriod map[string]float64

// Statements holds annual statement history, most recent period first.
type Statements struct {
	Symbol   string            `json:"symbol"`
	Income   []StatementPeriod `json:"income"`
	Balance  []StatementPeriod `json:"balance"`
	CashFlow []StatementPeriod `json:"cash_flow"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Summary fetches valuation fundamentals for a symbol.
func (c *Client) Summary(ctx context.Context, symbol string) (FundamentalsSummary, error) {
	result, err := c.quoteSummary(ctx, symbol, "summaryDetail,financialData")
	if err != nil {
		return FundamentalsSummary{}, err
	}

	out := FundamentalsSummary{Symbol: symbol}
	if detail := decodePeriod(result["summaryDetail"]); detail != nil {
		out.TrailingPE = detail["trailingPE"]
	}
	if fin := decodePeriod(result["financialData"]); fin != nil {
		out.EarningsGrowth = fin["earningsGrowth"]
		out.EBITDA = fin["ebitda"]
	}
	return out, nil
}

// Statements fetches annual income, balance sheet and cash flow history.
func (c *Client) Statements(ctx context.Context, symbol string) (Statements, error) {
	result, err := c.quoteSummary(ctx, symbol,
		"incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory")
	if err != nil {
		return Statements{}, err
	}

	return Statements{
		Symbol:   symbol,
		Income:   decodeStatementList(result["incomeStatementHistory"], "incomeStatementHistory"),
		Balance:  decodeStatementList(result["balanceSheetHistory"], "balanceSheetStatements"),
		CashFlow: decodeStatementList(result["cashflowStatementHistory"], "cashflowStatements"),
	}, nil
}

func (c *Client) quoteSummary(ctx context.Context, symbol, modules string) (map[string]json.RawMessage, error) {
	cacheKey := fmt.Sprintf("md:summary:%s:%s", symbol, modules)
	if c.cache != nil {
		var cached map[string]json.RawMessage
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(modules))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build quote summary request")
	}
	req.Header.Set("User-Agent", browserUserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamCall("market", "quote_summary", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "quote summary request failed for %s", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(errors.ErrInvalidSymbol, "symbol %s not found", symbol)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(errors.ErrUnavailable, "quote summary for %s returned HTTP %d", symbol, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read quote summary response")
	}

	var parsed quoteSummaryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote summary response")
	}
	if parsed.QuoteSummary.Error != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSymbol, "quote summary error for %s: %s",
			symbol, parsed.QuoteSummary.Error.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no fundamentals for %s", symbol)
	}

	result := parsed.QuoteSummary.Result[0]
	if c.cache != nil && c.cacheTTL > 0 {
		_ = c.cache.Set(ctx, cacheKey, result, c.cacheTTL)
	}
	return result, nil
}

// decodePeriod flattens one statement object into field -> raw number,
// skipping non-numeric fields.
func decodePeriod(raw json.RawMessage) StatementPeriod {
	if raw == nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	period := make(StatementPeriod, len(fields))
	for name, value := range fields {
		var rv rawValue
		if err := json.Unmarshal(value, &rv); err == nil && rv.Raw != 0 {
			period[name] = rv.Raw
		}
	}
	return period
}

func decodeStatementList(raw json.RawMessage, listKey string) []StatementPeriod {
	if raw == nil {
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(wrapper[listKey], &items); err != nil {
		return nil
	}

	out := make([]StatementPeriod, 0, len(items))
	for _, item := range items {
		if period := decodePeriod(item); period != nil {
			out = append(out, period)
		}
	}
	return out
}
