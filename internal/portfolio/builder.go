package portfolio

import (
	"math"
	"sort"

	"atlas/internal/adapters/config"
	"atlas/pkg/errors"
)

// Candidate is one screened symbol with the statistics the construction
// rules operate on. Returns holds the daily log returns used for the
// pairwise correlation checks.
type Candidate struct {
	Symbol           string
	Beta             float64
	AnnualVolatility float64
	SharpeRatio      float64
	LastPrice        float64
	Returns          []float64
}

// Bucket is one side of the portfolio with its realized diversification.
type Bucket struct {
	Name           string
	Members        []Candidate
	AvgCorrelation float64
}

// Portfolio is the constructed two-bucket allocation.
type Portfolio struct {
	HighBeta Bucket
	LowBeta  Bucket
}

// Symbols lists every member symbol, high-beta bucket first.
func (p Portfolio) Symbols() []string {
	out := make([]string, 0, len(p.HighBeta.Members)+len(p.LowBeta.Members))
	for _, c := range p.HighBeta.Members {
		out = append(out, c.Symbol)
	}
	for _, c := range p.LowBeta.Members {
		out = append(out, c.Symbol)
	}
	return out
}

// Build constructs the portfolio from screened candidates: a high-beta
// bucket (beta >= BetaHighMin) and a low-beta bucket (beta <= BetaLowMax),
// each of BucketSize members. When a bucket's average pairwise correlation
// exceeds MaxAvgCorr, members are greedily swapped for less correlated
// reserves; when a beta band has too few symbols, the bucket is backfilled
// with the nearest-beta leftovers.
func Build(candidates []Candidate, cfg config.PortfolioConfig) (Portfolio, error) {
	if len(candidates) == 0 {
		return Portfolio{}, errors.Wrap(errors.ErrInvalidInput, "no candidates to build a portfolio from")
	}

	var high, low, rest []Candidate
	for _, c := range candidates {
		switch {
		case c.Beta >= cfg.BetaHighMin:
			high = append(high, c)
		case c.Beta <= cfg.BetaLowMax:
			low = append(low, c)
		default:
			rest = append(rest, c)
		}
	}

	// Deterministic ordering: strongest fit for the band first, symbol as
	// the tie-break.
	sortByBeta(high, true)
	sortByBeta(low, false)

	highBucket := buildBucket("high_beta", high, rest, cfg)

	// Backfill symbols already placed in the high bucket are no longer
	// available to the low one.
	taken := make(map[string]bool, len(highBucket.Members))
	for _, m := range highBucket.Members {
		taken[m.Symbol] = true
	}
	remaining := make([]Candidate, 0, len(rest))
	for _, c := range rest {
		if !taken[c.Symbol] {
			remaining = append(remaining, c)
		}
	}
	lowBucket := buildBucket("low_beta", low, remaining, cfg)

	if len(highBucket.Members) == 0 && len(lowBucket.Members) == 0 {
		return Portfolio{}, errors.Wrap(errors.ErrInvalidInput, "no candidate matched either beta band")
	}
	return Portfolio{HighBeta: highBucket, LowBeta: lowBucket}, nil
}

func buildBucket(name string, pool, backfill []Candidate, cfg config.PortfolioConfig) Bucket {
	size := cfg.BucketSize
	if size <= 0 {
		size = 10
	}

	selected := append([]Candidate(nil), pool...)
	var reserve []Candidate
	if len(selected) > size {
		reserve = selected[size:]
		selected = selected[:size]
	}

	selected = reduceCorrelation(selected, reserve, cfg.MaxAvgCorr)

	if len(selected) < size && len(backfill) > 0 {
		selected = backfillBucket(selected, backfill, size)
	}

	return Bucket{
		Name:           name,
		Members:        selected,
		AvgCorrelation: avgPairwiseCorrelation(selected),
	}
}

// reduceCorrelation swaps the member most correlated with the rest of the
// bucket for the reserve candidate that lowers the average the most. Each
// reserve is tried once; the loop stops as soon as the bucket clears the
// threshold or no swap improves it.
func reduceCorrelation(selected, reserve []Candidate, maxAvg float64) []Candidate {
	if maxAvg <= 0 || len(selected) < 2 {
		return selected
	}

	used := make([]bool, len(reserve))
	for avgPairwiseCorrelation(selected) > maxAvg {
		worst := mostCorrelatedIndex(selected)

		bestIdx := -1
		bestAvg := avgPairwiseCorrelation(selected)
		for i, candidate := range reserve {
			if used[i] {
				continue
			}
			trial := append([]Candidate(nil), selected...)
			trial[worst] = candidate
			if avg := avgPairwiseCorrelation(trial); avg < bestAvg {
				bestAvg = avg
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[worst] = reserve[bestIdx]
		used[bestIdx] = true
	}
	return selected
}

func backfillBucket(selected, backfill []Candidate, size int) []Candidate {
	have := make(map[string]bool, len(selected))
	for _, c := range selected {
		have[c.Symbol] = true
	}

	pool := make([]Candidate, 0, len(backfill))
	for _, c := range backfill {
		if !have[c.Symbol] {
			pool = append(pool, c)
		}
	}
	// Closest to the band first so the bucket character drifts as little
	// as possible.
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Beta != pool[j].Beta {
			return math.Abs(pool[i].Beta-1.1) < math.Abs(pool[j].Beta-1.1)
		}
		return pool[i].Symbol < pool[j].Symbol
	})

	for _, c := range pool {
		if len(selected) >= size {
			break
		}
		selected = append(selected, c)
	}
	return selected
}

func mostCorrelatedIndex(members []Candidate) int {
	worst, worstSum := 0, math.Inf(-1)
	for i := range members {
		sum := 0.0
		for j := range members {
			if i == j {
				continue
			}
			sum += math.Abs(pairCorrelation(members[i].Returns, members[j].Returns))
		}
		if sum > worstSum {
			worstSum = sum
			worst = i
		}
	}
	return worst
}

func avgPairwiseCorrelation(members []Candidate) float64 {
	if len(members) < 2 {
		return 0
	}
	sum, pairs := 0.0, 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += math.Abs(pairCorrelation(members[i].Returns, members[j].Returns))
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

func pairCorrelation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	a, b = a[len(a)-n:], b[len(b)-n:]

	meanA, meanB := meanOf(a), meanOf(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sortByBeta(cs []Candidate, descending bool) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Beta != cs[j].Beta {
			if descending {
				return cs[i].Beta > cs[j].Beta
			}
			return cs[i].Beta < cs[j].Beta
		}
		return cs[i].Symbol < cs[j].Symbol
	})
}
