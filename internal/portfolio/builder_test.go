package portfolio

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/adapters/config"
)

func testConfig() config.PortfolioConfig {
	return config.PortfolioConfig{
		BetaHighMin: 1.2,
		BetaLowMax:  1.0,
		MaxAvgCorr:  0.4,
		BucketSize:  3,
	}
}

// syntheticReturns produces a return series correlated with a shared
// driver by the given weight; weight 1 is the driver itself, weight 0 is
// an independent oscillation with its own phase.
func syntheticReturns(weight float64, phase int) []float64 {
	out := make([]float64, 40)
	for i := range out {
		driver := math.Sin(float64(i) / 3)
		own := math.Cos(float64(i+phase*7) / 2)
		out[i] = weight*driver + (1-weight)*own
	}
	return out
}

func candidate(symbol string, beta, corrWeight float64, phase int) Candidate {
	return Candidate{
		Symbol:  symbol,
		Beta:    beta,
		Returns: syntheticReturns(corrWeight, phase),
	}
}

func TestBuildSplitsBetaBands(t *testing.T) {
	candidates := []Candidate{
		candidate("HI1", 1.8, 0, 1),
		candidate("HI2", 1.5, 0, 2),
		candidate("HI3", 1.3, 0, 3),
		candidate("LO1", 0.6, 0, 4),
		candidate("LO2", 0.8, 0, 5),
		candidate("LO3", 0.9, 0, 6),
		candidate("MID", 1.1, 0, 7),
	}

	p, err := Build(candidates, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"HI1", "HI2", "HI3"}, symbolsOf(p.HighBeta))
	assert.Equal(t, []string{"LO1", "LO2", "LO3"}, symbolsOf(p.LowBeta))
	assert.NotContains(t, p.Symbols(), "MID")
}

func TestBuildSwapsOutCorrelatedMember(t *testing.T) {
	cfg := testConfig()
	// Three near-duplicates of the driver plus two independent reserves.
	// The initial bucket is almost perfectly correlated and must trade a
	// member for a reserve to clear the threshold.
	candidates := []Candidate{
		candidate("DUP1", 2.0, 1, 0),
		candidate("DUP2", 1.9, 0.98, 0),
		candidate("DUP3", 1.8, 0.97, 0),
		candidate("IND1", 1.4, 0, 1),
		candidate("IND2", 1.3, 0, 5),
	}

	p, err := Build(candidates, cfg)
	require.NoError(t, err)
	require.Len(t, p.HighBeta.Members, 3)
	assert.LessOrEqual(t, p.HighBeta.AvgCorrelation, cfg.MaxAvgCorr,
		"bucket %v still too correlated", symbolsOf(p.HighBeta))

	// At least one reserve must have been swapped in.
	syms := symbolsOf(p.HighBeta)
	assert.True(t, contains(syms, "IND1") || contains(syms, "IND2"), "got %v", syms)
}

func TestBuildBackfillsShortBucket(t *testing.T) {
	cfg := testConfig()
	candidates := []Candidate{
		candidate("HI1", 1.6, 0, 1),
		// Only one true high-beta symbol; the band is short by two.
		candidate("MID1", 1.15, 0, 2),
		candidate("MID2", 1.05, 0, 3),
		candidate("LO1", 0.7, 0, 4),
		candidate("LO2", 0.8, 0, 5),
		candidate("LO3", 0.9, 0, 6),
	}

	p, err := Build(candidates, cfg)
	require.NoError(t, err)

	assert.Len(t, p.HighBeta.Members, 3)
	assert.Contains(t, symbolsOf(p.HighBeta), "HI1")
	assert.Contains(t, symbolsOf(p.HighBeta), "MID1")
	assert.Contains(t, symbolsOf(p.HighBeta), "MID2")
}

func TestBuildNoCandidates(t *testing.T) {
	_, err := Build(nil, testConfig())
	assert.Error(t, err)

	_, err = Build([]Candidate{candidate("MID", 1.1, 0, 1)}, testConfig())
	assert.Error(t, err)
}

func TestBuildIsDeterministic(t *testing.T) {
	candidates := make([]Candidate, 0, 12)
	for i := 0; i < 6; i++ {
		candidates = append(candidates,
			candidate(fmt.Sprintf("H%d", i), 1.2+float64(i)*0.1, 0, i),
			candidate(fmt.Sprintf("L%d", i), 1.0-float64(i)*0.1, 0, i+6),
		)
	}

	first, err := Build(candidates, testConfig())
	require.NoError(t, err)
	second, err := Build(candidates, testConfig())
	require.NoError(t, err)
	assert.Equal(t, first.Symbols(), second.Symbols())
}

func TestPairCorrelation(t *testing.T) {
	a := []float64{0.01, -0.02, 0.03, -0.01, 0.02}
	assert.InDelta(t, 1.0, pairCorrelation(a, a), 1e-9)

	inverse := make([]float64, len(a))
	for i, v := range a {
		inverse[i] = -v
	}
	assert.InDelta(t, -1.0, pairCorrelation(a, inverse), 1e-9)

	assert.Zero(t, pairCorrelation(a, []float64{0.01}))
}

func symbolsOf(b Bucket) []string {
	out := make([]string, 0, len(b.Members))
	for _, m := range b.Members {
		out = append(out, m.Symbol)
	}
	return out
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
